package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/DvwN-Lee/OnlineExam-v2/internal/middleware"
	"github.com/DvwN-Lee/OnlineExam-v2/internal/model"
	"github.com/DvwN-Lee/OnlineExam-v2/internal/repository"
	"github.com/DvwN-Lee/OnlineExam-v2/internal/response"
	"github.com/DvwN-Lee/OnlineExam-v2/internal/service"
	"github.com/DvwN-Lee/OnlineExam-v2/internal/validator"
)

// ScoresHandler handles score views for teachers and students.
type ScoresHandler struct {
	scoreService *service.ScoreService
}

// NewScoresHandler creates a new ScoresHandler.
func NewScoresHandler(scoreService *service.ScoreService) *ScoresHandler {
	return &ScoresHandler{scoreService: scoreService}
}

func studentIDParam(c *gin.Context) (int, bool) {
	studentID, err := strconv.Atoi(c.Param("student_id"))
	if err != nil || studentID < 1 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return 0, false
	}
	return studentID, true
}

// ExamScores godoc
// GET /api/v1/teacher/exams/:exam_id/scores
// Lists every attempt of the exam with student identity, owner only.
func (h *ScoresHandler) ExamScores(c *gin.Context) {
	claims := middleware.GetClaims(c)
	examID, ok := examIDParam(c)
	if !ok {
		return
	}

	scores, err := h.scoreService.ListForExam(c.Request.Context(), examID, claims.UserID)
	if err != nil {
		failDomain(c, err)
		return
	}
	if scores == nil {
		scores = []repository.ExamScoreRow{}
	}

	response.Success(c, http.StatusOK, gin.H{"scores": scores})
}

// Statistics godoc
// GET /api/v1/teacher/exams/:exam_id/statistics
// Returns aggregate metrics over the exam's submitted attempts.
func (h *ScoresHandler) Statistics(c *gin.Context) {
	claims := middleware.GetClaims(c)
	examID, ok := examIDParam(c)
	if !ok {
		return
	}

	stats, err := h.scoreService.Statistics(c.Request.Context(), examID, claims.UserID)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, stats)
}

// StudentDetail godoc
// GET /api/v1/teacher/exams/:exam_id/scores/:student_id
// Returns one student's full graded record, owner only.
func (h *ScoresHandler) StudentDetail(c *gin.Context) {
	claims := middleware.GetClaims(c)
	examID, ok := examIDParam(c)
	if !ok {
		return
	}
	studentID, ok := studentIDParam(c)
	if !ok {
		return
	}

	detail, err := h.scoreService.StudentDetail(c.Request.Context(), examID, claims.UserID, studentID)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, detail)
}

// ManualGrade godoc
// PUT /api/v1/teacher/exams/:exam_id/scores/:student_id
// Overrides one question's awarded score on a submitted attempt.
func (h *ScoresHandler) ManualGrade(c *gin.Context) {
	claims := middleware.GetClaims(c)
	examID, ok := examIDParam(c)
	if !ok {
		return
	}
	studentID, ok := studentIDParam(c)
	if !ok {
		return
	}

	var req model.ManualGradeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	total, err := h.scoreService.ManualGrade(c.Request.Context(), examID, claims.UserID, studentID, req)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"total_score": total})
}

// MyScores godoc
// GET /api/v1/student/scores
// Lists the caller's submitted attempts.
func (h *ScoresHandler) MyScores(c *gin.Context) {
	claims := middleware.GetClaims(c)

	scores, err := h.scoreService.MyScores(c.Request.Context(), claims.UserID)
	if err != nil {
		failDomain(c, err)
		return
	}
	if scores == nil {
		scores = []repository.StudentScoreRow{}
	}

	response.Success(c, http.StatusOK, gin.H{"scores": scores})
}

// MyScoreDetail godoc
// GET /api/v1/student/exams/:exam_id/score
// Returns the caller's own graded record for one exam.
func (h *ScoresHandler) MyScoreDetail(c *gin.Context) {
	claims := middleware.GetClaims(c)
	examID, ok := examIDParam(c)
	if !ok {
		return
	}

	detail, err := h.scoreService.MyScoreDetail(c.Request.Context(), examID, claims.UserID)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, detail)
}
