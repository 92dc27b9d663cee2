package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/DvwN-Lee/OnlineExam-v2/internal/middleware"
	"github.com/DvwN-Lee/OnlineExam-v2/internal/model"
	"github.com/DvwN-Lee/OnlineExam-v2/internal/response"
	"github.com/DvwN-Lee/OnlineExam-v2/internal/service"
	"github.com/DvwN-Lee/OnlineExam-v2/internal/validator"
)

// TakingHandler handles the student exam-taking endpoints.
type TakingHandler struct {
	sessionService *service.SessionService
	examService    *service.ExamService
}

// NewTakingHandler creates a new TakingHandler.
func NewTakingHandler(sessionService *service.SessionService, examService *service.ExamService) *TakingHandler {
	return &TakingHandler{
		sessionService: sessionService,
		examService:    examService,
	}
}

func examIDParam(c *gin.Context) (uuid.UUID, bool) {
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return examID, true
}

// Info godoc
// GET /api/v1/student/exams/:exam_id/info
// Returns exam metadata, paper totals, and the caller's attempt flags.
func (h *TakingHandler) Info(c *gin.Context) {
	claims := middleware.GetClaims(c)
	examID, ok := examIDParam(c)
	if !ok {
		return
	}

	info, err := h.sessionService.Info(c.Request.Context(), examID, claims.UserID)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, info)
}

// Paper godoc
// GET /api/v1/student/exams/:exam_id/paper
// Returns the question payload with correct answers stripped.
func (h *TakingHandler) Paper(c *gin.Context) {
	claims := middleware.GetClaims(c)
	examID, ok := examIDParam(c)
	if !ok {
		return
	}

	questions, err := h.examService.PaperForStudent(c.Request.Context(), examID, claims.UserID)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}

// Start godoc
// POST /api/v1/student/exams/:exam_id/start
// Begins or re-enters the caller's attempt.
func (h *TakingHandler) Start(c *gin.Context) {
	claims := middleware.GetClaims(c)
	examID, ok := examIDParam(c)
	if !ok {
		return
	}

	session, err := h.sessionService.Start(c.Request.Context(), examID, claims.UserID, time.Now())
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": session})
}

// SaveDraft godoc
// PUT /api/v1/student/exams/:exam_id/draft
// Overwrites the caller's draft answers without grading.
func (h *TakingHandler) SaveDraft(c *gin.Context) {
	claims := middleware.GetClaims(c)
	examID, ok := examIDParam(c)
	if !ok {
		return
	}

	var req model.SubmitAnswersRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	savedAt, err := h.sessionService.SaveDraft(c.Request.Context(), examID, claims.UserID, req.Answers, time.Now())
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"saved_at": savedAt})
}

// Submit godoc
// POST /api/v1/student/exams/:exam_id/submit
// Grades the answers and finalizes the attempt.
func (h *TakingHandler) Submit(c *gin.Context) {
	claims := middleware.GetClaims(c)
	examID, ok := examIDParam(c)
	if !ok {
		return
	}

	var req model.SubmitAnswersRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.sessionService.Submit(c.Request.Context(), examID, claims.UserID, req.Answers, time.Now())
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// Status godoc
// GET /api/v1/student/exams/:exam_id/status
// Reports the caller's attempt state, including drafts while in progress.
func (h *TakingHandler) Status(c *gin.Context) {
	claims := middleware.GetClaims(c)
	examID, ok := examIDParam(c)
	if !ok {
		return
	}

	status, err := h.sessionService.Status(c.Request.Context(), examID, claims.UserID, time.Now())
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, status)
}
