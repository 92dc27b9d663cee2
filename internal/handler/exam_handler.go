package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DvwN-Lee/OnlineExam-v2/internal/middleware"
	"github.com/DvwN-Lee/OnlineExam-v2/internal/model"
	"github.com/DvwN-Lee/OnlineExam-v2/internal/response"
	"github.com/DvwN-Lee/OnlineExam-v2/internal/service"
	"github.com/DvwN-Lee/OnlineExam-v2/internal/validator"
)

// ExamHandler handles exam scheduling and enrollment endpoints.
type ExamHandler struct {
	examService *service.ExamService
}

// NewExamHandler creates a new ExamHandler.
func NewExamHandler(examService *service.ExamService) *ExamHandler {
	return &ExamHandler{examService: examService}
}

// Create godoc
// POST /api/v1/teacher/exams
func (h *ExamHandler) Create(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req model.CreateExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	exam, err := h.examService.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"exam": exam})
}

// List godoc
// GET /api/v1/teacher/exams
func (h *ExamHandler) List(c *gin.Context) {
	claims := middleware.GetClaims(c)

	exams, err := h.examService.ListByCreator(c.Request.Context(), claims.UserID)
	if err != nil {
		failDomain(c, err)
		return
	}
	if exams == nil {
		exams = []model.Exam{}
	}

	response.Success(c, http.StatusOK, gin.H{"exams": exams})
}

// Get godoc
// GET /api/v1/teacher/exams/:exam_id
func (h *ExamHandler) Get(c *gin.Context) {
	examID, ok := examIDParam(c)
	if !ok {
		return
	}

	exam, err := h.examService.Get(c.Request.Context(), examID)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exam": exam})
}

// Enroll godoc
// POST /api/v1/teacher/exams/:exam_id/enrollments
func (h *ExamHandler) Enroll(c *gin.Context) {
	claims := middleware.GetClaims(c)
	examID, ok := examIDParam(c)
	if !ok {
		return
	}

	var req model.EnrollRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	added, err := h.examService.Enroll(c.Request.Context(), examID, claims.UserID, req)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"enrolled": added})
}

// MyExams godoc
// GET /api/v1/student/exams
// Lists exams the caller is enrolled in.
func (h *ExamHandler) MyExams(c *gin.Context) {
	claims := middleware.GetClaims(c)

	exams, err := h.examService.ListForStudent(c.Request.Context(), claims.UserID)
	if err != nil {
		failDomain(c, err)
		return
	}
	if exams == nil {
		exams = []model.Exam{}
	}

	response.Success(c, http.StatusOK, gin.H{"exams": exams})
}
