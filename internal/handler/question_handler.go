package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/DvwN-Lee/OnlineExam-v2/internal/middleware"
	"github.com/DvwN-Lee/OnlineExam-v2/internal/model"
	"github.com/DvwN-Lee/OnlineExam-v2/internal/response"
	"github.com/DvwN-Lee/OnlineExam-v2/internal/service"
	"github.com/DvwN-Lee/OnlineExam-v2/internal/validator"
)

// QuestionHandler handles question authoring endpoints.
type QuestionHandler struct {
	questionService *service.QuestionService
}

// NewQuestionHandler creates a new QuestionHandler.
func NewQuestionHandler(questionService *service.QuestionService) *QuestionHandler {
	return &QuestionHandler{questionService: questionService}
}

// Create godoc
// POST /api/v1/teacher/questions
func (h *QuestionHandler) Create(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req model.CreateQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	question, err := h.questionService.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"question": question})
}

// Get godoc
// GET /api/v1/teacher/questions/:question_id
func (h *QuestionHandler) Get(c *gin.Context) {
	questionID, err := uuid.Parse(c.Param("question_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	question, err := h.questionService.Get(c.Request.Context(), questionID)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"question": question})
}

// ListBySubject godoc
// GET /api/v1/teacher/subjects/:subject_id/questions
func (h *QuestionHandler) ListBySubject(c *gin.Context) {
	subjectID, err := strconv.Atoi(c.Param("subject_id"))
	if err != nil || subjectID < 1 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	questions, err := h.questionService.ListBySubject(c.Request.Context(), subjectID)
	if err != nil {
		failDomain(c, err)
		return
	}
	if questions == nil {
		questions = []model.Question{}
	}

	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}
