package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/DvwN-Lee/OnlineExam-v2/internal/middleware"
	"github.com/DvwN-Lee/OnlineExam-v2/internal/model"
	"github.com/DvwN-Lee/OnlineExam-v2/internal/response"
	"github.com/DvwN-Lee/OnlineExam-v2/internal/service"
	"github.com/DvwN-Lee/OnlineExam-v2/internal/validator"
)

// PaperHandler handles paper authoring endpoints.
type PaperHandler struct {
	paperService *service.PaperService
}

// NewPaperHandler creates a new PaperHandler.
func NewPaperHandler(paperService *service.PaperService) *PaperHandler {
	return &PaperHandler{paperService: paperService}
}

// Create godoc
// POST /api/v1/teacher/papers
func (h *PaperHandler) Create(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req model.CreatePaperRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	paper, err := h.paperService.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"paper": paper})
}

// List godoc
// GET /api/v1/teacher/papers
func (h *PaperHandler) List(c *gin.Context) {
	claims := middleware.GetClaims(c)

	papers, err := h.paperService.ListByCreator(c.Request.Context(), claims.UserID)
	if err != nil {
		failDomain(c, err)
		return
	}
	if papers == nil {
		papers = []model.Paper{}
	}

	response.Success(c, http.StatusOK, gin.H{"papers": papers})
}

// Get godoc
// GET /api/v1/teacher/papers/:paper_id
func (h *PaperHandler) Get(c *gin.Context) {
	paperID, err := uuid.Parse(c.Param("paper_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	paper, err := h.paperService.Get(c.Request.Context(), paperID)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"paper": paper})
}
