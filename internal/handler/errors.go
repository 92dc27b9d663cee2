package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DvwN-Lee/OnlineExam-v2/internal/domain"
	"github.com/DvwN-Lee/OnlineExam-v2/internal/response"
)

// failDomain maps a service error to its HTTP status and response code.
// Unknown errors fall through to a 500 without leaking internals.
func failDomain(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrExamNotFound),
		errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrQuestionNotFound),
		errors.Is(err, domain.ErrPaperNotFound),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrScoreNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, domain.ErrNotEnrolled):
		response.Fail(c, http.StatusForbidden, response.ErrNotEnrolled)
	case errors.Is(err, domain.ErrForbidden):
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
	case errors.Is(err, domain.ErrTooEarly):
		response.Fail(c, http.StatusConflict, response.ErrExamNotStarted)
	case errors.Is(err, domain.ErrTooLate):
		response.Fail(c, http.StatusConflict, response.ErrExamEnded)
	case errors.Is(err, domain.ErrNoPaper):
		response.Fail(c, http.StatusConflict, response.ErrNoPaper)
	case errors.Is(err, domain.ErrNotStarted):
		response.Fail(c, http.StatusConflict, response.ErrNotStarted)
	case errors.Is(err, domain.ErrAlreadySubmitted):
		response.Fail(c, http.StatusConflict, response.ErrAlreadySubmitted)
	case errors.Is(err, domain.ErrNotSubmitted):
		response.Fail(c, http.StatusConflict, response.ErrNotSubmitted)
	case errors.Is(err, domain.ErrDuplicateQuestion):
		response.Fail(c, http.StatusBadRequest, response.ErrDuplicateQuestion)
	case errors.Is(err, domain.ErrInvalidScore):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidScore)
	case errors.Is(err, domain.ErrInvalidOptions):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidOptions)
	case errors.Is(err, domain.ErrInvalidWindow):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidWindow)
	case errors.Is(err, domain.ErrInvalidPassing):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPassing)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
