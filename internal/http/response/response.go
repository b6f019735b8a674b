package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	domainagg "github.com/ledazaf/ms-order-api/internal/domain/aggregates"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

// StatusForCode maps the aggregate error taxonomy onto HTTP statuses.
func StatusForCode(code domainagg.ErrorCode) int {
	switch code {
	case domainagg.CodeValidation:
		return http.StatusBadRequest
	case domainagg.CodeNotFound:
		return http.StatusNotFound
	case domainagg.CodeIntegrity,
		domainagg.CodeInsufficientStock,
		domainagg.CodeInvalidTransition,
		domainagg.CodeConcurrentModification:
		return http.StatusConflict
	case domainagg.CodeRetryable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// RespondDomainError renders a service/aggregate failure through the
// taxonomy; errors without a code surface as internal.
func RespondDomainError(c *gin.Context, err error) {
	code := domainagg.CodeOf(err)
	if code == "" {
		code = domainagg.CodeInternal
	}
	RespondError(c, StatusForCode(code), string(code), err)
}
