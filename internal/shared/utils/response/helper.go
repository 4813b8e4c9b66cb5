package response

import (
	"net/http"

	"boletamaster/internal/shared/domainerr"

	"github.com/gin-gonic/gin"
)

func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errors interface{}) {
	c.JSON(code, StandardApiResponse{
		Status:     status,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errors,
	})
}

// StatusFor maps a domain error category to an HTTP status code.
func StatusFor(err error) int {
	switch domainerr.Category(err) {
	case domainerr.ErrValidation:
		return http.StatusBadRequest
	case domainerr.ErrNotFound:
		return http.StatusNotFound
	case domainerr.ErrForbidden:
		return http.StatusForbidden
	case domainerr.ErrStateConflict:
		return http.StatusConflict
	case domainerr.ErrInsufficientFunds:
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}

// RespondError writes err using the status code of its category.
// Infrastructure failures are reported without leaking their message.
func RespondError(c *gin.Context, err error) {
	code := StatusFor(err)
	if code == http.StatusInternalServerError {
		_ = c.Error(err)
		RespondJSON(c, "error", code, "internal server error", nil, nil)
		return
	}
	RespondJSON(c, "error", code, err.Error(), nil, nil)
}

// RespondValidation writes a 400 with the validator's field errors.
func RespondValidation(c *gin.Context, err error) {
	RespondJSON(c, "error", http.StatusBadRequest, "validation failed", nil, err.Error())
}
