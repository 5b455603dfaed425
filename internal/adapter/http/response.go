package http

import (
	"errors"
	"net/http"

	"loan-management/internal/domain/user"
	"loan-management/pkg/apperr"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Envelope is the body of every API response.
type Envelope struct {
	Message string       `json:"message"`
	Error   bool         `json:"error"`
	Data    any          `json:"data,omitempty"`
	Details []FieldError `json:"details,omitempty"`
}

const (
	msgInvalidBody      = "invalid body"
	msgValidationFailed = "validation failed"
	msgInternal         = "Something went wrong"
)

func ok(c echo.Context, code int, msg string, data any) error {
	return c.JSON(code, Envelope{Message: msg, Data: data})
}

func fail(c echo.Context, code int, msg string) error {
	return c.JSON(code, Envelope{Message: msg, Error: true})
}

func invalid(c echo.Context, err error) error {
	return c.JSON(http.StatusBadRequest, Envelope{
		Message: msgValidationFailed,
		Error:   true,
		Details: ToFieldErrors(err),
	})
}

var kindStatus = map[apperr.Kind]int{
	apperr.KindValidation:     http.StatusBadRequest,
	apperr.KindNotFound:       http.StatusNotFound,
	apperr.KindConflict:       http.StatusBadRequest,
	apperr.KindInconsistent:   http.StatusInternalServerError,
	apperr.KindUnauthorized:   http.StatusUnauthorized,
	apperr.KindForbidden:      http.StatusForbidden,
	apperr.KindLengthRequired: http.StatusLengthRequired,
}

func statusOf(err error) int {
	// account conflicts keep the registration contract
	if errors.Is(err, user.ErrUsernameTaken) {
		return http.StatusConflict
	}
	if code, ok := kindStatus[apperr.KindOf(err)]; ok {
		return code
	}
	return http.StatusInternalServerError
}

// respondError writes err in the envelope. Unknown errors are logged and hidden.
func respondError(c echo.Context, log *zap.Logger, err error) error {
	code := statusOf(err)
	if apperr.KindOf(err) == apperr.KindUnknown {
		log.Error("request failed",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
			zap.Error(err))
		return fail(c, code, msgInternal)
	}
	if code >= http.StatusInternalServerError {
		log.Error("server inconsistency", zap.String("path", c.Path()), zap.Error(err))
	}
	return fail(c, code, err.Error())
}
