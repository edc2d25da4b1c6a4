package api

import (
	"errors"
	"net/http"
	"time"

	"fittrack/fitness-api/internal/domain"
	"fittrack/fitness-api/internal/query"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

// Envelope shapes shared by every endpoint. No handler or service builds
// its own response; everything funnels through the helpers here.

type dataResponse struct {
	Success    bool              `json:"success"`
	Data       any               `json:"data"`
	Pagination *query.Pagination `json:"pagination,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
}

type errorResponse struct {
	Success   bool                `json:"success"`
	Message   string              `json:"message"`
	Errors    []domain.FieldError `json:"errors,omitempty"`
	LoginURL  string              `json:"loginUrl,omitempty"`
	Timestamp time.Time           `json:"timestamp"`
}

func respondData(c *gin.Context, status int, data any) {
	c.JSON(status, dataResponse{Success: true, Data: data, Timestamp: time.Now().UTC()})
}

func respondList(c *gin.Context, data any, pagination query.Pagination) {
	c.JSON(http.StatusOK, dataResponse{
		Success:    true,
		Data:       data,
		Pagination: &pagination,
		Timestamp:  time.Now().UTC(),
	})
}

// respondError is the single translation point from the error taxonomy to
// HTTP. Internal causes are logged server-side and, outside debug mode,
// replaced with a generic client message.
func respondError(c *gin.Context, err error) {
	var appErr *domain.Error
	if !errors.As(err, &appErr) {
		appErr = domain.InternalError("unexpected error", err)
	}

	body := errorResponse{
		Message:   appErr.Message,
		Errors:    appErr.Fields,
		Timestamp: time.Now().UTC(),
	}

	var status int
	switch appErr.Kind {
	case domain.KindValidation, domain.KindInvalidParameter:
		status = http.StatusBadRequest
	case domain.KindNotFound:
		status = http.StatusNotFound
	case domain.KindConflict:
		status = http.StatusConflict
	case domain.KindUnauthenticated:
		status = http.StatusUnauthorized
		body.LoginURL = loginPath
	default:
		status = http.StatusInternalServerError
		log.Error().Err(appErr).Str("path", c.FullPath()).Msg("request failed")
		if gin.Mode() != gin.DebugMode {
			body.Message = "an unexpected error occurred"
		}
	}

	c.AbortWithStatusJSON(status, body)
}

// bindingError converts a gin/validator binding failure into a field-level
// validation error.
func bindingError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.ValidationError("malformed request body")
	}
	fields := make([]domain.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, domain.FieldError{
			Field:   fe.Field(),
			Message: "failed validation on " + fe.Tag(),
			Value:   fe.Value(),
		})
	}
	return domain.ValidationError("request validation failed", fields...)
}
