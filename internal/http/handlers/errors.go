package handlers

import (
	"errors"
	"net/http"

	"tripform/internal/domain"
	"tripform/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// ErrorResponse standardizes error payloads.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

func respondError(c *gin.Context, status int, code, message string, details any) {
	if code == "" {
		code = http.StatusText(status)
	}
	resp := ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	}
	reqID := middleware.GetRequestID(c)
	if reqID != "" {
		c.JSON(status, gin.H{
			"error":      resp.Error,
			"code":       resp.Code,
			"details":    resp.Details,
			"request_id": reqID,
			"message":    message,
		})
		return
	}
	c.JSON(status, resp)
}

// statusFor maps an error kind to the HTTP status handlers answer with.
func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindUpload, domain.KindNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// RespondDomainError maps domain errors to HTTP responses.
func RespondDomainError(c *gin.Context, err error) {
	kind := domain.Kind(err)
	status := statusFor(kind)
	switch kind {
	case domain.KindValidation:
		var details any
		var many domain.ValidationErrors
		if errors.As(err, &many) {
			details = many.Fields()
		}
		respondError(c, status, "validation_error", err.Error(), details)
	case domain.KindStorage:
		respondError(c, status, "storage_error", "falha ao acessar o contador", err.Error())
	case domain.KindRender:
		respondError(c, status, "render_error", "falha ao gerar o PDF", err.Error())
	case domain.KindUpload, domain.KindNetwork:
		respondError(c, status, string(kind)+"_error", err.Error(), nil)
	default:
		respondError(c, status, "internal_error", "ocorreu um erro interno", nil)
	}
}
