package handlers

import (
	"net/http"

	"tripform/internal/domain"
	"tripform/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// maxBodyBytes bounds request bodies; documents travel base64-encoded.
const maxBodyBytes = 25 << 20

// RespondError sends standard error payload with request_id included.
func RespondError(c *gin.Context, status int, message string, err error) {
	payload := gin.H{
		"message":    message,
		"request_id": middleware.GetRequestID(c),
	}
	if err != nil {
		payload["error"] = err.Error()
	}
	c.JSON(status, payload)
}

// BindJSONOrError ensures body is present and parsable.
func BindJSONOrError[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		RespondError(c, http.StatusBadRequest, "corpo da requisição vazio", nil)
		return false
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	if err := c.ShouldBindJSON(dst); err != nil {
		if domain.IsValidation(err) {
			RespondDomainError(c, err)
			return false
		}
		respondError(c, http.StatusBadRequest, "bad_request", "payload inválido", err.Error())
		return false
	}
	return true
}
