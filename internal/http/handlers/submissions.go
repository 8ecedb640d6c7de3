package handlers

import (
	"net/http"

	"tripform/internal/domain"
	"tripform/internal/http/middleware"
	"tripform/internal/services"

	"github.com/gin-gonic/gin"
)

// Submissions runs the whole workflow for one posted form.
type Submissions struct {
	Service services.SubmissionService
}

// Create answers 200 on success and the failure kind's status otherwise; the
// body is the outcome in both cases.
func (h Submissions) Create(c *gin.Context) {
	var rec domain.TripRecord
	if !BindJSONOrError(c, &rec) {
		return
	}

	svc := h.Service
	svc.RequestID = middleware.GetRequestID(c)
	out := svc.Submit(c.Request.Context(), rec, c.Request.UserAgent())

	status := http.StatusOK
	if out.State == services.StateFailed {
		status = statusFor(out.ErrorKind)
		if out.ErrorKind == domain.KindValidation {
			status = http.StatusUnprocessableEntity
		}
	}
	c.JSON(status, out)
}
