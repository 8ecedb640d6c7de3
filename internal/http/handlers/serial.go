package handlers

import (
	"net/http"

	"tripform/internal/http/middleware"
	"tripform/internal/repositories"
	"tripform/internal/services"

	"github.com/gin-gonic/gin"
)

// Serial serves the document counter. Mount it with Any: methods other than
// GET, POST and OPTIONS get a bare 405.
type Serial struct {
	Store repositories.CounterStore
}

func (h Serial) Handle(c *gin.Context) {
	svc := services.SerialService{Store: h.Store, RequestID: middleware.GetRequestID(c)}

	var (
		n   int64
		err error
	)
	switch c.Request.Method {
	case http.MethodPost:
		n, err = svc.Increment(c.Request.Context())
	case http.MethodGet:
		n, err = svc.Read(c.Request.Context())
	default:
		c.AbortWithStatus(http.StatusMethodNotAllowed)
		return
	}
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"serial": n})
}
