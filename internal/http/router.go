package api

import (
	stdhttp "net/http"

	intconfig "tripform/internal/config"
	h "tripform/internal/http/handlers"
	"tripform/internal/http/middleware"
	"tripform/internal/repositories"
	"tripform/internal/services"
	"tripform/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Deps are the collaborators the routes are built on.
type Deps struct {
	Store       repositories.CounterStore
	Submissions services.SubmissionService
	RelayClient *stdhttp.Client
}

func NewRouter(env intconfig.Env, deps Deps) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery())

	if err := r.SetTrustedProxies(nil); err != nil {
		utils.Logger().Warn("failed to set trusted proxies", zap.Error(err))
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "rota não encontrada",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(stdhttp.StatusMethodNotAllowed, gin.H{
			"error":  "método não permitido",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	serial := h.Serial{Store: deps.Store}
	r.Any("/serial-number", middleware.WildcardCORS(), serial.Handle)

	relay := h.Relay{DriveURL: env.DriveRelayURL, PDFURL: env.PDFRelayURL, Client: deps.RelayClient}
	relays := r.Group("/relay", middleware.CORS(env.AllowedOrigins()))
	{
		relays.POST("/google-drive", relay.GoogleDrive)
		relays.POST("/enviar-pdf", relay.EnviarPDF)
		relays.OPTIONS("/*path", preflight)
	}

	api := r.Group("/api", middleware.CORS(env.AllowedOrigins()))
	{
		api.GET("/health", h.Health)
		api.GET("/store-check", h.StoreCheck(deps.Store, env.SerialStore))
		api.GET("/routes", h.Routes)

		submissions := h.Submissions{Service: deps.Submissions}
		api.POST("/submissions", submissions.Create)
		api.OPTIONS("/*path", preflight)
	}

	h.SetRouter(r)
	return r
}

// preflight only runs when the CORS middleware let a non-preflight OPTIONS through.
func preflight(c *gin.Context) { c.AbortWithStatus(stdhttp.StatusNoContent) }
