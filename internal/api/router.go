package api

import (
	_ "embed"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/redsift/internal/api/handler"
	"github.com/timmy/redsift/internal/api/middleware"
	"github.com/timmy/redsift/internal/config"
)

//go:embed web/index.html
var indexPage []byte

// SetupRouter configures the Gin router with all routes
func SetupRouter(
	analysisService handler.AnalysisRunner,
	cfg *config.Config,
) *gin.Engine {
	// Set Gin mode
	switch cfg.Server.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	// Add middleware
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:  cfg.Server.CORS.AllowedOrigins,
		AllowAllOrigins: cfg.Server.CORS.AllowAllOrigins,
	}))

	// Create handlers
	healthHandler := handler.NewHealthHandler()
	analysisHandler := handler.NewAnalysisHandler(analysisService)

	// Web form
	r.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", indexPage)
	})

	// Health check
	r.GET("/health", healthHandler.Health)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		v1.POST("/analyses", analysisHandler.Create)
		v1.GET("/analyses", analysisHandler.List)
		v1.GET("/analyses/:id", analysisHandler.Get)
		v1.GET("/analyses/:id/download", analysisHandler.Download)
		v1.GET("/analyses/:id/charts/:name", analysisHandler.Chart)
	}

	return r
}
