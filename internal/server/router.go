package server

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/abduss/filemeta/internal/app"
	"github.com/abduss/filemeta/internal/config"
	"github.com/abduss/filemeta/internal/logger"
	"github.com/abduss/filemeta/internal/metadata"
	"github.com/abduss/filemeta/internal/metrics"
	"github.com/abduss/filemeta/internal/upload"
)

// Dependencies groups the services required by the HTTP router.
type Dependencies struct {
	Config  config.Config
	Log     *zap.Logger
	Checks  []app.Check
	Uploads upload.Authorizer
	Reader  metadata.Lister
	Writer  metadata.Processor
}

// NewRouter builds a Gin engine with foundational middleware and routes.
func NewRouter(deps Dependencies) *gin.Engine {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}

	metrics.InitMetrics()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.Middleware(log))
	router.Use(metrics.Middleware())

	registerHealthRoutes(router, deps)
	metrics.Register(router, deps.Config.Metrics.PrometheusPath)

	api := router.Group("/v1")
	if deps.Uploads != nil {
		upload.NewHandler(deps.Uploads, log).RegisterRoutes(api)
	}
	metadata.RegisterRoutes(api, deps.Reader, deps.Writer, log)

	return router
}
