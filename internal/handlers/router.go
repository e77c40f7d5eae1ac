package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"tentkids/internal/middleware"
)

// NewRouter wires the diagnostics endpoints. controls may be nil.
func NewRouter(logger *zap.Logger, health *HealthHandler, status *StatusHandler, controls *ControlHandler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.RequestLogger(logger))

	router.GET("/", RootHandler)
	router.GET("/healthz", health.Health)
	router.GET("/status", status.Status)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if controls != nil {
		router.POST("/gate/open", controls.OpenGate)
		router.POST("/gate/answer", controls.AnswerGate)
		router.POST("/break/dismiss", controls.DismissBreak)
	}
	return router
}
