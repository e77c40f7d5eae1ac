package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func RootHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "Tent-Kids local state worker",
		"version": "1.0.0",
		"status":  "running",
		"endpoints": gin.H{
			"state": []string{
				"GET /status",
			},
			"system": []string{
				"GET /healthz",
				"GET /metrics",
			},
		},
	})
}
