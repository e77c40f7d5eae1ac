package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tentkids/internal/db"
	"tentkids/internal/kv"
	"tentkids/internal/store"
)

type HealthHandler struct {
	kv    kv.Store
	db    *db.DB
	store *store.Store
}

// NewHealthHandler accepts a nil database when no identity directory is configured.
func NewHealthHandler(kvStore kv.Store, database *db.DB, st *store.Store) *HealthHandler {
	return &HealthHandler{
		kv:    kvStore,
		db:    database,
		store: st,
	}
}

func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	checks := map[string]string{
		"kv":    "ok",
		"store": "ok",
	}

	if p, ok := h.kv.(kv.Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			checks["kv"] = err.Error()
		}
	}

	if h.db != nil {
		checks["database"] = "ok"
		if err := h.db.PingContext(ctx); err != nil {
			checks["database"] = err.Error()
		}
	}

	if h.store != nil && h.store.Loading() {
		checks["store"] = "loading"
	}

	healthy := true
	for _, status := range checks {
		if status != "ok" {
			healthy = false
			break
		}
	}

	statusCode := http.StatusOK
	if !healthy {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, gin.H{
		"status":  checks,
		"healthy": healthy,
	})
}
