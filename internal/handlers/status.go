package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tentkids/internal/gate"
	"tentkids/internal/store"
	"tentkids/internal/usage"
)

// StatusHandler reports a read-only summary of the local state.
type StatusHandler struct {
	store *store.Store
	gate  *gate.Gate
	timer *usage.Timer
}

func NewStatusHandler(st *store.Store, g *gate.Gate, timer *usage.Timer) *StatusHandler {
	return &StatusHandler{store: st, gate: g, timer: timer}
}

func (h *StatusHandler) Status(c *gin.Context) {
	_, signedIn := h.store.Profile()

	resp := gin.H{
		"language":        h.store.Language(),
		"rtl":             h.store.IsRTL(),
		"signed_in":       signedIn,
		"onboarded":       h.store.Onboarded(),
		"visible_posts":   len(h.store.VisiblePosts()),
		"stories":         len(h.store.Stories()),
		"pending_friends": len(h.store.PendingRequests()),
		"friends":         len(h.store.AcceptedFriends()),
		"unread":          h.store.UnreadCount(),
		"session_start":   h.store.SessionStart(),
	}
	if h.gate != nil {
		resp["gate"] = h.gate.State()
	}
	if h.timer != nil {
		resp["session_elapsed_seconds"] = int(h.timer.Elapsed().Seconds())
		resp["break_due"] = h.timer.Showing()
	}

	c.JSON(http.StatusOK, resp)
}
