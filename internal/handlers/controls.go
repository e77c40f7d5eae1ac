package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tentkids/internal/gate"
	"tentkids/internal/store"
	"tentkids/internal/usage"
)

// ControlHandler lets a parent-facing shell drive the worker's parent gate
// and break reminder. Gate changes are saved to the store after every call.
type ControlHandler struct {
	store  *store.Store
	gate   *gate.Gate
	timer  *usage.Timer
	logger *zap.Logger
}

func NewControlHandler(st *store.Store, g *gate.Gate, timer *usage.Timer, logger *zap.Logger) *ControlHandler {
	return &ControlHandler{store: st, gate: g, timer: timer, logger: logger}
}

type AnswerRequest struct {
	Answer string `json:"answer"`
}

func (h *ControlHandler) save() {
	h.store.SetGateRecord(h.gate.Record())
}

// OpenGate draws a fresh problem, or reports the lockout with 423.
func (h *ControlHandler) OpenGate(c *gin.Context) {
	if h.gate == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "parent gate not available"})
		return
	}

	err := h.gate.Open()
	h.save()
	if errors.Is(err, gate.ErrLocked) {
		c.JSON(http.StatusLocked, gin.H{"error": err.Error(), "gate": h.gate.State()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"gate": h.gate.State()})
}

func (h *ControlHandler) AnswerGate(c *gin.Context) {
	if h.gate == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "parent gate not available"})
		return
	}

	var req AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res := h.gate.Answer(req.Answer)
	h.save()
	h.logger.Debug("gate answered", zap.String("result", res.String()))

	code := http.StatusOK
	if res == gate.Locked {
		code = http.StatusLocked
	}
	c.JSON(code, gin.H{"result": res.String(), "gate": h.gate.State()})
}

// DismissBreak closes the break reminder and starts a new usage session.
func (h *ControlHandler) DismissBreak(c *gin.Context) {
	if h.timer == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "usage timer not available"})
		return
	}

	h.timer.Dismiss()
	c.JSON(http.StatusOK, gin.H{
		"break_due":     h.timer.Showing(),
		"session_start": h.store.SessionStart(),
	})
}
