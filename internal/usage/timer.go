// Package usage reminds the child to take a break after a long session.
package usage

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"tentkids/internal/metrics"
)

const (
	DefaultBreakAfter   = 30 * time.Minute
	DefaultPollInterval = 30 * time.Second
)

// Session is the source of the session epoch. *store.Store satisfies it.
type Session interface {
	SessionStart() time.Time
	ResetSessionTime()
}

type Timer struct {
	session    Session
	breakAfter time.Duration
	now        func() time.Time
	logger     *zap.Logger

	mu      sync.Mutex
	showing bool
}

func NewTimer(session Session, breakAfter time.Duration, now func() time.Time, logger *zap.Logger) *Timer {
	if breakAfter <= 0 {
		breakAfter = DefaultBreakAfter
	}
	if now == nil {
		now = time.Now
	}
	return &Timer{
		session:    session,
		breakAfter: breakAfter,
		now:        now,
		logger:     logger,
	}
}

// Check reports true exactly once per session, the first time the elapsed
// session time reaches the threshold.
func (t *Timer) Check() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.showing {
		return false
	}
	elapsed := t.now().Sub(t.session.SessionStart())
	if elapsed < t.breakAfter {
		return false
	}
	t.showing = true
	metrics.BreakRemindersTotal.Inc()
	t.logger.Info("break reminder", zap.Duration("elapsed", elapsed))
	return true
}

// Showing reports whether a reminder is waiting to be dismissed.
func (t *Timer) Showing() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.showing
}

// Dismiss hides the reminder and starts a new session.
func (t *Timer) Dismiss() {
	t.mu.Lock()
	t.showing = false
	t.mu.Unlock()
	t.session.ResetSessionTime()
}

// Elapsed is the time since the session started.
func (t *Timer) Elapsed() time.Duration {
	return t.now().Sub(t.session.SessionStart())
}
