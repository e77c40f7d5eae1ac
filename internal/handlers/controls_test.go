package handlers

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tentkids/internal/gate"
	"tentkids/internal/i18n"
	"tentkids/internal/kv"
	"tentkids/internal/store"
	"tentkids/internal/usage"
)

type controlsFixture struct {
	router *gin.Engine
	store  *store.Store
	gate   *gate.Gate
	timer  *usage.Timer
	now    time.Time
}

func newControls(t *testing.T) *controlsFixture {
	t.Helper()
	f := &controlsFixture{now: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)}
	clock := func() time.Time { return f.now }

	f.store = store.New(kv.NewMemory(), i18n.MustLoad(), zap.NewNop(), store.WithClock(clock))
	t.Cleanup(func() { f.store.Close() })
	require.NoError(t, f.store.Load(context.Background()))

	f.gate = gate.New(zap.NewNop(), gate.WithClock(clock), gate.WithRand(rand.New(rand.NewPCG(3, 4))))
	f.timer = usage.NewTimer(f.store, 30*time.Minute, clock, zap.NewNop())
	f.router = NewRouter(zap.NewNop(),
		NewHealthHandler(kv.NewMemory(), nil, f.store),
		NewStatusHandler(f.store, f.gate, f.timer),
		NewControlHandler(f.store, f.gate, f.timer, zap.NewNop()),
	)
	return f
}

func (f *controlsFixture) post(t *testing.T, path, body string) (int, map[string]any) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	f.router.ServeHTTP(w, req)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w.Code, resp
}

func (f *controlsFixture) answer(t *testing.T, n int) (int, map[string]any) {
	t.Helper()
	return f.post(t, "/gate/answer", `{"answer":"`+strconv.Itoa(n)+`"}`)
}

func TestGateAnswerPassesAndIsSaved(t *testing.T) {
	f := newControls(t)

	code, _ := f.post(t, "/gate/open", "")
	require.Equal(t, http.StatusOK, code)

	code, resp := f.answer(t, f.gate.State().Problem.Answer())
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "correct", resp["result"])

	rec := f.store.GateRecord()
	assert.True(t, rec.PassValid(f.now))
}

func TestGateLockoutOverHTTP(t *testing.T) {
	f := newControls(t)

	for i := 0; i < gate.MaxAttempts; i++ {
		code, resp := f.answer(t, -1)
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, "incorrect", resp["result"])
	}
	assert.Equal(t, f.now.Add(gate.LockoutDuration), f.store.GateRecord().LockedUntil)

	code, resp := f.answer(t, f.gate.State().Problem.Answer())
	assert.Equal(t, http.StatusLocked, code)
	assert.Equal(t, "locked", resp["result"])

	code, _ = f.post(t, "/gate/open", "")
	assert.Equal(t, http.StatusLocked, code)

	// the worker tick ends the lockout once the clock passes it
	f.now = f.now.Add(gate.LockoutDuration)
	require.True(t, f.gate.Tick())
	code, _ = f.post(t, "/gate/open", "")
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, f.store.GateRecord().LockedUntil.IsZero())
}

func TestGateAnswerRejectsBadBody(t *testing.T) {
	f := newControls(t)
	code, resp := f.post(t, "/gate/answer", "{")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, resp, "error")
}

func TestDismissBreakRestartsSession(t *testing.T) {
	f := newControls(t)

	f.now = f.now.Add(31 * time.Minute)
	require.True(t, f.timer.Check())
	assert.False(t, f.timer.Check())

	code, resp := f.post(t, "/break/dismiss", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, resp["break_due"])
	assert.Equal(t, f.now, f.store.SessionStart())

	// a full period later the reminder fires again
	f.now = f.now.Add(30 * time.Minute)
	assert.True(t, f.timer.Check())
}
