package worker

import (
	"context"
	"math/rand/v2"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tentkids/internal/gate"
	"tentkids/internal/i18n"
	"tentkids/internal/kv"
	"tentkids/internal/store"
	"tentkids/internal/usage"
)

type syncClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *syncClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *syncClock) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

type session struct {
	mu    sync.Mutex
	start time.Time
	clock *syncClock
}

func (s *session) SessionStart() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.start
}

func (s *session) ResetSessionTime() {
	s.mu.Lock()
	s.start = s.clock.Now()
	s.mu.Unlock()
}

func TestWorkerUnlocksGateAndFiresBreak(t *testing.T) {
	start := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	clock := &syncClock{t: start}

	g := gate.New(zap.NewNop(), gate.WithClock(clock.Now), gate.WithRand(rand.New(rand.NewPCG(3, 4))))
	for i := 0; i < gate.MaxAttempts; i++ {
		g.Answer(strconv.Itoa(g.State().Problem.Answer() + 1))
	}
	require.True(t, g.State().Locked)

	timer := usage.NewTimer(&session{start: start, clock: clock}, 30*time.Minute, clock.Now, zap.NewNop())

	w := NewWorker(g, timer, zap.NewNop())
	w.SetIntervals(5*time.Millisecond, 5*time.Millisecond)
	unlocked := make(chan struct{}, 1)
	breaks := make(chan struct{}, 1)
	w.OnUnlock = func() { unlocked <- struct{}{} }
	w.OnBreak = func() { breaks <- struct{}{} }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	clock.Set(start.Add(gate.LockoutDuration))
	select {
	case <-unlocked:
	case <-time.After(2 * time.Second):
		t.Fatal("gate never unlocked")
	}
	assert.False(t, g.State().Locked)
	assert.Equal(t, gate.MaxAttempts, g.State().Attempts)

	clock.Set(start.Add(30 * time.Minute))
	select {
	case <-breaks:
	case <-time.After(2 * time.Second):
		t.Fatal("break reminder never fired")
	}
	assert.True(t, timer.Showing())

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestWorkerEndsSavedLockout(t *testing.T) {
	start := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	clock := &syncClock{t: start}

	st := store.New(kv.NewMemory(), i18n.MustLoad(), zap.NewNop(), store.WithClock(clock.Now))
	defer st.Close()
	require.NoError(t, st.Load(context.Background()))
	st.SetGateRecord(gate.Record{LockedUntil: start.Add(gate.LockoutDuration)})

	// a gate started by another process picks the lockout up from the store
	g := gate.New(zap.NewNop(), gate.WithClock(clock.Now))
	g.Restore(st.GateRecord())
	require.True(t, g.State().Locked)

	w := NewWorker(g, nil, zap.NewNop())
	w.SetIntervals(5*time.Millisecond, time.Hour)
	unlocked := make(chan struct{}, 1)
	w.OnUnlock = func() {
		st.SetGateRecord(g.Record())
		unlocked <- struct{}{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	clock.Set(start.Add(gate.LockoutDuration))
	select {
	case <-unlocked:
	case <-time.After(2 * time.Second):
		t.Fatal("gate never unlocked")
	}
	assert.True(t, st.GateRecord().LockedUntil.IsZero())
	assert.Equal(t, gate.MaxAttempts, st.GateRecord().Attempts)
}

func TestWorkerWithoutComponents(t *testing.T) {
	w := NewWorker(nil, nil, zap.NewNop())
	w.SetIntervals(time.Millisecond, time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	w.Run(ctx)
}
