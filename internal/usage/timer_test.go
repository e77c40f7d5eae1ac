package usage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeSession struct {
	start  time.Time
	now    *time.Time
	resets int
}

func (f *fakeSession) SessionStart() time.Time { return f.start }

func (f *fakeSession) ResetSessionTime() {
	f.start = *f.now
	f.resets++
}

func setup() (*Timer, *fakeSession, *time.Time) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	sess := &fakeSession{start: now, now: &now}
	timer := NewTimer(sess, 0, func() time.Time { return now }, zap.NewNop())
	return timer, sess, &now
}

func TestFiresOnceAtThreshold(t *testing.T) {
	timer, _, now := setup()

	*now = now.Add(29*time.Minute + 59*time.Second)
	assert.False(t, timer.Check())

	*now = now.Add(time.Second)
	assert.True(t, timer.Check())
	assert.True(t, timer.Showing())

	*now = now.Add(10 * time.Minute)
	assert.False(t, timer.Check())
}

func TestDismissStartsNewSession(t *testing.T) {
	timer, sess, now := setup()

	*now = now.Add(31 * time.Minute)
	assert.True(t, timer.Check())
	timer.Dismiss()

	assert.False(t, timer.Showing())
	assert.Equal(t, 1, sess.resets)
	assert.Equal(t, time.Duration(0), timer.Elapsed())
	assert.False(t, timer.Check())

	*now = now.Add(DefaultBreakAfter)
	assert.True(t, timer.Check())
}
