package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishDeliversToEverySubscriber(t *testing.T) {
	h := NewHub(4)
	a := h.Subscribe()
	b := h.Subscribe()
	defer a.Close()
	defer b.Close()

	ev := Event{Type: Changed, Slice: "posts", At: time.Unix(10, 0)}
	h.Publish(ev)

	assert.Equal(t, ev, <-a.C)
	assert.Equal(t, ev, <-b.C)
}

func TestCloseStopsDelivery(t *testing.T) {
	h := NewHub(4)
	sub := h.Subscribe()
	sub.Close()
	sub.Close()

	h.Publish(Event{Type: Changed})
	_, ok := <-sub.C
	assert.False(t, ok)
	assert.Equal(t, 0, h.Len())
}

func TestSlowSubscriberIsDropped(t *testing.T) {
	h := NewHub(1)
	slow := h.Subscribe()
	fast := h.Subscribe()

	h.Publish(Event{Type: Changed, Slice: "posts"})
	<-fast.C
	h.Publish(Event{Type: Changed, Slice: "stories"})

	require.Equal(t, 1, h.Len())

	ev, ok := <-slow.C
	assert.True(t, ok)
	assert.Equal(t, "posts", ev.Slice)
	_, ok = <-slow.C
	assert.False(t, ok)

	ev = <-fast.C
	assert.Equal(t, "stories", ev.Slice)
	fast.Close()
}

func TestHubClose(t *testing.T) {
	h := NewHub(0)
	sub := h.Subscribe()
	h.Close()
	_, ok := <-sub.C
	assert.False(t, ok)
	sub.Close()
}

func TestSubscribeAfterCloseIsClosed(t *testing.T) {
	h := NewHub(4)
	h.Close()

	sub := h.Subscribe()
	select {
	case _, ok := <-sub.C:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("subscription after close was left open")
	}
	assert.Zero(t, h.Len())

	h.Publish(Event{Type: Changed})
	sub.Close()
}
