package store

import (
	"time"

	"tentkids/internal/events"
	"tentkids/internal/gate"
)

// GateRecord returns the saved parent gate lockout and pass.
func (s *Store) GateRecord() gate.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Gate
}

// SetGateRecord saves the parent gate so the next process sees the same
// lockout. It reports false when the record is unchanged.
func (s *Store) SetGateRecord(r gate.Record) bool {
	r.LockedUntil = stamp(r.LockedUntil)
	r.PassedAt = stamp(r.PassedAt)

	s.mu.Lock()
	cur := s.state.Gate
	applied := cur.Attempts != r.Attempts ||
		!cur.LockedUntil.Equal(r.LockedUntil) ||
		!cur.PassedAt.Equal(r.PassedAt)
	if applied {
		s.state.Gate = r
		s.saveJSON(SliceGate, r)
	}
	s.mu.Unlock()

	s.record("set_gate", applied)
	if applied {
		s.publish(events.Changed, SliceGate)
	}
	return applied
}

func stamp(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC().Truncate(time.Millisecond)
}
