package store

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"tentkids/internal/kv"
	"tentkids/internal/metrics"
)

type opKind int

const (
	opSet opKind = iota
	opRemove
	opClear
	opBarrier
)

type op struct {
	kind  opKind
	slice string
	value string
	done  chan struct{}
}

// persister applies kv writes one at a time in the order they were queued,
// so the stored value of a slice always ends at its latest in-memory value.
type persister struct {
	kv      kv.Store
	timeout time.Duration
	logger  *zap.Logger

	mu      sync.Mutex
	ops     []op
	closed  bool
	signal  chan struct{}
	stopped chan struct{}
}

func newPersister(store kv.Store, timeout time.Duration, logger *zap.Logger) *persister {
	p := &persister{
		kv:      store,
		timeout: timeout,
		logger:  logger,
		signal:  make(chan struct{}, 1),
		stopped: make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *persister) enqueue(o op) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return false
	}
	p.ops = append(p.ops, o)
	metrics.PersistQueueDepth.Inc()

	select {
	case p.signal <- struct{}{}:
	default:
	}
	return true
}

func (p *persister) next() (op, bool, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.ops) == 0 {
		return op{}, false, p.closed
	}
	o := p.ops[0]
	p.ops[0] = op{}
	p.ops = p.ops[1:]
	if len(p.ops) == 0 {
		p.ops = nil
	}
	metrics.PersistQueueDepth.Dec()
	return o, true, false
}

func (p *persister) run() {
	defer close(p.stopped)
	for {
		o, ok, closed := p.next()
		if !ok {
			if closed {
				return
			}
			<-p.signal
			continue
		}
		p.apply(o)
	}
}

func (p *persister) apply(o op) {
	if o.kind == opBarrier {
		close(o.done)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	start := time.Now()
	var err error
	switch o.kind {
	case opSet:
		err = p.kv.Set(ctx, o.slice, o.value)
	case opRemove:
		err = p.kv.Remove(ctx, o.slice)
	case opClear:
		err = p.kv.Clear(ctx)
	}
	metrics.PersistLatencySeconds.Observe(time.Since(start).Seconds())

	label := o.slice
	if o.kind == opClear {
		label = "*"
	}
	if err != nil {
		metrics.PersistWritesTotal.WithLabelValues(label, "error").Inc()
		p.logger.Error("failed to persist slice", zap.String("slice", label), zap.Error(err))
		return
	}
	metrics.PersistWritesTotal.WithLabelValues(label, "ok").Inc()
}

// flush waits until every op queued before the call has been applied.
func (p *persister) flush(ctx context.Context) error {
	done := make(chan struct{})
	if !p.enqueue(op{kind: opBarrier, done: done}) {
		// closed: Close already waited for the drain
		<-p.stopped
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting ops and waits for the queue to drain.
func (p *persister) Close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		select {
		case p.signal <- struct{}{}:
		default:
		}
	}
	p.mu.Unlock()
	<-p.stopped
}

// Flush blocks until every write queued so far has reached the kv store.
func (s *Store) Flush(ctx context.Context) error {
	return s.persister.flush(ctx)
}

// saveJSON queues v as the new value of slice. Must be called with s.mu held
// so the queue order matches the mutation order.
func (s *Store) saveJSON(slice string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("failed to encode slice", zap.String("slice", slice), zap.Error(err))
		return
	}
	s.saveRaw(slice, string(data))
}

func (s *Store) saveRaw(slice, value string) {
	if !s.persister.enqueue(op{kind: opSet, slice: slice, value: value}) {
		s.logger.Warn("store closed, dropping write", zap.String("slice", slice))
	}
}

func (s *Store) removeSlice(slice string) {
	if !s.persister.enqueue(op{kind: opRemove, slice: slice}) {
		s.logger.Warn("store closed, dropping remove", zap.String("slice", slice))
	}
}

func (s *Store) clearAll() {
	if !s.persister.enqueue(op{kind: opClear}) {
		s.logger.Warn("store closed, dropping clear")
	}
}
