package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"tentkids/internal/gate"
	"tentkids/internal/metrics"
	"tentkids/internal/usage"
)

const GateInterval = time.Second

// Worker runs the two background polls: the parent gate lockout countdown
// and the usage break reminder.
type Worker struct {
	gate   *gate.Gate
	timer  *usage.Timer
	logger *zap.Logger

	gateInterval  time.Duration
	usageInterval time.Duration

	// OnUnlock and OnBreak are called from the worker goroutine.
	OnUnlock func()
	OnBreak  func()
}

func NewWorker(g *gate.Gate, timer *usage.Timer, logger *zap.Logger) *Worker {
	return &Worker{
		gate:          g,
		timer:         timer,
		logger:        logger,
		gateInterval:  GateInterval,
		usageInterval: usage.DefaultPollInterval,
	}
}

// SetIntervals overrides the poll periods. Zero keeps the current value.
func (w *Worker) SetIntervals(gateEvery, usageEvery time.Duration) {
	if gateEvery > 0 {
		w.gateInterval = gateEvery
	}
	if usageEvery > 0 {
		w.usageInterval = usageEvery
	}
}

func (w *Worker) Run(ctx context.Context) {
	gateTicker := time.NewTicker(w.gateInterval)
	defer gateTicker.Stop()
	usageTicker := time.NewTicker(w.usageInterval)
	defer usageTicker.Stop()

	w.logger.Info("worker started",
		zap.Duration("gate_interval", w.gateInterval),
		zap.Duration("usage_interval", w.usageInterval))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("worker stopped")
			return
		case <-gateTicker.C:
			w.pollGate()
		case <-usageTicker.C:
			w.pollUsage()
		}
	}
}

func (w *Worker) pollGate() {
	if w.gate == nil {
		return
	}
	start := time.Now()
	unlocked := w.gate.Tick()
	metrics.WorkerLatencySeconds.WithLabelValues("gate").Observe(time.Since(start).Seconds())

	if unlocked && w.OnUnlock != nil {
		w.OnUnlock()
	}
}

func (w *Worker) pollUsage() {
	if w.timer == nil {
		return
	}
	start := time.Now()
	fired := w.timer.Check()
	metrics.WorkerLatencySeconds.WithLabelValues("usage").Observe(time.Since(start).Seconds())

	if fired {
		w.logger.Info("time for a break", zap.Duration("elapsed", w.timer.Elapsed()))
		if w.OnBreak != nil {
			w.OnBreak()
		}
	}
}
