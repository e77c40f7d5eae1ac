// Package gate implements the arithmetic challenge a parent must solve
// before friend requests can be sent.
package gate

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"tentkids/internal/metrics"
)

const (
	MaxAttempts     = 3
	LockoutDuration = 300 * time.Second
	// PassValidity is how long a correct answer authorises a friend request.
	PassValidity = 5 * time.Minute
)

var (
	ErrLocked       = errors.New("parent gate is locked")
	ErrGateRequired = errors.New("parent gate must be passed first")
)

type Op string

const (
	OpAdd Op = "+"
	OpMul Op = "*"
)

type Problem struct {
	A  int `json:"a"`
	B  int `json:"b"`
	Op Op  `json:"op"`
}

func (p Problem) Answer() int {
	if p.Op == OpMul {
		return p.A * p.B
	}
	return p.A + p.B
}

func (p Problem) String() string {
	op := "+"
	if p.Op == OpMul {
		op = "×"
	}
	return fmt.Sprintf("%d %s %d = ?", p.A, op, p.B)
}

type Result int

const (
	// Ignored means the answer was empty and nothing changed.
	Ignored Result = iota
	Correct
	Incorrect
	// Locked means the answer arrived during a lockout and was not counted.
	Locked
)

func (r Result) String() string {
	switch r {
	case Correct:
		return "correct"
	case Incorrect:
		return "incorrect"
	case Locked:
		return "locked"
	default:
		return "ignored"
	}
}

// State is what a UI needs to render the gate.
type State struct {
	Problem     Problem   `json:"problem"`
	Attempts    int       `json:"attempts"`
	Locked      bool      `json:"locked"`
	LockedUntil time.Time `json:"lockedUntil,omitempty"`
	// RemainingSeconds is the lockout countdown, rounded up.
	RemainingSeconds int  `json:"remainingSeconds"`
	Passed           bool `json:"passed"`
}

// Record is the part of the gate that outlives a process.
type Record struct {
	Attempts    int       `json:"attempts"`
	LockedUntil time.Time `json:"lockedUntil,omitempty"`
	PassedAt    time.Time `json:"passedAt,omitempty"`
}

func (r Record) IsZero() bool {
	return r.Attempts == 0 && r.LockedUntil.IsZero() && r.PassedAt.IsZero()
}

// PassValid reports whether the last correct answer is recent enough to
// authorise a friend request at now.
func (r Record) PassValid(now time.Time) bool {
	if r.PassedAt.IsZero() || now.Before(r.PassedAt) {
		return false
	}
	return now.Before(r.PassedAt.Add(PassValidity))
}

type Option func(*Gate)

func WithClock(now func() time.Time) Option {
	return func(g *Gate) { g.now = now }
}

func WithRand(r *rand.Rand) Option {
	return func(g *Gate) { g.rng = r }
}

type Gate struct {
	mu        sync.Mutex
	rng       *rand.Rand
	now       func() time.Time
	logger    *zap.Logger
	problem   Problem
	attempts  int
	locked    bool
	lockUntil time.Time
	passed    bool
	passedAt  time.Time
}

func New(logger *zap.Logger, opts ...Option) *Gate {
	g := &Gate{
		now:      time.Now,
		logger:   logger,
		attempts: MaxAttempts,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.rng == nil {
		g.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	g.problem = g.generate()
	return g
}

// generate draws an addition of two numbers in [10,49] six times in ten,
// otherwise a multiplication of two numbers in [2,10].
func (g *Gate) generate() Problem {
	if g.rng.Float64() > 0.4 {
		return Problem{A: 10 + g.rng.IntN(40), B: 10 + g.rng.IntN(40), Op: OpAdd}
	}
	return Problem{A: 2 + g.rng.IntN(9), B: 2 + g.rng.IntN(9), Op: OpMul}
}

// Open prepares the gate for display: a fresh problem and full attempts.
// An active lockout is kept.
func (g *Gate) Open() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.expireLocked(g.now())
	if g.locked {
		return ErrLocked
	}
	g.problem = g.generate()
	g.attempts = MaxAttempts
	g.passed = false
	g.passedAt = time.Time{}
	return nil
}

// Answer checks input against the current problem. A wrong answer costs one
// attempt and draws a new problem; the last wrong answer starts the lockout.
func (g *Gate) Answer(input string) Result {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	g.expireLocked(now)

	res := g.answerLocked(strings.TrimSpace(input), now)
	metrics.GateAnswersTotal.WithLabelValues(res.String()).Inc()
	return res
}

func (g *Gate) answerLocked(input string, now time.Time) Result {
	if g.locked {
		return Locked
	}
	if input == "" {
		return Ignored
	}

	n, ok := parseLeadingInt(input)
	if ok && n == g.problem.Answer() {
		g.passed = true
		g.passedAt = now
		return Correct
	}

	g.attempts--
	if g.attempts <= 0 {
		g.attempts = 0
		g.locked = true
		g.lockUntil = now.Add(LockoutDuration)
		metrics.GateLockoutsTotal.Inc()
		g.logger.Info("parent gate locked", zap.Time("until", g.lockUntil))
		return Incorrect
	}
	g.problem = g.generate()
	return Incorrect
}

// parseLeadingInt reads an optional sign and the digits that follow it,
// ignoring any trailing text, so "12abc" reads as 12.
func parseLeadingInt(s string) (int, bool) {
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Tick ends an expired lockout. It reports whether the gate unlocked.
func (g *Gate) Tick() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.expireLocked(g.now())
}

func (g *Gate) expireLocked(now time.Time) bool {
	if !g.locked || now.Before(g.lockUntil) {
		return false
	}
	g.locked = false
	g.lockUntil = time.Time{}
	g.attempts = MaxAttempts
	g.problem = g.generate()
	g.logger.Info("parent gate unlocked")
	return true
}

func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()

	st := State{
		Problem:  g.problem,
		Attempts: g.attempts,
		Locked:   g.locked,
		Passed:   g.passed,
	}
	if g.locked {
		st.LockedUntil = g.lockUntil
		remaining := g.lockUntil.Sub(g.now())
		if remaining > 0 {
			st.RemainingSeconds = int(math.Ceil(remaining.Seconds()))
		}
	}
	return st
}

// Record snapshots the lockout and pass so another process can pick them up.
func (g *Gate) Record() Record {
	g.mu.Lock()
	defer g.mu.Unlock()
	r := Record{Attempts: g.attempts, PassedAt: g.passedAt}
	if g.locked {
		r.LockedUntil = g.lockUntil
	}
	return r
}

// Restore loads a saved record. A lockout that has already run out is
// dropped and the current problem kept.
func (g *Gate) Restore(r Record) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.passedAt = r.PassedAt
	g.passed = !r.PassedAt.IsZero()

	if !r.LockedUntil.IsZero() && g.now().Before(r.LockedUntil) {
		g.locked = true
		g.lockUntil = r.LockedUntil
		g.attempts = 0
		return
	}

	g.locked = false
	g.lockUntil = time.Time{}
	g.attempts = r.Attempts
	if g.attempts <= 0 || g.attempts > MaxAttempts {
		g.attempts = MaxAttempts
	}
}
