// Package auth is the identity provider: parent accounts, password checks
// and the signed-in session.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tentkids/internal/metrics"
	"tentkids/pkg/validator"
)

var (
	ErrTermsNotAccepted   = errors.New("terms must be accepted to sign up")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotSignedIn        = errors.New("not signed in")
)

// Identity is the signed-in account as seen by the app.
type Identity struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

type Session struct {
	User      Identity  `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type EventType string

const (
	SignedIn  EventType = "SIGNED_IN"
	SignedOut EventType = "SIGNED_OUT"
)

type SessionEvent struct {
	Type    EventType
	Session *Session
}

type Provider struct {
	dir    Directory
	secret string
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger

	mu      sync.RWMutex
	session *Session
	subs    map[int]func(SessionEvent)
	nextSub int
}

func NewProvider(dir Directory, jwtSecret string, ttl time.Duration, logger *zap.Logger) *Provider {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Provider{
		dir:    dir,
		secret: jwtSecret,
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
		subs:   make(map[int]func(SessionEvent)),
	}
}

// SetClock replaces time.Now for token issue and expiry.
func (p *Provider) SetClock(now func() time.Time) {
	p.now = now
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUp creates the parent account and its child profile-role record, then
// signs in. Terms are checked before anything else. If the role record cannot
// be written the account stays created and the error is returned.
func (p *Provider) SignUp(ctx context.Context, email, password string, termsAccepted bool) (Identity, error) {
	if !termsAccepted {
		metrics.AuthRequestsTotal.WithLabelValues("sign_up", "invalid").Inc()
		return Identity{}, ErrTermsNotAccepted
	}
	if errs := validator.ValidateSignUp(email, password); errs.HasErrors() {
		metrics.AuthRequestsTotal.WithLabelValues("sign_up", "invalid").Inc()
		return Identity{}, errs
	}

	parentEmail := strings.TrimSpace(email)
	normalized := normalizeEmail(email)

	hash, err := HashPassword(password)
	if err != nil {
		metrics.AuthRequestsTotal.WithLabelValues("sign_up", "error").Inc()
		return Identity{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := p.dir.CreateUser(ctx, normalized, hash)
	if err != nil {
		metrics.AuthRequestsTotal.WithLabelValues("sign_up", "error").Inc()
		if errors.Is(err, ErrEmailTaken) {
			return Identity{}, err
		}
		return Identity{}, fmt.Errorf("failed to create user: %w", err)
	}

	now := p.now().UTC()
	role := ProfileRole{
		ID:              user.ID,
		Role:            RoleChild,
		Approved:        false,
		ParentEmail:     parentEmail,
		TermsAccepted:   true,
		TermsAcceptedAt: now,
		CreatedAt:       now,
	}
	if err := p.dir.CreateProfileRole(ctx, role); err != nil {
		metrics.AuthRequestsTotal.WithLabelValues("sign_up", "error").Inc()
		p.logger.Error("account created without profile role",
			zap.String("user_id", user.ID.String()),
			zap.Error(err))
		return Identity{}, fmt.Errorf("failed to create profile role: %w", err)
	}

	id := Identity{ID: user.ID, Email: user.Email}
	if err := p.startSession(id); err != nil {
		metrics.AuthRequestsTotal.WithLabelValues("sign_up", "error").Inc()
		return Identity{}, err
	}

	metrics.AuthRequestsTotal.WithLabelValues("sign_up", "ok").Inc()
	p.logger.Info("user signed up", zap.String("user_id", user.ID.String()), zap.String("email", user.Email))
	return id, nil
}

func (p *Provider) SignIn(ctx context.Context, email, password string) (Identity, error) {
	if errs := validator.ValidateSignIn(email, password); errs.HasErrors() {
		metrics.AuthRequestsTotal.WithLabelValues("sign_in", "invalid").Inc()
		return Identity{}, errs
	}

	user, err := p.dir.UserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, ErrUserNotFound) {
		metrics.AuthRequestsTotal.WithLabelValues("sign_in", "denied").Inc()
		return Identity{}, ErrInvalidCredentials
	}
	if err != nil {
		metrics.AuthRequestsTotal.WithLabelValues("sign_in", "error").Inc()
		return Identity{}, fmt.Errorf("failed to query user: %w", err)
	}

	if err := VerifyPassword(user.PasswordHash, password); err != nil {
		metrics.AuthRequestsTotal.WithLabelValues("sign_in", "denied").Inc()
		return Identity{}, ErrInvalidCredentials
	}

	id := Identity{ID: user.ID, Email: user.Email}
	if err := p.startSession(id); err != nil {
		metrics.AuthRequestsTotal.WithLabelValues("sign_in", "error").Inc()
		return Identity{}, err
	}

	metrics.AuthRequestsTotal.WithLabelValues("sign_in", "ok").Inc()
	p.logger.Info("user signed in", zap.String("user_id", user.ID.String()))
	return id, nil
}

func (p *Provider) startSession(id Identity) error {
	now := p.now()
	token, err := GenerateToken(id.ID, id.Email, p.secret, now, p.ttl)
	if err != nil {
		return err
	}
	sess := &Session{User: id, Token: token, ExpiresAt: now.Add(p.ttl).UTC().Truncate(time.Second)}

	p.mu.Lock()
	p.session = sess
	p.mu.Unlock()

	p.emit(SessionEvent{Type: SignedIn, Session: sess})
	return nil
}

func (p *Provider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	had := p.session != nil
	p.session = nil
	p.mu.Unlock()

	if !had {
		metrics.AuthRequestsTotal.WithLabelValues("sign_out", "invalid").Inc()
		return ErrNotSignedIn
	}
	metrics.AuthRequestsTotal.WithLabelValues("sign_out", "ok").Inc()
	p.emit(SessionEvent{Type: SignedOut})
	return nil
}

// Session returns the current session while its token is still valid.
func (p *Provider) Session() (*Session, bool) {
	p.mu.RLock()
	sess := p.session
	p.mu.RUnlock()

	if sess == nil {
		return nil, false
	}
	if _, err := ParseToken(sess.Token, p.secret, p.now()); err != nil {
		return nil, false
	}
	cp := *sess
	return &cp, true
}

// Restore adopts a token issued earlier, for example one saved by a CLI.
func (p *Provider) Restore(token string) (*Session, error) {
	claims, err := ParseToken(token, p.secret, p.now())
	if err != nil {
		return nil, err
	}
	sess := &Session{
		User:      Identity{ID: claims.UserID, Email: claims.Email},
		Token:     token,
		ExpiresAt: claims.ExpiresAt.UTC(),
	}

	p.mu.Lock()
	p.session = sess
	p.mu.Unlock()

	p.emit(SessionEvent{Type: SignedIn, Session: sess})
	cp := *sess
	return &cp, nil
}

// Subscribe registers fn for session changes and returns its cancel func.
func (p *Provider) Subscribe(fn func(SessionEvent)) func() {
	p.mu.Lock()
	id := p.nextSub
	p.nextSub++
	p.subs[id] = fn
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.subs, id)
		p.mu.Unlock()
	}
}

func (p *Provider) emit(ev SessionEvent) {
	p.mu.RLock()
	fns := make([]func(SessionEvent), 0, len(p.subs))
	for _, fn := range p.subs {
		fns = append(fns, fn)
	}
	p.mu.RUnlock()

	for _, fn := range fns {
		fn(ev)
	}
}
