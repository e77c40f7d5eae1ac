// Package store is the single in-memory owner of the app's social state.
//
// Every mutator applies synchronously under the store lock, then hands the
// changed slice to a background persister. Callers never wait on the kv
// store, and persistence failures are logged rather than returned.
// Mutators that need an identity silently do nothing while no profile is set.
package store

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tentkids/internal/events"
	"tentkids/internal/gate"
	"tentkids/internal/i18n"
	"tentkids/internal/kv"
	"tentkids/internal/metrics"
	"tentkids/internal/models"
)

// Slice names. Each is persisted under its own key inside the kv namespace.
const (
	SliceLanguage      = "lang"
	SliceProfile       = "profile"
	SliceOnboarded     = "onboarded"
	SliceTerms         = "terms"
	SlicePosts         = "posts"
	SliceStories       = "stories"
	SliceFriends       = "friends"
	SliceNotifications = "notifs"
	SliceVideos        = "videos"
	SliceGate          = "gate"
)

// Slices lists every persisted slice in load order.
var Slices = []string{
	SliceLanguage, SliceProfile, SliceOnboarded, SliceTerms,
	SlicePosts, SliceStories, SliceFriends, SliceNotifications, SliceVideos,
	SliceGate,
}

const DefaultPersistTimeout = 5 * time.Second

// State is a complete copy of the domain data.
type State struct {
	Language      models.Language        `json:"language"`
	Profile       *models.Profile        `json:"profile"`
	Onboarded     bool                   `json:"onboarded"`
	AgreedTerms   bool                   `json:"agreedTerms"`
	Posts         []models.Post          `json:"posts"`
	Stories       []models.Story         `json:"stories"`
	Friends       []models.FriendRequest `json:"friends"`
	Notifications []models.Notification  `json:"notifications"`
	Videos        []models.VideoItem     `json:"videos"`
	Gate          gate.Record            `json:"gate"`
}

// Clone returns a deep copy that shares no mutable memory with s.
func (s State) Clone() State {
	out := s
	if s.Profile != nil {
		p := *s.Profile
		out.Profile = &p
	}
	out.Posts = clonePosts(s.Posts)
	out.Stories = append([]models.Story{}, s.Stories...)
	out.Friends = append([]models.FriendRequest{}, s.Friends...)
	out.Notifications = append([]models.Notification{}, s.Notifications...)
	out.Videos = cloneVideos(s.Videos)
	return out
}

// Defaults is the state used before load, when nothing is persisted and after sign-out.
func Defaults(now time.Time) State {
	return State{
		Language:      models.LanguageArabic,
		Posts:         SeedPosts(now),
		Stories:       SeedStories(now),
		Friends:       []models.FriendRequest{},
		Notifications: []models.Notification{},
		Videos:        SeedVideos(now),
	}
}

type Option func(*Store)

// WithClock replaces time.Now. Times are stored in UTC at millisecond precision.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) { s.clock = clock }
}

// WithIDGenerator replaces the uuid generator used for new entities.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// WithPersistTimeout bounds every single kv call.
func WithPersistTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.persistTimeout = d
		}
	}
}

// WithHub publishes change events to an existing hub.
func WithHub(hub *events.Hub) Option {
	return func(s *Store) { s.hub = hub }
}

type Store struct {
	kv             kv.Store
	table          *i18n.Table
	hub            *events.Hub
	logger         *zap.Logger
	clock          func() time.Time
	newID          func() string
	persistTimeout time.Duration

	mu           sync.RWMutex
	state        State
	loading      bool
	sessionStart time.Time

	loadOnce sync.Once
	loadErr  error

	persister *persister
}

// New builds a store holding the default state. Call Load once to read
// persisted slices.
func New(store kv.Store, table *i18n.Table, logger *zap.Logger, opts ...Option) *Store {
	s := &Store{
		kv:             store,
		table:          table,
		logger:         logger,
		clock:          time.Now,
		newID:          uuid.NewString,
		persistTimeout: DefaultPersistTimeout,
		loading:        true,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.hub == nil {
		s.hub = events.NewHub(events.DefaultBuffer)
	}

	now := s.now()
	s.state = Defaults(now)
	s.sessionStart = now
	s.persister = newPersister(store, s.persistTimeout, logger)
	return s
}

func (s *Store) now() time.Time {
	return s.clock().UTC().Truncate(time.Millisecond)
}

// Close drains pending writes and disconnects subscribers. The kv store is
// left open.
func (s *Store) Close() error {
	s.persister.Close()
	s.hub.Close()
	return nil
}

// Subscribe delivers an event after every applied mutation.
func (s *Store) Subscribe() *events.Subscription {
	return s.hub.Subscribe()
}

func (s *Store) publish(typ events.Type, slice string) {
	s.hub.Publish(events.Event{Type: typ, Slice: slice, At: s.now()})
}

func (s *Store) record(op string, applied bool) {
	metrics.MutationsTotal.WithLabelValues(op, metrics.Result(applied)).Inc()
}

// Snapshot returns a deep copy of the whole state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Loading is true until Load has attempted every slice.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Store) Language() models.Language {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Language
}

func (s *Store) IsRTL() bool {
	return i18n.IsRTL(s.Language())
}

// T resolves key for the current language, falling back to the key itself.
func (s *Store) T(key string) string {
	return s.table.Lookup(s.Language(), key)
}

func (s *Store) Profile() (models.Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.Profile == nil {
		return models.Profile{}, false
	}
	return *s.state.Profile, true
}

func (s *Store) Onboarded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Onboarded
}

func (s *Store) AgreedTerms() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.AgreedTerms
}

// Posts returns every post, reported ones included, newest first.
func (s *Store) Posts() []models.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clonePosts(s.state.Posts)
}

func (s *Store) Stories() []models.Story {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Story{}, s.state.Stories...)
}

func (s *Store) Friends() []models.FriendRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.FriendRequest{}, s.state.Friends...)
}

func (s *Store) Notifications() []models.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Notification{}, s.state.Notifications...)
}

func (s *Store) Videos() []models.VideoItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneVideos(s.state.Videos)
}

// SessionStart is the usage-timer epoch.
func (s *Store) SessionStart() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionStart
}

// ResetSessionTime restarts the usage-timer epoch. It is not persisted.
func (s *Store) ResetSessionTime() {
	s.mu.Lock()
	s.sessionStart = s.now()
	s.mu.Unlock()
	s.record("reset_session_time", true)
}

func clonePosts(in []models.Post) []models.Post {
	out := make([]models.Post, len(in))
	for i, p := range in {
		out[i] = p.Clone()
	}
	return out
}

func cloneVideos(in []models.VideoItem) []models.VideoItem {
	out := make([]models.VideoItem, len(in))
	for i, v := range in {
		out[i] = v.Clone()
	}
	return out
}
