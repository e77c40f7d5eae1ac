package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"tentkids/internal/events"
	"tentkids/internal/i18n"
	"tentkids/internal/kv"
	"tentkids/internal/models"
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func sequentialIDs() func() string {
	var n atomic.Int64
	return func() string {
		return fmt.Sprintf("id-%d", n.Add(1))
	}
}

func newTestStore(t *testing.T, backend kv.Store) (*Store, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: epoch}
	s := New(backend, i18n.MustLoad(), zaptest.NewLogger(t),
		WithClock(clock.Now),
		WithIDGenerator(sequentialIDs()),
		WithPersistTimeout(time.Second),
	)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Load(context.Background()))
	return s, clock
}

func signIn(s *Store) models.Profile {
	p := models.Profile{ID: "u1", Nickname: "Kid", AvatarID: "cupcake", TentColor: "#FFF8E1", CreatedAt: epoch}
	s.SetProfile(&p)
	return p
}

func flush(t *testing.T, s *Store) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Flush(ctx))
}

func stored(t *testing.T, backend kv.Store, slice string) (string, bool) {
	t.Helper()
	v, ok, err := backend.Get(context.Background(), slice)
	require.NoError(t, err)
	return v, ok
}

type faultyKV struct {
	*kv.Memory
	getErr error
	setErr error
}

func (f *faultyKV) Get(ctx context.Context, key string) (string, bool, error) {
	if f.getErr != nil {
		return "", false, f.getErr
	}
	return f.Memory.Get(ctx, key)
}

func (f *faultyKV) Set(ctx context.Context, key, value string) error {
	if f.setErr != nil {
		return f.setErr
	}
	return f.Memory.Set(ctx, key, value)
}

// hangingKV blocks every write until its context expires.
type hangingKV struct {
	*kv.Memory
	calls atomic.Int32
}

func (h *hangingKV) Set(ctx context.Context, key, value string) error {
	h.calls.Add(1)
	<-ctx.Done()
	return ctx.Err()
}

func TestLoadWithNothingStoredUsesSeeds(t *testing.T) {
	mem := kv.NewMemory()
	s := New(mem, i18n.MustLoad(), zaptest.NewLogger(t), WithClock(func() time.Time { return epoch }))
	defer s.Close()

	assert.True(t, s.Loading())
	require.NoError(t, s.Load(context.Background()))
	assert.False(t, s.Loading())

	snap := s.Snapshot()
	require.Len(t, snap.Posts, 3)
	assert.Equal(t, []string{"sp1", "sp2", "sp3"}, []string{snap.Posts[0].ID, snap.Posts[1].ID, snap.Posts[2].ID})
	assert.Len(t, snap.Videos, 4)
	assert.Len(t, snap.Stories, 2)
	assert.Nil(t, snap.Profile)
	assert.False(t, snap.Onboarded)
	assert.False(t, snap.AgreedTerms)
	assert.Empty(t, snap.Friends)
	assert.Empty(t, snap.Notifications)
	assert.Equal(t, models.LanguageArabic, snap.Language)
	assert.True(t, s.IsRTL())

	assert.Equal(t, SeedPosts(epoch), snap.Posts)
	assert.Equal(t, epoch.Add(-time.Hour), snap.Posts[0].CreatedAt)
}

func TestLoadReadsStoredSlices(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	require.NoError(t, mem.Set(ctx, SliceLanguage, "en"))
	require.NoError(t, mem.Set(ctx, SliceProfile, `{"id":"u9","nickname":"Sami","avatarId":"bear","tentColor":"","tentGlow":"","status":"","friendCount":2,"createdAt":"2026-01-01T00:00:00Z"}`))
	require.NoError(t, mem.Set(ctx, SliceOnboarded, "true"))
	require.NoError(t, mem.Set(ctx, SliceTerms, "true"))
	require.NoError(t, mem.Set(ctx, SlicePosts, "[]"))
	require.NoError(t, mem.Set(ctx, SliceFriends, `[{"id":"r1","fromId":"x","fromNickname":"Lulu","fromAvatarId":"cat","status":"pending","createdAt":"2026-01-01T00:00:00Z"}]`))

	s, _ := newTestStore(t, mem)

	assert.Equal(t, models.LanguageEnglish, s.Language())
	assert.False(t, s.IsRTL())
	p, ok := s.Profile()
	require.True(t, ok)
	assert.Equal(t, "Sami", p.Nickname)
	assert.Equal(t, 2, p.FriendCount)
	assert.True(t, s.Onboarded())
	assert.True(t, s.AgreedTerms())
	assert.Empty(t, s.Posts())
	require.Len(t, s.Friends(), 1)
	assert.Equal(t, "Lulu", s.Friends()[0].FromNickname)
	// not stored, so seeded
	assert.Len(t, s.Videos(), 4)
}

func TestLoadMalformedSliceFallsBackToSeed(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	require.NoError(t, mem.Set(ctx, SlicePosts, "{not json"))
	require.NoError(t, mem.Set(ctx, SliceOnboarded, `"yes"`))
	require.NoError(t, mem.Set(ctx, SliceLanguage, "fr"))
	require.NoError(t, mem.Set(ctx, SliceTerms, "true"))

	s, _ := newTestStore(t, mem)

	assert.Equal(t, SeedPosts(epoch), s.Posts())
	assert.False(t, s.Onboarded())
	assert.Equal(t, models.LanguageArabic, s.Language())
	assert.True(t, s.AgreedTerms())
}

func TestLoadNullListsBecomeEmpty(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	require.NoError(t, mem.Set(ctx, SliceFriends, "null"))
	require.NoError(t, mem.Set(ctx, SliceProfile, "null"))

	s, _ := newTestStore(t, mem)
	assert.NotNil(t, s.Friends())
	assert.Empty(t, s.Friends())
	_, ok := s.Profile()
	assert.False(t, ok)
}

func TestLoadReadFailureKeepsAllDefaults(t *testing.T) {
	ctx := context.Background()
	backend := &faultyKV{Memory: kv.NewMemory(), getErr: errors.New("disk gone")}
	s := New(backend, i18n.MustLoad(), zaptest.NewLogger(t), WithClock(func() time.Time { return epoch }))
	defer s.Close()

	err := s.Load(ctx)
	assert.Error(t, err)
	assert.False(t, s.Loading())
	assert.Equal(t, Defaults(epoch), s.Snapshot())

	// the store stays usable
	signIn(s)
	_, ok := s.AddPost("still works", "", "")
	assert.True(t, ok)
}

func TestLoadHappensOnce(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	s, _ := newTestStore(t, mem)

	require.NoError(t, mem.Set(ctx, SliceLanguage, "en"))
	require.NoError(t, s.Load(ctx))
	assert.Equal(t, models.LanguageArabic, s.Language())
}

func TestOpenLoadsImmediately(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	require.NoError(t, mem.Set(ctx, SliceOnboarded, "true"))

	s := Open(ctx, mem, i18n.MustLoad(), zaptest.NewLogger(t))
	defer s.Close()
	assert.False(t, s.Loading())
	assert.True(t, s.Onboarded())
}

func populate(s *Store) {
	s.SetLanguage("en")
	signIn(s)
	s.SetOnboarded(true)
	s.SetAgreedTerms(true)
	post, _ := s.AddPost("Hello", "", "https://cdn.example/v.mp4")
	s.ReactToPost(post.ID, "heart")
	s.ReactToPost("sp2", "star")
	s.AddSafeComment("sp1", "safeComment3")
	s.ReportPost("sp3")
	s.AddStory("#FF6B8A", "tent")
	req, _ := s.SendFriendRequest("Lulu", "cat")
	s.SendFriendRequest("Tamer", "lion")
	s.AcceptFriend(req.ID)
	notifs := s.Notifications()
	s.MarkNotificationRead(notifs[len(notifs)-1].ID)
	s.ReactToVideo("v2", "fire")
}

func TestRoundTripReloadsIdenticalState(t *testing.T) {
	mem := kv.NewMemory()
	s, clock := newTestStore(t, mem)
	populate(s)
	flush(t, s)
	want := s.Snapshot()

	reloaded := New(mem, i18n.MustLoad(), zaptest.NewLogger(t), WithClock(clock.Now))
	defer reloaded.Close()
	require.NoError(t, reloaded.Load(context.Background()))

	assert.Equal(t, want, reloaded.Snapshot())
}

func TestRoundTripThroughSQLite(t *testing.T) {
	db, err := kv.OpenSQLite(filepath.Join(t.TempDir(), "state.db"), "@tk_")
	require.NoError(t, err)
	defer db.Close()

	s, clock := newTestStore(t, db)
	populate(s)
	flush(t, s)
	want := s.Snapshot()
	require.NoError(t, s.Close())

	reloaded := New(db, i18n.MustLoad(), zaptest.NewLogger(t), WithClock(clock.Now))
	defer reloaded.Close()
	require.NoError(t, reloaded.Load(context.Background()))

	assert.Equal(t, want, reloaded.Snapshot())
}

func TestPersistedValueIsTheFullSlice(t *testing.T) {
	mem := kv.NewMemory()
	s, _ := newTestStore(t, mem)
	signIn(s)

	for i := 0; i < 20; i++ {
		s.AddPost(fmt.Sprintf("post %d", i), "", "")
		s.ReactToPost("sp1", "star")
	}
	flush(t, s)

	raw, ok := stored(t, mem, SlicePosts)
	require.True(t, ok)
	var posts []models.Post
	require.NoError(t, json.Unmarshal([]byte(raw), &posts))
	assert.Equal(t, s.Posts(), posts)
	assert.Equal(t, "post 19", posts[0].Content)
}

func TestPersistFailureKeepsInMemoryState(t *testing.T) {
	backend := &faultyKV{Memory: kv.NewMemory(), setErr: errors.New("quota exceeded")}
	s, _ := newTestStore(t, backend)
	signIn(s)

	post, ok := s.AddPost("kept", "", "")
	require.True(t, ok)
	flush(t, s)

	assert.Equal(t, post.ID, s.Posts()[0].ID)
	_, found := stored(t, backend.Memory, SlicePosts)
	assert.False(t, found)
}

func TestPersistTimeoutUnblocksQueue(t *testing.T) {
	backend := &hangingKV{Memory: kv.NewMemory()}
	s := New(backend, i18n.MustLoad(), zaptest.NewLogger(t), WithPersistTimeout(20*time.Millisecond))
	defer s.Close()
	require.NoError(t, s.Load(context.Background()))

	s.SetOnboarded(true)
	s.SetAgreedTerms(true)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Flush(ctx))
	assert.Equal(t, int32(2), backend.calls.Load())
	assert.True(t, s.Onboarded())
}

func TestFlushHonoursContext(t *testing.T) {
	backend := &hangingKV{Memory: kv.NewMemory()}
	s := New(backend, i18n.MustLoad(), zaptest.NewLogger(t), WithPersistTimeout(time.Second))
	defer s.Close()

	s.SetOnboarded(true)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, s.Flush(ctx), context.DeadlineExceeded)
}

func TestCloseDrainsPendingWrites(t *testing.T) {
	mem := kv.NewMemory()
	s := New(mem, i18n.MustLoad(), zaptest.NewLogger(t))
	require.NoError(t, s.Load(context.Background()))

	s.SetOnboarded(true)
	require.NoError(t, s.Close())

	v, ok := stored(t, mem, SliceOnboarded)
	assert.True(t, ok)
	assert.Equal(t, "true", v)

	// writes after close stay in memory only
	s.SetAgreedTerms(true)
	assert.True(t, s.AgreedTerms())
	assert.NoError(t, s.Flush(context.Background()))
	_, ok = stored(t, mem, SliceTerms)
	assert.False(t, ok)
}

func TestSnapshotIsIsolated(t *testing.T) {
	s, _ := newTestStore(t, kv.NewMemory())
	signIn(s)

	snap := s.Snapshot()
	snap.Posts[0].Reactions["heart"][0] = "intruder"
	snap.Posts[0].Content = "changed"
	snap.Profile.Nickname = "changed"
	snap.Videos[0].Reactions["x"] = []string{"y"}

	fresh := s.Snapshot()
	assert.Equal(t, []string{"bot2"}, fresh.Posts[0].Reactions["heart"])
	assert.Equal(t, "Welcome to Tent-Kids! Have fun everyone!", fresh.Posts[0].Content)
	assert.Equal(t, "Kid", fresh.Profile.Nickname)
	assert.Empty(t, fresh.Videos[0].Reactions)
}

func TestSubscribeSeesChanges(t *testing.T) {
	s, _ := newTestStore(t, kv.NewMemory())
	sub := s.Subscribe()
	defer sub.Close()

	signIn(s)
	s.AddPost("hi", "", "")
	s.ReactToPost("missing", "heart")

	ev := <-sub.C
	assert.Equal(t, events.Changed, ev.Type)
	assert.Equal(t, SliceProfile, ev.Slice)
	ev = <-sub.C
	assert.Equal(t, SlicePosts, ev.Slice)
	assert.Equal(t, epoch, ev.At)

	select {
	case ev := <-sub.C:
		t.Fatalf("unexpected event for a no-op: %+v", ev)
	default:
	}
}

func TestSharedHub(t *testing.T) {
	hub := events.NewHub(8)
	sub := hub.Subscribe()
	defer sub.Close()

	s := New(kv.NewMemory(), i18n.MustLoad(), zaptest.NewLogger(t), WithHub(hub))
	require.NoError(t, s.Load(context.Background()))
	defer s.Close()

	ev := <-sub.C
	assert.Equal(t, events.Loaded, ev.Type)
}

func TestResetSessionTime(t *testing.T) {
	mem := kv.NewMemory()
	s, clock := newTestStore(t, mem)
	assert.Equal(t, epoch, s.SessionStart())

	clock.Advance(45 * time.Minute)
	s.ResetSessionTime()
	assert.Equal(t, epoch.Add(45*time.Minute), s.SessionStart())

	flush(t, s)
	assert.Equal(t, 0, mem.Len())
}
