package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReactions_ToggleAddsOnce(t *testing.T) {
	r := Reactions{}
	r = r.Toggle("heart", "u1")

	assert.Equal(t, []string{"u1"}, r["heart"])
	assert.Equal(t, 1, r.Count("heart"))
	assert.True(t, r.Has("heart", "u1"))
}

func TestReactions_ToggleTwiceIsInvolution(t *testing.T) {
	orig := Reactions{"star": {"bot1"}}

	once := orig.Toggle("heart", "u1")
	twice := once.Toggle("heart", "u1")

	assert.Equal(t, orig, twice)
	_, present := twice["heart"]
	assert.False(t, present, "empty label must be deleted")
}

func TestReactions_ToggleDoesNotMutateReceiver(t *testing.T) {
	orig := Reactions{"heart": {"bot2"}}

	_ = orig.Toggle("heart", "u1")
	_ = orig.Toggle("heart", "bot2")

	assert.Equal(t, Reactions{"heart": {"bot2"}}, orig)
}

func TestReactions_ToggleRemovesOnlyActingUser(t *testing.T) {
	r := Reactions{"heart": {"a", "u1", "b"}}

	r = r.Toggle("heart", "u1")

	assert.Equal(t, []string{"a", "b"}, r["heart"])
}

func TestReactions_ToggleOnNil(t *testing.T) {
	var r Reactions
	out := r.Toggle("fire", "u1")
	assert.Equal(t, Reactions{"fire": {"u1"}}, out)
}

func TestProfile_MergeIsShallow(t *testing.T) {
	p := Profile{ID: "u1", Nickname: "Kid", AvatarID: "bear", Status: "hi", FriendCount: 2}
	nick := "Bunny"

	got := p.Merge(ProfileUpdate{Nickname: &nick})

	assert.Equal(t, "Bunny", got.Nickname)
	assert.Equal(t, "bear", got.AvatarID)
	assert.Equal(t, "hi", got.Status)
	assert.Equal(t, 2, got.FriendCount)
	assert.Equal(t, "Kid", p.Nickname)
}

func TestPost_CloneIsDeep(t *testing.T) {
	p := Post{ID: "p1", Reactions: Reactions{"heart": {"a"}}, Comments: []SafeComment{{ID: "c1"}}}

	c := p.Clone()
	c.Reactions["heart"][0] = "changed"
	c.Comments[0].ID = "changed"

	assert.Equal(t, "a", p.Reactions["heart"][0])
	assert.Equal(t, "c1", p.Comments[0].ID)
}

func TestPost_JSONShapeIsFlat(t *testing.T) {
	p := Post{
		ID:        "p1",
		Author:    Author{AuthorID: "u1", AuthorNickname: "Kid", AuthorAvatarID: "bear"},
		Content:   "Hello",
		Reactions: Reactions{},
		Comments:  []SafeComment{},
		CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "u1", raw["authorId"])
	assert.Equal(t, "Kid", raw["authorNickname"])
	assert.NotContains(t, raw, "imageUrl")
	assert.Equal(t, false, raw["reported"])
}

func TestIsSafeCommentKey(t *testing.T) {
	for _, k := range SafeCommentKeys {
		assert.True(t, IsSafeCommentKey(k))
	}
	assert.False(t, IsSafeCommentKey("you are silly"))
	assert.False(t, IsSafeCommentKey(""))
}

func TestNewProfile(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	p, err := NewProfile(OnboardInput{UserID: "u1", Nickname: "  Kiki ", AvatarID: "cat", TentColorID: "mint"}, LanguageEnglish, now)
	require.NoError(t, err)

	assert.Equal(t, "Kiki", p.Nickname)
	assert.Equal(t, "#C8E6C9", p.TentColor)
	assert.Equal(t, "#A5D6A7", p.TentGlow)
	assert.Equal(t, 0, p.FriendCount)
	assert.Equal(t, now, p.CreatedAt)
}

func TestNewProfile_Defaults(t *testing.T) {
	p, err := NewProfile(OnboardInput{UserID: "u1", AvatarID: "bear", TentColorID: "nope"}, LanguageArabic, time.Now())
	require.NoError(t, err)

	assert.Equal(t, "طفل", p.Nickname)
	assert.Equal(t, "#FFF3E0", p.TentColor)
}

func TestNewProfile_RejectsPremiumAndUnknownAvatars(t *testing.T) {
	_, err := NewProfile(OnboardInput{AvatarID: "unicorn"}, LanguageEnglish, time.Now())
	assert.ErrorIs(t, err, ErrPremiumAvatar)

	_, err = NewProfile(OnboardInput{AvatarID: "dragon"}, LanguageEnglish, time.Now())
	assert.ErrorIs(t, err, ErrUnknownAvatar)
}

func TestSelectableAvatars(t *testing.T) {
	sweets := SelectableAvatars(CategorySweets)
	assert.Len(t, sweets, 6)
	for _, a := range SelectableAvatars("") {
		assert.False(t, a.Premium)
	}
}
