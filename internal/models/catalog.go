package models

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

const MaxPostLength = 500

// SafeCommentKeys is the closed set of comment messages a child can send.
var SafeCommentKeys = []string{
	"safeComment1", "safeComment2", "safeComment3", "safeComment4",
	"safeComment5", "safeComment6", "safeComment7", "safeComment8",
}

var ReactionNames = []string{"heart", "star", "thumb-up", "emoticon-happy", "fire"}

var StoryColors = []string{"#FF6B8A", "#B388FF", "#4FC3F7", "#FFB347", "#66BB6A", "#FF80AB", "#7C4DFF", "#FF7043"}

var StoryIcons = []string{"star-four-points", "heart", "candy", "cupcake", "tent", "ice-cream", "cookie", "cake-variant"}

func IsSafeCommentKey(key string) bool {
	for _, k := range SafeCommentKeys {
		if k == key {
			return true
		}
	}
	return false
}

type AvatarCategory string

const (
	CategoryAnimals AvatarCategory = "animals"
	CategorySweets  AvatarCategory = "sweets"
)

type Avatar struct {
	ID       string
	Icon     string
	Color    string
	BgColor  string
	NameAr   string
	NameEn   string
	Category AvatarCategory
	Premium  bool
}

var Avatars = []Avatar{
	{"bear", "teddy-bear", "#8D6E63", "#EFEBE9", "دبدوب", "Bear", CategoryAnimals, false},
	{"cat", "cat", "#FF8A65", "#FBE9E7", "قطة", "Cat", CategoryAnimals, false},
	{"rabbit", "rabbit", "#F48FB1", "#FCE4EC", "أرنوب", "Bunny", CategoryAnimals, false},
	{"penguin", "penguin", "#546E7A", "#ECEFF1", "بطريق", "Penguin", CategoryAnimals, false},
	{"owl", "owl", "#7E57C2", "#EDE7F6", "بومة", "Owl", CategoryAnimals, false},
	{"dog", "dog", "#A1887F", "#EFEBE9", "كلبوش", "Dog", CategoryAnimals, false},
	{"fish", "fish", "#4FC3F7", "#E1F5FE", "سمكة", "Fish", CategoryAnimals, false},
	{"turtle", "turtle", "#66BB6A", "#E8F5E9", "سلحفاة", "Turtle", CategoryAnimals, false},
	{"cupcake", "cupcake", "#EC407A", "#FCE4EC", "كب كيك", "Cupcake", CategorySweets, false},
	{"candy", "candy", "#E91E63", "#FCE4EC", "حلوى", "Candy", CategorySweets, false},
	{"icecream", "ice-cream", "#4FC3F7", "#E1F5FE", "آيس كريم", "Ice Cream", CategorySweets, false},
	{"cookie", "cookie", "#D4A574", "#FFF3E0", "كوكيز", "Cookie", CategorySweets, false},
	{"cake", "cake-variant", "#FF7043", "#FBE9E7", "كعكة", "Cake", CategorySweets, false},
	{"lollipop", "candy-outline", "#AB47BC", "#F3E5F5", "مصاصة", "Lollipop", CategorySweets, false},
	{"ghost", "ghost", "#78909C", "#ECEFF1", "شبح", "Ghost", CategoryAnimals, true},
	{"unicorn", "unicorn", "#AB47BC", "#F3E5F5", "يونيكورن", "Unicorn", CategoryAnimals, true},
	{"star", "star-four-points", "#FFD54F", "#FFF8E1", "نجمة", "Star", CategorySweets, true},
}

func FindAvatar(id string) (Avatar, bool) {
	for _, a := range Avatars {
		if a.ID == id {
			return a, true
		}
	}
	return Avatar{}, false
}

// SelectableAvatars lists the non-premium avatars, optionally within one category.
func SelectableAvatars(category AvatarCategory) []Avatar {
	var out []Avatar
	for _, a := range Avatars {
		if a.Premium {
			continue
		}
		if category != "" && a.Category != category {
			continue
		}
		out = append(out, a)
	}
	return out
}

type TentColor struct {
	ID     string
	Color  string
	Glow   string
	NameAr string
	NameEn string
}

const DefaultTentColorID = "cream"

var TentColors = []TentColor{
	{"rose", "#F8BBD0", "#FF80AB", "وردي", "Rose"},
	{"lavender", "#E1BEE7", "#CE93D8", "لافندر", "Lavender"},
	{"sky", "#B3E5FC", "#81D4FA", "سماوي", "Sky"},
	{"mint", "#C8E6C9", "#A5D6A7", "نعناعي", "Mint"},
	{"lemon", "#FFF9C4", "#FFF176", "ليموني", "Lemon"},
	{"peach", "#FFCCBC", "#FFAB91", "خوخي", "Peach"},
	{"cream", "#FFF3E0", "#FFE0B2", "كريمي", "Cream"},
	{"coral", "#FFAB91", "#FF8A65", "مرجاني", "Coral"},
}

func FindTentColor(id string) (TentColor, bool) {
	for _, c := range TentColors {
		if c.ID == id {
			return c, true
		}
	}
	return TentColor{}, false
}

var (
	ErrUnknownAvatar = errors.New("unknown avatar")
	ErrPremiumAvatar = errors.New("premium avatar is not selectable")
)

type OnboardInput struct {
	UserID      string
	Nickname    string
	AvatarID    string
	TentColorID string
}

// NewProfile builds the profile created at the end of onboarding.
func NewProfile(in OnboardInput, lang Language, now time.Time) (Profile, error) {
	avatar, ok := FindAvatar(in.AvatarID)
	if !ok {
		return Profile{}, ErrUnknownAvatar
	}
	if avatar.Premium {
		return Profile{}, ErrPremiumAvatar
	}

	tent, ok := FindTentColor(in.TentColorID)
	if !ok {
		tent, _ = FindTentColor(DefaultTentColorID)
	}

	return Profile{
		ID:          in.UserID,
		Nickname:    NormalizeNickname(in.Nickname, lang),
		AvatarID:    avatar.ID,
		TentColor:   tent.Color,
		TentGlow:    tent.Glow,
		Status:      "",
		FriendCount: 0,
		CreatedAt:   now,
	}, nil
}

// NormalizeNickname trims and NFC-normalizes a nickname, substituting the
// localized default when nothing is left.
func NormalizeNickname(nickname string, lang Language) string {
	n := strings.TrimSpace(norm.NFC.String(nickname))
	if n != "" {
		return n
	}
	if lang == LanguageArabic {
		return "طفل"
	}
	return "Kid"
}
