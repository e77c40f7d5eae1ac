package models

import (
	"time"
)

type Language string

const (
	LanguageArabic  Language = "ar"
	LanguageEnglish Language = "en"
)

// Profile is the signed-in child's profile. Exactly one exists per device
// session; it is cleared on sign-out.
type Profile struct {
	ID          string    `json:"id"`
	Nickname    string    `json:"nickname"`
	AvatarID    string    `json:"avatarId"`
	TentColor   string    `json:"tentColor"`
	TentGlow    string    `json:"tentGlow"`
	Status      string    `json:"status"`
	FriendCount int       `json:"friendCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ProfileUpdate is a partial profile; nil fields are left unchanged.
type ProfileUpdate struct {
	Nickname    *string
	AvatarID    *string
	TentColor   *string
	TentGlow    *string
	Status      *string
	FriendCount *int
}

// Merge returns a copy of p with every non-nil field of u applied.
func (p Profile) Merge(u ProfileUpdate) Profile {
	if u.Nickname != nil {
		p.Nickname = *u.Nickname
	}
	if u.AvatarID != nil {
		p.AvatarID = *u.AvatarID
	}
	if u.TentColor != nil {
		p.TentColor = *u.TentColor
	}
	if u.TentGlow != nil {
		p.TentGlow = *u.TentGlow
	}
	if u.Status != nil {
		p.Status = *u.Status
	}
	if u.FriendCount != nil {
		p.FriendCount = *u.FriendCount
	}
	return p
}

// Author is the snapshot of a profile copied onto content at creation time.
// Later profile edits never reach it.
type Author struct {
	AuthorID       string `json:"authorId"`
	AuthorNickname string `json:"authorNickname"`
	AuthorAvatarID string `json:"authorAvatarId"`
}

func (p Profile) Author() Author {
	return Author{
		AuthorID:       p.ID,
		AuthorNickname: p.Nickname,
		AuthorAvatarID: p.AvatarID,
	}
}

type Post struct {
	ID string `json:"id"`
	Author
	Content   string        `json:"content"`
	ImageURL  string        `json:"imageUrl,omitempty"`
	VideoURL  string        `json:"videoUrl,omitempty"`
	Reactions Reactions     `json:"reactions"`
	Comments  []SafeComment `json:"comments"`
	CreatedAt time.Time     `json:"createdAt"`
	Reported  bool          `json:"reported"`
}

func (p Post) Clone() Post {
	p.Reactions = p.Reactions.Clone()
	if p.Comments != nil {
		p.Comments = append(make([]SafeComment, 0, len(p.Comments)), p.Comments...)
	}
	return p
}

// SafeComment carries a localization key from SafeCommentKeys, never free text.
type SafeComment struct {
	ID string `json:"id"`
	Author
	CommentKey string    `json:"commentKey"`
	CreatedAt  time.Time `json:"createdAt"`
}

type Story struct {
	ID string `json:"id"`
	Author
	Color     string    `json:"color"`
	IconName  string    `json:"iconName"`
	CreatedAt time.Time `json:"createdAt"`
}

type FriendStatus string

const (
	FriendPending  FriendStatus = "pending"
	FriendAccepted FriendStatus = "accepted"
	FriendRejected FriendStatus = "rejected"
)

type FriendRequest struct {
	ID           string       `json:"id"`
	FromID       string       `json:"fromId"`
	FromNickname string       `json:"fromNickname"`
	FromAvatarID string       `json:"fromAvatarId"`
	Status       FriendStatus `json:"status"`
	CreatedAt    time.Time    `json:"createdAt"`
}

type NotificationType string

const (
	NotificationReaction       NotificationType = "reaction"
	NotificationComment        NotificationType = "comment"
	NotificationFriendRequest  NotificationType = "friend_request"
	NotificationFriendAccepted NotificationType = "friend_accepted"
	NotificationSystem         NotificationType = "system"
)

type Notification struct {
	ID        string           `json:"id"`
	Type      NotificationType `json:"type"`
	TitleAr   string           `json:"titleAr"`
	TitleEn   string           `json:"titleEn"`
	MessageAr string           `json:"messageAr"`
	MessageEn string           `json:"messageEn"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"createdAt"`
}

func (n Notification) Title(lang Language) string {
	if lang == LanguageArabic {
		return n.TitleAr
	}
	return n.TitleEn
}

func (n Notification) Message(lang Language) string {
	if lang == LanguageArabic {
		return n.MessageAr
	}
	return n.MessageEn
}

type VideoItem struct {
	ID             string    `json:"id"`
	TitleAr        string    `json:"titleAr"`
	TitleEn        string    `json:"titleEn"`
	ThumbnailColor string    `json:"thumbnailColor"`
	IconName       string    `json:"iconName"`
	VideoURL       string    `json:"videoUrl"`
	Reactions      Reactions `json:"reactions"`
	Duration       string    `json:"duration"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (v VideoItem) Title(lang Language) string {
	if lang == LanguageArabic {
		return v.TitleAr
	}
	return v.TitleEn
}

func (v VideoItem) Clone() VideoItem {
	v.Reactions = v.Reactions.Clone()
	return v
}
