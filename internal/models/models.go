package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents an account (and channel) on the platform.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FullName     string    `json:"fullname"`
	Avatar       string    `json:"avatar"`
	CoverImage   string    `json:"coverImage"`
	Password     string    `json:"-"`
	RefreshToken string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Sanitized returns a copy without the credential hash and rotation value.
func (u User) Sanitized() User {
	u.Password = ""
	u.RefreshToken = ""
	return u
}

// Video is a published content item.
type Video struct {
	ID                string    `json:"id"`
	OwnerID           string    `json:"owner"`
	VideoFile         string    `json:"videoFile"`
	VideoPublicID     string    `json:"-"`
	Thumbnail         string    `json:"thumbnail"`
	ThumbnailPublicID string    `json:"-"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	Duration          float64   `json:"duration"`
	Views             int64     `json:"views"`
	IsPublished       bool      `json:"isPublished"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// VideoUpdate lists the mutable fields of a video; nil fields are left untouched.
type VideoUpdate struct {
	Title             *string
	Description       *string
	Thumbnail         *string
	ThumbnailPublicID *string
}

// Empty reports whether the update carries no changes.
func (u VideoUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Thumbnail == nil
}

// WatchEntry is a single watch-history item.
type WatchEntry struct {
	Video    Video     `json:"video"`
	ViewedAt time.Time `json:"viewedAt"`
}

// Comment belongs to a video.
type Comment struct {
	ID        string    `json:"id"`
	VideoID   string    `json:"video"`
	OwnerID   string    `json:"owner"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Tweet is a short text post owned by a user.
type Tweet struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Playlist groups videos under a user-chosen name.
type Playlist struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Videos      []Video   `json:"videos"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Target identifies what an engagement relation points at.
type Target string

// Engagement targets. Channels can only be subscribed to.
const (
	TargetVideo   Target = "video"
	TargetComment Target = "comment"
	TargetTweet   Target = "tweet"
	TargetChannel Target = "channel"
)

// Likeable reports whether the target may be liked.
func (t Target) Likeable() bool {
	switch t {
	case TargetVideo, TargetComment, TargetTweet:
		return true
	default:
		return false
	}
}

// Like is an (actor, target) engagement relation.
type Like struct {
	ID         string    `json:"id"`
	LikedBy    string    `json:"likedBy"`
	TargetKind Target    `json:"targetKind"`
	TargetID   string    `json:"targetId"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Subscription is a (subscriber, channel) relation joined with the
// counterpart's public handle.
type Subscription struct {
	ID           string    `json:"id"`
	SubscriberID string    `json:"subscriber"`
	ChannelID    string    `json:"channel"`
	Username     string    `json:"username"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Asset references an object held by the content store.
type Asset struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
	Kind     string `json:"kind"`
}

// Asset kinds, as recorded by the content store.
const (
	AssetKindVideo = "video"
	AssetKindImage = "image"
)

// SessionTokens groups the bearer credentials issued to authenticated users.
type SessionTokens struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}

// ValidID reports whether id is a well-formed identifier.
func ValidID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

// NewID returns a fresh identifier.
func NewID() string {
	return uuid.NewString()
}
