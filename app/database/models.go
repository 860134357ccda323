package database

import (
	"time"
)

// Processing states for a watched video. Transitions are monotonic except
// failed -> processing, which happens on a manual retry.
const (
	VideoStatusPending    = "pending"
	VideoStatusProcessing = "processing"
	VideoStatusCompleted  = "completed"
	VideoStatusFailed     = "failed"
)

type ChannelSubscription struct {
	ID                    string // Database UUID
	ChannelID             string // External YouTube channel ID (UC...), unique
	ChannelName           string
	ChannelURL            string
	WebhookSecret         string // HMAC key for verifying hub notifications
	IsActive              bool
	SubscriptionExpiresAt *time.Time // nil means the channel was never subscribed
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

type ProcessedVideo struct {
	ID           string
	VideoID      string // External YouTube video ID, unique
	VideoTitle   *string
	Status       string
	BlogPostID   *string
	ErrorMessage *string
	ProcessedAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type BlogPost struct {
	ID                 string
	Title              string
	Slug               string // Globally unique
	Excerpt            string
	Content            string
	Category           string
	Tags               []string
	FeaturedImageURL   string
	VideoID            string
	VideoDuration      string
	ReadingTimeMinutes int
	IsPublished        bool
	Source             string
	SourceChannelID    string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// VideoWithPost joins a processing record with its resulting post, if any.
type VideoWithPost struct {
	ProcessedVideo
	PostTitle *string
	PostSlug  *string
}

// VideoStats aggregates processing record counts for the stats endpoint.
type VideoStats struct {
	Total      int
	Processing int
	Completed  int
	Failed     int
}
