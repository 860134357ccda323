package database

import (
	"time"
)

type ChannelRepository interface {
	// UpsertChannel inserts the channel or updates its name/URL. An existing
	// row keeps its webhook secret and active flag. Returns the stored row.
	UpsertChannel(ch ChannelSubscription) (*ChannelSubscription, error)
	GetChannelByID(channelID string) (*ChannelSubscription, error)
	ListChannels() ([]ChannelSubscription, error)
	GetChannelCount() (int, error)

	UpdateLease(channelID string, expiresAt time.Time) error
	SetActive(channelID string, active bool) error
	DeleteChannel(channelID string) error
}

type VideoRepository interface {
	// ClaimVideo atomically moves a video record to the processing state.
	// It creates the record when absent and resets a failed one. The claim
	// is refused (claimed == false) when the record is already processing
	// or completed; the returned row reflects the current state either way.
	ClaimVideo(videoID string) (*ProcessedVideo, bool, error)

	GetVideoByID(videoID string) (*ProcessedVideo, error)
	ListVideos(limit int) ([]VideoWithPost, error)
	GetVideoStats() (*VideoStats, error)

	SetVideoTitle(videoID string, title string) error
	MarkCompleted(videoID string, blogPostID string, processedAt time.Time) error
	MarkFailed(videoID string, message string, processedAt time.Time) error
}

type PostRepository interface {
	SlugExists(slug string) (bool, error)
	InsertPost(post BlogPost) error
	GetPostByID(id string) (*BlogPost, error)
	GetPostCount() (int, error)
}
