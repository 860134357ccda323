package youtube

import (
	"time"
)

// VideoDetails is the metadata the pipeline needs about a single video.
type VideoDetails struct {
	VideoID      string
	Title        string
	Description  string
	Duration     string // Human readable, e.g. "45:32"
	ThumbnailURL string
	ChannelID    string
	PublishedAt  string
}

// ChannelInfo is the metadata surfaced about a channel.
type ChannelInfo struct {
	ChannelID string
	Title     string
	CustomURL string
}

// FeedVideo is one entry of a channel's public Atom feed.
type FeedVideo struct {
	VideoID   string
	ChannelID string
	Title     string
	Published time.Time
}
