package pipeline

import (
	"context"

	"ytblog/app/transcript"
	"ytblog/app/youtube"
)

// MetadataClient provides video metadata lookups. A nil result with nil
// error means the video does not exist upstream.
type MetadataClient interface {
	GetVideoDetails(ctx context.Context, videoID string) (*youtube.VideoDetails, error)
}

// TranscriptFetcher retrieves the caption transcript for a video.
type TranscriptFetcher interface {
	Fetch(ctx context.Context, videoID string) (*transcript.Transcript, error)
}
