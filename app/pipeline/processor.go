package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"ytblog/app/database"
	"ytblog/app/transform"
)

const (
	// Transcripts (or description fallbacks) shorter than this produce
	// fabricated articles, so they are rejected outright.
	minSourceChars = 100

	postSource = "youtube"

	// Pause between items of a batch to stay friendly with the scraping
	// and transformation upstreams.
	defaultBatchDelay = 2 * time.Second
)

// Result reports the outcome of one pipeline run. The processor never
// returns a Go error; all failure is carried here and on the stored record.
type Result struct {
	VideoID    string `json:"video_id"`
	Success    bool   `json:"success"`
	BlogPostID string `json:"blog_post_id,omitempty"`
	Err        string `json:"error,omitempty"`
}

// BatchResult aggregates a sequential multi-video run.
type BatchResult struct {
	Processed int      `json:"processed"`
	Failed    int      `json:"failed"`
	Results   []Result `json:"results"`
}

// Processor drives a video through metadata fetch, transcript extraction,
// content transformation and persistence, recording state transitions on
// the processed-video record.
type Processor struct {
	videoRepo   database.VideoRepository
	postRepo    database.PostRepository
	metadata    MetadataClient
	transcripts TranscriptFetcher
	transformer transform.Transformer
	batchDelay  time.Duration
}

func NewProcessor(videoRepo database.VideoRepository, postRepo database.PostRepository,
	metadata MetadataClient, transcripts TranscriptFetcher, transformer transform.Transformer) *Processor {
	return &Processor{
		videoRepo:   videoRepo,
		postRepo:    postRepo,
		metadata:    metadata,
		transcripts: transcripts,
		transformer: transformer,
		batchDelay:  defaultBatchDelay,
	}
}

// SetBatchDelay overrides the inter-item pause. Intended for tests.
func (p *Processor) SetBatchDelay(d time.Duration) {
	p.batchDelay = d
}

// ProcessVideo runs the full pipeline for one video. Re-running for a
// completed video is a no-op that returns the stored post ID.
func (p *Processor) ProcessVideo(ctx context.Context, videoID, channelID string) Result {
	record, claimed, err := p.videoRepo.ClaimVideo(videoID)
	if err != nil {
		slog.Error("Failed to claim video", "video_id", videoID, "error", err)
		return Result{VideoID: videoID, Err: fmt.Sprintf("Failed to claim video: %v", err)}
	}

	if !claimed {
		if record.Status == database.VideoStatusCompleted && record.BlogPostID != nil {
			slog.Debug("Video already completed, skipping", "video_id", videoID)
			return Result{VideoID: videoID, Success: true, BlogPostID: *record.BlogPostID}
		}
		return Result{VideoID: videoID, Err: "Video is already being processed"}
	}

	details, err := p.metadata.GetVideoDetails(ctx, videoID)
	if err != nil {
		return p.fail(videoID, fmt.Sprintf("Failed to fetch video metadata: %v", err))
	}
	if details == nil {
		return p.fail(videoID, "Video not found")
	}

	// Persist the title immediately so partial progress stays visible when
	// a later step fails.
	if err := p.videoRepo.SetVideoTitle(videoID, details.Title); err != nil {
		slog.Warn("Failed to persist video title", "video_id", videoID, "error", err)
	}

	if channelID == "" {
		channelID = details.ChannelID
	}

	source := ""
	tr, err := p.transcripts.Fetch(ctx, videoID)
	if err != nil {
		// Degraded mode, not a failure: articles can still be written from
		// a substantial description.
		slog.Warn("Transcript extraction failed, falling back to description",
			"video_id", videoID, "error", err)
		source = details.Description
	} else {
		source = tr.Text
	}

	if len(strings.TrimSpace(source)) < minSourceChars {
		return p.fail(videoID, "Insufficient transcript content to generate an article")
	}

	draft, err := p.transformer.Transform(ctx, transform.TransformRequest{
		Transcript:  source,
		Title:       details.Title,
		Description: details.Description,
	})
	if err != nil {
		return p.fail(videoID, fmt.Sprintf("Content transformation failed: %v", err))
	}

	slug, err := p.uniqueSlug(draft.Title, videoID)
	if err != nil {
		return p.fail(videoID, fmt.Sprintf("Failed to allocate slug: %v", err))
	}

	post := database.BlogPost{
		ID:                 uuid.NewString(),
		Title:              draft.Title,
		Slug:               slug,
		Excerpt:            draft.Excerpt,
		Content:            draft.Content,
		Category:           draft.Category,
		Tags:               draft.Tags,
		FeaturedImageURL:   details.ThumbnailURL,
		VideoID:            videoID,
		VideoDuration:      details.Duration,
		ReadingTimeMinutes: ReadingTime(draft.Content),
		IsPublished:        false,
		Source:             postSource,
		SourceChannelID:    channelID,
	}

	if err := p.postRepo.InsertPost(post); err != nil {
		return p.fail(videoID, fmt.Sprintf("Failed to save blog post: %v", err))
	}

	if err := p.videoRepo.MarkCompleted(videoID, post.ID, time.Now().UTC()); err != nil {
		return p.fail(videoID, fmt.Sprintf("Failed to record completion: %v", err))
	}

	slog.Info("Video processed",
		"video_id", videoID,
		"channel_id", channelID,
		"post_id", post.ID,
		"slug", slug)

	return Result{VideoID: videoID, Success: true, BlogPostID: post.ID}
}

// ProcessVideos runs the pipeline sequentially over a list of videos with a
// fixed pause between items.
func (p *Processor) ProcessVideos(ctx context.Context, videoIDs []string, channelID string) BatchResult {
	var batch BatchResult

	for i, videoID := range videoIDs {
		if i > 0 && p.batchDelay > 0 {
			select {
			case <-ctx.Done():
				return batch
			case <-time.After(p.batchDelay):
			}
		}

		result := p.ProcessVideo(ctx, videoID, channelID)
		if result.Success {
			batch.Processed++
		} else {
			batch.Failed++
		}
		batch.Results = append(batch.Results, result)
	}

	return batch
}

// uniqueSlug probes for a free slug, suffixing -1, -2, ... on collision.
func (p *Processor) uniqueSlug(title, videoID string) (string, error) {
	base := Slugify(title)
	if base == "" {
		base = Slugify(videoID)
	}
	if base == "" {
		base = "post"
	}

	candidate := base
	for i := 1; ; i++ {
		exists, err := p.postRepo.SlugExists(candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

func (p *Processor) fail(videoID, message string) Result {
	slog.Error("Video processing failed", "video_id", videoID, "reason", message)

	if err := p.videoRepo.MarkFailed(videoID, message, time.Now().UTC()); err != nil {
		slog.Error("Failed to record processing failure", "video_id", videoID, "error", err)
	}

	return Result{VideoID: videoID, Err: message}
}
