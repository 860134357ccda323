package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"ytblog/app/database"
	"ytblog/app/transcript"
	"ytblog/app/transform"
	"ytblog/app/youtube"
)

// In-memory doubles for the repository and upstream interfaces.

type memVideoRepo struct {
	mu     sync.Mutex
	videos map[string]*database.ProcessedVideo
}

func newMemVideoRepo() *memVideoRepo {
	return &memVideoRepo{videos: make(map[string]*database.ProcessedVideo)}
}

func (m *memVideoRepo) ClaimVideo(videoID string) (*database.ProcessedVideo, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	v, ok := m.videos[videoID]
	if !ok {
		v = &database.ProcessedVideo{
			ID:        uuid.NewString(),
			VideoID:   videoID,
			Status:    database.VideoStatusProcessing,
			CreatedAt: now,
			UpdatedAt: now,
		}
		m.videos[videoID] = v
		copied := *v
		return &copied, true, nil
	}

	if v.Status == database.VideoStatusPending || v.Status == database.VideoStatusFailed {
		v.Status = database.VideoStatusProcessing
		v.ErrorMessage = nil
		v.ProcessedAt = nil
		v.UpdatedAt = now
		copied := *v
		return &copied, true, nil
	}

	copied := *v
	return &copied, false, nil
}

func (m *memVideoRepo) GetVideoByID(videoID string) (*database.ProcessedVideo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.videos[videoID]
	if !ok {
		return nil, nil
	}
	copied := *v
	return &copied, nil
}

func (m *memVideoRepo) ListVideos(limit int) ([]database.VideoWithPost, error) {
	return nil, nil
}

func (m *memVideoRepo) GetVideoStats() (*database.VideoStats, error) {
	return &database.VideoStats{}, nil
}

func (m *memVideoRepo) SetVideoTitle(videoID string, title string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.videos[videoID]; ok {
		v.VideoTitle = &title
	}
	return nil
}

func (m *memVideoRepo) MarkCompleted(videoID string, blogPostID string, processedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.videos[videoID]
	if !ok {
		return fmt.Errorf("no record for %s", videoID)
	}
	v.Status = database.VideoStatusCompleted
	v.BlogPostID = &blogPostID
	v.ErrorMessage = nil
	v.ProcessedAt = &processedAt
	return nil
}

func (m *memVideoRepo) MarkFailed(videoID string, message string, processedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.videos[videoID]
	if !ok {
		return fmt.Errorf("no record for %s", videoID)
	}
	v.Status = database.VideoStatusFailed
	v.ErrorMessage = &message
	v.ProcessedAt = &processedAt
	return nil
}

type memPostRepo struct {
	mu    sync.Mutex
	posts map[string]database.BlogPost
	slugs map[string]bool
}

func newMemPostRepo() *memPostRepo {
	return &memPostRepo{
		posts: make(map[string]database.BlogPost),
		slugs: make(map[string]bool),
	}
}

func (m *memPostRepo) SlugExists(slug string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slugs[slug], nil
}

func (m *memPostRepo) InsertPost(post database.BlogPost) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.slugs[post.Slug] {
		return fmt.Errorf("slug already taken: %s", post.Slug)
	}
	m.posts[post.ID] = post
	m.slugs[post.Slug] = true
	return nil
}

func (m *memPostRepo) GetPostByID(id string) (*database.BlogPost, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	post, ok := m.posts[id]
	if !ok {
		return nil, nil
	}
	return &post, nil
}

func (m *memPostRepo) GetPostCount() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.posts), nil
}

type stubMetadata struct {
	details map[string]*youtube.VideoDetails
	err     error
}

func (s *stubMetadata) GetVideoDetails(ctx context.Context, videoID string) (*youtube.VideoDetails, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.details[videoID], nil
}

type stubTranscripts struct {
	transcript *transcript.Transcript
	err        error
}

func (s *stubTranscripts) Fetch(ctx context.Context, videoID string) (*transcript.Transcript, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.transcript, nil
}

type countingTransformer struct {
	mu    sync.Mutex
	calls int
	last  transform.TransformRequest
	draft transform.BlogDraft
	err   error
}

func (c *countingTransformer) Transform(ctx context.Context, req transform.TransformRequest) (*transform.BlogDraft, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	c.last = req
	if c.err != nil {
		return nil, c.err
	}
	draft := c.draft
	return &draft, nil
}

func (c *countingTransformer) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}
