package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ytblog/app/database"
	"ytblog/app/transcript"
	"ytblog/app/transform"
	"ytblog/app/youtube"
)

func longTranscript() *transcript.Transcript {
	text := strings.TrimSpace(strings.Repeat("every word counts toward the minimum ", 20))
	return &transcript.Transcript{Text: text}
}

func testDetails(videoID string) *youtube.VideoDetails {
	return &youtube.VideoDetails{
		VideoID:      videoID,
		Title:        "How to Buy a Business",
		Description:  "A short description.",
		Duration:     "45:32",
		ThumbnailURL: "https://i.ytimg.com/vi/abc/maxresdefault.jpg",
		ChannelID:    "UCabcdefghijklmnopqrstuv",
	}
}

func testDraft() transform.BlogDraft {
	return transform.BlogDraft{
		Title:    "How to Buy a Business",
		Excerpt:  "The essentials of buying a business.",
		Content:  strings.TrimSpace(strings.Repeat("word ", 400)),
		Category: "Buying a Business",
		Tags:     []string{"acquisition", "sba"},
	}
}

func newTestProcessor(videos *memVideoRepo, posts *memPostRepo,
	meta *stubMetadata, trs *stubTranscripts, tf *countingTransformer) *Processor {
	p := NewProcessor(videos, posts, meta, trs, tf)
	p.SetBatchDelay(0)
	return p
}

func TestProcessVideoHappyPath(t *testing.T) {
	videos := newMemVideoRepo()
	posts := newMemPostRepo()
	meta := &stubMetadata{details: map[string]*youtube.VideoDetails{"vid1": testDetails("vid1")}}
	trs := &stubTranscripts{transcript: longTranscript()}
	tf := &countingTransformer{draft: testDraft()}

	p := newTestProcessor(videos, posts, meta, trs, tf)
	result := p.ProcessVideo(context.Background(), "vid1", "")

	if !result.Success {
		t.Fatalf("Expected success, got error: %s", result.Err)
	}
	if result.BlogPostID == "" {
		t.Fatal("Expected a blog post ID")
	}

	post, err := posts.GetPostByID(result.BlogPostID)
	if err != nil || post == nil {
		t.Fatalf("Expected post to exist, got: %v %v", post, err)
	}
	if post.Slug != "how-to-buy-a-business" {
		t.Errorf("Unexpected slug: %s", post.Slug)
	}
	if post.IsPublished {
		t.Error("Expected post to be created as a draft")
	}
	if post.Source != "youtube" {
		t.Errorf("Unexpected source: %s", post.Source)
	}
	if post.SourceChannelID != "UCabcdefghijklmnopqrstuv" {
		t.Errorf("Expected channel ID from metadata, got: %s", post.SourceChannelID)
	}
	if post.ReadingTimeMinutes != 2 {
		t.Errorf("Expected reading time 2 for 400 words, got: %d", post.ReadingTimeMinutes)
	}

	record, _ := videos.GetVideoByID("vid1")
	if record.Status != database.VideoStatusCompleted {
		t.Errorf("Expected completed status, got: %s", record.Status)
	}
	if record.VideoTitle == nil || *record.VideoTitle != "How to Buy a Business" {
		t.Error("Expected video title to be persisted")
	}
	if record.ProcessedAt == nil {
		t.Error("Expected processedAt to be set")
	}
}

func TestProcessVideoIdempotent(t *testing.T) {
	videos := newMemVideoRepo()
	posts := newMemPostRepo()
	meta := &stubMetadata{details: map[string]*youtube.VideoDetails{"vid1": testDetails("vid1")}}
	trs := &stubTranscripts{transcript: longTranscript()}
	tf := &countingTransformer{draft: testDraft()}

	p := newTestProcessor(videos, posts, meta, trs, tf)

	first := p.ProcessVideo(context.Background(), "vid1", "")
	if !first.Success {
		t.Fatalf("First run failed: %s", first.Err)
	}

	second := p.ProcessVideo(context.Background(), "vid1", "")
	if !second.Success {
		t.Fatalf("Second run failed: %s", second.Err)
	}

	if second.BlogPostID != first.BlogPostID {
		t.Errorf("Expected same post ID, got %s and %s", first.BlogPostID, second.BlogPostID)
	}
	if tf.callCount() != 1 {
		t.Errorf("Expected exactly one transformation, got: %d", tf.callCount())
	}
	if count, _ := posts.GetPostCount(); count != 1 {
		t.Errorf("Expected exactly one post, got: %d", count)
	}
}

func TestProcessVideoSlugCollision(t *testing.T) {
	videos := newMemVideoRepo()
	posts := newMemPostRepo()
	meta := &stubMetadata{details: map[string]*youtube.VideoDetails{
		"vid1": testDetails("vid1"),
		"vid2": testDetails("vid2"),
		"vid3": testDetails("vid3"),
	}}
	trs := &stubTranscripts{transcript: longTranscript()}
	tf := &countingTransformer{draft: testDraft()}

	p := newTestProcessor(videos, posts, meta, trs, tf)

	wantSlugs := []string{"how-to-buy-a-business", "how-to-buy-a-business-1", "how-to-buy-a-business-2"}
	for i, videoID := range []string{"vid1", "vid2", "vid3"} {
		result := p.ProcessVideo(context.Background(), videoID, "")
		if !result.Success {
			t.Fatalf("Run %d failed: %s", i, result.Err)
		}
		post, _ := posts.GetPostByID(result.BlogPostID)
		if post.Slug != wantSlugs[i] {
			t.Errorf("Run %d: expected slug %q, got %q", i, wantSlugs[i], post.Slug)
		}
	}
}

func TestProcessVideoDescriptionFallback(t *testing.T) {
	details := testDetails("vid1")
	details.Description = strings.TrimSpace(strings.Repeat("a rich description with plenty of substance ", 10))

	videos := newMemVideoRepo()
	posts := newMemPostRepo()
	meta := &stubMetadata{details: map[string]*youtube.VideoDetails{"vid1": details}}
	trs := &stubTranscripts{err: transcript.ErrNoCaptions}
	tf := &countingTransformer{draft: testDraft()}

	p := newTestProcessor(videos, posts, meta, trs, tf)
	result := p.ProcessVideo(context.Background(), "vid1", "")

	if !result.Success {
		t.Fatalf("Expected fallback success, got: %s", result.Err)
	}
	if tf.last.Transcript != details.Description {
		t.Error("Expected description to be used as transcript source")
	}
}

func TestProcessVideoInsufficientContent(t *testing.T) {
	details := testDetails("vid1")
	details.Description = "too short"

	videos := newMemVideoRepo()
	posts := newMemPostRepo()
	meta := &stubMetadata{details: map[string]*youtube.VideoDetails{"vid1": details}}
	trs := &stubTranscripts{err: transcript.ErrNoCaptions}
	tf := &countingTransformer{draft: testDraft()}

	p := newTestProcessor(videos, posts, meta, trs, tf)
	result := p.ProcessVideo(context.Background(), "vid1", "")

	if result.Success {
		t.Fatal("Expected failure for insufficient content")
	}
	if !strings.Contains(result.Err, "Insufficient transcript content") {
		t.Errorf("Unexpected error message: %s", result.Err)
	}

	record, _ := videos.GetVideoByID("vid1")
	if record.Status != database.VideoStatusFailed {
		t.Errorf("Expected failed status, got: %s", record.Status)
	}
	if record.ErrorMessage == nil {
		t.Error("Expected error message on record")
	}
	if tf.callCount() != 0 {
		t.Errorf("Expected no transformation, got: %d calls", tf.callCount())
	}
}

func TestProcessVideoNotFound(t *testing.T) {
	videos := newMemVideoRepo()
	posts := newMemPostRepo()
	meta := &stubMetadata{details: map[string]*youtube.VideoDetails{}}
	trs := &stubTranscripts{transcript: longTranscript()}
	tf := &countingTransformer{draft: testDraft()}

	p := newTestProcessor(videos, posts, meta, trs, tf)
	result := p.ProcessVideo(context.Background(), "missing", "")

	if result.Success {
		t.Fatal("Expected failure for missing video")
	}
	if result.Err != "Video not found" {
		t.Errorf("Unexpected error message: %s", result.Err)
	}

	record, _ := videos.GetVideoByID("missing")
	if record.Status != database.VideoStatusFailed {
		t.Errorf("Expected failed status, got: %s", record.Status)
	}
}

func TestProcessVideoRetryAfterFailure(t *testing.T) {
	videos := newMemVideoRepo()
	posts := newMemPostRepo()
	meta := &stubMetadata{details: map[string]*youtube.VideoDetails{"vid1": testDetails("vid1")}}
	trs := &stubTranscripts{transcript: longTranscript()}
	tf := &countingTransformer{draft: testDraft(), err: errors.New("model unavailable")}

	p := newTestProcessor(videos, posts, meta, trs, tf)

	first := p.ProcessVideo(context.Background(), "vid1", "")
	if first.Success {
		t.Fatal("Expected first run to fail")
	}

	record, _ := videos.GetVideoByID("vid1")
	if record.Status != database.VideoStatusFailed {
		t.Fatalf("Expected failed status, got: %s", record.Status)
	}

	// Manual retry succeeds once the upstream recovers.
	tf.err = nil
	second := p.ProcessVideo(context.Background(), "vid1", "")
	if !second.Success {
		t.Fatalf("Expected retry to succeed, got: %s", second.Err)
	}

	record, _ = videos.GetVideoByID("vid1")
	if record.Status != database.VideoStatusCompleted {
		t.Errorf("Expected completed status after retry, got: %s", record.Status)
	}
	if record.ErrorMessage != nil {
		t.Error("Expected error message to be cleared on retry")
	}
}

func TestProcessVideos(t *testing.T) {
	videos := newMemVideoRepo()
	posts := newMemPostRepo()
	meta := &stubMetadata{details: map[string]*youtube.VideoDetails{
		"vid1": testDetails("vid1"),
		// vid2 missing upstream
	}}
	trs := &stubTranscripts{transcript: longTranscript()}
	tf := &countingTransformer{draft: testDraft()}

	p := newTestProcessor(videos, posts, meta, trs, tf)
	batch := p.ProcessVideos(context.Background(), []string{"vid1", "vid2"}, "UCabcdefghijklmnopqrstuv")

	if batch.Processed != 1 {
		t.Errorf("Expected 1 processed, got: %d", batch.Processed)
	}
	if batch.Failed != 1 {
		t.Errorf("Expected 1 failed, got: %d", batch.Failed)
	}
	if len(batch.Results) != 2 {
		t.Fatalf("Expected 2 results, got: %d", len(batch.Results))
	}
	if !batch.Results[0].Success || batch.Results[1].Success {
		t.Errorf("Unexpected per-item outcomes: %+v", batch.Results)
	}
}
