package tasks

import (
	"context"
	"log/slog"

	"ytblog/app/pipeline"
)

type ProcessVideoTask struct {
	Task
	ChannelID string
	processor *pipeline.Processor
}

func NewProcessVideoTask(videoID, channelID string, processor *pipeline.Processor) *ProcessVideoTask {
	return &ProcessVideoTask{
		Task:      NewTask(TaskTypeProcessVideo, videoID),
		ChannelID: channelID,
		processor: processor,
	}
}

func (t *ProcessVideoTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	result := t.processor.ProcessVideo(ctx, t.Subject, t.ChannelID)

	// A failed result is already recorded on the video row; re-running the
	// whole pipeline from the queue would only repeat the failure, so it is
	// not treated as a retryable task error.
	if !result.Success {
		slog.Warn("Task completed without a post",
			"type", "ProcessVideo",
			"video_id", t.Subject,
			"duration", t.GetDuration(),
			"reason", result.Err)
		return nil
	}

	slog.Info("Task completed",
		"type", "ProcessVideo",
		"video_id", t.Subject,
		"duration", t.GetDuration(),
		"post_id", result.BlogPostID)

	return nil
}
