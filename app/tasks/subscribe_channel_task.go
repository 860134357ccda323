package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"ytblog/app/websub"
)

type SubscribeChannelTask struct {
	Task
	Secret     string
	subscriber *websub.Subscriber
}

func NewSubscribeChannelTask(channelID, secret string, subscriber *websub.Subscriber) *SubscribeChannelTask {
	return &SubscribeChannelTask{
		Task:       NewTask(TaskTypeSubscribeChannel, channelID),
		Secret:     secret,
		subscriber: subscriber,
	}
}

func (t *SubscribeChannelTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if err := t.subscriber.Subscribe(ctx, t.Subject, t.Secret); err != nil {
		slog.Error("Task failed", "type", "SubscribeChannel", "channel_id", t.Subject, "error", err)
		return fmt.Errorf("failed to request hub subscription: %w", err)
	}

	slog.Info("Task completed",
		"type", "SubscribeChannel",
		"channel_id", t.Subject,
		"duration", t.GetDuration())

	return nil
}
