package tasks

import (
	"context"
	"log/slog"

	"ytblog/app/websub"
)

type UnsubscribeChannelTask struct {
	Task
	Secret     string
	subscriber *websub.Subscriber
}

func NewUnsubscribeChannelTask(channelID, secret string, subscriber *websub.Subscriber) *UnsubscribeChannelTask {
	return &UnsubscribeChannelTask{
		Task:       NewTask(TaskTypeUnsubscribeChannel, channelID),
		Secret:     secret,
		subscriber: subscriber,
	}
}

// Execute asks the hub to drop the lease. Unsubscription is best-effort: the
// lease expires on its own anyway, so a hub error is logged and swallowed
// rather than retried.
func (t *UnsubscribeChannelTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if err := t.subscriber.Unsubscribe(ctx, t.Subject, t.Secret); err != nil {
		slog.Warn("Hub unsubscribe failed, lease will lapse on its own",
			"type", "UnsubscribeChannel", "channel_id", t.Subject, "error", err)
		return nil
	}

	slog.Info("Task completed",
		"type", "UnsubscribeChannel",
		"channel_id", t.Subject,
		"duration", t.GetDuration())

	return nil
}
