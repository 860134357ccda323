package api

import (
	"context"

	"github.com/mmcdole/gofeed"

	"ytblog/app/database"
	"ytblog/app/pipeline"
	"ytblog/app/tasks"
	"ytblog/app/websub"
	"ytblog/app/youtube"
)

// ChannelInfoClient resolves channel metadata for admin actions.
type ChannelInfoClient interface {
	GetChannelInfo(ctx context.Context, channelID string) (*youtube.ChannelInfo, error)
}

var _ ChannelInfoClient = (*youtube.Client)(nil)

type Handler struct {
	channelRepo database.ChannelRepository
	videoRepo   database.VideoRepository
	postRepo    database.PostRepository
	processor   *pipeline.Processor
	channelInfo ChannelInfoClient
	feedLister  *youtube.FeedLister
	subscriber  *websub.Subscriber
	scheduler   tasks.TaskSchedulerInterface
	feedParser  *gofeed.Parser
}

type AddChannelRequest struct {
	ChannelID   string `json:"channel_id" binding:"required"`
	ChannelName string `json:"channel_name"`
}

type ProcessVideoRequest struct {
	VideoID string `json:"video_id" binding:"required"`
}
