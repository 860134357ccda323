package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mmcdole/gofeed"

	"ytblog/app/config"
	"ytblog/app/database"
	"ytblog/app/pipeline"
	"ytblog/app/tasks"
	"ytblog/app/websub"
	"ytblog/app/youtube"
)

const (
	defaultVideoListLimit = 50
	defaultFetchLatestMax = 5
	maxFetchLatestResults = 15
)

func NewHandler(channelRepo database.ChannelRepository, videoRepo database.VideoRepository,
	postRepo database.PostRepository, processor *pipeline.Processor, channelInfo ChannelInfoClient,
	feedLister *youtube.FeedLister, subscriber *websub.Subscriber, scheduler tasks.TaskSchedulerInterface) *Handler {
	return &Handler{
		channelRepo: channelRepo,
		videoRepo:   videoRepo,
		postRepo:    postRepo,
		processor:   processor,
		channelInfo: channelInfo,
		feedLister:  feedLister,
		subscriber:  subscriber,
		scheduler:   scheduler,
		feedParser:  gofeed.NewParser(),
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if channelCount, err := h.channelRepo.GetChannelCount(); err == nil {
		health["channels"] = channelCount
	}

	if postCount, err := h.postRepo.GetPostCount(); err == nil {
		health["posts"] = postCount
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.videoRepo.GetVideoStats()
	if err != nil {
		slog.Error("Database error", "operation", "get_video_stats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	response := gin.H{
		"videos": gin.H{
			"total":      stats.Total,
			"processing": stats.Processing,
			"completed":  stats.Completed,
			"failed":     stats.Failed,
		},
	}

	if channelCount, err := h.channelRepo.GetChannelCount(); err == nil {
		response["channels"] = channelCount
	}
	if postCount, err := h.postRepo.GetPostCount(); err == nil {
		response["posts"] = postCount
	}

	c.JSON(http.StatusOK, response)
}

func (h *Handler) APIListChannels(c *gin.Context) {
	channels, err := h.channelRepo.ListChannels()
	if err != nil {
		slog.Error("Database error", "operation", "list_channels", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	now := time.Now().UTC()
	list := make([]map[string]interface{}, 0, len(channels))

	for _, ch := range channels {
		info := map[string]interface{}{
			"channel_id": ch.ChannelID,
			"name":       ch.ChannelName,
			"url":        ch.ChannelURL,
			"active":     ch.IsActive,
			"created_at": ch.CreatedAt,
		}

		// An active record past its lease is effectively dead: the hub no
		// longer pushes notifications for it.
		if ch.SubscriptionExpiresAt != nil {
			info["subscription_expires_at"] = ch.SubscriptionExpiresAt
			info["subscription_stale"] = ch.IsActive && ch.SubscriptionExpiresAt.Before(now)
		} else {
			info["subscription_stale"] = ch.IsActive
		}

		list = append(list, info)
	}

	c.JSON(http.StatusOK, gin.H{
		"channels": list,
		"total":    len(list),
	})
}

func (h *Handler) APIAddChannel(c *gin.Context) {
	var req AddChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if !config.ValidChannelID(req.ChannelID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid channel ID"})
		return
	}

	secret, err := websub.GenerateSecret()
	if err != nil {
		slog.Error("Failed to generate webhook secret", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate webhook secret"})
		return
	}

	name := req.ChannelName
	if name == "" {
		if info, err := h.channelInfo.GetChannelInfo(c.Request.Context(), req.ChannelID); err != nil {
			slog.Warn("Failed to resolve channel name", "channel_id", req.ChannelID, "error", err)
		} else if info != nil {
			name = info.Title
		}
	}
	if name == "" {
		name = req.ChannelID
	}

	channel, err := h.channelRepo.UpsertChannel(database.ChannelSubscription{
		ChannelID:     req.ChannelID,
		ChannelName:   name,
		ChannelURL:    config.ChannelURL(req.ChannelID),
		WebhookSecret: secret,
		IsActive:      true,
	})
	if err != nil {
		slog.Error("Database error", "operation", "upsert_channel", "channel_id", req.ChannelID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	// The upsert preserves the active flag of an existing row, so re-adding
	// a previously unsubscribed channel must flip it back on or the renewed
	// lease would feed notifications that all get dropped.
	if !channel.IsActive {
		if err := h.channelRepo.SetActive(channel.ChannelID, true); err != nil {
			slog.Error("Database error", "operation", "set_active", "channel_id", channel.ChannelID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		channel.IsActive = true
	}

	subscribeTask := tasks.NewSubscribeChannelTask(channel.ChannelID, channel.WebhookSecret, h.subscriber)
	if err := h.scheduler.EnqueueTask(subscribeTask); err != nil {
		slog.Error("Failed to enqueue SubscribeChannelTask", "channel_id", channel.ChannelID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to enqueue subscription task"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"channel": gin.H{
			"channel_id": channel.ChannelID,
			"name":       channel.ChannelName,
			"url":        channel.ChannelURL,
		},
		"task": gin.H{
			"id":   subscribeTask.ID,
			"type": subscribeTask.Type,
		},
	})
}

func (h *Handler) APIDeleteChannel(c *gin.Context) {
	channelID := c.Param("id")

	channel, err := h.channelRepo.GetChannelByID(channelID)
	if err != nil {
		slog.Error("Database error", "operation", "get_channel", "channel_id", channelID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if channel == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Channel not found"})
		return
	}

	// Best-effort hub unsubscribe; the delete goes through regardless.
	unsubscribeTask := tasks.NewUnsubscribeChannelTask(channel.ChannelID, channel.WebhookSecret, h.subscriber)
	if err := h.scheduler.EnqueueTask(unsubscribeTask); err != nil {
		slog.Warn("Failed to enqueue UnsubscribeChannelTask", "channel_id", channelID, "error", err)
	}

	if err := h.channelRepo.DeleteChannel(channelID); err != nil {
		slog.Error("Database error", "operation", "delete_channel", "channel_id", channelID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) APISubscribeChannel(c *gin.Context) {
	channelID := c.Param("id")

	channel, err := h.channelRepo.GetChannelByID(channelID)
	if err != nil {
		slog.Error("Database error", "operation", "get_channel", "channel_id", channelID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if channel == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Channel not found"})
		return
	}

	if err := h.channelRepo.SetActive(channelID, true); err != nil {
		slog.Error("Database error", "operation", "set_active", "channel_id", channelID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	subscribeTask := tasks.NewSubscribeChannelTask(channel.ChannelID, channel.WebhookSecret, h.subscriber)
	if err := h.scheduler.EnqueueTask(subscribeTask); err != nil {
		slog.Error("Failed to enqueue SubscribeChannelTask", "channel_id", channelID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to enqueue subscription task"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"task": gin.H{
			"id":   subscribeTask.ID,
			"type": subscribeTask.Type,
		},
	})
}

func (h *Handler) APIUnsubscribeChannel(c *gin.Context) {
	channelID := c.Param("id")

	channel, err := h.channelRepo.GetChannelByID(channelID)
	if err != nil {
		slog.Error("Database error", "operation", "get_channel", "channel_id", channelID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if channel == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Channel not found"})
		return
	}

	if err := h.channelRepo.SetActive(channelID, false); err != nil {
		slog.Error("Database error", "operation", "set_active", "channel_id", channelID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	unsubscribeTask := tasks.NewUnsubscribeChannelTask(channel.ChannelID, channel.WebhookSecret, h.subscriber)
	if err := h.scheduler.EnqueueTask(unsubscribeTask); err != nil {
		slog.Warn("Failed to enqueue UnsubscribeChannelTask", "channel_id", channelID, "error", err)
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// APIFetchLatest pulls the channel's newest uploads from its public feed and
// queues each one for processing.
func (h *Handler) APIFetchLatest(c *gin.Context) {
	channelID := c.Param("id")

	channel, err := h.channelRepo.GetChannelByID(channelID)
	if err != nil {
		slog.Error("Database error", "operation", "get_channel", "channel_id", channelID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if channel == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Channel not found"})
		return
	}

	max := defaultFetchLatestMax
	if raw := c.Query("max_results"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			max = parsed
		}
	}
	if max > maxFetchLatestResults {
		max = maxFetchLatestResults
	}

	videos, err := h.feedLister.ListRecentVideos(c.Request.Context(), channelID, max)
	if err != nil {
		slog.Error("Failed to list recent videos", "channel_id", channelID, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch channel feed", "details": err.Error()})
		return
	}

	enqueued := make([]gin.H, 0, len(videos))
	for _, video := range videos {
		task := tasks.NewProcessVideoTask(video.VideoID, channelID, h.processor)
		if err := h.scheduler.EnqueueTask(task); err != nil {
			slog.Error("Failed to enqueue ProcessVideoTask", "video_id", video.VideoID, "error", err)
			continue
		}
		enqueued = append(enqueued, gin.H{
			"video_id": video.VideoID,
			"title":    video.Title,
			"task_id":  task.ID,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"found":    len(videos),
		"enqueued": enqueued,
	})
}

func (h *Handler) APIListVideos(c *gin.Context) {
	limit := defaultVideoListLimit
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	videos, err := h.videoRepo.ListVideos(limit)
	if err != nil {
		slog.Error("Database error", "operation", "list_videos", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	list := make([]map[string]interface{}, 0, len(videos))
	for _, v := range videos {
		info := map[string]interface{}{
			"video_id":   v.VideoID,
			"status":     v.Status,
			"created_at": v.CreatedAt,
		}
		if v.VideoTitle != nil {
			info["video_title"] = *v.VideoTitle
		}
		if v.BlogPostID != nil {
			info["blog_post_id"] = *v.BlogPostID
		}
		if v.PostTitle != nil {
			info["post_title"] = *v.PostTitle
		}
		if v.PostSlug != nil {
			info["post_slug"] = *v.PostSlug
		}
		if v.ErrorMessage != nil {
			info["error"] = *v.ErrorMessage
		}
		if v.ProcessedAt != nil {
			info["processed_at"] = *v.ProcessedAt
		}
		list = append(list, info)
	}

	c.JSON(http.StatusOK, gin.H{
		"videos": list,
		"total":  len(list),
	})
}

// APIProcessVideo runs the pipeline synchronously and returns its result,
// which makes it usable as a manual retry for failed videos.
func (h *Handler) APIProcessVideo(c *gin.Context) {
	var req ProcessVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	result := h.processor.ProcessVideo(c.Request.Context(), req.VideoID, "")
	if !result.Success {
		c.JSON(http.StatusUnprocessableEntity, result)
		return
	}

	c.JSON(http.StatusOK, result)
}
