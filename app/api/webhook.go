package api

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"ytblog/app/database"
	"ytblog/app/tasks"
	"ytblog/app/websub"
	"ytblog/app/youtube"
)

// VerifySubscription handles the hub's GET verification handshake. The
// challenge must be echoed back verbatim; for a subscribe confirmation the
// reported lease duration is persisted on the channel record.
func (h *Handler) VerifySubscription(c *gin.Context) {
	mode := c.Query("hub.mode")
	challenge := c.Query("hub.challenge")
	topic := c.Query("hub.topic")

	if challenge == "" || (mode != "subscribe" && mode != "unsubscribe") {
		slog.Warn("Rejected hub verification", "mode", mode, "topic", topic)
		c.Status(http.StatusBadRequest)
		return
	}

	channelID := websub.ChannelIDFromTopic(topic)

	if mode == "subscribe" && channelID != "" {
		leaseSeconds, err := strconv.Atoi(c.Query("hub.lease_seconds"))
		if err != nil || leaseSeconds <= 0 {
			slog.Warn("Subscribe verification without a usable lease", "channel_id", channelID, "lease", c.Query("hub.lease_seconds"))
		} else {
			expiresAt := time.Now().UTC().Add(time.Duration(leaseSeconds) * time.Second)
			if err := h.channelRepo.UpdateLease(channelID, expiresAt); err != nil {
				slog.Error("Failed to persist lease", "channel_id", channelID, "error", err)
			} else {
				slog.Info("Subscription verified", "channel_id", channelID, "expires_at", expiresAt)
			}
		}
	}

	if mode == "unsubscribe" {
		slog.Info("Unsubscribe verified", "channel_id", channelID)
	}

	c.Data(http.StatusOK, "text/plain", []byte(challenge))
}

// ReceiveNotification handles the hub's POST content notifications. The
// response must come back fast, so per-entry processing is dispatched to the
// task queue; only payload and signature problems are surfaced to the hub.
func (h *Handler) ReceiveNotification(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		slog.Error("Failed to read notification body", "error", err)
		c.Status(http.StatusBadRequest)
		return
	}

	feed, err := h.feedParser.Parse(bytes.NewReader(body))
	if err != nil {
		slog.Error("Failed to parse notification payload", "error", err)
		c.Status(http.StatusBadRequest)
		return
	}

	// Deletion notifications arrive as an empty feed.
	if len(feed.Items) == 0 {
		slog.Debug("Notification with no entries")
		c.Status(http.StatusOK)
		return
	}

	signature := c.GetHeader("X-Hub-Signature")
	enqueued := 0

	for _, item := range feed.Items {
		videoID := youtube.YtExtension(item, "videoId")
		channelID := youtube.YtExtension(item, "channelId")

		if videoID == "" || channelID == "" {
			slog.Warn("Notification entry missing identifiers", "title", item.Title)
			continue
		}

		channel, err := h.channelRepo.GetChannelByID(channelID)
		if err != nil {
			slog.Error("Database error", "operation", "get_channel", "channel_id", channelID, "error", err)
			continue
		}
		if channel == nil || !channel.IsActive {
			slog.Debug("Notification for unregistered channel, ignoring", "channel_id", channelID, "video_id", videoID)
			continue
		}

		// A bad signature means a potential forgery, which fails the whole
		// request rather than just this entry.
		if signature != "" && channel.WebhookSecret != "" {
			if !websub.VerifySignature(body, signature, channel.WebhookSecret) {
				slog.Warn("Notification signature mismatch", "channel_id", channelID, "video_id", videoID)
				c.Status(http.StatusUnauthorized)
				return
			}
		}

		record, err := h.videoRepo.GetVideoByID(videoID)
		if err != nil {
			slog.Error("Database error", "operation", "get_video", "video_id", videoID, "error", err)
			continue
		}
		if record != nil && record.Status == database.VideoStatusCompleted {
			slog.Debug("Video already processed, skipping", "video_id", videoID)
			continue
		}

		task := tasks.NewProcessVideoTask(videoID, channelID, h.processor)
		if err := h.scheduler.EnqueueTask(task); err != nil {
			slog.Error("Failed to enqueue ProcessVideoTask", "video_id", videoID, "error", err)
			continue
		}

		enqueued++
		slog.Info("Notification dispatched", "video_id", videoID, "channel_id", channelID, "title", item.Title)
	}

	slog.Debug("Notification handled", "entries", len(feed.Items), "enqueued", enqueued)
	c.Status(http.StatusOK)
}
