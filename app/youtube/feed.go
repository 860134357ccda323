package youtube

import (
	"context"
	"fmt"
	"net/http"
	"sort"

	"github.com/mmcdole/gofeed"
)

const channelFeedURLTemplate = "https://www.youtube.com/feeds/videos.xml?channel_id=%s"

// FeedLister lists a channel's most recent videos through its public Atom
// feed. The feed carries roughly the 15 newest uploads, which is enough for
// the bulk fetch-latest admin action without spending API quota.
type FeedLister struct {
	httpClient *http.Client
	parser     *gofeed.Parser
	userAgent  string
	feedURL    string
}

func NewFeedLister(httpClient *http.Client, userAgent string) *FeedLister {
	return &FeedLister{
		httpClient: httpClient,
		parser:     gofeed.NewParser(),
		userAgent:  userAgent,
		feedURL:    channelFeedURLTemplate,
	}
}

// SetFeedURL overrides the feed URL template. Intended for tests.
func (l *FeedLister) SetFeedURL(template string) {
	l.feedURL = template
}

// ListRecentVideos returns up to max videos from the channel feed, newest
// first.
func (l *FeedLister) ListRecentVideos(ctx context.Context, channelID string, max int) ([]FeedVideo, error) {
	url := fmt.Sprintf(l.feedURL, channelID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", l.userAgent)

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch channel feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("channel feed HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	feed, err := l.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse channel feed: %w", err)
	}

	videos := make([]FeedVideo, 0, len(feed.Items))
	for _, item := range feed.Items {
		videoID := YtExtension(item, "videoId")
		if videoID == "" {
			continue
		}
		video := FeedVideo{
			VideoID:   videoID,
			ChannelID: YtExtension(item, "channelId"),
			Title:     item.Title,
		}
		if item.PublishedParsed != nil {
			video.Published = *item.PublishedParsed
		}
		videos = append(videos, video)
	}

	sort.Slice(videos, func(i, j int) bool {
		return videos[i].Published.After(videos[j].Published)
	})

	if max > 0 && len(videos) > max {
		videos = videos[:max]
	}

	return videos, nil
}

// YtExtension extracts a value from the yt: namespace of a feed item
// (yt:videoId, yt:channelId).
func YtExtension(item *gofeed.Item, key string) string {
	ext, ok := item.Extensions["yt"]
	if !ok {
		return ""
	}
	values, ok := ext[key]
	if !ok || len(values) == 0 {
		return ""
	}
	return values[0].Value
}
