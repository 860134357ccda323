package websub

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const topicURLTemplate = "https://www.youtube.com/xml/feeds/videos.xml?channel_id=%s"

// Subscriber manages WebSub leases with the hub. The hub confirms each
// subscribe/unsubscribe asynchronously through the callback's GET
// verification handshake, which is where lease expiry gets recorded.
type Subscriber struct {
	httpClient   *http.Client
	hubURL       string
	callbackURL  string
	leaseSeconds int
}

func NewSubscriber(httpClient *http.Client, hubURL, callbackURL string, leaseSeconds int) *Subscriber {
	return &Subscriber{
		httpClient:   httpClient,
		hubURL:       hubURL,
		callbackURL:  callbackURL,
		leaseSeconds: leaseSeconds,
	}
}

// GenerateSecret returns a random opaque token used as the per-channel HMAC
// key for notification verification.
func GenerateSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate webhook secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Subscribe requests a lease for the channel's topic.
func (s *Subscriber) Subscribe(ctx context.Context, channelID, secret string) error {
	return s.sendHubRequest(ctx, "subscribe", channelID, secret)
}

// Unsubscribe requests lease termination. Callers treat failures as
// best-effort and must not propagate them.
func (s *Subscriber) Unsubscribe(ctx context.Context, channelID, secret string) error {
	return s.sendHubRequest(ctx, "unsubscribe", channelID, secret)
}

func (s *Subscriber) sendHubRequest(ctx context.Context, mode, channelID, secret string) error {
	form := url.Values{}
	form.Set("hub.callback", s.callbackURL)
	form.Set("hub.topic", TopicURL(channelID))
	form.Set("hub.mode", mode)
	form.Set("hub.verify", "async")
	if secret != "" {
		form.Set("hub.secret", secret)
	}
	if mode == "subscribe" {
		form.Set("hub.lease_seconds", strconv.Itoa(s.leaseSeconds))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.hubURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create hub request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("hub request failed: %w", err)
	}
	defer resp.Body.Close()

	// The hub answers 202 Accepted and verifies asynchronously.
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("hub rejected %s for channel %s: HTTP %d", mode, channelID, resp.StatusCode)
	}

	return nil
}

// TopicURL returns the feed topic URL for a channel.
func TopicURL(channelID string) string {
	return fmt.Sprintf(topicURLTemplate, channelID)
}

// ChannelIDFromTopic extracts the channel_id query parameter from a topic
// URL. Returns an empty string when absent.
func ChannelIDFromTopic(topic string) string {
	u, err := url.Parse(topic)
	if err != nil {
		return ""
	}
	return u.Query().Get("channel_id")
}

// VerifySignature checks the X-Hub-Signature header against the raw request
// body. The header carries "<algorithm>=<hex digest>"; sha1 is what the hub
// sends, sha256 is accepted for forward compatibility.
func VerifySignature(body []byte, header, secret string) bool {
	if header == "" || secret == "" {
		return false
	}

	algo, digest, found := strings.Cut(header, "=")
	if !found {
		return false
	}

	var mac hash.Hash
	switch strings.ToLower(algo) {
	case "sha1":
		mac = hmac.New(sha1.New, []byte(secret))
	case "sha256":
		mac = hmac.New(sha256.New, []byte(secret))
	default:
		return false
	}

	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(strings.ToLower(digest)))
}

// Sign produces an X-Hub-Signature value for a body. Used by tests and
// local tooling.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha1.New, []byte(secret))
	mac.Write(body)
	return "sha1=" + hex.EncodeToString(mac.Sum(nil))
}
