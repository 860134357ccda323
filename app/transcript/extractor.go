package transcript

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
)

// ErrNoCaptions is returned when no caption track can be located for a
// video. Callers treat this as expected upstream absence, not a fault.
var ErrNoCaptions = errors.New("no caption track available")

const watchURLTemplate = "https://www.youtube.com/watch?v=%s"

// Extractor scrapes caption tracks from the public watch page. The page
// structure is undocumented and changes without notice, so extraction runs
// through tiered fallbacks and every failure is a recoverable error.
type Extractor struct {
	httpClient *http.Client
	userAgent  string
	watchURL   string
}

func NewExtractor(httpClient *http.Client, userAgent string) *Extractor {
	return &Extractor{
		httpClient: httpClient,
		userAgent:  userAgent,
		watchURL:   watchURLTemplate,
	}
}

// SetWatchURL overrides the watch page URL template. Intended for tests.
func (e *Extractor) SetWatchURL(template string) {
	e.watchURL = template
}

// Fetch retrieves the best available caption track and returns the cleaned
// transcript. Fails with ErrNoCaptions when no track can be located.
func (e *Extractor) Fetch(ctx context.Context, videoID string) (*Transcript, error) {
	page, err := e.fetchURL(ctx, fmt.Sprintf(e.watchURL, videoID))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch watch page: %w", err)
	}

	trackURL := e.locateTrackURL(videoID, page)
	if trackURL == "" {
		return nil, ErrNoCaptions
	}

	segments, err := e.fetchTimedText(ctx, trackURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch caption track: %w", err)
	}

	transcript := assemble(segments)
	if transcript.Text == "" {
		return nil, ErrNoCaptions
	}

	return transcript, nil
}

// locateTrackURL tries the embedded JSON tier first and falls back to a raw
// regex scan of the page HTML.
func (e *Extractor) locateTrackURL(videoID string, page []byte) string {
	if tracks, err := tryEmbeddedJSON(page); err == nil && len(tracks) > 0 {
		return selectTrack(tracks).BaseURL
	} else if err != nil {
		slog.Debug("Embedded caption JSON unusable, trying regex fallback",
			"video_id", videoID, "error", err)
	}

	return tryRegexFallback(page)
}

// tryEmbeddedJSON locates the captionTracks array inside the player
// response JSON embedded in the watch page.
func tryEmbeddedJSON(page []byte) ([]captionTrack, error) {
	const marker = `"captionTracks":`

	idx := strings.Index(string(page), marker)
	if idx < 0 {
		return nil, fmt.Errorf("captionTracks marker not found")
	}

	raw, err := extractJSONArray(page[idx+len(marker):])
	if err != nil {
		return nil, fmt.Errorf("failed to isolate captionTracks array: %w", err)
	}

	var tracks []captionTrack
	if err := json.Unmarshal(raw, &tracks); err != nil {
		return nil, fmt.Errorf("failed to parse captionTracks: %w", err)
	}

	return tracks, nil
}

// extractJSONArray returns the balanced [...] prefix of data, respecting
// strings and escapes.
func extractJSONArray(data []byte) ([]byte, error) {
	start := 0
	for start < len(data) && (data[start] == ' ' || data[start] == '\t') {
		start++
	}
	if start >= len(data) || data[start] != '[' {
		return nil, fmt.Errorf("expected array start")
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(data); i++ {
		c := data[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
			// skip structural characters inside strings
		case c == '[':
			depth++
		case c == ']':
			depth--
			if depth == 0 {
				return data[start : i+1], nil
			}
		}
	}

	return nil, fmt.Errorf("unterminated array")
}

var timedTextURLPattern = regexp.MustCompile(`"baseUrl"\s*:\s*"(https?:[^"]*?/api/timedtext[^"]*)"`)

// tryRegexFallback scans the raw HTML for a timedtext base URL when the
// JSON blob cannot be located or parsed.
func tryRegexFallback(page []byte) string {
	m := timedTextURLPattern.FindSubmatch(page)
	if m == nil {
		return ""
	}
	url := string(m[1])
	url = strings.ReplaceAll(url, `\u0026`, "&")
	url = strings.ReplaceAll(url, `\/`, "/")
	url = strings.ReplaceAll(url, "&amp;", "&")
	return url
}

// selectTrack picks a caption track by priority: manually-authored English,
// auto-generated English, any en-* variant, then the first track listed.
func selectTrack(tracks []captionTrack) captionTrack {
	for _, t := range tracks {
		if t.LanguageCode == "en" && t.Kind != "asr" {
			return t
		}
	}
	for _, t := range tracks {
		if t.LanguageCode == "en" && t.Kind == "asr" {
			return t
		}
	}
	for _, t := range tracks {
		if strings.HasPrefix(t.LanguageCode, "en") {
			return t
		}
	}
	return tracks[0]
}

// timedTextDoc is the timed-text XML document served by the captions
// endpoint.
type timedTextDoc struct {
	XMLName xml.Name       `xml:"transcript"`
	Texts   []timedTextRow `xml:"text"`
}

type timedTextRow struct {
	Start string `xml:"start,attr"`
	Dur   string `xml:"dur,attr"`
	Value string `xml:",chardata"`
}

func (e *Extractor) fetchTimedText(ctx context.Context, url string) ([]Segment, error) {
	body, err := e.fetchURL(ctx, url)
	if err != nil {
		return nil, err
	}

	var doc timedTextDoc
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse timed-text XML: %w", err)
	}

	segments := make([]Segment, 0, len(doc.Texts))
	for _, row := range doc.Texts {
		start, _ := strconv.ParseFloat(row.Start, 64)
		dur, _ := strconv.ParseFloat(row.Dur, 64)
		segments = append(segments, Segment{
			Text:     cleanText(row.Value),
			Start:    start,
			Duration: dur,
		})
	}

	return segments, nil
}

var (
	annotationPattern = regexp.MustCompile(`\[[^\]]*\]`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// cleanText decodes HTML entities, strips bracketed non-speech annotations
// such as [Music], and collapses whitespace. Timedtext payloads arrive
// double-escaped ("it&amp;#39;s"), so entities are unescaped to fixpoint.
func cleanText(s string) string {
	for {
		unescaped := html.UnescapeString(s)
		if unescaped == s {
			break
		}
		s = unescaped
	}
	s = annotationPattern.ReplaceAllString(s, "")
	s = whitespacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// assemble joins non-empty segments into the flat transcript text.
func assemble(segments []Segment) *Transcript {
	kept := make([]Segment, 0, len(segments))
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		if seg.Text == "" {
			continue
		}
		kept = append(kept, seg)
		parts = append(parts, seg.Text)
	}

	return &Transcript{
		Text:     strings.Join(parts, " "),
		Segments: kept,
	}
}

func (e *Extractor) fetchURL(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", e.userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return body, nil
}
