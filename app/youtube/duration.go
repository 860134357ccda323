package youtube

import (
	"fmt"
	"regexp"
	"strconv"
)

var iso8601Duration = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// ParseDuration converts an ISO-8601 duration as returned by the YouTube
// API ("PT45M32S") into a human-readable clock string ("45:32"). Input that
// does not match the expected encoding is returned unchanged.
func ParseDuration(raw string) string {
	m := iso8601Duration.FindStringSubmatch(raw)
	if m == nil {
		return raw
	}

	hours := atoi(m[1])
	minutes := atoi(m[2])
	seconds := atoi(m[3])

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

func atoi(s string) int {
	if s == "" {
		return 0
	}
	n, _ := strconv.Atoi(s)
	return n
}
