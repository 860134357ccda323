package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

var channelIDPattern = regexp.MustCompile(`^UC[a-zA-Z0-9_-]{22}$`)

// ValidChannelID reports whether the string looks like a YouTube channel ID.
func ValidChannelID(id string) bool {
	return channelIDPattern.MatchString(id)
}

// ChannelURL returns the canonical channel page URL.
func ChannelURL(channelID string) string {
	return "https://www.youtube.com/channel/" + channelID
}

// Loader handles loading and validation of the watched-channel list
type Loader struct {
	path string
}

// NewLoader creates a new channel list loader
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load reads the channels YAML file. A missing file is not an error:
// channels can also be added at runtime through the admin API.
func (l *Loader) Load() ([]ChannelConfig, error) {
	if _, err := os.Stat(l.path); os.IsNotExist(err) {
		return nil, nil
	}

	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read channels file: %w", err)
	}

	var file ChannelsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	for i := range file.Channels {
		l.setDefaults(&file.Channels[i])
		if err := l.validate(&file.Channels[i]); err != nil {
			return nil, fmt.Errorf("invalid channel entry %d: %w", i, err)
		}
	}

	return file.Channels, nil
}

func (l *Loader) setDefaults(c *ChannelConfig) {
	if c.URL == "" && c.ChannelID != "" {
		c.URL = ChannelURL(c.ChannelID)
	}
	if c.Name == "" {
		c.Name = c.ChannelID
	}
}

func (l *Loader) validate(c *ChannelConfig) error {
	if c.ChannelID == "" {
		return fmt.Errorf("channel_id is required")
	}
	if !ValidChannelID(c.ChannelID) {
		return fmt.Errorf("channel_id %q is not a valid YouTube channel ID", c.ChannelID)
	}
	return nil
}
