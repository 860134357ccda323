package config

// ChannelsFile is the top-level structure of the channels YAML file.
type ChannelsFile struct {
	Channels []ChannelConfig `yaml:"channels"`
}

// ChannelConfig describes one watched YouTube channel.
type ChannelConfig struct {
	ChannelID     string `yaml:"channel_id"`
	Name          string `yaml:"name"`
	URL           string `yaml:"url"`
	AutoSubscribe bool   `yaml:"auto_subscribe"`
}
