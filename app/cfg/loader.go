package cfg

import (
	"cmp"
	"fmt"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Application configuration
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	DBPath       string `long:"db-path" env:"DB_PATH" default:"./ytblog.db" description:"Path to the SQLite database file"`
	BaseUrl      string `long:"base-url" env:"BASE_URL" description:"Public base URL for webhook callbacks (e.g., https://blog.example.com)"`
	ChannelsFile string `long:"channels-file" env:"CHANNELS_FILE" default:"./channels.yml" description:"YAML file with channels to watch"`
	WorkerCount  int    `long:"worker-count" env:"WORKER_COUNT" default:"2" description:"Number of background workers for video processing"`

	// WebSub hub configuration
	HubUrl       string `long:"hub-url" env:"HUB_URL" default:"https://pubsubhubbub.appspot.com" description:"WebSub hub endpoint for channel subscriptions"`
	LeaseSeconds int    `long:"lease-seconds" env:"LEASE_SECONDS" default:"86400" description:"Requested subscription lease duration in seconds"`

	// External service credentials
	YoutubeAPIKey string `long:"youtube-api-key" env:"YOUTUBE_API_KEY" description:"YouTube Data API key for video metadata"`
	OpenAIAPIKey  string `long:"openai-api-key" env:"OPENAI_API_KEY" description:"OpenAI API key for content transformation"`
	OpenAIModel   string `long:"openai-model" env:"OPENAI_MODEL" default:"gpt-4o" description:"OpenAI model used for content transformation"`
	APIAccessKey  string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for admin endpoints (optional)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"ytblog/1.0" description:"User agent string for HTTP requests"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		Port:          raw.Port,
		DBPath:        raw.DBPath,
		BaseUrl:       raw.BaseUrl,
		ChannelsFile:  raw.ChannelsFile,
		WorkerCount:   raw.WorkerCount,
		HubUrl:        raw.HubUrl,
		LeaseSeconds:  raw.LeaseSeconds,
		YoutubeAPIKey: raw.YoutubeAPIKey,
		OpenAIAPIKey:  raw.OpenAIAPIKey,
		OpenAIModel:   raw.OpenAIModel,
		APIAccessKey:  raw.APIAccessKey,
		UserAgent:     raw.UserAgent,
		Debug:         raw.Debug,
		Version:       GetVersion(),
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

// Set replaces the global configuration. Intended for tests.
func Set(c *Cfg) {
	globalCfg = c
}
