package cfg

type Cfg struct {
	// Application configuration
	Port         string
	DBPath       string
	BaseUrl      string
	ChannelsFile string
	WorkerCount  int

	// WebSub hub configuration
	HubUrl       string
	LeaseSeconds int

	// External service credentials
	YoutubeAPIKey string
	OpenAIAPIKey  string
	OpenAIModel   string
	APIAccessKey  string

	// Application metadata
	UserAgent string
	Debug     bool
	Version   string
}
