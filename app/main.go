package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ytblog/app/api"
	"ytblog/app/cfg"
	"ytblog/app/config"
	"ytblog/app/database"
	"ytblog/app/pipeline"
	"ytblog/app/tasks"
	"ytblog/app/transcript"
	"ytblog/app/transform"
	"ytblog/app/websub"
	"ytblog/app/youtube"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting ytblog server", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "migration_version", version, "dirty", dirty)

	channelRepo := database.NewChannelRepository(db)
	videoRepo := database.NewVideoRepository(db)
	postRepo := database.NewPostRepository(db)

	httpClient := &http.Client{Timeout: 30 * time.Second}

	metadataClient, err := youtube.NewClient(context.Background(), appCfg.YoutubeAPIKey)
	if err != nil {
		slog.Error("Failed to create YouTube client", "error", err)
		os.Exit(1)
	}

	extractor := transcript.NewExtractor(httpClient, appCfg.UserAgent)
	transformer := transform.NewOpenAI(appCfg.OpenAIAPIKey, appCfg.OpenAIModel)
	feedLister := youtube.NewFeedLister(httpClient, appCfg.UserAgent)

	callbackURL := appCfg.BaseUrl + "/webhook/youtube"
	subscriber := websub.NewSubscriber(httpClient, appCfg.HubUrl, callbackURL, appCfg.LeaseSeconds)

	processor := pipeline.NewProcessor(videoRepo, postRepo, metadataClient, extractor, transformer)

	slog.Info("Starting background scheduler", "workers", appCfg.WorkerCount)
	scheduler := tasks.NewScheduler(channelRepo)
	scheduler.Start()
	defer scheduler.Stop()

	seedChannels(channelRepo, scheduler, subscriber, appCfg)

	handler := api.NewHandler(channelRepo, videoRepo, postRepo, processor, metadataClient, feedLister, subscriber, scheduler)
	server := api.NewServer(handler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port, "callback_url", callbackURL)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("HTTP server error", "error", err)
	}

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	// Scheduler is stopped via defer
	slog.Info("Shutdown complete")
}

// seedChannels registers the channels from the YAML watch list and requests
// hub subscriptions for those marked auto-subscribe. Subscriptions need a
// publicly reachable callback, so they are skipped when no base URL is set.
func seedChannels(channelRepo database.ChannelRepository, scheduler tasks.TaskSchedulerInterface,
	subscriber *websub.Subscriber, appCfg *cfg.Cfg) {
	loader := config.NewLoader(appCfg.ChannelsFile)
	channels, err := loader.Load()
	if err != nil {
		slog.Error("Failed to load channels file", "path", appCfg.ChannelsFile, "error", err)
		os.Exit(1)
	}
	if len(channels) == 0 {
		slog.Info("No channels file, starting with an empty watch list", "path", appCfg.ChannelsFile)
		return
	}

	for _, entry := range channels {
		existing, err := channelRepo.GetChannelByID(entry.ChannelID)
		if err != nil {
			slog.Warn("Failed to look up channel", "channel_id", entry.ChannelID, "error", err)
			continue
		}

		secret := ""
		if existing != nil {
			secret = existing.WebhookSecret
		}
		if secret == "" {
			secret, err = websub.GenerateSecret()
			if err != nil {
				slog.Warn("Failed to generate webhook secret", "channel_id", entry.ChannelID, "error", err)
				continue
			}
		}

		channel, err := channelRepo.UpsertChannel(database.ChannelSubscription{
			ChannelID:     entry.ChannelID,
			ChannelName:   entry.Name,
			ChannelURL:    entry.URL,
			WebhookSecret: secret,
			IsActive:      true,
		})
		if err != nil {
			slog.Warn("Failed to register channel", "channel_id", entry.ChannelID, "error", err)
			continue
		}

		slog.Info("Registered channel", "channel_id", channel.ChannelID, "name", channel.ChannelName)

		if !entry.AutoSubscribe {
			continue
		}
		if appCfg.BaseUrl == "" {
			slog.Warn("BASE_URL not set, skipping hub subscription", "channel_id", channel.ChannelID)
			continue
		}

		task := tasks.NewSubscribeChannelTask(channel.ChannelID, channel.WebhookSecret, subscriber)
		if err := scheduler.EnqueueTask(task); err != nil {
			slog.Warn("Failed to enqueue SubscribeChannelTask", "channel_id", channel.ChannelID, "error", err)
		}
	}
}
