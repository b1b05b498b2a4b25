package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/riaz37/meetgenie-sub001/pkg/adapters"
	"github.com/riaz37/meetgenie-sub001/pkg/audio"
	"github.com/riaz37/meetgenie-sub001/pkg/config"
	"github.com/riaz37/meetgenie-sub001/pkg/engine"
	"github.com/riaz37/meetgenie-sub001/pkg/events"
	"github.com/riaz37/meetgenie-sub001/pkg/log"
	"github.com/riaz37/meetgenie-sub001/pkg/platform"
	"github.com/riaz37/meetgenie-sub001/pkg/server"
)

// Default vendor API endpoints, overridable per platform in the config.
const (
	defaultZoomBaseURL  = "https://api.zoom.us/v2"
	defaultTeamsBaseURL = "https://graph.microsoft.com/v1.0"
	defaultMeetBaseURL  = "https://meet.googleapis.com/v2"
	defaultWebexBaseURL = "https://webexapis.com"
)

func newServeCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the orchestration server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")
	return cmd
}

func runServe(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log.Init(cfg.LogLevel)
	log.Info("Starting meetgenie orchestration server")

	registry := platform.NewRegistry(cfg.ProbeTimeout())
	if err := registerAdapters(registry, cfg); err != nil {
		return err
	}

	bus := audio.NewBus()
	eng := engine.New(registry, bus, events.LogSink{}, cfg.AdapterTimeout())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eng.AuthenticateAll(ctx, cfg.Credentials())

	if configPath != "" {
		go func() {
			err := config.Watch(ctx, configPath, func(newCfg *config.Config) {
				eng.AuthenticateAll(ctx, newCfg.Credentials())
			})
			if err != nil {
				log.WithError(err).Warn("Config watcher stopped")
			}
		}()
	}

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      server.New(eng, cfg),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 0, // streaming endpoints manage their own deadlines
	}

	go func() {
		log.Infof("HTTP server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	waitForShutdown(srv, eng, cancel)
	return nil
}

func registerAdapters(registry *platform.Registry, cfg *config.Config) error {
	zoomURL := cfg.Platforms.Zoom.BaseURL
	if zoomURL == "" {
		zoomURL = defaultZoomBaseURL
	}
	teamsURL := cfg.Platforms.Teams.BaseURL
	if teamsURL == "" {
		teamsURL = defaultTeamsBaseURL
	}
	meetURL := cfg.Platforms.GoogleMeet.BaseURL
	if meetURL == "" {
		meetURL = defaultMeetBaseURL
	}
	webexURL := cfg.Platforms.Webex.BaseURL
	if webexURL == "" {
		webexURL = defaultWebexBaseURL
	}

	for _, a := range []platform.Adapter{
		adapters.NewZoom(zoomURL),
		adapters.NewTeams(teamsURL),
		adapters.NewGoogleMeet(meetURL),
		adapters.NewWebex(webexURL),
	} {
		if err := registry.Register(a); err != nil {
			return fmt.Errorf("failed to register %s adapter: %w", a.Platform(), err)
		}
	}
	return nil
}

func waitForShutdown(srv *http.Server, eng *engine.Engine, cancel context.CancelFunc) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	log.Info("Shutting down server...")
	cancel()

	ctx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	eng.Shutdown(ctx)

	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Error during HTTP server shutdown")
	}

	log.Info("Server shutdown complete.")
}
