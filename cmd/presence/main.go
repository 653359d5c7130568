package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/Belphemur/KodiPresence/internal/cache"
	"github.com/Belphemur/KodiPresence/internal/config"
	"github.com/Belphemur/KodiPresence/internal/discord"
	"github.com/Belphemur/KodiPresence/internal/engine"
	grpcserver "github.com/Belphemur/KodiPresence/internal/grpc"
	"github.com/Belphemur/KodiPresence/internal/kodi"
	"github.com/Belphemur/KodiPresence/internal/metadata"
	"github.com/Belphemur/KodiPresence/internal/metrics"
	"github.com/Belphemur/KodiPresence/internal/presence"
	"github.com/Belphemur/KodiPresence/internal/publisher"
	"github.com/Belphemur/KodiPresence/internal/reporting"
	"github.com/Belphemur/KodiPresence/internal/tmdb"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg := config.GetConfig()
	logger := config.GetLogger()

	if cfg.Discord.ClientID == "" {
		logger.Fatal().Msg("discord.client_id is required (APP_DISCORD_CLIENT_ID)")
	}

	logger.Info().
		Str("version", version).
		Str("kodi_host", cfg.Kodi.Host).
		Int("kodi_port", cfg.Kodi.Port).
		Str("cache_provider", cfg.Cache.Provider).
		Bool("imdb_button", cfg.IMDBButton).
		Msg("Application started with configuration")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reporter, err := reporting.New(reporting.Options{
		DSN:         cfg.Sentry.DSN,
		Environment: cfg.Sentry.Environment,
		Release:     version,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialise error reporting")
	}
	defer reporter.Flush()

	var service metadata.Service
	if cfg.TMDB.APIKey != "" {
		service = tmdb.NewClient(cfg)
	} else {
		logger.Warn().Msg("No TMDB API key configured, artwork and IMDb links are disabled")
	}

	resolver, err := metadata.NewResolver(service, cfg.Cache.Provider, cache.ProviderConfig{
		Size:          cfg.Cache.Size,
		TTL:           config.ParseDuration("cache.ttl", cfg.Cache.TTL, 0),
		Logger:        cache.NewZerologLogger(logger),
		RedisAddress:  cfg.Cache.Redis.Address,
		RedisPassword: cfg.Cache.Redis.Password,
		RedisDB:       cfg.Cache.Redis.DB,
	})
	if err != nil {
		logger.Fatal().Err(err).Str("provider", cfg.Cache.Provider).Msg("Failed to create metadata cache")
	}
	defer func() {
		if err := resolver.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close metadata cache")
		}
	}()

	discordClient := discord.New(cfg.Discord.ClientID)
	if err := discordClient.Connect(ctx); err != nil {
		logger.Warn().Err(err).Msg("Discord is not reachable yet, will retry on the next update")
	}
	pub := publisher.New(discordClient)
	defer func() {
		if err := pub.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close Discord connection")
		}
	}()

	if cfg.Metrics.Enabled {
		metricsServer := metrics.NewHTTPServer(cfg.Metrics.Address, cfg.Metrics.Port)
		go func() {
			logger.Info().Str("address", metricsServer.Addr).Msg("Starting Prometheus metrics HTTP server")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Fatal().Err(err).Msg("Failed to serve metrics")
			}
		}()
		defer func() {
			if err := metricsServer.Shutdown(context.Background()); err != nil {
				logger.Error().Err(err).Msg("Failed to shutdown metrics server")
			}
		}()
	}

	opts := engine.Options{
		IdleInterval:  config.ParseDuration("poll.idle_interval", cfg.Poll.IdleInterval, 0),
		SeekTolerance: config.ParseDuration("poll.seek_tolerance", cfg.Poll.SeekTolerance, 0),
		Errors:        reporter,
	}

	if cfg.Health.Enabled {
		grpcServer, playerHealth := grpcserver.NewGRPCServer()
		address := fmt.Sprintf("%s:%d", cfg.Health.Address, cfg.Health.Port)
		listener, err := net.Listen("tcp", address)
		if err != nil {
			logger.Fatal().Err(err).Str("address", address).Msg("Failed to create listener")
		}
		go func() {
			logger.Info().Str("address", address).Msg("Starting gRPC health server")
			if err := grpcServer.Serve(listener); err != nil {
				logger.Error().Err(err).Msg("Failed to serve gRPC")
			}
		}()
		defer func() {
			playerHealth.Shutdown()
			grpcServer.GracefulStop()
		}()
		opts.Status = playerHealth
	}

	mapper := presence.NewMapper(presence.Options{
		IMDBButton:   cfg.IMDBButton,
		DefaultImage: cfg.Discord.DefaultImage,
	})

	loop := engine.New(kodi.NewClient(cfg), resolver, mapper, pub, opts)
	if err := loop.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("Polling loop stopped")
	}

	logger.Info().Msg("Stopped gracefully")
}
