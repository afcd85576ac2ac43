package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/mcoot/scrimbot/internal/api"
	"github.com/mcoot/scrimbot/internal/config"
	"github.com/mcoot/scrimbot/internal/dependencies/clock"
	"github.com/mcoot/scrimbot/internal/dependencies/ids"
	"github.com/mcoot/scrimbot/internal/discord"
	"github.com/mcoot/scrimbot/internal/factory"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Logging is not configured yet
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("fatal error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := factory.NewStorage(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	logger.Info("storage ready", slog.String("type", cfg.StorageType))

	twitch, youtube, err := factory.NewIdentityResolvers(ctx, cfg, logger)
	if err != nil {
		return err
	}

	session, err := discord.NewSession(cfg.BotToken)
	if err != nil {
		return err
	}

	clk := clock.New()
	app := factory.New(factory.Dependencies{
		Storage: store,
		Gateway: discord.NewGateway(session, logger),
		Twitch:  twitch,
		YouTube: youtube,
		Clock:   clk,
		IDs:     ids.New(),
		Logger:  logger,
	}, factory.SettingsFromConfig(cfg))

	serverConfig := api.DefaultServerConfig()
	serverConfig.Port = cfg.Port
	server := api.NewServer(api.NewRouter(api.RouterConfig{
		Logger:      logger,
		Storage:     store,
		StorageType: cfg.StorageType,
		Clock:       clk,
	}), serverConfig, logger)

	if err := server.Listen(); err != nil {
		return err
	}

	bot := discord.NewBot(session, app.Dispatcher, clk, logger, func(ctx context.Context) {
		if err := app.Start(ctx); err != nil {
			logger.Error("startup tasks failed", slog.String("error", err.Error()))
		}
	})
	if err := bot.Open(); err != nil {
		return err
	}
	defer func() { _ = bot.Close() }()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		app.Sanctions.RunSweeper(ctx, cfg.SanctionSweepInterval)
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started", slog.String("api_addr", server.Addr()))

	// Wait for shutdown or error
	var runErr error
	select {
	case err := <-errCh:
		if err != nil {
			runErr = err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	stop()
	if err := server.Shutdown(context.Background()); err != nil {
		runErr = errors.Join(runErr, err)
	}
	wg.Wait()
	return runErr
}
