package factory

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mcoot/scrimbot/internal/chat"
	"github.com/mcoot/scrimbot/internal/config"
	"github.com/mcoot/scrimbot/internal/dependencies/clock"
	"github.com/mcoot/scrimbot/internal/dependencies/ids"
	"github.com/mcoot/scrimbot/internal/model"
	"github.com/mcoot/scrimbot/internal/services/admin"
	"github.com/mcoot/scrimbot/internal/services/auth"
	"github.com/mcoot/scrimbot/internal/services/dispatch"
	"github.com/mcoot/scrimbot/internal/services/game"
	"github.com/mcoot/scrimbot/internal/services/identity"
	"github.com/mcoot/scrimbot/internal/services/link"
	"github.com/mcoot/scrimbot/internal/services/member"
	"github.com/mcoot/scrimbot/internal/services/prompt"
	"github.com/mcoot/scrimbot/internal/services/sanction"
	"github.com/mcoot/scrimbot/internal/services/session"
	"github.com/mcoot/scrimbot/internal/storage"
	"github.com/mcoot/scrimbot/internal/storage/memory"
	redisstorage "github.com/mcoot/scrimbot/internal/storage/redis"
	"github.com/mcoot/scrimbot/internal/storage/sqlstore"
)

// Settings is the guild layout and timings the services run with
type Settings struct {
	GuildID             string
	AdminPanelChannelID string
	LinkPanelChannelID  string
	ResultsChannelID    string
	Modes               []model.ModeConfig
	ModePromptTimeout   time.Duration
	SanctionDuration    time.Duration
}

// SettingsFromConfig extracts the service settings from the process config
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		GuildID:             cfg.GuildID,
		AdminPanelChannelID: cfg.AdminPanelChannelID,
		LinkPanelChannelID:  cfg.LinkPanelChannelID,
		ResultsChannelID:    cfg.ResultsChannelID,
		Modes:               cfg.Modes(),
		ModePromptTimeout:   cfg.ModePromptTimeout,
		SanctionDuration:    cfg.SanctionDuration,
	}
}

// Dependencies are the outbound ports an App is built on
type Dependencies struct {
	Storage storage.Storage
	Gateway chat.Gateway
	Twitch  identity.TwitchResolver
	YouTube identity.YouTubeResolver
	Clock   clock.Clock
	IDs     ids.Generator
	Logger  *slog.Logger
}

// App contains all wired application components
type App struct {
	Storage storage.Storage
	Gateway chat.Gateway
	Clock   clock.Clock

	Registry       *session.Registry
	Waiter         *prompt.Waiter
	Members        *member.Resolver
	AuthService    *auth.Service
	GameController *game.Controller
	Sanctions      *sanction.Service
	AdminService   *admin.Service
	LinkService    *link.Service
	Dispatcher     *dispatch.Dispatcher
}

// New wires the services on the given dependencies
func New(deps Dependencies, settings Settings) *App {
	logger := deps.Logger
	registry := session.NewRegistry()
	waiter := prompt.NewWaiter()
	members := member.NewResolver(deps.Gateway, settings.GuildID)

	gameCfg := game.DefaultConfig()
	gameCfg.GuildID = settings.GuildID
	gameCfg.LinkPanelChannelID = settings.LinkPanelChannelID
	gameCfg.ResultsChannelID = settings.ResultsChannelID
	if settings.Modes != nil {
		gameCfg.Modes = settings.Modes
	}
	if settings.ModePromptTimeout > 0 {
		gameCfg.ModePromptTimeout = settings.ModePromptTimeout
	}

	authService := auth.New(deps.Storage, logger)
	gameController := game.NewController(deps.Storage, registry, waiter, deps.Gateway, members, deps.Clock, gameCfg, logger)
	sanctions := sanction.New(deps.Storage, deps.Gateway, members, deps.Clock, deps.IDs,
		sanction.Config{GuildID: settings.GuildID, Duration: settings.SanctionDuration}, logger)
	adminService := admin.New(deps.Storage, deps.Gateway, members,
		admin.Config{AdminChannelID: settings.AdminPanelChannelID, LinkChannelID: settings.LinkPanelChannelID}, logger)
	linkService := link.New(deps.Storage, deps.Twitch, deps.YouTube, logger)

	return &App{
		Storage:        deps.Storage,
		Gateway:        deps.Gateway,
		Clock:          deps.Clock,
		Registry:       registry,
		Waiter:         waiter,
		Members:        members,
		AuthService:    authService,
		GameController: gameController,
		Sanctions:      sanctions,
		AdminService:   adminService,
		LinkService:    linkService,
		Dispatcher:     dispatch.New(authService, gameController, sanctions, adminService, linkService, waiter, logger),
	}
}

// Start restores the active sessions and posts fresh panels.
// It runs every time the gateway connection becomes ready.
func (a *App) Start(ctx context.Context) error {
	if _, err := a.GameController.Rehydrate(ctx); err != nil {
		return fmt.Errorf("rehydrate sessions: %w", err)
	}
	if err := a.AdminService.RecreatePanels(ctx); err != nil {
		return fmt.Errorf("recreate panels: %w", err)
	}
	return nil
}

// NewStorage opens the backend selected by the config
func NewStorage(cfg *config.Config, logger *slog.Logger) (storage.Storage, error) {
	switch cfg.StorageType {
	case config.StorageMemory:
		return memory.New(), nil
	case config.StoragePostgres:
		return sqlstore.NewPostgres(cfg.PostgresDSN(), logger)
	case config.StorageSQLite:
		return sqlstore.NewSQLite(cfg.SQLitePath, logger)
	case config.StorageRedis:
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		return redisstorage.New(redisCfg)
	default:
		return nil, fmt.Errorf("invalid storage type %q", cfg.StorageType)
	}
}

// NewIdentityResolvers builds the Twitch and YouTube lookups.
// A service without credentials gets a resolver that always fails.
func NewIdentityResolvers(ctx context.Context, cfg *config.Config, logger *slog.Logger) (identity.TwitchResolver, identity.YouTubeResolver, error) {
	var twitch identity.TwitchResolver = identity.Disabled{}
	var youtube identity.YouTubeResolver = identity.Disabled{}

	if cfg.TwitchEnabled() {
		t, err := identity.NewTwitch(cfg.TwitchClientID, cfg.TwitchClientSecret, logger)
		if err != nil {
			return nil, nil, err
		}
		twitch = t
	} else {
		logger.Warn("twitch lookups disabled, TWITCH_CLIENT_ID is not set")
	}

	if cfg.YouTubeEnabled() {
		y, err := identity.NewYouTube(ctx, cfg.YouTubeAPIKey)
		if err != nil {
			return nil, nil, err
		}
		youtube = y
	} else {
		logger.Warn("youtube lookups disabled, YOUTUBE_API_KEY is not set")
	}

	return twitch, youtube, nil
}
