// Package discord adapts a discordgo session to the chat port and feeds
// gateway events to the dispatcher.
package discord

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/mcoot/scrimbot/internal/chat"
	"github.com/mcoot/scrimbot/internal/dependencies/clock"
	"github.com/mcoot/scrimbot/internal/model"
)

// Intents needed for reactions, member lookups and DMs
const Intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMembers |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsGuildMessageReactions |
	discordgo.IntentsDirectMessages

// Handler receives translated events
type Handler interface {
	Dispatch(ctx context.Context, ev model.Event, resp chat.Responder) error
}

// Bot owns the gateway connection
type Bot struct {
	session *discordgo.Session
	handler Handler
	clock   clock.Clock
	logger  *slog.Logger
	// eventTimeout bounds the handling of one event, mode prompts included
	eventTimeout time.Duration

	onReady func(ctx context.Context)
}

// NewSession creates an unopened discordgo session for a bot token
func NewSession(token string) (*discordgo.Session, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	s.Identify.Intents = Intents
	return s, nil
}

// NewBot creates a Bot. onReady runs once per (re)connection.
func NewBot(session *discordgo.Session, handler Handler, clock clock.Clock, logger *slog.Logger, onReady func(ctx context.Context)) *Bot {
	return &Bot{
		session:      session,
		handler:      handler,
		clock:        clock,
		logger:       logger.With(slog.String("component", "discord")),
		eventTimeout: 2 * time.Minute,
		onReady:      onReady,
	}
}

// Open registers the event handlers and connects
func (b *Bot) Open() error {
	b.session.AddHandler(b.ready)
	b.session.AddHandler(b.reactionAdded)
	b.session.AddHandler(b.interactionCreated)
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open discord gateway: %w", err)
	}
	return nil
}

// Close disconnects from the gateway
func (b *Bot) Close() error {
	return b.session.Close()
}

func (b *Bot) ready(s *discordgo.Session, r *discordgo.Ready) {
	b.logger.Info("discord ready",
		slog.String("user", r.User.Username),
		slog.Int("guilds", len(r.Guilds)),
	)
	if b.onReady != nil {
		ctx, cancel := context.WithTimeout(context.Background(), b.eventTimeout)
		defer cancel()
		b.onReady(ctx)
	}
}

func (b *Bot) reactionAdded(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	if r.MessageReaction == nil || r.GuildID == "" {
		return
	}
	ev := reactionEvent(r, b.clock.Now())
	b.dispatch(ev, nil)
}

func (b *Bot) interactionCreated(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ev, ok := interactionEvent(i, b.clock.Now())
	if !ok {
		return
	}
	b.dispatch(ev, newResponder(s, i.Interaction))
}

func (b *Bot) dispatch(ev model.Event, resp chat.Responder) {
	ctx, cancel := context.WithTimeout(context.Background(), b.eventTimeout)
	defer cancel()

	defer func() {
		if rec := recover(); rec != nil {
			b.logger.Error("panic handling event",
				slog.String("type", string(ev.Type)),
				slog.Any("panic", rec),
			)
		}
	}()

	if err := b.handler.Dispatch(ctx, ev, resp); err != nil {
		b.logger.Error("failed to handle event",
			slog.String("type", string(ev.Type)),
			slog.String("actor_id", string(ev.Actor.ID)),
			slog.String("error", err.Error()),
		)
	}
}
