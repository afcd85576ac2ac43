package admin

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/mcoot/scrimbot/internal/chat"
	"github.com/mcoot/scrimbot/internal/model"
	"github.com/mcoot/scrimbot/internal/services/auth"
	"github.com/mcoot/scrimbot/internal/services/link"
	"github.com/mcoot/scrimbot/internal/services/member"
	"github.com/mcoot/scrimbot/internal/storage"
)

// Text input ids of the admin forms
const (
	InputGameCode = "game_code"
	InputMember   = "member"
	InputWinner   = "winner"
)

const modalSuffix = ":modal"

// Config holds the panel channels
type Config struct {
	AdminChannelID string
	LinkChannelID  string
	// PurgeLimit is how many recent messages are scanned for old panels
	PurgeLimit int
}

// DefaultConfig returns the default panel settings with no channels
func DefaultConfig() Config {
	return Config{PurgeLimit: 20}
}

// Service manages the persistent panels and the creator flag
type Service struct {
	storage storage.Storage
	gateway chat.Gateway
	members *member.Resolver
	cfg     Config
	logger  *slog.Logger
}

// New creates a new admin Service
func New(storage storage.Storage, gateway chat.Gateway, members *member.Resolver, cfg Config, logger *slog.Logger) *Service {
	if cfg.PurgeLimit == 0 {
		cfg.PurgeLimit = DefaultConfig().PurgeLimit
	}
	return &Service{
		storage: storage,
		gateway: gateway,
		members: members,
		cfg:     cfg,
		logger:  logger.With(slog.String("component", "admin")),
	}
}

// AdminPanel is the admin panel message
func AdminPanel() chat.OutboundMessage {
	return chat.OutboundMessage{
		Embed: &chat.Embed{
			Title:       "🛠️ Panneau Administrateur",
			Description: "Actions rapides pour les créateurs de parties.",
			Color:       chat.ColorDarkRed,
		},
		Buttons: []chat.Button{
			{CustomID: string(auth.StartGame), Label: "Lancer Partie", Emoji: "🚀", Style: chat.ButtonSuccess, Row: 0},
			{CustomID: string(auth.Punish), Label: "Sanctionner", Emoji: "🔨", Style: chat.ButtonDanger, Row: 0},
			{CustomID: string(auth.AuthCreator), Label: "Autoriser Créateur", Emoji: "➕", Style: chat.ButtonSecondary, Row: 0},
			{CustomID: string(auth.Unpunish), Label: "Lever Sanction", Emoji: "🕊️", Style: chat.ButtonSecondary, Row: 1},
			{CustomID: string(auth.EndGame), Label: "Terminer Partie", Emoji: "🏆", Style: chat.ButtonPrimary, Row: 1},
			{CustomID: string(auth.RevokeCreator), Label: "Retirer Créateur", Emoji: "➖", Style: chat.ButtonSecondary, Row: 1},
			{CustomID: string(auth.RecreatePanel), Label: "Recréer Panel", Emoji: "♻️", Style: chat.ButtonDanger, Row: 2},
		},
	}
}

// LinkPanel is the account linking panel message
func LinkPanel() chat.OutboundMessage {
	return chat.OutboundMessage{
		Embed: &chat.Embed{
			Title:       "🔗 Liaison Comptes & Epic",
			Description: "Cliquez pour lier/modifier vos comptes (Epic, YouTube, Twitch).\n**Obligatoire pour participer.**",
			Color:       chat.ColorBlurple,
		},
		Buttons: []chat.Button{
			{CustomID: link.ButtonID, Label: "🔗 Lier/Modifier Comptes & Epic", Style: chat.ButtonPrimary},
		},
	}
}

// ModalID returns the id of the form opened by a capability's button
func ModalID(c auth.Capability) string {
	return string(c) + modalSuffix
}

// CapabilityOf returns the capability a submitted form belongs to
func CapabilityOf(modalID string) (auth.Capability, bool) {
	c, ok := strings.CutSuffix(modalID, modalSuffix)
	if !ok {
		return "", false
	}
	_, known := Modal(auth.Capability(c))
	return auth.Capability(c), known
}

// Modal returns the form opened by a capability's button.
// Capabilities that act immediately have no form.
func Modal(c auth.Capability) (chat.Modal, bool) {
	memberInput := []chat.TextInput{{CustomID: InputMember, Label: "ID, Mention, ou Nom#Tag du Membre", Required: true}}
	var title string
	inputs := memberInput

	switch c {
	case auth.StartGame:
		title = "Lancer Nouvelle Partie"
		inputs = []chat.TextInput{{CustomID: InputGameCode, Label: "Nom/Code de la partie", Required: true}}
	case auth.EndGame:
		title = "Terminer Partie et Désigner Gagnant"
		inputs = []chat.TextInput{
			{CustomID: InputGameCode, Label: "Nom/Code exact de la partie", Required: true},
			{CustomID: InputWinner, Label: "ID, Mention, ou Nom#Tag du Gagnant", Required: true},
		}
	case auth.Punish:
		title = "Sanctionner un Membre"
	case auth.Unpunish:
		title = "Lever Sanction"
	case auth.AuthCreator:
		title = "Autoriser Créateur"
	case auth.RevokeCreator:
		title = "Retirer Autorisation"
	default:
		return chat.Modal{}, false
	}
	return chat.Modal{CustomID: ModalID(c), Title: title, Inputs: inputs}, true
}

// RecreatePanels reposts both panels in their configured channels
func (s *Service) RecreatePanels(ctx context.Context) error {
	return errors.Join(
		s.recreate(ctx, "admin", s.cfg.AdminChannelID, AdminPanel()),
		s.recreate(ctx, "link", s.cfg.LinkChannelID, LinkPanel()),
	)
}

// RecreateAdminPanel reposts the admin panel
func (s *Service) RecreateAdminPanel(ctx context.Context) error {
	return s.recreate(ctx, "admin", s.cfg.AdminChannelID, AdminPanel())
}

// recreate deletes the bot's recent messages in the channel, then posts the panel
func (s *Service) recreate(ctx context.Context, panel, channelID string, msg chat.OutboundMessage) error {
	if channelID == "" {
		s.logger.Warn("panel channel not configured", slog.String("panel", panel))
		return nil
	}
	if err := s.gateway.PurgeOwnMessages(ctx, channelID, s.cfg.PurgeLimit); err != nil {
		s.logger.Error("failed to purge panel channel",
			slog.String("panel", panel),
			slog.String("channel_id", channelID),
			slog.String("error", err.Error()),
		)
		return err
	}
	if _, err := s.gateway.Send(ctx, channelID, msg); err != nil {
		s.logger.Error("failed to post panel",
			slog.String("panel", panel),
			slog.String("channel_id", channelID),
			slog.String("error", err.Error()),
		)
		return err
	}
	s.logger.Info("panel recreated", slog.String("panel", panel), slog.String("channel_id", channelID))
	return nil
}

// GrantCreator lets a member manage games. Bots are refused.
func (s *Service) GrantCreator(ctx context.Context, identifier string) (*chat.Member, error) {
	target, err := s.members.Resolve(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if target.Bot {
		return target, model.ErrBotAccount
	}
	return target, s.setCreator(ctx, target, true)
}

// RevokeCreator removes a member's creator flag
func (s *Service) RevokeCreator(ctx context.Context, identifier string) (*chat.Member, error) {
	target, err := s.members.Resolve(ctx, identifier)
	if err != nil {
		return nil, err
	}
	return target, s.setCreator(ctx, target, false)
}

func (s *Service) setCreator(ctx context.Context, target *chat.Member, creator bool) error {
	if err := s.storage.UpsertPlayer(ctx, model.PlayerID(target.ID), model.PlayerUpdate{IsCreator: &creator}); err != nil {
		s.logger.Error("failed to update creator flag",
			slog.String("player_id", target.ID),
			slog.String("error", err.Error()),
		)
		return err
	}
	s.logger.Info("creator flag updated",
		slog.String("player_id", target.ID),
		slog.Bool("is_creator", creator),
	)
	return nil
}
