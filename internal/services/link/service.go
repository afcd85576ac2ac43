package link

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mcoot/scrimbot/internal/chat"
	"github.com/mcoot/scrimbot/internal/model"
	"github.com/mcoot/scrimbot/internal/services/identity"
	"github.com/mcoot/scrimbot/internal/storage"
)

// Component ids of the link panel
const (
	ButtonID     = "link_panel:open_modal"
	ModalID      = "link_panel:modal"
	InputEpic    = "epic_name"
	InputYouTube = "youtube_url"
	InputTwitch  = "twitch_username"
)

var (
	ErrEpicRequired  = errors.New("epic games name is required")
	ErrTwitchUnknown = errors.New("twitch handle could not be resolved")
)

// Request is a submitted link form
type Request struct {
	PlayerID     model.PlayerID
	DiscordName  string
	EpicName     string
	YouTubeURL   string
	TwitchHandle string
}

// Result is the linked profile
type Result struct {
	Player *model.Player
	// YouTubeResolved is false when a URL was given but its channel id was not found
	YouTubeResolved bool
	// TwitchResolved is false when a handle was given but Twitch could not be reached
	TwitchResolved bool
}

// Service links a member's Epic, YouTube and Twitch identities
type Service struct {
	storage storage.Storage
	twitch  identity.TwitchResolver
	youtube identity.YouTubeResolver
	logger  *slog.Logger
}

// New creates a new link Service
func New(storage storage.Storage, twitch identity.TwitchResolver, youtube identity.YouTubeResolver, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		twitch:  twitch,
		youtube: youtube,
		logger:  logger.With(slog.String("component", "link")),
	}
}

// Modal returns the link form, pre-filled from the member's current profile
func (s *Service) Modal(ctx context.Context, playerID model.PlayerID) chat.Modal {
	var epic, yt, twitch string
	player, err := s.storage.GetPlayer(ctx, playerID)
	switch {
	case err == nil:
		epic, yt, twitch = player.EpicName, player.YouTubeURL, player.TwitchLogin
	case !errors.Is(err, model.ErrPlayerNotFound):
		s.logger.Error("failed to load player for link form",
			slog.String("player_id", string(playerID)),
			slog.String("error", err.Error()),
		)
	}

	return chat.Modal{
		CustomID: ModalID,
		Title:    "Lier/Modifier Comptes",
		Inputs: []chat.TextInput{
			{CustomID: InputEpic, Label: "Pseudo Epic Games (Requis)", Value: epic, Required: true},
			{CustomID: InputYouTube, Label: "URL Chaîne YouTube (Optionnel)", Value: yt},
			{CustomID: InputTwitch, Label: "Pseudo Twitch (Optionnel)", Value: twitch},
		},
	}
}

// Link resolves the external identities and saves them on the profile.
// An unknown Twitch handle rejects the whole form; a YouTube lookup failure
// keeps the URL and leaves the channel id untouched.
func (s *Service) Link(ctx context.Context, req Request) (*Result, error) {
	epic := strings.TrimSpace(req.EpicName)
	if epic == "" {
		return nil, ErrEpicRequired
	}
	ytURL := strings.TrimSpace(req.YouTubeURL)
	handle := strings.TrimSpace(req.TwitchHandle)

	update := model.PlayerUpdate{
		EpicName:          &epic,
		YouTubeURL:        &ytURL,
		DiscordNameAtLink: &req.DiscordName,
	}

	res := &Result{}
	if handle != "" {
		user, err := s.twitch.ResolveUser(ctx, handle)
		switch {
		case errors.Is(err, identity.ErrTwitchUserNotFound):
			return nil, errors.Join(ErrTwitchUnknown, err)
		case err != nil:
			// The lookup is unavailable, the rest of the form still saves
			s.logger.Warn("twitch lookup failed",
				slog.String("handle", handle),
				slog.String("error", err.Error()),
			)
		default:
			update.TwitchUsername = &handle
			update.TwitchUserID = &user.ID
			update.TwitchLogin = &user.Login
			update.TwitchDisplayName = &user.DisplayName
			res.TwitchResolved = true
		}
	}

	if ytURL == "" {
		update.YouTubeChannelID = model.Ptr("")
	} else {
		id, err := s.youtube.ResolveChannelID(ctx, ytURL)
		if err != nil {
			s.logger.Warn("youtube channel not resolved",
				slog.String("url", ytURL),
				slog.String("error", err.Error()),
			)
		} else {
			update.YouTubeChannelID = &id
			res.YouTubeResolved = true
		}
	}

	if err := s.storage.UpsertPlayer(ctx, req.PlayerID, update); err != nil {
		s.logger.Error("failed to save linked accounts",
			slog.String("player_id", string(req.PlayerID)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	player, err := s.storage.GetPlayer(ctx, req.PlayerID)
	if err != nil {
		return nil, err
	}
	res.Player = player

	s.logger.Info("accounts linked",
		slog.String("player_id", string(req.PlayerID)),
		slog.String("epic_name", epic),
		slog.Bool("youtube", ytURL != ""),
		slog.Bool("twitch", handle != ""),
	)
	return res, nil
}

// SummaryEmbed renders the private confirmation of a link
func SummaryEmbed(p *model.Player) chat.Embed {
	embed := chat.Embed{
		Title:  "✅ Comptes Mis à Jour",
		Color:  chat.ColorGreen,
		Fields: []chat.EmbedField{{Name: "Pseudo Epic", Value: p.EpicName}},
	}
	if p.YouTubeURL != "" {
		embed.Fields = append(embed.Fields, chat.EmbedField{Name: "YouTube", Value: fmt.Sprintf("[Lien](%s)", p.YouTubeURL)})
	}
	if p.TwitchLogin != "" {
		embed.Fields = append(embed.Fields, chat.EmbedField{
			Name:  "Twitch",
			Value: fmt.Sprintf("[%s](https://twitch.tv/%s)", p.TwitchDisplayName, p.TwitchLogin),
		})
	}
	return embed
}
