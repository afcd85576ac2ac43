package response

import (
	"time"

	"github.com/mcoot/scrimbot/internal/model"
)

// Game represents a game in API responses
type Game struct {
	Code              string     `json:"game_code"`
	Mode              string     `json:"mode"`
	CreatorID         string     `json:"creator_id"`
	AnnounceChannelID string     `json:"announce_channel_id,omitempty"`
	AnnounceMessageID string     `json:"announce_message_id,omitempty"`
	Status            string     `json:"status"`
	Limit             int        `json:"limit"`
	WinnerEpicNames   []string   `json:"winner_epic_names"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	EndTime           *time.Time `json:"end_time"`
}

// GameFromModel converts a model.Game to a response Game
func GameFromModel(g *model.Game) Game {
	winners := g.WinnerEpicNames
	if winners == nil {
		winners = []string{}
	}
	return Game{
		Code:              string(g.Code),
		Mode:              string(g.Mode),
		CreatorID:         string(g.CreatorID),
		AnnounceChannelID: g.AnnounceChannelID,
		AnnounceMessageID: g.AnnounceMessageID,
		Status:            string(g.Status),
		Limit:             g.Limit,
		WinnerEpicNames:   winners,
		CreatedAt:         g.CreatedAt.UTC(),
		UpdatedAt:         g.UpdatedAt.UTC(),
		EndTime:           utc(g.EndTime),
	}
}

// GamesFromModel converts a slice of games
func GamesFromModel(games []*model.Game) []Game {
	out := make([]Game, len(games))
	for i, g := range games {
		out[i] = GameFromModel(g)
	}
	return out
}

// Participant is a player registered in a game
type Participant struct {
	PlayerID string `json:"discord_id"`
	EpicName string `json:"epic_name"`
	HasWon   bool   `json:"has_won_game"`
}

// ParticipantsFromModel converts a game's participants
func ParticipantsFromModel(ps []model.Participant) []Participant {
	out := make([]Participant, len(ps))
	for i, p := range ps {
		out[i] = Participant{PlayerID: string(p.PlayerID), EpicName: p.EpicName, HasWon: p.HasWon}
	}
	return out
}

// Player represents a player in API responses
type Player struct {
	ID                string    `json:"discord_id"`
	EpicName          string    `json:"epic_name"`
	YouTubeURL        string    `json:"youtube_url,omitempty"`
	YouTubeChannelID  string    `json:"yt_channel_id,omitempty"`
	TwitchUsername    string    `json:"twitch_username,omitempty"`
	TwitchUserID      string    `json:"twitch_user_id,omitempty"`
	TwitchLogin       string    `json:"twitch_login,omitempty"`
	TwitchDisplayName string    `json:"twitch_display_name,omitempty"`
	DiscordNameAtLink string    `json:"discord_name_at_link,omitempty"`
	IsCreator         bool      `json:"is_creator"`
	GameCount         int       `json:"game_count"`
	TotalWins         int       `json:"total_wins"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player) Player {
	return Player{
		ID:                string(p.ID),
		EpicName:          p.EpicName,
		YouTubeURL:        p.YouTubeURL,
		YouTubeChannelID:  p.YouTubeChannelID,
		TwitchUsername:    p.TwitchUsername,
		TwitchUserID:      p.TwitchUserID,
		TwitchLogin:       p.TwitchLogin,
		TwitchDisplayName: p.TwitchDisplayName,
		DiscordNameAtLink: p.DiscordNameAtLink,
		IsCreator:         p.IsCreator,
		GameCount:         p.GameCount,
		TotalWins:         p.TotalWins,
		CreatedAt:         p.CreatedAt.UTC(),
		UpdatedAt:         p.UpdatedAt.UTC(),
	}
}

// PlayersFromModel converts a slice of players
func PlayersFromModel(players []*model.Player) []Player {
	out := make([]Player, len(players))
	for i, p := range players {
		out[i] = PlayerFromModel(p)
	}
	return out
}

// Participation is a game a player took part in
type Participation struct {
	GameCode  string    `json:"game_code"`
	Mode      string    `json:"mode"`
	HasWon    bool      `json:"has_won_game"`
	CreatedAt time.Time `json:"created_at"`
}

// ParticipationsFromModel converts a player's participation history
func ParticipationsFromModel(ps []model.Participation) []Participation {
	out := make([]Participation, len(ps))
	for i, p := range ps {
		out[i] = Participation{
			GameCode:  string(p.GameCode),
			Mode:      string(p.Mode),
			HasWon:    p.HasWon,
			CreatedAt: p.CreatedAt.UTC(),
		}
	}
	return out
}

// Sanction is an active role sanction
type Sanction struct {
	ID        string               `json:"id"`
	PlayerID  string               `json:"user_id"`
	Type      string               `json:"sanction_type"`
	EndTime   time.Time            `json:"end_time"`
	Roles     []model.RoleSnapshot `json:"roles"`
	CreatedAt time.Time            `json:"created_at"`
}

// SanctionStatus wraps a player's active sanction, nil when there is none
type SanctionStatus struct {
	ActiveSanction *Sanction `json:"active_sanction"`
}

// SanctionStatusFromModel converts an optional active sanction
func SanctionStatusFromModel(s *model.Sanction) SanctionStatus {
	if s == nil {
		return SanctionStatus{}
	}
	roles := s.Roles
	if roles == nil {
		roles = []model.RoleSnapshot{}
	}
	return SanctionStatus{ActiveSanction: &Sanction{
		ID:        string(s.ID),
		PlayerID:  string(s.PlayerID),
		Type:      s.Type,
		EndTime:   s.EndTime.UTC(),
		Roles:     roles,
		CreatedAt: s.CreatedAt.UTC(),
	}}
}

// Health is the health check response
type Health struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
