package sqlstore

import (
	"time"

	"gorm.io/datatypes"

	"github.com/mcoot/scrimbot/internal/model"
)

type playerRecord struct {
	DiscordID         string    `gorm:"column:discord_id;primaryKey;size:32"`
	EpicName          string    `gorm:"column:epic_name;size:64"`
	YouTubeURL        string    `gorm:"column:youtube_url"`
	YouTubeChannelID  string    `gorm:"column:yt_channel_id;size:64"`
	TwitchUsername    string    `gorm:"column:twitch_username;size:64"`
	TwitchUserID      string    `gorm:"column:twitch_user_id;size:32"`
	TwitchLogin       string    `gorm:"column:twitch_login;size:64"`
	TwitchDisplayName string    `gorm:"column:twitch_display_name;size:64"`
	DiscordNameAtLink string    `gorm:"column:discord_name_at_link;size:64"`
	IsCreator         bool      `gorm:"column:is_creator;not null;default:false"`
	GameCount         int       `gorm:"column:game_count;not null;default:0"`
	TotalWins         int       `gorm:"column:total_wins;not null;default:0"`
	CreatedAt         time.Time `gorm:"column:created_at"`
	UpdatedAt         time.Time `gorm:"column:updated_at"`
}

func (playerRecord) TableName() string {
	return "players"
}

func (r *playerRecord) toModel() *model.Player {
	return &model.Player{
		ID:                model.PlayerID(r.DiscordID),
		EpicName:          r.EpicName,
		YouTubeURL:        r.YouTubeURL,
		YouTubeChannelID:  r.YouTubeChannelID,
		TwitchUsername:    r.TwitchUsername,
		TwitchUserID:      r.TwitchUserID,
		TwitchLogin:       r.TwitchLogin,
		TwitchDisplayName: r.TwitchDisplayName,
		DiscordNameAtLink: r.DiscordNameAtLink,
		IsCreator:         r.IsCreator,
		GameCount:         r.GameCount,
		TotalWins:         r.TotalWins,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

func newPlayerRecord(p *model.Player) *playerRecord {
	return &playerRecord{
		DiscordID:         string(p.ID),
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
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

type gameRecord struct {
	Code              string                      `gorm:"column:game_code;primaryKey;size:64"`
	Mode              string                      `gorm:"column:mode;size:8;not null"`
	CreatorID         string                      `gorm:"column:creator_id;size:32"`
	AnnounceMessageID string                      `gorm:"column:announce_message_id;size:32;index"`
	AnnounceChannelID string                      `gorm:"column:announce_channel_id;size:32"`
	Status            string                      `gorm:"column:status;size:16;not null;index"`
	PlayerLimit       int                         `gorm:"column:player_limit"`
	Winners           datatypes.JSONSlice[string] `gorm:"column:winners"`
	CreatedAt         time.Time                   `gorm:"column:created_at"`
	UpdatedAt         time.Time                   `gorm:"column:updated_at"`
	EndTime           *time.Time                  `gorm:"column:end_time"`
}

func (gameRecord) TableName() string {
	return "games"
}

func (r *gameRecord) toModel() *model.Game {
	game := &model.Game{
		Code:              model.GameCode(r.Code),
		Mode:              model.GameMode(r.Mode),
		CreatorID:         model.PlayerID(r.CreatorID),
		AnnounceMessageID: r.AnnounceMessageID,
		AnnounceChannelID: r.AnnounceChannelID,
		Status:            model.GameStatus(r.Status),
		Limit:             r.PlayerLimit,
		WinnerEpicNames:   []string(r.Winners),
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
	if r.EndTime != nil {
		end := *r.EndTime
		game.EndTime = &end
	}
	return game
}

func newGameRecord(g *model.Game) *gameRecord {
	rec := &gameRecord{
		Code:              string(g.Code),
		Mode:              string(g.Mode),
		CreatorID:         string(g.CreatorID),
		AnnounceMessageID: g.AnnounceMessageID,
		AnnounceChannelID: g.AnnounceChannelID,
		Status:            string(g.Status),
		PlayerLimit:       g.Limit,
		CreatedAt:         g.CreatedAt.UTC(),
		UpdatedAt:         g.UpdatedAt.UTC(),
	}
	if len(g.WinnerEpicNames) > 0 {
		rec.Winners = datatypes.JSONSlice[string](g.WinnerEpicNames)
	}
	if g.EndTime != nil {
		end := g.EndTime.UTC()
		rec.EndTime = &end
	}
	return rec
}

type participantRecord struct {
	ID        uint         `gorm:"primaryKey"`
	GameCode  string       `gorm:"column:game_code;size:64;not null;uniqueIndex:idx_game_participant"`
	PlayerID  string       `gorm:"column:discord_id;size:32;not null;uniqueIndex:idx_game_participant;index"`
	HasWon    bool         `gorm:"column:has_won;not null;default:false"`
	CreatedAt time.Time    `gorm:"column:created_at"`
	Game      gameRecord   `gorm:"foreignKey:GameCode;references:Code;constraint:OnDelete:CASCADE"`
	Player    playerRecord `gorm:"foreignKey:PlayerID;references:DiscordID;constraint:OnDelete:CASCADE"`
}

func (participantRecord) TableName() string {
	return "game_participants"
}

type sanctionRecord struct {
	ID        string                                  `gorm:"column:id;primaryKey;size:36"`
	PlayerID  string                                  `gorm:"column:discord_id;size:32;not null;index"`
	Type      string                                  `gorm:"column:sanction_type;size:16;not null"`
	EndTime   time.Time                               `gorm:"column:end_time;not null;index"`
	Roles     datatypes.JSONSlice[model.RoleSnapshot] `gorm:"column:roles_removed"`
	CreatedAt time.Time                               `gorm:"column:created_at"`
}

func (sanctionRecord) TableName() string {
	return "sanctions"
}

func (r *sanctionRecord) toModel() *model.Sanction {
	return &model.Sanction{
		ID:        model.SanctionID(r.ID),
		PlayerID:  model.PlayerID(r.PlayerID),
		Type:      r.Type,
		EndTime:   r.EndTime,
		Roles:     []model.RoleSnapshot(r.Roles),
		CreatedAt: r.CreatedAt,
	}
}

func newSanctionRecord(s *model.Sanction) *sanctionRecord {
	return &sanctionRecord{
		ID:        string(s.ID),
		PlayerID:  string(s.PlayerID),
		Type:      s.Type,
		EndTime:   s.EndTime.UTC(),
		Roles:     datatypes.JSONSlice[model.RoleSnapshot](s.Roles),
		CreatedAt: s.CreatedAt.UTC(),
	}
}

// participantRow is the shape of the participants-of-a-game join
type participantRow struct {
	DiscordID string
	EpicName  string
	HasWon    bool
}

// participationRow is the shape of the games-of-a-player join
type participationRow struct {
	GameCode  string
	Mode      string
	HasWon    bool
	CreatedAt time.Time
}
