package model

import "time"

// PlayerID is the chat platform user id of a player
type PlayerID string

// Player is a community member who has linked their game identity
type Player struct {
	ID                PlayerID
	EpicName          string // Epic Games handle, required to join games
	YouTubeURL        string
	YouTubeChannelID  string
	TwitchUsername    string
	TwitchUserID      string
	TwitchLogin       string
	TwitchDisplayName string
	DiscordNameAtLink string
	IsCreator         bool // may manage game sessions without being an administrator
	GameCount         int
	TotalWins         int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsLinked returns true if the player has linked an Epic Games handle
func (p *Player) IsLinked() bool {
	return p != nil && p.EpicName != ""
}

// PlayerUpdate carries the columns supplied to an upsert.
// Nil fields are left untouched on existing rows.
type PlayerUpdate struct {
	EpicName          *string
	YouTubeURL        *string
	YouTubeChannelID  *string
	TwitchUsername    *string
	TwitchUserID      *string
	TwitchLogin       *string
	TwitchDisplayName *string
	DiscordNameAtLink *string
	IsCreator         *bool
}

// Apply copies the supplied fields onto the player
func (u PlayerUpdate) Apply(p *Player) {
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setString(&p.EpicName, u.EpicName)
	setString(&p.YouTubeURL, u.YouTubeURL)
	setString(&p.YouTubeChannelID, u.YouTubeChannelID)
	setString(&p.TwitchUsername, u.TwitchUsername)
	setString(&p.TwitchUserID, u.TwitchUserID)
	setString(&p.TwitchLogin, u.TwitchLogin)
	setString(&p.TwitchDisplayName, u.TwitchDisplayName)
	setString(&p.DiscordNameAtLink, u.DiscordNameAtLink)
	if u.IsCreator != nil {
		p.IsCreator = *u.IsCreator
	}
}

// Columns returns the storage column names of the supplied fields
func (u PlayerUpdate) Columns() map[string]any {
	cols := make(map[string]any)
	add := func(name string, v *string) {
		if v != nil {
			cols[name] = *v
		}
	}
	add("epic_name", u.EpicName)
	add("youtube_url", u.YouTubeURL)
	add("yt_channel_id", u.YouTubeChannelID)
	add("twitch_username", u.TwitchUsername)
	add("twitch_user_id", u.TwitchUserID)
	add("twitch_login", u.TwitchLogin)
	add("twitch_display_name", u.TwitchDisplayName)
	add("discord_name_at_link", u.DiscordNameAtLink)
	if u.IsCreator != nil {
		cols["is_creator"] = *u.IsCreator
	}
	return cols
}

// Ptr returns a pointer to v, for building PlayerUpdate values
func Ptr[T any](v T) *T {
	return &v
}
