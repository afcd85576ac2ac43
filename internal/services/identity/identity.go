// Package identity resolves the external accounts a player links to their
// profile: Twitch users through Helix and YouTube channels through the Data API.
package identity

import (
	"context"
	"errors"
)

var (
	ErrTwitchUserNotFound     = errors.New("twitch user not found")
	ErrYouTubeChannelNotFound = errors.New("youtube channel not found")
	ErrInvalidYouTubeURL      = errors.New("not a youtube channel url")
	ErrNotConfigured          = errors.New("identity resolver not configured")
)

// TwitchUser is a resolved Twitch account
type TwitchUser struct {
	ID          string
	Login       string
	DisplayName string
}

// TwitchResolver looks up Twitch accounts by login
type TwitchResolver interface {
	ResolveUser(ctx context.Context, handle string) (*TwitchUser, error)
}

// YouTubeResolver turns a channel URL into a channel id
type YouTubeResolver interface {
	ResolveChannelID(ctx context.Context, channelURL string) (string, error)
}

// Disabled is used in place of a resolver whose credentials are missing
type Disabled struct{}

func (Disabled) ResolveUser(ctx context.Context, handle string) (*TwitchUser, error) {
	return nil, ErrNotConfigured
}

func (Disabled) ResolveChannelID(ctx context.Context, channelURL string) (string, error) {
	return "", ErrNotConfigured
}
