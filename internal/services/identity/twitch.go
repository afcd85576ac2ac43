package identity

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/nicklaw5/helix/v2"
)

// helixAPI is the part of the Helix client the resolver uses
type helixAPI interface {
	GetUsers(params *helix.UsersParams) (*helix.UsersResponse, error)
	RequestAppAccessToken(scopes []string) (*helix.AppAccessTokenResponse, error)
	SetAppAccessToken(accessToken string)
}

// Twitch resolves logins with an app access token, refreshed on 401
type Twitch struct {
	api    helixAPI
	logger *slog.Logger

	mu       sync.Mutex
	hasToken bool
}

// Ensure Twitch implements TwitchResolver
var _ TwitchResolver = (*Twitch)(nil)

// NewTwitch creates a resolver authenticating with client credentials
func NewTwitch(clientID, clientSecret string, logger *slog.Logger) (*Twitch, error) {
	client, err := helix.NewClient(&helix.Options{
		ClientID:     clientID,
		ClientSecret: clientSecret,
	})
	if err != nil {
		return nil, fmt.Errorf("create helix client: %w", err)
	}
	return newTwitch(client, logger), nil
}

func newTwitch(api helixAPI, logger *slog.Logger) *Twitch {
	return &Twitch{
		api:    api,
		logger: logger.With(slog.String("component", "twitch")),
	}
}

// CleanTwitchHandle reduces a handle or channel URL to a lower-case login
func CleanTwitchHandle(handle string) string {
	handle = strings.TrimSpace(handle)
	if i := strings.IndexAny(handle, "?#"); i >= 0 {
		handle = handle[:i]
	}
	handle = strings.TrimRight(handle, "/")
	if i := strings.LastIndex(handle, "/"); i >= 0 {
		handle = handle[i+1:]
	}
	return strings.ToLower(strings.TrimPrefix(handle, "@"))
}

// ResolveUser returns the Twitch account for a login or channel URL
func (t *Twitch) ResolveUser(ctx context.Context, handle string) (*TwitchUser, error) {
	login := CleanTwitchHandle(handle)
	if login == "" {
		return nil, ErrTwitchUserNotFound
	}

	resp, err := t.getUsers(ctx, login, false)
	if err == nil && resp.StatusCode == http.StatusUnauthorized {
		t.logger.Info("twitch token rejected, refreshing")
		resp, err = t.getUsers(ctx, login, true)
	}
	if err != nil {
		return nil, err
	}
	if resp.ErrorMessage != "" {
		return nil, fmt.Errorf("helix get users: %d %s", resp.StatusCode, resp.ErrorMessage)
	}
	if len(resp.Data.Users) == 0 {
		return nil, ErrTwitchUserNotFound
	}

	u := resp.Data.Users[0]
	return &TwitchUser{ID: u.ID, Login: u.Login, DisplayName: u.DisplayName}, nil
}

func (t *Twitch) getUsers(ctx context.Context, login string, refresh bool) (*helix.UsersResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := t.ensureToken(refresh); err != nil {
		return nil, err
	}
	return t.api.GetUsers(&helix.UsersParams{Logins: []string{login}})
}

func (t *Twitch) ensureToken(refresh bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.hasToken && !refresh {
		return nil
	}

	resp, err := t.api.RequestAppAccessToken(nil)
	if err != nil {
		return fmt.Errorf("request twitch app token: %w", err)
	}
	if resp.StatusCode != http.StatusOK || resp.Data.AccessToken == "" {
		return fmt.Errorf("request twitch app token: %d %s", resp.StatusCode, resp.ErrorMessage)
	}
	t.api.SetAppAccessToken(resp.Data.AccessToken)
	t.hasToken = true
	return nil
}
