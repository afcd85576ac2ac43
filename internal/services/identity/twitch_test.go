package identity

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/nicklaw5/helix/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/scrimbot/internal/testutil"
)

type fakeHelix struct {
	users        map[string]helix.User
	validToken   string
	tokens       []string
	current      string
	tokenErr     error
	lookups      []string
	usersErr     error
	errorMessage string
}

func (f *fakeHelix) GetUsers(params *helix.UsersParams) (*helix.UsersResponse, error) {
	f.lookups = append(f.lookups, params.Logins...)
	if f.usersErr != nil {
		return nil, f.usersErr
	}
	resp := &helix.UsersResponse{}
	if f.current != f.validToken {
		resp.StatusCode = http.StatusUnauthorized
		resp.ErrorMessage = "Invalid OAuth token"
		return resp, nil
	}
	if f.errorMessage != "" {
		resp.StatusCode = http.StatusBadRequest
		resp.ErrorMessage = f.errorMessage
		return resp, nil
	}
	resp.StatusCode = http.StatusOK
	for _, login := range params.Logins {
		if u, ok := f.users[login]; ok {
			resp.Data.Users = append(resp.Data.Users, u)
		}
	}
	return resp, nil
}

func (f *fakeHelix) RequestAppAccessToken(scopes []string) (*helix.AppAccessTokenResponse, error) {
	if f.tokenErr != nil {
		return nil, f.tokenErr
	}
	resp := &helix.AppAccessTokenResponse{}
	resp.StatusCode = http.StatusOK
	resp.Data.AccessToken = f.validToken
	f.tokens = append(f.tokens, f.validToken)
	return resp, nil
}

func (f *fakeHelix) SetAppAccessToken(accessToken string) {
	f.current = accessToken
}

type TwitchSuite struct {
	suite.Suite
	api      *fakeHelix
	resolver *Twitch
	ctx      context.Context
}

func TestTwitchSuite(t *testing.T) {
	suite.Run(t, new(TwitchSuite))
}

func (s *TwitchSuite) SetupTest() {
	s.api = &fakeHelix{
		users: map[string]helix.User{
			"ninja": {ID: "19571641", Login: "ninja", DisplayName: "Ninja"},
		},
		validToken: "token-1",
	}
	s.resolver = newTwitch(s.api, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *TwitchSuite) TestResolveUser() {
	user, err := s.resolver.ResolveUser(s.ctx, "https://www.twitch.tv/Ninja/")
	s.Require().NoError(err)
	s.Equal(&TwitchUser{ID: "19571641", Login: "ninja", DisplayName: "Ninja"}, user)
	s.Equal([]string{"ninja"}, s.api.lookups)
}

func (s *TwitchSuite) TestTokenRequestedOnce() {
	_, err := s.resolver.ResolveUser(s.ctx, "ninja")
	s.Require().NoError(err)
	_, err = s.resolver.ResolveUser(s.ctx, "ninja")
	s.Require().NoError(err)

	s.Len(s.api.tokens, 1)
}

func (s *TwitchSuite) TestExpiredTokenRefreshedOnce() {
	_, err := s.resolver.ResolveUser(s.ctx, "ninja")
	s.Require().NoError(err)

	// Twitch revokes the token
	s.api.validToken = "token-2"

	user, err := s.resolver.ResolveUser(s.ctx, "ninja")
	s.Require().NoError(err)
	s.Equal("ninja", user.Login)
	s.Equal([]string{"token-1", "token-2"}, s.api.tokens)
}

func (s *TwitchSuite) TestUnknownUser() {
	_, err := s.resolver.ResolveUser(s.ctx, "nobody")
	s.ErrorIs(err, ErrTwitchUserNotFound)
}

func (s *TwitchSuite) TestEmptyHandle() {
	_, err := s.resolver.ResolveUser(s.ctx, "  / ")
	s.ErrorIs(err, ErrTwitchUserNotFound)
	s.Empty(s.api.lookups)
}

func (s *TwitchSuite) TestTokenFailure() {
	s.api.tokenErr = errors.New("connection refused")

	_, err := s.resolver.ResolveUser(s.ctx, "ninja")
	s.Error(err)
	s.NotErrorIs(err, ErrTwitchUserNotFound)
}

func (s *TwitchSuite) TestAPIError() {
	s.api.errorMessage = "Malformed query params."

	_, err := s.resolver.ResolveUser(s.ctx, "ninja")
	s.ErrorContains(err, "Malformed query params.")
}

func (s *TwitchSuite) TestCancelledContext() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	_, err := s.resolver.ResolveUser(ctx, "ninja")
	s.ErrorIs(err, context.Canceled)
}

func TestCleanTwitchHandle(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"ninja", "ninja"},
		{"  Ninja ", "ninja"},
		{"@ninja", "ninja"},
		{"twitch.tv/ninja", "ninja"},
		{"https://www.twitch.tv/ninja/", "ninja"},
		{"https://www.twitch.tv/ninja?sr=a", "ninja"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanTwitchHandle(tt.input))
		})
	}
}
