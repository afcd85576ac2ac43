package mocks

import (
	"context"
	"sync"

	"github.com/mcoot/scrimbot/internal/services/identity"
)

// MockTwitch resolves logins from a fixed table
type MockTwitch struct {
	mu    sync.Mutex
	Users map[string]*identity.TwitchUser
	Err   error
	Calls []string
}

// Ensure MockTwitch implements TwitchResolver
var _ identity.TwitchResolver = (*MockTwitch)(nil)

// NewMockTwitch creates a MockTwitch with no known users
func NewMockTwitch() *MockTwitch {
	return &MockTwitch{Users: make(map[string]*identity.TwitchUser)}
}

func (m *MockTwitch) ResolveUser(ctx context.Context, handle string) (*identity.TwitchUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, handle)
	if m.Err != nil {
		return nil, m.Err
	}
	u, ok := m.Users[identity.CleanTwitchHandle(handle)]
	if !ok {
		return nil, identity.ErrTwitchUserNotFound
	}
	cp := *u
	return &cp, nil
}

// MockYouTube resolves channel URLs from a fixed table
type MockYouTube struct {
	mu       sync.Mutex
	Channels map[string]string // URL -> channel id
	Err      error
	Calls    []string
}

// Ensure MockYouTube implements YouTubeResolver
var _ identity.YouTubeResolver = (*MockYouTube)(nil)

// NewMockYouTube creates a MockYouTube with no known channels
func NewMockYouTube() *MockYouTube {
	return &MockYouTube{Channels: make(map[string]string)}
}

func (m *MockYouTube) ResolveChannelID(ctx context.Context, channelURL string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, channelURL)
	if m.Err != nil {
		return "", m.Err
	}
	id, ok := m.Channels[channelURL]
	if !ok {
		return "", identity.ErrYouTubeChannelNotFound
	}
	return id, nil
}
