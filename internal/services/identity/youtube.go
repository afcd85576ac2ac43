package identity

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// ChannelRefKind is how a YouTube URL points at its channel
type ChannelRefKind int

const (
	RefChannelID ChannelRefKind = iota + 1 // /channel/UC...
	RefHandle                              // /@name
	RefUsername                            // /user/name
	RefCustom                              // /c/name
)

// ChannelRef is a parsed YouTube channel URL
type ChannelRef struct {
	Kind  ChannelRefKind
	Value string
}

// ParseYouTubeURL extracts the channel reference from a channel URL.
// The scheme is optional.
func ParseYouTubeURL(raw string) (ChannelRef, error) {
	raw = strings.TrimSpace(raw)
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ChannelRef{}, ErrInvalidYouTubeURL
	}

	host := strings.TrimPrefix(strings.TrimPrefix(strings.ToLower(u.Hostname()), "www."), "m.")
	if host != "youtube.com" {
		return ChannelRef{}, ErrInvalidYouTubeURL
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	switch {
	case len(parts) >= 1 && strings.HasPrefix(parts[0], "@") && len(parts[0]) > 1:
		return ChannelRef{Kind: RefHandle, Value: parts[0]}, nil
	case len(parts) >= 2 && parts[1] != "":
		switch parts[0] {
		case "channel":
			return ChannelRef{Kind: RefChannelID, Value: parts[1]}, nil
		case "user":
			return ChannelRef{Kind: RefUsername, Value: parts[1]}, nil
		case "c":
			return ChannelRef{Kind: RefCustom, Value: parts[1]}, nil
		}
	}
	return ChannelRef{}, ErrInvalidYouTubeURL
}

// YouTube resolves channel URLs with the Data API v3
type YouTube struct {
	service *youtube.Service
}

// Ensure YouTube implements YouTubeResolver
var _ YouTubeResolver = (*YouTube)(nil)

// NewYouTube creates a resolver using an API key. Extra options are
// appended after the key.
func NewYouTube(ctx context.Context, apiKey string, opts ...option.ClientOption) (*YouTube, error) {
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	service, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}
	return &YouTube{service: service}, nil
}

// ResolveChannelID returns the UC... id of the channel a URL points at.
// Channel id URLs resolve without an API call.
func (y *YouTube) ResolveChannelID(ctx context.Context, channelURL string) (string, error) {
	ref, err := ParseYouTubeURL(channelURL)
	if err != nil {
		return "", err
	}

	call := y.service.Channels.List([]string{"id"}).MaxResults(1).Context(ctx)
	switch ref.Kind {
	case RefChannelID:
		return ref.Value, nil
	case RefHandle:
		call = call.ForHandle(ref.Value)
	case RefUsername:
		call = call.ForUsername(ref.Value)
	case RefCustom:
		// Custom URLs usually match the channel handle
		call = call.ForHandle("@" + ref.Value)
	}

	resp, err := call.Do()
	if err != nil {
		return "", fmt.Errorf("list youtube channels: %w", err)
	}
	if len(resp.Items) == 0 {
		return "", ErrYouTubeChannelNotFound
	}
	return resp.Items[0].Id, nil
}
