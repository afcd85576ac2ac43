package mocks

import (
	"context"
	"sync"

	"github.com/mcoot/scrimbot/internal/chat"
)

// MockResponder records the answers given to one interaction
type MockResponder struct {
	mu sync.Mutex

	Modals   []chat.Modal
	Deferred bool
	Replies  []string
	Embeds   []chat.Embed
}

// Ensure MockResponder implements Responder
var _ chat.Responder = (*MockResponder)(nil)

// NewMockResponder creates an empty MockResponder
func NewMockResponder() *MockResponder {
	return &MockResponder{}
}

func (r *MockResponder) OpenModal(ctx context.Context, modal chat.Modal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Modals = append(r.Modals, modal)
	return nil
}

func (r *MockResponder) Defer(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Deferred = true
	return nil
}

func (r *MockResponder) Reply(ctx context.Context, content string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Replies = append(r.Replies, content)
	return nil
}

func (r *MockResponder) ReplyEmbed(ctx context.Context, embed chat.Embed) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Embeds = append(r.Embeds, embed)
	return nil
}

// LastReply returns the most recent text reply, or empty string
func (r *MockResponder) LastReply() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Replies) == 0 {
		return ""
	}
	return r.Replies[len(r.Replies)-1]
}
