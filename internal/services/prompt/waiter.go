// Package prompt lets a handler wait for one member's reaction on a message
// posted by the bot.
package prompt

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/mcoot/scrimbot/internal/model"
)

// Waiter routes reactions to handlers blocked on a prompt message
type Waiter struct {
	mu      sync.Mutex
	pending map[string]*Pending
}

// NewWaiter creates a Waiter with no pending prompts
func NewWaiter() *Waiter {
	return &Waiter{pending: make(map[string]*Pending)}
}

// Pending is a prompt awaiting a reaction
type Pending struct {
	waiter    *Waiter
	messageID string
	userID    model.PlayerID
	allowed   []string
	ch        chan string
}

// Expect registers a prompt on messageID, answered by userID reacting with
// one of the allowed emoji. Register before adding reactions so an early
// answer is not lost. The caller must Cancel the prompt when done.
func (w *Waiter) Expect(messageID string, userID model.PlayerID, allowed []string) *Pending {
	p := &Pending{
		waiter:    w,
		messageID: messageID,
		userID:    userID,
		allowed:   slices.Clone(allowed),
		ch:        make(chan string, 1),
	}
	w.mu.Lock()
	w.pending[messageID] = p
	w.mu.Unlock()
	return p
}

// Wait blocks until the expected reaction arrives or ctx is done.
// An expired deadline is reported as ErrModeSelectionTimeout.
func (p *Pending) Wait(ctx context.Context) (string, error) {
	select {
	case emoji := <-p.ch:
		return emoji, nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", model.ErrModeSelectionTimeout
		}
		return "", ctx.Err()
	}
}

// Cancel unregisters the prompt
func (p *Pending) Cancel() {
	p.waiter.mu.Lock()
	defer p.waiter.mu.Unlock()
	if p.waiter.pending[p.messageID] == p {
		delete(p.waiter.pending, p.messageID)
	}
}

// Deliver offers a reaction to the prompt on messageID. It reports whether
// messageID is a pending prompt; reactions from other members or with other
// emoji are swallowed without answering it.
func (w *Waiter) Deliver(messageID string, userID model.PlayerID, emoji string) bool {
	w.mu.Lock()
	p, ok := w.pending[messageID]
	w.mu.Unlock()
	if !ok {
		return false
	}

	if p.userID != userID || !slices.Contains(p.allowed, emoji) {
		return true
	}
	// First answer wins
	select {
	case p.ch <- emoji:
	default:
	}
	return true
}

// Len returns the number of pending prompts
func (w *Waiter) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}
