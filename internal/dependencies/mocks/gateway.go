package mocks

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/mcoot/scrimbot/internal/chat"
	"github.com/mcoot/scrimbot/internal/model"
)

// SentMessage is a message posted through the MockGateway
type SentMessage struct {
	ID        string
	ChannelID string
	chat.OutboundMessage
}

// Reaction is a reaction added or removed through the MockGateway
type Reaction struct {
	ChannelID string
	MessageID string
	Emoji     string
	UserID    string // Empty for the bot's own reactions
}

// DirectMessage is a DM sent through the MockGateway
type DirectMessage struct {
	UserID  string
	Content string
}

// RoleChange is a role addition or removal
type RoleChange struct {
	UserID  string
	RoleIDs []string
}

// EmbedEdit is an embed replaced on an existing message
type EmbedEdit struct {
	ChannelID string
	MessageID string
	Embed     chat.Embed
}

// MockGateway is an in-memory chat.Gateway for tests.
// Set Errors[method] to make a method fail.
type MockGateway struct {
	mu sync.Mutex

	BotID       string
	Members     map[string]*chat.Member
	GuildRoles  []chat.Role
	BotPosition int
	Errors      map[string]error

	// OnReactionAdded is called after the bot adds a reaction, outside the lock
	OnReactionAdded func(Reaction)

	nextID   int
	sent     []SentMessage
	deleted  []string
	edits    []EmbedEdit
	dms      []DirectMessage
	added    []Reaction
	removed  []Reaction
	granted  []RoleChange
	revoked  []RoleChange
	purges   map[string]int
	channels map[string][]string // channel -> live message ids
}

// Ensure MockGateway implements Gateway
var _ chat.Gateway = (*MockGateway)(nil)

// NewMockGateway creates a MockGateway for a bot user
func NewMockGateway(botID string) *MockGateway {
	return &MockGateway{
		BotID:       botID,
		Members:     make(map[string]*chat.Member),
		BotPosition: 100,
		Errors:      make(map[string]error),
		purges:      make(map[string]int),
		channels:    make(map[string][]string),
	}
}

// AddMember registers a guild member
func (g *MockGateway) AddMember(m *chat.Member) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Members[m.ID] = m
}

// Fail makes method return err until cleared with a nil err
func (g *MockGateway) Fail(method string, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err == nil {
		delete(g.Errors, method)
		return
	}
	g.Errors[method] = err
}

func (g *MockGateway) failure(method string) error {
	return g.Errors[method]
}

func (g *MockGateway) BotUserID() string {
	return g.BotID
}

func (g *MockGateway) Send(ctx context.Context, channelID string, msg chat.OutboundMessage) (*chat.Message, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.failure("Send"); err != nil {
		return nil, err
	}
	g.nextID++
	id := fmt.Sprintf("msg-%d", g.nextID)
	g.sent = append(g.sent, SentMessage{ID: id, ChannelID: channelID, OutboundMessage: msg})
	g.channels[channelID] = append(g.channels[channelID], id)
	return &chat.Message{ID: id, ChannelID: channelID}, nil
}

func (g *MockGateway) EditEmbed(ctx context.Context, channelID, messageID string, embed chat.Embed) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.failure("EditEmbed"); err != nil {
		return err
	}
	g.edits = append(g.edits, EmbedEdit{ChannelID: channelID, MessageID: messageID, Embed: embed})
	return nil
}

func (g *MockGateway) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.failure("DeleteMessage"); err != nil {
		return err
	}
	g.deleted = append(g.deleted, messageID)
	g.channels[channelID] = slices.DeleteFunc(g.channels[channelID], func(id string) bool { return id == messageID })
	return nil
}

func (g *MockGateway) PurgeOwnMessages(ctx context.Context, channelID string, limit int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.failure("PurgeOwnMessages"); err != nil {
		return err
	}
	live := g.channels[channelID]
	n := min(limit, len(live))
	g.deleted = append(g.deleted, live[len(live)-n:]...)
	g.channels[channelID] = live[:len(live)-n]
	g.purges[channelID]++
	return nil
}

func (g *MockGateway) SendDirect(ctx context.Context, userID, content string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.failure("SendDirect"); err != nil {
		return err
	}
	g.dms = append(g.dms, DirectMessage{UserID: userID, Content: content})
	return nil
}

func (g *MockGateway) AddReaction(ctx context.Context, channelID, messageID, emoji string) error {
	g.mu.Lock()
	if err := g.failure("AddReaction"); err != nil {
		g.mu.Unlock()
		return err
	}
	r := Reaction{ChannelID: channelID, MessageID: messageID, Emoji: emoji}
	g.added = append(g.added, r)
	hook := g.OnReactionAdded
	g.mu.Unlock()

	if hook != nil {
		hook(r)
	}
	return nil
}

func (g *MockGateway) RemoveReaction(ctx context.Context, channelID, messageID, emoji, userID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.failure("RemoveReaction"); err != nil {
		return err
	}
	g.removed = append(g.removed, Reaction{ChannelID: channelID, MessageID: messageID, Emoji: emoji, UserID: userID})
	return nil
}

func (g *MockGateway) Member(ctx context.Context, guildID, userID string) (*chat.Member, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.failure("Member"); err != nil {
		return nil, err
	}
	m, ok := g.Members[userID]
	if !ok {
		return nil, model.ErrMemberNotFound
	}
	cp := *m
	cp.RoleIDs = slices.Clone(m.RoleIDs)
	return &cp, nil
}

func (g *MockGateway) FindMemberByTag(ctx context.Context, guildID, username, discriminator string) (*chat.Member, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.failure("FindMemberByTag"); err != nil {
		return nil, err
	}
	for _, m := range g.Members {
		if m.Username == username && (discriminator == "" || m.Discriminator == discriminator) {
			cp := *m
			return &cp, nil
		}
	}
	return nil, model.ErrMemberNotFound
}

func (g *MockGateway) Roles(ctx context.Context, guildID string) ([]chat.Role, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.failure("Roles"); err != nil {
		return nil, err
	}
	return slices.Clone(g.GuildRoles), nil
}

func (g *MockGateway) BotTopRolePosition(ctx context.Context, guildID string) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.failure("BotTopRolePosition"); err != nil {
		return 0, err
	}
	return g.BotPosition, nil
}

func (g *MockGateway) AddRoles(ctx context.Context, guildID, userID string, roleIDs []string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.failure("AddRoles"); err != nil {
		return err
	}
	g.granted = append(g.granted, RoleChange{UserID: userID, RoleIDs: slices.Clone(roleIDs)})
	if m, ok := g.Members[userID]; ok {
		for _, id := range roleIDs {
			if !slices.Contains(m.RoleIDs, id) {
				m.RoleIDs = append(m.RoleIDs, id)
			}
		}
	}
	return nil
}

func (g *MockGateway) RemoveRoles(ctx context.Context, guildID, userID string, roleIDs []string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.failure("RemoveRoles"); err != nil {
		return err
	}
	g.revoked = append(g.revoked, RoleChange{UserID: userID, RoleIDs: slices.Clone(roleIDs)})
	if m, ok := g.Members[userID]; ok {
		m.RoleIDs = slices.DeleteFunc(m.RoleIDs, func(id string) bool { return slices.Contains(roleIDs, id) })
	}
	return nil
}

// Inspection helpers

// Sent returns every message posted so far
func (g *MockGateway) Sent() []SentMessage {
	g.mu.Lock()
	defer g.mu.Unlock()
	return slices.Clone(g.sent)
}

// SentTo returns the messages posted to a channel
func (g *MockGateway) SentTo(channelID string) []SentMessage {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []SentMessage
	for _, m := range g.sent {
		if m.ChannelID == channelID {
			out = append(out, m)
		}
	}
	return out
}

// Deleted returns the ids of deleted messages
func (g *MockGateway) Deleted() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return slices.Clone(g.deleted)
}

// Edits returns the embed edits
func (g *MockGateway) Edits() []EmbedEdit {
	g.mu.Lock()
	defer g.mu.Unlock()
	return slices.Clone(g.edits)
}

// DMs returns the direct messages sent to a user
func (g *MockGateway) DMs(userID string) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []string
	for _, dm := range g.dms {
		if dm.UserID == userID {
			out = append(out, dm.Content)
		}
	}
	return out
}

// ReactionsAdded returns the reactions the bot added
func (g *MockGateway) ReactionsAdded() []Reaction {
	g.mu.Lock()
	defer g.mu.Unlock()
	return slices.Clone(g.added)
}

// ReactionsRemoved returns the reactions the bot removed
func (g *MockGateway) ReactionsRemoved() []Reaction {
	g.mu.Lock()
	defer g.mu.Unlock()
	return slices.Clone(g.removed)
}

// RolesGranted returns the role additions
func (g *MockGateway) RolesGranted() []RoleChange {
	g.mu.Lock()
	defer g.mu.Unlock()
	return slices.Clone(g.granted)
}

// RolesRevoked returns the role removals
func (g *MockGateway) RolesRevoked() []RoleChange {
	g.mu.Lock()
	defer g.mu.Unlock()
	return slices.Clone(g.revoked)
}

// Purges returns how many times a channel was purged
func (g *MockGateway) Purges(channelID string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.purges[channelID]
}
