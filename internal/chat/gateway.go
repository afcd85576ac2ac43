// Package chat defines the port between the bot's services and the chat
// platform. Services only talk to the platform through Gateway and Responder.
package chat

import (
	"context"
	"time"
)

// Embed colors
const (
	ColorBlue    = 0x3498DB
	ColorRed     = 0xE74C3C
	ColorGreen   = 0x2ECC71
	ColorGold    = 0xF1C40F
	ColorPurple  = 0x9B59B6
	ColorDarkRed = 0x992D22
	ColorBlurple = 0x5865F2
)

// EmbedField is one name/value block of an embed
type EmbedField struct {
	Name   string
	Value  string
	Inline bool
}

// Embed is a rich message card
type Embed struct {
	Title       string
	Description string
	Color       int
	Fields      []EmbedField
	Footer      string
	Timestamp   time.Time
}

// ButtonStyle is the visual style of a button
type ButtonStyle int

const (
	ButtonPrimary ButtonStyle = iota + 1
	ButtonSecondary
	ButtonSuccess
	ButtonDanger
)

// Button is a persistent component attached to a panel message
type Button struct {
	CustomID string
	Label    string
	Emoji    string
	Style    ButtonStyle
	Row      int
}

// OutboundMessage is a message to post in a channel
type OutboundMessage struct {
	Content string
	Embed   *Embed
	Buttons []Button
	// DeleteAfter schedules the message for deletion, zero keeps it
	DeleteAfter time.Duration
}

// Message is a message that exists on the platform
type Message struct {
	ID        string
	ChannelID string
}

// Role is a guild role
type Role struct {
	ID       string
	Name     string
	Position int
	Managed  bool // Integration, bot and booster roles
}

// Member is a guild member
type Member struct {
	ID            string
	Username      string
	Discriminator string
	Nick          string
	Bot           bool
	Administrator bool
	RoleIDs       []string
}

// Mention returns the platform mention syntax for the member
func (m *Member) Mention() string {
	return "<@" + m.ID + ">"
}

// DisplayName returns the nickname if set, otherwise the username
func (m *Member) DisplayName() string {
	if m.Nick != "" {
		return m.Nick
	}
	return m.Username
}

// ChannelMention returns the platform mention syntax for a channel
func ChannelMention(channelID string) string {
	return "<#" + channelID + ">"
}

// Gateway is the outbound side of the chat platform
type Gateway interface {
	// BotUserID returns the user id of the bot itself
	BotUserID() string

	// Messages
	Send(ctx context.Context, channelID string, msg OutboundMessage) (*Message, error)
	EditEmbed(ctx context.Context, channelID, messageID string, embed Embed) error
	DeleteMessage(ctx context.Context, channelID, messageID string) error
	// PurgeOwnMessages deletes the bot's messages among the last limit messages
	PurgeOwnMessages(ctx context.Context, channelID string, limit int) error
	SendDirect(ctx context.Context, userID, content string) error

	// Reactions
	AddReaction(ctx context.Context, channelID, messageID, emoji string) error
	RemoveReaction(ctx context.Context, channelID, messageID, emoji, userID string) error

	// Members and roles
	Member(ctx context.Context, guildID, userID string) (*Member, error)
	FindMemberByTag(ctx context.Context, guildID, username, discriminator string) (*Member, error)
	Roles(ctx context.Context, guildID string) ([]Role, error)
	BotTopRolePosition(ctx context.Context, guildID string) (int, error)
	AddRoles(ctx context.Context, guildID, userID string, roleIDs []string) error
	RemoveRoles(ctx context.Context, guildID, userID string, roleIDs []string) error
}

// TextInput is a single-line field of a modal form
type TextInput struct {
	CustomID string
	Label    string
	Value    string // Pre-filled value
	Required bool
}

// Modal is a form opened in response to a button press
type Modal struct {
	CustomID string
	Title    string
	Inputs   []TextInput
}

// Responder answers the interaction an event came from
type Responder interface {
	// OpenModal answers a button press with a form
	OpenModal(ctx context.Context, modal Modal) error
	// Defer acknowledges the interaction privately, answers follow with Reply
	Defer(ctx context.Context) error
	// Reply sends a private message to the actor
	Reply(ctx context.Context, content string) error
	// ReplyEmbed sends a private embed to the actor
	ReplyEmbed(ctx context.Context, embed Embed) error
}
