package model

import "time"

// EventType identifies the type of event
type EventType string

const (
	EventReactionAdded  EventType = "reaction_added"
	EventButtonPressed  EventType = "button_pressed"
	EventModalSubmitted EventType = "modal_submitted"
)

// Actor is the guild member who triggered an event
type Actor struct {
	ID      PlayerID
	Name    string
	IsAdmin bool
	IsBot   bool
}

// Event is the base structure for all gateway events
type Event struct {
	Type      EventType
	Timestamp time.Time
	GuildID   string
	ChannelID string
	MessageID string // Message the reaction or component belongs to
	Actor     Actor
	Payload   any // Type-specific data
}

// ReactionPayload contains data for reaction added events
type ReactionPayload struct {
	Emoji string
}

// ButtonPayload contains data for button pressed events
type ButtonPayload struct {
	CustomID string
}

// ModalPayload contains data for modal submitted events
type ModalPayload struct {
	CustomID string
	Values   map[string]string // Text input custom id -> submitted value
}

// Value returns the submitted value of a text input, or empty string
func (p ModalPayload) Value(inputID string) string {
	return p.Values[inputID]
}
