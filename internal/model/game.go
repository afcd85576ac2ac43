package model

import (
	"regexp"
	"strings"
	"time"
)

// GameCode is the human-chosen identifier of a game, always lower case
type GameCode string

// MaxGameCodeLength is the longest code the game tables can store
const MaxGameCodeLength = 64

var gameCodePattern = regexp.MustCompile(`^[a-z0-9_.-]+$`)

// NormalizeGameCode trims and lower-cases a raw code and validates its charset and length
func NormalizeGameCode(raw string) (GameCode, error) {
	code := strings.ToLower(strings.TrimSpace(raw))
	if len(code) > MaxGameCodeLength || !gameCodePattern.MatchString(code) {
		return "", ErrInvalidGameCode
	}
	return GameCode(code), nil
}

// GameMode is one of the fixed team formats
type GameMode string

const (
	ModeSolo GameMode = "SOLO"
	ModeDuo  GameMode = "DUO"
	ModeTrio GameMode = "TRIO"
)

// ModeConfig describes where a mode is announced and how many players it takes
type ModeConfig struct {
	Mode              GameMode
	Emoji             string
	AnnounceChannelID string
	Limit             int
}

// Enabled returns true if the mode has an announcement channel
func (m ModeConfig) Enabled() bool {
	return m.AnnounceChannelID != ""
}

// DefaultModes returns the modes with their default capacities and no channels
func DefaultModes() []ModeConfig {
	return []ModeConfig{
		{Mode: ModeSolo, Emoji: "👤", Limit: 100},
		{Mode: ModeDuo, Emoji: "👥", Limit: 50},
		{Mode: ModeTrio, Emoji: "👨‍👩‍👧", Limit: 33},
	}
}

// GameStatus represents the lifecycle phase of a game
type GameStatus string

const (
	GameStatusPending   GameStatus = "pending"   // Accepting registrations
	GameStatusLocked    GameStatus = "locked"    // Registrations closed, game about to start
	GameStatusFinished  GameStatus = "finished"  // Winner declared
	GameStatusCancelled GameStatus = "cancelled" // Cancelled by its creator
)

// IsTerminal returns true if no transition can leave this status
func (s GameStatus) IsTerminal() bool {
	return s == GameStatusFinished || s == GameStatusCancelled
}

// Game is a community game announced in a mode channel
type Game struct {
	Code              GameCode
	Mode              GameMode
	CreatorID         PlayerID
	AnnounceMessageID string
	AnnounceChannelID string
	Status            GameStatus
	Limit             int
	WinnerEpicNames   []string
	CreatedAt         time.Time
	UpdatedAt         time.Time
	EndTime           *time.Time
}

// Participant is a player registered in a game, as listed for that game
type Participant struct {
	PlayerID PlayerID
	EpicName string
	HasWon   bool
}

// Participation is a game a player took part in, as listed for that player
type Participation struct {
	GameCode  GameCode
	Mode      GameMode
	HasWon    bool
	CreatedAt time.Time
}
