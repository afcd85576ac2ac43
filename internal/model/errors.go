package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound = errors.New("player not found")
	ErrNotLinked      = errors.New("player has not linked an epic account")
	ErrMemberNotFound = errors.New("member not found")

	// Game errors
	ErrGameNotFound         = errors.New("game not found")
	ErrInvalidGameCode      = errors.New("invalid game code")
	ErrGameAlreadyActive    = errors.New("a game with this code is already active")
	ErrGameExists           = errors.New("a game with this code already exists")
	ErrGameNotActive        = errors.New("game is not active")
	ErrNoModeConfigured     = errors.New("no game mode has an announcement channel")
	ErrModeSelectionTimeout = errors.New("mode selection timed out")
	ErrInvalidTransition    = errors.New("transition not allowed from current status")
	ErrNotCreator           = errors.New("only the game creator can do this")

	// Join errors
	ErrAlreadyParticipant  = errors.New("player already joined this game")
	ErrRegistrationClosed  = errors.New("registrations are closed")
	ErrGameFull            = errors.New("game is full")
	ErrParticipantNotFound = errors.New("participant not found")

	// Sanction errors
	ErrSanctionNotFound = errors.New("no active sanction")
	ErrSanctionActive   = errors.New("member already has an active sanction")
	ErrSelfSanction     = errors.New("cannot sanction yourself")
	ErrProtectedMember  = errors.New("cannot sanction an administrator")

	// Permission errors
	ErrForbidden  = errors.New("missing permission")
	ErrBotAccount = errors.New("bot accounts are not allowed")
)
