package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mcoot/scrimbot/internal/model"
	"github.com/mcoot/scrimbot/internal/storage"
)

// Capability is a gated admin panel action, named after its button
type Capability string

const (
	StartGame     Capability = "admin:start_game"
	Punish        Capability = "admin:punish"
	AuthCreator   Capability = "admin:auth_creator"
	Unpunish      Capability = "admin:unpunish"
	EndGame       Capability = "admin:end_game"
	RevokeCreator Capability = "admin:revoke_creator"
	RecreatePanel Capability = "admin:recreate_panel"
)

// Level is the permission a capability requires
type Level int

const (
	// LevelCreator is held by administrators and flagged creators
	LevelCreator Level = iota + 1
	// LevelAdmin is held by guild administrators only
	LevelAdmin
)

var required = map[Capability]Level{
	StartGame:     LevelCreator,
	Punish:        LevelCreator,
	AuthCreator:   LevelAdmin,
	Unpunish:      LevelCreator,
	EndGame:       LevelCreator,
	RevokeCreator: LevelAdmin,
	RecreatePanel: LevelAdmin,
}

// Capabilities returns every known capability
func Capabilities() []Capability {
	return []Capability{StartGame, Punish, AuthCreator, Unpunish, EndGame, RevokeCreator, RecreatePanel}
}

// RequiredLevel returns the level needed for a capability.
// Unknown capabilities require administrator.
func RequiredLevel(c Capability) Level {
	if l, ok := required[c]; ok {
		return l
	}
	return LevelAdmin
}

// PermissionName is the user-facing name of a level
func (l Level) PermissionName() string {
	if l == LevelAdmin {
		return "Administrateur du serveur"
	}
	return "Créateur de partie"
}

// Service decides which members may use which capabilities
type Service struct {
	storage storage.Storage
	logger  *slog.Logger
}

// New creates a new auth Service
func New(storage storage.Storage, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
	}
}

// IsCreator returns true if the actor is an administrator or a flagged creator
func (s *Service) IsCreator(ctx context.Context, actor model.Actor) (bool, error) {
	if actor.IsAdmin {
		return true, nil
	}
	player, err := s.storage.GetPlayer(ctx, actor.ID)
	if errors.Is(err, model.ErrPlayerNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return player.IsCreator, nil
}

// Authorize returns ErrForbidden if the actor lacks the capability.
// A storage failure denies access and is returned alongside ErrForbidden.
func (s *Service) Authorize(ctx context.Context, actor model.Actor, c Capability) error {
	if actor.IsAdmin {
		return nil
	}
	if RequiredLevel(c) == LevelAdmin {
		return model.ErrForbidden
	}

	ok, err := s.IsCreator(ctx, actor)
	if err != nil {
		s.logger.Error("failed to load creator flag",
			slog.String("player_id", string(actor.ID)),
			slog.String("error", err.Error()),
		)
		return errors.Join(model.ErrForbidden, err)
	}
	if !ok {
		return model.ErrForbidden
	}
	return nil
}
