package storage

import (
	"context"
	"time"

	"github.com/mcoot/scrimbot/internal/model"
)

// Storage defines the interface for data persistence
type Storage interface {
	// Player operations
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	ListPlayers(ctx context.Context) ([]*model.Player, error)
	UpsertPlayer(ctx context.Context, id model.PlayerID, update model.PlayerUpdate) error
	IncrementPlayerStats(ctx context.Context, id model.PlayerID, games, wins int) error

	// Game operations
	CreateGame(ctx context.Context, game *model.Game) error
	GetGame(ctx context.Context, code model.GameCode) (*model.Game, error)
	GameExists(ctx context.Context, code model.GameCode) (bool, error)
	ListGames(ctx context.Context) ([]*model.Game, error)
	ListActiveGames(ctx context.Context) ([]*model.Game, error)
	UpdateGameStatus(ctx context.Context, code model.GameCode, status model.GameStatus, winners []string) error

	// Participant operations
	AddParticipant(ctx context.Context, code model.GameCode, playerID model.PlayerID) error
	IsParticipant(ctx context.Context, code model.GameCode, playerID model.PlayerID) (bool, error)
	CountGameParticipants(ctx context.Context, code model.GameCode) (int, error)
	ListGameParticipants(ctx context.Context, code model.GameCode) ([]model.Participant, error)
	ListPlayerParticipations(ctx context.Context, playerID model.PlayerID) ([]model.Participation, error)
	MarkWinner(ctx context.Context, code model.GameCode, playerID model.PlayerID) error

	// Sanction operations
	AddSanction(ctx context.Context, sanction *model.Sanction) error
	GetActiveSanction(ctx context.Context, playerID model.PlayerID, now time.Time) (*model.Sanction, error)
	ListExpiredSanctions(ctx context.Context, now time.Time) ([]*model.Sanction, error)
	RemoveSanction(ctx context.Context, id model.SanctionID) error

	Close() error
}
