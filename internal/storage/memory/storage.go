package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/mcoot/scrimbot/internal/model"
	"github.com/mcoot/scrimbot/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	players      map[model.PlayerID]*model.Player
	games        map[model.GameCode]*model.Game
	participants map[model.GameCode][]*participation
	sanctions    map[model.SanctionID]*model.Sanction
}

type participation struct {
	playerID model.PlayerID
	hasWon   bool
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		players:      make(map[model.PlayerID]*model.Player),
		games:        make(map[model.GameCode]*model.Game),
		participants: make(map[model.GameCode][]*participation),
		sanctions:    make(map[model.SanctionID]*model.Sanction),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Close is a no-op for the in-memory store
func (s *Storage) Close() error {
	return nil
}

// Player operations

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	cp := *player
	return &cp, nil
}

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	players := make([]*model.Player, 0, len(s.players))
	for _, p := range s.players {
		cp := *p
		players = append(players, &cp)
	}
	sort.Slice(players, func(i, j int) bool {
		return players[i].CreatedAt.Before(players[j].CreatedAt)
	})
	return players, nil
}

func (s *Storage) UpsertPlayer(ctx context.Context, id model.PlayerID, update model.PlayerUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	player, ok := s.players[id]
	if !ok {
		player = &model.Player{ID: id, CreatedAt: now}
		s.players[id] = player
	}
	update.Apply(player)
	player.UpdatedAt = now
	return nil
}

func (s *Storage) IncrementPlayerStats(ctx context.Context, id model.PlayerID, games, wins int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	player, ok := s.players[id]
	if !ok {
		return model.ErrPlayerNotFound
	}
	player.GameCount += games
	player.TotalWins += wins
	player.UpdatedAt = time.Now().UTC()
	return nil
}

// Game operations

func (s *Storage) CreateGame(ctx context.Context, game *model.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[game.Code]; ok {
		return model.ErrGameExists
	}
	cp := *game
	s.games[game.Code] = &cp
	return nil
}

func (s *Storage) GetGame(ctx context.Context, code model.GameCode) (*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	game, ok := s.games[code]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	return copyGame(game), nil
}

func (s *Storage) GameExists(ctx context.Context, code model.GameCode) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.games[code]
	return ok, nil
}

func (s *Storage) ListGames(ctx context.Context) ([]*model.Game, error) {
	return s.listGames(func(*model.Game) bool { return true }), nil
}

func (s *Storage) ListActiveGames(ctx context.Context) ([]*model.Game, error) {
	return s.listGames(func(g *model.Game) bool { return !g.Status.IsTerminal() }), nil
}

func (s *Storage) listGames(keep func(*model.Game) bool) []*model.Game {
	s.mu.RLock()
	defer s.mu.RUnlock()
	games := make([]*model.Game, 0, len(s.games))
	for _, g := range s.games {
		if keep(g) {
			games = append(games, copyGame(g))
		}
	}
	// Newest first
	sort.Slice(games, func(i, j int) bool {
		return games[i].CreatedAt.After(games[j].CreatedAt)
	})
	return games
}

func (s *Storage) UpdateGameStatus(ctx context.Context, code model.GameCode, status model.GameStatus, winners []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, ok := s.games[code]
	if !ok {
		return model.ErrGameNotFound
	}
	now := time.Now().UTC()
	game.Status = status
	game.UpdatedAt = now
	if status == model.GameStatusFinished {
		game.EndTime = &now
		game.WinnerEpicNames = append([]string{}, winners...)
	}
	return nil
}

// Participant operations

func (s *Storage) AddParticipant(ctx context.Context, code model.GameCode, playerID model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[code]; !ok {
		return model.ErrGameNotFound
	}
	if _, ok := s.players[playerID]; !ok {
		return model.ErrPlayerNotFound
	}
	if s.findParticipation(code, playerID) != nil {
		return nil
	}
	s.participants[code] = append(s.participants[code], &participation{playerID: playerID})
	return nil
}

func (s *Storage) IsParticipant(ctx context.Context, code model.GameCode, playerID model.PlayerID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findParticipation(code, playerID) != nil, nil
}

func (s *Storage) CountGameParticipants(ctx context.Context, code model.GameCode) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.participants[code]), nil
}

func (s *Storage) ListGameParticipants(ctx context.Context, code model.GameCode) ([]model.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]model.Participant, 0, len(s.participants[code]))
	for _, p := range s.participants[code] {
		var epicName string
		if player, ok := s.players[p.playerID]; ok {
			epicName = player.EpicName
		}
		result = append(result, model.Participant{
			PlayerID: p.playerID,
			EpicName: epicName,
			HasWon:   p.hasWon,
		})
	}
	return result, nil
}

func (s *Storage) ListPlayerParticipations(ctx context.Context, playerID model.PlayerID) ([]model.Participation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []model.Participation
	for code, parts := range s.participants {
		game, ok := s.games[code]
		if !ok {
			continue
		}
		for _, p := range parts {
			if p.playerID == playerID {
				result = append(result, model.Participation{
					GameCode:  code,
					Mode:      game.Mode,
					HasWon:    p.hasWon,
					CreatedAt: game.CreatedAt,
				})
			}
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if result == nil {
		result = []model.Participation{}
	}
	return result, nil
}

func (s *Storage) MarkWinner(ctx context.Context, code model.GameCode, playerID model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.findParticipation(code, playerID)
	if p == nil {
		return model.ErrParticipantNotFound
	}
	p.hasWon = true
	return nil
}

// findParticipation must be called with the lock held
func (s *Storage) findParticipation(code model.GameCode, playerID model.PlayerID) *participation {
	for _, p := range s.participants[code] {
		if p.playerID == playerID {
			return p
		}
	}
	return nil
}

// Sanction operations

func (s *Storage) AddSanction(ctx context.Context, sanction *model.Sanction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *sanction
	cp.Roles = slices.Clone(sanction.Roles)
	s.sanctions[sanction.ID] = &cp
	return nil
}

func (s *Storage) GetActiveSanction(ctx context.Context, playerID model.PlayerID, now time.Time) (*model.Sanction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var active *model.Sanction
	for _, sanction := range s.sanctions {
		if sanction.PlayerID != playerID || !sanction.IsActive(now) {
			continue
		}
		if active == nil || sanction.EndTime.After(active.EndTime) {
			active = sanction
		}
	}
	if active == nil {
		return nil, model.ErrSanctionNotFound
	}
	cp := *active
	cp.Roles = slices.Clone(active.Roles)
	return &cp, nil
}

func (s *Storage) ListExpiredSanctions(ctx context.Context, now time.Time) ([]*model.Sanction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var expired []*model.Sanction
	for _, sanction := range s.sanctions {
		if !sanction.IsActive(now) {
			cp := *sanction
			cp.Roles = slices.Clone(sanction.Roles)
			expired = append(expired, &cp)
		}
	}
	sort.Slice(expired, func(i, j int) bool {
		return expired[i].EndTime.Before(expired[j].EndTime)
	})
	return expired, nil
}

func (s *Storage) RemoveSanction(ctx context.Context, id model.SanctionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sanctions, id)
	return nil
}

func copyGame(g *model.Game) *model.Game {
	cp := *g
	cp.WinnerEpicNames = slices.Clone(g.WinnerEpicNames)
	if g.EndTime != nil {
		end := *g.EndTime
		cp.EndTime = &end
	}
	return &cp
}
