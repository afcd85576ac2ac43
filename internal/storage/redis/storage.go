package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/scrimbot/internal/model"
	"github.com/mcoot/scrimbot/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// watch runs fn as an optimistic transaction, retrying when a watched key changes
func (s *Storage) watch(ctx context.Context, fn func(tx *redis.Tx) error, keys ...string) error {
	attempts := max(s.cfg.MaxWatchRetries, 1)
	var err error
	for range attempts {
		err = s.client.Watch(ctx, fn, keys...)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return err
}

// Player operations

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	return getJSON[model.Player](ctx, s.client, playerKey(id), model.ErrPlayerNotFound)
}

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	ids, err := s.client.SMembers(ctx, playersIndexKey()).Result()
	if err != nil {
		return nil, err
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = playerKey(model.PlayerID(id))
	}
	players, err := mgetJSON[model.Player](ctx, s.client, keys)
	if err != nil {
		return nil, err
	}
	sort.Slice(players, func(i, j int) bool {
		return players[i].CreatedAt.Before(players[j].CreatedAt)
	})
	return players, nil
}

func (s *Storage) UpsertPlayer(ctx context.Context, id model.PlayerID, update model.PlayerUpdate) error {
	key := playerKey(id)
	return s.watch(ctx, func(tx *redis.Tx) error {
		now := time.Now().UTC()
		player, err := getJSON[model.Player](ctx, tx, key, model.ErrPlayerNotFound)
		if errors.Is(err, model.ErrPlayerNotFound) {
			player = &model.Player{ID: id, CreatedAt: now}
		} else if err != nil {
			return err
		}
		update.Apply(player)
		player.UpdatedAt = now

		data, err := json.Marshal(player)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			pipe.SAdd(ctx, playersIndexKey(), string(id))
			return nil
		})
		return err
	}, key)
}

func (s *Storage) IncrementPlayerStats(ctx context.Context, id model.PlayerID, games, wins int) error {
	key := playerKey(id)
	return s.watch(ctx, func(tx *redis.Tx) error {
		player, err := getJSON[model.Player](ctx, tx, key, model.ErrPlayerNotFound)
		if err != nil {
			return err
		}
		player.GameCount += games
		player.TotalWins += wins
		player.UpdatedAt = time.Now().UTC()

		data, err := json.Marshal(player)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		return err
	}, key)
}

// Game operations

func (s *Storage) CreateGame(ctx context.Context, game *model.Game) error {
	data, err := json.Marshal(game)
	if err != nil {
		return err
	}

	created, err := s.client.SetNX(ctx, gameKey(game.Code), data, 0).Result()
	if err != nil {
		return err
	}
	if !created {
		return model.ErrGameExists
	}

	// Index updates
	pipe := s.client.Pipeline()
	pipe.ZAdd(ctx, gamesIndexKey(), redis.Z{Score: float64(game.CreatedAt.UnixMicro()), Member: string(game.Code)})
	if !game.Status.IsTerminal() {
		pipe.SAdd(ctx, activeGamesIndexKey(), string(game.Code))
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetGame(ctx context.Context, code model.GameCode) (*model.Game, error) {
	return getJSON[model.Game](ctx, s.client, gameKey(code), model.ErrGameNotFound)
}

func (s *Storage) GameExists(ctx context.Context, code model.GameCode) (bool, error) {
	exists, err := s.client.Exists(ctx, gameKey(code)).Result()
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}

func (s *Storage) ListGames(ctx context.Context) ([]*model.Game, error) {
	codes, err := s.client.ZRevRange(ctx, gamesIndexKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	return s.getGames(ctx, codes)
}

func (s *Storage) ListActiveGames(ctx context.Context) ([]*model.Game, error) {
	codes, err := s.client.SMembers(ctx, activeGamesIndexKey()).Result()
	if err != nil {
		return nil, err
	}
	games, err := s.getGames(ctx, codes)
	if err != nil {
		return nil, err
	}
	sort.Slice(games, func(i, j int) bool {
		return games[i].CreatedAt.After(games[j].CreatedAt)
	})
	return games, nil
}

func (s *Storage) getGames(ctx context.Context, codes []string) ([]*model.Game, error) {
	keys := make([]string, len(codes))
	for i, code := range codes {
		keys[i] = gameKey(model.GameCode(code))
	}
	return mgetJSON[model.Game](ctx, s.client, keys)
}

func (s *Storage) UpdateGameStatus(ctx context.Context, code model.GameCode, status model.GameStatus, winners []string) error {
	key := gameKey(code)
	return s.watch(ctx, func(tx *redis.Tx) error {
		game, err := getJSON[model.Game](ctx, tx, key, model.ErrGameNotFound)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		game.Status = status
		game.UpdatedAt = now
		if status == model.GameStatusFinished {
			game.EndTime = &now
			game.WinnerEpicNames = append([]string{}, winners...)
		}

		data, err := json.Marshal(game)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			if status.IsTerminal() {
				pipe.SRem(ctx, activeGamesIndexKey(), string(code))
			}
			return nil
		})
		return err
	}, key)
}

// Participant operations

func (s *Storage) AddParticipant(ctx context.Context, code model.GameCode, playerID model.PlayerID) error {
	exists, err := s.client.Exists(ctx, gameKey(code)).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return model.ErrGameNotFound
	}
	exists, err = s.client.Exists(ctx, playerKey(playerID)).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return model.ErrPlayerNotFound
	}

	// NX keeps the original join time on repeated adds
	pipe := s.client.TxPipeline()
	pipe.ZAddNX(ctx, participantsKey(code), redis.Z{
		Score:  float64(time.Now().UnixMicro()),
		Member: string(playerID),
	})
	pipe.SAdd(ctx, playerGamesKey(playerID), string(code))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) IsParticipant(ctx context.Context, code model.GameCode, playerID model.PlayerID) (bool, error) {
	_, err := s.client.ZScore(ctx, participantsKey(code), string(playerID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Storage) CountGameParticipants(ctx context.Context, code model.GameCode) (int, error) {
	n, err := s.client.ZCard(ctx, participantsKey(code)).Result()
	return int(n), err
}

func (s *Storage) ListGameParticipants(ctx context.Context, code model.GameCode) ([]model.Participant, error) {
	ids, err := s.client.ZRange(ctx, participantsKey(code), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	result := make([]model.Participant, 0, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	winners, err := s.client.SMembersMap(ctx, winnersKey(code)).Result()
	if err != nil {
		return nil, err
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = playerKey(model.PlayerID(id))
	}
	players, err := mgetJSON[model.Player](ctx, s.client, keys)
	if err != nil {
		return nil, err
	}
	epicNames := make(map[model.PlayerID]string, len(players))
	for _, p := range players {
		epicNames[p.ID] = p.EpicName
	}

	for _, id := range ids {
		_, won := winners[id]
		result = append(result, model.Participant{
			PlayerID: model.PlayerID(id),
			EpicName: epicNames[model.PlayerID(id)],
			HasWon:   won,
		})
	}
	return result, nil
}

func (s *Storage) ListPlayerParticipations(ctx context.Context, playerID model.PlayerID) ([]model.Participation, error) {
	codes, err := s.client.SMembers(ctx, playerGamesKey(playerID)).Result()
	if err != nil {
		return nil, err
	}
	games, err := s.getGames(ctx, codes)
	if err != nil {
		return nil, err
	}

	result := make([]model.Participation, 0, len(games))
	for _, game := range games {
		won, err := s.client.SIsMember(ctx, winnersKey(game.Code), string(playerID)).Result()
		if err != nil {
			return nil, err
		}
		result = append(result, model.Participation{
			GameCode:  game.Code,
			Mode:      game.Mode,
			HasWon:    won,
			CreatedAt: game.CreatedAt,
		})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (s *Storage) MarkWinner(ctx context.Context, code model.GameCode, playerID model.PlayerID) error {
	ok, err := s.IsParticipant(ctx, code, playerID)
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrParticipantNotFound
	}
	return s.client.SAdd(ctx, winnersKey(code), string(playerID)).Err()
}

// Sanction operations

func (s *Storage) AddSanction(ctx context.Context, sanction *model.Sanction) error {
	data, err := json.Marshal(sanction)
	if err != nil {
		return err
	}

	// Use pipeline for atomic save + index update
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, sanctionKey(sanction.ID), data, 0)
	pipe.ZAdd(ctx, sanctionsByEndIndexKey(), redis.Z{
		Score:  float64(sanction.EndTime.UnixMicro()),
		Member: string(sanction.ID),
	})
	pipe.SAdd(ctx, playerSanctionsKey(sanction.PlayerID), string(sanction.ID))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetActiveSanction(ctx context.Context, playerID model.PlayerID, now time.Time) (*model.Sanction, error) {
	ids, err := s.client.SMembers(ctx, playerSanctionsKey(playerID)).Result()
	if err != nil {
		return nil, err
	}
	sanctions, err := s.getSanctions(ctx, ids)
	if err != nil {
		return nil, err
	}

	var active *model.Sanction
	for _, sanction := range sanctions {
		if !sanction.IsActive(now) {
			continue
		}
		if active == nil || sanction.EndTime.After(active.EndTime) {
			active = sanction
		}
	}
	if active == nil {
		return nil, model.ErrSanctionNotFound
	}
	return active, nil
}

func (s *Storage) ListExpiredSanctions(ctx context.Context, now time.Time) ([]*model.Sanction, error) {
	ids, err := s.client.ZRangeByScore(ctx, sanctionsByEndIndexKey(), &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(now.UnixMicro(), 10),
	}).Result()
	if err != nil {
		return nil, err
	}
	return s.getSanctions(ctx, ids)
}

func (s *Storage) getSanctions(ctx context.Context, ids []string) ([]*model.Sanction, error) {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = sanctionKey(model.SanctionID(id))
	}
	return mgetJSON[model.Sanction](ctx, s.client, keys)
}

func (s *Storage) RemoveSanction(ctx context.Context, id model.SanctionID) error {
	sanction, err := getJSON[model.Sanction](ctx, s.client, sanctionKey(id), model.ErrSanctionNotFound)
	if errors.Is(err, model.ErrSanctionNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, sanctionKey(id))
	pipe.ZRem(ctx, sanctionsByEndIndexKey(), string(id))
	pipe.SRem(ctx, playerSanctionsKey(sanction.PlayerID), string(id))
	_, err = pipe.Exec(ctx)
	return err
}

// getter is satisfied by both the client and a watched transaction
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// getJSON reads and decodes a single value, mapping a missing key to notFound
func getJSON[T any](ctx context.Context, c getter, key string, notFound error) (*T, error) {
	data, err := c.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, notFound
		}
		return nil, err
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// mgetJSON fetches many values at once, skipping keys that no longer exist
func mgetJSON[T any](ctx context.Context, c *redis.Client, keys []string) ([]*T, error) {
	result := make([]*T, 0, len(keys))
	if len(keys) == 0 {
		return result, nil
	}

	values, err := c.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	for _, val := range values {
		str, ok := val.(string)
		if !ok {
			continue
		}
		var v T
		if err := json.Unmarshal([]byte(str), &v); err != nil {
			continue // Skip invalid data
		}
		result = append(result, &v)
	}
	return result, nil
}
