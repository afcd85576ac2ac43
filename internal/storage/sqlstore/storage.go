// Package sqlstore is the relational storage backend, backed by gorm.
// Postgres is the production database; sqlite serves local runs and tests.
package sqlstore

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"log/slog"
	"net"
	"sort"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/mcoot/scrimbot/internal/model"
	"github.com/mcoot/scrimbot/internal/storage"
)

// Storage is a gorm-backed implementation of the storage interface
type Storage struct {
	db     *gorm.DB
	logger *slog.Logger
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// NewPostgres connects to a Postgres database by DSN or URL
func NewPostgres(dsn string, logger *slog.Logger) (*Storage, error) {
	return Open(postgres.Open(dsn), logger)
}

// NewSQLite opens a sqlite database file, or an in-memory database for a
// "file:name?mode=memory&cache=shared" DSN
func NewSQLite(dsn string, logger *slog.Logger) (*Storage, error) {
	s, err := Open(sqlite.Open(dsn), logger)
	if err != nil {
		return nil, err
	}
	// sqlite allows a single writer
	sqlDB, err := s.db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return s, nil
}

// Open connects with the given dialector and provisions the schema
func Open(dialector gorm.Dialector, logger *slog.Logger) (*Storage, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.New(slog.NewLogLogger(logger.Handler(), slog.LevelWarn), gormlogger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&playerRecord{}, &gameRecord{}, &participantRecord{}, &sanctionRecord{}); err != nil {
		return nil, err
	}

	return &Storage{db: db, logger: logger}, nil
}

// Close closes the underlying connection pool
func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// transaction runs fn as one unit, retrying once after a ping when the
// connection was lost
func (s *Storage) transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	err := s.db.WithContext(ctx).Transaction(fn)
	if err == nil || !isConnectionError(err) {
		return err
	}

	s.logger.Warn("database connection lost, retrying", slog.String("error", err.Error()))
	sqlDB, dbErr := s.db.DB()
	if dbErr != nil {
		return errors.Join(err, dbErr)
	}
	if pingErr := sqlDB.PingContext(ctx); pingErr != nil {
		return errors.Join(err, pingErr)
	}
	return s.db.WithContext(ctx).Transaction(fn)
}

func isConnectionError(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// Player operations

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	var rec playerRecord
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		return tx.Take(&rec, "discord_id = ?", string(id)).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrPlayerNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec.toModel(), nil
}

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	var recs []playerRecord
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		return tx.Order("created_at").Find(&recs).Error
	})
	if err != nil {
		return nil, err
	}
	players := make([]*model.Player, len(recs))
	for i := range recs {
		players[i] = recs[i].toModel()
	}
	return players, nil
}

func (s *Storage) UpsertPlayer(ctx context.Context, id model.PlayerID, update model.PlayerUpdate) error {
	now := time.Now().UTC()
	player := &model.Player{ID: id, CreatedAt: now, UpdatedAt: now}
	update.Apply(player)

	// Only supplied columns are overwritten on conflict
	supplied := update.Columns()
	columns := make([]string, 0, len(supplied)+1)
	for name := range supplied {
		columns = append(columns, name)
	}
	sort.Strings(columns)
	columns = append(columns, "updated_at")

	return s.transaction(ctx, func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "discord_id"}},
			DoUpdates: clause.AssignmentColumns(columns),
		}).Create(newPlayerRecord(player)).Error
	})
}

func (s *Storage) IncrementPlayerStats(ctx context.Context, id model.PlayerID, games, wins int) error {
	return s.transaction(ctx, func(tx *gorm.DB) error {
		res := tx.Model(&playerRecord{}).Where("discord_id = ?", string(id)).Updates(map[string]any{
			"game_count": gorm.Expr("game_count + ?", games),
			"total_wins": gorm.Expr("total_wins + ?", wins),
			"updated_at": time.Now().UTC(),
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return model.ErrPlayerNotFound
		}
		return nil
	})
}

// Game operations

func (s *Storage) CreateGame(ctx context.Context, game *model.Game) error {
	return s.transaction(ctx, func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&gameRecord{}).Where("game_code = ?", string(game.Code)).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return model.ErrGameExists
		}
		return tx.Create(newGameRecord(game)).Error
	})
}

func (s *Storage) GetGame(ctx context.Context, code model.GameCode) (*model.Game, error) {
	var rec gameRecord
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		return tx.Take(&rec, "game_code = ?", string(code)).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrGameNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec.toModel(), nil
}

func (s *Storage) GameExists(ctx context.Context, code model.GameCode) (bool, error) {
	var count int64
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		return tx.Model(&gameRecord{}).Where("game_code = ?", string(code)).Count(&count).Error
	})
	return count > 0, err
}

func (s *Storage) ListGames(ctx context.Context) ([]*model.Game, error) {
	return s.listGames(ctx, nil)
}

func (s *Storage) ListActiveGames(ctx context.Context) ([]*model.Game, error) {
	return s.listGames(ctx, []string{string(model.GameStatusPending), string(model.GameStatusLocked)})
}

func (s *Storage) listGames(ctx context.Context, statuses []string) ([]*model.Game, error) {
	var recs []gameRecord
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		q := tx.Order("created_at DESC")
		if statuses != nil {
			q = q.Where("status IN ?", statuses)
		}
		return q.Find(&recs).Error
	})
	if err != nil {
		return nil, err
	}
	games := make([]*model.Game, len(recs))
	for i := range recs {
		games[i] = recs[i].toModel()
	}
	return games, nil
}

func (s *Storage) UpdateGameStatus(ctx context.Context, code model.GameCode, status model.GameStatus, winners []string) error {
	now := time.Now().UTC()
	updates := map[string]any{
		"status":     string(status),
		"updated_at": now,
	}
	if status == model.GameStatusFinished {
		updates["end_time"] = now
		updates["winners"] = datatypes.JSONSlice[string](winners)
	}

	return s.transaction(ctx, func(tx *gorm.DB) error {
		res := tx.Model(&gameRecord{}).Where("game_code = ?", string(code)).Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return model.ErrGameNotFound
		}
		return nil
	})
}

// Participant operations

func (s *Storage) AddParticipant(ctx context.Context, code model.GameCode, playerID model.PlayerID) error {
	return s.transaction(ctx, func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&gameRecord{}).Where("game_code = ?", string(code)).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return model.ErrGameNotFound
		}
		if err := tx.Model(&playerRecord{}).Where("discord_id = ?", string(playerID)).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return model.ErrPlayerNotFound
		}

		return tx.Omit(clause.Associations).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "game_code"}, {Name: "discord_id"}},
			DoNothing: true,
		}).Create(&participantRecord{
			GameCode:  string(code),
			PlayerID:  string(playerID),
			CreatedAt: time.Now().UTC(),
		}).Error
	})
}

func (s *Storage) IsParticipant(ctx context.Context, code model.GameCode, playerID model.PlayerID) (bool, error) {
	var count int64
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		return tx.Model(&participantRecord{}).
			Where("game_code = ? AND discord_id = ?", string(code), string(playerID)).
			Count(&count).Error
	})
	return count > 0, err
}

func (s *Storage) CountGameParticipants(ctx context.Context, code model.GameCode) (int, error) {
	var count int64
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		return tx.Model(&participantRecord{}).Where("game_code = ?", string(code)).Count(&count).Error
	})
	return int(count), err
}

func (s *Storage) ListGameParticipants(ctx context.Context, code model.GameCode) ([]model.Participant, error) {
	var rows []participantRow
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		return tx.Table("game_participants AS gp").
			Select("gp.discord_id, p.epic_name, gp.has_won").
			Joins("JOIN players p ON p.discord_id = gp.discord_id").
			Where("gp.game_code = ?", string(code)).
			Order("gp.id").
			Scan(&rows).Error
	})
	if err != nil {
		return nil, err
	}
	result := make([]model.Participant, len(rows))
	for i, r := range rows {
		result[i] = model.Participant{
			PlayerID: model.PlayerID(r.DiscordID),
			EpicName: r.EpicName,
			HasWon:   r.HasWon,
		}
	}
	return result, nil
}

func (s *Storage) ListPlayerParticipations(ctx context.Context, playerID model.PlayerID) ([]model.Participation, error) {
	var rows []participationRow
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		return tx.Table("game_participants AS gp").
			Select("gp.game_code, g.mode, gp.has_won, g.created_at").
			Joins("JOIN games g ON g.game_code = gp.game_code").
			Where("gp.discord_id = ?", string(playerID)).
			Order("g.created_at DESC").
			Scan(&rows).Error
	})
	if err != nil {
		return nil, err
	}
	result := make([]model.Participation, len(rows))
	for i, r := range rows {
		result[i] = model.Participation{
			GameCode:  model.GameCode(r.GameCode),
			Mode:      model.GameMode(r.Mode),
			HasWon:    r.HasWon,
			CreatedAt: r.CreatedAt,
		}
	}
	return result, nil
}

func (s *Storage) MarkWinner(ctx context.Context, code model.GameCode, playerID model.PlayerID) error {
	return s.transaction(ctx, func(tx *gorm.DB) error {
		res := tx.Model(&participantRecord{}).
			Where("game_code = ? AND discord_id = ?", string(code), string(playerID)).
			Update("has_won", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return model.ErrParticipantNotFound
		}
		return nil
	})
}

// Sanction operations

func (s *Storage) AddSanction(ctx context.Context, sanction *model.Sanction) error {
	return s.transaction(ctx, func(tx *gorm.DB) error {
		return tx.Create(newSanctionRecord(sanction)).Error
	})
}

func (s *Storage) GetActiveSanction(ctx context.Context, playerID model.PlayerID, now time.Time) (*model.Sanction, error) {
	var rec sanctionRecord
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		return tx.Where("discord_id = ? AND end_time > ?", string(playerID), now.UTC()).
			Order("end_time DESC").
			Take(&rec).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrSanctionNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec.toModel(), nil
}

func (s *Storage) ListExpiredSanctions(ctx context.Context, now time.Time) ([]*model.Sanction, error) {
	var recs []sanctionRecord
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		return tx.Where("end_time <= ?", now.UTC()).Order("end_time").Find(&recs).Error
	})
	if err != nil {
		return nil, err
	}
	sanctions := make([]*model.Sanction, len(recs))
	for i := range recs {
		sanctions[i] = recs[i].toModel()
	}
	return sanctions, nil
}

func (s *Storage) RemoveSanction(ctx context.Context, id model.SanctionID) error {
	return s.transaction(ctx, func(tx *gorm.DB) error {
		return tx.Delete(&sanctionRecord{}, "id = ?", string(id)).Error
	})
}
