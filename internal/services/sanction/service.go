package sanction

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/scrimbot/internal/chat"
	"github.com/mcoot/scrimbot/internal/dependencies/clock"
	"github.com/mcoot/scrimbot/internal/dependencies/ids"
	"github.com/mcoot/scrimbot/internal/model"
	"github.com/mcoot/scrimbot/internal/services/member"
	"github.com/mcoot/scrimbot/internal/storage"
)

// Side-effect step names recorded on outcomes
const (
	StepLoadRoles       = "load_roles"
	StepPersistSanction = "persist_sanction"
	StepRemoveRoles     = "remove_roles"
	StepDeleteSanction  = "delete_sanction"
	StepRestoreRoles    = "restore_roles"
)

// Config holds sanction settings
type Config struct {
	GuildID  string
	Duration time.Duration
}

// DefaultConfig returns the default sanction settings
func DefaultConfig() Config {
	return Config{
		Duration: 10 * time.Minute,
	}
}

// Result reports a punish or lift
type Result struct {
	Outcome  *model.Outcome
	Target   *chat.Member
	Sanction *model.Sanction
}

// Service issues and lifts role sanctions
type Service struct {
	storage storage.Storage
	gateway chat.Gateway
	members *member.Resolver
	clock   clock.Clock
	ids     ids.Generator
	cfg     Config
	logger  *slog.Logger

	// Serializes the active-sanction check with the insert
	mu sync.Mutex
}

// New creates a new sanction Service
func New(
	storage storage.Storage,
	gateway chat.Gateway,
	members *member.Resolver,
	clock clock.Clock,
	ids ids.Generator,
	cfg Config,
	logger *slog.Logger,
) *Service {
	if cfg.Duration == 0 {
		cfg.Duration = DefaultConfig().Duration
	}
	return &Service{
		storage: storage,
		gateway: gateway,
		members: members,
		clock:   clock,
		ids:     ids,
		cfg:     cfg,
		logger:  logger.With(slog.String("component", "sanction")),
	}
}

// Duration returns how long a sanction lasts
func (s *Service) Duration() time.Duration {
	return s.cfg.Duration
}

// Punish strips the target of their removable roles for the configured duration
func (s *Service) Punish(ctx context.Context, actor model.Actor, identifier string) (*Result, error) {
	target, err := s.members.Resolve(ctx, identifier)
	if err != nil {
		return nil, err
	}
	res := &Result{Outcome: model.NewOutcome(""), Target: target}
	out := res.Outcome

	if target.ID == string(actor.ID) {
		return res, model.ErrSelfSanction
	}
	if target.Administrator && !actor.IsAdmin {
		return res, model.ErrProtectedMember
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	_, err = s.storage.GetActiveSanction(ctx, model.PlayerID(target.ID), now)
	if err == nil {
		return res, model.ErrSanctionActive
	}
	if !errors.Is(err, model.ErrSanctionNotFound) {
		return res, err
	}

	snapshot, err := s.removableRoles(ctx, target)
	if out.Record(StepLoadRoles, model.PolicyRequired, err) != nil {
		s.logger.Error("failed to load guild roles", slog.String("error", err.Error()))
		return res, err
	}

	sanction := &model.Sanction{
		ID:        model.SanctionID(s.ids.NewID()),
		PlayerID:  model.PlayerID(target.ID),
		Type:      model.SanctionTypeManual,
		EndTime:   now.Add(s.cfg.Duration),
		Roles:     snapshot,
		CreatedAt: now,
	}
	if err := s.storage.AddSanction(ctx, sanction); out.Record(StepPersistSanction, model.PolicyRequired, err) != nil {
		s.logger.Error("failed to save sanction",
			slog.String("player_id", target.ID),
			slog.String("error", err.Error()),
		)
		return res, err
	}
	res.Sanction = sanction

	if len(snapshot) > 0 {
		err := s.gateway.RemoveRoles(ctx, s.cfg.GuildID, target.ID, sanction.RoleIDs())
		if out.Record(StepRemoveRoles, model.PolicyBestEffort, err) != nil {
			s.logger.Error("failed to remove roles",
				slog.String("player_id", target.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	out.Transition = model.TransitionSanctioned
	s.logger.Info("member sanctioned",
		slog.String("player_id", target.ID),
		slog.String("actor_id", string(actor.ID)),
		slog.Int("roles", len(snapshot)),
		slog.Time("end_time", sanction.EndTime),
	)
	return res, nil
}

// Lift deletes the target's active sanction and restores their roles
func (s *Service) Lift(ctx context.Context, identifier string) (*Result, error) {
	target, err := s.members.Resolve(ctx, identifier)
	if err != nil {
		return nil, err
	}
	res := &Result{Outcome: model.NewOutcome(""), Target: target}
	out := res.Outcome

	s.mu.Lock()
	defer s.mu.Unlock()

	sanction, err := s.storage.GetActiveSanction(ctx, model.PlayerID(target.ID), s.clock.Now())
	if err != nil {
		return res, err
	}
	res.Sanction = sanction

	if err := s.storage.RemoveSanction(ctx, sanction.ID); out.Record(StepDeleteSanction, model.PolicyRequired, err) != nil {
		s.logger.Error("failed to delete sanction",
			slog.String("sanction_id", string(sanction.ID)),
			slog.String("error", err.Error()),
		)
		return res, err
	}

	if err := s.restoreRoles(ctx, sanction); out.Record(StepRestoreRoles, model.PolicyBestEffort, err) != nil {
		s.logger.Error("failed to restore roles",
			slog.String("player_id", target.ID),
			slog.String("error", err.Error()),
		)
	}

	out.Transition = model.TransitionLifted
	s.logger.Info("sanction lifted", slog.String("player_id", target.ID))
	return res, nil
}

// SweepOnce restores and deletes every expired sanction, returning how many were deleted
func (s *Service) SweepOnce(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expired, err := s.storage.ListExpiredSanctions(ctx, s.clock.Now())
	if err != nil {
		return 0, err
	}

	removed := 0
	var errs []error
	for _, sanction := range expired {
		if err := s.restoreRoles(ctx, sanction); err != nil {
			// The member may have left the guild, the row still goes
			s.logger.Warn("failed to restore roles of expired sanction",
				slog.String("player_id", string(sanction.PlayerID)),
				slog.String("error", err.Error()),
			)
		}
		if err := s.storage.RemoveSanction(ctx, sanction.ID); err != nil {
			errs = append(errs, err)
			continue
		}
		removed++
	}
	if removed > 0 {
		s.logger.Info("expired sanctions swept", slog.Int("count", removed))
	}
	return removed, errors.Join(errs...)
}

// RunSweeper calls SweepOnce every interval until ctx is done
func (s *Service) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("sanction sweeper started", slog.Duration("interval", interval))
	for {
		select {
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil {
				s.logger.Error("sanction sweep failed", slog.String("error", err.Error()))
			}
		case <-ctx.Done():
			s.logger.Info("sanction sweeper stopped")
			return
		}
	}
}

// removableRoles snapshots the target's roles the bot is able to remove
func (s *Service) removableRoles(ctx context.Context, target *chat.Member) ([]model.RoleSnapshot, error) {
	roles, err := s.gateway.Roles(ctx, s.cfg.GuildID)
	if err != nil {
		return nil, err
	}
	botTop, err := s.gateway.BotTopRolePosition(ctx, s.cfg.GuildID)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]chat.Role, len(roles))
	for _, r := range roles {
		byID[r.ID] = r
	}

	snapshot := []model.RoleSnapshot{}
	for _, id := range target.RoleIDs {
		r, ok := byID[id]
		if !ok || r.ID == s.cfg.GuildID || r.Managed || r.Position >= botTop {
			continue
		}
		snapshot = append(snapshot, model.RoleSnapshot{ID: r.ID, Name: r.Name})
	}
	return snapshot, nil
}

// restoreRoles gives back the snapshotted roles that still exist in the guild
func (s *Service) restoreRoles(ctx context.Context, sanction *model.Sanction) error {
	if len(sanction.Roles) == 0 {
		return nil
	}
	roles, err := s.gateway.Roles(ctx, s.cfg.GuildID)
	if err != nil {
		return err
	}
	present := make(map[string]bool, len(roles))
	for _, r := range roles {
		present[r.ID] = true
	}

	var restore []string
	for _, id := range sanction.RoleIDs() {
		if present[id] {
			restore = append(restore, id)
		}
	}
	if len(restore) == 0 {
		return nil
	}
	return s.gateway.AddRoles(ctx, s.cfg.GuildID, string(sanction.PlayerID), restore)
}
