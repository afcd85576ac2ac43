package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mcoot/scrimbot/internal/chat"
	"github.com/mcoot/scrimbot/internal/dependencies/clock"
	"github.com/mcoot/scrimbot/internal/model"
	"github.com/mcoot/scrimbot/internal/services/member"
	"github.com/mcoot/scrimbot/internal/services/prompt"
	"github.com/mcoot/scrimbot/internal/services/session"
	"github.com/mcoot/scrimbot/internal/storage"
)

// Reactions seeded on every announcement
const (
	EmojiJoin   = "✅"
	EmojiLock   = "▶️"
	EmojiCancel = "🛑"
)

// UnlinkedWinner stands in for the Epic name of a winner who never linked one
const UnlinkedWinner = "N/A"

// Side-effect step names recorded on outcomes
const (
	StepPostModePrompt     = "post_mode_prompt"
	StepAddPromptReactions = "add_prompt_reactions"
	StepNotifyIssuer       = "notify_issuer"
	StepPostAnnouncement   = "post_announcement"
	StepRegisterSession    = "register_session"
	StepPersistGame        = "persist_game"
	StepSeedReactions      = "seed_reactions"
	StepPersistStatus      = "persist_status"
	StepDeleteAnnouncement = "delete_announcement"
	StepEditAnnouncement   = "edit_announcement"
	StepLoadPlayer         = "load_player"
	StepCheckParticipant   = "check_participant"
	StepCountParticipants  = "count_participants"
	StepPersistParticipant = "persist_participant"
	StepNotifyJoin         = "notify_join"
	StepDirectMessage      = "direct_message"
	StepRemoveReaction     = "remove_reaction"
	StepLoadParticipants   = "load_participants"
	StepPostResults        = "post_results"
	StepUpdateStats        = "update_stats"
)

var (
	errIgnored          = errors.New("reaction ignored")
	errNoResultsChannel = errors.New("results channel not configured")
)

// Config holds the channel layout and timings of the game flow
type Config struct {
	GuildID            string
	LinkPanelChannelID string
	ResultsChannelID   string
	Modes              []model.ModeConfig

	// ModePromptTimeout bounds the wait for the creator to pick a mode
	ModePromptTimeout time.Duration
	// JoinNoticeTTL is how long the public join confirmation stays up
	JoinNoticeTTL time.Duration
}

// DefaultConfig returns the default timings with no channels configured
func DefaultConfig() Config {
	return Config{
		Modes:             model.DefaultModes(),
		ModePromptTimeout: 60 * time.Second,
		JoinNoticeTTL:     10 * time.Second,
	}
}

// EndResult reports how a game was closed
type EndResult struct {
	Outcome *model.Outcome
	// Winner is nil when the identifier matched no member
	Winner          *chat.Member
	WinnerEpicNames []string
}

// Controller drives game sessions from creation to their terminal status
type Controller struct {
	storage  storage.Storage
	registry *session.Registry
	waiter   *prompt.Waiter
	gateway  chat.Gateway
	members  *member.Resolver
	clock    clock.Clock
	cfg      Config
	logger   *slog.Logger
}

// NewController creates a new game Controller
func NewController(
	storage storage.Storage,
	registry *session.Registry,
	waiter *prompt.Waiter,
	gateway chat.Gateway,
	members *member.Resolver,
	clock clock.Clock,
	cfg Config,
	logger *slog.Logger,
) *Controller {
	if cfg.ModePromptTimeout == 0 {
		cfg.ModePromptTimeout = DefaultConfig().ModePromptTimeout
	}
	if cfg.JoinNoticeTTL == 0 {
		cfg.JoinNoticeTTL = DefaultConfig().JoinNoticeTTL
	}
	return &Controller{
		storage:  storage,
		registry: registry,
		waiter:   waiter,
		gateway:  gateway,
		members:  members,
		clock:    clock,
		cfg:      cfg,
		logger:   logger,
	}
}

// Rehydrate registers the pending and locked games found in storage
func (c *Controller) Rehydrate(ctx context.Context) (int, error) {
	games, err := c.storage.ListActiveGames(ctx)
	if err != nil {
		return 0, err
	}
	added := c.registry.Rehydrate(games)
	c.logger.Info("sessions rehydrated", slog.Int("count", added))
	return added, nil
}

func (c *Controller) enabledModes() []model.ModeConfig {
	var modes []model.ModeConfig
	for _, m := range c.cfg.Modes {
		if m.Enabled() {
			modes = append(modes, m)
		}
	}
	return modes
}

// StartGame asks the issuer to pick a mode in channelID, then announces the
// game in that mode's channel. resp, if set, receives the waiting notice.
// The call blocks until the mode is picked or the prompt times out.
func (c *Controller) StartGame(ctx context.Context, issuer model.Actor, channelID, rawCode string, resp chat.Responder) (*model.Outcome, error) {
	code, err := model.NormalizeGameCode(rawCode)
	if err != nil {
		return nil, err
	}
	if _, active := c.registry.Get(code); active {
		return nil, model.ErrGameAlreadyActive
	}
	exists, err := c.storage.GameExists(ctx, code)
	if err != nil {
		c.logger.Error("failed to check game code",
			slog.String("game_code", string(code)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	if exists {
		return nil, model.ErrGameExists
	}

	modes := c.enabledModes()
	if len(modes) == 0 {
		return nil, model.ErrNoModeConfigured
	}

	out := model.NewOutcome(code)

	msg, err := c.gateway.Send(ctx, channelID, chat.OutboundMessage{
		Embed:       modePromptEmbed(code, issuer.ID, modes),
		DeleteAfter: c.cfg.ModePromptTimeout,
	})
	if out.Record(StepPostModePrompt, model.PolicyRequired, err) != nil {
		return out, err
	}

	emojis := make([]string, len(modes))
	for i, m := range modes {
		emojis[i] = m.Emoji
	}
	pending := c.waiter.Expect(msg.ID, issuer.ID, emojis)
	defer pending.Cancel()

	var reactErr error
	for _, emoji := range emojis {
		reactErr = errors.Join(reactErr, c.gateway.AddReaction(ctx, channelID, msg.ID, emoji))
	}
	out.Record(StepAddPromptReactions, model.PolicyBestEffort, reactErr)

	if resp != nil {
		notice := fmt.Sprintf("⏳ Veuillez choisir un mode pour la partie `%s` dans le message ci-dessus.", code)
		out.Record(StepNotifyIssuer, model.PolicyBestEffort, resp.Reply(ctx, notice))
	}

	waitCtx, cancel := context.WithTimeout(ctx, c.cfg.ModePromptTimeout)
	defer cancel()
	emoji, err := pending.Wait(waitCtx)
	if err != nil {
		c.logger.Info("mode selection abandoned",
			slog.String("game_code", string(code)),
			slog.String("reason", err.Error()),
		)
		return out, err
	}

	var mode model.ModeConfig
	for _, m := range modes {
		if m.Emoji == emoji {
			mode = m
		}
	}

	now := c.clock.Now()
	game := &model.Game{
		Code:              code,
		Mode:              mode.Mode,
		CreatorID:         issuer.ID,
		AnnounceChannelID: mode.AnnounceChannelID,
		Status:            model.GameStatusPending,
		Limit:             mode.Limit,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	ann, err := c.gateway.Send(ctx, mode.AnnounceChannelID, chat.OutboundMessage{
		Embed: c.announcementEmbed(game),
	})
	if out.Record(StepPostAnnouncement, model.PolicyRequired, err) != nil {
		c.logger.Error("failed to post announcement",
			slog.String("game_code", string(code)),
			slog.String("channel_id", mode.AnnounceChannelID),
			slog.String("error", err.Error()),
		)
		return out, err
	}
	game.AnnounceMessageID = ann.ID

	if _, err := c.registry.Register(game); out.Record(StepRegisterSession, model.PolicyRequired, err) != nil {
		out.Record(StepDeleteAnnouncement, model.PolicyBestEffort, c.gateway.DeleteMessage(ctx, ann.ChannelID, ann.ID))
		return out, err
	}

	if err := c.storage.CreateGame(ctx, game); out.Record(StepPersistGame, model.PolicyRequired, err) != nil {
		c.logger.Error("failed to save game",
			slog.String("game_code", string(code)),
			slog.String("error", err.Error()),
		)
		c.registry.Remove(code)
		out.Record(StepDeleteAnnouncement, model.PolicyBestEffort, c.gateway.DeleteMessage(ctx, ann.ChannelID, ann.ID))
		return out, err
	}

	var seedErr error
	for _, e := range []string{EmojiJoin, EmojiLock, EmojiCancel} {
		seedErr = errors.Join(seedErr, c.gateway.AddReaction(ctx, ann.ChannelID, ann.ID, e))
	}
	out.Record(StepSeedReactions, model.PolicyBestEffort, seedErr)

	out.Transition = model.TransitionCreated
	c.logger.Info("game created",
		slog.String("game_code", string(code)),
		slog.String("mode", string(game.Mode)),
		slog.String("creator_id", string(issuer.ID)),
		slog.Int("limit", game.Limit),
	)
	return out, nil
}

// HandleReaction applies a reaction on an announcement to its session.
// Reactions from bots, outside a guild or on unknown messages are ignored.
func (c *Controller) HandleReaction(ctx context.Context, ev model.Event) (*model.Outcome, error) {
	payload, ok := ev.Payload.(model.ReactionPayload)
	if !ok || ev.GuildID == "" || ev.Actor.IsBot || string(ev.Actor.ID) == c.gateway.BotUserID() {
		return model.NewOutcome(""), nil
	}

	sess, ok := c.registry.GetByMessage(ev.MessageID)
	if !ok {
		return model.NewOutcome(""), nil
	}
	game := sess.Snapshot()

	if ev.Actor.ID == game.CreatorID {
		switch payload.Emoji {
		case EmojiCancel:
			return c.cancel(ctx, sess, game.Code)
		case EmojiLock:
			return c.lock(ctx, sess, game.Code)
		}
	}

	if payload.Emoji == EmojiJoin {
		return c.join(ctx, sess, ev)
	}
	return model.NewOutcome(game.Code), nil
}

func (c *Controller) cancel(ctx context.Context, sess *session.Session, code model.GameCode) (*model.Outcome, error) {
	out := model.NewOutcome(code)
	var game model.Game

	err := sess.Do(func(g *model.Game) error {
		if g.Status.IsTerminal() {
			return errIgnored
		}
		err := c.storage.UpdateGameStatus(ctx, g.Code, model.GameStatusCancelled, nil)
		if out.Record(StepPersistStatus, model.PolicyRequired, err) != nil {
			return err
		}
		g.Status = model.GameStatusCancelled
		c.registry.Remove(g.Code)
		game = *g
		return nil
	})
	if errors.Is(err, errIgnored) {
		return out, nil
	}
	if err != nil {
		c.logger.Error("failed to cancel game",
			slog.String("game_code", string(code)),
			slog.String("error", err.Error()),
		)
		return out, err
	}

	out.Record(StepDeleteAnnouncement, model.PolicyBestEffort,
		c.gateway.DeleteMessage(ctx, game.AnnounceChannelID, game.AnnounceMessageID))
	out.Transition = model.TransitionCancelled
	c.logger.Info("game cancelled", slog.String("game_code", string(code)))
	return out, nil
}

func (c *Controller) lock(ctx context.Context, sess *session.Session, code model.GameCode) (*model.Outcome, error) {
	out := model.NewOutcome(code)
	var game model.Game

	err := sess.Do(func(g *model.Game) error {
		if g.Status != model.GameStatusPending {
			return errIgnored
		}
		err := c.storage.UpdateGameStatus(ctx, g.Code, model.GameStatusLocked, nil)
		if out.Record(StepPersistStatus, model.PolicyRequired, err) != nil {
			return err
		}
		g.Status = model.GameStatusLocked
		game = *g
		return nil
	})
	if errors.Is(err, errIgnored) {
		return out, nil
	}
	if err != nil {
		c.logger.Error("failed to lock game",
			slog.String("game_code", string(code)),
			slog.String("error", err.Error()),
		)
		return out, err
	}

	out.Record(StepEditAnnouncement, model.PolicyBestEffort,
		c.gateway.EditEmbed(ctx, game.AnnounceChannelID, game.AnnounceMessageID, *c.announcementEmbed(&game)))
	out.Transition = model.TransitionLocked
	c.logger.Info("game locked", slog.String("game_code", string(code)))
	return out, nil
}

func (c *Controller) join(ctx context.Context, sess *session.Session, ev model.Event) (*model.Outcome, error) {
	playerID := ev.Actor.ID
	var game model.Game
	var rejection error
	out := model.NewOutcome(sess.Snapshot().Code)

	// Admission checks and the insert share one critical section
	err := sess.Do(func(g *model.Game) error {
		game = *g
		if g.Status.IsTerminal() {
			return errIgnored
		}

		player, err := c.storage.GetPlayer(ctx, playerID)
		if errors.Is(err, model.ErrPlayerNotFound) || (err == nil && !player.IsLinked()) {
			rejection = model.ErrNotLinked
			return nil
		}
		if out.Record(StepLoadPlayer, model.PolicyRequired, err) != nil {
			return err
		}

		joined, err := c.storage.IsParticipant(ctx, g.Code, playerID)
		if out.Record(StepCheckParticipant, model.PolicyRequired, err) != nil {
			return err
		}
		if joined {
			rejection = model.ErrAlreadyParticipant
			return nil
		}

		if g.Status == model.GameStatusLocked {
			rejection = model.ErrRegistrationClosed
			return nil
		}

		count, err := c.storage.CountGameParticipants(ctx, g.Code)
		if out.Record(StepCountParticipants, model.PolicyRequired, err) != nil {
			return err
		}
		if count >= g.Limit {
			rejection = model.ErrGameFull
			return nil
		}

		return out.Record(StepPersistParticipant, model.PolicyRequired, c.storage.AddParticipant(ctx, g.Code, playerID))
	})
	if errors.Is(err, errIgnored) {
		return out, nil
	}
	if err != nil {
		c.logger.Error("failed to process join",
			slog.String("game_code", string(game.Code)),
			slog.String("player_id", string(playerID)),
			slog.String("error", err.Error()),
		)
		return out, err
	}

	if rejection != nil {
		out.Transition = model.TransitionJoinRejected
		out.Rejection = rejection
		c.rejectJoin(ctx, out, &game, ev)
		return out, nil
	}

	mention := "<@" + string(playerID) + ">"
	_, err = c.gateway.Send(ctx, game.AnnounceChannelID, chat.OutboundMessage{
		Content:     fmt.Sprintf("👍 %s a rejoint `%s` [%s] !", mention, game.Code, game.Mode),
		DeleteAfter: c.cfg.JoinNoticeTTL,
	})
	out.Record(StepNotifyJoin, model.PolicyBestEffort, err)
	out.Record(StepDirectMessage, model.PolicyBestEffort, c.gateway.SendDirect(ctx, string(playerID),
		fmt.Sprintf("✅ Vous avez rejoint la partie `%s` [%s] !", game.Code, game.Mode)))

	out.Transition = model.TransitionJoined
	c.logger.Info("player joined",
		slog.String("game_code", string(game.Code)),
		slog.String("player_id", string(playerID)),
	)
	return out, nil
}

// rejectJoin tells the member why and retracts their reaction.
// Duplicate joins are silent.
func (c *Controller) rejectJoin(ctx context.Context, out *model.Outcome, game *model.Game, ev model.Event) {
	var reason string
	switch {
	case errors.Is(out.Rejection, model.ErrAlreadyParticipant):
		return
	case errors.Is(out.Rejection, model.ErrNotLinked):
		reason = fmt.Sprintf("⚠️ Pour pouvoir rejoindre la partie `%s`, vous devez d'abord lier votre compte Epic via %s !",
			game.Code, chat.ChannelMention(c.cfg.LinkPanelChannelID))
	case errors.Is(out.Rejection, model.ErrRegistrationClosed):
		reason = fmt.Sprintf("Les inscriptions pour la partie `%s` sont fermées.", game.Code)
	case errors.Is(out.Rejection, model.ErrGameFull):
		reason = fmt.Sprintf("La partie `%s` est complète.", game.Code)
	}

	// Closed DMs are expected, the reaction is still removed
	out.Record(StepDirectMessage, model.PolicyBestEffort, c.gateway.SendDirect(ctx, string(ev.Actor.ID), reason))
	out.Record(StepRemoveReaction, model.PolicyBestEffort,
		c.gateway.RemoveReaction(ctx, ev.ChannelID, ev.MessageID, EmojiJoin, string(ev.Actor.ID)))

	c.logger.Info("join rejected",
		slog.String("game_code", string(game.Code)),
		slog.String("player_id", string(ev.Actor.ID)),
		slog.String("reason", out.Rejection.Error()),
	)
}

// EndGame closes an active game and announces its winner. An identifier
// that matches no member still ends the game, with an empty winner list.
func (c *Controller) EndGame(ctx context.Context, rawCode, winnerIdentifier string) (*EndResult, error) {
	code, err := model.NormalizeGameCode(rawCode)
	if err != nil {
		return nil, model.ErrGameNotActive
	}
	sess, ok := c.registry.Get(code)
	if !ok {
		return nil, model.ErrGameNotActive
	}

	res := &EndResult{Outcome: model.NewOutcome(code), WinnerEpicNames: []string{}}
	out := res.Outcome

	winnerLine := fmt.Sprintf("Gagnant non trouvé (%s)", strings.TrimSpace(winnerIdentifier))
	var winnerPlayer *model.Player
	winner, err := c.members.Resolve(ctx, winnerIdentifier)
	if err != nil {
		c.logger.Warn("winner not found",
			slog.String("game_code", string(code)),
			slog.String("identifier", winnerIdentifier),
		)
	} else {
		res.Winner = winner
		epic, ytLink := UnlinkedWinner, ""
		if p, err := c.storage.GetPlayer(ctx, model.PlayerID(winner.ID)); err == nil {
			winnerPlayer = p
			if p.IsLinked() {
				epic = p.EpicName
			}
			if p.YouTubeURL != "" {
				ytLink = fmt.Sprintf(" ([YouTube](%s))", p.YouTubeURL)
			}
		}
		winnerLine = fmt.Sprintf("%s%s - Epic: %s", winner.Mention(), ytLink, epic)
		res.WinnerEpicNames = []string{epic}
	}

	var game model.Game
	var participants []model.Participant
	err = sess.Do(func(g *model.Game) error {
		if g.Status.IsTerminal() {
			return model.ErrGameNotActive
		}

		var err error
		participants, err = c.storage.ListGameParticipants(ctx, g.Code)
		out.Record(StepLoadParticipants, model.PolicyBestEffort, err)

		err = c.storage.UpdateGameStatus(ctx, g.Code, model.GameStatusFinished, res.WinnerEpicNames)
		if out.Record(StepPersistStatus, model.PolicyRequired, err) != nil {
			return err
		}
		g.Status = model.GameStatusFinished
		g.WinnerEpicNames = res.WinnerEpicNames
		c.registry.Remove(g.Code)
		game = *g
		return nil
	})
	if err != nil {
		if !errors.Is(err, model.ErrGameNotActive) {
			c.logger.Error("failed to end game",
				slog.String("game_code", string(code)),
				slog.String("error", err.Error()),
			)
		}
		return res, err
	}

	if c.cfg.ResultsChannelID == "" {
		c.logger.Error("results channel not configured", slog.String("game_code", string(code)))
		out.Record(StepPostResults, model.PolicyBestEffort, errNoResultsChannel)
	} else {
		_, err := c.gateway.Send(ctx, c.cfg.ResultsChannelID, chat.OutboundMessage{
			Embed: &chat.Embed{
				Title:       fmt.Sprintf("🏆 Victoire Partie %s [%s] !", game.Code, game.Mode),
				Description: "Félicitations à l'équipe gagnante :\n" + winnerLine,
				Color:       chat.ColorGold,
				Timestamp:   c.clock.Now(),
			},
		})
		out.Record(StepPostResults, model.PolicyBestEffort, err)
	}

	out.Record(StepDeleteAnnouncement, model.PolicyBestEffort,
		c.gateway.DeleteMessage(ctx, game.AnnounceChannelID, game.AnnounceMessageID))

	out.Record(StepUpdateStats, model.PolicyBestEffort, c.updateStats(ctx, game.Code, participants, winnerPlayer))

	out.Transition = model.TransitionFinished
	c.logger.Info("game finished",
		slog.String("game_code", string(code)),
		slog.Any("winners", res.WinnerEpicNames),
		slog.Int("participants", len(participants)),
	)
	return res, nil
}

func (c *Controller) updateStats(ctx context.Context, code model.GameCode, participants []model.Participant, winner *model.Player) error {
	var errs []error
	winnerJoined := false
	for _, p := range participants {
		wins := 0
		if winner != nil && p.PlayerID == winner.ID {
			winnerJoined = true
			wins = 1
			errs = append(errs, c.storage.MarkWinner(ctx, code, p.PlayerID))
		}
		errs = append(errs, c.storage.IncrementPlayerStats(ctx, p.PlayerID, 1, wins))
	}
	if winner != nil && !winnerJoined {
		errs = append(errs, c.storage.IncrementPlayerStats(ctx, winner.ID, 0, 1))
	}
	return errors.Join(errs...)
}

// announcementEmbed renders the announcement for the game's current status
func (c *Controller) announcementEmbed(g *model.Game) *chat.Embed {
	creator := "<@" + string(g.CreatorID) + ">"
	howTo := chat.EmbedField{
		Name: "Comment participer ?",
		Value: fmt.Sprintf("1. Réagissez avec %s pour rejoindre (Limite: %d).\n2. Liez vos comptes via %s !",
			EmojiJoin, g.Limit, chat.ChannelMention(c.cfg.LinkPanelChannelID)),
	}
	color := chat.ColorBlue
	if g.Status == model.GameStatusLocked {
		howTo = chat.EmbedField{Name: "Inscriptions fermées !", Value: "La partie va bientôt commencer."}
		color = chat.ColorRed
	}

	return &chat.Embed{
		Title: fmt.Sprintf("Nouvelle Partie [%s]: %s", g.Mode, g.Code),
		Color: color,
		Fields: []chat.EmbedField{
			{Name: "Lancée par", Value: creator},
			howTo,
			{
				Name: "Instructions Créateur",
				Value: fmt.Sprintf("%s clique %s pour démarrer (verrouiller les inscriptions), ou %s pour annuler.",
					creator, EmojiLock, EmojiCancel),
			},
		},
		Footer:    fmt.Sprintf("Limite totale joueurs: %d", g.Limit),
		Timestamp: g.CreatedAt,
	}
}

func modePromptEmbed(code model.GameCode, issuer model.PlayerID, modes []model.ModeConfig) *chat.Embed {
	lines := make([]string, len(modes))
	for i, m := range modes {
		lines[i] = fmt.Sprintf("%s : **%s**", m.Emoji, m.Mode)
	}
	return &chat.Embed{
		Title:       fmt.Sprintf("🚀 Création Partie: `%s`", code),
		Description: fmt.Sprintf("<@%s>, choisissez le mode:", issuer),
		Color:       chat.ColorPurple,
		Fields:      []chat.EmbedField{{Name: "Modes Disponibles", Value: strings.Join(lines, "\n")}},
	}
}
