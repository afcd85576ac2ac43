package game

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/scrimbot/internal/chat"
	"github.com/mcoot/scrimbot/internal/dependencies/mocks"
	"github.com/mcoot/scrimbot/internal/model"
	"github.com/mcoot/scrimbot/internal/services/member"
	"github.com/mcoot/scrimbot/internal/services/prompt"
	"github.com/mcoot/scrimbot/internal/services/session"
	"github.com/mcoot/scrimbot/internal/storage/memory"
	"github.com/mcoot/scrimbot/internal/testutil"
)

const (
	botID     = "1"
	creatorID = "900"
	guildID   = "guild"
	adminChan = "chan-admin"
)

type ControllerSuite struct {
	suite.Suite
	storage    *memory.Storage
	registry   *session.Registry
	waiter     *prompt.Waiter
	gateway    *mocks.MockGateway
	clock      *mocks.MockClock
	cfg        Config
	controller *Controller
	ctx        context.Context
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.storage = memory.New()
	s.registry = session.NewRegistry()
	s.waiter = prompt.NewWaiter()
	s.gateway = mocks.NewMockGateway(botID)
	s.clock = mocks.NewMockClock(time.Date(2025, 3, 14, 20, 0, 0, 0, time.UTC))
	s.cfg = Config{
		GuildID:            guildID,
		LinkPanelChannelID: "chan-link",
		ResultsChannelID:   "chan-results",
		Modes: []model.ModeConfig{
			{Mode: model.ModeSolo, Emoji: "👤", AnnounceChannelID: "chan-solo", Limit: 1},
			{Mode: model.ModeDuo, Emoji: "👥", AnnounceChannelID: "chan-duo", Limit: 50},
			{Mode: model.ModeTrio, Emoji: "👨‍👩‍👧", Limit: 33},
		},
		ModePromptTimeout: time.Second,
		JoinNoticeTTL:     10 * time.Second,
	}
	s.controller = s.newController(s.cfg)
	s.ctx = context.Background()
}

func (s *ControllerSuite) newController(cfg Config) *Controller {
	return NewController(
		s.storage,
		s.registry,
		s.waiter,
		s.gateway,
		member.NewResolver(s.gateway, guildID),
		s.clock,
		cfg,
		testutil.NopLogger(),
	)
}

// answerPrompt makes the issuer pick emoji as soon as the bot offers it
func (s *ControllerSuite) answerPrompt(issuer model.PlayerID, emoji string) {
	s.gateway.OnReactionAdded = func(r mocks.Reaction) {
		if r.Emoji == emoji {
			s.waiter.Deliver(r.MessageID, issuer, emoji)
		}
	}
}

func (s *ControllerSuite) startGame(code, emoji string) model.Game {
	s.answerPrompt(creatorID, emoji)
	out, err := s.controller.StartGame(s.ctx, model.Actor{ID: creatorID, IsAdmin: true}, adminChan, code, nil)
	s.Require().NoError(err)
	s.Require().Equal(model.TransitionCreated, out.Transition)

	sess, ok := s.registry.Get(model.GameCode(code))
	s.Require().True(ok)
	return sess.Snapshot()
}

func (s *ControllerSuite) linkPlayer(id model.PlayerID, epic string) {
	s.Require().NoError(s.storage.UpsertPlayer(s.ctx, id, model.PlayerUpdate{EpicName: model.Ptr(epic)}))
}

func (s *ControllerSuite) react(g model.Game, userID model.PlayerID, emoji string) *model.Outcome {
	out, err := s.controller.HandleReaction(s.ctx, model.Event{
		Type:      model.EventReactionAdded,
		GuildID:   guildID,
		ChannelID: g.AnnounceChannelID,
		MessageID: g.AnnounceMessageID,
		Actor:     model.Actor{ID: userID},
		Payload:   model.ReactionPayload{Emoji: emoji},
	})
	s.Require().NoError(err)
	return out
}

func (s *ControllerSuite) participantCount(code model.GameCode) int {
	n, err := s.storage.CountGameParticipants(s.ctx, code)
	s.Require().NoError(err)
	return n
}

// StartGame tests

func (s *ControllerSuite) TestStartGameAnnouncesAndPersists() {
	resp := mocks.NewMockResponder()
	s.answerPrompt(creatorID, "👥")

	out, err := s.controller.StartGame(s.ctx, model.Actor{ID: creatorID}, adminChan, "  Friday-Cup ", resp)
	s.Require().NoError(err)
	s.Equal(model.TransitionCreated, out.Transition)
	s.Equal(model.GameCode("friday-cup"), out.GameCode)
	s.Empty(out.Failed())

	prompts := s.gateway.SentTo(adminChan)
	s.Require().Len(prompts, 1)
	s.Equal("🚀 Création Partie: `friday-cup`", prompts[0].Embed.Title)
	s.Equal(time.Second, prompts[0].DeleteAfter)
	s.Contains(prompts[0].Embed.Fields[0].Value, "👥 : **DUO**")
	s.NotContains(prompts[0].Embed.Fields[0].Value, "TRIO")

	s.Equal([]string{"⏳ Veuillez choisir un mode pour la partie `friday-cup` dans le message ci-dessus."}, resp.Replies)

	announcements := s.gateway.SentTo("chan-duo")
	s.Require().Len(announcements, 1)
	ann := announcements[0]
	s.Equal("Nouvelle Partie [DUO]: friday-cup", ann.Embed.Title)
	s.Equal(chat.ColorBlue, ann.Embed.Color)
	s.Equal("Limite totale joueurs: 50", ann.Embed.Footer)
	s.Contains(ann.Embed.Fields[1].Value, "<#chan-link>")

	var seeded []string
	for _, r := range s.gateway.ReactionsAdded() {
		if r.MessageID == ann.ID {
			seeded = append(seeded, r.Emoji)
		}
	}
	s.Equal([]string{EmojiJoin, EmojiLock, EmojiCancel}, seeded)

	game, err := s.storage.GetGame(s.ctx, "friday-cup")
	s.Require().NoError(err)
	s.Equal(model.GameStatusPending, game.Status)
	s.Equal(model.ModeDuo, game.Mode)
	s.Equal(50, game.Limit)
	s.Equal(ann.ID, game.AnnounceMessageID)
	s.Equal("chan-duo", game.AnnounceChannelID)
	s.Equal(model.PlayerID(creatorID), game.CreatorID)

	sess, ok := s.registry.GetByMessage(ann.ID)
	s.Require().True(ok)
	s.Equal(model.GameCode("friday-cup"), sess.Snapshot().Code)
	s.Zero(s.waiter.Len())
}

func (s *ControllerSuite) TestStartGameInvalidCode() {
	_, err := s.controller.StartGame(s.ctx, model.Actor{ID: creatorID}, adminChan, "bad code!", nil)
	s.ErrorIs(err, model.ErrInvalidGameCode)
	s.Empty(s.gateway.Sent())
}

func (s *ControllerSuite) TestStartGameCodeTooLong() {
	code := strings.Repeat("x", model.MaxGameCodeLength+1)
	_, err := s.controller.StartGame(s.ctx, model.Actor{ID: creatorID}, adminChan, code, nil)
	s.ErrorIs(err, model.ErrInvalidGameCode)
	s.Empty(s.gateway.Sent())
}

func (s *ControllerSuite) TestStartGameAlreadyActive() {
	s.startGame("cup", "👥")

	_, err := s.controller.StartGame(s.ctx, model.Actor{ID: creatorID}, adminChan, "CUP", nil)
	s.ErrorIs(err, model.ErrGameAlreadyActive)
	s.Equal(1, s.registry.Len())
}

func (s *ControllerSuite) TestStartGameCodeUsedByPastGame() {
	s.Require().NoError(s.storage.CreateGame(s.ctx, &model.Game{
		Code: "cup", Mode: model.ModeSolo, Status: model.GameStatusFinished,
	}))

	_, err := s.controller.StartGame(s.ctx, model.Actor{ID: creatorID}, adminChan, "cup", nil)
	s.ErrorIs(err, model.ErrGameExists)
}

func (s *ControllerSuite) TestStartGameNoModeConfigured() {
	cfg := s.cfg
	cfg.Modes = model.DefaultModes()
	controller := s.newController(cfg)

	_, err := controller.StartGame(s.ctx, model.Actor{ID: creatorID}, adminChan, "cup", nil)
	s.ErrorIs(err, model.ErrNoModeConfigured)
}

func (s *ControllerSuite) TestStartGameTimeoutAbortsSilently() {
	cfg := s.cfg
	cfg.ModePromptTimeout = 20 * time.Millisecond
	controller := s.newController(cfg)

	_, err := controller.StartGame(s.ctx, model.Actor{ID: creatorID}, adminChan, "cup", nil)
	s.ErrorIs(err, model.ErrModeSelectionTimeout)
	s.Empty(s.gateway.SentTo("chan-duo"))
	s.Zero(s.registry.Len())
	s.Zero(s.waiter.Len())

	exists, err := s.storage.GameExists(s.ctx, "cup")
	s.Require().NoError(err)
	s.False(exists)
}

func (s *ControllerSuite) TestStartGameIgnoresPickFromOtherMember() {
	cfg := s.cfg
	cfg.ModePromptTimeout = 20 * time.Millisecond
	controller := s.newController(cfg)
	s.answerPrompt("1234", "👥")

	_, err := controller.StartGame(s.ctx, model.Actor{ID: creatorID}, adminChan, "cup", nil)
	s.ErrorIs(err, model.ErrModeSelectionTimeout)
}

func (s *ControllerSuite) TestStartGameAnnouncementFailure() {
	s.gateway.OnReactionAdded = func(r mocks.Reaction) {
		if r.Emoji == "👥" {
			s.gateway.Fail("Send", errors.New("missing access"))
			s.waiter.Deliver(r.MessageID, creatorID, "👥")
		}
	}

	out, err := s.controller.StartGame(s.ctx, model.Actor{ID: creatorID}, adminChan, "cup", nil)
	s.Error(err)
	step, ok := out.Step(StepPostAnnouncement)
	s.Require().True(ok)
	s.Equal(model.PolicyRequired, step.Policy)
	s.Zero(s.registry.Len())
}

// Join tests

func (s *ControllerSuite) TestUnlinkedJoinRejected() {
	g := s.startGame("cup", "👥")

	out := s.react(g, "1001", EmojiJoin)
	s.Equal(model.TransitionJoinRejected, out.Transition)
	s.ErrorIs(out.Rejection, model.ErrNotLinked)
	s.Zero(s.participantCount("cup"))

	dms := s.gateway.DMs("1001")
	s.Require().Len(dms, 1)
	s.Contains(dms[0], "<#chan-link>")

	removed := s.gateway.ReactionsRemoved()
	s.Require().Len(removed, 1)
	s.Equal(mocks.Reaction{ChannelID: "chan-duo", MessageID: g.AnnounceMessageID, Emoji: EmojiJoin, UserID: "1001"}, removed[0])
}

func (s *ControllerSuite) TestPlayerWithoutEpicNameIsNotLinked() {
	g := s.startGame("cup", "👥")
	s.Require().NoError(s.storage.UpsertPlayer(s.ctx, "1001", model.PlayerUpdate{IsCreator: model.Ptr(true)}))

	out := s.react(g, "1001", EmojiJoin)
	s.ErrorIs(out.Rejection, model.ErrNotLinked)
}

func (s *ControllerSuite) TestJoinSucceeds() {
	g := s.startGame("cup", "👥")
	s.linkPlayer("1001", "Bugha")

	out := s.react(g, "1001", EmojiJoin)
	s.Equal(model.TransitionJoined, out.Transition)
	s.NoError(out.Rejection)
	s.Empty(out.Failed())
	s.Equal(1, s.participantCount("cup"))

	notices := s.gateway.SentTo("chan-duo")
	s.Require().Len(notices, 2)
	s.Equal("👍 <@1001> a rejoint `cup` [DUO] !", notices[1].Content)
	s.Equal(10*time.Second, notices[1].DeleteAfter)
	s.Equal([]string{"✅ Vous avez rejoint la partie `cup` [DUO] !"}, s.gateway.DMs("1001"))
	s.Empty(s.gateway.ReactionsRemoved())
}

func (s *ControllerSuite) TestDuplicateJoinIsSilent() {
	g := s.startGame("cup", "👥")
	s.linkPlayer("1001", "Bugha")
	s.react(g, "1001", EmojiJoin)

	out := s.react(g, "1001", EmojiJoin)
	s.ErrorIs(out.Rejection, model.ErrAlreadyParticipant)
	s.Equal(1, s.participantCount("cup"))
	s.Len(s.gateway.DMs("1001"), 1)
	s.Empty(s.gateway.ReactionsRemoved())
}

func (s *ControllerSuite) TestJoinBeyondCapacity() {
	g := s.startGame("solo", "👤")
	s.linkPlayer("1001", "Bugha")
	s.linkPlayer("1002", "Clix")
	s.react(g, "1001", EmojiJoin)

	out := s.react(g, "1002", EmojiJoin)
	s.ErrorIs(out.Rejection, model.ErrGameFull)
	s.Equal(1, s.participantCount("solo"))
	s.Equal([]string{"La partie `solo` est complète."}, s.gateway.DMs("1002"))
	s.Len(s.gateway.ReactionsRemoved(), 1)
}

func (s *ControllerSuite) TestConcurrentJoinsRespectCapacity() {
	g := s.startGame("solo", "👤")
	for i := range 20 {
		s.linkPlayer(model.PlayerID(fmt.Sprintf("%d", 2000+i)), fmt.Sprintf("epic-%d", i))
	}

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.controller.HandleReaction(s.ctx, model.Event{
				GuildID:   guildID,
				ChannelID: g.AnnounceChannelID,
				MessageID: g.AnnounceMessageID,
				Actor:     model.Actor{ID: model.PlayerID(fmt.Sprintf("%d", 2000+i))},
				Payload:   model.ReactionPayload{Emoji: EmojiJoin},
			})
		}()
	}
	wg.Wait()

	s.Equal(1, s.participantCount("solo"))
}

func (s *ControllerSuite) TestClosedDMsDoNotBlockRejection() {
	g := s.startGame("cup", "👥")
	s.gateway.Fail("SendDirect", errors.New("cannot send messages to this user"))

	out := s.react(g, "1001", EmojiJoin)
	s.ErrorIs(out.Rejection, model.ErrNotLinked)
	step, ok := out.Step(StepDirectMessage)
	s.Require().True(ok)
	s.Error(step.Err)
	s.Equal(model.PolicyBestEffort, step.Policy)
	s.Len(s.gateway.ReactionsRemoved(), 1)
}

func (s *ControllerSuite) TestCreatorCanJoinOwnGame() {
	g := s.startGame("cup", "👥")
	s.linkPlayer(creatorID, "Host")

	out := s.react(g, creatorID, EmojiJoin)
	s.Equal(model.TransitionJoined, out.Transition)
}

func (s *ControllerSuite) TestIgnoredReactions() {
	g := s.startGame("cup", "👥")
	s.linkPlayer("1001", "Bugha")

	out := s.react(g, botID, EmojiJoin)
	s.Equal(model.TransitionNone, out.Transition)

	out, err := s.controller.HandleReaction(s.ctx, model.Event{
		GuildID:   guildID,
		MessageID: "unknown",
		Actor:     model.Actor{ID: "1001"},
		Payload:   model.ReactionPayload{Emoji: EmojiJoin},
	})
	s.Require().NoError(err)
	s.Equal(model.TransitionNone, out.Transition)

	out, err = s.controller.HandleReaction(s.ctx, model.Event{
		MessageID: g.AnnounceMessageID,
		Actor:     model.Actor{ID: "1001"},
		Payload:   model.ReactionPayload{Emoji: EmojiJoin},
	})
	s.Require().NoError(err)
	s.Equal(model.TransitionNone, out.Transition)

	out = s.react(g, "1001", "🎉")
	s.Equal(model.TransitionNone, out.Transition)
	s.Zero(s.participantCount("cup"))
}

// Creator control tests

func (s *ControllerSuite) TestCreatorLock() {
	g := s.startGame("cup", "👥")

	out := s.react(g, creatorID, EmojiLock)
	s.Equal(model.TransitionLocked, out.Transition)

	game, err := s.storage.GetGame(s.ctx, "cup")
	s.Require().NoError(err)
	s.Equal(model.GameStatusLocked, game.Status)

	sess, _ := s.registry.Get("cup")
	s.Equal(model.GameStatusLocked, sess.Snapshot().Status)

	edits := s.gateway.Edits()
	s.Require().Len(edits, 1)
	s.Equal(g.AnnounceMessageID, edits[0].MessageID)
	s.Equal(chat.ColorRed, edits[0].Embed.Color)
	s.Equal("Inscriptions fermées !", edits[0].Embed.Fields[1].Name)

	// Locking twice is a no-op
	out = s.react(g, creatorID, EmojiLock)
	s.Equal(model.TransitionNone, out.Transition)
	s.Len(s.gateway.Edits(), 1)
}

func (s *ControllerSuite) TestJoinAfterLockRejected() {
	g := s.startGame("cup", "👥")
	s.linkPlayer("1001", "Bugha")
	s.react(g, creatorID, EmojiLock)

	out := s.react(g, "1001", EmojiJoin)
	s.ErrorIs(out.Rejection, model.ErrRegistrationClosed)
	s.Equal([]string{"Les inscriptions pour la partie `cup` sont fermées."}, s.gateway.DMs("1001"))
	s.Zero(s.participantCount("cup"))
}

func (s *ControllerSuite) TestNonCreatorCannotLockOrCancel() {
	g := s.startGame("cup", "👥")

	s.Equal(model.TransitionNone, s.react(g, "1001", EmojiLock).Transition)
	s.Equal(model.TransitionNone, s.react(g, "1001", EmojiCancel).Transition)

	sess, ok := s.registry.Get("cup")
	s.Require().True(ok)
	s.Equal(model.GameStatusPending, sess.Snapshot().Status)
}

func (s *ControllerSuite) TestCreatorCancel() {
	g := s.startGame("cup", "👥")

	out := s.react(g, creatorID, EmojiCancel)
	s.Equal(model.TransitionCancelled, out.Transition)

	game, err := s.storage.GetGame(s.ctx, "cup")
	s.Require().NoError(err)
	s.Equal(model.GameStatusCancelled, game.Status)
	s.Zero(s.registry.Len())
	s.Contains(s.gateway.Deleted(), g.AnnounceMessageID)

	// The announcement no longer routes
	s.Equal(model.TransitionNone, s.react(g, creatorID, EmojiCancel).Transition)
}

func (s *ControllerSuite) TestCancelKeepsSessionWhenPersistFails() {
	g := s.startGame("cup", "👥")
	failing := &failingStatusStorage{Storage: s.storage}
	controller := NewController(failing, s.registry, s.waiter, s.gateway,
		member.NewResolver(s.gateway, guildID), s.clock, s.cfg, testutil.NopLogger())

	out, err := controller.HandleReaction(s.ctx, model.Event{
		GuildID:   guildID,
		ChannelID: g.AnnounceChannelID,
		MessageID: g.AnnounceMessageID,
		Actor:     model.Actor{ID: creatorID},
		Payload:   model.ReactionPayload{Emoji: EmojiCancel},
	})
	s.Error(err)
	s.Equal(model.TransitionNone, out.Transition)
	s.Equal(1, s.registry.Len())
	s.NotContains(s.gateway.Deleted(), g.AnnounceMessageID)
}

type failingStatusStorage struct {
	*memory.Storage
}

func (f *failingStatusStorage) UpdateGameStatus(context.Context, model.GameCode, model.GameStatus, []string) error {
	return errors.New("connection reset")
}

// EndGame tests

func (s *ControllerSuite) TestEndGameWithWinner() {
	g := s.startGame("cup", "👥")
	s.Require().NoError(s.storage.UpsertPlayer(s.ctx, "1001", model.PlayerUpdate{
		EpicName:   model.Ptr("Bugha"),
		YouTubeURL: model.Ptr("https://youtube.com/@bugha"),
	}))
	s.linkPlayer("1002", "Clix")
	s.gateway.AddMember(&chat.Member{ID: "1001", Username: "bugha"})
	s.react(g, "1001", EmojiJoin)
	s.react(g, "1002", EmojiJoin)

	res, err := s.controller.EndGame(s.ctx, "CUP", "<@1001>")
	s.Require().NoError(err)
	s.Equal(model.TransitionFinished, res.Outcome.Transition)
	s.Empty(res.Outcome.Failed())
	s.Equal([]string{"Bugha"}, res.WinnerEpicNames)
	s.Require().NotNil(res.Winner)
	s.Equal("1001", res.Winner.ID)

	game, err := s.storage.GetGame(s.ctx, "cup")
	s.Require().NoError(err)
	s.Equal(model.GameStatusFinished, game.Status)
	s.Equal([]string{"Bugha"}, game.WinnerEpicNames)
	s.NotNil(game.EndTime)
	s.Zero(s.registry.Len())

	results := s.gateway.SentTo("chan-results")
	s.Require().Len(results, 1)
	s.Equal("🏆 Victoire Partie cup [DUO] !", results[0].Embed.Title)
	s.Equal(chat.ColorGold, results[0].Embed.Color)
	s.Contains(results[0].Embed.Description, "<@1001> ([YouTube](https://youtube.com/@bugha)) - Epic: Bugha")
	s.Contains(s.gateway.Deleted(), g.AnnounceMessageID)

	winner, err := s.storage.GetPlayer(s.ctx, "1001")
	s.Require().NoError(err)
	s.Equal(1, winner.GameCount)
	s.Equal(1, winner.TotalWins)
	loser, err := s.storage.GetPlayer(s.ctx, "1002")
	s.Require().NoError(err)
	s.Equal(1, loser.GameCount)
	s.Zero(loser.TotalWins)

	parts, err := s.storage.ListGameParticipants(s.ctx, "cup")
	s.Require().NoError(err)
	for _, p := range parts {
		s.Equal(p.PlayerID == "1001", p.HasWon)
	}
}

func (s *ControllerSuite) TestEndGameWinnerNotFound() {
	s.startGame("cup", "👥")

	res, err := s.controller.EndGame(s.ctx, "cup", "ghost#0001")
	s.Require().NoError(err)
	s.Nil(res.Winner)
	s.Empty(res.WinnerEpicNames)

	game, err := s.storage.GetGame(s.ctx, "cup")
	s.Require().NoError(err)
	s.Equal(model.GameStatusFinished, game.Status)
	s.Empty(game.WinnerEpicNames)

	results := s.gateway.SentTo("chan-results")
	s.Require().Len(results, 1)
	s.Contains(results[0].Embed.Description, "Gagnant non trouvé (ghost#0001)")
}

func (s *ControllerSuite) TestEndGameUnlinkedWinner() {
	g := s.startGame("cup", "👥")
	s.gateway.AddMember(&chat.Member{ID: "1003", Username: "lurker"})
	s.linkPlayer("1002", "Clix")
	s.react(g, "1002", EmojiJoin)

	res, err := s.controller.EndGame(s.ctx, "cup", "1003")
	s.Require().NoError(err)
	s.Require().NotNil(res.Winner)
	s.Equal([]string{UnlinkedWinner}, res.WinnerEpicNames)

	game, err := s.storage.GetGame(s.ctx, "cup")
	s.Require().NoError(err)
	s.Equal([]string{"N/A"}, game.WinnerEpicNames)

	results := s.gateway.SentTo("chan-results")
	s.Require().Len(results, 1)
	s.Contains(results[0].Embed.Description, "<@1003> - Epic: N/A")
}

func (s *ControllerSuite) TestEndGameNotActive() {
	_, err := s.controller.EndGame(s.ctx, "nope", "1001")
	s.ErrorIs(err, model.ErrGameNotActive)
}

func (s *ControllerSuite) TestEndGameSurvivesCleanupFailures() {
	s.startGame("cup", "👥")
	s.gateway.Fail("DeleteMessage", errors.New("unknown message"))
	s.gateway.Fail("Send", errors.New("missing access"))

	res, err := s.controller.EndGame(s.ctx, "cup", "1001")
	s.Require().NoError(err)
	s.Equal(model.TransitionFinished, res.Outcome.Transition)

	for _, step := range res.Outcome.Failed() {
		s.Equal(model.PolicyBestEffort, step.Policy, step.Step)
	}
	_, ok := res.Outcome.Step(StepDeleteAnnouncement)
	s.True(ok)
	s.Zero(s.registry.Len())
}

func (s *ControllerSuite) TestEndGameWithoutResultsChannel() {
	cfg := s.cfg
	cfg.ResultsChannelID = ""
	controller := s.newController(cfg)
	s.answerPrompt(creatorID, "👥")
	_, err := controller.StartGame(s.ctx, model.Actor{ID: creatorID}, adminChan, "cup", nil)
	s.Require().NoError(err)

	res, err := controller.EndGame(s.ctx, "cup", "1001")
	s.Require().NoError(err)
	step, ok := res.Outcome.Step(StepPostResults)
	s.Require().True(ok)
	s.ErrorIs(step.Err, errNoResultsChannel)
}

// Startup

func (s *ControllerSuite) TestRehydrateRestoresSessions() {
	s.Require().NoError(s.storage.CreateGame(s.ctx, &model.Game{
		Code: "carry", Mode: model.ModeDuo, CreatorID: creatorID, Status: model.GameStatusLocked,
		AnnounceMessageID: "m-carry", AnnounceChannelID: "chan-duo", Limit: 50,
	}))
	s.Require().NoError(s.storage.CreateGame(s.ctx, &model.Game{
		Code: "old", Mode: model.ModeDuo, Status: model.GameStatusFinished, AnnounceMessageID: "m-old",
	}))

	n, err := s.controller.Rehydrate(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, n)

	s.linkPlayer("1001", "Bugha")
	sess, ok := s.registry.GetByMessage("m-carry")
	s.Require().True(ok)
	out := s.react(sess.Snapshot(), "1001", EmojiJoin)
	s.ErrorIs(out.Rejection, model.ErrRegistrationClosed)
}

// Scenario

func (s *ControllerSuite) TestFridayCup() {
	g := s.startGame("friday-cup", "👥")
	s.Equal(50, g.Limit)

	const a, b, c = "3001", "3002", "3003"
	s.linkPlayer(b, "B-epic")
	s.linkPlayer(c, "C-epic")
	s.gateway.AddMember(&chat.Member{ID: b, Username: "b"})

	out := s.react(g, a, EmojiJoin)
	s.ErrorIs(out.Rejection, model.ErrNotLinked)

	out = s.react(g, b, EmojiJoin)
	s.Equal(model.TransitionJoined, out.Transition)
	s.Equal(1, s.participantCount("friday-cup"))

	s.Equal(model.TransitionLocked, s.react(g, creatorID, EmojiLock).Transition)

	out = s.react(g, c, EmojiJoin)
	s.ErrorIs(out.Rejection, model.ErrRegistrationClosed)
	s.Equal(1, s.participantCount("friday-cup"))

	_, err := s.controller.EndGame(s.ctx, "friday-cup", b)
	s.Require().NoError(err)

	game, err := s.storage.GetGame(s.ctx, "friday-cup")
	s.Require().NoError(err)
	s.Equal(model.GameStatusFinished, game.Status)
	s.Equal([]string{"B-epic"}, game.WinnerEpicNames)
	_, ok := s.registry.Get("friday-cup")
	s.False(ok)
}
