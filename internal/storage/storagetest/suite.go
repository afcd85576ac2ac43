// Package storagetest holds the behaviour every storage backend must share.
package storagetest

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/scrimbot/internal/model"
	"github.com/mcoot/scrimbot/internal/storage"
)

// Suite runs the storage contract against a backend.
// Backends embed it and set Storage in their SetupTest.
type Suite struct {
	suite.Suite
	Storage storage.Storage
	Ctx     context.Context
}

var base = time.Date(2025, 3, 14, 20, 0, 0, 0, time.UTC)

func (s *Suite) linkPlayer(id model.PlayerID, epic string) {
	err := s.Storage.UpsertPlayer(s.Ctx, id, model.PlayerUpdate{EpicName: model.Ptr(epic)})
	s.Require().NoError(err)
}

func (s *Suite) createGame(code model.GameCode, created time.Time) {
	err := s.Storage.CreateGame(s.Ctx, &model.Game{
		Code:              code,
		Mode:              model.ModeSolo,
		CreatorID:         "creator",
		AnnounceMessageID: "msg-" + string(code),
		AnnounceChannelID: "chan-solo",
		Status:            model.GameStatusPending,
		Limit:             100,
		CreatedAt:         created,
		UpdatedAt:         created,
	})
	s.Require().NoError(err)
}

// Player tests

func (s *Suite) TestGetPlayerNotFound() {
	_, err := s.Storage.GetPlayer(s.Ctx, "nobody")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *Suite) TestUpsertCreatesPlayer() {
	err := s.Storage.UpsertPlayer(s.Ctx, "111", model.PlayerUpdate{
		EpicName:       model.Ptr("Ninja"),
		TwitchUsername: model.Ptr("ninja"),
	})
	s.Require().NoError(err)

	player, err := s.Storage.GetPlayer(s.Ctx, "111")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("111"), player.ID)
	s.Equal("Ninja", player.EpicName)
	s.Equal("ninja", player.TwitchUsername)
	s.False(player.IsCreator)
	s.Zero(player.GameCount)
	s.Zero(player.TotalWins)
	s.False(player.CreatedAt.IsZero())
}

func (s *Suite) TestUpsertKeepsUnsuppliedColumns() {
	s.Require().NoError(s.Storage.UpsertPlayer(s.Ctx, "111", model.PlayerUpdate{
		EpicName:   model.Ptr("Ninja"),
		YouTubeURL: model.Ptr("https://youtube.com/@ninja"),
	}))
	s.Require().NoError(s.Storage.IncrementPlayerStats(s.Ctx, "111", 3, 1))

	s.Require().NoError(s.Storage.UpsertPlayer(s.Ctx, "111", model.PlayerUpdate{
		IsCreator: model.Ptr(true),
	}))

	player, err := s.Storage.GetPlayer(s.Ctx, "111")
	s.Require().NoError(err)
	s.True(player.IsCreator)
	s.Equal("Ninja", player.EpicName)
	s.Equal("https://youtube.com/@ninja", player.YouTubeURL)
	s.Equal(3, player.GameCount)
	s.Equal(1, player.TotalWins)
}

func (s *Suite) TestUpsertCreatorFlagOnUnlinkedPlayer() {
	s.Require().NoError(s.Storage.UpsertPlayer(s.Ctx, "222", model.PlayerUpdate{
		IsCreator: model.Ptr(true),
	}))

	player, err := s.Storage.GetPlayer(s.Ctx, "222")
	s.Require().NoError(err)
	s.True(player.IsCreator)
	s.False(player.IsLinked())
}

func (s *Suite) TestIncrementStatsUnknownPlayer() {
	err := s.Storage.IncrementPlayerStats(s.Ctx, "nobody", 1, 0)
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *Suite) TestListPlayers() {
	s.linkPlayer("1", "A")
	s.linkPlayer("2", "B")

	players, err := s.Storage.ListPlayers(s.Ctx)
	s.Require().NoError(err)
	s.Len(players, 2)
}

// Game tests

func (s *Suite) TestCreateAndGetGame() {
	s.createGame("cup1", base)

	game, err := s.Storage.GetGame(s.Ctx, "cup1")
	s.Require().NoError(err)
	s.Equal(model.GameCode("cup1"), game.Code)
	s.Equal(model.ModeSolo, game.Mode)
	s.Equal(model.PlayerID("creator"), game.CreatorID)
	s.Equal("msg-cup1", game.AnnounceMessageID)
	s.Equal(model.GameStatusPending, game.Status)
	s.Equal(100, game.Limit)
	s.Nil(game.EndTime)
	s.Empty(game.WinnerEpicNames)
}

func (s *Suite) TestCreateGameDuplicate() {
	s.createGame("cup1", base)
	err := s.Storage.CreateGame(s.Ctx, &model.Game{Code: "cup1", Mode: model.ModeDuo, Status: model.GameStatusPending})
	s.ErrorIs(err, model.ErrGameExists)
}

func (s *Suite) TestGetGameNotFound() {
	_, err := s.Storage.GetGame(s.Ctx, "missing")
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *Suite) TestGameExists() {
	s.createGame("cup1", base)

	exists, err := s.Storage.GameExists(s.Ctx, "cup1")
	s.Require().NoError(err)
	s.True(exists)

	exists, err = s.Storage.GameExists(s.Ctx, "cup2")
	s.Require().NoError(err)
	s.False(exists)
}

func (s *Suite) TestListGamesNewestFirst() {
	s.createGame("old", base)
	s.createGame("new", base.Add(time.Hour))

	games, err := s.Storage.ListGames(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(games, 2)
	s.Equal(model.GameCode("new"), games[0].Code)
	s.Equal(model.GameCode("old"), games[1].Code)
}

func (s *Suite) TestListActiveGames() {
	s.createGame("pending", base)
	s.createGame("locked", base.Add(time.Minute))
	s.createGame("done", base.Add(2*time.Minute))
	s.createGame("gone", base.Add(3*time.Minute))
	s.Require().NoError(s.Storage.UpdateGameStatus(s.Ctx, "locked", model.GameStatusLocked, nil))
	s.Require().NoError(s.Storage.UpdateGameStatus(s.Ctx, "done", model.GameStatusFinished, nil))
	s.Require().NoError(s.Storage.UpdateGameStatus(s.Ctx, "gone", model.GameStatusCancelled, nil))

	games, err := s.Storage.ListActiveGames(s.Ctx)
	s.Require().NoError(err)
	codes := make([]model.GameCode, len(games))
	for i, g := range games {
		codes[i] = g.Code
	}
	s.ElementsMatch([]model.GameCode{"pending", "locked"}, codes)
}

func (s *Suite) TestFinishGameStampsEndTimeAndWinners() {
	s.createGame("cup1", base)

	err := s.Storage.UpdateGameStatus(s.Ctx, "cup1", model.GameStatusFinished, []string{"Ninja"})
	s.Require().NoError(err)

	game, err := s.Storage.GetGame(s.Ctx, "cup1")
	s.Require().NoError(err)
	s.Equal(model.GameStatusFinished, game.Status)
	s.Equal([]string{"Ninja"}, game.WinnerEpicNames)
	s.Require().NotNil(game.EndTime)
}

func (s *Suite) TestUpdateStatusUnknownGame() {
	err := s.Storage.UpdateGameStatus(s.Ctx, "missing", model.GameStatusLocked, nil)
	s.ErrorIs(err, model.ErrGameNotFound)
}

// Participant tests

func (s *Suite) TestAddParticipantIsIdempotent() {
	s.createGame("cup1", base)
	s.linkPlayer("111", "Ninja")

	s.Require().NoError(s.Storage.AddParticipant(s.Ctx, "cup1", "111"))
	s.Require().NoError(s.Storage.AddParticipant(s.Ctx, "cup1", "111"))

	count, err := s.Storage.CountGameParticipants(s.Ctx, "cup1")
	s.Require().NoError(err)
	s.Equal(1, count)

	ok, err := s.Storage.IsParticipant(s.Ctx, "cup1", "111")
	s.Require().NoError(err)
	s.True(ok)

	ok, err = s.Storage.IsParticipant(s.Ctx, "cup1", "222")
	s.Require().NoError(err)
	s.False(ok)
}

func (s *Suite) TestAddParticipantUnknownGame() {
	s.linkPlayer("111", "Ninja")
	err := s.Storage.AddParticipant(s.Ctx, "missing", "111")
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *Suite) TestAddParticipantUnknownPlayer() {
	s.createGame("cup1", base)
	err := s.Storage.AddParticipant(s.Ctx, "cup1", "nobody")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *Suite) TestListGameParticipants() {
	s.createGame("cup1", base)
	s.linkPlayer("111", "Ninja")
	s.linkPlayer("222", "Bugha")
	s.Require().NoError(s.Storage.AddParticipant(s.Ctx, "cup1", "111"))
	s.Require().NoError(s.Storage.AddParticipant(s.Ctx, "cup1", "222"))
	s.Require().NoError(s.Storage.MarkWinner(s.Ctx, "cup1", "222"))

	participants, err := s.Storage.ListGameParticipants(s.Ctx, "cup1")
	s.Require().NoError(err)
	s.ElementsMatch([]model.Participant{
		{PlayerID: "111", EpicName: "Ninja", HasWon: false},
		{PlayerID: "222", EpicName: "Bugha", HasWon: true},
	}, participants)
}

func (s *Suite) TestListGameParticipantsUnknownGame() {
	participants, err := s.Storage.ListGameParticipants(s.Ctx, "missing")
	s.Require().NoError(err)
	s.Empty(participants)
}

func (s *Suite) TestListPlayerParticipations() {
	s.createGame("old", base)
	s.createGame("new", base.Add(time.Hour))
	s.linkPlayer("111", "Ninja")
	s.Require().NoError(s.Storage.AddParticipant(s.Ctx, "old", "111"))
	s.Require().NoError(s.Storage.AddParticipant(s.Ctx, "new", "111"))
	s.Require().NoError(s.Storage.MarkWinner(s.Ctx, "old", "111"))

	parts, err := s.Storage.ListPlayerParticipations(s.Ctx, "111")
	s.Require().NoError(err)
	s.Require().Len(parts, 2)
	s.Equal(model.GameCode("new"), parts[0].GameCode)
	s.False(parts[0].HasWon)
	s.Equal(model.GameCode("old"), parts[1].GameCode)
	s.True(parts[1].HasWon)
	s.Equal(model.ModeSolo, parts[1].Mode)
}

func (s *Suite) TestListPlayerParticipationsNone() {
	parts, err := s.Storage.ListPlayerParticipations(s.Ctx, "nobody")
	s.Require().NoError(err)
	s.NotNil(parts)
	s.Empty(parts)
}

func (s *Suite) TestMarkWinnerNotParticipant() {
	s.createGame("cup1", base)
	s.linkPlayer("111", "Ninja")
	err := s.Storage.MarkWinner(s.Ctx, "cup1", "111")
	s.ErrorIs(err, model.ErrParticipantNotFound)
}

// Sanction tests

func (s *Suite) sanction(id model.SanctionID, player model.PlayerID, end time.Time) *model.Sanction {
	return &model.Sanction{
		ID:        id,
		PlayerID:  player,
		Type:      model.SanctionTypeManual,
		EndTime:   end,
		Roles:     []model.RoleSnapshot{{ID: "r1", Name: "Joueur"}, {ID: "r2", Name: "VIP"}},
		CreatedAt: end.Add(-10 * time.Minute),
	}
}

func (s *Suite) TestActiveSanction() {
	s.Require().NoError(s.Storage.AddSanction(s.Ctx, s.sanction("s1", "111", base.Add(10*time.Minute))))

	active, err := s.Storage.GetActiveSanction(s.Ctx, "111", base)
	s.Require().NoError(err)
	s.Equal(model.SanctionID("s1"), active.ID)
	s.Equal(model.SanctionTypeManual, active.Type)
	s.Equal([]string{"r1", "r2"}, active.RoleIDs())
	s.Equal("VIP", active.Roles[1].Name)
	s.True(active.EndTime.Equal(base.Add(10 * time.Minute)))
}

func (s *Suite) TestActiveSanctionExpired() {
	s.Require().NoError(s.Storage.AddSanction(s.Ctx, s.sanction("s1", "111", base.Add(10*time.Minute))))

	_, err := s.Storage.GetActiveSanction(s.Ctx, "111", base.Add(11*time.Minute))
	s.ErrorIs(err, model.ErrSanctionNotFound)
}

func (s *Suite) TestListExpiredSanctions() {
	s.Require().NoError(s.Storage.AddSanction(s.Ctx, s.sanction("early", "111", base.Add(time.Minute))))
	s.Require().NoError(s.Storage.AddSanction(s.Ctx, s.sanction("late", "222", base.Add(time.Hour))))

	expired, err := s.Storage.ListExpiredSanctions(s.Ctx, base.Add(5*time.Minute))
	s.Require().NoError(err)
	s.Require().Len(expired, 1)
	s.Equal(model.SanctionID("early"), expired[0].ID)
	s.Len(expired[0].Roles, 2)
}

func (s *Suite) TestRemoveSanction() {
	s.Require().NoError(s.Storage.AddSanction(s.Ctx, s.sanction("s1", "111", base.Add(10*time.Minute))))
	s.Require().NoError(s.Storage.RemoveSanction(s.Ctx, "s1"))

	_, err := s.Storage.GetActiveSanction(s.Ctx, "111", base)
	s.ErrorIs(err, model.ErrSanctionNotFound)

	// Removing twice is harmless
	s.NoError(s.Storage.RemoveSanction(s.Ctx, "s1"))
}
