package e2e_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/scrimbot/internal/api"
	"github.com/mcoot/scrimbot/internal/api/response"
	"github.com/mcoot/scrimbot/internal/cli"
	"github.com/mcoot/scrimbot/internal/dependencies/mocks"
	"github.com/mcoot/scrimbot/internal/model"
	"github.com/mcoot/scrimbot/internal/storage/memory"
	"github.com/mcoot/scrimbot/internal/testutil"
)

// CLISuite runs scrimctl in-process against a real API server
type CLISuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	server  *httptest.Server
	ctx     context.Context
}

func TestCLISuite(t *testing.T) {
	suite.Run(t, new(CLISuite))
}

func (s *CLISuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2025, 3, 14, 20, 0, 0, 0, time.UTC))
	s.ctx = context.Background()
	s.server = httptest.NewServer(api.NewRouter(api.RouterConfig{
		Logger:      testutil.NopLogger(),
		Storage:     s.storage,
		StorageType: "memory",
		Clock:       s.clock,
	}))

	r := s.Require()
	r.NoError(s.storage.UpsertPlayer(s.ctx, "100", model.PlayerUpdate{EpicName: model.Ptr("Bugha")}))
	r.NoError(s.storage.CreateGame(s.ctx, &model.Game{
		Code: "fncup", Mode: model.ModeTrio, CreatorID: "100", Status: model.GameStatusPending,
		Limit: 33, CreatedAt: s.clock.Now(), UpdatedAt: s.clock.Now(),
	}))
	r.NoError(s.storage.AddParticipant(s.ctx, "fncup", "100"))
}

func (s *CLISuite) TearDownTest() {
	s.server.Close()
}

func (s *CLISuite) run(args ...string) (string, error) {
	var stdout, stderr bytes.Buffer
	cmd := cli.NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--server", s.server.URL}, args...))
	err := cmd.ExecuteContext(s.ctx)
	return stdout.String(), err
}

func (s *CLISuite) TestHealth() {
	out, err := s.run("health")
	s.Require().NoError(err)
	s.Contains(out, "Status: ok")
}

func (s *CLISuite) TestGamesListText() {
	out, err := s.run("games", "list")
	s.Require().NoError(err)
	s.Contains(out, "CODE")
	s.Contains(out, "fncup")
	s.Contains(out, "TRIO")
	s.Contains(out, "pending")
}

func (s *CLISuite) TestGamesGetJSON() {
	out, err := s.run("--output", "json", "games", "get", "fncup")
	s.Require().NoError(err)

	var g response.Game
	s.Require().NoError(json.Unmarshal([]byte(out), &g))
	s.Equal("fncup", g.Code)
	s.Equal(33, g.Limit)
}

func (s *CLISuite) TestGamesGetUnknown() {
	_, err := s.run("games", "get", "nope")
	s.Require().Error(err)

	var apiErr *cli.Error
	s.Require().ErrorAs(err, &apiErr)
	s.Equal(404, apiErr.Status)
	s.Equal("GAME_NOT_FOUND", apiErr.Code)
}

func (s *CLISuite) TestGameParticipants() {
	out, err := s.run("games", "participants", "fncup")
	s.Require().NoError(err)
	s.Contains(out, "Bugha")
}

func (s *CLISuite) TestPlayersCommands() {
	out, err := s.run("players", "list")
	s.Require().NoError(err)
	s.Contains(out, "Bugha")

	out, err = s.run("players", "get", "100")
	s.Require().NoError(err)
	s.Contains(out, "Player: Bugha (100)")

	out, err = s.run("players", "participations", "100")
	s.Require().NoError(err)
	s.Contains(out, "fncup")
}

func (s *CLISuite) TestPlayerSanction() {
	out, err := s.run("players", "sanction", "100")
	s.Require().NoError(err)
	s.Contains(out, "No active sanction")

	s.Require().NoError(s.storage.AddSanction(s.ctx, &model.Sanction{
		ID: "sanction-1", PlayerID: "100", Type: model.SanctionTypeManual,
		EndTime: s.clock.Now().Add(10 * time.Minute),
		Roles:   []model.RoleSnapshot{{ID: "r-vip", Name: "VIP"}},
	}))

	out, err = s.run("players", "sanction", "100")
	s.Require().NoError(err)
	s.Contains(out, "Sanction: sanction-1")
	s.Contains(out, "Roles removed: VIP")
}

func (s *CLISuite) TestUnknownPlayer() {
	_, err := s.run("players", "get", "999")
	var apiErr *cli.Error
	s.Require().ErrorAs(err, &apiErr)
	s.Equal("PLAYER_NOT_FOUND", apiErr.Code)
}

func (s *CLISuite) TestRejectsUnknownOutputFormat() {
	_, err := s.run("--output", "yaml", "health")
	s.Error(err)
}
