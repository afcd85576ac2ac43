package admin

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/scrimbot/internal/chat"
	"github.com/mcoot/scrimbot/internal/dependencies/mocks"
	"github.com/mcoot/scrimbot/internal/model"
	"github.com/mcoot/scrimbot/internal/services/auth"
	"github.com/mcoot/scrimbot/internal/services/link"
	"github.com/mcoot/scrimbot/internal/services/member"
	"github.com/mcoot/scrimbot/internal/storage/memory"
	"github.com/mcoot/scrimbot/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	gateway *mocks.MockGateway
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.gateway = mocks.NewMockGateway("1")
	s.gateway.AddMember(&chat.Member{ID: "100", Username: "alice"})
	s.gateway.AddMember(&chat.Member{ID: "2", Username: "otherbot", Bot: true})
	s.service = New(s.storage, s.gateway, member.NewResolver(s.gateway, "guild"),
		Config{AdminChannelID: "chan-admin", LinkChannelID: "chan-link"}, testutil.NopLogger())
	s.ctx = context.Background()
}

// Panel tests

func (s *ServiceSuite) TestRecreatePanelsPostsBoth() {
	s.Require().NoError(s.service.RecreatePanels(s.ctx))

	admin := s.gateway.SentTo("chan-admin")
	s.Require().Len(admin, 1)
	s.Equal("🛠️ Panneau Administrateur", admin[0].Embed.Title)
	s.Len(admin[0].Buttons, 7)

	linkPanel := s.gateway.SentTo("chan-link")
	s.Require().Len(linkPanel, 1)
	s.Equal(link.ButtonID, linkPanel[0].Buttons[0].CustomID)

	s.Equal(1, s.gateway.Purges("chan-admin"))
	s.Equal(1, s.gateway.Purges("chan-link"))
}

func (s *ServiceSuite) TestRecreateReplacesOldPanel() {
	s.Require().NoError(s.service.RecreateAdminPanel(s.ctx))
	first := s.gateway.SentTo("chan-admin")[0].ID

	s.Require().NoError(s.service.RecreateAdminPanel(s.ctx))
	s.Contains(s.gateway.Deleted(), first)
	s.Len(s.gateway.SentTo("chan-admin"), 2)
}

func (s *ServiceSuite) TestRecreateSkipsUnconfiguredChannel() {
	service := New(s.storage, s.gateway, member.NewResolver(s.gateway, "guild"), DefaultConfig(), testutil.NopLogger())

	s.NoError(service.RecreatePanels(s.ctx))
	s.Empty(s.gateway.Sent())
}

func (s *ServiceSuite) TestRecreateReportsPurgeFailure() {
	s.gateway.Fail("PurgeOwnMessages", errors.New("missing access"))

	s.Error(s.service.RecreatePanels(s.ctx))
	s.Empty(s.gateway.Sent())
}

// Creator flag tests

func (s *ServiceSuite) TestGrantCreator() {
	target, err := s.service.GrantCreator(s.ctx, "<@!100>")
	s.Require().NoError(err)
	s.Equal("100", target.ID)

	p, err := s.storage.GetPlayer(s.ctx, "100")
	s.Require().NoError(err)
	s.True(p.IsCreator)
	s.False(p.IsLinked())
}

func (s *ServiceSuite) TestGrantCreatorRefusesBots() {
	_, err := s.service.GrantCreator(s.ctx, "2")
	s.ErrorIs(err, model.ErrBotAccount)

	_, err = s.storage.GetPlayer(s.ctx, "2")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *ServiceSuite) TestGrantCreatorUnknownMember() {
	_, err := s.service.GrantCreator(s.ctx, "nobody")
	s.ErrorIs(err, model.ErrMemberNotFound)
}

func (s *ServiceSuite) TestRevokeCreatorKeepsLink() {
	s.Require().NoError(s.storage.UpsertPlayer(s.ctx, "100", model.PlayerUpdate{
		EpicName:  model.Ptr("Alice"),
		IsCreator: model.Ptr(true),
	}))

	_, err := s.service.RevokeCreator(s.ctx, "alice")
	s.Require().NoError(err)

	p, err := s.storage.GetPlayer(s.ctx, "100")
	s.Require().NoError(err)
	s.False(p.IsCreator)
	s.Equal("Alice", p.EpicName)
}

// Modal tests

func TestModalForEveryFormCapability(t *testing.T) {
	for _, c := range auth.Capabilities() {
		modal, ok := Modal(c)
		if c == auth.RecreatePanel {
			assert.False(t, ok)
			continue
		}
		assert.True(t, ok, c)
		assert.NotEmpty(t, modal.Title, c)
		assert.NotEmpty(t, modal.Inputs, c)

		back, ok := CapabilityOf(modal.CustomID)
		assert.True(t, ok)
		assert.Equal(t, c, back)
	}
}

func TestEndGameModal(t *testing.T) {
	modal, ok := Modal(auth.EndGame)
	assert.True(t, ok)
	assert.Equal(t, "Terminer Partie et Désigner Gagnant", modal.Title)
	assert.Equal(t, InputGameCode, modal.Inputs[0].CustomID)
	assert.Equal(t, InputWinner, modal.Inputs[1].CustomID)
}

func TestCapabilityOfUnknownModal(t *testing.T) {
	_, ok := CapabilityOf(link.ModalID)
	assert.False(t, ok)
	_, ok = CapabilityOf("admin:recreate_panel:modal")
	assert.False(t, ok)
	_, ok = CapabilityOf("admin:start_game")
	assert.False(t, ok)
}
