package dispatch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/scrimbot/internal/chat"
	"github.com/mcoot/scrimbot/internal/dependencies/mocks"
	"github.com/mcoot/scrimbot/internal/model"
	"github.com/mcoot/scrimbot/internal/services/admin"
	"github.com/mcoot/scrimbot/internal/services/auth"
	"github.com/mcoot/scrimbot/internal/services/game"
	"github.com/mcoot/scrimbot/internal/services/identity"
	"github.com/mcoot/scrimbot/internal/services/link"
	"github.com/mcoot/scrimbot/internal/services/member"
	"github.com/mcoot/scrimbot/internal/services/prompt"
	"github.com/mcoot/scrimbot/internal/services/sanction"
	"github.com/mcoot/scrimbot/internal/services/session"
	"github.com/mcoot/scrimbot/internal/storage/memory"
	"github.com/mcoot/scrimbot/internal/testutil"
)

const guildID = "500"

type DispatcherSuite struct {
	suite.Suite
	storage    *memory.Storage
	gateway    *mocks.MockGateway
	registry   *session.Registry
	twitch     *mocks.MockTwitch
	dispatcher *Dispatcher
	ctx        context.Context

	admin   model.Actor
	creator model.Actor
	member  model.Actor
}

func TestDispatcherSuite(t *testing.T) {
	suite.Run(t, new(DispatcherSuite))
}

func (s *DispatcherSuite) SetupTest() {
	s.ctx = context.Background()
	s.storage = memory.New()
	s.gateway = mocks.NewMockGateway("1")
	s.registry = session.NewRegistry()
	s.twitch = mocks.NewMockTwitch()
	s.twitch.Users["ninja"] = &identity.TwitchUser{ID: "42", Login: "ninja", DisplayName: "Ninja"}

	s.admin = model.Actor{ID: "200", Name: "boss", IsAdmin: true}
	s.creator = model.Actor{ID: "300", Name: "host"}
	s.member = model.Actor{ID: "400", Name: "player"}
	s.gateway.AddMember(&chat.Member{ID: "200", Username: "boss", Administrator: true})
	s.gateway.AddMember(&chat.Member{ID: "300", Username: "host"})
	s.gateway.AddMember(&chat.Member{ID: "400", Username: "player"})
	s.gateway.AddMember(&chat.Member{ID: "9", Username: "otherbot", Bot: true})
	s.Require().NoError(s.storage.UpsertPlayer(s.ctx, "300", model.PlayerUpdate{IsCreator: model.Ptr(true)}))

	clock := mocks.NewMockClock(time.Date(2025, 3, 14, 20, 0, 0, 0, time.UTC))
	members := member.NewResolver(s.gateway, guildID)
	waiter := prompt.NewWaiter()
	logger := testutil.NopLogger()

	gameCfg := game.DefaultConfig()
	gameCfg.GuildID = guildID
	gameCfg.LinkPanelChannelID = "chan-link"
	gameCfg.ResultsChannelID = "chan-results"
	gameCfg.ModePromptTimeout = time.Second
	gameCfg.Modes[1].AnnounceChannelID = "chan-duo"

	s.dispatcher = New(
		auth.New(s.storage, logger),
		game.NewController(s.storage, s.registry, waiter, s.gateway, members, clock, gameCfg, logger),
		sanction.New(s.storage, s.gateway, members, clock, mocks.NewMockIDs(), sanction.Config{GuildID: guildID}, logger),
		admin.New(s.storage, s.gateway, members, admin.Config{AdminChannelID: "chan-admin", LinkChannelID: "chan-link"}, logger),
		link.New(s.storage, s.twitch, mocks.NewMockYouTube(), logger),
		waiter,
		logger,
	)
}

func (s *DispatcherSuite) press(actor model.Actor, customID string) *mocks.MockResponder {
	resp := mocks.NewMockResponder()
	s.Require().NoError(s.dispatcher.Dispatch(s.ctx, model.Event{
		Type:      model.EventButtonPressed,
		GuildID:   guildID,
		ChannelID: "chan-admin",
		Actor:     actor,
		Payload:   model.ButtonPayload{CustomID: customID},
	}, resp))
	return resp
}

func (s *DispatcherSuite) submit(actor model.Actor, customID string, values map[string]string) *mocks.MockResponder {
	resp := mocks.NewMockResponder()
	s.Require().NoError(s.dispatcher.Dispatch(s.ctx, model.Event{
		Type:      model.EventModalSubmitted,
		GuildID:   guildID,
		ChannelID: "chan-admin",
		Actor:     actor,
		Payload:   model.ModalPayload{CustomID: customID, Values: values},
	}, resp))
	return resp
}

func (s *DispatcherSuite) react(actor model.Actor, channelID, messageID, emoji string) {
	s.Require().NoError(s.dispatcher.Dispatch(s.ctx, model.Event{
		Type:      model.EventReactionAdded,
		GuildID:   guildID,
		ChannelID: channelID,
		MessageID: messageID,
		Actor:     actor,
		Payload:   model.ReactionPayload{Emoji: emoji},
	}, nil))
}

// Buttons

func (s *DispatcherSuite) TestCreatorButtonOpensModal() {
	resp := s.press(s.creator, string(auth.Punish))
	s.Require().Len(resp.Modals, 1)
	s.Equal(admin.ModalID(auth.Punish), resp.Modals[0].CustomID)
	s.Equal("Sanctionner un Membre", resp.Modals[0].Title)
}

func (s *DispatcherSuite) TestMemberDeniedCreatorButton() {
	resp := s.press(s.member, string(auth.StartGame))
	s.Empty(resp.Modals)
	s.Equal("❌ Seuls les utilisateurs avec la permission 'Créateur de partie' peuvent utiliser ce bouton.", resp.LastReply())
}

func (s *DispatcherSuite) TestCreatorDeniedAdminButton() {
	resp := s.press(s.creator, string(auth.AuthCreator))
	s.Empty(resp.Modals)
	s.Equal("❌ Seuls les utilisateurs avec la permission 'Administrateur du serveur' peuvent utiliser ce bouton.", resp.LastReply())
}

func (s *DispatcherSuite) TestRecreatePanelButton() {
	resp := s.press(s.admin, string(auth.RecreatePanel))
	s.True(resp.Deferred)
	s.Equal("✅ Panneau recréé.", resp.LastReply())
	s.Len(s.gateway.SentTo("chan-admin"), 1)
}

func (s *DispatcherSuite) TestLinkButtonOpensPrefilledModal() {
	s.Require().NoError(s.storage.UpsertPlayer(s.ctx, "400", model.PlayerUpdate{EpicName: model.Ptr("Bugha")}))

	resp := s.press(s.member, link.ButtonID)
	s.Require().Len(resp.Modals, 1)
	s.Equal(link.ModalID, resp.Modals[0].CustomID)
	s.Equal("Bugha", resp.Modals[0].Inputs[0].Value)
}

func (s *DispatcherSuite) TestUnknownButtonIgnored() {
	resp := s.press(s.admin, "other:button")
	s.Empty(resp.Modals)
	s.Empty(resp.Replies)
}

// Link form

func (s *DispatcherSuite) TestLinkFormSuccess() {
	resp := s.submit(s.member, link.ModalID, map[string]string{
		link.InputEpic:   "Bugha",
		link.InputTwitch: "ninja",
	})
	s.True(resp.Deferred)
	s.Require().Len(resp.Embeds, 1)
	s.Equal("✅ Comptes Mis à Jour", resp.Embeds[0].Title)

	p, err := s.storage.GetPlayer(s.ctx, "400")
	s.Require().NoError(err)
	s.Equal("Bugha", p.EpicName)
	s.Equal("player", p.DiscordNameAtLink)
}

func (s *DispatcherSuite) TestLinkFormRejections() {
	resp := s.submit(s.member, link.ModalID, map[string]string{link.InputEpic: " "})
	s.Equal("⚠️ Le pseudo Epic Games est requis.", resp.LastReply())

	resp = s.submit(s.member, link.ModalID, map[string]string{link.InputEpic: "Bugha", link.InputTwitch: " ghost "})
	s.Equal("❌ Pseudo Twitch 'ghost' introuvable.", resp.LastReply())
}

// Admin forms

func (s *DispatcherSuite) TestForgedModalDenied() {
	resp := s.submit(s.member, admin.ModalID(auth.Punish), map[string]string{admin.InputMember: "300"})
	s.False(resp.Deferred)
	s.Contains(resp.LastReply(), "Créateur de partie")
}

func (s *DispatcherSuite) TestPunishAndLift() {
	resp := s.submit(s.creator, admin.ModalID(auth.Punish), map[string]string{admin.InputMember: "<@400>"})
	s.Equal("🔨 <@400> a été sanctionné pour 10 minutes.", resp.LastReply())

	resp = s.submit(s.creator, admin.ModalID(auth.Punish), map[string]string{admin.InputMember: "400"})
	s.Equal("ℹ️ <@400> a déjà une sanction active.", resp.LastReply())

	resp = s.submit(s.creator, admin.ModalID(auth.Unpunish), map[string]string{admin.InputMember: "400"})
	s.Equal("🕊️ La sanction de <@400> a été levée.", resp.LastReply())

	resp = s.submit(s.creator, admin.ModalID(auth.Unpunish), map[string]string{admin.InputMember: "400"})
	s.Equal("ℹ️ <@400> n'a pas de sanction active.", resp.LastReply())
}

func (s *DispatcherSuite) TestPunishRejections() {
	resp := s.submit(s.creator, admin.ModalID(auth.Punish), map[string]string{admin.InputMember: "nobody#0000"})
	s.Equal("❌ Membre introuvable.", resp.LastReply())

	resp = s.submit(s.creator, admin.ModalID(auth.Punish), map[string]string{admin.InputMember: "300"})
	s.Equal("❌ Vous ne pouvez pas vous sanctionner vous-même.", resp.LastReply())

	resp = s.submit(s.creator, admin.ModalID(auth.Punish), map[string]string{admin.InputMember: "200"})
	s.Equal("❌ Vous ne pouvez pas sanctionner un administrateur.", resp.LastReply())
}

func (s *DispatcherSuite) TestGrantAndRevokeCreator() {
	resp := s.submit(s.admin, admin.ModalID(auth.AuthCreator), map[string]string{admin.InputMember: "9"})
	s.Equal("❌ Membre invalide ou bot.", resp.LastReply())

	resp = s.submit(s.admin, admin.ModalID(auth.AuthCreator), map[string]string{admin.InputMember: "player"})
	s.Equal("✅ <@400> est maintenant un créateur de parties.", resp.LastReply())
	s.Len(s.press(s.member, string(auth.StartGame)).Modals, 1)

	resp = s.submit(s.admin, admin.ModalID(auth.RevokeCreator), map[string]string{admin.InputMember: "400"})
	s.Equal("➖ <@400> n'est plus un créateur de parties.", resp.LastReply())
	s.Empty(s.press(s.member, string(auth.StartGame)).Modals)
}

func (s *DispatcherSuite) TestStartGameRejections() {
	resp := s.submit(s.creator, admin.ModalID(auth.StartGame), map[string]string{admin.InputGameCode: "no spaces"})
	s.Equal("⚠️ Le nom de la partie est invalide.", resp.LastReply())

	resp = s.submit(s.creator, admin.ModalID(auth.EndGame), map[string]string{
		admin.InputGameCode: " Ghost ",
		admin.InputWinner:   "400",
	})
	s.Equal("❌ La partie `ghost` n'est pas active.", resp.LastReply())
}

// Full flow through events

func (s *DispatcherSuite) TestGameLifecycle() {
	s.gateway.OnReactionAdded = func(r mocks.Reaction) {
		if r.Emoji == "👥" {
			s.react(s.creator, r.ChannelID, r.MessageID, r.Emoji)
		}
	}

	resp := s.submit(s.creator, admin.ModalID(auth.StartGame), map[string]string{admin.InputGameCode: "Cup"})
	s.True(resp.Deferred)
	s.Equal("⏳ Veuillez choisir un mode pour la partie `cup` dans le message ci-dessus.", resp.LastReply())

	sess, ok := s.registry.Get("cup")
	s.Require().True(ok)
	g := sess.Snapshot()
	s.Equal(model.ModeDuo, g.Mode)

	s.Require().NoError(s.storage.UpsertPlayer(s.ctx, "400", model.PlayerUpdate{EpicName: model.Ptr("Bugha")}))
	s.react(s.member, g.AnnounceChannelID, g.AnnounceMessageID, game.EmojiJoin)
	count, err := s.storage.CountGameParticipants(s.ctx, "cup")
	s.Require().NoError(err)
	s.Equal(1, count)

	resp = s.submit(s.creator, admin.ModalID(auth.StartGame), map[string]string{admin.InputGameCode: "CUP"})
	s.Equal("❌ Une partie avec le code `cup` est déjà active.", resp.LastReply())

	resp = s.submit(s.creator, admin.ModalID(auth.EndGame), map[string]string{
		admin.InputGameCode: "cup",
		admin.InputWinner:   "<@400>",
	})
	s.Equal("✅ La partie `cup` est terminée et le résultat a été annoncé.", resp.LastReply())
	s.Zero(s.registry.Len())

	resp = s.submit(s.creator, admin.ModalID(auth.StartGame), map[string]string{admin.InputGameCode: "cup"})
	s.Equal("❌ Le code `cup` a déjà été utilisé pour une partie.", resp.LastReply())
}

func (s *DispatcherSuite) TestBotReactionsIgnored() {
	s.NoError(s.dispatcher.Dispatch(s.ctx, model.Event{
		GuildID:   guildID,
		MessageID: "anything",
		Actor:     model.Actor{ID: "9", IsBot: true},
		Payload:   model.ReactionPayload{Emoji: game.EmojiJoin},
	}, nil))
}
