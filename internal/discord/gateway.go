package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/mcoot/scrimbot/internal/chat"
	"github.com/mcoot/scrimbot/internal/model"
)

// Gateway implements chat.Gateway over a discordgo session
type Gateway struct {
	session *discordgo.Session
	logger  *slog.Logger
}

// Ensure Gateway implements chat.Gateway
var _ chat.Gateway = (*Gateway)(nil)

// NewGateway creates a Gateway on an existing session
func NewGateway(session *discordgo.Session, logger *slog.Logger) *Gateway {
	return &Gateway{
		session: session,
		logger:  logger.With(slog.String("component", "discord")),
	}
}

func (g *Gateway) BotUserID() string {
	if g.session.State == nil || g.session.State.User == nil {
		return ""
	}
	return g.session.State.User.ID
}

func (g *Gateway) Send(ctx context.Context, channelID string, msg chat.OutboundMessage) (*chat.Message, error) {
	send := &discordgo.MessageSend{
		Content:    msg.Content,
		Components: toComponents(msg.Buttons),
	}
	if msg.Embed != nil {
		send.Embeds = []*discordgo.MessageEmbed{toEmbed(msg.Embed)}
	}

	m, err := g.session.ChannelMessageSendComplex(channelID, send, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("send message to %s: %w", channelID, err)
	}
	if msg.DeleteAfter > 0 {
		g.deleteAfter(channelID, m.ID, msg.DeleteAfter)
	}
	return &chat.Message{ID: m.ID, ChannelID: m.ChannelID}, nil
}

// deleteAfter removes a message once d has elapsed. A message already
// deleted by someone else is not an error.
func (g *Gateway) deleteAfter(channelID, messageID string, d time.Duration) {
	time.AfterFunc(d, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := g.DeleteMessage(ctx, channelID, messageID); err != nil && !isNotFound(err) {
			g.logger.Warn("failed to delete expired message",
				slog.String("message_id", messageID),
				slog.String("error", err.Error()),
			)
		}
	})
}

func (g *Gateway) EditEmbed(ctx context.Context, channelID, messageID string, embed chat.Embed) error {
	_, err := g.session.ChannelMessageEditEmbed(channelID, messageID, toEmbed(&embed), discordgo.WithContext(ctx))
	return err
}

func (g *Gateway) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	return g.session.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx))
}

func (g *Gateway) PurgeOwnMessages(ctx context.Context, channelID string, limit int) error {
	msgs, err := g.session.ChannelMessages(channelID, limit, "", "", "", discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("list messages of %s: %w", channelID, err)
	}
	botID := g.BotUserID()
	var errs []error
	for _, m := range msgs {
		if m.Author == nil || m.Author.ID != botID {
			continue
		}
		if err := g.session.ChannelMessageDelete(channelID, m.ID, discordgo.WithContext(ctx)); err != nil && !isNotFound(err) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (g *Gateway) SendDirect(ctx context.Context, userID, content string) error {
	ch, err := g.session.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("open dm with %s: %w", userID, err)
	}
	_, err = g.session.ChannelMessageSend(ch.ID, content, discordgo.WithContext(ctx))
	return err
}

func (g *Gateway) AddReaction(ctx context.Context, channelID, messageID, emoji string) error {
	return g.session.MessageReactionAdd(channelID, messageID, emoji, discordgo.WithContext(ctx))
}

func (g *Gateway) RemoveReaction(ctx context.Context, channelID, messageID, emoji, userID string) error {
	return g.session.MessageReactionRemove(channelID, messageID, emoji, userID, discordgo.WithContext(ctx))
}

func (g *Gateway) Member(ctx context.Context, guildID, userID string) (*chat.Member, error) {
	m, err := g.session.GuildMember(guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		if isNotFound(err) {
			return nil, model.ErrMemberNotFound
		}
		return nil, err
	}
	admin, err := g.isAdmin(ctx, guildID, m)
	if err != nil {
		return nil, err
	}
	return toMember(m, admin), nil
}

func (g *Gateway) FindMemberByTag(ctx context.Context, guildID, username, discriminator string) (*chat.Member, error) {
	candidates, err := g.session.GuildMembersSearch(guildID, username, 10, discordgo.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	for _, m := range candidates {
		if m.User == nil || !strings.EqualFold(m.User.Username, username) {
			continue
		}
		// Migrated accounts report "0" as their discriminator
		if discriminator != "" && discriminator != m.User.Discriminator {
			continue
		}
		admin, err := g.isAdmin(ctx, guildID, m)
		if err != nil {
			return nil, err
		}
		return toMember(m, admin), nil
	}
	return nil, model.ErrMemberNotFound
}

func (g *Gateway) Roles(ctx context.Context, guildID string) ([]chat.Role, error) {
	roles, err := g.session.GuildRoles(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	out := make([]chat.Role, len(roles))
	for i, r := range roles {
		out[i] = toRole(r)
	}
	return out, nil
}

func (g *Gateway) BotTopRolePosition(ctx context.Context, guildID string) (int, error) {
	me, err := g.session.GuildMember(guildID, g.BotUserID(), discordgo.WithContext(ctx))
	if err != nil {
		return 0, err
	}
	roles, err := g.session.GuildRoles(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return 0, err
	}
	return topPosition(me.Roles, roles), nil
}

func (g *Gateway) AddRoles(ctx context.Context, guildID, userID string, roleIDs []string) error {
	var errs []error
	for _, id := range roleIDs {
		errs = append(errs, g.session.GuildMemberRoleAdd(guildID, userID, id, discordgo.WithContext(ctx)))
	}
	return errors.Join(errs...)
}

func (g *Gateway) RemoveRoles(ctx context.Context, guildID, userID string, roleIDs []string) error {
	var errs []error
	for _, id := range roleIDs {
		errs = append(errs, g.session.GuildMemberRoleRemove(guildID, userID, id, discordgo.WithContext(ctx)))
	}
	return errors.Join(errs...)
}

// isAdmin reports whether the member owns the guild or holds a role with
// the administrator permission
func (g *Gateway) isAdmin(ctx context.Context, guildID string, m *discordgo.Member) (bool, error) {
	guild, err := g.session.State.Guild(guildID)
	if err != nil {
		guild, err = g.session.Guild(guildID, discordgo.WithContext(ctx))
		if err != nil {
			return false, err
		}
	}
	if m.User != nil && guild.OwnerID == m.User.ID {
		return true, nil
	}
	roles := guild.Roles
	if len(roles) == 0 {
		if roles, err = g.session.GuildRoles(guildID, discordgo.WithContext(ctx)); err != nil {
			return false, err
		}
	}
	return hasAdministrator(guildID, m.Roles, roles), nil
}

func hasAdministrator(guildID string, memberRoles []string, roles []*discordgo.Role) bool {
	held := make(map[string]bool, len(memberRoles)+1)
	held[guildID] = true // @everyone
	for _, id := range memberRoles {
		held[id] = true
	}
	for _, r := range roles {
		if held[r.ID] && r.Permissions&discordgo.PermissionAdministrator != 0 {
			return true
		}
	}
	return false
}

func topPosition(memberRoles []string, roles []*discordgo.Role) int {
	held := make(map[string]bool, len(memberRoles))
	for _, id := range memberRoles {
		held[id] = true
	}
	top := 0
	for _, r := range roles {
		if held[r.ID] && r.Position > top {
			top = r.Position
		}
	}
	return top
}

func isNotFound(err error) bool {
	var restErr *discordgo.RESTError
	return errors.As(err, &restErr) && restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound
}
