// Package dispatch routes gateway events to the service that owns them and
// answers the interaction with the member-facing message.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mcoot/scrimbot/internal/chat"
	"github.com/mcoot/scrimbot/internal/model"
	"github.com/mcoot/scrimbot/internal/services/admin"
	"github.com/mcoot/scrimbot/internal/services/auth"
	"github.com/mcoot/scrimbot/internal/services/game"
	"github.com/mcoot/scrimbot/internal/services/link"
	"github.com/mcoot/scrimbot/internal/services/prompt"
	"github.com/mcoot/scrimbot/internal/services/sanction"
)

// Dispatcher is the single entry point for gateway events
type Dispatcher struct {
	auth      *auth.Service
	games     *game.Controller
	sanctions *sanction.Service
	admin     *admin.Service
	links     *link.Service
	waiter    *prompt.Waiter
	logger    *slog.Logger
}

// New creates a new Dispatcher
func New(
	auth *auth.Service,
	games *game.Controller,
	sanctions *sanction.Service,
	admin *admin.Service,
	links *link.Service,
	waiter *prompt.Waiter,
	logger *slog.Logger,
) *Dispatcher {
	return &Dispatcher{
		auth:      auth,
		games:     games,
		sanctions: sanctions,
		admin:     admin,
		links:     links,
		waiter:    waiter,
		logger:    logger.With(slog.String("component", "dispatch")),
	}
}

// Dispatch handles one event. resp answers the interaction the event came
// from and is unused for reactions.
func (d *Dispatcher) Dispatch(ctx context.Context, ev model.Event, resp chat.Responder) error {
	switch p := ev.Payload.(type) {
	case model.ReactionPayload:
		return d.reaction(ctx, ev, p)
	case model.ButtonPayload:
		return d.button(ctx, ev, p, resp)
	case model.ModalPayload:
		return d.modal(ctx, ev, p, resp)
	default:
		d.logger.Warn("unhandled event", slog.String("type", string(ev.Type)))
		return nil
	}
}

func (d *Dispatcher) reaction(ctx context.Context, ev model.Event, p model.ReactionPayload) error {
	if ev.Actor.IsBot {
		return nil
	}
	if d.waiter.Deliver(ev.MessageID, ev.Actor.ID, p.Emoji) {
		return nil
	}
	_, err := d.games.HandleReaction(ctx, ev)
	return err
}

func (d *Dispatcher) button(ctx context.Context, ev model.Event, p model.ButtonPayload, resp chat.Responder) error {
	if p.CustomID == link.ButtonID {
		return resp.OpenModal(ctx, d.links.Modal(ctx, ev.Actor.ID))
	}

	c := auth.Capability(p.CustomID)
	if !strings.HasPrefix(p.CustomID, "admin:") {
		d.logger.Warn("unknown button", slog.String("custom_id", p.CustomID))
		return nil
	}
	if !d.authorized(ctx, ev.Actor, c, resp) {
		return nil
	}

	if c == auth.RecreatePanel {
		if err := resp.Defer(ctx); err != nil {
			return err
		}
		if err := d.admin.RecreateAdminPanel(ctx); err != nil {
			return resp.Reply(ctx, msgPanelFailed)
		}
		return resp.Reply(ctx, msgPanelRecreated)
	}

	modal, ok := admin.Modal(c)
	if !ok {
		d.logger.Warn("unknown admin button", slog.String("custom_id", p.CustomID))
		return nil
	}
	return resp.OpenModal(ctx, modal)
}

// authorized replies with the missing permission and returns false if the
// actor cannot use the capability
func (d *Dispatcher) authorized(ctx context.Context, actor model.Actor, c auth.Capability, resp chat.Responder) bool {
	err := d.auth.Authorize(ctx, actor, c)
	if err == nil {
		return true
	}
	d.logger.Info("capability denied",
		slog.String("player_id", string(actor.ID)),
		slog.String("capability", string(c)),
	)
	_ = resp.Reply(ctx, fmt.Sprintf(msgForbidden, auth.RequiredLevel(c).PermissionName()))
	return false
}

func (d *Dispatcher) modal(ctx context.Context, ev model.Event, p model.ModalPayload, resp chat.Responder) error {
	if p.CustomID == link.ModalID {
		if err := resp.Defer(ctx); err != nil {
			return err
		}
		return d.linkAccounts(ctx, ev, p, resp)
	}

	c, ok := admin.CapabilityOf(p.CustomID)
	if !ok {
		d.logger.Warn("unknown modal", slog.String("custom_id", p.CustomID))
		return nil
	}
	if !d.authorized(ctx, ev.Actor, c, resp) {
		return nil
	}
	if err := resp.Defer(ctx); err != nil {
		return err
	}

	switch c {
	case auth.StartGame:
		return d.startGame(ctx, ev, p.Value(admin.InputGameCode), resp)
	case auth.EndGame:
		return d.endGame(ctx, p.Value(admin.InputGameCode), p.Value(admin.InputWinner), resp)
	case auth.Punish:
		return d.punish(ctx, ev.Actor, p.Value(admin.InputMember), resp)
	case auth.Unpunish:
		return d.unpunish(ctx, p.Value(admin.InputMember), resp)
	case auth.AuthCreator:
		return d.grantCreator(ctx, p.Value(admin.InputMember), resp)
	case auth.RevokeCreator:
		return d.revokeCreator(ctx, p.Value(admin.InputMember), resp)
	}
	return nil
}

func (d *Dispatcher) linkAccounts(ctx context.Context, ev model.Event, p model.ModalPayload, resp chat.Responder) error {
	res, err := d.links.Link(ctx, link.Request{
		PlayerID:     ev.Actor.ID,
		DiscordName:  ev.Actor.Name,
		EpicName:     p.Value(link.InputEpic),
		YouTubeURL:   p.Value(link.InputYouTube),
		TwitchHandle: p.Value(link.InputTwitch),
	})
	switch {
	case errors.Is(err, link.ErrEpicRequired):
		return resp.Reply(ctx, msgEpicRequired)
	case errors.Is(err, link.ErrTwitchUnknown):
		return resp.Reply(ctx, fmt.Sprintf(msgTwitchUnknown, strings.TrimSpace(p.Value(link.InputTwitch))))
	case err != nil:
		return resp.Reply(ctx, msgInternal)
	}
	return resp.ReplyEmbed(ctx, link.SummaryEmbed(res.Player))
}

func (d *Dispatcher) startGame(ctx context.Context, ev model.Event, rawCode string, resp chat.Responder) error {
	code := displayCode(rawCode)
	_, err := d.games.StartGame(ctx, ev.Actor, ev.ChannelID, rawCode, resp)
	switch {
	case err == nil, errors.Is(err, model.ErrModeSelectionTimeout), errors.Is(err, context.Canceled):
		return nil
	case errors.Is(err, model.ErrInvalidGameCode):
		return resp.Reply(ctx, msgInvalidCode)
	case errors.Is(err, model.ErrGameAlreadyActive):
		return resp.Reply(ctx, fmt.Sprintf(msgGameActive, code))
	case errors.Is(err, model.ErrGameExists):
		return resp.Reply(ctx, fmt.Sprintf(msgGameExists, code))
	case errors.Is(err, model.ErrNoModeConfigured):
		return resp.Reply(ctx, msgNoModes)
	default:
		return resp.Reply(ctx, msgInternal)
	}
}

func (d *Dispatcher) endGame(ctx context.Context, rawCode, winner string, resp chat.Responder) error {
	code := displayCode(rawCode)
	_, err := d.games.EndGame(ctx, rawCode, winner)
	switch {
	case errors.Is(err, model.ErrGameNotActive):
		return resp.Reply(ctx, fmt.Sprintf(msgGameNotActive, code))
	case err != nil:
		return resp.Reply(ctx, msgInternal)
	}
	return resp.Reply(ctx, fmt.Sprintf(msgGameEnded, code))
}

func (d *Dispatcher) punish(ctx context.Context, actor model.Actor, identifier string, resp chat.Responder) error {
	res, err := d.sanctions.Punish(ctx, actor, identifier)
	switch {
	case errors.Is(err, model.ErrMemberNotFound):
		return resp.Reply(ctx, msgMemberNotFound)
	case errors.Is(err, model.ErrSelfSanction):
		return resp.Reply(ctx, msgSelfSanction)
	case errors.Is(err, model.ErrProtectedMember):
		return resp.Reply(ctx, msgProtectedMember)
	case errors.Is(err, model.ErrSanctionActive):
		return resp.Reply(ctx, fmt.Sprintf(msgAlreadySanctioned, res.Target.Mention()))
	case err != nil:
		return resp.Reply(ctx, msgInternal)
	}
	minutes := int(d.sanctions.Duration().Minutes())
	return resp.Reply(ctx, fmt.Sprintf(msgSanctioned, res.Target.Mention(), minutes))
}

func (d *Dispatcher) unpunish(ctx context.Context, identifier string, resp chat.Responder) error {
	res, err := d.sanctions.Lift(ctx, identifier)
	switch {
	case errors.Is(err, model.ErrMemberNotFound):
		return resp.Reply(ctx, msgMemberNotFound)
	case errors.Is(err, model.ErrSanctionNotFound):
		return resp.Reply(ctx, fmt.Sprintf(msgNoSanction, res.Target.Mention()))
	case err != nil:
		return resp.Reply(ctx, msgInternal)
	}
	return resp.Reply(ctx, fmt.Sprintf(msgSanctionLifted, res.Target.Mention()))
}

func (d *Dispatcher) grantCreator(ctx context.Context, identifier string, resp chat.Responder) error {
	target, err := d.admin.GrantCreator(ctx, identifier)
	switch {
	case errors.Is(err, model.ErrMemberNotFound), errors.Is(err, model.ErrBotAccount):
		return resp.Reply(ctx, msgInvalidMember)
	case err != nil:
		return resp.Reply(ctx, msgInternal)
	}
	return resp.Reply(ctx, fmt.Sprintf(msgCreatorGranted, target.Mention()))
}

func (d *Dispatcher) revokeCreator(ctx context.Context, identifier string, resp chat.Responder) error {
	target, err := d.admin.RevokeCreator(ctx, identifier)
	switch {
	case errors.Is(err, model.ErrMemberNotFound):
		return resp.Reply(ctx, msgMemberNotFound)
	case err != nil:
		return resp.Reply(ctx, msgInternal)
	}
	return resp.Reply(ctx, fmt.Sprintf(msgCreatorRevoked, target.Mention()))
}

// displayCode renders a submitted code the way the bot refers to it
func displayCode(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
