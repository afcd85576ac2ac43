package discord

import (
	"context"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/mcoot/scrimbot/internal/chat"
)

// responder answers one interaction privately. The first answer uses the
// interaction response, later ones are follow-ups.
type responder struct {
	session     *discordgo.Session
	interaction *discordgo.Interaction

	mu    sync.Mutex
	acked bool
}

// Ensure responder implements chat.Responder
var _ chat.Responder = (*responder)(nil)

func newResponder(session *discordgo.Session, interaction *discordgo.Interaction) *responder {
	return &responder{session: session, interaction: interaction}
}

func (r *responder) OpenModal(ctx context.Context, modal chat.Modal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.acked = true
	return r.session.InteractionRespond(r.interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: toModal(modal),
	}, discordgo.WithContext(ctx))
}

func (r *responder) Defer(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.acked {
		return nil
	}
	r.acked = true
	return r.session.InteractionRespond(r.interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	}, discordgo.WithContext(ctx))
}

func (r *responder) Reply(ctx context.Context, content string) error {
	return r.send(ctx, content, nil)
}

func (r *responder) ReplyEmbed(ctx context.Context, embed chat.Embed) error {
	return r.send(ctx, "", []*discordgo.MessageEmbed{toEmbed(&embed)})
}

func (r *responder) send(ctx context.Context, content string, embeds []*discordgo.MessageEmbed) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.acked {
		r.acked = true
		return r.session.InteractionRespond(r.interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Content: content,
				Embeds:  embeds,
				Flags:   discordgo.MessageFlagsEphemeral,
			},
		}, discordgo.WithContext(ctx))
	}
	_, err := r.session.FollowupMessageCreate(r.interaction, true, &discordgo.WebhookParams{
		Content: content,
		Embeds:  embeds,
		Flags:   discordgo.MessageFlagsEphemeral,
	}, discordgo.WithContext(ctx))
	return err
}
