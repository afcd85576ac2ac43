package discord

import (
	"sort"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/mcoot/scrimbot/internal/chat"
	"github.com/mcoot/scrimbot/internal/model"
)

func toEmbed(e *chat.Embed) *discordgo.MessageEmbed {
	if e == nil {
		return nil
	}
	out := &discordgo.MessageEmbed{
		Title:       e.Title,
		Description: e.Description,
		Color:       e.Color,
	}
	for _, f := range e.Fields {
		out.Fields = append(out.Fields, &discordgo.MessageEmbedField{Name: f.Name, Value: f.Value, Inline: f.Inline})
	}
	if e.Footer != "" {
		out.Footer = &discordgo.MessageEmbedFooter{Text: e.Footer}
	}
	if !e.Timestamp.IsZero() {
		out.Timestamp = e.Timestamp.UTC().Format(time.RFC3339)
	}
	return out
}

var buttonStyles = map[chat.ButtonStyle]discordgo.ButtonStyle{
	chat.ButtonPrimary:   discordgo.PrimaryButton,
	chat.ButtonSecondary: discordgo.SecondaryButton,
	chat.ButtonSuccess:   discordgo.SuccessButton,
	chat.ButtonDanger:    discordgo.DangerButton,
}

// toComponents lays buttons out in action rows ordered by row number
func toComponents(buttons []chat.Button) []discordgo.MessageComponent {
	if len(buttons) == 0 {
		return nil
	}
	rows := make(map[int][]discordgo.MessageComponent)
	for _, b := range buttons {
		btn := discordgo.Button{
			Label:    b.Label,
			Style:    buttonStyles[b.Style],
			CustomID: b.CustomID,
		}
		if b.Emoji != "" {
			btn.Emoji = &discordgo.ComponentEmoji{Name: b.Emoji}
		}
		rows[b.Row] = append(rows[b.Row], btn)
	}

	keys := make([]int, 0, len(rows))
	for k := range rows {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	out := make([]discordgo.MessageComponent, 0, len(keys))
	for _, k := range keys {
		out = append(out, discordgo.ActionsRow{Components: rows[k]})
	}
	return out
}

func toModal(m chat.Modal) *discordgo.InteractionResponseData {
	rows := make([]discordgo.MessageComponent, 0, len(m.Inputs))
	for _, in := range m.Inputs {
		rows = append(rows, discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.TextInput{
				CustomID: in.CustomID,
				Label:    in.Label,
				Style:    discordgo.TextInputShort,
				Value:    in.Value,
				Required: in.Required,
			},
		}})
	}
	return &discordgo.InteractionResponseData{
		CustomID:   m.CustomID,
		Title:      m.Title,
		Components: rows,
	}
}

func toMember(m *discordgo.Member, admin bool) *chat.Member {
	out := &chat.Member{
		Nick:          m.Nick,
		Administrator: admin,
		RoleIDs:       m.Roles,
	}
	if m.User != nil {
		out.ID = m.User.ID
		out.Username = m.User.Username
		out.Discriminator = m.User.Discriminator
		out.Bot = m.User.Bot
	}
	return out
}

func toRole(r *discordgo.Role) chat.Role {
	return chat.Role{ID: r.ID, Name: r.Name, Position: r.Position, Managed: r.Managed}
}

// modalValues flattens the text inputs of a submitted modal
func modalValues(data discordgo.ModalSubmitInteractionData) map[string]string {
	values := make(map[string]string)
	for _, c := range data.Components {
		row, ok := c.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, rc := range row.Components {
			if in, ok := rc.(*discordgo.TextInput); ok {
				values[in.CustomID] = in.Value
			}
		}
	}
	return values
}

// interactionActor returns the member behind a guild interaction
func interactionActor(i *discordgo.InteractionCreate) model.Actor {
	if i.Member == nil || i.Member.User == nil {
		if i.User != nil {
			return model.Actor{ID: model.PlayerID(i.User.ID), Name: i.User.Username, IsBot: i.User.Bot}
		}
		return model.Actor{}
	}
	return model.Actor{
		ID:      model.PlayerID(i.Member.User.ID),
		Name:    i.Member.User.Username,
		IsAdmin: i.Member.Permissions&discordgo.PermissionAdministrator != 0,
		IsBot:   i.Member.User.Bot,
	}
}

// interactionEvent translates a component or modal interaction.
// ok is false for interaction types the bot does not handle.
func interactionEvent(i *discordgo.InteractionCreate, now time.Time) (model.Event, bool) {
	ev := model.Event{
		Timestamp: now,
		GuildID:   i.GuildID,
		ChannelID: i.ChannelID,
		Actor:     interactionActor(i),
	}
	if i.Message != nil {
		ev.MessageID = i.Message.ID
	}

	switch i.Type {
	case discordgo.InteractionMessageComponent:
		ev.Type = model.EventButtonPressed
		ev.Payload = model.ButtonPayload{CustomID: i.MessageComponentData().CustomID}
	case discordgo.InteractionModalSubmit:
		data := i.ModalSubmitData()
		ev.Type = model.EventModalSubmitted
		ev.Payload = model.ModalPayload{CustomID: data.CustomID, Values: modalValues(data)}
	default:
		return model.Event{}, false
	}
	return ev, true
}

// reactionEvent translates a reaction added to a guild message
func reactionEvent(r *discordgo.MessageReactionAdd, now time.Time) model.Event {
	actor := model.Actor{ID: model.PlayerID(r.UserID)}
	if r.Member != nil && r.Member.User != nil {
		actor.Name = r.Member.User.Username
		actor.IsBot = r.Member.User.Bot
		actor.IsAdmin = r.Member.Permissions&discordgo.PermissionAdministrator != 0
	}
	return model.Event{
		Type:      model.EventReactionAdded,
		Timestamp: now,
		GuildID:   r.GuildID,
		ChannelID: r.ChannelID,
		MessageID: r.MessageID,
		Actor:     actor,
		Payload:   model.ReactionPayload{Emoji: emojiName(r.Emoji)},
	}
}

// emojiName returns the unicode emoji, or name:id for custom emojis
func emojiName(e discordgo.Emoji) string {
	if e.ID != "" {
		return e.APIName()
	}
	return e.Name
}
