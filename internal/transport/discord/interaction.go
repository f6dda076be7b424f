package discord

import (
	"strconv"

	"casino-bot/internal/casino"

	"github.com/bwmarrin/discordgo"
)

// toInvocation maps slash commands and blackjack buttons. Anything else is
// ignored.
func toInvocation(i *discordgo.InteractionCreate) (casino.Invocation, bool) {
	if i == nil || i.Interaction == nil {
		return casino.Invocation{}, false
	}
	inv := casino.Invocation{UserID: interactionUserID(i.Interaction), ChannelID: i.ChannelID}
	if inv.UserID == "" {
		return casino.Invocation{}, false
	}

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		data := i.ApplicationCommandData()
		inv.Command = data.Name
		inv.Options = make(map[string]string, len(data.Options))
		for _, opt := range data.Options {
			inv.Options[opt.Name] = optionString(opt)
		}
		return inv, true
	case discordgo.InteractionMessageComponent:
		action, sessionID, ok := casino.ParseButtonID(i.MessageComponentData().CustomID)
		if !ok {
			return casino.Invocation{}, false
		}
		inv.Command = action
		inv.SessionID = sessionID
		return inv, true
	}
	return casino.Invocation{}, false
}

func interactionUserID(i *discordgo.Interaction) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

// optionString flattens an option value. Integers arrive as JSON numbers;
// user and channel options carry the snowflake as a string.
func optionString(opt *discordgo.ApplicationCommandInteractionDataOption) string {
	switch v := opt.Value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatInt(int64(v), 10)
	case bool:
		return strconv.FormatBool(v)
	}
	return ""
}

func toResponse(r casino.Reply) *discordgo.InteractionResponse {
	data := &discordgo.InteractionResponseData{Content: r.Content}
	if r.Ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	components := []discordgo.MessageComponent{}
	if len(r.Buttons) > 0 {
		row := discordgo.ActionsRow{}
		for _, b := range r.Buttons {
			style := discordgo.PrimaryButton
			if b.Label == "Stand" {
				style = discordgo.SecondaryButton
			}
			row.Components = append(row.Components, discordgo.Button{
				CustomID: b.ID,
				Label:    b.Label,
				Style:    style,
				Disabled: b.Disabled,
			})
		}
		components = append(components, row)
	}
	data.Components = components

	typ := discordgo.InteractionResponseChannelMessageWithSource
	if r.Update {
		typ = discordgo.InteractionResponseUpdateMessage
	}
	return &discordgo.InteractionResponse{Type: typ, Data: data}
}
