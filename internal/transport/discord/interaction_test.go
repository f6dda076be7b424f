package discord

import (
	"testing"

	"casino-bot/internal/casino"

	"github.com/bwmarrin/discordgo"
)

func TestSlashCommandToInvocation(t *testing.T) {
	i := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type:      discordgo.InteractionApplicationCommand,
		ChannelID: "c1",
		Member:    &discordgo.Member{User: &discordgo.User{ID: "u1"}},
		Data: discordgo.ApplicationCommandInteractionData{
			Name: "race",
			Options: []*discordgo.ApplicationCommandInteractionDataOption{
				{Name: "bet", Type: discordgo.ApplicationCommandOptionInteger, Value: float64(250)},
				{Name: "horse", Type: discordgo.ApplicationCommandOptionInteger, Value: float64(3)},
			},
		},
	}}
	inv, ok := toInvocation(i)
	if !ok {
		t.Fatal("command not mapped")
	}
	if inv.Command != "race" || inv.UserID != "u1" || inv.ChannelID != "c1" {
		t.Fatalf("unexpected invocation: %+v", inv)
	}
	if inv.Option("bet") != "250" || inv.Option("horse") != "3" {
		t.Fatalf("unexpected options: %v", inv.Options)
	}
}

func TestDirectMessageUsesUser(t *testing.T) {
	i := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type: discordgo.InteractionApplicationCommand,
		User: &discordgo.User{ID: "dm-user"},
		Data: discordgo.ApplicationCommandInteractionData{
			Name: "balance",
			Options: []*discordgo.ApplicationCommandInteractionDataOption{
				{Name: "user", Type: discordgo.ApplicationCommandOptionUser, Value: "42"},
			},
		},
	}}
	inv, ok := toInvocation(i)
	if !ok || inv.UserID != "dm-user" || inv.Option("user") != "42" {
		t.Fatalf("unexpected invocation: %+v %v", inv, ok)
	}
}

func TestButtonToInvocation(t *testing.T) {
	i := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type:   discordgo.InteractionMessageComponent,
		Member: &discordgo.Member{User: &discordgo.User{ID: "u1"}},
		Data:   discordgo.MessageComponentInteractionData{CustomID: casino.ButtonID("hit", "S1")},
	}}
	inv, ok := toInvocation(i)
	if !ok || inv.Command != "hit" || inv.SessionID != "S1" {
		t.Fatalf("unexpected invocation: %+v %v", inv, ok)
	}

	i.Data = discordgo.MessageComponentInteractionData{CustomID: "something_else"}
	if _, ok := toInvocation(i); ok {
		t.Fatal("foreign button should be ignored")
	}
}

func TestReplyToResponse(t *testing.T) {
	resp := toResponse(casino.Reply{Content: "nope", Ephemeral: true})
	if resp.Type != discordgo.InteractionResponseChannelMessageWithSource {
		t.Fatalf("unexpected type %v", resp.Type)
	}
	if resp.Data.Flags != discordgo.MessageFlagsEphemeral || resp.Data.Content != "nope" {
		t.Fatalf("unexpected data: %+v", resp.Data)
	}

	resp = toResponse(casino.Reply{
		Content: "hand",
		Update:  true,
		Buttons: []casino.Button{{ID: "blackjack:hit:S1", Label: "Hit"}, {ID: "blackjack:stand:S1", Label: "Stand"}},
	})
	if resp.Type != discordgo.InteractionResponseUpdateMessage {
		t.Fatalf("button reply should update the message, got %v", resp.Type)
	}
	if len(resp.Data.Components) != 1 {
		t.Fatalf("expected one action row, got %d", len(resp.Data.Components))
	}
	row, ok := resp.Data.Components[0].(discordgo.ActionsRow)
	if !ok || len(row.Components) != 2 {
		t.Fatalf("unexpected row: %#v", resp.Data.Components[0])
	}
	if btn := row.Components[0].(discordgo.Button); btn.CustomID != "blackjack:hit:S1" {
		t.Fatalf("unexpected button: %+v", btn)
	}

	settled := toResponse(casino.Reply{Content: "done", Update: true})
	if settled.Data.Components == nil || len(settled.Data.Components) != 0 {
		t.Fatal("settled hand should clear the buttons explicitly")
	}
}

func TestMatchChannels(t *testing.T) {
	guilds := []*discordgo.Guild{{Channels: []*discordgo.Channel{
		{ID: "1", Name: "general", Type: discordgo.ChannelTypeGuildText},
		{ID: "2", Name: "Lottery-Results", Type: discordgo.ChannelTypeGuildText},
		{ID: "3", Name: "lottery-voice", Type: discordgo.ChannelTypeGuildVoice},
	}}}
	got := matchChannels(guilds, "lottery")
	if len(got) != 1 || got[0] != "2" {
		t.Fatalf("unexpected channels: %v", got)
	}
	if matchChannels(guilds, "") != nil {
		t.Fatal("empty keyword should match nothing")
	}
}
