package discord

import (
	"context"
	"fmt"
	"time"

	"casino-bot/internal/casino"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

const interactionTimeout = 10 * time.Second

// Handler is the dispatcher behind the bot.
type Handler interface {
	Handle(ctx context.Context, inv casino.Invocation) casino.Reply
}

// Bot owns the gateway session and turns interactions into invocations.
// discordgo runs each handler call in its own goroutine.
type Bot struct {
	session *discordgo.Session
	handler Handler
}

func New(token string, h Handler) (*Bot, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds
	b := &Bot{session: s, handler: h}
	s.AddHandler(b.onInteraction)
	s.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		log.Info().Str("user", r.User.Username).Int("guilds", len(r.Guilds)).Msg("discord gateway ready")
	})
	return b, nil
}

func (b *Bot) Session() *discordgo.Session {
	return b.session
}

func (b *Bot) Open() error {
	return b.session.Open()
}

func (b *Bot) Close() error {
	return b.session.Close()
}

func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	inv, ok := toInvocation(i)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
	defer cancel()

	reply := b.handler.Handle(ctx, inv)
	if err := s.InteractionRespond(i.Interaction, toResponse(reply)); err != nil {
		log.Warn().Err(err).Str("command", inv.Command).Str("user_id", inv.UserID).Msg("interaction respond failed")
	}
}
