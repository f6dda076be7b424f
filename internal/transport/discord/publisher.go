package discord

import (
	"context"
	"strings"

	"casino-bot/internal/announce"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// ChannelPublisher posts and edits plain messages for the race loop.
type ChannelPublisher struct {
	session *discordgo.Session
}

func NewChannelPublisher(s *discordgo.Session) *ChannelPublisher {
	return &ChannelPublisher{session: s}
}

func (p *ChannelPublisher) Post(ctx context.Context, channelID, content string) (string, error) {
	msg, err := p.session.ChannelMessageSend(channelID, content, discordgo.WithContext(ctx))
	if err != nil {
		return "", err
	}
	return msg.ID, nil
}

func (p *ChannelPublisher) Edit(ctx context.Context, channelID, messageID, content string) error {
	_, err := p.session.ChannelMessageEdit(channelID, messageID, content, discordgo.WithContext(ctx))
	return err
}

// KeywordAnnouncer posts draw results to every text channel whose name
// contains the keyword, across the guilds the bot is in.
type KeywordAnnouncer struct {
	session *discordgo.Session
	keyword string
}

func NewKeywordAnnouncer(s *discordgo.Session, keyword string) *KeywordAnnouncer {
	return &KeywordAnnouncer{session: s, keyword: strings.ToLower(strings.TrimSpace(keyword))}
}

func (a *KeywordAnnouncer) Announce(ctx context.Context, ann announce.Announcement) error {
	var guilds []*discordgo.Guild
	if a.session.State != nil {
		guilds = a.session.State.Guilds
	}
	channels := matchChannels(guilds, a.keyword)
	if len(channels) == 0 {
		log.Warn().Str("keyword", a.keyword).Msg("no announcement channel found")
		return nil
	}
	text := ann.Text()
	var firstErr error
	for _, ch := range channels {
		if _, err := a.session.ChannelMessageSend(ch, text, discordgo.WithContext(ctx)); err != nil {
			log.Warn().Err(err).Str("channel_id", ch).Msg("announcement post failed")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func matchChannels(guilds []*discordgo.Guild, keyword string) []string {
	if keyword == "" {
		return nil
	}
	var out []string
	for _, g := range guilds {
		for _, ch := range g.Channels {
			if ch.Type == discordgo.ChannelTypeGuildText && strings.Contains(strings.ToLower(ch.Name), keyword) {
				out = append(out, ch.ID)
			}
		}
	}
	return out
}
