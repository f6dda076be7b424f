package casino

import (
	"context"
	"errors"
	"sync"

	"casino-bot/internal/game"
	"casino-bot/internal/session"
	"casino-bot/internal/store"

	"github.com/rs/zerolog/log"
)

type blackjackSession struct {
	id        string
	userID    string
	channelID string

	mu   sync.Mutex
	hand *game.Blackjack
	done bool
}

func (b *blackjackSession) view(balance int64) BlackjackView {
	return BlackjackView{
		SessionID: b.id,
		Bet:       b.hand.Bet,
		Player:    append([]game.Card(nil), b.hand.Player...),
		Dealer:    append([]game.Card(nil), b.hand.Dealer...),
		Phase:     b.hand.Phase,
		Outcome:   b.hand.Outcome,
		Payout:    b.hand.Payout(),
		Balance:   balance,
	}
}

// StartBlackjack debits the bet and deals a new hand. A user has at most one
// hand open at a time.
func (s *Service) StartBlackjack(ctx context.Context, userID, channelID string, bet int64) (BlackjackView, error) {
	if _, ok := s.blackjack.Get(userID); ok {
		return BlackjackView{}, errBlackjackActive
	}
	bal, err := s.stake(ctx, userID, bet, "blackjack")
	if err != nil {
		return BlackjackView{}, err
	}
	sess := &blackjackSession{
		id:        store.NewID(),
		userID:    userID,
		channelID: channelID,
		hand:      game.NewBlackjack(s, bet),
	}
	if err := s.blackjack.Create(ctx, userID, sess); err != nil {
		if _, rerr := s.ledger.Refund(ctx, userID, bet, "blackjack"); rerr != nil {
			log.Error().Err(rerr).Str("user_id", userID).Int64("bet", bet).Msg("blackjack refund failed")
		}
		if errors.Is(err, session.ErrExists) {
			return BlackjackView{}, errBlackjackActive
		}
		return BlackjackView{}, err
	}
	log.Debug().Str("session_id", sess.id).Str("user_id", userID).Int64("bet", bet).Msg("blackjack dealt")

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.view(bal), nil
}

func (s *Service) Hit(ctx context.Context, userID, sessionID string) (BlackjackView, error) {
	return s.blackjackMove(ctx, userID, sessionID, (*game.Blackjack).Hit)
}

func (s *Service) Stand(ctx context.Context, userID, sessionID string) (BlackjackView, error) {
	return s.blackjackMove(ctx, userID, sessionID, (*game.Blackjack).Stand)
}

// blackjackMove applies a player move. Only the owner of the hand can move,
// and a settled hand is closed and paid exactly once.
func (s *Service) blackjackMove(ctx context.Context, userID, sessionID string, move func(*game.Blackjack) error) (BlackjackView, error) {
	sess, ok := s.blackjack.Get(userID)
	if !ok || sess.id != sessionID {
		return BlackjackView{}, ErrSessionNotFound
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.done {
		return BlackjackView{}, ErrSessionNotFound
	}
	if err := move(sess.hand); err != nil {
		if errors.Is(err, game.ErrNotPlayerTurn) {
			return BlackjackView{}, ErrSessionNotFound
		}
		return BlackjackView{}, err
	}
	if sess.hand.Phase != game.PhaseSettled {
		bal, err := s.balance(ctx, userID)
		if err != nil {
			return BlackjackView{}, err
		}
		return sess.view(bal), nil
	}

	sess.done = true
	s.blackjack.DeleteIf(userID, func(v *blackjackSession) bool { return v == sess })
	var (
		bal int64
		err error
	)
	if p := sess.hand.Payout(); p > 0 {
		bal, err = s.payout(ctx, userID, p, "blackjack")
	} else {
		bal, err = s.balance(ctx, userID)
	}
	if err != nil {
		return BlackjackView{}, err
	}
	log.Debug().Str("session_id", sess.id).Str("user_id", userID).Str("outcome", string(sess.hand.Outcome)).Msg("blackjack settled")
	return sess.view(bal), nil
}

// expireBlackjack cancels an idle hand and returns the bet.
func (s *Service) expireBlackjack(ctx context.Context, userID string, sess *blackjackSession) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.done {
		return
	}
	sess.done = true
	metricBlackjackExpiredTotal.Add(1)
	if _, err := s.ledger.Refund(context.WithoutCancel(ctx), userID, sess.hand.Bet, "blackjack"); err != nil {
		log.Error().Err(err).Str("session_id", sess.id).Str("user_id", userID).Msg("blackjack timeout refund failed")
		return
	}
	log.Info().Str("session_id", sess.id).Str("user_id", userID).Int64("bet", sess.hand.Bet).Msg("blackjack timed out, bet refunded")
}

func (s *Service) balance(ctx context.Context, userID string) (int64, error) {
	acc, err := s.ledger.Account(ctx, userID)
	if err != nil {
		return 0, err
	}
	return acc.Balance, nil
}
