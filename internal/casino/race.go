package casino

import (
	"context"
	"errors"
	"sync"
	"time"

	"casino-bot/internal/game"
	"casino-bot/internal/session"
	"casino-bot/internal/store"

	"github.com/rs/zerolog/log"
)

var errRaceGone = errors.New("race_gone")

type raceBet struct {
	userID string
	horse  int
	bet    int64
}

type raceResult struct {
	raceBet
	won int64
}

// raceSession is the betting state of one channel race. It stays open until
// the betting window closes, then the loop owns it.
type raceSession struct {
	id        string
	channelID string

	mu   sync.Mutex
	open bool
	gone bool
	bets []raceBet
}

// JoinRace places a bet on a horse. The first bet in a channel opens a race
// and starts its betting window; later bets join it while it is open.
func (s *Service) JoinRace(ctx context.Context, userID, channelID string, bet int64, horse int) (RaceEntry, error) {
	if !game.ValidHorse(horse) {
		return RaceEntry{}, reject("invalid_horse", "Pick a horse from 1 to %d.", game.RaceHorses)
	}
	if bet <= 0 {
		return RaceEntry{}, errInvalidBet
	}
	for {
		if rs, ok := s.races.Get(channelID); ok {
			entry, err := s.joinOpenRace(ctx, rs, userID, bet, horse)
			if errors.Is(err, errRaceGone) {
				continue
			}
			return entry, err
		}

		rs := &raceSession{id: store.NewID(), channelID: channelID, open: true}
		rs.mu.Lock()
		if err := s.races.Create(ctx, channelID, rs); err != nil {
			rs.mu.Unlock()
			if errors.Is(err, session.ErrExists) {
				continue
			}
			return RaceEntry{}, err
		}
		entry, err := s.addRaceBetLocked(ctx, rs, userID, bet, horse)
		if err != nil {
			rs.open = false
			rs.gone = true
			s.races.DeleteIf(channelID, func(v *raceSession) bool { return v == rs })
			rs.mu.Unlock()
			return RaceEntry{}, err
		}
		rs.mu.Unlock()
		entry.Opened = true
		s.startRace(rs)
		return entry, nil
	}
}

func (s *Service) joinOpenRace(ctx context.Context, rs *raceSession, userID string, bet int64, horse int) (RaceEntry, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if rs.gone {
		return RaceEntry{}, errRaceGone
	}
	if !rs.open {
		return RaceEntry{}, errRaceRunning
	}
	return s.addRaceBetLocked(ctx, rs, userID, bet, horse)
}

func (s *Service) addRaceBetLocked(ctx context.Context, rs *raceSession, userID string, bet int64, horse int) (RaceEntry, error) {
	for _, b := range rs.bets {
		if b.userID == userID {
			return RaceEntry{}, errAlreadyBet
		}
	}
	bal, err := s.stake(ctx, userID, bet, "race")
	if err != nil {
		return RaceEntry{}, err
	}
	rs.bets = append(rs.bets, raceBet{userID: userID, horse: horse, bet: bet})
	return RaceEntry{RaceID: rs.id, Horse: horse, Bet: bet, Bettors: len(rs.bets), Balance: bal}, nil
}

func (s *Service) startRace(rs *raceSession) {
	metricRacesTotal.Add(1)
	ctx := s.runCtx
	window := s.after(s.cfg.RaceBetWindow)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runRace(ctx, rs, window)
	}()
}

// runRace waits out the betting window, then advances the race on every tick
// and edits the track message until a horse finishes or time runs out.
// Cancelling ctx refunds every bet.
func (s *Service) runRace(ctx context.Context, rs *raceSession, window <-chan time.Time) {
	defer s.races.DeleteIf(rs.channelID, func(v *raceSession) bool { return v == rs })
	logger := log.With().Str("race_id", rs.id).Str("channel_id", rs.channelID).Logger()

	var cancelled bool
	select {
	case <-ctx.Done():
		cancelled = true
	case <-window:
	}
	rs.mu.Lock()
	rs.open = false
	bets := append([]raceBet(nil), rs.bets...)
	rs.mu.Unlock()
	if cancelled {
		s.refundRace(context.WithoutCancel(ctx), bets)
		return
	}

	race := game.NewRace()
	msgID := s.post(ctx, rs.channelID, renderRaceTrack(race, bets))
	ticks, stop := s.ticker(s.cfg.RaceTick)
	defer stop()
	for done := false; !done; {
		select {
		case <-ctx.Done():
			logger.Warn().Int("tick", race.Ticks).Msg("race cancelled, refunding bets")
			s.refundRace(context.WithoutCancel(ctx), bets)
			return
		case <-ticks:
			done = race.Advance(s)
			s.edit(ctx, rs.channelID, msgID, renderRaceTrack(race, bets))
		}
	}

	results := s.settleRace(ctx, race, bets)
	s.post(ctx, rs.channelID, renderRaceResult(race, results))
	logger.Info().Int("winner", race.Winner).Int("ticks", race.Ticks).Int("bets", len(bets)).Msg("race finished")
}

func (s *Service) settleRace(ctx context.Context, race *game.Race, bets []raceBet) []raceResult {
	results := make([]raceResult, 0, len(bets))
	for _, b := range bets {
		r := raceResult{raceBet: b}
		if race.Winner != 0 && b.horse == race.Winner {
			r.won = b.bet * game.RaceMultiplier
			if _, err := s.payout(ctx, b.userID, r.won, "race"); err != nil {
				log.Error().Err(err).Str("user_id", b.userID).Int64("amount", r.won).Msg("race payout failed")
				r.won = 0
			}
		}
		results = append(results, r)
	}
	return results
}

func (s *Service) refundRace(ctx context.Context, bets []raceBet) {
	for _, b := range bets {
		if _, err := s.ledger.Refund(ctx, b.userID, b.bet, "race"); err != nil {
			log.Error().Err(err).Str("user_id", b.userID).Int64("bet", b.bet).Msg("race refund failed")
		}
	}
}

func (s *Service) post(ctx context.Context, channelID, content string) string {
	if s.publisher == nil {
		return ""
	}
	id, err := s.publisher.Post(ctx, channelID, content)
	if err != nil {
		log.Warn().Err(err).Str("channel_id", channelID).Msg("post message failed")
		return ""
	}
	return id
}

func (s *Service) edit(ctx context.Context, channelID, messageID, content string) {
	if s.publisher == nil || messageID == "" {
		return
	}
	if err := s.publisher.Edit(ctx, channelID, messageID, content); err != nil {
		log.Warn().Err(err).Str("channel_id", channelID).Str("message_id", messageID).Msg("edit message failed")
	}
}
