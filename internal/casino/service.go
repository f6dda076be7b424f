package casino

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"casino-bot/internal/announce"
	"casino-bot/internal/config"
	"casino-bot/internal/game"
	"casino-bot/internal/ledger"
	"casino-bot/internal/session"
	"casino-bot/internal/store"

	"github.com/rs/zerolog/log"
)

type Config struct {
	DailyClaimAmount int64
	TicketPrice      int64

	BlackjackIdleTimeout time.Duration
	RaceBetWindow        time.Duration
	RaceTick             time.Duration

	// DayLocation decides where a calendar day starts for the daily claim,
	// the daily ticket and draw dates.
	DayLocation *time.Location
	Admins      []string
}

func ConfigFromEnv(g config.GameConfig, admins []string) (Config, error) {
	loc, err := time.LoadLocation(g.DayLocation)
	if err != nil {
		return Config{}, fmt.Errorf("day location %q: %w", g.DayLocation, err)
	}
	return Config{
		DailyClaimAmount:     g.DailyClaimAmount,
		TicketPrice:          g.TicketPrice,
		BlackjackIdleTimeout: g.BlackjackIdleTimeout,
		RaceBetWindow:        g.RaceBetWindow,
		RaceTick:             g.RaceTick,
		DayLocation:          loc,
		Admins:               admins,
	}, nil
}

// Service turns invocations into ledger mutations and game moves. It owns the
// in-memory blackjack and race sessions.
type Service struct {
	cfg       Config
	ledger    *ledger.Ledger
	store     Store
	publisher Publisher
	announcer announce.Announcer
	admins    map[string]bool

	blackjack *session.Registry[string, *blackjackSession]
	races     *session.Registry[string, *raceSession]

	srcMu sync.Mutex
	src   game.Source

	now    func() time.Time
	after  func(time.Duration) <-chan time.Time
	ticker func(time.Duration) (<-chan time.Time, func())

	runCtx context.Context
	wg     sync.WaitGroup
}

func New(cfg Config, led *ledger.Ledger, st Store) *Service {
	if cfg.DayLocation == nil {
		cfg.DayLocation = time.UTC
	}
	if cfg.DailyClaimAmount <= 0 {
		cfg.DailyClaimAmount = 1000
	}
	if cfg.TicketPrice <= 0 {
		cfg.TicketPrice = 100
	}
	if cfg.BlackjackIdleTimeout <= 0 {
		cfg.BlackjackIdleTimeout = 2 * time.Minute
	}
	if cfg.RaceBetWindow <= 0 {
		cfg.RaceBetWindow = 15 * time.Second
	}
	if cfg.RaceTick <= 0 {
		cfg.RaceTick = time.Second
	}
	s := &Service{
		cfg:       cfg,
		ledger:    led,
		store:     st,
		announcer: announce.Discard{},
		admins:    map[string]bool{},
		src:       game.NewTimeSource(),
		now:       time.Now,
		after:     time.After,
		ticker: func(d time.Duration) (<-chan time.Time, func()) {
			t := time.NewTicker(d)
			return t.C, t.Stop
		},
		runCtx: context.Background(),
	}
	for _, id := range cfg.Admins {
		if id = strings.TrimSpace(id); id != "" {
			s.admins[id] = true
		}
	}
	s.blackjack = session.NewRegistry[string, *blackjackSession]("blackjack", cfg.BlackjackIdleTimeout, s.expireBlackjack)
	s.races = session.NewRegistry[string, *raceSession]("race", 0, nil)
	return s
}

func (s *Service) SetPublisher(p Publisher) {
	s.publisher = p
}

func (s *Service) SetAnnouncer(a announce.Announcer) {
	if a == nil {
		a = announce.Discard{}
	}
	s.announcer = a
}

// Start runs the blackjack janitor and makes ctx the parent of every race
// loop. Cancelling it refunds the bets of unfinished races.
func (s *Service) Start(ctx context.Context, sweepInterval time.Duration) {
	s.runCtx = ctx
	s.blackjack.StartJanitor(ctx, sweepInterval)
}

// Wait blocks until every race loop and pending announcement has returned.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) IsAdmin(userID string) bool {
	return s.admins[userID]
}

// Handle runs one invocation and always produces a reply. Errors are turned
// into rejection or failure messages here.
func (s *Service) Handle(ctx context.Context, inv Invocation) Reply {
	metricCommandsTotal.Add(1)
	if _, err := s.ledger.Account(ctx, inv.UserID); err != nil {
		return s.errorReply(inv, err)
	}

	reply, err := s.dispatch(ctx, inv)
	if err != nil {
		return s.errorReply(inv, err)
	}
	log.Debug().Str("command", inv.Command).Str("user_id", inv.UserID).Str("channel_id", inv.ChannelID).Msg("command handled")
	return reply
}

func (s *Service) dispatch(ctx context.Context, inv Invocation) (Reply, error) {
	switch inv.Command {
	case "balance":
		target := inv.UserID
		if u := strings.TrimSpace(inv.Option("user")); u != "" {
			target = u
		}
		acc, err := s.ledger.Account(ctx, target)
		if err != nil {
			return Reply{}, err
		}
		return renderBalance(inv.UserID, acc), nil

	case "claim":
		bal, err := s.Claim(ctx, inv.UserID)
		if err != nil {
			return Reply{}, err
		}
		return Reply{Content: fmt.Sprintf("💰 You claimed %d coins. Balance: %d", s.cfg.DailyClaimAmount, bal)}, nil

	case "slot":
		bet, err := parseBet(inv.Option("bet"))
		if err != nil {
			return Reply{}, err
		}
		out, err := s.Slot(ctx, inv.UserID, bet)
		if err != nil {
			return Reply{}, err
		}
		return renderSlot(out), nil

	case "baccarat":
		bet, err := parseBet(inv.Option("bet"))
		if err != nil {
			return Reply{}, err
		}
		side, err := game.ParseBaccaratSide(inv.Option("choice"))
		if err != nil {
			return Reply{}, reject("invalid_choice", "Choose player, banker or tie.")
		}
		out, err := s.Baccarat(ctx, inv.UserID, bet, side)
		if err != nil {
			return Reply{}, err
		}
		return renderBaccarat(out), nil

	case "blackjack":
		bet, err := parseBet(inv.Option("bet"))
		if err != nil {
			return Reply{}, err
		}
		view, err := s.StartBlackjack(ctx, inv.UserID, inv.ChannelID, bet)
		if err != nil {
			return Reply{}, err
		}
		return renderBlackjack(view, false), nil

	case "hit", "stand":
		var (
			view BlackjackView
			err  error
		)
		if inv.Command == "hit" {
			view, err = s.Hit(ctx, inv.UserID, inv.SessionID)
		} else {
			view, err = s.Stand(ctx, inv.UserID, inv.SessionID)
		}
		if err != nil {
			return Reply{}, err
		}
		return renderBlackjack(view, true), nil

	case "race":
		bet, err := parseBet(inv.Option("bet"))
		if err != nil {
			return Reply{}, err
		}
		horse, err := strconv.Atoi(strings.TrimSpace(inv.Option("horse")))
		if err != nil || !game.ValidHorse(horse) {
			return Reply{}, reject("invalid_horse", "Pick a horse from 1 to %d.", game.RaceHorses)
		}
		entry, err := s.JoinRace(ctx, inv.UserID, inv.ChannelID, bet, horse)
		if err != nil {
			return Reply{}, err
		}
		return s.renderRaceEntry(inv.UserID, entry), nil

	case "lottery":
		nums, err := game.ParseTicket(inv.Option("numbers"))
		if err != nil {
			return Reply{}, ticketRejection(err)
		}
		p, err := s.BuyTicket(ctx, inv.UserID, nums)
		if err != nil {
			return Reply{}, err
		}
		return Reply{Content: fmt.Sprintf("🎟️ Ticket for %s: %s. Balance: %d",
			p.Ticket.DrawDate.Format("2006-01-02"), game.FormatNumbers(p.Ticket.Numbers), p.Balance)}, nil

	case "lottery_status":
		return s.lotteryStatus(ctx, inv.UserID)

	case "ranking":
		top, err := s.store.TopBalances(ctx, 10)
		if err != nil {
			return Reply{}, err
		}
		return renderRanking(top), nil

	case "give":
		if !s.IsAdmin(inv.UserID) {
			return Reply{}, errNotAdmin
		}
		target := strings.TrimSpace(inv.Option("user"))
		if target == "" {
			return Reply{}, errMissingUser
		}
		amount, err := strconv.ParseInt(strings.TrimSpace(inv.Option("amount")), 10, 64)
		if err != nil || amount == 0 {
			return Reply{}, errInvalidAmount
		}
		bal, err := s.Give(ctx, inv.UserID, target, amount)
		if err != nil {
			return Reply{}, err
		}
		return Reply{Content: fmt.Sprintf("Adjusted <@%s> by %d. Balance: %d", target, amount, bal)}, nil

	case "draw":
		if !s.IsAdmin(inv.UserID) {
			return Reply{}, errNotAdmin
		}
		date := s.Today()
		if raw := strings.TrimSpace(inv.Option("date")); raw != "" {
			d, err := time.Parse("2006-01-02", raw)
			if err != nil {
				return Reply{}, errInvalidDate
			}
			date = d
		}
		res, err := s.DrawLottery(ctx, date)
		if err != nil {
			return Reply{}, err
		}
		return Reply{Content: fmt.Sprintf("Drew %s: %s. %d winner(s), %d paid.",
			res.DrawDate.Format("2006-01-02"), game.FormatNumbers(res.Numbers), len(res.Winners), res.Paid)}, nil
	}
	return Reply{}, errUnknownCommand
}

func (s *Service) errorReply(inv Invocation, err error) Reply {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		metricRejectionsTotal.Add(1)
		return Reply{Content: verr.Message, Ephemeral: true}
	case errors.Is(err, ErrSessionNotFound):
		metricRejectionsTotal.Add(1)
		return Reply{Content: "This is not your game, or it has already ended.", Ephemeral: true}
	}
	metricErrorsTotal.Add(1)
	log.Error().Err(err).Str("command", inv.Command).Str("user_id", inv.UserID).Msg("command failed")
	return Reply{Content: "Something went wrong. Please try again later.", Ephemeral: true}
}

// Today is the current calendar day in the configured location, as a UTC
// midnight date value.
func (s *Service) Today() time.Time {
	return s.dayOf(s.now())
}

// PreviousDay is the draw date a nightly job running at now settles.
func (s *Service) PreviousDay(now time.Time) time.Time {
	return s.dayOf(now).AddDate(0, 0, -1)
}

func (s *Service) dayOf(t time.Time) time.Time {
	y, m, d := t.In(s.cfg.DayLocation).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *Service) sameDay(last, now time.Time) bool {
	return s.dayOf(last).Equal(s.dayOf(now))
}

// Intn draws from the shared source. *rand.Rand is not safe for concurrent
// use, so every engine goes through this.
func (s *Service) Intn(n int) int {
	s.srcMu.Lock()
	defer s.srcMu.Unlock()
	return s.src.Intn(n)
}

func parseBet(raw string) (int64, error) {
	bet, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || bet <= 0 {
		return 0, errInvalidBet
	}
	return bet, nil
}

// stake checks the bet against the balance and debits it.
func (s *Service) stake(ctx context.Context, userID string, bet int64, gameName string) (int64, error) {
	if bet <= 0 {
		return 0, errInvalidBet
	}
	acc, err := s.ledger.Account(ctx, userID)
	if err != nil {
		return 0, err
	}
	if bet > acc.Balance {
		return 0, errInsufficientFunds
	}
	bal, err := s.ledger.Stake(ctx, userID, bet, gameName)
	if err != nil {
		if errors.Is(err, store.ErrInsufficientFunds) {
			return 0, errInsufficientFunds
		}
		return 0, err
	}
	metricStakedTotal.Add(bet)
	return bal, nil
}

func (s *Service) payout(ctx context.Context, userID string, amount int64, gameName string) (int64, error) {
	bal, err := s.ledger.Payout(ctx, userID, amount, gameName)
	if err != nil {
		return 0, err
	}
	metricPaidTotal.Add(amount)
	return bal, nil
}
