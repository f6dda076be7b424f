package casino

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"casino-bot/internal/announce"
	"casino-bot/internal/game"
	"casino-bot/internal/store"

	"github.com/rs/zerolog/log"
)

const (
	drawAttempts    = 3
	announceTimeout = time.Minute
)

// BuyTicket buys today's ticket. A nil numbers slice is a quick pick.
func (s *Service) BuyTicket(ctx context.Context, userID string, numbers []int) (TicketPurchase, error) {
	if numbers == nil {
		numbers = game.PickNumbers(s)
	} else {
		nums, err := game.ValidateTicket(numbers)
		if err != nil {
			return TicketPurchase{}, ticketRejection(err)
		}
		numbers = nums
	}
	now := s.now()
	drawDate := s.dayOf(now)
	if _, err := s.store.GetDraw(ctx, drawDate); err == nil {
		return TicketPurchase{}, errDrawClosed
	} else if !errors.Is(err, store.ErrNotFound) {
		return TicketPurchase{}, err
	}
	bal, err := s.balance(ctx, userID)
	if err != nil {
		return TicketPurchase{}, err
	}
	if bal < s.cfg.TicketPrice {
		return TicketPurchase{}, errInsufficientFunds
	}

	t, bal, err := s.ledger.BuyTicket(ctx, store.TicketPurchase{
		UserID:   userID,
		Numbers:  numbers,
		Price:    s.cfg.TicketPrice,
		DrawDate: drawDate,
		Now:      now,
	}, s.sameDay)
	switch {
	case errors.Is(err, store.ErrDrawClosed):
		return TicketPurchase{}, errDrawClosed
	case errors.Is(err, store.ErrAlreadyPurchased):
		return TicketPurchase{}, errAlreadyPurchased
	case errors.Is(err, store.ErrInsufficientFunds):
		return TicketPurchase{}, errInsufficientFunds
	case err != nil:
		return TicketPurchase{}, err
	}
	return TicketPurchase{Ticket: t, Balance: bal}, nil
}

// DrawLottery draws the winning numbers for date, pays every winning ticket
// and announces the result in the background. A date is drawn at most once
// and closes ticket sales for that date.
func (s *Service) DrawLottery(ctx context.Context, date time.Time) (DrawResult, error) {
	y, m, d := date.Date()
	date = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	var (
		res DrawResult
		ann announce.Announcement
		err error
	)
	for attempt := 1; ; attempt++ {
		res, ann, err = s.settleDraw(ctx, date)
		if !errors.Is(err, store.ErrDrawStale) || attempt == drawAttempts {
			break
		}
		log.Info().Str("draw_date", date.Format("2006-01-02")).Int("attempt", attempt).Msg("tickets sold during draw, drawing again")
	}
	if err != nil {
		return DrawResult{}, err
	}
	metricLotteryDrawsTotal.Add(1)
	metricPaidTotal.Add(res.Paid)
	log.Info().
		Str("draw_date", date.Format("2006-01-02")).
		Ints("numbers", res.Numbers).
		Int("tickets", res.Tickets).
		Int("winners", len(res.Winners)).
		Int64("paid", res.Paid).
		Msg("lottery drawn")

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), announceTimeout)
		defer cancel()
		if err := s.announcer.Announce(actx, ann); err != nil {
			log.Warn().Err(err).Str("draw_date", date.Format("2006-01-02")).Msg("lottery announce failed")
		}
	}()
	return res, nil
}

func (s *Service) settleDraw(ctx context.Context, date time.Time) (DrawResult, announce.Announcement, error) {
	if _, err := s.store.GetDraw(ctx, date); err == nil {
		return DrawResult{}, announce.Announcement{}, errAlreadyDrawn
	} else if !errors.Is(err, store.ErrNotFound) {
		return DrawResult{}, announce.Announcement{}, err
	}
	tickets, err := s.store.TicketsForDate(ctx, date)
	if err != nil {
		return DrawResult{}, announce.Announcement{}, fmt.Errorf("tickets for %s: %w", date.Format("2006-01-02"), err)
	}

	numbers := game.PickNumbers(s)
	res := DrawResult{DrawDate: date, Numbers: numbers, Tickets: len(tickets)}
	ann := announce.Announcement{DrawDate: date, Numbers: numbers, Tickets: len(tickets)}
	for _, t := range tickets {
		matches := game.CountMatches(t.Numbers, numbers)
		reward := game.LotteryReward(matches)
		if reward <= 0 {
			continue
		}
		res.Winners = append(res.Winners, store.Payout{UserID: t.UserID, Amount: reward, Reason: "lottery_reward"})
		res.Paid += reward
		ann.Winners = append(ann.Winners, announce.Winner{UserID: t.UserID, Matches: matches, Amount: reward})
	}

	err = s.ledger.SettleDraw(ctx, store.Draw{
		DrawDate: date,
		Numbers:  numbers,
		Tickets:  len(tickets),
		Winners:  len(res.Winners),
		Paid:     res.Paid,
		DrawnAt:  s.now(),
	}, res.Winners)
	if errors.Is(err, store.ErrAlreadyDrawn) {
		return DrawResult{}, announce.Announcement{}, errAlreadyDrawn
	}
	if err != nil {
		return DrawResult{}, announce.Announcement{}, err
	}
	return res, ann, nil
}

func (s *Service) lotteryStatus(ctx context.Context, userID string) (Reply, error) {
	today := s.Today()
	var b strings.Builder

	t, err := s.store.TicketForUser(ctx, userID, today)
	switch {
	case err == nil:
		fmt.Fprintf(&b, "🎟️ Your ticket for %s: %s", today.Format("2006-01-02"), game.FormatNumbers(t.Numbers))
	case errors.Is(err, store.ErrNotFound):
		fmt.Fprintf(&b, "You have no ticket for %s yet. A ticket costs %d coins.", today.Format("2006-01-02"), s.cfg.TicketPrice)
	default:
		return Reply{}, err
	}

	prev := today.AddDate(0, 0, -1)
	draw, err := s.store.GetDraw(ctx, prev)
	if errors.Is(err, store.ErrNotFound) {
		return Reply{Content: b.String(), Ephemeral: true}, nil
	}
	if err != nil {
		return Reply{}, err
	}
	fmt.Fprintf(&b, "\nLast draw (%s): %s, %d winner(s).", prev.Format("2006-01-02"), game.FormatNumbers(draw.Numbers), draw.Winners)
	old, err := s.store.TicketForUser(ctx, userID, prev)
	switch {
	case err == nil:
		matches := game.CountMatches(old.Numbers, draw.Numbers)
		fmt.Fprintf(&b, "\nYour ticket matched %d and won %d.", matches, game.LotteryReward(matches))
	case !errors.Is(err, store.ErrNotFound):
		return Reply{}, err
	}
	return Reply{Content: b.String(), Ephemeral: true}, nil
}

func ticketRejection(err error) error {
	switch {
	case errors.Is(err, game.ErrTicketSize):
		return reject("invalid_ticket", "Pick exactly %d numbers, or none for a quick pick.", game.LotteryPicks)
	case errors.Is(err, game.ErrTicketRange):
		return reject("invalid_ticket", "Numbers must be whole numbers from %d to %d.", game.LotteryMin, game.LotteryMax)
	case errors.Is(err, game.ErrTicketDuplicate):
		return reject("invalid_ticket", "Numbers must not repeat.")
	}
	return err
}
