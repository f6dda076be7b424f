package store

import (
	"context"
	"time"
)

type TicketPurchase struct {
	UserID   string
	Numbers  []int
	Price    int64
	DrawDate time.Time
	Now      time.Time
}

// PurchaseTicket debits the ticket price, stores the ticket and stamps the
// purchase time as one unit. A second ticket for the same draw date, or a
// purchase inside the same window as the last one, is rejected. Once a date
// has been drawn its sales are closed.
func (s *Store) PurchaseTicket(ctx context.Context, p TicketPurchase, sameWindow func(last, now time.Time) bool) (Ticket, int64, error) {
	var (
		ticket Ticket
		newBal int64
	)
	err := s.inTx(ctx, func(q querier) error {
		if err := lockDrawDate(ctx, q, p.DrawDate); err != nil {
			return err
		}
		var drawn bool
		if err := q.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM lottery_draws WHERE draw_date = $1)`, dateParam(p.DrawDate)).Scan(&drawn); err != nil {
			return err
		}
		if drawn {
			return ErrDrawClosed
		}
		acc, err := scanAccount(q.QueryRow(ctx,
			`SELECT `+accountColumns+` FROM accounts WHERE user_id = $1 FOR UPDATE`, p.UserID))
		if err != nil {
			return mapNotFound(err)
		}
		if !acc.LastLottery.IsZero() && sameWindow(acc.LastLottery, p.Now) {
			return ErrAlreadyPurchased
		}
		bal, err := adjustInTx(ctx, q, p.UserID, -p.Price, "lottery_ticket", true, p.Now)
		if err != nil {
			return err
		}
		ticket = Ticket{UserID: p.UserID, Numbers: append([]int(nil), p.Numbers...), DrawDate: dateParam(p.DrawDate).Time}
		err = q.QueryRow(ctx, `
			INSERT INTO lottery_tickets (user_id, numbers, draw_date, created_at)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at`,
			p.UserID, numbersParam(p.Numbers), dateParam(p.DrawDate), p.Now).Scan(&ticket.ID, &ticket.CreatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrAlreadyPurchased
			}
			return err
		}
		if err := recordLotteryPurchase(ctx, q, p.UserID, p.Now); err != nil {
			return err
		}
		newBal = bal
		return nil
	})
	if err != nil {
		return Ticket{}, 0, err
	}
	return ticket, newBal, nil
}

func (s *Store) TicketsForDate(ctx context.Context, drawDate time.Time) ([]Ticket, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT id, user_id, numbers, draw_date, created_at
		FROM lottery_tickets
		WHERE draw_date = $1
		ORDER BY id ASC`, dateParam(drawDate))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) TicketForUser(ctx context.Context, userID string, drawDate time.Time) (*Ticket, error) {
	row := s.Pool.QueryRow(ctx, `
		SELECT id, user_id, numbers, draw_date, created_at
		FROM lottery_tickets
		WHERE user_id = $1 AND draw_date = $2`, userID, dateParam(drawDate))
	t, err := scanTicket(row)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &t, nil
}

// SettleDraw records the draw for its date and credits every payout in the
// same transaction. Drawing a date twice returns ErrAlreadyDrawn. d.Tickets
// must match the tickets stored for the date, otherwise ErrDrawStale is
// returned and nothing is written.
func (s *Store) SettleDraw(ctx context.Context, d Draw, payouts []Payout) error {
	return s.inTx(ctx, func(q querier) error {
		if err := lockDrawDate(ctx, q, d.DrawDate); err != nil {
			return err
		}
		var paid int64
		for _, p := range payouts {
			paid += p.Amount
		}
		tag, err := q.Exec(ctx, `
			INSERT INTO lottery_draws (draw_date, numbers, tickets, winners, paid, drawn_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (draw_date) DO NOTHING`,
			dateParam(d.DrawDate), numbersParam(d.Numbers), d.Tickets, len(payouts), paid, d.DrawnAt)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrAlreadyDrawn
		}
		var sold int
		if err := q.QueryRow(ctx,
			`SELECT count(*) FROM lottery_tickets WHERE draw_date = $1`, dateParam(d.DrawDate)).Scan(&sold); err != nil {
			return err
		}
		if sold != d.Tickets {
			return ErrDrawStale
		}
		for _, p := range payouts {
			reason := p.Reason
			if reason == "" {
				reason = "lottery_reward"
			}
			if _, err := adjustInTx(ctx, q, p.UserID, p.Amount, reason, false, d.DrawnAt); err != nil {
				return err
			}
		}
		return nil
	})
}

// lockDrawDate serializes ticket sales and settlement of one draw date until
// the transaction ends.
func lockDrawDate(ctx context.Context, q querier, date time.Time) error {
	_, err := q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, "lottery_draw:"+date.Format("2006-01-02"))
	return err
}

func (s *Store) GetDraw(ctx context.Context, drawDate time.Time) (*Draw, error) {
	var (
		d    Draw
		nums []int16
	)
	err := s.Pool.QueryRow(ctx, `
		SELECT draw_date, numbers, tickets, winners, paid, drawn_at
		FROM lottery_draws WHERE draw_date = $1`, dateParam(drawDate)).
		Scan(&d.DrawDate, &nums, &d.Tickets, &d.Winners, &d.Paid, &d.DrawnAt)
	if err != nil {
		return nil, mapNotFound(err)
	}
	d.Numbers = numbersVal(nums)
	return &d, nil
}

func scanTicket(row rowScanner) (Ticket, error) {
	var (
		t    Ticket
		nums []int16
	)
	if err := row.Scan(&t.ID, &t.UserID, &nums, &t.DrawDate, &t.CreatedAt); err != nil {
		return Ticket{}, err
	}
	t.Numbers = numbersVal(nums)
	return t, nil
}
