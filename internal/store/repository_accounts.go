package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

const accountColumns = `user_id, balance, last_claim, last_lottery, created_at, updated_at`

// GetOrCreateAccount returns the user's account, inserting one holding
// initial on first reference.
func (s *Store) GetOrCreateAccount(ctx context.Context, userID string, initial int64) (Account, error) {
	if _, err := s.Pool.Exec(ctx,
		`INSERT INTO accounts (user_id, balance) VALUES ($1, $2) ON CONFLICT (user_id) DO NOTHING`,
		userID, initial); err != nil {
		return Account{}, fmt.Errorf("ensure account: %w", err)
	}
	return s.GetAccount(ctx, userID)
}

func (s *Store) GetAccount(ctx context.Context, userID string) (Account, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE user_id = $1`, userID)
	acc, err := scanAccount(row)
	if err != nil {
		return Account{}, mapNotFound(err)
	}
	return acc, nil
}

func (s *Store) RecordClaim(ctx context.Context, userID string, when time.Time) error {
	return recordClaim(ctx, s.Pool, userID, when)
}

func (s *Store) RecordLotteryPurchase(ctx context.Context, userID string, when time.Time) error {
	return recordLotteryPurchase(ctx, s.Pool, userID, when)
}

func (s *Store) TopBalances(ctx context.Context, limit int) ([]Account, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.Pool.Query(ctx,
		`SELECT `+accountColumns+` FROM accounts ORDER BY balance DESC, user_id ASC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Account, 0, limit)
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, acc)
	}
	return out, rows.Err()
}

// Claim credits the daily reward unless sameWindow reports that the previous
// claim falls in the same period as now.
func (s *Store) Claim(ctx context.Context, userID string, amount int64, now time.Time, sameWindow func(last, now time.Time) bool) (int64, error) {
	var newBal int64
	err := s.inTx(ctx, func(q querier) error {
		var last pgtype.Timestamptz
		if err := q.QueryRow(ctx,
			`SELECT last_claim FROM accounts WHERE user_id = $1 FOR UPDATE`, userID).Scan(&last); err != nil {
			return mapNotFound(err)
		}
		if last.Valid && sameWindow(last.Time, now) {
			return ErrAlreadyClaimed
		}
		bal, err := adjustInTx(ctx, q, userID, amount, "daily_claim", false, now)
		if err != nil {
			return err
		}
		if err := recordClaim(ctx, q, userID, now); err != nil {
			return err
		}
		newBal = bal
		return nil
	})
	if err != nil {
		return 0, err
	}
	return newBal, nil
}

func recordClaim(ctx context.Context, q querier, userID string, when time.Time) error {
	_, err := q.Exec(ctx, `UPDATE accounts SET last_claim = $1, updated_at = now() WHERE user_id = $2`, when, userID)
	return err
}

func recordLotteryPurchase(ctx context.Context, q querier, userID string, when time.Time) error {
	_, err := q.Exec(ctx, `UPDATE accounts SET last_lottery = $1, updated_at = now() WHERE user_id = $2`, when, userID)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (Account, error) {
	var (
		acc         Account
		lastClaim   pgtype.Timestamptz
		lastLottery pgtype.Timestamptz
	)
	if err := row.Scan(&acc.UserID, &acc.Balance, &lastClaim, &lastLottery, &acc.CreatedAt, &acc.UpdatedAt); err != nil {
		return Account{}, err
	}
	acc.LastClaim = timeVal(lastClaim)
	acc.LastLottery = timeVal(lastLottery)
	return acc, nil
}
