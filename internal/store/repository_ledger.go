package store

import (
	"context"
	"fmt"
	"time"
)

type AdjustOptions struct {
	// RequireFunds rejects a debit larger than the balance instead of
	// clamping the result at zero.
	RequireFunds bool
}

// AdjustBalance applies delta to the balance, clamped at zero, and appends a
// transaction row in the same database transaction.
func (s *Store) AdjustBalance(ctx context.Context, userID string, delta int64, reason string, opts AdjustOptions) (int64, error) {
	var newBal int64
	err := s.inTx(ctx, func(q querier) error {
		bal, err := adjustInTx(ctx, q, userID, delta, reason, opts.RequireFunds, time.Now())
		newBal = bal
		return err
	})
	if err != nil {
		return 0, err
	}
	return newBal, nil
}

func (s *Store) AppendTransaction(ctx context.Context, userID string, amount int64, reason string, when time.Time) error {
	return appendTransaction(ctx, s.Pool, userID, amount, reason, when)
}

func (s *Store) ListTransactions(ctx context.Context, f TransactionFilter, limit, offset int) ([]Transaction, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT id, user_id, amount, reason, created_at
		FROM transactions
		WHERE ($1 = '' OR user_id = $1)
		  AND ($2 = '' OR reason = $2)
		  AND ($3::timestamptz IS NULL OR created_at >= $3)
		  AND ($4::timestamptz IS NULL OR created_at < $4)
		ORDER BY id DESC
		LIMIT $5 OFFSET $6`,
		f.UserID, f.Reason, timeParam(f.From), timeParam(f.To), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Transaction, 0, limit)
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Amount, &t.Reason, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func adjustInTx(ctx context.Context, q querier, userID string, delta int64, reason string, requireFunds bool, now time.Time) (int64, error) {
	var bal int64
	if err := q.QueryRow(ctx,
		`SELECT balance FROM accounts WHERE user_id = $1 FOR UPDATE`, userID).Scan(&bal); err != nil {
		return 0, mapNotFound(err)
	}
	if requireFunds && bal+delta < 0 {
		return 0, ErrInsufficientFunds
	}
	newBal := max(bal+delta, 0)
	if _, err := q.Exec(ctx,
		`UPDATE accounts SET balance = $1, updated_at = now() WHERE user_id = $2`, newBal, userID); err != nil {
		return 0, fmt.Errorf("update balance: %w", err)
	}
	if err := appendTransaction(ctx, q, userID, delta, reason, now); err != nil {
		return 0, fmt.Errorf("append transaction: %w", err)
	}
	return newBal, nil
}

func appendTransaction(ctx context.Context, q querier, userID string, amount int64, reason string, when time.Time) error {
	_, err := q.Exec(ctx,
		`INSERT INTO transactions (user_id, amount, reason, created_at) VALUES ($1, $2, $3, $4)`,
		userID, amount, reason, when)
	return err
}
