package casino

import (
	"context"
	"errors"

	"casino-bot/internal/store"
)

// Claim credits the daily allowance once per calendar day.
func (s *Service) Claim(ctx context.Context, userID string) (int64, error) {
	bal, err := s.ledger.Claim(ctx, userID, s.cfg.DailyClaimAmount, s.now(), s.sameDay)
	if err != nil {
		if errors.Is(err, store.ErrAlreadyClaimed) {
			return 0, errAlreadyClaimed
		}
		return 0, err
	}
	return bal, nil
}

// Give is the administrative balance adjustment. Negative amounts take coins
// away, clamped at zero.
func (s *Service) Give(ctx context.Context, adminID, targetID string, amount int64) (int64, error) {
	if !s.IsAdmin(adminID) {
		return 0, errNotAdmin
	}
	if targetID == "" {
		return 0, errMissingUser
	}
	if amount == 0 {
		return 0, errInvalidAmount
	}
	if _, err := s.ledger.Account(ctx, targetID); err != nil {
		return 0, err
	}
	return s.ledger.Grant(ctx, targetID, amount)
}
