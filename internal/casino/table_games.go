package casino

import (
	"context"

	"casino-bot/internal/game"
)

// Slot debits the bet, spins and credits the gross payout, if any.
func (s *Service) Slot(ctx context.Context, userID string, bet int64) (SlotOutcome, error) {
	bal, err := s.stake(ctx, userID, bet, "slot")
	if err != nil {
		return SlotOutcome{}, err
	}
	res := game.SpinSlot(s, bet)
	if res.Payout > 0 {
		if bal, err = s.payout(ctx, userID, res.Payout, "slot"); err != nil {
			return SlotOutcome{}, err
		}
	}
	return SlotOutcome{Bet: bet, Result: res, Balance: bal}, nil
}

func (s *Service) Baccarat(ctx context.Context, userID string, bet int64, side game.BaccaratSide) (BaccaratOutcome, error) {
	if _, err := game.ParseBaccaratSide(string(side)); err != nil {
		return BaccaratOutcome{}, reject("invalid_choice", "Choose player, banker or tie.")
	}
	bal, err := s.stake(ctx, userID, bet, "baccarat")
	if err != nil {
		return BaccaratOutcome{}, err
	}
	res, err := game.PlayBaccarat(s, bet, side)
	if err != nil {
		return BaccaratOutcome{}, err
	}
	if res.Payout > 0 {
		if bal, err = s.payout(ctx, userID, res.Payout, "baccarat"); err != nil {
			return BaccaratOutcome{}, err
		}
	}
	return BaccaratOutcome{Bet: bet, Result: res, Balance: bal}, nil
}
