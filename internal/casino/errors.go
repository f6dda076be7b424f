package casino

import (
	"errors"
	"fmt"
)

var (
	ErrValidation      = errors.New("validation_failed")
	ErrSessionNotFound = errors.New("session_not_found")
)

// ValidationError is a rejection reported back to the caller. Nothing has
// been written when one is returned.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Code
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func reject(code, format string, args ...any) *ValidationError {
	return &ValidationError{Code: code, Message: fmt.Sprintf(format, args...)}
}

var (
	errInvalidBet        = reject("invalid_bet", "Bet must be a positive whole number.")
	errInsufficientFunds = reject("insufficient_balance", "You don't have enough coins for that bet.")
	errAlreadyClaimed    = reject("already_claimed", "You already claimed your daily coins today. Come back tomorrow.")
	errAlreadyPurchased  = reject("already_purchased", "You already bought a lottery ticket today.")
	errNotAdmin          = reject("not_admin", "Only administrators can do that.")
	errInvalidAmount     = reject("invalid_amount", "Amount must be a non-zero whole number.")
	errMissingUser       = reject("missing_user", "Pick a user.")
	errInvalidDate       = reject("invalid_date", "Dates look like 2024-05-01.")
	errBlackjackActive   = reject("blackjack_in_progress", "Finish your current blackjack hand first.")
	errRaceRunning       = reject("race_running", "A race is already running in this channel. Wait for the next one.")
	errAlreadyBet        = reject("already_bet", "You already have a horse in this race.")
	errAlreadyDrawn      = reject("already_drawn", "That date has already been drawn.")
	errDrawClosed        = reject("draw_closed", "Today's lottery has already been drawn. Tickets go on sale again tomorrow.")
	errUnknownCommand    = reject("unknown_command", "Unknown command.")
)
