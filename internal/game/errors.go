package game

import "errors"

var (
	ErrNotPlayerTurn = errors.New("not_player_turn")
	ErrInvalidChoice = errors.New("invalid_choice")
	ErrInvalidHorse  = errors.New("invalid_horse")

	ErrTicketSize      = errors.New("ticket_needs_six_numbers")
	ErrTicketRange     = errors.New("ticket_number_out_of_range")
	ErrTicketDuplicate = errors.New("ticket_duplicate_number")
)
