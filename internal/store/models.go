package store

import "time"

type Account struct {
	UserID      string    `json:"user_id"`
	Balance     int64     `json:"balance"`
	LastClaim   time.Time `json:"last_claim"`
	LastLottery time.Time `json:"last_lottery"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Transaction struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Amount    int64     `json:"amount"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

type Ticket struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Numbers   []int     `json:"numbers"`
	DrawDate  time.Time `json:"draw_date"`
	CreatedAt time.Time `json:"created_at"`
}

type Draw struct {
	DrawDate time.Time `json:"draw_date"`
	Numbers  []int     `json:"numbers"`
	Tickets  int       `json:"tickets"`
	Winners  int       `json:"winners"`
	Paid     int64     `json:"paid"`
	DrawnAt  time.Time `json:"drawn_at"`
}

// Payout is a single credit applied while settling a draw.
type Payout struct {
	UserID string
	Amount int64
	Reason string
}

type TransactionFilter struct {
	UserID string
	Reason string
	From   *time.Time
	To     *time.Time
}
