package ledger

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"casino-bot/internal/store"
)

// Store is the persistence the ledger needs. *store.Store implements it.
type Store interface {
	GetOrCreateAccount(ctx context.Context, userID string, initial int64) (store.Account, error)
	AdjustBalance(ctx context.Context, userID string, delta int64, reason string, opts store.AdjustOptions) (int64, error)
	Claim(ctx context.Context, userID string, amount int64, now time.Time, sameWindow func(last, now time.Time) bool) (int64, error)
	PurchaseTicket(ctx context.Context, p store.TicketPurchase, sameWindow func(last, now time.Time) bool) (store.Ticket, int64, error)
	SettleDraw(ctx context.Context, d store.Draw, payouts []store.Payout) error
}

var ErrInvalidAmount = errors.New("invalid_amount")

// Ledger is the balance service. Every mutation of one account goes through
// that account's lock so read-modify-write cycles never interleave in-process.
type Ledger struct {
	Store   Store
	Initial int64

	mu    sync.Mutex
	locks map[string]*accountLock
}

type accountLock struct {
	mu   sync.Mutex
	refs int
}

func New(s Store, initial int64) *Ledger {
	return &Ledger{Store: s, Initial: initial, locks: map[string]*accountLock{}}
}

func (l *Ledger) Account(ctx context.Context, userID string) (store.Account, error) {
	return l.Store.GetOrCreateAccount(ctx, userID, l.Initial)
}

// Adjust applies delta clamped at zero and logs it under reason.
func (l *Ledger) Adjust(ctx context.Context, userID string, delta int64, reason string) (int64, error) {
	unlock := l.lock(userID)
	defer unlock()
	return l.Store.AdjustBalance(ctx, userID, delta, reason, store.AdjustOptions{})
}

// Stake debits a wager and fails with store.ErrInsufficientFunds rather than
// clamping.
func (l *Ledger) Stake(ctx context.Context, userID string, amount int64, game string) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	unlock := l.lock(userID)
	defer unlock()
	return l.Store.AdjustBalance(ctx, userID, -amount, game+"_bet", store.AdjustOptions{RequireFunds: true})
}

func (l *Ledger) Payout(ctx context.Context, userID string, amount int64, game string) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	return l.Adjust(ctx, userID, amount, game+"_payout")
}

func (l *Ledger) Refund(ctx context.Context, userID string, amount int64, game string) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	return l.Adjust(ctx, userID, amount, game+"_refund")
}

// Grant is an administrative adjustment; negative amounts take money away.
func (l *Ledger) Grant(ctx context.Context, userID string, amount int64) (int64, error) {
	if amount == 0 {
		return 0, ErrInvalidAmount
	}
	return l.Adjust(ctx, userID, amount, "admin_grant")
}

func (l *Ledger) Claim(ctx context.Context, userID string, amount int64, now time.Time, sameWindow func(last, now time.Time) bool) (int64, error) {
	unlock := l.lock(userID)
	defer unlock()
	return l.Store.Claim(ctx, userID, amount, now, sameWindow)
}

func (l *Ledger) BuyTicket(ctx context.Context, p store.TicketPurchase, sameWindow func(last, now time.Time) bool) (store.Ticket, int64, error) {
	unlock := l.lock(p.UserID)
	defer unlock()
	return l.Store.PurchaseTicket(ctx, p, sameWindow)
}

// SettleDraw holds the locks of every paid account, taken in sorted order.
func (l *Ledger) SettleDraw(ctx context.Context, d store.Draw, payouts []store.Payout) error {
	ids := make([]string, 0, len(payouts))
	seen := map[string]bool{}
	for _, p := range payouts {
		if !seen[p.UserID] {
			seen[p.UserID] = true
			ids = append(ids, p.UserID)
		}
	}
	sort.Strings(ids)
	for _, id := range ids {
		unlock := l.lock(id)
		defer unlock()
	}
	return l.Store.SettleDraw(ctx, d, payouts)
}

func (l *Ledger) lock(userID string) func() {
	l.mu.Lock()
	al := l.locks[userID]
	if al == nil {
		al = &accountLock{}
		l.locks[userID] = al
	}
	al.refs++
	l.mu.Unlock()

	al.mu.Lock()
	return func() {
		al.mu.Unlock()
		l.mu.Lock()
		al.refs--
		if al.refs == 0 {
			delete(l.locks, userID)
		}
		l.mu.Unlock()
	}
}
