package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"casino-bot/internal/store"
)

// MemStore is an in-memory stand-in for *store.Store with the same
// transactional contract: a failed call leaves no trace.
type MemStore struct {
	mu       sync.Mutex
	accounts map[string]*store.Account
	txs      []store.Transaction
	tickets  []store.Ticket
	draws    map[string]store.Draw
	nextID   int64

	// FailAppend makes the next transaction insert fail with this error.
	FailAppend error
}

func NewMemStore() *MemStore {
	return &MemStore{accounts: map[string]*store.Account{}, draws: map[string]store.Draw{}}
}

func (m *MemStore) GetOrCreateAccount(_ context.Context, userID string, initial int64) (store.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc := m.accounts[userID]
	if acc == nil {
		now := time.Now()
		acc = &store.Account{UserID: userID, Balance: initial, CreatedAt: now, UpdatedAt: now}
		m.accounts[userID] = acc
	}
	return *acc, nil
}

func (m *MemStore) AdjustBalance(_ context.Context, userID string, delta int64, reason string, opts store.AdjustOptions) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.adjustLocked(userID, delta, reason, opts.RequireFunds, time.Now())
}

func (m *MemStore) Claim(_ context.Context, userID string, amount int64, now time.Time, sameWindow func(last, now time.Time) bool) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc := m.accounts[userID]
	if acc == nil {
		return 0, store.ErrNotFound
	}
	if !acc.LastClaim.IsZero() && sameWindow(acc.LastClaim, now) {
		return 0, store.ErrAlreadyClaimed
	}
	bal, err := m.adjustLocked(userID, amount, "daily_claim", false, now)
	if err != nil {
		return 0, err
	}
	acc.LastClaim = now
	return bal, nil
}

func (m *MemStore) PurchaseTicket(_ context.Context, p store.TicketPurchase, sameWindow func(last, now time.Time) bool) (store.Ticket, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc := m.accounts[p.UserID]
	if acc == nil {
		return store.Ticket{}, 0, store.ErrNotFound
	}
	day := dateKey(p.DrawDate)
	if _, ok := m.draws[day]; ok {
		return store.Ticket{}, 0, store.ErrDrawClosed
	}
	if !acc.LastLottery.IsZero() && sameWindow(acc.LastLottery, p.Now) {
		return store.Ticket{}, 0, store.ErrAlreadyPurchased
	}
	for _, t := range m.tickets {
		if t.UserID == p.UserID && dateKey(t.DrawDate) == day {
			return store.Ticket{}, 0, store.ErrAlreadyPurchased
		}
	}
	bal, err := m.adjustLocked(p.UserID, -p.Price, "lottery_ticket", true, p.Now)
	if err != nil {
		return store.Ticket{}, 0, err
	}
	m.nextID++
	y, mo, d := p.DrawDate.Date()
	t := store.Ticket{
		ID:        m.nextID,
		UserID:    p.UserID,
		Numbers:   append([]int(nil), p.Numbers...),
		DrawDate:  time.Date(y, mo, d, 0, 0, 0, 0, time.UTC),
		CreatedAt: p.Now,
	}
	m.tickets = append(m.tickets, t)
	acc.LastLottery = p.Now
	return t, bal, nil
}

func (m *MemStore) SettleDraw(_ context.Context, d store.Draw, payouts []store.Payout) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := dateKey(d.DrawDate)
	if _, ok := m.draws[key]; ok {
		return store.ErrAlreadyDrawn
	}
	sold := 0
	for _, t := range m.tickets {
		if dateKey(t.DrawDate) == key {
			sold++
		}
	}
	if sold != d.Tickets {
		return store.ErrDrawStale
	}
	snapshot := m.snapshotLocked()
	for _, p := range payouts {
		reason := p.Reason
		if reason == "" {
			reason = "lottery_reward"
		}
		if _, err := m.adjustLocked(p.UserID, p.Amount, reason, false, d.DrawnAt); err != nil {
			m.restoreLocked(snapshot)
			return err
		}
		d.Paid += p.Amount
	}
	d.Winners = len(payouts)
	m.draws[key] = d
	return nil
}

func (m *MemStore) TicketsForDate(_ context.Context, drawDate time.Time) ([]store.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []store.Ticket
	for _, t := range m.tickets {
		if dateKey(t.DrawDate) == dateKey(drawDate) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *MemStore) TicketForUser(_ context.Context, userID string, drawDate time.Time) (*store.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tickets {
		if t.UserID == userID && dateKey(t.DrawDate) == dateKey(drawDate) {
			tc := t
			return &tc, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *MemStore) GetDraw(_ context.Context, drawDate time.Time) (*store.Draw, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.draws[dateKey(drawDate)]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &d, nil
}

func (m *MemStore) TopBalances(_ context.Context, limit int) ([]store.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]store.Account, 0, len(m.accounts))
	for _, a := range m.accounts {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Balance == out[j].Balance {
			return out[i].UserID < out[j].UserID
		}
		return out[i].Balance > out[j].Balance
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Transactions returns the audit rows of userID, oldest first.
func (m *MemStore) Transactions(userID string) []store.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []store.Transaction
	for _, t := range m.txs {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out
}

func (m *MemStore) Balance(userID string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if acc := m.accounts[userID]; acc != nil {
		return acc.Balance
	}
	return 0
}

func (m *MemStore) SetBalance(userID string, balance int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc := m.accounts[userID]
	if acc == nil {
		acc = &store.Account{UserID: userID}
		m.accounts[userID] = acc
	}
	acc.Balance = balance
}

func (m *MemStore) adjustLocked(userID string, delta int64, reason string, requireFunds bool, now time.Time) (int64, error) {
	acc := m.accounts[userID]
	if acc == nil {
		return 0, store.ErrNotFound
	}
	if requireFunds && acc.Balance+delta < 0 {
		return 0, store.ErrInsufficientFunds
	}
	if m.FailAppend != nil {
		err := m.FailAppend
		m.FailAppend = nil
		return 0, err
	}
	acc.Balance = max(acc.Balance+delta, 0)
	acc.UpdatedAt = now
	m.txs = append(m.txs, store.Transaction{
		ID:        int64(len(m.txs) + 1),
		UserID:    userID,
		Amount:    delta,
		Reason:    reason,
		CreatedAt: now,
	})
	return acc.Balance, nil
}

type memSnapshot struct {
	balances map[string]int64
	txCount  int
}

func (m *MemStore) snapshotLocked() memSnapshot {
	s := memSnapshot{balances: map[string]int64{}, txCount: len(m.txs)}
	for id, a := range m.accounts {
		s.balances[id] = a.Balance
	}
	return s
}

func (m *MemStore) restoreLocked(s memSnapshot) {
	for id, bal := range s.balances {
		m.accounts[id].Balance = bal
	}
	m.txs = m.txs[:s.txCount]
}

func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
