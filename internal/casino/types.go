package casino

import (
	"context"
	"time"

	"casino-bot/internal/game"
	"casino-bot/internal/store"
)

// Invocation is one command or button press coming from the chat platform.
// Options carry the raw option values by name.
type Invocation struct {
	Command   string
	UserID    string
	ChannelID string
	SessionID string
	Options   map[string]string
}

func (inv Invocation) Option(name string) string {
	if inv.Options == nil {
		return ""
	}
	return inv.Options[name]
}

type Button struct {
	ID       string
	Label    string
	Disabled bool
}

// Reply is rendered back by the transport. Update replaces the message the
// pressed button belongs to instead of posting a new one.
type Reply struct {
	Content   string
	Buttons   []Button
	Ephemeral bool
	Update    bool
}

// Store is the read side the dispatcher needs beyond the ledger.
type Store interface {
	TicketsForDate(ctx context.Context, drawDate time.Time) ([]store.Ticket, error)
	TicketForUser(ctx context.Context, userID string, drawDate time.Time) (*store.Ticket, error)
	GetDraw(ctx context.Context, drawDate time.Time) (*store.Draw, error)
	TopBalances(ctx context.Context, limit int) ([]store.Account, error)
}

// Publisher posts and edits plain channel messages. The race loop uses it to
// keep one track message up to date.
type Publisher interface {
	Post(ctx context.Context, channelID, content string) (string, error)
	Edit(ctx context.Context, channelID, messageID, content string) error
}

type SlotOutcome struct {
	Bet     int64
	Result  game.SlotResult
	Balance int64
}

type BaccaratOutcome struct {
	Bet     int64
	Result  game.BaccaratResult
	Balance int64
}

// BlackjackView is a snapshot of a hand taken under the session lock.
type BlackjackView struct {
	SessionID string
	Bet       int64
	Player    []game.Card
	Dealer    []game.Card
	Phase     game.BlackjackPhase
	Outcome   game.Outcome
	Payout    int64
	Balance   int64
}

type RaceEntry struct {
	RaceID  string
	Opened  bool
	Horse   int
	Bet     int64
	Bettors int
	Balance int64
}

type TicketPurchase struct {
	Ticket  store.Ticket
	Balance int64
}

type DrawResult struct {
	DrawDate time.Time
	Numbers  []int
	Tickets  int
	Winners  []store.Payout
	Paid     int64
}
