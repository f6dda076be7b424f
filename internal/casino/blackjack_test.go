package casino

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"casino-bot/internal/game"
)

func TestBlackjackPlaysToSettlement(t *testing.T) {
	svc, mem, _ := newTestService(t)
	svc.src = game.NewSource(99)
	ctx := context.Background()
	svc.Handle(ctx, invoke("balance", "u1", nil))

	view, err := svc.StartBlackjack(ctx, "u1", "chan-1", 100)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if view.Balance != 900 || view.Phase != game.PhasePlayerTurn {
		t.Fatalf("unexpected opening view: %+v", view)
	}
	if _, err := svc.StartBlackjack(ctx, "u1", "chan-1", 100); err == nil {
		t.Fatal("second hand should be rejected while one is open")
	} else {
		mustCode(t, err, "blackjack_in_progress")
	}
	if got := mem.Balance("u1"); got != 900 {
		t.Fatalf("rejected start changed balance to %d", got)
	}

	if _, err := svc.Hit(ctx, "u2", view.SessionID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("another user moved the hand: %v", err)
	}
	if _, err := svc.Hit(ctx, "u1", "someone-else"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("stale session id accepted: %v", err)
	}

	for view.Phase == game.PhasePlayerTurn {
		if total, _ := game.HandValue(view.Player); total >= 17 {
			view, err = svc.Stand(ctx, "u1", view.SessionID)
		} else {
			view, err = svc.Hit(ctx, "u1", view.SessionID)
		}
		if err != nil {
			t.Fatalf("move: %v", err)
		}
	}
	if view.Phase != game.PhaseSettled {
		t.Fatalf("hand not settled: %+v", view)
	}
	if want := 900 + view.Payout; mem.Balance("u1") != want || view.Balance != want {
		t.Fatalf("balance = %d (reported %d), want %d", mem.Balance("u1"), view.Balance, want)
	}
	if _, err := svc.Stand(ctx, "u1", view.SessionID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("settled hand accepted a move: %v", err)
	}
	if svc.blackjack.Len() != 0 {
		t.Fatal("settled session left in the registry")
	}
}

func TestBlackjackHittingToBustIsALoss(t *testing.T) {
	svc, mem, _ := newTestService(t)
	svc.src = game.NewSource(1)
	ctx := context.Background()
	svc.Handle(ctx, invoke("balance", "u1", nil))

	view, err := svc.StartBlackjack(ctx, "u1", "chan-1", 100)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	for view.Phase == game.PhasePlayerTurn {
		if view, err = svc.Hit(ctx, "u1", view.SessionID); err != nil {
			t.Fatalf("hit: %v", err)
		}
	}
	if total, _ := game.HandValue(view.Player); total <= 21 {
		t.Fatalf("hand ended without a bust: %v", view.Player)
	}
	if view.Outcome != game.OutcomeLose || view.Payout != 0 {
		t.Fatalf("bust should lose, got %s paying %d", view.Outcome, view.Payout)
	}
	if got := mem.Balance("u1"); got != 900 {
		t.Fatalf("balance = %d, want 900", got)
	}
}

func TestBlackjackButtonsUpdateMessage(t *testing.T) {
	svc, _, _ := newTestService(t)
	svc.src = game.NewSource(3)
	ctx := context.Background()

	reply := svc.Handle(ctx, invoke("blackjack", "u1", map[string]string{"bet": "50"}))
	if reply.Ephemeral || len(reply.Buttons) != 2 {
		t.Fatalf("unexpected opening reply: %+v", reply)
	}
	action, sessionID, ok := ParseButtonID(reply.Buttons[1].ID)
	if !ok || action != "stand" {
		t.Fatalf("bad button id %q", reply.Buttons[1].ID)
	}

	other := svc.Handle(ctx, Invocation{Command: "stand", UserID: "u2", SessionID: sessionID})
	if !other.Ephemeral || !strings.HasPrefix(other.Content, "This is not your game") {
		t.Fatalf("another user's press should be refused, got %+v", other)
	}

	done := svc.Handle(ctx, Invocation{Command: "stand", UserID: "u1", SessionID: sessionID})
	if done.Ephemeral || !done.Update {
		t.Fatalf("stand should update the hand message, got %+v", done)
	}
	if len(done.Buttons) != 0 {
		t.Fatal("settled hand should drop its buttons")
	}
}

func TestBlackjackIdleTimeoutRefunds(t *testing.T) {
	svc, mem, clock := newTestService(t)
	svc.src = game.NewSource(7)
	ctx := context.Background()
	svc.Handle(ctx, invoke("balance", "u1", nil))

	view, err := svc.StartBlackjack(ctx, "u1", "chan-1", 250)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	clock.Advance(time.Minute)
	if n := svc.blackjack.Sweep(ctx, clock.Now()); n != 0 {
		t.Fatalf("hand expired early")
	}
	clock.Advance(2 * time.Minute)
	if n := svc.blackjack.Sweep(ctx, clock.Now()); n != 1 {
		t.Fatalf("expected the idle hand to expire, swept %d", n)
	}
	if got := mem.Balance("u1"); got != 1000 {
		t.Fatalf("balance = %d, want the bet refunded", got)
	}
	txs := mem.Transactions("u1")
	if len(txs) != 2 || txs[1].Reason != "blackjack_refund" || txs[1].Amount != 250 {
		t.Fatalf("unexpected transactions: %+v", txs)
	}
	if _, err := svc.Hit(ctx, "u1", view.SessionID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expired hand accepted a move: %v", err)
	}
	if _, err := svc.StartBlackjack(ctx, "u1", "chan-1", 100); err != nil {
		t.Fatalf("new hand after timeout: %v", err)
	}
}
