package casino

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// driveRace replaces the window and tick timers with channels the test owns.
func driveRace(svc *Service) (window chan time.Time, ticks chan time.Time) {
	window = make(chan time.Time)
	ticks = make(chan time.Time)
	svc.after = func(time.Duration) <-chan time.Time { return window }
	svc.ticker = func(time.Duration) (<-chan time.Time, func()) { return ticks, func() {} }
	return window, ticks
}

func TestRacePaysWinningHorse(t *testing.T) {
	svc, mem, _ := newTestService(t)
	pub := &recordingPublisher{}
	svc.SetPublisher(pub)
	// horse 3 moves two a tick, the rest one
	svc.src = &scriptSource{vals: []int{1, 1, 2, 1, 1, 1, 1}}
	window, ticks := driveRace(svc)
	ctx := context.Background()

	entry, err := svc.JoinRace(ctx, "a", "chan-1", 100, 3)
	if err != nil {
		t.Fatalf("open race: %v", err)
	}
	if !entry.Opened || entry.Balance != 900 {
		t.Fatalf("unexpected opening entry: %+v", entry)
	}
	joined, err := svc.JoinRace(ctx, "b", "chan-1", 50, 1)
	if err != nil {
		t.Fatalf("join race: %v", err)
	}
	if joined.Opened || joined.RaceID != entry.RaceID || joined.Bettors != 2 {
		t.Fatalf("unexpected join entry: %+v", joined)
	}
	_, err = svc.JoinRace(ctx, "a", "chan-1", 100, 5)
	mustCode(t, err, "already_bet")

	close(window)
	close(ticks)
	svc.Wait()

	if got := mem.Balance("a"); got != 1400 {
		t.Fatalf("winner balance = %d, want 1400", got)
	}
	if got := mem.Balance("b"); got != 950 {
		t.Fatalf("loser balance = %d, want 950", got)
	}
	if len(pub.edits) != 10 {
		t.Fatalf("expected one edit per tick, got %d", len(pub.edits))
	}
	if len(pub.posts) != 2 || !strings.HasPrefix(pub.posts[1], "🏆 Horse 3 wins!") || !strings.Contains(pub.posts[1], "<@a> won 500") {
		t.Fatalf("unexpected result posts: %q", pub.posts)
	}
	if svc.races.Len() != 0 {
		t.Fatal("finished race still registered")
	}
}

func TestRaceTimeoutPaysNothing(t *testing.T) {
	svc, mem, _ := newTestService(t)
	pub := &recordingPublisher{}
	svc.SetPublisher(pub)
	svc.src = &scriptSource{vals: []int{0}}
	window, ticks := driveRace(svc)

	if _, err := svc.JoinRace(context.Background(), "a", "chan-1", 100, 1); err != nil {
		t.Fatalf("open race: %v", err)
	}
	close(window)
	close(ticks)
	svc.Wait()

	if got := mem.Balance("a"); got != 900 {
		t.Fatalf("balance = %d, want 900", got)
	}
	if len(pub.posts) != 2 || !strings.Contains(pub.posts[1], "No winner") {
		t.Fatalf("unexpected result posts: %q", pub.posts)
	}
}

func TestRaceCancelRefundsBets(t *testing.T) {
	svc, mem, _ := newTestService(t)
	driveRace(svc)
	ctx, cancel := context.WithCancel(context.Background())
	svc.runCtx = ctx

	if _, err := svc.JoinRace(context.Background(), "a", "chan-1", 300, 2); err != nil {
		t.Fatalf("open race: %v", err)
	}
	cancel()
	svc.Wait()

	if got := mem.Balance("a"); got != 1000 {
		t.Fatalf("balance = %d, want the bet refunded", got)
	}
	txs := mem.Transactions("a")
	if len(txs) != 2 || txs[1].Reason != "race_refund" {
		t.Fatalf("unexpected transactions: %+v", txs)
	}
}

func TestRaceRejections(t *testing.T) {
	svc, mem, _ := newTestService(t)
	driveRace(svc)
	ctx := context.Background()

	reply := svc.Handle(ctx, invoke("race", "a", map[string]string{"bet": "100", "horse": "8"}))
	if !reply.Ephemeral {
		t.Fatalf("horse 8 accepted: %q", reply.Content)
	}
	_, err := svc.JoinRace(ctx, "a", "chan-1", 5000, 1)
	mustCode(t, err, "insufficient_balance")
	if svc.races.Len() != 0 {
		t.Fatal("failed opener left a race behind")
	}
	if got := mem.Balance("a"); got != 1000 {
		t.Fatalf("balance changed to %d", got)
	}
	if _, err := svc.JoinRace(ctx, "a", "chan-1", 0, 1); !errors.Is(err, ErrValidation) {
		t.Fatalf("zero bet accepted: %v", err)
	}
}
