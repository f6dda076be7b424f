package casino

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"casino-bot/internal/game"
)

func TestSlotLosingSpinDebitsBet(t *testing.T) {
	svc, mem, _ := newTestService(t)
	svc.src = &scriptSource{vals: []int{0, 1, 2}}

	reply := svc.Handle(context.Background(), invoke("slot", "u1", map[string]string{"bet": "100"}))
	if reply.Ephemeral {
		t.Fatalf("unexpected rejection: %s", reply.Content)
	}
	if got := mem.Balance("u1"); got != 900 {
		t.Fatalf("balance = %d, want 900", got)
	}
	txs := mem.Transactions("u1")
	if len(txs) != 1 || txs[0].Amount != -100 || txs[0].Reason != "slot_bet" {
		t.Fatalf("unexpected transactions: %+v", txs)
	}
	if !strings.Contains(reply.Content, "Balance: 900") {
		t.Fatalf("reply should show the new balance: %q", reply.Content)
	}
}

func TestSlotJackpotAndPair(t *testing.T) {
	svc, mem, _ := newTestService(t)
	ctx := context.Background()

	svc.src = &scriptSource{vals: []int{4}}
	out, err := svc.Slot(ctx, "u1", 100)
	if err != nil {
		t.Fatalf("slot: %v", err)
	}
	if out.Result.Payout != 1000 || out.Balance != 1900 {
		t.Fatalf("jackpot: %+v", out)
	}

	svc.src = &scriptSource{vals: []int{1, 1, 3}}
	out, err = svc.Slot(ctx, "u1", 100)
	if err != nil {
		t.Fatalf("slot: %v", err)
	}
	if out.Result.Payout != 200 || out.Balance != 2000 {
		t.Fatalf("pair: %+v", out)
	}
	if got := len(mem.Transactions("u1")); got != 4 {
		t.Fatalf("expected 4 transactions, got %d", got)
	}
}

func TestBetValidationMutatesNothing(t *testing.T) {
	svc, mem, _ := newTestService(t)
	for _, bet := range []string{"", "abc", "0", "-5", "1.5", "1001"} {
		reply := svc.Handle(context.Background(), invoke("slot", "u1", map[string]string{"bet": bet}))
		if !reply.Ephemeral {
			t.Fatalf("bet %q should be rejected, got %q", bet, reply.Content)
		}
	}
	if got := mem.Balance("u1"); got != 1000 {
		t.Fatalf("balance changed to %d", got)
	}
	if txs := mem.Transactions("u1"); len(txs) != 0 {
		t.Fatalf("rejections wrote transactions: %+v", txs)
	}

	_, err := svc.Slot(context.Background(), "u1", 5000)
	mustCode(t, err, "insufficient_balance")
}

func TestBaccaratSettlesAgainstLedger(t *testing.T) {
	svc, mem, _ := newTestService(t)
	svc.src = game.NewSource(11)
	ctx := context.Background()

	reply := svc.Handle(ctx, invoke("baccarat", "u1", map[string]string{"bet": "100", "choice": "dragon"}))
	if !reply.Ephemeral {
		t.Fatalf("invalid choice accepted: %q", reply.Content)
	}

	out, err := svc.Baccarat(ctx, "u1", 100, game.SideBanker)
	if err != nil {
		t.Fatalf("baccarat: %v", err)
	}
	if want := 900 + out.Result.Payout; mem.Balance("u1") != want || out.Balance != want {
		t.Fatalf("balance = %d (reported %d), want %d", mem.Balance("u1"), out.Balance, want)
	}
	if out.Result.Winner == game.SideBanker && out.Result.Payout != 195 {
		t.Fatalf("banker win should pay 195, got %d", out.Result.Payout)
	}
}

func TestClaimOncePerCalendarDay(t *testing.T) {
	svc, mem, clock := newTestService(t)
	svc.cfg.DayLocation = time.FixedZone("UTC+9", 9*3600)
	// 12:00 UTC is 21:00 in UTC+9.
	ctx := context.Background()

	if reply := svc.Handle(ctx, invoke("claim", "u1", nil)); reply.Ephemeral {
		t.Fatalf("first claim rejected: %s", reply.Content)
	}
	_, err := svc.Claim(ctx, "u1")
	mustCode(t, err, "already_claimed")
	if got := mem.Balance("u1"); got != 2000 {
		t.Fatalf("balance = %d, want 2000", got)
	}

	clock.Advance(2 * time.Hour) // 23:00 local
	_, err = svc.Claim(ctx, "u1")
	mustCode(t, err, "already_claimed")

	clock.Advance(2 * time.Hour) // 01:00 local, next day
	bal, err := svc.Claim(ctx, "u1")
	if err != nil {
		t.Fatalf("claim on the next day: %v", err)
	}
	if bal != 3000 {
		t.Fatalf("balance = %d, want 3000", bal)
	}
	if got := len(mem.Transactions("u1")); got != 2 {
		t.Fatalf("expected 2 claim transactions, got %d", got)
	}
}

func TestGiveRequiresAdmin(t *testing.T) {
	svc, mem, _ := newTestService(t)
	ctx := context.Background()

	reply := svc.Handle(ctx, invoke("give", "u1", map[string]string{"user": "u2", "amount": "500"}))
	if !reply.Ephemeral {
		t.Fatalf("non-admin give accepted: %q", reply.Content)
	}
	if txs := mem.Transactions("u2"); len(txs) != 0 {
		t.Fatalf("rejected give wrote transactions: %+v", txs)
	}
	for _, opts := range []map[string]string{
		{"user": "u2", "amount": "lots"},
		{"user": "u2", "amount": "0"},
		{"amount": "500"},
	} {
		reply = svc.Handle(ctx, invoke("give", "u1", opts))
		if reply.Content != errNotAdmin.Message {
			t.Fatalf("non-admin give %v got %q, want the admin rejection", opts, reply.Content)
		}
	}

	reply = svc.Handle(ctx, invoke("give", "admin", map[string]string{"user": "u2", "amount": "500"}))
	if reply.Ephemeral {
		t.Fatalf("admin give rejected: %q", reply.Content)
	}
	if got := mem.Balance("u2"); got != 1500 {
		t.Fatalf("balance = %d, want 1500", got)
	}
	txs := mem.Transactions("u2")
	if len(txs) != 1 || txs[0].Reason != "admin_grant" {
		t.Fatalf("unexpected transactions: %+v", txs)
	}

	bal, err := svc.Give(ctx, "admin", "u2", -5000)
	if err != nil {
		t.Fatalf("take away: %v", err)
	}
	if bal != 0 {
		t.Fatalf("negative grant should clamp at 0, got %d", bal)
	}
}

func TestBalanceAndRanking(t *testing.T) {
	svc, mem, _ := newTestService(t)
	ctx := context.Background()
	svc.Handle(ctx, invoke("balance", "u1", nil))
	mem.SetBalance("u2", 5000)

	reply := svc.Handle(ctx, invoke("balance", "u1", map[string]string{"user": "u2"}))
	if reply.Content != "💰 <@u2> has 5000 coins." {
		t.Fatalf("unexpected balance reply: %q", reply.Content)
	}
	reply = svc.Handle(ctx, invoke("ranking", "u1", nil))
	lines := strings.Split(reply.Content, "\n")
	if len(lines) != 3 || lines[1] != "1. <@u2> 5000" || lines[2] != "2. <@u1> 1000" {
		t.Fatalf("unexpected ranking: %q", reply.Content)
	}
}

func TestStoreFailureReportsGenericError(t *testing.T) {
	svc, mem, _ := newTestService(t)
	ctx := context.Background()
	svc.Handle(ctx, invoke("balance", "u1", nil))

	mem.FailAppend = errors.New("connection reset")
	reply := svc.Handle(ctx, invoke("slot", "u1", map[string]string{"bet": "100"}))
	if !reply.Ephemeral || !strings.HasPrefix(reply.Content, "Something went wrong") {
		t.Fatalf("expected generic failure, got %q", reply.Content)
	}
	if got := mem.Balance("u1"); got != 1000 {
		t.Fatalf("failed write changed balance to %d", got)
	}
}

func TestUnknownCommandRejected(t *testing.T) {
	svc, _, _ := newTestService(t)
	reply := svc.Handle(context.Background(), invoke("roulette", "u1", nil))
	if !reply.Ephemeral || reply.Content != "Unknown command." {
		t.Fatalf("unexpected reply: %+v", reply)
	}
}

func TestConcurrentBetsKeepLedgerConsistent(t *testing.T) {
	svc, mem, _ := newTestService(t)
	svc.src = game.NewSource(5)
	ctx := context.Background()
	svc.Handle(ctx, invoke("balance", "u1", nil))
	mem.SetBalance("u1", 100000)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.Handle(ctx, invoke("slot", "u1", map[string]string{"bet": "10"}))
		}()
	}
	wg.Wait()

	var sum int64
	for _, tx := range mem.Transactions("u1") {
		sum += tx.Amount
	}
	if got := mem.Balance("u1"); got != 100000+sum {
		t.Fatalf("balance %d does not match log sum %d", got, 100000+sum)
	}
}

func TestParseButtonID(t *testing.T) {
	action, id, ok := ParseButtonID(ButtonID("stand", "01HX"))
	if !ok || action != "stand" || id != "01HX" {
		t.Fatalf("round trip failed: %s %s %v", action, id, ok)
	}
	for _, bad := range []string{"", "blackjack:hit:", "race:hit:1", "blackjack:fold:1"} {
		if _, _, ok := ParseButtonID(bad); ok {
			t.Fatalf("ParseButtonID(%q) should fail", bad)
		}
	}
}
