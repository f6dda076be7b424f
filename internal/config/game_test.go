package config

import (
	"testing"
	"time"
)

func TestLoadGameDefaults(t *testing.T) {
	cfg, err := LoadGame()
	if err != nil {
		t.Fatalf("LoadGame() error = %v", err)
	}
	if cfg.StartingBalance != 1000 {
		t.Fatalf("StartingBalance = %d, want 1000", cfg.StartingBalance)
	}
	if cfg.TicketPrice != 100 {
		t.Fatalf("TicketPrice = %d, want 100", cfg.TicketPrice)
	}
	if cfg.RaceTick != time.Second {
		t.Fatalf("RaceTick = %v, want 1s", cfg.RaceTick)
	}
	if cfg.DrawSchedule != "5 0 0 * * *" {
		t.Fatalf("DrawSchedule = %q", cfg.DrawSchedule)
	}
}

func TestLoadGameParseTypes(t *testing.T) {
	t.Setenv("BLACKJACK_IDLE_TIMEOUT", "45s")
	t.Setenv("DAILY_CLAIM_AMOUNT", "2500")
	t.Setenv("DRAW_TIMEZONE", "Asia/Seoul")

	cfg, err := LoadGame()
	if err != nil {
		t.Fatalf("LoadGame() error = %v", err)
	}
	if cfg.BlackjackIdleTimeout != 45*time.Second {
		t.Fatalf("BlackjackIdleTimeout = %v", cfg.BlackjackIdleTimeout)
	}
	if cfg.DailyClaimAmount != 2500 {
		t.Fatalf("DailyClaimAmount = %d", cfg.DailyClaimAmount)
	}
	if cfg.DrawTimezone != "Asia/Seoul" {
		t.Fatalf("DrawTimezone = %q", cfg.DrawTimezone)
	}
}
