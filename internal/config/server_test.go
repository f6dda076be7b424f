package config

import "testing"

func TestLoadServerDefaults(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "postgres://localhost:5432/casino?sslmode=disable")

	cfg, err := LoadServer()
	if err != nil {
		t.Fatalf("LoadServer() error = %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("HTTPAddr = %q, want :8080", cfg.HTTPAddr)
	}
}

func TestLoadServerRequiresPostgresDSN(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "")

	_, err := LoadServer()
	if err == nil {
		t.Fatal("LoadServer() expected error, got nil")
	}
}

func TestLoadAppAggregates(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "postgres://localhost:5432/casino?sslmode=disable")
	t.Setenv("DISCORD_TOKEN", "tok")
	t.Setenv("HTTP_ADDR", ":9090")

	cfg, err := LoadApp()
	if err != nil {
		t.Fatalf("LoadApp() error = %v", err)
	}
	if cfg.Server.HTTPAddr != ":9090" || cfg.Bot.DiscordToken != "tok" {
		t.Fatalf("unexpected app config: %+v", cfg)
	}
	if cfg.Game.StartingBalance != 1000 {
		t.Fatalf("StartingBalance = %d", cfg.Game.StartingBalance)
	}
}
