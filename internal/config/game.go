package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// GameConfig holds the economy and pacing knobs of every game.
type GameConfig struct {
	StartingBalance  int64 `env:"STARTING_BALANCE" envDefault:"1000"`
	DailyClaimAmount int64 `env:"DAILY_CLAIM_AMOUNT" envDefault:"1000"`
	TicketPrice      int64 `env:"LOTTERY_TICKET_PRICE" envDefault:"100"`

	BlackjackIdleTimeout time.Duration `env:"BLACKJACK_IDLE_TIMEOUT" envDefault:"2m"`
	RaceBetWindow        time.Duration `env:"RACE_BET_WINDOW" envDefault:"15s"`
	RaceTick             time.Duration `env:"RACE_TICK" envDefault:"1s"`

	DayLocation  string `env:"DAY_LOCATION" envDefault:"UTC"`
	DrawSchedule string `env:"DRAW_SCHEDULE" envDefault:"5 0 0 * * *"`
	DrawTimezone string `env:"DRAW_TIMEZONE" envDefault:"UTC"`
}

func LoadGame() (GameConfig, error) {
	var cfg GameConfig
	err := env.Parse(&cfg)
	return cfg, err
}
