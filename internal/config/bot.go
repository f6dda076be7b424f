package config

import "github.com/caarlos0/env/v11"

type BotConfig struct {
	DiscordToken string   `env:"DISCORD_TOKEN,required,notEmpty"`
	AdminUserIDs []string `env:"ADMIN_USER_IDS" envSeparator:","`

	AnnounceWebhookURL     string `env:"ANNOUNCE_WEBHOOK_URL"`
	AnnounceChannelKeyword string `env:"ANNOUNCE_CHANNEL_KEYWORD" envDefault:"lottery"`
}

func LoadBot() (BotConfig, error) {
	var cfg BotConfig
	err := env.Parse(&cfg)
	return cfg, err
}
