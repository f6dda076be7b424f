package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"casino-bot/internal/announce"
	"casino-bot/internal/casino"
	"casino-bot/internal/config"
	"casino-bot/internal/ledger"
	"casino-bot/internal/logging"
	"casino-bot/internal/scheduler"
	"casino-bot/internal/store"
	"casino-bot/internal/transport/discord"
	httptransport "casino-bot/internal/transport/http"

	"github.com/rs/zerolog/log"
)

const (
	sessionSweepInterval = 10 * time.Second
	shutdownTimeout      = 15 * time.Second
	webhookTimeout       = 10 * time.Second
)

func main() {
	dotenv, dotenvErr := config.LoadDotEnv(os.Getenv("ENV_FILE"))
	logCfg, err := config.LoadLog()
	if err != nil {
		panic(err)
	}
	logging.Init(logCfg)
	defer logging.Close()
	if dotenvErr != nil {
		log.Warn().Err(dotenvErr).Msg("env file ignored")
	} else if dotenv {
		log.Info().Msg("env file loaded")
	}

	cfg, err := config.LoadApp()
	if err != nil {
		log.Fatal().Err(err).Msg("load config failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.New(cfg.Server.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("store init failed")
	}
	defer st.Close()
	if err := st.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("db ping failed")
	}

	led := ledger.New(st, cfg.Game.StartingBalance)
	svcCfg, err := casino.ConfigFromEnv(cfg.Game, cfg.Bot.AdminUserIDs)
	if err != nil {
		log.Fatal().Err(err).Msg("game config invalid")
	}
	svc := casino.New(svcCfg, led, st)

	bot, err := discord.New(cfg.Bot.DiscordToken, svc)
	if err != nil {
		log.Fatal().Err(err).Msg("discord init failed")
	}
	svc.SetPublisher(discord.NewChannelPublisher(bot.Session()))
	if url := cfg.Bot.AnnounceWebhookURL; url != "" {
		svc.SetAnnouncer(announce.NewWebhook(announce.NewHTTPClient(webhookTimeout), url))
		log.Info().Msg("lottery results go to webhook")
	} else {
		svc.SetAnnouncer(discord.NewKeywordAnnouncer(bot.Session(), cfg.Bot.AnnounceChannelKeyword))
		log.Info().Str("keyword", cfg.Bot.AnnounceChannelKeyword).Msg("lottery results go to matching channels")
	}
	svc.Start(ctx, sessionSweepInterval)

	drawLoc, err := time.LoadLocation(cfg.Game.DrawTimezone)
	if err != nil {
		log.Fatal().Err(err).Str("tz", cfg.Game.DrawTimezone).Msg("draw timezone invalid")
	}
	sched := scheduler.New(ctx, drawLoc)
	drawJob := scheduler.DrawJob(svc, time.Now)
	entry, err := sched.AddJob("lottery_draw", cfg.Game.DrawSchedule, drawJob)
	if err != nil {
		log.Fatal().Err(err).Str("spec", cfg.Game.DrawSchedule).Msg("draw schedule invalid")
	}
	sched.Start()
	log.Info().Time("next_draw", sched.Next(entry)).Msg("scheduler started")

	// A draw missed while the bot was down is settled on the way up.
	go func() {
		if err := drawJob(ctx); err != nil {
			log.Error().Err(err).Msg("catch-up draw failed")
		}
	}()

	r := httptransport.NewRouter(st, cfg.Server, led, svc)
	httptransport.LogRoutes(r)
	server := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	go func() {
		log.Info().Str("addr", cfg.Server.HTTPAddr).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server stopped")
			stop()
		}
	}()

	if err := bot.Open(); err != nil {
		log.Fatal().Err(err).Msg("discord gateway connect failed")
	}
	log.Info().Msg("casino-bot running")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	sched.Stop(shutdownTimeout)
	if err := bot.Close(); err != nil {
		log.Warn().Err(err).Msg("discord close failed")
	}
	svc.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("http shutdown failed")
	}
}
