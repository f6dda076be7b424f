package scheduler

import (
	"context"
	"errors"
	"time"

	"casino-bot/internal/casino"

	"github.com/rs/zerolog/log"
)

// Drawer is the part of the casino service the nightly draw needs.
type Drawer interface {
	PreviousDay(now time.Time) time.Time
	DrawLottery(ctx context.Context, date time.Time) (casino.DrawResult, error)
}

// DrawJob draws the day that has just ended. Running it twice for the same
// day is harmless: the second run finds the draw already settled.
func DrawJob(d Drawer, now func() time.Time) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		date := d.PreviousDay(now())
		res, err := d.DrawLottery(ctx, date)
		if err != nil {
			if errors.Is(err, casino.ErrValidation) {
				log.Info().Str("draw_date", date.Format("2006-01-02")).Str("reason", err.Error()).Msg("lottery draw skipped")
				return nil
			}
			return err
		}
		log.Info().Str("draw_date", date.Format("2006-01-02")).Int("winners", len(res.Winners)).Int64("paid", res.Paid).Msg("nightly draw settled")
		return nil
	}
}
