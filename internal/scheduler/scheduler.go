package scheduler

import (
	"context"
	"expvar"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

var (
	metricJobRunsTotal   = expvar.NewInt("scheduler_job_runs_total")
	metricJobErrorsTotal = expvar.NewInt("scheduler_job_errors_total")
)

// Scheduler runs named jobs on six-field cron specs (seconds first) in a
// fixed location. A job still running when its next slot comes up is skipped.
type Scheduler struct {
	cron *cron.Cron
	ctx  context.Context
}

func New(ctx context.Context, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	logger := cronLogger{}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithSeconds(),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		ctx: ctx,
	}
}

func (s *Scheduler) AddJob(name, spec string, fn func(ctx context.Context) error) (cron.EntryID, error) {
	return s.cron.AddFunc(spec, func() {
		s.run(name, fn)
	})
}

func (s *Scheduler) run(name string, fn func(ctx context.Context) error) {
	metricJobRunsTotal.Add(1)
	start := time.Now()
	if err := fn(s.ctx); err != nil {
		metricJobErrorsTotal.Add(1)
		log.Error().Err(err).Str("job", name).Dur("took", time.Since(start)).Msg("scheduled job failed")
		return
	}
	log.Info().Str("job", name).Dur("took", time.Since(start)).Msg("scheduled job done")
}

// Next reports when the entry fires next. It is zero before Start.
func (s *Scheduler) Next(id cron.EntryID) time.Time {
	return s.cron.Entry(id).Next
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops scheduling and waits up to timeout for running jobs.
func (s *Scheduler) Stop(timeout time.Duration) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-time.After(timeout):
		log.Warn().Dur("timeout", timeout).Msg("scheduler stop timed out with jobs still running")
	}
}

type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
