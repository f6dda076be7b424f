package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"casino-bot/internal/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	sinkMu sync.RWMutex
	sink   io.Writer = os.Stdout
	file   *cappedFile
)

// Init configures the global zerolog logger from cfg. A LOG_FILE that cannot
// be opened is reported and logging falls back to stdout only.
func Init(cfg config.LogConfig) {
	level := zerolog.InfoLevel
	if v := strings.TrimSpace(cfg.Level); v != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(v)); err == nil {
			level = parsed
		}
	}

	var console io.Writer = os.Stdout
	if cfg.Console() {
		console = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	out := console
	raw := io.Writer(os.Stdout)
	var openErr error
	if path := strings.TrimSpace(cfg.File); path != "" {
		f, err := openCappedFile(path, cfg.FileMaxMB)
		if err != nil {
			openErr = err
		} else {
			out = zerolog.MultiLevelWriter(console, f)
			raw = io.MultiWriter(os.Stdout, f)
			setFile(f)
		}
	}

	sinkMu.Lock()
	sink = raw
	sinkMu.Unlock()

	zerolog.SetGlobalLevel(level)
	logger := zerolog.New(out).With().Timestamp().Logger()
	if cfg.SampleEvery > 1 {
		logger = logger.Sample(&zerolog.BasicSampler{N: cfg.SampleEvery})
	}
	log.Logger = logger
	if openErr != nil {
		log.Error().Err(openErr).Str("path", cfg.File).Msg("open log file failed")
	}
}

// Writer returns the raw sink shared by non-zerolog loggers (http access logs).
func Writer() io.Writer {
	sinkMu.RLock()
	defer sinkMu.RUnlock()
	return sink
}

func Close() error {
	sinkMu.Lock()
	f := file
	file = nil
	sink = os.Stdout
	sinkMu.Unlock()
	if f == nil {
		return nil
	}
	return f.Close()
}

func setFile(f *cappedFile) {
	sinkMu.Lock()
	prev := file
	file = f
	sinkMu.Unlock()
	if prev != nil {
		_ = prev.Close()
	}
}
