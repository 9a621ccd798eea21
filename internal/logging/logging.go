package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config controls the process logger.
type Config struct {
	Level  string // debug, info, warn, error
	Format string // json or console
	// Location is the timezone timestamps are rendered in.
	Location *time.Location
}

// New builds a zerolog logger writing to w (stdout when nil). Unknown levels fall back to info.
func New(cfg Config, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stdout
	}
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	if strings.EqualFold(cfg.Format, "console") {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Logger().
		Hook(tzHook{loc: loc})
}

// tzHook adds the local wall-clock time next to zerolog's UTC timestamp.
type tzHook struct {
	loc *time.Location
}

func (h tzHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	e.Str("ts", time.Now().In(h.loc).Format(time.RFC3339Nano))
}
