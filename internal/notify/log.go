package notify

import (
	"context"

	"github.com/rs/zerolog"
)

// LogSink writes every event to the structured log, the audit trail of last resort.
type LogSink struct {
	log zerolog.Logger
}

// NewLogSink creates a new LogSink.
func NewLogSink(log zerolog.Logger) *LogSink {
	return &LogSink{log: log.With().Str("component", "audit").Logger()}
}

// Name identifies the sink in logs and metrics.
func (s *LogSink) Name() string { return "log" }

// Deliver writes e as one structured log line.
func (s *LogSink) Deliver(_ context.Context, e Event) error {
	ev := s.log.Info().
		Str("event_id", e.ID).
		Str("kind", e.Kind()).
		Str("transition", e.Transition).
		Str("letter_id", e.LetterID())
	if e.Notice != nil {
		ev = ev.Str("user_id", e.Notice.UserID).Str("message", e.Notice.Message)
	}
	if e.Audit != nil {
		ev = ev.Str("actor", e.Audit.Actor).Str("action", e.Audit.Action).Str("detail", e.Audit.Detail)
	}
	ev.Msg("correspondence event")
	return nil
}
