package middleware

import (
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"suratapi/internal/logging"
)

// ErrorLocalKey holds an internal error a handler answered with a generic
// message, so the access log can still record it.
const ErrorLocalKey = "handler_error"

// Logger logs one structured line per request with request_id, method, path,
// status and latency (milliseconds, as float). 5xx responses log at error
// level and 4xx at warn.
func Logger(log zerolog.Logger) fiber.Handler {
	log = log.With().Str("component", "http").Logger()

	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		rid, _ := c.Locals(RequestIDLocalKey).(string)
		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}

		ev := log.Info()
		switch {
		case status >= fiber.StatusInternalServerError:
			ev = log.Error()
		case status >= fiber.StatusBadRequest:
			ev = log.Warn()
		}
		if herr, ok := c.Locals(ErrorLocalKey).(error); ok {
			ev = ev.AnErr("error", herr)
		}
		if u := ActorFrom(c); u != nil {
			ev = ev.Str("actor", u.ID)
		}
		ev.Str("request_id", rid).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Float64("latency", float64(time.Since(start).Microseconds())/1000).
			Msg("request")

		return err
	}
}

// LoggerWithWriter is Logger over a fresh JSON logger writing to w.
func LoggerWithWriter(w io.Writer, loc *time.Location) fiber.Handler {
	return Logger(logging.New(logging.Config{Location: loc}, w))
}
