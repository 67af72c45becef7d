package logger

import (
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
)

func Setup(dev bool) zerolog.Logger {
	var logger zerolog.Logger
	level := zerolog.InfoLevel
	if dev {
		level = zerolog.DebugLevel
	}

	logger = zerolog.New(os.Stderr).Level(level).With().Timestamp().Caller().Logger()

	if dev {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr, FormatTimestamp: func(i any) string {
			return time.Now().Format(time.RFC3339)
		}}).Level(level).With().Stack().Logger()
	}

	return logger
}

var _ http.RoundTripper = (*RequestLogger)(nil)

// RequestLogger is an http.RoundTripper that logs each outgoing request.
type RequestLogger struct {
	logger zerolog.Logger
	next   http.RoundTripper
}

// NewRequestLogger wraps next, logging through logger.
// A nil next uses http.DefaultTransport.
func NewRequestLogger(logger zerolog.Logger, next http.RoundTripper) *RequestLogger {
	if next == nil {
		next = http.DefaultTransport
	}
	return &RequestLogger{logger: logger, next: next}
}

func (r *RequestLogger) RoundTrip(req *http.Request) (*http.Response, error) {
	started := time.Now()

	logger := r.logger.With().
		Str("method", req.Method).
		Str("host", req.URL.Host).
		Str("path", req.URL.Path).
		Logger()

	resp, err := r.next.RoundTrip(req)
	if err != nil {
		logger.Error().
			Err(err).
			Dur("duration", time.Since(started)).
			Msg("http request")

		return resp, err
	}

	logger.Debug().
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(started)).
		Msg("http request")

	return resp, nil
}
