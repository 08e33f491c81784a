// Package notify delivers operator alerts: position opens and closes,
// breaker trips, entry failures, emergency stops.
package notify

import "github.com/rs/zerolog"

type Notifier interface {
	Notify(msg string)
}

// Log writes notifications to the structured log. The fallback when
// telegram is not configured.
type Log struct {
	log zerolog.Logger
}

func NewLog(log zerolog.Logger) *Log {
	return &Log{log: log.With().Str("component", "notify").Logger()}
}

func (l *Log) Notify(msg string) {
	l.log.Info().Msg(msg)
}
