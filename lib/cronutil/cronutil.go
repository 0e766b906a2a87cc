// Package cronutil wraps robfig/cron with the marketplace timezone and slog.
package cronutil

import (
	"log/slog"

	"shelfwatch/lib/timezone"

	"github.com/robfig/cron/v3"
)

// API is the interface that anything depending on things to happen on a cron job should use.
type API interface {
	Cron(spec string, callback func()) error
}

// Standard is the standard implementation of API using `github.com/robfig/cron/v3`
type Standard struct {
	cron *cron.Cron
}

// NewStandard is the constructor of Standard. Schedules fire in the
// marketplace timezone so "0 9 * * *" means 9am in Tokyo.
func NewStandard() Standard {
	cronner := cron.New(
		cron.WithLogger(cronLogger{}),
		cron.WithLocation(timezone.Location),
	)
	cronner.Start()

	return Standard{
		cron: cronner,
	}
}

func (s Standard) Cron(spec string, callback func()) error {
	_, err := s.cron.AddFunc(spec, callback)
	return err
}

type cronLogger struct{}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	slog.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	slog.Error(msg, append([]any{"err", err}, keysAndValues...)...)
}
