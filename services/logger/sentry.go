package logsvc

import (
	"strconv"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/trezcool/campus/core"
)

var sentryLevels = map[string]sentry.Level{
	"warning":  sentry.LevelWarning,
	"error":    sentry.LevelError,
	"critical": sentry.LevelFatal,
}

type sentryReporter struct{}

func newSentryReporter(conf *core.Config) (*sentryReporter, error) {
	err := sentry.Init(sentry.ClientOptions{
		Dsn:         conf.SentryDSN,
		Environment: conf.Env,
		Release:     conf.Build,
		Debug:       conf.Debug,
	})
	if err != nil {
		return nil, err
	}
	return &sentryReporter{}, nil
}

func (sentryReporter) report(level, msg string, e entry) {
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetLevel(sentryLevels[level])
		if e.user != nil {
			scope.SetUser(sentry.User{ID: strconv.FormatInt(e.user.ID, 10), Email: e.user.Email, Name: e.user.Name})
		}
		for k, v := range e.extras {
			scope.SetExtra(k, v)
		}
		if e.err != nil {
			scope.SetExtra("message", msg)
			sentry.CaptureException(e.err)
			return
		}
		sentry.CaptureMessage(msg)
	})
}

func (sentryReporter) flush() {
	sentry.Flush(2 * time.Second)
}
