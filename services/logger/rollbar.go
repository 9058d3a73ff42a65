package logsvc

import (
	"strconv"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/trezcool/campus/core"
)

type rollbarReporter struct{}

func newRollbarReporter(conf *core.Config) *rollbarReporter {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Address)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	rollbar.SetEnabled(!conf.TestMode)
	return &rollbarReporter{}
}

// expected fmt: msg | error, map[string]interface{}
func (rollbarReporter) report(level, msg string, e entry) {
	if e.user != nil {
		rollbar.SetPerson(strconv.FormatInt(e.user.ID, 10), e.user.Name, e.user.Email)
	} else {
		rollbar.ClearPerson()
	}

	args := []interface{}{msg}
	if e.err != nil {
		args = append(args, e.err)
	}
	if e.extras != nil {
		args = append(args, e.extras)
	}
	rollbar.Log(level, args...)
}

func (rollbarReporter) flush() {
	rollbar.Wait()
}
