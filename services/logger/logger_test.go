package logsvc

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/trezcool/campus/core/user"
)

type fakeReporter struct {
	levels  []string
	entries []entry
	flushed bool
}

func (r *fakeReporter) report(level, _ string, e entry) {
	r.levels = append(r.levels, level)
	r.entries = append(r.entries, e)
}

func (r *fakeReporter) flush() { r.flushed = true }

func TestParse(t *testing.T) {
	err := errors.New("boom")
	usr := user.User{ID: 7, Email: "dean@campus.test"}

	fields, e := parse([]interface{}{err, usr, "file", "a.png", map[string]interface{}{"id": 3}, nil})

	assert.Equal(t, err, e.err)
	require.NotNil(t, e.user)
	assert.Equal(t, int64(7), e.user.ID)
	assert.Equal(t, map[string]interface{}{"file": "a.png", "id": 3}, e.extras)
	assert.Len(t, fields, 5) // error, user_id, user_email, file, id
}

func TestLoggerReportsWarningsAndErrors(t *testing.T) {
	obs, logs := observer.New(zapcore.DebugLevel)
	rep := &fakeReporter{}
	l := &Logger{zl: zap.New(obs), reporters: []reporter{rep}}

	l.Debug("debug")
	l.Info("info")
	l.Warn("warn", errors.New("w"))
	l.Error("error", errors.New("e"), user.User{ID: 1})

	assert.Equal(t, 4, logs.Len())
	assert.Equal(t, []string{"warning", "error"}, rep.levels)
	require.Len(t, rep.entries, 2)
	assert.EqualError(t, rep.entries[1].err, "e")
	require.NotNil(t, rep.entries[1].user)

	_ = l.Sync()
	assert.True(t, rep.flushed)
}
