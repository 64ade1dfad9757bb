package chrono

import (
	"errors"
	"mangabuff-tracker/internal/components/telemetry"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCronRejectsInvalidSpec(t *testing.T) {
	c := NewStandardCron(&telemetry.Recorder{}, time.UTC)
	require.Error(t, c.Cron("not a spec", func() {}))
	require.NoError(t, c.Cron("0 9 * * *", func() {}))
	require.NoError(t, c.Cron("@every 1h", func() {}))
}

func TestCronLogger(t *testing.T) {
	rec := &telemetry.Recorder{}
	logger := cronLogger{tel: rec}

	logger.Info("wake", "now", 1, "entry", 2)
	logger.Error(errors.New("boom"), "run", "entry", 3)

	debug := rec.Reports("debug")
	require.Len(t, debug, 1)
	require.Equal(t, "cron: wake", debug[0].Id)
	require.Equal(t, []any{"now: 1", "entry: 2"}, debug[0].Params)

	broken := rec.Reports("broken")
	require.Len(t, broken, 1)
	require.Equal(t, "cron", broken[0].Id)
	require.EqualError(t, broken[0].Params[0].(error), "run: boom")
	require.Equal(t, "entry: 3", broken[0].Params[1])
}
