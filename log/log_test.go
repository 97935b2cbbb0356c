package log

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/snxvpn/snxconnect/option"

	"github.com/stretchr/testify/require"
)

func TestFormatter(t *testing.T) {
	t.Parallel()
	baseTime := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	formatter := Formatter{BaseTime: baseTime, DisableColors: true}
	message := formatter.Format(context.Background(), LevelInfo, "portal", "logged in", baseTime.Add(12*time.Second))
	require.Equal(t, "INFO[0012] portal: logged in\n", message)

	ctx := ContextWithID(context.Background(), ID{ID: 42, CreatedAt: baseTime})
	message = formatter.Format(ctx, LevelWarn, "", "slow", baseTime.Add(1500*time.Millisecond))
	require.Equal(t, "WARN[0001] [42 1.5s] slow\n", message)

	formatter.DisableTimestamp = true
	message = formatter.Format(context.Background(), LevelError, "", "failed\n", baseTime)
	require.Equal(t, "ERROR failed\n", message)
}

func TestNewLevel(t *testing.T) {
	t.Parallel()
	var buffer bytes.Buffer
	factory, err := New(Options{Debug: true, DefaultWriter: &buffer, Options: option.LogOptions{DisableColor: true}})
	require.NoError(t, err)
	require.Equal(t, LevelDebug, factory.Level())
	factory.Logger().Trace("hidden")
	factory.Logger().Debug("visible")
	require.NotContains(t, buffer.String(), "hidden")
	require.Contains(t, buffer.String(), "DEBUG")
	require.Contains(t, buffer.String(), "visible")

	factory, err = New(Options{Options: option.LogOptions{Level: "warn"}, Debug: true, DefaultWriter: &buffer})
	require.NoError(t, err)
	require.Equal(t, LevelWarn, factory.Level())

	_, err = New(Options{Options: option.LogOptions{Level: "loud"}})
	require.Error(t, err)

	factory, err = New(Options{Options: option.LogOptions{Disabled: true}})
	require.NoError(t, err)
	factory.Logger().Error("dropped")
}
