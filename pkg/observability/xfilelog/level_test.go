package xfilelog_test

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/xlogwriter/pkg/observability/xfilelog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    xfilelog.Level
		wantErr bool
	}{
		{"debug", "debug", xfilelog.LevelDebug, false},
		{"首字母大写", "Info", xfilelog.LevelInfo, false},
		{"warn", "WARN", xfilelog.LevelWarn, false},
		{"warning 别名", "Warning", xfilelog.LevelWarn, false},
		{"带空白", "  error ", xfilelog.LevelError, false},
		{"未知级别", "verbose", 0, true},
		{"空串", "", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := xfilelog.ParseLevel(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, xfilelog.ErrUnknownLevel)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLevels(t *testing.T) {
	got, err := xfilelog.ParseLevels([]string{"info", "error"})
	require.NoError(t, err)
	assert.True(t, got.Has(xfilelog.LevelInfo))
	assert.True(t, got.Has(xfilelog.LevelError))
	assert.False(t, got.Has(xfilelog.LevelDebug))
	assert.False(t, got.Has(xfilelog.LevelWarn))

	got, err = xfilelog.ParseLevels(nil)
	require.NoError(t, err)
	assert.Equal(t, xfilelog.LevelAll, got, "空列表表示全部级别")

	_, err = xfilelog.ParseLevels([]string{"info", "trace"})
	require.ErrorIs(t, err, xfilelog.ErrUnknownLevel)
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "Debug", xfilelog.LevelDebug.String())
	assert.Equal(t, "Info", xfilelog.LevelInfo.String())
	assert.Equal(t, "Warn", xfilelog.LevelWarn.String())
	assert.Equal(t, "Error", xfilelog.LevelError.String())
	assert.Equal(t, "None", xfilelog.Level(0).String())
	assert.Equal(t, "Info|Error", (xfilelog.LevelInfo | xfilelog.LevelError).String())
}

func TestFromSlog(t *testing.T) {
	tests := []struct {
		name  string
		input slog.Level
		want  xfilelog.Level
	}{
		{"debug", slog.LevelDebug, xfilelog.LevelDebug},
		{"低于 debug", slog.LevelDebug - 4, xfilelog.LevelDebug},
		{"info", slog.LevelInfo, xfilelog.LevelInfo},
		{"info+2", slog.LevelInfo + 2, xfilelog.LevelInfo},
		{"warn", slog.LevelWarn, xfilelog.LevelWarn},
		{"error", slog.LevelError, xfilelog.LevelError},
		{"高于 error", slog.LevelError + 4, xfilelog.LevelError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, xfilelog.FromSlog(tt.input))
		})
	}
}
