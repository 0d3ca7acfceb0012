package logger_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vytor/upsimu/internal/logger"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in    string
		level logger.Level
		valid bool
	}{
		{"DEBUG", logger.DEBUG, true},
		{"info", logger.INFO, true},
		{"Warning", logger.WARN, true},
		{"ERROR", logger.ERROR, true},
		{"loud", logger.INFO, false},
		{"", logger.INFO, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.level, logger.ParseLevel(tt.in))
			assert.Equal(t, tt.valid, logger.ValidLevel(tt.in))
		})
	}
}

func TestLogger_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf), logger.WithLevel(logger.WARN))

	log.Info("hidden")
	log.Warn("shown %d", 1)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown 1")
	assert.Contains(t, out, "WARN")
}

func TestLogger_FieldsAreSorted(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf)).
		WithPrefix("dialogue").
		WithFields(map[string]any{"scenario": "volvo", "attempt": "a1"})

	log.Info("turn accepted")

	line := buf.String()
	assert.Contains(t, line, "[dialogue]")
	assert.Less(t, strings.Index(line, "attempt=a1"), strings.Index(line, "scenario=volvo"))
}

func TestLogger_WithFieldDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	parent := logger.New(logger.WithOutput(&buf))
	_ = parent.WithField("child", true)

	parent.Info("plain")
	assert.NotContains(t, buf.String(), "child=true")
}

func TestContextRoundTrip(t *testing.T) {
	log := logger.Discard().WithPrefix("ctx")
	ctx := logger.NewContext(context.Background(), log)

	assert.Same(t, log, logger.FromContext(ctx))
	assert.Same(t, logger.Default(), logger.FromContext(context.Background()))
}
