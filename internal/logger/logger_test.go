package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	log := New()
	assert.Equal(t, zerolog.InfoLevel, log.GetLevel())
}

func TestNewWithWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithWriter(buf)
	log.Info().Msg("test message")
	assert.Contains(t, buf.String(), "test message")
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		logged  bool
		wantErr bool
	}{
		{"json info", Options{Level: "info", JSON: true}, true, false},
		{"console debug", Options{Level: "DEBUG"}, true, false},
		{"empty is info", Options{JSON: true}, true, false},
		{"error hides info", Options{Level: "error", JSON: true}, false, false},
		{"unknown level", Options{Level: "loud"}, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			tt.opts.Out = buf
			log, err := Build(tt.opts)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			log.Info().Str("layer", "raw").Msg("layer started")
			if tt.logged {
				assert.Contains(t, buf.String(), "layer started")
				assert.Contains(t, buf.String(), "raw")
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestBuild_JSON(t *testing.T) {
	buf := &bytes.Buffer{}
	log, err := Build(Options{Level: "info", JSON: true, Out: buf})
	require.NoError(t, err)
	log.Info().Int("rows", 3).Msg("done")
	assert.Contains(t, buf.String(), `"rows":3`)
}

func TestContext(t *testing.T) {
	buf := &bytes.Buffer{}
	ctx := WithContext(context.Background(), NewWithWriter(buf))
	assert.NotNil(t, ctx.Value(LoggerKey))

	log := FromContext(ctx)
	log.Info().Msg("from context")
	assert.Contains(t, buf.String(), "from context")
}

func TestFromContext_DefaultLogger(t *testing.T) {
	log := FromContext(context.Background())
	assert.NotEqual(t, zerolog.Disabled, log.GetLevel())
}

func TestWithFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log := WithFields(NewWithWriter(buf), map[string]any{"run_id": "abc", "layer": "marts"})
	log.Info().Msg("x")
	assert.Contains(t, buf.String(), `"run_id":"abc"`)
	assert.Contains(t, buf.String(), `"layer":"marts"`)
}
