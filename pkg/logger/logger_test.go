package logger

import (
	"casegrader/internal/config"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestSetLevel(t *testing.T) {
	cfg := &config.Config{}
	cfg.Server.Mode = "debug"
	SetLevel(cfg)
	assert.Equal(t, zap.DebugLevel, level.Level())

	cfg.Log.Level = "warn"
	SetLevel(cfg)
	assert.Equal(t, zap.WarnLevel, level.Level())

	cfg.Server.Mode = "release"
	cfg.Log.Level = "not-a-level"
	SetLevel(cfg)
	assert.Equal(t, zap.InfoLevel, level.Level())
}
