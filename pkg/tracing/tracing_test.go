package tracing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/devprofile/internal/config"
	"github.com/khoahotran/devprofile/pkg/logger"
)

func TestNewTracerProvider_DisabledWithoutEndpoint(t *testing.T) {
	tp, err := NewTracerProvider(config.Config{}, logger.NewNop(), "devprofile-test")
	require.NoError(t, err)
	assert.Nil(t, tp)

	assert.NotPanics(t, func() { Shutdown(tp, logger.NewNop()) })
}

func TestNewTracerProvider_WithEndpoint(t *testing.T) {
	var cfg config.Config
	cfg.App.Env = "test"
	cfg.Tracing.OTLPEndpoint = "localhost:4317"
	cfg.Tracing.SampleRatio = 0.5

	// grpc.NewClient connects lazily, so no collector is needed here.
	tp, err := NewTracerProvider(cfg, logger.NewNop(), "devprofile-test")
	require.NoError(t, err)
	require.NotNil(t, tp)
	Shutdown(tp, logger.NewNop())
}
