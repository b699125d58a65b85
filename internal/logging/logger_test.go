package logging

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewBuildsBothModes(t *testing.T) {
	t.Parallel()

	for _, development := range []bool{true, false} {
		logger, err := New(development)
		require.NoError(t, err)
		require.NotNil(t, logger)
		logger.Info("logger ready")
		_ = logger.Sync()
	}
}

func TestNewNamedChildrenShareConfig(t *testing.T) {
	t.Parallel()

	logger, err := New(false)
	require.NoError(t, err)

	child := logger.Named("pipeline")
	require.NotNil(t, child)
	child.Info("child logger ready")
	_ = logger.Sync()
}
