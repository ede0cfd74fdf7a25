package logutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestInitLogger(t *testing.T) {
	require.NotNil(t, GetLogger())

	require.NoError(t, InitLogger("warn"))
	l := GetLogger()
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))

	assert.Error(t, InitLogger("chatty"))
	assert.Same(t, l, GetLogger(), "failed init keeps the previous logger")
}
