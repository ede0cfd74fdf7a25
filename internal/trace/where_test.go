package trace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileWhere(t *testing.T) {
	p, err := CompileWhere(`duration_us > 5 && kernel_name contains "gemm"`)
	require.NoError(t, err)

	ops := []GpuOperation{
		op("gemm_small", 0, 2),
		op("gemm_large", 10, 30),
		op("softmax", 40, 60),
	}
	got, err := p.Select(ops)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "gemm_large", got[0].KernelName)

	byCategory, err := CompileWhere(`category == "Kernel" && start_time_us >= 40`)
	require.NoError(t, err)
	ok, err := byCategory.Match(ops[2])
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCompileWhereRejects(t *testing.T) {
	for _, src := range []string{
		`duration_us +`,
		`unknown_field > 1`,
		`duration_us * 2`,
	} {
		_, err := CompileWhere(src)
		assert.Error(t, err, src)
	}
}
