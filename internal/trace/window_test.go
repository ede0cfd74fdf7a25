package trace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func op(name string, start, end float64) GpuOperation {
	return GpuOperation{KernelName: name, Category: CategoryKernel, StartTimeUs: start, EndTimeUs: end, DurationUs: end - start}
}

func TestParseWindow(t *testing.T) {
	w, err := ParseWindow("2684054.000, 2687705.250")
	require.NoError(t, err)
	assert.Equal(t, Window{StartUs: 2684054.0, EndUs: 2687705.25}, w)

	for _, bad := range []string{"", "100", "1,2,3", "a,2", "1,b", "200,100"} {
		_, err := ParseWindow(bad)
		assert.Error(t, err, bad)
	}
}

func TestExtractWindowIntersection(t *testing.T) {
	ops := []GpuOperation{
		op("d", 150, 160),
		op("before", 50, 90),
		op("a", 50, 100),
		op("b", 180, 250),
		op("after", 201, 300),
		op("c", 90, 210),
	}

	got := ExtractWindow(ops, Window{StartUs: 100, EndUs: 200})
	names := make([]string, len(got))
	for i, o := range got {
		names[i] = o.KernelName
	}
	assert.Equal(t, []string{"a", "c", "d", "b"}, names)
}

func TestExtractWindowStableOnTies(t *testing.T) {
	ops := []GpuOperation{op("x", 10, 11), op("y", 10, 12), op("z", 5, 20)}
	got := ExtractWindow(ops, Window{StartUs: 0, EndUs: 100})
	require.Len(t, got, 3)
	assert.Equal(t, "z", got[0].KernelName)
	assert.Equal(t, "x", got[1].KernelName)
	assert.Equal(t, "y", got[2].KernelName)
}

func TestExtractWindowEmpty(t *testing.T) {
	got := ExtractWindow([]GpuOperation{op("a", 0, 1)}, Window{StartUs: 10, EndUs: 20})
	assert.Empty(t, got)

	table := OperationsTable(got)
	assert.Equal(t, []string{"kernel_name", "start_time_us", "end_time_us", "duration_us"}, table.Header())
	assert.Empty(t, table.Rows)
}
