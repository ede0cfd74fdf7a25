package stepstats

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const tolerance = 1e-9

func TestAggregateAveragesByPosition(t *testing.T) {
	steps := []ProfileStep{
		step(0, 1000, 100, "A", 0, 10, "B", 20, 25),
		step(1, 2000, 100, "A", 0, 10, "B", 20, 25),
		step(2, 3000, 100, "A", 0, 10, "B", 20, 25),
	}
	agg, err := Aggregate(steps, AlignStrict, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.Len(t, agg.Rows, 2)
	assert.Len(t, agg.Contributing, 3)

	a, b := agg.Rows[0], agg.Rows[1]
	assert.Equal(t, "A", a.OperationName)
	assert.InDelta(t, 0, a.AvgStartTimeUs, tolerance)
	assert.InDelta(t, 10, a.AvgEndTimeUs, tolerance)
	assert.InDelta(t, 10, a.AvgDurationUs, tolerance)
	assert.InDelta(t, 0, a.BubbleTimeUs, tolerance)

	assert.Equal(t, "B", b.OperationName)
	assert.InDelta(t, 20, b.AvgStartTimeUs, tolerance)
	assert.InDelta(t, 25, b.AvgEndTimeUs, tolerance)
	assert.InDelta(t, 5, b.AvgDurationUs, tolerance)
	assert.InDelta(t, 10, b.BubbleTimeUs, tolerance)
}

func TestAggregateMeans(t *testing.T) {
	steps := []ProfileStep{
		step(0, 0, 100, "A", 2, 12, "B", 14, 20),
		step(1, 100, 100, "A", 4, 10, "B", 16, 30),
	}
	agg, err := Aggregate(steps, AlignStrict, nil)
	require.NoError(t, err)

	a, b := agg.Rows[0], agg.Rows[1]
	assert.InDelta(t, 3, a.AvgStartTimeUs, tolerance)
	assert.InDelta(t, 11, a.AvgEndTimeUs, tolerance)
	assert.InDelta(t, 8, a.AvgDurationUs, tolerance)
	assert.InDelta(t, 3, a.BubbleTimeUs, tolerance, "first bubble is the offset from step start")
	assert.InDelta(t, 15, b.AvgStartTimeUs, tolerance)
	assert.InDelta(t, 25, b.AvgEndTimeUs, tolerance)
	assert.InDelta(t, 10, b.AvgDurationUs, tolerance)
	assert.InDelta(t, 4, b.BubbleTimeUs, tolerance)

	for _, r := range agg.Rows {
		assert.InDelta(t, r.AvgEndTimeUs, r.AvgStartTimeUs+r.AvgDurationUs, 1e-6)
	}
}

func TestAggregateSingleStep(t *testing.T) {
	agg, err := Aggregate([]ProfileStep{step(0, 50, 100, "A", 1, 2)}, AlignStrict, nil)
	require.NoError(t, err)
	require.Len(t, agg.Rows, 1)
	assert.InDelta(t, 1, agg.Rows[0].AvgStartTimeUs, tolerance)
	assert.InDelta(t, 1, agg.Rows[0].BubbleTimeUs, tolerance)
}

func TestAggregateMismatchStrict(t *testing.T) {
	steps := []ProfileStep{
		step(0, 0, 100, "A", 0, 1, "B", 2, 3, "C", 4, 5, "D", 6, 7),
		step(1, 100, 100, "A", 0, 1, "B", 2, 3, "C", 4, 5, "D", 6, 7, "E", 8, 9),
	}
	agg, err := Aggregate(steps, AlignStrict, zaptest.NewLogger(t))
	assert.Nil(t, agg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAlignmentMismatch))

	var alignErr *AlignmentError
	require.ErrorAs(t, err, &alignErr)
	assert.Equal(t, 4, alignErr.Expected)
	require.Len(t, alignErr.Mismatches, 1)
	assert.Equal(t, 1, alignErr.Mismatches[0].StepIndex)
	assert.Equal(t, 5, alignErr.Mismatches[0].Count)
	assert.Contains(t, err.Error(), "has 5 operations, expected 4")
}

func TestAggregateMismatchSkip(t *testing.T) {
	steps := []ProfileStep{
		step(0, 0, 100, "A", 0, 10, "B", 20, 25),
		step(1, 100, 100, "A", 0, 10, "B", 20, 25, "C", 30, 31),
		step(2, 200, 100, "A", 2, 12, "B", 22, 27),
	}
	agg, err := Aggregate(steps, AlignSkip, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Len(t, agg.Contributing, 2)
	require.Len(t, agg.Excluded, 1)
	assert.Equal(t, 1, agg.Excluded[0].StepIndex)
	assert.InDelta(t, 1, agg.Rows[0].AvgStartTimeUs, tolerance)
}

func TestAggregateNegativeBubbleIsKept(t *testing.T) {
	steps := []ProfileStep{step(0, 0, 100, "A", 0, 10, "B", 5, 8)}
	agg, err := Aggregate(steps, AlignStrict, nil)
	require.NoError(t, err)
	assert.InDelta(t, -5, agg.Rows[1].BubbleTimeUs, tolerance)
}

func TestAggregateNameMismatchIsWarningOnly(t *testing.T) {
	steps := []ProfileStep{
		step(0, 0, 100, "A", 0, 10),
		step(1, 100, 100, "Z", 0, 10),
	}
	agg, err := Aggregate(steps, AlignStrict, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, "A", agg.Rows[0].OperationName)
	require.Len(t, agg.NameMismatches, 1)
	assert.Equal(t, "Z", agg.NameMismatches[0].Got)
}

func TestAggregateEmpty(t *testing.T) {
	_, err := Aggregate(nil, AlignStrict, nil)
	assert.ErrorIs(t, err, ErrNoDecodeSteps)

	_, err = Aggregate([]ProfileStep{step(0, 0, 100)}, AlignStrict, nil)
	assert.ErrorIs(t, err, ErrNoOperations)
}
