package budget

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageSizeForBudget(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		budget      int64
		elementSize int
		k           int
		want        int
	}{
		{name: "one_byte_elements", budget: 1000, elementSize: 1, k: 1, want: 950},
		{name: "small_budget", budget: 100, elementSize: 8, k: 2, want: 5},
		{name: "exact_minimum", budget: 17, elementSize: 8, k: 2, want: 1},
		{name: "one_mebibyte", budget: 1 * MiB, elementSize: 8, k: 2, want: 996147 / 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := PageSizeForBudget(tt.budget, tt.elementSize, tt.k)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPageSizeForBudget_FitsUsableBudget(t *testing.T) {
	t.Parallel()

	budgets := []int64{64, 1 * KiB, 3 * MiB, 1 * GiB, 17 * GiB}

	for _, budget := range budgets {
		for _, k := range []int{1, 2, 7, 64} {
			const elementSize = 24

			pageSize, err := PageSizeForBudget(budget, elementSize, k)
			if err != nil {
				require.ErrorIs(t, err, ErrBudgetTooSmall)

				continue
			}

			usable := usableBudget(budget)
			assert.LessOrEqual(t, int64(pageSize*k*elementSize), usable)
			assert.Greater(t, int64((pageSize+1)*k*elementSize), usable)
		}
	}
}

func TestPageSizeForBudget_Errors(t *testing.T) {
	t.Parallel()

	_, err := PageSizeForBudget(16, 8, 2)
	require.ErrorIs(t, err, ErrBudgetTooSmall)
	assert.Contains(t, err.Error(), "budget at least 17 B")

	_, err = PageSizeForBudget(0, 8, 1)
	require.ErrorIs(t, err, ErrBudgetTooSmall)

	_, err = PageSizeForBudget(-5, 8, 1)
	require.ErrorIs(t, err, ErrBudgetTooSmall)

	_, err = PageSizeForBudget(1*MiB, 0, 2)
	require.ErrorIs(t, err, ErrInvalidElementSize)

	_, err = PageSizeForBudget(1*MiB, 8, 0)
	require.ErrorIs(t, err, ErrInvalidFanIn)
}

func TestMinimumBudget(t *testing.T) {
	t.Parallel()

	assert.Equal(t, int64(17), MinimumBudget(2, 8))
	assert.Equal(t, int64(2), MinimumBudget(1, 1))

	for _, k := range []int{1, 3, 10} {
		for _, elementSize := range []int{1, 8, 40} {
			minimum := MinimumBudget(k, elementSize)

			_, err := PageSizeForBudget(minimum, elementSize, k)
			require.NoError(t, err)

			_, err = PageSizeForBudget(minimum-1, elementSize, k)
			require.ErrorIs(t, err, ErrBudgetTooSmall)
		}
	}

	assert.Equal(t, int64(math.MaxInt64), MinimumBudget(math.MaxInt, 2))
}

func TestUsableBudget(t *testing.T) {
	t.Parallel()

	assert.Equal(t, int64(0), usableBudget(0))
	assert.Equal(t, int64(95), usableBudget(100))
	assert.Equal(t, int64(996147), usableBudget(1*MiB))
	assert.Equal(t, int64(math.MaxInt64/100*95+math.MaxInt64%100*95/100), usableBudget(math.MaxInt64))
}

func TestEstimateMemoryUsage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, int64(160), EstimateMemoryUsage(10, 8))
	assert.Equal(t, int64(0), EstimateMemoryUsage(0, 8))
	assert.Equal(t, int64(math.MaxInt), EstimateMemoryUsage(math.MaxInt/2, 8))
}

func TestBatchMemory(t *testing.T) {
	t.Parallel()

	assert.Equal(t, int64(48), BatchMemory(2, 0, 3, 8, 100))
	assert.Equal(t, int64(96), BatchMemory(2, 1, 3, 8, 100))
	assert.Equal(t, int64(80), BatchMemory(2, 1, 3, 8, 10))
	assert.Equal(t, int64(80), BatchMemory(2, 200, 3, 8, 10))
	assert.Equal(t, int64(24), BatchMemory(1<<40, 0, 1, 8, 3))
	assert.Equal(t, int64(math.MaxInt), BatchMemory(2, 200, 3, 8, math.MaxInt))
}

func TestResolvePageSize(t *testing.T) {
	t.Parallel()

	got, err := ResolvePageSize(3, 0, 8, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, got)

	got, err = ResolvePageSize(3, 100, 8, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, got)

	_, err = ResolvePageSize(3, 10, 8, 2)
	require.ErrorIs(t, err, ErrBudgetTooSmall)
}
