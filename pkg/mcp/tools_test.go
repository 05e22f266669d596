package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hunomina/sort/pkg/budget"
)

func TestValidateSortInput(t *testing.T) {
	t.Parallel()

	require.NoError(t, validateSortInput(SortInput{}))
	require.NoError(t, validateSortInput(SortInput{Values: []float64{1}}))
	require.ErrorIs(t, validateSortInput(SortInput{Values: []float64{1}, Strings: []string{"a"}}), ErrAmbiguousInput)
	require.ErrorIs(t, validateSortInput(SortInput{Values: make([]float64, MaxInputElements+1)}), ErrTooManyElements)
	require.ErrorIs(t,
		validateSortInput(SortInput{Strings: make([]string, MaxTracedElements+1), TracePasses: true}),
		ErrTraceTooLarge)
	require.NoError(t, validateSortInput(SortInput{Values: []float64{3, 1, 2}, FanIn: MaxFanIn}))
	require.ErrorIs(t, validateSortInput(SortInput{Values: []float64{3, 1, 2}, FanIn: 1 << 40}), ErrFanInTooLarge)
}

func TestPlan_MemoryBudget(t *testing.T) {
	t.Parallel()

	result, err := plan(PlanInput{Elements: 1_000_000, FanIn: 4, MemoryBudget: "1MiB", ElementSize: 8})
	require.NoError(t, err)

	want, err := budget.PageSizeForBudget(1<<20, 8, 4)
	require.NoError(t, err)
	assert.Equal(t, want, result.PageSize)
	assert.NotEmpty(t, result.Passes)
	assert.Equal(t, "15 MiB", result.BufferSize)
}

func TestPlan_Empty(t *testing.T) {
	t.Parallel()

	result, err := plan(PlanInput{})
	require.NoError(t, err)
	assert.Empty(t, result.Passes)
	assert.NotNil(t, result.Passes)

	_, err = plan(PlanInput{Elements: -1})
	require.ErrorIs(t, err, ErrNegativeCount)
}
