package extsort_test

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hunomina/sort/pkg/extsort"
)

var sample = []int{5, 9, 5, 2, 5, 4, 0, 9, 1, 3}

func TestSort_SampleConfigurations(t *testing.T) {
	t.Parallel()

	want := []int{0, 1, 2, 3, 4, 5, 5, 5, 9, 9}

	tests := []struct {
		k, pageSize int
		passes      int
	}{
		{k: 2, pageSize: 3, passes: 2},
		{k: 3, pageSize: 3, passes: 2},
		{k: 2, pageSize: 1, passes: 4},
		{k: 1, pageSize: 5, passes: 2},
		{k: 1, pageSize: 1, passes: 5},
		{k: 10, pageSize: 1, passes: 1},
		{k: 1, pageSize: 10, passes: 1},
		{k: 4, pageSize: 100, passes: 1},
		{k: 1 << 40, pageSize: 1, passes: 1},
		{k: math.MaxInt, pageSize: 1, passes: 1},
		{k: 2, pageSize: math.MaxInt, passes: 1},
		{k: math.MaxInt, pageSize: math.MaxInt, passes: 1},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("k=%d/page=%d", tt.k, tt.pageSize), func(t *testing.T) {
			t.Parallel()

			for _, strategy := range []extsort.Strategy{extsort.MergeScan, extsort.MergeHeap} {
				s, err := extsort.New(extsort.Config[int]{
					FanIn:    tt.k,
					PageSize: tt.pageSize,
					Compare:  cmp.Compare[int],
					Strategy: strategy,
				})
				require.NoError(t, err)

				got, stats, err := s.Sort(context.Background(), sample)
				require.NoError(t, err)

				assert.Equal(t, want, got, strategy)
				assert.Equal(t, tt.passes, stats.PassCount(), strategy)
				assert.Equal(t, len(sample), stats.Elements)
				assert.Equal(t, strategy, stats.Strategy)
			}
		})
	}
}

func TestSort_DoesNotModifyInput(t *testing.T) {
	t.Parallel()

	input := slices.Clone(sample)

	_, err := extsort.Sort(input, 2, 3)
	require.NoError(t, err)

	assert.Equal(t, sample, input)
}

func TestSort_EmptyInputRunsNoPasses(t *testing.T) {
	t.Parallel()

	s, err := extsort.New(extsort.Config[int]{FanIn: 3, PageSize: 2, Compare: cmp.Compare[int]})
	require.NoError(t, err)

	got, stats, err := s.Sort(context.Background(), []int{})
	require.NoError(t, err)

	assert.Empty(t, got)
	assert.Zero(t, stats.PassCount())

	got, stats, err = s.Sort(context.Background(), nil)
	require.NoError(t, err)

	assert.Nil(t, got)
	assert.Zero(t, stats.PassCount())
}

func TestSort_RandomInputsSortedPermutation(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(42, 1337))

	for range 300 {
		input := make([]int, rng.IntN(120))
		for i := range input {
			input[i] = rng.IntN(40) - 20
		}

		k := 1 + rng.IntN(5)
		pageSize := 1 + rng.IntN(7)

		got, err := extsort.Sort(input, k, pageSize)
		require.NoError(t, err)

		want := slices.Clone(input)
		slices.Sort(want)

		require.Len(t, got, len(input), "k=%d page=%d", k, pageSize)
		assert.True(t, slices.IsSorted(got), "k=%d page=%d input=%v", k, pageSize, input)
		assert.Equal(t, want, got, "k=%d page=%d", k, pageSize)
	}
}

func TestSort_PassCountBoundary(t *testing.T) {
	t.Parallel()

	input := []int{9, 8, 7, 6, 5, 4, 3, 2, 1, 0}

	got, err := extsort.Sort(input, 1, 1)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, got)
}

func TestSort_HugeFanInRunsOnePass(t *testing.T) {
	t.Parallel()

	got, err := extsort.Sort([]int{3, 1, 2}, 1<<40, 1)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3}, got)

	s, err := extsort.New(extsort.Config[int]{FanIn: 1 << 40, PageSize: 1, Compare: cmp.Compare[int]})
	require.NoError(t, err)

	_, stats, err := s.Sort(context.Background(), []int{3, 1, 2})
	require.NoError(t, err)

	require.Equal(t, 1, stats.PassCount())
	assert.Equal(t, 1<<40, stats.Passes[0].PageCount)
	assert.Equal(t, 3, stats.Passes[0].PeakPages)
	assert.Equal(t, 3, stats.Passes[0].RunLength)
}

func TestSort_Strings(t *testing.T) {
	t.Parallel()

	got, err := extsort.Sort([]string{"pear", "apple", "fig", "kiwi", "banana"}, 2, 2)
	require.NoError(t, err)

	assert.Equal(t, []string{"apple", "banana", "fig", "kiwi", "pear"}, got)
}

func TestSortFunc_CustomOrder(t *testing.T) {
	t.Parallel()

	descending := func(a, b int) int { return cmp.Compare(b, a) }

	got, err := extsort.SortFunc(sample, 2, 3, descending)
	require.NoError(t, err)

	assert.Equal(t, []int{9, 9, 5, 5, 5, 4, 3, 2, 1, 0}, got)
}

func TestSortFunc_CaseInsensitive(t *testing.T) {
	t.Parallel()

	got, err := extsort.SortFunc([]string{"b", "C", "a"}, 1, 1, func(a, b string) int {
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "C"}, got)
}

func TestNew_InvalidConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  extsort.Config[int]
		want error
	}{
		{name: "zero_fan_in", cfg: extsort.Config[int]{PageSize: 1, Compare: cmp.Compare[int]}, want: extsort.ErrInvalidFanIn},
		{name: "negative_fan_in", cfg: extsort.Config[int]{FanIn: -2, PageSize: 1, Compare: cmp.Compare[int]}, want: extsort.ErrInvalidFanIn},
		{name: "zero_page_size", cfg: extsort.Config[int]{FanIn: 1, Compare: cmp.Compare[int]}, want: extsort.ErrInvalidPageSize},
		{name: "nil_compare", cfg: extsort.Config[int]{FanIn: 1, PageSize: 1}, want: extsort.ErrNilCompare},
		{
			name: "unknown_strategy",
			cfg:  extsort.Config[int]{FanIn: 1, PageSize: 1, Compare: cmp.Compare[int], Strategy: "bubble"},
			want: extsort.ErrUnknownStrategy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s, err := extsort.New(tt.cfg)

			require.ErrorIs(t, err, tt.want)
			assert.Nil(t, s)
		})
	}
}

func TestSort_InvalidConfigFailsBeforeWork(t *testing.T) {
	t.Parallel()

	_, err := extsort.Sort(sample, 0, 3)
	require.ErrorIs(t, err, extsort.ErrInvalidFanIn)

	_, err = extsort.Sort(sample, 2, 0)
	require.ErrorIs(t, err, extsort.ErrInvalidPageSize)
}

func TestSort_ObserverSeesEveryPass(t *testing.T) {
	t.Parallel()

	var (
		snapshots [][]int
		passes    []extsort.PassStats
		completed extsort.Stats
	)

	observer := extsort.ObserverFuncs[int]{
		Pass: func(_ context.Context, pass extsort.PassStats, seq []int) error {
			passes = append(passes, pass)
			snapshots = append(snapshots, slices.Clone(seq))

			return nil
		},
		Complete: func(_ context.Context, stats extsort.Stats, err error) {
			assert.NoError(t, err)

			completed = stats
		},
	}

	s, err := extsort.New(extsort.Config[int]{FanIn: 2, PageSize: 3, Compare: cmp.Compare[int], Observer: observer})
	require.NoError(t, err)

	got, stats, err := s.Sort(context.Background(), sample)
	require.NoError(t, err)

	require.Len(t, snapshots, 2)
	assert.Equal(t, []int{2, 4, 5, 5, 5, 9, 0, 1, 3, 9}, snapshots[0])
	assert.Equal(t, got, snapshots[1])

	assert.Equal(t, 0, passes[0].Index)
	assert.Equal(t, 2, passes[0].PageCount)
	assert.Equal(t, 2, passes[0].Batches)
	assert.Equal(t, 6, passes[0].RunLength)

	assert.Equal(t, 1, passes[1].Index)
	assert.Equal(t, 4, passes[1].PageCount)
	assert.Equal(t, 1, passes[1].Batches)
	assert.Equal(t, 10, passes[1].RunLength)

	assert.Equal(t, stats, completed)
	assert.Equal(t, passes, stats.Passes)
	assert.Equal(t, passes[0].Comparisons+passes[1].Comparisons, stats.Comparisons)
}

func TestSort_PeakPagesBounded(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(3, 5))

	input := make([]int, 500)
	for i := range input {
		input[i] = rng.IntN(1000)
	}

	s, err := extsort.New(extsort.Config[int]{FanIn: 3, PageSize: 7, Compare: cmp.Compare[int]})
	require.NoError(t, err)

	_, stats, err := s.Sort(context.Background(), input)
	require.NoError(t, err)

	for _, pass := range stats.Passes {
		assert.Equal(t, extsort.PassPageCount(3, pass.Index), pass.PageCount)
		assert.LessOrEqual(t, pass.PeakPages, pass.PageCount)
		assert.LessOrEqual(t, pass.RunLength, extsort.RunLength(3, pass.Index, 7))
	}

	last := stats.Passes[len(stats.Passes)-1]
	assert.Equal(t, len(input), last.RunLength)
}

func TestSort_ObserverErrorAborts(t *testing.T) {
	t.Parallel()

	errBoom := errors.New("boom")

	var completeErr error

	s, err := extsort.New(extsort.Config[int]{
		FanIn:    2,
		PageSize: 3,
		Compare:  cmp.Compare[int],
		Observer: extsort.ObserverFuncs[int]{
			Pass: func(context.Context, extsort.PassStats, []int) error { return errBoom },
			Complete: func(_ context.Context, _ extsort.Stats, err error) {
				completeErr = err
			},
		},
	})
	require.NoError(t, err)

	got, stats, err := s.Sort(context.Background(), sample)

	require.ErrorIs(t, err, errBoom)
	assert.Contains(t, err.Error(), "pass 0 observer")
	assert.Nil(t, got)
	assert.Equal(t, 1, stats.PassCount())
	assert.ErrorIs(t, completeErr, errBoom)
}

func TestSort_CanceledContext(t *testing.T) {
	t.Parallel()

	s, err := extsort.New(extsort.Config[int]{FanIn: 2, PageSize: 3, Compare: cmp.Compare[int]})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err = s.Sort(ctx, sample)

	require.ErrorIs(t, err, context.Canceled)
}

func TestObservers_FanOutAndStopOnError(t *testing.T) {
	t.Parallel()

	var calls []string

	errStop := errors.New("stop")

	observers := extsort.Observers[int]{
		extsort.ObserverFuncs[int]{
			Pass: func(context.Context, extsort.PassStats, []int) error {
				calls = append(calls, "first")

				return errStop
			},
			Complete: func(context.Context, extsort.Stats, error) { calls = append(calls, "first-done") },
		},
		extsort.ObserverFuncs[int]{
			Pass: func(context.Context, extsort.PassStats, []int) error {
				calls = append(calls, "second")

				return nil
			},
			Complete: func(context.Context, extsort.Stats, error) { calls = append(calls, "second-done") },
		},
	}

	err := observers.OnPass(context.Background(), extsort.PassStats{}, nil)
	require.ErrorIs(t, err, errStop)

	observers.OnComplete(context.Background(), extsort.Stats{}, nil)

	assert.Equal(t, []string{"first", "first-done", "second-done"}, calls)
}
