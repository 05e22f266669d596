package observability

import (
	"context"

	"github.com/hunomina/sort/pkg/extsort"
)

// NewSortObserver returns an observer that records every pass and the final
// outcome of a sort on m.
func NewSortObserver[T any](m *SortMetrics) extsort.Observer[T] {
	return extsort.ObserverFuncs[T]{
		Pass: func(ctx context.Context, pass extsort.PassStats, seq []T) error {
			m.RecordPass(ctx, pass.Index, len(seq), pass.Comparisons)

			return nil
		},
		Complete: func(ctx context.Context, stats extsort.Stats, err error) {
			m.RecordSort(ctx, string(stats.Strategy), err, stats.Duration)
		},
	}
}
