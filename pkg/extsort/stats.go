package extsort

import (
	"context"
	"time"
)

// PassStats describes one completed pass.
type PassStats struct {
	// Index is the 0-based pass number.
	Index int `json:"index" yaml:"index"`
	// PageCount is the number of pages built per batch, k·2ⁿ.
	PageCount int `json:"page_count" yaml:"page_count"`
	// Batches is the number of page batches read from the working sequence.
	Batches int `json:"batches" yaml:"batches"`
	// RunLength is the length of the longest sorted run the pass produced.
	RunLength int `json:"run_length" yaml:"run_length"`
	// PeakPages is the largest number of non-empty pages live in one batch.
	PeakPages int `json:"peak_pages" yaml:"peak_pages"`
	// Comparisons counts element comparisons made while merging.
	// Local page sorting on pass 0 is not included.
	Comparisons int64 `json:"comparisons" yaml:"comparisons"`
	// Duration is the wall time of the pass.
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// Stats summarizes a whole sort.
type Stats struct {
	Elements    int           `json:"elements"    yaml:"elements"`
	FanIn       int           `json:"fan_in"      yaml:"fan_in"`
	PageSize    int           `json:"page_size"   yaml:"page_size"`
	Strategy    Strategy      `json:"strategy"    yaml:"strategy"`
	Passes      []PassStats   `json:"passes"      yaml:"passes"`
	Comparisons int64         `json:"comparisons" yaml:"comparisons"`
	Duration    time.Duration `json:"duration"    yaml:"duration"`
}

// PassCount returns the number of passes executed.
func (s Stats) PassCount() int {
	return len(s.Passes)
}

// Observer receives progress from a Sorter.
//
// OnPass is called after every pass with the working sequence as it stands
// after that pass; the slice is only valid for the duration of the call.
// An error returned from OnPass aborts the sort.
type Observer[T any] interface {
	OnPass(ctx context.Context, pass PassStats, seq []T) error
	OnComplete(ctx context.Context, stats Stats, err error)
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs[T any] struct {
	Pass     func(ctx context.Context, pass PassStats, seq []T) error
	Complete func(ctx context.Context, stats Stats, err error)
}

// OnPass implements Observer.
func (o ObserverFuncs[T]) OnPass(ctx context.Context, pass PassStats, seq []T) error {
	if o.Pass == nil {
		return nil
	}

	return o.Pass(ctx, pass, seq)
}

// OnComplete implements Observer.
func (o ObserverFuncs[T]) OnComplete(ctx context.Context, stats Stats, err error) {
	if o.Complete != nil {
		o.Complete(ctx, stats, err)
	}
}

// Observers fans progress out to several observers in order.
// OnPass stops at the first error.
type Observers[T any] []Observer[T]

// OnPass implements Observer.
func (obs Observers[T]) OnPass(ctx context.Context, pass PassStats, seq []T) error {
	for _, o := range obs {
		err := o.OnPass(ctx, pass, seq)
		if err != nil {
			return err
		}
	}

	return nil
}

// OnComplete implements Observer.
func (obs Observers[T]) OnComplete(ctx context.Context, stats Stats, err error) {
	for _, o := range obs {
		o.OnComplete(ctx, stats, err)
	}
}
