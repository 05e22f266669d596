package extsort

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"
)

// Span names recorded by a Sorter.
const (
	SpanSort = "kwaysort.sort"
	SpanPass = "kwaysort.pass"
)

// Span attributes recorded by a Sorter.
const (
	attrFanIn    = "kwaysort.fan_in"
	attrPageSize = "kwaysort.page_size"
	attrElements = "kwaysort.elements"
	attrStrategy = "kwaysort.strategy"
	attrPass     = "kwaysort.pass"
	attrPages    = "kwaysort.pass.page_count"
)

// Config configures a Sorter.
type Config[T any] struct {
	// FanIn is the merge fan-in k. Must be at least 1.
	FanIn int
	// PageSize is the maximum number of elements in one page. Must be at least 1.
	PageSize int
	// Compare returns a negative number, zero, or a positive number when a is
	// less than, equal to, or greater than b.
	Compare func(a, b T) int
	// Strategy selects the head selection algorithm. Empty uses DefaultStrategy.
	Strategy Strategy
	// Observer is notified after every pass. Optional.
	Observer Observer[T]
	// Logger receives debug records per pass. Nil disables logging.
	Logger *slog.Logger
	// Tracer records a span per sort and per pass. Nil disables tracing.
	Tracer trace.Tracer
}

// Sorter runs k-way external merge sorts with a fixed configuration.
// A Sorter holds no per-sort state and may be used from several goroutines.
type Sorter[T any] struct {
	k        int
	pageSize int
	compare  func(a, b T) int
	strategy Strategy
	observer Observer[T]
	logger   *slog.Logger
	tracer   trace.Tracer
}

// New validates cfg and returns a Sorter.
func New[T any](cfg Config[T]) (*Sorter[T], error) {
	if cfg.FanIn < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidFanIn, cfg.FanIn)
	}

	if cfg.PageSize < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPageSize, cfg.PageSize)
	}

	if cfg.Compare == nil {
		return nil, ErrNilCompare
	}

	strategy, err := ParseStrategy(string(cfg.Strategy))
	if err != nil {
		return nil, err
	}

	s := &Sorter[T]{
		k:        cfg.FanIn,
		pageSize: cfg.PageSize,
		compare:  cfg.Compare,
		strategy: strategy,
		observer: cfg.Observer,
		logger:   cfg.Logger,
		tracer:   cfg.Tracer,
	}

	if s.observer == nil {
		s.observer = ObserverFuncs[T]{}
	}

	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}

	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer("")
	}

	return s, nil
}

// Sort sorts seq in non-decreasing order of the natural ordering of T.
func Sort[T cmp.Ordered](seq []T, k, pageSize int) ([]T, error) {
	return SortFunc(seq, k, pageSize, cmp.Compare[T])
}

// SortFunc sorts seq in non-decreasing order of compare.
func SortFunc[T any](seq []T, k, pageSize int, compare func(a, b T) int) ([]T, error) {
	s, err := New(Config[T]{FanIn: k, PageSize: pageSize, Compare: compare})
	if err != nil {
		return nil, err
	}

	sorted, _, err := s.Sort(context.Background(), seq)

	return sorted, err
}

// Sort returns a sorted copy of seq together with per-pass statistics.
// seq itself is not modified. An empty seq is returned as is after zero passes.
//
// The context is checked between page batches; cancellation returns ctx.Err().
func (s *Sorter[T]) Sort(ctx context.Context, seq []T) ([]T, Stats, error) {
	start := time.Now()

	stats := Stats{
		Elements: len(seq),
		FanIn:    s.k,
		PageSize: s.pageSize,
		Strategy: s.strategy,
	}

	ctx, span := s.tracer.Start(ctx, SpanSort, trace.WithAttributes(
		attribute.Int(attrFanIn, s.k),
		attribute.Int(attrPageSize, s.pageSize),
		attribute.Int(attrElements, len(seq)),
		attribute.String(attrStrategy, string(s.strategy)),
	))
	defer span.End()

	sorted, err := s.run(ctx, seq, &stats)

	stats.Duration = time.Since(start)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	s.observer.OnComplete(ctx, stats, err)

	if err != nil {
		return nil, stats, err
	}

	s.logger.DebugContext(ctx, "sort complete",
		"elements", stats.Elements,
		"passes", stats.PassCount(),
		"comparisons", stats.Comparisons,
		"duration", stats.Duration,
	)

	return sorted, stats, nil
}

func (s *Sorter[T]) run(ctx context.Context, seq []T, stats *Stats) ([]T, error) {
	if len(seq) == 0 {
		return seq, nil
	}

	cur := slices.Clone(seq)
	next := make([]T, 0, len(cur))

	for n := 0; ; n++ {
		out, pass, err := s.pass(ctx, cur, next[:0], n)
		if err != nil {
			return nil, fmt.Errorf("pass %d: %w", n, err)
		}

		// The previous sequence becomes the next pass's output buffer.
		cur, next = out, cur

		stats.Passes = append(stats.Passes, pass)
		stats.Comparisons += pass.Comparisons

		err = s.observer.OnPass(ctx, pass, cur)
		if err != nil {
			return nil, fmt.Errorf("pass %d observer: %w", n, err)
		}

		if Covers(s.k, n, s.pageSize, len(cur)) {
			return cur, nil
		}
	}
}

// pass reads cur in batches of PassPageCount(k, n) pages, merges every batch
// into one run and appends the runs to out.
func (s *Sorter[T]) pass(ctx context.Context, cur, out []T, n int) ([]T, PassStats, error) {
	start := time.Now()
	pageCount := PassPageCount(s.k, n)

	ctx, span := s.tracer.Start(ctx, SpanPass, trace.WithAttributes(
		attribute.Int(attrPass, n),
		attribute.Int(attrPages, pageCount),
	))
	defer span.End()

	stats := PassStats{Index: n, PageCount: pageCount}
	m := merger[T]{compare: s.compare, strategy: s.strategy}

	for rest := cur; len(rest) > 0; {
		err := ctx.Err()
		if err != nil {
			return nil, stats, err
		}

		var pages []Page[T]

		pages, rest = BuildPages(rest, pageCount, s.pageSize)

		// Pages arrive unsorted only on the first pass; later passes read
		// slices of runs that are already sorted.
		if n == 0 {
			for i := range pages {
				slices.SortFunc(pages[i].buf, s.compare)
			}
		}

		stats.PeakPages = max(stats.PeakPages, livePages(pages))

		groups, err := groupBatch(pages, pageCount, s.k)
		if err != nil {
			span.RecordError(err)

			return nil, stats, err
		}

		runStart := len(out)
		out = m.merge(groups, out)

		stats.RunLength = max(stats.RunLength, len(out)-runStart)
		stats.Batches++
	}

	stats.Comparisons = m.comparisons
	stats.Duration = time.Since(start)

	s.logger.DebugContext(ctx, "pass complete",
		"pass", n,
		"page_count", pageCount,
		"batches", stats.Batches,
		"run_length", stats.RunLength,
		"comparisons", stats.Comparisons,
	)

	return out, stats, nil
}
