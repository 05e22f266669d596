package persist

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hunomina/sort/pkg/extsort"
)

const statsBasename = "stats"

// Snapshot is the working sequence as it stood after one pass.
type Snapshot[T any] struct {
	Pass   extsort.PassStats `json:"pass"`
	Values []T               `json:"values"`
}

// SnapshotName returns the basename used for the snapshot of pass index.
func SnapshotName(index int) string {
	return fmt.Sprintf("pass_%03d", index)
}

// SnapshotObserver writes every pass of a sort to dir/pass_NNN<ext> and the
// final statistics of a successful sort to dir/stats<ext>.
type SnapshotObserver[T any] struct {
	dir    string
	codec  Codec
	stats  *Persister[extsort.Stats]
	logger *slog.Logger
}

// NewSnapshotObserver creates an observer that persists passes under dir.
// A nil logger discards records.
func NewSnapshotObserver[T any](dir string, codec Codec, logger *slog.Logger) *SnapshotObserver[T] {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &SnapshotObserver[T]{
		dir:    dir,
		codec:  codec,
		stats:  NewPersister[extsort.Stats](statsBasename, codec),
		logger: logger,
	}
}

// OnPass implements extsort.Observer. A failed write aborts the sort.
func (o *SnapshotObserver[T]) OnPass(ctx context.Context, pass extsort.PassStats, seq []T) error {
	name := SnapshotName(pass.Index)

	err := SaveState(o.dir, name, o.codec, Snapshot[T]{Pass: pass, Values: seq})
	if err != nil {
		return fmt.Errorf("snapshot %s: %w", name, err)
	}

	o.logger.DebugContext(ctx, "pass snapshot written",
		"path", StatePath(o.dir, name, o.codec),
		"elements", len(seq),
	)

	return nil
}

// OnComplete implements extsort.Observer. Statistics of failed sorts are not written.
func (o *SnapshotObserver[T]) OnComplete(ctx context.Context, stats extsort.Stats, err error) {
	if err != nil {
		return
	}

	saveErr := o.stats.Save(o.dir, stats)
	if saveErr != nil {
		o.logger.WarnContext(ctx, "failed to write sort stats", "dir", o.dir, "error", saveErr)
	}
}

// LoadSnapshot reads the snapshot of pass index from dir.
func LoadSnapshot[T any](dir string, index int, codec Codec) (Snapshot[T], error) {
	var snap Snapshot[T]

	err := LoadState(dir, SnapshotName(index), codec, &snap)
	if err != nil {
		return Snapshot[T]{}, err
	}

	return snap, nil
}

// LoadStats reads the statistics written after a successful sort.
func LoadStats(dir string, codec Codec) (extsort.Stats, error) {
	return NewPersister[extsort.Stats](statsBasename, codec).Load(dir)
}
