package extsort

import (
	"fmt"

	"github.com/hunomina/sort/pkg/safeconv"
)

// PassPageCount returns the number of pages built and merged together per
// batch during pass n: k·2ⁿ, saturating at math.MaxInt.
func PassPageCount(k, n int) int {
	return safeconv.SaturatingShl(k, n)
}

// RunLength returns the number of elements one sorted run covers after pass n.
func RunLength(k, n, pageSize int) int {
	return safeconv.SaturatingMul(PassPageCount(k, n), pageSize)
}

// Covers reports whether the runs produced by pass n span a sequence of
// length total, i.e. whether the sort is finished after pass n.
func Covers(k, n, pageSize, total int) bool {
	return RunLength(k, n, pageSize) >= total
}

// PlannedPass describes a pass of a sort before it runs.
type PlannedPass struct {
	Index     int `json:"index"      yaml:"index"`
	PageCount int `json:"page_count" yaml:"page_count"`
	RunLength int `json:"run_length" yaml:"run_length"`
	Batches   int `json:"batches"    yaml:"batches"`
}

// Plan returns the passes a Sorter with fan-in k and the given page size
// executes over total elements. An empty input needs no passes.
func Plan(k, pageSize, total int) ([]PlannedPass, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidFanIn, k)
	}

	if pageSize < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPageSize, pageSize)
	}

	var passes []PlannedPass

	for n := 0; total > 0; n++ {
		run := RunLength(k, n, pageSize)

		passes = append(passes, PlannedPass{
			Index:     n,
			PageCount: PassPageCount(k, n),
			RunLength: run,
			Batches:   (total-1)/run + 1,
		})

		if Covers(k, n, pageSize, total) {
			break
		}
	}

	return passes, nil
}
