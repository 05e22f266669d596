// Package budget derives merge sort page sizes from a memory budget and
// estimates the memory a sort will hold.
package budget

import (
	"github.com/hunomina/sort/pkg/extsort"
	"github.com/hunomina/sort/pkg/safeconv"
)

// Size unit multipliers (binary, 1024-based).
const (
	KiB = 1024
	MiB = 1024 * KiB
	GiB = 1024 * MiB
)

// BufferCount is the number of full-length element buffers a Sorter keeps:
// the working sequence and the output of the pass in progress.
const BufferCount = 2

// EstimateMemoryUsage returns the bytes held by the element buffers of a sort
// over elements values of elementSize bytes each.
func EstimateMemoryUsage(elements, elementSize int) int64 {
	return int64(safeconv.SaturatingMul(BufferCount, safeconv.SaturatingMul(elements, elementSize)))
}

// BatchMemory returns the bytes of data one batch of pass n reads from a
// sequence of total elements: k·2ⁿ full pages, or the whole sequence when it
// is shorter.
func BatchMemory(k, n, pageSize, elementSize, total int) int64 {
	elements := min(extsort.RunLength(k, n, pageSize), total)

	return int64(safeconv.SaturatingMul(elements, elementSize))
}
