package extsort

import (
	"fmt"

	"github.com/hunomina/sort/pkg/safeconv"
)

// Page is a read window over a contiguous run of elements.
//
// The window aliases the buffer it was built from. Consuming elements only
// advances the head cursor; the underlying buffer is never shifted.
type Page[T any] struct {
	buf  []T
	head int
}

// NewPage returns a page reading values from the front. The page aliases values.
func NewPage[T any](values []T) Page[T] {
	return Page[T]{buf: values}
}

// Len returns the number of unread elements.
func (p *Page[T]) Len() int {
	return len(p.buf) - p.head
}

// Exhausted reports whether every element has been consumed.
func (p *Page[T]) Exhausted() bool {
	return p.head >= len(p.buf)
}

// Head returns the next unread element. It panics on an exhausted page.
func (p *Page[T]) Head() T {
	return p.buf[p.head]
}

// Pop consumes and returns the next unread element. It panics on an exhausted page.
func (p *Page[T]) Pop() T {
	v := p.buf[p.head]
	p.head++

	return v
}

// Values returns the unread elements. The caller must not retain the slice
// past the next Pop.
func (p *Page[T]) Values() []T {
	return p.buf[p.head:]
}

// BuildPages takes up to pageCount pages of at most pageSize elements from the
// front of seq and returns them with the unconsumed remainder.
//
// Building stops once seq runs out, so fewer than pageCount pages come back
// when the data is short, the last one possibly partial. Only pages holding
// data are allocated, whatever pageCount is. Pages and remainder alias seq;
// concatenating the page values and the remainder yields seq again.
func BuildPages[T any](seq []T, pageCount, pageSize int) ([]Page[T], []T) {
	if pageSize < 1 {
		panic(fmt.Sprintf("extsort: page size %d", pageSize))
	}

	if pageCount < 0 {
		panic(fmt.Sprintf("extsort: page count %d", pageCount))
	}

	pages := make([]Page[T], 0, min(pageCount, pagesFor(len(seq), pageSize)))

	for len(pages) < pageCount && len(seq) > 0 {
		take := min(pageSize, len(seq))
		pages = append(pages, Page[T]{buf: seq[:take:take]})
		seq = seq[take:]
	}

	return pages, seq
}

// pagesFor returns the number of pages of pageSize needed to hold n elements.
func pagesFor(n, pageSize int) int {
	if n == 0 {
		return 0
	}

	return (n-1)/pageSize + 1
}

// GroupPages partitions pages into consecutive groups of exactly k pages.
// Group i holds pages[i*k : i*k+k] in their original order and aliases pages.
func GroupPages[T any](pages []Page[T], k int) ([][]Page[T], error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidFanIn, k)
	}

	if len(pages)%k != 0 {
		return nil, fmt.Errorf("%w: %d pages, fan-in %d", ErrUnevenGroups, len(pages), k)
	}

	return chunkPages(pages, k), nil
}

// groupBatch groups the pages built for a batch of pageCount pages.
//
// pageCount must be a multiple of k. Pages past the end of the data would be
// empty and contribute nothing to a merge, so they are never created and the
// last group may hold fewer than k pages. A saturated pageCount stands for a
// batch larger than any sequence and is not checked.
func groupBatch[T any](pages []Page[T], pageCount, k int) ([][]Page[T], error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidFanIn, k)
	}

	if pageCount < safeconv.MaxInt && pageCount%k != 0 {
		return nil, fmt.Errorf("%w: %d pages, fan-in %d", ErrUnevenGroups, pageCount, k)
	}

	if len(pages) > pageCount {
		return nil, fmt.Errorf("%w: %d pages built for a batch of %d", ErrUnevenGroups, len(pages), pageCount)
	}

	return chunkPages(pages, k), nil
}

// chunkPages splits pages into consecutive slices of k, the last one possibly
// shorter.
func chunkPages[T any](pages []Page[T], k int) [][]Page[T] {
	groups := make([][]Page[T], 0, pagesFor(len(pages), k))

	for start := 0; start < len(pages); {
		end := start + min(k, len(pages)-start)
		groups = append(groups, pages[start:end:end])
		start = end
	}

	return groups
}

// livePages counts pages that still hold unread elements.
func livePages[T any](pages []Page[T]) int {
	live := 0

	for i := range pages {
		if !pages[i].Exhausted() {
			live++
		}
	}

	return live
}
