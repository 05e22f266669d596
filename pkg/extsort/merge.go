package extsort

import (
	"container/heap"
	"fmt"
)

// Strategy selects how the merger finds the smallest head element.
type Strategy string

const (
	// MergeScan compares the heads of every page for each emitted element.
	MergeScan Strategy = "scan"
	// MergeHeap keeps the page heads in a min-heap sized to the live pages.
	MergeHeap Strategy = "heap"
)

// DefaultStrategy is used when a Config leaves Strategy empty.
const DefaultStrategy = MergeHeap

// ParseStrategy converts a strategy name into a Strategy.
// The empty string selects DefaultStrategy.
func ParseStrategy(name string) (Strategy, error) {
	switch Strategy(name) {
	case "":
		return DefaultStrategy, nil
	case MergeScan, MergeHeap:
		return Strategy(name), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}

// MergeGroup merges k sorted pages into a single sorted sequence whose
// length is the sum of the page lengths. The pages are consumed.
func MergeGroup[T any](group []Page[T], compare func(a, b T) int) []T {
	return MergeGroups([][]Page[T]{group}, compare)
}

// MergeGroups merges every page of every group into a single sorted sequence.
// The pages are consumed.
//
// Among equal heads the page with the lowest (group, page) index is emitted
// first; no further ordering of equal elements is promised.
func MergeGroups[T any](groups [][]Page[T], compare func(a, b T) int) []T {
	m := merger[T]{compare: compare, strategy: DefaultStrategy}

	return m.merge(groups, make([]T, 0, unread(groups)))
}

type merger[T any] struct {
	compare     func(a, b T) int
	strategy    Strategy
	comparisons int64
}

// merge appends the merged contents of groups to out.
func (m *merger[T]) merge(groups [][]Page[T], out []T) []T {
	if m.strategy == MergeScan {
		return m.mergeScan(groups, out)
	}

	return m.mergeHeap(groups, out)
}

func (m *merger[T]) mergeScan(groups [][]Page[T], out []T) []T {
	for {
		bestGroup, bestPage := -1, -1

		for g := range groups {
			for p := range groups[g] {
				page := &groups[g][p]
				if page.Exhausted() {
					continue
				}

				if bestGroup < 0 {
					bestGroup, bestPage = g, p

					continue
				}

				m.comparisons++

				if m.compare(page.Head(), groups[bestGroup][bestPage].Head()) < 0 {
					bestGroup, bestPage = g, p
				}
			}
		}

		if bestGroup < 0 {
			return out
		}

		out = append(out, groups[bestGroup][bestPage].Pop())
	}
}

func (m *merger[T]) mergeHeap(groups [][]Page[T], out []T) []T {
	h := &headHeap[T]{groups: groups, m: m}

	for g := range groups {
		for p := range groups[g] {
			if !groups[g][p].Exhausted() {
				h.cursors = append(h.cursors, cursor{group: g, page: p})
			}
		}
	}

	heap.Init(h)

	for h.Len() > 0 {
		top := h.cursors[0]
		page := &groups[top.group][top.page]

		out = append(out, page.Pop())

		if page.Exhausted() {
			heap.Pop(h)
		} else {
			heap.Fix(h, 0)
		}
	}

	return out
}

// cursor addresses one page of a batch.
type cursor struct {
	group int
	page  int
}

// headHeap orders cursors by head element, then by (group, page).
type headHeap[T any] struct {
	groups  [][]Page[T]
	cursors []cursor
	m       *merger[T]
}

func (h *headHeap[T]) Len() int { return len(h.cursors) }

func (h *headHeap[T]) Less(i, j int) bool {
	a, b := h.cursors[i], h.cursors[j]

	h.m.comparisons++

	c := h.m.compare(h.groups[a.group][a.page].Head(), h.groups[b.group][b.page].Head())
	if c != 0 {
		return c < 0
	}

	if a.group != b.group {
		return a.group < b.group
	}

	return a.page < b.page
}

func (h *headHeap[T]) Swap(i, j int) { h.cursors[i], h.cursors[j] = h.cursors[j], h.cursors[i] }

func (h *headHeap[T]) Push(x any) { h.cursors = append(h.cursors, x.(cursor)) }

func (h *headHeap[T]) Pop() any {
	last := h.cursors[len(h.cursors)-1]
	h.cursors = h.cursors[:len(h.cursors)-1]

	return last
}

// unread counts the unread elements across groups.
func unread[T any](groups [][]Page[T]) int {
	total := 0

	for g := range groups {
		for p := range groups[g] {
			total += groups[g][p].Len()
		}
	}

	return total
}
