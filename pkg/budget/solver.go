package budget

import (
	"errors"
	"fmt"
	"math"

	"github.com/dustin/go-humanize"

	"github.com/hunomina/sort/pkg/safeconv"
)

const (
	// SlackPercent is reserved for runtime overhead.
	SlackPercent = 5

	// percentDivisor is used for percentage calculations.
	percentDivisor = 100
)

// Solver errors.
var (
	// ErrBudgetTooSmall indicates the budget cannot hold one element per page.
	ErrBudgetTooSmall = errors.New("memory budget is too small")
	// ErrInvalidElementSize indicates a non-positive element size.
	ErrInvalidElementSize = errors.New("element size must be positive")
	// ErrInvalidFanIn indicates a fan-in below 1.
	ErrInvalidFanIn = errors.New("fan-in must be at least 1")
)

// PageSizeForBudget returns the largest page size for which the k pages read
// by the first pass fit in budget bytes after the slack reserve.
func PageSizeForBudget(budget int64, elementSize, k int) (int, error) {
	if elementSize < 1 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidElementSize, elementSize)
	}

	if k < 1 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidFanIn, k)
	}

	perPage := int64(safeconv.SaturatingMul(k, elementSize))
	usable := usableBudget(budget)

	if usable < perPage {
		return 0, fmt.Errorf("%w: %s usable, %s needed for %d pages of one element (budget at least %s)",
			ErrBudgetTooSmall, humanize.IBytes(nonNegative(usable)), humanize.IBytes(nonNegative(perPage)), k,
			humanize.IBytes(nonNegative(MinimumBudget(k, elementSize))))
	}

	return safeconv.ClampInt64ToInt(usable / perPage), nil
}

// MinimumBudget returns the smallest budget PageSizeForBudget accepts for the
// given fan-in and element size.
func MinimumBudget(k, elementSize int) int64 {
	perPage := int64(safeconv.SaturatingMul(max(k, 1), max(elementSize, 1)))
	if perPage > math.MaxInt64/percentDivisor {
		return math.MaxInt64
	}

	keep := int64(percentDivisor - SlackPercent)

	return (perPage*percentDivisor + keep - 1) / keep
}

// usableBudget returns floor(budget·95/100) without overflowing.
func usableBudget(budget int64) int64 {
	if budget <= 0 {
		return 0
	}

	keep := int64(percentDivisor - SlackPercent)

	return budget/percentDivisor*keep + budget%percentDivisor*keep/percentDivisor
}

func nonNegative(v int64) uint64 {
	if v < 0 {
		return 0
	}

	return uint64(v)
}

// ResolvePageSize returns pageSize unchanged when no budget is set and the
// page size derived from budget otherwise.
func ResolvePageSize(pageSize int, budget int64, elementSize, k int) (int, error) {
	if budget <= 0 {
		return pageSize, nil
	}

	return PageSizeForBudget(budget, elementSize, k)
}
