package extsort

import "errors"

// Configuration and invariant errors.
var (
	// ErrInvalidFanIn indicates a merge fan-in below 1.
	ErrInvalidFanIn = errors.New("fan-in must be at least 1")
	// ErrInvalidPageSize indicates a page size below 1.
	ErrInvalidPageSize = errors.New("page size must be at least 1")
	// ErrNilCompare indicates a Config without a comparison function.
	ErrNilCompare = errors.New("compare function is required")
	// ErrUnknownStrategy indicates an unrecognized merge strategy name.
	ErrUnknownStrategy = errors.New("unknown merge strategy")
	// ErrUnevenGroups indicates a page count that is not a multiple of the fan-in.
	// It is an internal consistency failure and aborts the sort.
	ErrUnevenGroups = errors.New("page count is not a multiple of fan-in")
)
