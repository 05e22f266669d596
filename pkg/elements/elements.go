// Package elements reads and writes the element sequences kwaysort sorts:
// integers, floats and strings, as text lines, JSON arrays or YAML.
package elements

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// Element is the set of Go types an element kind maps onto.
type Element interface {
	int64 | float64 | string
}

// Kind names an element type on the command line and in MCP requests.
type Kind string

// Supported kinds.
const (
	KindInt    Kind = "int"
	KindFloat  Kind = "float"
	KindString Kind = "string"
)

// Errors returned by the package.
var (
	ErrUnknownKind     = errors.New("unknown element kind")
	ErrUnknownFormat   = errors.New("unknown format")
	ErrInvalidElement  = errors.New("invalid element")
	ErrInvalidDocument = errors.New("invalid document")
)

var errNonFinite = errors.New("non-finite float")

// Kinds lists every supported kind.
func Kinds() []Kind {
	return []Kind{KindInt, KindFloat, KindString}
}

// ParseKind validates s as a Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindInt, KindFloat, KindString:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// KindOf returns the kind T represents.
func KindOf[T Element]() Kind {
	var zero T

	switch any(zero).(type) {
	case int64:
		return KindInt
	case float64:
		return KindFloat
	default:
		return KindString
	}
}

// Parse converts the textual form of one element.
func Parse[T Element](s string) (T, error) {
	var v T

	var err error

	switch p := any(&v).(type) {
	case *int64:
		*p, err = strconv.ParseInt(s, 10, 64)
	case *float64:
		*p, err = strconv.ParseFloat(s, 64)
		// NaN has no order and neither it nor the infinities survive JSON output.
		if err == nil && (math.IsNaN(*p) || math.IsInf(*p, 0)) {
			err = errNonFinite
		}
	case *string:
		*p = s
	}

	if err != nil {
		var zero T

		return zero, fmt.Errorf("%w: %q is not a valid %s", ErrInvalidElement, s, KindOf[T]())
	}

	return v, nil
}

// Format returns the textual form of v accepted back by Parse.
func Format[T Element](v T) string {
	switch x := any(v).(type) {
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}
