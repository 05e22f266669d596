package elements

import (
	"fmt"
	"path/filepath"
	"strings"
)

// InputFormat selects how Read decodes a document.
type InputFormat string

// Supported input formats.
const (
	InputText InputFormat = "text"
	InputJSON InputFormat = "json"
)

// OutputFormat selects how Write encodes a sequence.
type OutputFormat string

// Supported output formats.
const (
	OutputText OutputFormat = "text"
	OutputJSON OutputFormat = "json"
	OutputYAML OutputFormat = "yaml"
)

// ParseInputFormat validates s as an InputFormat.
func ParseInputFormat(s string) (InputFormat, error) {
	switch f := InputFormat(s); f {
	case InputText, InputJSON:
		return f, nil
	default:
		return "", fmt.Errorf("%w: input %q", ErrUnknownFormat, s)
	}
}

// ParseOutputFormat validates s as an OutputFormat.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(s); f {
	case OutputText, OutputJSON, OutputYAML:
		return f, nil
	default:
		return "", fmt.Errorf("%w: output %q", ErrUnknownFormat, s)
	}
}

// DetectInputFormat guesses the input format from a file name, ignoring a
// trailing .lz4. Unrecognized names yield fallback.
func DetectInputFormat(path string, fallback InputFormat) InputFormat {
	name := strings.TrimSuffix(strings.ToLower(path), lz4Suffix)

	if filepath.Ext(name) == ".json" {
		return InputJSON
	}

	return fallback
}
