package elements

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

const yamlIndent = 2

// Write encodes values to w in the given format.
func Write[T Element](w io.Writer, format OutputFormat, values []T) error {
	switch format {
	case OutputText:
		return WriteText(w, values)
	case OutputJSON:
		return WriteJSON(w, values)
	case OutputYAML:
		return WriteYAML(w, values)
	default:
		return fmt.Errorf("%w: output %q", ErrUnknownFormat, format)
	}
}

// WriteText writes one element per line.
func WriteText[T Element](w io.Writer, values []T) error {
	bw := bufio.NewWriter(w)

	for _, v := range values {
		_, err := bw.WriteString(Format(v))
		if err != nil {
			return fmt.Errorf("write text: %w", err)
		}

		err = bw.WriteByte('\n')
		if err != nil {
			return fmt.Errorf("write text: %w", err)
		}
	}

	err := bw.Flush()
	if err != nil {
		return fmt.Errorf("write text: %w", err)
	}

	return nil
}

// WriteJSON writes values as a single JSON array. A nil slice is written as [].
func WriteJSON[T Element](w io.Writer, values []T) error {
	if values == nil {
		values = []T{}
	}

	err := json.NewEncoder(w).Encode(values)
	if err != nil {
		return fmt.Errorf("write json: %w", err)
	}

	return nil
}

// WriteYAML writes values as a YAML sequence.
func WriteYAML[T Element](w io.Writer, values []T) error {
	if values == nil {
		values = []T{}
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(yamlIndent)

	err := enc.Encode(values)
	if err != nil {
		return fmt.Errorf("write yaml: %w", err)
	}

	err = enc.Close()
	if err != nil {
		return fmt.Errorf("write yaml: %w", err)
	}

	return nil
}
