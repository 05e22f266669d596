package elements

import (
	"bufio"
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

const (
	maxLineSize       = 1 << 20
	maxReportedErrors = 5
)

//go:embed schema/*.json
var schemaFS embed.FS

var schemas = map[Kind]func() (*gojsonschema.Schema, error){
	KindInt:    sync.OnceValues(func() (*gojsonschema.Schema, error) { return loadSchema(KindInt) }),
	KindFloat:  sync.OnceValues(func() (*gojsonschema.Schema, error) { return loadSchema(KindFloat) }),
	KindString: sync.OnceValues(func() (*gojsonschema.Schema, error) { return loadSchema(KindString) }),
}

func loadSchema(kind Kind) (*gojsonschema.Schema, error) {
	data, err := schemaFS.ReadFile("schema/" + string(kind) + ".json")
	if err != nil {
		return nil, fmt.Errorf("read %s schema: %w", kind, err)
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("compile %s schema: %w", kind, err)
	}

	return schema, nil
}

// Read decodes a sequence of T from r in the given format.
func Read[T Element](r io.Reader, format InputFormat) ([]T, error) {
	switch format {
	case InputText:
		return ReadText[T](r)
	case InputJSON:
		return ReadJSON[T](r)
	default:
		return nil, fmt.Errorf("%w: input %q", ErrUnknownFormat, format)
	}
}

// ReadText reads one element per line. Numeric kinds ignore surrounding
// whitespace and blank lines; strings keep every line verbatim apart from a
// trailing carriage return.
func ReadText[T Element](r io.Reader) ([]T, error) {
	numeric := KindOf[T]() != KindString

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), maxLineSize)

	var out []T

	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSuffix(scanner.Text(), "\r")

		if numeric {
			text = strings.TrimSpace(text)
			if text == "" {
				continue
			}
		}

		v, err := Parse[T](text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		out = append(out, v)
	}

	err := scanner.Err()
	if err != nil {
		return nil, fmt.Errorf("read lines: %w", err)
	}

	return out, nil
}

// ReadJSON reads a JSON array of T. The document is validated against the
// schema of T's kind before decoding, so type errors name every offending
// item instead of the first one.
func ReadJSON[T Element](r io.Reader) ([]T, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	err = Validate(KindOf[T](), data)
	if err != nil {
		return nil, err
	}

	var out []T

	err = json.Unmarshal(data, &out)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	return out, nil
}

// Validate checks that data is a JSON array of elements of kind.
func Validate(kind Kind, data []byte) error {
	load, ok := schemas[kind]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	schema, err := load()
	if err != nil {
		return err
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	if result.Valid() {
		return nil
	}

	problems := result.Errors()
	msgs := make([]string, 0, min(len(problems), maxReportedErrors))

	for _, problem := range problems[:min(len(problems), maxReportedErrors)] {
		msgs = append(msgs, problem.String())
	}

	if len(problems) > maxReportedErrors {
		msgs = append(msgs, fmt.Sprintf("and %d more", len(problems)-maxReportedErrors))
	}

	return fmt.Errorf("%w: %s", ErrInvalidDocument, strings.Join(msgs, "; "))
}
