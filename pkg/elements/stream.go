package elements

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pierrec/lz4/v4"
)

// StdioPath stands for standard input or output.
const StdioPath = "-"

const lz4Suffix = ".lz4"

// Compressed reports whether path names an LZ4 frame file.
func Compressed(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), lz4Suffix)
}

// OpenInput opens path for reading. An empty path or "-" reads stdin. Paths
// ending in .lz4 are decompressed transparently.
func OpenInput(path string, stdin io.Reader) (io.ReadCloser, error) {
	if path == "" || path == StdioPath {
		return io.NopCloser(stdin), nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}

	if !Compressed(path) {
		return file, nil
	}

	return struct {
		io.Reader
		io.Closer
	}{lz4.NewReader(file), file}, nil
}

// CreateOutput creates path for writing. An empty path or "-" writes to
// stdout, which is never closed. Paths ending in .lz4 are compressed.
func CreateOutput(path string, stdout io.Writer) (io.WriteCloser, error) {
	if path == "" || path == StdioPath {
		return nopWriteCloser{stdout}, nil
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}

	if !Compressed(path) {
		return file, nil
	}

	return &lz4File{Writer: lz4.NewWriter(file), file: file}, nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// lz4File flushes the LZ4 frame before closing the underlying file.
type lz4File struct {
	*lz4.Writer
	file *os.File
}

func (f *lz4File) Close() error {
	return errors.Join(f.Writer.Close(), f.file.Close())
}
