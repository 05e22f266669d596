package persist

// Persister saves and loads one state type under a fixed basename.
type Persister[T any] struct {
	basename string
	codec    Codec
}

// NewPersister creates a persister with the given basename and codec.
func NewPersister[T any](basename string, codec Codec) *Persister[T] {
	return &Persister[T]{
		basename: basename,
		codec:    codec,
	}
}

// Path returns the file the persister reads and writes under dir.
func (p *Persister[T]) Path(dir string) string {
	return StatePath(dir, p.basename, p.codec)
}

// Save writes state under dir.
func (p *Persister[T]) Save(dir string, state T) error {
	return SaveState(dir, p.basename, p.codec, &state)
}

// Load reads the state previously saved under dir.
func (p *Persister[T]) Load(dir string) (T, error) {
	var state T

	err := LoadState(dir, p.basename, p.codec, &state)
	if err != nil {
		var zero T

		return zero, err
	}

	return state, nil
}
