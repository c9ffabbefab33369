package loader

import "fmt"

// UnsupportedFormatError reports a source file whose extension maps to no
// known format.
type UnsupportedFormatError struct {
	Path string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported format: %s", e.Path)
}

// LoadError reports a source file that exists in a supported format but
// could not be read or parsed. It always carries the underlying cause;
// no partial table is ever returned alongside it.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
