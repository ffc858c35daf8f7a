package platforms

import "fmt"

// SourceNotFoundError describes a compilation target which does not exist.
type SourceNotFoundError struct {
	// Path describes the compilation target which could not be found.
	Path string

	// Err describes the underlying file system error.
	Err error
}

// Error returns the error message string, implementing the `error` interface.
func (e *SourceNotFoundError) Error() string {
	return fmt.Sprintf("source file not found: %s", e.Path)
}

// Unwrap returns the underlying file system error.
func (e *SourceNotFoundError) Unwrap() error {
	return e.Err
}

// ImportNotFoundError describes a compilation which failed because a source file imported by the target could not be
// resolved.
type ImportNotFoundError struct {
	// Path describes the compilation target.
	Path string

	// Import describes the import which could not be resolved.
	Import string

	// Output describes the compiler output.
	Output string
}

// Error returns the error message string, implementing the `error` interface.
func (e *ImportNotFoundError) Error() string {
	return fmt.Sprintf("import %q of %s could not be found", e.Import, e.Path)
}

// CompilerOutputError describes a compiler invocation which failed for reasons other than missing files, such as
// syntax or type errors in the source.
type CompilerOutputError struct {
	// Platform describes the compilation platform which failed.
	Platform string

	// Output describes the compiler output.
	Output string

	// Err describes the error returned when running the compiler.
	Err error
}

// Error returns the error message string, implementing the `error` interface.
func (e *CompilerOutputError) Error() string {
	return fmt.Sprintf("error while executing %s: %v\n\nCommand Output:\n%s", e.Platform, e.Err, e.Output)
}

// Unwrap returns the error returned when running the compiler.
func (e *CompilerOutputError) Unwrap() error {
	return e.Err
}
