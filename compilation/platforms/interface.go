package platforms

import "github.com/crytic/tokengas/compilation/types"

// PlatformConfig describes the interface all compilation platform configs must implement.
type PlatformConfig interface {
	// Compile compiles the target and returns the resulting compilations along with any compiler output which should
	// be surfaced to the user.
	Compile() ([]types.Compilation, string, error)

	// Platform returns the unique identifier of the compilation platform.
	Platform() string

	// GetTarget returns the target for compilation.
	GetTarget() string

	// SetTarget sets the new target for compilation.
	SetTarget(string)
}
