package compilation

import (
	"encoding/json"

	"github.com/crytic/tokengas/compilation/platforms"
	"github.com/pkg/errors"
)

// CompilationConfig describes the configuration options used to compile a smart contract target.
type CompilationConfig struct {
	// Platform references an identifier indicating which compilation platform to use.
	// PlatformConfig is a structure dependent on the defined Platform.
	Platform string `json:"platform"`

	// PlatformConfig describes the Platform-specific configuration needed to compile.
	PlatformConfig *json.RawMessage `json:"platformConfig"`
}

// NewCompilationConfig returns a CompilationConfig with default values for a given platform identifier.
// If an error occurs, it is returned instead.
func NewCompilationConfig(platform string) (*CompilationConfig, error) {
	if !IsSupportedCompilationPlatform(platform) {
		return nil, errors.Errorf("could not get default compilation configs: platform '%s' is unsupported", platform)
	}
	return NewCompilationConfigFromPlatformConfig(GetDefaultPlatformConfig(platform))
}

// NewCompilationConfigFromPlatformConfig takes a platforms.PlatformConfig and wraps it in a generic
// CompilationConfig. This allows many platform config types to be serialized/deserialized to their appropriate
// types and supported generally.
func NewCompilationConfigFromPlatformConfig(platformConfig platforms.PlatformConfig) (*CompilationConfig, error) {
	b, err := json.Marshal(platformConfig)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	platformConfigMsg := json.RawMessage(b)
	return &CompilationConfig{Platform: platformConfig.Platform(), PlatformConfig: &platformConfigMsg}, nil
}

// GetPlatformConfig deserializes the inner platforms.PlatformConfig. Every call returns a fresh value, so callers may
// retarget it without affecting the CompilationConfig.
func (c *CompilationConfig) GetPlatformConfig() (platforms.PlatformConfig, error) {
	if !IsSupportedCompilationPlatform(c.Platform) {
		return nil, errors.Errorf("platform '%s' is unsupported", c.Platform)
	}

	// json.Unmarshal needs a concrete structure to populate, so start from the platform's defaults
	platformConfig := GetDefaultPlatformConfig(c.Platform)
	if c.PlatformConfig != nil {
		if err := json.Unmarshal(*c.PlatformConfig, platformConfig); err != nil {
			return nil, errors.Wrapf(err, "invalid %s platform config", c.Platform)
		}
	}
	return platformConfig, nil
}

// SetTarget updates the compilation target stored in the platform config.
func (c *CompilationConfig) SetTarget(target string) error {
	platformConfig, err := c.GetPlatformConfig()
	if err != nil {
		return err
	}
	platformConfig.SetTarget(target)

	updated, err := NewCompilationConfigFromPlatformConfig(platformConfig)
	if err != nil {
		return err
	}
	c.PlatformConfig = updated.PlatformConfig
	return nil
}

// Validate ensures the platform is supported and its config can be decoded.
func (c *CompilationConfig) Validate() error {
	_, err := c.GetPlatformConfig()
	return err
}
