package devtools

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
)

// Config controls whether a store is bridged.
type Config struct {
	// LogOnly disables bridging while keeping the feature in place.
	LogOnly bool
}

// DefaultConfig is used when no ConfigSource supplies a value.
func DefaultConfig() Config {
	return Config{LogOnly: false}
}

// PartialConfig carries the fields a caller chose to override.
type PartialConfig struct {
	LogOnly *bool `toml:"log_only" json:"log_only,omitempty"`
}

// Merge applies the populated fields of p over base.
func (p PartialConfig) Merge(base Config) Config {
	out := base
	if p.LogOnly != nil {
		out.LogOnly = *p.LogOnly
	}
	return out
}

// ConfigSource resolves the devtools configuration for an attach. ok=false
// means no configuration was provided and defaults apply.
type ConfigSource interface {
	DevtoolsConfig() (cfg Config, ok bool)
}

// ConfigSourceFunc adapts a function to ConfigSource.
type ConfigSourceFunc func() (Config, bool)

// DevtoolsConfig implements ConfigSource.
func (f ConfigSourceFunc) DevtoolsConfig() (Config, bool) {
	if f == nil {
		return Config{}, false
	}
	return f()
}

// ProvideConfig returns a ConfigSource that always yields partial merged over
// DefaultConfig.
func ProvideConfig(partial PartialConfig) ConfigSource {
	cfg := partial.Merge(DefaultConfig())
	return ConfigSourceFunc(func() (Config, bool) {
		return cfg, true
	})
}

// ResolveConfig reads source, falling back to DefaultConfig.
func ResolveConfig(source ConfigSource) Config {
	if source == nil {
		return DefaultConfig()
	}
	cfg, ok := source.DevtoolsConfig()
	if !ok {
		return DefaultConfig()
	}
	return cfg
}

// ParseConfigTOML decodes a partial configuration document, either flat or
// nested under a [devtools] table.
func ParseConfigTOML(data []byte) (PartialConfig, error) {
	var doc struct {
		LogOnly  *bool          `toml:"log_only"`
		Devtools *PartialConfig `toml:"devtools"`
	}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return PartialConfig{}, fmt.Errorf("devtools: parse config: %w", err)
	}
	if doc.Devtools != nil {
		return *doc.Devtools, nil
	}
	return PartialConfig{LogOnly: doc.LogOnly}, nil
}

// BoolPtr is a helper for building PartialConfig literals.
func BoolPtr(v bool) *bool {
	return &v
}
