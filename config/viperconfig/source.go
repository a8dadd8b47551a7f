// Package viperconfig resolves devtools configuration through viper, so the
// bridge can be driven from a devtools.toml file or DEVTOOLS_* variables.
package viperconfig

import (
	"errors"
	"fmt"

	devtools "github.com/goliatone/go-devtools"
	"github.com/spf13/viper"
)

const (
	KeyLogOnly  = "devtools.log_only"
	KeyHeadless = "devtools.headless"
	KeySession  = "devtools.session"

	EnvLogOnly  = "DEVTOOLS_LOG_ONLY"
	EnvHeadless = "DEVTOOLS_HEADLESS"
	EnvSession  = "DEVTOOLS_SESSION"

	configName = "devtools"
	configType = "toml"
)

// Source reads devtools settings from a viper instance. It implements
// devtools.ConfigSource.
type Source struct {
	v *viper.Viper
}

// New binds the devtools keys to their environment variables on v. A nil v
// gets a fresh instance.
func New(v *viper.Viper) *Source {
	if v == nil {
		v = viper.New()
	}
	_ = v.BindEnv(KeyLogOnly, EnvLogOnly)
	_ = v.BindEnv(KeyHeadless, EnvHeadless)
	_ = v.BindEnv(KeySession, EnvSession)
	return &Source{v: v}
}

// Load reads devtools.toml from the first of paths that contains it. A
// missing file is not an error.
func Load(v *viper.Viper, paths ...string) (*Source, error) {
	s := New(v)
	s.v.SetConfigName(configName)
	s.v.SetConfigType(configType)
	for _, path := range paths {
		s.v.AddConfigPath(path)
	}
	if err := s.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("viperconfig: read config: %w", err)
		}
	}
	return s, nil
}

// Viper exposes the underlying instance.
func (s *Source) Viper() *viper.Viper {
	return s.v
}

// DevtoolsConfig implements devtools.ConfigSource. It reports ok=false unless
// log_only was set somewhere.
func (s *Source) DevtoolsConfig() (devtools.Config, bool) {
	if !s.v.IsSet(KeyLogOnly) {
		return devtools.Config{}, false
	}
	partial := devtools.PartialConfig{LogOnly: devtools.BoolPtr(s.v.GetBool(KeyLogOnly))}
	return partial.Merge(devtools.DefaultConfig()), true
}

// Headless reports the configured headless flag.
func (s *Source) Headless() bool {
	return s.v.GetBool(KeyHeadless)
}

// SessionLabel returns the configured session label, empty when unset.
func (s *Source) SessionLabel() string {
	return s.v.GetString(KeySession)
}

// Environment combines the configured headless flag with ext.
func (s *Source) Environment(ext devtools.Extension) devtools.Environment {
	return devtools.StaticEnvironment{IsHeadless: s.Headless(), Ext: ext}
}

// Options returns bridge options carrying this source, its environment and
// session label.
func (s *Source) Options(ext devtools.Extension) []devtools.Option {
	opts := []devtools.Option{
		devtools.WithConfigSource(s),
		devtools.WithEnvironment(s.Environment(ext)),
	}
	if label := s.SessionLabel(); label != "" {
		opts = append(opts, devtools.WithSessionLabel(label))
	}
	return opts
}
