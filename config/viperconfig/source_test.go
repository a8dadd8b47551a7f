package viperconfig_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	devtools "github.com/goliatone/go-devtools"
	"github.com/goliatone/go-devtools/config/viperconfig"
	"github.com/goliatone/go-devtools/devtoolstest"
	"github.com/goliatone/go-devtools/pkg/signalstore"
	"github.com/spf13/viper"
)

func TestSourceWithoutValuesUsesDefaults(t *testing.T) {
	s := viperconfig.New(nil)
	if _, ok := s.DevtoolsConfig(); ok {
		t.Fatalf("expected no config without values")
	}
	if got := devtools.ResolveConfig(s); got != devtools.DefaultConfig() {
		t.Fatalf("expected defaults, got %+v", got)
	}
	if s.Headless() {
		t.Fatalf("expected headless false by default")
	}
}

func TestSourceReadsTOML(t *testing.T) {
	v := viper.New()
	v.SetConfigType("toml")
	if err := v.ReadConfig(strings.NewReader("[devtools]\nlog_only = true\nsession = \"checkout\"\n")); err != nil {
		t.Fatalf("read: %v", err)
	}
	s := viperconfig.New(v)
	cfg, ok := s.DevtoolsConfig()
	if !ok || !cfg.LogOnly {
		t.Fatalf("expected log_only from toml, got %+v %v", cfg, ok)
	}
	if s.SessionLabel() != "checkout" {
		t.Fatalf("unexpected session label %q", s.SessionLabel())
	}
}

func TestSourceReadsEnvironment(t *testing.T) {
	t.Setenv(viperconfig.EnvHeadless, "true")
	t.Setenv(viperconfig.EnvLogOnly, "false")

	s := viperconfig.New(nil)
	if !s.Headless() {
		t.Fatalf("expected headless from env")
	}
	cfg, ok := s.DevtoolsConfig()
	if !ok || cfg.LogOnly {
		t.Fatalf("expected explicit log_only=false, got %+v %v", cfg, ok)
	}
	decision := devtools.Decide(cfg, s.Environment(&devtoolstest.Extension{}))
	if decision.Enabled || decision.Reason != devtools.ReasonHeadless {
		t.Fatalf("unexpected decision %+v", decision)
	}
}

func TestLoadToleratesMissingFile(t *testing.T) {
	if _, err := viperconfig.Load(nil, t.TempDir()); err != nil {
		t.Fatalf("expected missing file to be ignored, got %v", err)
	}
}

func TestLoadDrivesBridge(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "devtools.toml"), []byte("[devtools]\nsession = \"from file\"\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	s, err := viperconfig.Load(nil, dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	ext := &devtoolstest.Extension{}
	bridge := devtools.MustNew(s.Options(ext)...)
	store := signalstore.New(0)
	if _, err := devtools.Build(store, bridge.WithDevtools("counter")); err != nil {
		t.Fatalf("build: %v", err)
	}
	if sessions := ext.Sessions(); len(sessions) != 1 || sessions[0] != "from file" {
		t.Fatalf("expected session label from file, got %v", sessions)
	}
}

func TestLoadReportsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "devtools.toml"), []byte("[devtools\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := viperconfig.Load(viper.New(), dir); err == nil {
		t.Fatalf("expected parse error")
	}
}
