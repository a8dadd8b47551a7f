package devtools

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestResolveConfigDefaults(t *testing.T) {
	if got := ResolveConfig(nil); got != DefaultConfig() {
		t.Fatalf("expected defaults, got %+v", got)
	}
	absent := ConfigSourceFunc(func() (Config, bool) { return Config{LogOnly: true}, false })
	if got := ResolveConfig(absent); got.LogOnly {
		t.Fatalf("expected defaults when source reports no value")
	}
	var nilFunc ConfigSourceFunc
	if got := ResolveConfig(nilFunc); got.LogOnly {
		t.Fatalf("expected defaults for nil func")
	}
}

func TestProvideConfigMergesPartial(t *testing.T) {
	if got := ResolveConfig(ProvideConfig(PartialConfig{})); got.LogOnly {
		t.Fatalf("expected LogOnly default false")
	}
	if got := ResolveConfig(ProvideConfig(PartialConfig{LogOnly: BoolPtr(true)})); !got.LogOnly {
		t.Fatalf("expected LogOnly override")
	}
}

func TestParseConfigTOML(t *testing.T) {
	flat, err := ParseConfigTOML([]byte("log_only = true\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if flat.LogOnly == nil || !*flat.LogOnly {
		t.Fatalf("expected flat log_only, got %+v", flat)
	}

	nested, err := ParseConfigTOML([]byte("[devtools]\nlog_only = false\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if nested.LogOnly == nil || *nested.LogOnly {
		t.Fatalf("expected nested log_only=false, got %+v", nested)
	}

	empty, err := ParseConfigTOML(nil)
	if err != nil || empty.LogOnly != nil {
		t.Fatalf("expected empty partial, got %+v %v", empty, err)
	}

	if _, err := ParseConfigTOML([]byte("log_only = ")); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestActionJSONFlattensPayload(t *testing.T) {
	action := NewAction("[Flights] add", map[string]any{"id": "1"})
	data, err := json.Marshal(action)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(fields, map[string]any{"type": "[Flights] add", "id": "1"}) {
		t.Fatalf("unexpected encoding %s", data)
	}

	var decoded Action
	if err := json.Unmarshal([]byte(`{"type":"Store Update"}`), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Type != DefaultActionType || decoded.Payload != nil {
		t.Fatalf("unexpected action %+v", decoded)
	}
	if err := json.Unmarshal([]byte(`{"id":1}`), &decoded); err == nil {
		t.Fatalf("expected error for missing type")
	}
}
