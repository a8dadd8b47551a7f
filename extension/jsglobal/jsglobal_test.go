package jsglobal_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/dop251/goja"
	devtools "github.com/goliatone/go-devtools"
	"github.com/goliatone/go-devtools/extension/jsglobal"
	"github.com/goliatone/go-devtools/pkg/signalstore"
)

const fakeExtension = `
var log = [];
var __REDUX_DEVTOOLS_EXTENSION__ = {
	connect: function (options) {
		log.push("connect:" + options.name);
		return {
			send: function (action, state) {
				log.push(action.type + ":" + JSON.stringify(state));
			}
		};
	},
	disconnect: function () {
		log.push("disconnect");
	}
};
`

func newRuntime(t *testing.T, script string) (*goja.Runtime, *jsglobal.Runtime) {
	t.Helper()
	vm := goja.New()
	if script != "" {
		if _, err := vm.RunString(script); err != nil {
			t.Fatalf("script: %v", err)
		}
	}
	return vm, jsglobal.New(vm)
}

func jsLog(t *testing.T, vm *goja.Runtime) []any {
	t.Helper()
	exported, _ := vm.Get("log").Export().([]any)
	return exported
}

func TestExtensionAbsentWithoutGlobal(t *testing.T) {
	_, rt := newRuntime(t, "")
	if rt.Extension() != nil {
		t.Fatalf("expected no extension without the global")
	}
	decision := devtools.Decide(devtools.DefaultConfig(), jsglobal.Environment{Runtime: rt})
	if decision.Enabled || decision.Reason != devtools.ReasonExtensionAbsent {
		t.Fatalf("unexpected decision %+v", decision)
	}
}

func TestBridgeDrivesGlobalExtension(t *testing.T) {
	vm, rt := newRuntime(t, fakeExtension)
	bridge := devtools.MustNew(devtools.WithEnvironment(jsglobal.Environment{Runtime: rt}))

	store := signalstore.New(map[string]int{"count": 0})
	store.Define("increment", signalstore.Update(store, "increment", func(s map[string]int, _ ...any) map[string]int {
		return map[string]int{"count": s["count"] + 1}
	}))
	inst, err := devtools.Build(store, bridge.WithDevtools("counter"))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if _, err := inst.Dispatch("increment"); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	inst.Destroy()

	want := []any{
		"connect:" + devtools.DefaultSessionLabel,
		`increment:{"counter":{"count":1}}`,
		"disconnect",
	}
	if got := jsLog(t, vm); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected log %v", got)
	}
}

func TestConnectionDisconnectPreferred(t *testing.T) {
	vm, rt := newRuntime(t, `
var log = [];
var __REDUX_DEVTOOLS_EXTENSION__ = {
	connect: function () {
		return {
			send: function () {},
			disconnect: function () { log.push("connection"); }
		};
	},
	disconnect: function () { log.push("global"); }
};
`)
	conn, err := rt.Extension().Connect(devtools.ConnectOptions{Name: "s"})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := conn.Disconnect(); err != nil {
		t.Fatalf("disconnect: %v", err)
	}
	if got := jsLog(t, vm); !reflect.DeepEqual(got, []any{"connection"}) {
		t.Fatalf("unexpected log %v", got)
	}
}

func TestConnectErrors(t *testing.T) {
	_, rt := newRuntime(t, `var __REDUX_DEVTOOLS_EXTENSION__ = { connect: 1 };`)
	if _, err := rt.Extension().Connect(devtools.ConnectOptions{Name: "s"}); !errors.Is(err, jsglobal.ErrNotCallable) {
		t.Fatalf("expected ErrNotCallable, got %v", err)
	}

	_, rt = newRuntime(t, `var __REDUX_DEVTOOLS_EXTENSION__ = { connect: function () { return null; } };`)
	if _, err := rt.Extension().Connect(devtools.ConnectOptions{Name: "s"}); !errors.Is(err, devtools.ErrNilConnection) {
		t.Fatalf("expected ErrNilConnection, got %v", err)
	}
}

func TestSendSurfacesScriptErrors(t *testing.T) {
	_, rt := newRuntime(t, `
var __REDUX_DEVTOOLS_EXTENSION__ = {
	connect: function () {
		return { send: function () { throw new Error("nope"); } };
	}
};
`)
	conn, err := rt.Extension().Connect(devtools.ConnectOptions{Name: "s"})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	var exception *goja.Exception
	if err := conn.Send(devtools.Action{Type: "x"}, nil); !errors.As(err, &exception) {
		t.Fatalf("expected goja exception, got %v", err)
	}
}
