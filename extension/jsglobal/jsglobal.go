// Package jsglobal exposes a debugger extension installed as a global object
// inside an embedded goja runtime. The global follows the browser devtools
// shape: connect({name}) returns an object with send(action, state), and
// disconnect() lives on the connection or on the global itself.
package jsglobal

import (
	"errors"
	"fmt"
	"sync"

	"github.com/dop251/goja"
	devtools "github.com/goliatone/go-devtools"
)

// GlobalName is the property looked up on the runtime's global object.
const GlobalName = "__REDUX_DEVTOOLS_EXTENSION__"

var ErrNotCallable = errors.New("jsglobal: member is not a function")

// Runtime guards a goja runtime, which is not safe for concurrent use.
type Runtime struct {
	mu sync.Mutex
	vm *goja.Runtime
}

// New wraps vm. All access to vm made through the bridge is serialized.
func New(vm *goja.Runtime) *Runtime {
	return &Runtime{vm: vm}
}

// Do runs fn while holding the runtime lock.
func (r *Runtime) Do(fn func(vm *goja.Runtime) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(r.vm)
}

// Extension returns the global extension, or nil when the global is absent.
func (r *Runtime) Extension() devtools.Extension {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lookup() == nil {
		return nil
	}
	return &extension{rt: r}
}

func (r *Runtime) lookup() *goja.Object {
	value := r.vm.GlobalObject().Get(GlobalName)
	if value == nil || goja.IsUndefined(value) || goja.IsNull(value) {
		return nil
	}
	return value.ToObject(r.vm)
}

// Environment adapts a Runtime to devtools.Environment. The global is looked
// up on every call so scripts may install or remove it at any time.
type Environment struct {
	Runtime    *Runtime
	IsHeadless bool
}

// Headless implements devtools.Environment.
func (e Environment) Headless() bool { return e.IsHeadless }

// Extension implements devtools.Environment.
func (e Environment) Extension() devtools.Extension {
	if e.Runtime == nil {
		return nil
	}
	return e.Runtime.Extension()
}

type extension struct {
	rt *Runtime
}

func (e *extension) Connect(opts devtools.ConnectOptions) (devtools.Connection, error) {
	e.rt.mu.Lock()
	defer e.rt.mu.Unlock()
	vm := e.rt.vm
	global := e.rt.lookup()
	if global == nil {
		return nil, fmt.Errorf("jsglobal: %s is not defined", GlobalName)
	}
	connect, err := method(global, "connect")
	if err != nil {
		return nil, err
	}
	result, err := connect(global, vm.ToValue(map[string]any{"name": opts.Name}))
	if err != nil {
		return nil, fmt.Errorf("jsglobal: connect: %w", err)
	}
	if result == nil || goja.IsUndefined(result) || goja.IsNull(result) {
		return nil, devtools.ErrNilConnection
	}
	return &connection{rt: e.rt, global: global, handle: result.ToObject(vm)}, nil
}

type connection struct {
	rt     *Runtime
	global *goja.Object
	handle *goja.Object
}

func (c *connection) Send(action devtools.Action, snapshot devtools.Snapshot) error {
	c.rt.mu.Lock()
	defer c.rt.mu.Unlock()
	send, err := method(c.handle, "send")
	if err != nil {
		return err
	}
	state := make(map[string]any, len(snapshot))
	for name, value := range snapshot {
		state[name] = value
	}
	vm := c.rt.vm
	if _, err := send(c.handle, vm.ToValue(action.Fields()), vm.ToValue(state)); err != nil {
		return fmt.Errorf("jsglobal: send %q: %w", action.Type, err)
	}
	return nil
}

func (c *connection) Disconnect() error {
	c.rt.mu.Lock()
	defer c.rt.mu.Unlock()
	this := c.handle
	disconnect, err := method(this, "disconnect")
	if err != nil {
		this = c.global
		if disconnect, err = method(this, "disconnect"); err != nil {
			return nil
		}
	}
	if _, err := disconnect(this); err != nil {
		return fmt.Errorf("jsglobal: disconnect: %w", err)
	}
	return nil
}

func method(obj *goja.Object, name string) (goja.Callable, error) {
	fn, ok := goja.AssertFunction(obj.Get(name))
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotCallable, name)
	}
	return fn, nil
}
