package devtools

import (
	"fmt"
	"sync"
)

// Instance is a store with its features applied and its init hook run.
type Instance struct {
	store   Store
	hooks   Hooks
	methods Methods

	destroyOnce sync.Once
}

// Build applies features to store in order, then runs the resulting OnInit
// hook once. A failing feature aborts the build before any hook runs.
func Build(store Store, features ...Feature) (*Instance, error) {
	if store == nil {
		return nil, ErrNilStore
	}
	current := store
	for _, feature := range features {
		if feature == nil {
			continue
		}
		next, err := feature(current)
		if err != nil {
			return nil, err
		}
		current = next
	}
	inst := &Instance{
		store:   current,
		hooks:   current.Hooks(),
		methods: current.Methods(),
	}
	inst.hooks.init()
	return inst, nil
}

// Store returns the outermost store.
func (i *Instance) Store() Store {
	return i.store
}

// State returns the store state when it exposes one.
func (i *Instance) State() (any, bool) {
	source, ok := i.store.(StateSource)
	if !ok {
		return nil, false
	}
	return source.State(), true
}

// Call invokes the named method. Commands return their Action.
func (i *Instance) Call(name string, args ...any) (any, error) {
	method, ok := i.methods[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, name)
	}
	switch fn := method.(type) {
	case Command:
		return fn(args...), nil
	case Query:
		return fn(args...), nil
	default:
		return nil, fmt.Errorf("%w: %q has kind %T", ErrUnknownMethod, name, method)
	}
}

// Dispatch invokes the named command.
func (i *Instance) Dispatch(name string, args ...any) (Action, error) {
	cmd, ok := i.methods[name].(Command)
	if !ok {
		return Action{}, fmt.Errorf("%w: %q is not a command", ErrUnknownMethod, name)
	}
	return cmd(args...), nil
}

// Destroy runs the OnDestroy hook. Later calls are no-ops.
func (i *Instance) Destroy() {
	i.destroyOnce.Do(i.hooks.destroy)
}
