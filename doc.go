// Package devtools bridges state containers to an external time-travel
// debugger.
//
// Stores opt in through a Feature:
//
//	inst, err := devtools.Build(flights, devtools.WithDevtools("flights"))
//
// Every bridged store registers its state accessor under its name. Commands
// (methods of type Command) are wrapped once, when the store is bridged, so
// each call sends the returned Action together with the aggregated state of
// every registered store. Queries pass through untouched.
//
// All stores bridged through one Bridge share a single Connection. It opens
// when the first store initialises and closes when the last one is
// destroyed.
//
// Activation:
//
//	headless environment        -> store returned unchanged
//	Config.LogOnly              -> store returned unchanged
//	no Extension in Environment -> store returned unchanged
//
// The decision is taken once per attach and cached for the store's lifetime.
// Reporting never fails the command that triggered it. Connection errors and
// panicking accessors are logged and the action dropped. A predicate that
// errors is logged and the action is still forwarded.
package devtools
