package udf

import (
	"github.com/goliatone/go-teng/pkg/data"
)

var std = NewRegistry()

// Default returns the process-wide registry consulted by renderers that are
// not given one explicitly.
func Default() *Registry { return std }

// Register installs fn in the process-wide registry.
func Register(name string, fn Function) bool { return std.Register(name, fn) }

// RegisterFunc installs a host function in the process-wide registry.
func RegisterFunc(name string, fn HostFunc) bool { return std.RegisterFunc(name, fn) }

// RegisterNative installs a typed Go function in the process-wide registry.
func RegisterNative(name string, fn any) (bool, error) { return std.RegisterNative(name, fn) }

// Find looks name up in the process-wide registry.
func Find(name string) (Function, bool) { return std.Find(name) }

// Invoke calls name from the process-wide registry.
func Invoke(name string, args []data.Value) (data.Value, error) { return std.Invoke(name, args) }

// Freeze ends registration on the process-wide registry.
func Freeze() { std.Freeze() }

// Names lists the process-wide registry.
func Names() []string { return std.Names() }
