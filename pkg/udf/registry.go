package udf

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/goliatone/go-teng/pkg/data"
	"github.com/goliatone/go-teng/pkg/failure"
)

// Function is the core callable: ordered arguments in, exactly one Value out.
type Function func(args []data.Value) (data.Value, error)

// Option configures a Registry.
type Option func(*Registry)

// WithLogger routes registry diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithFallback consults regs, in order, for names the registry itself does
// not define. Fallbacks are read live and never written to.
func WithFallback(regs ...*Registry) Option {
	return func(r *Registry) {
		for _, reg := range regs {
			if reg != nil && reg != r {
				r.fallbacks = append(r.fallbacks, reg)
			}
		}
	}
}

// Registry maps names to Functions.
type Registry struct {
	mu        sync.RWMutex
	frozen    atomic.Bool
	funcs     map[string]Function
	fallbacks []*Registry
	logger    *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		funcs:  make(map[string]Function),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Register installs fn under name. It returns false without effect when the
// name is already taken, the name is empty, fn is nil or the registry is
// frozen. A name served by a fallback is shadowed, not taken.
func (r *Registry) Register(name string, fn Function) bool {
	if name == "" || fn == nil {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen.Load() {
		r.logger.Debug("udf: registry frozen, registration ignored", slog.String("name", name))
		return false
	}
	if _, exists := r.funcs[name]; exists {
		r.logger.Debug("udf: duplicate registration ignored", slog.String("name", name))
		return false
	}
	r.funcs[name] = fn
	r.logger.Debug("udf: registered", slog.String("name", name))
	return true
}

// RegisterFunc registers a host function through the marshalling bridge.
func (r *Registry) RegisterFunc(name string, fn HostFunc) bool {
	if fn == nil {
		return false
	}
	return r.Register(name, Bridge(fn))
}

// RegisterNative registers a typed Go function adapted with Wrap. The error
// reports an unusable fn; a taken name is reported through the boolean.
func (r *Registry) RegisterNative(name string, fn any) (bool, error) {
	host, err := Wrap(fn)
	if err != nil {
		return false, fmt.Errorf("udf: register %q: %w", name, err)
	}
	return r.RegisterFunc(name, host), nil
}

// MustRegister panics when Register returns false. Useful for init-time wiring.
func (r *Registry) MustRegister(name string, fn Function) {
	if !r.Register(name, fn) {
		panic(fmt.Sprintf("udf: cannot register %q", name))
	}
}

// Find returns the Function registered under name, looking at the
// fallbacks when the registry itself has none.
func (r *Registry) Find(name string) (Function, bool) {
	if fn, ok := r.own(name); ok {
		return fn, true
	}
	for _, fb := range r.fallbacks {
		if fn, ok := fb.Find(name); ok {
			return fn, true
		}
	}
	return nil, false
}

func (r *Registry) own(name string) (Function, bool) {
	if r.frozen.Load() {
		fn, ok := r.funcs[name]
		return fn, ok
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, ok := r.funcs[name]
	return fn, ok
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.Find(name)
	return ok
}

// Names returns the names Find resolves, sorted.
func (r *Registry) Names() []string {
	names := r.ownNames()
	for _, fb := range r.fallbacks {
		names = append(names, fb.Names()...)
	}
	sort.Strings(names)
	return slices.Compact(names)
}

func (r *Registry) ownNames() []string {
	if !r.frozen.Load() {
		r.mu.RLock()
		defer r.mu.RUnlock()
	}

	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	return names
}

// Freeze ends the registration phase. Subsequent lookups do not lock.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen.Store(true)
	r.mu.Unlock()
}

// Frozen reports whether Freeze was called.
func (r *Registry) Frozen() bool {
	return r.frozen.Load()
}

// Invoke calls the Function registered under name with args. args is never
// modified. Failures raised by the function, including panics, are returned
// as failure.ErrCallableFailure; a missing name as failure.ErrUnknownFunction.
func (r *Registry) Invoke(name string, args []data.Value) (data.Value, error) {
	fn, ok := r.Find(name)
	if !ok {
		return data.Undefined(), failure.New(failure.KindUnknownFunction, "udf.Invoke", name)
	}
	return call(name, fn, slices.Clone(args))
}

// call is the single boundary between the renderer and user code.
func call(name string, fn Function, args []data.Value) (result data.Value, err error) {
	defer func() {
		if p := recover(); p != nil {
			result, err = data.Undefined(), callableFailure(name, fmt.Errorf("%v", p))
		}
	}()

	result, err = fn(args)
	if err != nil {
		switch failure.KindOf(err) {
		case failure.KindUnsupportedValue, failure.KindInvalidReturnType, failure.KindCallableFailure:
			return data.Undefined(), err
		}
		return data.Undefined(), callableFailure(name, err)
	}

	switch result.Kind() {
	case data.KindUndefined, data.KindString, data.KindInteger, data.KindReal:
		return result, nil
	case data.KindStringRef:
		s, _ := result.AsString()
		return data.String(s), nil
	}
	return data.Undefined(), failure.New(failure.KindInvalidReturnType, "udf."+name,
		"result kind "+result.Kind().String()+" is not one of integer, real, string, undefined")
}

func callableFailure(name string, err error) error {
	return failure.Wrap(failure.KindCallableFailure, "udf."+name, err, err.Error())
}
