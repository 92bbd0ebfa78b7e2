package teng

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/goliatone/go-teng/pkg/data"
	"github.com/goliatone/go-teng/pkg/datasource"
	"github.com/goliatone/go-teng/pkg/errlog"
	"github.com/goliatone/go-teng/pkg/render"
	"github.com/goliatone/go-teng/pkg/render/pongo"
	"github.com/goliatone/go-teng/pkg/udf"
	"github.com/goliatone/go-teng/pkg/udf/builtin"
	"github.com/goliatone/go-teng/pkg/writer"
)

// Root owns a data tree; alias exported via the root package for convenience.
type Root = data.Root

// Fragment is an ordered set of named variables.
type Fragment = data.Fragment

// FragmentList is an ordered sequence of fragments.
type FragmentList = data.FragmentList

// Value is the tagged value stored in a fragment.
type Value = data.Value

// Request describes a page to render.
type Request = render.Request

// Status is the renderer result code.
type Status = render.Status

// Entry is one error log record.
type Entry = errlog.Entry

// Function is the core extension callable.
type Function = udf.Function

// HostFunc is an extension callable in host-native form.
type HostFunc = udf.HostFunc

// Result carries what a page render produced. Output is empty when the page
// was written to a caller supplied writer or file.
type Result struct {
	Status   Status
	Output   string
	ErrorLog []Entry
}

// OK reports whether the page rendered successfully.
func (r Result) OK() bool { return r.Status == render.StatusOK }

// NewData creates an empty data tree.
func NewData() *Root {
	return data.New()
}

// DataFrom builds a data tree from a Go mapping or list of mappings.
func DataFrom(value any) (*Root, error) {
	return datasource.New(value)
}

// LoadData reads a json, yaml, toml or msgpack file into a data tree.
func LoadData(path string) (*Root, error) {
	return datasource.LoadFile(path)
}

var (
	stockOnce sync.Once
	stockReg  *udf.Registry
	stockErr  error

	engineOnce    sync.Once
	defaultEngine *pongo.Engine
	engineErr     error
)

// stockFunctions returns the frozen registry holding the builtin functions.
// It is consulted after the application's registry and never written to
// after start-up.
func stockFunctions() (*udf.Registry, error) {
	stockOnce.Do(func() {
		reg := udf.NewRegistry()
		if _, err := builtin.Register(reg); err != nil {
			stockErr = fmt.Errorf("teng: stock functions: %w", err)
			return
		}
		reg.Freeze()
		stockReg = reg
	})
	return stockReg, stockErr
}

// NewEngine constructs the reference renderer. The stock functions are
// available under the udf namespace behind the selected registry (the
// process-wide one unless pongo.WithRegistry says otherwise); neither
// registry is modified.
func NewEngine(options ...pongo.Option) (*pongo.Engine, error) {
	stock, err := stockFunctions()
	if err != nil {
		return nil, err
	}
	opts := append(slices.Clone(options), pongo.WithFallbackRegistry(stock))
	return pongo.New(opts...)
}

// sharedEngine is the engine GeneratePage uses without options, built once
// so its template cache is kept between calls.
func sharedEngine() (*pongo.Engine, error) {
	engineOnce.Do(func() {
		defaultEngine, engineErr = NewEngine()
	})
	return defaultEngine, engineErr
}

// RegisterFunction installs a host function in the process-wide registry.
// It returns false when the name is already taken.
func RegisterFunction(name string, fn HostFunc) bool {
	return udf.RegisterFunc(name, fn)
}

// RegisterNative installs a typed Go function in the process-wide registry.
func RegisterNative(name string, fn any) (bool, error) {
	return udf.RegisterNative(name, fn)
}

// Option configures GeneratePage.
type Option func(*pageConfig)

type pageConfig struct {
	renderer   render.Renderer
	engineOpts []pongo.Option
	out        writer.Writer
	outPath    string
}

// WithRenderer renders with r instead of the reference engine.
func WithRenderer(r render.Renderer) Option {
	return func(cfg *pageConfig) {
		cfg.renderer = r
	}
}

// WithEngineOptions configures a dedicated reference engine for this call
// instead of the shared one.
func WithEngineOptions(opts ...pongo.Option) Option {
	return func(cfg *pageConfig) {
		cfg.engineOpts = append(cfg.engineOpts, opts...)
	}
}

// WithWriter sends the page to w instead of capturing it in Result.Output.
func WithWriter(w writer.Writer) Option {
	return func(cfg *pageConfig) {
		cfg.out = w
	}
}

// WithOutputFile writes the page to path. The file is created or truncated
// and closed before GeneratePage returns; output still buffered when the
// render fails is dropped.
func WithOutputFile(path string) Option {
	return func(cfg *pageConfig) {
		cfg.outPath = path
	}
}

// GeneratePage renders req and collects status, output and error log.
// Setup failures (engine construction, output file) are reported as
// StatusInvalidRequest with a matching log entry; failing to close the
// output file turns a successful render into StatusWriteError.
func GeneratePage(ctx context.Context, req Request, options ...Option) Result {
	cfg := &pageConfig{}
	for _, opt := range options {
		if opt != nil {
			opt(cfg)
		}
	}

	log := errlog.New()
	pos := errlog.Position{Filename: req.TemplateFilename}
	fail := func(err error) Result {
		log.Add(errlog.LevelError, pos, err.Error())
		return Result{Status: render.StatusInvalidRequest, ErrorLog: log.Entries()}
	}

	renderer := cfg.renderer
	if renderer == nil {
		var (
			engine *pongo.Engine
			err    error
		)
		if len(cfg.engineOpts) == 0 {
			engine, err = sharedEngine()
		} else {
			engine, err = NewEngine(cfg.engineOpts...)
		}
		if err != nil {
			return fail(err)
		}
		renderer = engine
	}

	var (
		buf  *writer.Buffer
		file *writer.File
		out  = cfg.out
	)
	switch {
	case cfg.outPath != "":
		var err error
		if file, err = writer.Create(cfg.outPath); err != nil {
			return fail(err)
		}
		out = file
	case out == nil:
		buf = writer.NewBuffer()
		out = buf
	}

	status := renderer.GeneratePage(ctx, req, out, log)
	if file != nil {
		status = closeOutput(file, status, pos, log)
	}

	result := Result{Status: status, ErrorLog: log.Entries()}
	if buf != nil {
		result.Output = buf.Snapshot()
	}
	return result
}

// closeOutput commits the file on success and discards pending output
// otherwise. A close failure is logged and downgrades a successful status.
func closeOutput(file *writer.File, status render.Status, pos errlog.Position, log *errlog.Log) render.Status {
	var err error
	if status == render.StatusOK {
		err = file.Close()
	} else {
		err = file.Discard()
	}
	if err == nil {
		return status
	}
	log.Add(errlog.LevelError, pos, "close output: "+err.Error())
	if status == render.StatusOK {
		return render.StatusWriteError
	}
	return status
}
