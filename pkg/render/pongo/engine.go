// Package pongo implements render.Renderer on top of a pongo2 template set.
//
// The data tree is exposed as nested maps and slices; scalar list entries are
// reached through their "_this" key. Registered functions live under the udf
// namespace:
//
//	{% for item in items %}{{ udf.describe(item) }}{% endfor %}
//
// Fragments and lists passed to a function arrive as udf.FragmentView and
// udf.ListView values. Importing the package replaces pongo2's for tag with
// one that ranges fragments in insertion order.
package pongo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-teng/pkg/errlog"
	"github.com/goliatone/go-teng/pkg/failure"
	"github.com/goliatone/go-teng/pkg/render"
	"github.com/goliatone/go-teng/pkg/udf"
	"github.com/goliatone/go-teng/pkg/writer"
)

// Engine renders pages from a pongo2 template set.
type Engine struct {
	mu sync.RWMutex

	templateSet *pongo2.TemplateSet
	templates   map[string]*pongo2.Template
	tplExt      string
	contentType string
	registry    *udf.Registry
	logger      *slog.Logger
}

var _ render.Renderer = (*Engine)(nil)

// New constructs an Engine. Without WithBaseDir or WithFS templates are
// resolved relative to the working directory.
func New(options ...Option) (*Engine, error) {
	cfg := &config{
		extension: ".html",
		setName:   "teng",
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}
	if cfg.registry == nil {
		cfg.registry = udf.Default()
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if len(cfg.fallbacks) > 0 {
		// The view only reads through; registrations go to the real registries.
		view := udf.NewRegistry(udf.WithLogger(cfg.logger), udf.WithFallback(append([]*udf.Registry{cfg.registry}, cfg.fallbacks...)...))
		view.Freeze()
		cfg.registry = view
	}

	var loaders []pongo2.TemplateLoader
	if cfg.baseDir != "" {
		loader, err := pongo2.NewLocalFileSystemLoader(cfg.baseDir)
		if err != nil {
			return nil, fmt.Errorf("pongo: create local loader: %w", err)
		}
		loaders = append(loaders, loader)
	}
	if cfg.templates != nil {
		loaders = append(loaders, pongo2.NewFSLoader(cfg.templates))
	}
	if len(loaders) == 0 {
		loader, err := pongo2.NewLocalFileSystemLoader("")
		if err != nil {
			return nil, fmt.Errorf("pongo: create default loader: %w", err)
		}
		loaders = append(loaders, loader)
	}

	engine := &Engine{
		templateSet: pongo2.NewSet(cfg.setName, loaders...),
		templates:   make(map[string]*pongo2.Template),
		tplExt:      cfg.extension,
		contentType: cfg.contentType,
		registry:    cfg.registry,
		logger:      cfg.logger,
	}
	if err := engine.GlobalContext(cfg.globalData); err != nil {
		return nil, fmt.Errorf("pongo: apply global data: %w", err)
	}
	return engine, nil
}

// Registry returns the registry exposed under the udf namespace. With
// WithFallbackRegistry it is a frozen read-through view.
func (e *Engine) Registry() *udf.Registry {
	return e.registry
}

// GlobalContext adds values visible to every template. Keys must be valid
// template identifiers.
func (e *Engine) GlobalContext(values map[string]any) error {
	if e == nil || e.templateSet == nil {
		return errors.New("pongo: engine is nil")
	}
	if len(values) == 0 {
		return nil
	}
	for key := range values {
		if !validIdentifier(key) {
			return fmt.Errorf("pongo: global %q is not a valid identifier", key)
		}
		if reservedName(key) {
			return fmt.Errorf("pongo: global %q is reserved", key)
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.templateSet.Globals == nil {
		e.templateSet.Globals = make(pongo2.Context)
	}
	e.templateSet.Globals.Update(values)
	return nil
}

// GeneratePage renders req into w. Problems are appended to log and
// summarised by the returned status; partial output may already have been
// written when the status is not StatusOK.
func (e *Engine) GeneratePage(ctx context.Context, req render.Request, w writer.Writer, log *errlog.Log) render.Status {
	if log == nil {
		log = errlog.New()
	}
	if ctx == nil {
		ctx = context.Background()
	}
	pos := errlog.Position{Filename: req.TemplateFilename}

	if e == nil || e.templateSet == nil {
		return e.reject(log, render.StatusInvalidRequest, pos, "engine is nil")
	}
	if w == nil {
		return e.reject(log, render.StatusInvalidRequest, pos, "writer is nil")
	}
	if err := req.Validate(); err != nil {
		return e.reject(log, render.StatusInvalidRequest, pos, err.Error())
	}
	if err := ctx.Err(); err != nil {
		return e.reject(log, render.StatusInvalidRequest, pos, err.Error())
	}

	tmpl, err := e.load(req)
	if err != nil {
		return e.reject(log, render.StatusTemplateError, position(err, pos), templateMessage(err))
	}

	sc := newScope(e.registry)
	viewContext := e.contextFor(sc, req, log)
	out := &sink{ctx: ctx, out: writer.Stream(writer.Guard(w))}

	e.mu.RLock()
	execErr := tmpl.ExecuteWriterUnbuffered(viewContext, out)
	e.mu.RUnlock()

	status := render.StatusOK
	switch fail, failed := sc.firstFailure(); {
	case out.err != nil:
		status = e.reject(log, render.StatusWriteError, position(execErr, pos), out.err.Error())
	case failed:
		msg := fmt.Sprintf("udf.%s: %s: %s", fail.name, failure.KindOf(fail.err), failure.MessageOf(fail.err))
		status = e.reject(log, render.StatusFunctionError, position(execErr, pos), msg)
	case execErr != nil:
		status = e.reject(log, render.StatusTemplateError, position(execErr, pos), templateMessage(execErr))
	default:
		if err := w.Flush(); err != nil {
			status = e.reject(log, render.StatusWriteError, pos, err.Error())
		}
	}

	e.logger.Debug("pongo: page generated",
		slog.String("template", templateName(req)),
		slog.String("status", status.String()),
		slog.Int("log_entries", log.Len()),
	)
	return status
}

func (e *Engine) reject(log *errlog.Log, status render.Status, pos errlog.Position, msg string) render.Status {
	log.Add(errlog.LevelError, pos, msg)
	if e != nil && e.logger != nil {
		e.logger.Debug("pongo: render failed",
			slog.String("status", status.String()),
			slog.String("position", pos.String()),
			slog.String("message", msg),
		)
	}
	return status
}

func (e *Engine) load(req render.Request) (*pongo2.Template, error) {
	if req.TemplateString != "" {
		return e.templateSet.FromString(req.TemplateString)
	}
	return e.getTemplate(req.TemplatePath(e.tplExt))
}

func (e *Engine) getTemplate(path string) (*pongo2.Template, error) {
	e.mu.RLock()
	if tmpl, ok := e.templates[path]; ok {
		e.mu.RUnlock()
		return tmpl, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	if tmpl, ok := e.templates[path]; ok {
		return tmpl, nil
	}

	tmpl, err := e.templateSet.FromFile(path)
	if err != nil {
		return nil, err
	}

	e.templates[path] = tmpl
	return tmpl, nil
}

// contextFor converts the request tree into the execution context. Root
// names pongo2 cannot address are skipped with a warning.
func (e *Engine) contextFor(sc *scope, req render.Request, log *errlog.Log) pongo2.Context {
	viewContext := pongo2.Context{}
	if req.Data != nil {
		frag := req.Data.Fragment()
		root := sc.fragment(frag)
		for _, name := range frag.Names() {
			switch {
			case !validIdentifier(name):
				log.Add(errlog.LevelWarning, errlog.Position{Filename: req.TemplateFilename},
					fmt.Sprintf("variable %q is not a valid identifier, skipped", name))
				continue
			case reservedName(name):
				log.Add(errlog.LevelWarning, errlog.Position{Filename: req.TemplateFilename},
					fmt.Sprintf("variable %q is reserved, skipped", name))
				continue
			}
			viewContext[name] = root[name]
		}
	}

	viewContext[udfNamespace] = sc.namespace()
	viewContext[keyContentType] = req.ContentType
	if req.ContentType == "" {
		viewContext[keyContentType] = e.contentType
	}
	viewContext[keyEncoding] = req.Encoding
	viewContext[keyScope] = sc
	return viewContext
}

func position(err error, fallback errlog.Position) errlog.Position {
	var perr *pongo2.Error
	if !errors.As(err, &perr) {
		return fallback
	}
	pos := errlog.Position{Filename: perr.Filename, Line: perr.Line, Column: perr.Column}
	if pos.Filename == "" {
		pos.Filename = fallback.Filename
	}
	return pos
}

func templateMessage(err error) string {
	var perr *pongo2.Error
	if errors.As(err, &perr) && perr.OrigError != nil {
		return perr.OrigError.Error()
	}
	return err.Error()
}

func templateName(req render.Request) string {
	if req.TemplateString != "" {
		return "<string>"
	}
	return req.TemplateFilename
}
