package pongo

import (
	"io/fs"
	"log/slog"
	"strings"

	"github.com/goliatone/go-teng/pkg/udf"
)

// Option configures the Engine before construction.
type Option func(*config)

type config struct {
	baseDir     string
	templates   fs.FS
	extension   string
	contentType string
	registry    *udf.Registry
	fallbacks   []*udf.Registry
	logger      *slog.Logger
	globalData  map[string]any
	setName     string
}

// WithBaseDir loads templates from a directory on disk.
func WithBaseDir(dir string) Option {
	return func(cfg *config) {
		cfg.baseDir = strings.TrimSpace(dir)
	}
}

// WithFS loads templates from an fs.FS. When combined with WithBaseDir the
// directory is searched first.
func WithFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templates = files
	}
}

// WithExtension overrides the extension appended to template names that
// have none. The default is ".html".
func WithExtension(ext string) Option {
	return func(cfg *config) {
		trimmed := strings.TrimSpace(ext)
		if trimmed == "" {
			return
		}
		if !strings.HasPrefix(trimmed, ".") {
			trimmed = "." + trimmed
		}
		cfg.extension = trimmed
	}
}

// WithContentType sets the content type handed to templates as
// _contentType when a request leaves it empty.
func WithContentType(contentType string) Option {
	return func(cfg *config) {
		cfg.contentType = strings.TrimSpace(contentType)
	}
}

// WithRegistry selects the function registry exposed as the udf namespace.
// The process-wide registry is used otherwise.
func WithRegistry(reg *udf.Registry) Option {
	return func(cfg *config) {
		if reg != nil {
			cfg.registry = reg
		}
	}
}

// WithFallbackRegistry exposes the functions of regs under the udf namespace
// for names the primary registry does not define.
func WithFallbackRegistry(regs ...*udf.Registry) Option {
	return func(cfg *config) {
		cfg.fallbacks = append(cfg.fallbacks, regs...)
	}
}

// WithLogger routes engine diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithGlobalData seeds values visible to every template.
func WithGlobalData(values map[string]any) Option {
	return func(cfg *config) {
		if len(values) == 0 {
			return
		}
		if cfg.globalData == nil {
			cfg.globalData = make(map[string]any, len(values))
		}
		for key, value := range values {
			cfg.globalData[strings.TrimSpace(key)] = value
		}
	}
}

// WithSetName names the underlying template set, which shows up in debug
// output.
func WithSetName(name string) Option {
	return func(cfg *config) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			cfg.setName = trimmed
		}
	}
}
