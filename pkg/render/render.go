// Package render defines the renderer contract: a renderer receives a read
// only data tree, an output Writer, an error log and the function registry,
// and reports an integer status. The pongo subpackage provides the reference
// implementation.
package render

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/goliatone/go-teng/pkg/data"
	"github.com/goliatone/go-teng/pkg/errlog"
	"github.com/goliatone/go-teng/pkg/writer"
)

// Status is the result code of GeneratePage. Zero means success.
type Status int

const (
	StatusOK Status = iota
	StatusInvalidRequest
	StatusTemplateError
	StatusFunctionError
	StatusWriteError
)

var statusNames = [...]string{
	StatusOK:             "ok",
	StatusInvalidRequest: "invalid request",
	StatusTemplateError:  "template error",
	StatusFunctionError:  "function error",
	StatusWriteError:     "write error",
}

func (s Status) String() string {
	if s >= 0 && int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Renderer renders one page. Implementations must not mutate Data, must
// only append to log and must return StatusOK exactly when the page was
// fully written and flushed.
type Renderer interface {
	GeneratePage(ctx context.Context, req Request, w writer.Writer, log *errlog.Log) Status
}

// Request describes one page. Exactly one of TemplateFilename and
// TemplateString must be set. ContentType and Encoding are handed to the
// template untouched.
type Request struct {
	TemplateFilename string
	TemplateString   string
	Skin             string
	ContentType      string
	Encoding         string
	Data             *data.Root
}

// Validate checks the request shape.
func (r Request) Validate() error {
	hasFile := strings.TrimSpace(r.TemplateFilename) != ""
	hasString := r.TemplateString != ""
	switch {
	case hasFile && hasString:
		return errors.New("render: template filename and template string are mutually exclusive")
	case !hasFile && !hasString:
		return errors.New("render: template filename or template string required")
	}
	if !SupportedEncoding(r.Encoding) {
		return fmt.Errorf("render: unsupported encoding %q", r.Encoding)
	}
	if r.Data != nil && r.Data.Released() {
		return errors.New("render: data tree was released")
	}
	return nil
}

// SupportedEncoding reports whether enc names UTF-8 or is empty.
func SupportedEncoding(enc string) bool {
	switch strings.ToLower(strings.TrimSpace(enc)) {
	case "", "utf-8", "utf8":
		return true
	}
	return false
}

// TemplatePath resolves the template file for the request: ext is appended
// when the filename has no extension and the skin is inserted before the
// extension, so "page.html" with skin "std" becomes "page.std.html".
func (r Request) TemplatePath(ext string) string {
	name := strings.TrimSpace(r.TemplateFilename)
	current := path.Ext(name)
	if current == "" && ext != "" {
		current = ext
		name += ext
	}
	skin := strings.Trim(strings.TrimSpace(r.Skin), ".")
	if skin == "" {
		return name
	}
	return strings.TrimSuffix(name, current) + "." + skin + current
}
