package pongo

import (
	"context"
	"io"
)

// sink forwards template output and remembers the first failure. pongo2
// drops most write errors, so the engine consults err after execution.
type sink struct {
	ctx context.Context
	out io.Writer
	err error
}

func (s *sink) Write(p []byte) (int, error) {
	if err := s.check(); err != nil {
		return 0, err
	}
	n, err := s.out.Write(p)
	if err != nil {
		s.err = err
	}
	return n, err
}

func (s *sink) WriteString(str string) (int, error) {
	if err := s.check(); err != nil {
		return 0, err
	}
	n, err := io.WriteString(s.out, str)
	if err != nil {
		s.err = err
	}
	return n, err
}

func (s *sink) check() error {
	if s.err != nil {
		return s.err
	}
	if err := s.ctx.Err(); err != nil {
		s.err = err
	}
	return s.err
}
