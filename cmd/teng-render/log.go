package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-teng/pkg/errlog"
)

func newLogger(cmd *cobra.Command, w io.Writer) (*slog.Logger, error) {
	levelName, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return nil, fmt.Errorf("failed to get log-level flag: %w", err)
	}
	format, err := cmd.Flags().GetString("log-format")
	if err != nil {
		return nil, fmt.Errorf("failed to get log-format flag: %w", err)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(levelName)); err != nil {
		return nil, fmt.Errorf("unknown log level %q", levelName)
	}
	opts := &slog.HandlerOptions{Level: level}

	switch strings.ToLower(format) {
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("unknown log format %q", format)
}

func configureColor(cmd *cobra.Command) error {
	mode, err := cmd.Flags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	switch mode {
	case "auto":
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	default:
		return fmt.Errorf("unknown color mode %q", mode)
	}
	return nil
}

var (
	fatalColor   = color.New(color.FgRed, color.Bold)
	errorColor   = color.New(color.FgRed)
	warningColor = color.New(color.FgYellow)
	noteColor    = color.New(color.Faint)
)

// printLog writes the error log one entry per line, coloured by level.
func printLog(w io.Writer, entries []errlog.Entry, minLevel errlog.Level) {
	for _, e := range entries {
		if e.Level < minLevel {
			continue
		}
		var c *color.Color
		switch e.Level {
		case errlog.LevelFatal:
			c = fatalColor
		case errlog.LevelError:
			c = errorColor
		case errlog.LevelWarning:
			c = warningColor
		default:
			c = noteColor
		}
		fmt.Fprintf(w, "%s %s\n", c.Sprint(e.Level.String()+":"), strings.TrimPrefix(e.LogLine(), e.Level.String()+":"))
	}
}

func stderr() io.Writer {
	return color.Error
}
