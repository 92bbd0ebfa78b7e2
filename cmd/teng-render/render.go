package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-teng/pkg/data"
	"github.com/goliatone/go-teng/pkg/datasource"
	"github.com/goliatone/go-teng/pkg/errlog"
	"github.com/goliatone/go-teng/pkg/render"
	"github.com/goliatone/go-teng/pkg/render/pongo"
	"github.com/goliatone/go-teng/pkg/udf"
	"github.com/goliatone/go-teng/pkg/udf/builtin"
	"github.com/goliatone/go-teng/pkg/writer"
)

func init() {
	rootCmd.Flags().StringP("template", "t", "", "template file, relative to --root")
	rootCmd.Flags().StringP("template-string", "s", "", "inline template source")
	rootCmd.Flags().String("skin", "", "skin inserted before the template extension")
	rootCmd.Flags().StringP("data", "d", "", "data file (json|yaml|toml|msgpack)")
	rootCmd.Flags().String("data-format", "", "data format, overrides the file extension")
	rootCmd.Flags().StringP("output", "o", "", "output file (stdout if empty)")
	rootCmd.Flags().String("root", ".", "template base directory")
	rootCmd.Flags().String("ext", ".html", "extension appended to template names without one")
	rootCmd.Flags().String("content-type", "", "content type handed to the template as _contentType")
	rootCmd.Flags().String("encoding", "", "output encoding (only utf-8 is supported)")
	rootCmd.Flags().String("min-log-level", "warning", "lowest error log level printed (debug|diag|warning|error|fatal)")
	rootCmd.Flags().Bool("freeze", true, "freeze the function registry before rendering")
}

type renderOptions struct {
	template       string
	templateString string
	skin           string
	dataPath       string
	dataFormat     string
	output         string
	root           string
	ext            string
	contentType    string
	encoding       string
	minLevel       errlog.Level
	freeze         bool
}

func readRenderOptions(cmd *cobra.Command) (renderOptions, error) {
	var (
		opts renderOptions
		err  error
	)
	flags := cmd.Flags()
	strs := []struct {
		name string
		dst  *string
	}{
		{"template", &opts.template},
		{"template-string", &opts.templateString},
		{"skin", &opts.skin},
		{"data", &opts.dataPath},
		{"data-format", &opts.dataFormat},
		{"output", &opts.output},
		{"root", &opts.root},
		{"ext", &opts.ext},
		{"content-type", &opts.contentType},
		{"encoding", &opts.encoding},
	}
	for _, s := range strs {
		if *s.dst, err = flags.GetString(s.name); err != nil {
			return opts, fmt.Errorf("failed to get %s flag: %w", s.name, err)
		}
	}
	if opts.freeze, err = flags.GetBool("freeze"); err != nil {
		return opts, fmt.Errorf("failed to get freeze flag: %w", err)
	}
	levelName, err := flags.GetString("min-log-level")
	if err != nil {
		return opts, fmt.Errorf("failed to get min-log-level flag: %w", err)
	}
	level, ok := errlog.ParseLevel(levelName)
	if !ok {
		return opts, fmt.Errorf("unknown error log level %q", levelName)
	}
	opts.minLevel = level
	return opts, nil
}

// runRender executes the root command: it loads the data file, renders the
// template to stdout or --output and reports the error log on stderr. A
// non-zero render status is returned as statusError.
func runRender(cmd *cobra.Command, _ []string) error {
	if err := configureColor(cmd); err != nil {
		return err
	}
	logger, err := newLogger(cmd, stderr())
	if err != nil {
		return err
	}
	opts, err := readRenderOptions(cmd)
	if err != nil {
		return err
	}

	root, err := loadData(opts)
	if err != nil {
		return err
	}
	defer root.Release()

	reg := udf.NewRegistry(udf.WithLogger(logger))
	installed, err := builtin.Register(reg)
	if err != nil {
		return err
	}
	if opts.freeze {
		reg.Freeze()
	}
	logger.Debug("functions registered", slog.Any("names", installed), slog.Bool("frozen", reg.Frozen()))

	engine, err := pongo.New(
		pongo.WithBaseDir(opts.root),
		pongo.WithExtension(opts.ext),
		pongo.WithRegistry(reg),
		pongo.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	out, closeOut, err := openOutput(opts.output)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	log := errlog.New()
	status := engine.GeneratePage(ctx, render.Request{
		TemplateFilename: opts.template,
		TemplateString:   opts.templateString,
		Skin:             opts.skin,
		ContentType:      opts.contentType,
		Encoding:         opts.encoding,
		Data:             root,
	}, out, log)

	if err := closeOut(status == render.StatusOK); err != nil {
		logger.Error("close output", slog.String("error", err.Error()))
		log.Add(errlog.LevelError, errlog.Position{Filename: opts.template}, "close output: "+err.Error())
		if status == render.StatusOK {
			status = render.StatusWriteError
		}
	}

	printLog(stderr(), log.Entries(), opts.minLevel)
	logger.Info("render finished",
		slog.String("status", status.String()),
		slog.Int("entries", log.Len()),
	)

	if status != render.StatusOK {
		return statusError{status: int(status)}
	}
	return nil
}

func loadData(opts renderOptions) (*data.Root, error) {
	if opts.dataPath == "" {
		return data.New(), nil
	}
	if opts.dataFormat == "" {
		return datasource.LoadFile(opts.dataPath)
	}
	format, err := datasource.ParseFormat(opts.dataFormat)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(opts.dataPath)
	if err != nil {
		return nil, fmt.Errorf("read data: %w", err)
	}
	return datasource.Decode(format, raw)
}

// openOutput returns the page writer and a close function that commits the
// output when keep is true and drops what is still buffered otherwise.
func openOutput(path string) (writer.Writer, func(keep bool) error, error) {
	if path == "" {
		return writer.FromIO(bufio.NewWriter(os.Stdout)), func(bool) error { return nil }, nil
	}
	file, err := writer.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return file, func(keep bool) error {
		if keep {
			return file.Close()
		}
		return file.Discard()
	}, nil
}
