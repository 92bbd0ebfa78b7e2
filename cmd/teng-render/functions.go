package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-teng/pkg/udf"
	"github.com/goliatone/go-teng/pkg/udf/builtin"
)

var functionsCmd = &cobra.Command{
	Use:   "functions",
	Short: "List the functions callable as udf.<name> from templates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		logger, err := newLogger(cmd, stderr())
		if err != nil {
			return err
		}
		reg := udf.NewRegistry(udf.WithLogger(logger))
		if _, err := builtin.Register(reg); err != nil {
			return err
		}
		names := reg.Names()
		logger.Debug("listing functions", slog.Int("count", len(names)))
		for _, name := range names {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}
