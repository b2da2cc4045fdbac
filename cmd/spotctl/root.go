package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/spot-resolver/internal/pkg/logger"
)

type rootOptions struct {
	output   string
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "spotctl",
		Short:         "Spot resolution and marker reconciliation toolbox",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "json", "Output format: json or yaml")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level")

	cmd.AddCommand(
		newResolveCmd(opts),
		newReconcileCmd(opts),
		newPickerCmd(opts),
		newRemoteCmd(opts),
	)
	return cmd
}

func (o *rootOptions) logger() *zap.Logger {
	l, err := logger.NewStderr(o.logLevel, "spotctl")
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// print пишет результат в выбранном формате
func (o *rootOptions) print(w io.Writer, v interface{}) error {
	switch o.output {
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case "json", "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	return fmt.Errorf("unknown output format %q", o.output)
}
