package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/dhamidi/bintrace/classfile"
	"github.com/dhamidi/bintrace/format"
	"github.com/dhamidi/bintrace/scan"
	"github.com/dhamidi/bintrace/trace"
)

func newParseCmd() *cobra.Command {
	var (
		outputFormat string
		showRaw      bool
		colorize     bool
	)

	cmd := &cobra.Command{
		Use:   "parse <classfile>",
		Short: "Parse a class file; on failure print the annotated trace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return errors.Wrap(err, "read class file")
			}
			log.Infof("parsing %s (%d bytes)", args[0], len(data))

			cf, err := classfile.Parse(data)
			if err != nil {
				var perr *scan.Error
				if errors.As(err, &perr) {
					opts := trace.Options{Raw: showRaw, Color: colorize}
					fmt.Fprint(cmd.ErrOrStderr(), trace.RenderWith(data, perr.Trace, opts))
				}
				return errors.Wrap(err, "parse class file")
			}

			var encoder format.Encoder
			switch outputFormat {
			case "json":
				encoder = format.NewJSONEncoder(cmd.OutOrStdout())
			case "text":
				encoder = format.NewTextEncoder(cmd.OutOrStdout())
			default:
				return fmt.Errorf("unknown format: %s", outputFormat)
			}

			if err := encoder.Encode(cf); err != nil {
				return fmt.Errorf("encode: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "output format (text, json)")
	cmd.Flags().BoolVar(&showRaw, "trace-raw", false, "include primitive classifier entries in the failure trace")
	cmd.Flags().BoolVar(&colorize, "color", false, "colorize the failure trace")

	return cmd
}
