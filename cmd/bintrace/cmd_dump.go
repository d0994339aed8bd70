package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/dhamidi/bintrace/trace"
)

func newDumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump <file>",
		Short: "Print an xxd-style hexdump of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return errors.Wrap(err, "read file")
			}
			log.Debugf("dumping %d bytes", len(data))
			fmt.Fprint(cmd.OutOrStdout(), trace.Hexdump(data))
			return nil
		},
	}
	return cmd
}
