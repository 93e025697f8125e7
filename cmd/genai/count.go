package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"genai/internal/loader"
)

func newCountCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "count <text>",
		Short: "Count the tokens a text encodes to",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loader.Load(opts.cfg.Model)
			if err != nil {
				return err
			}
			defer e.Close()
			n, err := e.SizeInTokens(strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	}
}
