package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func (a *app) newRuntimesCmd() *cobra.Command {
	var (
		language string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "runtimes",
		Short: "List the runtimes installed on the service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			runtimes, err := a.svc.Runtimes(cmd.Context(), language)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(runtimes)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "LANGUAGE\tVERSION\tALIASES\tRUNTIME")
			for _, rt := range runtimes {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", rt.Language, rt.Version, strings.Join(rt.Aliases, ","), rt.Runtime)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&language, "language", "l", "", "only show runtimes for this language or alias")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}
