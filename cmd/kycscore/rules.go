package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/liamcoop/riskscore/refdata"
)

func newRulesCmd(flags *globalFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the rule catalog in evaluation order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := flags.engine()
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(eng.Rules())
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tPOINTS\tNAME")
			for _, r := range eng.Rules() {
				fmt.Fprintf(tw, "%s\t%d\t%s\n", r.ID, r.Points, r.Name)
			}
			pol := eng.Policy()
			fmt.Fprintf(tw, "\nbands: Low < %d <= Medium < %d <= High\n", pol.MediumFrom, pol.HighFrom)
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print rules with their expressions as JSON")

	return cmd
}

func newCheckRefdataCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "check-refdata",
		Short: "Validate a directory of reference data files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := refdata.LoadDir(dir)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "reference data in %s is valid\n", dir)
			fmt.Fprintf(out, "  jurisdictions:   %d\n", len(ref.Jurisdictions()))
			fmt.Fprintf(out, "  occupations:     %d\n", len(ref.Occupations()))
			fmt.Fprintf(out, "  PEP entries:     %d\n", len(ref.PEPs()))
			fmt.Fprintf(out, "  sanctions:       %d\n", len(ref.Sanctions()))
			fmt.Fprintf(out, "  adverse media:   %d\n", len(ref.AdverseMedia()))
			fmt.Fprintf(out, "  wealth keywords: %d\n", len(ref.WealthKeywords()))
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "directory containing the reference data files")
	_ = cmd.MarkFlagRequired("dir")

	return cmd
}
