package main

import (
	"github.com/spf13/cobra"

	"github.com/liamcoop/riskscore/engine"
	"github.com/liamcoop/riskscore/policy"
	"github.com/liamcoop/riskscore/refdata"
)

type globalFlags struct {
	policyFile string
	refdataDir string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "kycscore",
		Short: "Score KYC onboarding profiles against the risk rule catalog",
		Long: `kycscore runs the onboarding risk engine offline.

It scores a profile file, prints the rule catalog and checks reference data
files before they are deployed. Reference data defaults to the built-in mock
lists and the scoring policy defaults to the standard point values.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.policyFile, "policy", "", "YAML or JSON scoring policy file")
	root.PersistentFlags().StringVar(&flags.refdataDir, "refdata", "", "directory of reference data files (default: built-in)")

	root.AddCommand(
		newScoreCmd(flags),
		newRulesCmd(flags),
		newCheckRefdataCmd(),
	)
	return root
}

func (f *globalFlags) engine() (*engine.Engine, error) {
	var (
		ref *refdata.ReferenceData
		err error
	)
	if f.refdataDir == "" {
		ref, err = refdata.Shared()
	} else {
		ref, err = refdata.LoadDir(f.refdataDir)
	}
	if err != nil {
		return nil, err
	}

	pol := policy.Default()
	if f.policyFile != "" {
		if pol, err = policy.LoadFile(f.policyFile); err != nil {
			return nil, err
		}
	}

	return engine.New(ref, pol)
}
