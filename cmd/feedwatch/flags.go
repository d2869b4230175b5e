package main

import (
	"github.com/spf13/cobra"
)

// AppFlags holds the command line flags shared by every subcommand.
type AppFlags struct {
	ConfigFile string
	Mode       string
	Subjects   []string
}

func (f *AppFlags) register(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.StringVarP(&f.ConfigFile, "config", "c", "", "Path to the YAML/JSON configuration file. If not set, searches default locations.")
	pf.StringVarP(&f.Mode, "mode", "m", "", "Mode to run: onetime or automated (overrides config file if set)")
	pf.StringArrayVarP(&f.Subjects, "subject", "s", nil, "Only check the named subject. Repeatable.")
}
