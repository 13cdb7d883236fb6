package cmd

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/kvkit/cmd/bench"
	"github.com/ValentinKolb/kvkit/cmd/util"
	"github.com/spf13/cobra"
)

const (
	Version = "1.0.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "kvkit",
		Short: "concurrent collections toolkit",
		Long: fmt.Sprintf(`kvkit (v%s)

A toolkit of concurrent in-memory collections written in Go:
an expiring key-value store, an interval map, a layered cache
and lazy sequences.`, Version),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			util.InitConfig()
			return util.BindCommandFlags(cmd)
		},
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of kvkit",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("kvkit v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(bench.BenchCmd)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "log-level"
	RootCmd.PersistentFlags().String(key, "info", util.WrapString("log level (debug, info, warn, error)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
