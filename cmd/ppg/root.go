package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version information, set at build time via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var cfgFile string

// Execute builds the command tree and runs it, returning a process exit
// code rather than calling os.Exit itself so tests can call it directly.
func Execute() int {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		return exitCodeFor(err)
	}
	return ExitSuccess
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "ppg",
		Short:        "Protein-level genomic variant compiler",
		Long:         "ppg compiles per-sample VCF/BCSQ protein consequences into edited haplotype protein FASTA.",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.ppg.yaml)")
	cobra.OnInitialize(initConfig)

	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return
		}
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".ppg")
	}

	viper.AutomaticEnv()
	_ = viper.ReadInConfig() // missing config file is fine, defaults apply
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("ppg version %s (%s) built %s\n", version, commit, date)
			return nil
		},
	}
}

// usageError marks an error that should exit with ExitUsage rather than
// ExitError.
type usageError struct{ err error }

func (u *usageError) Error() string { return u.err.Error() }
func (u *usageError) Unwrap() error { return u.err }

func exitCodeFor(err error) int {
	var ue *usageError
	if errors.As(err, &ue) {
		return ExitUsage
	}
	return ExitError
}
