// Package cmd provides the command-line interface of socgen.
package cmd

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/sarchlab/socgen/config"
	"github.com/sarchlab/socgen/platform"
	"github.com/sarchlab/socgen/soc"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "socgen",
	Short: "socgen composes the Arty DDR3 system-on-chip and simulates its bring-up.",
	Long: `socgen composes the Arty DDR3 system-on-chip from a board description, ` +
		`writes its register map and debug capture, replays the clock and reset ` +
		`bring-up, and serves the result over HTTP.`,
}

var (
	configFile string
	envFile    string
	verbose    bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(
		&configFile, "config", "c", "", "YAML build settings")
	rootCmd.PersistentFlags().StringVar(
		&envFile, "env", ".env", "file with SOCGEN_* overrides")
	rootCmd.PersistentFlags().BoolVarP(
		&verbose, "verbose", "v", false, "log every dispatched event")
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func loadConfig() config.Config {
	c, err := config.Load(configFile, envFile)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	return c
}

func compose(c config.Config, opts ...soc.Option) *soc.SoC {
	p, err := platform.Load(c.Platform)
	if err != nil {
		log.Fatalf("Error loading platform: %v", err)
	}

	s, err := soc.Compose(p, c.Spec, opts...)
	if err != nil {
		log.Fatalf("Error composing %s: %v", c.Spec.Name, err)
	}

	return s
}

func milestoneLogger() soc.Option {
	return soc.WithLogger(log.New(os.Stderr, "", 0), verbose)
}
