package cmd

import (
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var bringUpCmd = &cobra.Command{
	Use:   "bringup",
	Short: "Replay the clock and reset bring-up",
	Long: `Run the clock and reset model for a number of sys cycles, log the ` +
		`milestones and print every change of the lock, the domain resets and ` +
		`the calibration countdown.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.SilenceUsage = true

		c := loadConfig()
		if cycles, _ := cmd.Flags().GetUint64("cycles"); cycles != 0 {
			c.BringUpCycles = cycles
		}

		s := compose(c, milestoneLogger())

		if err := s.Run(c.BringUpCycles); err != nil {
			log.Fatalf("Error running bring-up: %v", err)
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "CYCLE\tTIME (ns)\tSIGNAL\tVALUE")

		for _, e := range s.Trace().Entries() {
			fmt.Fprintf(tw, "%d\t%.3f\t%s\t%d\n", e.Cycle, e.TimeNS, e.Signal, e.Value)
		}

		if err := tw.Flush(); err != nil {
			log.Fatalf("Error printing trace: %v", err)
		}

		fmt.Printf("\nDevice DNA: %s\n", s.DNA())
	},
}

func init() {
	bringUpCmd.Flags().Uint64P("cycles", "n", 0,
		"sys cycles to run, overriding the config")
	rootCmd.AddCommand(bringUpCmd)
}
