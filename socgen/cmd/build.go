package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/sarchlab/socgen/datarecording"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Compose the SoC and write its register map",
	Long: `Compose the SoC, run the bring-up so that the debug tap can capture, ` +
		`then write csr.csv, analyzer.csv when the tap is enabled, and the ` +
		`recording database when one is named.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.SilenceUsage = true

		c := loadConfig()
		if db, _ := cmd.Flags().GetString("db"); db != "" {
			c.Database = db
		}

		var (
			rec datarecording.DataRecorder
			run *datarecording.RunRecorder
		)

		if c.Database != "" {
			rec = datarecording.New(c.Database)
			run = datarecording.NewRunRecorder(rec)
			run.Start()
		}

		s := compose(c)

		if err := s.Run(c.BringUpCycles); err != nil {
			log.Fatalf("Error running bring-up: %v", err)
		}

		written, err := s.WriteArtifacts(c.Artifacts)
		if err != nil {
			log.Fatalf("Error writing artifacts: %v", err)
		}

		for _, path := range written {
			fmt.Printf("Wrote %s\n", path)
		}

		if rec == nil {
			return
		}

		run.Add("SoC", s.Spec().Name)
		run.Add("Platform", s.Platform().Name())
		run.Add("Bring-up Cycles", fmt.Sprint(c.BringUpCycles))
		s.Record(rec)
		run.End()

		if err := rec.Close(); err != nil {
			log.Fatalf("Error closing database: %v", err)
		}

		fmt.Printf("Recorded %s.sqlite3\n", c.Database)
	},
}

func init() {
	buildCmd.Flags().String("db", "", "record the build into this database")
	rootCmd.AddCommand(buildCmd)
}
