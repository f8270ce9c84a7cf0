package cmd

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/sarchlab/socgen/monitoring"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the composed SoC over HTTP",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.SilenceUsage = true

		c := loadConfig()
		if port, _ := cmd.Flags().GetInt("port"); port != 0 {
			c.MonitorPort = port
		}

		if open, _ := cmd.Flags().GetBool("open"); open {
			c.OpenBrowser = true
		}

		s := compose(c, milestoneLogger())

		m := monitoring.NewMonitor().
			WithPortNumber(c.MonitorPort).
			WithBrowser(c.OpenBrowser)
		m.RegisterSoC(s)
		m.StartServer()

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt)
		<-stop

		fmt.Fprintln(os.Stderr, "Stopped")
	},
}

func init() {
	serveCmd.Flags().IntP("port", "p", 0, "port to listen on, random if 0")
	serveCmd.Flags().Bool("open", false, "open the page in the browser")
	rootCmd.AddCommand(serveCmd)
}
