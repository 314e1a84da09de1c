package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/helpdesk/internal/config"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "helpdesk",
	Short: "Grounded academic helpdesk assistant",
	Long: `Helpdesk answers student questions about admissions, fees, programs,
the academic calendar and convocation using only the institution's verified
records. Every answer cites its source document and page, and questions the
records cannot answer are refused.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultFileName, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
