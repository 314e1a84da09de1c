package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/helpdesk/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize helpdesk configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to choose the LLM provider, quality tier, institution and knowledge base, and writes a .helpdesk.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
