package cmd

import (
	"github.com/spf13/cobra"
)

// envCmd only performs the .env bootstrap step.
var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Create .env from .env.example if it is missing",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := newLauncher()
		if err != nil {
			return err
		}
		l.BootstrapEnv()
		return nil
	},
}
