package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mercator-hq/ceres/pkg/cli"
)

var resetConfirm bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all verification state",
	Long: `Delete every product, claim, verdict, task, evidence validation, and
audit entry. A single SYSTEM_RESET audit entry is written afterwards so
the wipe itself stays on record. Requires --confirm.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !resetConfirm {
			return fmt.Errorf("refusing to reset without --confirm")
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		ctx := cli.SetupSignalHandler()

		if err := a.governance.Reset(ctx); err != nil {
			return err
		}
		fmt.Println("verification state reset")
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolVar(&resetConfirm, "confirm", false, "confirm the destructive reset")
	rootCmd.AddCommand(resetCmd)
}
