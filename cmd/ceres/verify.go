package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/ceres/pkg/cli"
)

var verifyFlags struct {
	all      bool
	claimID  string
	progress bool
}

var verifyCmd = &cobra.Command{
	Use:   "verify [PRODUCT_ID...]",
	Short: "Verify product claims against the rule policy",
	Long: `Verify claims for the given products, or every product with claims
when --all is set.

Each claim is matched against the ordered rule list; conditional rule
directives are resolved against the product's certificate evidence, and
unmatched claims fall back to the classifier. Each claim gets exactly one
new verdict, and a review task when the outcome needs human attention.

Examples:
  # Verify every product with claims
  ceres verify --all

  # Verify two products
  ceres verify 2f3a... 9c1b...

  # Re-verify a single claim
  ceres verify --claim CLAIM_ID`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !verifyFlags.all && verifyFlags.claimID == "" && len(args) == 0 {
			return fmt.Errorf("provide product IDs, --claim, or --all")
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		ctx := cli.SetupSignalHandler()

		if verifyFlags.claimID != "" {
			summary, err := a.resolver.Resolve(ctx, verifyFlags.claimID)
			if err != nil {
				return err
			}
			return formatter().FormatTo(os.Stdout, summary)
		}

		ids := args
		if verifyFlags.all {
			ids = nil
		}
		if verifyFlags.progress {
			progress := cli.NewProgressReporter(nil)
			started := false
			a.resolver.SetProgress(func(done, total int) {
				if !started {
					progress.Start(int64(total))
					started = true
				}
				progress.Update(int64(done))
				if done == total {
					progress.Finish()
				}
			})
		}
		report := a.resolver.VerifyAll(ctx, ids)
		if err := formatter().FormatTo(os.Stdout, report); err != nil {
			return err
		}
		if len(report.Errors) > 0 {
			return fmt.Errorf("%d items failed verification", len(report.Errors))
		}
		return nil
	},
}

func init() {
	verifyCmd.Flags().BoolVar(&verifyFlags.all, "all", false, "verify every product with claims")
	verifyCmd.Flags().StringVar(&verifyFlags.claimID, "claim", "", "verify a single claim by ID")
	verifyCmd.Flags().BoolVar(&verifyFlags.progress, "progress", false, "show batch progress on stderr")
	rootCmd.AddCommand(verifyCmd)
}
