package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/ceres/pkg/claims"
	"mercator-hq/ceres/pkg/cli"
	"mercator-hq/ceres/pkg/review"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "List and act on review tasks",
}

var tasksListFlags struct {
	kind  string
	limit int
}

var tasksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List open review tasks with claim context",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		ctx := cli.SetupSignalHandler()

		summaries, err := a.review.ListOpenTasks(ctx, claims.TaskKind(tasksListFlags.kind), tasksListFlags.limit)
		if err != nil {
			return err
		}
		return formatter().FormatTo(os.Stdout, summaries)
	},
}

var tasksActFlags struct {
	action       string
	reasoning    string
	newClaimText string
	requirements []string
}

var tasksActCmd = &cobra.Command{
	Use:   "act TASK_ID",
	Short: "Apply a human decision to an open task",
	Long: `Apply one action to an open review task.

Actions:
  approve           final verdict becomes PASS
  reject            final verdict becomes FAIL
  modify            replace the claim text; the old verdict is superseded
  request_evidence  open a supplier communication task for missing certificates
  escalate          open an escalation task

Examples:
  ceres tasks act TASK_ID --action approve --reasoning "certificate verified"
  ceres tasks act TASK_ID --action modify --new-claim "Source of Fibre"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		ctx := cli.SetupSignalHandler()

		result, err := a.review.Act(ctx, args[0], review.Action(tasksActFlags.action), &review.ActionInput{
			Reasoning:            tasksActFlags.reasoning,
			NewClaimText:         tasksActFlags.newClaimText,
			EvidenceRequirements: tasksActFlags.requirements,
		})
		if err != nil {
			return err
		}
		return formatter().FormatTo(os.Stdout, result)
	},
}

var approveAllFlags struct {
	reasoning string
}

var tasksApproveAllCmd = &cobra.Command{
	Use:   "approve-all TASK_ID...",
	Short: "Approve several tasks in one pass",
	Long: `Approve each listed task. A task that is missing or already
completed fails individually without aborting the rest.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		ctx := cli.SetupSignalHandler()

		results := a.review.BulkApprove(ctx, args, approveAllFlags.reasoning)
		if err := formatter().FormatTo(os.Stdout, results); err != nil {
			return err
		}
		failed := 0
		for _, r := range results {
			if !r.Success {
				failed++
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d tasks failed", failed, len(results))
		}
		return nil
	},
}

var historyFlags struct {
	productID string
	limit     int
}

var tasksHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show completed tasks, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		ctx := cli.SetupSignalHandler()

		tasks, err := a.review.History(ctx, historyFlags.productID, historyFlags.limit)
		if err != nil {
			return err
		}
		return formatter().FormatTo(os.Stdout, tasks)
	},
}

func init() {
	tasksListCmd.Flags().StringVar(&tasksListFlags.kind, "kind", "", "filter by task kind (review, reject, modify, request_evidence, supplier_communication, escalation)")
	tasksListCmd.Flags().IntVar(&tasksListFlags.limit, "limit", 50, "maximum tasks to list")

	tasksActCmd.Flags().StringVar(&tasksActFlags.action, "action", "", "action to apply (required)")
	tasksActCmd.Flags().StringVar(&tasksActFlags.reasoning, "reasoning", "", "human reasoning recorded with the decision")
	tasksActCmd.Flags().StringVar(&tasksActFlags.newClaimText, "new-claim", "", "replacement claim text (modify)")
	tasksActCmd.Flags().StringArrayVar(&tasksActFlags.requirements, "require", nil, "evidence requirement (request_evidence, repeatable)")
	tasksActCmd.MarkFlagRequired("action")

	tasksApproveAllCmd.Flags().StringVar(&approveAllFlags.reasoning, "reasoning", "", "reasoning applied to every approval")

	tasksHistoryCmd.Flags().StringVar(&historyFlags.productID, "product", "", "restrict to one product")
	tasksHistoryCmd.Flags().IntVar(&historyFlags.limit, "limit", 100, "maximum tasks to list")

	tasksCmd.AddCommand(tasksListCmd, tasksActCmd, tasksApproveAllCmd, tasksHistoryCmd)
	rootCmd.AddCommand(tasksCmd)
}
