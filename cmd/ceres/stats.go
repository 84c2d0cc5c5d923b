package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"mercator-hq/ceres/pkg/cli"
	"mercator-hq/ceres/pkg/governance"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Compliance statistics and audit history",
}

var statsOverviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "System-wide verification statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		ctx := cli.SetupSignalHandler()

		overview, err := a.governance.Overview(ctx)
		if err != nil {
			return err
		}
		return formatter().FormatTo(os.Stdout, overview)
	},
}

// productStatusTable renders product rollups as CSV.
type productStatusTable []*governance.ProductStatus

func (t productStatusTable) Header() []string {
	return []string{"product_id", "code", "name", "status", "claims", "passed", "failed", "pending"}
}

func (t productStatusTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, ps := range t {
		rows = append(rows, []string{
			ps.ProductID, ps.ProductCode, ps.ProductName, string(ps.Status),
			strconv.Itoa(ps.TotalClaims), strconv.Itoa(ps.PassedClaims),
			strconv.Itoa(ps.FailedClaims), strconv.Itoa(ps.PendingClaims),
		})
	}
	return rows
}

func (t productStatusTable) String() string {
	out := ""
	for _, ps := range t {
		out += fmt.Sprintf("%s  %-24s %-15s claims=%d pass=%d fail=%d pending=%d\n",
			ps.ProductCode, ps.ProductName, ps.Status,
			ps.TotalClaims, ps.PassedClaims, ps.FailedClaims, ps.PendingClaims)
	}
	return out
}

var statsProductsCmd = &cobra.Command{
	Use:   "products [PRODUCT_ID]",
	Short: "Per-product compliance rollups",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		ctx := cli.SetupSignalHandler()

		if len(args) == 1 {
			ps, err := a.governance.ProductStatus(ctx, args[0])
			if err != nil {
				return err
			}
			return formatter().FormatTo(os.Stdout, ps)
		}

		statuses, err := a.governance.AllProductStatuses(ctx)
		if err != nil {
			return err
		}
		return formatter().FormatTo(os.Stdout, productStatusTable(statuses))
	},
}

var auditFlags struct {
	limit int
}

var statsAuditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Recent audit log entries, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		ctx := cli.SetupSignalHandler()

		entries, err := a.governance.RecentAudit(ctx, auditFlags.limit)
		if err != nil {
			return err
		}
		return formatter().FormatTo(os.Stdout, entries)
	},
}

func init() {
	statsAuditCmd.Flags().IntVar(&auditFlags.limit, "limit", 100, "maximum entries")
	statsCmd.AddCommand(statsOverviewCmd, statsProductsCmd, statsAuditCmd)
	rootCmd.AddCommand(statsCmd)
}
