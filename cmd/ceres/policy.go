package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/ceres/pkg/config"
	"mercator-hq/ceres/pkg/policy"
)

var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Inspect and validate the rule policy",
}

var policyFile string

// policyPath resolves the policy file: the --file flag wins, otherwise the
// configured path.
func policyPath() (string, error) {
	if policyFile != "" {
		return policyFile, nil
	}
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return "", err
	}
	return cfg.Policy.Path, nil
}

var policyValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the policy file",
	Long: `Parse the policy file, check every rule directive, and compile every
regex pattern. Exits non-zero on the first invalid rule.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := policyPath()
		if err != nil {
			return err
		}
		pol, err := policy.LoadFile(path)
		if err != nil {
			return err
		}
		fmt.Printf("policy %q valid: version %q, %d rules\n", path, pol.Version, len(pol.Rules))
		return nil
	},
}

var policyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the parsed rule list in evaluation order",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := policyPath()
		if err != nil {
			return err
		}
		pol, err := policy.LoadFile(path)
		if err != nil {
			return err
		}
		return formatter().FormatTo(os.Stdout, pol.Rules)
	},
}

func init() {
	policyCmd.PersistentFlags().StringVar(&policyFile, "file", "", "policy file (defaults to the configured path)")
	policyCmd.AddCommand(policyValidateCmd, policyShowCmd)
	rootCmd.AddCommand(policyCmd)
}
