package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mercator-hq/ceres/pkg/classifier"
	"mercator-hq/ceres/pkg/config"
	"mercator-hq/ceres/pkg/policy"
)

var trainFlags struct {
	save string
}

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the fallback classifier from the rule policy",
	Long: `Train the fallback classifier on the policy's rule claims plus the
built-in seed samples. Training is deterministic: the same policy and
configuration always produce the same model.

Example:
  ceres train --save data/model.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
		if err != nil {
			return err
		}

		pol, err := policy.LoadFile(cfg.Policy.Path)
		if err != nil {
			return err
		}

		clf := classifier.New(&cfg.Classifier.Thresholds)
		clf.Train(pol)

		savePath := trainFlags.save
		if savePath == "" {
			savePath = cfg.Classifier.ModelPath
		}
		if savePath == "" {
			return fmt.Errorf("no model path: set --save or classifier.model_path")
		}
		if err := clf.SaveFile(savePath); err != nil {
			return err
		}
		fmt.Printf("model trained on %d rules and saved to %s\n", len(pol.Rules), savePath)
		return nil
	},
}

func init() {
	trainCmd.Flags().StringVar(&trainFlags.save, "save", "", "write the trained model to this path")
	rootCmd.AddCommand(trainCmd)
}
