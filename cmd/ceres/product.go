package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/ceres/pkg/claims"
	"mercator-hq/ceres/pkg/cli"
)

var productCmd = &cobra.Command{
	Use:   "product",
	Short: "Manage products and their claims",
}

var productAddFlags struct {
	code        string
	name        string
	description string
	evidence    []string
}

var productAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a product",
	Long: `Register a product with its certificate evidence references.

Example:
  ceres product add --code SKU-123 --name "Oat Drink" \
    --evidence organic_cert_2025.pdf --evidence lab_nutrition_report.pdf`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if productAddFlags.code == "" || productAddFlags.name == "" {
			return fmt.Errorf("--code and --name are required")
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		ctx := cli.SetupSignalHandler()

		now := time.Now()
		product := &claims.Product{
			ID:           claims.NewID(),
			Code:         productAddFlags.code,
			Name:         productAddFlags.name,
			Description:  productAddFlags.description,
			EvidenceRefs: productAddFlags.evidence,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := a.store.InsertProduct(ctx, product); err != nil {
			return err
		}
		return formatter().FormatTo(os.Stdout, product)
	},
}

var productListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered products",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		ctx := cli.SetupSignalHandler()

		products, err := a.store.ListProducts(ctx)
		if err != nil {
			return err
		}
		return formatter().FormatTo(os.Stdout, products)
	},
}

var claimAddFlags struct {
	productID  string
	text       string
	provenance string
	confidence float64
	verify     bool
}

var claimAddCmd = &cobra.Command{
	Use:   "claim",
	Short: "Attach a claim to a product",
	Long: `Attach a compliance claim to a product, optionally verifying it
immediately.

Example:
  ceres product claim --product 2f3a... --text "100% Organic" \
    --provenance label_ocr --confidence 0.92 --verify`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if claimAddFlags.productID == "" || claimAddFlags.text == "" {
			return fmt.Errorf("--product and --text are required")
		}
		provenance := claims.Provenance(claimAddFlags.provenance)
		if !claims.ValidProvenance(provenance) {
			return fmt.Errorf("unknown provenance %q", claimAddFlags.provenance)
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		ctx := cli.SetupSignalHandler()

		claim := &claims.Claim{
			ID:         claims.NewID(),
			ProductID:  claimAddFlags.productID,
			Text:       claimAddFlags.text,
			Provenance: provenance,
			Confidence: claimAddFlags.confidence,
			CreatedAt:  time.Now(),
		}
		if err := a.store.InsertClaim(ctx, claim); err != nil {
			return err
		}

		if claimAddFlags.verify {
			summary, err := a.resolver.Resolve(ctx, claim.ID)
			if err != nil {
				return err
			}
			return formatter().FormatTo(os.Stdout, summary)
		}
		return formatter().FormatTo(os.Stdout, claim)
	},
}

func init() {
	productAddCmd.Flags().StringVar(&productAddFlags.code, "code", "", "product code (unique)")
	productAddCmd.Flags().StringVar(&productAddFlags.name, "name", "", "product name")
	productAddCmd.Flags().StringVar(&productAddFlags.description, "description", "", "product description")
	productAddCmd.Flags().StringArrayVar(&productAddFlags.evidence, "evidence", nil, "certificate evidence reference (repeatable)")

	claimAddCmd.Flags().StringVar(&claimAddFlags.productID, "product", "", "product ID")
	claimAddCmd.Flags().StringVar(&claimAddFlags.text, "text", "", "claim text")
	claimAddCmd.Flags().StringVar(&claimAddFlags.provenance, "provenance", "supplier_declared", "claim provenance: supplier_declared, description, label_ocr")
	claimAddCmd.Flags().Float64Var(&claimAddFlags.confidence, "confidence", 1.0, "extraction confidence in [0,1]")
	claimAddCmd.Flags().BoolVar(&claimAddFlags.verify, "verify", false, "verify the claim immediately")

	productCmd.AddCommand(productAddCmd, productListCmd, claimAddCmd)
	rootCmd.AddCommand(productCmd)
}
