// Ceres is a product-claims compliance verification engine.
//
// It verifies marketing and labeling claims against an ordered compliance
// rule policy, checks certificate evidence, falls back to a trained
// classifier for unmatched claims, and routes uncertain outcomes to human
// review tasks.
//
// Usage:
//
//	# Verify every product with claims
//	ceres verify --all
//
//	# Verify selected products
//	ceres verify PRODUCT_ID...
//
//	# List and act on open review tasks
//	ceres tasks list
//	ceres tasks act TASK_ID --action approve --reasoning "certificate on file"
//
//	# Compliance statistics
//	ceres stats overview
//
//	# Validate the rule policy file
//	ceres policy validate
//
//	# Run the re-verification scheduler and metrics endpoint
//	ceres serve
package main

func main() {
	Execute()
}
