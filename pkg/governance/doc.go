// Package governance computes compliance statistics and product rollups.
//
// The overview aggregates verdict, task, and product counts from storage.
// Per-product status derives from the latest live verdict of each claim,
// with rejection dominating all other outcomes. Whether SUPERSEDED
// verdicts participate in counts is configurable.
package governance
