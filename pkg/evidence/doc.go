// Package evidence implements the certificate evidence checker: a pure
// keyword classifier that derives a category for each evidence document
// reference, and a check that decides whether a product's documents satisfy
// a rule's required categories (FOUND / MISSING / NOT_REQUIRED) and whether
// any evidence is independently sourced rather than supplier-declared.
package evidence
