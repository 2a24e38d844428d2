// Package utils provides small conversion helpers shared across features.
//
// The parsing helpers exist because vendor inventory exports are loosely
// formatted: numeric cells carry currency symbols, thousands separators, and
// stray whitespace. Matching helpers canonicalize free-text product names so
// the same normalization is applied at aggregation and lookup time.
package utils
