// Package scoring implements the threat score model: a pure additive
// calculator over detection attributes and an adjuster that folds the
// outcome of a voice challenge into a previously stored score.
package scoring
