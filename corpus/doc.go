// Package corpus loads labeled article corpora and partitions them for training.
//
// Two CSV files with a header row are read: every row of the first is labeled
// REAL and every row of the second FAKE. Only the title and text columns are
// used; missing values become empty strings.
//
// Shuffle and Split are deterministic for a given seed, so evaluation results
// are reproducible across runs.
package corpus
