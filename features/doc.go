// Package features converts article text into sparse TF-IDF vectors.
//
// The vocabulary is learned once with Fit and is frozen afterwards: Transform
// projects any text onto the fitted feature space and silently drops unseen
// tokens.
package features
