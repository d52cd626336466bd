// Package classifier implements L2-regularized binary logistic regression
// over sparse feature rows, fitted with L-BFGS.
package classifier
