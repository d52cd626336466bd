package classifier

import (
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
)

// objective evaluates a function and its gradient at x. grad has len(x).
type objective func(x, grad []float64) float64

type lbfgsSettings struct {
	maxIterations int
	memory        int
	gradTolerance float64
}

type lbfgsResult struct {
	x          []float64
	value      float64
	iterations int
	converged  bool
}

// evalCache shares one objective evaluation between the Func and Grad
// callbacks, which the line search issues at the same point.
type evalCache struct {
	f     objective
	x     []float64
	value float64
	grad  []float64
	valid bool
}

func (c *evalCache) eval(x []float64) {
	if c.valid && floats.Equal(c.x, x) {
		return
	}
	if c.grad == nil {
		c.grad = make([]float64, len(x))
	}
	c.x = append(c.x[:0], x...)
	c.value = c.f(x, c.grad)
	c.valid = true
}

// minimizeLBFGS minimizes a smooth convex objective from x0 with gonum's
// limited-memory BFGS. It stops when the largest gradient component falls
// below the tolerance or the iteration budget is spent. A line search that
// can make no further progress is reported as non-convergence, not an error.
func minimizeLBFGS(f objective, x0 []float64, cfg lbfgsSettings) (lbfgsResult, error) {
	cache := &evalCache{f: f}
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			cache.eval(x)
			return cache.value
		},
		Grad: func(grad, x []float64) {
			cache.eval(x)
			copy(grad, cache.grad)
		},
	}
	settings := &optimize.Settings{
		GradientThreshold: cfg.gradTolerance,
		MajorIterations:   cfg.maxIterations,
	}

	res, err := optimize.Minimize(problem, slices.Clone(x0), settings, &optimize.LBFGS{Store: cfg.memory})
	if res == nil {
		return lbfgsResult{}, err
	}
	return lbfgsResult{
		x:          res.X,
		value:      res.F,
		iterations: res.Stats.MajorIterations,
		converged:  err == nil && res.Status == optimize.GradientThreshold,
	}, nil
}
