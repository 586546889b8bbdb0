package tec

import "fmt"

// Piecewise is an ordered-breakpoint linear interpolator. Inside the
// breakpoint span it interpolates; outside it extrapolates with the slope of
// the nearest segment. Callers needing clamping clamp before evaluating.
type Piecewise struct {
	xs []float64
	ys []float64
}

// NewPiecewise validates the breakpoint arrays and builds an interpolator.
// xs must be strictly ascending and the same length as ys; a single
// breakpoint yields a constant function.
func NewPiecewise(xs, ys []float64) (*Piecewise, error) {
	if len(xs) == 0 {
		return nil, fmt.Errorf("%w: empty breakpoint set", ErrInvalidBreakpoints)
	}
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("%w: %d x-values vs %d y-values", ErrInvalidBreakpoints, len(xs), len(ys))
	}
	for i := 1; i < len(xs); i++ {
		if xs[i] <= xs[i-1] {
			return nil, fmt.Errorf("%w: bp_x not strictly ascending at index %d (%v <= %v)",
				ErrInvalidBreakpoints, i, xs[i], xs[i-1])
		}
	}
	// Copy so later mutation of the caller's slices cannot skew evaluations.
	p := &Piecewise{
		xs: append([]float64(nil), xs...),
		ys: append([]float64(nil), ys...),
	}
	return p, nil
}

// Evaluate returns the piecewise-linear value at x. Evaluating at a declared
// breakpoint returns its declared y-value exactly; between breakpoints the
// result matches the exact linear interpolation formula, and given identical
// breakpoints it is bit-for-bit reproducible.
func (p *Piecewise) Evaluate(x float64) float64 {
	n := len(p.xs)
	if n == 1 {
		return p.ys[0]
	}

	// Pick the segment: the first one for x below the span, the last one for
	// x above it. The segment slope also serves as the extrapolation slope.
	seg := n - 2
	for i := 1; i < n; i++ {
		if x <= p.xs[i] {
			seg = i - 1
			break
		}
	}

	x0, x1 := p.xs[seg], p.xs[seg+1]
	y0, y1 := p.ys[seg], p.ys[seg+1]
	// Declared breakpoints return their declared values verbatim. The
	// interpolation formula cannot guarantee that: at x == x1 it computes
	// y0 + (y1-y0), which loses y1 entirely when y0 dwarfs it.
	if x == x0 {
		return y0
	}
	if x == x1 {
		return y1
	}
	return y0 + (y1-y0)*(x-x0)/(x1-x0)
}

// Min and Max return the breakpoint span.
func (p *Piecewise) Min() float64 { return p.xs[0] }
func (p *Piecewise) Max() float64 { return p.xs[len(p.xs)-1] }

// Breakpoints returns copies of the breakpoint arrays.
func (p *Piecewise) Breakpoints() (xs, ys []float64) {
	return append([]float64(nil), p.xs...), append([]float64(nil), p.ys...)
}

// NumSegments returns the number of linear segments.
func (p *Piecewise) NumSegments() int {
	if len(p.xs) < 2 {
		return 0
	}
	return len(p.xs) - 1
}
