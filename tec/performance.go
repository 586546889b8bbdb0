// PerformanceCurve maps a commitment-normalized load fraction to absolute
// per-carrier input and output flows. One interpolator per output carrier is
// built once from the record's breakpoint table; Convert is a pure function
// of (load, size) afterwards.

package tec

import "fmt"

// Conversion is the result of evaluating the technology at one operating
// point: per-carrier input and output flows in MW.
type Conversion struct {
	Input  FlowSet
	Output FlowSet
}

// PerformanceCurve evaluates the multi-carrier conversion mapping of a
// technology. Safe for concurrent use; it is read-only after construction.
type PerformanceCurve struct {
	minPartLoad float64
	main        Carrier
	inputs      []Carrier
	outputs     []Carrier

	outCurves [numCarriers]*Piecewise

	// inCurve is the main-carrier input-fraction curve when the record's
	// performance table carries a column for the main input carrier. When
	// nil, the normalized load is itself the main-carrier input fraction:
	// the record convention indexes size on main-carrier input.
	inCurve *Piecewise

	// ratios[c] / ratios[main] apportions secondary input c from the main
	// input flow. ratios[main] is always positive after construction.
	ratios [numCarriers]float64
}

// NewPerformanceCurve builds the per-carrier interpolators from a resolved
// record.
func NewPerformanceCurve(rec *TechnologyRecord) (*PerformanceCurve, error) {
	p := rec.Performance
	pc := &PerformanceCurve{
		minPartLoad: p.MinPartLoad,
		main:        p.MainInputCarrier,
		inputs:      p.InputCarriers,
		outputs:     p.OutputCarriers,
	}

	for c, ys := range p.Out {
		pw, err := NewPiecewise(p.In, ys)
		if err != nil {
			return nil, fmt.Errorf("performance curve for %s: %w", c, err)
		}
		if c == p.MainInputCarrier {
			pc.inCurve = pw
		} else {
			pc.outCurves[c] = pw
		}
	}

	for _, c := range p.InputCarriers {
		ratio, ok := p.InputRatios[c]
		if !ok {
			if c == p.MainInputCarrier {
				ratio = 1
			} else {
				ratio = 0
			}
		}
		pc.ratios[c] = ratio
	}
	if pc.ratios[pc.main] == 0 {
		return nil, fmt.Errorf("input ratio for main carrier %s must be positive", pc.main)
	}
	return pc, nil
}

// MinPartLoad returns the lowest feasible nonzero load fraction.
func (pc *PerformanceCurve) MinPartLoad() float64 { return pc.minPartLoad }

// Convert maps a load fraction in [0,1] and an installed size in MW to
// absolute flows. Loads in (0, minPartLoad) are infeasible operating points
// and fail with ErrBelowMinPartLoad; load 0 means the unit is off and all
// flows are zero (standby draw is the state machine's concern).
func (pc *PerformanceCurve) Convert(load, size float64) (Conversion, error) {
	var conv Conversion
	if load == 0 {
		return conv, nil
	}
	if load < 0 || load > 1 {
		return conv, fmt.Errorf("load fraction %v outside [0, 1]", load)
	}
	if load < pc.minPartLoad {
		return conv, fmt.Errorf("%w: load %v below min part load %v", ErrBelowMinPartLoad, load, pc.minPartLoad)
	}

	for _, c := range pc.outputs {
		conv.Output.Set(c, pc.outCurves[c].Evaluate(load)*size)
	}

	mainFraction := load
	if pc.inCurve != nil {
		mainFraction = pc.inCurve.Evaluate(load)
	}
	mainInput := mainFraction * size
	for _, c := range pc.inputs {
		conv.Input.Set(c, mainInput*pc.ratios[c]/pc.ratios[pc.main])
	}
	return conv, nil
}
