// EconomicsModel turns the record's cost parameters into annualized EUR/year
// figures as a function of installed size and produced energy. The CAPEX
// model variant (constant rate vs. piecewise curve) is dispatched once at
// construction, never per evaluation.

package tec

import (
	"fmt"
	"math"
)

// capexModel computes annual CAPEX from installed size in MW.
type capexModel interface {
	annualCapex(size float64) float64
}

type constantCapex struct {
	rate float64 // EUR per MW-year
}

func (c constantCapex) annualCapex(size float64) float64 { return c.rate * size }

type piecewiseCapex struct {
	curve *Piecewise
}

func (c piecewiseCapex) annualCapex(size float64) float64 { return c.curve.Evaluate(size) }

// EconomicsModel computes capital and operating costs for one technology.
// Read-only after construction, safe for concurrent use.
type EconomicsModel struct {
	sizeMin, sizeMax float64
	capex            capexModel
	opexVariable     float64
	opexFixed        float64
	discountRate     float64
	lifetime         float64
	decommission     float64
}

// NewEconomicsModel builds the cost model from a resolved record.
func NewEconomicsModel(rec *TechnologyRecord) (*EconomicsModel, error) {
	e := rec.Economics
	m := &EconomicsModel{
		sizeMin:      rec.SizeMin,
		sizeMax:      rec.SizeMax,
		opexVariable: e.OpexVariable,
		opexFixed:    e.OpexFixed,
		discountRate: e.DiscountRate,
		lifetime:     e.Lifetime,
		decommission: e.DecommissionCost,
	}
	switch e.CapexModel {
	case CapexConstant:
		m.capex = constantCapex{rate: e.UnitCapex}
	case CapexPiecewise:
		curve, err := NewPiecewise(e.PiecewiseCapexX, e.PiecewiseCapexY)
		if err != nil {
			return nil, fmt.Errorf("CAPEX curve: %w", err)
		}
		m.capex = piecewiseCapex{curve: curve}
	default:
		return nil, fmt.Errorf("unknown capex model %q", e.CapexModel)
	}
	return m, nil
}

// CRF is the capital recovery factor r(1+r)^n / ((1+r)^n - 1), converting a
// lump capital cost into an equivalent annuity over n years at discount rate
// r. The degenerate zero-rate case is straight division by the lifetime.
func CRF(r, n float64) float64 {
	if r == 0 {
		return 1 / n
	}
	f := math.Pow(1+r, n)
	return r * f / (f - 1)
}

// AnnualCapex returns the annual CAPEX in EUR/year for an installed size.
// Sizes outside [size_min, size_max] fail with ErrSizeOutOfBounds; the
// caller is responsible for not proposing infeasible sizes.
func (m *EconomicsModel) AnnualCapex(size float64) (float64, error) {
	if size < m.sizeMin || size > m.sizeMax {
		return 0, fmt.Errorf("%w: size %v outside [%v, %v]", ErrSizeOutOfBounds, size, m.sizeMin, m.sizeMax)
	}
	return m.capex.annualCapex(size), nil
}

// AnnualOpex returns variable plus fixed OPEX in EUR/year given the energy
// produced over the year in MWh.
func (m *EconomicsModel) AnnualOpex(size, totalOutputMWh float64) (float64, error) {
	capex, err := m.AnnualCapex(size)
	if err != nil {
		return 0, err
	}
	return m.opexVariable*totalOutputMWh + m.opexFixed*capex, nil
}

// AnnualizedCost returns the total annualized cost in EUR/year: annual CAPEX
// converted to an annuity via CRF(discount_rate, lifetime), plus OPEX.
func (m *EconomicsModel) AnnualizedCost(size, totalOutputMWh float64) (float64, error) {
	capex, err := m.AnnualCapex(size)
	if err != nil {
		return 0, err
	}
	opex, err := m.AnnualOpex(size, totalOutputMWh)
	if err != nil {
		return 0, err
	}
	return capex*CRF(m.discountRate, m.lifetime) + opex, nil
}

// DecommissionCost returns the one-time end-of-life cost in EUR. It is never
// annualized here; the caller applies it at end-of-life.
func (m *EconomicsModel) DecommissionCost() float64 { return m.decommission }
