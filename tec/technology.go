// TechnologyModel composes the performance curve, the economics model and
// the operational constraint set behind the single evaluation contract the
// surrounding optimizer queries per time step. It decides nothing itself: it
// only answers cost and feasibility questions.

package tec

import "fmt"

// TechnologyModel is the evaluator for one technology record. Read-only
// after construction and safe to share across any number of concurrent
// evaluations, as long as each caller owns its own OperatingState.
type TechnologyModel struct {
	Record      *TechnologyRecord
	Curve       *PerformanceCurve
	Economics   *EconomicsModel
	Constraints *OperationalConstraints
}

// NewTechnologyModel builds the evaluator from a resolved record.
func NewTechnologyModel(rec *TechnologyRecord) (*TechnologyModel, error) {
	curve, err := NewPerformanceCurve(rec)
	if err != nil {
		return nil, fmt.Errorf("technology %s: %w", rec.Name, err)
	}
	econ, err := NewEconomicsModel(rec)
	if err != nil {
		return nil, fmt.Errorf("technology %s: %w", rec.Name, err)
	}
	return &TechnologyModel{
		Record:      rec,
		Curve:       curve,
		Economics:   econ,
		Constraints: NewOperationalConstraints(rec),
	}, nil
}

// LoadTechnologyModel reads a record file and builds its evaluator.
func LoadTechnologyModel(path string) (*TechnologyModel, error) {
	rec, err := LoadRecord(path)
	if err != nil {
		return nil, err
	}
	return NewTechnologyModel(rec)
}

// AnnualizedCost returns the total annualized cost in EUR/year for an
// installed size in MW and the energy produced over the year in MWh.
func (m *TechnologyModel) AnnualizedCost(size, totalOutputMWh float64) (float64, error) {
	return m.Economics.AnnualizedCost(size, totalOutputMWh)
}

// DecommissionCost returns the one-time end-of-life cost in EUR.
func (m *TechnologyModel) DecommissionCost() float64 {
	return m.Economics.DecommissionCost()
}

// Convert maps a load fraction and an installed size to per-carrier flows.
// When a state is supplied and the unit is off, the conversion is the
// standby draw on the main input carrier instead of the performance mapping.
func (m *TechnologyModel) Convert(load, size float64, state *OperatingState) (Conversion, error) {
	if state != nil && (state.Status == StatusOff || state.Status == StatusStarting) {
		var conv Conversion
		conv.Input.Set(m.Record.Performance.MainInputCarrier, m.Constraints.StandbyDraw(*state))
		return conv, nil
	}
	return m.Curve.Convert(load, size)
}

// Step advances a unit's operating state toward the proposed load and
// status, returning the successor state and the constraint violation, if
// any. See OperationalConstraints.Step.
func (m *TechnologyModel) Step(state OperatingState, load float64, status Status) (OperatingState, error) {
	return m.Constraints.Step(state, load, status)
}
