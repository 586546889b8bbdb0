// DispatchSimulator steps a unit through a proposed commitment schedule,
// applying the state machine and the conversion mapping per step and
// accumulating per-carrier energy totals and cost terms. Infeasible steps
// are recorded as violations and the unit holds its previous operating
// point, mirroring how an optimizer treats an infeasible candidate.

package tec

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// ScheduleStep is one proposed (status, load) commitment for a single step.
type ScheduleStep struct {
	Status Status  `yaml:"status" json:"status"`
	Load   float64 `yaml:"load" json:"load"`
}

// Schedule is a proposed dispatch trajectory for one unit.
type Schedule struct {
	Size      float64        `yaml:"size" json:"size"`             // installed capacity, MW
	StepHours float64        `yaml:"step_hours" json:"step_hours"` // scenario step length, hours (default 1)
	Steps     []ScheduleStep `yaml:"steps" json:"steps"`
}

// LoadSchedule reads a dispatch schedule from a YAML file.
func LoadSchedule(path string) (*Schedule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schedule: %w", err)
	}
	var sched Schedule
	if err := yaml.Unmarshal(data, &sched); err != nil {
		return nil, fmt.Errorf("parsing schedule: %w", err)
	}
	if sched.StepHours == 0 {
		sched.StepHours = 1
	}
	for i, st := range sched.Steps {
		if _, err := ParseStatus(string(st.Status)); err != nil {
			return nil, fmt.Errorf("schedule step %d: %w", i, err)
		}
	}
	return &sched, nil
}

// StepResult records what one step of the trajectory did.
type StepResult struct {
	Step       int            `json:"step"`
	State      OperatingState `json:"state"`
	Conversion Conversion     `json:"-"`
	Violation  string         `json:"violation,omitempty"`
}

// CostBreakdown itemizes the annualized cost of a dispatch run.
type CostBreakdown struct {
	AnnualCapex    float64 `json:"annual_capex"`
	FixedOpex      float64 `json:"fixed_opex"`
	VariableOpex   float64 `json:"variable_opex"`
	AnnualizedCost float64 `json:"annualized_cost"`
}

// DispatchResult summarizes a full dispatch run.
type DispatchResult struct {
	Technology     string        `json:"technology"`
	Size           float64       `json:"size"`
	StepHours      float64       `json:"step_hours"`
	Steps          []StepResult  `json:"steps"`
	TotalInputMWh  FlowSet       `json:"-"`
	TotalOutputMWh FlowSet       `json:"-"`
	Startups       int           `json:"startups"`
	Violations     int           `json:"violations"`
	Cost           CostBreakdown `json:"cost"`
}

// RunDispatch evaluates a schedule against a technology model. The schedule
// size must lie within the record's size bounds; per-step infeasibilities do
// not abort the run, they are collected in the result.
func RunDispatch(model *TechnologyModel, sched *Schedule) (*DispatchResult, error) {
	stepHours := sched.StepHours
	if stepHours <= 0 {
		stepHours = 1
	}

	res := &DispatchResult{
		Technology: model.Record.Name,
		Size:       sched.Size,
		StepHours:  stepHours,
		Steps:      make([]StepResult, 0, len(sched.Steps)),
	}

	state := NewOperatingState()
	for i, proposal := range sched.Steps {
		next, err := model.Step(state, proposal.Load, proposal.Status)
		sr := StepResult{Step: i}
		if err != nil {
			sr.Violation = err.Error()
			res.Violations++
			logrus.Debugf("step %d: infeasible proposal (%s %v): %v", i, proposal.Status, proposal.Load, err)
		}
		state = next
		sr.State = state

		conv, err := model.Convert(state.Load, sched.Size, &state)
		if err != nil {
			// The state machine admits loads the performance curve rejects
			// (below minimum part load). Treat these as violations too and
			// keep the unit's flows at zero for the step.
			if sr.Violation == "" {
				res.Violations++
			}
			sr.Violation = err.Error()
			conv = Conversion{}
		}
		sr.Conversion = conv
		for c := Carrier(0); c < numCarriers; c++ {
			res.TotalInputMWh.Add(c, conv.Input.Get(c)*stepHours)
			res.TotalOutputMWh.Add(c, conv.Output.Get(c)*stepHours)
		}
		res.Steps = append(res.Steps, sr)
	}
	res.Startups = state.Startups

	outputMWh := res.TotalOutputMWh.Total(model.Record.Performance.OutputCarriers)
	capex, err := model.Economics.AnnualCapex(sched.Size)
	if err != nil {
		return nil, err
	}
	opexFixed := model.Economics.opexFixed * capex
	opexVariable := model.Economics.opexVariable * outputMWh
	annualized, err := model.AnnualizedCost(sched.Size, outputMWh)
	if err != nil {
		return nil, err
	}
	res.Cost = CostBreakdown{
		AnnualCapex:    capex,
		FixedOpex:      opexFixed,
		VariableOpex:   opexVariable,
		AnnualizedCost: annualized,
	}
	return res, nil
}

// Print logs a run summary, one line per concern.
func (r *DispatchResult) Print() {
	logrus.Infof("dispatch of %s at %.2f MW over %d steps (%.1f h each)",
		r.Technology, r.Size, len(r.Steps), r.StepHours)
	logrus.Infof("startups: %d, violations: %d", r.Startups, r.Violations)
	for name, mwh := range r.TotalInputMWh.Map() {
		logrus.Infof("input  %-12s %.3f MWh", name, mwh)
	}
	for name, mwh := range r.TotalOutputMWh.Map() {
		logrus.Infof("output %-12s %.3f MWh", name, mwh)
	}
	logrus.Infof("annual CAPEX %.2f EUR, fixed OPEX %.2f EUR, variable OPEX %.2f EUR, annualized %.2f EUR",
		r.Cost.AnnualCapex, r.Cost.FixedOpex, r.Cost.VariableOpex, r.Cost.AnnualizedCost)
}
