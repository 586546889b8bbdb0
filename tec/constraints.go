// OperationalConstraints bounds the feasible operating trajectory of one
// unit: startup/shutdown transitions, ramping, minimum up/down times and the
// startup budget. The constraint set is read-only; all mutable state lives
// in the caller-owned OperatingState, so Step is a pure function from
// (state, proposal) to (state, violation).

package tec

import (
	"fmt"
	"math"
)

// Status is the commitment status of a unit.
type Status string

const (
	StatusOff      Status = "off"
	StatusStarting Status = "starting"
	StatusOn       Status = "on"
	StatusStopping Status = "stopping"
)

// ParseStatus resolves a status name.
func ParseStatus(name string) (Status, error) {
	switch Status(name) {
	case StatusOff, StatusStarting, StatusOn, StatusStopping:
		return Status(name), nil
	}
	return "", fmt.Errorf("unknown status %q", name)
}

// OperatingState is the per-unit mutable state, owned by the caller's
// time-stepping loop and updated once per step. Never shared across
// goroutines.
type OperatingState struct {
	Status        Status  `json:"status" yaml:"status"`
	StepsInStatus int     `json:"steps_in_status" yaml:"steps_in_status"` // steps spent in Status so far
	Load          float64 `json:"load" yaml:"load"`                       // committed load fraction
	Startups      int     `json:"startups" yaml:"startups"`               // startups so far
}

// NewOperatingState returns the initial state of a unit at simulation start:
// off, with no elapsed time or startups.
func NewOperatingState() OperatingState {
	return OperatingState{Status: StatusOff}
}

// OperationalConstraints holds the resolved operational limits of a record.
// Nil fields mean the corresponding constraint is disabled; disabled limits
// never participate in any comparison.
type OperationalConstraints struct {
	RampingRate  *float64 // max |Δload| per step, fraction of size
	StandbyPower *float64 // MW drawn from the main input carrier while off
	MinUptime    *int     // steps
	MinDowntime  *int     // steps
	SUTime       *int     // startup ramp duration, steps
	SDTime       *int     // shutdown ramp duration, steps
	SULoad       *float64 // lower bound on load when entering on
	SDLoad       *float64 // upper bound on load while stopping
	MaxStartups  *int
}

// NewOperationalConstraints extracts the constraint set from a resolved
// record.
func NewOperationalConstraints(rec *TechnologyRecord) *OperationalConstraints {
	p := rec.Performance
	return &OperationalConstraints{
		RampingRate:  p.RampingRate,
		StandbyPower: p.StandbyPower,
		MinUptime:    p.MinUptime,
		MinDowntime:  p.MinDowntime,
		SUTime:       p.SUTime,
		SDTime:       p.SDTime,
		SULoad:       p.SULoad,
		SDLoad:       p.SDLoad,
		MaxStartups:  p.MaxStartups,
	}
}

// Step advances the state machine by one scenario step toward the proposed
// load and status. It returns the successor state and, when the proposal is
// infeasible, a violation error; on violation the returned state is the
// input state with only its elapsed-time counter advanced, so the caller can
// hold the unit and retry a different proposal next step.
func (oc *OperationalConstraints) Step(st OperatingState, load float64, target Status) (OperatingState, error) {
	if load < 0 || load > 1 {
		return hold(st), fmt.Errorf("proposed load %v outside [0, 1]", load)
	}

	switch target {
	case StatusOff:
		return oc.stepTowardOff(st)
	case StatusOn, StatusStarting:
		return oc.stepTowardOn(st, load, target)
	case StatusStopping:
		return oc.stepTowardStopping(st)
	}
	return hold(st), fmt.Errorf("unknown status %q", target)
}

func (oc *OperationalConstraints) stepTowardOff(st OperatingState) (OperatingState, error) {
	switch st.Status {
	case StatusOff:
		return hold(st), nil
	case StatusStarting:
		// Aborting a startup is always permitted; the startup still counts
		// against the budget.
		return st.enter(StatusOff, 0), nil
	case StatusOn:
		if oc.MinUptime != nil && st.StepsInStatus < *oc.MinUptime {
			return hold(st), fmt.Errorf("%w: %d of %d steps on", ErrMinUptimeViolation, st.StepsInStatus, *oc.MinUptime)
		}
		if oc.SDTime != nil && *oc.SDTime > 0 {
			return st.enter(StatusStopping, oc.cappedStoppingLoad(st.Load)), nil
		}
		return st.enter(StatusOff, 0), nil
	case StatusStopping:
		if oc.SDTime != nil && st.StepsInStatus < *oc.SDTime {
			return st.advanceStopping(oc), nil
		}
		return st.enter(StatusOff, 0), nil
	}
	return hold(st), fmt.Errorf("unknown status %q", st.Status)
}

func (oc *OperationalConstraints) stepTowardOn(st OperatingState, load float64, target Status) (OperatingState, error) {
	switch st.Status {
	case StatusOff:
		if oc.MinDowntime != nil && st.StepsInStatus < *oc.MinDowntime {
			return hold(st), fmt.Errorf("%w: %d of %d steps off", ErrMinDowntimeViolation, st.StepsInStatus, *oc.MinDowntime)
		}
		if oc.MaxStartups != nil && st.Startups >= *oc.MaxStartups {
			return hold(st), fmt.Errorf("%w: %d startups used", ErrMaxStartupsExceeded, st.Startups)
		}
		st.Startups++
		if oc.SUTime != nil && *oc.SUTime > 0 {
			// Startup ramp: the unit produces nothing until SUTime elapses.
			return st.enter(StatusStarting, 0), nil
		}
		return st.enter(StatusOn, oc.startingLoad(load)), nil
	case StatusStarting:
		if oc.SUTime != nil && st.StepsInStatus < *oc.SUTime {
			return hold(st), nil
		}
		if target == StatusStarting {
			// Ramp complete but no commitment to On yet; hold at the gate.
			return hold(st), nil
		}
		return st.enter(StatusOn, oc.startingLoad(load)), nil
	case StatusOn:
		if target == StatusStarting {
			return hold(st), fmt.Errorf("%w: on -> starting", ErrInvalidTransition)
		}
		if oc.RampingRate != nil && math.Abs(load-st.Load) > *oc.RampingRate {
			return hold(st), fmt.Errorf("%w: |%v - %v| > %v per step", ErrRampRateExceeded, load, st.Load, *oc.RampingRate)
		}
		next := hold(st)
		next.Load = load
		return next, nil
	case StatusStopping:
		return hold(st), fmt.Errorf("%w: stopping -> %s", ErrInvalidTransition, target)
	}
	return hold(st), fmt.Errorf("unknown status %q", st.Status)
}

func (oc *OperationalConstraints) stepTowardStopping(st OperatingState) (OperatingState, error) {
	switch st.Status {
	case StatusOn:
		if oc.MinUptime != nil && st.StepsInStatus < *oc.MinUptime {
			return hold(st), fmt.Errorf("%w: %d of %d steps on", ErrMinUptimeViolation, st.StepsInStatus, *oc.MinUptime)
		}
		if oc.SDTime == nil || *oc.SDTime == 0 {
			return st.enter(StatusOff, 0), nil
		}
		return st.enter(StatusStopping, oc.cappedStoppingLoad(st.Load)), nil
	case StatusStopping:
		if oc.SDTime != nil && st.StepsInStatus < *oc.SDTime {
			return st.advanceStopping(oc), nil
		}
		return st.enter(StatusOff, 0), nil
	case StatusOff:
		return hold(st), nil
	case StatusStarting:
		return hold(st), fmt.Errorf("%w: starting -> stopping", ErrInvalidTransition)
	}
	return hold(st), fmt.Errorf("unknown status %q", st.Status)
}

// StandbyDraw returns the MW drawn from the main input carrier while the
// unit is off; zero when standby power is disabled or the unit is not off.
func (oc *OperationalConstraints) StandbyDraw(st OperatingState) float64 {
	if st.Status != StatusOff || oc.StandbyPower == nil {
		return 0
	}
	return *oc.StandbyPower
}

// startingLoad bounds the load entering On from below by SULoad.
func (oc *OperationalConstraints) startingLoad(load float64) float64 {
	if oc.SULoad != nil && load < *oc.SULoad {
		return *oc.SULoad
	}
	return load
}

// cappedStoppingLoad bounds the load during a shutdown ramp from above by
// SDLoad.
func (oc *OperationalConstraints) cappedStoppingLoad(load float64) float64 {
	if oc.SDLoad != nil && load > *oc.SDLoad {
		return *oc.SDLoad
	}
	return load
}

// hold advances only the monotonic elapsed-time counter.
func hold(st OperatingState) OperatingState {
	st.StepsInStatus++
	return st
}

// enter switches status, resetting the elapsed-time counter to one step
// spent in the new status.
func (st OperatingState) enter(status Status, load float64) OperatingState {
	st.Status = status
	st.StepsInStatus = 1
	st.Load = load
	return st
}

func (st OperatingState) advanceStopping(oc *OperationalConstraints) OperatingState {
	next := hold(st)
	next.Load = oc.cappedStoppingLoad(next.Load)
	return next
}
