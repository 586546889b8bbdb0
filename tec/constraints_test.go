package tec

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intp(v int) *int           { return &v }
func floatp(v float64) *float64 { return &v }

// unconstrained returns a constraint set with every limit disabled.
func unconstrained() *OperationalConstraints {
	return &OperationalConstraints{}
}

func TestStep_OffIdempotence(t *testing.T) {
	oc := unconstrained()
	st := NewOperatingState()

	// Holding off only advances the monotonic elapsed-time counter.
	for i := 1; i <= 5; i++ {
		next, err := oc.Step(st, 0, StatusOff)
		require.NoError(t, err)
		assert.Equal(t, StatusOff, next.Status)
		assert.Equal(t, i, next.StepsInStatus)
		assert.Equal(t, 0.0, next.Load)
		assert.Equal(t, 0, next.Startups)
		st = next
	}
}

func TestStep_ImmediateStartupWithoutRamp(t *testing.T) {
	// GIVEN no SU time: off -> on in one step, counting a startup.
	oc := unconstrained()
	st := NewOperatingState()

	next, err := oc.Step(st, 0.7, StatusOn)
	require.NoError(t, err)
	assert.Equal(t, StatusOn, next.Status)
	assert.Equal(t, 0.7, next.Load)
	assert.Equal(t, 1, next.Startups)
	assert.Equal(t, 1, next.StepsInStatus)
}

func TestStep_StartupRamp(t *testing.T) {
	oc := unconstrained()
	oc.SUTime = intp(2)
	oc.SULoad = floatp(0.4)
	st := NewOperatingState()

	// Step 1: enter the startup ramp, producing nothing.
	st, err := oc.Step(st, 0.8, StatusOn)
	require.NoError(t, err)
	assert.Equal(t, StatusStarting, st.Status)
	assert.Equal(t, 0.0, st.Load)
	assert.Equal(t, 1, st.Startups)

	// Step 2: still ramping.
	st, err = oc.Step(st, 0.8, StatusOn)
	require.NoError(t, err)
	assert.Equal(t, StatusStarting, st.Status)
	assert.Equal(t, 2, st.StepsInStatus)

	// Step 3: ramp complete, entering on at the proposed load.
	st, err = oc.Step(st, 0.8, StatusOn)
	require.NoError(t, err)
	assert.Equal(t, StatusOn, st.Status)
	assert.Equal(t, 0.8, st.Load)
}

func TestStep_SULoadBoundsEnteringLoad(t *testing.T) {
	oc := unconstrained()
	oc.SULoad = floatp(0.5)
	st := NewOperatingState()

	next, err := oc.Step(st, 0.2, StatusOn)
	require.NoError(t, err)
	assert.Equal(t, StatusOn, next.Status)
	assert.Equal(t, 0.5, next.Load)
}

// Ramp limit: with ramping_rate 0.1 a load change of 0.2 in one step is
// rejected (at size 10 MW that is 2 MW against a 1 MW/step limit).
func TestStep_RampRateExceeded(t *testing.T) {
	oc := unconstrained()
	oc.RampingRate = floatp(0.1)
	st := OperatingState{Status: StatusOn, StepsInStatus: 3, Load: 0.5, Startups: 1}

	next, err := oc.Step(st, 0.7, StatusOn)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRampRateExceeded))
	// The unit holds: only the counter advances.
	assert.Equal(t, 0.5, next.Load)
	assert.Equal(t, 4, next.StepsInStatus)

	// A change at the limit passes.
	next, err = oc.Step(st, 0.6, StatusOn)
	require.NoError(t, err)
	assert.InDelta(t, 0.6, next.Load, 1e-12)
}

func TestStep_RampUncheckedWhenDisabled(t *testing.T) {
	oc := unconstrained()
	st := OperatingState{Status: StatusOn, StepsInStatus: 1, Load: 0.1}

	next, err := oc.Step(st, 1.0, StatusOn)
	require.NoError(t, err)
	assert.Equal(t, 1.0, next.Load)
}

func TestStep_MinUptime(t *testing.T) {
	oc := unconstrained()
	oc.MinUptime = intp(3)
	st := OperatingState{Status: StatusOn, StepsInStatus: 2, Load: 0.6}

	_, err := oc.Step(st, 0, StatusOff)
	assert.True(t, errors.Is(err, ErrMinUptimeViolation))

	st.StepsInStatus = 3
	next, err := oc.Step(st, 0, StatusOff)
	require.NoError(t, err)
	assert.Equal(t, StatusOff, next.Status)
}

func TestStep_MinDowntime(t *testing.T) {
	oc := unconstrained()
	oc.MinDowntime = intp(4)
	st := OperatingState{Status: StatusOff, StepsInStatus: 2}

	_, err := oc.Step(st, 0.6, StatusOn)
	assert.True(t, errors.Is(err, ErrMinDowntimeViolation))

	st.StepsInStatus = 4
	next, err := oc.Step(st, 0.6, StatusOn)
	require.NoError(t, err)
	assert.Equal(t, StatusOn, next.Status)
}

func TestStep_MaxStartups(t *testing.T) {
	oc := unconstrained()
	oc.MaxStartups = intp(2)
	st := OperatingState{Status: StatusOff, StepsInStatus: 10, Startups: 2}

	next, err := oc.Step(st, 0.6, StatusOn)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMaxStartupsExceeded))
	assert.Equal(t, 2, next.Startups)

	st.Startups = 1
	next, err = oc.Step(st, 0.6, StatusOn)
	require.NoError(t, err)
	assert.Equal(t, 2, next.Startups)
}

func TestStep_ShutdownRamp(t *testing.T) {
	oc := unconstrained()
	oc.SDTime = intp(2)
	oc.SDLoad = floatp(0.3)
	st := OperatingState{Status: StatusOn, StepsInStatus: 5, Load: 0.8}

	// Leaving on with a shutdown ramp passes through stopping at capped load.
	st, err := oc.Step(st, 0, StatusOff)
	require.NoError(t, err)
	assert.Equal(t, StatusStopping, st.Status)
	assert.Equal(t, 0.3, st.Load)

	st, err = oc.Step(st, 0, StatusOff)
	require.NoError(t, err)
	assert.Equal(t, StatusStopping, st.Status)
	assert.Equal(t, 2, st.StepsInStatus)

	st, err = oc.Step(st, 0, StatusOff)
	require.NoError(t, err)
	assert.Equal(t, StatusOff, st.Status)
	assert.Equal(t, 0.0, st.Load)
}

func TestStep_DirectShutdownWithoutRamp(t *testing.T) {
	oc := unconstrained()
	st := OperatingState{Status: StatusOn, StepsInStatus: 5, Load: 0.8}

	next, err := oc.Step(st, 0, StatusOff)
	require.NoError(t, err)
	assert.Equal(t, StatusOff, next.Status)
	assert.Equal(t, 0.0, next.Load)
}

func TestStep_StoppingCannotResume(t *testing.T) {
	oc := unconstrained()
	oc.SDTime = intp(3)
	st := OperatingState{Status: StatusStopping, StepsInStatus: 1, Load: 0.3}

	_, err := oc.Step(st, 0.6, StatusOn)
	assert.True(t, errors.Is(err, ErrInvalidTransition))
}

func TestStep_AbortedStartupStillCounts(t *testing.T) {
	oc := unconstrained()
	oc.SUTime = intp(3)
	st := NewOperatingState()

	st, err := oc.Step(st, 0.6, StatusOn)
	require.NoError(t, err)
	require.Equal(t, StatusStarting, st.Status)
	require.Equal(t, 1, st.Startups)

	st, err = oc.Step(st, 0, StatusOff)
	require.NoError(t, err)
	assert.Equal(t, StatusOff, st.Status)
	assert.Equal(t, 1, st.Startups)
}

func TestStandbyDraw(t *testing.T) {
	oc := unconstrained()
	oc.StandbyPower = floatp(0.2)

	assert.Equal(t, 0.2, oc.StandbyDraw(OperatingState{Status: StatusOff}))
	assert.Equal(t, 0.0, oc.StandbyDraw(OperatingState{Status: StatusOn, Load: 0.6}))

	// Disabled standby means zero draw.
	oc.StandbyPower = nil
	assert.Equal(t, 0.0, oc.StandbyDraw(OperatingState{Status: StatusOff}))
}

func TestStep_RejectsLoadOutsideUnitInterval(t *testing.T) {
	oc := unconstrained()
	_, err := oc.Step(NewOperatingState(), 1.5, StatusOn)
	assert.Error(t, err)
}
