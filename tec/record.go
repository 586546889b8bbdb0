// TechnologyRecord loading and validation. Records are YAML documents
// describing one conversion technology (size bounds, economics, performance
// table, operational limits). A record is parsed and validated once at model
// construction and is read-only afterwards; every evaluation shares it.

package tec

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// CapexModelKind selects how annual CAPEX scales with installed size.
type CapexModelKind string

const (
	CapexConstant  CapexModelKind = "constant"
	CapexPiecewise CapexModelKind = "piecewise"
)

// recordYAML is the wire format. Required scalars are pointers so absence is
// distinguishable from a zero value; unknown keys are ignored (the decoder is
// not strict). Scalar range constraints are declarative validator tags,
// structural constraints are checked in resolve().
type recordYAML struct {
	Name        string            `yaml:"name"`
	SizeMin     *float64          `yaml:"size_min" validate:"required"`
	SizeMax     *float64          `yaml:"size_max" validate:"required"`
	Economics   *economicsYAML    `yaml:"economics" validate:"required"`
	Performance *performanceYAML  `yaml:"performance" validate:"required"`
	Units       map[string]string `yaml:"units"`
}

type economicsYAML struct {
	CapexModel       *string        `yaml:"capex_model" validate:"required"`
	UnitCapex        float64        `yaml:"unit_capex" validate:"gte=0"`
	PiecewiseCapex   *piecewiseYAML `yaml:"piecewise_capex_annual"`
	OpexVariable     float64        `yaml:"opex_variable" validate:"gte=0"`
	OpexFixed        float64        `yaml:"opex_fixed" validate:"gte=0"`
	DiscountRate     float64        `yaml:"discount_rate" validate:"gte=0"`
	Lifetime         *float64       `yaml:"lifetime" validate:"required"`
	DecommissionCost float64        `yaml:"decommission_cost" validate:"gte=0"`
}

type piecewiseYAML struct {
	BpX []float64 `yaml:"bp_x"`
	BpY []float64 `yaml:"bp_y"`
}

type performanceYAML struct {
	FunctionType        string               `yaml:"function_type"`
	InputCarriers       []string             `yaml:"input_carriers" validate:"required,min=1"`
	MainInputCarrier    *string              `yaml:"main_input_carrier" validate:"required"`
	OutputCarriers      []string             `yaml:"output_carriers" validate:"required,min=1"`
	MinPartLoad         float64              `yaml:"min_part_load" validate:"gte=0,lte=1"`
	NrSegmentsPiecewise int                  `yaml:"nr_segments_piecewise" validate:"gte=0"`
	In                  []float64            `yaml:"in" validate:"required"`
	Out                 map[string][]float64 `yaml:"out" validate:"required"`
	InputRatios         map[string]float64   `yaml:"input_ratios"`

	// Operational limits. Absent or -1 means the constraint is disabled.
	RampingRate  *float64 `yaml:"ramping_rate"`
	StandbyPower *float64 `yaml:"standby_power"`
	MinUptime    *float64 `yaml:"min_uptime"`
	MinDowntime  *float64 `yaml:"min_downtime"`
	SUTime       *float64 `yaml:"su_time"`
	SDTime       *float64 `yaml:"sd_time"`
	SULoad       *float64 `yaml:"su_load"`
	SDLoad       *float64 `yaml:"sd_load"`
	MaxStartups  *float64 `yaml:"max_startups"`
}

// Economics holds the resolved economic parameters of a record.
type Economics struct {
	CapexModel       CapexModelKind
	UnitCapex        float64 // EUR per MW-year, constant model
	PiecewiseCapexX  []float64
	PiecewiseCapexY  []float64
	OpexVariable     float64 // EUR/MWh of output
	OpexFixed        float64 // fraction of annual CAPEX per year
	DiscountRate     float64
	Lifetime         float64 // years
	DecommissionCost float64 // one-time EUR
}

// Performance holds the resolved conversion performance of a record, with
// carrier names already mapped to registry identifiers.
type Performance struct {
	InputCarriers    []Carrier
	MainInputCarrier Carrier
	OutputCarriers   []Carrier
	MinPartLoad      float64
	NrSegments       int
	In               []float64             // normalized load breakpoints, ascending in [0,1]
	Out              map[Carrier][]float64 // per-carrier output fractions, same length as In
	InputRatios      map[Carrier]float64

	// Operational limits, nil when disabled. Times are in scenario steps,
	// loads are fractions of size, standby power is MW.
	RampingRate  *float64
	StandbyPower *float64
	MinUptime    *int
	MinDowntime  *int
	SUTime       *int
	SDTime       *int
	SULoad       *float64
	SDLoad       *float64
	MaxStartups  *int
}

// TechnologyRecord is the immutable characterization of one technology.
type TechnologyRecord struct {
	Name        string
	SizeMin     float64 // MW
	SizeMax     float64 // MW
	Economics   Economics
	Performance Performance
	Units       map[string]string // carrier -> physical unit, presentation only
}

// LoadRecord reads and resolves a technology record from a YAML file.
func LoadRecord(path string) (*TechnologyRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading technology record: %w", err)
	}
	return ParseRecord(data)
}

// ParseRecord parses and resolves a technology record from YAML bytes.
// Unknown fields are ignored; missing required fields fail with
// ErrMissingField, malformed breakpoint tables with ErrInvalidBreakpoints.
func ParseRecord(data []byte) (*TechnologyRecord, error) {
	var raw recordYAML
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing technology record: %w", err)
	}
	if err := validate.Struct(&raw); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range errs {
				if fe.Tag() == "required" || fe.Tag() == "min" {
					return nil, fmt.Errorf("%w: %s", ErrMissingField, fe.Namespace())
				}
			}
		}
		return nil, fmt.Errorf("technology record validation: %w", err)
	}
	return raw.resolve()
}

func (raw *recordYAML) resolve() (*TechnologyRecord, error) {
	rec := &TechnologyRecord{
		Name:    raw.Name,
		SizeMin: *raw.SizeMin,
		SizeMax: *raw.SizeMax,
		Units:   raw.Units,
	}
	if rec.SizeMin > rec.SizeMax {
		return nil, fmt.Errorf("size_min %v exceeds size_max %v", rec.SizeMin, rec.SizeMax)
	}

	if err := raw.resolveEconomics(rec); err != nil {
		return nil, err
	}
	if err := raw.resolvePerformance(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (raw *recordYAML) resolveEconomics(rec *TechnologyRecord) error {
	e := raw.Economics
	kind := CapexModelKind(*e.CapexModel)
	switch kind {
	case CapexConstant:
		// unit_capex may legitimately be zero (free capacity in test setups).
	case CapexPiecewise:
		if e.PiecewiseCapex == nil {
			return fmt.Errorf("%w: economics.piecewise_capex_annual", ErrMissingField)
		}
		// NewPiecewise performs the full breakpoint validation; build and
		// discard here so malformed curves abort at load, not first use.
		pw, err := NewPiecewise(e.PiecewiseCapex.BpX, e.PiecewiseCapex.BpY)
		if err != nil {
			return fmt.Errorf("economics.piecewise_capex_annual: %w", err)
		}
		if pw.Min() > rec.SizeMin {
			return fmt.Errorf("%w: piecewise CAPEX bp_x starts at %v, above size_min %v",
				ErrInvalidBreakpoints, pw.Min(), rec.SizeMin)
		}
	default:
		return fmt.Errorf("unknown capex_model %q", *e.CapexModel)
	}

	rec.Economics = Economics{
		CapexModel:       kind,
		UnitCapex:        e.UnitCapex,
		OpexVariable:     e.OpexVariable,
		OpexFixed:        e.OpexFixed,
		DiscountRate:     e.DiscountRate,
		Lifetime:         *e.Lifetime,
		DecommissionCost: e.DecommissionCost,
	}
	if rec.Economics.Lifetime <= 0 {
		return fmt.Errorf("economics.lifetime must be positive, got %v", rec.Economics.Lifetime)
	}
	if e.PiecewiseCapex != nil {
		rec.Economics.PiecewiseCapexX = append([]float64(nil), e.PiecewiseCapex.BpX...)
		rec.Economics.PiecewiseCapexY = append([]float64(nil), e.PiecewiseCapex.BpY...)
	}
	return nil
}

func (raw *recordYAML) resolvePerformance(rec *TechnologyRecord) error {
	p := raw.Performance
	perf := Performance{
		MinPartLoad: p.MinPartLoad,
		NrSegments:  p.NrSegmentsPiecewise,
		In:          append([]float64(nil), p.In...),
		Out:         make(map[Carrier][]float64, len(p.Out)),
		InputRatios: make(map[Carrier]float64, len(p.InputRatios)),
	}

	inputSet := make(map[Carrier]bool, len(p.InputCarriers))
	for _, name := range p.InputCarriers {
		c, err := ParseCarrier(name)
		if err != nil {
			return fmt.Errorf("performance.input_carriers: %w", err)
		}
		perf.InputCarriers = append(perf.InputCarriers, c)
		inputSet[c] = true
	}
	main, err := ParseCarrier(*p.MainInputCarrier)
	if err != nil {
		return fmt.Errorf("performance.main_input_carrier: %w", err)
	}
	if !inputSet[main] {
		return fmt.Errorf("main_input_carrier %q not among input_carriers", main)
	}
	perf.MainInputCarrier = main

	outputSet := make(map[Carrier]bool, len(p.OutputCarriers))
	for _, name := range p.OutputCarriers {
		c, err := ParseCarrier(name)
		if err != nil {
			return fmt.Errorf("performance.output_carriers: %w", err)
		}
		perf.OutputCarriers = append(perf.OutputCarriers, c)
		outputSet[c] = true
	}

	// Normalized load breakpoints must be an ascending span of [0, 1].
	if _, err := NewPiecewise(perf.In, perf.In); err != nil {
		return fmt.Errorf("performance.in: %w", err)
	}
	if perf.In[0] != 0 || perf.In[len(perf.In)-1] != 1 {
		return fmt.Errorf("%w: performance.in must start at 0 and end at 1, got [%v, %v]",
			ErrInvalidBreakpoints, perf.In[0], perf.In[len(perf.In)-1])
	}
	// nr_segments_piecewise is optional, but when declared it must agree with
	// the table; a mismatch means the record was edited inconsistently.
	if perf.NrSegments > 0 && perf.NrSegments != len(perf.In)-1 {
		return fmt.Errorf("%w: nr_segments_piecewise is %d but performance.in spans %d segments",
			ErrInvalidBreakpoints, perf.NrSegments, len(perf.In)-1)
	}

	for name, ys := range p.Out {
		c, err := ParseCarrier(name)
		if err != nil {
			return fmt.Errorf("performance.out: %w", err)
		}
		// Output columns belong to declared output carriers, with one
		// exception: a column keyed by the main input carrier is the
		// input-fraction curve (see PerformanceCurve).
		if !outputSet[c] && c != main {
			return fmt.Errorf("performance.out carrier %q not among output_carriers", c)
		}
		if len(ys) != len(perf.In) {
			return fmt.Errorf("%w: performance.out[%s] has %d values, performance.in has %d",
				ErrInvalidBreakpoints, c, len(ys), len(perf.In))
		}
		perf.Out[c] = append([]float64(nil), ys...)
	}
	for _, c := range perf.OutputCarriers {
		if _, ok := perf.Out[c]; !ok {
			return fmt.Errorf("%w: performance.out[%s]", ErrMissingField, c)
		}
	}

	anyPositive := false
	for name, ratio := range p.InputRatios {
		c, err := ParseCarrier(name)
		if err != nil {
			return fmt.Errorf("performance.input_ratios: %w", err)
		}
		if !inputSet[c] {
			return fmt.Errorf("input_ratios carrier %q not among input_carriers", c)
		}
		if ratio < 0 {
			return fmt.Errorf("input_ratios[%s] must be nonnegative, got %v", c, ratio)
		}
		if ratio > 0 {
			anyPositive = true
		}
		perf.InputRatios[c] = ratio
	}
	if len(perf.InputRatios) > 0 && !anyPositive {
		return fmt.Errorf("input_ratios must contain at least one positive weight")
	}

	perf.RampingRate, err = optFraction("ramping_rate", p.RampingRate)
	if err != nil {
		return err
	}
	if perf.StandbyPower, err = optValue("standby_power", p.StandbyPower); err != nil {
		return err
	}
	if perf.SULoad, err = optFraction("su_load", p.SULoad); err != nil {
		return err
	}
	if perf.SDLoad, err = optFraction("sd_load", p.SDLoad); err != nil {
		return err
	}
	if perf.MinUptime, err = optSteps("min_uptime", p.MinUptime); err != nil {
		return err
	}
	if perf.MinDowntime, err = optSteps("min_downtime", p.MinDowntime); err != nil {
		return err
	}
	if perf.SUTime, err = optSteps("su_time", p.SUTime); err != nil {
		return err
	}
	if perf.SDTime, err = optSteps("sd_time", p.SDTime); err != nil {
		return err
	}
	if perf.MaxStartups, err = optSteps("max_startups", p.MaxStartups); err != nil {
		return err
	}

	rec.Performance = perf
	return nil
}

// optValue maps the wire encoding of an optional nonnegative value to its
// resolved form: absent or the legacy -1 sentinel become nil (disabled).
func optValue(field string, v *float64) (*float64, error) {
	if v == nil || *v == -1 {
		return nil, nil
	}
	if *v < 0 {
		return nil, fmt.Errorf("performance.%s must be nonnegative or -1, got %v", field, *v)
	}
	out := *v
	return &out, nil
}

func optFraction(field string, v *float64) (*float64, error) {
	out, err := optValue(field, v)
	if err != nil {
		return nil, err
	}
	if out != nil && *out > 1 {
		return nil, fmt.Errorf("performance.%s is a fraction of size, got %v", field, *out)
	}
	return out, nil
}

func optSteps(field string, v *float64) (*int, error) {
	out, err := optValue(field, v)
	if err != nil || out == nil {
		return nil, err
	}
	n := int(*out)
	if float64(n) != *out {
		return nil, fmt.Errorf("performance.%s is a whole number of steps, got %v", field, *out)
	}
	return &n, nil
}

// MarshalYAML round-trips the record back to its wire format, preserving
// breakpoint arrays and scalar fields exactly.
func (r *TechnologyRecord) MarshalYAML() (interface{}, error) {
	out := recordYAML{
		Name:    r.Name,
		SizeMin: f64ptr(r.SizeMin),
		SizeMax: f64ptr(r.SizeMax),
		Units:   r.Units,
	}
	e := r.Economics
	model := string(e.CapexModel)
	out.Economics = &economicsYAML{
		CapexModel:       &model,
		UnitCapex:        e.UnitCapex,
		OpexVariable:     e.OpexVariable,
		OpexFixed:        e.OpexFixed,
		DiscountRate:     e.DiscountRate,
		Lifetime:         f64ptr(e.Lifetime),
		DecommissionCost: e.DecommissionCost,
	}
	if e.CapexModel == CapexPiecewise {
		out.Economics.PiecewiseCapex = &piecewiseYAML{BpX: e.PiecewiseCapexX, BpY: e.PiecewiseCapexY}
	}

	p := r.Performance
	main := p.MainInputCarrier.String()
	py := &performanceYAML{
		FunctionType:        "piecewise",
		MainInputCarrier:    &main,
		MinPartLoad:         p.MinPartLoad,
		NrSegmentsPiecewise: p.NrSegments,
		In:                  p.In,
		Out:                 make(map[string][]float64, len(p.Out)),
		RampingRate:         p.RampingRate,
		StandbyPower:        p.StandbyPower,
		SULoad:              p.SULoad,
		SDLoad:              p.SDLoad,
		MinUptime:           stepsPtr(p.MinUptime),
		MinDowntime:         stepsPtr(p.MinDowntime),
		SUTime:              stepsPtr(p.SUTime),
		SDTime:              stepsPtr(p.SDTime),
		MaxStartups:         stepsPtr(p.MaxStartups),
	}
	for _, c := range p.InputCarriers {
		py.InputCarriers = append(py.InputCarriers, c.String())
	}
	for _, c := range p.OutputCarriers {
		py.OutputCarriers = append(py.OutputCarriers, c.String())
	}
	for c, ys := range p.Out {
		py.Out[c.String()] = ys
	}
	if len(p.InputRatios) > 0 {
		py.InputRatios = make(map[string]float64, len(p.InputRatios))
		for c, ratio := range p.InputRatios {
			py.InputRatios[c.String()] = ratio
		}
	}
	out.Performance = py
	return out, nil
}

func f64ptr(v float64) *float64 { return &v }

func stepsPtr(v *int) *float64 {
	if v == nil {
		return nil
	}
	f := float64(*v)
	return &f
}
