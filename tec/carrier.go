// Defines the closed carrier registry and the fixed-width FlowSet used on the
// evaluation hot path. Carrier names appearing in records are resolved to
// small integer identifiers once at load time; per-step flow accounting is
// array-indexed, never map-keyed.

package tec

import "fmt"

// Carrier identifies an energy/fuel medium. The registry is closed: records
// naming a carrier outside this set fail to load with ErrUnknownCarrier.
type Carrier uint8

const (
	Electricity Carrier = iota
	Heat
	Gas
	Hydrogen
	Oil
	Biomass
	Waste
	CO2

	numCarriers
)

var carrierNames = [numCarriers]string{
	Electricity: "electricity",
	Heat:        "heat",
	Gas:         "gas",
	Hydrogen:    "hydrogen",
	Oil:         "oil",
	Biomass:     "biomass",
	Waste:       "waste",
	CO2:         "CO2",
}

var carriersByName = func() map[string]Carrier {
	m := make(map[string]Carrier, numCarriers)
	for c, name := range carrierNames {
		m[name] = Carrier(c)
	}
	return m
}()

// ParseCarrier resolves a carrier name from a record against the registry.
func ParseCarrier(name string) (Carrier, error) {
	c, ok := carriersByName[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCarrier, name)
	}
	return c, nil
}

func (c Carrier) String() string {
	if c >= numCarriers {
		return fmt.Sprintf("carrier(%d)", uint8(c))
	}
	return carrierNames[c]
}

// FlowSet holds one flow value (MW, or MWh when accumulated) per carrier,
// indexed by Carrier.
type FlowSet [numCarriers]float64

// Get returns the flow for carrier c.
func (f FlowSet) Get(c Carrier) float64 { return f[c] }

// Set assigns the flow for carrier c.
func (f *FlowSet) Set(c Carrier, v float64) { f[c] = v }

// Add accumulates v onto carrier c.
func (f *FlowSet) Add(c Carrier, v float64) { f[c] += v }

// Total sums the flows over the given carriers.
func (f FlowSet) Total(carriers []Carrier) float64 {
	var sum float64
	for _, c := range carriers {
		sum += f[c]
	}
	return sum
}

// Map converts the set to a name-keyed map for presentation, keeping only
// nonzero entries.
func (f FlowSet) Map() map[string]float64 {
	m := make(map[string]float64)
	for c := Carrier(0); c < numCarriers; c++ {
		if f[c] != 0 {
			m[c.String()] = f[c]
		}
	}
	return m
}
