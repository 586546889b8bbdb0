// Package tec evaluates technology characterization records for an energy
// system planning or dispatch framework.
//
// # Reading Guide
//
// Start with these three files to understand the evaluator:
//   - record.go: the TechnologyRecord schema, loading and validation
//   - performance.go: load fraction -> per-carrier flow conversion
//   - constraints.go: the commitment state machine (off → starting → on → stopping)
//
// # Architecture
//
// A TechnologyRecord is parsed and validated once, then wrapped by
// TechnologyModel, which composes:
//   - Piecewise: ordered-breakpoint interpolation with slope extrapolation
//   - PerformanceCurve: multi-carrier input/output mapping with part-load limits
//   - EconomicsModel: annualized CAPEX/OPEX as a function of installed size
//   - OperationalConstraints: ramping, min up/down times, startup budget
//
// The optimizer queries TechnologyModel.AnnualizedCost, Convert and Step per
// time step. The model is read-only and safe for concurrent use; all mutable
// state lives in the caller-owned OperatingState. DispatchSimulator
// (dispatch.go) steps a full schedule through the machine and accumulates
// energy and cost totals, which is also what the simulate CLI command runs.
package tec
