// Package assign searches the discrete space of channel assignments
// (one of K channels per transmitter) for configurations with low
// mutual interference, using the wifiplan matrix builder as its
// objective and constraint oracle.
package assign

import (
	"errors"
	"fmt"

	"github.com/wiless/vlib"

	"github.com/wiless/wifiplan"
	"github.com/wiless/wifiplan/pathloss"
	"github.com/wiless/wifiplan/spectral"
)

// ErrNoFeasibleAssignment is returned by the hard-constraint solver
// when the channel domain is exhausted (or the node budget spent)
// without a complete assignment meeting the SIR threshold. The typed
// InfeasibleError wrapping it carries the best infeasible candidate so
// the caller can fall back to a soft objective.
var ErrNoFeasibleAssignment = errors.New("assign: no feasible assignment")

// InfeasibleError reports the least-violating complete assignment seen
// while the hard-constraint search failed.
type InfeasibleError struct {
	Best       vlib.VectorI
	Violations int
	BudgetHit  bool
}

func (e *InfeasibleError) Error() string {
	cause := "domain exhausted"
	if e.BudgetHit {
		cause = "node budget exhausted"
	}
	return fmt.Sprintf("assign: no feasible assignment (%s), best candidate has %d violations", cause, e.Violations)
}

func (e *InfeasibleError) Unwrap() error { return ErrNoFeasibleAssignment }

// ObjectiveType selects the scalar minimized by the local search.
type ObjectiveType int

const (
	SumInterference ObjectiveType = iota // total off-diagonal linear power
	MaxInterference                      // worst single pair
	SIRViolations                        // count of pairs below MinSIRDb
)

var objectiveNames = [...]string{
	"SumInterference",
	"MaxInterference",
	"SIRViolations",
}

func (o ObjectiveType) String() string {
	if int(o) >= len(objectiveNames) {
		return "Unknown-Objective"
	}
	return objectiveNames[o]
}

// Config enumerates every knob of the solvers; Validate is called once
// at solver construction.
type Config struct {
	NumChannels   int
	MinSIRDb      float64 // hard pairwise SIR threshold
	NodeBudget    int     // backtracking search-node budget, 0 = unbounded
	MaxIterations int     // local-search sweep budget
	StepSize      float64 // meters per candidate position move
	Objective     ObjectiveType
	Simultaneous  bool // score a sweep against its start instead of committing per transmitter
}

func (c Config) Validate() error {
	if c.NumChannels <= 0 {
		return fmt.Errorf("%w: channel count %d <= 0", pathloss.ErrInvalidParameter, c.NumChannels)
	}
	if c.MaxIterations < 0 || c.NodeBudget < 0 {
		return fmt.Errorf("%w: negative budget", pathloss.ErrInvalidParameter)
	}
	if c.StepSize < 0 {
		return fmt.Errorf("%w: step size %v < 0", pathloss.ErrInvalidParameter, c.StepSize)
	}
	return nil
}

// Oracle scores candidate configurations by rebuilding the
// interference matrix. It is read-only over the shared system, model
// and mask; Positions is the geometry the channel solvers hold fixed.
type Oracle struct {
	Sys       wifiplan.System
	Model     *pathloss.Model
	Mask      spectral.Mask
	Positions []vlib.Location3D
	Objective ObjectiveType
	MinSIRDb  float64
}

// Matrix builds the interference matrix for a candidate assignment at
// the given geometry.
func (o *Oracle) Matrix(positions []vlib.Location3D, channels vlib.VectorI) (*wifiplan.InterferenceMatrix, error) {
	return o.Sys.EvaluateMatrix(positions, channels, o.Model, o.Mask)
}

// Score evaluates the configured scalar objective; lower is better.
func (o *Oracle) Score(positions []vlib.Location3D, channels vlib.VectorI) (float64, error) {
	m, err := o.Matrix(positions, channels)
	if err != nil {
		return 0, err
	}
	switch o.Objective {
	case MaxInterference:
		return m.MaxPairMw(), nil
	case SIRViolations:
		count := 0
		for i := 0; i < m.N; i++ {
			for j := i + 1; j < m.N; j++ {
				if o.Sys.PairSIRDb(m, i, j) < o.MinSIRDb {
					count++
				}
			}
		}
		return float64(count), nil
	default:
		return m.TotalMw(), nil
	}
}
