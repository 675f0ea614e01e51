package assign

import (
	log "github.com/sirupsen/logrus"
	"github.com/wiless/vlib"
)

// BacktrackSolver treats each transmitter's channel as a finite-domain
// variable and searches depth-first, pruning any partial assignment
// whose pairwise SIR with an already-assigned transmitter falls below
// Config.MinSIRDb. The pairwise path loss is frozen once at Solve()
// time, so one shadowing realization (if any) is shared by the whole
// search.
type BacktrackSolver struct {
	cfg    Config
	oracle *Oracle

	plDb    vlib.MatrixF // pairwise path loss, symmetric
	visited int
}

func NewBacktrackSolver(cfg Config, oracle *Oracle) (*BacktrackSolver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := oracle.Mask.Validate(); err != nil {
		return nil, err
	}
	return &BacktrackSolver{cfg: cfg, oracle: oracle}, nil
}

// NodesVisited reports the search nodes expanded by the last Solve.
func (s *BacktrackSolver) NodesVisited() int { return s.visited }

// Solve returns the first complete assignment meeting the SIR
// threshold, or an InfeasibleError carrying the least-violating
// complete assignment when the domain or the node budget is exhausted.
func (s *BacktrackSolver) Solve() (vlib.VectorI, error) {
	N := len(s.oracle.Positions)
	s.freezePathLoss()
	s.visited = 0

	assignment := vlib.NewVectorI(N)
	found, budgetHit := s.search(assignment, 0)
	if found {
		return assignment, nil
	}

	best, violations := s.greedyFallback()
	log.Infof("assign: backtracking failed after %d nodes, fallback has %d violations", s.visited, violations)
	return nil, &InfeasibleError{Best: best, Violations: violations, BudgetHit: budgetHit}
}

func (s *BacktrackSolver) freezePathLoss() {
	N := len(s.oracle.Positions)
	s.plDb = vlib.NewMatrixF(N, N)
	for i := 0; i < N; i++ {
		for j := i + 1; j < N; j++ {
			pl := s.oracle.Model.LossInDb2D(s.oracle.Positions[i], s.oracle.Positions[j])
			s.plDb[i][j] = pl
			s.plDb[j][i] = pl
		}
	}
}

// pairOK checks the hard constraint between two assigned transmitters.
func (s *BacktrackSolver) pairOK(i, j, chI, chJ int) bool {
	sDb, _ := s.oracle.Mask.OverlapDb(chI, chJ)
	rxDbm := s.oracle.Sys.TxPowerDbm - s.plDb[i][j] - sDb
	return s.oracle.Sys.SignalRefDbm-rxDbm >= s.cfg.MinSIRDb
}

// search assigns transmitter k onward; assignment[i] holds channel
// 1..K for i<k. Prunes on the first pairwise violation against the
// already-assigned prefix.
func (s *BacktrackSolver) search(assignment vlib.VectorI, k int) (found, budgetHit bool) {
	if k == len(assignment) {
		return true, false
	}
	for ch := 1; ch <= s.cfg.NumChannels; ch++ {
		s.visited++
		if s.cfg.NodeBudget > 0 && s.visited > s.cfg.NodeBudget {
			return false, true
		}
		ok := true
		for i := 0; i < k; i++ {
			if !s.pairOK(i, k, assignment[i], ch) {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		assignment[k] = ch
		found, hit := s.search(assignment, k+1)
		if found || hit {
			return found, hit
		}
		assignment[k] = 0
	}
	return false, false
}

// greedyFallback completes an assignment channel-by-channel minimizing
// the running violation count, the soft candidate reported with
// InfeasibleError.
func (s *BacktrackSolver) greedyFallback() (vlib.VectorI, int) {
	N := len(s.oracle.Positions)
	assignment := vlib.NewVectorI(N)
	for k := 0; k < N; k++ {
		bestCh, bestViol := 1, N+1
		for ch := 1; ch <= s.cfg.NumChannels; ch++ {
			viol := 0
			for i := 0; i < k; i++ {
				if !s.pairOK(i, k, assignment[i], ch) {
					viol++
				}
			}
			if viol < bestViol {
				bestViol = viol
				bestCh = ch
			}
		}
		assignment[k] = bestCh
	}
	total := 0
	for i := 0; i < N; i++ {
		for j := i + 1; j < N; j++ {
			if !s.pairOK(i, j, assignment[i], assignment[j]) {
				total++
			}
		}
	}
	return assignment, total
}

// SolveBestThreshold re-runs the hard-constraint search while stepping
// the SIR threshold up by stepDb, returning the solution for the
// tightest threshold that stayed feasible. A first-step failure
// returns the underlying InfeasibleError.
func SolveBestThreshold(cfg Config, oracle *Oracle, stepDb float64, maxSteps int) (vlib.VectorI, float64, error) {
	var lastGood vlib.VectorI
	lastThreshold := cfg.MinSIRDb
	for step := 0; step < maxSteps; step++ {
		solver, err := NewBacktrackSolver(cfg, oracle)
		if err != nil {
			return nil, 0, err
		}
		solution, err := solver.Solve()
		if err != nil {
			if lastGood == nil {
				return nil, 0, err
			}
			return lastGood, lastThreshold, nil
		}
		lastGood = solution
		lastThreshold = cfg.MinSIRDb
		cfg.MinSIRDb += stepDb
	}
	return lastGood, lastThreshold, nil
}
