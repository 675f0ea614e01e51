package assign

import (
	"math/rand"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/wiless/vlib"
)

// Result is the outcome of a local-search run. Converged=false with
// Reason set means the iteration budget ended the search, which is the
// normal termination for long runs, not an error.
type Result struct {
	Channels   vlib.VectorI
	Positions  []vlib.Location3D
	Objective  float64
	Iterations int
	Converged  bool
	Reason     string
	History    vlib.VectorF // objective after each sweep
}

// LocalSearch is a hill-climbing solver sweeping one transmitter at a
// time (coordinate descent): each transmitter keeps the best of its
// current value and all candidates while the others stay fixed. This
// ordering-dependent sweep is deliberate; set Config.Simultaneous to
// score a whole sweep against its starting configuration instead.
type LocalSearch struct {
	cfg    Config
	oracle *Oracle
	rnd    *rand.Rand
}

func NewLocalSearch(cfg Config, oracle *Oracle, rnd *rand.Rand) (*LocalSearch, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := oracle.Mask.Validate(); err != nil {
		return nil, err
	}
	return &LocalSearch{cfg: cfg, oracle: oracle, rnd: rnd}, nil
}

// RandomChannels draws a uniform channel in 1..numChannels per
// transmitter.
func RandomChannels(rnd *rand.Rand, n, numChannels int) vlib.VectorI {
	result := vlib.NewVectorI(n)
	for i := range result {
		result[i] = rnd.Intn(numChannels) + 1
	}
	return result
}

// OptimizeChannels hill-climbs the channel assignment from initial,
// holding positions fixed. Candidate channels of one transmitter are
// scored in parallel; the sweep goroutine alone commits the winner.
func (s *LocalSearch) OptimizeChannels(initial vlib.VectorI) (*Result, error) {
	N := len(s.oracle.Positions)
	current := vlib.NewVectorI(N)
	if initial == nil {
		if s.rnd == nil {
			for i := range current {
				current[i] = 1
			}
		} else {
			current = RandomChannels(s.rnd, N, s.cfg.NumChannels)
		}
	} else {
		copy(current, initial)
	}

	score, err := s.oracle.Score(s.oracle.Positions, current)
	if err != nil {
		return nil, err
	}

	result := &Result{Positions: s.oracle.Positions}
	for sweep := 1; sweep <= s.cfg.MaxIterations; sweep++ {
		improved := false
		base := current
		if s.cfg.Simultaneous {
			base = vlib.NewVectorI(N)
			copy(base, current)
		}
		for t := 0; t < N; t++ {
			ch, chScore, err := s.bestChannelFor(base, t, score)
			if err != nil {
				return nil, err
			}
			if chScore < score {
				current[t] = ch
				score = chScore
				improved = true
			}
		}
		if s.cfg.Simultaneous && improved {
			// committed moves were scored one at a time against the
			// sweep start, re-score the combined assignment
			rescored, err := s.oracle.Score(s.oracle.Positions, current)
			if err != nil {
				return nil, err
			}
			score = rescored
		}
		result.Iterations = sweep
		result.History.AppendAtEnd(score)
		if !improved {
			result.Converged = true
			result.Reason = "no improving neighbor"
			break
		}
	}
	if !result.Converged {
		result.Reason = "iteration budget reached"
	}
	result.Channels = current
	result.Objective = score
	log.Debugf("assign: channel search %s after %d sweeps, objective %v", result.Reason, result.Iterations, score)
	return result, nil
}

// bestChannelFor scores every candidate channel of transmitter t
// against the base assignment and returns the best strict improvement
// over bound (or the current channel when none improves). Candidates
// are scored in parallel only when shadowing is off: every score call
// with shadowing draws from the model's single random source, so the
// draw order must stay fixed.
func (s *LocalSearch) bestChannelFor(base vlib.VectorI, t int, bound float64) (int, float64, error) {
	type cand struct {
		ch    int
		score float64
		err   error
	}
	results := make([]cand, s.cfg.NumChannels)
	scoreOf := func(ch int) cand {
		trial := vlib.NewVectorI(len(base))
		copy(trial, base)
		trial[t] = ch
		score, err := s.oracle.Score(s.oracle.Positions, trial)
		return cand{ch: ch, score: score, err: err}
	}

	if s.oracle.Model.ShadowSigmaDb > 0 {
		for ch := 1; ch <= s.cfg.NumChannels; ch++ {
			if ch == base[t] {
				results[ch-1] = cand{ch: ch, score: bound}
				continue
			}
			results[ch-1] = scoreOf(ch)
		}
	} else {
		var wg sync.WaitGroup
		for ch := 1; ch <= s.cfg.NumChannels; ch++ {
			if ch == base[t] {
				results[ch-1] = cand{ch: ch, score: bound}
				continue
			}
			wg.Add(1)
			go func(ch int) {
				defer wg.Done()
				results[ch-1] = scoreOf(ch)
			}(ch)
		}
		wg.Wait()
	}

	bestCh, bestScore := base[t], bound
	for _, c := range results {
		if c.err != nil {
			return 0, 0, c.err
		}
		if c.score < bestScore {
			bestCh, bestScore = c.ch, c.score
		}
	}
	return bestCh, bestScore, nil
}

// moves are the 8 compass directions scaled by Config.StepSize.
var moves = [8][2]float64{
	{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1},
}

// Region is the clipping boundary for position moves.
type Region interface {
	ClipToRegion(vlib.Location3D) vlib.Location3D
}

// OptimizePositions hill-climbs transmitter placement with the channel
// assignment held fixed: per transmitter, try the 8 directional steps
// clipped to the region, keep the best of current + candidates. With a
// zero step size every candidate equals the current position and the
// initial configuration is returned unchanged.
func (s *LocalSearch) OptimizePositions(channels vlib.VectorI, region Region) (*Result, error) {
	N := len(s.oracle.Positions)
	current := make([]vlib.Location3D, N)
	copy(current, s.oracle.Positions)

	score, err := s.oracle.Score(current, channels)
	if err != nil {
		return nil, err
	}

	result := &Result{Channels: channels}
	for sweep := 1; sweep <= s.cfg.MaxIterations; sweep++ {
		improved := false
		for t := 0; t < N; t++ {
			bestLoc, bestScore := current[t], score
			for _, mv := range moves {
				loc := current[t]
				loc.SetXY(loc.X+mv[0]*s.cfg.StepSize, loc.Y+mv[1]*s.cfg.StepSize)
				if region != nil {
					loc = region.ClipToRegion(loc)
				}
				trial := make([]vlib.Location3D, N)
				copy(trial, current)
				trial[t] = loc
				trialScore, err := s.oracle.Score(trial, channels)
				if err != nil {
					return nil, err
				}
				if trialScore < bestScore {
					bestLoc, bestScore = loc, trialScore
				}
			}
			if bestScore < score {
				current[t] = bestLoc
				score = bestScore
				improved = true
			}
		}
		result.Iterations = sweep
		result.History.AppendAtEnd(score)
		if !improved {
			result.Converged = true
			result.Reason = "no improving neighbor"
			break
		}
	}
	if !result.Converged {
		result.Reason = "iteration budget reached"
	}
	result.Positions = current
	result.Objective = score
	return result, nil
}
