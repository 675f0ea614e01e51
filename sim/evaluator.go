// Package sim runs repeated randomized channel draws and accumulates
// the expected interference matrix.
package sim

import (
	"fmt"
	"math/rand"

	log "github.com/sirupsen/logrus"
	"github.com/wiless/vlib"
	"gonum.org/v1/gonum/stat"

	"github.com/wiless/wifiplan"
	"github.com/wiless/wifiplan/assign"
)

// Stats summarises the convergence series.
type Stats struct {
	MeanDbm   float64
	StdDevDbm float64
	LastDbm   float64
}

// RunResult is the outcome of an iterative evaluation. AverageLinear
// is a running expectation over random assignments; it does not
// correspond to any single achievable configuration. LastChannels is
// the assignment of the final iteration, kept for reporting only.
type RunResult struct {
	Iterations    int
	AverageLinear *wifiplan.InterferenceMatrix
	Series        vlib.VectorF // mean aggregate interference (dBm) per iteration
	LastChannels  vlib.VectorI
	Stats         Stats
}

// Evaluator draws a fresh uniform channel assignment each iteration,
// rebuilds the interference matrix through the oracle and folds it
// into a running average with the incremental-mean update
// avg += (sample - avg)/k.
type Evaluator struct {
	Oracle      *assign.Oracle
	NumChannels int
	Iterations  int
	rnd         *rand.Rand
}

func NewEvaluator(oracle *assign.Oracle, numChannels, iterations int, rnd *rand.Rand) (*Evaluator, error) {
	if numChannels <= 0 {
		return nil, fmt.Errorf("sim: channel count %d <= 0", numChannels)
	}
	if iterations <= 0 {
		return nil, fmt.Errorf("sim: iteration count %d <= 0", iterations)
	}
	if rnd == nil {
		return nil, fmt.Errorf("sim: no random source")
	}
	return &Evaluator{Oracle: oracle, NumChannels: numChannels, Iterations: iterations, rnd: rnd}, nil
}

// Run executes the configured number of iterations.
func (e *Evaluator) Run() (*RunResult, error) {
	N := len(e.Oracle.Positions)
	result := &RunResult{AverageLinear: wifiplan.NewInterferenceMatrix(N)}

	for iter := 1; iter <= e.Iterations; iter++ {
		channels := assign.RandomChannels(e.rnd, N, e.NumChannels)
		m, err := e.Oracle.Matrix(e.Oracle.Positions, channels)
		if err != nil {
			return nil, err
		}
		result.AverageLinear.Fold(m, iter)

		agg := m.AggregateDbm()
		result.Series.AppendAtEnd(vlib.Sum(agg) / float64(len(agg)))
		result.LastChannels = channels
		result.Iterations = iter
	}

	result.Stats = Stats{
		MeanDbm:   stat.Mean(result.Series, nil),
		StdDevDbm: stat.StdDev(result.Series, nil),
		LastDbm:   result.Series[len(result.Series)-1],
	}
	log.Debugf("sim: %d iterations, mean aggregate %.2f dBm", result.Iterations, result.Stats.MeanDbm)
	return result, nil
}
