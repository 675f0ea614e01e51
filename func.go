package wifiplan

import (
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
	CM "github.com/wiless/channelmodel"
	"github.com/wiless/vlib"

	"github.com/wiless/wifiplan/pathloss"
	"github.com/wiless/wifiplan/spectral"
)

// EvaluateMatrix builds the pairwise received-power matrix for the
// given positions and channel assignment. Each unordered pair is
// evaluated once (one path-loss draw, one mask lookup) and written to
// both ordered entries, so the matrix is symmetric even when shadowing
// is enabled. With shadowing disabled the pair loop fans out over
// goroutines, one row owner per pair, since all inputs are read-only.
func (w System) EvaluateMatrix(positions []vlib.Location3D, channels vlib.VectorI,
	model *pathloss.Model, mask spectral.Mask) (*InterferenceMatrix, error) {

	if len(positions) != len(channels) {
		return nil, fmt.Errorf("wifiplan: %d positions for %d channels", len(positions), len(channels))
	}
	if err := mask.Validate(); err != nil {
		return nil, err
	}
	if model == nil || !model.IsInitialized() {
		return nil, fmt.Errorf("%w: path-loss model not initialized", pathloss.ErrInvalidParameter)
	}

	N := len(positions)
	result := NewInterferenceMatrix(N)

	fill := func(i, j int) {
		plDb := model.LossInDb2D(positions[i], positions[j])
		sDb, _ := mask.OverlapDb(channels[i], channels[j])
		rxDbm := w.TxPowerDbm - plDb - sDb
		linear := vlib.InvDb(rxDbm)
		result.Linear[i][j] = linear
		result.Linear[j][i] = linear
	}

	if model.ShadowSigmaDb > 0 {
		// shadowing draws share one random source, keep the order fixed
		for i := 0; i < N; i++ {
			for j := i + 1; j < N; j++ {
				fill(i, j)
			}
		}
		return result, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < N; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := i + 1; j < N; j++ {
				fill(i, j)
			}
		}(i)
	}
	wg.Wait()
	return result, nil
}

// EvaluateMatrixCM builds the matrix with a 3GPP channel-model backend
// (e.g. InH office) instead of the simple log-distance model. Pairs the
// backend cannot evaluate get DEFAULTERR_PL, i.e. effectively zero
// received power.
func (w System) EvaluateMatrixCM(positions []vlib.Location3D, channels vlib.VectorI,
	model CM.PLModel, mask spectral.Mask) (*InterferenceMatrix, error) {

	if len(positions) != len(channels) {
		return nil, fmt.Errorf("wifiplan: %d positions for %d channels", len(positions), len(channels))
	}
	if err := mask.Validate(); err != nil {
		return nil, err
	}
	if !model.IsSupported(w.FrequencyGHz) {
		return nil, fmt.Errorf("wifiplan: model %v does not support %vGHz", model.Env(), w.FrequencyGHz)
	}

	N := len(positions)
	result := NewInterferenceMatrix(N)
	for i := 0; i < N; i++ {
		for j := i + 1; j < N; j++ {
			plDb, _, plerr := model.PLbetweenIndoor(positions[i], positions[j], 0)
			if plerr != nil {
				log.Infof("EvaluateMatrixCM : (%d,%d) %v > %v", i, j, plDb, plerr)
				plDb = DEFAULTERR_PL
			}
			sDb, _ := mask.OverlapDb(channels[i], channels[j])
			linear := vlib.InvDb(w.TxPowerDbm - plDb - sDb)
			result.Linear[i][j] = linear
			result.Linear[j][i] = linear
		}
	}
	return result, nil
}

// EvaluateTxMetrics derives the per-transmitter reporting view of a
// matrix: sorted interferer list, aggregate interference, noise floor
// and the SIR against the wanted-signal reference.
func (w System) EvaluateTxMetrics(m *InterferenceMatrix, channels vlib.VectorI) []TxMetric {
	N0 := w.N0()
	result := make([]TxMetric, m.N)
	for j := 0; j < m.N; j++ {
		var metric TxMetric
		metric.TxNodeID = j
		metric.FreqInGHz = w.FrequencyGHz
		metric.BandwidthMHz = w.BandwidthMHz
		metric.N0 = N0
		if j < len(channels) {
			metric.Channel = channels[j]
		}

		var rxDbm vlib.VectorF
		var rxIDs vlib.VectorI
		for i := 0; i < m.N; i++ {
			if i == j {
				continue
			}
			rxIDs.AppendAtEnd(i)
			rxDbm.AppendAtEnd(DbmSafe(m.Linear[i][j]))
		}

		if rxIDs.Size() > 0 {
			sorted, indx := rxDbm.Sorted2()
			metric.InterfererIDs = rxIDs.At(indx.Flip()...)
			metric.InterfererDbm = sorted.Flip()
		}

		agg := m.AggregateMw(j)
		metric.RoIDbm = DbmSafe(agg)
		metric.NoiseFloorDbm = DbmSafe(agg + vlib.InvDb(N0))
		metric.SIRDb = w.SignalRefDbm - metric.RoIDbm
		result[j] = metric
	}
	return result
}

// PairSIRDb returns the SIR at receiver j considering only the single
// interferer i, the quantity the hard-constraint solver thresholds.
func (w System) PairSIRDb(m *InterferenceMatrix, i, j int) float64 {
	return w.SignalRefDbm - DbmSafe(m.Linear[i][j])
}
