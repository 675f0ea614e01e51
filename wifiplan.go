// Package wifiplan estimates pairwise interference between co-located
// WiFi transmitters and plans their channel assignment.
package wifiplan

import (
	"github.com/wiless/vlib"
)

// FloorDbm is the sentinel reported for zero linear power, so no
// -Inf/NaN ever reaches a caller.
const FloorDbm = -999.0

// DEFAULTERR_PL is the loss substituted when a path-loss backend cannot
// evaluate a pair.
var DEFAULTERR_PL float64 = 999999

// System carries the radio parameters shared by every link evaluation.
type System struct {
	FrequencyGHz float64
	BandwidthMHz float64
	NoisePSDdBm  float64
	TxPowerDbm   float64
	SignalRefDbm float64 // received power of the wanted signal used for SIR reporting
}

// NewSystem returns a 20MHz 2.4GHz system with 10dBm transmitters and
// a -40dBm wanted-signal reference.
func NewSystem() System {
	var result System
	result.FrequencyGHz = 2.412
	result.BandwidthMHz = 20.0
	result.NoisePSDdBm = -174.0
	result.TxPowerDbm = 10.0
	result.SignalRefDbm = -40.0
	return result
}

// N0 returns the thermal noise power over the system bandwidth in dBm.
func (w System) N0() float64 {
	return w.NoisePSDdBm + vlib.Db(w.BandwidthMHz*1e6)
}

// TxMetric summarises the interference seen at one transmitter's
// location from every other transmitter.
type TxMetric struct {
	TxNodeID      int
	Channel       int
	FreqInGHz     float64
	BandwidthMHz  float64
	N0            float64
	InterfererIDs vlib.VectorI // sorted, strongest first
	InterfererDbm vlib.VectorF
	RoIDbm        float64 // aggregate interference
	NoiseFloorDbm float64 // aggregate interference + thermal noise
	SIRDb         float64 // SignalRefDbm over aggregate interference
}

// InterferenceMatrix is the N x N pairwise received-power matrix.
// Entry (i,j) is the power of transmitter i's signal at transmitter
// j's location in linear milliwatts; the diagonal is zero.
type InterferenceMatrix struct {
	N      int
	Linear vlib.MatrixF
}

func NewInterferenceMatrix(n int) *InterferenceMatrix {
	return &InterferenceMatrix{N: n, Linear: vlib.NewMatrixF(n, n)}
}

// DbmSafe converts linear mW to dBm, clamping at FloorDbm.
func DbmSafe(linearMw float64) float64 {
	if linearMw <= 0 {
		return FloorDbm
	}
	v := vlib.Db(linearMw)
	if v < FloorDbm {
		return FloorDbm
	}
	return v
}

// Dbm returns the matrix in dBm with FloorDbm on the diagonal and on
// any zero entry.
func (m *InterferenceMatrix) Dbm() vlib.MatrixF {
	result := vlib.NewMatrixF(m.N, m.N)
	for i := 0; i < m.N; i++ {
		for j := 0; j < m.N; j++ {
			result[i][j] = DbmSafe(m.Linear[i][j])
		}
	}
	return result
}

// AggregateMw sums the interference arriving at receiver j.
func (m *InterferenceMatrix) AggregateMw(j int) float64 {
	total := 0.0
	for i := 0; i < m.N; i++ {
		if i == j {
			continue
		}
		total += m.Linear[i][j]
	}
	return total
}

// AggregateDbm lists the per-receiver aggregate interference in dBm.
func (m *InterferenceMatrix) AggregateDbm() vlib.VectorF {
	result := vlib.NewVectorF(m.N)
	for j := 0; j < m.N; j++ {
		result[j] = DbmSafe(m.AggregateMw(j))
	}
	return result
}

// TotalMw sums every off-diagonal entry, the scalar objective of the
// aggregate-interference solvers.
func (m *InterferenceMatrix) TotalMw() float64 {
	total := 0.0
	for j := 0; j < m.N; j++ {
		total += m.AggregateMw(j)
	}
	return total
}

// MaxPairMw returns the largest single off-diagonal entry.
func (m *InterferenceMatrix) MaxPairMw() float64 {
	max := 0.0
	for i := 0; i < m.N; i++ {
		for j := 0; j < m.N; j++ {
			if i != j && m.Linear[i][j] > max {
				max = m.Linear[i][j]
			}
		}
	}
	return max
}

// Fold updates a running mean with the incremental update
// avg += (sample - avg)/k, where k is the 1-based sample index.
func (m *InterferenceMatrix) Fold(sample *InterferenceMatrix, k int) {
	for i := 0; i < m.N; i++ {
		for j := 0; j < m.N; j++ {
			m.Linear[i][j] += (sample.Linear[i][j] - m.Linear[i][j]) / float64(k)
		}
	}
}

// Clone copies the matrix.
func (m *InterferenceMatrix) Clone() *InterferenceMatrix {
	result := NewInterferenceMatrix(m.N)
	for i := 0; i < m.N; i++ {
		copy(result.Linear[i], m.Linear[i])
	}
	return result
}
