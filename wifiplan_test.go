package wifiplan

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wiless/vlib"

	"github.com/wiless/wifiplan/pathloss"
	"github.com/wiless/wifiplan/spectral"
)

func testModel(t *testing.T) *pathloss.Model {
	t.Helper()
	var setting pathloss.ModelSetting
	setting.SetDefault() // n=2.5, d0=1m, no shadowing
	model, err := pathloss.NewModel(setting)
	require.NoError(t, err)
	return model
}

func twoTxPositions() []vlib.Location3D {
	var a, b vlib.Location3D
	a.SetXY(0, 0)
	b.SetXY(10, 0)
	return []vlib.Location3D{a, b}
}

func TestEvaluateMatrixTwoTxCoChannel(t *testing.T) {
	model := testModel(t)
	sys := NewSystem() // 10 dBm

	m, err := sys.EvaluateMatrix(twoTxPositions(), vlib.VectorI{1, 1}, model, spectral.DefaultMask)
	require.NoError(t, err)

	wantLoss := model.RefLossDb + 25.0*math.Log10(10)
	wantLinear := vlib.InvDb(sys.TxPowerDbm - wantLoss)

	assert.InDelta(t, wantLinear, m.Linear[0][1], wantLinear*1e-9)
	assert.Equal(t, m.Linear[0][1], m.Linear[1][0])
	assert.Equal(t, 0.0, m.Linear[0][0])
	assert.Equal(t, 0.0, m.Linear[1][1])
}

func TestEvaluateMatrixFarChannelsUseMaskTail(t *testing.T) {
	model := testModel(t)
	sys := NewSystem()
	positions := twoTxPositions()

	tail := len(spectral.DefaultMask) - 1
	a, err := sys.EvaluateMatrix(positions, vlib.VectorI{1, 1 + tail}, model, spectral.DefaultMask)
	require.NoError(t, err)
	b, err := sys.EvaluateMatrix(positions, vlib.VectorI{1, 11}, model, spectral.DefaultMask)
	require.NoError(t, err)

	assert.Equal(t, a.Linear[0][1], b.Linear[0][1])
}

func TestEvaluateMatrixEntriesFiniteNonNegative(t *testing.T) {
	model := testModel(t)
	sys := NewSystem()

	positions := make([]vlib.Location3D, 6)
	channels := vlib.NewVectorI(6)
	for i := range positions {
		positions[i].SetXY(float64(i*13), float64((i*29)%50))
		channels[i] = (i % 11) + 1
	}

	m, err := sys.EvaluateMatrix(positions, channels, model, spectral.DefaultMask)
	require.NoError(t, err)
	for i := 0; i < m.N; i++ {
		for j := 0; j < m.N; j++ {
			if i == j {
				assert.Equal(t, 0.0, m.Linear[i][j])
				continue
			}
			assert.False(t, math.IsInf(m.Linear[i][j], 0))
			assert.False(t, math.IsNaN(m.Linear[i][j]))
			assert.True(t, m.Linear[i][j] >= 0)
		}
	}
}

func TestEvaluateMatrixLengthMismatch(t *testing.T) {
	model := testModel(t)
	sys := NewSystem()
	_, err := sys.EvaluateMatrix(twoTxPositions(), vlib.VectorI{1}, model, spectral.DefaultMask)
	assert.Error(t, err)
}

func TestEvaluateMatrixEmptyMask(t *testing.T) {
	model := testModel(t)
	sys := NewSystem()
	_, err := sys.EvaluateMatrix(twoTxPositions(), vlib.VectorI{1, 1}, model, spectral.Mask{})
	assert.Error(t, err)
}

func TestEvaluateMatrixCMMatchesLogDistance(t *testing.T) {
	model := testModel(t)
	sys := NewSystem()
	backend := pathloss.NewIndoor(model)
	channels := vlib.VectorI{1, 6}

	a, err := sys.EvaluateMatrixCM(twoTxPositions(), channels, backend, spectral.DefaultMask)
	require.NoError(t, err)
	b, err := sys.EvaluateMatrix(twoTxPositions(), channels, model, spectral.DefaultMask)
	require.NoError(t, err)

	for i := 0; i < a.N; i++ {
		for j := 0; j < a.N; j++ {
			assert.InDelta(t, b.Linear[i][j], a.Linear[i][j], 1e-15)
		}
	}
}

func TestEvaluateMatrixCMUnsupportedFrequency(t *testing.T) {
	model := testModel(t)
	sys := NewSystem()
	sys.FrequencyGHz = 60.0 // mmWave, outside the backend's bands

	_, err := sys.EvaluateMatrixCM(twoTxPositions(), vlib.VectorI{1, 6}, pathloss.NewIndoor(model), spectral.DefaultMask)
	assert.Error(t, err)
}

func TestDbmSafe(t *testing.T) {
	assert.Equal(t, FloorDbm, DbmSafe(0))
	assert.Equal(t, FloorDbm, DbmSafe(-1))
	assert.InDelta(t, -30.0, DbmSafe(1e-3), 1e-12)
}

func TestEvaluateTxMetrics(t *testing.T) {
	model := testModel(t)
	sys := NewSystem()
	channels := vlib.VectorI{1, 6}

	m, err := sys.EvaluateMatrix(twoTxPositions(), channels, model, spectral.DefaultMask)
	require.NoError(t, err)

	metrics := sys.EvaluateTxMetrics(m, channels)
	require.Len(t, metrics, 2)

	met := metrics[0]
	assert.Equal(t, 0, met.TxNodeID)
	assert.Equal(t, 1, met.Channel)
	assert.Equal(t, vlib.VectorI{1}, met.InterfererIDs)
	assert.InDelta(t, DbmSafe(m.Linear[1][0]), met.RoIDbm, 1e-9)
	assert.InDelta(t, sys.SignalRefDbm-met.RoIDbm, met.SIRDb, 1e-12)
	// thermal noise can only raise the floor
	assert.True(t, met.NoiseFloorDbm >= met.RoIDbm)
}

func TestFoldMatchesBatchMean(t *testing.T) {
	avg := NewInterferenceMatrix(2)
	samples := []float64{1, 4, 10}
	for k, v := range samples {
		s := NewInterferenceMatrix(2)
		s.Linear[0][1] = v
		avg.Fold(s, k+1)
	}
	assert.InDelta(t, 5.0, avg.Linear[0][1], 1e-12)
	assert.Equal(t, 0.0, avg.Linear[0][0])
	assert.Equal(t, 0.0, avg.Linear[1][0])
}

func TestAggregateAndTotal(t *testing.T) {
	m := NewInterferenceMatrix(3)
	m.Linear[0][1] = 1
	m.Linear[1][0] = 1
	m.Linear[0][2] = 2
	m.Linear[2][0] = 2
	m.Linear[1][2] = 4
	m.Linear[2][1] = 4

	assert.Equal(t, 3.0, m.AggregateMw(0))
	assert.Equal(t, 5.0, m.AggregateMw(1))
	assert.Equal(t, 6.0, m.AggregateMw(2))
	assert.Equal(t, 14.0, m.TotalMw())
	assert.Equal(t, 4.0, m.MaxPairMw())
}
