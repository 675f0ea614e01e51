package sim

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wiless/vlib"

	"github.com/wiless/wifiplan"
	"github.com/wiless/wifiplan/assign"
	"github.com/wiless/wifiplan/pathloss"
	"github.com/wiless/wifiplan/spectral"
)

func testOracle(t *testing.T, n int) *assign.Oracle {
	t.Helper()
	var setting pathloss.ModelSetting
	setting.SetDefault()
	model, err := pathloss.NewModel(setting)
	require.NoError(t, err)

	positions := make([]vlib.Location3D, n)
	for i := range positions {
		positions[i].SetXY(float64(i*17%60), float64(i*31%60))
	}
	return &assign.Oracle{
		Sys:       wifiplan.NewSystem(),
		Model:     model,
		Mask:      spectral.DefaultMask,
		Positions: positions,
	}
}

func TestRunningAverageEqualsBatchMean(t *testing.T) {
	const iterations = 7
	oracle := testOracle(t, 4)

	eval, err := NewEvaluator(oracle, 11, iterations, rand.New(rand.NewSource(21)))
	require.NoError(t, err)
	result, err := eval.Run()
	require.NoError(t, err)

	// replay the same draw sequence and average the matrices in batch
	rnd := rand.New(rand.NewSource(21))
	batch := wifiplan.NewInterferenceMatrix(4)
	for k := 0; k < iterations; k++ {
		channels := assign.RandomChannels(rnd, 4, 11)
		m, err := oracle.Matrix(oracle.Positions, channels)
		require.NoError(t, err)
		for i := 0; i < 4; i++ {
			for j := 0; j < 4; j++ {
				batch.Linear[i][j] += m.Linear[i][j] / iterations
			}
		}
	}

	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			assert.InDelta(t, batch.Linear[i][j], result.AverageLinear.Linear[i][j], 1e-12)
		}
	}
}

func TestRunSeriesAndLastAssignment(t *testing.T) {
	oracle := testOracle(t, 3)
	eval, err := NewEvaluator(oracle, 11, 5, rand.New(rand.NewSource(2)))
	require.NoError(t, err)
	result, err := eval.Run()
	require.NoError(t, err)

	assert.Equal(t, 5, result.Iterations)
	assert.Equal(t, 5, len(result.Series))
	require.Len(t, result.LastChannels, 3)
	for _, ch := range result.LastChannels {
		assert.True(t, ch >= 1 && ch <= 11)
	}
	assert.Equal(t, result.Series[4], result.Stats.LastDbm)
}

func TestRunDeterministicUnderSeed(t *testing.T) {
	a, err := NewEvaluator(testOracle(t, 3), 11, 4, rand.New(rand.NewSource(77)))
	require.NoError(t, err)
	b, err := NewEvaluator(testOracle(t, 3), 11, 4, rand.New(rand.NewSource(77)))
	require.NoError(t, err)

	ra, err := a.Run()
	require.NoError(t, err)
	rb, err := b.Run()
	require.NoError(t, err)

	assert.Equal(t, ra.Series, rb.Series)
	assert.Equal(t, ra.LastChannels, rb.LastChannels)
}

func TestNewEvaluatorValidation(t *testing.T) {
	oracle := testOracle(t, 2)
	_, err := NewEvaluator(oracle, 0, 5, rand.New(rand.NewSource(1)))
	assert.Error(t, err)
	_, err = NewEvaluator(oracle, 11, 0, rand.New(rand.NewSource(1)))
	assert.Error(t, err)
	_, err = NewEvaluator(oracle, 11, 5, nil)
	assert.Error(t, err)
}
