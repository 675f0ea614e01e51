package pathloss

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModel(t *testing.T, exponent, d0, sigma float64) *Model {
	t.Helper()
	var setting ModelSetting
	setting.SetDefault()
	setting.Exponent = exponent
	setting.RefDistance = d0
	setting.ShadowSigmaDb = sigma
	require.NoError(t, setting.Init())
	model, err := NewModel(setting)
	require.NoError(t, err)
	return model
}

func TestInitDerivesRefLoss(t *testing.T) {
	var setting ModelSetting
	setting.SetDefault()

	lambda := SpeedOfLight / setting.FreqHz
	want := 20.0 * math.Log10(4.0*math.Pi*setting.RefDistance/lambda)
	assert.InDelta(t, want, setting.RefLossDb, 1e-12)
}

func TestInitRejectsBadParameters(t *testing.T) {
	cases := []struct {
		name string
		mod  func(*ModelSetting)
	}{
		{"zero exponent", func(m *ModelSetting) { m.Exponent = 0 }},
		{"negative exponent", func(m *ModelSetting) { m.Exponent = -2 }},
		{"zero reference distance", func(m *ModelSetting) { m.RefDistance = 0 }},
		{"negative shadow sigma", func(m *ModelSetting) { m.ShadowSigmaDb = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var setting ModelSetting
			setting.SetDefault()
			tc.mod(&setting)
			err := setting.Init()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidParameter))
		})
	}
}

func TestLossAtReferenceDistance(t *testing.T) {
	model := newTestModel(t, 2.5, 1.0, 0)
	assert.InDelta(t, model.RefLossDb, model.LossInDb(1.0), 1e-12)
	// below d0 the distance is floored at d0
	assert.InDelta(t, model.RefLossDb, model.LossInDb(0.2), 1e-12)
	assert.InDelta(t, model.RefLossDb, model.LossInDb(0), 1e-12)
}

func TestLossMonotoneInDistance(t *testing.T) {
	model := newTestModel(t, 2.5, 1.0, 0)
	prev := model.LossInDb(1.0)
	for d := 2.0; d <= 500; d += 7.5 {
		loss := model.LossInDb(d)
		assert.GreaterOrEqual(t, loss, prev, "loss decreased at d=%v", d)
		prev = loss
	}
}

func TestLogDistanceSlope(t *testing.T) {
	model := newTestModel(t, 2.5, 1.0, 0)
	// one decade of distance adds 10*n dB
	assert.InDelta(t, 25.0, model.LossInDb(10)-model.LossInDb(1), 1e-9)
}

func TestShadowingReproducibleUnderSeed(t *testing.T) {
	a := newTestModel(t, 2.5, 1.0, 6.0).SetRandSource(rand.New(rand.NewSource(42)))
	b := newTestModel(t, 2.5, 1.0, 6.0).SetRandSource(rand.New(rand.NewSource(42)))
	for i := 0; i < 10; i++ {
		assert.Equal(t, a.LossInDb(50), b.LossInDb(50))
	}
}

func TestNoShadowWithoutSource(t *testing.T) {
	model := newTestModel(t, 2.5, 1.0, 6.0)
	first := model.LossInDb(50)
	assert.Equal(t, first, model.LossInDb(50))
}
