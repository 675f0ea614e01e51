package pathloss

import (
	"math"
	"math/rand"

	"github.com/wiless/vlib"
)

// Model evaluates the configured path-loss model between 2D positions.
// Shadowing draws, when enabled, come from the injected random source
// so a run is reproducible given a seed; with no source set the model
// is strictly deterministic even if ShadowSigmaDb > 0.
type Model struct {
	ModelSetting
	rnd *rand.Rand
}

func NewModel(setting ModelSetting) (*Model, error) {
	if !setting.IsInitialized() {
		if err := setting.Init(); err != nil {
			return nil, err
		}
	}
	return &Model{ModelSetting: setting}, nil
}

// SetRandSource injects the entropy source used for shadowing draws.
func (p *Model) SetRandSource(rnd *rand.Rand) *Model {
	p.rnd = rnd
	return p
}

// LossInDb returns the path loss over the given distance in meters.
// Distances below RefDistance are floored at RefDistance, so the loss
// never drops below RefLossDb and d=0 is safe.
func (p *Model) LossInDb(distance float64) float64 {
	if distance < p.RefDistance {
		distance = p.RefDistance
	}
	var result float64
	switch p.Type {
	case LogDistance:
		// PL(d) = PL0 + 10 n log10(d/d0)
		result = p.RefLossDb + 10.0*p.Exponent*math.Log10(distance/p.RefDistance)
	case FreeSpace:
		lambda := SpeedOfLight / p.FreqHz
		result = 20.0 * math.Log10(4.0*math.Pi*distance/lambda)
	default:
		return p.RefLossDb
	}
	return result + p.shadowDb()
}

// LossInDb2D evaluates the model over the ground distance between two nodes.
func (p *Model) LossInDb2D(src, dest vlib.Location3D) float64 {
	return p.LossInDb(src.Distance2DFrom(dest))
}

// AllLossInDbBetween3D evaluates the loss from src to every location in dest.
func (p *Model) AllLossInDbBetween3D(src vlib.Location3D, dest []vlib.Location3D) vlib.VectorF {
	result := vlib.NewVectorF(len(dest))
	for i := 0; i < len(dest); i++ {
		result[i] = p.LossInDb(src.Distance2DFrom(dest[i]))
	}
	return result
}

func (p *Model) shadowDb() float64 {
	if p.ShadowSigmaDb == 0 || p.rnd == nil {
		return 0
	}
	return p.rnd.NormFloat64() * p.ShadowSigmaDb
}
