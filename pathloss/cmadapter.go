package pathloss

import (
	log "github.com/sirupsen/logrus"
	CM "github.com/wiless/channelmodel"
	"github.com/wiless/vlib"
)

// Indoor adapts Model to the channelmodel PLModel interface, so the
// matrix builder can run through a 38.901-style backend. The whole
// region is treated as one open room: every link is LOS and the
// indoor-depth argument adds O2IPerMeterDb per meter.
type Indoor struct {
	model         *Model
	O2IPerMeterDb float64
}

var _ CM.PLModel = (*Indoor)(nil)

func NewIndoor(model *Model) *Indoor {
	return &Indoor{model: model}
}

func (c *Indoor) Init(fGHz float64) {
	c.model.SetFGHz(fGHz)
	if err := c.model.Init(); err != nil {
		log.Panicln("pathloss: Indoor Init ", err)
	}
}

// IsSupported accepts the 2.4, 5 and 6 GHz unlicensed bands.
func (c *Indoor) IsSupported(fGHz float64) bool {
	return fGHz > 0.4 && fGHz < 7.125
}

func (c *Indoor) PLbetween(node1, node2 vlib.Location3D) (plDb float64, isNLOS bool, err error) {
	return c.model.LossInDb2D(node1, node2), false, nil
}

func (c *Indoor) PLbetweenIndoor(node1, node2 vlib.Location3D, dIn float64) (plDb float64, isLOS bool, err error) {
	plDb = c.model.LossInDb2D(node1, node2) + c.O2IPerMeterDb*dIn
	return plDb, true, nil
}

func (c *Indoor) IsLOS(dist float64) bool { return true }

func (c *Indoor) PLnlos(dist float64) (plDb float64, e error) {
	return c.model.LossInDb(dist), nil
}

func (c *Indoor) PLlos(dist float64) (plDb float64, e error) {
	return c.model.LossInDb(dist), nil
}

func (c *Indoor) PL(dist float64) (plDb float64, isNLOS bool, err error) {
	return c.model.LossInDb(dist), false, nil
}

func (c *Indoor) O2ILossDb(fGHz float64, d2Din float64) (o2ilossdB float64) {
	return c.O2IPerMeterDb * d2Din
}

func (c *Indoor) O2ICarLossDb() float64 { return 0 }

func (c *Indoor) Env() string { return "InH" }

func (c *Indoor) IsShadowLoss() bool { return c.model.ShadowSigmaDb > 0 }
