// Package deployment drops access-point transmitters inside a
// rectangular coverage region.
package deployment

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand"

	ms "github.com/mitchellh/mapstructure"
	log "github.com/sirupsen/logrus"

	"github.com/wiless/vlib"
)

// Node is a single fixed transmitter. Location is immutable after the
// drop unless the position optimizer moves it; Channel is the decision
// variable the solver mutates.
type Node struct {
	ID         int
	Location   vlib.Location3D
	Channel    int
	TxPowerDBm float64
	Active     bool
}

// DropSetting configures a rectangular room drop.
type DropSetting struct {
	LengthX       float64 // room length in meters
	LengthY       float64 // room width in meters
	NCount        int     // number of transmitters
	MinSeparation float64 // minimum pairwise distance, 0 disables
	TxPowerDBm    float64
	isInitialized bool
}

func NewDropSetting() *DropSetting {
	result := new(DropSetting)
	result.LengthX = 200
	result.LengthY = 200
	result.NCount = 15
	result.MinSeparation = 20
	result.TxPowerDBm = 10
	return result
}

func (d *DropSetting) Init() error {
	if d.LengthX <= 0 || d.LengthY <= 0 {
		return fmt.Errorf("deployment: region %vx%v must be positive", d.LengthX, d.LengthY)
	}
	if d.NCount <= 0 {
		return fmt.Errorf("deployment: node count %d <= 0", d.NCount)
	}
	if d.MinSeparation < 0 {
		return fmt.Errorf("deployment: min separation %v < 0", d.MinSeparation)
	}
	d.isInitialized = true
	return nil
}

// DropSystem owns the dropped nodes. All randomness flows through the
// injected source.
type DropSystem struct {
	*DropSetting
	Nodes []Node
	rnd   *rand.Rand
}

func NewDropSystem(setting *DropSetting, rnd *rand.Rand) (*DropSystem, error) {
	if setting == nil {
		setting = NewDropSetting()
	}
	if !setting.isInitialized {
		if err := setting.Init(); err != nil {
			return nil, err
		}
	}
	d := &DropSystem{DropSetting: setting, rnd: rnd}
	d.Nodes = make([]Node, setting.NCount)
	for i := range d.Nodes {
		d.Nodes[i] = Node{ID: i, TxPowerDBm: setting.TxPowerDBm, Channel: 1, Active: true}
	}
	return d, nil
}

func (d *DropSystem) SetRandSource(rnd *rand.Rand) {
	d.rnd = rnd
}

// RandPointRect draws a uniform point inside the LxW rectangle anchored
// at the origin.
func RandPointRect(rnd *rand.Rand, lengthX, lengthY float64) complex128 {
	return complex(rnd.Float64()*lengthX, rnd.Float64()*lengthY)
}

// Drop places every node uniformly at random inside the region,
// re-drawing positions that land within MinSeparation of an already
// placed node. Fails when the region cannot host NCount nodes at the
// configured separation within the retry budget.
func (d *DropSystem) Drop() error {
	const maxAttempts = 1000
	if d.rnd == nil {
		return fmt.Errorf("deployment: no random source set, call SetRandSource first")
	}
	placed := make([]vlib.Location3D, 0, d.NCount)
	for i := 0; i < d.NCount; i++ {
		ok := false
		for attempt := 0; attempt < maxAttempts; attempt++ {
			var loc vlib.Location3D
			loc.FromCmplx(RandPointRect(d.rnd, d.LengthX, d.LengthY))
			if d.farEnough(loc, placed) {
				placed = append(placed, loc)
				ok = true
				break
			}
		}
		if !ok {
			return fmt.Errorf("deployment: could not place node %d of %d with separation %vm in %vx%vm",
				i, d.NCount, d.MinSeparation, d.LengthX, d.LengthY)
		}
	}
	for i := range d.Nodes {
		d.Nodes[i].Location = placed[i]
	}
	log.Debugf("deployment: dropped %d nodes in %vx%vm", d.NCount, d.LengthX, d.LengthY)
	return nil
}

func (d *DropSystem) farEnough(loc vlib.Location3D, placed []vlib.Location3D) bool {
	if d.MinSeparation == 0 {
		return true
	}
	for _, p := range placed {
		if loc.Distance2DFrom(p) < d.MinSeparation {
			return false
		}
	}
	return true
}

// ClipToRegion clamps a location into the coverage rectangle.
func (d *DropSetting) ClipToRegion(loc vlib.Location3D) vlib.Location3D {
	if loc.X < 0 {
		loc.X = 0
	}
	if loc.X > d.LengthX {
		loc.X = d.LengthX
	}
	if loc.Y < 0 {
		loc.Y = 0
	}
	if loc.Y > d.LengthY {
		loc.Y = d.LengthY
	}
	return loc
}

// Locations3D lists the node positions in ID order.
func (d *DropSystem) Locations3D() []vlib.Location3D {
	result := make([]vlib.Location3D, len(d.Nodes))
	for i, n := range d.Nodes {
		result[i] = n.Location
	}
	return result
}

// Locations lists the node positions as complex x+iy.
func (d *DropSystem) Locations() vlib.VectorC {
	result := vlib.NewVectorC(len(d.Nodes))
	for i, n := range d.Nodes {
		result[i] = n.Location.Cmplx()
	}
	return result
}

// SetAllNodeLocation overwrites every node position.
func (d *DropSystem) SetAllNodeLocation(locations vlib.VectorC) error {
	if len(locations) != len(d.Nodes) {
		return fmt.Errorf("deployment: %d locations for %d nodes", len(locations), len(d.Nodes))
	}
	for i := range d.Nodes {
		d.Nodes[i].Location.SetXY(real(locations[i]), imag(locations[i]))
	}
	return nil
}

// Channels lists the per-node channel assignment in ID order.
func (d *DropSystem) Channels() vlib.VectorI {
	result := vlib.NewVectorI(len(d.Nodes))
	for i, n := range d.Nodes {
		result[i] = n.Channel
	}
	return result
}

// SetChannels overwrites the per-node channel assignment.
func (d *DropSystem) SetChannels(channels vlib.VectorI) error {
	if len(channels) != len(d.Nodes) {
		return fmt.Errorf("deployment: %d channels for %d nodes", len(channels), len(d.Nodes))
	}
	for i := range d.Nodes {
		d.Nodes[i].Channel = channels[i]
	}
	return nil
}

func (d *DropSystem) MarshalJSON() ([]byte, error) {
	bfr := bytes.NewBuffer(nil)
	enc := json.NewEncoder(bfr)
	bfr.WriteString(`{"DropSetting":`)
	if err := enc.Encode(d.DropSetting); err != nil {
		return nil, err
	}
	bfr.WriteString(`,"Nodes":`)
	if err := enc.Encode(d.Nodes); err != nil {
		return nil, err
	}
	bfr.WriteString("}")
	return bfr.Bytes(), nil
}

func (d *DropSystem) UnmarshalJSON(jsondata []byte) error {
	var customobject map[string]interface{}
	if err := json.Unmarshal(jsondata, &customobject); err != nil {
		return err
	}
	d.DropSetting = NewDropSetting()
	if err := ms.Decode(customobject["DropSetting"], d.DropSetting); err != nil {
		return err
	}
	d.DropSetting.isInitialized = true
	var nodes []Node
	if err := ms.Decode(customobject["Nodes"], &nodes); err != nil {
		return err
	}
	d.Nodes = nodes
	return nil
}
