// Log-distance and free-space path-loss models for 2D indoor deployments
package pathloss

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"
)

// ErrInvalidParameter is returned when a model is initialized with a
// non-positive exponent or reference distance.
var ErrInvalidParameter = errors.New("pathloss: invalid parameter")

// SpeedOfLight in m/s, used to derive the carrier wavelength
const SpeedOfLight = 3.0e8

type PathLossType int

const (
	LogDistance PathLossType = iota
	FreeSpace
)

var PathLossTypes = [...]string{
	"LogDistance",
	"FreeSpace",
}

func (p PathLossType) String() string {
	if int(p) >= len(PathLossTypes) {
		return "Unknown-PathLossType"
	}
	return PathLossTypes[p]
}

// ModelSetting holds the parameters of the propagation model. Call
// Init() after setting the fields; Init derives RefLossDb from the
// carrier frequency and the reference distance.
type ModelSetting struct {
	Type          PathLossType
	FreqHz        float64
	Exponent      float64 // path-loss exponent n
	RefDistance   float64 // d0 in meters, also the clamping distance
	RefLossDb     float64 // PL0 = 20log10(4*pi*d0/lambda), set by Init()
	ShadowSigmaDb float64 // 0 => deterministic model
	freqGHz       float64
	isInitialized bool
}

func (m *ModelSetting) SetFGHz(fGHz float64) *ModelSetting {
	m.FreqHz = fGHz * 1e9
	m.freqGHz = fGHz
	return m
}

func (m *ModelSetting) FGHz() (fGHz float64) {
	if m.freqGHz == 0 {
		m.freqGHz = m.FreqHz / 1.0e9
	}
	return m.freqGHz
}

// SetDefault configures a 2.4GHz indoor model, n=2.5, d0=1m, no shadowing
func (m *ModelSetting) SetDefault() {
	m.Type = LogDistance
	m.FreqHz = 2.402e9
	m.Exponent = 2.5
	m.RefDistance = 1.0
	m.ShadowSigmaDb = 0
	if err := m.Init(); err != nil {
		log.Panicln("pathloss: SetDefault ", err)
	}
}

// Init validates the settings and derives the reference loss PL0.
func (m *ModelSetting) Init() error {
	if m.Exponent <= 0 {
		return fmt.Errorf("%w: exponent %v <= 0", ErrInvalidParameter, m.Exponent)
	}
	if m.RefDistance <= 0 {
		return fmt.Errorf("%w: reference distance %v <= 0", ErrInvalidParameter, m.RefDistance)
	}
	if m.FreqHz <= 0 {
		return fmt.Errorf("%w: frequency %v <= 0", ErrInvalidParameter, m.FreqHz)
	}
	if m.ShadowSigmaDb < 0 {
		return fmt.Errorf("%w: shadow sigma %v < 0", ErrInvalidParameter, m.ShadowSigmaDb)
	}
	lambda := SpeedOfLight / m.FreqHz
	m.RefLossDb = 20.0 * math.Log10(4.0*math.Pi*m.RefDistance/lambda)
	m.isInitialized = true
	return nil
}

func (m ModelSetting) IsInitialized() bool {
	return m.isInitialized
}

func (s *ModelSetting) Set(str string) {
	err := json.Unmarshal([]byte(str), s)
	if err != nil {
		log.Print("Error ", err)
	}
}

func NewModelSetting() *ModelSetting {
	result := new(ModelSetting)
	result.SetDefault()
	return result
}
