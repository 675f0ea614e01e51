package spectral

import (
	"fmt"

	"github.com/wiless/vlib"
)

// Channels describes a plan of equally spaced, fixed-width channels.
// Channel indices are 1-based, as on the 2.4GHz ISM band.
type Channels struct {
	BaseFreqMHz float64
	NumChannels int
	WidthMHz    float64
	SpacingMHz  float64
}

// NewChannels returns the 11-channel 2.4GHz plan: base 2402 MHz,
// 20 MHz wide channels every 5 MHz.
func NewChannels() Channels {
	return Channels{BaseFreqMHz: 2402, NumChannels: 11, WidthMHz: 20, SpacingMHz: 5}
}

func (c Channels) Validate() error {
	if c.NumChannels <= 0 {
		return fmt.Errorf("spectral: channel count %d <= 0", c.NumChannels)
	}
	if c.WidthMHz <= 0 || c.SpacingMHz <= 0 {
		return fmt.Errorf("spectral: width %v / spacing %v must be positive", c.WidthMHz, c.SpacingMHz)
	}
	return nil
}

// Contains reports whether ch is a valid 1-based channel index.
func (c Channels) Contains(ch int) bool {
	return ch >= 1 && ch <= c.NumChannels
}

// BaseMHz returns the lower band edge of the 1-based channel index.
func (c Channels) BaseMHz(index int) float64 {
	return c.BaseFreqMHz + c.SpacingMHz*float64(index-1)
}

// CenterMHz returns the center frequency of the 1-based channel index.
func (c Channels) CenterMHz(index int) float64 {
	return c.BaseMHz(index) + c.WidthMHz/2
}

// Centers lists the center frequencies of all channels.
func (c Channels) Centers() vlib.VectorF {
	result := vlib.NewVectorF(c.NumChannels)
	for i := 1; i <= c.NumChannels; i++ {
		result[i-1] = c.CenterMHz(i)
	}
	return result
}

// OverlapMHz returns the width of the spectral overlap of two channels,
// 0 when the channels are fully disjoint.
func (c Channels) OverlapMHz(chanA, chanB int) float64 {
	first := c.BaseMHz(chanA)
	second := c.BaseMHz(chanB)
	if second < first {
		first, second = second, first
	}
	overlap := first + c.WidthMHz - second
	if overlap < 0 {
		return 0
	}
	return overlap
}
