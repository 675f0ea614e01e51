// Spectral overlap model for adjacent-channel interference
package spectral

import (
	"errors"
	"fmt"

	"github.com/wiless/vlib"
)

// ErrEmptyMask is returned when an overlap model is created with no
// attenuation entries.
var ErrEmptyMask = errors.New("spectral: empty mask")

// Mask maps channel-separation magnitude to the extra attenuation in dB
// suffered by the interfering signal. Index 0 is co-channel. The last
// entry applies to every separation beyond the table (clamped tail).
type Mask vlib.VectorF

// DefaultMask is the 802.11b/g adjacent-channel rejection table in dB.
var DefaultMask = Mask{0, 28, 35, 45, 50, 60}

func (m Mask) Validate() error {
	if len(m) == 0 {
		return ErrEmptyMask
	}
	for i, v := range m {
		if v < 0 {
			return fmt.Errorf("spectral: mask[%d]=%v is negative", i, v)
		}
	}
	return nil
}

// OverlapDb returns the attenuation for a pair of channel indices.
// Symmetric in its arguments; saturates at the last mask entry.
func (m Mask) OverlapDb(chanA, chanB int) (float64, error) {
	if len(m) == 0 {
		return 0, ErrEmptyMask
	}
	delta := chanA - chanB
	if delta < 0 {
		delta = -delta
	}
	if delta >= len(m) {
		delta = len(m) - 1
	}
	return m[delta], nil
}
