// Package lights arbitrates control of the shared notification LED
// cluster and the LCD backlight among the logical light sources a host
// exposes: backlight, battery, notification and attention. All sources
// except the backlight render to the same physical LEDs, so a fixed
// priority policy decides which one is visible at any moment.
package lights

import "fmt"

// FlashMode selects how a light state wants the LED driven over time.
type FlashMode int

const (
	// FlashNone renders the color steadily.
	FlashNone FlashMode = iota
	// FlashTimed blinks with the on/off intervals carried in the state.
	FlashTimed
	// FlashHardware delegates blinking to the LED controller.
	FlashHardware
)

func (m FlashMode) String() string {
	switch m {
	case FlashNone:
		return "none"
	case FlashTimed:
		return "timed"
	case FlashHardware:
		return "hardware"
	default:
		return "unknown"
	}
}

// ParseFlashMode decodes the wire names used by control surfaces.
// The empty string means FlashNone.
func ParseFlashMode(s string) (FlashMode, error) {
	switch s {
	case "", "none":
		return FlashNone, nil
	case "timed":
		return FlashTimed, nil
	case "hardware":
		return FlashHardware, nil
	default:
		return FlashNone, fmt.Errorf("unknown flash mode %q", s)
	}
}

// State is the desired visual state for one logical light source.
// Color is packed 0xAARRGGBB; the alpha byte is accepted and ignored.
type State struct {
	Color      uint32
	Flash      FlashMode
	FlashOnMS  int
	FlashOffMS int
}

// lit reports whether the 24-bit RGB portion is non-zero. An unlit
// state still gets rendered when it wins arbitration, so the hardware
// is explicitly turned off rather than left stale.
func (s State) lit() bool {
	return s.Color&0x00FFFFFF != 0
}

func (s State) channels() (red, green, blue int) {
	return int(s.Color>>16) & 0xFF, int(s.Color>>8) & 0xFF, int(s.Color) & 0xFF
}

// ID names one logical light source.
type ID string

const (
	Backlight    ID = "backlight"
	Battery      ID = "battery"
	Notification ID = "notification"
	Attention    ID = "attention"
)

// brightness converts a packed color to a perceptual luminance in
// 0..255 using the classic 77/150/29 channel weights.
func brightness(color uint32) int {
	c := color & 0x00FFFFFF
	return int((77*((c>>16)&0xFF) + 150*((c>>8)&0xFF) + 29*(c&0xFF)) >> 8)
}
