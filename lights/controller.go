package lights

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/avolkov/lightshal/internal/logging"
	"github.com/avolkov/lightshal/internal/props"
	"github.com/avolkov/lightshal/internal/sysfs"
)

var logger = logging.New("lights")

// BarLEDProperty selects the combined-channel policy, read fresh on
// every shared render: 0 disables the bar register, 1 mirrors the RGB
// triple into it, 2 forces both the bar and the discrete channels dark.
const BarLEDProperty = "sys.lights.barled"

// ErrUnknownLight is returned by Open for unrecognized identifiers.
var ErrUnknownLight = errors.New("unknown light identifier")

// ErrClosed is returned by Set on a closed Device.
var ErrClosed = errors.New("light device is closed")

// Controller owns the arbitration state for all logical light sources
// and serializes their writes to the shared LED hardware. Construct
// one per process and hand out Devices from it.
type Controller struct {
	hw    sysfs.Writer
	props props.Store

	// The backlight register is independent hardware; its writes never
	// read battery or notification state and take their own lock.
	blMu sync.Mutex

	// mu covers slot updates, arbitration and the resulting register
	// writes as one critical section, so two concurrent set operations
	// can never interleave their channel writes.
	mu           sync.Mutex
	battery      State
	notification State
	attentionMS  int
}

// NewController creates a Controller writing through hw and reading
// policy values from store.
func NewController(hw sysfs.Writer, store props.Store) *Controller {
	return &Controller{hw: hw, props: store}
}

var (
	defaultOnce sync.Once
	defaultCtrl *Controller
)

// Default returns the process-wide Controller over the real sysfs
// register files, built once on first use. It reads no property file;
// policies keep their defaults.
func Default() *Controller {
	defaultOnce.Do(func() {
		defaultCtrl = NewController(sysfs.NewWriter(sysfs.DefaultPaths()), props.NewStatic(nil))
	})
	return defaultCtrl
}

// Open returns a Device handle for one logical light source.
// Unrecognized identifiers fail with ErrUnknownLight.
func (c *Controller) Open(id ID) (*Device, error) {
	switch id {
	case Backlight, Battery, Notification, Attention:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownLight, id)
	}
	logger.With(zap.String("light", string(id))).Debug("light device opened")
	return &Device{ctrl: c, id: id}, nil
}

// Device is a handle to one logical light source.
type Device struct {
	ctrl   *Controller
	id     ID
	closed atomic.Bool
}

// ID returns the source this device was opened for.
func (d *Device) ID() ID {
	return d.id
}

// Set applies a new desired state to the device's source. For shared
// sources this re-runs arbitration and rewrites the winning color; the
// returned error carries any hardware write failures from the render.
func (d *Device) Set(state State) error {
	if d.closed.Load() {
		return ErrClosed
	}
	switch d.id {
	case Backlight:
		return d.ctrl.setBacklight(state)
	case Battery:
		return d.ctrl.setBattery(state)
	case Notification:
		return d.ctrl.setNotification(state)
	case Attention:
		return d.ctrl.setAttention(state)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownLight, d.id)
	}
}

// Close releases the handle. Further Set calls fail with ErrClosed.
// Controller state set through the handle is left as-is.
func (d *Device) Close() error {
	d.closed.Store(true)
	return nil
}

func (c *Controller) setBacklight(state State) error {
	b := brightness(state.Color)
	c.blMu.Lock()
	defer c.blMu.Unlock()
	return c.hw.Write(sysfs.Backlight, b)
}

func (c *Controller) setBattery(state State) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.battery = state
	return c.renderShared()
}

func (c *Controller) setNotification(state State) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notification = state
	return c.renderShared()
}

// setAttention records the requested attention duration and re-renders.
// The recorded value never feeds back into arbitration or the register
// writes; attention has no observable hardware effect.
func (c *Controller) setAttention(state State) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch state.Flash {
	case FlashHardware:
		c.attentionMS = state.FlashOnMS
	case FlashNone:
		c.attentionMS = 0
	}
	return c.renderShared()
}

// renderShared evaluates the shared sources in priority order, battery
// first, and writes the winner. When nothing is lit the notification
// slot still wins so its all-zero color turns the hardware off.
// Caller holds c.mu.
func (c *Controller) renderShared() error {
	winner := Notification
	state := c.notification
	if c.battery.lit() {
		winner = Battery
		state = c.battery
	}
	logger.With(
		zap.String("winner", string(winner)),
		zap.Uint32("color", state.Color),
		zap.Stringer("flash", state.Flash),
	).Debug("rendering shared LED")
	return c.writeShared(state)
}

// writeShared converts state to register values and issues the writes.
// A failed channel write is collected, not fatal; the remaining
// channels are still written. Caller holds c.mu.
func (c *Controller) writeShared(state State) error {
	barled := c.props.GetInt(BarLEDProperty, 1)

	var onMS, offMS int
	if state.Flash == FlashTimed {
		onMS, offMS = state.FlashOnMS, state.FlashOffMS
	}

	red, green, blue := state.channels()
	var bar int
	switch barled {
	case 1:
		bar = red<<16 | green<<8 | blue
	case 2:
		red, green, blue, bar = 0, 0, 0, 0
	default:
		bar = 0
	}

	if onMS > 0 && offMS > 0 {
		// Hardware blink only exists on the red channel.
		if red != 0 {
			return c.hw.Write(sysfs.RedBlink, 1)
		}
		return nil
	}

	var err error
	err = multierr.Append(err, c.hw.Write(sysfs.Red, red))
	err = multierr.Append(err, c.hw.Write(sysfs.Green, green))
	err = multierr.Append(err, c.hw.Write(sysfs.Blue, blue))
	err = multierr.Append(err, c.hw.Write(sysfs.Bar, bar))
	return err
}
