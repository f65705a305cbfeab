// Package sysfs writes LED register values through the kernel's
// /sys/class/leds file interface. Each register is a single file that
// accepts an ASCII decimal value terminated by a newline.
package sysfs

import (
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/avolkov/lightshal/internal/logging"
)

var logger = logging.New("sysfs")

var (
	writesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lightshal_register_writes_total",
		Help: "Number of LED register write attempts.",
	}, []string{"register"})

	writeFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lightshal_register_write_failures_total",
		Help: "Number of failed LED register writes.",
	}, []string{"register"})
)

// Register identifies one hardware LED register file.
type Register int

const (
	Backlight Register = iota
	Bar
	Red
	Green
	Blue
	RedBlink
)

func (r Register) String() string {
	switch r {
	case Backlight:
		return "backlight"
	case Bar:
		return "bar"
	case Red:
		return "red"
	case Green:
		return "green"
	case Blue:
		return "blue"
	case RedBlink:
		return "red_blink"
	default:
		return fmt.Sprintf("register(%d)", int(r))
	}
}

// Writer is the hardware write collaborator. Writes are one-shot and
// best effort; implementations never retry.
type Writer interface {
	Write(reg Register, value int) error
}

// DefaultPaths returns the register files of the lm3533-backed LED
// cluster this module was written for.
func DefaultPaths() map[Register]string {
	return map[Register]string{
		Backlight: "/sys/class/leds/lcd-backlight/brightness",
		Bar:       "/sys/class/leds/lm3533-light-sns/rgb_brightness",
		Red:       "/sys/class/leds/red/brightness",
		Green:     "/sys/class/leds/green/brightness",
		Blue:      "/sys/class/leds/notification/brightness",
		RedBlink:  "/sys/class/leds/red/blink",
	}
}

// LEDWriter writes register values to sysfs files. A failing register
// is logged once, then only counted, so a permanently missing file
// cannot flood the log during notification traffic.
type LEDWriter struct {
	paths map[Register]string

	mu     sync.Mutex
	warned map[Register]bool
}

// NewWriter creates an LEDWriter over the given register files.
func NewWriter(paths map[Register]string) *LEDWriter {
	return &LEDWriter{
		paths:  paths,
		warned: make(map[Register]bool),
	}
}

// Write opens the register file, writes the value as ASCII decimal plus
// newline, and closes it.
func (w *LEDWriter) Write(reg Register, value int) error {
	writesTotal.WithLabelValues(reg.String()).Inc()

	path, ok := w.paths[reg]
	if !ok {
		writeFailuresTotal.WithLabelValues(reg.String()).Inc()
		return fmt.Errorf("no path configured for register %s", reg)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		w.fail(reg, path, err)
		return err
	}
	_, err = f.WriteString(strconv.Itoa(value) + "\n")
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		w.fail(reg, path, err)
		return err
	}
	return nil
}

func (w *LEDWriter) fail(reg Register, path string, err error) {
	writeFailuresTotal.WithLabelValues(reg.String()).Inc()

	w.mu.Lock()
	first := !w.warned[reg]
	w.warned[reg] = true
	w.mu.Unlock()

	if first {
		logger.With(zap.String("register", reg.String()), zap.String("path", path), zap.Error(err)).
			Warn("LED register write failed, further failures counted silently")
	}
}

// Noop is a Writer for hosts without the LED cluster. Writes are
// logged at debug level and always succeed.
type Noop struct{}

func (Noop) Write(reg Register, value int) error {
	logger.With(zap.String("register", reg.String()), zap.Int("value", value)).
		Debug("LED register write skipped (no hardware)")
	return nil
}
