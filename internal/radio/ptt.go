package radio

import (
	"github.com/warthog618/go-gpiocdev"
)

// gpioLine is the slice of *gpiocdev.Line this package depends on; tests
// substitute a mock so PTT toggling can be verified without gpio-sim or
// real hardware.
type gpioLine interface {
	SetValue(int) error
	Close() error
}

// GPIOKeyer drives PTT through a single GPIO line on a character-device
// GPIO chip, the modern replacement for the old /sys/class/gpio/export
// interface: request the line once at startup, then flip its value per
// transmit instead of reopening a file every time.
type GPIOKeyer struct {
	line       gpioLine
	activeHigh bool
}

// NewGPIOKeyer requests offset on chipName (e.g. "gpiochip0") as an output
// line for PTT. activeHigh false inverts the line, for wiring where PTT
// keys on a low signal.
func NewGPIOKeyer(chipName string, offset int, activeHigh bool) (*GPIOKeyer, error) {
	initial := 0
	if !activeHigh {
		initial = 1
	}
	line, err := gpiocdev.RequestLine(chipName, offset,
		gpiocdev.AsOutput(initial),
		gpiocdev.WithConsumer("wps-ptt"),
	)
	if err != nil {
		return nil, err
	}
	return &GPIOKeyer{line: line, activeHigh: activeHigh}, nil
}

// Key sets the PTT line to the keyed state (on) or released.
func (k *GPIOKeyer) Key(on bool) error {
	v := 0
	if on == k.activeHigh {
		v = 1
	}
	return k.line.SetValue(v)
}

// Close releases the GPIO line back to the kernel.
func (k *GPIOKeyer) Close() error {
	return k.line.Close()
}
