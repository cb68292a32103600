// Package radio is the one concrete phy.Driver the stack ships: a radio
// reachable over a serial link, framed the same way the link-layer's own
// byte-stuffed protocol is, plus an optional GPIO line for keying PTT
// directly rather than through the radio's own control channel.
package radio

import (
	"bufio"
	"fmt"

	"github.com/pkg/term"

	"github.com/kg2e0-wps/wps/internal/phy"
)

// allowedBaudRates mirrors the fixed set a serial PHY adapter is expected
// to support; anything else falls back to 4800 baud instead of failing
// outright.
var allowedBaudRates = map[int]bool{
	1200: true, 2400: true, 4800: true, 9600: true,
	19200: true, 38400: true, 57600: true, 115200: true, 230400: true,
}

// SerialDriver arms a radio over a serial port using the command/signal
// framing in wire.go, and optionally drives an external PTT line through a
// Keyer on every Arm call: keyed when the command has TxEnabled set,
// released otherwise.
type SerialDriver struct {
	fd     *term.Term
	reader *bufio.Reader
	keyer  Keyer

	last phy.Signal
}

// Keyer keys (and unkeys) an out-of-band PTT signal; GPIOKeyer is the
// concrete implementation, tests use a no-op.
type Keyer interface {
	Key(on bool) error
}

// Open opens devicename at baud (0 leaves the port's current speed alone)
// and wraps it as a phy.Driver. keyer may be nil if the radio keys its own
// PTT internally.
func Open(devicename string, baud int, keyer Keyer) (*SerialDriver, error) {
	fd, err := term.Open(devicename, term.RawMode)
	if err != nil {
		return nil, fmt.Errorf("radio: opening %s: %w", devicename, err)
	}

	switch {
	case baud == 0:
		// leave it alone
	case allowedBaudRates[baud]:
		if err := fd.SetSpeed(baud); err != nil {
			fd.Close()
			return nil, fmt.Errorf("radio: setting speed %d on %s: %w", baud, devicename, err)
		}
	default:
		if err := fd.SetSpeed(4800); err != nil {
			fd.Close()
			return nil, fmt.Errorf("radio: setting fallback speed on %s: %w", devicename, err)
		}
	}

	return &SerialDriver{fd: fd, reader: bufio.NewReader(fd), keyer: keyer}, nil
}

// Close releases the underlying serial port.
func (d *SerialDriver) Close() error {
	if d.fd == nil {
		return nil
	}
	return d.fd.Close()
}

// Arm encodes cmd and writes it as one framed packet, keying (or
// releasing) PTT first when a Keyer is attached.
func (d *SerialDriver) Arm(cmd phy.Command) {
	if d.keyer != nil {
		_ = d.keyer.Key(cmd.TxEnabled)
	}

	frame := stuff(encodeCommand(cmd))
	if _, err := d.fd.Write(frame); err != nil {
		return
	}
}

// LastSignal blocks for one framed packet and decodes it as a phy.Signal.
// On any read error it returns the previously decoded signal, matching the
// "leave it alone" behavior a dropped byte on a noisy link should have
// rather than panicking the MAC loop.
func (d *SerialDriver) LastSignal() phy.Signal {
	frame, err := d.reader.ReadBytes(fend)
	if err != nil {
		return d.last
	}
	// ReadBytes includes the trailing FEND; a leading FEND from the
	// previous frame's terminator may still be sitting in the buffer, so
	// trim both delimiters before unstuffing.
	for len(frame) > 0 && frame[0] == fend {
		frame = frame[1:]
	}
	if len(frame) > 0 && frame[len(frame)-1] == fend {
		frame = frame[:len(frame)-1]
	}

	sig := decodeSignal(unstuff(frame))
	d.last = sig
	return sig
}
