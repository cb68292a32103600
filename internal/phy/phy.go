// Package phy defines the narrow boundary between the MAC and the radio
// hardware: the per-frame outcome signals a PHY reports, the per-frame
// metrics it measures, and the command a MAC issues back to arm it for the
// next slot. A concrete radio driver lives in internal/radio and satisfies
// this package's Driver interface; tests substitute a fake.
package phy

// OutputSignal is a single-direction (main or auto-reply) outcome the PHY
// reports for the slot just completed.
type OutputSignal uint8

const (
	SignalNone OutputSignal = iota
	SignalFrameReceived
	SignalFrameLost
	SignalFrameRejected
	SignalFrameSentAck
	SignalFrameSentNack
	SignalPrepareDone
)

// String renders the signal name for logging.
func (s OutputSignal) String() string {
	switch s {
	case SignalFrameReceived:
		return "frame_received"
	case SignalFrameLost:
		return "frame_lost"
	case SignalFrameRejected:
		return "frame_rejected"
	case SignalFrameSentAck:
		return "frame_sent_ack"
	case SignalFrameSentNack:
		return "frame_sent_nack"
	case SignalPrepareDone:
		return "prepare_done"
	default:
		return "none"
	}
}

// FrameMetrics carries the per-frame measurements a PHY attaches to a
// receive or CCA-gated transmit outcome.
type FrameMetrics struct {
	RssiRaw      int16
	RnsiRaw      int16
	PhaseOffset  int16
	CCATryCount  uint8
	RxWaitTime   uint32
}

// Signal bundles the main and auto-reply outcomes the PHY reports for one
// slot, plus whichever FrameMetrics apply (zero value if neither side
// received).
type Signal struct {
	Main     OutputSignal
	Auto     OutputSignal
	Metrics  FrameMetrics
}

// Modulation and Fec mirror PHY register-level enums whose concrete
// encodings are radio-specific; the MAC treats them as opaque selectors
// chosen by internal/link's FallbackThreshold.
type Modulation uint8
type Fec uint8

// Command is what the MAC emits to arm the PHY for the next slot:
// power-up lead time, listen timeout, how long to sleep afterward, and the
// timing perturbations (RDO, DDCM) and channel selection to apply.
type Command struct {
	PowerUpDelayPllCycles uint32
	RxTimeoutPllCycles    uint32
	SleepCycles            uint8
	Channel                uint8
	Modulation             Modulation
	Fec                    Fec
	ChipRepetitions        uint8
	RDOOffset              uint16
	DDCMOffsetPllCycles    uint32
	TxEnabled              bool

	// CRCPolynomial and RxGain are node-config values the MAC never
	// interprets; it only copies them through to the PHY on every command.
	CRCPolynomial uint32
	RxGain        uint8
}

// Driver is the narrow collaborator internal/mac needs from a concrete
// radio: arm it for the next slot and learn what happened on the one just
// completed. internal/radio provides a hardware-backed implementation;
// tests use a fake.
type Driver interface {
	Arm(cmd Command)
	LastSignal() Signal
}
