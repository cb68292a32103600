package radio

import (
	"encoding/binary"

	"github.com/kg2e0-wps/wps/internal/phy"
)

// commandWireSize and signalWireSize are the fixed encodings of
// phy.Command and phy.Signal on the wire, field order matching struct
// declaration order.
const (
	commandWireSize = 4 + 4 + 1 + 1 + 1 + 1 + 1 + 2 + 4 + 1 + 4 + 1
	signalWireSize  = 1 + 1 + 2 + 2 + 2 + 1 + 4
)

func encodeCommand(cmd phy.Command) []byte {
	b := make([]byte, commandWireSize)
	i := 0
	binary.BigEndian.PutUint32(b[i:], cmd.PowerUpDelayPllCycles)
	i += 4
	binary.BigEndian.PutUint32(b[i:], cmd.RxTimeoutPllCycles)
	i += 4
	b[i] = cmd.SleepCycles
	i++
	b[i] = cmd.Channel
	i++
	b[i] = uint8(cmd.Modulation)
	i++
	b[i] = uint8(cmd.Fec)
	i++
	b[i] = cmd.ChipRepetitions
	i++
	binary.BigEndian.PutUint16(b[i:], cmd.RDOOffset)
	i += 2
	binary.BigEndian.PutUint32(b[i:], cmd.DDCMOffsetPllCycles)
	i += 4
	if cmd.TxEnabled {
		b[i] = 1
	}
	i++
	binary.BigEndian.PutUint32(b[i:], cmd.CRCPolynomial)
	i += 4
	b[i] = cmd.RxGain
	return b
}

func decodeSignal(b []byte) phy.Signal {
	if len(b) < signalWireSize {
		return phy.Signal{}
	}
	i := 0
	var sig phy.Signal
	sig.Main = phy.OutputSignal(b[i])
	i++
	sig.Auto = phy.OutputSignal(b[i])
	i++
	sig.Metrics.RssiRaw = int16(binary.BigEndian.Uint16(b[i:]))
	i += 2
	sig.Metrics.RnsiRaw = int16(binary.BigEndian.Uint16(b[i:]))
	i += 2
	sig.Metrics.PhaseOffset = int16(binary.BigEndian.Uint16(b[i:]))
	i += 2
	sig.Metrics.CCATryCount = b[i]
	i++
	sig.Metrics.RxWaitTime = binary.BigEndian.Uint32(b[i:])
	return sig
}
