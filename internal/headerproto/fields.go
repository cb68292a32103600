package headerproto

import "github.com/kg2e0-wps/wps/internal/link"

// timeslotMaskBits is the number of low bits of byte 0 reserved for the
// timeslot index; bit 7 carries the SAW sequence bit.
const timeslotMaskBits = 0x7F

// TimeslotSAW builds the "timeslot+SAW" field: byte 0 packs the current SAW
// bit in bit 7 and the timeslot index in bits 6..0. On receive, a decoded
// index that differs from expectedIndex() triggers onMismatch with the
// decoded value (slave resync); a decoded SAW bit matching the connection's
// last-accepted value marks the frame a duplicate via onDuplicate.
func TimeslotSAW(saw *link.SAW, expectedIndex func() int, onMismatch func(decodedIndex int), onDuplicate func()) Field {
	return Field{
		ID:   "timeslot_saw",
		Size: 1,
		Send: func(cur *Cursor) {
			b := cur.Bytes(1)
			b[0] = (saw.TxBit() << 7) | byte(expectedIndex()&timeslotMaskBits)
		},
		Recv: func(cur *Cursor) {
			b := cur.Bytes(1)
			decodedSAW := b[0] >> 7
			decodedIndex := int(b[0] & timeslotMaskBits)

			if decodedIndex != expectedIndex() {
				onMismatch(decodedIndex)
			}
			if saw.IsDuplicate(decodedSAW) {
				onDuplicate()
			}
			saw.AcceptRx(decodedSAW)
		},
	}
}

// ChannelIndex builds the 1-byte channel-index field. On a network node
// (non-slave side of a link that resyncs from headers), the decoded value
// is copied into the hopper via resync; resync is a no-op if nil.
func ChannelIndex(hop *link.ChannelHopping, resync func(index int)) Field {
	return Field{
		ID:   "channel_index",
		Size: 1,
		Send: func(cur *Cursor) {
			cur.Bytes(1)[0] = uint8(hop.Index())
		},
		Recv: func(cur *Cursor) {
			if resync != nil {
				resync(int(cur.Bytes(1)[0]))
			}
		},
	}
}

// RDOOffset builds the 2-byte RDO counter field (big-endian on the wire).
func RDOOffset(rdo *link.RDO) Field {
	return Field{
		ID:   "rdo_offset",
		Size: 2,
		Send: func(cur *Cursor) {
			b := cur.Bytes(2)
			v := rdo.Counter()
			b[0] = byte(v >> 8)
			b[1] = byte(v)
		},
		Recv: func(cur *Cursor) {
			b := cur.Bytes(2)
			rdo.SyncFromPeer(uint16(b[0])<<8 | uint16(b[1]))
		},
	}
}

// ConnectionID builds the 1-byte connection-selector field used when
// multiple connections share a timeslot. getID supplies the local
// connection's id to send; setID receives the decoded id, with any wire
// value >= maxConnPerSlot replaced by 0 (malformed/old-firmware peers).
func ConnectionID(maxConnPerSlot int, getID func() uint8, setID func(id uint8)) Field {
	return Field{
		ID:   "connection_id",
		Size: 1,
		Send: func(cur *Cursor) {
			cur.Bytes(1)[0] = getID()
		},
		Recv: func(cur *Cursor) {
			id := cur.Bytes(1)[0]
			if int(id) >= maxConnPerSlot {
				id = 0
			}
			setID(id)
		},
	}
}

// CreditFC builds the 1-byte credit-flow-control field: the sender
// advertises min(localFreeSlots(), 255); the receiver stores the decoded
// value as the peer's spendable credit.
func CreditFC(cfc *link.CreditFlowControl, localFreeSlots func() int) Field {
	return Field{
		ID:   "credit_fc",
		Size: 1,
		Send: func(cur *Cursor) {
			cur.Bytes(1)[0] = link.LocalAdvertisedCredit(localFreeSlots())
		},
		Recv: func(cur *Cursor) {
			cfc.SetPeerCredits(cur.Bytes(1)[0])
		},
	}
}

// RangingPhases builds the variable-size ranging block: 1 byte of phase
// count, followed by up to 4 1-byte phase samples, sized according to mode
// (RangingModeFourPhases is therefore 5 bytes total). Samples are carried
// on the wire as signed bytes; localPhases supplies up to
// Config.RangingPhaseCount() samples to send, truncated to fit. onPeerPhases
// receives the decoded count and sign-extended samples; deciding whether to
// accept them (by matching the count modulo 256) is left to onPeerPhases.
func RangingPhases(mode RangingMode, localCount func() uint8, localPhases func() []int16, onPeerPhases func(count uint8, phases []int16)) Field {
	sampleCount := Config{Ranging: mode}.RangingPhaseCount()
	size := 1 + sampleCount
	if mode == RangingModeOff {
		size = 0
	}

	return Field{
		ID:   "ranging_phases",
		Size: size,
		Send: func(cur *Cursor) {
			if mode == RangingModeOff {
				return
			}
			b := cur.Bytes(size)
			b[0] = localCount()
			phases := localPhases()
			for i := 0; i < sampleCount; i++ {
				var sample int8
				if i < len(phases) {
					sample = int8(phases[i])
				}
				b[1+i] = byte(sample)
			}
		},
		Recv: func(cur *Cursor) {
			if mode == RangingModeOff {
				return
			}
			b := cur.Bytes(size)
			count := b[0]
			phases := make([]int16, sampleCount)
			for i := 0; i < sampleCount; i++ {
				phases[i] = int16(int8(b[1+i]))
			}
			onPeerPhases(count, phases)
		},
	}
}
