// Package xlayer implements the zero-copy cross-layer frame queue that
// threads frame descriptors between the application, MAC, and PHY without
// ever copying payload bytes. A Descriptor never owns bytes; it references
// a run of a shared Arena by offset, and is itself drawn from a fixed-size
// Pool allocated once at startup.
package xlayer

import "time"

// Outcome is the result recorded on a Descriptor once the PHY has acted on it.
type Outcome uint8

const (
	// Wait means the frame has not yet been resolved by the PHY.
	Wait Outcome = iota
	// Received means the frame was received intact.
	Received
	// Lost means the frame was not received (ACK timeout or CRC failure).
	Lost
	// Rejected means the frame was addressed to a different node.
	Rejected
	// SentAck means the frame transmission completed and was acknowledged.
	SentAck
	// SentNack means the frame transmission completed but was not acknowledged.
	SentNack
)

func (o Outcome) String() string {
	switch o {
	case Wait:
		return "WAIT"
	case Received:
		return "RECEIVED"
	case Lost:
		return "LOST"
	case Rejected:
		return "REJECTED"
	case SentAck:
		return "SENT_ACK"
	case SentNack:
		return "SENT_NACK"
	default:
		return "UNKNOWN"
	}
}

// Descriptor is a cross-layer frame handle. Header and payload bytes live in
// an Arena; this struct carries only offsets into that arena plus bookkeeping
// fields, so it is trivially copyable and never aliases caller memory.
//
// Invariant: HeaderBegin <= PayloadBegin <= PayloadEnd.
type Descriptor struct {
	HeaderMemoryBegin int // offset of the start of this frame's reserved arena run
	HeaderBeginIt     int // offset where header bytes begin
	PayloadBeginIt    int // offset where payload bytes begin
	PayloadEndIt      int // offset one past the last payload byte

	MaxFrameSize      int
	PayloadMemorySize int
	HeaderMemorySize  int

	TimeStamp   time.Time
	RetryCount  int
	Outcome     Outcome

	DestinationAddress uint16
	SourceAddress       uint16
	UserPayload         bool // true when this descriptor carries application bytes (vs. an internal empty/ack frame)

	// intrusive doubly-linked list pointers. A Descriptor is on at most one
	// list at a time: either a Pool's free list, or a Queue. The two never
	// overlap, so reusing the same fields for both is safe.
	next, prev *Descriptor
	inUse      bool
	poolIndex  int
}

// HeaderLen returns the number of header bytes reserved for this frame.
func (d *Descriptor) HeaderLen() int { return d.PayloadBeginIt - d.HeaderBeginIt }

// PayloadLen returns the number of payload bytes currently held.
func (d *Descriptor) PayloadLen() int { return d.PayloadEndIt - d.PayloadBeginIt }

// SetReceivedPayload positions PayloadBeginIt/PayloadEndIt from the
// one-byte payload length the wire format carries immediately after the
// headerSize header bytes, clamped to this descriptor's payload capacity.
// Call this after the header registry has deserialized backing but before
// the descriptor is enqueued or handed to the application.
func (d *Descriptor) SetReceivedPayload(backing []byte, headerSize int) {
	lengthPos := d.HeaderMemoryBegin + headerSize
	length := int(backing[lengthPos])
	if length > d.PayloadMemorySize {
		length = d.PayloadMemorySize
	}
	d.PayloadBeginIt = lengthPos + 1
	d.PayloadEndIt = d.PayloadBeginIt + length
}

// Reset clears a descriptor back to its just-allocated state, keeping its
// pool-assigned capacity fields untouched.
func (d *Descriptor) Reset() {
	d.HeaderBeginIt = d.HeaderMemoryBegin
	d.PayloadBeginIt = d.HeaderMemoryBegin
	d.PayloadEndIt = d.HeaderMemoryBegin
	d.RetryCount = 0
	d.Outcome = Wait
	d.UserPayload = false
}
