package wps

import (
	"math"

	"github.com/kg2e0-wps/wps/internal/headerproto"
	"github.com/kg2e0-wps/wps/internal/link"
	macpkg "github.com/kg2e0-wps/wps/internal/mac"
	"github.com/kg2e0-wps/wps/internal/ranging"
	"github.com/kg2e0-wps/wps/internal/scheduler"
	"github.com/kg2e0-wps/wps/internal/xlayer"
)

// Connection is the application-facing handle for one logical stream: it
// wraps the lower mac.Connection with the header-protocol wiring, feature
// toggles, and the zero-copy data path the façade exposes.
type Connection struct {
	id     uint16
	node   *Node
	mac    *macpkg.Connection
	stats  *Stats
	header headerproto.Config

	maxPayloadSize int
	headerSize     int

	pendingTx *xlayer.Descriptor
	pendingRx *xlayer.Descriptor

	ackEnabled bool

	// throttle spreads this connection's slot eligibility across a repeating
	// active/inactive pattern; Poll ticks it once per slot and gates the
	// connection's enabled state from it before priority arbitration runs.
	throttle *scheduler.Throttle

	rangingLocalCount  uint8
	rangingLocalPhases []int16
	rangingPeerCount   uint8
	rangingPeerPhases  []int16

	// lastRxDuplicate is set by the timeslot+SAW header field's onDuplicate
	// callback during Deserialize, and consumed (and cleared) by the next
	// deliverOutcome call for this connection.
	lastRxDuplicate bool

	// decodedConnID/decodedConnIDSet are set by the connection-id header
	// field's Recv callback during Deserialize, when this connection shares
	// its timeslot with others; deliverOutcome uses them to redirect a
	// received frame to the connection the wire actually addressed it to.
	decodedConnID    uint8
	decodedConnIDSet bool
}

// ID returns the connection's slot-selector id.
func (c *Connection) ID() uint16 { return c.id }

// Stats returns the counters accumulated for this connection.
func (c *Connection) Stats() *Stats { return c.stats }

// GetFreeSlot reserves size bytes of TX payload space and returns a slice
// the caller fills in place; Send finalizes the frame with no further copy.
func (c *Connection) GetFreeSlot(size int) ([]byte, Error) {
	if size < 0 || size > c.maxPayloadSize {
		return nil, ErrWrongTxSize
	}
	if c.pendingTx != nil {
		return nil, ErrQueueFull
	}
	d := c.mac.FreeTx.GetFreeNode()
	if d == nil {
		return nil, ErrNotEnoughMemory
	}

	total := c.headerSize + size + 1 // +1 length-prefix byte, per the wire format
	offset := c.mac.Arena.Reserve(total)
	if offset < 0 {
		c.mac.FreeTx.Release(d)
		return nil, ErrNotEnoughMemory
	}

	d.HeaderMemoryBegin = offset
	d.HeaderBeginIt = offset
	d.PayloadBeginIt = offset + c.headerSize + 1
	d.PayloadEndIt = d.PayloadBeginIt + size
	d.MaxFrameSize = total

	c.mac.Arena.Bytes(offset+c.headerSize, 1)[0] = byte(size)

	c.pendingTx = d
	return c.mac.Arena.Bytes(d.PayloadBeginIt, size), NoError
}

// Send enqueues the frame most recently reserved by GetFreeSlot. payload
// must be the exact slice (or one of the same length) returned by
// GetFreeSlot; this is a bookkeeping check, not a copy.
func (c *Connection) Send(payload []byte) Error {
	d := c.pendingTx
	if d == nil {
		return ErrQueueEmpty
	}
	if len(payload) != d.PayloadEndIt-d.PayloadBeginIt {
		return ErrWrongTxSize
	}

	d.SourceAddress = c.mac.SourceAddr
	d.UserPayload = len(payload) > 0

	if !c.mac.TxQueue.Enqueue(d) {
		c.mac.Arena.Release(d.HeaderMemoryBegin, d.MaxFrameSize)
		c.mac.FreeTx.Release(d)
		c.pendingTx = nil
		return ErrQueueFull
	}
	c.pendingTx = nil
	return NoError
}

// Read returns the payload of the oldest received frame without copying;
// the caller must call ReadDone before the next Read. Returns ErrQueueEmpty
// if nothing is queued.
func (c *Connection) Read() ([]byte, Error) {
	if c.pendingRx != nil {
		return nil, ErrQueueFull
	}
	d := c.mac.RxQueue.Dequeue()
	if d == nil {
		return nil, ErrQueueEmpty
	}
	c.pendingRx = d
	backing := c.mac.FreeRx.Backing(d)
	return backing[d.PayloadBeginIt:d.PayloadEndIt], NoError
}

// ReadToBuffer copies the oldest received frame's payload into buf,
// returning the number of bytes copied. Equivalent to Read followed by a
// copy and ReadDone.
func (c *Connection) ReadToBuffer(buf []byte) (int, Error) {
	payload, err := c.Read()
	if !err.ok() {
		return 0, err
	}
	n := copy(buf, payload)
	return n, c.ReadDone()
}

// ReadDone releases the descriptor handed out by the last Read back to the
// RX pool.
func (c *Connection) ReadDone() Error {
	if c.pendingRx == nil {
		return ErrQueueEmpty
	}
	c.mac.FreeRx.Release(c.pendingRx)
	c.pendingRx = nil
	return NoError
}

// --- feature toggles ---

// EnableACK/DisableACK gate whether this connection expects an ACK at all.
// DisableACK refuses with ErrAckDisabled while SAW ARQ is enabled; it does
// not change credit-FC.
func (c *Connection) EnableACK() Error {
	c.ackEnabled = true
	return NoError
}

func (c *Connection) DisableACK() Error {
	if c.mac.SAW != nil && c.mac.SAW.Enabled() {
		return ErrAckDisabled
	}
	c.ackEnabled = false
	return NoError
}

func (c *Connection) EnableSAWArq() Error {
	if !c.ackEnabled {
		return ErrAckDisabled
	}
	c.mac.SAW = link.NewSAW(true, 0, 0)
	return NoError
}

func (c *Connection) DisableSAWArq() Error {
	c.mac.SAW = link.NewSAW(false, 0, 0)
	return NoError
}

func (c *Connection) EnableCCA(threshold uint8, retryTime, onTime uint32, maxTryCount uint8, failAction link.CCAFailAction) Error {
	if maxTryCount == 0 {
		return ErrInvalidCCASettings
	}
	c.mac.CCA = link.NewCCA(threshold, retryTime, onTime, maxTryCount, failAction, true)
	return NoError
}

func (c *Connection) DisableCCA() Error {
	c.mac.CCA = link.NewCCA(0, 0, 0, 0, link.CCAForceTx, false)
	return NoError
}

// EnableRDO/DisableRDO reconfigure the node-wide RDO counter that the MAC
// and every connection's RDO header field share; they return ErrNotInit
// until ConfigNetworkSchedule has created it.
func (c *Connection) EnableRDO(incrementStep, rolloverValue uint16) Error {
	if c.node.rdo == nil {
		return ErrNotInit
	}
	*c.node.rdo = *link.NewRDO(true, incrementStep, rolloverValue)
	return NoError
}

func (c *Connection) DisableRDO() Error {
	if c.node.rdo == nil {
		return ErrNotInit
	}
	*c.node.rdo = *link.NewRDO(false, 0, 0)
	return NoError
}

func (c *Connection) EnableDDCM(maxTimeslotOffset, syncLossMaxDurationPll uint32) Error {
	c.mac.DDCM = link.NewDDCM(maxTimeslotOffset, syncLossMaxDurationPll)
	return NoError
}

func (c *Connection) DisableDDCM() Error {
	c.mac.DDCM = link.NewDDCM(0, 0)
	return NoError
}

func (c *Connection) EnableCreditFC() Error {
	c.mac.CreditFC = link.NewCreditFlowControl(true)
	return NoError
}

func (c *Connection) DisableCreditFC() Error {
	c.mac.CreditFC = link.NewCreditFlowControl(false)
	return NoError
}

func (c *Connection) EnableFallback(rssiThresholds []int16) Error {
	c.mac.Fallback = link.NewFallbackThreshold(rssiThresholds)
	return NoError
}

func (c *Connection) DisableFallback() Error {
	c.mac.Fallback = link.NewFallbackThreshold(nil)
	return NoError
}

// EnableRanging switches the connection's header block to carry phase
// samples; DisableRanging reverts to RangingModeOff. Both rebuild the
// connection's header registries before returning.
func (c *Connection) EnableRanging(mode headerproto.RangingMode) Error {
	c.header.Ranging = mode
	return c.node.rebuildHeaders(c)
}

func (c *Connection) DisableRanging() Error {
	c.header.Ranging = headerproto.RangingModeOff
	return c.node.rebuildHeaders(c)
}

// SetLocalRangingPhases stages the local phase samples sent on the next TX.
func (c *Connection) SetLocalRangingPhases(phases []int16) {
	c.rangingLocalCount++
	c.rangingLocalPhases = phases
}

// PeerRangingPhases returns the count and samples of the most recently
// accepted peer phase sample set (accepted when remote_count+1 ==
// local_count mod 256); it does not report whether the last received set
// was accepted.
func (c *Connection) PeerRangingPhases() (count uint8, phases []int16) {
	return c.rangingPeerCount, c.rangingPeerPhases
}

// EstimateRangeMeters converts the most recently accepted peer phase
// samples into a one-way distance estimate at the given carrier
// wavelength. Phase samples are carried on the wire in hundredths of a
// degree; returns 0 if no peer samples have been accepted yet.
func (c *Connection) EstimateRangeMeters(wavelengthMeters float64) float64 {
	if len(c.rangingPeerPhases) == 0 {
		return 0
	}
	radians := make([]float64, len(c.rangingPeerPhases))
	for i, p := range c.rangingPeerPhases {
		radians[i] = float64(p) / 100 * math.Pi / 180
	}
	return ranging.PhaseDistance(radians, wavelengthMeters)
}
