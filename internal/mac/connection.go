package mac

import (
	"github.com/kg2e0-wps/wps/internal/headerproto"
	"github.com/kg2e0-wps/wps/internal/link"
	"github.com/kg2e0-wps/wps/internal/xlayer"
)

// Connection is everything the MAC needs to drive one data connection
// through a slot: its queues, its link-layer sub-modules, and the
// application callbacks to schedule on outcome.
type Connection struct {
	ID             uint16
	SourceAddr     uint16
	Priority       uint8
	EnabledFlag    bool
	FrameLostMax   int

	TxQueue  *xlayer.Queue
	RxQueue  *xlayer.Queue
	FreeTx   *xlayer.Pool
	FreeRx   *xlayer.Pool
	Arena    *xlayer.Arena

	SAW      *link.SAW
	CCA      *link.CCA
	DDCM     *link.DDCM
	CreditFC *link.CreditFlowControl
	LQI      *link.LQI
	Fallback *link.FallbackThreshold

	HeaderRegistry    *headerproto.Registry
	AckHeaderRegistry *headerproto.Registry

	frameLostCount int

	OnRxSuccess func(d *xlayer.Descriptor)
	OnTxSuccess func(d *xlayer.Descriptor)
	OnTxFail    func(d *xlayer.Descriptor)
	OnTxDrop    func(d *xlayer.Descriptor)
}

// Enabled reports whether this connection currently participates in
// priority arbitration and slot servicing.
func (c *Connection) Enabled() bool { return c.EnabledFlag }

// HasQueuedFrame reports whether this connection has a TX frame ready to
// send, the signal connpriority and the scheduler use to skip idle
// connections.
func (c *Connection) HasQueuedFrame() bool {
	return c.TxQueue != nil && !c.TxQueue.IsEmpty()
}

// SourceAddress satisfies scheduler.Connection.
func (c *Connection) SourceAddress() uint16 { return c.SourceAddr }

// CreditFlowControl satisfies connpriority.Connection.
func (c *Connection) CreditFlowControl() *link.CreditFlowControl { return c.CreditFC }

// ccaRetryTimePllCycles returns the configured CCA retry spacing, or 0 if
// CCA is not configured for this connection.
func (c *Connection) ccaRetryTimePllCycles() uint32 {
	if c.CCA == nil {
		return 0
	}
	return c.CCA.RetryTimePllCycles
}

// recordFrameLost increments the consecutive-loss counter and reports
// whether it has now reached frame_lost_max_duration.
func (c *Connection) recordFrameLost() (exceeded bool) {
	c.frameLostCount++
	return c.frameLostCount >= c.FrameLostMax
}

// recordFrameReceived clears the consecutive-loss counter.
func (c *Connection) recordFrameReceived() {
	c.frameLostCount = 0
}
