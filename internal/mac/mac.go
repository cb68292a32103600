package mac

import (
	"time"

	"github.com/kg2e0-wps/wps/internal/link"
	"github.com/kg2e0-wps/wps/internal/phy"
	"github.com/kg2e0-wps/wps/internal/scheduler"
	"github.com/kg2e0-wps/wps/internal/xlayer"
)

// Mac ties together the scheduler, channel hopper, sync tracker, timing
// perturbation, and header pipeline into the single entry point the PHY
// calls on every slot boundary.
type Mac struct {
	state *StateMachine

	scheduler *scheduler.Scheduler
	hopping   *link.ChannelHopping
	syncTrk   *link.SyncTracker
	rdo       *link.RDO

	callbackQueue *CallbackQueue

	frameLostMaxDuration int
	fastSyncEnabled      bool

	// crcPolynomial and rxGain are opaque node-config values the MAC never
	// interprets; they are copied onto every outgoing phy.Command untouched.
	crcPolynomial uint32
	rxGain        uint8

	mainConnection *Connection
	autoConnection *Connection
}

// Config bundles Mac's fixed construction-time dependencies.
type Config struct {
	IsSlave              bool
	Scheduler            *scheduler.Scheduler
	Hopping              *link.ChannelHopping
	SyncTracker          *link.SyncTracker
	RDO                  *link.RDO
	CallbackQueueSize    int
	FrameLostMaxDuration int
}

// New builds a Mac in LinkStateNotInit.
func New(cfg Config) *Mac {
	return &Mac{
		state:                NewStateMachine(cfg.IsSlave),
		scheduler:            cfg.Scheduler,
		hopping:              cfg.Hopping,
		syncTrk:              cfg.SyncTracker,
		rdo:                  cfg.RDO,
		callbackQueue:        NewCallbackQueue(cfg.CallbackQueueSize),
		frameLostMaxDuration: cfg.FrameLostMaxDuration,
	}
}

// State exposes the lifecycle/sync state machine for façade inspection.
func (m *Mac) State() *StateMachine { return m.state }

// Callbacks exposes the bounded deferred-callback queue the worker context
// drains.
func (m *Mac) Callbacks() *CallbackQueue { return m.callbackQueue }

// EnableFastSync lets disconnect skip the request queue while the slave is
// not yet synced, per the fast-sync disconnect shortcut.
func (m *Mac) EnableFastSync()  { m.fastSyncEnabled = true }
func (m *Mac) DisableFastSync() { m.fastSyncEnabled = false }
func (m *Mac) FastSyncEnabled() bool { return m.fastSyncEnabled }

// SetPassthroughRegisters stores the node-config values copied verbatim
// onto every phy.Command without MAC interpretation.
func (m *Mac) SetPassthroughRegisters(crcPolynomial uint32, rxGain uint8) {
	m.crcPolynomial = crcPolynomial
	m.rxGain = rxGain
}

// SetConnections assigns the current slot's main and (possibly nil)
// auto-reply connection, normally called once per slot after the scheduler
// advances.
func (m *Mac) SetConnections(main, auto *Connection) {
	m.mainConnection = main
	m.autoConnection = auto
}

// ProcessMainOutcome folds one slot's main-direction PHY signal into
// connection state and returns the MAC-level output signal the application
// observes. dup marks a frame the header pipeline already identified as an
// ARQ duplicate (demoting RX_SUCCESS to EMPTY).
func (m *Mac) ProcessMainOutcome(conn *Connection, sig phy.OutputSignal, rx *xlayer.Descriptor, dup bool, metrics phy.FrameMetrics) OutputSignal {
	if conn == nil {
		return SignalEmpty
	}

	switch sig {
	case phy.SignalFrameReceived:
		if dup {
			return SignalEmpty
		}
		// The header pipeline has already run saw.AcceptRx by the time
		// this is called; LQI is not updated on this path.
		conn.recordFrameReceived()
		if rx != nil {
			conn.RxQueue.Enqueue(rx)
		}
		m.enqueueCallback(conn, CallbackRxSuccess, rx)
		m.state.OnSyncwordPass()
		return SignalFrameRxSuccess

	case phy.SignalFrameLost, phy.SignalFrameRejected:
		if conn.recordFrameLost() {
			m.state.OnSyncLost()
			m.scheduler.SetMismatch()
		}
		return SignalFrameRxFail

	case phy.SignalFrameSentAck:
		m.onTxSuccess(conn, metrics)
		return SignalTxSuccess

	case phy.SignalFrameSentNack:
		return m.onTxFail(conn, metrics)

	default:
		return SignalEmpty
	}
}

// ProcessAutoOutcome is ProcessMainOutcome's symmetric counterpart for the
// auto-reply direction. When conn is nil (no dedicated auto-reply
// connection), callers should instead route an inbound ACK's credit field
// into the main connection directly; ProcessAutoOutcome is a no-op in that
// case.
func (m *Mac) ProcessAutoOutcome(conn *Connection, sig phy.OutputSignal, rx *xlayer.Descriptor, dup bool, metrics phy.FrameMetrics) OutputSignal {
	if conn == nil {
		return SignalEmpty
	}
	return m.ProcessMainOutcome(conn, sig, rx, dup, metrics)
}

func (m *Mac) onTxSuccess(conn *Connection, metrics phy.FrameMetrics) {
	var sent *xlayer.Descriptor
	if conn.TxQueue != nil {
		sent = conn.TxQueue.Dequeue()
	}
	if sent != nil && conn.Arena != nil {
		conn.Arena.Release(sent.HeaderMemoryBegin, sent.MaxFrameSize)
	}
	if sent != nil && conn.FreeTx != nil {
		conn.FreeTx.Release(sent)
	}
	if conn.SAW != nil {
		conn.SAW.OnTxSuccess()
	}
	if conn.DDCM != nil {
		conn.DDCM.PostTxUpdate(metrics.CCATryCount, conn.ccaRetryTimePllCycles(), true)
	}
	if conn.CreditFC != nil {
		conn.CreditFC.ConsumeCredit()
	}
	m.enqueueCallback(conn, CallbackTxSuccess, sent)
}

func (m *Mac) onTxFail(conn *Connection, metrics phy.FrameMetrics) OutputSignal {
	if conn.DDCM != nil {
		conn.DDCM.PostTxUpdate(metrics.CCATryCount, conn.ccaRetryTimePllCycles(), false)
	}
	if conn.SAW == nil {
		return SignalTxFail
	}

	var pending *xlayer.Descriptor
	if conn.TxQueue != nil {
		pending = conn.TxQueue.GetNode()
	}

	drop := conn.SAW.OnTxFail(currentTime())
	if drop {
		if conn.TxQueue != nil {
			pending = conn.TxQueue.Dequeue()
		}
		if pending != nil && conn.Arena != nil {
			conn.Arena.Release(pending.HeaderMemoryBegin, pending.MaxFrameSize)
		}
		if pending != nil && conn.FreeTx != nil {
			conn.FreeTx.Release(pending)
		}
		m.enqueueCallback(conn, CallbackTxDrop, pending)
		return SignalTxDrop
	}
	return SignalTxFail
}

func (m *Mac) enqueueCallback(conn *Connection, kind CallbackKind, d *xlayer.Descriptor) {
	var fn func()
	switch kind {
	case CallbackRxSuccess:
		if conn.OnRxSuccess != nil {
			fn = func() { conn.OnRxSuccess(d) }
		}
	case CallbackTxSuccess:
		if conn.OnTxSuccess != nil {
			fn = func() { conn.OnTxSuccess(d) }
		}
	case CallbackTxFail:
		if conn.OnTxFail != nil {
			fn = func() { conn.OnTxFail(d) }
		}
	case CallbackTxDrop:
		if conn.OnTxDrop != nil {
			fn = func() { conn.OnTxDrop(d) }
		}
	}
	if fn == nil {
		return
	}
	_ = m.callbackQueue.Enqueue(Callback{ConnectionID: conn.ID, Kind: kind, Fn: fn})
}

// AdvanceSlot advances the scheduler past the slot(s) just serviced,
// advances the channel hopper once per active slot, and returns the PHY
// command to arm for the next slot.
func (m *Mac) AdvanceSlot() phy.Command {
	m.scheduler.ResetSleepTime()
	m.scheduler.IncrementTimeSlot()
	m.hopping.Advance()
	if m.rdo != nil {
		m.rdo.Advance()
	}

	cmd := phy.Command{
		SleepCycles:   uint8(m.scheduler.SleepTime()),
		Channel:       m.hopping.Channel(),
		TxEnabled:     m.state.Link() == LinkStateConnect,
		CRCPolynomial: m.crcPolynomial,
		RxGain:        m.rxGain,
	}
	if m.syncTrk != nil {
		cmd.PowerUpDelayPllCycles = m.syncTrk.GetPwrUp()
		cmd.RxTimeoutPllCycles = m.syncTrk.GetTimeout()
	}
	if m.rdo != nil {
		cmd.RDOOffset = m.rdo.Counter()
	}
	if m.mainConnection != nil && m.mainConnection.DDCM != nil {
		cmd.DDCMOffsetPllCycles = m.mainConnection.DDCM.GetOffset()
	}
	return cmd
}

// currentTime is overridable in tests; production code threads real
// timestamps in from the caller context where possible, but SAW's deadline
// clock only needs monotonic ordering, which time.Now satisfies.
var currentTime = defaultNow

func defaultNow() time.Time { return time.Now() }
