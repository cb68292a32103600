// Package wps is the application-facing entry point for the stack: a Node
// bundles a radio driver, the MAC it drives, and the connection table the
// application reads and writes through. Everything below internal/mac is
// wiring: assembling schedules, queues, and header registries from the
// caller's config structs.
package wps

import (
	"time"

	"github.com/kg2e0-wps/wps/internal/headerproto"
	"github.com/kg2e0-wps/wps/internal/link"
	macpkg "github.com/kg2e0-wps/wps/internal/mac"
	"github.com/kg2e0-wps/wps/internal/phy"
	"github.com/kg2e0-wps/wps/internal/scheduler"
	"github.com/kg2e0-wps/wps/internal/scheduler/connpriority"
	"github.com/kg2e0-wps/wps/internal/xlayer"
)

const defaultRequestQueueSize = 32
const defaultCallbackQueueSize = 32

// Node is one stack instance: the radio driver it arms, the MAC state
// machine driving it, and the connection table the application reads and
// writes through.
type Node struct {
	cfg    NodeConfig
	driver phy.Driver

	mac     *macpkg.Mac
	sched   *scheduler.Scheduler
	hopping *link.ChannelHopping
	syncTrk *link.SyncTracker
	rdo     *link.RDO

	conns map[uint16]*Connection
	order []*Connection

	reqQueue *requestQueue

	scheduled bool
}

// NewNode constructs a Node over driver with its fixed node identity.
// ConfigNetworkChannelSequence, AddConnection, and ConfigNetworkSchedule
// must all run before Connect.
func NewNode(driver phy.Driver, cfg NodeConfig) *Node {
	return &Node{
		cfg:      cfg,
		driver:   driver,
		conns:    make(map[uint16]*Connection),
		reqQueue: newRequestQueue(defaultRequestQueueSize),
	}
}

// ConfigNetworkChannelSequence installs the hop sequence every connection's
// header wiring resyncs against.
func (n *Node) ConfigNetworkChannelSequence(cfg ChannelSequenceConfig) Error {
	if len(cfg.Sequence) == 0 {
		return ErrChannelSequenceNotInitialized
	}
	n.hopping = link.NewChannelHopping(cfg.Sequence, n.cfg.NetworkID, cfg.RandomMode)
	return NoError
}

// AddConnection builds the queues, arena, and link submodules for one
// connection from cfg and registers it on the node. It may be called any
// number of times before ConfigNetworkSchedule.
func (n *Node) AddConnection(cfg ConnectionConfig) (*Connection, Error) {
	if _, exists := n.conns[cfg.ID]; exists {
		return nil, ErrAlreadyConnected
	}

	maxFrame := cfg.HeaderSize + cfg.MaxPayloadSize + 1
	mc := &macpkg.Connection{
		ID:           cfg.ID,
		SourceAddr:   cfg.SourceAddress,
		Priority:     cfg.Priority,
		EnabledFlag:  true,
		FrameLostMax: cfg.FrameLostMax,

		TxQueue: xlayer.NewQueue(cfg.TxQueueSize),
		RxQueue: xlayer.NewQueue(cfg.RxQueueSize),
		FreeTx:  xlayer.NewPool(cfg.TxQueueSize, maxFrame),
		FreeRx:  xlayer.NewPoolWithHeaderData(cfg.RxQueueSize, cfg.HeaderSize, cfg.MaxPayloadSize),
		Arena:   xlayer.NewArena(cfg.TxQueueSize, maxFrame),

		SAW:      link.NewSAW(cfg.SAWEnabled, cfg.SAWDeadline, cfg.SAWRetryCap),
		CCA:      link.NewCCA(0, 0, 0, 0, link.CCAForceTx, cfg.CCAEnabled),
		DDCM:     link.NewDDCM(0, 0),
		CreditFC: link.NewCreditFlowControl(cfg.CreditFCEnabled),
	}

	c := &Connection{
		id:             cfg.ID,
		node:           n,
		mac:            mc,
		stats:          newStats(),
		maxPayloadSize: cfg.MaxPayloadSize,
		headerSize:     cfg.HeaderSize,
		ackEnabled:     cfg.AckEnabled,
		throttle:       scheduler.NewThrottle(),
		header: headerproto.Config{
			Main:         cfg.IsMain,
			RDOEnabled:   cfg.RDOEnabled,
			ConnectionID: false,
			CreditFC:     cfg.CreditFCEnabled,
			Ranging:      cfg.Ranging,
		},
	}

	n.conns[cfg.ID] = c
	n.order = append(n.order, c)

	if err := n.rebuildHeaders(c); !err.ok() {
		return nil, err
	}
	return c, NoError
}

// rebuildHeaders (re)builds a connection's main and ACK header registries
// from its current headerproto.Config. Called at AddConnection time and
// whenever a feature toggle changes the header shape (e.g. EnableRanging).
func (n *Node) rebuildHeaders(c *Connection) Error {
	multi := len(n.order) > 1
	deps := headerproto.Deps{
		CreditFC: headerproto.CreditFC(c.mac.CreditFC, func() int { return c.mac.FreeRx.FreeCount() }),
	}
	if c.header.Main {
		deps.TimeslotSAW = headerproto.TimeslotSAW(
			c.mac.SAW,
			func() int { return n.sched.CurrentTimeSlotIndex() },
			func(decoded int) { n.sched.SetTimeSlotIndex(decoded); n.sched.SetMismatch() },
			func() { c.lastRxDuplicate = true },
		)
		deps.ChannelIndex = headerproto.ChannelIndex(n.hopping, nil)
	}
	if c.header.RDOEnabled {
		deps.RDOOffset = headerproto.RDOOffset(n.rdo)
	}
	if multi {
		c.header.ConnectionID = true
		deps.ConnectionID = headerproto.ConnectionID(scheduler.MaxConnectionsPerSlot,
			func() uint8 { return uint8(c.id) },
			func(id uint8) {
				c.decodedConnID = id
				c.decodedConnIDSet = true
			},
		)
	}
	if c.header.Ranging != headerproto.RangingModeOff {
		deps.RangingPhases = headerproto.RangingPhases(
			c.header.Ranging,
			func() uint8 { return c.rangingLocalCount },
			func() []int16 { return c.rangingLocalPhases },
			func(count uint8, phases []int16) {
				if count+1 == c.rangingLocalCount {
					c.rangingPeerCount = count
					c.rangingPeerPhases = phases
				}
			},
		)
	}

	c.mac.HeaderRegistry = headerproto.Build(c.header, deps, c.headerSize)
	c.mac.AckHeaderRegistry = headerproto.BuildAck(c.header, deps, c.headerSize)
	return NoError
}

// ConfigNetworkSchedule builds the TDMA schedule from cfg, resolving each
// slot's connection ids against connections already registered via
// AddConnection, and constructs the Mac that drives it.
func (n *Node) ConfigNetworkSchedule(cfg ScheduleConfig) Error {
	if n.hopping == nil {
		return ErrChannelSequenceNotInitialized
	}

	schedule := scheduler.Schedule{LightestSleepLvl: cfg.LightestSleepLvl}
	for _, slotCfg := range cfg.Slots {
		ts := &scheduler.Timeslot{
			DurationPllCycles:   slotCfg.DurationPllCycles,
			SleepLevel:          slotCfg.SleepLevel,
			MainConnectionCount: uint8(len(slotCfg.MainConnIDs)),
			AutoConnectionCount: uint8(len(slotCfg.AutoConnIDs)),
		}
		for i, id := range slotCfg.MainConnIDs {
			c, ok := n.conns[id]
			if !ok {
				return ErrTimeslotConnLimitReached
			}
			ts.ConnectionMain[i] = c.mac
			ts.ConnectionMainPriority[i] = slotCfg.MainPriorities[i]
		}
		for i, id := range slotCfg.AutoConnIDs {
			c, ok := n.conns[id]
			if !ok {
				return ErrTimeslotConnLimitReached
			}
			ts.ConnectionAutoReply[i] = c.mac
			ts.ConnectionAutoPriority[i] = slotCfg.AutoPriorities[i]
		}
		schedule.Timeslots = append(schedule.Timeslots, ts)
	}

	n.sched = scheduler.New(schedule, n.cfg.LocalAddress)
	n.syncTrk = link.NewSyncTracker(n.cfg.IsSlave, cfg.LightestSleepLvl, 4, 2, link.ISIMitigationNone, 0)
	n.rdo = link.NewRDO(false, 0, 0)

	n.mac = macpkg.New(macpkg.Config{
		IsSlave:              n.cfg.IsSlave,
		Scheduler:            n.sched,
		Hopping:              n.hopping,
		SyncTracker:          n.syncTrk,
		RDO:                  n.rdo,
		CallbackQueueSize:    defaultCallbackQueueSize,
		FrameLostMaxDuration: 0,
	})
	n.mac.SetPassthroughRegisters(n.cfg.CRCPolynomial, n.cfg.RxGain)
	n.mac.State().Init()

	for _, c := range n.order {
		if err := n.rebuildHeaders(c); !err.ok() {
			return err
		}
	}
	n.scheduled = true
	return NoError
}

// Connect brings the link up: DISCONNECT -> CONNECT.
func (n *Node) Connect() Error {
	if !n.scheduled {
		return ErrRadioNotInitialized
	}
	if !n.mac.State().Connect() {
		return ErrAlreadyConnected
	}
	return NoError
}

// Disconnect posts a disconnect request, draining one request per slot
// boundary, and blocks up to disconnectTimeout for it to take effect — or
// transitions immediately if fast-sync is enabled and the slave has not yet
// synced.
func (n *Node) Disconnect() Error {
	if n.mac.State().Link() != macpkg.LinkStateConnect {
		return ErrAlreadyDisconnected
	}
	if n.mac.FastSyncEnabled() && n.mac.State().Sync() == macpkg.SyncStateSyncing {
		n.mac.State().Disconnect()
		return NoError
	}

	if err := n.reqQueue.postDisconnect(); !err.ok() {
		return err
	}

	deadline := time.Now().Add(disconnectTimeout)
	for n.mac.State().Link() == macpkg.LinkStateConnect {
		if time.Now().After(deadline) {
			return ErrDisconnectTimeout
		}
		if !n.reqQueue.drainOne(n.applyThrottle, n.applyWriteRegister, n.applyReadRegister) {
			break
		}
		if n.mac.State().Link() == macpkg.LinkStateConnect {
			n.mac.State().Disconnect()
		}
	}
	return NoError
}

// Reset tears the node back down to its pre-ConfigNode state: the
// schedule, channel sequence, and connection table are cleared, but the
// driver and NodeConfig survive so the caller can reconfigure and Connect
// again.
func (n *Node) Reset() Error {
	n.mac = nil
	n.sched = nil
	n.hopping = nil
	n.syncTrk = nil
	n.rdo = nil
	n.conns = make(map[uint16]*Connection)
	n.order = nil
	n.reqQueue = newRequestQueue(defaultRequestQueueSize)
	n.scheduled = false
	return NoError
}

// Halt suppresses local transmissions without tearing the link down;
// Resume re-enables them.
func (n *Node) Halt() Error {
	if n.sched == nil {
		return ErrNotInit
	}
	n.sched.DisableTx()
	return NoError
}

func (n *Node) Resume() Error {
	if n.sched == nil {
		return ErrNotInit
	}
	n.sched.EnableTx()
	return NoError
}

// Callbacks exposes the deferred-callback queue the application worker
// drains (rx/tx success, tx fail, tx drop).
func (n *Node) Callbacks() *macpkg.CallbackQueue { return n.mac.Callbacks() }

// Connection looks up a previously added connection by id.
func (n *Node) Connection(id uint16) (*Connection, bool) {
	c, ok := n.conns[id]
	return c, ok
}

// Poll services exactly one slot boundary: it reads the PHY's outcome for
// the slot just completed, arbitrates which connection(s) that outcome and
// the next transmission belong to, folds the outcome into MAC state, drains
// at most one pending request, and arms the driver for the next slot.
func (n *Node) Poll() Error {
	if n.mac == nil {
		return ErrNotInit
	}

	sig := n.driver.LastSignal()
	ts := n.sched.CurrentTimeslot()

	for _, c := range n.order {
		c.mac.EnabledFlag = c.throttle.Tick()
	}

	var mainConn, autoConn *Connection
	if ts != nil && ts.MainConnectionCount > 0 {
		mainConn = n.resolveSlotConnection(ts.ConnectionMain[:ts.MainConnectionCount], ts.ConnectionMainPriority[:ts.MainConnectionCount], false)
	}
	if ts != nil && ts.AutoConnectionCount > 0 {
		autoConn = n.resolveSlotConnection(ts.ConnectionAutoReply[:ts.AutoConnectionCount], ts.ConnectionAutoPriority[:ts.AutoConnectionCount], true)
	}

	var mc, ac *macpkg.Connection
	if mainConn != nil {
		mc = mainConn.mac
	}
	if autoConn != nil {
		ac = autoConn.mac
	}
	n.mac.SetConnections(mc, ac)

	if mainConn != nil {
		n.deliverOutcome(mainConn, sig.Main, sig.Metrics, false)
	}
	if autoConn != nil {
		n.deliverOutcome(autoConn, sig.Auto, sig.Metrics, true)
	}

	n.reqQueue.drainOne(n.applyThrottle, n.applyWriteRegister, n.applyReadRegister)

	cmd := n.mac.AdvanceSlot()
	n.driver.Arm(cmd)
	return NoError
}

func (n *Node) resolveSlotConnection(slotConns []scheduler.Connection, priorities []uint8, auto bool) *Connection {
	cp := make([]connpriority.Connection, len(slotConns))
	for i, sc := range slotConns {
		cp[i] = sc.(*macpkg.Connection)
	}

	var idx uint8
	if auto {
		idx = connpriority.GetHighestAutoConnIndex(cp, priorities)
	} else {
		idx = connpriority.GetHighestMainConnIndex(cp, priorities)
	}
	if int(idx) >= len(slotConns) {
		return nil
	}
	target := slotConns[idx].(*macpkg.Connection)
	for _, c := range n.order {
		if c.mac == target {
			return c
		}
	}
	return nil
}

func (n *Node) deliverOutcome(c *Connection, sig phy.OutputSignal, metrics phy.FrameMetrics, auto bool) {
	var rx *xlayer.Descriptor
	c.lastRxDuplicate = false
	c.decodedConnIDSet = false

	target := c
	if sig == phy.SignalFrameReceived {
		d := c.mac.FreeRx.GetFreeNode()
		if d != nil {
			backing := c.mac.FreeRx.Backing(d)
			c.mac.HeaderRegistry.Deserialize(backing)
			d.SetReceivedPayload(backing, c.headerSize)
			if c.decodedConnIDSet {
				if resolved, ok := n.connectionByWireID(c.decodedConnID); ok {
					target = resolved
				}
			}
			rx = d
			target.stats.recordRxSuccess(n.hopping.Channel(), d.PayloadLen())
		}
	}
	dup := c.lastRxDuplicate

	var out macpkg.OutputSignal
	if auto {
		out = n.mac.ProcessAutoOutcome(target.mac, sig, rx, dup, metrics)
	} else {
		out = n.mac.ProcessMainOutcome(target.mac, sig, rx, dup, metrics)
	}

	switch out {
	case macpkg.SignalTxSuccess:
		target.stats.recordTxSuccess(n.hopping.Channel(), 0)
	case macpkg.SignalTxFail:
		target.stats.recordTxFail(n.hopping.Channel())
	case macpkg.SignalTxDrop:
		target.stats.recordTxDrop()
	}
	if metrics.CCATryCount > 0 {
		target.stats.recordCCA(n.hopping.Channel(), uint32(metrics.CCATryCount), 0, out == macpkg.SignalTxFail)
	}
}

// connectionByWireID finds the registered connection whose slot-selector id
// matches a decoded connection-id header field value, for multi-connection
// timeslot demux.
func (n *Node) connectionByWireID(id uint8) (*Connection, bool) {
	for _, cand := range n.order {
		if uint8(cand.id) == id {
			return cand, true
		}
	}
	return nil, false
}

// --- register/throttle request surface ---

func (n *Node) RequestWriteRegister(addr uint8, value uint16) Error {
	return n.reqQueue.postWriteRegister(addr, value)
}

func (n *Node) RequestReadRegister(addr uint8) (handle int, err Error) {
	return n.reqQueue.postReadRegister(addr)
}

func (n *Node) PollReadRegister(handle int) (value uint16, complete bool) {
	return n.reqQueue.pollReadRegister(handle)
}

func (n *Node) ClearWriteRegister(addr uint8) {
	n.reqQueue.clearWriteRegister(addr)
}

func (n *Node) RequestThrottleChange(connID uint16, activeRatio uint8) Error {
	return n.reqQueue.postThrottleChange(connID, activeRatio)
}

func (n *Node) applyThrottle(connID uint16, ratio uint8) {
	c, ok := n.conns[connID]
	if !ok {
		return
	}
	c.throttle.SetActiveRatio(ratio)
}

// applyWriteRegister and applyReadRegister are the façade's hook points for
// routing register transfers to a concrete radio; phy.Driver has no
// register surface of its own; a driver wanting this exercised implements
// it through its own out-of-band control path and the Node that owns it
// overrides these via a thin wrapper type.
func (n *Node) applyWriteRegister(addr uint8, value uint16) {}

func (n *Node) applyReadRegister(addr uint8) uint16 { return 0 }
