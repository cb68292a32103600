package mac

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kg2e0-wps/wps/internal/link"
	"github.com/kg2e0-wps/wps/internal/phy"
	"github.com/kg2e0-wps/wps/internal/scheduler"
	"github.com/kg2e0-wps/wps/internal/xlayer"
)

func newTestMac(t *testing.T, mainConn *Connection) *Mac {
	t.Helper()

	schedule := scheduler.Schedule{
		Timeslots: []*scheduler.Timeslot{
			{
				ConnectionMain:      [scheduler.MaxConnectionsPerSlot]scheduler.Connection{mainConn},
				MainConnectionCount: 1,
				DurationPllCycles:   1000,
			},
		},
	}

	m := New(Config{
		IsSlave:              true,
		Scheduler:            scheduler.New(schedule, 0x1),
		Hopping:              link.NewChannelHopping([]uint8{1, 2, 3}, 7, false),
		SyncTracker:          link.NewSyncTracker(true, link.SleepLevelIdle, 8, 4, link.ISIMitigationNone, 0),
		RDO:                  link.NewRDO(true, 5, 100),
		CallbackQueueSize:    8,
		FrameLostMaxDuration: 3,
	})
	m.State().Init()
	m.State().Connect()
	m.SetConnections(mainConn, nil)
	return m
}

func newMacTestConnection() *Connection {
	return &Connection{
		ID:           1,
		SourceAddr:   0x99,
		EnabledFlag:  true,
		FrameLostMax: 3,
		TxQueue:      xlayer.NewQueue(4),
		RxQueue:      xlayer.NewQueue(4),
		FreeTx:       xlayer.NewPool(4, 64),
		FreeRx:       xlayer.NewPool(4, 64),
		Arena:        xlayer.NewArena(4, 64),
		SAW:          link.NewSAW(true, 0, 3),
		DDCM:         link.NewDDCM(50, 1000),
		CreditFC:     link.NewCreditFlowControl(true),
	}
}

func TestProcessMainOutcomeFrameReceivedDeliversAndResyncs(t *testing.T) {
	conn := newMacTestConnection()
	m := newTestMac(t, conn)
	m.State().OnSyncLost() // force SYNCING so we can observe the transition back

	rx := conn.FreeRx.GetFreeNode()
	var delivered *xlayer.Descriptor
	conn.OnRxSuccess = func(d *xlayer.Descriptor) { delivered = d }

	sig := m.ProcessMainOutcome(conn, phy.SignalFrameReceived, rx, false, phy.FrameMetrics{})
	assert.Equal(t, SignalFrameRxSuccess, sig)

	for _, cb := range m.Callbacks().Drain() {
		cb.Fn()
	}
	assert.Same(t, rx, delivered)
	assert.Equal(t, SyncStateSynced, m.State().Sync())
}

func TestProcessMainOutcomeDuplicateIsSuppressed(t *testing.T) {
	conn := newMacTestConnection()
	m := newTestMac(t, conn)

	sig := m.ProcessMainOutcome(conn, phy.SignalFrameReceived, nil, true, phy.FrameMetrics{})
	assert.Equal(t, SignalEmpty, sig)
	assert.Equal(t, 0, m.Callbacks().Len())
}

func TestProcessMainOutcomeNilConnectionIsEmpty(t *testing.T) {
	m := newTestMac(t, newMacTestConnection())
	assert.Equal(t, SignalEmpty, m.ProcessMainOutcome(nil, phy.SignalFrameReceived, nil, false, phy.FrameMetrics{}))
}

func TestProcessMainOutcomeFrameLostTripsMismatchAtThreshold(t *testing.T) {
	conn := newMacTestConnection()
	m := newTestMac(t, conn)

	for i := 0; i < conn.FrameLostMax-1; i++ {
		sig := m.ProcessMainOutcome(conn, phy.SignalFrameLost, nil, false, phy.FrameMetrics{})
		assert.Equal(t, SignalFrameRxFail, sig)
		assert.False(t, m.scheduler.Mismatch())
	}

	m.ProcessMainOutcome(conn, phy.SignalFrameLost, nil, false, phy.FrameMetrics{})
	assert.True(t, m.scheduler.Mismatch())
}

func TestProcessMainOutcomeTxSuccessDequeuesAndReleases(t *testing.T) {
	conn := newMacTestConnection()
	m := newTestMac(t, conn)

	d := conn.FreeTx.GetFreeNode()
	d.HeaderMemoryBegin = conn.Arena.Reserve(d.MaxFrameSize)
	conn.TxQueue.Enqueue(d)
	usedBefore := conn.Arena.Used()

	sig := m.ProcessMainOutcome(conn, phy.SignalFrameSentAck, nil, false, phy.FrameMetrics{})
	assert.Equal(t, SignalTxSuccess, sig)
	assert.True(t, conn.TxQueue.IsEmpty())
	assert.Less(t, conn.Arena.Used(), usedBefore)
}

func TestProcessMainOutcomeTxFailRetriesThenDrops(t *testing.T) {
	conn := newMacTestConnection()
	m := newTestMac(t, conn)

	d := conn.FreeTx.GetFreeNode()
	d.HeaderMemoryBegin = conn.Arena.Reserve(d.MaxFrameSize)
	conn.TxQueue.Enqueue(d)

	var dropped *xlayer.Descriptor
	conn.OnTxDrop = func(d *xlayer.Descriptor) { dropped = d }

	sig := m.ProcessMainOutcome(conn, phy.SignalFrameSentNack, nil, false, phy.FrameMetrics{})
	assert.Equal(t, SignalTxFail, sig)
	assert.False(t, conn.TxQueue.IsEmpty(), "frame stays queued until the retry cap is hit")

	sig = m.ProcessMainOutcome(conn, phy.SignalFrameSentNack, nil, false, phy.FrameMetrics{})
	assert.Equal(t, SignalTxFail, sig)

	sig = m.ProcessMainOutcome(conn, phy.SignalFrameSentNack, nil, false, phy.FrameMetrics{})
	assert.Equal(t, SignalTxDrop, sig)
	assert.True(t, conn.TxQueue.IsEmpty())

	for _, cb := range m.Callbacks().Drain() {
		cb.Fn()
	}
	assert.Same(t, d, dropped)
}

func TestAdvanceSlotAccumulatesSleepAndAdvancesChannel(t *testing.T) {
	conn := newMacTestConnection()
	conn.DDCM = link.NewDDCM(50, 1000)
	m := newTestMac(t, conn)
	m.mainConnection = conn

	startChannel := m.hopping.Channel()
	cmd := m.AdvanceSlot()

	assert.Equal(t, uint32(1000), m.scheduler.SleepTime())
	assert.True(t, cmd.TxEnabled)
	assert.NotEqual(t, startChannel, cmd.Channel, "a 3-entry sequential sequence always moves on Advance")
}

func TestAdvanceSlotDisconnectedLeavesTxDisabled(t *testing.T) {
	conn := newMacTestConnection()
	m := newTestMac(t, conn)
	m.State().Disconnect()

	cmd := m.AdvanceSlot()
	assert.False(t, cmd.TxEnabled)
}

func TestCurrentTimeOverrideIsRespected(t *testing.T) {
	old := currentTime
	defer func() { currentTime = old }()

	fixed := time.Unix(1000, 0)
	currentTime = func() time.Time { return fixed }
	assert.Equal(t, fixed, currentTime())
}
