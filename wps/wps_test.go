package wps

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kg2e0-wps/wps/internal/link"
	"github.com/kg2e0-wps/wps/internal/phy"
)

// fakeDriver is a scriptable phy.Driver: it returns one queued Signal per
// LastSignal call (repeating the final one once exhausted) and records
// every armed Command for assertions.
type fakeDriver struct {
	signals []phy.Signal
	idx     int
	armed   []phy.Command
}

func (d *fakeDriver) Arm(cmd phy.Command) { d.armed = append(d.armed, cmd) }

func (d *fakeDriver) LastSignal() phy.Signal {
	if len(d.signals) == 0 {
		return phy.Signal{}
	}
	if d.idx >= len(d.signals) {
		return d.signals[len(d.signals)-1]
	}
	s := d.signals[d.idx]
	d.idx++
	return s
}

func newTestNode(t *testing.T) (*Node, *fakeDriver, *Connection) {
	t.Helper()

	driver := &fakeDriver{}
	node := NewNode(driver, NodeConfig{
		LocalAddress: 0x10,
		NetworkID:    1,
		IsSlave:      false,
	})

	assert.True(t, node.ConfigNetworkChannelSequence(ChannelSequenceConfig{Sequence: []uint8{1, 2, 3}}).ok())

	conn, err := node.AddConnection(ConnectionConfig{
		ID:             1,
		SourceAddress:  0x10,
		IsMain:         true,
		MaxPayloadSize: 32,
		HeaderSize:     4,
		TxQueueSize:    4,
		RxQueueSize:    4,
		AckEnabled:     true,
		SAWEnabled:     true,
		SAWRetryCap:    3,
		FrameLostMax:   3,
	})
	assert.True(t, err.ok())

	err = node.ConfigNetworkSchedule(ScheduleConfig{
		Slots: []SlotConfig{
			{
				MainConnIDs:       []uint16{1},
				MainPriorities:    []uint8{0},
				DurationPllCycles: 1000,
			},
		},
	})
	assert.True(t, err.ok())

	return node, driver, conn
}

func TestNodeConnectDisconnectLifecycle(t *testing.T) {
	node, _, _ := newTestNode(t)

	assert.True(t, node.Connect().ok())
	assert.Equal(t, ErrAlreadyConnected, node.Connect())

	assert.True(t, node.Disconnect().ok())
	assert.Equal(t, ErrAlreadyDisconnected, node.Disconnect())
}

func TestNodeAddConnectionRejectsDuplicateID(t *testing.T) {
	node, _, _ := newTestNode(t)

	_, err := node.AddConnection(ConnectionConfig{ID: 1, MaxPayloadSize: 8, HeaderSize: 2, TxQueueSize: 2, RxQueueSize: 2})
	assert.Equal(t, ErrAlreadyConnected, err)
}

func TestConnectionSendThenPollArmsNextCommand(t *testing.T) {
	node, driver, conn := newTestNode(t)
	assert.True(t, node.Connect().ok())

	slot, err := conn.GetFreeSlot(4)
	assert.True(t, err.ok())
	copy(slot, []byte("ping"))
	assert.True(t, conn.Send(slot).ok())

	assert.True(t, node.Poll().ok())
	assert.Len(t, driver.armed, 1)
	assert.True(t, driver.armed[0].TxEnabled)
}

func TestConnectionGetFreeSlotRejectsOversizePayload(t *testing.T) {
	_, _, conn := newTestNode(t)

	_, err := conn.GetFreeSlot(1000)
	assert.Equal(t, ErrWrongTxSize, err)
}

func TestConnectionSendWithoutReservationFails(t *testing.T) {
	_, _, conn := newTestNode(t)

	err := conn.Send([]byte("oops"))
	assert.Equal(t, ErrQueueEmpty, err)
}

func TestConnectionACKToggleRoundTrip(t *testing.T) {
	_, _, conn := newTestNode(t)

	assert.True(t, conn.EnableACK().ok())
	assert.Equal(t, ErrAckDisabled, conn.DisableACK())

	assert.True(t, conn.DisableSAWArq().ok())
	assert.True(t, conn.DisableACK().ok())
	assert.False(t, conn.ackEnabled)
}

func TestConnectionCCAToggleRoundTrip(t *testing.T) {
	_, _, conn := newTestNode(t)

	assert.True(t, conn.EnableCCA(10, 100, 50, 3, link.CCADrop).ok())
	assert.True(t, conn.mac.CCA.Enabled())

	assert.True(t, conn.DisableCCA().ok())
	assert.False(t, conn.mac.CCA.Enabled())
}

func TestConnectionEnableCCARejectsZeroTryCount(t *testing.T) {
	_, _, conn := newTestNode(t)

	err := conn.EnableCCA(10, 100, 50, 0, link.CCADrop)
	assert.Equal(t, ErrInvalidCCASettings, err)
}

func TestNodeHaltResumeSucceedOnScheduledNode(t *testing.T) {
	node, _, _ := newTestNode(t)
	assert.True(t, node.Connect().ok())

	assert.True(t, node.Halt().ok())
	assert.True(t, node.Resume().ok())
}

func TestConnectionReadReturnsReceivedPayload(t *testing.T) {
	node, driver, conn := newTestNode(t)
	assert.True(t, node.Connect().ok())

	d := conn.mac.FreeRx.GetFreeNode()
	assert.NotNil(t, d)
	backing := conn.mac.FreeRx.Backing(d)
	backing[conn.headerSize] = 2
	backing[conn.headerSize+1] = 0xAB
	backing[conn.headerSize+2] = 0xCD
	conn.mac.FreeRx.Release(d)

	driver.signals = []phy.Signal{{Main: phy.SignalFrameReceived}}
	assert.True(t, node.Poll().ok())

	payload, err := conn.Read()
	assert.True(t, err.ok())
	assert.Equal(t, []byte{0xAB, 0xCD}, payload)
	assert.True(t, conn.ReadDone().ok())
}

func TestNodeRequestReadRegisterPollsAfterDrain(t *testing.T) {
	node, _, _ := newTestNode(t)

	handle, err := node.RequestReadRegister(0x05)
	assert.True(t, err.ok())

	_, complete := node.PollReadRegister(handle)
	assert.False(t, complete)

	assert.True(t, node.Poll().ok())

	_, complete = node.PollReadRegister(handle)
	assert.True(t, complete)
}
