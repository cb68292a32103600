package headerproto

import (
	"testing"
	"time"

	"github.com/kg2e0-wps/wps/internal/link"
	"github.com/stretchr/testify/assert"
)

func TestTimeslotSAWPacksIndexAndBit(t *testing.T) {
	saw := link.NewSAW(true, time.Second, 3)
	saw.OnTxSuccess() // txBit now 1

	f := TimeslotSAW(saw, func() int { return 5 }, func(int) {}, func() {})
	buf := make([]byte, 1)
	f.Send(NewCursor(buf))
	assert.Equal(t, byte(0x85), buf[0]) // bit7=1, index=5
}

func TestTimeslotSAWReceiveSignalsMismatchAndDuplicate(t *testing.T) {
	saw := link.NewSAW(true, 0, 0)
	saw.AcceptRx(0) // last-accepted bit is 0

	var mismatchIdx = -1
	var duplicate bool
	f := TimeslotSAW(saw, func() int { return 5 }, func(idx int) { mismatchIdx = idx }, func() { duplicate = true })

	buf := []byte{(0 << 7) | 6} // saw bit 0 (dup), index 6 (mismatch vs expected 5)
	f.Recv(NewCursor(buf))

	assert.Equal(t, 6, mismatchIdx)
	assert.True(t, duplicate)
}

func TestChannelIndexSendAndResync(t *testing.T) {
	hop := link.NewChannelHopping([]uint8{1, 2, 3}, 0, false)
	hop.Advance() // now at index 1 (channel 2)

	f := ChannelIndex(hop, nil)
	buf := make([]byte, 1)
	f.Send(NewCursor(buf))
	assert.Equal(t, uint8(1), buf[0])

	var resynced = -1
	f2 := ChannelIndex(hop, func(idx int) { resynced = idx })
	f2.Recv(NewCursor([]byte{2}))
	assert.Equal(t, 2, resynced)
}

func TestRDOOffsetRoundtrip(t *testing.T) {
	tx := link.NewRDO(true, 10, 1000)
	tx.Advance()
	rx := link.NewRDO(true, 10, 1000)

	f := RDOOffset(tx)
	buf := make([]byte, 2)
	f.Send(NewCursor(buf))

	fRx := RDOOffset(rx)
	fRx.Recv(NewCursor(buf))

	assert.Equal(t, tx.Counter(), rx.Counter())
}

func TestConnectionIDOutOfRangeDefaultsToZero(t *testing.T) {
	var got uint8 = 99
	f := ConnectionID(4, func() uint8 { return 0 }, func(id uint8) { got = id })
	f.Recv(NewCursor([]byte{200}))
	assert.Equal(t, uint8(0), got)
}

func TestConnectionIDInRangePassesThrough(t *testing.T) {
	var got uint8
	f := ConnectionID(4, func() uint8 { return 0 }, func(id uint8) { got = id })
	f.Recv(NewCursor([]byte{2}))
	assert.Equal(t, uint8(2), got)
}

func TestCreditFCSendsClampedAdvertisement(t *testing.T) {
	cfc := link.NewCreditFlowControl(true)
	f := CreditFC(cfc, func() int { return 9000 })
	buf := make([]byte, 1)
	f.Send(NewCursor(buf))
	assert.Equal(t, byte(255), buf[0])
}

func TestCreditFCReceiveStoresPeerCredit(t *testing.T) {
	cfc := link.NewCreditFlowControl(true)
	f := CreditFC(cfc, func() int { return 0 })
	f.Recv(NewCursor([]byte{42}))
	assert.Equal(t, uint8(42), cfc.CreditsCount())
}

func TestRangingPhasesFourPhasesRoundtrip(t *testing.T) {
	samples := []int16{10, -20, 100, -120}
	f := RangingPhases(RangingModeFourPhases, func() uint8 { return 4 }, func() []int16 { return samples }, nil)
	assert.Equal(t, 5, f.Size)
	buf := make([]byte, f.Size)
	f.Send(NewCursor(buf))

	var gotCount uint8
	var gotPhases []int16
	fRx := RangingPhases(RangingModeFourPhases, nil, nil, func(count uint8, phases []int16) {
		gotCount = count
		gotPhases = phases
	})
	fRx.Recv(NewCursor(buf))

	assert.Equal(t, uint8(4), gotCount)
	assert.Equal(t, samples, gotPhases)
}

func TestRangingPhasesOffHasZeroSize(t *testing.T) {
	f := RangingPhases(RangingModeOff, nil, nil, nil)
	assert.Equal(t, 0, f.Size)
}
