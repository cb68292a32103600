package connpriority

import (
	"testing"

	"github.com/kg2e0-wps/wps/internal/link"
	"github.com/stretchr/testify/assert"
)

type fakeConn struct {
	enabled bool
	hasData bool
	cfc     *link.CreditFlowControl
}

func (f *fakeConn) Enabled() bool                               { return f.enabled }
func (f *fakeConn) HasQueuedFrame() bool                         { return f.hasData }
func (f *fakeConn) CreditFlowControl() *link.CreditFlowControl { return f.cfc }

func newConn(enabled, hasData bool, cfc *link.CreditFlowControl) *fakeConn {
	return &fakeConn{enabled: enabled, hasData: hasData, cfc: cfc}
}

func TestGetHighestMainConnIndexNoCreditsFallsBackToPriority(t *testing.T) {
	disabled := link.NewCreditFlowControl(false)
	conns := []Connection{
		newConn(true, true, disabled),
		newConn(true, true, link.NewCreditFlowControl(false)),
	}
	priorities := []uint8{5, 1}
	assert.Equal(t, uint8(1), GetHighestMainConnIndex(conns, priorities))
}

func TestGetHighestMainConnIndexPrefersConnectionWithCredit(t *testing.T) {
	highPrioNoCredit := link.NewCreditFlowControl(true) // credits_count == 0
	lowPrioWithCredit := link.NewCreditFlowControl(true)
	lowPrioWithCredit.SetPeerCredits(5)

	conns := []Connection{
		newConn(true, true, highPrioNoCredit),
		newConn(true, true, lowPrioWithCredit),
	}
	priorities := []uint8{0, 1} // conn 0 has the higher (numerically lower) priority

	assert.Equal(t, uint8(1), GetHighestMainConnIndex(conns, priorities))
}

func TestGetHighestMainConnIndexUsesSkipThresholdEscapeHatch(t *testing.T) {
	noCreditButSkippedEnough := link.NewCreditFlowControl(true)
	for i := 0; i < link.CreditSkippedFramesThreshold; i++ {
		noCreditButSkippedEnough.RecordSkip()
	}
	otherNoCredit := link.NewCreditFlowControl(true)

	conns := []Connection{
		newConn(true, true, noCreditButSkippedEnough),
		newConn(true, true, otherNoCredit),
	}
	priorities := []uint8{0, 1}

	assert.Equal(t, uint8(0), GetHighestMainConnIndex(conns, priorities))
}

func TestGetHighestAutoConnIndexFavorsLongestWaiting(t *testing.T) {
	stale := link.NewCreditFlowControl(true)
	for i := 0; i < 10; i++ {
		stale.AgeForAutoReplySelection(false)
	}
	fresh := link.NewCreditFlowControl(true)

	conns := []Connection{
		newConn(true, false, fresh),
		newConn(true, false, stale),
	}
	priorities := []uint8{0, 1}

	assert.Equal(t, uint8(1), GetHighestAutoConnIndex(conns, priorities))
}

func TestGetHighestAutoConnIndexNoCreditFlowControlUsesPriority(t *testing.T) {
	conns := []Connection{
		newConn(true, true, link.NewCreditFlowControl(false)),
		newConn(true, true, link.NewCreditFlowControl(false)),
	}
	priorities := []uint8{3, 0}
	assert.Equal(t, uint8(1), GetHighestAutoConnIndex(conns, priorities))
}
