package link

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnectStatusTransitionsToConnectedAfterThreshold(t *testing.T) {
	c := NewConnectStatus(3, 2)
	assert.Equal(t, ConnectStateUnknown, c.State())

	assert.False(t, c.OnFrameSuccess())
	assert.False(t, c.OnFrameSuccess())
	assert.True(t, c.OnFrameSuccess(), "third consecutive success should cross the threshold")
	assert.Equal(t, ConnectStateConnected, c.State())
}

func TestConnectStatusTransitionsToDisconnectedAfterThreshold(t *testing.T) {
	c := NewConnectStatus(1, 2)
	c.OnFrameSuccess()
	assert.Equal(t, ConnectStateConnected, c.State())

	assert.False(t, c.OnFrameFailure())
	assert.True(t, c.OnFrameFailure())
	assert.Equal(t, ConnectStateDisconnected, c.State())
}

func TestConnectStatusSuccessResetsFailureStreak(t *testing.T) {
	c := NewConnectStatus(5, 2)
	c.OnFrameFailure()
	c.OnFrameSuccess()
	// A single failure after the reset should not immediately disconnect.
	assert.False(t, c.OnFrameFailure())
	assert.Equal(t, ConnectStateUnknown, c.State())
}

func TestConnectStatusNoSpuriousRetransitionOnceConnected(t *testing.T) {
	c := NewConnectStatus(1, 5)
	c.OnFrameSuccess()
	assert.False(t, c.OnFrameSuccess(), "already connected: repeated success reports no transition")
}
