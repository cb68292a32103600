package link

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunningStatTracksMinMaxMean(t *testing.T) {
	var r RunningStat
	r.Update(-80)
	r.Update(-60)
	r.Update(-70)

	assert.Equal(t, int16(-80), r.Min)
	assert.Equal(t, int16(-60), r.Max)
	assert.Equal(t, int16(-70), r.Last)
	assert.InDelta(t, -70.0, r.Mean(), 0.001)
}

func TestRunningStatEmptyMeanIsZero(t *testing.T) {
	var r RunningStat
	assert.Equal(t, 0.0, r.Mean())
}

func TestLQIUpdateOnRxFillsGlobalAndPerChannel(t *testing.T) {
	l := NewLQI()
	l.UpdateOnRx(3, -70, -10, 5)
	l.UpdateOnRx(3, -72, -12, 6)
	l.UpdateOnRx(7, -90, -20, -1)

	assert.Equal(t, uint32(3), l.RssiRaw.Count)
	assert.NotNil(t, l.Channel(3))
	assert.Equal(t, uint32(2), l.Channel(3).Count)
	assert.NotNil(t, l.Channel(7))
	assert.Equal(t, uint32(1), l.Channel(7).Count)
}

func TestLQIUnknownChannelReturnsNil(t *testing.T) {
	l := NewLQI()
	assert.Nil(t, l.Channel(1))
}
