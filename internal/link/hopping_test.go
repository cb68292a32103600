package link

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestHoppingSequentialAdvanceWraps(t *testing.T) {
	h := NewChannelHopping([]uint8{3, 7, 11}, 0, false)
	assert.Equal(t, uint8(3), h.Channel())
	h.Advance()
	assert.Equal(t, uint8(7), h.Channel())
	h.Advance()
	assert.Equal(t, uint8(11), h.Channel())
	h.Advance()
	assert.Equal(t, uint8(3), h.Channel())
}

func TestHoppingSingleChannelNeverMoves(t *testing.T) {
	h := NewChannelHopping([]uint8{5}, 0, false)
	assert.Equal(t, 1, h.ChannelCount())
	for i := 0; i < 5; i++ {
		h.Advance()
		assert.Equal(t, uint8(5), h.Channel())
	}
}

func TestHoppingResyncWrapsToSequenceLength(t *testing.T) {
	h := NewChannelHopping([]uint8{1, 2, 3, 4}, 0, false)
	h.Resync(9)
	assert.Equal(t, 1, h.Index()) // 9 % 4 == 1
}

func TestHoppingRandomModeDeterministicGivenSameNetworkID(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(2, 16).Draw(t, "n")
		seq := make([]uint8, n)
		for i := range seq {
			seq[i] = uint8(i)
		}
		netID := uint8(rapid.IntRange(0, 255).Draw(t, "netID"))

		a := NewChannelHopping(seq, netID, true)
		b := NewChannelHopping(seq, netID, true)

		steps := rapid.IntRange(0, 30).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			a.Advance()
			b.Advance()
			assert.Equal(t, a.Index(), b.Index())
			assert.Less(t, a.Index(), n)
		}
	})
}

func TestHoppingChannelCountDistinct(t *testing.T) {
	h := NewChannelHopping([]uint8{1, 1, 2, 2, 3}, 0, false)
	assert.Equal(t, 3, h.ChannelCount())
	assert.Equal(t, 5, h.Len())
}
