package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func countActive(t *Throttle) int {
	n := 0
	for i := uint8(0); i < t.PatternLen(); i++ {
		if t.Tick() {
			n++
		}
	}
	return n
}

func TestThrottleFullRatioAlwaysActive(t *testing.T) {
	th := NewThrottle()
	assert.Equal(t, uint8(1), th.PatternLen())
	assert.True(t, th.Tick())
}

func TestThrottleHalfRatioAlternates(t *testing.T) {
	th := NewThrottle()
	th.SetActiveRatio(50)
	assert.Equal(t, uint8(2), th.PatternLen())
	assert.Equal(t, 1, countActive(th))
}

func TestThrottleZeroRatioNeverActive(t *testing.T) {
	th := NewThrottle()
	th.SetActiveRatio(0)
	assert.Equal(t, 0, countActive(th))
}

func TestThrottleActiveCountMatchesReducedRatio(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ratio := uint8(rapid.IntRange(0, 100).Draw(t, "ratio"))
		th := NewThrottle()
		th.SetActiveRatio(ratio)

		g := gcd(ratio, 100)
		wantActive := int(ratio / g)
		wantLen := uint8(100 / g)

		assert.Equal(t, wantLen, th.PatternLen())
		assert.Equal(t, wantActive, countActive(th))
	})
}

func TestThrottlePatternRepeats(t *testing.T) {
	th := NewThrottle()
	th.SetActiveRatio(25)
	first := make([]bool, th.PatternLen())
	for i := range first {
		first[i] = th.Tick()
	}
	second := make([]bool, th.PatternLen())
	for i := range second {
		second[i] = th.Tick()
	}
	assert.Equal(t, first, second)
}
