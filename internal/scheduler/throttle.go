package scheduler

// PatternThrottleGranularity bounds the length of an active/inactive airtime
// pattern, mirroring WPS_PATTERN_THROTTLE_GRANULARITY.
const PatternThrottleGranularity = 100

const percentDenominator = 100

// Throttle spreads a connection's airtime across a repeating bit pattern so
// it transmits only activeRatio percent of its scheduled slots, distributing
// the active slots as evenly as possible rather than bursting them at the
// front of the pattern.
type Throttle struct {
	pattern      [PatternThrottleGranularity]bool
	patternLen   uint8
	currentCount uint8
}

// NewThrottle builds a throttle with every slot active (100%), matching the
// scheduler's un-throttled default.
func NewThrottle() *Throttle {
	t := &Throttle{}
	t.SetActiveRatio(percentDenominator)
	return t
}

// SetActiveRatio regenerates the pattern for a new active-percentage value
// (0-100) and resets the pattern cursor.
func (t *Throttle) SetActiveRatio(activeRatioPercent uint8) {
	t.patternLen = generateActivePattern(&t.pattern, activeRatioPercent)
	t.currentCount = 0
}

// PatternLen returns the number of slots in the generated pattern.
func (t *Throttle) PatternLen() uint8 { return t.patternLen }

// Tick reports whether the current position of the repeating pattern is
// active, then advances to the next position.
func (t *Throttle) Tick() bool {
	if t.patternLen == 0 {
		return false
	}
	active := t.pattern[t.currentCount]
	t.currentCount = (t.currentCount + 1) % t.patternLen
	return active
}

// gcd returns the greatest common divisor of a and b, used to reduce an
// active-ratio percentage to its lowest-terms active/total slot counts.
func gcd(a, b uint8) uint8 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// generateActivePattern fills pattern with a bit sequence containing
// exactly activeRatioPercent/gcd(activeRatioPercent,100) active slots out of
// 100/gcd(activeRatioPercent,100) total, spread evenly across the pattern
// rather than clustered, and returns the pattern's total length.
func generateActivePattern(pattern *[PatternThrottleGranularity]bool, activeRatioPercent uint8) uint8 {
	currentGcd := gcd(activeRatioPercent, percentDenominator)
	activeElements := activeRatioPercent / currentGcd
	totalNumberOfVal := percentDenominator / currentGcd

	for i := uint8(0); i < totalNumberOfVal; i++ {
		pattern[i] = false
	}

	for i := uint16(0); i < uint16(activeElements); i++ {
		pos := (i * uint16(totalNumberOfVal)) / uint16(activeElements)
		pattern[pos%uint16(totalNumberOfVal)] = true
	}

	return totalNumberOfVal
}
