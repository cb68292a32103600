package link

// CCAFailAction selects what happens once every CCA probe in a budget has
// failed.
type CCAFailAction uint8

const (
	// CCAForceTx transmits anyway once the probe budget is exhausted.
	CCAForceTx CCAFailAction = iota
	// CCADrop drops the frame (still subject to SAW retry/deadline) once
	// the probe budget is exhausted.
	CCADrop
)

// CCADisableThreshold is the sentinel threshold value meaning "CCA disabled"
// (mirrors the source's convention of a reserved threshold rather than a
// separate disabled flag on the wire/config path).
const CCADisableThreshold = 0xFF

// CCA implements clear-channel-assessment back-off policy: up to
// MaxTryCount probes of OnTimePllCycles each, spaced by RetryTimePllCycles,
// before FailAction decides the outcome.
type CCA struct {
	Threshold         uint8
	RetryTimePllCycles uint32
	OnTimePllCycles    uint32
	MaxTryCount        uint8
	FailAction         CCAFailAction
	enabled            bool
}

// NewCCA constructs a CCA policy. maxTryCount == 0 always yields disabled
// semantics regardless of threshold, per spec boundary behavior.
func NewCCA(threshold uint8, retryTime, onTime uint32, maxTryCount uint8, failAction CCAFailAction, enabled bool) *CCA {
	c := &CCA{
		Threshold:          threshold,
		RetryTimePllCycles: retryTime,
		OnTimePllCycles:    onTime,
		MaxTryCount:        maxTryCount,
		FailAction:         failAction,
		enabled:            enabled && maxTryCount > 0 && threshold != CCADisableThreshold,
	}
	return c
}

// Enabled reports whether CCA probing is active.
func (c *CCA) Enabled() bool { return c.enabled }

// Outcome is the per-attempt result of running the configured CCA policy,
// as determined by the PHY's probe results for this slot.
type Outcome struct {
	Attempts  int  // number of probes performed before resolving
	Passed    bool // whether a probe passed within the budget
	ShouldTx  bool // whether the frame should actually be transmitted
}

// Evaluate decides the outcome given a caller-supplied sequence of probe
// results (true == clear). The PHY is the one actually sampling the
// channel; this function only applies policy to the samples it's given.
func (c *CCA) Evaluate(probesClear []bool) Outcome {
	if !c.enabled {
		return Outcome{ShouldTx: true}
	}

	attempts := 0
	for _, clear := range probesClear {
		attempts++
		if clear {
			return Outcome{Attempts: attempts, Passed: true, ShouldTx: true}
		}
		if attempts >= int(c.MaxTryCount) {
			break
		}
	}

	return Outcome{
		Attempts: attempts,
		Passed:   false,
		ShouldTx: c.FailAction == CCAForceTx,
	}
}
