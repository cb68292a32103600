package link

// ddcmUnsyncOffsetPllCycles is the large fixed offset applied once a link
// has been in sustained CCA failure for sync_loss_max_duration_pll cycles,
// mirroring UNSYNC_TX_OFFSET_PLL_CYCLES in the source SDK.
const ddcmUnsyncOffsetPllCycles = 1024

// DDCM implements the distributed desync drift algorithm: it incrementally
// shifts local TX timing to escape zones of sustained CCA failure without
// losing the link. Semantics are reproduced field-for-field from
// core/wireless/link/link_ddcm.h in the original SDK.
type DDCM struct {
	enabled bool

	targetOffset           uint32
	maxTimeslotOffset      uint32
	pllCyclesSinceTx       uint32
	syncLossDurationPll    uint32
	syncLossMaxDurationPll uint32
	lastTxSuccessful       bool
}

// NewDDCM initializes the module. maxTimeslotOffset == 0 disables it, in
// which case GetOffset always returns 0.
func NewDDCM(maxTimeslotOffset uint32, syncLossMaxDurationPll uint32) *DDCM {
	return &DDCM{
		enabled:                maxTimeslotOffset != 0,
		maxTimeslotOffset:      maxTimeslotOffset,
		syncLossMaxDurationPll: syncLossMaxDurationPll,
	}
}

// Enabled reports whether the module is active.
func (d *DDCM) Enabled() bool { return d.enabled }

// TargetOffset exposes the current target offset, for invariant testing.
func (d *DDCM) TargetOffset() uint32 { return d.targetOffset }

// SyncLossDuration exposes the accumulated sync-loss duration, for
// invariant testing.
func (d *DDCM) SyncLossDuration() uint32 { return d.syncLossDurationPll }

// AccumulatePllCycles accumulates a slot's duration since the last TX
// update; call this once per slot regardless of whether that slot
// transmits.
func (d *DDCM) AccumulatePllCycles(pllCycles uint32) {
	if !d.enabled {
		return
	}
	d.pllCyclesSinceTx += pllCycles
}

// PostTxUpdate updates desync state after a TX attempt resolves.
func (d *DDCM) PostTxUpdate(ccaTryCount uint8, ccaRetryTime uint32, success bool) {
	if !d.enabled {
		return
	}

	if !success {
		d.syncLossDurationPll += d.pllCyclesSinceTx
	} else {
		if d.syncLossDurationPll > d.pllCyclesSinceTx {
			d.syncLossDurationPll -= d.pllCyclesSinceTx
		} else {
			d.syncLossDurationPll = 0
		}
		if d.targetOffset == 0 {
			if ccaTryCount > 0 {
				d.targetOffset = uint32(ccaTryCount-1)*ccaRetryTime + d.maxTimeslotOffset
			} else {
				d.targetOffset = 0
			}
		}
	}
	d.pllCyclesSinceTx = 0
	d.lastTxSuccessful = success
}

// GetOffset returns the desync offset to apply to the current timeslot and
// advances internal state accordingly.
func (d *DDCM) GetOffset() uint32 {
	if !d.enabled {
		return 0
	}

	if d.syncLossDurationPll >= d.syncLossMaxDurationPll {
		d.syncLossDurationPll = 0
		d.targetOffset = 0
		return ddcmUnsyncOffsetPllCycles
	}

	if !d.lastTxSuccessful {
		return 0
	}

	offset := d.targetOffset
	if offset > d.maxTimeslotOffset {
		offset = d.maxTimeslotOffset
	}
	d.targetOffset -= offset
	return offset
}
