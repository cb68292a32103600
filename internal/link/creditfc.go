package link

// CreditSkippedFramesThreshold is the number of consecutive times a
// zero-credit connection may be skipped before the MAC forces a send
// anyway, to probe the peer (CREDIT_FLOW_CTRL_SKIPPED_FRAMES_THRESHOLD in
// the source SDK).
const CreditSkippedFramesThreshold = 3

// notifyMissedCreditsHighConnExtraPoints mirrors
// NOTIFY_MISSED_CREDITS_HIGH_CONN_EXTRA_POINTS: the bonus the
// highest-priority connection gets toward auto-reply selection when it
// actually has data queued.
const notifyMissedCreditsHighConnExtraPoints = 3

// CreditFlowControl tracks, per connection, how many free receive slots the
// peer has last advertised, and how many times in a row this connection has
// been skipped for lack of credit.
type CreditFlowControl struct {
	Enabled bool

	creditsCount             uint8
	skippedFramesCount       uint8
	notifyMissedCreditsCount uint8
}

// NewCreditFlowControl constructs a disabled-by-default credit tracker.
func NewCreditFlowControl(enabled bool) *CreditFlowControl {
	return &CreditFlowControl{Enabled: enabled}
}

// CreditsCount returns the peer's last-advertised free-slot count.
func (c *CreditFlowControl) CreditsCount() uint8 { return c.creditsCount }

// SkippedFramesCount returns how many consecutive times this connection has
// been skipped for lack of credit.
func (c *CreditFlowControl) SkippedFramesCount() uint8 { return c.skippedFramesCount }

// SetPeerCredits records a credit value decoded from the peer's header.
func (c *CreditFlowControl) SetPeerCredits(credits uint8) {
	c.creditsCount = credits
}

// ConsumeCredit is called when this connection actually transmits,
// consuming one unit of peer credit (saturating at 0) and resetting the
// skip counter.
func (c *CreditFlowControl) ConsumeCredit() {
	if c.creditsCount > 0 {
		c.creditsCount--
	}
	c.skippedFramesCount = 0
}

// RecordSkip increments the skip counter, saturating at 255, used when the
// connection is passed over for lack of credit.
func (c *CreditFlowControl) RecordSkip() {
	if c.skippedFramesCount < 255 {
		c.skippedFramesCount++
	}
}

// LocalAdvertisedCredit computes the one-byte credit value to place in the
// outgoing header: min(freeSlots, 255).
func LocalAdvertisedCredit(freeSlots int) uint8 {
	if freeSlots > 255 {
		return 255
	}
	if freeSlots < 0 {
		return 0
	}
	return uint8(freeSlots)
}

// NotifyMissedCreditsCount returns the current aging score used for
// auto-reply connection selection.
func (c *CreditFlowControl) NotifyMissedCreditsCount() uint8 { return c.notifyMissedCreditsCount }

// AgeForAutoReplySelection increments the aging score by one tick (called
// once per candidate connection per slot) and, when hasData is true, adds
// the extra bonus awarded to a connection that actually has data ready.
func (c *CreditFlowControl) AgeForAutoReplySelection(hasData bool) {
	if c.notifyMissedCreditsCount < 255 {
		c.notifyMissedCreditsCount++
	}
	if hasData {
		bonus := uint16(c.notifyMissedCreditsCount) + notifyMissedCreditsHighConnExtraPoints
		if bonus > 255 {
			bonus = 255
		}
		c.notifyMissedCreditsCount = uint8(bonus)
	}
}

// ResetNotifyMissedCreditsCount clears the aging score once this
// connection has been selected for an auto-reply slot.
func (c *CreditFlowControl) ResetNotifyMissedCreditsCount() {
	c.notifyMissedCreditsCount = 0
}
