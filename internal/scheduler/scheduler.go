// Package scheduler walks a statically configured TDMA schedule, advancing
// a current-timeslot cursor one active slot at a time and accumulating the
// sleep budget owed before the next MAC wake-up.
package scheduler

import "github.com/kg2e0-wps/wps/internal/link"

// Scheduler drives a Schedule's cursor and the sleep-cycle bookkeeping
// between wake-ups.
type Scheduler struct {
	schedule Schedule

	currentTimeSlotNum int
	currentSleepLvl    link.SleepLevel
	nextSleepLvl       link.SleepLevel
	sleepCycles        uint32

	localAddr uint16

	txDisabled      bool
	timeslotMismatch bool
}

// New constructs a scheduler over an already-populated schedule.
func New(schedule Schedule, localAddr uint16) *Scheduler {
	return &Scheduler{schedule: schedule, localAddr: localAddr}
}

// Reset clears the schedule and all cursor/sleep state, as if the scheduler
// had just been constructed with an empty schedule.
func (s *Scheduler) Reset() {
	s.schedule = Schedule{}
	s.currentTimeSlotNum = 0
	s.sleepCycles = 0
	s.txDisabled = false
}

// EnableTx re-enables local transmissions after DisableTx.
func (s *Scheduler) EnableTx() { s.txDisabled = false }

// DisableTx suppresses local transmissions; slots whose only main
// connection originates locally are then skipped over by
// IncrementTimeSlot as if empty.
func (s *Scheduler) DisableTx() { s.txDisabled = true }

// SetTimeSlotIndex forces the current timeslot cursor, used when resyncing
// to a peer's observed slot position.
func (s *Scheduler) SetTimeSlotIndex(i int) { s.currentTimeSlotNum = i }

// CurrentTimeslot returns the timeslot the cursor currently points to, or
// nil if the schedule is empty.
func (s *Scheduler) CurrentTimeslot() *Timeslot {
	if len(s.schedule.Timeslots) == 0 {
		return nil
	}
	return s.schedule.Timeslots[s.currentTimeSlotNum]
}

// PreviousTimeslot returns the timeslot immediately before the cursor,
// wrapping to the last slot when the cursor sits at index 0.
func (s *Scheduler) PreviousTimeslot() *Timeslot {
	if len(s.schedule.Timeslots) == 0 {
		return nil
	}
	i := s.currentTimeSlotNum - 1
	if i < 0 {
		i = len(s.schedule.Timeslots) - 1
	}
	return s.schedule.Timeslots[i]
}

// TotalTimeslotCount returns the number of slots in the schedule.
func (s *Scheduler) TotalTimeslotCount() int { return len(s.schedule.Timeslots) }

// CurrentTimeSlotIndex returns the cursor's current index.
func (s *Scheduler) CurrentTimeSlotIndex() int { return s.currentTimeSlotNum }

// SleepTime returns the accumulated sleep budget, in PLL cycles, owed
// before the MAC should next wake. It is reset by ResetSleepTime and
// accumulates across successive calls to IncrementTimeSlot.
func (s *Scheduler) SleepTime() uint32 { return s.sleepCycles }

// ResetSleepTime zeroes the accumulated sleep budget. Must be called
// before the first IncrementTimeSlot of a new wake computation.
func (s *Scheduler) ResetSleepTime() { s.sleepCycles = 0 }

// SetFirstTimeSlot rewinds the cursor to the slot just before the first
// one, so the next IncrementTimeSlot lands on index 0.
func (s *Scheduler) SetFirstTimeSlot() {
	if len(s.schedule.Timeslots) > 1 {
		s.SetTimeSlotIndex(len(s.schedule.Timeslots) - 1)
	}
}

// SetMismatch flags that the last observed slot position did not match the
// locally predicted one (a resync-worthy event the MAC surfaces upward).
func (s *Scheduler) SetMismatch() { s.timeslotMismatch = true }

// Mismatch reports and does not clear the mismatch flag; callers clear it
// implicitly by calling IncrementTimeSlot, which resets it at the start of
// every cycle.
func (s *Scheduler) Mismatch() bool { return s.timeslotMismatch }

// IncrementTimeSlot advances the cursor to the next non-empty slot,
// accumulating the duration of the slot it leaves and of every skipped slot
// into the sleep budget. It returns how many slots were advanced over
// (always >= 1 when the schedule is non-empty); when every slot is empty it
// stops after one full cycle, back at the starting slot. Skipped slots are
// those with no main connection, or whose sole local main connection is
// silenced by DisableTx.
func (s *Scheduler) IncrementTimeSlot() int {
	incCount := 0
	s.timeslotMismatch = false

	if len(s.schedule.Timeslots) == 0 {
		return incCount
	}

	i := s.currentTimeSlotNum
	n := len(s.schedule.Timeslots)

	s.currentSleepLvl = s.schedule.Timeslots[i].SleepLevel
	for {
		s.sleepCycles += s.schedule.Timeslots[i].DurationPllCycles
		i = (i + 1) % n
		incCount++
		if incCount >= n || !s.schedule.Timeslots[i].isEmpty(s.txDisabled, s.localAddr) {
			break
		}
	}

	s.currentTimeSlotNum = i
	s.nextSleepLvl = s.schedule.Timeslots[i].SleepLevel
	return incCount
}
