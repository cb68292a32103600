package scheduler

import "github.com/kg2e0-wps/wps/internal/link"

// MaxConnectionsPerSlot bounds how many main and how many auto-reply
// connections a single timeslot may host, mirroring
// WPS_MAX_CONN_PER_TIMESLOT.
const MaxConnectionsPerSlot = 8

// Connection is the narrow view of a data connection the scheduler needs:
// its address (to decide whether a TX-disabled slot should be skipped) and
// whether it currently has data queued.
type Connection interface {
	SourceAddress() uint16
	HasQueuedFrame() bool
	Enabled() bool
}

// Timeslot holds the main and auto-reply connections assigned to one slot
// of the schedule, their relative priorities, slot duration, and sleep
// level.
type Timeslot struct {
	ConnectionMain      [MaxConnectionsPerSlot]Connection
	ConnectionAutoReply [MaxConnectionsPerSlot]Connection

	ConnectionMainPriority [MaxConnectionsPerSlot]uint8
	ConnectionAutoPriority [MaxConnectionsPerSlot]uint8

	MainConnectionCount uint8
	AutoConnectionCount uint8

	DurationPllCycles uint32
	SleepLevel        link.SleepLevel
}

// isEmpty reports whether this slot has no main connection assigned, or is
// a local-only slot while tx is disabled (used to skip over a node's own
// silent slots when scanning ahead).
func (t *Timeslot) isEmpty(txDisabled bool, localAddr uint16) bool {
	if t.MainConnectionCount == 0 || t.ConnectionMain[0] == nil {
		return true
	}
	if txDisabled && t.ConnectionMain[0].SourceAddress() == localAddr {
		return true
	}
	return false
}

// Schedule is the full, statically-configured sequence of timeslots a
// network cycles through.
type Schedule struct {
	Timeslots        []*Timeslot
	LightestSleepLvl link.SleepLevel
}
