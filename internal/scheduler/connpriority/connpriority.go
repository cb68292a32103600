// Package connpriority selects, among the connections sharing a timeslot,
// which one the MAC should actually service this cycle — the highest
// configured priority connection, subject to available peer credit (for
// main connections) or aging-based fairness (for auto-reply connections).
package connpriority

import "github.com/kg2e0-wps/wps/internal/link"

// maxConnPriority is the highest legal priority value a connection may be
// configured with; one past it is used internally as a sentinel meaning
// "excluded from consideration".
const maxConnPriority = 0xFF - 1

// useHighestConnectionPriority signals that the credit-aware search
// bottomed out without finding an eligible connection, and the caller
// should fall back to plain priority-order selection.
const useHighestConnectionPriority = 0xFF

// Connection is the narrow view a priority search needs from a scheduled
// connection.
type Connection interface {
	Enabled() bool
	HasQueuedFrame() bool
	CreditFlowControl() *link.CreditFlowControl
}

// GetHighestMainConnIndex picks which main connection in a timeslot should
// transmit this cycle. When the first connection has credit flow control
// disabled, priority order alone decides. Otherwise a connection is only
// eligible once it holds peer credit or has been skipped
// link.CreditSkippedFramesThreshold times in a row (to avoid starving a
// low-priority connection indefinitely); the search recurses through
// descending priority order up to connectionCount-1 times before giving up
// and falling back to plain priority order.
func GetHighestMainConnIndex(connections []Connection, priorities []uint8) uint8 {
	if len(connections) == 0 {
		return 0
	}
	if !connections[0].CreditFlowControl().Enabled {
		return getHighestConnIndexByPriority(connections, priorities)
	}

	depth := uint8(len(connections) - 1)
	id := getHighestMainConnIndexByPriorityAndCredits(connections, append([]uint8(nil), priorities...), depth)
	if id == useHighestConnectionPriority {
		id = getHighestConnIndexByPriority(connections, priorities)
	}
	return id
}

// GetHighestAutoConnIndex picks which auto-reply connection in a timeslot
// should be serviced this cycle. With credit flow control disabled,
// priority order alone decides; otherwise every enabled connection's aging
// score is incremented, the priority-order winner gets a bonus if it has
// data queued, and the connection with the highest resulting aging score
// wins — favoring whichever connection has gone longest without being
// serviced.
func GetHighestAutoConnIndex(connections []Connection, priorities []uint8) uint8 {
	if len(connections) == 0 {
		return 0
	}
	if !connections[0].CreditFlowControl().Enabled {
		return getHighestConnIndexByPriority(connections, priorities)
	}
	return getHighestAutoConnIndexByPriorityAndCredits(connections, priorities)
}

func getHighestConnIndexByPriority(connections []Connection, priorities []uint8) uint8 {
	minPrio := uint8(maxConnPriority) + 1
	minIndex := uint8(0)

	for i, c := range connections {
		if !c.Enabled() || !c.HasQueuedFrame() {
			continue
		}
		if priorities[i] < minPrio {
			minPrio = priorities[i]
			minIndex = uint8(i)
		}
		if minPrio == 0 {
			break
		}
	}
	return minIndex
}

func getHighestMainConnIndexByPriorityAndCredits(connections []Connection, priorities []uint8, depth uint8) uint8 {
	id := getHighestConnIndexByPriority(connections, priorities)
	conn := connections[id].CreditFlowControl()

	if conn.CreditsCount() > 0 {
		return id
	}
	if conn.SkippedFramesCount() >= link.CreditSkippedFramesThreshold {
		return id
	}
	if depth > 0 {
		conn.RecordSkip()

		newPriorities := append([]uint8(nil), priorities...)
		newPriorities[id] = maxConnPriority + 1 // exclude from the next round
		return getHighestMainConnIndexByPriorityAndCredits(connections, newPriorities, depth-1)
	}

	conn.RecordSkip()
	return useHighestConnectionPriority
}

func getHighestAutoConnIndexByPriorityAndCredits(connections []Connection, priorities []uint8) uint8 {
	highPriorityID := getHighestConnIndexByPriority(connections, priorities)

	for i, c := range connections {
		if !c.Enabled() {
			continue
		}
		// The priority-order winner gets its aging tick plus the bonus in the
		// same call, but only if it actually has data queued.
		hasData := uint8(i) == highPriorityID && c.HasQueuedFrame()
		c.CreditFlowControl().AgeForAutoReplySelection(hasData)
	}

	maxCount := uint8(0)
	highNotifyID := uint8(0)
	for i, c := range connections {
		if !c.Enabled() {
			continue
		}
		count := c.CreditFlowControl().NotifyMissedCreditsCount()
		if count > maxCount {
			maxCount = count
			highNotifyID = uint8(i)
		}
	}
	return highNotifyID
}
