package wps

import (
	"time"

	"github.com/kg2e0-wps/wps/internal/headerproto"
	"github.com/kg2e0-wps/wps/internal/link"
)

// NodeConfig is the one-time hardware/network identity of a stack instance.
// CRCPolynomial and RxGain are never interpreted here; they ride through to
// every phy.Command untouched, per the original SDK's node config contract.
type NodeConfig struct {
	LocalAddress  uint16
	NetworkID     uint8
	CRCPolynomial uint32
	RxGain        uint8
	IsSlave       bool
}

// ChannelSequenceConfig configures channel hopping for the network.
type ChannelSequenceConfig struct {
	Sequence   []uint8
	RandomMode bool
}

// ScheduleConfig is the ordered list of timeslot descriptions the caller
// assembles before connect; the façade turns it into a scheduler.Schedule
// bound to live *mac.Connection pointers.
type ScheduleConfig struct {
	Slots            []SlotConfig
	LightestSleepLvl link.SleepLevel
}

// SlotConfig names the connections (by id, resolved against connections
// already added via AddConnection) hosted in one timeslot.
type SlotConfig struct {
	MainConnIDs      []uint16
	MainPriorities   []uint8
	AutoConnIDs      []uint16
	AutoPriorities   []uint8
	DurationPllCycles uint32
	SleepLevel        link.SleepLevel
}

// ConnectionConfig is the caller-facing description of one connection,
// translated into a *mac.Connection plus its xlayer pools/queues/arena at
// AddConnection time.
type ConnectionConfig struct {
	ID                 uint16
	SourceAddress      uint16
	DestinationAddress uint16
	Priority           uint8
	IsMain             bool

	MaxPayloadSize int
	HeaderSize     int
	TxQueueSize    int
	RxQueueSize    int

	AckEnabled      bool
	SAWEnabled      bool
	SAWDeadline     time.Duration
	SAWRetryCap     int
	CCAEnabled      bool
	CreditFCEnabled bool
	RDOEnabled      bool
	DDCMEnabled     bool
	FrameLostMax    int

	Ranging headerproto.RangingMode
}
