package mac

// LinkState is the MAC's top-level lifecycle state. Only CONNECT ->
// DISCONNECT is a valid exit from an active link; a failed connect never
// leaves DISCONNECT in the first place.
type LinkState uint8

const (
	LinkStateNotInit LinkState = iota
	LinkStateDisconnect
	LinkStateConnect
)

func (s LinkState) String() string {
	switch s {
	case LinkStateDisconnect:
		return "disconnect"
	case LinkStateConnect:
		return "connect"
	default:
		return "not_init"
	}
}

// SyncState refines LinkStateConnect: a slave link starts SYNCING and only
// becomes SYNCED after a receive that passes the syncword check;
// frame_lost_max_duration consecutive failures send it back to SYNCING.
// A coordinator link is always considered SYNCED.
type SyncState uint8

const (
	SyncStateSyncing SyncState = iota
	SyncStateSynced
)

func (s SyncState) String() string {
	if s == SyncStateSynced {
		return "synced"
	}
	return "syncing"
}

// StateMachine tracks LinkState/SyncState transitions.
type StateMachine struct {
	link LinkState
	sync SyncState

	isSlave bool
}

// NewStateMachine builds a machine that starts in LinkStateNotInit.
// isSlave controls whether Connect begins in SYNCING (slave) or SYNCED
// (coordinator).
func NewStateMachine(isSlave bool) *StateMachine {
	return &StateMachine{link: LinkStateNotInit, isSlave: isSlave}
}

// Link returns the current top-level lifecycle state.
func (m *StateMachine) Link() LinkState { return m.link }

// Sync returns the current sync sub-state; only meaningful while Link() ==
// LinkStateConnect.
func (m *StateMachine) Sync() SyncState { return m.sync }

// Init transitions NOT_INIT -> DISCONNECT. It is a no-op once past
// NOT_INIT.
func (m *StateMachine) Init() {
	if m.link == LinkStateNotInit {
		m.link = LinkStateDisconnect
	}
}

// Connect transitions DISCONNECT -> CONNECT. It reports false (and leaves
// the state in DISCONNECT) if the machine was not in DISCONNECT to begin
// with — a failed connect never leaves DISCONNECT.
func (m *StateMachine) Connect() bool {
	if m.link != LinkStateDisconnect {
		return false
	}
	m.link = LinkStateConnect
	if m.isSlave {
		m.sync = SyncStateSyncing
	} else {
		m.sync = SyncStateSynced
	}
	return true
}

// Disconnect transitions CONNECT -> DISCONNECT. It is a no-op if not
// currently connected.
func (m *StateMachine) Disconnect() {
	if m.link == LinkStateConnect {
		m.link = LinkStateDisconnect
	}
}

// OnSyncwordPass transitions a connected slave from SYNCING to SYNCED.
func (m *StateMachine) OnSyncwordPass() {
	if m.link == LinkStateConnect && m.isSlave {
		m.sync = SyncStateSynced
	}
}

// OnSyncLost transitions a connected slave back to SYNCING, called by the
// per-slot cycle after frame_lost_max_duration consecutive RX failures.
func (m *StateMachine) OnSyncLost() {
	if m.link == LinkStateConnect && m.isSlave {
		m.sync = SyncStateSyncing
	}
}
