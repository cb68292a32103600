package headerproto

// Deps bundles the per-connection collaborators Build needs to wire
// concrete Fields from a Config. Any entry the Config does not require may
// be left nil.
type Deps struct {
	TimeslotSAW   Field // pre-built via TimeslotSAW(...); only used if Config.Main
	ChannelIndex  Field // pre-built via ChannelIndex(...); only used if Config.Main
	RDOOffset     Field // pre-built via RDOOffset(...); only used if Config.RDOEnabled
	ConnectionID  Field // pre-built via ConnectionID(...); only used if Config.ConnectionID
	CreditFC      Field // pre-built via CreditFC(...); only used if Config.CreditFC
	RangingPhases Field // pre-built via RangingPhases(...); only used if Config.Ranging != RangingModeOff
}

// Build assembles a Registry in the fixed wire order for a main frame:
// timeslot+SAW, channel index, RDO offset, ranging phases, connection id,
// credit-FC. Fields whose Config flag is unset are omitted entirely, not
// just skipped — both ends must build from the identical Config for the
// header to parse correctly.
func Build(cfg Config, deps Deps, bufferSize int) *Registry {
	r := NewRegistry(bufferSize)

	if cfg.Main {
		r.Add(deps.TimeslotSAW)
		r.Add(deps.ChannelIndex)
	}
	if cfg.RDOEnabled {
		r.Add(deps.RDOOffset)
	}
	if cfg.Ranging != RangingModeOff {
		r.Add(deps.RangingPhases)
	}
	if cfg.ConnectionID {
		r.Add(deps.ConnectionID)
	}
	if cfg.CreditFC {
		r.Add(deps.CreditFC)
	}

	return r
}

// BuildAck assembles a Registry for an ACK frame: identical to Build except
// timeslot+SAW and channel index are always omitted, per the wire format's
// ACK-frame carve-out.
func BuildAck(cfg Config, deps Deps, bufferSize int) *Registry {
	r := NewRegistry(bufferSize)

	if cfg.RDOEnabled {
		r.Add(deps.RDOOffset)
	}
	if cfg.Ranging != RangingModeOff {
		r.Add(deps.RangingPhases)
	}
	if cfg.ConnectionID {
		r.Add(deps.ConnectionID)
	}
	if cfg.CreditFC {
		r.Add(deps.CreditFC)
	}

	return r
}
