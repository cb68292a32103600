// Package wpsconfig loads a node's profile from a YAML file and lets the
// command-line override individual fields, mirroring kissutil's pattern of
// package-level defaults overridable by flags — but collected into one
// struct instead of loose globals, and loaded from a file first.
package wpsconfig

import (
	"os"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/kg2e0-wps/wps/internal/headerproto"
	"github.com/kg2e0-wps/wps/internal/link"
	"github.com/kg2e0-wps/wps/wps"
)

// Profile is the on-disk shape of a node's configuration file: the node
// identity, its channel sequence, the default connection, and the single
// timeslot schedule most example deployments use.
type Profile struct {
	Node struct {
		LocalAddress  uint16 `yaml:"local_address"`
		NetworkID     uint8  `yaml:"network_id"`
		CRCPolynomial uint32 `yaml:"crc_polynomial"`
		RxGain        uint8  `yaml:"rx_gain"`
		IsSlave       bool   `yaml:"is_slave"`
	} `yaml:"node"`

	ChannelSequence []uint8 `yaml:"channel_sequence"`
	RandomHopping   bool    `yaml:"random_hopping"`

	Connection struct {
		ID                 uint16 `yaml:"id"`
		DestinationAddress uint16 `yaml:"destination_address"`
		MaxPayloadSize     int    `yaml:"max_payload_size"`
		HeaderSize         int    `yaml:"header_size"`
		TxQueueSize        int    `yaml:"tx_queue_size"`
		RxQueueSize        int    `yaml:"rx_queue_size"`
		AckEnabled         bool   `yaml:"ack_enabled"`
		SAWEnabled         bool   `yaml:"saw_enabled"`
		SAWDeadlineMillis  int    `yaml:"saw_deadline_millis"`
		SAWRetryCap        int    `yaml:"saw_retry_cap"`
		CCAEnabled         bool   `yaml:"cca_enabled"`
		CreditFCEnabled    bool   `yaml:"credit_fc_enabled"`
		RDOEnabled         bool   `yaml:"rdo_enabled"`
		FrameLostMax       int    `yaml:"frame_lost_max"`
	} `yaml:"connection"`

	SlotDurationPllCycles uint32            `yaml:"slot_duration_pll_cycles"`
	SleepLevel            link.SleepLevel   `yaml:"sleep_level"`
	Port                  string            `yaml:"port"` // serial device path; TCP-attached radios are not supported
	BaudRate              int               `yaml:"baud_rate"`
}

// Load reads and parses a Profile from path.
func Load(path string) (*Profile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var p Profile
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// FlagSet registers pflag overrides for the subset of Profile fields a
// command-line invocation commonly wants to tweak, binding each flag
// directly into p. Call Parse on the returned set after the caller has
// added any of its own flags.
func (p *Profile) FlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ExitOnError)
	fs.Uint16Var(&p.Node.LocalAddress, "local-address", p.Node.LocalAddress, "local node address")
	fs.Uint8Var(&p.Node.NetworkID, "network-id", p.Node.NetworkID, "network id used to key random channel hopping")
	fs.BoolVar(&p.Node.IsSlave, "slave", p.Node.IsSlave, "run as a slave (vs. coordinator) node")
	fs.StringVar(&p.Port, "port", p.Port, "serial device of the attached radio")
	fs.IntVar(&p.BaudRate, "baud", p.BaudRate, "serial baud rate (0 leaves it alone)")
	return fs
}

// NodeConfig translates the profile into the façade's NodeConfig.
func (p *Profile) NodeConfig() wps.NodeConfig {
	return wps.NodeConfig{
		LocalAddress:  p.Node.LocalAddress,
		NetworkID:     p.Node.NetworkID,
		CRCPolynomial: p.Node.CRCPolynomial,
		RxGain:        p.Node.RxGain,
		IsSlave:       p.Node.IsSlave,
	}
}

// ChannelSequenceConfig translates the profile's hop sequence.
func (p *Profile) ChannelSequenceConfig() wps.ChannelSequenceConfig {
	return wps.ChannelSequenceConfig{Sequence: p.ChannelSequence, RandomMode: p.RandomHopping}
}

// ConnectionConfig translates the profile's single default connection.
func (p *Profile) ConnectionConfig() wps.ConnectionConfig {
	c := p.Connection
	return wps.ConnectionConfig{
		ID:                 c.ID,
		SourceAddress:       p.Node.LocalAddress,
		DestinationAddress:  c.DestinationAddress,
		IsMain:              true,
		MaxPayloadSize:      c.MaxPayloadSize,
		HeaderSize:          c.HeaderSize,
		TxQueueSize:         c.TxQueueSize,
		RxQueueSize:         c.RxQueueSize,
		AckEnabled:          c.AckEnabled,
		SAWEnabled:          c.SAWEnabled,
		SAWDeadline:         time.Duration(c.SAWDeadlineMillis) * time.Millisecond,
		SAWRetryCap:         c.SAWRetryCap,
		CCAEnabled:          c.CCAEnabled,
		CreditFCEnabled:     c.CreditFCEnabled,
		RDOEnabled:          c.RDOEnabled,
		FrameLostMax:        c.FrameLostMax,
		Ranging:             headerproto.RangingModeOff,
	}
}

// ScheduleConfig builds a single-slot schedule hosting the default
// connection as the slot's sole main connection — the common case for a
// point-to-point deployment; multi-slot networks build their own
// wps.ScheduleConfig instead of using this helper.
func (p *Profile) ScheduleConfig() wps.ScheduleConfig {
	return wps.ScheduleConfig{
		LightestSleepLvl: p.SleepLevel,
		Slots: []wps.SlotConfig{
			{
				MainConnIDs:       []uint16{p.Connection.ID},
				MainPriorities:    []uint8{0},
				DurationPllCycles: p.SlotDurationPllCycles,
				SleepLevel:        p.SleepLevel,
			},
		},
	}
}
