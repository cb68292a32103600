package wps

// Stats accumulates the counters the façade exposes per connection, folding
// in per-channel breakdowns alongside the aggregate totals.
type Stats struct {
	CCAEvents      uint32
	CCAFail        uint32
	CCATxFail      uint32
	PacketsDropped uint32

	RxReceived uint32
	RxBytes    uint64

	TxSuccess uint32
	TxFail    uint32
	TxDrop    uint32
	TxBytes   uint64

	PerChannel map[uint8]*ChannelStats
}

// ChannelStats mirrors Stats' counters narrowed to a single channel id, for
// callers doing per-channel link-quality analysis.
type ChannelStats struct {
	CCAEvents  uint32
	CCAFail    uint32
	RxReceived uint32
	TxSuccess  uint32
	TxFail     uint32
}

func newStats() *Stats {
	return &Stats{PerChannel: make(map[uint8]*ChannelStats)}
}

func (s *Stats) channel(ch uint8) *ChannelStats {
	c, ok := s.PerChannel[ch]
	if !ok {
		c = &ChannelStats{}
		s.PerChannel[ch] = c
	}
	return c
}

func (s *Stats) recordRxSuccess(ch uint8, nBytes int) {
	s.RxReceived++
	s.RxBytes += uint64(nBytes)
	s.channel(ch).RxReceived++
}

func (s *Stats) recordTxSuccess(ch uint8, nBytes int) {
	s.TxSuccess++
	s.TxBytes += uint64(nBytes)
	s.channel(ch).TxSuccess++
}

func (s *Stats) recordTxFail(ch uint8) {
	s.TxFail++
	s.channel(ch).TxFail++
}

func (s *Stats) recordTxDrop() {
	s.TxDrop++
	s.PacketsDropped++
}

func (s *Stats) recordCCA(ch uint8, events, fail uint32, txFail bool) {
	s.CCAEvents += events
	s.CCAFail += fail
	c := s.channel(ch)
	c.CCAEvents += events
	c.CCAFail += fail
	if txFail {
		s.CCATxFail++
	}
}
