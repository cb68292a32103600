package link

// ChannelHopping advances a channel index either deterministically
// (sequential) or pseudorandomly over a fixed channel sequence. The
// sequence maps slot positions (length L) to entries in a K-channel table
// (K <= L); the unique-channel count is exposed for the "single channel"
// boundary case (channel_number == 1).
type ChannelHopping struct {
	sequence   []uint8 // channel ids, length L
	networkID  uint8
	randomMode bool
	index      int
}

// NewChannelHopping builds a hopping engine over sequence, keyed by
// networkID when randomMode is enabled.
func NewChannelHopping(sequence []uint8, networkID uint8, randomMode bool) *ChannelHopping {
	return &ChannelHopping{sequence: sequence, networkID: networkID, randomMode: randomMode}
}

// Len returns the sequence length L.
func (h *ChannelHopping) Len() int { return len(h.sequence) }

// ChannelCount returns K, the number of distinct channel ids referenced by
// the sequence.
func (h *ChannelHopping) ChannelCount() int {
	seen := make(map[uint8]struct{}, len(h.sequence))
	for _, c := range h.sequence {
		seen[c] = struct{}{}
	}
	return len(seen)
}

// Index returns the current hop index into the sequence.
func (h *ChannelHopping) Index() int { return h.index }

// Channel returns the channel id at the current hop index.
func (h *ChannelHopping) Channel() uint8 {
	if len(h.sequence) == 0 {
		return 0
	}
	return h.sequence[h.index]
}

// Advance moves to the next hop index, called once per active slot.
func (h *ChannelHopping) Advance() {
	if len(h.sequence) == 0 {
		return
	}
	if h.randomMode {
		h.index = nextRandomIndex(h.networkID, h.index, len(h.sequence))
	} else {
		h.index = (h.index + 1) % len(h.sequence)
	}
}

// Resync adopts an index decoded from a peer's header, used to recover
// position after a run of losses.
func (h *ChannelHopping) Resync(index int) {
	if len(h.sequence) == 0 {
		return
	}
	h.index = index % len(h.sequence)
}

// nextRandomIndex produces the same pseudorandom permutation on both ends
// of a link for a given network id and current index: a multiplicative
// linear-congruential step over [0, length), re-keyed per network so
// distinct co-located networks do not hop in lock-step.
func nextRandomIndex(networkID uint8, current, length int) int {
	if length <= 1 {
		return 0
	}
	seed := uint32(current)*2654435761 + uint32(networkID)*40503 + 1
	return int(seed % uint32(length))
}
