/* swiftmtp - MTP/PTP host-side protocol engine
 *
 * Learned profile (§4.5): per-fingerprint rolling averages.
 */

package quirk

// LearnedProfile is a per-fingerprint rolling average of observed
// device behavior, persisted to disk and keyed by fingerprint hash.
// It expires on any change to the identity it was learned from.
type LearnedProfile struct {
	Fingerprint           string
	OptimalChunkSize      float64
	AvgHandshakeMs        float64
	OptimalIOTimeoutMs    float64
	P95ReadThroughputMbps float64
	P95WriteThroughputMbps float64
	SuccessRate           float64
	SampleCount           uint64
}

// Observation is one sample fed into a LearnedProfile via Merge.
type Observation struct {
	ChunkSize         float64
	HandshakeMs       float64
	IOTimeoutMs       float64
	ReadThroughputMbps float64
	WriteThroughputMbps float64
	Succeeded         bool
}

// Merge folds obs into p using an exponential moving average with
// step alpha = 1/(sample_count+1), then increments sample_count.
func (p LearnedProfile) Merge(obs Observation) LearnedProfile {
	alpha := 1.0 / float64(p.SampleCount+1)
	ema := func(old, observed float64) float64 {
		return old*(1-alpha) + observed*alpha
	}

	p.OptimalChunkSize = ema(p.OptimalChunkSize, obs.ChunkSize)
	p.AvgHandshakeMs = ema(p.AvgHandshakeMs, obs.HandshakeMs)
	p.OptimalIOTimeoutMs = ema(p.OptimalIOTimeoutMs, obs.IOTimeoutMs)
	p.P95ReadThroughputMbps = ema(p.P95ReadThroughputMbps, obs.ReadThroughputMbps)
	p.P95WriteThroughputMbps = ema(p.P95WriteThroughputMbps, obs.WriteThroughputMbps)

	successObserved := 0.0
	if obs.Succeeded {
		successObserved = 1.0
	}
	p.SuccessRate = ema(p.SuccessRate, successObserved)

	p.SampleCount++
	return p
}

// ApplyLearned folds a LearnedProfile's numeric averages into t.
// Called only outside strict mode (§4.5 merge layer 3).
func ApplyLearned(t Tuning, p LearnedProfile) Tuning {
	if p.SampleCount == 0 {
		return t
	}
	if p.OptimalChunkSize > 0 {
		t.MaxChunkBytes = uint32(p.OptimalChunkSize)
	}
	if p.OptimalIOTimeoutMs > 0 {
		t.IOTimeoutMs = uint32(p.OptimalIOTimeoutMs)
	}
	return t
}

// IdentityChanged reports whether the fingerprint-affecting fields
// of cur differ from the fingerprint the profile was learned under,
// in which case the profile must be discarded (§4.5: "expires on any
// change to vid/pid/bcdDevice/interface triple").
func (p LearnedProfile) IdentityChanged(cur Identity) bool {
	return p.Fingerprint != Fingerprint(cur)
}
