package flake

// PredictionType selects the family of predictor a subframe may use.
type PredictionType uint8

// Prediction types.
const (
	PredictionNone PredictionType = iota
	PredictionFixed
	PredictionLevinson
)

// OrderMethod selects how the LPC prediction order is chosen.
type OrderMethod uint8

// Order-selection strategies, in increasing order of search effort.
const (
	OrderMax OrderMethod = iota
	OrderEst
	Order2Level
	Order4Level
	Order8Level
	OrderSearch
	OrderLog
)

// StereoMethod selects whether stereo decorrelation is attempted.
type StereoMethod uint8

// Stereo decorrelation strategies.
const (
	StereoIndependent StereoMethod = iota
	StereoEstimate
)

// Params holds the per-stream encoder configuration. Params is locked by
// NewEncoder and read, never mutated, by every subsequent EncodeBlock call.
type Params struct {
	CompressionLevel int

	BlockSize int

	PredictionType PredictionType
	MinPredOrder   int
	MaxPredOrder   int

	MinPartOrder int
	MaxPartOrder int

	OrderMethod  OrderMethod
	StereoMethod StereoMethod

	PaddingSize int

	VariableBlockSize bool
}

// MinBlockSize and MaxBlockSize bound the block_size parameter.
const (
	MinBlockSize = 16
	MaxBlockSize = 65535
)

// Validate checks internal consistency of p against the stream's sample
// rate, channel count and bit depth. It returns 0 when p is valid and
// Subset compliant, 1 when valid but outside the interoperable Subset
// profile (rare sample rates or bit depths, large blocks, high prediction
// orders at low sample rates, or variable block size), and -1 when p is
// invalid. Validate never mutates p.
func (p *Params) Validate(channels int, sampleRate uint32, bitsPerSample uint8) int {
	if channels < 1 || channels > 8 {
		return -1
	}
	if sampleRate < 1 || sampleRate > 655350 {
		return -1
	}
	if bitsPerSample < 4 || bitsPerSample > 32 {
		return -1
	}
	if p.CompressionLevel < 0 || p.CompressionLevel > 12 {
		return -1
	}
	if p.BlockSize < MinBlockSize || p.BlockSize > MaxBlockSize {
		return -1
	}
	if p.MinPredOrder > p.MaxPredOrder {
		return -1
	}
	switch p.PredictionType {
	case PredictionFixed:
		if p.MinPredOrder < 0 || p.MaxPredOrder > 4 {
			return -1
		}
	case PredictionLevinson:
		if p.MinPredOrder < 1 || p.MaxPredOrder > 32 {
			return -1
		}
	}
	if p.MinPartOrder > p.MaxPartOrder {
		return -1
	}
	if p.MinPartOrder < 0 || p.MaxPartOrder > 8 {
		return -1
	}
	if p.PaddingSize < 0 || p.PaddingSize >= 1<<24 {
		return -1
	}
	// A block size of 16 in variable block size mode triggers a known FLAC
	// 1.1.x spec ambiguity that real decoders disagree on; reject it rather
	// than emit a stream some decoders will misparse.
	if p.BlockSize == 16 && p.VariableBlockSize {
		return -1
	}

	outOfSubset := false
	if bitsPerSample < 8 || bitsPerSample > 24 || bitsPerSample%4 != 0 {
		outOfSubset = true
	}
	if sampleRate <= 48000 && p.BlockSize > 4608 {
		outOfSubset = true
	}
	if p.PredictionType == PredictionLevinson && p.MaxPredOrder > 12 && sampleRate <= 48000 {
		outOfSubset = true
	}
	if p.VariableBlockSize {
		outOfSubset = true
	}

	if outOfSubset {
		return 1
	}
	return 0
}
