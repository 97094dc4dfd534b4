package frame

import (
	"github.com/vantablac/flake/internal/bits"
)

// PredMethod identifies the predictor a subframe uses.
type PredMethod uint8

// Predictor methods, matching the subframe type field's coarse categories.
const (
	PredConstant PredMethod = iota
	PredVerbatim
	PredFixed
	PredLPC
)

// FixedCoeffs holds the binomial-signed coefficients for fixed prediction
// orders 0 through 4; FixedCoeffs[o] has length o.
var FixedCoeffs = [5][]int32{
	{},
	{1},
	{2, -1},
	{3, -3, 1},
	{4, -6, 4, -1},
}

// RicePartition is the Rice coding plan for one channel's residual.
type RicePartition struct {
	Order  int
	Params []uint
}

// Subframe holds one channel's samples, chosen predictor and its residual
// coding plan. The encoder allocates Samples and Residual afresh for every
// frame; they are not reused across frames. len(Samples) is the frame's
// block size.
type Subframe struct {
	Samples  []int32
	Residual []int32

	// Obits is the number of bits used to store each raw sample in this
	// subframe, after any widening from stereo decorrelation and narrowing
	// from wasted-bits extraction.
	Obits int
	// Wasted is the number of common trailing zero bits removed from
	// Samples before encoding.
	Wasted int

	Pred  PredMethod
	Order int

	// LPC-only fields.
	Coeffs    []int32
	Shift     int
	Precision int

	Rice RicePartition
}

// subframeTypeCode returns the 6-bit subframe type field for s.
func subframeTypeCode(s *Subframe) uint32 {
	switch s.Pred {
	case PredConstant:
		return 0x00
	case PredVerbatim:
		return 0x01
	case PredFixed:
		return 0x08 | uint32(s.Order)
	case PredLPC:
		return 0x20 | uint32(s.Order-1)
	}
	return 0x01
}

// encodeHeader writes the 1-bit zero, 6-bit type and wasted-bits unary flag.
func (s *Subframe) encodeHeader(w *bits.Writer) {
	w.WriteBits(1, 0)
	w.WriteBits(6, subframeTypeCode(s))
	if s.Wasted == 0 {
		w.WriteBits(1, 0)
		return
	}
	w.WriteBits(1, 1)
	w.WriteUnary(uint32(s.Wasted - 1))
}

// Encode writes the full subframe (header + payload) to w. Samples is
// expected to already have Wasted common trailing zero bits shifted out (see
// extractWastedBits in the encoder package); Encode writes the reduced-width
// values as-is and lets the wasted-bits header flag tell the decoder to shift
// them back in.
func (s *Subframe) Encode(w *bits.Writer) {
	s.encodeHeader(w)

	obits := uint(s.Obits - s.Wasted)

	switch s.Pred {
	case PredConstant:
		w.WriteBitsSigned(obits, s.Samples[0])
	case PredVerbatim:
		for _, samp := range s.Samples {
			w.WriteBitsSigned(obits, samp)
		}
	case PredFixed:
		s.encodeWarmup(w, obits, s.Order)
		s.encodeResidual(w)
	case PredLPC:
		s.encodeWarmup(w, obits, s.Order)
		w.WriteBits(4, uint32(s.Precision-1))
		w.WriteBits(5, uint32(s.Shift))
		for _, c := range s.Coeffs {
			w.WriteBitsSigned(uint(s.Precision), c)
		}
		s.encodeResidual(w)
	}
}

func (s *Subframe) encodeWarmup(w *bits.Writer, obits uint, order int) {
	for i := 0; i < order; i++ {
		w.WriteBitsSigned(obits, s.Samples[i])
	}
}

// encodeResidual writes the 2-bit residual coding method (always 0, the
// 4-bit-parameter method; Rice parameters never exceed rice.MaxParam so the
// escape code 0xF is never produced), the 4-bit partition-order field and
// every partition's parameter and residuals.
func (s *Subframe) encodeResidual(w *bits.Writer) {
	order := s.Rice.Order
	n := len(s.Residual)
	blockSize := n + s.Order

	w.WriteBits(2, 0)
	w.WriteBits(4, uint32(order))

	parts := 1 << uint(order)
	idx := 0
	for p := 0; p < parts; p++ {
		count := blockSize >> uint(order)
		if p == 0 {
			count -= s.Order
		}
		k := s.Rice.Params[p]
		w.WriteBits(4, uint32(k))
		for i := 0; i < count; i++ {
			w.WriteRiceSigned(k, s.Residual[idx])
			idx++
		}
	}
}
