package flake

import (
	"github.com/vantablac/flake/frame"
	"github.com/vantablac/flake/internal/bits"
)

// assembleFrame builds a *frame.Frame for one block of samples (one slice
// per channel, all of equal length), applying stereo decorrelation when
// configured and applicable, extracting wasted bits per channel and picking
// each subframe's predictor. num is the frame or sample number to stamp into
// the header, depending on params.VariableBlockSize.
func assembleFrame(params *Params, sampleRate uint32, bitsPerSample uint8, channels [][]int32, num uint64) *frame.Frame {
	n := len(channels[0])

	bufs := channels
	widen := make([]int, len(channels))
	chAssign := frame.ChannelsMono
	if len(channels) == 2 {
		chAssign = frame.ChannelsLR
	}

	if len(channels) == 2 && n >= minStereoBlockSize && params.StereoMethod == StereoEstimate {
		mode := chooseStereoMode(channels[0], channels[1])
		ch0, ch1, w0, w1 := applyDecorrelation(mode, channels[0], channels[1])
		bufs = [][]int32{ch0, ch1}
		widen = []int{w0, w1}
		chAssign = mode
	}

	subs := make([]*frame.Subframe, len(bufs))
	for i, samples := range bufs {
		// extractWastedBits shifts in place; samples may alias the caller's
		// own channel buffers (mono, and the unrotated halves of LR/left-side/
		// side-right), so work on a private copy rather than the caller's data.
		owned := append([]int32(nil), samples...)
		sub := &frame.Subframe{
			Samples: owned,
			Obits:   int(bitsPerSample) + widen[i],
		}
		sub.Wasted = extractWastedBits(sub.Samples)
		encodeSubframe(sub, params)
		subs[i] = sub
	}

	hdr := frame.Header{
		HasFixedBlockSize: !params.VariableBlockSize,
		BlockSize:         uint16(n),
		SampleRate:        sampleRate,
		Channels:          chAssign,
		BitsPerSample:     bitsPerSample,
		Num:               num,
	}

	return &frame.Frame{Header: hdr, Subframes: subs}
}

// forceVerbatim rewrites every subframe of f to the verbatim predictor,
// keeping each subframe's already-extracted Wasted count (Samples have
// already been shifted down by that many bits, so re-running wasted-bits
// extraction would be wrong). Used when the predictive encoding of a frame
// doesn't fit the caller's buffer.
func forceVerbatim(f *frame.Frame) {
	for _, sub := range f.Subframes {
		sub.Pred = frame.PredVerbatim
		sub.Order = 0
		sub.Residual = nil
		sub.Coeffs = nil
	}
}

// encodeFrame assembles a frame from channels and serializes it into buf
// through w, returning a copy of the encoded bytes (buf itself is reused by
// the next call). If the chosen predictive encoding overflows buf, every
// subframe is forced to verbatim and the frame is re-encoded once; if even
// that overflows, encodeFrame returns an error rather than emit a truncated
// frame.
func encodeFrame(w *bits.Writer, buf []byte, params *Params, sampleRate uint32, bitsPerSample uint8, channels [][]int32, num uint64, sampleRateFromStreamInfo, bpsFromStreamInfo bool) (*frame.Frame, []byte, error) {
	f := assembleFrame(params, sampleRate, bitsPerSample, channels, num)

	w.Init(buf)
	f.Encode(w, sampleRateFromStreamInfo, bpsFromStreamInfo)
	if !w.EOF() {
		out := append([]byte(nil), w.Bytes()...)
		return f, out, nil
	}

	forceVerbatim(f)
	w.Init(buf)
	f.Encode(w, sampleRateFromStreamInfo, bpsFromStreamInfo)
	if w.EOF() {
		return nil, nil, newOverflowError("frame %d does not fit in a %d-byte buffer even verbatim", num, len(buf))
	}
	out := append([]byte(nil), w.Bytes()...)
	return f, out, nil
}
