// Package flake encodes interleaved PCM audio into the FLAC bitstream
// format: stream header and metadata, fixed- or variable-block-size framing,
// stereo decorrelation, wasted-bits extraction and fixed/LPC prediction with
// Rice-coded residuals.
package flake

import (
	"io"

	"github.com/vantablac/flake/frame"
	"github.com/vantablac/flake/internal/bits"
	"github.com/vantablac/flake/meta"
)

// streamInfoBodyOffset is the byte offset of the STREAMINFO block body:
// 4 bytes of "fLaC" marker, 4 bytes of metadata block header.
const streamInfoBodyOffset = 8

// streamInfoBodyBytes is the fixed length of a STREAMINFO block body.
const streamInfoBodyBytes = 34

// vendorString identifies this encoder in the VORBIS_COMMENT block it always
// writes, the way every FLAC encoder stamps its own name.
const vendorString = "flake-go"

// Encoder drives a single FLAC stream end to end: header emission,
// per-block frame encoding (fixed or variable block size) and the trailing
// MD5 digest and sample count that STREAMINFO needs but that can only be
// known once every block has been seen. If w also implements io.Seeker,
// Close seeks back and rewrites STREAMINFO with its final values; otherwise
// the caller is left with a structurally valid stream whose STREAMINFO
// carries a placeholder MD5 and block/frame-size bounds.
type Encoder struct {
	w      io.Writer
	params Params

	sampleRate    uint32
	channels      int
	bitsPerSample uint8

	frameBuf []byte
	bw       bits.Writer
	interbuf []int32

	sampleRateFromStreamInfo bool
	bpsFromStreamInfo        bool

	md5          *md5Accum
	nSamples     uint64
	frameCount   uint64
	blockSizeMin uint16
	blockSizeMax uint16
	frameSizeMin uint32
	frameSizeMax uint32

	ended  bool
	closed bool
}

// NewEncoder validates params against the stream's format, writes the FLAC
// stream marker and metadata blocks (a placeholder STREAMINFO,
// VORBIS_COMMENT, and PADDING if params.PaddingSize > 0) to w, and returns
// an Encoder ready to accept blocks via EncodeBlock. It fails with a
// *Error of KindValidation if params is invalid for the given format.
func NewEncoder(w io.Writer, params *Params, sampleRate uint32, channels int, bitsPerSample uint8) (*Encoder, error) {
	p := *params
	if v := p.Validate(channels, sampleRate, bitsPerSample); v < 0 {
		return nil, newValidationError("invalid parameters for %d channel(s), %d Hz, %d-bit", channels, sampleRate, bitsPerSample)
	}

	sumObits := channels*int(bitsPerSample) + 1 // +1: a decorrelated side channel is one bit wider.
	maxFrameSize := 16 + (p.BlockSize*sumObits+7)/8

	e := &Encoder{
		w:             w,
		params:        p,
		sampleRate:    sampleRate,
		channels:      channels,
		bitsPerSample: bitsPerSample,
		frameBuf:      make([]byte, maxFrameSize*3/2),
		md5:           newMD5Accum(bitsPerSample),
		blockSizeMin:  0xFFFF,
		frameSizeMin:  0xFFFFFF,
	}

	if _, err := io.WriteString(w, "fLaC"); err != nil {
		return nil, err
	}

	si := e.placeholderStreamInfo()
	hasVendor := true
	hasPadding := p.PaddingSize > 0
	if err := meta.WriteStreamInfo(w, &si, !hasVendor && !hasPadding); err != nil {
		return nil, err
	}
	vc := &meta.VorbisComment{Vendor: vendorString}
	if err := meta.WriteVorbisComment(w, vc, !hasPadding); err != nil {
		return nil, err
	}
	if hasPadding {
		if err := meta.WritePadding(w, uint32(p.PaddingSize), true); err != nil {
			return nil, err
		}
	}

	return e, nil
}

func (e *Encoder) placeholderStreamInfo() meta.StreamInfo {
	return meta.StreamInfo{
		BlockSizeMin:  uint16(e.params.BlockSize),
		BlockSizeMax:  uint16(e.params.BlockSize),
		SampleRate:    e.sampleRate,
		NChannels:     uint8(e.channels),
		BitsPerSample: e.bitsPerSample,
	}
}

// EncodeBlock encodes one block of samples — one []int32 per channel, all of
// equal length — as one or more FLAC frames (variable-block-size splitting
// when params.VariableBlockSize is set and the block qualifies), writing
// them to the stream's underlying writer and folding the original samples
// into the running MD5 digest. A block shorter than params.BlockSize marks
// the stream ended: any further call returns a *Error of KindOrdering.
func (e *Encoder) EncodeBlock(channels [][]int32) error {
	if e.closed {
		return newOrderingError("EncodeBlock called after Close")
	}
	if e.ended {
		return newOrderingError("EncodeBlock called after a short block already ended the stream")
	}
	if len(channels) != e.channels {
		return newValidationError("EncodeBlock got %d channels, want %d", len(channels), e.channels)
	}

	n := len(channels[0])
	if n > e.params.BlockSize {
		return newValidationError("EncodeBlock got a %d-sample block, exceeds configured block size %d", n, e.params.BlockSize)
	}
	if n < e.params.BlockSize {
		e.ended = true
	}
	if n == 0 {
		return nil
	}

	emit := func(f *frame.Frame, encoded []byte) error {
		if _, err := e.w.Write(encoded); err != nil {
			return err
		}
		e.recordFrame(f, len(encoded))
		return nil
	}

	if e.params.VariableBlockSize && canSplit(n) {
		// VBS framing numbers frames by first-sample-in-run, per the format's
		// variable-block-size convention.
		if _, err := encodeVBS(&e.bw, e.frameBuf, &e.params, e.sampleRate, e.bitsPerSample, channels, e.nSamples, e.sampleRateFromStreamInfo, e.bpsFromStreamInfo, emit); err != nil {
			return err
		}
	} else {
		num := e.frameCount
		if e.params.VariableBlockSize {
			num = e.nSamples
		}
		f, encoded, err := encodeFrame(&e.bw, e.frameBuf, &e.params, e.sampleRate, e.bitsPerSample, channels, num, e.sampleRateFromStreamInfo, e.bpsFromStreamInfo)
		if err != nil {
			return err
		}
		if err := emit(f, encoded); err != nil {
			return err
		}
		e.frameCount++
	}

	e.feedMD5(channels, n)
	e.nSamples += uint64(n)
	return nil
}

// recordFrame updates the running block-size and frame-size bounds
// STREAMINFO reports, from a just-emitted frame.
func (e *Encoder) recordFrame(f *frame.Frame, encodedLen int) {
	bs := f.Header.BlockSize
	if bs < e.blockSizeMin {
		e.blockSizeMin = bs
	}
	if bs > e.blockSizeMax {
		e.blockSizeMax = bs
	}
	n := uint32(encodedLen)
	if n < e.frameSizeMin {
		e.frameSizeMin = n
	}
	if n > e.frameSizeMax {
		e.frameSizeMax = n
	}
}

// feedMD5 interleaves channels (each n samples long) and folds them into the
// running MD5 accumulator over the original, unencoded PCM.
func (e *Encoder) feedMD5(channels [][]int32, n int) {
	need := n * len(channels)
	if cap(e.interbuf) < need {
		e.interbuf = make([]int32, need)
	}
	e.interbuf = e.interbuf[:need]
	for i := 0; i < n; i++ {
		for c, ch := range channels {
			e.interbuf[i*len(channels)+c] = ch[i]
		}
	}
	e.md5.Write(e.interbuf)
}

// GetStreamInfo returns the STREAMINFO the encoder would currently write:
// accurate block-size and frame-size bounds, sample count and MD5 digest of
// everything encoded so far. It is safe to call at any point, including
// before Close.
func (e *Encoder) GetStreamInfo() meta.StreamInfo {
	si := meta.StreamInfo{
		BlockSizeMin:  e.blockSizeMin,
		BlockSizeMax:  e.blockSizeMax,
		FrameSizeMin:  e.frameSizeMin,
		FrameSizeMax:  e.frameSizeMax,
		SampleRate:    e.sampleRate,
		NChannels:     uint8(e.channels),
		BitsPerSample: e.bitsPerSample,
		NSamples:      e.nSamples,
		MD5sum:        e.md5.Sum(),
	}
	if e.blockSizeMin == 0xFFFF {
		si.BlockSizeMin = uint16(e.params.BlockSize)
	}
	if e.frameSizeMin == 0xFFFFFF {
		si.FrameSizeMin = 0
	}
	return si
}

// Close finalizes the stream. If the underlying writer also implements
// io.Seeker, Close seeks back to the STREAMINFO block body and rewrites it
// with the final sample count, block/frame-size bounds and MD5 digest,
// matching how real FLAC encoders patch the header after a seekable pass.
// Close is idempotent.
func (e *Encoder) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true

	seeker, ok := e.w.(io.WriteSeeker)
	if !ok {
		return nil
	}
	if _, err := seeker.Seek(streamInfoBodyOffset, io.SeekStart); err != nil {
		return err
	}
	si := e.GetStreamInfo()
	return meta.WriteStreamInfoBody(seeker, &si)
}
