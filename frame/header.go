// Package frame defines the per-frame and per-subframe data structures used
// by the encoder and the code that serializes them into the FLAC bitstream.
package frame

import (
	"github.com/vantablac/flake/internal/bits"
	"github.com/vantablac/flake/internal/hashutil/crc8"
)

// SyncCode is the 14-bit frame sync code, stored left-justified in the first
// 2 bytes of every frame header alongside the reserved bit and the
// blocking-strategy flag.
const SyncCode = 0x3FFE

// Channels identifies the channel count and any stereo decorrelation applied
// to a frame.
type Channels uint8

// Channel assignment codes, matching the 4-bit field of the frame header.
const (
	ChannelsMono Channels = iota
	ChannelsLR            // left, right
	ChannelsLRC
	ChannelsLRLsRs
	ChannelsLRCLsRs
	ChannelsLRCLfeLsRs
	ChannelsLRCLfeCsSlSr
	ChannelsLRCLfeLsRsSlSr
	ChannelsLeftSide // left channel, side channel = left-right
	ChannelsSideRight
	ChannelsMidSide // mid = (left+right)>>1, side = left-right
)

// Count returns the number of subframes (and thus channels) a frame with
// this assignment carries.
func (c Channels) Count() int {
	switch c {
	case ChannelsLeftSide, ChannelsSideRight, ChannelsMidSide:
		return 2
	default:
		return int(c) + 1
	}
}

// Stereo reports whether c is one of the decorrelated two-channel modes.
func (c Channels) Stereo() bool {
	switch c {
	case ChannelsLeftSide, ChannelsSideRight, ChannelsMidSide:
		return true
	}
	return false
}

// Header is a FLAC frame header: everything that precedes the subframes.
type Header struct {
	// HasFixedBlockSize reports whether the stream uses a fixed block size
	// (frame number in the bitstream) or a variable one (sample number).
	HasFixedBlockSize bool
	// BlockSize is the number of samples per channel in this frame.
	BlockSize uint16
	// SampleRate in Hz.
	SampleRate uint32
	// Channels is the channel count / stereo decorrelation assignment.
	Channels Channels
	// BitsPerSample is the sample depth before any decorrelation widening.
	BitsPerSample uint8
	// Num is the frame number (fixed block size) or first sample number
	// (variable block size).
	Num uint64
}

// blockSizeCode returns the 4-bit block-size code and, if non-zero, the
// number of bits of an escaped block-size field that follows the header
// (8 or 16).
func blockSizeCode(blockSize uint16) (code uint32, escapeBits uint) {
	switch blockSize {
	case 192:
		return 0x1, 0
	case 576, 1152, 2304, 4608:
		// 576 * 2^k for k in 0..3 maps to codes 2..5.
		for k, n := range [4]uint16{576, 1152, 2304, 4608} {
			if blockSize == n {
				return uint32(2 + k), 0
			}
		}
	case 256, 512, 1024, 2048, 4096, 8192, 16384, 32768:
		for k, n := range [8]uint16{256, 512, 1024, 2048, 4096, 8192, 16384, 32768} {
			if blockSize == n {
				return uint32(8 + k), 0
			}
		}
	}
	if blockSize <= 256 {
		return 0x6, 8
	}
	return 0x7, 16
}

// sampleRateCode returns the 4-bit sample-rate code and, if non-zero, the
// number of bits of an escaped sample-rate field (8 or 16) along with the
// value to encode into that field.
func sampleRateCode(rate uint32) (code uint32, escapeBits uint, escapeValue uint32) {
	switch rate {
	case 88200:
		return 0x1, 0, 0
	case 176400:
		return 0x2, 0, 0
	case 192000:
		return 0x3, 0, 0
	case 8000:
		return 0x4, 0, 0
	case 16000:
		return 0x5, 0, 0
	case 22050:
		return 0x6, 0, 0
	case 24000:
		return 0x7, 0, 0
	case 32000:
		return 0x8, 0, 0
	case 44100:
		return 0x9, 0, 0
	case 48000:
		return 0xA, 0, 0
	case 96000:
		return 0xB, 0, 0
	}
	if rate%1000 == 0 && rate/1000 < 256 {
		return 0xC, 8, rate / 1000
	}
	if rate < 1<<16 {
		return 0xD, 16, rate
	}
	if rate%10 == 0 && rate/10 < 1<<16 {
		return 0xE, 16, rate / 10
	}
	return 0x0, 0, 0 // get from streaminfo; caller must already know this is lossy
}

// bitsPerSampleCode returns the 3-bit bit-depth code, or 0 ("get from
// streaminfo") when depth doesn't match one of the enumerated values.
func bitsPerSampleCode(bps uint8) uint32 {
	switch bps {
	case 8:
		return 0x1
	case 12:
		return 0x2
	case 16:
		return 0x4
	case 20:
		return 0x5
	case 24:
		return 0x6
	case 32:
		return 0x7
	}
	return 0x0
}

// encodeUTF8 writes x using the FLAC/UTF-8-derived variable length coding
// used for frame and sample numbers: values up to 7 bits are a single byte;
// larger values use a multi-byte encoding whose first byte's leading ones
// count the total number of bytes in the sequence.
func encodeUTF8(w *bits.Writer, x uint64) {
	switch {
	case x < 0x80:
		w.WriteBits(8, uint32(x))
	case x < 0x800:
		w.WriteBits(8, 0xC0|uint32(x>>6))
		w.WriteBits(8, 0x80|uint32(x&0x3F))
	case x < 0x10000:
		w.WriteBits(8, 0xE0|uint32(x>>12))
		w.WriteBits(8, 0x80|uint32((x>>6)&0x3F))
		w.WriteBits(8, 0x80|uint32(x&0x3F))
	case x < 0x200000:
		w.WriteBits(8, 0xF0|uint32(x>>18))
		w.WriteBits(8, 0x80|uint32((x>>12)&0x3F))
		w.WriteBits(8, 0x80|uint32((x>>6)&0x3F))
		w.WriteBits(8, 0x80|uint32(x&0x3F))
	case x < 0x4000000:
		w.WriteBits(8, 0xF8|uint32(x>>24))
		w.WriteBits(8, 0x80|uint32((x>>18)&0x3F))
		w.WriteBits(8, 0x80|uint32((x>>12)&0x3F))
		w.WriteBits(8, 0x80|uint32((x>>6)&0x3F))
		w.WriteBits(8, 0x80|uint32(x&0x3F))
	case x < 0x80000000:
		w.WriteBits(8, 0xFC|uint32(x>>30))
		w.WriteBits(8, 0x80|uint32((x>>24)&0x3F))
		w.WriteBits(8, 0x80|uint32((x>>18)&0x3F))
		w.WriteBits(8, 0x80|uint32((x>>12)&0x3F))
		w.WriteBits(8, 0x80|uint32((x>>6)&0x3F))
		w.WriteBits(8, 0x80|uint32(x&0x3F))
	default:
		w.WriteBits(8, 0xFE)
		w.WriteBits(8, 0x80|uint32((x>>30)&0x3F))
		w.WriteBits(8, 0x80|uint32((x>>24)&0x3F))
		w.WriteBits(8, 0x80|uint32((x>>18)&0x3F))
		w.WriteBits(8, 0x80|uint32((x>>12)&0x3F))
		w.WriteBits(8, 0x80|uint32((x>>6)&0x3F))
		w.WriteBits(8, 0x80|uint32(x&0x3F))
	}
}

// Encode writes the frame header, including the CRC-8 sealing byte, to w.
// sampleRateFromStreamInfo and bpsFromStreamInfo select the "get from
// streaminfo" codes (0x0) for rate and depth respectively, matching streams
// where the frame header omits values already implied by STREAMINFO.
func (h *Header) Encode(w *bits.Writer, sampleRateFromStreamInfo, bpsFromStreamInfo bool) {
	hdr := crc8.New()
	hw := &bits.Writer{}
	buf := make([]byte, 32)
	hw.Init(buf)

	hw.WriteBits(14, SyncCode)
	hw.WriteBits(1, 0)
	if h.HasFixedBlockSize {
		hw.WriteBits(1, 0)
	} else {
		hw.WriteBits(1, 1)
	}

	bsCode, bsEscapeBits := blockSizeCode(h.BlockSize)
	hw.WriteBits(4, bsCode)

	var srCode uint32
	var srEscapeBits uint
	var srEscapeValue uint32
	if sampleRateFromStreamInfo {
		srCode = 0
	} else {
		srCode, srEscapeBits, srEscapeValue = sampleRateCode(h.SampleRate)
	}
	hw.WriteBits(4, srCode)

	hw.WriteBits(4, uint32(h.Channels))

	var bpsCode uint32
	if !bpsFromStreamInfo {
		bpsCode = bitsPerSampleCode(h.BitsPerSample)
	}
	hw.WriteBits(3, bpsCode)
	hw.WriteBits(1, 0) // reserved

	encodeUTF8(hw, h.Num)

	if bsEscapeBits != 0 {
		hw.WriteBits(bsEscapeBits, uint32(h.BlockSize)-1)
	}
	if srEscapeBits != 0 {
		hw.WriteBits(srEscapeBits, srEscapeValue)
	}

	hw.Flush()
	raw := hw.Bytes()
	hdr.Write(raw)
	crc := hdr.Sum8()

	for _, b := range raw {
		w.WriteBits(8, uint32(b))
	}
	w.WriteBits(8, uint32(crc))
}
