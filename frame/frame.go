package frame

import (
	"github.com/vantablac/flake/internal/bits"
	"github.com/vantablac/flake/internal/hashutil/crc16"
)

// Frame bundles a frame header with the subframes (one per channel) that
// follow it.
type Frame struct {
	Header    Header
	Subframes []*Subframe
}

// Encode serializes the full frame — header, every subframe, zero-padding to
// a byte boundary and the sealing CRC-16 — into w. sampleRateFromStreamInfo
// and bpsFromStreamInfo are forwarded to Header.Encode.
func (f *Frame) Encode(w *bits.Writer, sampleRateFromStreamInfo, bpsFromStreamInfo bool) {
	start := w.ByteCount()

	f.Header.Encode(w, sampleRateFromStreamInfo, bpsFromStreamInfo)
	for _, sub := range f.Subframes {
		sub.Encode(w)
	}
	w.Flush()

	if w.EOF() {
		return
	}

	body := w.Bytes()[start:]
	crc := crc16.New()
	crc.Write(body)
	w.WriteBits(16, uint32(crc.Sum16()))
}
