package meta

import (
	"io"

	"github.com/icza/bitio"
)

// StreamInfo is the mandatory first metadata block: stream-wide properties
// plus an MD5 digest of the unencoded, little-endian PCM audio.
type StreamInfo struct {
	BlockSizeMin  uint16
	BlockSizeMax  uint16
	FrameSizeMin  uint32 // 24-bit
	FrameSizeMax  uint32 // 24-bit
	SampleRate    uint32 // 20-bit
	NChannels     uint8  // 1..8
	BitsPerSample uint8  // 4..32
	NSamples      uint64 // 32-bit (low bits); 0 means unknown
	MD5sum        [16]byte
}

// streamInfoBytes is the total length, in bytes, of a STREAMINFO block body
// (18 bytes of scalar fields plus the 16-byte MD5 digest), matching the
// format's fixed 34-byte STREAMINFO block.
const streamInfoBytes = (16+16+24+24+20+3+5+4+32)/8 + 16

// WriteStreamInfo writes a STREAMINFO metadata block (header + body) to w.
func WriteStreamInfo(w io.Writer, si *StreamInfo, isLast bool) error {
	bw := bitio.NewWriter(w)
	hdr := BlockHeader{IsLast: isLast, Type: TypeStreamInfo, Length: streamInfoBytes}
	if err := hdr.Write(bw); err != nil {
		return err
	}
	if err := writeStreamInfoBody(bw, si); err != nil {
		return err
	}
	return bw.Close()
}

// WriteStreamInfoBody writes just the 34-byte STREAMINFO body, with no
// preceding block header. This is what a seekable caller rewrites in place
// once the final sample count, size bounds and MD5 digest are known; the
// block header (which never changes) is left untouched.
func WriteStreamInfoBody(w io.Writer, si *StreamInfo) error {
	bw := bitio.NewWriter(w)
	if err := writeStreamInfoBody(bw, si); err != nil {
		return err
	}
	return bw.Close()
}

func writeStreamInfoBody(bw *bitio.Writer, si *StreamInfo) error {
	if err := bw.WriteBits(uint64(si.BlockSizeMin), 16); err != nil {
		return err
	}
	if err := bw.WriteBits(uint64(si.BlockSizeMax), 16); err != nil {
		return err
	}
	if err := bw.WriteBits(uint64(si.FrameSizeMin), 24); err != nil {
		return err
	}
	if err := bw.WriteBits(uint64(si.FrameSizeMax), 24); err != nil {
		return err
	}
	if err := bw.WriteBits(uint64(si.SampleRate), 20); err != nil {
		return err
	}
	if err := bw.WriteBits(uint64(si.NChannels-1), 3); err != nil {
		return err
	}
	if err := bw.WriteBits(uint64(si.BitsPerSample-1), 5); err != nil {
		return err
	}
	if err := bw.WriteBits(0, 4); err != nil { // reserved
		return err
	}
	if err := bw.WriteBits(si.NSamples, 32); err != nil {
		return err
	}
	if _, err := bw.Write(si.MD5sum[:]); err != nil {
		return err
	}
	return nil
}
