// Package meta writes FLAC metadata blocks: the mandatory STREAMINFO block,
// an optional VORBIS_COMMENT block and PADDING. Decoding and the seek-table,
// cue-sheet, picture and application block types are out of scope.
package meta

import (
	"io"

	"github.com/icza/bitio"
)

// BlockType identifies a metadata block's content.
type BlockType uint8

// Metadata block types this encoder emits.
const (
	TypeStreamInfo    BlockType = 0
	TypePadding       BlockType = 1
	TypeVorbisComment BlockType = 4
)

// BlockHeader precedes every metadata block: a last-block flag, the block
// type and the length in bytes of what follows.
type BlockHeader struct {
	IsLast bool
	Type   BlockType
	Length uint32
}

// Write encodes the 32-bit metadata block header to w.
func (h BlockHeader) Write(w *bitio.Writer) error {
	var last uint64
	if h.IsLast {
		last = 1
	}
	if err := w.WriteBits(last, 1); err != nil {
		return err
	}
	if err := w.WriteBits(uint64(h.Type), 7); err != nil {
		return err
	}
	return w.WriteBits(uint64(h.Length), 24)
}

// WritePadding writes a PADDING metadata block of n zero bytes.
func WritePadding(w io.Writer, n uint32, isLast bool) error {
	bw := bitio.NewWriter(w)
	hdr := BlockHeader{IsLast: isLast, Type: TypePadding, Length: n}
	if err := hdr.Write(bw); err != nil {
		return err
	}
	for i := uint32(0); i < n; i++ {
		if err := bw.WriteByte(0); err != nil {
			return err
		}
	}
	return bw.Close()
}
