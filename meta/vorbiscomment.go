package meta

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/icza/bitio"
)

// MaxTags is the largest number of comment entries a VORBIS_COMMENT block
// may carry.
const MaxTags = 1024

// VorbisComment is the Vorbis-comment metadata block: a vendor string
// followed by an ordered list of FIELD=VALUE tags (e.g. "ARTIST=...").
type VorbisComment struct {
	Vendor string
	// Tags holds [field, value] pairs; Field must use characters in
	// [0x20,0x7D] excluding '='.
	Tags [][2]string
}

func validTagField(field string) error {
	if field == "" {
		return fmt.Errorf("meta: empty vorbis comment field name")
	}
	for _, r := range field {
		if r == '=' || r < 0x20 || r > 0x7D {
			return fmt.Errorf("meta: vorbis comment field %q contains invalid character %q", field, r)
		}
	}
	return nil
}

// WriteVorbisComment writes a VORBIS_COMMENT metadata block (header + body)
// to w.
func WriteVorbisComment(w io.Writer, vc *VorbisComment, isLast bool) error {
	if len(vc.Tags) > MaxTags {
		return fmt.Errorf("meta: %d vorbis comment tags exceeds maximum of %d", len(vc.Tags), MaxTags)
	}

	nbits := int64(32+8*len(vc.Vendor)) + 32
	entries := make([][]byte, len(vc.Tags))
	for i, tag := range vc.Tags {
		if err := validTagField(tag[0]); err != nil {
			return err
		}
		buf := []byte(tag[0] + "=" + tag[1])
		entries[i] = buf
		nbits += 32 + 8*int64(len(buf))
	}

	bw := bitio.NewWriter(w)
	hdr := BlockHeader{IsLast: isLast, Type: TypeVorbisComment, Length: uint32(nbits / 8)}
	if err := hdr.Write(bw); err != nil {
		return err
	}

	if err := binary.Write(bw, binary.LittleEndian, uint32(len(vc.Vendor))); err != nil {
		return err
	}
	if _, err := bw.Write([]byte(vc.Vendor)); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(len(entries))); err != nil {
		return err
	}
	for _, buf := range entries {
		if err := binary.Write(bw, binary.LittleEndian, uint32(len(buf))); err != nil {
			return err
		}
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}

	return bw.Close()
}
