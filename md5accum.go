package flake

import (
	"crypto/md5"
	"encoding/binary"
	"hash"
)

// md5Accum is a streaming MD5 accumulator over the little-endian byte view
// of the original PCM. It is fed once per block, after all of that block's
// frames have been encoded and written; a block whose encoding or write
// fails is not fed. Sum clones the live hash state so the running
// accumulator is never disturbed by a mid-stream streaminfo query.
type md5Accum struct {
	h    hash.Hash
	buf  []byte
	bps  uint8
}

func newMD5Accum(bitsPerSample uint8) *md5Accum {
	return &md5Accum{h: md5.New(), bps: bitsPerSample}
}

// bytesPerSample rounds bps up to the next whole byte, matching how samples
// are packed into the little-endian PCM byte stream regardless of the
// bitstream's own bit-exact sample width.
func bytesPerSample(bps uint8) int {
	return int(bps+7) / 8
}

// Write feeds one block of interleaved signed samples to the accumulator.
func (m *md5Accum) Write(samples []int32) {
	n := bytesPerSample(m.bps)
	need := n * len(samples)
	if cap(m.buf) < need {
		m.buf = make([]byte, need)
	}
	m.buf = m.buf[:need]

	switch n {
	case 1:
		for i, s := range samples {
			m.buf[i] = byte(s)
		}
	case 2:
		for i, s := range samples {
			binary.LittleEndian.PutUint16(m.buf[2*i:], uint16(s))
		}
	case 3:
		for i, s := range samples {
			u := uint32(s)
			off := 3 * i
			m.buf[off] = byte(u)
			m.buf[off+1] = byte(u >> 8)
			m.buf[off+2] = byte(u >> 16)
		}
	default:
		for i, s := range samples {
			binary.LittleEndian.PutUint32(m.buf[4*i:], uint32(s))
		}
	}

	m.h.Write(m.buf)
}

// Sum clones the live hash state and returns the finalized digest without
// disturbing the accumulator still in use for subsequent frames. Cloning
// relies on crypto/md5's hash.Hash also implementing
// encoding.BinaryMarshaler/Unmarshaler.
func (m *md5Accum) Sum() [16]byte {
	var digest [16]byte

	marshaler, ok := m.h.(interface {
		MarshalBinary() ([]byte, error)
	})
	if !ok {
		copy(digest[:], m.h.Sum(nil))
		return digest
	}
	state, err := marshaler.MarshalBinary()
	if err != nil {
		copy(digest[:], m.h.Sum(nil))
		return digest
	}

	cloned := md5.New()
	um, ok := cloned.(interface {
		UnmarshalBinary([]byte) error
	})
	if !ok || um.UnmarshalBinary(state) != nil {
		copy(digest[:], m.h.Sum(nil))
		return digest
	}
	copy(digest[:], cloned.Sum(nil))
	return digest
}
