package frame

import (
	"testing"

	"github.com/vantablac/flake/internal/bits"
	"github.com/vantablac/flake/internal/hashutil/crc8"
)

func TestBlockSizeCode(t *testing.T) {
	golden := []struct {
		size       uint16
		code       uint32
		escapeBits uint
	}{
		{192, 0x1, 0},
		{576, 0x2, 0},
		{1152, 0x3, 0},
		{4608, 0x5, 0},
		{256, 0x8, 0},
		{4096, 0xC, 0},
		{32768, 0xF, 0},
		{200, 0x6, 8},
		{5000, 0x7, 16},
	}
	for _, g := range golden {
		code, esc := blockSizeCode(g.size)
		if code != g.code || esc != g.escapeBits {
			t.Errorf("blockSizeCode(%d) = (%#x, %d), want (%#x, %d)", g.size, code, esc, g.code, g.escapeBits)
		}
	}
}

func TestSampleRateCode(t *testing.T) {
	golden := []struct {
		rate uint32
		code uint32
	}{
		{44100, 0x9},
		{48000, 0xA},
		{96000, 0xB},
		{8000, 0x4},
	}
	for _, g := range golden {
		code, _, _ := sampleRateCode(g.rate)
		if code != g.code {
			t.Errorf("sampleRateCode(%d) = %#x, want %#x", g.rate, code, g.code)
		}
	}
}

func TestBitsPerSampleCode(t *testing.T) {
	if got := bitsPerSampleCode(16); got != 0x4 {
		t.Errorf("bitsPerSampleCode(16) = %#x, want 0x4", got)
	}
	if got := bitsPerSampleCode(24); got != 0x6 {
		t.Errorf("bitsPerSampleCode(24) = %#x, want 0x6", got)
	}
}

func TestEncodeUTF8SingleByte(t *testing.T) {
	var w bits.Writer
	buf := make([]byte, 8)
	w.Init(buf)
	encodeUTF8(&w, 42)
	w.Flush()
	got := w.Bytes()
	if len(got) != 1 || got[0] != 42 {
		t.Fatalf("encodeUTF8(42) = %v, want [42]", got)
	}
}

func TestEncodeUTF8TwoByte(t *testing.T) {
	var w bits.Writer
	buf := make([]byte, 8)
	w.Init(buf)
	encodeUTF8(&w, 300) // 0x12C, needs a lead byte and 1 continuation byte
	w.Flush()
	got := w.Bytes()
	if len(got) != 2 {
		t.Fatalf("encodeUTF8(300) produced %d bytes, want 2", len(got))
	}
	if got[0]&0xE0 != 0xC0 {
		t.Fatalf("lead byte = %08b, want 110xxxxx", got[0])
	}
	if got[1]&0xC0 != 0x80 {
		t.Fatalf("continuation byte = %08b, want 10xxxxxx", got[1])
	}
}

func TestHeaderEncodeSealsCRC8(t *testing.T) {
	h := Header{
		HasFixedBlockSize: true,
		BlockSize:         4096,
		SampleRate:        44100,
		Channels:          ChannelsMono,
		BitsPerSample:     16,
		Num:               0,
	}
	var w bits.Writer
	buf := make([]byte, 32)
	w.Init(buf)
	h.Encode(&w, false, false)
	w.Flush()

	if w.EOF() {
		t.Fatalf("unexpected EOF encoding header")
	}
	out := w.Bytes()
	if len(out) < 5 {
		t.Fatalf("header too short: %d bytes", len(out))
	}
	// The top 8 bits of the 14-bit sync code 0x3FFE are all ones.
	if out[0] != 0xFF {
		t.Fatalf("first header byte = %08b, want 11111111", out[0])
	}
	// The last header byte is the CRC-8 of every byte before it.
	last := len(out) - 1
	if want := crc8.Checksum(out[:last]); out[last] != want {
		t.Fatalf("header CRC-8 = %#02x, want %#02x", out[last], want)
	}
}
