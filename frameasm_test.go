package flake

import (
	"testing"

	"github.com/vantablac/flake/frame"
	"github.com/vantablac/flake/internal/bits"
)

func monoParams() *Params {
	var p Params
	SetDefaults(&p, 5)
	return &p
}

func TestAssembleFrameMonoConstant(t *testing.T) {
	samples := make([]int32, 4096)
	f := assembleFrame(monoParams(), 44100, 16, [][]int32{samples}, 0)
	if f.Header.Channels != frame.ChannelsMono {
		t.Fatalf("Channels = %v, want mono", f.Header.Channels)
	}
	if f.Subframes[0].Pred != frame.PredConstant {
		t.Fatalf("Pred = %v, want PredConstant for an all-zero block", f.Subframes[0].Pred)
	}
}

func TestAssembleFrameDoesNotMutateCallerBuffers(t *testing.T) {
	// Every sample shares a common 4-bit (k=4) trailing-zero shift, so
	// extractWastedBits has something to shift out. assembleFrame must not
	// leave that shift visible in the caller's own slice.
	samples := make([]int32, 256)
	for i := range samples {
		samples[i] = int32(i%50) << 4
	}
	want := append([]int32(nil), samples...)

	f := assembleFrame(monoParams(), 44100, 16, [][]int32{samples}, 0)

	if f.Subframes[0].Wasted == 0 {
		t.Fatalf("expected a nonzero wasted-bits count for a commonly-shifted signal")
	}
	for i, s := range samples {
		if s != want[i] {
			t.Fatalf("assembleFrame mutated the caller's sample buffer at index %d: got %d, want %d", i, s, want[i])
		}
	}
}

func TestAssembleFrameIdenticalStereoPicksSide(t *testing.T) {
	left := make([]int32, 4096)
	right := make([]int32, 4096)
	for i := range left {
		left[i] = int32(i % 37)
		right[i] = left[i]
	}
	p := monoParams()
	p.StereoMethod = StereoEstimate
	f := assembleFrame(p, 44100, 16, [][]int32{left, right}, 0)
	if !f.Header.Channels.Stereo() {
		t.Fatalf("Channels = %v, want a decorrelated stereo mode for identical L/R", f.Header.Channels)
	}
	// Whichever decorrelated mode wins, the side channel (constant zero for
	// identical L/R) must show up as PredConstant in one of the subframes.
	foundConstantZero := false
	for _, sub := range f.Subframes {
		if sub.Pred == frame.PredConstant && sub.Samples[0] == 0 {
			foundConstantZero = true
		}
	}
	if !foundConstantZero {
		t.Fatalf("expected a constant-zero side subframe for identical L/R channels")
	}
}

func TestAssembleFrameIndependentStereoStaysLR(t *testing.T) {
	left := make([]int32, 64)
	right := make([]int32, 64)
	for i := range left {
		left[i] = int32(i)
		right[i] = int32(2 * i)
	}
	p := monoParams()
	p.StereoMethod = StereoIndependent
	f := assembleFrame(p, 44100, 16, [][]int32{left, right}, 0)
	if f.Header.Channels != frame.ChannelsLR {
		t.Fatalf("Channels = %v, want plain left/right under independent stereo", f.Header.Channels)
	}
}

func TestEncodeFrameFallsBackToVerbatimOnOverflow(t *testing.T) {
	samples := make([]int32, 256)
	for i := range samples {
		samples[i] = int32(i%251) - 125
	}
	p := monoParams()

	var w bits.Writer
	buf := make([]byte, 8) // far too small for any real encoding of this block.
	f, _, err := encodeFrame(&w, buf, p, 44100, 16, [][]int32{samples}, 0, false, false)
	if err == nil {
		t.Fatalf("expected an overflow error with an 8-byte buffer, got frame %+v", f)
	}
}

func TestEncodeFrameFitsInGenerouslySizedBuffer(t *testing.T) {
	samples := make([]int32, 256)
	for i := range samples {
		samples[i] = int32(i%251) - 125
	}
	p := monoParams()

	var w bits.Writer
	buf := make([]byte, 4096)
	f, encoded, err := encodeFrame(&w, buf, p, 44100, 16, [][]int32{samples}, 0, false, false)
	if err != nil {
		t.Fatalf("encodeFrame: %v", err)
	}
	if f == nil {
		t.Fatalf("expected a non-nil frame")
	}
	if len(encoded) == 0 {
		t.Fatalf("expected non-empty encoded bytes")
	}
	if w.EOF() {
		t.Fatalf("unexpected EOF with a generously sized buffer")
	}
}

func TestForceVerbatimClearsPredictorState(t *testing.T) {
	f := &frame.Frame{Subframes: []*frame.Subframe{
		{Pred: frame.PredLPC, Order: 8, Coeffs: []int32{1, 2, 3}, Residual: []int32{1, 2}},
	}}
	forceVerbatim(f)
	sub := f.Subframes[0]
	if sub.Pred != frame.PredVerbatim || sub.Order != 0 || sub.Coeffs != nil || sub.Residual != nil {
		t.Fatalf("forceVerbatim left stale predictor state: %+v", sub)
	}
}
