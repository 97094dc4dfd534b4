package flake

import (
	"testing"

	"github.com/vantablac/flake/internal/bits"
)

func TestCanSplit(t *testing.T) {
	cases := []struct {
		n    int
		want bool
	}{
		{127, false},
		{128, true},
		{4608, true},
		{100, false},
		{129, false}, // not a multiple of 8
	}
	for _, c := range cases {
		if got := canSplit(c.n); got != c.want {
			t.Errorf("canSplit(%d) = %v, want %v", c.n, got, c.want)
		}
	}
}

func TestSplitSegmentsFlatSignalIsOneRun(t *testing.T) {
	samples := make([]int32, 4608)
	for i := range samples {
		samples[i] = 1000
	}
	starts := splitSegments([][]int32{samples})
	if len(starts) != 1 || starts[0] != 0 {
		t.Fatalf("splitSegments on a flat signal = %v, want a single run starting at 0", starts)
	}
}

func TestSplitSegmentsSilentThenNoisySplits(t *testing.T) {
	samples := make([]int32, 4608)
	half := len(samples) / 2
	for i := half; i < len(samples); i++ {
		// Alternate +/-30000 so the second difference is large and roughly
		// constant across the noisy half, while the first half stays silent.
		if i%2 == 0 {
			samples[i] = 30000
		} else {
			samples[i] = -30000
		}
	}
	starts := splitSegments([][]int32{samples})
	if len(starts) < 2 {
		t.Fatalf("splitSegments on a silent/noisy signal = %v, want at least 2 runs", starts)
	}
}

func TestEncodeVBSAdvancesBySampleCount(t *testing.T) {
	samples := make([]int32, 4608)
	half := len(samples) / 2
	for i := half; i < len(samples); i++ {
		if i%2 == 0 {
			samples[i] = 30000
		} else {
			samples[i] = -30000
		}
	}
	p := monoParams()
	p.VariableBlockSize = true

	var w bits.Writer
	buf := make([]byte, 1<<20)
	frames, err := encodeVBS(&w, buf, p, 44100, 16, [][]int32{samples}, 1000, false, false, nil)
	if err != nil {
		t.Fatalf("encodeVBS: %v", err)
	}
	if len(frames) < 2 {
		t.Fatalf("expected at least 2 frames for a silent/noisy block, got %d", len(frames))
	}

	var total int
	for _, f := range frames {
		total += int(f.Header.BlockSize)
	}
	if total != len(samples) {
		t.Fatalf("frame block sizes sum to %d, want %d", total, len(samples))
	}

	wantNum := uint64(1000)
	for _, f := range frames {
		if f.Header.Num != wantNum {
			t.Fatalf("frame Num = %d, want %d", f.Header.Num, wantNum)
		}
		if f.Header.HasFixedBlockSize {
			t.Fatalf("expected sample-number framing (HasFixedBlockSize=false) under VBS")
		}
		wantNum += uint64(f.Header.BlockSize)
	}
}
