package flake

import (
	"github.com/vantablac/flake/frame"
	"github.com/vantablac/flake/internal/bits"
)

// minVBSBlockSize and the multiple-of-8 requirement gate when the splitter
// may run at all; below this, or on an odd-eighth block, the caller must
// fall back to a single fixed-size frame.
const minVBSBlockSize = 128

// canSplit reports whether a block of n samples per channel is eligible for
// variable-block-size segmentation.
func canSplit(n int) bool {
	return n >= minVBSBlockSize && n%8 == 0
}

// segmentSecondDiffSum sums |s[i]-2*s[i-1]+s[i-2]| for i in [start,end),
// skipping the first two samples of the whole channel (there is no valid
// second difference before index 2).
func segmentSecondDiffSum(samples []int32, start, end int) uint64 {
	var sum uint64
	if start < 2 {
		start = 2
	}
	for i := start; i < end; i++ {
		d := int64(samples[i]) - 2*int64(samples[i-1]) + int64(samples[i-2])
		if d < 0 {
			d = -d
		}
		sum += uint64(d)
	}
	return sum
}

func absDiffU64(a, b uint64) uint64 {
	if a > b {
		return a - b
	}
	return b - a
}

// splitSegments implements the v1 heuristic: the block is divided into 8
// equal segments, each segment's average (across channels) second-difference
// sum is compared to its predecessor, and a segment starts a new run when
// |r[i-1]-r[i]|*200/r[i-1] exceeds 50 (a relative change of more than 25%),
// or when its predecessor's sum is zero and its own is not. Segment 0 always
// starts the first run. The
// returned slice holds the starting sample index of each run, in order.
func splitSegments(channels [][]int32) []int {
	n := len(channels[0])
	segLen := n / 8

	r := make([]uint64, 8)
	for seg := 0; seg < 8; seg++ {
		start := seg * segLen
		end := start + segLen
		var total uint64
		for _, ch := range channels {
			total += segmentSecondDiffSum(ch, start, end)
		}
		r[seg] = total / uint64(len(channels))
	}

	starts := []int{0}
	for i := 1; i < 8; i++ {
		if r[i-1] == 0 {
			if r[i] != 0 {
				starts = append(starts, i*segLen)
			}
			continue
		}
		ratio := absDiffU64(r[i-1], r[i]) * 200 / r[i-1]
		if ratio > 50 {
			starts = append(starts, i*segLen)
		}
	}
	return starts
}

// encodeVBS splits channels — one full-block slice per channel, all of equal
// length n — into runs per the v1 heuristic and encodes each run as its own
// frame via encodeFrame, calling emit with each frame's encoded bytes as
// soon as it is ready (buf is reused between runs, so bytes must be
// consumed before the next run overwrites it). firstSampleNum is the sample
// number of channels[0] within the stream. On success it returns every
// encoded frame, in order; on any run's encoding or emit failure it returns
// an error and no frames, so the caller can roll its frame counter back
// without having advanced it.
func encodeVBS(w *bits.Writer, buf []byte, params *Params, sampleRate uint32, bitsPerSample uint8, channels [][]int32, firstSampleNum uint64, sampleRateFromStreamInfo, bpsFromStreamInfo bool, emit func(f *frame.Frame, encoded []byte) error) ([]*frame.Frame, error) {
	n := len(channels[0])
	starts := splitSegments(channels)

	frames := make([]*frame.Frame, 0, len(starts))
	num := firstSampleNum
	for i, start := range starts {
		end := n
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		run := make([][]int32, len(channels))
		for c, ch := range channels {
			run[c] = ch[start:end]
		}
		f, encoded, err := encodeFrame(w, buf, params, sampleRate, bitsPerSample, run, num, sampleRateFromStreamInfo, bpsFromStreamInfo)
		if err != nil {
			return nil, err
		}
		if emit != nil {
			if err := emit(f, encoded); err != nil {
				return nil, err
			}
		}
		frames = append(frames, f)
		num += uint64(end - start)
	}
	return frames, nil
}
