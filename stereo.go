package flake

import (
	"github.com/vantablac/flake/frame"
	"github.com/vantablac/flake/internal/rice"
)

// minStereoBlockSize is the smallest block size stereo decorrelation will
// even be attempted on; smaller blocks aren't worth the second-difference
// analysis.
const minStereoBlockSize = 32

// absSecondDiffSum sums |s[i] - 2*s[i-1] + s[i-2]| over i=2..n-1, a cheap
// proxy for how predictable (and thus how cheaply Rice-codable) a channel
// is.
func absSecondDiffSum(samples []int32) uint64 {
	var sum uint64
	for i := 2; i < len(samples); i++ {
		d := int64(samples[i]) - 2*int64(samples[i-1]) + int64(samples[i-2])
		if d < 0 {
			d = -d
		}
		sum += uint64(d)
	}
	return sum
}

// estimateBits converts a second-difference sum into an estimated Rice bit
// count for n values, via the same closed-form cost used by the real
// partition search.
func estimateBits(n int, sum uint64) uint64 {
	_, bits := rice.BestParam(n, sum)
	return bits
}

// chooseStereoMode computes the four decorrelation candidate scores
// (left+right independent, left+side, side+right, mid+side) and returns the
// cheapest. left and right must have equal, non-zero length.
func chooseStereoMode(left, right []int32) frame.Channels {
	n := len(left)
	mid := make([]int32, n)
	side := make([]int32, n)
	for i := range left {
		mid[i] = (left[i] + right[i]) >> 1
		side[i] = left[i] - right[i]
	}

	sumL := absSecondDiffSum(left)
	sumR := absSecondDiffSum(right)
	sumM := absSecondDiffSum(mid)
	sumS := absSecondDiffSum(side)

	bitsL := estimateBits(n, sumL)
	bitsR := estimateBits(n, sumR)
	bitsM := estimateBits(n, sumM)
	bitsS := estimateBits(n, sumS)

	scores := [4]uint64{
		bitsL + bitsR, // independent left/right
		bitsL + bitsS, // left/side
		bitsS + bitsR, // side/right
		bitsM + bitsS, // mid/side
	}
	modes := [4]frame.Channels{frame.ChannelsLR, frame.ChannelsLeftSide, frame.ChannelsSideRight, frame.ChannelsMidSide}

	best := 0
	for i := 1; i < 4; i++ {
		if scores[i] < scores[best] {
			best = i
		}
	}
	return modes[best]
}

// applyDecorrelation computes the channel pair for mode without modifying
// left or right (derived side and mid channels go into new buffers),
// returning the two channel buffers in the order they must be emitted as
// subframes, and the obits widening each buffer needs (a side channel
// always carries one more bit than the original depth).
func applyDecorrelation(mode frame.Channels, left, right []int32) (ch0, ch1 []int32, widen0, widen1 int) {
	n := len(left)
	switch mode {
	case frame.ChannelsLeftSide:
		side := make([]int32, n)
		for i := range left {
			side[i] = left[i] - right[i]
		}
		return left, side, 0, 1
	case frame.ChannelsSideRight:
		side := make([]int32, n)
		for i := range left {
			side[i] = left[i] - right[i]
		}
		return side, right, 1, 0
	case frame.ChannelsMidSide:
		mid := make([]int32, n)
		side := make([]int32, n)
		for i := range left {
			mid[i] = (left[i] + right[i]) >> 1
			side[i] = left[i] - right[i]
		}
		return mid, side, 0, 1
	default:
		return left, right, 0, 0
	}
}
