// Package rice implements Rice/Golomb parameter selection for FLAC residual
// partitions: per-partition optimal-k search by closed-form cost, partition
// sum folding across orders, and exhaustive partition-order search.
package rice

// MaxParam is the largest Rice parameter this encoder ever selects. The
// bitstream's 4-bit parameter field can hold values up to 14 before
// colliding with the reserved escape code 0xF, and the closed-form cost
// estimate never benefits from a larger k in practice.
const MaxParam = 14

// ParamBits is the width, in bits, of a partition's Rice parameter field.
const ParamBits = 4

// ZigZag folds a signed residual into its unsigned, magnitude-ordered form.
func ZigZag(v int32) uint32 {
	return uint32(v<<1) ^ uint32(v>>31)
}

// Cost returns the closed-form estimate of the bits needed to Rice-code n
// residuals whose ZigZag-folded sum is sum, using parameter k: each value
// costs k bits for the remainder plus (value>>k)+1 bits for the unary-coded
// quotient. For k == 0 that is exactly n+sum; for k > 0 the sum of the
// per-value quotients is approximated by sum>>k, giving n*(k+1) + (sum>>k).
func Cost(n int, sum uint64, k uint) uint64 {
	if k == 0 {
		return uint64(n) + sum
	}
	return uint64(n)*(uint64(k)+1) + (sum >> k)
}

// BestParam returns the Rice parameter in [0, MaxParam] that minimizes Cost
// for n residuals summing (after ZigZag folding) to sum, along with the
// resulting bit cost.
func BestParam(n int, sum uint64) (k uint, bits uint64) {
	bestK, bestBits := uint(0), Cost(n, sum, 0)
	for kk := uint(1); kk <= MaxParam; kk++ {
		c := Cost(n, sum, kk)
		if c >= bestBits {
			// Cost(n, sum, k) is convex in k; once it stops improving it
			// never improves again.
			break
		}
		bestBits, bestK = c, kk
	}
	return bestK, bestBits
}

// PartitionSums builds the folded residual sum for every partition at every
// order from 0 to maxOrder, given the ZigZag-folded residuals at the finest
// (maxOrder) partitioning. sums[o] holds 1<<o partition sums for order o.
//
// finest must already contain exactly 1<<maxOrder partition sums (the
// caller computes the leaf level by summing raw residual partitions, since
// only it knows the per-partition sample counts affected by the predictor
// warm-up region).
func PartitionSums(finest []uint64, maxOrder int) [][]uint64 {
	sums := make([][]uint64, maxOrder+1)
	sums[maxOrder] = finest
	for o := maxOrder - 1; o >= 0; o-- {
		n := 1 << uint(o)
		cur := make([]uint64, n)
		prev := sums[o+1]
		for j := 0; j < n; j++ {
			cur[j] = prev[2*j] + prev[2*j+1]
		}
		sums[o] = cur
	}
	return sums
}

// PartitionCounts returns, for partitioning order o against a block of
// blockSize samples with predictorOrder warm-up samples, the number of
// residual values held by each of the 1<<o partitions. The first partition
// is shorter than the rest by predictorOrder samples, since warm-up samples
// are stored verbatim rather than Rice-coded.
func PartitionCounts(blockSize, predictorOrder, o int) []int {
	n := 1 << uint(o)
	per := blockSize >> uint(o)
	counts := make([]int, n)
	for i := range counts {
		counts[i] = per
	}
	counts[0] -= predictorOrder
	return counts
}

// Plan is the outcome of a partition-order search: the chosen order, the
// Rice parameter for every partition at that order and the total bit cost
// including partition-order and parameter header overhead.
type Plan struct {
	Order     int
	Params    []uint
	TotalBits uint64
}

// SearchOrder evaluates every partition order from minOrder to maxOrder (each
// must evenly divide blockSize, and blockSize>>o must exceed predictorOrder
// so the first partition holds at least one residual) and returns the cheapest Plan. minOrder is clamped into
// [0, maxOrder]; if the configured floor leaves no order in range that
// actually divides blockSize with room for the predictor's warm-up samples,
// order 0 (which always qualifies) is tried as a fallback so a caller's
// minimum partition order can never suppress every valid plan.
func SearchOrder(finestSums []uint64, minOrder, maxOrder, blockSize, predictorOrder int) Plan {
	sums := PartitionSums(finestSums, maxOrder)

	if minOrder < 0 {
		minOrder = 0
	}
	if minOrder > maxOrder {
		minOrder = maxOrder
	}

	var best Plan
	best.TotalBits = ^uint64(0)

	tryOrder := func(o int) {
		if blockSize%(1<<uint(o)) != 0 {
			return
		}
		counts := PartitionCounts(blockSize, predictorOrder, o)
		if counts[0] <= 0 {
			return
		}

		params := make([]uint, len(counts))
		total := uint64(0)
		for j, n := range counts {
			k, bits := BestParam(n, sums[o][j])
			params[j] = k
			total += bits + ParamBits
		}
		total += 4 // partition-order field

		if total < best.TotalBits {
			best = Plan{Order: o, Params: params, TotalBits: total}
		}
	}

	for o := minOrder; o <= maxOrder; o++ {
		tryOrder(o)
	}
	if best.TotalBits == ^uint64(0) && minOrder > 0 {
		tryOrder(0)
	}

	return best
}
