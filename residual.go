package flake

import (
	"github.com/vantablac/flake/frame"
	"github.com/vantablac/flake/internal/lpc"
	"github.com/vantablac/flake/internal/rice"
)

// lpcPrecision is the fixed coefficient precision, in bits, used for every
// LPC subframe.
const lpcPrecision = 15

// isConstant reports whether every sample in samples equals samples[0].
func isConstant(samples []int32) bool {
	if len(samples) == 0 {
		return true
	}
	for _, s := range samples[1:] {
		if s != samples[0] {
			return false
		}
	}
	return true
}

// computeFixedResidual fills residual[0:len(samples)-order] with the
// order-th forward difference of samples, i.e. the residual of fixed
// prediction at the given order.
func computeFixedResidual(samples []int32, order int, residual []int32) {
	coeffs := frame.FixedCoeffs[order]
	for i := order; i < len(samples); i++ {
		var pred int64
		for j, c := range coeffs {
			pred += int64(c) * int64(samples[i-1-j])
		}
		residual[i-order] = samples[i] - int32(pred)
	}
}

// computeLPCResidual fills residual[0:len(samples)-order] using the
// quantized LPC coefficients and shift, accumulating in 64 bits so that a
// 15-bit coefficient times a 32-bit sample, summed over up to 32 taps,
// cannot overflow.
func computeLPCResidual(samples []int32, coeffs []int32, shift int, residual []int32) {
	order := len(coeffs)
	for i := order; i < len(samples); i++ {
		var pred int64
		for j, c := range coeffs {
			pred += int64(c) * int64(samples[i-1-j])
		}
		pred >>= uint(shift)
		residual[i-order] = samples[i] - int32(pred)
	}
}

// partitionOrderBound returns the largest partition order that SearchOrder
// may consider: it must not exceed maxPartOrder, must evenly divide
// blockSize (so it is bounded by the number of trailing zero bits of
// blockSize), and, when predictorOrder > 0, must leave at least one
// residual in the first partition.
func partitionOrderBound(blockSize, predictorOrder, maxPartOrder int) int {
	bound := maxPartOrder

	// Largest power of two dividing blockSize, i.e. its trailing zero bits.
	tz := 0
	for n := blockSize; n > 0 && n&1 == 0; n >>= 1 {
		tz++
	}
	if tz < bound {
		bound = tz
	}

	if predictorOrder > 0 {
		for bound > 0 && blockSize>>uint(bound) <= predictorOrder {
			bound--
		}
	}
	if bound < 0 {
		bound = 0
	}
	return bound
}

// foldedPartitionSums computes the ZigZag-folded residual sum for each of
// the 2^order finest partitions, honoring the warm-up shortened first
// partition.
func foldedPartitionSums(residual []int32, blockSize, predictorOrder, order int) []uint64 {
	n := 1 << uint(order)
	sums := make([]uint64, n)
	per := blockSize >> uint(order)
	idx := 0
	for p := 0; p < n; p++ {
		count := per
		if p == 0 {
			count -= predictorOrder
		}
		var sum uint64
		for i := 0; i < count; i++ {
			sum += uint64(rice.ZigZag(residual[idx]))
			idx++
		}
		sums[p] = sum
	}
	return sums
}

// riceCost runs the full partition-order search for one candidate residual,
// honoring the configured partition-order floor minPartOrder, and returns the
// winning plan plus its total bit cost, including the warm-up samples stored
// verbatim at obits each.
func riceCost(residual []int32, blockSize, predictorOrder, minPartOrder, maxPartOrder, obits int) rice.Plan {
	maxOrder := partitionOrderBound(blockSize, predictorOrder, maxPartOrder)
	finest := foldedPartitionSums(residual, blockSize, predictorOrder, maxOrder)
	plan := rice.SearchOrder(finest, minPartOrder, maxOrder, blockSize, predictorOrder)
	plan.TotalBits += uint64(predictorOrder * obits)
	return plan
}

// fixedCandidate is the outcome of evaluating one fixed prediction order.
type fixedCandidate struct {
	order    int
	residual []int32
	plan     rice.Plan
}

// chooseFixed evaluates every fixed prediction order in [minOrder,maxOrder]
// (capped at 4) and returns the cheapest.
func chooseFixed(samples []int32, minOrder, maxOrder, minPartOrder, maxPartOrder, obits int) fixedCandidate {
	if maxOrder > 4 {
		maxOrder = 4
	}
	if minOrder < 0 {
		minOrder = 0
	}

	var best fixedCandidate
	best.plan.TotalBits = ^uint64(0)

	for order := minOrder; order <= maxOrder; order++ {
		if len(samples) <= order {
			continue
		}
		residual := make([]int32, len(samples)-order)
		computeFixedResidual(samples, order, residual)
		plan := riceCost(residual, len(samples), order, minPartOrder, maxPartOrder, obits)
		if plan.TotalBits < best.plan.TotalBits {
			best = fixedCandidate{order: order, residual: residual, plan: plan}
		}
	}
	return best
}

// lpcCandidate is the outcome of evaluating one LPC prediction order.
type lpcCandidate struct {
	order    int
	coeffs   []int32
	shift    int
	residual []int32
	plan     rice.Plan
}

// evalLPCOrder quantizes the order-th row of coefs and scores it.
func evalLPCOrder(samples []int32, coefs lpc.Coeffs, order, minPartOrder, maxPartOrder, obits int) lpcCandidate {
	q := lpc.Quantize(coefs.Order[order], lpcPrecision)
	residual := make([]int32, len(samples)-order)
	computeLPCResidual(samples, q.Coeffs, q.Shift, residual)
	plan := riceCost(residual, len(samples), order, minPartOrder, maxPartOrder, obits)
	// Header overhead: 4-bit precision-1, 5-bit shift, order*precision
	// coefficient bits, on top of the warm-up samples riceCost already
	// charged for.
	plan.TotalBits += 4 + 5 + uint64(order*lpcPrecision)
	return lpcCandidate{order: order, coeffs: q.Coeffs, shift: q.Shift, residual: residual, plan: plan}
}

// chooseLPCOrder runs the configured order-selection strategy and returns
// the winning candidate.
func chooseLPCOrder(samples []int32, coefs lpc.Coeffs, minOrder, maxOrder int, method OrderMethod, minPartOrder, maxPartOrder, obits int) lpcCandidate {
	if maxOrder > lpc.MaxOrder {
		maxOrder = lpc.MaxOrder
	}
	if minOrder < 1 {
		minOrder = 1
	}

	evaluated := make(map[int]lpcCandidate)
	eval := func(order int) lpcCandidate {
		if order < minOrder || order > maxOrder {
			return lpcCandidate{plan: rice.Plan{TotalBits: ^uint64(0)}}
		}
		if c, ok := evaluated[order]; ok {
			return c
		}
		c := evalLPCOrder(samples, coefs, order, minPartOrder, maxPartOrder, obits)
		evaluated[order] = c
		return c
	}

	best := func(candidates ...lpcCandidate) lpcCandidate {
		b := lpcCandidate{plan: rice.Plan{TotalBits: ^uint64(0)}}
		for _, c := range candidates {
			if c.plan.TotalBits < b.plan.TotalBits {
				b = c
			}
		}
		return b
	}

	switch method {
	case OrderMax:
		return eval(maxOrder)

	case OrderEst:
		est := lpc.EstimateOrder(coefs.Ref[:maxOrder])
		if est < minOrder {
			est = minOrder
		}
		if est > maxOrder {
			est = maxOrder
		}
		return eval(est)

	case Order2Level, Order4Level, Order8Level:
		levels := map[OrderMethod]int{Order2Level: 2, Order4Level: 4, Order8Level: 8}[method]
		var candidates []lpcCandidate
		for j := 1; j <= levels; j++ {
			order := minOrder + (maxOrder-minOrder)*j/levels
			candidates = append(candidates, eval(order))
		}
		return best(candidates...)

	case OrderSearch:
		var candidates []lpcCandidate
		for order := minOrder; order <= maxOrder; order++ {
			candidates = append(candidates, eval(order))
		}
		return best(candidates...)

	case OrderLog:
		opt := minOrder - 1 + (maxOrder-minOrder)/3
		if opt < minOrder {
			opt = minOrder
		}
		bestC := eval(opt)
		for step := 16; step >= 1; step >>= 1 {
			improved := false
			for _, o := range [3]int{opt - step, opt, opt + step} {
				c := eval(o)
				if c.plan.TotalBits < bestC.plan.TotalBits {
					bestC = c
					opt = o
					improved = true
				}
			}
			_ = improved
		}
		return bestC
	}

	return eval(maxOrder)
}

// encodeSubframe picks the cheapest coding (constant, verbatim, fixed or
// LPC) for one channel's samples and fills sub with the winning choice. sub
// must already have sub.Samples set to the channel's (possibly decorrelated
// and wasted-bits-shifted) samples and sub.Obits set to their raw width.
func encodeSubframe(sub *frame.Subframe, params *Params) {
	samples := sub.Samples
	obits := sub.Obits - sub.Wasted

	if isConstant(samples) {
		sub.Pred = frame.PredConstant
		sub.Order = 0
		return
	}

	if len(samples) < 5 || params.PredictionType == PredictionNone {
		sub.Pred = frame.PredVerbatim
		sub.Order = 0
		return
	}

	bestBits := uint64(len(samples)) * uint64(obits)
	sub.Pred = frame.PredVerbatim
	sub.Order = 0

	if params.PredictionType == PredictionFixed || params.PredictionType == PredictionLevinson {
		fixedMax := params.MaxPredOrder
		if params.PredictionType == PredictionLevinson {
			// Levinson streams still compare against fixed prediction as a
			// cheap fallback, independent of the LPC order range.
			fixedMax = 4
		}
		fixed := chooseFixed(samples, params.MinPredOrder, fixedMax, params.MinPartOrder, params.MaxPartOrder, obits)
		if fixed.plan.TotalBits < bestBits {
			bestBits = fixed.plan.TotalBits
			sub.Pred = frame.PredFixed
			sub.Order = fixed.order
			sub.Residual = fixed.residual
			sub.Rice = frame.RicePartition{Order: fixed.plan.Order, Params: fixed.plan.Params}
		}
	}

	if params.PredictionType == PredictionLevinson {
		windowed := make([]float64, len(samples))
		lpc.WelchWindow(samples, windowed)
		maxOrder := params.MaxPredOrder
		if maxOrder > lpc.MaxOrder {
			maxOrder = lpc.MaxOrder
		}
		autoc := make([]float64, maxOrder+1)
		lpc.Autocorrelate(windowed, maxOrder, autoc)
		coefs := lpc.LevinsonDurbin(autoc, maxOrder)

		cand := chooseLPCOrder(samples, coefs, params.MinPredOrder, maxOrder, params.OrderMethod, params.MinPartOrder, params.MaxPartOrder, obits)
		if cand.plan.TotalBits < bestBits {
			bestBits = cand.plan.TotalBits
			sub.Pred = frame.PredLPC
			sub.Order = cand.order
			sub.Coeffs = cand.coeffs
			sub.Shift = cand.shift
			sub.Precision = lpcPrecision
			sub.Residual = cand.residual
			sub.Rice = frame.RicePartition{Order: cand.plan.Order, Params: cand.plan.Params}
		}
	}
}
