// Basic calculation functions
package calc

import (
	"math"
	"sort"
)

// Smallest and largest of supplied values. Both are 0 when values is empty.
func MinMaxFloat64(values []float64) (min, max float64) {
	if len(values) == 0 {
		return
	}
	min, max = math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return
}

// Calculates mean of supplied values after removing percentage of extreme values (post-sort)
func TrimmedMeanFloat64(values []float64, trimPercent float64) (mean float64) {
	if trimPercent < 0 {
		trimPercent = 0
	}

	n := len(values)
	if n == 0 {
		return
	}

	// Copy and sort
	nums := make([]float64, n)
	copy(nums, values)
	sort.Float64s(nums)

	// How many to trim from each end
	trimCount := int(float64(n) * trimPercent)
	if trimCount*2 >= n {
		trimCount = (n - 1) / 2
	}

	start := trimCount
	end := n - trimCount

	var sum float64
	for _, v := range nums[start:end] {
		sum += v
	}

	mean = sum / float64(end-start)
	return
}
