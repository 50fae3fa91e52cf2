package stats

import (
	"errors"
	"fmt"
	"sort"
)

// AggregationStrategy selects how multiple samples collapse into one value.
type AggregationStrategy string

const (
	AggMean   AggregationStrategy = "mean"
	AggMedian AggregationStrategy = "median"
	AggMin    AggregationStrategy = "min"
	AggMax    AggregationStrategy = "max"
	AggP95    AggregationStrategy = "p95"
	AggP99    AggregationStrategy = "p99"
	AggFirst  AggregationStrategy = "first"
	AggLast   AggregationStrategy = "last"
	AggSum    AggregationStrategy = "sum"
)

// MissingDataStrategy selects how nil samples are handled before
// aggregation.
type MissingDataStrategy string

const (
	MissingSkip        MissingDataStrategy = "skip"
	MissingZero        MissingDataStrategy = "zero"
	MissingInterpolate MissingDataStrategy = "interpolate"
	MissingForwardFill MissingDataStrategy = "forward_fill"
	MissingRaise       MissingDataStrategy = "raise"
)

// AggregateSamples aggregates samples (nil entries represent missing data)
// using strategy, after resolving missing entries per missingStrategy.
// Returns (0, nil) if there is no data, and a non-nil error if the missing
// data strategy or the aggregation strategy fails.
func AggregateSamples(samples []*float64, strategy AggregationStrategy, missingStrategy MissingDataStrategy) (float64, error) {
	if len(samples) == 0 {
		return 0, nil
	}

	processed, err := handleMissingData(samples, missingStrategy)
	if err != nil {
		return 0, err
	}
	if processed == nil {
		return 0, nil
	}

	switch strategy {
	case AggMean:
		return mean(processed), nil
	case AggMedian:
		sorted := append([]float64(nil), processed...)
		sort.Float64s(sorted)
		return medianSorted(sorted), nil
	case AggMin:
		return minOf(processed), nil
	case AggMax:
		return maxOf(processed), nil
	case AggP95:
		return computePercentile(processed, 0.95), nil
	case AggP99:
		return computePercentile(processed, 0.99), nil
	case AggFirst:
		return processed[0], nil
	case AggLast:
		return processed[len(processed)-1], nil
	case AggSum:
		return sumOf(processed), nil
	default:
		return 0, fmt.Errorf("unknown aggregation strategy %q", strategy)
	}
}

func handleMissingData(samples []*float64, strategy MissingDataStrategy) ([]float64, error) {
	switch strategy {
	case MissingSkip:
		return skipMissing(samples), nil
	case MissingZero:
		return fillMissingWithZero(samples), nil
	case MissingInterpolate:
		return interpolateMissing(samples), nil
	case MissingForwardFill:
		return forwardFillMissing(samples), nil
	case MissingRaise:
		return raiseOnMissing(samples)
	default:
		return nil, fmt.Errorf("unknown missing-data strategy %q", strategy)
	}
}

func skipMissing(samples []*float64) []float64 {
	var result []float64
	for _, s := range samples {
		if s != nil {
			result = append(result, *s)
		}
	}
	return result
}

func fillMissingWithZero(samples []*float64) []float64 {
	result := make([]float64, len(samples))
	for i, s := range samples {
		if s != nil {
			result[i] = *s
		}
	}
	return result
}

// interpolateMissing performs linear interpolation for interior gaps and
// edge fill (forward-fill at the head, backward-fill at the tail). Returns
// nil if every sample is missing.
func interpolateMissing(samples []*float64) []float64 {
	if len(samples) == 0 {
		return nil
	}

	result := make([]*float64, len(samples))
	copy(result, samples)

	for i, v := range result {
		if v != nil {
			continue
		}

		var prevVal float64
		prevIdx := -1
		hasPrev := false
		for j := i - 1; j >= 0; j-- {
			if result[j] != nil {
				prevVal = *result[j]
				prevIdx = j
				hasPrev = true
				break
			}
		}

		var nextVal float64
		nextIdx := -1
		hasNext := false
		for j := i + 1; j < len(result); j++ {
			if result[j] != nil {
				nextVal = *result[j]
				nextIdx = j
				hasNext = true
				break
			}
		}

		switch {
		case hasPrev && hasNext:
			totalGap := float64(nextIdx - prevIdx)
			position := float64(i - prevIdx)
			interpolated := prevVal + (nextVal-prevVal)*(position/totalGap)
			result[i] = &interpolated
		case hasPrev:
			v := prevVal
			result[i] = &v
		case hasNext:
			v := nextVal
			result[i] = &v
		default:
			return nil
		}
	}

	out := make([]float64, len(result))
	for i, v := range result {
		out[i] = *v
	}
	return out
}

func forwardFillMissing(samples []*float64) []float64 {
	if len(samples) == 0 {
		return nil
	}

	var result []float64
	var lastValid *float64
	for _, s := range samples {
		if s != nil {
			lastValid = s
			result = append(result, *s)
		} else if lastValid != nil {
			result = append(result, *lastValid)
		}
	}
	return result
}

func raiseOnMissing(samples []*float64) ([]float64, error) {
	missing := 0
	for _, s := range samples {
		if s == nil {
			missing++
		}
	}
	if missing > 0 {
		return nil, errors.New("missing data encountered")
	}
	result := make([]float64, len(samples))
	for i, s := range samples {
		result[i] = *s
	}
	return result, nil
}

func computePercentile(values []float64, percentile float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n := len(sorted)
	idx := int(percentile * float64(n))
	if idx > n-1 {
		idx = n - 1
	}
	return sorted[idx]
}

func minOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func sumOf(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum
}

// GroupByStatisticType groups label-value items (generic maps) by their
// "Statistic Type"/"statistic_type" field, defaulting to "mean" and
// lowercasing the discriminator.
func GroupByStatisticType(labelValues []map[string]interface{}) map[string][]map[string]interface{} {
	grouped := map[string][]map[string]interface{}{}

	for _, item := range labelValues {
		statType := "mean"
		if v, ok := item["Statistic Type"]; ok {
			statType = fmt.Sprint(v)
		} else if v, ok := item["statistic_type"]; ok {
			statType = fmt.Sprint(v)
		}
		statType = toLower(statType)

		grouped[statType] = append(grouped[statType], item)
	}

	return grouped
}

func toLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
