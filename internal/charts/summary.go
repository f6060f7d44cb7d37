package charts

import (
	"math"
	"slices"

	"github.com/montanaflynn/stats"

	"shipment-dashboard/internal/models"
)

// Summary holds the box plot statistics of one group.
type Summary struct {
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
}

type GroupSummary struct {
	ShippingMethod string    `json:"shipping_method"`
	Summary        Summary   `json:"summary"`
	Values         []float64 `json:"values"`
}

// Summarize computes box plot statistics. An empty input gives a zero Summary.
func Summarize(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}

	data := stats.Float64Data(values)
	s := Summary{Count: len(values)}
	s.Min, _ = data.Min()
	s.Max, _ = data.Max()
	s.Median, _ = data.Median()
	s.Mean, _ = data.Mean()

	sorted := slices.Sorted(slices.Values(values))
	s.Q1 = quantile(sorted, 0.25)
	s.Q3 = quantile(sorted, 0.75)
	return s
}

// quantile interpolates linearly between the two closest ranks of sorted,
// the same rule seaborn box plots use.
func quantile(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// Distribution pairs each method's raw values with their summary.
func Distribution(groups []models.MethodSamples) []GroupSummary {
	out := make([]GroupSummary, 0, len(groups))
	for _, g := range groups {
		out = append(out, GroupSummary{
			ShippingMethod: g.ShippingMethod,
			Summary:        Summarize(g.Values),
			Values:         g.Values,
		})
	}
	return out
}
