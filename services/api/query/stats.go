package query

import (
	"encoding/json"
	"math"
	"sort"

	"github.com/02loveslollipop/educacion-basica-viewer/services/api/dataset"
)

// Summary reduces a table's values. When Count is zero NoData is set and the numeric
// fields carry no meaning.
type Summary struct {
	Count  int
	Mean   float64
	Min    float64
	Max    float64
	NoData bool
}

// MarshalJSON omits the numeric fields when there is no data, so no NaN ever reaches a client.
func (s Summary) MarshalJSON() ([]byte, error) {
	if s.NoData {
		return json.Marshal(struct {
			Count  int  `json:"count"`
			NoData bool `json:"no_data"`
		}{Count: 0, NoData: true})
	}
	return json.Marshal(struct {
		Count  int     `json:"count"`
		Mean   float64 `json:"mean"`
		Min    float64 `json:"min"`
		Max    float64 `json:"max"`
		NoData bool    `json:"no_data"`
	}{Count: s.Count, Mean: s.Mean, Min: s.Min, Max: s.Max})
}

// SummaryStats computes count, mean, min and max of Valor.
func SummaryStats(t dataset.Table) Summary {
	if len(t.Records) == 0 {
		return Summary{NoData: true}
	}

	s := Summary{
		Count: len(t.Records),
		Min:   math.Inf(1),
		Max:   math.Inf(-1),
	}
	var total float64
	for _, rec := range t.Records {
		total += rec.Value
		if rec.Value < s.Min {
			s.Min = rec.Value
		}
		if rec.Value > s.Max {
			s.Max = rec.Value
		}
	}
	s.Mean = total / float64(s.Count)
	return s
}

// BoxStats is the five-number summary of one partition.
type BoxStats struct {
	Key    []string `json:"key"`
	Count  int      `json:"count"`
	Min    float64  `json:"min"`
	Q1     float64  `json:"q1"`
	Median float64  `json:"median"`
	Q3     float64  `json:"q3"`
	Max    float64  `json:"max"`
}

// DistributionTable holds box statistics per group key.
type DistributionTable struct {
	GroupBy []Field    `json:"group_by"`
	Rows    []BoxStats `json:"rows"`
}

// Distribution computes per-group quartiles of Valor with linear interpolation between
// order statistics. A nil groupBy means DefaultGroupBy.
func Distribution(t dataset.Table, groupBy []Field) (DistributionTable, error) {
	if groupBy == nil {
		groupBy = DefaultGroupBy
	}
	if err := validateFields(groupBy); err != nil {
		return DistributionTable{}, err
	}

	partitions := partition(t, groupBy)
	rows := make([]BoxStats, 0, len(partitions))
	for _, p := range partitions {
		values := append([]float64(nil), p.values...)
		sort.Float64s(values)
		rows = append(rows, BoxStats{
			Key:    p.key,
			Count:  len(values),
			Min:    values[0],
			Q1:     quantile(values, 0.25),
			Median: quantile(values, 0.5),
			Q3:     quantile(values, 0.75),
			Max:    values[len(values)-1],
		})
	}

	return DistributionTable{GroupBy: groupBy, Rows: rows}, nil
}

// quantile expects sorted, non-empty input.
func quantile(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
}
