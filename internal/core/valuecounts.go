package core

import "sort"

// valueGroup is one distinct present value of a column and the rows holding it.
type valueGroup struct {
	Label string
	Rows  []int
}

// groupRows groups the present values of c. Text columns keep first-appearance
// order; other kinds follow their natural order (numeric, chronological, or
// category label order).
func groupRows(c *Column) []valueGroup {
	groups := groupByAppearance(c)
	if c.Kind != KindText {
		sort.SliceStable(groups, func(a, b int) bool {
			return c.Less(groups[a].Rows[0], groups[b].Rows[0])
		})
	}
	return groups
}

func groupByAppearance(c *Column) []valueGroup {
	index := make(map[string]int)
	var groups []valueGroup
	for i := 0; i < c.Len(); i++ {
		if c.IsMissing(i) {
			continue
		}
		label := c.Format(i)
		g, ok := index[label]
		if !ok {
			g = len(groups)
			index[label] = g
			groups = append(groups, valueGroup{Label: label})
		}
		groups[g].Rows = append(groups[g].Rows, i)
	}
	return groups
}

// ValueCount is the number of occurrences of one distinct value.
type ValueCount struct {
	Label string  `json:"label"`
	Count float64 `json:"count"`
}

// ValueCounts counts the present values of c, most frequent first. Ties keep
// the order in which values first appear.
func ValueCounts(c *Column) []ValueCount {
	groups := groupByAppearance(c)
	counts := make([]ValueCount, len(groups))
	for i, g := range groups {
		counts[i] = ValueCount{Label: g.Label, Count: float64(len(g.Rows))}
	}
	sort.SliceStable(counts, func(a, b int) bool {
		return counts[a].Count > counts[b].Count
	})
	return counts
}

// Pie chart slice limits: above maxPieSlices distinct values, the first
// pieTopSlices are kept and the rest are summed into "Other".
const (
	maxPieSlices = 10
	pieTopSlices = 9
	otherLabel   = "Other"
)

// PieSlices limits value counts for display. The "Other" slice is added only
// when the remainder is positive.
func PieSlices(counts []ValueCount) []ValueCount {
	if len(counts) <= maxPieSlices {
		return append([]ValueCount(nil), counts...)
	}
	out := append([]ValueCount(nil), counts[:pieTopSlices]...)
	var other float64
	for _, vc := range counts[pieTopSlices:] {
		other += vc.Count
	}
	if other > 0 {
		out = append(out, ValueCount{Label: otherLabel, Count: other})
	}
	return out
}
