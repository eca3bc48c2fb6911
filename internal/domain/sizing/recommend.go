package sizing

import (
	"fmt"
	"sort"
)

// Verdict places a measurement relative to a row's range.
type Verdict string

// Verdicts.
const (
	Below  Verdict = "below"
	Inside Verdict = "inside"
	Above  Verdict = "above"
)

// Line explains one measured dimension against the chosen row.
type Line struct {
	Dimension string
	Value     float64
	Range     Range
	Verdict   Verdict
}

// String renders the line for a customer-facing reply.
func (l Line) String() string {
	switch l.Verdict {
	case Below:
		return fmt.Sprintf("%s %s in is below the %s range; you could consider sizing down.",
			l.Dimension, formatInches(l.Value), l.Range)
	case Above:
		return fmt.Sprintf("%s %s in is above the %s range; you could consider sizing up.",
			l.Dimension, formatInches(l.Value), l.Range)
	default:
		return fmt.Sprintf("%s %s in is within the %s range.",
			l.Dimension, formatInches(l.Value), l.Range)
	}
}

// Recommendation is the selected row with its per-dimension explanation.
type Recommendation struct {
	Size        string
	Row         Row
	Measurement Measurement
	Score       int
	Penalty     int
	Explanation []Line
}

type candidate struct {
	row     Row
	score   int
	penalty int
}

// Recommend selects the best-fit row: most measurements inside the row's ranges, then fewest
// above its maxima, then chart order. A value below a minimum counts toward neither.
// Returns false for an empty chart or a measurement with nothing present.
func Recommend(chart Chart, m Measurement) (Recommendation, bool) {
	if len(chart) == 0 || m.Present() == 0 {
		return Recommendation{}, false
	}

	candidates := make([]candidate, len(chart))
	for i, row := range chart {
		c := candidate{row: row}
		for _, d := range dimensions(row, m) {
			switch {
			case d.Range.Contains(d.Value):
				c.score++
			case d.Value > d.Range.Max:
				c.penalty++
			}
		}
		candidates[i] = c
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].penalty < candidates[j].penalty
	})

	best := candidates[0]
	return Recommendation{
		Size:        best.row.Size,
		Row:         best.row,
		Measurement: m,
		Score:       best.score,
		Penalty:     best.penalty,
		Explanation: Explain(best.row, m),
	}, true
}

// Explain classifies each present measurement against the row's range.
func Explain(row Row, m Measurement) []Line {
	dims := dimensions(row, m)
	lines := make([]Line, 0, len(dims))
	for _, d := range dims {
		switch {
		case d.Value < d.Range.Min:
			d.Verdict = Below
		case d.Value > d.Range.Max:
			d.Verdict = Above
		default:
			d.Verdict = Inside
		}
		lines = append(lines, d)
	}
	return lines
}

func dimensions(row Row, m Measurement) []Line {
	var out []Line
	if m.Bust > 0 {
		out = append(out, Line{Dimension: "Bust", Value: m.Bust, Range: row.Bust})
	}
	if m.Waist > 0 {
		out = append(out, Line{Dimension: "Waist", Value: m.Waist, Range: row.Waist})
	}
	if m.Hip > 0 {
		out = append(out, Line{Dimension: "Hip", Value: m.Hip, Range: row.Hip})
	}
	return out
}
