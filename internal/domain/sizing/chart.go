package sizing

import (
	"fmt"
	"strconv"
)

// Range is an inclusive measurement range in inches.
type Range struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

// Contains reports whether v lies inside the range, boundaries included.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

func (r Range) String() string {
	return formatInches(r.Min) + "-" + formatInches(r.Max) + " in"
}

// Row is one size of the chart. Rows may overlap or leave gaps.
type Row struct {
	Size  string `yaml:"size" json:"size"`
	Bust  Range  `yaml:"bust" json:"bust"`
	Waist Range  `yaml:"waist" json:"waist"`
	Hip   Range  `yaml:"hip" json:"hip"`
}

// Chart is an ordered size chart. Order breaks full ties.
type Chart []Row

// Validate checks that every row is labelled and has well-formed ranges.
func (c Chart) Validate() error {
	for i, row := range c {
		if row.Size == "" {
			return fmt.Errorf("row %d: size label is required", i)
		}
		for name, r := range map[string]Range{"bust": row.Bust, "waist": row.Waist, "hip": row.Hip} {
			if r.Min < 0 || r.Max < r.Min {
				return fmt.Errorf("row %s: %s range %v-%v is invalid", row.Size, name, r.Min, r.Max)
			}
		}
	}
	return nil
}

// DefaultChart is the built-in women's swimwear chart, in inches.
func DefaultChart() Chart {
	return Chart{
		{Size: "XS", Bust: Range{32, 34}, Waist: Range{26, 28}, Hip: Range{34, 36}},
		{Size: "S", Bust: Range{34, 36}, Waist: Range{28, 30}, Hip: Range{36, 38}},
		{Size: "M", Bust: Range{36, 38}, Waist: Range{30, 32}, Hip: Range{38, 40}},
		{Size: "L", Bust: Range{38, 40}, Waist: Range{32, 34}, Hip: Range{40, 42}},
		{Size: "XL", Bust: Range{40, 42}, Waist: Range{34, 36}, Hip: Range{42, 44}},
		{Size: "XXL", Bust: Range{42, 45}, Waist: Range{36, 39}, Hip: Range{44, 47}},
	}
}

func formatInches(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
