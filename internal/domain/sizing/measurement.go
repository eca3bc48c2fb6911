package sizing

import (
	"fmt"
	"math"
	"regexp"
	"strconv"

	"github.com/kailas-cloud/storeqa/internal/domain"
)

// Unit is the unit the customer gave measurements in.
type Unit string

// Measurement units.
const (
	Inches      Unit = "in"
	Centimeters Unit = "cm"
)

// cmThreshold: any value at or above it marks the whole message as centimeters.
const cmThreshold = 60.0

const inchesPerCentimeter = 0.3937

// Measurement holds body measurements in inches. A zero field is absent.
// Unit records what the customer originally supplied.
type Measurement struct {
	Bust  float64
	Waist float64
	Hip   float64
	Unit  Unit
}

// Present returns the number of measurements present.
func (m Measurement) Present() int {
	n := 0
	for _, v := range []float64{m.Bust, m.Waist, m.Hip} {
		if v > 0 {
			n++
		}
	}
	return n
}

type dimension struct {
	name string
	// value captures an optional sign and a 2-3 digit numeral close after the keyword.
	value *regexp.Regexp
	// attempt matches the keyword followed by any digit within reach, readable or not.
	attempt *regexp.Regexp
}

func newDimension(name, keywords string) dimension {
	kw := `(?i)\b(?:` + keywords + `)\b`
	return dimension{
		name:    name,
		value:   regexp.MustCompile(kw + `[^0-9]{0,12}?(-?)(\d{2,3}(?:\.\d+)?)(?:\D|$)`),
		attempt: regexp.MustCompile(kw + `[^0-9]{0,40}\d`),
	}
}

var (
	bustDim  = newDimension("bust", "bust|chest")
	waistDim = newDimension("waist", "waist")
	hipDim   = newDimension("hip", "hips?")
)

// HasMeasurements reports whether the message carries at least one keyword-tagged numeral.
func HasMeasurements(message string) bool {
	for _, d := range []dimension{bustDim, waistDim, hipDim} {
		if d.value.MatchString(message) {
			return true
		}
	}
	return false
}

// Parse extracts bust, waist and hip from free text. The first match per dimension wins.
// Returns domain.ErrNoMeasurements when no keyword is followed by a number (a keyword alone,
// as in "high waist", is not a measurement) and domain.ErrParse when a number follows a
// keyword but cannot be read: negative, zero, too many digits or too far away.
func Parse(message string) (Measurement, error) {
	var (
		raw     [3]float64
		attempt bool
	)
	for i, d := range []dimension{bustDim, waistDim, hipDim} {
		if d.attempt.MatchString(message) {
			attempt = true
		}
		sub := d.value.FindStringSubmatch(message)
		if sub == nil {
			continue
		}
		if sub[1] == "-" {
			return Measurement{}, fmt.Errorf("%s is negative: %w", d.name, domain.ErrParse)
		}
		v, err := strconv.ParseFloat(sub[2], 64)
		if err != nil {
			return Measurement{}, fmt.Errorf("%s %q: %w", d.name, sub[2], domain.ErrParse)
		}
		if v == 0 {
			return Measurement{}, fmt.Errorf("%s is zero: %w", d.name, domain.ErrParse)
		}
		raw[i] = v
	}

	if raw == [3]float64{} {
		if attempt {
			return Measurement{}, fmt.Errorf("unreadable measurement: %w", domain.ErrParse)
		}
		return Measurement{}, domain.ErrNoMeasurements
	}
	return Normalize(raw[0], raw[1], raw[2])
}

// Normalize applies the unit rule to explicit values: if any value is at least 60 every
// value is treated as centimeters and converted to inches. Zero values are absent.
func Normalize(bust, waist, hip float64) (Measurement, error) {
	vals := []float64{bust, waist, hip}
	cm := false
	present := false
	for _, v := range vals {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return Measurement{}, fmt.Errorf("invalid measurement %v: %w", v, domain.ErrParse)
		}
		if v > 0 {
			present = true
		}
		if v >= cmThreshold {
			cm = true
		}
	}
	if !present {
		return Measurement{}, domain.ErrNoMeasurements
	}

	m := Measurement{Bust: bust, Waist: waist, Hip: hip, Unit: Inches}
	if cm {
		m.Unit = Centimeters
		m.Bust = toInches(bust)
		m.Waist = toInches(waist)
		m.Hip = toInches(hip)
	}
	return m, nil
}

func toInches(cm float64) float64 {
	return math.Round(cm*inchesPerCentimeter*10) / 10
}
