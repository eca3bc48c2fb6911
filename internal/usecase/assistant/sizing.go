package assistant

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kailas-cloud/storeqa/internal/domain"
	"github.com/kailas-cloud/storeqa/internal/domain/sizing"
)

// SizeAnswer is the outcome of the sizing branch. Recommendation is nil when the
// measurements were missing or unreadable; Text then asks the customer for them.
type SizeAnswer struct {
	Recommendation *sizing.Recommendation
	Text           string
}

// RecommendSize picks a size for explicit measurements. Values of 60 or more are taken as
// centimeters. Missing or invalid values return domain.ErrNoMeasurements or domain.ErrParse.
func (s *Service) RecommendSize(bust, waist, hip float64) (SizeAnswer, error) {
	m, err := sizing.Normalize(bust, waist, hip)
	if err != nil {
		return SizeAnswer{}, fmt.Errorf("normalize measurements: %w", err)
	}
	return s.recommend(m), nil
}

// sizeFromMessage runs the sizing engine over free text. ok is false when no number follows
// a measurement keyword, leaving the message to retrieval.
func (s *Service) sizeFromMessage(message string) (SizeAnswer, bool) {
	m, err := sizing.Parse(message)
	switch {
	case errors.Is(err, domain.ErrNoMeasurements):
		return SizeAnswer{}, false
	case err != nil:
		return SizeAnswer{Text: RestateReply}, true
	}
	return s.recommend(m), true
}

func (s *Service) recommend(m sizing.Measurement) SizeAnswer {
	rec, ok := sizing.Recommend(s.chart, m)
	if !ok {
		return SizeAnswer{Text: AskMeasurementsReply}
	}
	return SizeAnswer{Recommendation: &rec, Text: renderSize(rec)}
}

func renderSize(rec sizing.Recommendation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Based on your measurements, I'd recommend size %s.", rec.Size)
	for _, line := range rec.Explanation {
		b.WriteString("\n- ")
		b.WriteString(line.String())
	}
	if rec.Measurement.Unit == sizing.Centimeters {
		b.WriteString("\n(Converted from cm to inches.)")
	}
	b.WriteString("\nIf you're between sizes, check the size guide or ask me about the fit of a specific style.")
	return b.String()
}
