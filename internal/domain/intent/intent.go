package intent

import (
	"regexp"

	"github.com/kailas-cloud/storeqa/internal/domain/sizing"
)

// Tag is the classified purpose of an inbound message.
type Tag string

// Intent tags.
const (
	Sizing   Tag = "sizing"
	Delivery Tag = "delivery"
	Returns  Tag = "returns"
	Ordering Tag = "ordering"
	Payments Tag = "payments"
	Promo    Tag = "promo"
	Contact  Tag = "contact"
	General  Tag = "general"
)

// IsValid checks if the tag is one of the supported values.
func (t Tag) IsValid() bool {
	switch t {
	case Sizing, Delivery, Returns, Ordering, Payments, Promo, Contact, General:
		return true
	}
	return false
}

// Keyword returns the canonical catalog keyword for the tag. General has none.
func (t Tag) Keyword() string {
	switch t {
	case Sizing:
		return "size"
	case Delivery:
		return "shipping"
	case Returns:
		return "return"
	case Ordering:
		return "order"
	case Payments:
		return "payment"
	case Promo:
		return "discount"
	case Contact:
		return "contact"
	}
	return ""
}

type rule struct {
	tag     Tag
	pattern *regexp.Regexp
}

// Keyword rules in priority order. The numeric measurement override runs before all of them.
var rules = []rule{
	{Delivery, regexp.MustCompile(`(?i)\b(deliver(y|ed|ies)?|ship(ping|ped|s)?|dispatch(ed)?|courier|tracking|track my|arriv(e|al))\b`)},
	{Returns, regexp.MustCompile(`(?i)\b(return(s|ed|ing)?|refund(s|ed)?|exchange(s|d)?|replace(ment)?)\b`)},
	{Sizing, regexp.MustCompile(`(?i)\b(size(s|d)?|sizing|fit(s|ting)?|bust|chest|waist|hips?|measurements?|size chart|size guide)\b`)},
	{Ordering, regexp.MustCompile(`(?i)\b(order(s|ed)?|cancel(led|lation)?|checkout|cart|buy|purchase)\b`)},
	{Payments, regexp.MustCompile(`(?i)\b(pay(ment|ments|ing)?|cod|upi|card|emi|invoice|wallet)\b`)},
	{Promo, regexp.MustCompile(`(?i)\b(discount(s)?|coupon(s)?|promo|voucher|offer(s)?|sale|deal(s)?)\b`)},
	{Contact, regexp.MustCompile(`(?i)\b(contact|phone|e-?mail|call|whatsapp|support|customer care|reach you)\b`)},
}

// Classify routes a message to a handling branch. Explicit measurement numerals force
// Sizing regardless of other keywords. Total: General is the fallback.
func Classify(message string) Tag {
	if sizing.HasMeasurements(message) {
		return Sizing
	}
	for _, r := range rules {
		if r.pattern.MatchString(message) {
			return r.tag
		}
	}
	return General
}
