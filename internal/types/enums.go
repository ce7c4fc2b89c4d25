package types

import "time"

// Plan is the closed set of subscription plans. The external API speaks
// "basic"/"paid"; the internal representation never leaves this enum and the
// mapping happens only at the interface boundary (ExternalName).
type Plan string

const (
	PlanFree Plan = "free"
	PlanPaid Plan = "paid"
)

// ExternalName returns the plan literal used on the wire. The free tier has
// historically been called "basic" in client-facing payloads.
func (p Plan) ExternalName() string {
	if p == PlanPaid {
		return "paid"
	}
	return "basic"
}

// SubscriptionStatus is the stored lifecycle state of a subscription record.
// Expiry is evaluated lazily: a stored Active record whose end date has passed
// is projected to PaidExpired at read time without a write.
type SubscriptionStatus string

const (
	SubStatusActive  SubscriptionStatus = "active"
	SubStatusExpired SubscriptionStatus = "expired"
)

// EffectiveStatus is the read-time projection of a subscription, combining
// the stored record with the current time.
type EffectiveStatus string

const (
	StatusFree        EffectiveStatus = "free"
	StatusPaidActive  EffectiveStatus = "paid_active"
	StatusPaidExpired EffectiveStatus = "paid_expired"
)

// MonthKey identifies a calendar month in UTC, formatted as "2006-01".
// It is the bucketing key for usage records and is derived exactly once per
// request so concurrent reads and writes agree on the bucket.
type MonthKey string

// MonthOf returns the MonthKey for the given instant, evaluated in UTC.
func MonthOf(t time.Time) MonthKey {
	return MonthKey(t.UTC().Format("2006-01"))
}

// BudgetTier mirrors the budget levels accepted by the travel endpoints.
type BudgetTier string

const (
	BudgetEconomy  BudgetTier = "Economy"
	BudgetStandard BudgetTier = "Standard"
	BudgetLuxury   BudgetTier = "Luxury"
)

// FlightClass mirrors the cabin classes accepted by the travel endpoints.
type FlightClass string

const (
	FlightEconomy    FlightClass = "Economy"
	FlightBusiness   FlightClass = "Business"
	FlightFirstClass FlightClass = "First Class"
)

// HotelRating mirrors the hotel rating filter accepted by the travel endpoints.
type HotelRating string

const (
	HotelAny       HotelRating = "Any"
	HotelThreeStar HotelRating = "3-star"
	HotelFourStar  HotelRating = "4-star"
	HotelFiveStar  HotelRating = "5-star"
)
