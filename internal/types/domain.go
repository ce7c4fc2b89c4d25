package types

import "time"

// ---------------------------------------------------------------------------
// Metering & Paywall
// ---------------------------------------------------------------------------

// Subscription is the durable record of a user's plan. At most one row exists
// per user. A free-tier user typically has no row at all; the store
// synthesizes a default Free/Active record on read.
type Subscription struct {
	UserID             string             `json:"userid"`
	Plan               Plan               `json:"plan"`
	Status             SubscriptionStatus `json:"status"`
	StartDate          *time.Time         `json:"start_date,omitempty"`
	EndDate            *time.Time         `json:"end_date,omitempty"`
	ProviderPaymentRef string             `json:"provider_payment_ref,omitempty"`
	ProviderOrderRef   string             `json:"provider_order_ref,omitempty"`
	LastVerified       *time.Time         `json:"last_verified,omitempty"`
}

// Effective projects the subscription's status at the given instant.
// A Paid/Active record whose end date has passed is PaidExpired; the stored
// row is not mutated (lazy expiry).
func (s *Subscription) Effective(now time.Time) EffectiveStatus {
	if s == nil || s.Plan != PlanPaid || s.Status != SubStatusActive {
		return StatusFree
	}
	if s.EndDate == nil || now.After(*s.EndDate) {
		return StatusPaidExpired
	}
	return StatusPaidActive
}

// UsageRecord counts metered calls for one user in one calendar month.
// Absence of a record for the current month means zero usage; the count only
// increases within a month.
type UsageRecord struct {
	UserID    string   `json:"userid"`
	Month     MonthKey `json:"month"`
	PostCount int      `json:"post_count"`
}

// CheckoutSession correlates a provider checkout session with the local user
// who initiated it. It is consumed exactly once by a successful verification.
type CheckoutSession struct {
	SessionID string    `json:"session_id"`
	UserID    string    `json:"userid"`
	CreatedAt time.Time `json:"created_at"`
}

// Decision is the outcome of a quota check for one metered request.
type Decision struct {
	Allowed bool
	// Reason is the user-facing denial message; empty when Allowed.
	Reason string
	// UsageCount is the post-decision count for the current month, when known.
	UsageCount int
}

// ---------------------------------------------------------------------------
// Travel Domain
// ---------------------------------------------------------------------------

// ResearchRequest is the payload for destination research.
type ResearchRequest struct {
	UserID            string      `json:"userid" validate:"required"`
	Destination       string      `json:"destination" validate:"required"`
	Theme             string      `json:"theme" validate:"required"`
	Activities        string      `json:"activities" validate:"required"`
	NumDays           int         `json:"num_days" validate:"required,gte=1,lte=30"`
	Budget            BudgetTier  `json:"budget" validate:"required,oneof=Economy Standard Luxury"`
	FlightClass       FlightClass `json:"flight_class" validate:"required,oneof=Economy Business 'First Class'"`
	HotelRating       HotelRating `json:"hotel_rating" validate:"required,oneof=Any 3-star 4-star 5-star"`
	VisaRequired      bool        `json:"visa_required"`
	InsuranceRequired bool        `json:"insurance_required"`
}

// ResearchRecord is a persisted research result. Cached is set by the service
// layer when the record was served from storage instead of freshly generated;
// it is never persisted.
type ResearchRecord struct {
	ID           string     `json:"id"`
	UserID       string     `json:"userid"`
	Destination  string     `json:"destination"`
	Theme        string     `json:"theme"`
	Activities   string     `json:"activities"`
	NumDays      int        `json:"num_days"`
	Budget       BudgetTier `json:"budget"`
	ResearchData string     `json:"research_data"`
	CreatedAt    time.Time  `json:"created_at"`
	Cached       bool       `json:"-"`
}

// ItineraryRequest is the payload for itinerary generation.
type ItineraryRequest struct {
	UserID            string      `json:"userid" validate:"required"`
	Destination       string      `json:"destination" validate:"required"`
	Theme             string      `json:"theme" validate:"required"`
	Activities        string      `json:"activities" validate:"required"`
	NumDays           int         `json:"num_days" validate:"required,gte=1,lte=30"`
	Budget            BudgetTier  `json:"budget" validate:"required,oneof=Economy Standard Luxury"`
	FlightClass       FlightClass `json:"flight_class" validate:"required,oneof=Economy Business 'First Class'"`
	HotelRating       HotelRating `json:"hotel_rating" validate:"required,oneof=Any 3-star 4-star 5-star"`
	VisaRequired      bool        `json:"visa_required"`
	InsuranceRequired bool        `json:"insurance_required"`
}

// ItineraryRecord is a persisted generated itinerary.
type ItineraryRecord struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userid"`
	Destination   string    `json:"destination"`
	Theme         string    `json:"theme"`
	NumDays       int       `json:"num_days"`
	ItineraryData string    `json:"itinerary_data"`
	CreatedAt     time.Time `json:"created_at"`
	Cached        bool      `json:"-"`
}

// FlightSearchRequest is the payload for a round-trip flight search.
// Dates are ISO calendar dates ("2006-01-02").
type FlightSearchRequest struct {
	UserID        string `json:"userid" validate:"required"`
	Source        string `json:"source" validate:"required,len=3,alpha"`
	Destination   string `json:"destination" validate:"required,len=3,alpha"`
	DepartureDate string `json:"departure_date" validate:"required,datetime=2006-01-02"`
	ReturnDate    string `json:"return_date" validate:"required,datetime=2006-01-02"`
}

// FlightOption is one flight result, cheapest first.
type FlightOption struct {
	Airline       string `json:"airline"`
	AirlineLogo   string `json:"airline_logo,omitempty"`
	Price         string `json:"price"`
	TotalDuration string `json:"total_duration,omitempty"`
	DepartureTime string `json:"departure_time,omitempty"`
	ArrivalTime   string `json:"arrival_time,omitempty"`
	BookingToken  string `json:"booking_token,omitempty"`
}

// FlightSearchRecord is a persisted flight search with its results.
type FlightSearchRecord struct {
	ID            string         `json:"id"`
	UserID        string         `json:"userid"`
	Source        string         `json:"source"`
	Destination   string         `json:"destination"`
	DepartureDate string         `json:"departure_date"`
	ReturnDate    string         `json:"return_date"`
	Flights       []FlightOption `json:"flights"`
	CreatedAt     time.Time      `json:"created_at"`
	Cached        bool           `json:"-"`
}

// PlacesSearchRequest is the payload for a combined hotel + restaurant search.
type PlacesSearchRequest struct {
	UserID      string      `json:"userid" validate:"required"`
	Destination string      `json:"destination" validate:"required"`
	Theme       string      `json:"theme" validate:"required"`
	Budget      BudgetTier  `json:"budget" validate:"required,oneof=Economy Standard Luxury"`
	HotelRating HotelRating `json:"hotel_rating" validate:"required,oneof=Any 3-star 4-star 5-star"`
}

// Place is one hotel or restaurant result.
type Place struct {
	Name        string  `json:"name"`
	Category    string  `json:"category"` // "hotel" or "restaurant"
	Rating      float64 `json:"rating,omitempty"`
	Address     string  `json:"address,omitempty"`
	Description string  `json:"description,omitempty"`
}

// PlacesResult groups the two parallel searches for one destination.
type PlacesResult struct {
	Hotels      []Place `json:"hotels"`
	Restaurants []Place `json:"restaurants"`
}

// PlacesRecord is a persisted hotel/restaurant search.
type PlacesRecord struct {
	ID          string       `json:"id"`
	UserID      string       `json:"userid"`
	Destination string       `json:"destination"`
	Theme       string       `json:"theme"`
	Result      PlacesResult `json:"result"`
	CreatedAt   time.Time    `json:"created_at"`
	Cached      bool         `json:"-"`
}

// SubscriptionStatusView is the boundary shape for GET /subscription/status.
// Plan uses the external literals ("basic"/"paid").
type SubscriptionStatusView struct {
	Plan           string `json:"plan"`
	UsageThisMonth int    `json:"usage_this_month"`
}
