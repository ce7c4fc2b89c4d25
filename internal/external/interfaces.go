package external

import (
	"context"

	"tripplanner/internal/types"
)

// PaymentProvider abstracts the checkout provider so the billing layer can be
// tested without Stripe. Implemented by StripeClient.
type PaymentProvider interface {
	// CreateCheckoutSession opens a hosted checkout for the paid plan and
	// returns the session with its redirect URL.
	CreateCheckoutSession(ctx context.Context, userID, successURL, cancelURL string) (*CheckoutSession, error)

	// GetCheckoutSession retrieves a session by ID for payment verification.
	GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error)
}

// LLMClient abstracts the text generation provider. Implemented by
// GeminiHTTPClient.
type LLMClient interface {
	Generate(ctx context.Context, systemInstruction, prompt string) (string, error)
}

// SearchClient abstracts the travel search provider. Implemented by
// SerpAPIClient.
type SearchClient interface {
	// SearchFlights returns round-trip options (cheapest first) and the raw
	// provider payload.
	SearchFlights(ctx context.Context, source, destination, departureDate, returnDate string) ([]types.FlightOption, []byte, error)

	// SearchPlaces returns local results for the query, tagged with the
	// given category.
	SearchPlaces(ctx context.Context, query, location, category string) ([]types.Place, error)
}
