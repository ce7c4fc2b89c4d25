package external

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"tripplanner/internal/types"
)

// serpAPIBase is the default SerpAPI base URL.
// Overridable in tests via SerpAPIClientConfig.BaseURL.
const serpAPIBase = "https://serpapi.com"

// SerpAPIClientConfig holds the configuration for creating a SerpAPIClient.
type SerpAPIClientConfig struct {
	APIKey  string
	BaseURL string // Override for testing; defaults to serpAPIBase
	Logger  *slog.Logger
}

// SerpAPIClient queries SerpAPI's google_flights and google_local engines
// through BaseClient. It returns both parsed results and the raw response
// payload so the storage layer can archive it.
type SerpAPIClient struct {
	base    *BaseClient
	apiKey  string
	baseURL string
	logger  *slog.Logger
}

// NewSerpAPIClient creates a new SerpAPIClient.
func NewSerpAPIClient(httpClient *http.Client, cfg SerpAPIClientConfig) *SerpAPIClient {
	base := NewBaseClient(
		httpClient,
		"serpapi",
		RetryPolicy{
			MaxRetries: 2,
			MinWait:    1 * time.Second,
			MaxWait:    10 * time.Second,
		},
		"TripPlanner/1.0",
	)
	return NewSerpAPIClientWithBase(base, cfg)
}

// NewSerpAPIClientWithBase creates a SerpAPIClient with a pre-configured
// BaseClient.
func NewSerpAPIClientWithBase(base *BaseClient, cfg SerpAPIClientConfig) *SerpAPIClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = serpAPIBase
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &SerpAPIClient{
		base:    base,
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger,
	}
}

// SearchFlights queries the google_flights engine for a round trip between
// two IATA airport codes and returns the parsed options (cheapest first)
// along with the raw response payload.
func (c *SerpAPIClient) SearchFlights(ctx context.Context, source, destination, departureDate, returnDate string) ([]types.FlightOption, []byte, error) {
	params := url.Values{}
	params.Set("engine", "google_flights")
	params.Set("departure_id", strings.ToUpper(source))
	params.Set("arrival_id", strings.ToUpper(destination))
	params.Set("outbound_date", departureDate)
	params.Set("return_date", returnDate)
	params.Set("currency", "USD")
	params.Set("hl", "en")

	raw, err := c.doSearch(ctx, params)
	if err != nil {
		return nil, nil, err
	}

	var result serpFlightsResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, nil, types.NewAppError(types.ErrCodeUpstreamSearch, "failed to decode SerpAPI flights response", err)
	}

	options := parseFlightOptions(&result)
	return options, raw, nil
}

// SearchPlaces queries the google_local engine and maps the results to
// places of the given category ("hotel" or "restaurant").
func (c *SerpAPIClient) SearchPlaces(ctx context.Context, query, location, category string) ([]types.Place, error) {
	params := url.Values{}
	params.Set("engine", "google_local")
	params.Set("q", query)
	params.Set("location", location)
	params.Set("hl", "en")

	raw, err := c.doSearch(ctx, params)
	if err != nil {
		return nil, err
	}

	var result serpLocalResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, types.NewAppError(types.ErrCodeUpstreamSearch, "failed to decode SerpAPI local response", err)
	}

	places := make([]types.Place, 0, len(result.LocalResults))
	for _, lr := range result.LocalResults {
		places = append(places, types.Place{
			Name:        lr.Title,
			Category:    category,
			Rating:      lr.Rating,
			Address:     lr.Address,
			Description: lr.Description,
		})
	}
	return places, nil
}

// doSearch performs an authenticated GET against /search and returns the raw
// response body.
func (c *SerpAPIClient) doSearch(ctx context.Context, params url.Values) ([]byte, error) {
	params.Set("api_key", c.apiKey)

	reqURL := c.baseURL + "/search?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalUnexpected, "failed to build SerpAPI request", err)
	}

	resp, err := c.base.Do(req)
	if err != nil {
		if _, ok := err.(*types.AppError); ok {
			return nil, err
		}
		return nil, types.NewAppError(types.ErrCodeUpstreamSearch, "SerpAPI request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, types.NewAppError(
			types.ErrCodeUpstreamSearch,
			fmt.Sprintf("SerpAPI returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
			nil,
		)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeUpstreamSearch, "failed to read SerpAPI response", err)
	}
	return raw, nil
}

// ---------------------------------------------------------------------------
// Wire Types
// ---------------------------------------------------------------------------

type serpFlightsResponse struct {
	BestFlights  []serpFlightGroup `json:"best_flights"`
	OtherFlights []serpFlightGroup `json:"other_flights"`
}

type serpFlightGroup struct {
	Flights       []serpFlightLeg `json:"flights"`
	Price         float64         `json:"price"`
	TotalDuration int             `json:"total_duration"` // minutes
	AirlineLogo   string          `json:"airline_logo"`
	BookingToken  string          `json:"booking_token"`
}

type serpFlightLeg struct {
	Airline          string          `json:"airline"`
	AirlineLogo      string          `json:"airline_logo"`
	DepartureAirport serpAirportTime `json:"departure_airport"`
	ArrivalAirport   serpAirportTime `json:"arrival_airport"`
}

type serpAirportTime struct {
	Name string `json:"name"`
	ID   string `json:"id"`
	Time string `json:"time"`
}

type serpLocalResponse struct {
	LocalResults []serpLocalResult `json:"local_results"`
}

type serpLocalResult struct {
	Title       string  `json:"title"`
	Rating      float64 `json:"rating"`
	Address     string  `json:"address"`
	Description string  `json:"description"`
}

// parseFlightOptions flattens best_flights (falling back to other_flights)
// into domain options, cheapest first.
func parseFlightOptions(resp *serpFlightsResponse) []types.FlightOption {
	groups := resp.BestFlights
	if len(groups) == 0 {
		groups = resp.OtherFlights
	}

	// Sort on the numeric price before formatting for display.
	sorted := make([]serpFlightGroup, len(groups))
	copy(sorted, groups)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Price < sorted[j].Price
	})
	groups = sorted

	options := make([]types.FlightOption, 0, len(groups))
	for _, g := range groups {
		if len(g.Flights) == 0 {
			continue
		}
		leg := g.Flights[0]
		last := g.Flights[len(g.Flights)-1]

		opt := types.FlightOption{
			Airline:       leg.Airline,
			AirlineLogo:   g.AirlineLogo,
			Price:         fmt.Sprintf("$%.0f", g.Price),
			TotalDuration: formatDuration(g.TotalDuration),
			DepartureTime: leg.DepartureAirport.Time,
			ArrivalTime:   last.ArrivalAirport.Time,
			BookingToken:  g.BookingToken,
		}
		if opt.AirlineLogo == "" {
			opt.AirlineLogo = leg.AirlineLogo
		}
		options = append(options, opt)
	}
	return options
}

// formatDuration renders a minute count as "10h 35m".
func formatDuration(minutes int) string {
	if minutes <= 0 {
		return ""
	}
	h := minutes / 60
	m := minutes % 60
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	if m == 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}
