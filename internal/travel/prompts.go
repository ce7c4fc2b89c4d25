package travel

import (
	"fmt"
	"strings"

	"tripplanner/internal/types"
)

// researchSystemInstruction frames the model as a destination researcher.
const researchSystemInstruction = `You are a travel researcher. Produce thorough, factual destination research
covering attractions, local culture, food, transport, typical costs, safety
notes, and seasonal considerations. Be specific and practical. Use headings.`

// itinerarySystemInstruction frames the model as an itinerary planner.
const itinerarySystemInstruction = `You are a travel itinerary planner. Produce a detailed day-by-day plan with
morning, afternoon, and evening blocks, realistic travel times between stops,
restaurant suggestions matching the traveler's budget, and estimated daily
costs. Use headings per day.`

// buildResearchPrompt renders the research prompt from the request.
func buildResearchPrompt(req *types.ResearchRequest) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Research %s for a %d-day %s trip.\n", req.Destination, req.NumDays, strings.ToLower(req.Theme))
	fmt.Fprintf(&sb, "Preferred activities: %s.\n", req.Activities)
	fmt.Fprintf(&sb, "Budget level: %s. Flight class: %s. Hotel rating: %s.\n", req.Budget, req.FlightClass, req.HotelRating)
	if req.VisaRequired {
		sb.WriteString("Include visa requirements and application guidance.\n")
	}
	if req.InsuranceRequired {
		sb.WriteString("Include travel insurance recommendations.\n")
	}
	return sb.String()
}

// buildItineraryPrompt renders the itinerary prompt, folding in prior
// research when available.
func buildItineraryPrompt(req *types.ItineraryRequest, research string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Create a %d-day %s itinerary for %s.\n", req.NumDays, strings.ToLower(req.Theme), req.Destination)
	fmt.Fprintf(&sb, "Preferred activities: %s.\n", req.Activities)
	fmt.Fprintf(&sb, "Budget level: %s. Flight class: %s. Hotel rating: %s.\n", req.Budget, req.FlightClass, req.HotelRating)
	if req.VisaRequired {
		sb.WriteString("The traveler needs a visa; include a pre-trip checklist item.\n")
	}
	if req.InsuranceRequired {
		sb.WriteString("The traveler wants insurance; include a pre-trip checklist item.\n")
	}
	if research != "" {
		sb.WriteString("\nGround the plan in this destination research:\n")
		sb.WriteString(research)
		sb.WriteString("\n")
	}
	return sb.String()
}

// hotelQuery renders the google_local query for hotels matching the request.
func hotelQuery(req *types.PlacesSearchRequest) string {
	if req.HotelRating == types.HotelAny {
		return fmt.Sprintf("%s hotels in %s", strings.ToLower(string(req.Budget)), req.Destination)
	}
	return fmt.Sprintf("%s hotels in %s", req.HotelRating, req.Destination)
}

// restaurantQuery renders the google_local query for restaurants matching
// the trip theme.
func restaurantQuery(req *types.PlacesSearchRequest) string {
	return fmt.Sprintf("best %s restaurants in %s", strings.ToLower(req.Theme), req.Destination)
}
