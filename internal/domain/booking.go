package domain

// BookingRequest is the raw user input of one POST / call.
type BookingRequest struct {
	Message string `json:"message"`
}

// Response kinds let clients tell the entries apart without parsing text.
const (
	KindPhone    = "phone"
	KindMessage  = "message"
	KindLink     = "link"
	KindDelivery = "delivery"
	KindApology  = "apology"
)

type ChatResponse struct {
	Response string `json:"response"`
	Kind     string `json:"kind,omitempty"`
}

// Pipeline outcomes, also used as metric labels.
const (
	OutcomeOK              = "ok"
	OutcomeVenueNotFound   = "venue_not_found"
	OutcomeInvalidLocation = "invalid_location"
	OutcomeUpstreamError   = "upstream_error"
)

type BookingResult struct {
	Responses    []ChatResponse
	Outcome      string
	Location     string
	Venue        *VenueInfo
	Notification *Notification
}

// Notification is what the notifier reports back instead of only logging.
type Notification struct {
	Attempted bool   `json:"attempted"`
	Delivered bool   `json:"delivered"`
	Link      string `json:"link,omitempty"`
	MessageID string `json:"message_id,omitempty"`
	Reason    string `json:"reason,omitempty"`
}
