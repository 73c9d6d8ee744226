package domain

// VenueInfo is taken from the first search result only.
type VenueInfo struct {
	Name        *string `json:"name,omitempty"`
	Address     *string `json:"address,omitempty"`
	PhoneNumber *string `json:"phone_number,omitempty"`
}

// Miss is one unresolved location name from the miss log.
type Miss struct {
	Query     string `json:"query"`
	Hits      int64  `json:"hits"`
	FirstSeen string `json:"first_seen"`
	LastSeen  string `json:"last_seen"`
}
