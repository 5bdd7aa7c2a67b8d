package model

// SearchResult is a raw, untrusted result from the search backend or an RSS
// feed. It is immutable once received; scoring never mutates it.
type SearchResult struct {
	Title         string `json:"title"`
	URL           string `json:"url"`
	Snippet       string `json:"snippet"`
	Source        string `json:"source"`
	PublishedDate string `json:"published_date,omitempty"`
}

// RawEvent is a single event as extracted by the platform scraper, before any
// relevance decision has been made.
type RawEvent struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Venue       string `json:"venue,omitempty"`
	City        string `json:"city,omitempty"`
	Date        string `json:"date,omitempty"`
	Price       string `json:"price,omitempty"`
	Description string `json:"description,omitempty"`
	Organizer   string `json:"organizer,omitempty"`
	Platform    string `json:"platform"`
}

// SearchKind selects the backend search vertical.
type SearchKind string

const (
	SearchWeb  SearchKind = "web"
	SearchNews SearchKind = "news"
)

// TimeRange bounds how far back a search looks.
type TimeRange string

const (
	RangeDay   TimeRange = "day"
	RangeWeek  TimeRange = "week"
	RangeMonth TimeRange = "month"
)
