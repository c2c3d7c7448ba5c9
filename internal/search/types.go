// Package search implements the hybrid ranking core: BM25 fused with
// cosine similarity over a candidate hit set, plus the engine façade
// that composes embedding, vector query, scoring and enrichment.
package search

import "github.com/eruditedesk/ticketsearch/internal/store"

// Request defaults.
const (
	DefaultLimit = 5
	DefaultAlpha = 0.5
)

// Request is one search call. Callers apply the documented defaults
// before invoking the engine; the engine only validates.
type Request struct {
	Query  string
	Limit  int
	Alpha  float64
	Exact  bool
	Filter store.SearchFilter
}

// ResultItem is one enriched search result.
type ResultItem struct {
	// ID is the string form of the ticket number.
	ID string `json:"id"`
	// Score is a rounded percentage, e.g. "87%".
	Score string `json:"score"`
	// Responsible is the person assigned to the ticket.
	Responsible string `json:"responsible"`
	// Priority is the admission priority label.
	Priority string `json:"priority"`
	// RegistryDate is the ISO date of ticket registration.
	RegistryDate string `json:"registry_date"`
	// URL links to the ticket in the service desk UI.
	URL string `json:"url"`
}
