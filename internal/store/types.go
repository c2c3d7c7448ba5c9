// Package store binds the pipeline to its two persistence backends: the
// relational ticket source and the cosine vector index.
package store

import (
	"context"
	"time"
)

// Ticket is an input record from the relational source. Rows are
// produced upstream and immutable once observed.
type Ticket struct {
	Number       int64     `db:"number"`
	Problem      string    `db:"problem"`
	Client       string    `db:"client"`
	Product      string    `db:"product"`
	RegistryDate time.Time `db:"registry_date"`
}

// EnrichmentRow carries the out-of-band metadata attached to results.
// Keyed by ticket number. The admission_prority column name carries an
// upstream schema typo.
type EnrichmentRow struct {
	Number            int64  `db:"number"`
	FIO               string `db:"fio"`
	AdmissionPriority string `db:"admission_prority"`
	ServiceCall       string `db:"servicecall"`
}

// Payload is the non-vector metadata stored alongside each point. All
// four keys are mandatory; RegistryDate is a POSIX timestamp in seconds.
type Payload struct {
	Text         string  `json:"text"`
	Client       string  `json:"client"`
	Product      string  `json:"product"`
	RegistryDate float64 `json:"registry_date"`
}

// Point is a persisted vector record. ID equals the ticket number and
// the vector is L2-unit-normalized.
type Point struct {
	ID      int64
	Vector  []float32
	Payload Payload
}

// Hit is one similarity match. Score is cosine similarity in [-1, 1].
type Hit struct {
	ID      int64
	Score   float64
	Payload Payload
}

// Metadata is the cached view of distinct payload values, exposed via
// the options endpoint.
type Metadata struct {
	Clients  []string `json:"clients"`
	Products []string `json:"products"`
}

// SearchFilter maps payload fields to required values. The keys
// date_from and date_to compile to a range predicate on registry_date
// (POSIX timestamp or YYYY-MM-DD string); any other key compiles to an
// exact match on the same-named payload field. Nil values are skipped.
type SearchFilter map[string]any

// TicketSource is the read contract against the relational store.
type TicketSource interface {
	// FetchWindow returns all tickets with registry_date in [from, to].
	// Ordering is unspecified; the result may be empty.
	FetchWindow(ctx context.Context, from, to time.Time) ([]Ticket, error)

	// EnrichByIDs returns one row per id, in input order. A missing id
	// fails the whole call with ENRICHMENT_GAP.
	EnrichByIDs(ctx context.Context, ids []int64) ([]EnrichmentRow, error)

	// Close releases the connection pool.
	Close() error
}

// VectorIndex is the contract against the persistent vector collection.
// Implementations must be safe for concurrent readers and a single
// writer.
type VectorIndex interface {
	// Initialize creates the collection if absent, otherwise loads the
	// point count and refreshes the metadata cache.
	Initialize(ctx context.Context) error

	// Upsert writes points idempotently by id and refreshes metadata.
	Upsert(ctx context.Context, points []Point) error

	// Query runs a cosine similarity search. With exact=true every point
	// is scanned; otherwise HNSW search is used and results are capped.
	Query(ctx context.Context, vector []float32, exact bool, filter SearchFilter) ([]Hit, error)

	// Watermark returns the cached max registry_date over all points.
	Watermark() time.Time

	// Metadata returns the cached client and product sets.
	Metadata() Metadata
}
