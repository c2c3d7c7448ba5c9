package store

import (
	"context"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	apperrors "github.com/eruditedesk/ticketsearch/internal/errors"
)

// SQL templates against the upstream service-desk schema.
const (
	fetchTicketsQuery = `
SELECT number, problem, client, product, registry_date
FROM tickets
WHERE registry_date BETWEEN $1 AND $2`

	enrichTicketsQuery = `
SELECT number, fio, admission_prority, servicecall
FROM ticket_enrichment
WHERE number IN (?)`
)

// PostgresSource implements TicketSource over the upstream Postgres
// database.
type PostgresSource struct {
	db *sqlx.DB
}

var _ TicketSource = (*PostgresSource)(nil)

// OpenPostgres connects to the relational store and verifies the
// connection.
func OpenPostgres(ctx context.Context, url string) (*PostgresSource, error) {
	db, err := sqlx.ConnectContext(ctx, "pgx", url)
	if err != nil {
		return nil, fmt.Errorf("connect relational store: %w", err)
	}
	db.SetMaxOpenConns(8)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(30 * time.Minute)
	return NewPostgresSource(db), nil
}

// NewPostgresSource wraps an existing database handle. Used by tests to
// inject a mock.
func NewPostgresSource(db *sqlx.DB) *PostgresSource {
	return &PostgresSource{db: db}
}

// FetchWindow returns all tickets with registry_date in [from, to].
func (s *PostgresSource) FetchWindow(ctx context.Context, from, to time.Time) ([]Ticket, error) {
	var tickets []Ticket
	if err := s.db.SelectContext(ctx, &tickets, fetchTicketsQuery, from, to); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeRelationalFetchFailed,
			fmt.Sprintf("fetch tickets %s..%s", from.Format("2006-01-02"), to.Format("2006-01-02")), err)
	}
	return tickets, nil
}

// EnrichByIDs returns one enrichment row per id, re-sorted to match the
// input order. The IN-list query does not pin ordering, so the rows are
// reordered client-side before the positional zip downstream.
func (s *PostgresSource) EnrichByIDs(ctx context.Context, ids []int64) ([]EnrichmentRow, error) {
	if len(ids) == 0 {
		return []EnrichmentRow{}, nil
	}

	query, args, err := sqlx.In(enrichTicketsQuery, ids)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeEnrichmentGap, "build enrichment query", err)
	}
	query = s.db.Rebind(query)

	var rows []EnrichmentRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeEnrichmentGap, "enrichment lookup", err)
	}

	byNumber := make(map[int64]EnrichmentRow, len(rows))
	for _, row := range rows {
		byNumber[row.Number] = row
	}

	ordered := make([]EnrichmentRow, 0, len(ids))
	for _, id := range ids {
		row, ok := byNumber[id]
		if !ok {
			return nil, apperrors.Newf(apperrors.CodeEnrichmentGap, "no enrichment row for ticket %d", id)
		}
		ordered = append(ordered, row)
	}
	return ordered, nil
}

// Close releases the connection pool.
func (s *PostgresSource) Close() error {
	return s.db.Close()
}
