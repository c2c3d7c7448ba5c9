package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/eruditedesk/ticketsearch/internal/errors"
)

func newMockSource(t *testing.T) (*PostgresSource, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresSource(sqlx.NewDb(db, "pgx")), mock
}

func TestFetchWindow(t *testing.T) {
	source, mock := newMockSource(t)

	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 30)
	registered := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT number, problem, client, product, registry_date").
		WithArgs(from, to).
		WillReturnRows(sqlmock.NewRows([]string{"number", "problem", "client", "product", "registry_date"}).
			AddRow(int64(1), "Сервер не отвечает", "A", "X", registered).
			AddRow(int64(2), "Принтер сломался", "B", "Y", registered))

	tickets, err := source.FetchWindow(context.Background(), from, to)
	require.NoError(t, err)
	require.Len(t, tickets, 2)
	assert.Equal(t, int64(1), tickets[0].Number)
	assert.Equal(t, "Сервер не отвечает", tickets[0].Problem)
	assert.Equal(t, "B", tickets[1].Client)
	assert.True(t, registered.Equal(tickets[0].RegistryDate))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchWindowFailure(t *testing.T) {
	source, mock := newMockSource(t)

	mock.ExpectQuery("SELECT number, problem, client, product, registry_date").
		WillReturnError(fmt.Errorf("connection refused"))

	_, err := source.FetchWindow(context.Background(), time.Now().Add(-time.Hour), time.Now())
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeRelationalFetchFailed, apperrors.CodeOf(err))
	assert.True(t, apperrors.IsRetryable(err))
}

func TestEnrichByIDsPreservesInputOrder(t *testing.T) {
	source, mock := newMockSource(t)

	// Rows come back in database order; the source must re-sort them to
	// the requested id order before the positional zip downstream.
	mock.ExpectQuery("FROM ticket_enrichment").
		WithArgs(int64(3), int64(1), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"number", "fio", "admission_prority", "servicecall"}).
			AddRow(int64(1), "Иванов", "Низкий", "uuid-1").
			AddRow(int64(2), "Петров", "Обычный", "uuid-2").
			AddRow(int64(3), "Сидоров", "Высокий", "uuid-3"))

	rows, err := source.EnrichByIDs(context.Background(), []int64{3, 1, 2})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, int64(3), rows[0].Number)
	assert.Equal(t, "Сидоров", rows[0].FIO)
	assert.Equal(t, int64(1), rows[1].Number)
	assert.Equal(t, int64(2), rows[2].Number)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrichByIDsGap(t *testing.T) {
	source, mock := newMockSource(t)

	mock.ExpectQuery("FROM ticket_enrichment").
		WithArgs(int64(1), int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"number", "fio", "admission_prority", "servicecall"}).
			AddRow(int64(1), "Иванов", "Низкий", "uuid-1"))

	_, err := source.EnrichByIDs(context.Background(), []int64{1, 9})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeEnrichmentGap, apperrors.CodeOf(err))
}

func TestEnrichByIDsEmpty(t *testing.T) {
	source, _ := newMockSource(t)

	rows, err := source.EnrichByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
