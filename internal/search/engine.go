package search

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/eruditedesk/ticketsearch/internal/embed"
	apperrors "github.com/eruditedesk/ticketsearch/internal/errors"
	"github.com/eruditedesk/ticketsearch/internal/store"
	"github.com/eruditedesk/ticketsearch/internal/textproc"
)

// resultURLPrefix builds the service desk link from a servicecall UUID.
const resultURLPrefix = "https://support.naumen.ru/sd/operator/#uuid:"

// Engine is the public search façade. It owns no state beyond its
// collaborators and the score threshold, and is safe for concurrent use.
type Engine struct {
	embedder  embed.Embedder
	index     store.VectorIndex
	source    store.TicketSource
	threshold float64
}

// NewEngine creates a search engine. Results scoring below threshold
// are dropped from responses.
func NewEngine(embedder embed.Embedder, index store.VectorIndex, source store.TicketSource, threshold float64) *Engine {
	return &Engine{
		embedder:  embedder,
		index:     index,
		source:    source,
		threshold: threshold,
	}
}

// Search runs the full query path: embed, vector query, hybrid rank,
// truncate, enrich, threshold. An empty hit set fails with EMPTY_CORPUS,
// which the HTTP boundary maps to a benign "data not found" response.
func (e *Engine) Search(ctx context.Context, req Request) ([]ResultItem, error) {
	if req.Limit < 1 {
		return nil, apperrors.Newf(apperrors.CodeInvalidLimit, "limit %d must be at least 1", req.Limit)
	}
	if req.Alpha < 0 || req.Alpha > 1 {
		return nil, apperrors.Newf(apperrors.CodeInvalidAlpha, "alpha %v outside [0, 1]", req.Alpha)
	}

	started := time.Now()

	vector, err := e.embedder.Embed(ctx, textproc.BertText(req.Query))
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := e.index.Query(ctx, vector, req.Exact, req.Filter)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, apperrors.New(apperrors.CodeEmptyCorpus, "no candidate tickets for query")
	}

	ranked, err := rankHybrid(ctx, hits, req.Query, req.Alpha)
	if err != nil {
		return nil, err
	}
	if len(ranked) > req.Limit {
		ranked = ranked[:req.Limit]
	}

	ids := make([]int64, len(ranked))
	for i, r := range ranked {
		ids[i] = r.ID
	}
	enrichment, err := e.source.EnrichByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]ResultItem, 0, len(ranked))
	for i, r := range ranked {
		if r.Score < e.threshold {
			continue
		}
		row := enrichment[i]
		if _, err := uuid.Parse(row.ServiceCall); err != nil {
			slog.Warn("malformed servicecall uuid",
				slog.Int64("ticket", r.ID),
				slog.String("servicecall", row.ServiceCall))
		}
		items = append(items, ResultItem{
			ID:           fmt.Sprintf("%d", r.ID),
			Score:        fmt.Sprintf("%d%%", int(math.Round(r.Score*100))),
			Responsible:  row.FIO,
			Priority:     row.AdmissionPriority,
			RegistryDate: time.Unix(int64(r.RegistryDate), 0).Format("2006-01-02"),
			URL:          resultURLPrefix + row.ServiceCall,
		})
	}

	slog.Debug("search completed",
		slog.String("query", req.Query),
		slog.Int("hits", len(hits)),
		slog.Int("returned", len(items)),
		slog.Duration("elapsed", time.Since(started)))
	return items, nil
}

// Metadata returns the known client and product sets from the vector
// index cache.
func (e *Engine) Metadata() store.Metadata {
	return e.index.Metadata()
}
