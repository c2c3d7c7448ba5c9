package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/eruditedesk/ticketsearch/internal/config"
	"github.com/eruditedesk/ticketsearch/internal/embed"
	apperrors "github.com/eruditedesk/ticketsearch/internal/errors"
)

// Query-time and refresh constants.
const (
	queryHnswEf    = 512
	annResultCap   = 500
	scrollPageSize = 1000
)

// QdrantIndex implements VectorIndex over Qdrant's REST API. It keeps an
// in-memory metadata cache (known clients, known products, watermark)
// refreshed incrementally by scrolling only points newer than the last
// observed registry_date.
type QdrantIndex struct {
	client     *http.Client
	baseURL    string
	collection string
	indexing   config.IndexingConfig

	mu             sync.RWMutex
	pointsCount    int64
	clients        map[string]struct{}
	products       map[string]struct{}
	dateLastRecord float64
}

var _ VectorIndex = (*QdrantIndex)(nil)

// NewQdrantIndex creates an index client for one collection. The seed
// date bounds the first metadata scan on a pre-existing collection.
func NewQdrantIndex(cfg config.VectorConfig, seed time.Time) *QdrantIndex {
	return &QdrantIndex{
		client:         &http.Client{Timeout: 60 * time.Second},
		baseURL:        cfg.Main.URL,
		collection:     cfg.Main.CollectionName,
		indexing:       cfg.Indexing,
		clients:        make(map[string]struct{}),
		products:       make(map[string]struct{}),
		dateLastRecord: float64(seed.Unix()),
	}
}

type collectionInfoResponse struct {
	Result struct {
		PointsCount int64 `json:"points_count"`
	} `json:"result"`
}

type scoredPoint struct {
	ID      json.Number    `json:"id"`
	Score   float64        `json:"score"`
	Payload map[string]any `json:"payload"`
}

type queryResponse struct {
	Result struct {
		Points []scoredPoint `json:"points"`
	} `json:"result"`
}

type scrollResponse struct {
	Result struct {
		Points []struct {
			ID      json.Number    `json:"id"`
			Payload map[string]any `json:"payload"`
		} `json:"points"`
		NextPageOffset any `json:"next_page_offset"`
	} `json:"result"`
}

// Initialize creates the collection if absent; otherwise it loads the
// current point count and refreshes the metadata cache.
func (q *QdrantIndex) Initialize(ctx context.Context) error {
	var info collectionInfoResponse
	status, err := q.doJSON(ctx, http.MethodGet, q.collectionPath(""), nil, &info)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeVectorQueryFailed, "inspect collection", err)
	}

	switch status {
	case http.StatusOK:
		q.mu.Lock()
		q.pointsCount = info.Result.PointsCount
		q.mu.Unlock()
		slog.Info("vector collection found",
			slog.String("collection", q.collection),
			slog.Int64("points", info.Result.PointsCount))
		return q.refreshMetadata(ctx)
	case http.StatusNotFound:
		return q.createCollection(ctx)
	default:
		return apperrors.Newf(apperrors.CodeVectorQueryFailed, "inspect collection: status %d", status)
	}
}

func (q *QdrantIndex) createCollection(ctx context.Context) error {
	body := map[string]any{
		"vectors": map[string]any{
			"size":     embed.Dimensions,
			"distance": "Cosine",
		},
		"hnsw_config": map[string]any{
			"m":                    q.indexing.MValue,
			"ef_construct":         q.indexing.EfConstruct,
			"full_scan_threshold":  q.indexing.FullScanThreshold,
			"max_indexing_threads": q.indexing.MaxIndexingThreads,
			"on_disk":              q.indexing.OnDisk,
		},
	}

	status, err := q.doJSON(ctx, http.MethodPut, q.collectionPath(""), body, nil)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeVectorQueryFailed, "create collection", err)
	}
	if status != http.StatusOK {
		return apperrors.Newf(apperrors.CodeVectorQueryFailed, "create collection: status %d", status)
	}

	slog.Info("vector collection created",
		slog.String("collection", q.collection),
		slog.Int("dimensions", embed.Dimensions),
		slog.Int("hnsw_m", q.indexing.MValue))
	return nil
}

// Upsert writes points idempotently by id. On success the point count
// grows by the batch size and the metadata cache is refreshed.
func (q *QdrantIndex) Upsert(ctx context.Context, points []Point) error {
	if len(points) == 0 {
		return nil
	}

	wire := make([]map[string]any, len(points))
	for i, p := range points {
		wire[i] = map[string]any{
			"id":      p.ID,
			"vector":  p.Vector,
			"payload": p.Payload,
		}
	}

	status, err := q.doJSON(ctx, http.MethodPut,
		q.collectionPath("/points?wait=true"),
		map[string]any{"points": wire}, nil)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeVectorUpsertFailed, "upsert points", err)
	}
	if status != http.StatusOK {
		return apperrors.Newf(apperrors.CodeVectorUpsertFailed, "upsert points: status %d", status)
	}

	q.mu.Lock()
	q.pointsCount += int64(len(points))
	q.mu.Unlock()

	if err := q.refreshMetadata(ctx); err != nil {
		slog.Warn("metadata refresh after upsert failed", slog.Any("error", err))
	}
	return nil
}

// Query runs a cosine similarity search. Exact mode scans every point;
// ANN mode uses HNSW with a raised ef and caps results.
func (q *QdrantIndex) Query(ctx context.Context, vector []float32, exact bool, filter SearchFilter) ([]Hit, error) {
	compiled, err := compileFilter(filter)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeVectorQueryFailed, "compile filter", err)
	}

	q.mu.RLock()
	count := q.pointsCount
	q.mu.RUnlock()

	body := map[string]any{
		"query":        vector,
		"with_payload": true,
	}
	if compiled != nil {
		body["filter"] = compiled
	}
	if exact {
		if count == 0 {
			return []Hit{}, nil
		}
		body["limit"] = count
		body["params"] = map[string]any{"exact": true}
	} else {
		body["limit"] = annResultCap
		body["params"] = map[string]any{"hnsw_ef": queryHnswEf}
	}

	var parsed queryResponse
	status, err := q.doJSON(ctx, http.MethodPost, q.collectionPath("/points/query"), body, &parsed)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeVectorQueryFailed, "similarity query", err)
	}
	if status != http.StatusOK {
		return nil, apperrors.Newf(apperrors.CodeVectorQueryFailed, "similarity query: status %d", status)
	}

	hits := make([]Hit, 0, len(parsed.Result.Points))
	for _, sp := range parsed.Result.Points {
		id, err := sp.ID.Int64()
		if err != nil {
			return nil, apperrors.Newf(apperrors.CodeVectorQueryFailed, "non-integer point id %q", sp.ID)
		}
		payload, err := parsePayload(sp.Payload)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeVectorQueryFailed, fmt.Sprintf("point %d payload", id), err)
		}
		hits = append(hits, Hit{ID: id, Score: sp.Score, Payload: payload})
	}
	return hits, nil
}

// Watermark returns the cached max registry_date over all points.
func (q *QdrantIndex) Watermark() time.Time {
	q.mu.RLock()
	defer q.mu.RUnlock()
	sec, frac := math.Modf(q.dateLastRecord)
	return time.Unix(int64(sec), int64(frac*1e9))
}

// Metadata returns the cached client and product sets, sorted.
func (q *QdrantIndex) Metadata() Metadata {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return Metadata{
		Clients:  sortedKeys(q.clients),
		Products: sortedKeys(q.products),
	}
}

// refreshMetadata scrolls points with registry_date at or past the
// cached watermark, so each refresh only touches what the previous one
// has not seen.
func (q *QdrantIndex) refreshMetadata(ctx context.Context) error {
	q.mu.RLock()
	since := q.dateLastRecord
	q.mu.RUnlock()

	clients := make(map[string]struct{})
	products := make(map[string]struct{})
	maxDate := since

	var offset any
	for {
		body := map[string]any{
			"limit":        scrollPageSize,
			"with_payload": true,
			"filter": map[string]any{
				"must": []map[string]any{
					{"key": "registry_date", "range": map[string]any{"gte": since}},
				},
			},
		}
		if offset != nil {
			body["offset"] = offset
		}

		var page scrollResponse
		status, err := q.doJSON(ctx, http.MethodPost, q.collectionPath("/points/scroll"), body, &page)
		if err != nil {
			return apperrors.Wrap(apperrors.CodeVectorQueryFailed, "scroll collection", err)
		}
		if status != http.StatusOK {
			return apperrors.Newf(apperrors.CodeVectorQueryFailed, "scroll collection: status %d", status)
		}

		for _, p := range page.Result.Points {
			payload, err := parsePayload(p.Payload)
			if err != nil {
				slog.Warn("skipping point with malformed payload",
					slog.String("id", p.ID.String()),
					slog.Any("error", err))
				continue
			}
			clients[payload.Client] = struct{}{}
			products[payload.Product] = struct{}{}
			if payload.RegistryDate > maxDate {
				maxDate = payload.RegistryDate
			}
		}

		if page.Result.NextPageOffset == nil {
			break
		}
		offset = page.Result.NextPageOffset
	}

	q.mu.Lock()
	for c := range clients {
		q.clients[c] = struct{}{}
	}
	for p := range products {
		q.products[p] = struct{}{}
	}
	if maxDate > q.dateLastRecord {
		q.dateLastRecord = maxDate
	}
	q.mu.Unlock()

	slog.Debug("metadata refreshed",
		slog.Int("clients", len(clients)),
		slog.Int("products", len(products)),
		slog.Time("watermark", q.Watermark()))
	return nil
}

func (q *QdrantIndex) collectionPath(suffix string) string {
	return "/collections/" + q.collection + suffix
}

// doJSON issues one request and decodes the response body into out when
// provided. The HTTP status is returned for the caller to interpret.
func (q *QdrantIndex) doJSON(ctx context.Context, method, path string, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, q.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := q.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	if out != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode response: %w", err)
		}
	} else {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	}
	return resp.StatusCode, nil
}

// parsePayload validates the fixed payload shape. Every key must be
// present; registry_date must be numeric.
func parsePayload(raw map[string]any) (Payload, error) {
	var p Payload

	text, ok := raw["text"].(string)
	if !ok {
		return p, fmt.Errorf("missing payload key %q", "text")
	}
	client, ok := raw["client"].(string)
	if !ok {
		return p, fmt.Errorf("missing payload key %q", "client")
	}
	product, ok := raw["product"].(string)
	if !ok {
		return p, fmt.Errorf("missing payload key %q", "product")
	}
	date, ok := raw["registry_date"].(float64)
	if !ok {
		return p, fmt.Errorf("missing payload key %q", "registry_date")
	}

	p.Text = text
	p.Client = client
	p.Product = product
	p.RegistryDate = date
	return p, nil
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
