package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eruditedesk/ticketsearch/internal/config"
	apperrors "github.com/eruditedesk/ticketsearch/internal/errors"
)

// fakeQdrant emulates the REST surface the index client touches.
type fakeQdrant struct {
	t *testing.T

	exists      bool
	pointsCount int64
	failUpsert  bool

	queryPoints  []map[string]any
	scrollPoints []map[string]any

	createBody  map[string]any
	upsertBody  map[string]any
	queryBodies []map[string]any
	scrollCalls int
	scrollBody  map[string]any
}

func (f *fakeQdrant) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/collections/test", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			if !f.exists {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			writeResult(w, map[string]any{"points_count": f.pointsCount})
		case http.MethodPut:
			f.createBody = decodeBody(f.t, r)
			f.exists = true
			writeResult(w, true)
		}
	})

	mux.HandleFunc("/collections/test/points", func(w http.ResponseWriter, r *http.Request) {
		if f.failUpsert {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		assert.Equal(f.t, "true", r.URL.Query().Get("wait"))
		f.upsertBody = decodeBody(f.t, r)
		writeResult(w, map[string]any{"status": "completed"})
	})

	mux.HandleFunc("/collections/test/points/query", func(w http.ResponseWriter, r *http.Request) {
		f.queryBodies = append(f.queryBodies, decodeBody(f.t, r))
		writeResult(w, map[string]any{"points": f.queryPoints})
	})

	mux.HandleFunc("/collections/test/points/scroll", func(w http.ResponseWriter, r *http.Request) {
		f.scrollCalls++
		f.scrollBody = decodeBody(f.t, r)
		writeResult(w, map[string]any{
			"points":           f.scrollPoints,
			"next_page_offset": nil,
		})
	})

	return mux
}

func decodeBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
	return body
}

func writeResult(w http.ResponseWriter, result any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"result": result, "status": "ok"})
}

var testSeed = time.Date(2025, 11, 14, 0, 0, 0, 0, time.Local)

func newTestIndex(t *testing.T, fake *fakeQdrant) *QdrantIndex {
	t.Helper()
	fake.t = t
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	cfg := config.VectorConfig{
		Main: config.VectorMainConfig{
			URL:            srv.URL,
			CollectionName: "test",
		},
		Indexing: config.IndexingConfig{
			MValue:             16,
			EfConstruct:        100,
			FullScanThreshold:  10000,
			MaxIndexingThreads: 2,
			OnDisk:             true,
		},
	}
	return NewQdrantIndex(cfg, testSeed)
}

func payloadMap(text, client, product string, date float64) map[string]any {
	return map[string]any{
		"text":          text,
		"client":        client,
		"product":       product,
		"registry_date": date,
	}
}

func TestInitializeCreatesMissingCollection(t *testing.T) {
	fake := &fakeQdrant{exists: false}
	index := newTestIndex(t, fake)

	require.NoError(t, index.Initialize(context.Background()))

	require.NotNil(t, fake.createBody)
	vectors := fake.createBody["vectors"].(map[string]any)
	assert.Equal(t, 312.0, vectors["size"])
	assert.Equal(t, "Cosine", vectors["distance"])

	hnsw := fake.createBody["hnsw_config"].(map[string]any)
	assert.Equal(t, 16.0, hnsw["m"])
	assert.Equal(t, 100.0, hnsw["ef_construct"])
	assert.Equal(t, 10000.0, hnsw["full_scan_threshold"])
	assert.Equal(t, true, hnsw["on_disk"])
}

func TestInitializeExistingCollection(t *testing.T) {
	newest := float64(time.Date(2026, 1, 5, 10, 0, 0, 0, time.Local).Unix())
	fake := &fakeQdrant{
		exists:      true,
		pointsCount: 3,
		scrollPoints: []map[string]any{
			{"id": 1, "payload": payloadMap("a", "A", "X", newest-100)},
			{"id": 2, "payload": payloadMap("b", "B", "X", newest)},
			{"id": 3, "payload": payloadMap("c", "A", "Y", newest-50)},
		},
	}
	index := newTestIndex(t, fake)

	require.NoError(t, index.Initialize(context.Background()))

	// The first scan is bounded below by the configured seed date.
	must := fake.scrollBody["filter"].(map[string]any)["must"].([]any)
	cond := must[0].(map[string]any)
	assert.Equal(t, "registry_date", cond["key"])
	assert.Equal(t, float64(testSeed.Unix()), cond["range"].(map[string]any)["gte"])

	meta := index.Metadata()
	assert.Equal(t, []string{"A", "B"}, meta.Clients)
	assert.Equal(t, []string{"X", "Y"}, meta.Products)
	assert.Equal(t, int64(newest), index.Watermark().Unix())
}

func TestUpsertAdvancesCountAndRefreshes(t *testing.T) {
	fake := &fakeQdrant{exists: true}
	index := newTestIndex(t, fake)

	points := []Point{
		{ID: 1, Vector: make([]float32, 312), Payload: Payload{Text: "t1", Client: "A", Product: "X", RegistryDate: 100}},
		{ID: 2, Vector: make([]float32, 312), Payload: Payload{Text: "t2", Client: "B", Product: "Y", RegistryDate: 200}},
	}
	require.NoError(t, index.Upsert(context.Background(), points))

	wire := fake.upsertBody["points"].([]any)
	require.Len(t, wire, 2)
	first := wire[0].(map[string]any)
	assert.Equal(t, 1.0, first["id"])
	assert.Equal(t, "t1", first["payload"].(map[string]any)["text"])
	assert.Equal(t, 1, fake.scrollCalls)

	// Exact search scans everything, so its limit exposes the count.
	_, err := index.Query(context.Background(), make([]float32, 312), true, nil)
	require.NoError(t, err)
	last := fake.queryBodies[len(fake.queryBodies)-1]
	assert.Equal(t, 2.0, last["limit"])
	assert.Equal(t, true, last["params"].(map[string]any)["exact"])
}

func TestUpsertFailureLeavesCountUnchanged(t *testing.T) {
	fake := &fakeQdrant{exists: true, failUpsert: true}
	index := newTestIndex(t, fake)

	err := index.Upsert(context.Background(), []Point{
		{ID: 1, Vector: make([]float32, 312), Payload: Payload{Text: "t", Client: "A", Product: "X", RegistryDate: 1}},
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeVectorUpsertFailed, apperrors.CodeOf(err))
	assert.Zero(t, fake.scrollCalls)

	// Count is still zero, so exact search short-circuits to empty.
	hits, err := index.Query(context.Background(), make([]float32, 312), true, nil)
	require.NoError(t, err)
	assert.Empty(t, hits)
	assert.Empty(t, fake.queryBodies)
}

func TestQueryANN(t *testing.T) {
	fake := &fakeQdrant{
		exists: true,
		queryPoints: []map[string]any{
			{"id": 7, "score": 0.91, "payload": payloadMap("сервер упал", "A", "X", 1700000000)},
			{"id": 9, "score": 0.42, "payload": payloadMap("принтер", "B", "Y", 1700000500)},
		},
	}
	index := newTestIndex(t, fake)

	hits, err := index.Query(context.Background(), make([]float32, 312), false, nil)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, int64(7), hits[0].ID)
	assert.Equal(t, 0.91, hits[0].Score)
	assert.Equal(t, "сервер упал", hits[0].Payload.Text)
	assert.Equal(t, 1700000500.0, hits[1].Payload.RegistryDate)

	body := fake.queryBodies[0]
	assert.Equal(t, 500.0, body["limit"])
	assert.Equal(t, 512.0, body["params"].(map[string]any)["hnsw_ef"])
	assert.Equal(t, true, body["with_payload"])
	assert.NotContains(t, body, "filter")
}

func TestQueryWithFilter(t *testing.T) {
	fake := &fakeQdrant{exists: true}
	index := newTestIndex(t, fake)

	_, err := index.Query(context.Background(), make([]float32, 312), false, SearchFilter{"client": "B"})
	require.NoError(t, err)

	must := fake.queryBodies[0]["filter"].(map[string]any)["must"].([]any)
	cond := must[0].(map[string]any)
	assert.Equal(t, "client", cond["key"])
	assert.Equal(t, "B", cond["match"].(map[string]any)["value"])
}

func TestQueryRejectsMalformedPayload(t *testing.T) {
	fake := &fakeQdrant{
		exists: true,
		queryPoints: []map[string]any{
			{"id": 7, "score": 0.9, "payload": map[string]any{"text": "сервер"}},
		},
	}
	index := newTestIndex(t, fake)

	_, err := index.Query(context.Background(), make([]float32, 312), false, nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeVectorQueryFailed, apperrors.CodeOf(err))
}
