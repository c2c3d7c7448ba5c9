package errors

// Error codes for the search and ingestion pipeline. Codes are stable
// identifiers used in logs and HTTP error mapping; messages may change.
const (
	// CodeConfigMissing indicates the configuration file is absent or a
	// required key is not set. Fatal at startup.
	CodeConfigMissing = "CONFIG_MISSING"

	// CodeRelationalFetchFailed indicates a ticket fetch from the
	// relational source failed. Treated as an empty fetch; the next
	// window or scheduled run retries.
	CodeRelationalFetchFailed = "RELATIONAL_FETCH_FAILED"

	// CodeVectorUpsertFailed indicates an upsert into the vector index
	// failed. The corpus is unchanged; the next run retries the window.
	CodeVectorUpsertFailed = "VECTOR_UPSERT_FAILED"

	// CodeVectorQueryFailed indicates a similarity query against the
	// vector index failed. Surfaced to the caller as a server error.
	CodeVectorQueryFailed = "VECTOR_QUERY_FAILED"

	// CodeEnrichmentGap indicates the enrichment lookup returned no row
	// for at least one requested ticket id.
	CodeEnrichmentGap = "ENRICHMENT_GAP"

	// CodeInvalidAlpha indicates the blend weight is outside [0, 1].
	CodeInvalidAlpha = "INVALID_ALPHA"

	// CodeInvalidLimit indicates a non-positive result limit.
	CodeInvalidLimit = "INVALID_LIMIT"

	// CodeEmptyCorpus indicates the query matched an empty hit set, so
	// hybrid scoring has nothing to normalize. Mapped to a benign
	// "data not found" response at the HTTP boundary.
	CodeEmptyCorpus = "EMPTY_CORPUS"
)

// retryableCodes marks codes where repeating the operation can succeed.
var retryableCodes = map[string]bool{
	CodeRelationalFetchFailed: true,
	CodeVectorUpsertFailed:    true,
	CodeVectorQueryFailed:     true,
}

// clientCodes marks codes caused by the caller's input (400-class).
var clientCodes = map[string]bool{
	CodeInvalidAlpha: true,
	CodeInvalidLimit: true,
}
