package embed

import (
	"log/slog"
	"strings"
)

// NewEmbedder selects an embedding backend from the model configuration.
// An http(s) path selects the HTTP embedder talking to an embedding
// server; any other value falls back to the deterministic static
// embedder. The result is always wrapped in the LRU cache.
func NewEmbedder(path, modelName string) Embedder {
	var inner Embedder
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		inner = NewHTTPEmbedder(HTTPConfig{Host: strings.TrimRight(path, "/"), Model: modelName})
		slog.Info("embedder selected",
			slog.String("backend", "http"),
			slog.String("host", path),
			slog.String("model", modelName))
	} else {
		inner = NewStaticEmbedder()
		slog.Info("embedder selected",
			slog.String("backend", "static"),
			slog.String("model", inner.ModelName()))
	}
	return NewCachedEmbedder(inner, DefaultCacheSize)
}
