package search

import (
	"context"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/eruditedesk/ticketsearch/internal/errors"
	"github.com/eruditedesk/ticketsearch/internal/store"
	"github.com/eruditedesk/ticketsearch/internal/textproc"
)

// normEpsilon keeps max-normalization defined when every score is zero.
const normEpsilon = 1e-9

// RankedHit is one entry of the fused ranking. Score is the hybrid
// blend; RegistryDate is carried through from the hit payload.
type RankedHit struct {
	ID           int64
	Score        float64
	RegistryDate float64
}

// rankHybrid fuses cosine hits with BM25 over the hit texts under the
// blend weight alpha. Each score vector is normalized by its own max,
// then blended as alpha*bm25 + (1-alpha)*cosine and sorted descending.
// Ties keep hit order. Empty hits yield an empty list, not an error.
func rankHybrid(ctx context.Context, hits []store.Hit, query string, alpha float64) ([]RankedHit, error) {
	if alpha < 0 || alpha > 1 {
		return nil, apperrors.Newf(apperrors.CodeInvalidAlpha, "alpha %v outside [0, 1]", alpha)
	}
	if len(hits) == 0 {
		return []RankedHit{}, nil
	}

	// Tokenization dominates scoring cost on large hit sets; fan the
	// documents out across cores.
	docTokens := make([][]string, len(hits))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, hit := range hits {
		i, hit := i, hit
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			docTokens[i] = textproc.BM25Tokens(hit.Payload.Text)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	queryTokens := textproc.BM25Tokens(query)
	bm25Scores := newBM25Okapi(docTokens).Scores(queryTokens)

	cosineScores := make([]float64, len(hits))
	for i, hit := range hits {
		cosineScores[i] = hit.Score
	}

	bm25Norm := maxNormalize(bm25Scores)
	cosineNorm := maxNormalize(cosineScores)

	ranked := make([]RankedHit, len(hits))
	for i, hit := range hits {
		ranked[i] = RankedHit{
			ID:           hit.ID,
			Score:        alpha*bm25Norm[i] + (1-alpha)*cosineNorm[i],
			RegistryDate: hit.Payload.RegistryDate,
		}
	}

	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].Score > ranked[b].Score
	})
	return ranked, nil
}

// maxNormalize divides every value by the vector maximum plus epsilon.
func maxNormalize(values []float64) []float64 {
	max := values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
	}

	normalized := make([]float64, len(values))
	for i, v := range values {
		normalized[i] = v / (max + normEpsilon)
	}
	return normalized
}
