package retrieval

import (
	"context"

	"go.uber.org/zap"

	"github.com/brim-cs/backend/internal/corpus"
	"github.com/brim-cs/backend/internal/metrics"
	"github.com/brim-cs/backend/pkg/logger"
)

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type SimilaritySearcher interface {
	Search(ctx context.Context, embedding []float32, k int) ([]corpus.SimilarEntry, error)
}

type DigestBuilder interface {
	Digest(inquiry string) string
}

// Retriever produces the context for one draft: the top-K most similar
// historical Q&A pairs and a digest of catalog products the inquiry
// mentions. Retrieval never fails an interaction — every error degrades to
// an empty result.
type Retriever struct {
	embedder Embedder
	store    SimilaritySearcher
	catalog  DigestBuilder
	topK     int
}

func NewRetriever(embedder Embedder, store SimilaritySearcher, catalog DigestBuilder, topK int) *Retriever {
	return &Retriever{
		embedder: embedder,
		store:    store,
		catalog:  catalog,
		topK:     topK,
	}
}

func (r *Retriever) Retrieve(ctx context.Context, inquiryText string) ([]corpus.SimilarEntry, string) {
	digest := r.catalog.Digest(inquiryText)

	embedding, err := r.embedder.Embed(ctx, inquiryText)
	if err != nil {
		metrics.EmbeddingFailures.Inc()
		logger.Warn("inquiry embedding failed, skipping similarity retrieval", zap.Error(err))
		return nil, digest
	}

	entries, err := r.store.Search(ctx, embedding, r.topK)
	if err != nil {
		logger.Warn("corpus search failed, continuing without similar entries", zap.Error(err))
		return nil, digest
	}

	metrics.RetrievedEntries.Observe(float64(len(entries)))
	logger.Debug("retrieval complete",
		zap.Int("similar_entries", len(entries)),
		zap.Bool("product_digest", digest != ""),
	)

	return entries, digest
}
