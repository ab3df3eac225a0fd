package feedback

import (
	"context"

	"go.uber.org/zap"

	"github.com/brim-cs/backend/internal/corpus"
	"github.com/brim-cs/backend/internal/metrics"
	"github.com/brim-cs/backend/pkg/logger"
)

// PlatformTag marks corpus entries produced by the feedback loop as
// human-corrected, distinguishing them from bulk-ingested history.
const PlatformTag = "human_correction"

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type Appender interface {
	Insert(ctx context.Context, e *corpus.Entry) error
}

// Loop turns accepted human corrections into new retrievable corpus
// entries. It runs after the correction itself is already persisted in the
// ledger; a failure here never undoes that write.
type Loop struct {
	embedder Embedder
	store    Appender
}

func NewLoop(embedder Embedder, store Appender) *Loop {
	return &Loop{embedder: embedder, store: store}
}

// Learn embeds the original question and appends it with the corrected
// answer to the corpus. Returns false without touching the corpus when
// embedding fails, and false when the insert fails.
func (l *Loop) Learn(ctx context.Context, question, correctedAnswer, category string) bool {
	embedding, err := l.embedder.Embed(ctx, question)
	if err != nil {
		metrics.EmbeddingFailures.Inc()
		logger.Warn("learning aborted: question embedding failed", zap.Error(err))
		return false
	}

	entry := &corpus.Entry{
		Question:  question,
		Answer:    correctedAnswer,
		Category:  category,
		Platform:  PlatformTag,
		Embedding: embedding,
	}

	if err := l.store.Insert(ctx, entry); err != nil {
		logger.Error("learning failed: could not append corpus entry", zap.Error(err))
		return false
	}

	metrics.CorpusEntriesLearned.Inc()
	logger.Info("correction learned into corpus",
		zap.Int64("entry_id", entry.ID),
		zap.String("category", category),
	)

	return true
}
