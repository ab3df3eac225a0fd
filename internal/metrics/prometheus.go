package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	InteractionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "brim_cs_interaction_duration_seconds",
			Help:    "End-to-end inquiry processing duration in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30},
		},
	)

	DraftsGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "brim_cs_drafts_generated_total",
			Help: "Total drafts generated, by outcome",
		},
		[]string{"status"},
	)

	EmbeddingFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "brim_cs_embedding_failures_total",
			Help: "Total embedding service failures",
		},
	)

	RetrievedEntries = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "brim_cs_retrieved_entries_count",
			Help:    "Similar corpus entries retrieved per inquiry",
			Buckets: []float64{0, 1, 2, 3, 5, 10},
		},
	)

	CorpusEntriesLearned = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "brim_cs_corpus_entries_learned_total",
			Help: "Corpus entries appended by the feedback loop",
		},
	)

	CorrectionsRecorded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "brim_cs_corrections_recorded_total",
			Help: "Human corrections persisted",
		},
	)

	RatingsRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "brim_cs_ratings_recorded_total",
			Help: "Draft ratings persisted, by value",
		},
		[]string{"rating"},
	)

	StatsCacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "brim_cs_stats_cache_hits_total",
			Help: "Dashboard stats served from cache",
		},
	)

	StatsCacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "brim_cs_stats_cache_misses_total",
			Help: "Dashboard stats computed from the ledger",
		},
	)
)

func Init() {
	prometheus.MustRegister(InteractionDuration)
	prometheus.MustRegister(DraftsGenerated)
	prometheus.MustRegister(EmbeddingFailures)
	prometheus.MustRegister(RetrievedEntries)
	prometheus.MustRegister(CorpusEntriesLearned)
	prometheus.MustRegister(CorrectionsRecorded)
	prometheus.MustRegister(RatingsRecorded)
	prometheus.MustRegister(StatsCacheHits)
	prometheus.MustRegister(StatsCacheMisses)
}

func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
