package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/brim-cs/backend/internal/ledger"
	"github.com/brim-cs/backend/internal/metrics"
	"github.com/brim-cs/backend/pkg/logger"
	"github.com/brim-cs/backend/pkg/utils"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 50
)

type StatsLedger interface {
	Stats(start, end *time.Time) (*ledger.Stats, error)
	CorrectionHistory(limit int) ([]ledger.CorrectionRecord, error)
}

type StatsCache interface {
	GetStats(ctx context.Context, key string, stats any) (bool, error)
	SetStats(ctx context.Context, key string, stats any, ttl time.Duration) error
}

// StatsHandler serves the dashboard aggregates and the correction history.
// The cache is optional; when absent every request hits the ledger.
type StatsHandler struct {
	ledger   StatsLedger
	cache    StatsCache
	cacheTTL time.Duration
}

func NewStatsHandler(l StatsLedger, cache StatsCache, cacheTTL time.Duration) *StatsHandler {
	return &StatsHandler{ledger: l, cache: cache, cacheTTL: cacheTTL}
}

func (h *StatsHandler) HandleStats(c *fiber.Ctx) error {
	period := c.Query("period", "all")

	start, end, err := periodRange(time.Now(), period)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	cacheKey := statsCacheKey(period, start, end)

	if h.cache != nil {
		var cached ledger.Stats
		ok, err := h.cache.GetStats(c.Context(), cacheKey, &cached)
		if err != nil {
			logger.Warn("stats cache read failed", zap.Error(err))
		} else if ok {
			metrics.StatsCacheHits.Inc()
			return c.JSON(fiber.Map{"period": period, "stats": cached})
		}
	}

	stats, err := h.ledger.Stats(start, end)
	if err != nil {
		logger.Error("failed to compute stats", zap.String("period", period), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to compute stats",
		})
	}
	metrics.StatsCacheMisses.Inc()

	if h.cache != nil {
		if err := h.cache.SetStats(c.Context(), cacheKey, stats, h.cacheTTL); err != nil {
			logger.Warn("stats cache write failed", zap.Error(err))
		}
	}

	return c.JSON(fiber.Map{"period": period, "stats": stats})
}

func (h *StatsHandler) HandleCorrectionHistory(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", defaultHistoryLimit)
	if limit < 1 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	records, err := h.ledger.CorrectionHistory(limit)
	if err != nil {
		logger.Error("failed to load correction history", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load correction history",
		})
	}

	if records == nil {
		records = []ledger.CorrectionRecord{}
	}

	return c.JSON(fiber.Map{"corrections": records})
}

// HandleMeta exposes the fixed category and channel vocabularies for the
// frontend selects.
func HandleMeta(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"categories": ledger.Categories,
		"channels":   ledger.Channels,
	})
}

// periodRange maps the dashboard period presets onto an inclusive datetime
// range. "all" (and "") means unbounded.
func periodRange(now time.Time, period string) (*time.Time, *time.Time, error) {
	switch period {
	case "", "all":
		return nil, nil, nil
	case "this_month":
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return &start, &now, nil
	case "last_month":
		firstOfThis := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		end := firstOfThis.Add(-time.Second)
		start := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, now.Location())
		return &start, &end, nil
	case "7d":
		start := now.AddDate(0, 0, -7)
		return &start, &now, nil
	case "30d":
		start := now.AddDate(0, 0, -30)
		return &start, &now, nil
	default:
		return nil, nil, fmt.Errorf("unknown period %q", period)
	}
}

func statsCacheKey(period string, start, end *time.Time) string {
	var s, e int64
	if start != nil {
		s = start.Unix()
	}
	if end != nil {
		e = end.Unix()
	}
	return utils.HashString(fmt.Sprintf("%s:%d:%d", period, s, e))
}
