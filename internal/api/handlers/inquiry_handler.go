package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/brim-cs/backend/internal/corpus"
	"github.com/brim-cs/backend/internal/drafting"
	"github.com/brim-cs/backend/internal/ingestion"
	"github.com/brim-cs/backend/internal/ledger"
	"github.com/brim-cs/backend/internal/metrics"
	"github.com/brim-cs/backend/pkg/logger"
)

type InquiryLedger interface {
	InsertInquiry(inq *ledger.Inquiry) error
	InsertDraft(d *ledger.Draft) error
}

type Retriever interface {
	Retrieve(ctx context.Context, inquiryText string) ([]corpus.SimilarEntry, string)
}

type Drafter interface {
	Generate(ctx context.Context, inquiryText string, similar []corpus.SimilarEntry, productDigest string) drafting.Draft
}

// InquiryHandler runs the full drafting interaction: persist the inquiry,
// retrieve context, generate a draft, persist it, and return everything the
// agent needs to review.
type InquiryHandler struct {
	ledger    InquiryLedger
	retriever Retriever
	drafter   Drafter
}

func NewInquiryHandler(l InquiryLedger, r Retriever, d Drafter) *InquiryHandler {
	return &InquiryHandler{ledger: l, retriever: r, drafter: d}
}

func (h *InquiryHandler) HandleCreate(c *fiber.Ctx) error {
	var req struct {
		Text      string `json:"text"`
		Category  string `json:"category"`
		Channel   string `json:"channel"`
		CreatedBy string `json:"created_by"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	text := ingestion.Normalize(req.Text)
	if text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "inquiry text is required",
		})
	}
	if req.Category != "" && !contains(ledger.Categories, req.Category) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unknown category",
		})
	}
	if req.Channel != "" && !contains(ledger.Channels, req.Channel) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unknown channel",
		})
	}

	interactionID := uuid.New().String()
	start := time.Now()

	inquiry := &ledger.Inquiry{
		Text:      text,
		Category:  req.Category,
		Channel:   req.Channel,
		CreatedBy: req.CreatedBy,
	}
	if err := h.ledger.InsertInquiry(inquiry); err != nil {
		logger.Error("failed to store inquiry",
			zap.String("interaction_id", interactionID),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to store inquiry",
		})
	}

	similar, digest := h.retriever.Retrieve(c.Context(), text)
	draft := h.drafter.Generate(c.Context(), text, similar, digest)

	stored := &ledger.Draft{
		InquiryID:     inquiry.ID,
		Text:          draft.Text,
		PromptVersion: drafting.PromptVersion,
	}
	if err := h.ledger.InsertDraft(stored); err != nil {
		logger.Error("failed to store draft",
			zap.String("interaction_id", interactionID),
			zap.Int64("inquiry_id", inquiry.ID),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to store draft",
		})
	}

	status := "ok"
	if draft.Failed {
		status = "degraded"
	}
	metrics.DraftsGenerated.WithLabelValues(status).Inc()
	metrics.InteractionDuration.Observe(time.Since(start).Seconds())

	logger.Info("inquiry processed",
		zap.String("interaction_id", interactionID),
		zap.Int64("inquiry_id", inquiry.ID),
		zap.Int64("draft_id", stored.ID),
		zap.Int("similar_entries", len(similar)),
		zap.Bool("degraded", draft.Failed),
		zap.Duration("latency", time.Since(start)),
	)

	if similar == nil {
		similar = []corpus.SimilarEntry{}
	}

	return c.JSON(fiber.Map{
		"interaction_id": interactionID,
		"inquiry_id":     inquiry.ID,
		"draft_id":       stored.ID,
		"draft_text":     draft.Text,
		"degraded":       draft.Failed,
		"similar":        similar,
		"product_digest": digest,
	})
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
