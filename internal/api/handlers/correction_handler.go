package handlers

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/brim-cs/backend/internal/ledger"
	"github.com/brim-cs/backend/internal/metrics"
	"github.com/brim-cs/backend/pkg/logger"
)

type ReviewLedger interface {
	GetDraftDetail(draftID int64) (*ledger.DraftDetail, error)
	InsertCorrection(corr *ledger.Correction) error
	InsertRating(r *ledger.Rating) error
}

type Learner interface {
	Learn(ctx context.Context, question, correctedAnswer, category string) bool
}

// CorrectionHandler records the human review of a draft: edited replies and
// thumbs up/down ratings. An edit that actually changed the text also feeds
// the corpus through the feedback loop; submitting the draft unchanged only
// records the correction.
type CorrectionHandler struct {
	ledger ReviewLedger
	loop   Learner
}

func NewCorrectionHandler(l ReviewLedger, loop Learner) *CorrectionHandler {
	return &CorrectionHandler{ledger: l, loop: loop}
}

func (h *CorrectionHandler) HandleCorrect(c *fiber.Ctx) error {
	draftID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid draft id",
		})
	}

	var req struct {
		CorrectedText string `json:"corrected_text"`
		Notes         string `json:"notes"`
		CorrectedBy   string `json:"corrected_by"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if req.CorrectedText == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "corrected_text is required",
		})
	}

	detail, err := h.ledger.GetDraftDetail(int64(draftID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "draft not found",
			})
		}
		logger.Error("failed to load draft", zap.Int("draft_id", draftID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load draft",
		})
	}

	correction := &ledger.Correction{
		DraftID:       detail.ID,
		CorrectedText: req.CorrectedText,
		Notes:         req.Notes,
		CorrectedBy:   req.CorrectedBy,
	}
	if err := h.ledger.InsertCorrection(correction); err != nil {
		logger.Error("failed to store correction", zap.Int64("draft_id", detail.ID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to store correction",
		})
	}
	metrics.CorrectionsRecorded.Inc()

	// The learning write is decoupled from the ledger write: a failed learn
	// leaves the correction persisted and reports learned=false.
	learned := false
	if req.CorrectedText != detail.Text {
		learned = h.loop.Learn(c.Context(), detail.InquiryText, req.CorrectedText, detail.InquiryCategory)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"correction_id": correction.ID,
		"learned":       learned,
	})
}

func (h *CorrectionHandler) HandleRate(c *fiber.Ctx) error {
	draftID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid draft id",
		})
	}

	var req struct {
		Rating       string `json:"rating"`
		FeedbackText string `json:"feedback_text"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if req.Rating != ledger.RatingGood && req.Rating != ledger.RatingBad {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "rating must be 'good' or 'bad'",
		})
	}

	detail, err := h.ledger.GetDraftDetail(int64(draftID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "draft not found",
			})
		}
		logger.Error("failed to load draft", zap.Int("draft_id", draftID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load draft",
		})
	}

	rating := &ledger.Rating{
		DraftID:      detail.ID,
		Value:        req.Rating,
		FeedbackText: req.FeedbackText,
	}
	if err := h.ledger.InsertRating(rating); err != nil {
		logger.Error("failed to store rating", zap.Int64("draft_id", detail.ID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to store rating",
		})
	}
	metrics.RatingsRecorded.WithLabelValues(req.Rating).Inc()

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"rating_id": rating.ID,
	})
}
