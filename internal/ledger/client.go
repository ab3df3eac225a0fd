package ledger

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/brim-cs/backend/pkg/logger"
)

// Client persists the interaction ledger: inquiries, drafts, corrections and
// ratings, each write committed immediately. Referential integrity is
// enforced by the database.
type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	// DSN parameters apply to every pooled connection, unlike a PRAGMA exec.
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open ledger database: %w", err)
	}

	logger.Info("ledger client initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS inquiries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		inquiry_text TEXT NOT NULL,
		category TEXT,
		inquiry_channel TEXT,
		created_by TEXT,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_inquiries_created ON inquiries(created_at);
	CREATE INDEX IF NOT EXISTS idx_inquiries_category ON inquiries(category);

	CREATE TABLE IF NOT EXISTS drafts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		inquiry_id INTEGER NOT NULL,
		generated_text TEXT NOT NULL,
		prompt_version TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		FOREIGN KEY (inquiry_id) REFERENCES inquiries(id)
	);
	CREATE INDEX IF NOT EXISTS idx_drafts_inquiry ON drafts(inquiry_id);

	CREATE TABLE IF NOT EXISTS corrections (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		draft_id INTEGER NOT NULL,
		corrected_text TEXT NOT NULL,
		notes TEXT,
		corrected_by TEXT,
		created_at INTEGER NOT NULL,
		FOREIGN KEY (draft_id) REFERENCES drafts(id)
	);
	CREATE INDEX IF NOT EXISTS idx_corrections_draft ON corrections(draft_id);
	CREATE INDEX IF NOT EXISTS idx_corrections_created ON corrections(created_at);

	CREATE TABLE IF NOT EXISTS ratings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		draft_id INTEGER NOT NULL,
		rating TEXT NOT NULL CHECK (rating IN ('good', 'bad')),
		feedback_text TEXT,
		created_at INTEGER NOT NULL,
		FOREIGN KEY (draft_id) REFERENCES drafts(id)
	);
	CREATE INDEX IF NOT EXISTS idx_ratings_draft ON ratings(draft_id);
	`

	if _, err := c.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize ledger schema: %w", err)
	}

	logger.Info("ledger schema initialized")
	return nil
}

func (c *Client) InsertInquiry(inq *Inquiry) error {
	now := time.Now()
	res, err := c.db.Exec(
		`INSERT INTO inquiries (inquiry_text, category, inquiry_channel, created_by, created_at) VALUES (?, ?, ?, ?, ?)`,
		inq.Text, inq.Category, inq.Channel, inq.CreatedBy, now.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert inquiry: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read inquiry id: %w", err)
	}

	inq.ID = id
	inq.CreatedAt = now
	return nil
}

func (c *Client) InsertDraft(d *Draft) error {
	now := time.Now()
	res, err := c.db.Exec(
		`INSERT INTO drafts (inquiry_id, generated_text, prompt_version, created_at) VALUES (?, ?, ?, ?)`,
		d.InquiryID, d.Text, d.PromptVersion, now.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert draft: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read draft id: %w", err)
	}

	d.ID = id
	d.CreatedAt = now
	return nil
}

func (c *Client) InsertCorrection(corr *Correction) error {
	now := time.Now()
	res, err := c.db.Exec(
		`INSERT INTO corrections (draft_id, corrected_text, notes, corrected_by, created_at) VALUES (?, ?, ?, ?, ?)`,
		corr.DraftID, corr.CorrectedText, corr.Notes, corr.CorrectedBy, now.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert correction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read correction id: %w", err)
	}

	corr.ID = id
	corr.CreatedAt = now
	return nil
}

func (c *Client) InsertRating(r *Rating) error {
	now := time.Now()
	res, err := c.db.Exec(
		`INSERT INTO ratings (draft_id, rating, feedback_text, created_at) VALUES (?, ?, ?, ?)`,
		r.DraftID, r.Value, r.FeedbackText, now.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert rating: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read rating id: %w", err)
	}

	r.ID = id
	r.CreatedAt = now
	return nil
}

// GetDraftDetail returns a draft joined with its originating inquiry.
// sql.ErrNoRows passes through for missing drafts.
func (c *Client) GetDraftDetail(draftID int64) (*DraftDetail, error) {
	var (
		d         DraftDetail
		createdAt int64
		category  sql.NullString
	)

	err := c.db.QueryRow(`
		SELECT d.id, d.inquiry_id, d.generated_text, d.prompt_version, d.created_at,
		       i.inquiry_text, i.category
		FROM drafts d
		JOIN inquiries i ON i.id = d.inquiry_id
		WHERE d.id = ?`, draftID,
	).Scan(&d.ID, &d.InquiryID, &d.Text, &d.PromptVersion, &createdAt, &d.InquiryText, &category)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get draft %d: %w", draftID, err)
	}

	d.CreatedAt = time.Unix(createdAt, 0)
	d.InquiryCategory = category.String
	return &d, nil
}

// Stats aggregates inquiry, rating and correction counts, optionally bounded
// by an inclusive datetime range on the inquiry's creation time. Rates are
// computed against max(total, 1) so an empty range yields 0%, never a
// division by zero.
func (c *Client) Stats(start, end *time.Time) (*Stats, error) {
	bounded := start != nil && end != nil

	rangeArgs := func(args ...any) []any {
		if bounded {
			return append(args, start.Unix(), end.Unix())
		}
		return args
	}
	rangeClause := func(column string) string {
		if bounded {
			return fmt.Sprintf(" AND %s BETWEEN ? AND ?", column)
		}
		return ""
	}

	stats := &Stats{
		ByCategory: map[string]int{},
		ByChannel:  map[string]int{},
	}

	err := c.db.QueryRow(
		`SELECT COUNT(*) FROM inquiries WHERE 1=1`+rangeClause("created_at"),
		rangeArgs()...,
	).Scan(&stats.Total)
	if err != nil {
		return nil, fmt.Errorf("failed to count inquiries: %w", err)
	}

	ratingQuery := `
		SELECT COUNT(*)
		FROM ratings r
		JOIN drafts d ON d.id = r.draft_id
		JOIN inquiries i ON i.id = d.inquiry_id
		WHERE r.rating = ?` + rangeClause("i.created_at")

	if err := c.db.QueryRow(ratingQuery, rangeArgs(RatingGood)...).Scan(&stats.Good); err != nil {
		return nil, fmt.Errorf("failed to count good ratings: %w", err)
	}
	if err := c.db.QueryRow(ratingQuery, rangeArgs(RatingBad)...).Scan(&stats.Bad); err != nil {
		return nil, fmt.Errorf("failed to count bad ratings: %w", err)
	}

	err = c.db.QueryRow(`
		SELECT COUNT(*)
		FROM corrections c
		JOIN drafts d ON d.id = c.draft_id
		JOIN inquiries i ON i.id = d.inquiry_id
		WHERE 1=1`+rangeClause("i.created_at"),
		rangeArgs()...,
	).Scan(&stats.Corrections)
	if err != nil {
		return nil, fmt.Errorf("failed to count corrections: %w", err)
	}

	if stats.ByCategory, err = c.groupCount("category", start, end); err != nil {
		return nil, err
	}
	if stats.ByChannel, err = c.groupCount("inquiry_channel", start, end); err != nil {
		return nil, err
	}

	denom := stats.Total
	if denom < 1 {
		denom = 1
	}
	stats.GoodRate = float64(stats.Good) / float64(denom) * 100
	stats.BadRate = float64(stats.Bad) / float64(denom) * 100

	return stats, nil
}

func (c *Client) groupCount(column string, start, end *time.Time) (map[string]int, error) {
	query := fmt.Sprintf(
		`SELECT %s, COUNT(*) FROM inquiries WHERE %s IS NOT NULL AND %s != ''`,
		column, column, column,
	)
	var args []any
	if start != nil && end != nil {
		query += ` AND created_at BETWEEN ? AND ?`
		args = append(args, start.Unix(), end.Unix())
	}
	query += fmt.Sprintf(` GROUP BY %s`, column)

	rows, err := c.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to group inquiries by %s: %w", column, err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return nil, fmt.Errorf("failed to scan %s group: %w", column, err)
		}
		counts[key] = count
	}

	return counts, rows.Err()
}

// CorrectionHistory returns corrections joined with their draft and
// originating inquiry, newest first.
func (c *Client) CorrectionHistory(limit int) ([]CorrectionRecord, error) {
	rows, err := c.db.Query(`
		SELECT c.id, i.inquiry_text, d.generated_text, c.corrected_text,
		       COALESCE(c.notes, ''), COALESCE(c.corrected_by, ''), c.created_at
		FROM corrections c
		JOIN drafts d ON d.id = c.draft_id
		JOIN inquiries i ON i.id = d.inquiry_id
		ORDER BY c.created_at DESC, c.id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query correction history: %w", err)
	}
	defer rows.Close()

	var records []CorrectionRecord
	for rows.Next() {
		var r CorrectionRecord
		var createdAt int64
		if err := rows.Scan(&r.CorrectionID, &r.InquiryText, &r.DraftText, &r.CorrectedText, &r.Notes, &r.CorrectedBy, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan correction record: %w", err)
		}
		r.CreatedAt = time.Unix(createdAt, 0)
		records = append(records, r)
	}

	return records, rows.Err()
}
