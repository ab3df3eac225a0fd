package ledger

import "time"

// Rating values accepted on a draft.
const (
	RatingGood = "good"
	RatingBad  = "bad"
)

// Categories are the fixed inquiry categories offered to agents.
var Categories = []string{
	"製品仕様・スペック", "UV・紫外線", "使用方法", "電気代・ランニングコスト",
	"タイマー機能", "設置・取り付け", "植物適合性", "故障・不具合",
	"購入前相談", "製品比較", "配送・在庫", "返品・交換",
	"保証・アフターサービス", "その他",
}

// Channels are the fixed inquiry intake routes.
var Channels = []string{"エルメ", "MD_Amazon", "MD_楽天", "MD_公式", "その他"}

type Inquiry struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	Category  string    `json:"category"`
	Channel   string    `json:"channel"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

type Draft struct {
	ID            int64     `json:"id"`
	InquiryID     int64     `json:"inquiry_id"`
	Text          string    `json:"text"`
	PromptVersion string    `json:"prompt_version"`
	CreatedAt     time.Time `json:"created_at"`
}

// DraftDetail joins a draft with the inquiry it answers, as needed by the
// correction flow.
type DraftDetail struct {
	Draft
	InquiryText     string `json:"inquiry_text"`
	InquiryCategory string `json:"inquiry_category"`
}

type Correction struct {
	ID            int64     `json:"id"`
	DraftID       int64     `json:"draft_id"`
	CorrectedText string    `json:"corrected_text"`
	Notes         string    `json:"notes"`
	CorrectedBy   string    `json:"corrected_by"`
	CreatedAt     time.Time `json:"created_at"`
}

type Rating struct {
	ID           int64     `json:"id"`
	DraftID      int64     `json:"draft_id"`
	Value        string    `json:"value"`
	FeedbackText string    `json:"feedback_text"`
	CreatedAt    time.Time `json:"created_at"`
}

// CorrectionRecord is one row of the learning-history display: the
// correction joined with its draft and originating inquiry.
type CorrectionRecord struct {
	CorrectionID  int64     `json:"correction_id"`
	InquiryText   string    `json:"inquiry_text"`
	DraftText     string    `json:"draft_text"`
	CorrectedText string    `json:"corrected_text"`
	Notes         string    `json:"notes"`
	CorrectedBy   string    `json:"corrected_by"`
	CreatedAt     time.Time `json:"created_at"`
}

// Stats aggregates dashboard figures, optionally bounded by a datetime
// range. Rates are percentages and stay 0 when no inquiries exist.
type Stats struct {
	Total       int            `json:"total"`
	Good        int            `json:"good"`
	Bad         int            `json:"bad"`
	Corrections int            `json:"corrections"`
	GoodRate    float64        `json:"good_rate"`
	BadRate     float64        `json:"bad_rate"`
	ByCategory  map[string]int `json:"by_category"`
	ByChannel   map[string]int `json:"by_channel"`
}
