package drafting

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/brim-cs/backend/internal/corpus"
	"github.com/brim-cs/backend/pkg/logger"
)

// PromptVersion tags every stored draft with the prompt revision that
// produced it.
const PromptVersion = "v4"

// failureMarker prefixes the reply text produced when the generation
// service is unavailable.
const failureMarker = "申し訳ありません。返答の生成中にエラーが発生しました"

const (
	maxQuestionRunes = 300
	maxAnswerRunes   = 500
)

const systemPrompt = `あなたはBRIM（植物育成ライト専門メーカー）のカスタマーサポート担当者です。

【重要な対応方針】
1. 丁寧で親切な対応を心がける
2. 過去の類似問い合わせへの回答のトーンと内容を一般知識より優先して踏襲する
3. 問い合わせ製品に該当機能がない場合は、要件を満たす別のBRIM製品を提案する
4. 確実でない事実は断定せず、その旨を添えて案内する
5. 専門用語は適切に説明する

【返答のトーン】
- プロフェッショナルだが親しみやすい
- 技術的に正確
- 簡潔で分かりやすい

【返答の構成】
1. 挨拶とお礼
2. 質問への回答（箇条書きや見出しを活用）
3. 追加情報や提案
4. 締めの言葉

署名は付けないでください。`

type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Draft is the outcome of one generation attempt. A service failure never
// surfaces as an error: Text then carries a user-visible failure message and
// Failed is set, and the caller persists it like any other draft so the
// interaction stays recorded.
type Draft struct {
	Text   string
	Failed bool
}

type Generator struct {
	llm Completer
}

func NewGenerator(llm Completer) *Generator {
	return &Generator{llm: llm}
}

func (g *Generator) Generate(ctx context.Context, inquiryText string, similar []corpus.SimilarEntry, productDigest string) Draft {
	userPrompt := buildUserPrompt(inquiryText, similar, productDigest)

	text, err := g.llm.Complete(ctx, systemPrompt, userPrompt)
	if err != nil {
		logger.Error("draft generation failed", zap.Error(err))
		return Draft{
			Text:   fmt.Sprintf("%s: %v", failureMarker, err),
			Failed: true,
		}
	}

	return Draft{Text: text}
}

func buildUserPrompt(inquiryText string, similar []corpus.SimilarEntry, productDigest string) string {
	var b strings.Builder

	b.WriteString("以下の問い合わせに対して、適切な返答を生成してください。\n\n")
	b.WriteString("【問い合わせ内容】\n")
	b.WriteString(inquiryText)
	b.WriteString("\n")

	if len(similar) > 0 {
		b.WriteString("\n【過去の類似問い合わせと回答】\n")
		for i, entry := range similar {
			fmt.Fprintf(&b, "## 類似例%d（類似度: %.4f）\n", i+1, entry.Similarity)
			fmt.Fprintf(&b, "質問: %s\n", truncateRunes(entry.Question, maxQuestionRunes))
			fmt.Fprintf(&b, "回答: %s\n", truncateRunes(entry.Answer, maxAnswerRunes))
		}
	}

	b.WriteString("\n【製品情報データベース】\n")
	if productDigest != "" {
		b.WriteString(productDigest)
		b.WriteString("\n")
	} else {
		b.WriteString("（該当する製品情報なし）\n")
	}

	b.WriteString("\n上記の情報を参考に、カスタマーサポートとして適切な返答を作成してください。")

	return b.String()
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
