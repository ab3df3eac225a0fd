package drafting

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brim-cs/backend/internal/corpus"
)

type fakeCompleter struct {
	lastSystem string
	lastUser   string
	reply      string
	err        error
}

func (f *fakeCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	f.lastSystem = systemPrompt
	f.lastUser = userPrompt
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func TestGenerateSuccess(t *testing.T) {
	fake := &fakeCompleter{reply: "お問い合わせありがとうございます。"}
	g := NewGenerator(fake)

	similar := []corpus.SimilarEntry{
		{Question: "PANELは調光できますか", Answer: "10段階で調整可能です", Similarity: 0.9123},
	}

	draft := g.Generate(context.Background(), "PANELの調光について", similar, "■ PANEL X (SKU: PNL-001)")

	assert.False(t, draft.Failed)
	assert.Equal(t, "お問い合わせありがとうございます。", draft.Text)

	assert.Contains(t, fake.lastSystem, "BRIM")
	assert.Contains(t, fake.lastUser, "【問い合わせ内容】")
	assert.Contains(t, fake.lastUser, "PANELの調光について")
	assert.Contains(t, fake.lastUser, "類似度: 0.9123")
	assert.Contains(t, fake.lastUser, "PANELは調光できますか")
	assert.Contains(t, fake.lastUser, "■ PANEL X (SKU: PNL-001)")
	assert.NotContains(t, fake.lastUser, "該当する製品情報なし")
}

func TestGenerateTruncatesSimilarEntries(t *testing.T) {
	fake := &fakeCompleter{reply: "ok"}
	g := NewGenerator(fake)

	longQuestion := strings.Repeat("あ", 350)
	longAnswer := strings.Repeat("い", 600)
	similar := []corpus.SimilarEntry{
		{Question: longQuestion, Answer: longAnswer, Similarity: 0.5},
	}

	g.Generate(context.Background(), "質問", similar, "")

	assert.Contains(t, fake.lastUser, strings.Repeat("あ", 300))
	assert.NotContains(t, fake.lastUser, strings.Repeat("あ", 301))
	assert.Contains(t, fake.lastUser, strings.Repeat("い", 500))
	assert.NotContains(t, fake.lastUser, strings.Repeat("い", 501))
}

func TestGenerateWithoutContext(t *testing.T) {
	fake := &fakeCompleter{reply: "ok"}
	g := NewGenerator(fake)

	g.Generate(context.Background(), "配送について", nil, "")

	assert.NotContains(t, fake.lastUser, "【過去の類似問い合わせと回答】")
	assert.Contains(t, fake.lastUser, "（該当する製品情報なし）")
}

func TestGenerateServiceFailure(t *testing.T) {
	fake := &fakeCompleter{err: errors.New("connection refused")}
	g := NewGenerator(fake)

	draft := g.Generate(context.Background(), "質問", nil, "")

	require.True(t, draft.Failed)
	assert.Contains(t, draft.Text, failureMarker)
	assert.Contains(t, draft.Text, "connection refused")
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"shorter than max", "abc", 5, "abc"},
		{"exactly max", "abcde", 5, "abcde"},
		{"longer than max", "abcdef", 5, "abcde"},
		{"multibyte runes", "あいうえお", 3, "あいう"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, truncateRunes(tt.in, tt.max))
		})
	}
}
