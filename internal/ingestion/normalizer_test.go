package ingestion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePlainTextPassesThrough(t *testing.T) {
	got := Normalize("  PANELの消費電力を教えてください。  ")
	assert.Equal(t, "PANELの消費電力を教えてください。", got)
}

func TestNormalizeCollapsesWhitespace(t *testing.T) {
	got := Normalize("COSMO 22 の\t\tタイマー設定は   できますか")
	assert.Equal(t, "COSMO 22 の タイマー設定は できますか", got)
}

func TestNormalizeDropsExcessBlankLines(t *testing.T) {
	got := Normalize("一行目\r\n\r\n\r\n\r\n二行目")
	assert.Equal(t, "一行目\n\n二行目", got)
}

func TestNormalizeStripsMarkup(t *testing.T) {
	raw := `<html><head><title>mail</title></head><body>
<p>SOLが点灯しません。</p>
<div>保証期間内です。</div>
<script>alert("x")</script>
</body></html>`

	got := Normalize(raw)

	assert.Contains(t, got, "SOLが点灯しません。")
	assert.Contains(t, got, "保証期間内です。")
	assert.NotContains(t, got, "alert")
	assert.NotContains(t, got, "mail")
	assert.NotContains(t, got, "<")
}

func TestNormalizeKeepsBlockBoundaries(t *testing.T) {
	got := Normalize(`<div>注文番号: 123</div><div>返品を希望します</div>`)
	assert.Equal(t, "注文番号: 123\n返品を希望します", got)
}

func TestNormalizeIgnoresLooseAngleBrackets(t *testing.T) {
	// Comparison operators are not markup.
	got := Normalize("湿度が 60% < 70% の環境で使えますか")
	assert.Equal(t, "湿度が 60% < 70% の環境で使えますか", got)
}
