package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCatalogJSON = `{
  "products": {
    "PNL-001": {
      "product_name": "PANEL X",
      "category": "パネルライト",
      "specifications": {"power_consumption": "45W", "ppfd": "620"},
      "usage": ["多肉植物", "観葉植物"],
      "features": ["調光機能付き", "薄型設計"],
      "faq": [{"question": "調光はできますか？", "answer": "10段階で調整できます。"}]
    },
    "PNL-002": {
      "product_name": "PANEL Y",
      "category": "パネルライト",
      "specifications": {"power_consumption": "60W"}
    },
    "PNL-003": {"product_name": "PANEL Z", "category": "パネルライト"},
    "PNL-004": {"product_name": "PANEL mini", "category": "パネルライト"},
    "PNL-005": {"product_name": "PANEL pro", "category": "パネルライト"},
    "PNL-006": {"product_name": "PANEL max", "category": "パネルライト"},
    "CSM-001": {
      "product_name": "COSMO 22",
      "category": "バーライト",
      "specifications": {"power_consumption": "22W"},
      "usage": "育苗や水耕栽培に"
    },
    "GRW-001": {"product_name": "GROWBAR mini", "category": "バーライト"}
  }
}`

func loadTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := parse([]byte(testCatalogJSON))
	require.NoError(t, err)
	return c
}

func TestLoadMissingFile(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCatalogMissing))
	require.NotNil(t, c)
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, "", c.Digest("PANELについて"))
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrCatalogMissing))
}

func TestLoadValidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(testCatalogJSON), 0644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8, c.Len())
}

func TestDigestKeywordMatch(t *testing.T) {
	c := loadTestCatalog(t)

	digest := c.Digest("Does the PANEL model support dimming?")
	require.NotEmpty(t, digest)

	assert.Contains(t, digest, "PANEL X")
	assert.Contains(t, digest, "PNL-001")
	assert.Contains(t, digest, "PANEL Y")
	assert.NotContains(t, digest, "COSMO")

	// Six products match "panel"; the digest caps at five.
	assert.Equal(t, 5, strings.Count(digest, "■ "))

	// No duplicate SKUs.
	for _, sku := range []string{"PNL-001", "PNL-002", "PNL-003", "PNL-004", "PNL-005"} {
		assert.Equal(t, 1, strings.Count(digest, "(SKU: "+sku+")"), "sku %s", sku)
	}
}

func TestDigestKeywordCaseInsensitive(t *testing.T) {
	c := loadTestCatalog(t)

	lower := c.Digest("cosmoの消費電力を教えてください")
	require.NotEmpty(t, lower)
	assert.Contains(t, lower, "COSMO 22")
}

func TestDigestContent(t *testing.T) {
	c := loadTestCatalog(t)

	digest := c.Digest("COSMOの使い方")
	assert.Contains(t, digest, "仕様:")
	assert.Contains(t, digest, "power_consumption: 22W")
	assert.Contains(t, digest, "使用方法: 育苗や水耕栽培に")

	panel := c.Digest("PANEL X")
	assert.Contains(t, panel, "使用方法: 多肉植物, 観葉植物", "list usage flattens comma-joined")
	assert.Contains(t, panel, "特徴: 調光機能付き, 薄型設計")
	assert.Contains(t, panel, "FAQ Q: 調光はできますか？")
	assert.Contains(t, panel, "FAQ A: 10段階で調整できます。")
}

func TestDigestFallbackWordMatch(t *testing.T) {
	c := loadTestCatalog(t)

	digest := c.Digest("growbar 再入荷 予定")
	require.NotEmpty(t, digest)
	assert.Contains(t, digest, "GROWBAR mini")
	assert.NotContains(t, digest, "PANEL")
}

func TestDigestNoMatch(t *testing.T) {
	c := loadTestCatalog(t)

	assert.Equal(t, "", c.Digest("配送はいつ頃になりますか"))
	assert.Equal(t, "", c.Digest(""))
	assert.Equal(t, "", c.Digest("   "))
}
