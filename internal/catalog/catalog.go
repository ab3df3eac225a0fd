package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/brim-cs/backend/pkg/logger"
)

// ErrCatalogMissing marks an absent catalog file. Callers continue with an
// empty catalog rather than failing startup.
var ErrCatalogMissing = errors.New("product catalog file not found")

type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Product mirrors one record of the product database document. Usage may be
// either a string or a list in the source document, so it stays untyped
// until formatting.
type Product struct {
	Name           string         `json:"product_name"`
	Category       string         `json:"category"`
	Specifications map[string]any `json:"specifications"`
	Usage          any            `json:"usage"`
	Features       []string       `json:"features"`
	FAQ            []FAQ          `json:"faq"`
}

type document struct {
	Products map[string]Product `json:"products"`
}

// Catalog is the read-only product lookup, loaded once at startup.
type Catalog struct {
	products map[string]Product
	skus     []string // sorted, for deterministic iteration
}

// Load reads the product database document. A missing file returns an empty
// catalog together with ErrCatalogMissing; a malformed document is an error.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Catalog{products: map[string]Product{}}, fmt.Errorf("%w: %s", ErrCatalogMissing, path)
		}
		return nil, fmt.Errorf("failed to read product catalog: %w", err)
	}

	c, err := parse(data)
	if err != nil {
		return nil, err
	}

	logger.Info("product catalog loaded",
		zap.String("path", path),
		zap.Int("products", len(c.products)),
	)

	return c, nil
}

func parse(data []byte) (*Catalog, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse product catalog: %w", err)
	}

	skus := make([]string, 0, len(doc.Products))
	for sku := range doc.Products {
		skus = append(skus, sku)
	}
	sort.Strings(skus)

	return &Catalog{products: doc.Products, skus: skus}, nil
}

func (c *Catalog) Len() int {
	return len(c.products)
}

// matchTerm collects products whose name or, optionally, category contains
// the term, case-insensitively, in sorted SKU order.
func (c *Catalog) matchTerm(term string, includeCategory bool) []string {
	term = strings.ToLower(term)
	var matched []string
	for _, sku := range c.skus {
		p := c.products[sku]
		if strings.Contains(strings.ToLower(p.Name), term) {
			matched = append(matched, sku)
			continue
		}
		if includeCategory && strings.Contains(strings.ToLower(p.Category), term) {
			matched = append(matched, sku)
		}
	}
	return matched
}
