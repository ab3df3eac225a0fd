package catalog

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	prose "github.com/jdkato/prose/v2"
)

// brandKeywords are the product line tokens scanned against every inquiry.
// Matching is lexical, not semantic: a keyword hit only means the inquiry
// mentions the product line by name.
var brandKeywords = []string{"COSMO", "SOL", "LUNA", "FLORA", "PANEL"}

// maxDigestProducts caps how many products one digest may describe.
const maxDigestProducts = 5

// Digest builds a textual summary of the catalog products an inquiry appears
// to reference. It scans the brand keyword list case-insensitively; when no
// keyword is present it falls back to matching individual inquiry words
// (length >= 2) against product names. Returns "" when nothing matches.
func (c *Catalog) Digest(inquiry string) string {
	if len(c.products) == 0 || strings.TrimSpace(inquiry) == "" {
		return ""
	}

	lowerInquiry := strings.ToLower(inquiry)

	var skus []string
	seen := make(map[string]bool)
	add := func(candidates []string) {
		for _, sku := range candidates {
			if !seen[sku] {
				seen[sku] = true
				skus = append(skus, sku)
			}
		}
	}

	for _, keyword := range brandKeywords {
		if strings.Contains(lowerInquiry, strings.ToLower(keyword)) {
			add(c.matchTerm(keyword, true))
		}
	}

	if len(skus) == 0 {
		for _, word := range tokenize(inquiry) {
			if utf8.RuneCountInString(word) < 2 {
				continue
			}
			add(c.matchTerm(word, false))
		}
	}

	if len(skus) == 0 {
		return ""
	}
	if len(skus) > maxDigestProducts {
		skus = skus[:maxDigestProducts]
	}

	var b strings.Builder
	for _, sku := range skus {
		writeProduct(&b, sku, c.products[sku])
	}
	return strings.TrimRight(b.String(), "\n")
}

func writeProduct(b *strings.Builder, sku string, p Product) {
	fmt.Fprintf(b, "■ %s (SKU: %s)\n", p.Name, sku)
	if p.Category != "" {
		fmt.Fprintf(b, "カテゴリ: %s\n", p.Category)
	}

	if len(p.Specifications) > 0 {
		b.WriteString("仕様:\n")
		keys := make([]string, 0, len(p.Specifications))
		for k := range p.Specifications {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(b, "  - %s: %s\n", k, flatten(p.Specifications[k]))
		}
	}

	if usage := flatten(p.Usage); usage != "" {
		fmt.Fprintf(b, "使用方法: %s\n", usage)
	}

	if len(p.Features) > 0 {
		fmt.Fprintf(b, "特徴: %s\n", strings.Join(p.Features, ", "))
	}

	for _, faq := range p.FAQ {
		fmt.Fprintf(b, "FAQ Q: %s\nFAQ A: %s\n", faq.Question, faq.Answer)
	}

	b.WriteString("\n")
}

// flatten renders a JSON scalar or list as a single line, comma-joining
// list elements.
func flatten(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, flatten(item))
		}
		return strings.Join(parts, ", ")
	case []string:
		return strings.Join(val, ", ")
	default:
		return fmt.Sprintf("%v", val)
	}
}

// tokenize splits an inquiry into words for the fallback match. Tagging and
// entity extraction are disabled; only the tokenizer runs.
func tokenize(text string) []string {
	doc, err := prose.NewDocument(text,
		prose.WithTagging(false),
		prose.WithExtraction(false),
		prose.WithSegmentation(false),
	)
	if err != nil {
		return strings.Fields(text)
	}

	tokens := doc.Tokens()
	words := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		words = append(words, tok.Text)
	}
	return words
}
