// Package crossref intersects a curated gene-function table with the
// expression datasets and tags genes with functional categories.
package crossref

import "strings"

// DefaultCategory is assigned when no keyword matches a description.
const DefaultCategory = "other"

// Keyword binds a lower-cased substring to a functional category.
type Keyword struct {
	Keyword  string
	Category string
}

// DefaultKeywords covers the contraction machinery the analysis tracks.
func DefaultKeywords() []Keyword {
	return []Keyword{
		{Keyword: "actin", Category: "actin"},
		{Keyword: "myosin", Category: "myosin"},
		{Keyword: "calcium", Category: "calcium"},
	}
}

// Categorizer tags free-text functional descriptions with categories.
// Categories are not mutually exclusive; a description matching several
// keywords yields several categories, in keyword order.
type Categorizer struct {
	keywords []Keyword
	fallback string
}

// NewCategorizer builds a Categorizer; nil keywords selects the defaults.
func NewCategorizer(keywords []Keyword) *Categorizer {
	if keywords == nil {
		keywords = DefaultKeywords()
	}
	return &Categorizer{keywords: keywords, fallback: DefaultCategory}
}

// Categorize returns every category whose keyword occurs in the
// description, or the fallback category when none do.
func (c *Categorizer) Categorize(description string) []string {
	lower := strings.ToLower(description)
	var out []string
	for _, k := range c.keywords {
		if strings.Contains(lower, k.Keyword) {
			out = append(out, k.Category)
		}
	}
	if len(out) == 0 {
		return []string{c.fallback}
	}
	return out
}
