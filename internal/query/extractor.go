package query

import "strings"

// Extractor recognises alias keys in text by substring containment.  It has
// no word-boundary or stemming logic, so "seat" also matches "unseated".
type Extractor struct {
	aliases *Aliases
}

// NewExtractor builds an extractor over a; nil selects DefaultAliases.
func NewExtractor(a *Aliases) *Extractor {
	if a == nil {
		a = DefaultAliases()
	}
	return &Extractor{aliases: a}
}

// Extract fills the five entity lists of an Entities value.  QueryType and
// Confidence are left zero; see Classify.
func (x *Extractor) Extract(text string) Entities {
	lower := strings.ToLower(text)
	return Entities{
		Airlines:   match(lower, x.aliases.Airlines),
		Features:   match(lower, x.aliases.Features),
		Statuses:   match(lower, x.aliases.Statuses),
		Categories: match(lower, x.aliases.Categories),
		Providers:  match(lower, x.aliases.Providers),
	}
}

// match returns each key of t with at least one form contained in text.
func match(text string, t AliasTable) []string {
	out := make([]string, 0)
	seen := make(map[string]bool)
	for _, a := range t {
		for _, form := range a.Forms {
			if strings.Contains(text, form) {
				if !seen[a.Key] {
					seen[a.Key] = true
					out = append(out, a.Key)
				}
				break
			}
		}
	}
	return out
}
