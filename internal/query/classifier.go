package query

import "strings"

type rule struct {
	applies    func(text string, airlines, features []string) bool
	queryType  QueryType
	confidence float64
}

func containsAny(text string, subs ...string) bool {
	for _, s := range subs {
		if strings.Contains(text, s) {
			return true
		}
	}
	return false
}

// rules is evaluated top to bottom; the first rule that applies decides.
// Lexical cues come before the entity-count fallbacks.
var rules = []rule{
	{
		applies: func(t string, _, _ []string) bool {
			return containsAny(t, "which airlines", "what airlines")
		},
		queryType: FeatureAirlines, confidence: 0.9,
	},
	{
		// A feature is not required here.
		applies: func(t string, a, _ []string) bool {
			return strings.Contains(t, "does") && len(a) > 0
		},
		queryType: AirlineFeatures, confidence: 0.85,
	},
	{
		applies: func(t string, _, _ []string) bool {
			return containsAny(t, "compare", "comparison")
		},
		queryType: Comparison, confidence: 0.8,
	},
	{
		applies: func(t string, _, _ []string) bool {
			return containsAny(t, "status", "pilot", "production")
		},
		queryType: StatusQuery, confidence: 0.8,
	},
	{
		applies: func(t string, _, _ []string) bool {
			return containsAny(t, "provider", "sabre", "amadeus")
		},
		queryType: ProviderQuery, confidence: 0.8,
	},
	{
		applies:   func(_ string, a, f []string) bool { return len(a) > 0 && len(f) > 0 },
		queryType: AirlineFeatures, confidence: 0.7,
	},
	{
		applies:   func(_ string, a, f []string) bool { return len(f) > 0 && len(a) == 0 },
		queryType: FeatureAirlines, confidence: 0.7,
	},
	{
		applies:   func(_ string, a, _ []string) bool { return len(a) > 1 },
		queryType: Comparison, confidence: 0.6,
	},
}

// Classify assigns an intent and a fixed confidence to lowercased text.
func Classify(text string, airlines, features []string) (QueryType, float64) {
	for _, r := range rules {
		if r.applies(text, airlines, features) {
			return r.queryType, r.confidence
		}
	}
	return General, 0.3
}

// Analyzer runs extraction followed by classification.
type Analyzer struct {
	extractor *Extractor
}

func NewAnalyzer(a *Aliases) *Analyzer { return &Analyzer{extractor: NewExtractor(a)} }

// Analyze returns the complete Entities for text.
func (an *Analyzer) Analyze(text string) Entities {
	e := an.extractor.Extract(text)
	e.QueryType, e.Confidence = Classify(strings.ToLower(text), e.Airlines, e.Features)
	return e
}
