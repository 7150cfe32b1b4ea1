package query

import (
	"strings"
)

const basePrompt = `You are an assistant specialised in airline NDC (New Distribution Capability) features and how airlines implement them.

You help users with:
- Airlines and their NDC capabilities
- Features that can be distributed through NDC
- Implementation status of each feature per airline
- NDC technology providers and systems

The data below was filtered for the current question. Implementation records carry the airline and feature names as well as their IDs.

RESPONSE STYLE:
- Answer the question directly and briefly
- Lead with the answer, add supporting detail only when needed
- Keep simple answers to one or two sentences
- Give longer explanations only for comparisons or complex questions
- Skip preambles, summaries and offers of further help

When answering:
1. Refer to airlines by name, not by ID
2. Stay accurate and specific to the data provided
3. Say clearly when the data has nothing on an airline or feature
4. When asked what is "not supported", focus on implementations with value "No"

Data for this question:`

const promptSuffix = "\n\nPlease answer the user's question based on this data."

// SystemPrompt renders the model instructions followed by the context
// sections.  An IMPLEMENTATIONS header opens every run of consecutive
// implementation items; each marker item becomes an AIRLINES or FEATURES
// section.
func SystemPrompt(items []ContextItem) string {
	var sb strings.Builder
	sb.WriteString(basePrompt)
	writeContext(&sb, items)
	sb.WriteString(promptSuffix)
	return sb.String()
}

// SerializeContext renders only the context sections.
func SerializeContext(items []ContextItem) string {
	var sb strings.Builder
	writeContext(&sb, items)
	return sb.String()
}

func writeContext(sb *strings.Builder, items []ContextItem) {
	for i, it := range items {
		switch it.Kind {
		case KindAirlines:
			sb.WriteString("\n\nAIRLINES:\n")
			for _, a := range it.Airlines {
				sb.WriteString("- " + a.Name + " (" + a.Codes + ") - Provider: " + a.Provider + ", Status: " + string(a.Status) + "\n")
			}
		case KindFeatures:
			sb.WriteString("\n\nFEATURES:\n")
			for _, f := range it.Features {
				desc := noDescription
				if f.Description != nil && *f.Description != "" {
					desc = *f.Description
				}
				sb.WriteString("- " + f.Name + " (" + string(f.Category) + "): " + desc + "\n")
			}
		case KindImplementation:
			if it.Implementation == nil {
				continue
			}
			if i == 0 || items[i-1].Kind != KindImplementation {
				sb.WriteString("\n\nIMPLEMENTATIONS:\n")
			}
			im := it.Implementation
			sb.WriteString("- " + im.AirlineName + " (" + im.AirlineCodes + ") - " + im.FeatureName + ": " + im.Value)
			if im.Notes != nil && *im.Notes != "" {
				sb.WriteString(" (" + *im.Notes + ")")
			}
			sb.WriteString("\n")
		}
	}
}
