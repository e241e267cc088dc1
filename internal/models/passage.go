// internal/models/passage.go
package models

// Origin identifies which retrieval modality produced a passage.
type Origin string

const (
	OriginSemantic Origin = "semantic"
	OriginKeyword  Origin = "keyword"
	OriginMetadata Origin = "metadata"
)

// RetrievedPassage is one scored candidate passage from a retrieval source.
// Score is in [0,1] after per-source normalization; scores from different
// origins are only comparable after fusion rescaling.
type RetrievedPassage struct {
	SourceID string                 `json:"sourceId"`
	Text     string                 `json:"text"`
	Score    float64                `json:"score"`
	Origin   Origin                 `json:"origin"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// DedupeKey identifies a passage by document and offset so the same chunk
// surfaced by several sources is counted once.
func (p RetrievedPassage) DedupeKey() string {
	return p.SourceID
}

// DefaultContextBudget is the maximum number of characters of passage text
// a Context may carry into generation.
const DefaultContextBudget = 4000

// Context is the ordered, length-bounded set of passages selected for
// generation. Partial marks contexts built while one or more sources were
// failing. TruncatedChars accounts for text cut to honor the budget so
// nothing is dropped silently.
type Context struct {
	Passages       []RetrievedPassage `json:"passages"`
	Partial        bool               `json:"partial"`
	TruncatedChars int                `json:"truncatedChars"`
	Budget         int                `json:"budget"`
}

// SourceIDs returns the ordered passage source identifiers.
func (c *Context) SourceIDs() []string {
	ids := make([]string, 0, len(c.Passages))
	for _, p := range c.Passages {
		ids = append(ids, p.SourceID)
	}
	return ids
}

// Text joins the passage texts for prompting.
func (c *Context) Text() string {
	if len(c.Passages) == 0 {
		return ""
	}
	out := ""
	for i, p := range c.Passages {
		if i > 0 {
			out += "\n\n"
		}
		out += p.Text
	}
	return out
}
