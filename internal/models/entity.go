package models

// Entity is one field candidate returned by the document-understanding
// service: an entity type from the processor's vocabulary, the raw text of
// the mention, and optionally a canonicalized value (dates, mostly).
type Entity struct {
	Type            string           `json:"type"`
	MentionText     string           `json:"mentionText"`
	NormalizedValue *NormalizedValue `json:"normalizedValue,omitempty"`
}

// NormalizedValue carries the processor's canonical rendering of a mention.
type NormalizedValue struct {
	Text string `json:"text"`
}

// ExtractionResult is the JSON document returned by every extraction
// provider: the full text plus the recognized entities.
type ExtractionResult struct {
	Text     string   `json:"text"`
	Entities []Entity `json:"entities"`
}
