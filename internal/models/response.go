package models

// ProcessResponse represents the output of a PDF conversion
type ProcessResponse struct {
	Success  bool              `json:"success"`
	Fields   map[string]string `json:"fields,omitempty"`
	XML      string            `json:"xml,omitempty"`
	Valid    bool              `json:"valid"`
	Problems []string          `json:"problems,omitempty"`
	Error    string            `json:"error,omitempty"`

	// Processing metadata
	ExtractionDuration float64 `json:"extractionDuration,omitempty"` // Provider time in seconds
	TotalDuration      float64 `json:"totalDuration"`                // Total processing time
}

// BatchItemResult represents one entry of a batch conversion
type BatchItemResult struct {
	Filename string           `json:"filename"`
	Result   *ProcessResponse `json:"result"`
}

// ValidateResponse represents the output of a standalone validation
type ValidateResponse struct {
	Valid    bool     `json:"valid"`
	Problems []string `json:"problems,omitempty"`
}
