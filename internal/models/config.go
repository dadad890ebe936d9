package models

// Config represents the service configuration
type Config struct {
	// Server config
	Port int    `yaml:"port"`
	Host string `yaml:"host"`

	// Extraction providers
	Extraction ExtractionConfig `yaml:"extraction"`

	// Municipality reference dataset
	Municipios MunicipiosConfig `yaml:"municipios"`

	// ABRASF schema used for validation
	Schema SchemaConfig `yaml:"schema"`
}

// ExtractionConfig represents document-understanding provider configuration
type ExtractionConfig struct {
	DocumentAI DocumentAIConfig `yaml:"documentai"`
	Gemini     GeminiConfig     `yaml:"gemini"`
	OpenAI     OpenAIConfig     `yaml:"openai"`

	// Default provider: "documentai", "gemini" or "openai"
	DefaultProvider string `yaml:"default_provider"`
}

// DocumentAIConfig for the Google Document AI invoice processor
type DocumentAIConfig struct {
	ProjectID   string `yaml:"project_id"`
	Location    string `yaml:"location"` // e.g. "us", "eu"
	ProcessorID string `yaml:"processor_id"`
}

// GeminiConfig for the Gemini fallback provider
type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"` // Default: "gemini-1.5-flash"
}

// OpenAIConfig for OpenAI/Azure OpenAI fallback
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url,omitempty"` // For custom endpoints
	Model   string `yaml:"model"`              // Default: "gpt-4o"
}

// MunicipiosConfig points at an external IBGE dataset; empty means the
// dataset bundled in the binary.
type MunicipiosConfig struct {
	DatasetPath string `yaml:"dataset_path"`
}

// SchemaConfig locates the ABRASF XSD on disk
type SchemaConfig struct {
	Path string `yaml:"path"`
}
