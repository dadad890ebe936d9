package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/nfseflow/nfse-xml-service/api"
	"github.com/nfseflow/nfse-xml-service/internal/auth"
	"github.com/nfseflow/nfse-xml-service/internal/db"
	"github.com/nfseflow/nfse-xml-service/internal/models"
	"github.com/nfseflow/nfse-xml-service/internal/municipio"
	"github.com/nfseflow/nfse-xml-service/internal/storage"
	"github.com/nfseflow/nfse-xml-service/internal/xsd"
)

func main() {
	// Local development keeps secrets in .env; absence is fine in production
	_ = godotenv.Load()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	log.Logger = logger

	// Initialize JWT
	if err := auth.Init(); err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize auth")
	}
	logger.Info().Msg("JWT authentication initialized")

	// Initialize database connection pool
	if err := db.Init(); err != nil {
		logger.Warn().Err(err).Msg("database not available, conversions will not be persisted")
	} else {
		defer db.Close()
	}

	// Initialize MinIO storage
	if err := storage.Init(); err != nil {
		logger.Warn().Err(err).Msg("MinIO storage not available, documents will not be stored")
	} else {
		logger.Info().Msg("MinIO storage initialized")
	}

	// Load configuration
	config, err := loadConfig("config.yaml")
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	// Load the IBGE municipality registry
	var registry *municipio.Registry
	if config.Municipios.DatasetPath != "" {
		registry, err = municipio.LoadFile(config.Municipios.DatasetPath, logger)
	} else {
		registry, err = municipio.LoadEmbedded(logger)
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load municipality dataset")
	}
	logger.Info().Int("municipios", registry.Len()).Msg("municipality registry loaded")
	resolver := municipio.NewResolver(registry, logger)

	// Compile the ABRASF schema
	validator, err := xsd.NewValidator(config.Schema.Path, logger)
	if err != nil {
		logger.Warn().Err(err).Str("schema", config.Schema.Path).
			Msg("schema not loaded, validation will be reported as unavailable")
		validator = nil
	} else {
		defer validator.Close()
	}

	// Create API handler
	handler := api.NewHandler(config, resolver, validator, logger)
	router := handler.SetupRoutes()

	// Add login endpoint
	router.HandleFunc("/api/login", auth.LoginHandler).Methods("POST")

	// Wrap router with JWT middleware (skips /health and /api/login)
	protectedRouter := auth.JWTMiddleware(router)

	addr := fmt.Sprintf("%s:%d", config.Host, config.Port)
	logger.Info().
		Str("addr", addr).
		Str("provider", config.Extraction.DefaultProvider).
		Bool("database", db.Pool != nil).
		Bool("storage", storage.Client != nil).
		Bool("validator", validator != nil).
		Msg("starting NFS-e XML service")

	if err := http.ListenAndServe(addr, protectedRouter); err != nil {
		logger.Fatal().Err(err).Msg("server failed")
	}
}

func loadConfig(path string) (*models.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config models.Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Override with environment variables if present
	if port := os.Getenv("PORT"); port != "" {
		fmt.Sscanf(port, "%d", &config.Port)
	}
	if host := os.Getenv("HOST"); host != "" {
		config.Host = host
	}
	if projectID := os.Getenv("DOCAI_PROJECT_ID"); projectID != "" {
		config.Extraction.DocumentAI.ProjectID = projectID
	}
	if location := os.Getenv("DOCAI_LOCATION"); location != "" {
		config.Extraction.DocumentAI.Location = location
	}
	if processorID := os.Getenv("DOCAI_PROCESSOR_ID"); processorID != "" {
		config.Extraction.DocumentAI.ProcessorID = processorID
	}
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		config.Extraction.Gemini.APIKey = apiKey
	}
	if model := os.Getenv("GEMINI_MODEL"); model != "" {
		config.Extraction.Gemini.Model = model
	}
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		config.Extraction.OpenAI.APIKey = apiKey
	}
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		config.Extraction.OpenAI.BaseURL = baseURL
	}
	if model := os.Getenv("OPENAI_MODEL"); model != "" {
		config.Extraction.OpenAI.Model = model
	}
	if provider := os.Getenv("EXTRACTION_PROVIDER"); provider != "" {
		config.Extraction.DefaultProvider = provider
	}
	if dataset := os.Getenv("MUNICIPIOS_DATASET"); dataset != "" {
		config.Municipios.DatasetPath = dataset
	}
	if schema := os.Getenv("SCHEMA_PATH"); schema != "" {
		config.Schema.Path = schema
	}

	return &config, nil
}
