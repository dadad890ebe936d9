package api

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/nfseflow/nfse-xml-service/internal/abrasf"
	"github.com/nfseflow/nfse-xml-service/internal/auth"
	"github.com/nfseflow/nfse-xml-service/internal/db"
	"github.com/nfseflow/nfse-xml-service/internal/extract"
	"github.com/nfseflow/nfse-xml-service/internal/mapper"
	"github.com/nfseflow/nfse-xml-service/internal/models"
	"github.com/nfseflow/nfse-xml-service/internal/municipio"
	"github.com/nfseflow/nfse-xml-service/internal/storage"
	"github.com/nfseflow/nfse-xml-service/internal/xsd"
)

const (
	MaxUploadSize = 20 * 1024 * 1024 // 20MB, batch ZIPs included
	Version       = "1.3.0"
)

// Handler handles HTTP requests for NFS-e conversion
type Handler struct {
	config    *models.Config
	resolver  *municipio.Resolver
	generator *abrasf.Generator

	// validator is nil when the schema could not be loaded; conversions
	// still run, validation is just reported as unavailable
	validator *xsd.Validator

	log zerolog.Logger
}

// NewHandler creates a new API handler
func NewHandler(config *models.Config, resolver *municipio.Resolver, validator *xsd.Validator, logger zerolog.Logger) *Handler {
	return &Handler{
		config:    config,
		resolver:  resolver,
		generator: abrasf.NewGenerator(resolver, logger),
		validator: validator,
		log:       logger,
	}
}

// SetupRoutes configures the HTTP routes
func (h *Handler) SetupRoutes() *mux.Router {
	router := mux.NewRouter()

	// Conversion endpoints
	router.HandleFunc("/api/process-pdf", h.ProcessPDF).Methods("POST")
	router.HandleFunc("/api/process-batch", h.ProcessBatch).Methods("POST")
	router.HandleFunc("/api/generate-xml", h.GenerateXML).Methods("POST")
	router.HandleFunc("/api/validate-xml", h.ValidateXML).Methods("POST")

	// Persisted conversions
	router.HandleFunc("/api/conversions", h.GetConversions).Methods("GET")
	router.HandleFunc("/api/conversions/{id}", h.GetConversion).Methods("GET")
	router.HandleFunc("/api/conversions/{id}", h.DeleteConversion).Methods("DELETE")

	// Health check
	router.HandleFunc("/health", h.Health).Methods("GET")

	return router
}

// HealthResponse represents the health check response structure
type HealthResponse struct {
	Status     string            `json:"status"`
	Version    string            `json:"version"`
	Timestamp  string            `json:"timestamp"`
	Uptime     string            `json:"uptime"`
	Memory     MemoryStats       `json:"memory"`
	Database   ServiceStatus     `json:"database"`
	Storage    ServiceStatus     `json:"storage"`
	Validator  ServiceStatus     `json:"validator"`
	Extraction map[string]string `json:"extraction"`
}

// MemoryStats represents memory usage statistics
type MemoryStats struct {
	Allocated string `json:"allocated"`
	Total     string `json:"total"`
	System    string `json:"system"`
}

// ServiceStatus represents the status of a service dependency
type ServiceStatus struct {
	Available bool   `json:"available"`
	Error     string `json:"error,omitempty"`
}

var startTime = time.Now()

// Health endpoint
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	databaseStatus := ServiceStatus{Available: db.Pool != nil}
	if !databaseStatus.Available {
		databaseStatus.Error = "database pool not initialized"
	}
	storageStatus := ServiceStatus{Available: storage.Client != nil}
	if !storageStatus.Available {
		storageStatus.Error = "storage client not initialized"
	}
	validatorStatus := ServiceStatus{Available: h.validator != nil}
	if !validatorStatus.Available {
		validatorStatus.Error = "schema not loaded"
	}

	response := HealthResponse{
		Status:    "healthy",
		Version:   Version,
		Timestamp: time.Now().Format(time.RFC3339),
		Uptime:    time.Since(startTime).String(),
		Memory: MemoryStats{
			Allocated: fmt.Sprintf("%.2f MB", float64(m.Alloc)/1024/1024),
			Total:     fmt.Sprintf("%.2f MB", float64(m.TotalAlloc)/1024/1024),
			System:    fmt.Sprintf("%.2f MB", float64(m.Sys)/1024/1024),
		},
		Database:  databaseStatus,
		Storage:   storageStatus,
		Validator: validatorStatus,
		Extraction: map[string]string{
			"defaultProvider": h.config.Extraction.DefaultProvider,
		},
	}

	// The validator is the only local dependency a conversion truly needs
	if !validatorStatus.Available {
		response.Status = "degraded"
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// ProcessPDF converts a single invoice PDF into an ABRASF document
func (h *Handler) ProcessPDF(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx := r.Context()

	claims, err := auth.GetClaimsFromContext(ctx)
	if err != nil {
		h.sendError(w, http.StatusUnauthorized, "unauthorized: "+err.Error())
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		h.sendError(w, http.StatusBadRequest, "file too large or invalid form data")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.sendError(w, http.StatusBadRequest, "no file provided (use 'file' field)")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.sendError(w, http.StatusInternalServerError, "failed to read file")
		return
	}

	providerName := r.FormValue("provider")
	if providerName == "" {
		providerName = h.config.Extraction.DefaultProvider
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = "application/pdf"
	}

	response := h.convert(ctx, claims, header.Filename, data, mimeType, providerName)

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// ProcessBatch converts every PDF inside an uploaded ZIP archive. Failures
// are reported per file; one bad invoice does not abort the batch.
func (h *Handler) ProcessBatch(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx := r.Context()

	claims, err := auth.GetClaimsFromContext(ctx)
	if err != nil {
		h.sendError(w, http.StatusUnauthorized, "unauthorized: "+err.Error())
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		h.sendError(w, http.StatusBadRequest, "file too large or invalid form data")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.sendError(w, http.StatusBadRequest, "no file provided (use 'file' field)")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.sendError(w, http.StatusInternalServerError, "failed to read file")
		return
	}

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		h.sendError(w, http.StatusBadRequest, "file is not a valid ZIP archive")
		return
	}

	providerName := r.FormValue("provider")
	if providerName == "" {
		providerName = h.config.Extraction.DefaultProvider
	}

	var results []models.BatchItemResult
	for _, entry := range reader.File {
		if entry.FileInfo().IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name), ".pdf") {
			continue
		}

		rc, err := entry.Open()
		if err != nil {
			results = append(results, models.BatchItemResult{
				Filename: entry.Name,
				Result:   &models.ProcessResponse{Success: false, Error: "failed to open archive entry"},
			})
			continue
		}
		pdfData, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			results = append(results, models.BatchItemResult{
				Filename: entry.Name,
				Result:   &models.ProcessResponse{Success: false, Error: "failed to read archive entry"},
			})
			continue
		}

		results = append(results, models.BatchItemResult{
			Filename: entry.Name,
			Result:   h.convert(ctx, claims, entry.Name, pdfData, "application/pdf", providerName),
		})
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"results": results,
		"count":   len(results),
	})
}

// GenerateXML assembles a document from already-extracted fields, for the
// review flow where an operator corrects values before generation.
func (h *Handler) GenerateXML(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req struct {
		Fields map[string]string `json:"fields"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Fields) == 0 {
		h.sendError(w, http.StatusBadRequest, "fields are required")
		return
	}

	start := time.Now()
	xmlDoc, err := h.generator.Generate(req.Fields)
	if err != nil {
		json.NewEncoder(w).Encode(models.ProcessResponse{
			Success:       false,
			Error:         err.Error(),
			TotalDuration: time.Since(start).Seconds(),
		})
		return
	}

	valid, problems := h.validate([]byte(xmlDoc))

	json.NewEncoder(w).Encode(models.ProcessResponse{
		Success:       true,
		Fields:        req.Fields,
		XML:           xmlDoc,
		Valid:         valid,
		Problems:      problems,
		TotalDuration: time.Since(start).Seconds(),
	})
}

// ValidateXML checks a caller-supplied document against the ABRASF schema
func (h *Handler) ValidateXML(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	data, err := io.ReadAll(r.Body)
	if err != nil || len(data) == 0 {
		h.sendError(w, http.StatusBadRequest, "request body must contain an XML document")
		return
	}

	valid, problems := h.validate(data)
	json.NewEncoder(w).Encode(models.ValidateResponse{Valid: valid, Problems: problems})
}

// GetConversions lists persisted conversions, most recent first
func (h *Handler) GetConversions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx := r.Context()

	if db.Pool == nil {
		h.sendError(w, http.StatusServiceUnavailable, "database not available")
		return
	}

	conversions, err := db.GetConversions(ctx, 100)
	if err != nil {
		h.sendError(w, http.StatusInternalServerError, fmt.Sprintf("failed to get conversions: %v", err))
		return
	}

	// Swap stored object paths for presigned download URLs
	for i := range conversions {
		if storage.Client == nil {
			break
		}
		if conversions[i].PdfURL != "" {
			if url, err := storage.GetPresignedURL(ctx, conversions[i].PdfURL); err == nil {
				conversions[i].PdfURL = url
			}
		}
		if conversions[i].XMLURL != "" {
			if url, err := storage.GetPresignedURL(ctx, conversions[i].XMLURL); err == nil {
				conversions[i].XMLURL = url
			}
		}
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":     true,
		"conversions": conversions,
		"count":       len(conversions),
	})
}

// GetConversion returns a single conversion with its stored XML
func (h *Handler) GetConversion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx := r.Context()

	if db.Pool == nil {
		h.sendError(w, http.StatusServiceUnavailable, "database not available")
		return
	}

	conversionID := mux.Vars(r)["id"]
	conversion, err := db.GetConversionByID(ctx, conversionID)
	if err != nil {
		h.sendError(w, http.StatusNotFound, fmt.Sprintf("conversion not found: %v", err))
		return
	}

	if storage.Client != nil && conversion.PdfURL != "" {
		if url, err := storage.GetPresignedURL(ctx, conversion.PdfURL); err == nil {
			conversion.PdfURL = url
		}
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":    true,
		"conversion": conversion,
	})
}

// DeleteConversion removes a conversion and its stored objects
func (h *Handler) DeleteConversion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx := r.Context()

	if db.Pool == nil {
		h.sendError(w, http.StatusServiceUnavailable, "database not available")
		return
	}

	conversionID := mux.Vars(r)["id"]

	if storage.Client != nil {
		if conversion, err := db.GetConversionByID(ctx, conversionID); err == nil {
			// Stored objects go best-effort; the DB row is the source of truth
			if conversion.PdfURL != "" {
				_ = storage.DeleteObject(ctx, conversion.PdfURL)
			}
			if conversion.XMLURL != "" {
				_ = storage.DeleteObject(ctx, conversion.XMLURL)
			}
		}
	}

	if err := db.DeleteConversion(ctx, conversionID); err != nil {
		h.sendError(w, http.StatusInternalServerError, "failed to delete conversion")
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"message": "conversion deleted",
	})
}

// convert runs the full pipeline for one document: extraction, field
// mapping, XML assembly, schema validation and persistence.
func (h *Handler) convert(ctx context.Context, claims *auth.Claims, filename string, data []byte, mimeType, providerName string) *models.ProcessResponse {
	start := time.Now()

	provider, err := h.createProvider(providerName)
	if err != nil {
		return &models.ProcessResponse{Success: false, Error: err.Error(), TotalDuration: time.Since(start).Seconds()}
	}

	extractStart := time.Now()
	result, err := provider.Extract(ctx, data, mimeType)
	extractionDuration := time.Since(extractStart).Seconds()
	if err != nil {
		h.log.Error().Err(err).Str("arquivo", filename).Str("provider", provider.Name()).Msg("extraction failed")
		return &models.ProcessResponse{
			Success:            false,
			Error:              err.Error(),
			ExtractionDuration: extractionDuration,
			TotalDuration:      time.Since(start).Seconds(),
		}
	}

	fields := mapper.MapFields(result.Entities)

	xmlDoc, err := h.generator.Generate(fields)
	if err != nil {
		return &models.ProcessResponse{
			Success:            false,
			Fields:             fields,
			Error:              err.Error(),
			ExtractionDuration: extractionDuration,
			TotalDuration:      time.Since(start).Seconds(),
		}
	}

	valid, problems := h.validate([]byte(xmlDoc))

	h.persist(ctx, claims, filename, fields, data, xmlDoc, valid, problems)

	return &models.ProcessResponse{
		Success:            true,
		Fields:             fields,
		XML:                xmlDoc,
		Valid:              valid,
		Problems:           problems,
		ExtractionDuration: extractionDuration,
		TotalDuration:      time.Since(start).Seconds(),
	}
}

// validate runs schema validation when a validator is loaded
func (h *Handler) validate(xmlDoc []byte) (bool, []string) {
	if h.validator == nil {
		return false, []string{"schema validation unavailable"}
	}
	return h.validator.Validate(xmlDoc)
}

// persist saves the conversion when database and storage are configured.
// Both are optional; a missing backend only costs durability.
func (h *Handler) persist(ctx context.Context, claims *auth.Claims, filename string, fields map[string]string, pdfData []byte, xmlDoc string, valid bool, problems []string) {
	numero := abrasf.InvoiceNumber(fields["numeroNotaFiscal"])

	var pdfURL, xmlURL string
	if storage.Client != nil {
		objectBase := fmt.Sprintf("%s_%s", time.Now().Format("20060102_150405"), uuid.New().String()[:8])

		var err error
		pdfURL, err = storage.UploadPDF(ctx, objectBase+".pdf", bytes.NewReader(pdfData), int64(len(pdfData)))
		if err != nil {
			h.log.Warn().Err(err).Str("arquivo", filename).Msg("failed to upload PDF")
		}
		xmlURL, err = storage.UploadXML(ctx, objectBase+".xml", []byte(xmlDoc))
		if err != nil {
			h.log.Warn().Err(err).Str("arquivo", filename).Msg("failed to upload XML")
		}
	}

	if db.Pool == nil {
		return
	}

	usuarioID, err := uuid.Parse(claims.UserID)
	if err != nil {
		usuarioID = uuid.Nil
	}

	conversion := &db.Conversion{
		ArquivoNome:     filename,
		NumeroNota:      numero,
		Prestador:       strings.TrimSpace(fields["razaoSocialPrestador"]),
		CodigoMunicipio: h.resolver.Resolve(fields["municipioPrestador"], fields["ufPrestador"]),
		XML:             xmlDoc,
		Valido:          valid,
		Problemas:       problems,
		PdfURL:          pdfURL,
		XMLURL:          xmlURL,
		UsuarioID:       usuarioID,
	}
	if err := db.SaveConversion(ctx, conversion); err != nil {
		h.log.Warn().Err(err).Str("arquivo", filename).Msg("failed to save conversion")
	}
}

// createProvider creates the requested extraction provider
func (h *Handler) createProvider(providerName string) (extract.Provider, error) {
	switch providerName {
	case "documentai":
		cfg := h.config.Extraction.DocumentAI
		return extract.NewDocumentAIProvider(cfg.ProjectID, cfg.Location, cfg.ProcessorID), nil

	case "gemini":
		cfg := h.config.Extraction.Gemini
		return extract.NewGeminiProvider(cfg.APIKey, cfg.Model), nil

	case "openai":
		cfg := h.config.Extraction.OpenAI
		return extract.NewOpenAIProvider(cfg.APIKey, cfg.BaseURL, cfg.Model), nil

	default:
		return nil, fmt.Errorf("unsupported extraction provider: %s", providerName)
	}
}

// sendError sends an error response
func (h *Handler) sendError(w http.ResponseWriter, statusCode int, message string) {
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}
