package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfseflow/nfse-xml-service/internal/models"
	"github.com/nfseflow/nfse-xml-service/internal/municipio"
)

func testHandler(t *testing.T) *Handler {
	t.Helper()
	reg := municipio.NewRegistry([]municipio.Record{
		{Nome: "São Paulo", CodigoUF: 35, CodigoIBGE: 3550308},
	}, zerolog.Nop())
	resolver := municipio.NewResolver(reg, zerolog.Nop())

	config := &models.Config{
		Extraction: models.ExtractionConfig{DefaultProvider: "documentai"},
	}
	return NewHandler(config, resolver, nil, zerolog.Nop())
}

func TestGenerateXMLEndpoint(t *testing.T) {
	h := testHandler(t)
	router := h.SetupRoutes()

	body := `{"fields": {
		"numeroNotaFiscal": "00012345",
		"razaoSocialPrestador": "ACME Serviços LTDA",
		"municipioPrestador": "São Paulo",
		"ufPrestador": "SP",
		"dataEmissao": "15/03/2024 às 10:30",
		"valorServicos": "1.000,00",
		"valorIss": "50,00",
		"impostoRenda": "10,00",
		"aliquota": "5,00"
	}}`

	req := httptest.NewRequest("POST", "/api/generate-xml", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.ProcessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Contains(t, resp.XML, "<ValorLiquidoNfse>940.00</ValorLiquidoNfse>")
	assert.Contains(t, resp.XML, "<Competencia>2024-03-01</Competencia>")

	// No schema is loaded in this handler, so validation reports itself
	// unavailable instead of failing the conversion.
	assert.False(t, resp.Valid)
	assert.Contains(t, resp.Problems, "schema validation unavailable")
}

func TestGenerateXMLEndpointRejectsEmptyFields(t *testing.T) {
	h := testHandler(t)
	router := h.SetupRoutes()

	req := httptest.NewRequest("POST", "/api/generate-xml", strings.NewReader(`{"fields": {}}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateXMLEndpointFatalAliquota(t *testing.T) {
	h := testHandler(t)
	router := h.SetupRoutes()

	body := `{"fields": {"numeroNotaFiscal": "1", "aliquota": "cinco"}}`
	req := httptest.NewRequest("POST", "/api/generate-xml", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.ProcessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "aliquota")
	assert.Empty(t, resp.XML)
}

func TestValidateXMLEndpointWithoutSchema(t *testing.T) {
	h := testHandler(t)
	router := h.SetupRoutes()

	req := httptest.NewRequest("POST", "/api/validate-xml", strings.NewReader("<Nfse></Nfse>"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.ValidateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Valid)
	assert.Contains(t, resp.Problems, "schema validation unavailable")
}

func TestHealthEndpoint(t *testing.T) {
	h := testHandler(t)
	router := h.SetupRoutes()

	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp.Status)
	assert.False(t, resp.Validator.Available)
	assert.Equal(t, "documentai", resp.Extraction["defaultProvider"])
}
