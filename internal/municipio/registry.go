package municipio

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/nfseflow/nfse-xml-service/internal/text"
)

//go:embed municipios.json
var municipiosJSON []byte

// Record is one entry of the IBGE reference dataset.
type Record struct {
	Nome       string `json:"nome"`
	CodigoUF   int    `json:"codigo_uf"`
	CodigoIBGE int64  `json:"codigo_ibge"`
}

// Registry maps normalized "NAME-UF" keys to official IBGE municipality
// codes. It is built once at startup and read-only afterwards, so it can be
// shared across concurrent conversions without locking.
type Registry struct {
	codes map[string]string
	keys  []string // sorted, for deterministic scans
}

// NewRegistry builds the lookup table from the reference records. Records
// with an unknown federative-unit code are skipped with a warning; on key
// collision the last record wins (collisions indicate dataset duplication,
// not valid data).
func NewRegistry(records []Record, logger zerolog.Logger) *Registry {
	codes := make(map[string]string, len(records))
	for _, rec := range records {
		uf, ok := ufByCode[rec.CodigoUF]
		if !ok {
			logger.Warn().
				Str("municipio", rec.Nome).
				Int("codigo_uf", rec.CodigoUF).
				Msg("unknown federative-unit code in reference dataset, skipping")
			continue
		}
		key := text.Normalize(rec.Nome) + "-" + uf
		codes[key] = strconv.FormatInt(rec.CodigoIBGE, 10)
	}

	keys := make([]string, 0, len(codes))
	for k := range codes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return &Registry{codes: codes, keys: keys}
}

// LoadEmbedded builds the registry from the dataset bundled with the binary.
func LoadEmbedded(logger zerolog.Logger) (*Registry, error) {
	return loadBytes(municipiosJSON, logger)
}

// LoadFile builds the registry from an external reference file, for
// deployments that track IBGE dataset updates independently of releases.
func LoadFile(path string, logger zerolog.Logger) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read municipality dataset: %w", err)
	}
	return loadBytes(data, logger)
}

func loadBytes(data []byte, logger zerolog.Logger) (*Registry, error) {
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse municipality dataset: %w", err)
	}
	return NewRegistry(records, logger), nil
}

// Code returns the IBGE code for an exact normalized key.
func (r *Registry) Code(key string) (string, bool) {
	code, ok := r.codes[key]
	return code, ok
}

// Len reports how many municipality keys the registry holds.
func (r *Registry) Len() int {
	return len(r.keys)
}
