package municipio

import (
	"regexp"
	"strings"

	"github.com/agext/levenshtein"
	"github.com/rs/zerolog"

	"github.com/nfseflow/nfse-xml-service/internal/text"
)

// similarityThreshold is the minimum string similarity accepted by the fuzzy
// step of the resolution cascade.
const similarityThreshold = 0.85

// nameUFRegex captures a "MUNICIPALITY - UF" pair from cleaned free text.
var nameUFRegex = regexp.MustCompile(`([A-Z\s]+)[-\s]([A-Z]{2})\b`)

// Resolver turns raw, possibly malformed municipality names into official
// IBGE codes. Tax codes must be numeric and schema-valid, so a miss returns
// an empty string rather than a guess; every approximation step is logged so
// operators can audit automatic corrections.
type Resolver struct {
	reg *Registry
	log zerolog.Logger
}

// NewResolver wires a resolver to a read-only registry.
func NewResolver(reg *Registry, logger zerolog.Logger) *Resolver {
	return &Resolver{reg: reg, log: logger}
}

// Resolve returns the IBGE code for a municipality name and UF abbreviation,
// or "" when no trustworthy match exists. The cascade is: exact key match,
// partial match on the name and UF components, substring match, then a
// similarity match over the composite NAME-UF key.
func (r *Resolver) Resolve(nome, uf string) string {
	nomeNorm := text.Normalize(nome)
	ufNorm := text.Normalize(uf)

	if nomeNorm == "" || ufNorm == "" {
		r.log.Warn().
			Str("municipio", nome).
			Str("uf", uf).
			Msg("cannot resolve municipality without both name and UF")
		return ""
	}

	key := nomeNorm + "-" + ufNorm

	// Direct lookup.
	if code, ok := r.reg.Code(key); ok {
		return code
	}

	// Component match. Redundant with the direct lookup for keys produced by
	// the current normalization, but catches keys built by older dataset
	// imports whose cleanup differed around punctuation.
	for _, k := range r.reg.keys {
		kName, kUF, ok := splitKey(k)
		if ok && kName == nomeNorm && kUF == ufNorm {
			code, _ := r.reg.Code(k)
			return code
		}
	}

	// Substring match, lower confidence.
	for _, k := range r.reg.keys {
		if strings.Contains(k, nomeNorm) && strings.HasSuffix(k, "-"+ufNorm) {
			code, _ := r.reg.Code(k)
			r.log.Warn().
				Str("key", k).
				Str("consulta", key).
				Msg("municipality resolved by substring match")
			return code
		}
	}

	// Similarity match against the full composite key.
	bestKey, bestScore := "", 0.0
	for _, k := range r.reg.keys {
		if score := levenshtein.Similarity(key, k, nil); score > bestScore {
			bestKey, bestScore = k, score
		}
	}
	if bestScore >= similarityThreshold {
		code, _ := r.reg.Code(bestKey)
		r.log.Warn().
			Str("key", bestKey).
			Str("consulta", key).
			Float64("score", bestScore).
			Msg("municipality resolved by fuzzy match")
		return code
	}

	r.log.Error().
		Str("municipio", nome).
		Str("uf", uf).
		Str("consulta", key).
		Msg("municipality not found")
	return ""
}

// ResolveText extracts a "MUNICIPALITY - UF" pair from raw OCR text and
// resolves it. Used when a single field carries both name and state.
func (r *Resolver) ResolveText(raw string) string {
	nome, uf := SplitNameUF(raw)
	if nome == "" || uf == "" {
		r.log.Warn().
			Str("texto", raw).
			Msg("could not extract municipality and UF from text")
		return ""
	}
	return r.Resolve(nome, uf)
}

// SplitNameUF pulls a municipality name and UF abbreviation out of free text
// such as "Campinas - SP" or "BELO HORIZONTE MG". Returns empty strings when
// no pair is recognizable.
func SplitNameUF(raw string) (string, string) {
	cleaned := cleanForSplit(raw)
	m := nameUFRegex.FindStringSubmatch(cleaned)
	if m == nil {
		return "", ""
	}
	return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
}

// cleanForSplit normalizes like text.Normalize but keeps hyphens, which the
// NAME-UF extraction pattern relies on.
var (
	keepHyphenRegex = regexp.MustCompile(`[^A-Z0-9\s-]`)
	spaceRunRegex   = regexp.MustCompile(`\s+`)
)

func cleanForSplit(raw string) string {
	cleaned := strings.ToUpper(text.StripAccents(raw))
	cleaned = keepHyphenRegex.ReplaceAllString(cleaned, "")
	cleaned = spaceRunRegex.ReplaceAllString(cleaned, " ")
	cleaned = strings.ReplaceAll(cleaned, " - ", "-")
	return strings.TrimSpace(cleaned)
}

func splitKey(key string) (name, uf string, ok bool) {
	i := strings.LastIndex(key, "-")
	if i <= 0 || i == len(key)-1 {
		return "", "", false
	}
	return key[:i], key[i+1:], true
}
