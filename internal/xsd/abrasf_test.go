package xsd

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfseflow/nfse-xml-service/internal/abrasf"
	"github.com/nfseflow/nfse-xml-service/internal/municipio"
)

// A generated document with a well-formed field dictionary passes the
// bundled ABRASF schema with zero problems.
func TestGeneratedDocumentIsSchemaValid(t *testing.T) {
	v, err := NewValidator("../../schemas/nfse-abrasf-v1.xsd", zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(v.Close)

	reg := municipio.NewRegistry([]municipio.Record{
		{Nome: "São Paulo", CodigoUF: 35, CodigoIBGE: 3550308},
		{Nome: "Campinas", CodigoUF: 35, CodigoIBGE: 3509502},
	}, zerolog.Nop())
	g := abrasf.NewGenerator(municipio.NewResolver(reg, zerolog.Nop()), zerolog.Nop())

	doc, err := g.Generate(map[string]string{
		"numeroNotaFiscal":     "00012345",
		"codigoVerificacao":    "ABC-123",
		"razaoSocialPrestador": "ACME Serviços LTDA",
		"cpfCnpjPrestador":     "12.345.678/0001-95",
		"municipioPrestador":   "São Paulo",
		"ufPrestador":          "SP",
		"municipioTomador":     "Campinas",
		"ufTomador":            "SP",
		"cpfCnpjTomador":       "123.456.789-01",
		"razaoSocialTomador":   "Cliente Exemplo SA",
		"dataEmissao":          "15/03/2024 às 10:30",
		"valorServicos":        "1.000,00",
		"valorIss":             "50,00",
		"impostoRenda":         "10,00",
		"aliquota":             "5,00",
		"itemListaServico":     "16.02-Outros serviços de informática",
		"codigoCnae":           "6204000",
		"discriminacao":        "Serviços de desenvolvimento de software",
		"exigibilidadeIss":     "1",
		"issRetido":            "2",
	})
	require.NoError(t, err)

	ok, problems := v.Validate([]byte(doc))
	assert.True(t, ok, "problems: %v", problems)
	assert.Empty(t, problems)
}

// Missing optional data stays schema-valid as present-but-empty elements.
func TestGeneratedDocumentWithGapsIsSchemaValid(t *testing.T) {
	v, err := NewValidator("../../schemas/nfse-abrasf-v1.xsd", zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(v.Close)

	reg := municipio.NewRegistry(nil, zerolog.Nop())
	g := abrasf.NewGenerator(municipio.NewResolver(reg, zerolog.Nop()), zerolog.Nop())

	doc, err := g.Generate(map[string]string{
		"numeroNotaFiscal": "1",
		"valorServicos":    "100,00",
	})
	require.NoError(t, err)

	ok, problems := v.Validate([]byte(doc))
	assert.True(t, ok, "problems: %v", problems)
}
