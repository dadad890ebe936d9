package abrasf

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfseflow/nfse-xml-service/internal/municipio"
)

func testResolver(t *testing.T) *municipio.Resolver {
	t.Helper()
	reg := municipio.NewRegistry([]municipio.Record{
		{Nome: "São Paulo", CodigoUF: 35, CodigoIBGE: 3550308},
		{Nome: "Campinas", CodigoUF: 35, CodigoIBGE: 3509502},
		{Nome: "Belo Horizonte", CodigoUF: 31, CodigoIBGE: 3106200},
	}, zerolog.Nop())
	return municipio.NewResolver(reg, zerolog.Nop())
}

func baseFields() map[string]string {
	return map[string]string{
		"numeroNotaFiscal":     "00012345",
		"razaoSocialPrestador": "ACME Serviços LTDA",
		"municipioPrestador":   "São Paulo",
		"ufPrestador":          "SP",
		"dataEmissao":          "15/03/2024 às 10:30",
		"valorServicos":        "1.000,00",
		"valorIss":             "50,00",
		"impostoRenda":         "10,00",
		"aliquota":             "5,00",
	}
}

func TestGenerateNetValueDerivation(t *testing.T) {
	g := NewGenerator(testResolver(t), zerolog.Nop())

	out, err := g.Generate(baseFields())
	require.NoError(t, err)

	assert.Contains(t, out, "<ValorServicos>1000.00</ValorServicos>")
	assert.Contains(t, out, "<ValorIss>50.00</ValorIss>")
	assert.Contains(t, out, "<ValorIr>10.00</ValorIr>")
	assert.Contains(t, out, "<ValorLiquidoNfse>940.00</ValorLiquidoNfse>")
}

func TestGenerateDeclaredNetValueWins(t *testing.T) {
	g := NewGenerator(testResolver(t), zerolog.Nop())
	fields := baseFields()
	fields["valorLiquido"] = "935,50"

	out, err := g.Generate(fields)
	require.NoError(t, err)

	assert.Contains(t, out, "<ValorLiquidoNfse>935.50</ValorLiquidoNfse>")
}

func TestGenerateCompetenciaFromEmissionDate(t *testing.T) {
	g := NewGenerator(testResolver(t), zerolog.Nop())

	out, err := g.Generate(baseFields())
	require.NoError(t, err)

	assert.Contains(t, out, "<DataEmissao>2024-03-15T10:30:00</DataEmissao>")
	assert.Contains(t, out, "<Competencia>2024-03-01</Competencia>")
}

func TestGenerateExplicitCompetencia(t *testing.T) {
	g := NewGenerator(testResolver(t), zerolog.Nop())
	fields := baseFields()
	fields["competencia"] = "01/02/2024"

	out, err := g.Generate(fields)
	require.NoError(t, err)

	assert.Contains(t, out, "<Competencia>2024-02-01</Competencia>")
}

func TestGenerateEmptyOptionalElementsPresent(t *testing.T) {
	g := NewGenerator(testResolver(t), zerolog.Nop())

	out, err := g.Generate(baseFields())
	require.NoError(t, err)

	// Optional data absent from the extraction still renders as an empty
	// element rather than disappearing from the document.
	assert.Contains(t, out, "<Complemento></Complemento>")
	assert.Contains(t, out, "<NomeFantasia></NomeFantasia>")
	assert.Contains(t, out, "<ValorCofins>0.00</ValorCofins>")
}

func TestGenerateIssRetidoCollapse(t *testing.T) {
	g := NewGenerator(testResolver(t), zerolog.Nop())

	cases := map[string]string{
		"1":    "1",
		"Sim":  "1",
		"true": "1",
		"2":    "2",
		"não":  "2",
		"":     "2",
	}
	for raw, want := range cases {
		fields := baseFields()
		fields["issRetido"] = raw

		out, err := g.Generate(fields)
		require.NoError(t, err)
		assert.Contains(t, out, "<IssRetido>"+want+"</IssRetido>", "input %q", raw)
	}
}

func TestGenerateAliquota(t *testing.T) {
	g := NewGenerator(testResolver(t), zerolog.Nop())

	out, err := g.Generate(baseFields())
	require.NoError(t, err)
	assert.Contains(t, out, "<Aliquota>5</Aliquota>")

	fields := baseFields()
	delete(fields, "aliquota")
	out, err = g.Generate(fields)
	require.NoError(t, err)
	assert.Contains(t, out, "<Aliquota>0</Aliquota>")
}

func TestGenerateAliquotaUnparseableIsFatal(t *testing.T) {
	g := NewGenerator(testResolver(t), zerolog.Nop())
	fields := baseFields()
	fields["aliquota"] = "cinco"

	out, err := g.Generate(fields)
	require.Error(t, err)
	assert.Empty(t, out)
	assert.Contains(t, err.Error(), "aliquota")
	assert.Contains(t, err.Error(), "00012345")
}

func TestGenerateMunicipalityResolution(t *testing.T) {
	g := NewGenerator(testResolver(t), zerolog.Nop())
	fields := baseFields()
	fields["municipioTomador"] = "Campinas - SP"

	out, err := g.Generate(fields)
	require.NoError(t, err)

	assert.Contains(t, out, "<CodigoMunicipio>3550308</CodigoMunicipio>")
	assert.Contains(t, out, "<MunicipioIncidencia>3550308</MunicipioIncidencia>")
	assert.Contains(t, out, "<CodigoMunicipio>3509502</CodigoMunicipio>")
}

func TestGenerateServiceLocationOverridesIncidence(t *testing.T) {
	g := NewGenerator(testResolver(t), zerolog.Nop())
	fields := baseFields()
	fields["municipioPrestacaoServico"] = "Belo Horizonte - MG"

	out, err := g.Generate(fields)
	require.NoError(t, err)

	assert.Contains(t, out, "<MunicipioIncidencia>3106200</MunicipioIncidencia>")
}

func TestGenerateDocumentClassification(t *testing.T) {
	g := NewGenerator(testResolver(t), zerolog.Nop())
	fields := baseFields()
	fields["cpfCnpjPrestador"] = "12.345.678/0001-95"
	fields["cpfCnpjTomador"] = "123.456.789-01"

	out, err := g.Generate(fields)
	require.NoError(t, err)

	assert.Contains(t, out, "<Cnpj>12345678000195</Cnpj>")
	assert.Contains(t, out, "<Cpf>12345678901</Cpf>")
}

func TestGenerateInvoiceNumberSecondLine(t *testing.T) {
	g := NewGenerator(testResolver(t), zerolog.Nop())
	fields := baseFields()
	fields["numeroNotaFiscal"] = "Número da Nota:\n2024/567"

	out, err := g.Generate(fields)
	require.NoError(t, err)

	assert.Contains(t, out, "<Numero>2024567</Numero>")
}

func TestInvoiceNumberIgnoresBlankLines(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"00012345", "00012345"},
		{"00012345\n", "00012345"},
		{"00012345\r\n", "00012345"},
		{"Número da Nota:\n2024/567\n", "2024567"},
		{"Número da Nota:\n\n2024/567", "2024567"},
		{"\n", ""},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, InvoiceNumber(tc.raw), "input %q", tc.raw)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	g := NewGenerator(testResolver(t), zerolog.Nop())
	fields := baseFields()
	fields["discriminacao"] = "Serviços de informática"

	first, err := g.Generate(fields)
	require.NoError(t, err)
	second, err := g.Generate(fields)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGenerateWarnsOnFiscalGaps(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	g := NewGenerator(testResolver(t), logger)

	_, err := g.Generate(baseFields())
	require.NoError(t, err)

	logs := buf.String()
	assert.Contains(t, logs, "fiscally significant field empty")
	assert.Contains(t, logs, "CodigoCnae")
	assert.Contains(t, logs, `"nota":"00012345"`)
	assert.Contains(t, logs, `"prestador":"ACME Serviços LTDA"`)
}
