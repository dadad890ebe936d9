package abrasf

import (
	"encoding/xml"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/nfseflow/nfse-xml-service/internal/format"
	"github.com/nfseflow/nfse-xml-service/internal/municipio"
)

var (
	slashDateRegex = regexp.MustCompile(`(\d{1,2})/(\d{1,2})/(\d{4})`)
	isoDateRegex   = regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})`)
)

// issRetidoTruthy are the free-text tokens mapped to schema code "1"
// (ISS withheld). Everything else collapses to "2"; the binary collapse is
// schema policy.
var issRetidoTruthy = map[string]bool{"1": true, "sim": true, "true": true}

// moneyFields maps internal field names to their destination inside
// Servico/Valores. The assembler iterates this table instead of formatting
// each field by hand.
var moneyFields = []struct {
	name string
	dst  func(*Valores) *string
}{
	{"valorServicos", func(v *Valores) *string { return &v.ValorServicos }},
	{"deducoes", func(v *Valores) *string { return &v.ValorDeducoes }},
	{"pis", func(v *Valores) *string { return &v.ValorPis }},
	{"cofins", func(v *Valores) *string { return &v.ValorCofins }},
	{"valorInss", func(v *Valores) *string { return &v.ValorInss }},
	{"impostoRenda", func(v *Valores) *string { return &v.ValorIr }},
	{"csll", func(v *Valores) *string { return &v.ValorCsll }},
	{"repasseTerceiros", func(v *Valores) *string { return &v.OutrasRetencoes }},
	{"valorIss", func(v *Valores) *string { return &v.ValorIss }},
	{"baseCalculo", func(v *Valores) *string { return &v.BaseCalculo }},
	{"descontosDiversos", func(v *Valores) *string { return &v.DescontoIncondicionado }},
	{"descIncondicional", func(v *Valores) *string { return &v.DescontoCondicionado }},
}

// Generator assembles the ABRASF element tree from a mapped field
// dictionary. It is stateless per call; the only shared state is the
// read-only municipality registry behind the resolver.
type Generator struct {
	resolver *municipio.Resolver
	log      zerolog.Logger
}

// NewGenerator wires the assembler to a municipality resolver.
func NewGenerator(resolver *municipio.Resolver, logger zerolog.Logger) *Generator {
	return &Generator{resolver: resolver, log: logger}
}

// Generate builds and serializes the XML document for one invoice. Missing
// or malformed optional fields degrade to defaults and are logged; the only
// fatal condition is an alíquota that is present, non-empty and not a
// number, since the schema-mandatory field then has no defensible value.
func (g *Generator) Generate(fields map[string]string) (string, error) {
	numero := InvoiceNumber(fields["numeroNotaFiscal"])
	prestadorNome := strings.TrimSpace(fields["razaoSocialPrestador"])
	logger := g.log.With().Str("nota", numero).Str("prestador", prestadorNome).Logger()

	dataEmissao := g.formatDate(logger, "dataEmissao", fields["dataEmissao"])
	dataEmissaoRps := g.formatDate(logger, "dataEmissaoRps", fields["dataEmissaoRps"])
	competencia := g.competencia(logger, fields)

	var valores Valores
	for _, f := range moneyFields {
		v, err := format.Monetary(fields[f.name])
		if err != nil {
			logger.Warn().
				Str("campo", f.name).
				Str("valor", fields[f.name]).
				Msg("unparseable monetary value, defaulting to 0.00")
		}
		*f.dst(&valores) = v
	}

	aliquota, err := g.aliquota(numero, fields["aliquota"])
	if err != nil {
		return "", err
	}
	valores.Aliquota = aliquota
	valores.ValorLiquidoNfse = g.netValue(logger, fields, &valores)

	codPrestador := g.municipality(logger, fields["municipioPrestador"], fields["ufPrestador"])
	codPrestacao := codPrestador
	if raw := strings.TrimSpace(fields["municipioPrestacaoServico"]); raw != "" {
		codPrestacao = g.resolver.ResolveText(raw)
	}
	if codPrestacao == "" {
		// Service is assumed rendered at the provider's registered
		// municipality unless the declaration says otherwise.
		codPrestacao = codPrestador
	}
	codTomador := g.municipality(logger, fields["municipioTomador"], fields["ufTomador"])

	servico := Servico{
		Valores:                   valores,
		IssRetido:                 issRetidoCode(fields["issRetido"]),
		ItemListaServico:          format.ItemCode(fields["itemListaServico"]),
		CodigoCnae:                strings.TrimSpace(fields["codigoCnae"]),
		CodigoTributacaoMunicipio: strings.TrimSpace(fields["codigoTributacaoMunicipio"]),
		Discriminacao:             strings.TrimSpace(fields["discriminacao"]),
		CodigoMunicipio:           codPrestacao,
		ExigibilidadeISS:          strings.TrimSpace(fields["exigibilidadeIss"]),
		MunicipioIncidencia:       codPrestacao,
	}

	for campo, valor := range map[string]string{
		"CodigoCnae":          servico.CodigoCnae,
		"Discriminacao":       servico.Discriminacao,
		"ExigibilidadeISS":    servico.ExigibilidadeISS,
		"ItemListaServico":    servico.ItemListaServico,
		"CodigoMunicipio":     servico.CodigoMunicipio,
		"MunicipioIncidencia": servico.MunicipioIncidencia,
	} {
		if valor == "" {
			logger.Warn().Str("campo", campo).Msg("fiscally significant field empty in generated XML")
		}
	}

	doc := ConsultarNfseFaixaResposta{
		Xmlns: Namespace,
		ListaNfse: ListaNfse{CompNfse: CompNfse{Nfse: Nfse{
			Versao: "1.00",
			InfNfse: InfNfse{
				Numero:            numero,
				CodigoVerificacao: format.AlphaNumeric(fields["codigoVerificacao"]),
				DataEmissao:       dataEmissao,
				ValoresNfse: ValoresNfse{
					BaseCalculo:      valores.BaseCalculo,
					Aliquota:         valores.Aliquota,
					ValorIss:         valores.ValorIss,
					ValorLiquidoNfse: valores.ValorLiquidoNfse,
				},
				PrestadorServico: Prestador{
					IdentificacaoPrestador: IdentificacaoPrestador{
						CpfCnpj:            documentChoice(fields["cpfCnpjPrestador"]),
						InscricaoMunicipal: strings.TrimSpace(fields["inscricaoMunicipalPrestador"]),
					},
					RazaoSocial:  prestadorNome,
					NomeFantasia: strings.TrimSpace(fields["nomeFantasiaPrestador"]),
					Endereco: Endereco{
						Endereco:        strings.TrimSpace(fields["enderecoPrestador"]),
						Numero:          strings.TrimSpace(fields["numeroPrestador"]),
						Complemento:     strings.TrimSpace(fields["complemento"]),
						Bairro:          strings.TrimSpace(fields["bairroPrestador"]),
						CodigoMunicipio: codPrestador,
						Uf:              strings.ToUpper(strings.TrimSpace(fields["ufPrestador"])),
						Cep:             format.Digits(fields["cepPrestador"]),
					},
					Contato: Contato{
						Telefone: format.Digits(fields["telefonePrestador"]),
						Email:    strings.TrimSpace(fields["emailPrestador"]),
					},
				},
				OrgaoGerador: OrgaoGerador{
					CodigoMunicipio: codPrestacao,
					Uf:              strings.ToUpper(strings.TrimSpace(fields["ufPrestador"])),
				},
				DeclaracaoPrestacaoServico: Declaracao{
					InfDeclaracaoPrestacaoServico: InfDeclaracao{
						Rps: Rps{
							IdentificacaoRps: IdentificacaoRps{
								Numero: strings.TrimSpace(fields["numeroRps"]),
								Serie:  firstNonEmpty(fields["serieRps"], fields["serie"]),
								Tipo:   strings.TrimSpace(fields["tipoRecolhimento"]),
							},
							DataEmissao: dataEmissaoRps,
							Status:      "1",
						},
						Competencia: competencia,
						Servico:     servico,
						Prestador: IdentificacaoSimples{
							CpfCnpj:            documentChoice(fields["cpfCnpjPrestador"]),
							InscricaoMunicipal: strings.TrimSpace(fields["inscricaoMunicipalPrestador"]),
						},
						Tomador: Tomador{
							IdentificacaoTomador: IdentificacaoTomador{
								CpfCnpj:            documentChoice(fields["cpfCnpjTomador"]),
								InscricaoMunicipal: strings.TrimSpace(fields["inscricaoMunicipalTomador"]),
							},
							RazaoSocial: strings.TrimSpace(fields["razaoSocialTomador"]),
							Endereco: Endereco{
								Endereco:        strings.TrimSpace(fields["enderecoTomador"]),
								Numero:          strings.TrimSpace(fields["numeroTomador"]),
								Complemento:     strings.TrimSpace(fields["complementoTomador"]),
								Bairro:          strings.TrimSpace(fields["bairroTomador"]),
								CodigoMunicipio: codTomador,
								Uf:              strings.ToUpper(strings.TrimSpace(fields["ufTomador"])),
								Cep:             format.Digits(fields["cepTomador"]),
							},
							Contato: Contato{
								Telefone: "",
								Email:    strings.TrimSpace(fields["emailTomador"]),
							},
						},
					},
				},
			},
		}}},
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize NFS-e %s: %w", numero, err)
	}
	return xml.Header + string(out) + "\n", nil
}

// aliquota applies the fatal-input policy: a missing or empty alíquota
// defaults to zero, but a present value that is not a number aborts the
// invoice instead of inventing a rate.
func (g *Generator) aliquota(numero, raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "0", nil
	}
	v, err := format.Percentage(trimmed)
	if err != nil {
		return "", fmt.Errorf("nfse %s: aliquota %q: %w", numero, raw, err)
	}
	return strconv.FormatFloat(v, 'f', -1, 64), nil
}

// netValue prefers the declared net value and otherwise derives
// services − ISS − income tax with decimal arithmetic. A derivation that
// cannot run leaves "0.00" and an error log carrying the invoice number.
func (g *Generator) netValue(logger zerolog.Logger, fields map[string]string, valores *Valores) string {
	if raw := strings.TrimSpace(fields["valorLiquido"]); raw != "" {
		v, err := format.Monetary(raw)
		if err == nil {
			return v
		}
		logger.Warn().Str("valor", raw).Msg("unparseable declared net value, deriving")
	}

	servicos, err1 := decimal.NewFromString(valores.ValorServicos)
	iss, err2 := decimal.NewFromString(valores.ValorIss)
	ir, err3 := decimal.NewFromString(valores.ValorIr)
	if err1 != nil || err2 != nil || err3 != nil {
		logger.Error().Msg("failed to derive net value from services, ISS and income tax")
		return "0.00"
	}
	return servicos.Sub(iss).Sub(ir).StringFixed(2)
}

// competencia returns the explicit fiscal reference period, or the first of
// the emission month when none was extracted. Absence of both is warned
// about rather than swallowed: the field is fiscally significant.
func (g *Generator) competencia(logger zerolog.Logger, fields map[string]string) string {
	if raw := strings.TrimSpace(fields["competencia"]); raw != "" {
		if v, err := format.Date(raw); err == nil {
			return v[:10]
		}
		return raw
	}

	emissao := strings.TrimSpace(fields["dataEmissao"])
	if m := slashDateRegex.FindStringSubmatch(emissao); m != nil {
		month, _ := strconv.Atoi(m[2])
		return fmt.Sprintf("%s-%02d-01", m[3], month)
	}
	if m := isoDateRegex.FindStringSubmatch(emissao); m != nil {
		return fmt.Sprintf("%s-%s-01", m[1], m[2])
	}

	logger.Warn().Str("dataEmissao", emissao).Msg("could not derive competência from emission date")
	return ""
}

func (g *Generator) formatDate(logger zerolog.Logger, name, raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	v, err := format.Date(raw)
	if err != nil {
		logger.Warn().Str("campo", name).Str("valor", raw).Msg("unparseable date")
		return ""
	}
	return v
}

func (g *Generator) municipality(logger zerolog.Logger, nome, uf string) string {
	nome = strings.TrimSpace(nome)
	uf = strings.TrimSpace(uf)
	if nome == "" {
		return ""
	}
	if uf == "" {
		// OCR sometimes captures "Campinas - SP" as a single field.
		return g.resolver.ResolveText(nome)
	}
	return g.resolver.Resolve(nome, uf)
}

// InvoiceNumber cleans the OCR capture of the invoice number. Multi-line
// captures put the label on the first line and the number on the second;
// blank lines (including a trailing newline) do not count as lines.
func InvoiceNumber(raw string) string {
	var lines []string
	for _, line := range strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	switch {
	case len(lines) >= 2:
		return format.AlphaNumeric(lines[1])
	case len(lines) == 1:
		return format.AlphaNumeric(lines[0])
	default:
		return ""
	}
}

func issRetidoCode(raw string) string {
	if issRetidoTruthy[strings.ToLower(strings.TrimSpace(raw))] {
		return "1"
	}
	return "2"
}

func documentChoice(raw string) CpfCnpj {
	digits, isCPF := format.ClassifyDocument(raw)
	if digits == "" {
		return CpfCnpj{}
	}
	if isCPF {
		return CpfCnpj{Cpf: digits}
	}
	return CpfCnpj{Cnpj: digits}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
