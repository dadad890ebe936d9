// Package mapper translates the document-understanding processor's entity
// vocabulary into the internal field names consumed by the XML assembler.
package mapper

import (
	"github.com/nfseflow/nfse-xml-service/internal/models"
)

// vocabulary maps processor entity types to internal field names. Entity
// types not listed here are ignored, so new processor versions that emit
// extra types do not break the pipeline.
var vocabulary = map[string]string{
	"aliquota":                      "aliquota",
	"base_calculo":                  "baseCalculo",
	"bairro_prestador":              "bairroPrestador",
	"bairro_tomador":                "bairroTomador",
	"cep_prestador":                 "cepPrestador",
	"cep_tomador":                   "cepTomador",
	"cidade_nfs":                    "cidadeNfs",
	"cod_verificacao":               "codigoVerificacao",
	"cofins":                        "cofins",
	"cpf_cnpj":                      "cpfCnpjPrestador",
	"cpf_cnpj_tomador":              "cpfCnpjTomador",
	"credito":                       "credito",
	"csll":                          "csll",
	"data_da_emissao":               "dataEmissao",
	"data_emissao_rps":              "dataEmissaoRps",
	"data_rps":                      "dataRps",
	"deducoes":                      "deducoes",
	"desc_incon":                    "descIncondicional",
	"descontos_diversos":            "descontosDiversos",
	"discriminacao":                 "discriminacao",
	"email_prestador":               "emailPrestador",
	"email_tomador":                 "emailTomador",
	"endereco_prestador":            "enderecoPrestador",
	"endereco_tomador":              "enderecoTomador",
	"exigibilidade_iss":             "exigibilidadeIss",
	"imposto_renda":                 "impostoRenda",
	"inscricao_estadual":            "inscricaoEstadualPrestador",
	"inscricao_estadual_tomador":    "inscricaoEstadualTomador",
	"inscricao_municipal":           "inscricaoMunicipalTomador",
	"inscricao_municipal_prestador": "inscricaoMunicipalPrestador",
	"inss":                          "valorInss",
	"iss":                           "valorIss",
	"iss_retido":                    "issRetido",
	"item_lista_servico":            "itemListaServico",
	"local_prestacao":               "localPrestacao",
	"municipio_prestacao_servico":   "municipioPrestacaoServico",
	"municipio_prestador":           "municipioPrestador",
	"municipio_tomador":             "municipioTomador",
	"nome_fantasia":                 "nomeFantasiaPrestador",
	"num_inscr_obra":                "numInscricaoObra",
	"numero-nota-fiscal":            "numeroNotaFiscal",
	"numero_lograd_prestador":       "numeroPrestador",
	"numero_lograd_tomador":         "numeroTomador",
	"pis":                           "pis",
	"prefeitura_nota":               "prefeituraNota",
	"razao_social":                  "razaoSocialPrestador",
	"razao_social_tomador":          "razaoSocialTomador",
	"regime_tributario":             "regimeTributario",
	"repasse_terceiros":             "repasseTerceiros",
	"serie":                         "serie",
	"serie_nfse":                    "serieRps",
	"servico":                       "servico",
	"simples_nacional":              "simplesNacional",
	"telefone_prestador":            "telefonePrestador",
	"tipo_recolhimento":             "tipoRecolhimento",
	"uf_prestador":                  "ufPrestador",
	"uf_tomador":                    "ufTomador",
	"valor_aprox_tributos_fonte":    "valorAproxTributosFonte",
	"valor_liquido":                 "valorLiquido",
	"valor_servico":                 "valorServicos",
	"codigo_cnae":                   "codigoCnae",
	"competencia":                   "competencia",
	"numero_rps":                    "numeroRps",
}

// dateTypes are the entity types whose normalized value, when present, is
// preferred over the raw mention text.
var dateTypes = map[string]bool{
	"data_da_emissao":  true,
	"data_emissao_rps": true,
	"data_rps":         true,
	"competencia":      true,
}

// MapFields flattens the entity list into the field dictionary the assembler
// consumes. Unknown entity types are skipped; when the processor emits the
// same type twice the last occurrence wins.
func MapFields(entities []models.Entity) map[string]string {
	fields := make(map[string]string, len(entities))
	for _, e := range entities {
		name, ok := vocabulary[e.Type]
		if !ok {
			continue
		}
		fields[name] = e.MentionText
		if dateTypes[e.Type] && e.NormalizedValue != nil && e.NormalizedValue.Text != "" {
			fields[name] = e.NormalizedValue.Text
		}
	}
	return fields
}
