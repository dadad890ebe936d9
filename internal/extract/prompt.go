package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nfseflow/nfse-xml-service/internal/models"
)

// extractionPrompt makes the generative fallbacks emit the same entity
// vocabulary the Document AI processor was trained on, so downstream mapping
// does not care which provider answered.
const extractionPrompt = `Você é um especialista em Notas Fiscais de Serviço Eletrônicas (NFS-e) brasileiras. Leia o documento com atenção e extraia os campos fiscais.

## TIPOS DE ENTIDADE

Use EXATAMENTE estes tipos (ignore campos que não aparecem no documento):

numero-nota-fiscal, cod_verificacao, data_da_emissao, competencia,
numero_rps, serie_nfse, data_emissao_rps, tipo_recolhimento,
razao_social, nome_fantasia, cpf_cnpj, inscricao_municipal_prestador,
endereco_prestador, numero_lograd_prestador, bairro_prestador,
cep_prestador, municipio_prestador, uf_prestador, telefone_prestador,
email_prestador,
razao_social_tomador, cpf_cnpj_tomador, inscricao_municipal,
endereco_tomador, numero_lograd_tomador, bairro_tomador, cep_tomador,
municipio_tomador, uf_tomador, email_tomador,
discriminacao, item_lista_servico, codigo_cnae, exigibilidade_iss,
municipio_prestacao_servico,
valor_servico, valor_liquido, base_calculo, aliquota, iss, iss_retido,
deducoes, pis, cofins, inss, imposto_renda, csll,
descontos_diversos, desc_incon, repasse_terceiros

## REGRAS

1. mentionText é o texto EXATO como aparece no documento, com a formatação original ("1.234,56", "15/03/2024 às 10:30").
2. Para datas, inclua também normalizedValue no formato ISO 8601 ("2024-03-15T10:30:00").
3. NUNCA invente valores: omita a entidade se o campo não estiver legível.
4. NUNCA troque dados do prestador (quem emite) com os do tomador (quem contrata).
5. cpf_cnpj é o documento do PRESTADOR; cpf_cnpj_tomador é o do TOMADOR.

Devolva SOMENTE JSON válido (sem markdown, sem comentários):
{"entities": [{"type": "valor_servico", "mentionText": "1.234,56"}, {"type": "data_da_emissao", "mentionText": "15/03/2024 às 10:30", "normalizedValue": "2024-03-15T10:30:00"}]}`

// parseEntities converts the generative model's JSON answer into the shared
// extraction result. Markdown code fences around the JSON are tolerated.
func parseEntities(response string) (*models.ExtractionResult, error) {
	cleaned := strings.TrimSpace(response)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var raw struct {
		Text     string `json:"text"`
		Entities []struct {
			Type            string `json:"type"`
			MentionText     string `json:"mentionText"`
			NormalizedValue string `json:"normalizedValue"`
		} `json:"entities"`
	}
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse provider response: %w", err)
	}

	result := &models.ExtractionResult{Text: raw.Text}
	for _, e := range raw.Entities {
		entity := models.Entity{Type: e.Type, MentionText: e.MentionText}
		if e.NormalizedValue != "" {
			entity.NormalizedValue = &models.NormalizedValue{Text: e.NormalizedValue}
		}
		result.Entities = append(result.Entities, entity)
	}
	return result, nil
}
