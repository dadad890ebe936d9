package mapper

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nfseflow/nfse-xml-service/internal/models"
)

func TestMapFields(t *testing.T) {
	entities := []models.Entity{
		{Type: "valor_servico", MentionText: "1.000,00"},
		{Type: "razao_social", MentionText: "ACME Serviços LTDA"},
		{Type: "uf_prestador", MentionText: "SP"},
		{Type: "tipo_desconhecido", MentionText: "ignorado"},
	}

	fields := MapFields(entities)

	assert.Equal(t, "1.000,00", fields["valorServicos"])
	assert.Equal(t, "ACME Serviços LTDA", fields["razaoSocialPrestador"])
	assert.Equal(t, "SP", fields["ufPrestador"])
	assert.NotContains(t, fields, "tipo_desconhecido")
	assert.Len(t, fields, 3)
}

func TestMapFieldsPrefersNormalizedDates(t *testing.T) {
	entities := []models.Entity{
		{
			Type:            "data_da_emissao",
			MentionText:     "15/03/2024 às 10:30",
			NormalizedValue: &models.NormalizedValue{Text: "2024-03-15T10:30:00"},
		},
		{
			// Normalized values on non-date types are not used.
			Type:            "valor_servico",
			MentionText:     "1.000,00",
			NormalizedValue: &models.NormalizedValue{Text: "1000"},
		},
	}

	fields := MapFields(entities)

	assert.Equal(t, "2024-03-15T10:30:00", fields["dataEmissao"])
	assert.Equal(t, "1.000,00", fields["valorServicos"])
}

func TestMapFieldsLastOccurrenceWins(t *testing.T) {
	entities := []models.Entity{
		{Type: "valor_servico", MentionText: "100,00"},
		{Type: "valor_servico", MentionText: "200,00"},
	}

	assert.Equal(t, "200,00", MapFields(entities)["valorServicos"])
}
