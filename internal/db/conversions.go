package db

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Conversion is one persisted PDF-to-XML conversion
type Conversion struct {
	ID              uuid.UUID  `json:"id"`
	ArquivoNome     string     `json:"arquivo_nome"`
	NumeroNota      string     `json:"numero_nota"`
	Prestador       string     `json:"prestador"`
	CodigoMunicipio string     `json:"codigo_municipio"`
	XML             string     `json:"xml,omitempty"`
	Valido          bool       `json:"valido"`
	Problemas       []string   `json:"problemas,omitempty"`
	PdfURL          string     `json:"pdf_url,omitempty"`
	XMLURL          string     `json:"xml_url,omitempty"`
	UsuarioID       uuid.UUID  `json:"usuario_id"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty"`
}

func SaveConversion(ctx context.Context, c *Conversion) error {
	query := `
		INSERT INTO conversoes (
			arquivo_nome, numero_nota, prestador, codigo_municipio,
			xml, valido, problemas, pdf_url, xml_url, usuario_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`

	err := Pool.QueryRow(ctx, query,
		c.ArquivoNome, c.NumeroNota, c.Prestador, c.CodigoMunicipio,
		c.XML, c.Valido, c.Problemas, c.PdfURL, c.XMLURL, c.UsuarioID,
	).Scan(&c.ID, &c.CreatedAt)

	return err
}

func GetConversions(ctx context.Context, limit int) ([]Conversion, error) {
	query := `
		SELECT id, COALESCE(arquivo_nome, ''), COALESCE(numero_nota, ''), COALESCE(prestador, ''),
		       COALESCE(codigo_municipio, ''), valido, COALESCE(problemas, '{}'),
		       COALESCE(pdf_url, ''), COALESCE(xml_url, ''), usuario_id, created_at
		FROM conversoes
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var conversions []Conversion
	for rows.Next() {
		var c Conversion
		err := rows.Scan(
			&c.ID, &c.ArquivoNome, &c.NumeroNota, &c.Prestador,
			&c.CodigoMunicipio, &c.Valido, &c.Problemas,
			&c.PdfURL, &c.XMLURL, &c.UsuarioID, &c.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		conversions = append(conversions, c)
	}

	return conversions, rows.Err()
}

// GetConversionByID retrieves a single conversion, including the stored XML
func GetConversionByID(ctx context.Context, conversionID string) (*Conversion, error) {
	query := `
		SELECT id, COALESCE(arquivo_nome, ''), COALESCE(numero_nota, ''), COALESCE(prestador, ''),
		       COALESCE(codigo_municipio, ''), COALESCE(xml, ''), valido, COALESCE(problemas, '{}'),
		       COALESCE(pdf_url, ''), COALESCE(xml_url, ''), usuario_id, created_at, updated_at
		FROM conversoes
		WHERE id = $1
	`

	var c Conversion
	err := Pool.QueryRow(ctx, query, conversionID).Scan(
		&c.ID, &c.ArquivoNome, &c.NumeroNota, &c.Prestador,
		&c.CodigoMunicipio, &c.XML, &c.Valido, &c.Problemas,
		&c.PdfURL, &c.XMLURL, &c.UsuarioID, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// DeleteConversion removes a conversion record
func DeleteConversion(ctx context.Context, conversionID string) error {
	_, err := Pool.Exec(ctx, "DELETE FROM conversoes WHERE id = $1", conversionID)
	return err
}
