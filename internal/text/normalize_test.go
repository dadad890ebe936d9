package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"accents stripped", "São Paulo", "SAO PAULO"},
		{"cedilla and tilde", "Conceição do Araguaia", "CONCEICAO DO ARAGUAIA"},
		{"punctuation removed", "Sant'Ana do Livramento", "SANTANA DO LIVRAMENTO"},
		{"hyphen removed", "Mogi-Mirim", "MOGIMIRIM"},
		{"whitespace collapsed", "  Rio \t de \n Janeiro  ", "RIO DE JANEIRO"},
		{"already clean", "CURITIBA", "CURITIBA"},
		{"digits kept", "Distrito 2 Norte", "DISTRITO 2 NORTE"},
		{"empty", "", ""},
		{"only punctuation", "***!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := []string{"São Paulo", "Florianópolis", "  Belém  ", "Açaí 123"}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once))
	}
}
