package xsd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `<?xml version="1.0" encoding="UTF-8"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
  <xs:element name="Nota">
    <xs:complexType>
      <xs:sequence>
        <xs:element name="Numero" type="xs:string"/>
        <xs:element name="Valor" type="xs:decimal"/>
      </xs:sequence>
    </xs:complexType>
  </xs:element>
</xs:schema>`

func newTestValidator(t *testing.T) *Validator {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nota.xsd")
	require.NoError(t, os.WriteFile(path, []byte(testSchema), 0o644))

	v, err := NewValidator(path, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(v.Close)
	return v
}

func TestValidateValidDocument(t *testing.T) {
	v := newTestValidator(t)

	ok, problems := v.Validate([]byte(`<Nota><Numero>123</Numero><Valor>940.00</Valor></Nota>`))
	assert.True(t, ok)
	assert.Empty(t, problems)
}

func TestValidateSchemaViolation(t *testing.T) {
	v := newTestValidator(t)

	ok, problems := v.Validate([]byte(`<Nota><Numero>123</Numero><Valor>not a number</Valor></Nota>`))
	assert.False(t, ok)
	require.NotEmpty(t, problems)
	assert.Contains(t, problems[0], "Valor")
}

func TestValidateMalformedXML(t *testing.T) {
	v := newTestValidator(t)

	ok, problems := v.Validate([]byte(`<Nota><Numero>123`))
	assert.False(t, ok)
	assert.NotEmpty(t, problems)
}

func TestNewValidatorMissingSchema(t *testing.T) {
	_, err := NewValidator(filepath.Join(t.TempDir(), "missing.xsd"), zerolog.Nop())
	require.Error(t, err)
}
