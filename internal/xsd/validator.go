// Package xsd wraps libxml2 schema validation behind a small API that
// reports validation problems as data instead of errors: callers surface the
// messages to the user alongside the generated document.
package xsd

import (
	"fmt"

	"github.com/rs/zerolog"
	xsdvalidate "github.com/terminalstatic/go-xsd-validate"
)

// Validator holds a compiled schema. The underlying handler is safe for
// concurrent use, so one Validator is shared by all requests.
type Validator struct {
	handler *xsdvalidate.XsdHandler
	log     zerolog.Logger
}

// NewValidator initializes libxml2 and compiles the schema at schemaPath.
// Call Close when done to release the parser state.
func NewValidator(schemaPath string, logger zerolog.Logger) (*Validator, error) {
	if err := xsdvalidate.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize XML validation: %w", err)
	}
	handler, err := xsdvalidate.NewXsdHandlerUrl(schemaPath, xsdvalidate.ParsErrDefault)
	if err != nil {
		xsdvalidate.Cleanup()
		return nil, fmt.Errorf("failed to load schema %s: %w", schemaPath, err)
	}
	return &Validator{handler: handler, log: logger}, nil
}

// Close frees the compiled schema and the libxml2 state.
func (v *Validator) Close() {
	v.handler.Free()
	xsdvalidate.Cleanup()
}

// Validate checks a serialized document against the schema. Schema
// violations and parse failures alike come back as human-readable messages;
// a well-formed, schema-valid document yields (true, nil).
func (v *Validator) Validate(xmlBytes []byte) (bool, []string) {
	err := v.handler.ValidateMem(xmlBytes, xsdvalidate.ValidErrDefault)
	if err == nil {
		return true, nil
	}

	switch e := err.(type) {
	case xsdvalidate.ValidationError:
		msgs := make([]string, 0, len(e.Errors))
		for _, ve := range e.Errors {
			msgs = append(msgs, fmt.Sprintf("line %d: %s", ve.Line, ve.Message))
		}
		if len(msgs) == 0 {
			msgs = append(msgs, e.Error())
		}
		v.log.Warn().Int("erros", len(msgs)).Msg("document failed schema validation")
		return false, msgs
	default:
		// Malformed XML that libxml2 could not even parse.
		v.log.Warn().Err(err).Msg("document could not be parsed for validation")
		return false, []string{err.Error()}
	}
}
