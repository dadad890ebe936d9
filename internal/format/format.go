// Package format holds the pure value formatters of the conversion pipeline.
// Every formatter degrades to a safe default on malformed input and reports
// the failure through ErrUnparseable so the caller decides what to log; none
// of them panics.
package format

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrUnparseable marks input a formatter could not interpret. The returned
// value alongside it is always the documented safe default.
var ErrUnparseable = errors.New("unparseable value")

var (
	digitsRegex   = regexp.MustCompile(`\D`)
	itemCodeRegex = regexp.MustCompile(`^\s*(\d{2}\.\d{2})`)
)

// Monetary converts a locale-formatted monetary string ("1.234,56",
// "1234,56", "R$ 50,00") to a canonical two-decimal value ("1234.56").
// Empty input is worth zero; garbage yields "0.00" plus ErrUnparseable.
func Monetary(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "0.00", nil
	}

	s = strings.ReplaceAll(s, "R$", "")
	s = strings.ReplaceAll(s, " ", "")
	if strings.Contains(s, ",") {
		// Comma is the decimal separator, dots are thousands separators.
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return "0.00", fmt.Errorf("%w: monetary %q", ErrUnparseable, raw)
	}
	return d.StringFixed(2), nil
}

// Percentage parses an alíquota such as "5%", "2,5" or "0.05" into a float.
// Empty or garbage input yields 0 (the schema requires a numeric field);
// garbage additionally reports ErrUnparseable so the caller can decide
// whether the field was fiscally mandatory.
func Percentage(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimSuffix(s, "%")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: percentage %q", ErrUnparseable, raw)
	}
	return v, nil
}

// dateLayouts lists the accepted source formats, day-first variants before
// anything ambiguous.
var dateLayouts = []string{
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
	"02-01-2006 15:04:05",
	"02-01-2006 15:04",
	"02-01-2006",
	"02.01.2006",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Date parses a Brazilian free-text date/time ("15/03/2024 às 10:30") into
// ISO 8601 local time ("2024-03-15T10:30:00"). The literal "às" separator
// between date and time is dropped before parsing. Unparseable input yields
// "" plus ErrUnparseable.
func Date(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", fmt.Errorf("%w: empty date", ErrUnparseable)
	}
	s = strings.ReplaceAll(s, " às ", " ")
	s = strings.ReplaceAll(s, " as ", " ")

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02T15:04:05"), nil
		}
	}
	return "", fmt.Errorf("%w: date %q", ErrUnparseable, raw)
}

// Digits strips everything that is not a decimal digit.
func Digits(raw string) string {
	return digitsRegex.ReplaceAllString(raw, "")
}

// ClassifyDocument strips formatting from a taxpayer identifier and reports
// whether it is an individual (CPF) document. Exactly 11 digits means CPF;
// any other length is accepted as a corporate CNPJ without further checks.
func ClassifyDocument(raw string) (digits string, isCPF bool) {
	digits = Digits(raw)
	return digits, len(digits) == 11
}

// ItemCode extracts the leading service-list code ("16.02") from free text
// like "16.02-Outros serviços de informática". When no code pattern is
// present the trimmed input passes through unchanged.
func ItemCode(raw string) string {
	if m := itemCodeRegex.FindStringSubmatch(raw); m != nil {
		return m[1]
	}
	return strings.TrimSpace(raw)
}

// AlphaNumeric keeps only letters and digits, for verification codes and
// invoice numbers that OCR decorates with punctuation.
var alphaNumRegex = regexp.MustCompile(`[^a-zA-Z0-9]`)

func AlphaNumeric(raw string) string {
	return alphaNumRegex.ReplaceAllString(raw, "")
}
