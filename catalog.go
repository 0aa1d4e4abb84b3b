package l10n

import (
	"strings"

	"golang.org/x/text/encoding/unicode"
)

// Parse turns the raw bytes of one catalog file into a Bundle. stem is the
// file name without its extension and must be a valid language tag.
//
// Syntax errors are reported together as a *ParseError; an invalid stem is
// reported as a *TagError. On error no bundle is produced.
func Parse(data []byte, stem string, opts ...Option) (*Bundle, error) {
	res, err := ParseResource(data, stem)
	if err != nil {
		return nil, err
	}
	tag, err := ParseTag(stem)
	if err != nil {
		return nil, err
	}
	return NewBundle(tag, res, opts...), nil
}

// ParseResource parses catalog syntax only. stem is used for error messages.
func ParseResource(data []byte, stem string) (*Resource, error) {
	res, errs := parseResource(decodeCatalog(data))
	if len(errs) > 0 {
		return nil, &ParseError{Stem: stem, Errors: errs}
	}
	return res, nil
}

// decodeCatalog decodes data as UTF-8, dropping a byte order mark and
// replacing invalid sequences with U+FFFD, then normalizes line endings.
func decodeCatalog(data []byte) string {
	decoded, err := unicode.UTF8BOM.NewDecoder().Bytes(data)
	if err != nil {
		decoded = []byte(strings.ToValidUTF8(string(data), "\uFFFD"))
	}
	return strings.ReplaceAll(string(decoded), "\r\n", "\n")
}
