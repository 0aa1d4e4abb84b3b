package l10n

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrSyntax                 = errors.New("l10n: catalog syntax error")
	ErrInvalidTag             = errors.New("l10n: invalid language tag")
	ErrMessageNotFound        = errors.New("l10n: message not found")
	ErrMissingDefaultLanguage = errors.New("l10n: default language is not loaded")
	ErrUnsupportedExtension   = errors.New("l10n: unsupported catalog extension")

	// Formatting warnings. They never stop a lookup.
	ErrUnknownVariable   = errors.New("l10n: unknown variable")
	ErrUnknownMessage    = errors.New("l10n: unknown message")
	ErrUnknownTerm       = errors.New("l10n: unknown term")
	ErrUnknownFunction   = errors.New("l10n: unknown function")
	ErrCyclicReference   = errors.New("l10n: cyclic reference")
	ErrFunction          = errors.New("l10n: function call failed")
	ErrTooManyPlaceables = errors.New("l10n: too many placeables")
)

// SyntaxError describes one malformed entry of a catalog.
// Offset is a byte offset into the decoded text, Line and Column are 1-based
// and Column counts runes.
type SyntaxError struct {
	Offset int
	Line   int
	Column int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Msg)
}

// ParseError aggregates every syntax error found in one catalog, in file order.
type ParseError struct {
	Stem   string
	Errors []*SyntaxError
}

func (e *ParseError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "l10n: could not parse catalog %q (%d syntax errors):", e.Stem, len(e.Errors))
	for i, se := range e.Errors {
		fmt.Fprintf(&sb, "\n%d: %s", i, se.Error())
	}
	return sb.String()
}

func (e *ParseError) Unwrap() error { return ErrSyntax }

// TagError reports a string that is not a valid language tag.
type TagError struct {
	Value string
	Err   error
}

func (e *TagError) Error() string {
	return fmt.Sprintf("l10n: %q is not a valid language tag (a catalog file name should look like `en-US.ftl`): %v", e.Value, e.Err)
}

func (e *TagError) Is(target error) bool { return target == ErrInvalidTag }

func (e *TagError) Unwrap() error { return e.Err }

// MessageNotFoundError is returned when a bundle has no value for an id.
type MessageNotFoundError struct {
	ID  string
	Tag Tag
}

func (e *MessageNotFoundError) Error() string {
	return fmt.Sprintf("l10n: couldn't find message with id %q for language %q", e.ID, e.Tag)
}

func (e *MessageNotFoundError) Unwrap() error { return ErrMessageNotFound }

// MissingDefaultLanguageError is the one fatal startup condition: no loaded
// catalog matches the default language.
type MissingDefaultLanguageError struct {
	Want   Tag
	Loaded []Tag
}

func (e *MissingDefaultLanguageError) Error() string {
	loaded := make([]string, len(e.Loaded))
	for i, t := range e.Loaded {
		loaded[i] = t.String()
	}
	return fmt.Sprintf("l10n: cannot start, need at least a catalog for %s (%s.ftl); loaded languages: [%s]",
		e.Want, e.Want, strings.Join(loaded, ", "))
}

func (e *MissingDefaultLanguageError) Unwrap() error { return ErrMissingDefaultLanguage }

// ResolveError is a formatting warning collected while rendering a pattern.
type ResolveError struct {
	Kind error
	Ref  string
	Err  error
}

func (e *ResolveError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%v %q: %v", e.Kind, e.Ref, e.Err)
	}
	return fmt.Sprintf("%v %q", e.Kind, e.Ref)
}

func (e *ResolveError) Is(target error) bool { return target == e.Kind }

func (e *ResolveError) Unwrap() error { return e.Err }
