package l10n

import (
	"golang.org/x/text/language"
)

// Tag is a validated BCP 47 language tag such as "en-US".
// The zero value is not a valid tag.
type Tag struct {
	tag language.Tag
}

// ParseTag validates s as a language tag.
func ParseTag(s string) (Tag, error) {
	t, err := language.Parse(s)
	if err != nil {
		return Tag{}, &TagError{Value: s, Err: err}
	}
	return Tag{tag: t}, nil
}

// MustParseTag is like ParseTag but panics on an invalid tag.
func MustParseTag(s string) Tag {
	t, err := ParseTag(s)
	if err != nil {
		panic(err)
	}
	return t
}

func (t Tag) String() string {
	return t.tag.String()
}

// IsZero reports whether t is the undetermined tag, which is also the zero value.
func (t Tag) IsZero() bool {
	return t.tag == language.Und
}

// LanguageTag exposes the underlying x/text tag.
func (t Tag) LanguageTag() language.Tag {
	return t.tag
}
