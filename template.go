package l10n

import (
	"slices"
	"strconv"
	"strings"
)

///////////////////////////////////////////////////////////////////////////////
// AST DEFINITIONS
///////////////////////////////////////////////////////////////////////////////

// Resource is the parsed form of one catalog file.
type Resource struct {
	Messages []*Message
	Terms    []*Term
}

// Message is a public entry: `id = pattern` plus optional attributes.
// Value is nil for attribute-only messages.
type Message struct {
	ID         string
	Value      *Pattern
	Attributes []*Attribute
	Comment    string
	Offset     int
}

// Term is a private entry (`-id = pattern`) usable only from other patterns.
type Term struct {
	ID         string
	Value      *Pattern
	Attributes []*Attribute
	Comment    string
	Offset     int
}

type Attribute struct {
	ID    string
	Value *Pattern
}

func findAttribute(attrs []*Attribute, id string) *Pattern {
	for _, a := range attrs {
		if a.ID == id {
			return a.Value
		}
	}
	return nil
}

// Pattern is literal text interleaved with placeables.
type Pattern struct {
	Elements []PatternElement
}

// PatternElement is either *TextElement or *Placeable.
type PatternElement interface {
	patternElement()
}

type TextElement struct {
	Value string
}

// Placeable is a `{ ... }` inside a pattern. It is also an Expression when nested.
type Placeable struct {
	Expr Expression
}

func (*TextElement) patternElement() {}
func (*Placeable) patternElement()   {}

// Expression is anything that may appear inside a placeable.
type Expression interface {
	expression()
}

type StringLiteral struct {
	Value string
}

type NumberLiteral struct {
	Raw   string
	Value float64
}

type VariableReference struct {
	Name string
}

type MessageReference struct {
	ID        string
	Attribute string
}

type TermReference struct {
	ID        string
	Attribute string
	Args      *CallArguments
}

type FunctionReference struct {
	Name string
	Args *CallArguments
}

type SelectExpression struct {
	Selector Expression
	Variants []*Variant
}

type CallArguments struct {
	Positional []Expression
	Named      []*NamedArgument
}

type NamedArgument struct {
	Name  string
	Value Expression
}

// Variant is one `[key] pattern` branch of a select expression.
type Variant struct {
	Key     VariantKey
	Value   *Pattern
	Default bool
}

// VariantKey is an identifier or, when Numeric is set, a number literal.
type VariantKey struct {
	Name    string
	Numeric bool
	Number  float64
}

func (*StringLiteral) expression()     {}
func (*NumberLiteral) expression()     {}
func (*VariableReference) expression() {}
func (*MessageReference) expression()  {}
func (*TermReference) expression()     {}
func (*FunctionReference) expression() {}
func (*SelectExpression) expression()  {}
func (*Placeable) expression()         {}

///////////////////////////////////////////////////////////////////////////////
// RESOLVER
///////////////////////////////////////////////////////////////////////////////

const (
	// maxDepth bounds placeable nesting, both when parsing and resolving.
	maxDepth = 100
	// maxPlaceables bounds the placeables rendered for one lookup,
	// including those reached through references.
	maxPlaceables = 100
)

// value is the result of resolving an expression.
type value struct {
	text    string
	number  float64
	numeric bool
	// missing is set for fallbacks; a missing selector picks the default variant.
	missing bool
}

func stringValue(s string) value { return value{text: s} }

func fallbackValue(s string) value { return value{text: s, missing: true} }

// scope carries the state of one resolution.
type scope struct {
	bundle    *Bundle
	args      Args
	errs      []error
	travelled []*Pattern
	depth     int
	// placeables counts rendered placeables; exhausted is set once the
	// budget is spent.
	placeables int
	exhausted  bool
}

func newScope(b *Bundle, args Args) *scope {
	return &scope{bundle: b, args: args}
}

func (s *scope) warn(kind error, ref string, err error) {
	s.errs = append(s.errs, &ResolveError{Kind: kind, Ref: ref, Err: err})
}

func (s *scope) resolvePattern(p *Pattern) string {
	if slices.Contains(s.travelled, p) {
		s.warn(ErrCyclicReference, "", nil)
		return "{???}"
	}
	s.travelled = append(s.travelled, p)
	defer func() { s.travelled = s.travelled[:len(s.travelled)-1] }()

	if len(p.Elements) == 1 {
		if t, ok := p.Elements[0].(*TextElement); ok {
			return t.Value
		}
	}

	var sb strings.Builder
	for _, el := range p.Elements {
		switch el := el.(type) {
		case *TextElement:
			sb.WriteString(el.Value)
		case *Placeable:
			s.placeables++
			if s.placeables > maxPlaceables {
				if !s.exhausted {
					s.exhausted = true
					s.warn(ErrTooManyPlaceables, "", nil)
				}
				sb.WriteString("{???}")
				return sb.String()
			}
			sb.WriteString(s.resolveExpression(el.Expr).text)
		}
	}
	return sb.String()
}

func (s *scope) resolveExpression(expr Expression) value {
	s.depth++
	defer func() { s.depth-- }()
	if s.depth > maxDepth {
		s.warn(ErrCyclicReference, "", nil)
		return fallbackValue("{???}")
	}

	switch e := expr.(type) {
	case *StringLiteral:
		return stringValue(e.Value)
	case *NumberLiteral:
		return value{text: e.Raw, number: e.Value, numeric: true}
	case *VariableReference:
		v, ok := s.args[e.Name]
		if !ok {
			s.warn(ErrUnknownVariable, "$"+e.Name, nil)
			return fallbackValue("{$" + e.Name + "}")
		}
		return stringValue(v)
	case *MessageReference:
		return s.resolveMessageReference(e)
	case *TermReference:
		return s.resolveTermReference(e)
	case *FunctionReference:
		return s.resolveFunction(e)
	case *SelectExpression:
		return s.resolveSelect(e)
	case *Placeable:
		return s.resolveExpression(e.Expr)
	default:
		return fallbackValue("{???}")
	}
}

func (s *scope) resolveMessageReference(ref *MessageReference) value {
	name := ref.ID
	if ref.Attribute != "" {
		name += "." + ref.Attribute
	}
	msg, ok := s.bundle.messages[ref.ID]
	if !ok {
		s.warn(ErrUnknownMessage, name, nil)
		return fallbackValue("{" + name + "}")
	}
	p := msg.Value
	if ref.Attribute != "" {
		p = findAttribute(msg.Attributes, ref.Attribute)
	}
	if p == nil {
		s.warn(ErrUnknownMessage, name, nil)
		return fallbackValue("{" + name + "}")
	}
	return stringValue(s.resolvePattern(p))
}

// resolveTermReference renders a term in a fresh scope holding only the
// named arguments given at the call site.
func (s *scope) resolveTermReference(ref *TermReference) value {
	name := "-" + ref.ID
	if ref.Attribute != "" {
		name += "." + ref.Attribute
	}
	term, ok := s.bundle.terms[ref.ID]
	if !ok {
		s.warn(ErrUnknownTerm, name, nil)
		return fallbackValue("{" + name + "}")
	}
	p := term.Value
	if ref.Attribute != "" {
		p = findAttribute(term.Attributes, ref.Attribute)
	}
	if p == nil {
		s.warn(ErrUnknownTerm, name, nil)
		return fallbackValue("{" + name + "}")
	}

	local := Args{}
	if ref.Args != nil {
		for _, na := range ref.Args.Named {
			local[na.Name] = s.resolveExpression(na.Value).text
		}
	}
	outer := s.args
	s.args = local
	defer func() { s.args = outer }()
	return stringValue(s.resolvePattern(p))
}

func (s *scope) resolveFunction(ref *FunctionReference) value {
	fallback := "{" + ref.Name + "()}"
	fn, ok := s.bundle.functions[ref.Name]
	if !ok {
		s.warn(ErrUnknownFunction, ref.Name, nil)
		return fallbackValue(fallback)
	}

	var (
		positional []string
		named      map[string]string
	)
	if ref.Args != nil {
		for _, arg := range ref.Args.Positional {
			v := s.resolveExpression(arg)
			if v.missing {
				return fallbackValue(fallback)
			}
			positional = append(positional, v.text)
		}
		if len(ref.Args.Named) > 0 {
			named = make(map[string]string, len(ref.Args.Named))
			for _, na := range ref.Args.Named {
				named[na.Name] = s.resolveExpression(na.Value).text
			}
		}
	}

	out, err := fn(positional, named)
	if err != nil {
		s.warn(ErrFunction, ref.Name, err)
		return fallbackValue(fallback)
	}
	return stringValue(out)
}

func (s *scope) resolveSelect(sel *SelectExpression) value {
	selector := s.resolveExpression(sel.Selector)
	if !selector.missing {
		for _, v := range sel.Variants {
			if matchVariant(v.Key, selector) {
				return stringValue(s.resolvePattern(v.Value))
			}
		}
	}
	for _, v := range sel.Variants {
		if v.Default {
			return stringValue(s.resolvePattern(v.Value))
		}
	}
	// The parser guarantees a default variant.
	return fallbackValue("{???}")
}

// matchVariant compares a key with the selector. Number keys also match
// string selectors that parse to the same number, since arguments are strings.
func matchVariant(key VariantKey, v value) bool {
	if !key.Numeric {
		return key.Name == v.text
	}
	if v.numeric {
		return v.number == key.Number
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v.text), 64)
	return err == nil && f == key.Number
}

///////////////////////////////////////////////////////////////////////////////
// STATIC ANALYSIS
///////////////////////////////////////////////////////////////////////////////

// usesArgs reports whether rendering p can depend on the caller's arguments.
// Message references share the caller's arguments; terms do not. Each
// pattern is visited once, so shared references are not re-walked.
func (b *Bundle) usesArgs(p *Pattern, seen map[*Pattern]struct{}) bool {
	if p == nil {
		return false
	}
	if _, ok := seen[p]; ok {
		return false
	}
	seen[p] = struct{}{}
	for _, el := range p.Elements {
		if pl, ok := el.(*Placeable); ok && b.exprUsesArgs(pl.Expr, seen) {
			return true
		}
	}
	return false
}

func (b *Bundle) exprUsesArgs(expr Expression, seen map[*Pattern]struct{}) bool {
	switch e := expr.(type) {
	case *VariableReference:
		return true
	case *MessageReference:
		msg, ok := b.messages[e.ID]
		if !ok {
			return false
		}
		if e.Attribute != "" {
			return b.usesArgs(findAttribute(msg.Attributes, e.Attribute), seen)
		}
		return b.usesArgs(msg.Value, seen)
	case *FunctionReference:
		if e.Args == nil {
			return false
		}
		for _, a := range e.Args.Positional {
			if b.exprUsesArgs(a, seen) {
				return true
			}
		}
		return false
	case *SelectExpression:
		if b.exprUsesArgs(e.Selector, seen) {
			return true
		}
		for _, v := range e.Variants {
			if b.usesArgs(v.Value, seen) {
				return true
			}
		}
		return false
	case *Placeable:
		return b.exprUsesArgs(e.Expr, seen)
	default:
		return false
	}
}
