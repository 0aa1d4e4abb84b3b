package l10n

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

///////////////////////////////////////////////////////////////////////////////
// CATALOG PARSER
///////////////////////////////////////////////////////////////////////////////

// parser reads catalog text into a Resource. It never stops at the first
// error: a malformed entry is recorded and skipped, and parsing resumes at
// the next line that can start an entry.
type parser struct {
	src   string
	pos   int
	errs  []*SyntaxError
	depth int
}

// parseResource parses src, which must already be valid UTF-8 with LF line
// endings. The returned errors are in file order.
func parseResource(src string) (*Resource, []*SyntaxError) {
	p := &parser{src: src}
	res := p.parse()
	p.locate()
	return res, p.errs
}

func (p *parser) parse() *Resource {
	res := &Resource{}
	var comment string

	for {
		p.skipBlankBlock()
		if p.eof() {
			break
		}

		start := p.pos
		c := p.src[p.pos]
		if c == '#' {
			text, level, err := p.parseComment()
			comment = ""
			if err != nil {
				p.errs = append(p.errs, err)
				p.skipJunk(start)
				continue
			}
			// Only a single-# comment directly above an entry belongs to it.
			if level == 1 && !p.eof() && isEntryStart(p.src[p.pos]) && p.src[p.pos] != '#' {
				comment = text
			}
			continue
		}

		var err error
		switch {
		case c == '-':
			var t *Term
			if t, err = p.parseTerm(); err == nil {
				t.Comment = comment
				res.Terms = append(res.Terms, t)
			}
		case isIdentStart(c):
			var m *Message
			if m, err = p.parseMessage(); err == nil {
				m.Comment = comment
				res.Messages = append(res.Messages, m)
			}
		default:
			err = p.errorf(start, "expected a message, term or comment at the start of the line")
		}
		comment = ""

		if err != nil {
			p.errs = append(p.errs, err.(*SyntaxError))
			p.skipJunk(start)
		}
	}
	return res
}

// parseComment consumes consecutive comment lines of the same level. The
// run of `#` must be one to three long and followed by a space or a line end.
func (p *parser) parseComment() (string, int, *SyntaxError) {
	level := 0
	var lines []string
	for !p.eof() && p.src[p.pos] == '#' {
		l := 0
		for p.pos+l < len(p.src) && p.src[p.pos+l] == '#' {
			l++
		}
		if level != 0 && l != level {
			break
		}
		if next := p.pos + l; l > 3 || (next < len(p.src) && p.src[next] != ' ' && p.src[next] != '\n') {
			if level != 0 {
				break
			}
			return "", 0, p.errorf(p.pos, "expected `#`, `##` or `###` followed by a space")
		}
		level = l
		p.pos += l
		end := p.lineEnd()
		lines = append(lines, strings.TrimPrefix(p.src[p.pos:end], " "))
		p.pos = end
		if !p.eof() {
			p.pos++
		}
	}
	return strings.Join(lines, "\n"), level, nil
}

func (p *parser) parseMessage() (*Message, error) {
	start := p.pos
	id := p.parseIdentifier()
	p.skipBlankInline()
	if err := p.expect('='); err != nil {
		return nil, err
	}
	p.skipBlankInline()

	value, err := p.parsePattern()
	if err != nil {
		return nil, err
	}
	attrs, err := p.parseAttributes()
	if err != nil {
		return nil, err
	}
	if value == nil && len(attrs) == 0 {
		return nil, p.errorf(start, "expected message %q to have a value or attributes", id)
	}
	if err := p.expectLineEnd(); err != nil {
		return nil, err
	}
	return &Message{ID: id, Value: value, Attributes: attrs, Offset: start}, nil
}

func (p *parser) parseTerm() (*Term, error) {
	start := p.pos
	p.pos++ // -
	if p.eof() || !isIdentStart(p.src[p.pos]) {
		return nil, p.errorf(p.pos, "expected a term identifier after `-`")
	}
	id := p.parseIdentifier()
	p.skipBlankInline()
	if err := p.expect('='); err != nil {
		return nil, err
	}
	p.skipBlankInline()

	value, err := p.parsePattern()
	if err != nil {
		return nil, err
	}
	if value == nil {
		return nil, p.errorf(start, "expected term %q to have a value", "-"+id)
	}
	attrs, err := p.parseAttributes()
	if err != nil {
		return nil, err
	}
	if err := p.expectLineEnd(); err != nil {
		return nil, err
	}
	return &Term{ID: id, Value: value, Attributes: attrs, Offset: start}, nil
}

// parseAttributes reads `.attr = pattern` lines following an entry.
func (p *parser) parseAttributes() ([]*Attribute, error) {
	var attrs []*Attribute
	for {
		save := p.pos
		p.skipBlank()
		if p.eof() || p.src[p.pos] != '.' {
			p.pos = save
			return attrs, nil
		}
		dot := p.pos
		p.pos++
		if p.eof() || !isIdentStart(p.src[p.pos]) {
			return nil, p.errorf(p.pos, "expected an attribute identifier after `.`")
		}
		id := p.parseIdentifier()
		p.skipBlankInline()
		if err := p.expect('='); err != nil {
			return nil, err
		}
		p.skipBlankInline()
		value, err := p.parsePattern()
		if err != nil {
			return nil, err
		}
		if value == nil {
			return nil, p.errorf(dot, "expected attribute %q to have a value", id)
		}
		attrs = append(attrs, &Attribute{ID: id, Value: value})
	}
}

///////////////////////////////////////////////////////////////////////////////
// PATTERNS
///////////////////////////////////////////////////////////////////////////////

// piece is an unbaked pattern fragment.
type piece struct {
	text string
	expr Expression
	// isIndent marks a line break plus the indentation of the next line.
	isIndent bool
}

// parsePattern reads text and placeables until a line that does not
// continue the pattern. It returns nil for an empty pattern.
func (p *parser) parsePattern() (*Pattern, error) {
	var pieces []piece
	commonIndent := -1

loop:
	for !p.eof() {
		switch p.src[p.pos] {
		case '{':
			expr, err := p.parsePlaceable()
			if err != nil {
				return nil, err
			}
			pieces = append(pieces, piece{expr: expr})
		case '}':
			return nil, p.errorf(p.pos, "unbalanced closing brace in text")
		case '\n':
			newlines, indent, end, ok := p.peekContinuation()
			if !ok {
				break loop
			}
			pieces = append(pieces, piece{
				text:     strings.Repeat("\n", newlines) + strings.Repeat(" ", indent),
				isIndent: true,
			})
			if commonIndent < 0 || indent < commonIndent {
				commonIndent = indent
			}
			p.pos = end
		default:
			end := p.pos
			for end < len(p.src) && !strings.ContainsRune("{}\n", rune(p.src[end])) {
				end++
			}
			pieces = append(pieces, piece{text: p.src[p.pos:end]})
			p.pos = end
		}
	}
	return bakePattern(pieces, commonIndent), nil
}

// peekContinuation looks past the newline at p.pos and any blank lines. The
// pattern continues if the next line is indented and does not start with one
// of the characters that begin a variant, an attribute or close a placeable.
func (p *parser) peekContinuation() (newlines, indent, end int, ok bool) {
	i := p.pos
	for i < len(p.src) && p.src[i] == '\n' {
		newlines++
		i++
		j := i
		for j < len(p.src) && p.src[j] == ' ' {
			j++
		}
		if j < len(p.src) && p.src[j] == '\n' {
			i = j
			continue
		}
		if j == len(p.src) || j == i {
			return 0, 0, 0, false
		}
		switch p.src[j] {
		case '[', '*', '.', '}':
			return 0, 0, 0, false
		}
		return newlines, j - i, j, true
	}
	return 0, 0, 0, false
}

// bakePattern removes the common indentation, merges adjacent text and trims
// trailing blanks.
func bakePattern(pieces []piece, commonIndent int) *Pattern {
	var (
		elements []PatternElement
		buf      strings.Builder
	)
	flush := func() {
		if buf.Len() > 0 {
			elements = append(elements, &TextElement{Value: buf.String()})
			buf.Reset()
		}
	}

	for i, pc := range pieces {
		switch {
		case pc.expr != nil:
			flush()
			elements = append(elements, &Placeable{Expr: pc.expr})
		case pc.isIndent:
			text := pc.text[:len(pc.text)-commonIndent]
			if i == 0 {
				// Block pattern: the value starts on the line after `=`.
				text = strings.TrimLeft(text, "\n")
			}
			buf.WriteString(text)
		default:
			buf.WriteString(pc.text)
		}
	}
	flush()

	if n := len(elements); n > 0 {
		if t, ok := elements[n-1].(*TextElement); ok {
			t.Value = strings.TrimRight(t.Value, " \n")
			if t.Value == "" {
				elements = elements[:n-1]
			}
		}
	}
	if len(elements) == 0 {
		return nil
	}
	return &Pattern{Elements: elements}
}

///////////////////////////////////////////////////////////////////////////////
// PLACEABLES & EXPRESSIONS
///////////////////////////////////////////////////////////////////////////////

func (p *parser) parsePlaceable() (Expression, error) {
	open := p.pos
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > maxDepth {
		return nil, p.errorf(open, "placeables nested too deeply")
	}
	p.pos++ // {
	p.skipBlank()
	if p.eof() {
		return nil, p.errorf(open, "unclosed placeable")
	}

	exprStart := p.pos
	expr, err := p.parseInlineExpression()
	if err != nil {
		return nil, err
	}
	p.skipBlank()

	if strings.HasPrefix(p.src[p.pos:], "->") {
		if err := p.checkSelector(expr, exprStart); err != nil {
			return nil, err
		}
		p.pos += 2
		p.skipBlankInline()
		if !p.eof() && p.src[p.pos] != '\n' {
			return nil, p.errorf(p.pos, "expected a new line after `->`")
		}
		variants, err := p.parseVariants()
		if err != nil {
			return nil, err
		}
		p.skipBlank()
		expr = &SelectExpression{Selector: expr, Variants: variants}
	} else if ref, ok := expr.(*TermReference); ok && ref.Attribute != "" {
		return nil, p.errorf(exprStart, "term attributes cannot be used as placeables")
	}

	if p.eof() || p.src[p.pos] != '}' {
		return nil, p.errorf(p.pos, "expected `}` to close the placeable opened at %s", p.describe(open))
	}
	p.pos++
	return expr, nil
}

func (p *parser) checkSelector(expr Expression, at int) error {
	switch e := expr.(type) {
	case *MessageReference:
		return p.errorf(at, "message references cannot be used as selectors")
	case *TermReference:
		if e.Attribute == "" {
			return p.errorf(at, "terms cannot be used as selectors")
		}
	case *Placeable:
		return p.errorf(at, "placeables cannot be used as selectors")
	}
	return nil
}

func (p *parser) parseInlineExpression() (Expression, error) {
	if p.eof() {
		return nil, p.errorf(p.pos, "expected an inline expression")
	}
	c := p.src[p.pos]
	switch {
	case c == '"':
		return p.parseStringLiteral()
	case isDigit(c) || (c == '-' && p.pos+1 < len(p.src) && isDigit(p.src[p.pos+1])):
		return p.parseNumberLiteral()
	case c == '$':
		p.pos++
		if p.eof() || !isIdentStart(p.src[p.pos]) {
			return nil, p.errorf(p.pos, "expected a variable name after `$`")
		}
		return &VariableReference{Name: p.parseIdentifier()}, nil
	case c == '-':
		p.pos++
		if p.eof() || !isIdentStart(p.src[p.pos]) {
			return nil, p.errorf(p.pos, "expected a term identifier after `-`")
		}
		ref := &TermReference{ID: p.parseIdentifier()}
		attr, err := p.parseAttributeAccessor()
		if err != nil {
			return nil, err
		}
		ref.Attribute = attr
		if p.peekCall() {
			if ref.Args, err = p.parseCallArguments(); err != nil {
				return nil, err
			}
		}
		return ref, nil
	case c == '{':
		expr, err := p.parsePlaceable()
		if err != nil {
			return nil, err
		}
		return &Placeable{Expr: expr}, nil
	case isIdentStart(c):
		start := p.pos
		id := p.parseIdentifier()
		if p.peekCall() {
			if !isFunctionName(id) {
				return nil, p.errorf(start, "function names must be upper-case, got %q", id)
			}
			args, err := p.parseCallArguments()
			if err != nil {
				return nil, err
			}
			return &FunctionReference{Name: id, Args: args}, nil
		}
		attr, err := p.parseAttributeAccessor()
		if err != nil {
			return nil, err
		}
		return &MessageReference{ID: id, Attribute: attr}, nil
	default:
		return nil, p.errorf(p.pos, "expected an inline expression")
	}
}

func (p *parser) parseAttributeAccessor() (string, error) {
	if p.eof() || p.src[p.pos] != '.' {
		return "", nil
	}
	p.pos++
	if p.eof() || !isIdentStart(p.src[p.pos]) {
		return "", p.errorf(p.pos, "expected an attribute identifier after `.`")
	}
	return p.parseIdentifier(), nil
}

// peekCall reports whether an argument list follows, allowing blanks before `(`.
func (p *parser) peekCall() bool {
	i := p.pos
	for i < len(p.src) && (p.src[i] == ' ' || p.src[i] == '\n') {
		i++
	}
	if i < len(p.src) && p.src[i] == '(' {
		p.pos = i
		return true
	}
	return false
}

func (p *parser) parseCallArguments() (*CallArguments, error) {
	open := p.pos
	p.pos++ // (
	args := &CallArguments{}
	seen := make(map[string]bool)

	for {
		p.skipBlank()
		if p.eof() {
			return nil, p.errorf(open, "unclosed argument list")
		}
		if p.src[p.pos] == ')' {
			p.pos++
			return args, nil
		}

		argStart := p.pos
		expr, err := p.parseInlineExpression()
		if err != nil {
			return nil, err
		}
		p.skipBlank()

		if !p.eof() && p.src[p.pos] == ':' {
			ref, ok := expr.(*MessageReference)
			if !ok || ref.Attribute != "" {
				return nil, p.errorf(argStart, "named argument names must be simple identifiers")
			}
			p.pos++
			p.skipBlank()
			valStart := p.pos
			val, err := p.parseInlineExpression()
			if err != nil {
				return nil, err
			}
			switch val.(type) {
			case *StringLiteral, *NumberLiteral:
			default:
				return nil, p.errorf(valStart, "named argument %q must be a string or number literal", ref.ID)
			}
			if seen[ref.ID] {
				return nil, p.errorf(argStart, "duplicate named argument %q", ref.ID)
			}
			seen[ref.ID] = true
			args.Named = append(args.Named, &NamedArgument{Name: ref.ID, Value: val})
		} else {
			if len(args.Named) > 0 {
				return nil, p.errorf(argStart, "positional arguments must come before named arguments")
			}
			args.Positional = append(args.Positional, expr)
		}

		p.skipBlank()
		if p.eof() {
			return nil, p.errorf(open, "unclosed argument list")
		}
		switch p.src[p.pos] {
		case ',':
			p.pos++
		case ')':
		default:
			return nil, p.errorf(p.pos, "expected `,` or `)` in argument list")
		}
	}
}

func (p *parser) parseVariants() ([]*Variant, error) {
	var (
		variants   []*Variant
		hasDefault bool
	)
	for {
		p.skipBlank()
		if p.eof() {
			break
		}
		start := p.pos
		isDefault := false
		if p.src[p.pos] == '*' {
			isDefault = true
			p.pos++
		}
		if p.eof() || p.src[p.pos] != '[' {
			if isDefault {
				return nil, p.errorf(p.pos, "expected `[` after `*`")
			}
			break
		}
		if isDefault && hasDefault {
			return nil, p.errorf(start, "select expression has more than one default variant")
		}
		p.pos++
		p.skipBlank()
		key, err := p.parseVariantKey()
		if err != nil {
			return nil, err
		}
		p.skipBlank()
		if err := p.expect(']'); err != nil {
			return nil, err
		}
		p.skipBlankInline()
		value, err := p.parsePattern()
		if err != nil {
			return nil, err
		}
		if value == nil {
			return nil, p.errorf(start, "expected variant [%s] to have a value", key.Name)
		}
		variants = append(variants, &Variant{Key: key, Value: value, Default: isDefault})
		hasDefault = hasDefault || isDefault
	}

	if len(variants) == 0 {
		return nil, p.errorf(p.pos, "expected at least one variant after `->`")
	}
	if !hasDefault {
		return nil, p.errorf(p.pos, "expected one of the variants to be marked as default (*)")
	}
	return variants, nil
}

func (p *parser) parseVariantKey() (VariantKey, error) {
	if p.eof() {
		return VariantKey{}, p.errorf(p.pos, "expected a variant key")
	}
	c := p.src[p.pos]
	switch {
	case isDigit(c) || c == '-':
		n, err := p.parseNumberLiteral()
		if err != nil {
			return VariantKey{}, err
		}
		return VariantKey{Name: n.Raw, Numeric: true, Number: n.Value}, nil
	case isIdentStart(c):
		return VariantKey{Name: p.parseIdentifier()}, nil
	default:
		return VariantKey{}, p.errorf(p.pos, "expected a variant key")
	}
}

func (p *parser) parseStringLiteral() (*StringLiteral, error) {
	open := p.pos
	p.pos++ // "
	var sb strings.Builder
	for {
		if p.eof() || p.src[p.pos] == '\n' {
			return nil, p.errorf(open, "unterminated string literal")
		}
		c := p.src[p.pos]
		switch c {
		case '"':
			p.pos++
			return &StringLiteral{Value: sb.String()}, nil
		case '\\':
			r, err := p.parseEscape()
			if err != nil {
				return nil, err
			}
			sb.WriteString(r)
		default:
			sb.WriteByte(c)
			p.pos++
		}
	}
}

func (p *parser) parseEscape() (string, error) {
	start := p.pos
	p.pos++ // \
	if p.eof() {
		return "", p.errorf(start, "unterminated escape sequence")
	}
	c := p.src[p.pos]
	p.pos++
	switch c {
	case '\\', '"':
		return string(c), nil
	case 'u', 'U':
		n := 4
		if c == 'U' {
			n = 6
		}
		if p.pos+n > len(p.src) {
			return "", p.errorf(start, "invalid unicode escape sequence")
		}
		code, err := strconv.ParseUint(p.src[p.pos:p.pos+n], 16, 32)
		if err != nil {
			return "", p.errorf(start, "invalid unicode escape sequence %q", p.src[start:p.pos+n])
		}
		p.pos += n
		r := rune(code)
		if !utf8.ValidRune(r) {
			return "\uFFFD", nil
		}
		return string(r), nil
	default:
		return "", p.errorf(start, "unknown escape sequence \\%c", c)
	}
}

func (p *parser) parseNumberLiteral() (*NumberLiteral, error) {
	start := p.pos
	if p.src[p.pos] == '-' {
		p.pos++
	}
	digits := p.skipDigits()
	if digits == 0 {
		return nil, p.errorf(p.pos, "expected a digit")
	}
	if !p.eof() && p.src[p.pos] == '.' {
		p.pos++
		if p.skipDigits() == 0 {
			return nil, p.errorf(p.pos, "expected a digit after the decimal point")
		}
	}
	raw := p.src[start:p.pos]
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, p.errorf(start, "invalid number %q", raw)
	}
	return &NumberLiteral{Raw: raw, Value: f}, nil
}

///////////////////////////////////////////////////////////////////////////////
// LOW-LEVEL HELPERS
///////////////////////////////////////////////////////////////////////////////

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) errorf(offset int, format string, args ...any) *SyntaxError {
	return &SyntaxError{Offset: offset, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) expect(c byte) error {
	if p.eof() || p.src[p.pos] != c {
		return p.errorf(p.pos, "expected %q", c)
	}
	p.pos++
	return nil
}

func (p *parser) expectLineEnd() error {
	if p.eof() {
		return nil
	}
	if p.src[p.pos] != '\n' {
		return p.errorf(p.pos, "expected a new line")
	}
	p.pos++
	return nil
}

func (p *parser) parseIdentifier() string {
	start := p.pos
	p.pos++
	for !p.eof() && isIdentChar(p.src[p.pos]) {
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *parser) skipDigits() int {
	n := 0
	for !p.eof() && isDigit(p.src[p.pos]) {
		p.pos++
		n++
	}
	return n
}

func (p *parser) skipBlankInline() {
	for !p.eof() && p.src[p.pos] == ' ' {
		p.pos++
	}
}

func (p *parser) skipBlank() {
	for !p.eof() && (p.src[p.pos] == ' ' || p.src[p.pos] == '\n') {
		p.pos++
	}
}

// skipBlankBlock consumes whole lines that contain only spaces.
func (p *parser) skipBlankBlock() {
	for {
		i := p.pos
		for i < len(p.src) && p.src[i] == ' ' {
			i++
		}
		switch {
		case i == len(p.src):
			p.pos = i
			return
		case p.src[i] == '\n':
			p.pos = i + 1
		default:
			return
		}
	}
}

func (p *parser) lineEnd() int {
	if i := strings.IndexByte(p.src[p.pos:], '\n'); i >= 0 {
		return p.pos + i
	}
	return len(p.src)
}

// skipJunk moves past the line holding start and every following line that
// cannot begin an entry.
func (p *parser) skipJunk(start int) {
	p.pos = start
	for {
		p.pos = p.lineEnd()
		if p.eof() {
			return
		}
		p.pos++
		if !p.eof() && isEntryStart(p.src[p.pos]) {
			return
		}
	}
}

// describe formats an offset as line:column for messages.
func (p *parser) describe(offset int) string {
	line, col := position(p.src, offset)
	return fmt.Sprintf("%d:%d", line, col)
}

// locate fills in Line and Column for every recorded error in one forward
// pass. Errors are mostly in offset order; the scan restarts when one is not.
func (p *parser) locate() {
	line, lineStart, scanned := 1, 0, 0
	for _, e := range p.errs {
		offset := min(e.Offset, len(p.src))
		if offset < scanned {
			line, lineStart, scanned = 1, 0, 0
		}
		for {
			i := strings.IndexByte(p.src[scanned:offset], '\n')
			if i < 0 {
				break
			}
			line++
			scanned += i + 1
			lineStart = scanned
		}
		scanned = offset
		e.Line = line
		e.Column = utf8.RuneCountInString(p.src[lineStart:offset]) + 1
	}
}

func position(src string, offset int) (line, col int) {
	offset = min(offset, len(src))
	before := src[:offset]
	line = strings.Count(before, "\n") + 1
	lineStart := strings.LastIndexByte(before, '\n') + 1
	col = utf8.RuneCountInString(before[lineStart:]) + 1
	return line, col
}

func isIdentStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || isDigit(c) || c == '_' || c == '-'
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isEntryStart(c byte) bool {
	return isIdentStart(c) || c == '-' || c == '#'
}

func isFunctionName(id string) bool {
	for i := 0; i < len(id); i++ {
		c := id[i]
		if !(c >= 'A' && c <= 'Z') && !(i > 0 && (isDigit(c) || c == '_' || c == '-')) {
			return false
		}
	}
	return true
}
