package l10n

import (
	"errors"
	"log/slog"
	"slices"
	"sort"
	"strings"

	"golang.org/x/text/message"
)

// Bundle is the parsed, queryable form of one catalog. It is immutable after
// construction and safe for concurrent use.
type Bundle struct {
	tag       Tag
	name      string
	messages  map[string]*Message
	terms     map[string]*Term
	functions map[string]Function
	logger    *slog.Logger

	compiled memoizer[*compiledPattern]
	rendered memoizer[rendering]
	printers memoizer[*message.Printer]
}

// compiledPattern is the lookup-ready form of an addressable pattern.
type compiledPattern struct {
	pattern *Pattern
	// static is set when the output cannot depend on caller arguments.
	static bool
}

type rendering struct {
	text string
	errs []error
}

// NewBundle builds a bundle from an already parsed resource.
// Duplicate ids resolve to the last definition.
func NewBundle(tag Tag, res *Resource, opts ...Option) *Bundle {
	o := newOptions(opts)
	b := &Bundle{
		tag:      tag,
		messages: make(map[string]*Message, len(res.Messages)),
		terms:    make(map[string]*Term, len(res.Terms)),
		logger:   o.logger,
	}
	b.functions = builtinFunctions(b)
	for name, fn := range o.functions {
		b.functions[name] = fn
	}

	for _, m := range res.Messages {
		if prev, ok := b.messages[m.ID]; ok {
			b.logger.Warn("duplicate message in catalog, keeping the last definition",
				"language", tag.String(), "id", m.ID, "first_offset", prev.Offset, "last_offset", m.Offset)
		}
		b.messages[m.ID] = m
	}
	for _, t := range res.Terms {
		if prev, ok := b.terms[t.ID]; ok {
			b.logger.Warn("duplicate term in catalog, keeping the last definition",
				"language", tag.String(), "id", "-"+t.ID, "first_offset", prev.Offset, "last_offset", t.Offset)
		}
		b.terms[t.ID] = t
	}

	b.name = b.resolveName()
	b.logger.Debug("loaded language", "language", tag.String(), "name", b.name)
	return b
}

func (b *Bundle) resolveName() string {
	name, err := b.Lookup(LanguageNameID, nil)
	if err != nil || name == "" {
		b.logger.Warn("catalog does not define a language name, using the message id instead",
			"language", b.tag.String(), "id", LanguageNameID)
		return LanguageNameID
	}
	return name
}

// Tag returns the language of the bundle.
func (b *Bundle) Tag() Tag { return b.tag }

// Name returns the human-readable language name from `language_name`.
func (b *Bundle) Name() string { return b.name }

// HasMessage reports whether id (or id.attribute) resolves to a pattern.
func (b *Bundle) HasMessage(id string) bool {
	return b.pattern(id) != nil
}

// MessageIDs returns the ids of all messages in sorted order. Terms are not included.
func (b *Bundle) MessageIDs() []string {
	ids := make([]string, 0, len(b.messages))
	for id := range b.messages {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Lookup formats the message id with args. Formatting problems are logged
// and the best-effort text is still returned; only a missing message is an
// error.
func (b *Bundle) Lookup(id string, args Args) (string, error) {
	text, warnings, err := b.Format(id, args)
	if err != nil {
		return "", err
	}
	if len(warnings) > 0 {
		b.logger.Warn("errors while localizing",
			"id", id, "language", b.tag.String(), "args", args, "error", errors.Join(warnings...))
	}
	return text, nil
}

// Format is Lookup without logging: formatting warnings are returned to the caller.
func (b *Bundle) Format(id string, args Args) (string, []error, error) {
	cp := b.compile(id)
	if cp == nil {
		return "", nil, &MessageNotFoundError{ID: id, Tag: b.tag}
	}

	if cp.static {
		r := b.rendered.get(id, func() rendering {
			s := newScope(b, nil)
			return rendering{text: s.resolvePattern(cp.pattern), errs: s.errs}
		})
		return r.text, slices.Clone(r.errs), nil
	}

	s := newScope(b, args)
	text := s.resolvePattern(cp.pattern)
	return text, s.errs, nil
}

// compile returns nil for unknown ids without caching them.
func (b *Bundle) compile(id string) *compiledPattern {
	p := b.pattern(id)
	if p == nil {
		return nil
	}
	return b.compiled.get(id, func() *compiledPattern {
		return &compiledPattern{pattern: p, static: !b.usesArgs(p, make(map[*Pattern]struct{}))}
	})
}

// pattern finds the value addressed by "message" or "message.attribute".
func (b *Bundle) pattern(id string) *Pattern {
	msgID, attr, hasAttr := strings.Cut(id, ".")
	msg, ok := b.messages[msgID]
	if !ok {
		return nil
	}
	if hasAttr {
		return findAttribute(msg.Attributes, attr)
	}
	return msg.Value
}
