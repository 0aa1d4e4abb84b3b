package l10n

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Function is callable from catalogs as NAME(positional..., name: value).
// Arguments arrive already rendered to strings.
type Function func(positional []string, named map[string]string) (string, error)

///////////////////////////////////////////////////////////////////////////////
// BUILT-IN FUNCTIONS
///////////////////////////////////////////////////////////////////////////////

func builtinFunctions(b *Bundle) map[string]Function {
	return map[string]Function{
		"NUMBER": b.formatNumber,
	}
}

// formatNumber implements NUMBER($n, minimumFractionDigits: 2, maximumFractionDigits: 2)
// with the bundle's locale separators.
func (b *Bundle) formatNumber(positional []string, named map[string]string) (string, error) {
	if len(positional) != 1 {
		return "", errors.New("NUMBER takes exactly one positional argument")
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(positional[0]), 64)
	if err != nil {
		return "", fmt.Errorf("NUMBER: cannot parse %q", positional[0])
	}

	var opts []number.Option
	for name, raw := range named {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return "", fmt.Errorf("NUMBER: invalid %s %q", name, raw)
		}
		switch name {
		case "minimumFractionDigits":
			opts = append(opts, number.MinFractionDigits(n))
		case "maximumFractionDigits":
			opts = append(opts, number.MaxFractionDigits(n))
		default:
			return "", fmt.Errorf("NUMBER: unknown option %q", name)
		}
	}
	return b.printer().Sprintf("%v", number.Decimal(f, opts...)), nil
}

func (b *Bundle) printer() *message.Printer {
	return b.printers.get(b.tag.String(), func() *message.Printer {
		return message.NewPrinter(b.tag.LanguageTag())
	})
}
