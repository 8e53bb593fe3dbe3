// Package locale holds user-facing strings in an x/text message catalog.
package locale

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

var english = map[string]string{
	"comp-leap-user-leaps-other": "%s leaps!",
	"popup-not-enough-stamina":   "Not enough stamina",
	"action-leap-forward-name":   "Leap",
	"action-leap-forward-desc":   "Leap over low obstacles such as tables.",
}

// Localizer formats catalog messages for one language.
type Localizer struct {
	printer *message.Printer
	keys    map[string]struct{}
}

// New builds a localizer for tag from the built-in messages. Languages
// without messages get English.
func New(tag language.Tag) (*Localizer, error) {
	builder := catalog.NewBuilder(catalog.Fallback(language.English))
	keys := make(map[string]struct{}, len(english))
	for key, msg := range english {
		if err := builder.SetString(language.English, key, msg); err != nil {
			return nil, fmt.Errorf("locale: set %q: %w", key, err)
		}
		keys[key] = struct{}{}
	}
	// Printers never fall back across languages on their own, so resolve tag
	// to a language the catalog has first.
	supported := builder.Languages()
	_, index, _ := language.NewMatcher(supported).Match(tag)
	return &Localizer{
		printer: message.NewPrinter(supported[index], message.Catalog(builder)),
		keys:    keys,
	}, nil
}

// Get formats key with args. Unknown keys come back unchanged.
func (l *Localizer) Get(key string, args ...any) string {
	if l == nil {
		return key
	}
	if _, ok := l.keys[key]; !ok {
		return key
	}
	return l.printer.Sprintf(key, args...)
}

var defaultLocalizer = mustNew(language.English)

func mustNew(tag language.Tag) *Localizer {
	l, err := New(tag)
	if err != nil {
		panic(err)
	}
	return l
}

// Get formats key with the default English localizer.
func Get(key string, args ...any) string {
	return defaultLocalizer.Get(key, args...)
}
