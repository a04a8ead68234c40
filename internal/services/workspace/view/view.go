// Package view renders the workspace and the panel content it hosts as
// templ components.
package view

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/louisbranch/gmworkspace/internal/platform/i18n/catalog"
)

// Localizer resolves catalog keys into display text.
type Localizer interface {
	Sprintf(key message.Reference, args ...any) string
}

// Printer returns a message printer for the closest loaded locale.
func Printer(locale string) *message.Printer {
	return message.NewPrinter(language.Make(catalog.Default().Match(locale)))
}
