package view

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/louisbranch/gmworkspace/internal/services/workspace/domain/panel"
	"github.com/louisbranch/gmworkspace/internal/services/workspace/domain/workspace"
)

// ErrUnknownPath is returned when a path no longer maps to a registered panel.
var ErrUnknownPath = errors.New("unknown workspace path")

// NewResolver regenerates panel content from logical paths. Titles come from
// the registry so a restored tab is labelled in the reader's locale.
func NewResolver(loc Localizer) workspace.ContentResolver[templ.Component] {
	return func(path, _ string) (templ.Component, error) {
		def, ok := panel.LookupPath(path)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownPath, path)
		}
		return PanelContent(def, loc), nil
	}
}

// PanelContent renders the body of a registered panel.
func PanelContent(def panel.Definition, loc Localizer) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		title := loc.Sprintf(def.TitleKey)
		_, err := fmt.Fprintf(w,
			`<section class="panel-content" data-panel="%s"><h2>%s</h2><p>%s</p></section>`,
			templ.EscapeString(string(def.ID)),
			templ.EscapeString(title),
			templ.EscapeString(loc.Sprintf("workspace.content.path", def.Path)),
		)
		return err
	})
}
