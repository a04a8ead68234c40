package view

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/louisbranch/gmworkspace/internal/platform/icons"
	"github.com/louisbranch/gmworkspace/internal/services/workspace/domain/panel"
	"github.com/louisbranch/gmworkspace/internal/services/workspace/domain/workspace"
)

// Page renders both panels. The left panel takes SplitRatio percent of the
// width and the right panel, when visible, takes the rest.
func Page(state workspace.State[templ.Component], loc Localizer) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.printf(`<main class="workspace" data-layout-version="%d" data-focused="%s" aria-label="%s">`,
			state.LayoutVersion, state.FocusedPanel, templ.EscapeString(loc.Sprintf("workspace.page.title")))

		leftWidth := 100.0
		if state.RightPanelVisible {
			leftWidth = state.SplitRatio
		}
		renderPanel(ctx, hw, workspace.Left, state.Left, leftWidth, state.FocusedPanel == workspace.Left, loc)
		if state.RightPanelVisible {
			renderPanel(ctx, hw, workspace.Right, state.Right, 100-state.SplitRatio, state.FocusedPanel == workspace.Right, loc)
		}
		hw.printf(`</main>`)
		return hw.err
	})
}

func renderPanel(ctx context.Context, hw *htmlWriter, side workspace.Side, p workspace.Panel[templ.Component], width float64, focused bool, loc Localizer) {
	class := "workspace-panel"
	if focused {
		class += " focused"
	}
	hw.printf(`<section class="%s" data-side="%s" style="width: %s%%" aria-label="%s">`,
		class, side, strconv.FormatFloat(width, 'f', -1, 64),
		templ.EscapeString(loc.Sprintf("workspace.panel."+string(side))))

	if len(p.Tabs) == 0 {
		hw.printf(`<p class="panel-empty">%s</p></section>`, templ.EscapeString(loc.Sprintf("workspace.panel.empty")))
		return
	}

	hw.printf(`<nav class="tab-strip" role="tablist">`)
	for _, tab := range p.Tabs {
		active := tab.ID == p.ActiveTabID
		title := tabTitle(tab, loc)
		class := "tab"
		if active {
			class += " active"
		}
		hw.printf(`<button type="button" role="tab" class="%s" data-tab-id="%s" aria-selected="%t">`,
			class, templ.EscapeString(tab.ID), active)
		hw.printf(`<svg class="icon" aria-hidden="true"><use href="#%s"></use></svg>`,
			templ.EscapeString(icons.LucideSymbolID(icons.LucideNameOrDefault(icons.ID(tab.Icon)))))
		hw.printf(`<span class="tab-title">%s</span>`, templ.EscapeString(title))
		if tab.Closeable {
			hw.printf(`<span class="tab-close" role="button" aria-label="%s">&times;</span>`,
				templ.EscapeString(loc.Sprintf("workspace.tab.close", title)))
		}
		hw.printf(`</button>`)
	}
	hw.printf(`</nav>`)

	if tab, ok := p.Active(); ok {
		hw.printf(`<div class="tab-body" role="tabpanel" data-tab-id="%s">`, templ.EscapeString(tab.ID))
		if tab.Content != nil && hw.err == nil {
			hw.err = tab.Content.Render(ctx, hw.w)
		}
		hw.printf(`</div>`)
	}
	hw.printf(`</section>`)
}

func tabTitle(tab workspace.Tab[templ.Component], loc Localizer) string {
	if def, ok := panel.LookupPath(tab.Path); ok {
		return loc.Sprintf(def.TitleKey)
	}
	return tab.Title
}

// htmlWriter keeps the first write error so rendering code stays linear.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (hw *htmlWriter) printf(format string, args ...any) {
	if hw.err != nil {
		return
	}
	_, hw.err = fmt.Fprintf(hw.w, format, args...)
}
