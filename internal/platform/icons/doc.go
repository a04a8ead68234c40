// Package icons names the icons panels and tabs may show.
//
// Ids are stable and presentation-free; the lucide table maps each id to a
// sprite symbol and falls back to a generic symbol for unknown ids.
package icons
