// Package i18n renders localized error messages from the errors namespace
// of the platform catalog.
package i18n

import (
	"maps"
	"strings"
	"sync"
	"text/template"

	i18ncatalog "github.com/louisbranch/gmworkspace/internal/platform/i18n/catalog"
)

const namespace = "errors"

// Catalog holds the error message templates of one locale.
type Catalog struct {
	locale string
	raw    map[string]string
	// compiled is nil for templates that failed to parse.
	compiled map[string]*template.Template
}

var (
	catalogsMu sync.RWMutex
	catalogs   = map[string]*Catalog{}
)

// GetCatalog returns the catalog closest to locale. Language-only or
// Accept-Language style values are matched against the embedded locales,
// and codes a locale leaves out use the base locale's templates.
func GetCatalog(locale string) *Catalog {
	requested := strings.TrimSpace(locale)
	if requested == "" {
		requested = i18ncatalog.BaseLocale
	}
	if c, ok := lookupCatalog(requested); ok {
		return c
	}

	bundle := i18ncatalog.Default()
	resolved := requested
	if !bundle.HasLocale(resolved) {
		resolved = bundle.Match(requested)
	}
	if c, ok := lookupCatalog(resolved); ok {
		return c
	}
	messages := bundle.NamespaceMessages(i18ncatalog.BaseLocale, namespace)
	maps.Copy(messages, bundle.NamespaceMessages(resolved, namespace))
	return storeCatalogIfAbsent(resolved, NewCatalog(resolved, messages))
}

// Locale returns the locale of this catalog.
func (c *Catalog) Locale() string {
	return c.locale
}

// Has reports whether the catalog carries a template for code.
func (c *Catalog) Has(code string) bool {
	_, ok := c.raw[code]
	return ok
}

// Format renders the template for code with metadata. Unknown codes render
// as the code itself; templates that fail to parse or execute render raw.
func (c *Catalog) Format(code string, metadata map[string]string) string {
	raw, ok := c.raw[code]
	if !ok {
		return code
	}
	tmpl := c.compiled[code]
	if tmpl == nil {
		return raw
	}
	if metadata == nil {
		metadata = map[string]string{}
	}
	var out strings.Builder
	if err := tmpl.Execute(&out, metadata); err != nil {
		return raw
	}
	return out.String()
}

// RegisterCatalog installs cat for locale, replacing any catalog built from
// the embedded files.
func RegisterCatalog(locale string, cat *Catalog) {
	catalogsMu.Lock()
	defer catalogsMu.Unlock()
	catalogs[locale] = cat
}

// NewCatalog compiles messages into a catalog for locale.
func NewCatalog(locale string, messages map[string]string) *Catalog {
	c := &Catalog{
		locale:   locale,
		raw:      maps.Clone(messages),
		compiled: make(map[string]*template.Template, len(messages)),
	}
	if c.raw == nil {
		c.raw = map[string]string{}
	}
	for code, text := range c.raw {
		tmpl, err := template.New(code).Parse(text)
		if err != nil {
			continue
		}
		c.compiled[code] = tmpl
	}
	return c
}

func lookupCatalog(locale string) (*Catalog, bool) {
	catalogsMu.RLock()
	defer catalogsMu.RUnlock()
	cat, ok := catalogs[locale]
	return cat, ok
}

func storeCatalogIfAbsent(locale string, candidate *Catalog) *Catalog {
	catalogsMu.Lock()
	defer catalogsMu.Unlock()
	if existing, ok := catalogs[locale]; ok {
		return existing
	}
	catalogs[locale] = candidate
	return candidate
}
