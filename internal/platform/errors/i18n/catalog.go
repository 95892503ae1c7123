// Package i18n provides internationalization support for error messages.
package i18n

import (
	"bytes"
	"strings"
	"text/template"

	"golang.org/x/text/language"
)

// Code is a machine-readable error code (duplicated from the errors package
// to avoid an import cycle).
type Code = string

// BaseLocale is the canonical source locale for catalogs.
const BaseLocale = "en-US"

// Catalog maps error codes to message templates for a specific locale.
type Catalog struct {
	locale   string
	messages map[Code]string
}

// catalogs holds the registered catalogs by canonical language tag.
// Registration happens at init time only; lookups are read-only after that.
var catalogs = map[language.Tag]*Catalog{
	language.AmericanEnglish: enUSCatalog,
	language.Korean:          koKRCatalog,
}

var matcher = language.NewMatcher([]language.Tag{
	language.AmericanEnglish, // first tag is the fallback
	language.Korean,
})

// GetCatalog returns the catalog best matching the given locale.
// Falls back to en-US if the locale is empty or unsupported.
func GetCatalog(locale string) *Catalog {
	requested := strings.TrimSpace(locale)
	if requested == "" {
		requested = BaseLocale
	}

	tag, _ := language.MatchStrings(matcher, requested)
	if c, ok := catalogs[tag]; ok {
		return c
	}

	// Matcher can return a more specific tag than the registered ones;
	// walk up to the parent before giving up.
	for t := tag; t != language.Und; t = t.Parent() {
		if c, ok := catalogs[t]; ok {
			return c
		}
	}
	return enUSCatalog
}

// Locale returns the locale of this catalog.
func (c *Catalog) Locale() string {
	return c.locale
}

// Format renders the message template with the given metadata.
// Falls back to the error code itself if no template is found.
// Templates are always executed even with nil/empty metadata so that
// template variables without metadata render as empty strings.
func (c *Catalog) Format(code Code, metadata map[string]string) string {
	tmpl, ok := c.messages[code]
	if !ok {
		return code
	}

	if metadata == nil {
		metadata = map[string]string{}
	}

	// missingkey=zero renders absent metadata keys as empty strings
	// instead of "<no value>".
	t, err := template.New("msg").Option("missingkey=zero").Parse(tmpl)
	if err != nil {
		return tmpl
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, metadata); err != nil {
		return tmpl
	}
	return buf.String()
}
