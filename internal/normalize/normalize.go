package normalize

// Package normalize maps raw scraped strings to the canonical values stored
// in the directory. All functions are pure; the lookup tables are fixed.

import (
	"regexp"
	"strings"
)

const countryCode = "598"

var nonDigits = regexp.MustCompile(`\D`)

// Phone canonicalizes a raw phone string to a country-prefixed digit string.
// It returns "" for masked or too-short numbers. Idempotent on already
// normalized values.
func Phone(raw string) string {
	if raw == "" {
		return ""
	}

	cleaned := nonDigits.ReplaceAllString(raw, "")

	// Numbers shown with asterisks on the source site are incomplete.
	if len(cleaned) < 8 || strings.Contains(raw, "*") {
		return ""
	}

	switch {
	case len(cleaned) == 8:
		cleaned = countryCode + cleaned
	case len(cleaned) == 9 && strings.HasPrefix(cleaned, "0"):
		cleaned = countryCode + cleaned[1:]
	}

	return cleaned
}

// neighborhoods maps lowercase alternate spellings to the canonical display
// form. Unknown neighborhoods pass through trimmed; no title-casing is
// inferred for them.
var neighborhoods = map[string]string{
	"la blanqueada":  "La Blanqueada",
	"blanqueada":     "La Blanqueada",
	"punta carretas": "Punta Carretas",
	"tres cruces":    "Tres Cruces",
	"piedras blancas": "Piedras Blancas",
	"goes":           "Goes",
	"aguada":         "Aguada",
	"malvin":         "Malvín",
	"malvín":         "Malvín",
	"pocitos":        "Pocitos",
	"centro":         "Centro",
	"cordon":         "Cordón",
	"cordón":         "Cordón",
	"carrasco":       "Carrasco",
	"buceo":          "Buceo",
	"parque batlle":  "Parque Batlle",
	"parque rodó":    "Parque Rodó",
	"la teja":        "La Teja",
	"cerro":          "Cerro",
	"union":          "Unión",
	"unión":          "Unión",
	"prado":          "Prado",
	"sayago":         "Sayago",
	"paso molino":    "Paso Molino",
	"barrio sur":     "Barrio Sur",
	"ciudad vieja":   "Ciudad Vieja",
	"palermo":        "Palermo",
}

// Neighborhood canonicalizes a raw neighborhood name. Placeholder values
// ("", ".", "—") yield "".
func Neighborhood(raw string) string {
	if raw == "" || raw == "." || raw == "—" {
		return ""
	}

	lower := strings.ToLower(strings.TrimSpace(raw))
	if canonical, ok := neighborhoods[lower]; ok {
		return canonical
	}
	return strings.TrimSpace(raw)
}

// categories maps source-site category labels and slugs (accented and
// unaccented variants) to internal category codes.
var categories = map[string]string{
	"electricistas": "electricista",
	"electricista":  "electricista",
	"plomeros":      "plomero",
	"sanitarios":    "plomero",
	"albaniles":     "albanil",
	"albañiles":     "albanil",
	"pintores":      "pintor",
	"carpinteros":   "carpintero",
	"carpinterias":  "carpintero",
	"carpinterías":  "carpintero",
	"jardineros":    "jardinero",
	"jardineria":    "jardinero",
	"jardinería":    "jardinero",
	"mecanicos":     "mecanico",
	"mecánicos":     "mecanico",
	"cerrajeros":    "cerrajero",
	"cerrajerias":   "cerrajero",
	"cerrajerías":   "cerrajero",
	"mudanzas":      "mudanzas",
	"limpieza":      "limpieza",
	"veterinarios":  "veterinario",
	"veterinarias":  "veterinario",
	"abogados":      "abogado",
	"contadores":    "contador",
}

// Category maps a source category label to an internal category code.
// Unknown labels yield "".
func Category(raw string) string {
	lower := strings.ToLower(strings.TrimSpace(raw))
	return categories[lower]
}
