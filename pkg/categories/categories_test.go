package categories

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestLoadRegistryYAML(t *testing.T) {
	path := writeFile(t, "categories.yaml", `
categories:
  - code: electricista
    prd: PRD1000390
    label: Electricistas
    limit: 10
  - code: plomero
    prd: PRD1000922
    label: Sanitarios
`)

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}

	all := reg.All()
	if len(all) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(all))
	}

	cat, ok := reg.ByCode("electricista")
	if !ok || cat.PRD != "PRD1000390" || cat.Limit != 10 {
		t.Fatalf("unexpected category %+v", cat)
	}
}

func TestLoadRegistryRejectsDuplicatesAndMissingFields(t *testing.T) {
	dup := writeFile(t, "dup.yaml", `
categories:
  - {code: a, prd: PRD1, label: A}
  - {code: a, prd: PRD2, label: B}
`)
	if _, err := LoadRegistry(dup); err == nil {
		t.Fatalf("expected duplicate code error")
	}

	missing := writeFile(t, "missing.yaml", `
categories:
  - {code: a, label: A}
`)
	if _, err := LoadRegistry(missing); err == nil {
		t.Fatalf("expected missing prd error")
	}
}

func TestPathSlugStripsAccents(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"Electricistas", "electricistas"},
		{"Cerrajerías", "cerrajerias"},
		{"Albañiles", "albaniles"},
		{"Aire Acondicionado", "aire-acondicionado"},
		{"Ópticas", "opticas"},
	}

	for _, tt := range tests {
		c := Category{Label: tt.label}
		if got := c.PathSlug(); got != tt.want {
			t.Errorf("PathSlug(%q) = %q; want %q", tt.label, got, tt.want)
		}
	}
}
