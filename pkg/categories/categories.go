package categories

// Package categories loads the scrape-category registry: which source-site
// rubros to crawl and how they map to internal category codes.

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Category is one source-site rubro to scrape.
type Category struct {
	// Code is the internal category code listings are filed under.
	Code string `json:"code" yaml:"code"`
	// PRD is the source site's rubro identifier (e.g. PRD1000390).
	PRD string `json:"prd" yaml:"prd"`
	// Label is the rubro's display name on the source site; it also forms
	// the index URL path segment.
	Label string `json:"label" yaml:"label"`
	// Limit caps how many listings to scrape for this category (0 = no cap).
	Limit int `json:"limit" yaml:"limit"`
}

type registryFile struct {
	Categories []Category `json:"categories" yaml:"categories"`
}

// Registry materializes category definitions loaded from a config file.
type Registry struct {
	mu         sync.RWMutex
	categories []Category
	idx        map[string]Category
}

// LoadRegistry loads the category registry from a YAML/JSON file.
func LoadRegistry(path string) (*Registry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("categories file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open categories file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read categories file: %w", err)
	}

	fileReg, err := parseRegistry(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(fileReg.Categories) == 0 {
		return nil, errors.New("categories file contains no categories entries")
	}

	reg := &Registry{
		categories: make([]Category, len(fileReg.Categories)),
		idx:        make(map[string]Category, len(fileReg.Categories)),
	}

	for i := range fileReg.Categories {
		cat := sanitize(fileReg.Categories[i])
		if err := validate(cat); err != nil {
			return nil, fmt.Errorf("categories[%d]: %w", i, err)
		}
		if _, exists := reg.idx[cat.Code]; exists {
			return nil, fmt.Errorf("duplicate category code %q", cat.Code)
		}
		reg.categories[i] = cat
		reg.idx[cat.Code] = cat
	}

	return reg, nil
}

// All returns all configured categories.
func (r *Registry) All() []Category {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Category, len(r.categories))
	copy(out, r.categories)
	return out
}

// ByCode returns the category entry for the given internal code, if loaded.
func (r *Registry) ByCode(code string) (Category, bool) {
	if r == nil {
		return Category{}, false
	}

	code = strings.TrimSpace(code)
	if code == "" {
		return Category{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	cat, ok := r.idx[code]
	return cat, ok
}

// PathSlug converts the source-site label into the index URL path segment,
// stripping the accents the site drops from its own URLs.
func (c Category) PathSlug() string {
	slug := strings.ToLower(c.Label)
	replacer := strings.NewReplacer("í", "i", "ñ", "n", "é", "e", "á", "a", "ó", "o", "ú", "u", " ", "-")
	return replacer.Replace(slug)
}

func parseRegistry(data []byte, ext string) (registryFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	decoders := []struct {
		name string
		ext  string
		fn   func([]byte, any) error
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var reg registryFile
		if err := d.fn(data, &reg); err == nil {
			return reg, nil
		}
	}

	return registryFile{}, errors.New("categories file format not recognized (expected YAML or JSON)")
}

func sanitize(c Category) Category {
	c.Code = strings.TrimSpace(c.Code)
	c.PRD = strings.TrimSpace(c.PRD)
	c.Label = strings.TrimSpace(c.Label)
	return c
}

func validate(c Category) error {
	if c.Code == "" {
		return errors.New("code is required")
	}
	if c.PRD == "" {
		return fmt.Errorf("prd is required for category %q", c.Code)
	}
	if c.Label == "" {
		return fmt.Errorf("label is required for category %q", c.Code)
	}
	if c.Limit < 0 {
		return fmt.Errorf("limit must not be negative for category %q", c.Code)
	}
	return nil
}
