package disease

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/Brownie44l1/plantdx-api/internal/model"
)

var (
	//go:embed diseases.yaml
	catalogEN []byte
	//go:embed diseases_id.yaml
	catalogID []byte
)

// DefaultLanguage is the language of DefaultCatalog.
const DefaultLanguage = "en"

var builtinCatalogs = map[string][]byte{
	"en": catalogEN,
	"id": catalogID,
}

// Info is the static reference text shown next to a diagnosis.
type Info struct {
	Description string `yaml:"description" json:"description"`
	Treatment   string `yaml:"treatment" json:"treatment"`
	Prevention  string `yaml:"prevention" json:"prevention"`
}

// Catalog maps display class names to their Info. It is read-only after construction.
type Catalog struct {
	entries map[string]Info
	classes []string
}

// LoadCatalog parses a catalog document. It must describe every display class plus Unknown.
func LoadCatalog(data []byte) (*Catalog, error) {
	entries := make(map[string]Info)
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse disease catalog: %w", err)
	}
	if _, ok := entries[model.UnknownClass]; !ok {
		return nil, fmt.Errorf("disease catalog has no %q entry", model.UnknownClass)
	}

	classes := model.DisplayClasses()
	for _, c := range classes {
		if _, ok := entries[c]; !ok {
			return nil, fmt.Errorf("disease catalog has no entry for %q", c)
		}
	}

	return &Catalog{entries: entries, classes: classes}, nil
}

// BuiltinCatalog returns the embedded catalog written in lang ("en" or "id").
func BuiltinCatalog(lang string) (*Catalog, error) {
	data, ok := builtinCatalogs[lang]
	if !ok {
		return nil, fmt.Errorf("no built-in disease catalog for language %q", lang)
	}
	return LoadCatalog(data)
}

// DefaultCatalog returns the built-in English catalog.
func DefaultCatalog() *Catalog {
	c, err := BuiltinCatalog(DefaultLanguage)
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup returns the Info for class, or the Unknown entry.
func (c *Catalog) Lookup(class string) Info {
	if info, ok := c.entries[class]; ok {
		return info
	}
	return c.entries[model.UnknownClass]
}

// Classes lists the known disease classes in model output order, without Unknown.
func (c *Catalog) Classes() []string {
	return append([]string(nil), c.classes...)
}

// Entry pairs a class with its Info for listings.
type Entry struct {
	ClassName string `json:"class_name"`
	Info
}

// Entries lists every known class followed by Unknown.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, 0, len(c.classes)+1)
	for _, class := range c.classes {
		out = append(out, Entry{ClassName: class, Info: c.entries[class]})
	}
	return append(out, Entry{ClassName: model.UnknownClass, Info: c.entries[model.UnknownClass]})
}
