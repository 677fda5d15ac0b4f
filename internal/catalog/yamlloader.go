package catalog

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the top-level structure of a word-catalog YAML file.
//
// Example:
//
//	catalog:
//	  name: "Estonian starter words"
//	  language: et
//	levels:
//	  A1:
//	    greetings:
//	      - id: w_tere
//	        text: Tere
//	        ipa: "ˈte.re"
//	        translation: "Hello"
type File struct {
	Catalog Meta                             `yaml:"catalog"`
	Levels  map[string]map[string][]WordItem `yaml:"levels"`
}

// Meta holds top-level metadata for a word catalog.
type Meta struct {
	// Name is the catalog's display name.
	Name string `yaml:"name"`

	// Language is the BCP-47 tag of the practice language (e.g., "et").
	Language string `yaml:"language"`
}

// LoadFile reads and parses a word-catalog YAML file from disk and builds a
// [Catalog] from it.
func LoadFile(path string, opts ...Option) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open %q: %w", path, err)
	}
	defer f.Close()

	c, err := LoadFromReader(f, opts...)
	if err != nil {
		return nil, fmt.Errorf("catalog: parse %q: %w", path, err)
	}
	return c, nil
}

// LoadFromReader parses catalog YAML from an [io.Reader] and builds a
// [Catalog]. The reader is consumed entirely; the caller is responsible for
// closing it.
func LoadFromReader(r io.Reader, opts ...Option) (*Catalog, error) {
	var file File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("catalog: decode yaml: %w", err)
	}
	if len(file.Levels) == 0 {
		return nil, fmt.Errorf("catalog: no levels defined")
	}
	return New(file.Levels, opts...)
}
