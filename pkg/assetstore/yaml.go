package assetstore

import (
	"context"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v2"
)

// catalogFile is the on-disk shape of a YAML catalog.
type catalogFile struct {
	Animations []Descriptor `yaml:"animations"`
}

// YAMLCatalog is a Store loaded from a YAML catalog file:
//
//	animations:
//	  - name: idle_neutral_1
//	    duration: 1.5
//	    loop: true
//	    framerate: 30
type YAMLCatalog struct {
	path  string
	store *MemoryStore
}

// LoadYAMLCatalog reads and validates a catalog file.
func LoadYAMLCatalog(path string) (*YAMLCatalog, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	descriptors, err := ParseYAMLCatalog(contents)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}

	return &YAMLCatalog{
		path:  path,
		store: NewMemoryStore(descriptors...),
	}, nil
}

// ParseYAMLCatalog decodes catalog contents. Every descriptor is validated
// and names must be unique.
func ParseYAMLCatalog(contents []byte) ([]Descriptor, error) {
	var file catalogFile
	if err := yaml.UnmarshalStrict(contents, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	seen := make(map[string]bool, len(file.Animations))
	for i, d := range file.Animations {
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("animation #%d: %w", i, err)
		}
		if seen[d.Name] {
			return nil, fmt.Errorf("animation #%d: duplicate name %q", i, d.Name)
		}
		seen[d.Name] = true
	}

	return file.Animations, nil
}

// Path returns the catalog file the store was loaded from.
func (c *YAMLCatalog) Path() string {
	return c.path
}

func (c *YAMLCatalog) Lookup(ctx context.Context, name string) (Descriptor, error) {
	return c.store.Lookup(ctx, name)
}

// Names returns the catalog's asset names in sorted order.
func (c *YAMLCatalog) Names() []string {
	return c.store.Names()
}
