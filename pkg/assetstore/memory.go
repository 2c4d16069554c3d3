package assetstore

import (
	"context"
	"sort"
)

// MemoryStore is a map-backed Store.
type MemoryStore struct {
	descriptors map[string]Descriptor
}

// NewMemoryStore creates a store holding the given descriptors.
func NewMemoryStore(descriptors ...Descriptor) *MemoryStore {
	s := &MemoryStore{descriptors: make(map[string]Descriptor, len(descriptors))}
	for _, d := range descriptors {
		s.descriptors[d.Name] = d
	}
	return s
}

// Put adds or replaces a descriptor.
func (s *MemoryStore) Put(d Descriptor) {
	s.descriptors[d.Name] = d
}

func (s *MemoryStore) Lookup(_ context.Context, name string) (Descriptor, error) {
	d, ok := s.descriptors[name]
	if !ok {
		return Descriptor{}, notFound(name)
	}
	return d, nil
}

// Names returns the stored names in sorted order.
func (s *MemoryStore) Names() []string {
	names := make([]string, 0, len(s.descriptors))
	for name := range s.descriptors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
