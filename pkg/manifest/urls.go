package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// URLEntry is one target key and its artifact URL.
type URLEntry struct {
	Key string
	URL string
}

// URLSet maps target keys to URLs, keeping insertion order. It encodes as a
// JSON object whose members appear in that order.
type URLSet struct {
	entries []URLEntry
}

// Add appends a key. Keys are unique.
func (s *URLSet) Add(key, url string) error {
	if _, ok := s.Get(key); ok {
		return fmt.Errorf("duplicate url key %q", key)
	}
	s.entries = append(s.entries, URLEntry{Key: key, URL: url})
	return nil
}

// Get returns the URL stored for key.
func (s URLSet) Get(key string) (string, bool) {
	for _, e := range s.entries {
		if e.Key == key {
			return e.URL, true
		}
	}
	return "", false
}

// Len returns the number of entries.
func (s URLSet) Len() int {
	return len(s.entries)
}

// Entries returns a copy of the entries in order.
func (s URLSet) Entries() []URLEntry {
	return append([]URLEntry(nil), s.entries...)
}

// Map returns the entries as an unordered map.
func (s URLSet) Map() map[string]string {
	m := make(map[string]string, len(s.entries))
	for _, e := range s.entries {
		m[e.Key] = e.URL
	}
	return m
}

func (s URLSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range s.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		url, err := json.Marshal(e.URL)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(url)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (s *URLSet) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("urls must be a JSON object")
	}

	var set URLSet
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected url key %v", tok)
		}

		var url string
		if err := dec.Decode(&url); err != nil {
			return fmt.Errorf("url for %q: %w", key, err)
		}
		if err := set.Add(key, url); err != nil {
			return err
		}
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	*s = set
	return nil
}
