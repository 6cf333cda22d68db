package retell

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Document is a normalized JSON object. Keys are snake_case; lookups accept
// either the snake_case or the original wire spelling.
type Document map[string]any

// Get returns the value stored under key.
func (d Document) Get(key string) (any, bool) {
	if d == nil {
		return nil, false
	}

	if value, ok := d[key]; ok {
		return value, true
	}

	value, ok := d[Underscore(key)]

	return value, ok
}

// String returns the string stored under key, or "" when absent or not a string.
func (d Document) String(key string) string {
	value, _ := d.Get(key)
	s, _ := value.(string)

	return s
}

// Int returns the integer stored under key.
func (d Document) Int(key string) (int64, bool) {
	value, _ := d.Get(key)

	switch n := value.(type) {
	case json.Number:
		i, err := n.Int64()

		return i, err == nil
	case float64:
		return int64(n), n == float64(int64(n))
	default:
		return 0, false
	}
}

// Float returns the number stored under key.
func (d Document) Float(key string) (float64, bool) {
	value, _ := d.Get(key)

	switch n := value.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()

		return f, err == nil
	default:
		return 0, false
	}
}

// Bool returns the boolean stored under key.
func (d Document) Bool(key string) bool {
	value, _ := d.Get(key)
	b, _ := value.(bool)

	return b
}

// Doc returns the nested object stored under key.
func (d Document) Doc(key string) Document {
	value, _ := d.Get(key)
	nested, _ := value.(Document)

	return nested
}

// Decode fills v, a pointer to a struct with snake_case json tags, from d.
func (d Document) Decode(v any) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}

	err = json.Unmarshal(data, v)
	if err != nil {
		return fmt.Errorf("decoding document: %w", err)
	}

	return nil
}

// decodeData parses normalized JSON into Go values, turning every object into
// a Document. Numbers are kept as json.Number.
func decodeData(data []byte) (any, error) {
	var raw any

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	err := decoder.Decode(&raw)
	if err != nil {
		return nil, fmt.Errorf("parsing JSON body: %w", err)
	}

	return toDocuments(raw), nil
}

func toDocuments(value any) any {
	switch v := value.(type) {
	case map[string]any:
		doc := make(Document, len(v))
		for key, item := range v {
			doc[key] = toDocuments(item)
		}

		return doc
	case []any:
		for i, item := range v {
			v[i] = toDocuments(item)
		}

		return v
	default:
		return v
	}
}
