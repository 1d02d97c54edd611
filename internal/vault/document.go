package vault

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Document is a service-identity credential record. Fields are not
// interpreted here beyond being a well-formed JSON object.
type Document map[string]any

// DecodeDocument parses a JSON object. Numbers are kept as json.Number so
// that re-encoding reproduces them exactly.
func DecodeDocument(b []byte) (Document, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: not a JSON object", ErrMalformedDocument)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data", ErrMalformedDocument)
	}
	return doc, nil
}

// LoadDocument reads a plaintext credential file.
func LoadDocument(path string) (Document, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeDocument(b)
}

// Encode returns the canonical encoding: compact JSON with sorted keys.
func (d Document) Encode() ([]byte, error) {
	return json.Marshal(d)
}

// String returns a string field.
func (d Document) String(key string) (string, bool) {
	v, ok := d[key].(string)
	return v, ok
}
