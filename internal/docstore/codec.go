package docstore

import (
	"encoding/json"
	"fmt"
)

// Encode converts a typed value into a Document through its JSON form.
func Encode(v interface{}) (Document, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return doc, nil
}

// Decode populates a typed destination from a Document.
func Decode(doc Document, dst interface{}) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return nil
}

// DecodeAll maps a slice of documents onto a typed slice pointer.
func DecodeAll(docs []Document, dst interface{}) error {
	raw, err := json.Marshal(docs)
	if err != nil {
		return fmt.Errorf("decode documents: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode documents: %w", err)
	}
	return nil
}

// matchText mirrors the Postgres text comparison used for equality filters:
// both sides are compared by their textual JSON rendering.
func matchText(value interface{}, want interface{}) bool {
	return fmt.Sprint(value) == fmt.Sprint(want)
}
