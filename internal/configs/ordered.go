package configs

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Pair is one key/value entry of a JSON object with its document position
// preserved. Classification and redistribution tables are order-sensitive,
// so they cannot round-trip through a Go map.
type Pair struct {
	Key   string
	Value json.RawMessage
}

// decodeOrderedObject decodes a JSON object into pairs in document order.
func decodeOrderedObject(data []byte) ([]Pair, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected JSON object, got %v", tok)
	}

	var pairs []Pair
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", keyTok)
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("value for key %q: %w", key, err)
		}
		pairs = append(pairs, Pair{Key: key, Value: value})
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return pairs, nil
}

// decodeStringList decodes a raw JSON array of strings.
func decodeStringList(raw json.RawMessage) ([]string, error) {
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// decodeString decodes a raw JSON string value.
func decodeString(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", err
	}
	return s, nil
}
