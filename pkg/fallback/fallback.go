// Package fallback is the client's local store for submissions that could not
// reach the API. Each key holds an ordered list of JSON values.
package fallback

import (
	"context"
	"encoding/json"
	"fmt"
)

// Store keeps ordered JSON lists under string keys.
type Store interface {
	// Append adds v to the end of the list under key. Existing entries are kept.
	Append(ctx context.Context, key string, v interface{}) error
	// List decodes the list under key into out, which must be a pointer to a slice.
	// A missing key decodes as an empty list.
	List(ctx context.Context, key string, out interface{}) error
	// Replace overwrites the list under key with vs, a slice. An empty slice removes the key.
	Replace(ctx context.Context, key string, vs interface{}) error
	Close() error
}

func encodeList(vs interface{}) ([]json.RawMessage, error) {
	data, err := json.Marshal(vs)
	if err != nil {
		return nil, fmt.Errorf("encode fallback list: %w", err)
	}
	var list []json.RawMessage
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("fallback values must be a slice: %w", err)
	}
	return list, nil
}

func decodeList(list []json.RawMessage, out interface{}) error {
	if list == nil {
		list = []json.RawMessage{}
	}
	data, err := json.Marshal(list)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode fallback list: %w", err)
	}
	return nil
}
