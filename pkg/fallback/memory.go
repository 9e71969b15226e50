package fallback

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Memory is an in-process Store. Its contents are lost on exit.
type Memory struct {
	mu    sync.Mutex
	lists map[string][]json.RawMessage
}

func NewMemory() *Memory {
	return &Memory{lists: make(map[string][]json.RawMessage)}
}

func (m *Memory) Append(_ context.Context, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode fallback entry: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists[key] = append(m.lists[key], raw)
	return nil
}

func (m *Memory) List(_ context.Context, key string, out interface{}) error {
	m.mu.Lock()
	list := append([]json.RawMessage(nil), m.lists[key]...)
	m.mu.Unlock()
	return decodeList(list, out)
}

func (m *Memory) Replace(_ context.Context, key string, vs interface{}) error {
	list, err := encodeList(vs)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(list) == 0 {
		delete(m.lists, key)
		return nil
	}
	m.lists[key] = list
	return nil
}

func (m *Memory) Close() error { return nil }
