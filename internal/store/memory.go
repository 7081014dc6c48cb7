package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Memory is an in-process Client used by tests. It preserves insertion
// order per kind, matching the ordered listing of the Postgres client.
type Memory struct {
	mu    sync.RWMutex
	data  map[string]map[string]string // kind -> id -> JSON
	order map[string][]string          // kind -> ids in insertion order
}

func NewMemory() *Memory {
	return &Memory{
		data:  make(map[string]map[string]string),
		order: make(map[string][]string),
	}
}

func (m *Memory) Get(_ context.Context, kind, id string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.data[kind][id]
	if !ok {
		return nil, ErrNotFound
	}
	return &Record{Kind: kind, ID: id, Data: data}, nil
}

func (m *Memory) Put(_ context.Context, kind string, e Entity) (string, error) {
	if e.EntityID() == "" {
		e.SetEntityID(uuid.NewString())
	}
	data, err := encode(e)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data[kind] == nil {
		m.data[kind] = make(map[string]string)
	}
	id := e.EntityID()
	if _, exists := m.data[kind][id]; !exists {
		m.order[kind] = append(m.order[kind], id)
	}
	m.data[kind][id] = data
	return id, nil
}

func (m *Memory) Delete(_ context.Context, kind, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data[kind], id)
	ids := m.order[kind]
	for i, existing := range ids {
		if existing == id {
			m.order[kind] = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Memory) List(_ context.Context, kind string, filter *Filter, opts ListOptions) ([]Record, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []Record
	for _, id := range m.order[kind] {
		data := m.data[kind][id]
		if filter != nil && !matches(data, filter) {
			continue
		}
		matched = append(matched, Record{Kind: kind, ID: id, Data: data})
	}

	if opts.Offset > 0 {
		if opts.Offset >= len(matched) {
			matched = nil
		} else {
			matched = matched[opts.Offset:]
		}
	}
	if opts.Limit <= 0 {
		return matched, false, nil
	}
	more := len(matched) > opts.Limit
	if more {
		matched = matched[:opts.Limit]
	}
	return matched, more, nil
}

func matches(data string, filter *Filter) bool {
	var fields map[string]any
	if err := json.Unmarshal([]byte(data), &fields); err != nil {
		return false
	}
	value, ok := fields[filter.Field]
	if !ok {
		return false
	}
	return fmt.Sprint(value) == filter.Value
}
