// Package store persists entities as kind-partitioned JSON documents. The
// query surface is deliberately small: get/put/delete by kind and key plus
// equality-filtered, limit/offset paginated listing. No multi-key
// transactions are offered, so callers updating two records together must
// tolerate a one-sided write if the second put fails.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when no record matches the kind and id.
var ErrNotFound = errors.New("store: record not found")

// Entity is any model that can be keyed by the store. Put assigns a fresh
// id to entities whose id is empty.
type Entity interface {
	EntityID() string
	SetEntityID(id string)
}

// Record is a stored document: a kind, a key and the JSON-encoded entity.
type Record struct {
	Kind      string    `gorm:"primaryKey;size:64"`
	ID        string    `gorm:"primaryKey;size:64"`
	Data      string    `gorm:"type:jsonb"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

// Filter is a single equality constraint on a top-level entity field.
type Filter struct {
	Field string
	Value string
}

// ListOptions selects a limit/offset window. A zero Limit returns every
// record of the kind.
type ListOptions struct {
	Limit  int
	Offset int
}

// Client is the entity store consumed by handlers and the relationship
// maintainer. List reports whether more records remain beyond the window.
type Client interface {
	Get(ctx context.Context, kind, id string) (*Record, error)
	Put(ctx context.Context, kind string, e Entity) (string, error)
	Delete(ctx context.Context, kind, id string) error
	List(ctx context.Context, kind string, filter *Filter, opts ListOptions) ([]Record, bool, error)
}

// GetAs fetches and decodes a single entity.
func GetAs[T any](ctx context.Context, c Client, kind, id string) (*T, error) {
	rec, err := c.Get(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	var v T
	if err := json.Unmarshal([]byte(rec.Data), &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// ListAs lists and decodes entities of a kind.
func ListAs[T any](ctx context.Context, c Client, kind string, filter *Filter, opts ListOptions) ([]T, bool, error) {
	recs, more, err := c.List(ctx, kind, filter, opts)
	if err != nil {
		return nil, false, err
	}
	out := make([]T, 0, len(recs))
	for _, rec := range recs {
		var v T
		if err := json.Unmarshal([]byte(rec.Data), &v); err != nil {
			return nil, false, err
		}
		out = append(out, v)
	}
	return out, more, nil
}

func encode(e Entity) (string, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
