package peek

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-json"
)

// Section is a string-keyed map that remembers insertion order. It marshals
// to a JSON object whose members follow that order.
type Section[V any] struct {
	keys   []string
	values map[string]V
}

func newSection[V any]() *Section[V] {
	return &Section[V]{values: make(map[string]V)}
}

// Set stores v under key. A new key is appended; an existing key keeps its position.
func (s *Section[V]) Set(key string, v V) {
	if _, ok := s.values[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.values[key] = v
}

// Get returns the value stored under key.
func (s *Section[V]) Get(key string) (V, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (s *Section[V]) Keys() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

// Len returns the number of keys.
func (s *Section[V]) Len() int {
	return len(s.keys)
}

// Map returns the section as a plain map.
func (s *Section[V]) Map() map[string]V {
	out := make(map[string]V, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// MarshalJSON encodes the section as an object in insertion order.
func (s *Section[V]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range s.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(s.values[key])
		if err != nil {
			return nil, fmt.Errorf("section key %q: %w", key, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Results is the aggregated snapshot of one cycle.
//
//	{"context": {"<view key>": <context>}, "data": {"<view key>": {"<metric>": <value>}}}
//
// Both sections are always present.
type Results struct {
	Context *Section[any]
	Data    *Section[map[string]any]
}

// NewResults returns an empty snapshot.
func NewResults() *Results {
	return &Results{
		Context: newSection[any](),
		Data:    newSection[map[string]any](),
	}
}

// bucket returns the data bucket for key, creating it when absent.
func (r *Results) bucket(key string) map[string]any {
	b, ok := r.Data.Get(key)
	if !ok {
		b = make(map[string]any)
		r.Data.Set(key, b)
	}
	return b
}

// MetricCount returns the number of metrics across all data buckets.
func (r *Results) MetricCount() int {
	n := 0
	for _, key := range r.Data.keys {
		n += len(r.Data.values[key])
	}
	return n
}

// MarshalJSON encodes the snapshot with "context" before "data".
func (r *Results) MarshalJSON() ([]byte, error) {
	ctxJSON, err := r.Context.MarshalJSON()
	if err != nil {
		return nil, err
	}
	dataJSON, err := r.Data.MarshalJSON()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(`{"context":`)
	buf.Write(ctxJSON)
	buf.WriteString(`,"data":`)
	buf.Write(dataJSON)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Aggregate merges the views into one snapshot, in slice order.
//
// A view with context contributes Context under its key. Every view gets a
// data bucket under its key, even when it reports nothing. Views sharing a
// key share a bucket, and a later view overwrites metrics of the same name.
// The first error aborts the aggregation.
func Aggregate(ctx context.Context, views []View) (*Results, error) {
	results := NewResults()
	for _, v := range views {
		key := v.Key()

		if v.HasContext() {
			c, err := v.Context(ctx)
			if err != nil {
				return nil, fmt.Errorf("view %q context: %w", key, err)
			}
			results.Context.Set(key, c)
		}

		metrics, err := v.Results(ctx)
		if err != nil {
			return nil, fmt.Errorf("view %q results: %w", key, err)
		}
		bucket := results.bucket(key)
		for name, value := range metrics {
			bucket[name] = value
		}
	}
	return results, nil
}
