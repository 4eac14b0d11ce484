package http

import (
	"bytes"
	"encoding/json"
	"sort"
)

// Params is a string map that remembers insertion order. Keys are
// case-sensitive and unique; setting an existing key replaces its value in
// place. The zero value is ready to use.
type Params struct {
	keys []string
	vals map[string]string
}

// NewParams returns an empty Params.
func NewParams() *Params {
	return &Params{vals: make(map[string]string)}
}

// ParamsFromMap builds Params from m, inserting keys in sorted order so the
// result does not depend on map iteration.
func ParamsFromMap(m map[string]string) *Params {
	p := NewParams()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		p.Set(k, m[k])
	}
	return p
}

// Set upserts key.
func (p *Params) Set(key, value string) {
	if p.vals == nil {
		p.vals = make(map[string]string)
	}
	if _, ok := p.vals[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.vals[key] = value
}

// Get returns the value stored under key.
func (p *Params) Get(key string) (string, bool) {
	if p == nil {
		return "", false
	}
	v, ok := p.vals[key]
	return v, ok
}

// Value returns the value stored under key or "".
func (p *Params) Value(key string) string {
	v, _ := p.Get(key)
	return v
}

// Del removes key. It is a no-op if key is absent.
func (p *Params) Del(key string) {
	if p == nil {
		return
	}
	if _, ok := p.vals[key]; !ok {
		return
	}
	delete(p.vals, key)
	for i, k := range p.keys {
		if k == key {
			p.keys = append(p.keys[:i], p.keys[i+1:]...)
			break
		}
	}
}

// Len returns the number of keys.
func (p *Params) Len() int {
	if p == nil {
		return 0
	}
	return len(p.keys)
}

// Keys returns the keys in insertion order.
func (p *Params) Keys() []string {
	if p == nil {
		return nil
	}
	return append([]string(nil), p.keys...)
}

// Each calls fn for every pair in insertion order.
func (p *Params) Each(fn func(key, value string)) {
	if p == nil {
		return
	}
	for _, k := range p.keys {
		fn(k, p.vals[k])
	}
}

// Clone returns an independent copy.
func (p *Params) Clone() *Params {
	c := NewParams()
	p.Each(c.Set)
	return c
}

// Map returns the pairs as a plain map.
func (p *Params) Map() map[string]string {
	m := make(map[string]string, p.Len())
	p.Each(func(k, v string) { m[k] = v })
	return m
}

// MarshalJSON encodes p as a JSON object with keys in insertion order.
func (p *Params) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range p.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(p.vals[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
