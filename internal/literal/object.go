// Package literal parses and formats object-literal-like text: JSON, plus the
// looser notation authors write by hand (single quotes, bare keys, trailing
// commas, comments). Extraction and authoring share it so both sides agree on
// what a literal is.
package literal

import (
	"bytes"
	"encoding/json"
)

// Object is a string-keyed map that remembers insertion order.
type Object struct {
	keys []string
	vals map[string]any
}

func NewObject() *Object {
	return &Object{vals: make(map[string]any)}
}

// Set stores v under k. Existing keys keep their position.
func (o *Object) Set(k string, v any) {
	if o.vals == nil {
		o.vals = make(map[string]any)
	}
	if _, ok := o.vals[k]; !ok {
		o.keys = append(o.keys, k)
	}
	o.vals[k] = v
}

func (o *Object) Get(k string) (any, bool) {
	if o == nil || o.vals == nil {
		return nil, false
	}
	v, ok := o.vals[k]
	return v, ok
}

func (o *Object) Has(k string) bool {
	_, ok := o.Get(k)
	return ok
}

func (o *Object) Delete(k string) {
	if o == nil {
		return
	}
	if _, ok := o.vals[k]; !ok {
		return
	}
	delete(o.vals, k)
	for i, key := range o.keys {
		if key == k {
			o.keys = append(o.keys[:i:i], o.keys[i+1:]...)
			break
		}
	}
}

// Keys returns a copy of the keys in insertion order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Clone returns a deep copy.
func (o *Object) Clone() *Object {
	if o == nil {
		return nil
	}
	out := &Object{keys: make([]string, len(o.keys)), vals: make(map[string]any, len(o.vals))}
	copy(out.keys, o.keys)
	for k, v := range o.vals {
		out.vals[k] = CloneValue(v)
	}
	return out
}

// CloneValue deep-copies arrays and objects; scalars are returned as is.
func CloneValue(v any) any {
	switch x := v.(type) {
	case *Object:
		return x.Clone()
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = CloneValue(e)
		}
		return out
	default:
		return v
	}
}

// Map converts the object to a plain map, recursively.
func (o *Object) Map() map[string]any {
	if o == nil {
		return nil
	}
	out := make(map[string]any, len(o.keys))
	for _, k := range o.keys {
		out[k] = Plain(o.vals[k])
	}
	return out
}

// Plain converts nested Objects into map[string]any.
func Plain(v any) any {
	switch x := v.(type) {
	case *Object:
		return x.Map()
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = Plain(e)
		}
		return out
	default:
		return v
	}
}

// MarshalJSON writes the keys in insertion order.
func (o *Object) MarshalJSON() ([]byte, error) {
	if o == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(o.vals[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON parses strictly, keeping key order.
func (o *Object) UnmarshalJSON(data []byte) error {
	v, err := Parse(string(data), Strict)
	if err != nil {
		return err
	}
	obj, ok := v.(*Object)
	if !ok {
		return &SyntaxError{Msg: "expected object"}
	}
	*o = *obj
	return nil
}
