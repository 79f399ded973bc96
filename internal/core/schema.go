package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/tidwall/gjson"

	"github.com/3-lines-studio/studio/internal/literal"
)

// PropertySchema is an ordered name to record mapping. Keys keep the order
// they were first set in, both in memory and on the wire.
type PropertySchema struct {
	keys    []string
	records map[string]PropertyRecord
}

func NewPropertySchema() PropertySchema {
	return PropertySchema{records: make(map[string]PropertyRecord)}
}

// DefaultSchema is what a component gets when nothing can be recovered from
// its source.
func DefaultSchema() PropertySchema {
	s := NewPropertySchema()
	s.Set("title", PropertyRecord{Type: TypeText, Value: "Component Title", Label: "Title", Editable: true})
	s.Set("content", PropertyRecord{Type: TypeText, Value: "Add your content here", Label: "Content", Editable: true})
	return s
}

func (s *PropertySchema) Set(key string, rec PropertyRecord) {
	if s.records == nil {
		s.records = make(map[string]PropertyRecord)
	}
	if _, ok := s.records[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.records[key] = rec
}

func (s PropertySchema) Get(key string) (PropertyRecord, bool) {
	rec, ok := s.records[key]
	return rec, ok
}

func (s PropertySchema) Has(key string) bool {
	_, ok := s.records[key]
	return ok
}

func (s *PropertySchema) Delete(key string) {
	if _, ok := s.records[key]; !ok {
		return
	}
	delete(s.records, key)
	for i, k := range s.keys {
		if k == key {
			s.keys = append(s.keys[:i:i], s.keys[i+1:]...)
			break
		}
	}
}

func (s PropertySchema) Keys() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

func (s PropertySchema) Len() int { return len(s.keys) }

func (s PropertySchema) Clone() PropertySchema {
	out := PropertySchema{
		keys:    make([]string, len(s.keys)),
		records: make(map[string]PropertyRecord, len(s.records)),
	}
	copy(out.keys, s.keys)
	for k, rec := range s.records {
		rec.Value = literal.CloneValue(rec.Value)
		out.records[k] = rec
	}
	return out
}

// Values returns the record values as an ordered object.
func (s PropertySchema) Values() *literal.Object {
	obj := literal.NewObject()
	for _, k := range s.keys {
		obj.Set(k, literal.CloneValue(s.records[k].Value))
	}
	return obj
}

// Equal compares keys, order included, and every record field.
func (s PropertySchema) Equal(other PropertySchema) bool {
	if !reflect.DeepEqual(s.Keys(), other.Keys()) {
		return false
	}
	return s.EqualValues(other)
}

// EqualValues compares records ignoring key order.
func (s PropertySchema) EqualValues(other PropertySchema) bool {
	if s.Len() != other.Len() {
		return false
	}
	for k, rec := range s.records {
		o, ok := other.records[k]
		if !ok {
			return false
		}
		if rec.Type != o.Type || rec.Label != o.Label || rec.Editable != o.Editable {
			return false
		}
		if !reflect.DeepEqual(literal.Plain(rec.Value), literal.Plain(o.Value)) {
			return false
		}
	}
	return true
}

func (s PropertySchema) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range s.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		rb, err := json.Marshal(s.records[k])
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", k, err)
		}
		buf.Write(rb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (s *PropertySchema) UnmarshalJSON(data []byte) error {
	parsed, err := ParsePropertySchema(string(data))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParsePropertySchema decodes a stored schema. Entries may be full records or
// flat values; both are repaired into records.
func ParsePropertySchema(data string) (PropertySchema, error) {
	s := NewPropertySchema()
	if !gjson.Valid(data) {
		return s, fmt.Errorf("invalid property schema json")
	}
	root := gjson.Parse(data)
	if root.Type == gjson.Null {
		return s, nil
	}
	if !root.IsObject() {
		return s, fmt.Errorf("property schema must be an object")
	}
	root.ForEach(func(key, value gjson.Result) bool {
		name := key.String()
		v := FromJSON(value)
		if obj, ok := IsStructured(v); ok {
			s.Set(name, RecordFromObject(name, obj))
		} else {
			s.Set(name, NewRecord(name, v))
		}
		return true
	})
	return s, nil
}

// FromJSON converts a gjson result into literal values, keeping object key
// order.
func FromJSON(r gjson.Result) any {
	switch {
	case r.IsObject():
		obj := literal.NewObject()
		r.ForEach(func(k, v gjson.Result) bool {
			obj.Set(k.String(), FromJSON(v))
			return true
		})
		return obj
	case r.IsArray():
		out := []any{}
		r.ForEach(func(_, v gjson.Result) bool {
			out = append(out, FromJSON(v))
			return true
		})
		return out
	}
	switch r.Type {
	case gjson.String:
		return r.Str
	case gjson.Number:
		return r.Num
	case gjson.True:
		return true
	case gjson.False:
		return false
	default:
		return nil
	}
}
