package scenario

import (
	"encoding/json"
	"fmt"
	"time"
)

// ValueKind tags the variant held by a Value.
type ValueKind string

const (
	ValueString ValueKind = "string"
	ValueNumber ValueKind = "number"
	ValueTime   ValueKind = "time"
)

// Value is one entry of a scenario data bag: a string, a number or a timestamp.
type Value struct {
	kind ValueKind
	str  string
	num  float64
	at   time.Time
}

func String(s string) Value     { return Value{kind: ValueString, str: s} }
func Number(n float64) Value    { return Value{kind: ValueNumber, num: n} }
func Time(t time.Time) Value    { return Value{kind: ValueTime, at: t.UTC()} }
func (v Value) Kind() ValueKind { return v.kind }

func (v Value) AsString() (string, bool) {
	return v.str, v.kind == ValueString
}

func (v Value) AsNumber() (float64, bool) {
	return v.num, v.kind == ValueNumber
}

func (v Value) AsTime() (time.Time, bool) {
	return v.at, v.kind == ValueTime
}

type entry struct {
	Key    string    `json:"key"`
	Kind   ValueKind `json:"type"`
	String string    `json:"string,omitempty"`
	Number float64   `json:"number,omitempty"`
	Time   time.Time `json:"time,omitempty"`
}

// Data is an insertion-ordered bag of scenario values.
type Data struct {
	keys   []string
	values map[string]Value
}

// Set stores v under key, keeping the key's original position on overwrite.
func (d *Data) Set(key string, v Value) {
	if d.values == nil {
		d.values = make(map[string]Value)
	}
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.values[key] = v
}

func (d *Data) Get(key string) (Value, bool) {
	v, ok := d.values[key]
	return v, ok
}

func (d *Data) Delete(key string) {
	if _, ok := d.values[key]; !ok {
		return
	}
	delete(d.values, key)
	for i, k := range d.keys {
		if k == key {
			d.keys = append(d.keys[:i], d.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (d *Data) Keys() []string {
	out := make([]string, len(d.keys))
	copy(out, d.keys)
	return out
}

func (d *Data) Len() int { return len(d.keys) }

// String returns the string stored at key; false if missing or of another kind.
func (d *Data) String(key string) (string, bool) {
	v, ok := d.values[key]
	if !ok {
		return "", false
	}
	return v.AsString()
}

// Number returns the number stored at key; false if missing or of another kind.
func (d *Data) Number(key string) (float64, bool) {
	v, ok := d.values[key]
	if !ok {
		return 0, false
	}
	return v.AsNumber()
}

// Time returns the timestamp stored at key; false if missing or of another kind.
func (d *Data) Time(key string) (time.Time, bool) {
	v, ok := d.values[key]
	if !ok {
		return time.Time{}, false
	}
	return v.AsTime()
}

func (d Data) clone() Data {
	out := Data{keys: make([]string, len(d.keys)), values: make(map[string]Value, len(d.values))}
	copy(out.keys, d.keys)
	for k, v := range d.values {
		out.values[k] = v
	}
	return out
}

func (d Data) MarshalJSON() ([]byte, error) {
	entries := make([]entry, 0, len(d.keys))
	for _, k := range d.keys {
		v := d.values[k]
		e := entry{Key: k, Kind: v.kind}
		switch v.kind {
		case ValueString:
			e.String = v.str
		case ValueNumber:
			e.Number = v.num
		case ValueTime:
			e.Time = v.at
		}
		entries = append(entries, e)
	}
	return json.Marshal(entries)
}

func (d *Data) UnmarshalJSON(b []byte) error {
	var entries []entry
	if err := json.Unmarshal(b, &entries); err != nil {
		return err
	}
	*d = Data{}
	for _, e := range entries {
		switch e.Kind {
		case ValueString:
			d.Set(e.Key, String(e.String))
		case ValueNumber:
			d.Set(e.Key, Number(e.Number))
		case ValueTime:
			d.Set(e.Key, Time(e.Time))
		default:
			return fmt.Errorf("scenario data %q: unknown value type %q", e.Key, e.Kind)
		}
	}
	return nil
}
