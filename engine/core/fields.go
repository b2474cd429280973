package core

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// JSONFields is a decoded JSON object whose values are read lazily. Every
// getter takes a default that is returned when the key is missing or holds
// the wrong kind of value, so hand-edited documents never fail to load.
type JSONFields map[string]json.RawMessage

// ParseJSONFields decodes data as an object. ok is false when data is not an object.
func ParseJSONFields(data []byte) (JSONFields, bool) {
	fields := JSONFields{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return JSONFields{}, false
	}
	if fields == nil {
		return JSONFields{}, false
	}
	return fields, true
}

func (f JSONFields) Has(key string) bool {
	raw, ok := f[key]
	return ok && !isNull(raw)
}

func (f JSONFields) Raw(key string) (json.RawMessage, bool) {
	raw, ok := f[key]
	if !ok || isNull(raw) {
		return nil, false
	}
	return raw, true
}

func (f JSONFields) String(key, def string) string {
	raw, ok := f.Raw(key)
	if !ok {
		return def
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		LogDebug("field %q is not a string, using default", key)
		return def
	}
	return s
}

func (f JSONFields) Bool(key string, def bool) bool {
	raw, ok := f.Raw(key)
	if !ok {
		return def
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		// older files store flags as 0/1
		if n, err := strconv.ParseFloat(string(raw), 64); err == nil {
			return n != 0
		}
		LogDebug("field %q is not a bool, using default", key)
		return def
	}
	return b
}

func (f JSONFields) Float64(key string, def float64) float64 {
	raw, ok := f.Raw(key)
	if !ok {
		return def
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err != nil {
		// tolerate numbers written as strings
		var s string
		if json.Unmarshal(raw, &s) == nil {
			if v, err := strconv.ParseFloat(s, 64); err == nil {
				return v
			}
		}
		LogDebug("field %q is not a number, using default", key)
		return def
	}
	return n
}

func (f JSONFields) Float32(key string, def float32) float32 {
	return float32(f.Float64(key, float64(def)))
}

func (f JSONFields) Int(key string, def int) int {
	return int(f.Float64(key, float64(def)))
}

// Object returns the nested object under key, or an empty set of fields.
func (f JSONFields) Object(key string) JSONFields {
	raw, ok := f.Raw(key)
	if !ok {
		return JSONFields{}
	}
	obj, ok := ParseJSONFields(raw)
	if !ok {
		LogDebug("field %q is not an object, using default", key)
	}
	return obj
}

// Array returns the raw elements under key. Non-arrays read as empty.
func (f JSONFields) Array(key string) []json.RawMessage {
	raw, ok := f.Raw(key)
	if !ok {
		return nil
	}
	var out []json.RawMessage
	if err := json.Unmarshal(raw, &out); err != nil {
		LogDebug("field %q is not an array, using default", key)
		return nil
	}
	return out
}

// Strings returns the string elements under key, skipping anything else.
func (f JSONFields) Strings(key string) []string {
	var out []string
	for _, raw := range f.Array(key) {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			out = append(out, s)
		}
	}
	return out
}

func isNull(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
