package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ConfigKind enumerates the scalar kinds a run config value can hold.
type ConfigKind int

const (
	ConfigNull ConfigKind = iota
	ConfigNumber
	ConfigString
	ConfigBool
)

type configField struct {
	key  string
	kind ConfigKind
	num  float64
	str  string
	b    bool
}

// RunConfig is an ordered mapping of scalar hyperparameters. Keys keep their
// insertion order through JSON round trips, and setting an existing key
// replaces its value in place.
type RunConfig struct {
	fields []configField
}

// NewRunConfig returns an empty config.
func NewRunConfig() *RunConfig {
	return &RunConfig{}
}

func (c *RunConfig) set(f configField) *RunConfig {
	for i := range c.fields {
		if c.fields[i].key == f.key {
			c.fields[i] = f
			return c
		}
	}
	c.fields = append(c.fields, f)
	return c
}

// SetFloat stores a numeric value under key.
func (c *RunConfig) SetFloat(key string, v float64) *RunConfig {
	return c.set(configField{key: key, kind: ConfigNumber, num: v})
}

// SetInt stores an integer value under key. It is carried as a JSON number.
func (c *RunConfig) SetInt(key string, v int64) *RunConfig {
	return c.set(configField{key: key, kind: ConfigNumber, num: float64(v)})
}

// SetString stores a string value under key.
func (c *RunConfig) SetString(key, v string) *RunConfig {
	return c.set(configField{key: key, kind: ConfigString, str: v})
}

// SetBool stores a boolean value under key.
func (c *RunConfig) SetBool(key string, v bool) *RunConfig {
	return c.set(configField{key: key, kind: ConfigBool, b: v})
}

// SetNull stores an explicit null under key.
func (c *RunConfig) SetNull(key string) *RunConfig {
	return c.set(configField{key: key, kind: ConfigNull})
}

func (c *RunConfig) lookup(key string) (configField, bool) {
	if c == nil {
		return configField{}, false
	}
	for _, f := range c.fields {
		if f.key == key {
			return f, true
		}
	}
	return configField{}, false
}

// Float returns the numeric value under key.
func (c *RunConfig) Float(key string) (float64, bool) {
	f, ok := c.lookup(key)
	if !ok || f.kind != ConfigNumber {
		return 0, false
	}
	return f.num, true
}

// Int returns the numeric value under key truncated to an integer.
func (c *RunConfig) Int(key string) (int64, bool) {
	v, ok := c.Float(key)
	return int64(v), ok
}

// String returns the string value under key.
func (c *RunConfig) String(key string) (string, bool) {
	f, ok := c.lookup(key)
	if !ok || f.kind != ConfigString {
		return "", false
	}
	return f.str, true
}

// Bool returns the boolean value under key.
func (c *RunConfig) Bool(key string) (bool, bool) {
	f, ok := c.lookup(key)
	if !ok || f.kind != ConfigBool {
		return false, false
	}
	return f.b, true
}

// Kind returns the kind stored under key.
func (c *RunConfig) Kind(key string) (ConfigKind, bool) {
	f, ok := c.lookup(key)
	return f.kind, ok
}

// Has reports whether key is present, including keys set to null.
func (c *RunConfig) Has(key string) bool {
	_, ok := c.lookup(key)
	return ok
}

// Keys returns the keys in insertion order.
func (c *RunConfig) Keys() []string {
	if c == nil {
		return nil
	}
	keys := make([]string, len(c.fields))
	for i, f := range c.fields {
		keys[i] = f.key
	}
	return keys
}

// Len returns the number of keys.
func (c *RunConfig) Len() int {
	if c == nil {
		return 0
	}
	return len(c.fields)
}

// MarshalJSON writes the config as a JSON object with keys in insertion
// order. A nil receiver yields an empty object on a direct call; json.Marshal
// itself renders a nil *RunConfig as null.
func (c *RunConfig) MarshalJSON() ([]byte, error) {
	if c == nil || len(c.fields) == 0 {
		return []byte("{}"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range c.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		var val []byte
		switch f.kind {
		case ConfigNumber:
			val, err = json.Marshal(f.num)
		case ConfigString:
			val, err = json.Marshal(f.str)
		case ConfigBool:
			val, err = json.Marshal(f.b)
		default:
			val = []byte("null")
		}
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object, preserving key order. Values must be
// scalars; nested objects and arrays are rejected.
func (c *RunConfig) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("run config must be a JSON object, got %v", tok)
	}
	c.fields = c.fields[:0]
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("run config: unexpected key token %v", keyTok)
		}
		valTok, err := dec.Token()
		if err != nil {
			return err
		}
		switch v := valTok.(type) {
		case json.Number:
			n, err := v.Float64()
			if err != nil {
				return fmt.Errorf("run config value for %q: %w", key, err)
			}
			c.set(configField{key: key, kind: ConfigNumber, num: n})
		case string:
			c.set(configField{key: key, kind: ConfigString, str: v})
		case bool:
			c.set(configField{key: key, kind: ConfigBool, b: v})
		case nil:
			c.set(configField{key: key, kind: ConfigNull})
		default:
			return fmt.Errorf("run config value for %q must be a scalar", key)
		}
	}
	// Consume the closing brace.
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
