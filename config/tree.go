// Package config loads the nested configuration tree spec §6 describes:
// "a tree of named values (nested mapping/array/scalar)." A missing
// required option is fatal at construction; unknown keys are ignored
// (a superset configuration is permitted).
package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Tree is a node of the configuration tree: a map, a slice, or a scalar
// (bool, int, float64, string). Load via Parse/Load; navigate with Get,
// RequireBool, RequireInt, and friends.
type Tree struct {
	value interface{}
	path  string
}

// Load reads and parses a YAML configuration file into a Tree.
func Load(path string) (*Tree, error) {
	var data interface{}

	raw, err := readFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return &Tree{value: normalize(data), path: "$"}, nil
}

// Parse builds a Tree directly from an in-memory value, useful for tests
// and for programmatically-assembled configuration.
func Parse(v interface{}) *Tree {
	return &Tree{value: normalize(v), path: "$"}
}

// normalize converts map[interface{}]interface{} (which yaml.v3 never
// actually produces, but defensive callers constructing trees by hand
// might) into map[string]interface{} uniformly.
func normalize(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[k] = normalize(val)
		}
		return out
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalize(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = normalize(val)
		}
		return out
	default:
		return v
	}
}

// Get returns the child value named key, and whether it was present. A
// superset configuration (extra unknown keys) is fine — callers that don't
// ask for a key simply never see it.
func (t *Tree) Get(key string) (*Tree, bool) {
	m, ok := t.value.(map[string]interface{})
	if !ok {
		return nil, false
	}

	v, found := m[key]
	if !found {
		return nil, false
	}

	return &Tree{value: v, path: t.path + "." + key}, true
}

// fatalf panics with a configuration error — per spec §7.1, missing keys
// and type mismatches are always fatal at construction.
func (t *Tree) fatalf(format string, args ...interface{}) {
	panic(fmt.Sprintf("config error at %s: %s", t.path, fmt.Sprintf(format, args...)))
}

// RequireSub returns the required sub-tree at key, fatal if absent.
func (t *Tree) RequireSub(key string) *Tree {
	sub, ok := t.Get(key)
	if !ok {
		t.fatalf("missing required key %q", key)
	}

	return sub
}

// RequireSubSlice returns the required array-of-sub-tree value at key, one
// *Tree per element — used for configuration lists whose entries are
// themselves nested trees (e.g. a list of application configurations)
// rather than scalars.
func (t *Tree) RequireSubSlice(key string) []*Tree {
	sub := t.RequireSub(key)
	arr, ok := sub.value.([]interface{})
	if !ok {
		sub.fatalf("expected array, got %T", sub.value)
	}

	out := make([]*Tree, len(arr))
	for i, v := range arr {
		out[i] = &Tree{value: v, path: fmt.Sprintf("%s[%d]", sub.path, i)}
	}

	return out
}

// OptionalSub returns the sub-tree at key, or def if absent.
func (t *Tree) OptionalSub(key string, def *Tree) *Tree {
	sub, ok := t.Get(key)
	if !ok {
		return def
	}

	return sub
}

// RequireBool returns the required boolean value at key.
func (t *Tree) RequireBool(key string) bool {
	sub := t.RequireSub(key)
	b, ok := sub.value.(bool)
	if !ok {
		sub.fatalf("expected bool, got %T", sub.value)
	}

	return b
}

// OptionalBool returns the boolean at key, or def if absent.
func (t *Tree) OptionalBool(key string, def bool) bool {
	sub, ok := t.Get(key)
	if !ok {
		return def
	}

	b, ok := sub.value.(bool)
	if !ok {
		sub.fatalf("expected bool, got %T", sub.value)
	}

	return b
}

// RequireInt returns the required integer value at key.
func (t *Tree) RequireInt(key string) int {
	sub := t.RequireSub(key)
	return sub.asInt()
}

// OptionalInt returns the integer at key, or def if absent.
func (t *Tree) OptionalInt(key string, def int) int {
	sub, ok := t.Get(key)
	if !ok {
		return def
	}

	return sub.asInt()
}

func (t *Tree) asInt() int {
	switch v := t.value.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		t.fatalf("expected int, got %T", t.value)
		return 0
	}
}

// RequireFloat returns the required float64 value at key.
func (t *Tree) RequireFloat(key string) float64 {
	sub := t.RequireSub(key)
	return sub.asFloat()
}

// OptionalFloat returns the float64 at key, or def if absent.
func (t *Tree) OptionalFloat(key string, def float64) float64 {
	sub, ok := t.Get(key)
	if !ok {
		return def
	}

	return sub.asFloat()
}

func (t *Tree) asFloat() float64 {
	switch v := t.value.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		t.fatalf("expected float, got %T", t.value)
		return 0
	}
}

// RequireString returns the required string value at key.
func (t *Tree) RequireString(key string) string {
	sub := t.RequireSub(key)
	s, ok := sub.value.(string)
	if !ok {
		sub.fatalf("expected string, got %T", sub.value)
	}

	return s
}

// OptionalString returns the string at key, or def if absent.
func (t *Tree) OptionalString(key string, def string) string {
	sub, ok := t.Get(key)
	if !ok {
		return def
	}

	s, ok := sub.value.(string)
	if !ok {
		sub.fatalf("expected string, got %T", sub.value)
	}

	return s
}

// RequireIntSlice returns the required array-of-int value at key.
func (t *Tree) RequireIntSlice(key string) []int {
	sub := t.RequireSub(key)
	arr, ok := sub.value.([]interface{})
	if !ok {
		sub.fatalf("expected array, got %T", sub.value)
	}

	out := make([]int, len(arr))
	for i, v := range arr {
		elem := &Tree{value: v, path: fmt.Sprintf("%s[%d]", sub.path, i)}
		out[i] = elem.asInt()
	}

	return out
}

// RequireBoolSlice returns the required array-of-bool value at key.
func (t *Tree) RequireBoolSlice(key string) []bool {
	sub := t.RequireSub(key)
	arr, ok := sub.value.([]interface{})
	if !ok {
		sub.fatalf("expected array, got %T", sub.value)
	}

	out := make([]bool, len(arr))
	for i, v := range arr {
		b, ok := v.(bool)
		if !ok {
			sub.fatalf("element %d: expected bool, got %T", i, v)
		}
		out[i] = b
	}

	return out
}

// OptionalBoolSlice returns the array-of-bool at key, or def if absent.
func (t *Tree) OptionalBoolSlice(key string, def []bool) []bool {
	if _, ok := t.Get(key); !ok {
		return def
	}

	return t.RequireBoolSlice(key)
}
