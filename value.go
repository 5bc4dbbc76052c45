package pathtoolkit

import (
	"fmt"
	"reflect"
	"strconv"
)

// The evaluator is polymorphic over a small capability set. Native trees
// built from map[string]any / []any satisfy it directly; wrapper types opt
// in through the interfaces below.

// Object is a string-keyed node.
type Object interface {
	Lookup(key string) (any, bool)
	Keys() []string
	Store(key string, value any) bool
}

// Sequence is a zero-based ordered node.
type Sequence interface {
	Len() int
	At(i int) (any, bool)
	SetAt(i int, value any) bool
}

// Invokable is a callable node invoked with an explicit receiver.
type Invokable interface {
	Invoke(receiver any, args []any) (any, bool)
}

// Func is a callable that ignores its receiver.
type Func func(args ...any) any

// Method is a callable bound to the owner of the value it was read from.
type Method func(receiver any, args ...any) any

// parseIndex converts a path word to a non-negative sequence index.
func parseIndex(word string) (int, bool) {
	if word == "" {
		return 0, false
	}
	n := 0
	for i := 0; i < len(word); i++ {
		c := word[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}

// lookupKey reads one property or index from a node.
func lookupKey(v any, key string) (any, bool) {
	switch node := v.(type) {
	case map[string]any:
		val, ok := node[key]
		return val, ok
	case []any:
		idx, ok := parseIndex(key)
		if !ok || idx >= len(node) {
			return nil, false
		}
		return node[idx], true
	case Object:
		return node.Lookup(key)
	case Sequence:
		idx, ok := parseIndex(key)
		if !ok || idx >= node.Len() {
			return nil, false
		}
		return node.At(idx)
	case nil:
		return nil, false
	}
	return lookupReflect(v, key)
}

// lookupReflect handles typed maps and slices (map[string]int, []string, ...)
// so callers are not forced to pre-convert their trees.
func lookupReflect(v any, key string) (any, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		val := rv.MapIndex(reflect.ValueOf(key))
		if !val.IsValid() {
			return nil, false
		}
		return val.Interface(), true
	case reflect.Slice, reflect.Array:
		idx, ok := parseIndex(key)
		if !ok || idx >= rv.Len() {
			return nil, false
		}
		return rv.Index(idx).Interface(), true
	}
	return nil, false
}

// storeKey writes one property or index on a node. It reports whether the
// assignment took.
func storeKey(v any, key string, value any) bool {
	switch node := v.(type) {
	case map[string]any:
		node[key] = value
		return true
	case []any:
		idx, ok := parseIndex(key)
		if !ok || idx >= len(node) {
			return false
		}
		node[idx] = value
		return true
	case Object:
		return node.Store(key, value)
	case Sequence:
		idx, ok := parseIndex(key)
		if !ok || idx >= node.Len() {
			return false
		}
		return node.SetAt(idx, value)
	case nil:
		return false
	}
	return storeReflect(v, key, value)
}

func storeReflect(v any, key string, value any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return false
		}
		val := reflect.ValueOf(value)
		if value == nil {
			val = reflect.Zero(rv.Type().Elem())
		} else if !val.Type().AssignableTo(rv.Type().Elem()) {
			return false
		}
		rv.SetMapIndex(reflect.ValueOf(key), val)
		return true
	case reflect.Slice:
		idx, ok := parseIndex(key)
		if !ok || idx >= rv.Len() {
			return false
		}
		val := reflect.ValueOf(value)
		if value == nil {
			val = reflect.Zero(rv.Type().Elem())
		} else if !val.Type().AssignableTo(rv.Type().Elem()) {
			return false
		}
		rv.Index(idx).Set(val)
		return true
	}
	return false
}

// sequenceItems flattens a sequence node into a []any for ordered
// iteration. The second result is false when v is not a sequence.
func sequenceItems(v any) ([]any, bool) {
	switch node := v.(type) {
	case []any:
		return node, true
	case Sequence:
		items := make([]any, node.Len())
		for i := range items {
			item, _ := node.At(i)
			items[i] = item
		}
		return items, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		if _, isObj := v.(Object); isObj {
			return nil, false
		}
		items := make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
		return items, true
	}
	return nil, false
}

// objectKeys lists the keys of an object node, unsorted.
func objectKeys(v any) ([]string, bool) {
	switch node := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(node))
		for k := range node {
			keys = append(keys, k)
		}
		return keys, true
	case Object:
		return node.Keys(), true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
		keys := make([]string, 0, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			keys = append(keys, iter.Key().String())
		}
		return keys, true
	}
	return nil, false
}

// isCallable reports whether v can be invoked.
func isCallable(v any) bool {
	switch v.(type) {
	case Func, Method, Invokable, func(args ...any) any, func(receiver any, args ...any) any:
		return true
	}
	return false
}

// invoke calls v with the given receiver and argument list.
func invoke(v any, receiver any, args []any) (any, bool) {
	switch fn := v.(type) {
	case Func:
		return fn(args...), true
	case func(args ...any) any:
		return fn(args...), true
	case Method:
		return fn(receiver, args...), true
	case func(receiver any, args ...any) any:
		return fn(receiver, args...), true
	case Invokable:
		return fn.Invoke(receiver, args)
	}
	return nil, false
}

// stringifyValue renders a value for placeholder substitution.
func stringifyValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}
