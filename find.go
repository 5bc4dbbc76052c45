package pathtoolkit

import (
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Depth-first search over a value graph, collecting the textual path of
// every leaf equal to a target. Paths are built through the active syntax
// table so they resolve back through Get.

type finder struct {
	tk     *PathToolkit
	target any
	all    bool
	safe   bool

	sep    byte
	labels []string
	found  []string

	ancestors map[uintptr]struct{}
}

// FindFirst returns the path of the first leaf equal to target in DFS
// pre-order, with map keys visited in sorted order.
func (tk *PathToolkit) FindFirst(root, target any) (string, bool) {
	f := &finder{tk: tk, target: target, sep: tk.syntax.propertySeparator()}
	f.walk(root)
	if len(f.found) == 0 {
		return "", false
	}
	return f.found[0], true
}

// FindAll returns the paths of every leaf equal to target, in DFS
// pre-order.
func (tk *PathToolkit) FindAll(root, target any) []string {
	f := &finder{tk: tk, target: target, all: true, sep: tk.syntax.propertySeparator()}
	f.walk(root)
	return f.found
}

// FindFirstSafe is FindFirst with an ancestor identity check; revisiting a
// map or sequence already on the current branch fails with ErrCycle.
func (tk *PathToolkit) FindFirstSafe(root, target any) (string, bool, error) {
	f := &finder{tk: tk, target: target, safe: true, sep: tk.syntax.propertySeparator(),
		ancestors: map[uintptr]struct{}{}}
	if err := f.walk(root); err != nil {
		return "", false, err
	}
	if len(f.found) == 0 {
		return "", false, nil
	}
	return f.found[0], true, nil
}

// FindAllSafe is FindAll with cycle detection.
func (tk *PathToolkit) FindAllSafe(root, target any) ([]string, error) {
	f := &finder{tk: tk, target: target, all: true, safe: true, sep: tk.syntax.propertySeparator(),
		ancestors: map[uintptr]struct{}{}}
	if err := f.walk(root); err != nil {
		return nil, err
	}
	return f.found, nil
}

func (f *finder) walk(v any) error {
	if f.done() {
		return nil
	}

	if keys, ok := objectKeys(v); ok {
		release, err := f.enter(v)
		if err != nil {
			return err
		}
		defer release()
		sort.Strings(keys)
		for _, key := range keys {
			child, _ := lookupKey(v, key)
			f.labels = append(f.labels, f.label(key))
			if err := f.walk(child); err != nil {
				return err
			}
			f.labels = f.labels[:len(f.labels)-1]
			if f.done() {
				return nil
			}
		}
		return nil
	}

	if items, ok := sequenceItems(v); ok {
		release, err := f.enter(v)
		if err != nil {
			return err
		}
		defer release()
		for i, item := range items {
			f.labels = append(f.labels, strconv.Itoa(i))
			if err := f.walk(item); err != nil {
				return err
			}
			f.labels = f.labels[:len(f.labels)-1]
			if f.done() {
				return nil
			}
		}
		return nil
	}

	// Leaf.
	if leafEqual(v, f.target) {
		f.found = append(f.found, strings.Join(f.labels, string(f.sep)))
	}
	return nil
}

func (f *finder) done() bool {
	return !f.all && len(f.found) > 0
}

// enter registers a container on the current branch for cycle detection and
// returns the matching release.
func (f *finder) enter(v any) (func(), error) {
	if !f.safe {
		return func() {}, nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Ptr:
	default:
		return func() {}, nil
	}
	p := rv.Pointer()
	if _, seen := f.ancestors[p]; seen {
		return nil, ErrCycle
	}
	f.ancestors[p] = struct{}{}
	return func() { delete(f.ancestors, p) }, nil
}

// label renders one map key as a path segment: keys holding any special
// character are wrapped in the singlequote container with inner quotes
// escaped, so the emitted path tokenizes back to the same key.
func (f *finder) label(key string) string {
	t := f.tk.syntax
	needsQuote := false
	for i := 0; i < len(key); i++ {
		if t.isSpecial(key[i]) {
			needsQuote = true
			break
		}
	}
	if !needsQuote {
		return key
	}
	quote, ok := t.containerFor(ContainerSingleQuote)
	if !ok {
		return f.tk.EscapeSegment(key)
	}
	var b strings.Builder
	b.Grow(len(key) + 4)
	b.WriteByte(quote.opener)
	for i := 0; i < len(key); i++ {
		c := key[i]
		if c == quote.closer || c == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	b.WriteByte(quote.closer)
	return b.String()
}

// leafEqual compares a leaf to the target. Numeric leaves compare across
// int/float representations so decoded documents behave predictably.
func leafEqual(v, target any) bool {
	if v == nil || target == nil {
		return v == nil && target == nil
	}
	if vf, ok := asFloat(v); ok {
		if tf, ok := asFloat(target); ok {
			return vf == tf
		}
		return false
	}
	return reflect.DeepEqual(v, target)
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}
