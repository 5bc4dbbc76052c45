package pathtoolkit

// Fast-path resolver for simple programs: a straight descend-by-name loop
// with none of the evaluator's stack or modifier machinery.

// Prototype-sensitive names are rejected on the write fast path. Go maps do
// not share a namespace with language metadata, so the guard is policy
// parity rather than protection, but it must behave identically: traversal
// stops and the write reports failure.
func isForbiddenKey(key string) bool {
	switch key {
	case "__proto__", "constructor", "prototype":
		return true
	}
	return false
}

// quickGet walks a flat name list from root. An empty name aborts.
func quickGet(root any, steps []step) (any, bool) {
	current := root
	for i := range steps {
		word := steps[i].word
		if word == "" {
			return nil, false
		}
		next, ok := lookupKey(current, word)
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

// quickGetText walks dotted path text directly, without compiling a
// program. Only valid for text the complex-character predicate cleared.
func quickGetText(root any, path string, sep byte) (any, bool) {
	current := root
	start := 0
	for i := 0; i <= len(path); i++ {
		if i != len(path) && path[i] != sep {
			continue
		}
		word := path[start:i]
		start = i + 1
		if word == "" {
			return nil, false
		}
		next, ok := lookupKey(current, word)
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

// quickSet assigns value at the end of a flat name list. With force,
// missing intermediate properties are materialised as empty maps.
func quickSet(root any, steps []step, value any, force bool) bool {
	if len(steps) == 0 {
		return false
	}
	current := root
	for i := range steps {
		word := steps[i].word
		if word == "" || isForbiddenKey(word) {
			return false
		}
		if i == len(steps)-1 {
			if !storeKey(current, word, value) {
				return false
			}
			got, ok := lookupKey(current, word)
			return ok && sameValue(got, value)
		}
		next, ok := lookupKey(current, word)
		if !ok {
			if !force {
				return false
			}
			next = map[string]any{}
			if !storeKey(current, word, next) {
				return false
			}
		}
		current = next
	}
	return false
}

// sameValue verifies an assignment readback without deep comparison:
// reference types verify by kind, scalars by equality.
func sameValue(got, want any) bool {
	switch want.(type) {
	case map[string]any, []any:
		_, sameKind := got.(map[string]any)
		if _, isSeq := got.([]any); isSeq {
			sameKind = true
		}
		return sameKind
	case nil:
		return got == nil
	}
	switch got.(type) {
	case string, float64, float32, int, int64, int32, uint, uint64, bool:
		return got == want
	}
	return true
}
