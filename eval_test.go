package pathtoolkit

import (
	"reflect"
	"testing"
)

// TestGetNestedNames tests plain and bracketed descent
func TestGetNestedNames(t *testing.T) {
	root := map[string]any{
		"foo": map[string]any{
			"bar": map[string]any{
				"qux": map[string]any{"baz": true},
			},
		},
	}
	tk := New(nil)

	if got := tk.Get(root, "foo.bar.qux.baz"); got != true {
		t.Errorf("Expected true, got %v", got)
	}
	if got := tk.Get(root, `["foo"]["bar"]["qux"]["baz"]`); got != true {
		t.Errorf("Expected true via quoted containers, got %v", got)
	}
	if got := tk.Get(root, "foo[bar][qux][baz]"); got != true {
		t.Errorf("Expected true via bare containers, got %v", got)
	}
}

// TestGetCollection tests fan-out reads
func TestGetCollection(t *testing.T) {
	root := map[string]any{
		"a": map[string]any{"b": 1, "c": 2, "d": 3},
	}
	tk := New(nil)

	got := tk.Get(root, "a.b,c,d")
	want := []any{1, 2, 3}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

// TestGetWildcard tests wildcard key matching
func TestGetWildcard(t *testing.T) {
	root := map[string]any{
		"a": map[string]any{"b": 1, "c": 2, "d": 3},
	}
	tk := New(nil)

	got, ok := tk.Get(root, "a.*").([]any)
	if !ok {
		t.Fatalf("Expected a sequence, got %T", tk.Get(root, "a.*"))
	}
	if len(got) != 3 {
		t.Fatalf("Expected 3 values, got %d", len(got))
	}
	seen := map[any]bool{}
	for _, v := range got {
		seen[v] = true
	}
	for _, v := range []any{1, 2, 3} {
		if !seen[v] {
			t.Errorf("Expected value %v in wildcard result", v)
		}
	}
}

// TestGetWildcardAnchored tests prefix/suffix wildcard templates
func TestGetWildcardAnchored(t *testing.T) {
	root := map[string]any{
		"obj": map[string]any{"aaa": 1, "aab": 2, "bba": 3},
	}
	tk := New(nil)

	got := tk.Get(root, "obj.aa*")
	if !reflect.DeepEqual(got, []any{1, 2}) {
		t.Errorf("Expected [1 2], got %v", got)
	}
	got = tk.Get(root, "obj.*a")
	if !reflect.DeepEqual(got, []any{1, 3}) {
		t.Errorf("Expected [1 3], got %v", got)
	}
}

// TestEachGetSet tests map-over-sequence reads and writes
func TestEachGetSet(t *testing.T) {
	root := map[string]any{
		"users": []any{
			map[string]any{"n": "x"},
			map[string]any{"n": "y"},
		},
	}
	tk := New(nil)

	got := tk.Get(root, "users<n")
	if !reflect.DeepEqual(got, []any{"x", "y"}) {
		t.Errorf("Expected [x y], got %v", got)
	}

	if !tk.Set(root, "users<n", "z") {
		t.Fatal("Expected each-tail set to succeed")
	}
	got = tk.Get(root, "users<n")
	if !reflect.DeepEqual(got, []any{"z", "z"}) {
		t.Errorf("Expected both names rewritten, got %v", got)
	}
}

// TestComputedKey tests evalProperty resolution
func TestComputedKey(t *testing.T) {
	root := map[string]any{
		"list": []any{10, 20, 30},
		"k":    "list",
	}
	tk := New(nil)

	got := tk.Get(root, "{k}")
	if !reflect.DeepEqual(got, []any{10, 20, 30}) {
		t.Errorf("Expected the list, got %v", got)
	}
	if got := tk.Get(root, "{k}.1"); got != 20 {
		t.Errorf("Expected 20, got %v", got)
	}

	// Computed-key write.
	if !tk.Set(root, "{k}.0", 99) {
		t.Fatal("Expected computed-key set to succeed")
	}
	if got := tk.Get(root, "list.0"); got != 99 {
		t.Errorf("Expected 99, got %v", got)
	}
}

// TestCallInvocation tests call containers and receivers
func TestCallInvocation(t *testing.T) {
	root := map[string]any{
		"say": Func(func(args ...any) any {
			return "hi " + args[0].(string)
		}),
	}
	tk := New(nil)

	if got := tk.Get(root, `say("world")`); got != "hi world" {
		t.Errorf("Expected %q, got %v", "hi world", got)
	}

	// No-argument invocation.
	root["ping"] = Func(func(args ...any) any {
		return len(args)
	})
	if got := tk.Get(root, "ping()"); got != 0 {
		t.Errorf("Expected 0 args, got %v", got)
	}

	// Argument paths resolve against the receiver.
	owner := map[string]any{
		"name": "ada",
		"greet": Method(func(recv any, args ...any) any {
			return "hello " + args[0].(string)
		}),
	}
	if got := tk.Get(map[string]any{"owner": owner}, "owner.greet(name)"); got != "hello ada" {
		t.Errorf("Expected %q, got %v", "hello ada", got)
	}
}

// TestCallReceiver tests that methods see the owner of the callable
func TestCallReceiver(t *testing.T) {
	user := map[string]any{"n": "x"}
	user["who"] = Method(func(recv any, args ...any) any {
		return recv.(map[string]any)["n"]
	})
	root := map[string]any{"user": user}
	tk := New(nil)

	if got := tk.Get(root, "user.who()"); got != "x" {
		t.Errorf("Expected receiver-bound result %q, got %v", "x", got)
	}
}

// TestCallEach tests invocation fanned over a sequence
func TestCallEach(t *testing.T) {
	mkUser := func(name string) map[string]any {
		u := map[string]any{"n": name}
		u["who"] = Method(func(recv any, args ...any) any {
			return recv.(map[string]any)["n"]
		})
		return u
	}
	root := map[string]any{"users": []any{mkUser("x"), mkUser("y")}}
	tk := New(nil)

	got := tk.Get(root, "users<who()")
	if !reflect.DeepEqual(got, []any{"x", "y"}) {
		t.Errorf("Expected each element invoked with its own receiver, got %v", got)
	}
}

// TestSetForce tests intermediate materialisation
func TestSetForce(t *testing.T) {
	root := map[string]any{"a": 1}
	tk := New(nil)

	if tk.Set(root, "b.c.d", 9) {
		t.Error("Expected set without force to fail")
	}
	if _, present := root["b"]; present {
		t.Error("Expected failed set to leave root unchanged")
	}

	tk.SetForce(true)
	if !tk.Set(root, "b.c.d", 9) {
		t.Fatal("Expected forced set to succeed")
	}
	want := map[string]any{
		"a": 1,
		"b": map[string]any{"c": map[string]any{"d": 9}},
	}
	if !reflect.DeepEqual(root, want) {
		t.Errorf("Expected %v, got %v", want, root)
	}
}

// TestParentPrefix tests stack rewinding
func TestParentPrefix(t *testing.T) {
	root := map[string]any{
		"a": map[string]any{
			"b": map[string]any{},
			"c": 9,
		},
	}
	tk := New(nil)

	if got := tk.Get(root, "a.b.^c"); got != 9 {
		t.Errorf("Expected 9 via parent rewind, got %v", got)
	}

	// Parent count past the stack bottom is absent.
	if got := tk.GetWithDefault(root, "^^^a", "absent"); got != "absent" {
		t.Errorf("Expected absent, got %v", got)
	}
}

// TestRootPrefix tests stack reset
func TestRootPrefix(t *testing.T) {
	root := map[string]any{
		"a": map[string]any{"b": 1},
		"c": 5,
	}
	tk := New(nil)

	if got := tk.Get(root, "a.b.~c"); got != 5 {
		t.Errorf("Expected 5 via root reset, got %v", got)
	}
}

// TestPlaceholderArgs tests %k name substitution
func TestPlaceholderArgs(t *testing.T) {
	root := map[string]any{"foo": map[string]any{"bar": 7}}
	tk := New(nil)

	if got := tk.Get(root, "foo.%1", "bar"); got != 7 {
		t.Errorf("Expected 7, got %v", got)
	}
	// Out-of-range index poisons the whole evaluation.
	if got := tk.GetWithDefault(root, "foo.%2", "absent", "bar"); got != "absent" {
		t.Errorf("Expected absent for out-of-range placeholder, got %v", got)
	}
	// Numeric args are coerced to name text.
	seq := map[string]any{"items": []any{"a", "b", "c"}}
	if got := tk.Get(seq, "items.%1", 1); got != "b" {
		t.Errorf("Expected b, got %v", got)
	}
}

// TestContextArgs tests @k raw substitution
func TestContextArgs(t *testing.T) {
	root := map[string]any{"a": map[string]any{}}
	tk := New(nil)

	raw := []any{1, 2}
	if got := tk.Get(root, "a.@1", raw); !reflect.DeepEqual(got, raw) {
		t.Errorf("Expected raw arg back, got %v", got)
	}
	if got := tk.GetWithDefault(root, "a.@3", "absent", raw); got != "absent" {
		t.Errorf("Expected absent for out-of-range context index, got %v", got)
	}
}

// TestSetCollectionTail tests fan-out writes
func TestSetCollectionTail(t *testing.T) {
	root := map[string]any{
		"a": map[string]any{"b": 1, "c": 2},
	}
	tk := New(nil)

	if !tk.Set(root, "a.b,c", 5) {
		t.Fatal("Expected collection-tail set to succeed")
	}
	inner := root["a"].(map[string]any)
	if inner["b"] != 5 || inner["c"] != 5 {
		t.Errorf("Expected both branches written, got %v", inner)
	}
}

// TestSetWildcardTail tests wildcard writes
func TestSetWildcardTail(t *testing.T) {
	root := map[string]any{
		"a": map[string]any{"aa": 1, "ab": 2, "bb": 3},
	}
	tk := New(nil)

	if !tk.Set(root, "a.a*", 0) {
		t.Fatal("Expected wildcard set to succeed")
	}
	inner := root["a"].(map[string]any)
	if inner["aa"] != 0 || inner["ab"] != 0 {
		t.Errorf("Expected matching keys rewritten, got %v", inner)
	}
	if inner["bb"] != 3 {
		t.Errorf("Expected non-matching key untouched, got %v", inner["bb"])
	}
	// No key matched: nothing to write.
	if tk.Set(root, "a.zz*", 0) {
		t.Error("Expected unmatched wildcard set to fail")
	}
}

// TestEachCollection tests each distributed over a collection container
func TestEachCollection(t *testing.T) {
	root := map[string]any{
		"users": []any{
			map[string]any{"a": 1, "b": 2},
			map[string]any{"a": 3, "b": 4},
		},
	}
	tk := New(nil)

	got := tk.Get(root, "users<[a],[b]")
	want := []any{[]any{1, 2}, []any{3, 4}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected sequence-of-sequences %v, got %v", want, got)
	}
}

// TestSequenceIndexing tests numeric names over sequences
func TestSequenceIndexing(t *testing.T) {
	root := map[string]any{
		"items": []any{
			map[string]any{"name": "first"},
			map[string]any{"name": "second"},
		},
	}
	tk := New(nil)

	if got := tk.Get(root, "items.1.name"); got != "second" {
		t.Errorf("Expected second, got %v", got)
	}
	if got := tk.GetWithDefault(root, "items.9.name", "absent"); got != "absent" {
		t.Errorf("Expected out-of-range index to be absent, got %v", got)
	}
	if !tk.Set(root, "items.0.name", "patched") {
		t.Fatal("Expected index write to succeed")
	}
	if got := tk.Get(root, "items.0.name"); got != "patched" {
		t.Errorf("Expected patched, got %v", got)
	}
}

// TestGetDefaults tests the absent conventions
func TestGetDefaults(t *testing.T) {
	root := map[string]any{"a": 1}
	tk := New(nil)

	if got := tk.Get(root, "missing"); got != nil {
		t.Errorf("Expected nil default, got %v", got)
	}
	tk.SetDefaultReturn("n/a")
	if got := tk.Get(root, "missing"); got != "n/a" {
		t.Errorf("Expected configured default, got %v", got)
	}
	if got := tk.GetWithDefault(root, "missing", 0); got != 0 {
		t.Errorf("Expected per-call default, got %v", got)
	}

	// Empty path returns the root; empty-path set fails.
	if got := tk.Get(root, ""); !reflect.DeepEqual(got, root) {
		t.Errorf("Expected root for empty path, got %v", got)
	}
	if tk.Set(root, "", 1) {
		t.Error("Expected empty-path set to fail")
	}
}

// TestPrecompiledProgram tests string/program equivalence
func TestPrecompiledProgram(t *testing.T) {
	root := map[string]any{
		"a": map[string]any{"b": map[string]any{"c": 42}},
	}
	tk := New(nil)

	prog, err := tk.Tokenize("a.b.c")
	if err != nil {
		t.Fatalf("Expected valid path, got %v", err)
	}
	if got, want := tk.Get(root, prog), tk.Get(root, "a.b.c"); got != want || got != 42 {
		t.Errorf("Expected program and text to agree on 42, got %v and %v", got, want)
	}
	if !tk.Set(root, prog, 7) {
		t.Fatal("Expected program set to succeed")
	}
	if got := tk.Get(root, "a.b.c"); got != 7 {
		t.Errorf("Expected 7 after set, got %v", got)
	}
}

// TestSetThenGet tests the write/read round trip
func TestSetThenGet(t *testing.T) {
	tk := New(nil)
	root := map[string]any{
		"cfg": map[string]any{"limits": map[string]any{"max": 1}},
	}
	paths := []string{"cfg.limits.max", `cfg["limits"]["max"]`, "cfg.limits[max]"}
	for i, path := range paths {
		if !tk.Set(root, path, 100+i) {
			t.Fatalf("Path %q: expected set to succeed", path)
		}
		if got := tk.Get(root, path); got != 100+i {
			t.Errorf("Path %q: expected %d, got %v", path, 100+i, got)
		}
	}
}

// TestTypedTrees tests the reflect fallback over typed maps and slices
func TestTypedTrees(t *testing.T) {
	root := map[string]any{
		"counts": map[string]int{"a": 1, "b": 2},
		"tags":   []string{"x", "y"},
	}
	tk := New(nil)

	if got := tk.Get(root, "counts.b"); got != 2 {
		t.Errorf("Expected 2 from typed map, got %v", got)
	}
	if got := tk.Get(root, "tags.1"); got != "y" {
		t.Errorf("Expected y from typed slice, got %v", got)
	}
	if !tk.Set(root, "counts.a", 9) {
		t.Fatal("Expected typed-map set to succeed")
	}
	if got := tk.Get(root, "counts.a"); got != 9 {
		t.Errorf("Expected 9, got %v", got)
	}
}
