package pathtoolkit

import (
	"sort"

	"github.com/tidwall/match"
)

// evaluation carries per-resolve state: the argument list, the write value,
// and the owners recorded by the most recent map-over-sequence step (used to
// bind receivers when a call follows an each step).
type evaluation struct {
	args       []any
	setting    bool
	newValue   any
	force      bool
	eachOwners []any

	// literalQuotes is set while call arguments are evaluated: quoted
	// tokens then stand for themselves instead of naming properties.
	literalQuotes bool
}

// resolveProgram walks a compiled program against root. The boolean result
// is false when any step resolves to absent (or, when writing, when any
// target assignment failed).
func (tk *PathToolkit) resolveProgram(root any, prog *Program, setting bool, newValue any, args []any) (any, bool) {
	ev := &evaluation{
		args:     args,
		setting:  setting,
		newValue: newValue,
		force:    tk.force,
	}
	return ev.run(prog, []any{root})
}

// run threads a value stack through the program's steps. Position 0 is the
// evaluation root; each resolved step value is appended and becomes the next
// context. Sub-programs run on fresh stacks, so recursion never leaks
// frames upward.
func (ev *evaluation) run(prog *Program, stack []any) (any, bool) {
	if len(prog.steps) == 0 {
		if ev.setting {
			return nil, false
		}
		return stack[len(stack)-1], true
	}
	for i := range prog.steps {
		st := &prog.steps[i]
		last := i == len(prog.steps)-1
		result, ok := ev.applyStep(st, &stack, last)
		if !ok {
			return nil, false
		}
		stack = append(stack, result)
	}
	return stack[len(stack)-1], true
}

// applyStep resolves one step against the top of the stack, honoring the
// rebasing modifiers first: parent rewinds, root resets and truncates.
func (ev *evaluation) applyStep(st *step, stack *[]any, last bool) (any, bool) {
	frames := *stack
	ctx := frames[len(frames)-1]

	if st.parents > 0 {
		idx := len(frames) - 1 - st.parents
		if idx < 0 {
			return nil, false
		}
		ctx = frames[idx]
	}
	if st.rootRel {
		ctx = frames[0]
		*stack = frames[:1]
	}

	switch st.kind {
	case stepName, stepModified:
		return ev.applyWord(st, ctx, last)
	case stepCollection:
		return ev.applyCollection(st, ctx, last)
	case stepSub:
		return ev.applySub(st, ctx, *stack, last)
	}
	return nil, false
}

//------------------------------------------------------------------------------
// NAME AND MODIFIED-NAME STEPS
//------------------------------------------------------------------------------

func (ev *evaluation) applyWord(st *step, ctx any, last bool) (any, bool) {
	word := st.word
	wildcard := st.wildcard

	if st.placeholder {
		k, ok := parseIndex(word)
		if !ok || k < 1 || k > len(ev.args) {
			return nil, false
		}
		word = stringifyValue(ev.args[k-1])
		wildcard = containsWildcard(word)
	}
	if st.contextArg {
		k, ok := parseIndex(st.word)
		if !ok || k < 1 || k > len(ev.args) {
			return nil, false
		}
		if last && ev.setting {
			return nil, false
		}
		return ev.args[k-1], true
	}

	if st.doEach {
		items, ok := sequenceItems(ctx)
		if !ok {
			return nil, false
		}
		ev.eachOwners = items
		results := make([]any, 0, len(items))
		allOK := true
		for _, item := range items {
			v, ok := ev.word(item, word, wildcard, last)
			if !ok {
				allOK = false
				v = nil
			}
			results = append(results, v)
		}
		if ev.setting && last {
			return ev.newValue, allOK
		}
		if !allOK {
			return nil, false
		}
		return results, true
	}

	return ev.word(ctx, word, wildcard, last)
}

// word resolves a single (possibly wildcard) name against ctx, reading or
// writing depending on position.
func (ev *evaluation) word(ctx any, word string, wildcard bool, last bool) (any, bool) {
	if wildcard {
		return ev.wildcardWord(ctx, word, last)
	}

	if ev.setting && last {
		if !storeKey(ctx, word, ev.newValue) {
			return nil, false
		}
		got, ok := lookupKey(ctx, word)
		if !ok || !sameValue(got, ev.newValue) {
			return nil, false
		}
		return ev.newValue, true
	}

	v, ok := lookupKey(ctx, word)
	if ok {
		return v, true
	}
	if ev.setting && ev.force {
		next := map[string]any{}
		if storeKey(ctx, word, next) {
			return next, true
		}
		return nil, false
	}
	if isCallable(ctx) {
		// A name read against a callable yields the word itself; it names
		// the invocation that follows.
		return word, true
	}
	return nil, false
}

// wildcardWord gathers the values under every key the wildcard template
// matches. Keys are visited in sorted order for stable output.
func (ev *evaluation) wildcardWord(ctx any, word string, last bool) (any, bool) {
	keys, ok := objectKeys(ctx)
	if !ok {
		return nil, false
	}
	sort.Strings(keys)
	matched := keys[:0:0]
	for _, key := range keys {
		if match.Match(key, word) {
			matched = append(matched, key)
		}
	}
	if ev.setting && last {
		if len(matched) == 0 {
			return nil, false
		}
		for _, key := range matched {
			if !storeKey(ctx, key, ev.newValue) {
				return nil, false
			}
		}
		return ev.newValue, true
	}
	results := make([]any, 0, len(matched))
	for _, key := range matched {
		v, _ := lookupKey(ctx, key)
		results = append(results, v)
	}
	return results, true
}

//------------------------------------------------------------------------------
// COLLECTION STEPS
//------------------------------------------------------------------------------

func (ev *evaluation) applyCollection(st *step, ctx any, last bool) (any, bool) {
	if st.doEach {
		items, ok := sequenceItems(ctx)
		if !ok {
			return nil, false
		}
		ev.eachOwners = items
		outer := make([]any, 0, len(items))
		allOK := true
		for _, item := range items {
			inner, ok := ev.collectBranches(st.branches, item, last)
			if !ok {
				allOK = false
			}
			outer = append(outer, inner)
		}
		if ev.setting && last {
			return ev.newValue, allOK
		}
		if !allOK {
			return nil, false
		}
		return outer, true
	}
	return ev.collectBranches(st.branches, ctx, last)
}

// collectBranches evaluates every branch against the same context, in
// declaration order. On a final-step write the assignment fans out and
// succeeds only if every branch target was assigned; writes that land
// before a failure are retained.
func (ev *evaluation) collectBranches(branches []step, ctx any, last bool) (any, bool) {
	if ev.setting && last {
		allOK := true
		for i := range branches {
			if !ev.assignBranch(&branches[i], ctx) {
				allOK = false
			}
		}
		return ev.newValue, allOK
	}
	results := make([]any, 0, len(branches))
	for i := range branches {
		v, ok := ev.applyBranch(&branches[i], ctx)
		if !ok {
			v = nil
		}
		results = append(results, v)
	}
	return results, true
}

// applyBranch reads one collection branch against ctx. Branches see the
// current context only, never the stack, so a branch carrying a parent or
// root prefix resolves to absent.
func (ev *evaluation) applyBranch(br *step, ctx any) (any, bool) {
	switch br.kind {
	case stepName, stepModified:
		if br.parents > 0 || br.rootRel {
			return nil, false
		}
		saved := ev.setting
		ev.setting = false
		v, ok := ev.applyWord(br, ctx, false)
		ev.setting = saved
		return v, ok
	case stepCollection:
		return ev.collectBranches(br.branches, ctx, false)
	case stepSub:
		if ev.literalQuotes && (br.op == OpSingleQuote || br.op == OpDoubleQuote) {
			return br.sub.steps[0].word, true
		}
		switch br.op {
		case OpSingleQuote, OpDoubleQuote, OpProperty:
			key, wild, ok := ev.subKey(br, ctx)
			if !ok {
				return nil, false
			}
			if wild {
				return ev.wildcardWord(ctx, key, false)
			}
			return lookupKey(ctx, key)
		case OpEvalProperty:
			key, ok := ev.computedKey(br.sub, ctx)
			if !ok {
				return nil, false
			}
			return lookupKey(ctx, key)
		}
	}
	return nil, false
}

// assignBranch writes the pending value through one collection branch.
func (ev *evaluation) assignBranch(br *step, ctx any) bool {
	key, wild, ok := ev.branchKey(br, ctx)
	if !ok {
		return false
	}
	if wild {
		_, ok := ev.wildcardWord(ctx, key, true)
		return ok
	}
	if !storeKey(ctx, key, ev.newValue) {
		return false
	}
	got, ok := lookupKey(ctx, key)
	return ok && sameValue(got, ev.newValue)
}

// branchKey resolves the property name a branch addresses.
func (ev *evaluation) branchKey(br *step, ctx any) (string, bool, bool) {
	switch br.kind {
	case stepName, stepModified:
		if br.parents > 0 || br.rootRel || br.contextArg {
			return "", false, false
		}
		word := br.word
		wild := br.wildcard
		if br.placeholder {
			k, ok := parseIndex(word)
			if !ok || k < 1 || k > len(ev.args) {
				return "", false, false
			}
			word = stringifyValue(ev.args[k-1])
			wild = containsWildcard(word)
		}
		return word, wild, true
	case stepSub:
		switch br.op {
		case OpSingleQuote, OpDoubleQuote, OpProperty:
			return ev.subKey(br, ctx)
		case OpEvalProperty:
			key, ok := ev.computedKey(br.sub, ctx)
			return key, false, ok
		}
	}
	return "", false, false
}

//------------------------------------------------------------------------------
// SUB-PROGRAM STEPS
//------------------------------------------------------------------------------

func (ev *evaluation) applySub(st *step, ctx any, stack []any, last bool) (any, bool) {
	if st.op == OpCall {
		return ev.applyCall(st, ctx, stack, last)
	}
	if ev.literalQuotes && (st.op == OpSingleQuote || st.op == OpDoubleQuote) {
		return st.sub.steps[0].word, true
	}

	resolveKey := func(keyCtx any) (string, bool, bool) {
		if st.op == OpEvalProperty {
			key, ok := ev.computedKey(st.sub, keyCtx)
			return key, false, ok
		}
		return ev.subKey(st, keyCtx)
	}

	if st.doEach {
		items, ok := sequenceItems(ctx)
		if !ok {
			return nil, false
		}
		ev.eachOwners = items
		results := make([]any, 0, len(items))
		allOK := true
		for _, item := range items {
			key, wild, ok := resolveKey(item)
			if !ok {
				allOK = false
				results = append(results, nil)
				continue
			}
			v, ok := ev.word(item, key, wild, last)
			if !ok {
				allOK = false
				v = nil
			}
			results = append(results, v)
		}
		if ev.setting && last {
			return ev.newValue, allOK
		}
		if !allOK {
			return nil, false
		}
		return results, true
	}

	key, wild, ok := resolveKey(ctx)
	if !ok {
		return nil, false
	}
	return ev.word(ctx, key, wild, last)
}

// subKey derives the name a property or quote container addresses, plus
// whether the name is a wildcard template. A quoted span is its literal
// content and never a template; a single-name program is that name;
// anything richer is evaluated against ctx and the result is used as a
// literal name.
func (ev *evaluation) subKey(st *step, ctx any) (string, bool, bool) {
	if st.op == OpSingleQuote || st.op == OpDoubleQuote {
		return st.sub.steps[0].word, false, true
	}
	sub := st.sub
	if len(sub.steps) == 1 {
		inner := &sub.steps[0]
		switch inner.kind {
		case stepName:
			return inner.word, inner.wildcard, true
		case stepModified:
			if inner.placeholder && !inner.contextArg && inner.parents == 0 && !inner.rootRel {
				k, ok := parseIndex(inner.word)
				if !ok || k < 1 || k > len(ev.args) {
					return "", false, false
				}
				word := stringifyValue(ev.args[k-1])
				return word, containsWildcard(word), true
			}
		case stepSub:
			if inner.op == OpSingleQuote || inner.op == OpDoubleQuote {
				return inner.sub.steps[0].word, false, true
			}
		}
	}
	key, ok := ev.computedKey(sub, ctx)
	return key, false, ok
}

// computedKey evaluates a nested program against ctx and uses the result as
// a property name.
func (ev *evaluation) computedKey(sub *Program, ctx any) (string, bool) {
	child := &evaluation{args: ev.args, force: ev.force}
	v, ok := child.run(sub, []any{ctx})
	if !ok {
		return "", false
	}
	return stringifyValue(v), true
}

//------------------------------------------------------------------------------
// CALL STEPS
//------------------------------------------------------------------------------

func (ev *evaluation) applyCall(st *step, ctx any, stack []any, last bool) (any, bool) {
	if ev.setting && last {
		return nil, false
	}

	var receiver any
	if len(stack) >= 2 {
		receiver = stack[len(stack)-2]
	}

	fanOut := st.doEach
	if !fanOut && !isCallable(ctx) {
		// An each-tagged name leaves its call container untagged; a
		// sequence of callables gathered by the previous step fans the
		// invocation out all the same.
		if items, ok := sequenceItems(ctx); ok && len(items) > 0 && isCallable(items[0]) {
			fanOut = true
		}
	}
	if fanOut {
		items, ok := sequenceItems(ctx)
		if !ok {
			return nil, false
		}
		owners := ev.eachOwners
		results := make([]any, 0, len(items))
		for i, item := range items {
			recv := receiver
			if i < len(owners) {
				recv = owners[i]
			}
			args, ok := ev.callArgs(st.sub, recv)
			if !ok {
				return nil, false
			}
			v, ok := invoke(item, recv, args)
			if !ok {
				return nil, false
			}
			results = append(results, v)
		}
		return results, true
	}

	if !isCallable(ctx) {
		return nil, false
	}
	args, ok := ev.callArgs(st.sub, receiver)
	if !ok {
		return nil, false
	}
	return invoke(ctx, receiver, args)
}

// callArgs evaluates an argument program against the callable's receiver.
// An absent result means no arguments; a sequence result is spread; any
// other value is passed alone. Quoted tokens stand for themselves here.
func (ev *evaluation) callArgs(sub *Program, receiver any) ([]any, bool) {
	if sub == nil || len(sub.steps) == 0 {
		return nil, true
	}
	child := &evaluation{args: ev.args, force: ev.force, literalQuotes: true}
	v, ok := child.run(sub, []any{receiver})
	if !ok {
		return nil, true
	}
	if seq, isSeq := v.([]any); isSeq {
		return seq, true
	}
	return []any{v}, true
}

func containsWildcard(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == Wildcard {
			return true
		}
	}
	return false
}
