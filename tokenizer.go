package pathtoolkit

import "fmt"

// tokenize compiles path text into a program under the given syntax table.
// It is pure: the result depends only on the text and the table.
func tokenize(t *syntaxTable, text string) (*Program, error) {
	raw := text
	text, err := stripSuperfluousEscapes(t, text)
	if err != nil {
		return nil, err
	}

	prog := &Program{original: raw, hash: hashString(text)}
	if text == "" {
		prog.simple = true
		return prog, nil
	}

	// Fast exit: nothing but names and property separators.
	if !t.hasComplex(text) {
		sep := t.propertySeparator()
		start := 0
		for i := 0; i <= len(text); i++ {
			if i == len(text) || text[i] == sep {
				prog.steps = append(prog.steps, step{kind: stepName, word: text[start:i]})
				start = i + 1
			}
		}
		prog.simple = true
		return prog, nil
	}

	sc := scanner{t: t}
	if err := sc.run(text); err != nil {
		return nil, err
	}
	prog.steps = sc.prog
	prog.refreshSimple()
	return prog, nil
}

// stripSuperfluousEscapes removes the backslash from any escape whose target
// is not special under the active grammar.
func stripSuperfluousEscapes(t *syntaxTable, s string) (string, error) {
	i := 0
	for ; i < len(s); i++ {
		if s[i] == '\\' {
			break
		}
	}
	if i == len(s) {
		return s, nil
	}
	out := make([]byte, 0, len(s))
	out = append(out, s[:i]...)
	for ; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			out = append(out, c)
			continue
		}
		if i+1 == len(s) {
			return "", fmt.Errorf("%w: trailing escape", ErrInvalidPath)
		}
		next := s[i+1]
		if t.isSpecial(next) {
			out = append(out, '\\', next)
		} else {
			out = append(out, next)
		}
		i++
	}
	return string(out), nil
}

// scanner walks a complex path left to right, assembling steps.
type scanner struct {
	t    *syntaxTable
	prog []step

	word     []byte
	wildcard bool

	parents     int
	rootRel     bool
	placeholder bool
	contextArg  bool

	collection     []step
	inCollection   bool
	collectionEach bool

	pending     *step // a just-closed container step awaiting placement
	pendingEach bool
}

func (sc *scanner) hasMods() bool {
	return sc.parents > 0 || sc.rootRel || sc.placeholder || sc.contextArg
}

func (sc *scanner) run(text string) error {
	lastWasPropSep := false

	for i := 0; i < len(text); i++ {
		c := text[i]
		lastWasPropSep = false

		switch {
		case c == '\\':
			// Superfluous escapes are already gone, so the next character
			// exists and is special; it joins the word literally.
			i++
			sc.word = append(sc.word, text[i])

		case c == Wildcard:
			sc.word = append(sc.word, c)
			sc.wildcard = true

		default:
			if role, ok := sc.t.prefixes[c]; ok {
				if len(sc.word) > 0 {
					return fmt.Errorf("%w: prefix %q inside a word", ErrInvalidPath, c)
				}
				switch role {
				case PrefixParent:
					sc.parents++
				case PrefixRoot:
					sc.rootRel = true
				case PrefixPlaceholder:
					sc.placeholder = true
				case PrefixContext:
					sc.contextArg = true
				}
				continue
			}
			if ct, ok := sc.t.containerAt(c); ok {
				end, err := sc.enterContainer(text, i, ct)
				if err != nil {
					return err
				}
				i = end
				continue
			}
			if role, ok := sc.t.separators[c]; ok {
				switch role {
				case SeparatorProperty:
					if err := sc.flushElement(true); err != nil {
						return err
					}
					sc.closeCollection()
					lastWasPropSep = true
				case SeparatorCollection:
					if err := sc.flushElement(false); err != nil {
						return err
					}
					if len(sc.collection) == 0 {
						return fmt.Errorf("%w: empty collection branch", ErrInvalidPath)
					}
					sc.inCollection = true
				case SeparatorEach:
					if err := sc.flushElement(true); err != nil {
						return err
					}
					sc.closeCollection()
					sc.pendingEach = true
				}
				continue
			}
			if sc.t.closer[c] {
				return fmt.Errorf("%w: unbalanced container at %d", ErrInvalidPath, i)
			}
			sc.word = append(sc.word, c)
		}
	}

	flushed, err := sc.flushTail()
	if err != nil {
		return err
	}
	if !flushed && lastWasPropSep {
		sc.emit(step{kind: stepName})
	}
	sc.closeCollection()
	return nil
}

// enterContainer consumes a container span starting at the opener index and
// returns the index of the closer.
func (sc *scanner) enterContainer(text string, start int, ct container) (int, error) {
	if sc.placeholder || sc.contextArg {
		return 0, fmt.Errorf("%w: prefix with no following word", ErrInvalidPath)
	}
	if err := sc.flushWord(); err != nil {
		return 0, err
	}
	if sc.pending != nil {
		sc.emit(*sc.pending)
		sc.pending = nil
	}

	quote := sc.t.isQuoteRole(ct.role)
	depth := 1
	var content []byte
	i := start + 1
	for ; i < len(text); i++ {
		c := text[i]
		if c == '\\' {
			if i+1 == len(text) {
				return 0, fmt.Errorf("%w: trailing escape", ErrInvalidPath)
			}
			next := text[i+1]
			if quote && (next == ct.closer || next == '\\') {
				content = append(content, next)
			} else {
				content = append(content, '\\', next)
			}
			i++
			continue
		}
		if c == ct.closer {
			depth--
			if depth == 0 {
				break
			}
			content = append(content, c)
			continue
		}
		if !quote && c == ct.opener {
			depth++
		}
		content = append(content, c)
	}
	if depth != 0 {
		return 0, fmt.Errorf("%w: unbalanced container", ErrInvalidPath)
	}

	// An empty property container is a pass-through that tags the next step.
	if ct.role == ContainerProperty && len(content) == 0 {
		sc.pendingEach = true
		sc.parents, sc.rootRel = 0, false
		return i, nil
	}

	var st step
	if quote {
		sub := &Program{
			steps:    []step{{kind: stepName, word: string(content)}},
			simple:   true,
			original: string(content),
		}
		st = step{kind: stepSub, sub: sub, op: opForContainer(ct.role)}
	} else {
		sub, err := tokenize(sc.t, string(content))
		if err != nil {
			return 0, err
		}
		if ct.role == ContainerProperty && len(sub.steps) == 1 && sub.steps[0].kind == stepCollection {
			// foo[bar,baz] and foo[bar],[baz] read the same: one collection.
			st = sub.steps[0]
		} else {
			st = step{kind: stepSub, sub: sub, op: opForContainer(ct.role)}
		}
	}
	st.parents = sc.parents
	st.rootRel = sc.rootRel
	sc.parents, sc.rootRel = 0, false
	if sc.pendingEach {
		st.doEach = true
		sc.pendingEach = false
	}
	sc.pending = &st
	return i, nil
}

// flushWord converts the accumulated word (plus modifiers) into a pending
// step. A modifier run with no word is a syntax error.
func (sc *scanner) flushWord() error {
	if len(sc.word) == 0 {
		if sc.hasMods() {
			return fmt.Errorf("%w: prefix with no following word", ErrInvalidPath)
		}
		return nil
	}
	st := step{kind: stepName, word: string(sc.word), wildcard: sc.wildcard}
	if sc.hasMods() {
		st.kind = stepModified
		st.parents = sc.parents
		st.rootRel = sc.rootRel
		st.placeholder = sc.placeholder
		st.contextArg = sc.contextArg
	}
	if sc.pendingEach {
		st.doEach = true
		sc.pendingEach = false
	}
	sc.word = sc.word[:0]
	sc.wildcard = false
	sc.parents, sc.rootRel, sc.placeholder, sc.contextArg = 0, false, false, false
	if sc.pending != nil {
		sc.emit(*sc.pending)
	}
	sc.pending = &st
	return nil
}

// flushElement places the current word or container step. When the scanner
// is inside a collection run, the element joins the branch list; closing is
// the caller's concern.
func (sc *scanner) flushElement(toProgram bool) error {
	if err := sc.flushWord(); err != nil {
		return err
	}
	if sc.pending == nil {
		return nil
	}
	st := *sc.pending
	sc.pending = nil
	if sc.inCollection || !toProgram {
		if st.doEach {
			// The each flag distributes over the whole collection.
			st.doEach = false
			sc.collectionEach = true
		}
		sc.collection = append(sc.collection, st)
		return nil
	}
	sc.prog = append(sc.prog, st)
	return nil
}

// closeCollection emits the gathered branches as one collection step.
func (sc *scanner) closeCollection() {
	if !sc.inCollection {
		return
	}
	sc.prog = append(sc.prog, step{
		kind:     stepCollection,
		branches: sc.collection,
		doEach:   sc.collectionEach,
	})
	sc.collection = nil
	sc.inCollection = false
	sc.collectionEach = false
}

func (sc *scanner) emit(st step) {
	if sc.inCollection {
		if st.doEach {
			st.doEach = false
			sc.collectionEach = true
		}
		sc.collection = append(sc.collection, st)
		return
	}
	sc.prog = append(sc.prog, st)
}

// flushTail flushes end-of-input state and reports whether anything was
// emitted by the tail.
func (sc *scanner) flushTail() (bool, error) {
	had := len(sc.word) > 0 || sc.pending != nil
	if len(sc.word) == 0 && sc.hasMods() {
		return false, fmt.Errorf("%w: prefix with no following word", ErrInvalidPath)
	}
	if err := sc.flushElement(true); err != nil {
		return false, err
	}
	return had, nil
}
