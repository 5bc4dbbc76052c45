package pathtoolkit

import "strings"

// EscapeSegment escapes every character of seg that is special under the
// engine's active syntax, so the segment reads as a single literal property
// name. Useful when keys contain separators, wildcards, or container
// characters.
func (tk *PathToolkit) EscapeSegment(seg string) string {
	if seg == "" {
		return ""
	}
	t := tk.syntax
	needsEscape := false
	for i := 0; i < len(seg); i++ {
		if t.isSpecial(seg[i]) {
			needsEscape = true
			break
		}
	}
	if !needsEscape {
		return seg
	}

	var b strings.Builder
	b.Grow(len(seg) * 2)
	for i := 0; i < len(seg); i++ {
		c := seg[i]
		if t.isSpecial(c) {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	return b.String()
}

// BuildPath joins literal segments with the active property separator after
// escaping each one.
// Example: BuildPath("config", "foo.bar@baz", "*key") -> "config.foo\\.bar\\@baz.\\*key".
func (tk *PathToolkit) BuildPath(segments ...string) string {
	if len(segments) == 0 {
		return ""
	}
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = tk.EscapeSegment(s)
	}
	return strings.Join(escaped, string(tk.syntax.propertySeparator()))
}
