package pathtoolkit

// Options configures a PathToolkit instance.
type Options struct {
	// UseCache memoises compiled programs keyed by raw path text.
	UseCache bool

	// Force materialises missing intermediate properties as empty maps
	// during writes.
	Force bool

	// Simple reduces the grammar to bare names and a single property
	// separator.
	Simple bool

	// DefaultReturn is handed back by Get when a path resolves to absent.
	DefaultReturn any
}

// DefaultOptions provides the settings a zero-configuration engine runs
// with.
var DefaultOptions = Options{
	UseCache: true,
}

// PathToolkit is a path-expression engine instance. It owns its syntax
// table and token cache; the instance is not safe for concurrent use while
// the syntax table is being mutated.
type PathToolkit struct {
	syntax        *syntaxTable
	cache         *tokenCache
	force         bool
	defaultReturn any
}

// New creates an engine. A nil opts uses DefaultOptions.
func New(opts *Options) *PathToolkit {
	o := DefaultOptions
	if opts != nil {
		o = *opts
	}
	tk := &PathToolkit{
		syntax:        newSyntaxTable(),
		cache:         newTokenCache(),
		force:         o.Force,
		defaultReturn: o.DefaultReturn,
	}
	tk.cache.setEnabled(o.UseCache)
	if o.Simple {
		tk.syntax.setSimple(0)
	}
	return tk
}

//------------------------------------------------------------------------------
// TOKENIZATION
//------------------------------------------------------------------------------

// Tokenize compiles path text into a reusable program. Successful results
// are cached against the raw text until the syntax table changes.
func (tk *PathToolkit) Tokenize(path string) (*Program, error) {
	if p, ok := tk.cache.get(path); ok {
		return p, nil
	}
	p, err := tokenize(tk.syntax, path)
	if err != nil {
		return nil, err
	}
	tk.cache.put(path, p)
	return p, nil
}

// IsValid reports whether path tokenizes under the active syntax.
func (tk *PathToolkit) IsValid(path string) bool {
	_, err := tk.Tokenize(path)
	return err == nil
}

// program normalises a string-or-Program path argument.
func (tk *PathToolkit) program(path any) (*Program, bool) {
	switch p := path.(type) {
	case string:
		prog, err := tk.Tokenize(p)
		if err != nil {
			return nil, false
		}
		return prog, true
	case *Program:
		return p, p != nil
	}
	return nil, false
}

//------------------------------------------------------------------------------
// GET / SET
//------------------------------------------------------------------------------

// Get resolves path against root and returns the value found there, or the
// engine's default return when any step resolves to absent. The path may be
// a string or a pre-compiled *Program; extra args feed placeholder and
// context prefixes.
func (tk *PathToolkit) Get(root any, path any, args ...any) any {
	return tk.GetWithDefault(root, path, tk.defaultReturn, args...)
}

// GetWithDefault is Get with an explicit fallback for this one call.
func (tk *PathToolkit) GetWithDefault(root any, path any, dflt any, args ...any) any {
	if text, isText := path.(string); isText {
		if text == "" {
			return root
		}
		// Dotted text free of complex characters skips compilation.
		if !tk.syntax.hasComplex(text) {
			if v, ok := quickGetText(root, text, tk.syntax.propertySeparator()); ok {
				return v
			}
			return dflt
		}
	}
	prog, ok := tk.program(path)
	if !ok {
		return dflt
	}
	if len(prog.steps) == 0 {
		return root
	}
	var v any
	if prog.simple && len(args) == 0 {
		v, ok = quickGet(root, prog.steps)
	} else {
		v, ok = tk.resolveProgram(root, prog, false, nil, args)
	}
	if !ok {
		return dflt
	}
	return v
}

// Set assigns value at the location path resolves to and reports whether
// every addressed target was assigned. Writes happen only at the final
// step; with a collection or each tail the write fans out and Set is true
// only when no target was missed.
func (tk *PathToolkit) Set(root any, path any, value any, args ...any) bool {
	prog, ok := tk.program(path)
	if !ok || len(prog.steps) == 0 {
		return false
	}
	if prog.simple && len(args) == 0 {
		return quickSet(root, prog.steps, value, tk.force)
	}
	_, ok = tk.resolveProgram(root, prog, true, value, args)
	return ok
}

//------------------------------------------------------------------------------
// SYNTAX AND MODE CONFIGURATION
//------------------------------------------------------------------------------

// SetPrefix rebinds a prefix role. The token cache is wiped on success.
func (tk *PathToolkit) SetPrefix(role PrefixRole, c byte) error {
	if err := tk.syntax.setPrefix(role, c); err != nil {
		return err
	}
	tk.cache.wipe()
	return nil
}

// SetSeparator rebinds a separator role. The token cache is wiped on
// success.
func (tk *PathToolkit) SetSeparator(role SeparatorRole, c byte) error {
	if err := tk.syntax.setSeparator(role, c); err != nil {
		return err
	}
	tk.cache.wipe()
	return nil
}

// SetContainer rebinds a container role's opener and closer. The token
// cache is wiped on success.
func (tk *PathToolkit) SetContainer(role ContainerRole, opener, closer byte) error {
	if err := tk.syntax.setContainer(role, opener, closer); err != nil {
		return err
	}
	tk.cache.wipe()
	return nil
}

// PrefixChar returns the character bound to a prefix role, or 0 if the role
// is unbound (simple mode).
func (tk *PathToolkit) PrefixChar(role PrefixRole) byte {
	return tk.syntax.prefixFor(role)
}

// SeparatorChar returns the character bound to a separator role, or 0 if the
// role is unbound.
func (tk *PathToolkit) SeparatorChar(role SeparatorRole) byte {
	return tk.syntax.separatorFor(role)
}

// ContainerChars returns the opener and closer bound to a container role.
func (tk *PathToolkit) ContainerChars(role ContainerRole) (opener, closer byte, ok bool) {
	ct, ok := tk.syntax.containerFor(role)
	if !ok {
		return 0, 0, false
	}
	return ct.opener, ct.closer, true
}

// ResetSyntax restores the default grammar and wipes the token cache.
func (tk *PathToolkit) ResetSyntax() {
	tk.syntax.reset()
	tk.cache.wipe()
}

// SetSimpleSyntax toggles simple mode: prefixes and containers are cleared
// and the property separator is the only special character. Turning simple
// mode off restores the default grammar.
func (tk *PathToolkit) SetSimpleSyntax(on bool) {
	if on {
		tk.syntax.setSimple(0)
	} else {
		tk.syntax.reset()
	}
	tk.cache.wipe()
}

// SetSimpleSyntaxSeparator enables simple mode with a custom property
// separator.
func (tk *PathToolkit) SetSimpleSyntaxSeparator(sep byte) error {
	if !validRoleChar(sep) {
		return &ConfigError{Role: SeparatorProperty.String(), Char: sep}
	}
	tk.syntax.setSimple(sep)
	tk.cache.wipe()
	return nil
}

// SetUseCache toggles program caching. Re-enabling starts from an empty
// cache.
func (tk *PathToolkit) SetUseCache(on bool) {
	tk.cache.setEnabled(on)
}

// SetForce toggles materialisation of missing intermediates during writes.
func (tk *PathToolkit) SetForce(on bool) {
	tk.force = on
}

// SetDefaultReturn changes the value Get hands back for absent results.
func (tk *PathToolkit) SetDefaultReturn(v any) {
	tk.defaultReturn = v
}

// CacheStats reports cumulative token-cache hits and misses.
func (tk *PathToolkit) CacheStats() (hits, misses int64) {
	return tk.cache.stats()
}

//------------------------------------------------------------------------------
// PACKAGE-LEVEL CONVENIENCE API
//------------------------------------------------------------------------------

var defaultEngine = New(nil)

// Get resolves path against root using a shared default engine.
func Get(root any, path any, args ...any) any {
	return defaultEngine.Get(root, path, args...)
}

// GetWithDefault resolves path against root with an explicit fallback.
func GetWithDefault(root any, path any, dflt any, args ...any) any {
	return defaultEngine.GetWithDefault(root, path, dflt, args...)
}

// Set assigns value at path against root using a shared default engine.
func Set(root any, path any, value any, args ...any) bool {
	return defaultEngine.Set(root, path, value, args...)
}

// Tokenize compiles path text using a shared default engine.
func Tokenize(path string) (*Program, error) {
	return defaultEngine.Tokenize(path)
}

// IsValid reports whether path tokenizes under the default grammar.
func IsValid(path string) bool {
	return defaultEngine.IsValid(path)
}

// EscapeSegment escapes a literal segment under the default grammar.
func EscapeSegment(seg string) string {
	return defaultEngine.EscapeSegment(seg)
}

// BuildPath joins escaped literal segments under the default grammar.
func BuildPath(segments ...string) string {
	return defaultEngine.BuildPath(segments...)
}

// FindFirst searches root for the first leaf equal to target.
func FindFirst(root, target any) (string, bool) {
	return defaultEngine.FindFirst(root, target)
}

// FindAll searches root for every leaf equal to target.
func FindAll(root, target any) []string {
	return defaultEngine.FindAll(root, target)
}
