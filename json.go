package pathtoolkit

import (
	"errors"

	"github.com/Jeffail/gabs/v2"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// Error definitions for document bridge operations
var (
	ErrInvalidDocument = errors.New("invalid document")
	ErrPathNotFound    = errors.New("path not found in document")
)

// SetJSONOptions represents additional options for JSON set operations.
type SetJSONOptions struct {
	// Pretty re-indents the resulting document.
	Pretty bool
}

// DefaultSetJSONOptions provides default settings for JSON set operations.
var DefaultSetJSONOptions = SetJSONOptions{}

// GetJSON resolves a path against a serialized JSON document. Plain dotted
// paths are served straight from the document bytes; anything richer is
// decoded once and run through the engine.
func (tk *PathToolkit) GetJSON(data []byte, path string, args ...any) any {
	if path == "" {
		return gjson.ParseBytes(data).Value()
	}
	if tk.delegatableJSONPath(path) && len(args) == 0 {
		if r := gjson.GetBytes(data, path); r.Exists() {
			return r.Value()
		}
		return tk.defaultReturn
	}
	doc := gjson.ParseBytes(data).Value()
	return tk.Get(doc, path, args...)
}

// SetJSON writes a value into a serialized JSON document and returns the
// modified bytes.
func (tk *PathToolkit) SetJSON(data []byte, path string, value any, args ...any) ([]byte, error) {
	return tk.SetJSONWithOptions(data, path, value, nil, args...)
}

// SetJSONWithOptions is SetJSON with explicit output options. Plain dotted
// writes delegate to byte-level patching; complex paths materialise the
// document, mutate the native tree through the engine, and re-encode.
func (tk *PathToolkit) SetJSONWithOptions(data []byte, path string, value any, options *SetJSONOptions, args ...any) ([]byte, error) {
	opts := DefaultSetJSONOptions
	if options != nil {
		opts = *options
	}
	if path == "" {
		return data, ErrPathNotFound
	}
	if !gjson.ValidBytes(data) {
		return data, ErrInvalidDocument
	}

	if tk.delegatableJSONPath(path) && len(args) == 0 && tk.jsonParentExists(data, path) {
		out, err := sjson.SetBytes(data, path, value)
		if err != nil {
			return data, err
		}
		return finishJSON(out, opts), nil
	}

	container, err := gabs.ParseJSON(data)
	if err != nil {
		return data, ErrInvalidDocument
	}
	doc := container.Data()
	if !tk.Set(doc, path, value, args...) {
		return data, ErrPathNotFound
	}
	out := container.Bytes()
	return finishJSON(out, opts), nil
}

func finishJSON(out []byte, opts SetJSONOptions) []byte {
	if opts.Pretty {
		return pretty.Pretty(out)
	}
	return pretty.Ugly(out)
}

// delegatableJSONPath reports whether path can be handed to the byte-level
// JSON resolvers unchanged: the engine must be on the default separator and
// the path must hold nothing either dialect treats specially.
func (tk *PathToolkit) delegatableJSONPath(path string) bool {
	if tk.syntax.propertySeparator() != '.' {
		return false
	}
	if tk.syntax.hasComplex(path) {
		return false
	}
	for i := 0; i < len(path); i++ {
		switch path[i] {
		case '#', '?', '|', ':':
			return false
		}
	}
	return true
}

// jsonParentExists reports whether the location owning the final path
// segment is present, so byte-level delegation cannot materialise
// intermediates the engine's force mode would have refused.
func (tk *PathToolkit) jsonParentExists(data []byte, path string) bool {
	if tk.force {
		return true
	}
	last := -1
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '.' {
			last = i
			break
		}
	}
	if last < 0 {
		return true
	}
	parent := gjson.GetBytes(data, path[:last])
	return parent.IsObject() || parent.IsArray()
}

// GetJSON resolves a path against a JSON document using the shared default
// engine.
func GetJSON(data []byte, path string, args ...any) any {
	return defaultEngine.GetJSON(data, path, args...)
}

// SetJSON writes into a JSON document using the shared default engine.
func SetJSON(data []byte, path string, value any, args ...any) ([]byte, error) {
	return defaultEngine.SetJSON(data, path, value, args...)
}
