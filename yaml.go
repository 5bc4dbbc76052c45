package pathtoolkit

import (
	"github.com/goccy/go-yaml"
)

// GetYAML resolves a path against a serialized YAML document. The document
// is decoded once and the engine walks the native tree; decode failures are
// the only error condition, absence follows the engine's default-return
// rules.
func (tk *PathToolkit) GetYAML(data []byte, path string, args ...any) (any, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, ErrInvalidDocument
	}
	return tk.Get(doc, path, args...), nil
}

// SetYAML writes a value into a serialized YAML document and returns the
// re-encoded bytes. ErrPathNotFound is returned when the engine could not
// assign every addressed target; the document is returned unchanged in that
// case.
func (tk *PathToolkit) SetYAML(data []byte, path string, value any, args ...any) ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return data, ErrInvalidDocument
	}
	if !tk.Set(doc, path, value, args...) {
		return data, ErrPathNotFound
	}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return data, err
	}
	return out, nil
}

// GetYAML resolves a path against a YAML document using the shared default
// engine.
func GetYAML(data []byte, path string, args ...any) (any, error) {
	return defaultEngine.GetYAML(data, path, args...)
}

// SetYAML writes into a YAML document using the shared default engine.
func SetYAML(data []byte, path string, value any, args ...any) ([]byte, error) {
	return defaultEngine.SetYAML(data, path, value, args...)
}
