package pathtoolkit

import (
	"github.com/valyala/fastjson"
)

// Borrowed-tree instantiation of the value capabilities: the engine reads
// straight off a parsed *fastjson.Value without converting the document to
// native maps. The adapter is read-only; writes report failure.

// ParseFast parses a JSON document with fastjson and wraps the result for
// the engine.
func ParseFast(data []byte) (any, error) {
	var p fastjson.Parser
	v, err := p.ParseBytes(data)
	if err != nil {
		return nil, ErrInvalidDocument
	}
	return WrapFast(v), nil
}

// WrapFast adapts a fastjson value: objects and arrays become capability
// nodes, scalars become native Go values.
func WrapFast(v *fastjson.Value) any {
	if v == nil {
		return nil
	}
	switch v.Type() {
	case fastjson.TypeObject:
		return fastObject{v}
	case fastjson.TypeArray:
		return fastArray{v}
	case fastjson.TypeString:
		return string(v.GetStringBytes())
	case fastjson.TypeNumber:
		return v.GetFloat64()
	case fastjson.TypeTrue:
		return true
	case fastjson.TypeFalse:
		return false
	}
	return nil
}

type fastObject struct {
	v *fastjson.Value
}

func (o fastObject) Lookup(key string) (any, bool) {
	child := o.v.Get(key)
	if child == nil {
		return nil, false
	}
	return WrapFast(child), true
}

func (o fastObject) Keys() []string {
	obj, err := o.v.Object()
	if err != nil {
		return nil
	}
	keys := make([]string, 0, obj.Len())
	obj.Visit(func(key []byte, _ *fastjson.Value) {
		keys = append(keys, string(key))
	})
	return keys
}

func (o fastObject) Store(string, any) bool { return false }

type fastArray struct {
	v *fastjson.Value
}

func (a fastArray) Len() int {
	return len(a.v.GetArray())
}

func (a fastArray) At(i int) (any, bool) {
	items := a.v.GetArray()
	if i < 0 || i >= len(items) {
		return nil, false
	}
	return WrapFast(items[i]), true
}

func (a fastArray) SetAt(int, any) bool { return false }
