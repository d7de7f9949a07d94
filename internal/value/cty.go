package value

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// ToCty converts v into a cty.Value. Maps become objects and lists become
// tuples, so heterogeneous content is preserved.
func (v Value) ToCty() cty.Value {
	switch v.kind {
	case KindString:
		return cty.StringVal(v.str)
	case KindNumber:
		return cty.NumberFloatVal(v.num)
	case KindBool:
		return cty.BoolVal(v.b)
	case KindList:
		if len(v.list) == 0 {
			return cty.EmptyTupleVal
		}
		items := make([]cty.Value, len(v.list))
		for i, item := range v.list {
			items[i] = item.ToCty()
		}
		return cty.TupleVal(items)
	case KindMap:
		return v.m.ToCty()
	}
	return cty.NullVal(cty.DynamicPseudoType)
}

// ToCty converts m into a cty object value.
func (m *Map) ToCty() cty.Value {
	if m.Len() == 0 {
		return cty.EmptyObjectVal
	}
	attrs := make(map[string]cty.Value, m.Len())
	m.Range(func(k string, v Value) bool {
		attrs[k] = v.ToCty()
		return true
	})
	return cty.ObjectVal(attrs)
}

// FromCty converts a cty.Value into a Value. Unknown values are rejected;
// object and map keys arrive in cty's lexical order.
func FromCty(val cty.Value) (Value, error) {
	if val.IsNull() {
		return Null(), nil
	}
	if !val.IsKnown() {
		return Value{}, fmt.Errorf("cannot convert unknown value of type %s", val.Type().FriendlyName())
	}
	ty := val.Type()
	if ty.IsPrimitiveType() {
		switch ty {
		case cty.String:
			return String(val.AsString()), nil
		case cty.Number:
			f, _ := val.AsBigFloat().Float64()
			return Number(f), nil
		case cty.Bool:
			return Bool(val.True()), nil
		default:
			return Value{}, fmt.Errorf("unsupported primitive type: %s", ty.FriendlyName())
		}
	}
	if ty.IsObjectType() || ty.IsMapType() {
		m := NewMap()
		for it := val.ElementIterator(); it.Next(); {
			k, elem := it.Element()
			converted, err := FromCty(elem)
			if err != nil {
				return Value{}, fmt.Errorf("key %q: %w", k.AsString(), err)
			}
			m.Set(k.AsString(), converted)
		}
		return FromMap(m), nil
	}
	if ty.IsTupleType() || ty.IsListType() || ty.IsSetType() {
		var items []Value
		for it := val.ElementIterator(); it.Next(); {
			_, elem := it.Element()
			converted, err := FromCty(elem)
			if err != nil {
				return Value{}, err
			}
			items = append(items, converted)
		}
		return List(items...), nil
	}
	return Value{}, fmt.Errorf("unsupported cty.Type for conversion: %s", ty.FriendlyName())
}
