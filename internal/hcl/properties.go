package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/graphkit/internal/ctxlog"
	"github.com/specialistvlad/graphkit/internal/value"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// isExprDefined checks if an HCL expression was actually present in the
// source. The decoder populates omitted optional attributes with zero-width
// placeholder expressions, so a nil check alone is insufficient.
func isExprDefined(ctx context.Context, expr hcl.Expression) bool {
	if expr == nil {
		return false
	}
	r := expr.Range()
	defined := r.End.Byte > r.Start.Byte
	ctxlog.FromContext(ctx).Debug("Checking if HCL attribute was explicitly defined.", "hcl_range", r.String(), "is_defined", defined)
	return defined
}

// propertiesFromExpr converts a properties attribute into an ordered map.
// An omitted or null attribute yields an empty map.
func propertiesFromExpr(ctx context.Context, expr hcl.Expression) (*value.Map, error) {
	if !isExprDefined(ctx, expr) {
		return value.NewMap(), nil
	}
	v, err := exprToValue(expr)
	if err != nil {
		return nil, err
	}
	if v.IsNull() {
		return value.NewMap(), nil
	}
	m, ok := v.AsMap()
	if !ok {
		return nil, fmt.Errorf("properties must be an object, got %s", v.Kind())
	}
	return m, nil
}

// exprToValue evaluates a literal expression without an evaluation context.
// Object constructors are walked item by item so that keys keep their
// source order; anything else is evaluated and converted from cty.
func exprToValue(expr hcl.Expression) (value.Value, error) {
	switch e := expr.(type) {
	case *hclsyntax.ObjectConsExpr:
		m := value.NewMap()
		for _, item := range e.Items {
			key, diags := item.KeyExpr.Value(nil)
			if diags.HasErrors() {
				return value.Value{}, diags
			}
			key, err := convert.Convert(key, cty.String)
			if err != nil || key.IsNull() || !key.IsKnown() {
				return value.Value{}, fmt.Errorf("%s: object key must be a string", item.KeyExpr.Range())
			}
			v, err := exprToValue(item.ValueExpr)
			if err != nil {
				return value.Value{}, err
			}
			m.Set(key.AsString(), v)
		}
		return value.FromMap(m), nil
	case *hclsyntax.TupleConsExpr:
		items := make([]value.Value, len(e.Exprs))
		for i, item := range e.Exprs {
			v, err := exprToValue(item)
			if err != nil {
				return value.Value{}, err
			}
			items[i] = v
		}
		return value.List(items...), nil
	}

	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return value.Value{}, diags
	}
	return value.FromCty(val)
}
