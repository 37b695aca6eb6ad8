// Package filter parses AIP-160 filter expressions over scene listings into a
// condition tree that renders to SQL or evaluates against a record in memory.
package filter

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.einride.tech/aip/filtering"
	expr "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

// ErrInvalidFilter wraps every parse and type error returned by Parse.
var ErrInvalidFilter = errors.New("invalid filter")

// Filterable field names.
const (
	FieldName       = "name"
	FieldFrameCount = "frame_count"
	FieldGroupCount = "group_count"
	FieldCreatedAt  = "created_at"
	FieldUpdatedAt  = "updated_at"
)

type fieldKind int

const (
	kindString fieldKind = iota
	kindInt
	kindTimestamp
)

var fieldKinds = map[string]fieldKind{
	FieldName:       kindString,
	FieldFrameCount: kindInt,
	FieldGroupCount: kindInt,
	FieldCreatedAt:  kindTimestamp,
	FieldUpdatedAt:  kindTimestamp,
}

// Op is a logical or comparison operator of a condition node.
type Op string

const (
	OpAnd Op = "AND"
	OpOr  Op = "OR"
	OpEq  Op = "="
	OpNe  Op = "!="
	OpLt  Op = "<"
	OpLe  Op = "<="
	OpGt  Op = ">"
	OpGe  Op = ">="
)

// Condition is one node of a parsed filter. AND/OR nodes use Left and Right;
// comparison nodes use Field and Value. Value is a string, int64 or time.Time
// matching the field's declared type.
type Condition struct {
	Op    Op
	Left  *Condition
	Right *Condition
	Field string
	Value any
}

// Declarations returns the AIP-160 declarations for scene listing filters.
func Declarations() (*filtering.Declarations, error) {
	return filtering.NewDeclarations(
		filtering.DeclareStandardFunctions(),
		filtering.DeclareIdent(FieldName, filtering.TypeString),
		filtering.DeclareIdent(FieldFrameCount, filtering.TypeInt),
		filtering.DeclareIdent(FieldGroupCount, filtering.TypeInt),
		filtering.DeclareIdent(FieldCreatedAt, filtering.TypeTimestamp),
		filtering.DeclareIdent(FieldUpdatedAt, filtering.TypeTimestamp),
	)
}

// Parse parses filterStr. An empty filter yields a nil condition, which
// matches every record.
func Parse(filterStr string) (*Condition, error) {
	if strings.TrimSpace(filterStr) == "" {
		return nil, nil
	}
	decls, err := Declarations()
	if err != nil {
		return nil, fmt.Errorf("create declarations: %w", err)
	}
	parsed, err := filtering.ParseFilterString(filterStr, decls)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}
	if parsed.CheckedExpr == nil {
		return nil, nil
	}
	cond, err := translateExpr(parsed.CheckedExpr.Expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}
	return cond, nil
}

func translateExpr(e *expr.Expr) (*Condition, error) {
	if e == nil {
		return nil, nil
	}
	switch kind := e.ExprKind.(type) {
	case *expr.Expr_CallExpr:
		return translateCall(kind.CallExpr)
	default:
		return nil, fmt.Errorf("unsupported expression type: %T", kind)
	}
}

func translateCall(call *expr.Expr_Call) (*Condition, error) {
	switch call.Function {
	case "_&&_", "AND":
		return translateLogical(OpAnd, call.Args)
	case "_||_", "OR":
		return translateLogical(OpOr, call.Args)
	case "_==_", "=":
		return translateComparison(OpEq, call.Args)
	case "_!=_", "!=":
		return translateComparison(OpNe, call.Args)
	case "_<_", "<":
		return translateComparison(OpLt, call.Args)
	case "_<=_", "<=":
		return translateComparison(OpLe, call.Args)
	case "_>_", ">":
		return translateComparison(OpGt, call.Args)
	case "_>=_", ">=":
		return translateComparison(OpGe, call.Args)
	default:
		return nil, fmt.Errorf("unsupported function: %s", call.Function)
	}
}

func translateLogical(op Op, args []*expr.Expr) (*Condition, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("%s requires 2 arguments", op)
	}
	left, err := translateExpr(args[0])
	if err != nil {
		return nil, err
	}
	right, err := translateExpr(args[1])
	if err != nil {
		return nil, err
	}
	return &Condition{Op: op, Left: left, Right: right}, nil
}

func translateComparison(op Op, args []*expr.Expr) (*Condition, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("comparison requires 2 arguments")
	}
	field, err := extractFieldName(args[0])
	if err != nil {
		return nil, err
	}
	kind, ok := fieldKinds[field]
	if !ok {
		return nil, fmt.Errorf("unknown field: %s", field)
	}
	raw, err := extractValue(args[1])
	if err != nil {
		return nil, err
	}
	value, err := coerce(kind, raw)
	if err != nil {
		return nil, fmt.Errorf("field %s: %w", field, err)
	}
	return &Condition{Op: op, Field: field, Value: value}, nil
}

func coerce(kind fieldKind, raw any) (any, error) {
	switch kind {
	case kindString:
		if s, ok := raw.(string); ok {
			return s, nil
		}
	case kindInt:
		switch v := raw.(type) {
		case int64:
			return v, nil
		case uint64:
			return int64(v), nil
		}
	case kindTimestamp:
		switch v := raw.(type) {
		case time.Time:
			return v, nil
		case string:
			return parseTimestamp(v)
		}
	}
	return nil, fmt.Errorf("unexpected value %v (%T)", raw, raw)
}

func extractFieldName(e *expr.Expr) (string, error) {
	if e == nil {
		return "", fmt.Errorf("nil expression")
	}
	switch kind := e.ExprKind.(type) {
	case *expr.Expr_IdentExpr:
		return kind.IdentExpr.Name, nil
	default:
		return "", fmt.Errorf("expected identifier, got %T", kind)
	}
}

func extractValue(e *expr.Expr) (any, error) {
	if e == nil {
		return nil, fmt.Errorf("nil expression")
	}
	switch kind := e.ExprKind.(type) {
	case *expr.Expr_ConstExpr:
		return extractConstValue(kind.ConstExpr)
	case *expr.Expr_CallExpr:
		if kind.CallExpr.Function == "timestamp" && len(kind.CallExpr.Args) == 1 {
			value, err := extractConstValue(kind.CallExpr.Args[0].GetConstExpr())
			if err != nil {
				return nil, err
			}
			text, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("timestamp argument must be a string")
			}
			return parseTimestamp(text)
		}
		return nil, fmt.Errorf("unsupported function in value position: %s", kind.CallExpr.Function)
	default:
		return nil, fmt.Errorf("expected constant or timestamp, got %T", kind)
	}
}

func extractConstValue(c *expr.Constant) (any, error) {
	if c == nil {
		return nil, fmt.Errorf("nil constant")
	}
	switch kind := c.ConstantKind.(type) {
	case *expr.Constant_StringValue:
		return kind.StringValue, nil
	case *expr.Constant_Int64Value:
		return kind.Int64Value, nil
	case *expr.Constant_Uint64Value:
		return kind.Uint64Value, nil
	default:
		return nil, fmt.Errorf("unsupported constant type: %T", kind)
	}
}

func parseTimestamp(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp format: %s", value)
	}
	return t.UTC(), nil
}
