package filter

import (
	"fmt"
	"time"
)

// SQLCondition represents a SQL WHERE clause fragment with parameters.
type SQLCondition struct {
	// Clause is the SQL WHERE clause (e.g., "frame_count > ?").
	Clause string
	// Params are the positional parameters for the clause.
	Params []any
}

// Columns maps filter field names to SQL column names.
type Columns map[string]string

// SceneColumns is the column mapping of the scenes table. Timestamp columns
// hold Unix milliseconds.
var SceneColumns = Columns{
	FieldName:       "name",
	FieldFrameCount: "frame_count",
	FieldGroupCount: "group_count",
	FieldCreatedAt:  "created_at",
	FieldUpdatedAt:  "updated_at",
}

// SQL renders c as a WHERE fragment using columns. A nil condition renders
// an empty clause.
func (c *Condition) SQL(columns Columns) (SQLCondition, error) {
	if c == nil {
		return SQLCondition{}, nil
	}
	switch c.Op {
	case OpAnd, OpOr:
		left, err := c.Left.SQL(columns)
		if err != nil {
			return SQLCondition{}, err
		}
		right, err := c.Right.SQL(columns)
		if err != nil {
			return SQLCondition{}, err
		}
		if left.Clause == "" {
			return right, nil
		}
		if right.Clause == "" {
			return left, nil
		}
		return SQLCondition{
			Clause: fmt.Sprintf("(%s %s %s)", left.Clause, c.Op, right.Clause),
			Params: append(append([]any{}, left.Params...), right.Params...),
		}, nil
	case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe:
		column, ok := columns[c.Field]
		if !ok {
			return SQLCondition{}, fmt.Errorf("unknown field: %s", c.Field)
		}
		param := c.Value
		if t, ok := param.(time.Time); ok {
			param = t.UTC().UnixMilli()
		}
		return SQLCondition{
			Clause: fmt.Sprintf("%s %s ?", column, c.Op),
			Params: []any{param},
		}, nil
	default:
		return SQLCondition{}, fmt.Errorf("unsupported operator: %s", c.Op)
	}
}
