package filter

import (
	"fmt"
	"strings"
	"time"
)

// Resolver returns a value for a field name.
type Resolver func(name string) (any, bool)

// Match evaluates c against resolve. A nil condition matches.
func (c *Condition) Match(resolve Resolver) (bool, error) {
	if c == nil {
		return true, nil
	}
	switch c.Op {
	case OpAnd:
		left, err := c.Left.Match(resolve)
		if err != nil || !left {
			return left, err
		}
		return c.Right.Match(resolve)
	case OpOr:
		left, err := c.Left.Match(resolve)
		if err != nil {
			return false, err
		}
		if left {
			return true, nil
		}
		return c.Right.Match(resolve)
	}

	actual, ok := resolve(c.Field)
	if !ok {
		return false, fmt.Errorf("unknown field: %s", c.Field)
	}
	cmp, err := compareValues(actual, c.Value)
	if err != nil {
		return false, fmt.Errorf("field %s: %w", c.Field, err)
	}
	switch c.Op {
	case OpEq:
		return cmp == 0, nil
	case OpNe:
		return cmp != 0, nil
	case OpLt:
		return cmp < 0, nil
	case OpLe:
		return cmp <= 0, nil
	case OpGt:
		return cmp > 0, nil
	case OpGe:
		return cmp >= 0, nil
	default:
		return false, fmt.Errorf("unsupported operator: %s", c.Op)
	}
}

// compareValues orders left against right. Timestamps compare at millisecond
// precision to agree with the SQL rendering.
func compareValues(left, right any) (int, error) {
	switch l := left.(type) {
	case string:
		r, ok := right.(string)
		if !ok {
			return 0, fmt.Errorf("type mismatch: string vs %T", right)
		}
		return strings.Compare(l, r), nil
	case int:
		return compareInts(int64(l), right)
	case int64:
		return compareInts(l, right)
	case time.Time:
		r, ok := right.(time.Time)
		if !ok {
			return 0, fmt.Errorf("type mismatch: timestamp vs %T", right)
		}
		return compareInts(l.UnixMilli(), r.UnixMilli())
	default:
		return 0, fmt.Errorf("unsupported value type: %T", left)
	}
}

func compareInts(left int64, right any) (int, error) {
	var r int64
	switch v := right.(type) {
	case int:
		r = int64(v)
	case int64:
		r = v
	default:
		return 0, fmt.Errorf("type mismatch: int vs %T", right)
	}
	switch {
	case left < r:
		return -1, nil
	case left > r:
		return 1, nil
	default:
		return 0, nil
	}
}
