package filter

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func recordResolver(name string, frames, groups int, created time.Time) Resolver {
	return func(field string) (any, bool) {
		switch field {
		case FieldName:
			return name, true
		case FieldFrameCount:
			return frames, true
		case FieldGroupCount:
			return groups, true
		case FieldCreatedAt, FieldUpdatedAt:
			return created, true
		default:
			return nil, false
		}
	}
}

func TestParseEmptyFilter(t *testing.T) {
	cond, err := Parse("   ")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cond != nil {
		t.Fatalf("condition = %+v, want nil", cond)
	}
	sql, err := cond.SQL(SceneColumns)
	if err != nil || sql.Clause != "" {
		t.Fatalf("SQL = %+v, %v", sql, err)
	}
	ok, err := cond.Match(recordResolver("x", 0, 0, time.Time{}))
	if err != nil || !ok {
		t.Fatalf("Match = %v, %v, want true", ok, err)
	}
}

func TestParseRendersSQL(t *testing.T) {
	tests := []struct {
		filter string
		clause string
		params []any
	}{
		{`name = "First Turnabout"`, "name = ?", []any{"First Turnabout"}},
		{`frame_count >= 3`, "frame_count >= ?", []any{int64(3)}},
		{`name = "A" AND group_count < 4`, "(name = ? AND group_count < ?)", []any{"A", int64(4)}},
		{`frame_count > 5 OR group_count = 1`, "(frame_count > ? OR group_count = ?)", []any{int64(5), int64(1)}},
		{`name != "draft"`, "name != ?", []any{"draft"}},
	}
	for _, tc := range tests {
		t.Run(tc.filter, func(t *testing.T) {
			cond, err := Parse(tc.filter)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			got, err := cond.SQL(SceneColumns)
			if err != nil {
				t.Fatalf("sql: %v", err)
			}
			if got.Clause != tc.clause {
				t.Fatalf("clause = %q, want %q", got.Clause, tc.clause)
			}
			if !reflect.DeepEqual(got.Params, tc.params) {
				t.Fatalf("params = %#v, want %#v", got.Params, tc.params)
			}
		})
	}
}

func TestParseMatchesInMemory(t *testing.T) {
	resolve := recordResolver("First Turnabout", 3, 2, time.Now())
	tests := []struct {
		filter string
		want   bool
	}{
		{`name = "First Turnabout"`, true},
		{`name = "Turnabout Sisters"`, false},
		{`frame_count >= 3 AND group_count = 2`, true},
		{`frame_count > 3 OR group_count = 2`, true},
		{`frame_count > 3 OR group_count > 2`, false},
		{`group_count != 2`, false},
	}
	for _, tc := range tests {
		t.Run(tc.filter, func(t *testing.T) {
			cond, err := Parse(tc.filter)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			got, err := cond.Match(resolve)
			if err != nil {
				t.Fatalf("match: %v", err)
			}
			if got != tc.want {
				t.Fatalf("Match = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestParseRejectsUnknownField(t *testing.T) {
	_, err := Parse(`character = "Phoenix"`)
	if !errors.Is(err, ErrInvalidFilter) {
		t.Fatalf("error = %v, want ErrInvalidFilter", err)
	}
}

func TestParseRejectsSyntaxError(t *testing.T) {
	_, err := Parse(`name = (`)
	if !errors.Is(err, ErrInvalidFilter) {
		t.Fatalf("error = %v, want ErrInvalidFilter", err)
	}
}

func TestTimestampConditions(t *testing.T) {
	cutoff := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	cond := &Condition{Op: OpGt, Field: FieldCreatedAt, Value: cutoff}

	got, err := cond.SQL(SceneColumns)
	if err != nil {
		t.Fatalf("sql: %v", err)
	}
	if got.Clause != "created_at > ?" {
		t.Fatalf("clause = %q", got.Clause)
	}
	if !reflect.DeepEqual(got.Params, []any{cutoff.UnixMilli()}) {
		t.Fatalf("params = %#v", got.Params)
	}

	later, err := cond.Match(recordResolver("x", 1, 1, cutoff.Add(time.Hour)))
	if err != nil || !later {
		t.Fatalf("later Match = %v, %v, want true", later, err)
	}
	earlier, err := cond.Match(recordResolver("x", 1, 1, cutoff.Add(-time.Hour)))
	if err != nil || earlier {
		t.Fatalf("earlier Match = %v, %v, want false", earlier, err)
	}
}

func TestMatchReportsTypeMismatch(t *testing.T) {
	cond := &Condition{Op: OpEq, Field: FieldName, Value: int64(3)}
	if _, err := cond.Match(recordResolver("x", 1, 1, time.Now())); err == nil {
		t.Fatal("expected type mismatch error")
	}
}

func TestSQLRejectsUnmappedField(t *testing.T) {
	cond := &Condition{Op: OpEq, Field: "payload", Value: "x"}
	if _, err := cond.SQL(SceneColumns); err == nil {
		t.Fatal("expected unknown field error")
	}
}

func TestParseTimestampValue(t *testing.T) {
	got, err := parseTimestamp("2026-03-01T09:00:00-03:00")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if want := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC); !got.Equal(want) || got.Location() != time.UTC {
		t.Fatalf("timestamp = %v, want %v", got, want)
	}
	if _, err := parseTimestamp("yesterday"); err == nil {
		t.Fatal("expected invalid timestamp error")
	}
}
