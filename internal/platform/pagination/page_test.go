package pagination

import "testing"

func TestClampPageSize(t *testing.T) {
	cfg := PageSizeConfig{Default: 25, Max: 100}
	tests := []struct {
		in   int
		want int
	}{
		{0, 25},
		{-3, 25},
		{10, 10},
		{100, 100},
		{500, 100},
	}
	for _, tc := range tests {
		if got := ClampPageSize(tc.in, cfg); got != tc.want {
			t.Fatalf("ClampPageSize(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
	if got := ClampPageSize(0, PageSizeConfig{}); got != 1 {
		t.Fatalf("ClampPageSize with empty config = %d, want 1", got)
	}
}

func TestParsePageSize(t *testing.T) {
	if got, err := ParsePageSize(""); err != nil || got != 0 {
		t.Fatalf("ParsePageSize(\"\") = %d, %v", got, err)
	}
	if got, err := ParsePageSize(" 40 "); err != nil || got != 40 {
		t.Fatalf("ParsePageSize(40) = %d, %v", got, err)
	}
	for _, raw := range []string{"ten", "-1", "1.5"} {
		if _, err := ParsePageSize(raw); err == nil {
			t.Fatalf("ParsePageSize(%q) expected error", raw)
		}
	}
}
