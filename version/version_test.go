package version

import (
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Version
	}{
		{"1.0", Version{Epoch: 0, Upstream: "1.0"}},
		{"2:1.0", Version{Epoch: 2, Upstream: "1.0"}},
		{"1.0-3", Version{Epoch: 0, Upstream: "1.0", Revision: "3"}},
		{"1:2.4.1-7", Version{Epoch: 1, Upstream: "2.4.1", Revision: "7"}},
		{"1.0~rc1-1", Version{Epoch: 0, Upstream: "1.0~rc1", Revision: "1"}},
		{" 1.0 ", Version{Epoch: 0, Upstream: "1.0"}},
	}
	for _, tc := range tests {
		got, err := Parse(tc.in)
		if err != nil {
			t.Errorf("Parse(%q) returned error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("Parse(%q) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
}

func TestParseErrors(t *testing.T) {
	for _, in := range []string{"", "  ", "abc:1.0", ":1.0", "-1"} {
		if _, err := Parse(in); err == nil {
			t.Errorf("Parse(%q) succeeded, want error", in)
		}
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		v    Version
		want string
	}{
		{Version{Upstream: "1.0"}, "1.0"},
		{Version{Epoch: 2, Upstream: "1.0"}, "2:1.0"},
		{Version{Upstream: "1.0", Revision: "3"}, "1.0-3"},
		{Version{Epoch: 1, Upstream: "2.4.1", Revision: "7"}, "1:2.4.1-7"},
	}
	for _, tc := range tests {
		if got := tc.v.String(); got != tc.want {
			t.Errorf("%+v.String() = %q, want %q", tc.v, got, tc.want)
		}
	}
}

func TestCompareOrdering(t *testing.T) {
	// Each element must compare strictly less than the next.
	ordered := []string{
		"1.0~~",
		"1.0~~a",
		"1.0~",
		"1.0",
		"1.0-1",
		"1.0-2",
		"1.0-10",
		"1.0a",
		"1.0a1",
		"1.0b",
		"1:0.1",
		"2:0.1",
	}

	parsed := make([]Version, len(ordered))
	for i, s := range ordered {
		v, err := Parse(s)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", s, err)
		}
		parsed[i] = v
	}

	for i := 1; i < len(parsed); i++ {
		a, b := parsed[i-1], parsed[i]
		if c := a.Compare(b); c >= 0 {
			t.Errorf("Compare(%q, %q) = %d, want < 0", ordered[i-1], ordered[i], c)
		}
		if c := b.Compare(a); c <= 0 {
			t.Errorf("Compare(%q, %q) = %d, want > 0", ordered[i], ordered[i-1], c)
		}
	}
}

func TestCompareEqual(t *testing.T) {
	tests := []struct{ a, b string }{
		{"1.0", "1.0"},
		{"1.0-0", "1.0"},
		{"0:1.0", "1.0"},
		{"01.0", "1.0"},
	}
	for _, tc := range tests {
		a, err := Parse(tc.a)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", tc.a, err)
		}
		b, err := Parse(tc.b)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", tc.b, err)
		}
		if c := a.Compare(b); c != 0 {
			t.Errorf("Compare(%q, %q) = %d, want 0", tc.a, tc.b, c)
		}
	}
}

func TestCompareDigitRunsNumeric(t *testing.T) {
	// "10" must sort after "9", unlike a lexicographic string compare.
	a, err := Parse("1.9")
	if err != nil {
		t.Fatal(err)
	}
	b, err := Parse("1.10")
	if err != nil {
		t.Fatal(err)
	}
	if c := a.Compare(b); c >= 0 {
		t.Errorf("Compare(1.9, 1.10) = %d, want < 0", c)
	}
}
