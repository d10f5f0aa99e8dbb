package dep

import (
	"testing"
)

// fakeTarget is a minimal Target for tests, standing in for
// index.AbstractPkg without importing it.
type fakeTarget string

func (f fakeTarget) Name() string { return string(f) }

func ensureFake(name string) Target { return fakeTarget(name) }

func TestParseListSimple(t *testing.T) {
	compounds, err := ParseList(Depend, "libc, libfoo (>= 1.2.3)", ensureFake)
	if err != nil {
		t.Fatalf("ParseList returned error: %v", err)
	}
	if len(compounds) != 2 {
		t.Fatalf("got %d compounds, want 2", len(compounds))
	}

	c0 := compounds[0]
	if c0.Kind != Depend || len(c0.Possibilities) != 1 {
		t.Fatalf("compound 0 = %+v, want single Depend alternative", c0)
	}
	if got := c0.Possibilities[0].Target.Name(); got != "libc" {
		t.Errorf("compound 0 target = %q, want libc", got)
	}
	if c0.Possibilities[0].Op != NoOp {
		t.Errorf("compound 0 op = %v, want NoOp", c0.Possibilities[0].Op)
	}

	c1 := compounds[1]
	if got := c1.Possibilities[0].Target.Name(); got != "libfoo" {
		t.Errorf("compound 1 target = %q, want libfoo", got)
	}
	if c1.Possibilities[0].Op != GE {
		t.Errorf("compound 1 op = %v, want GE", c1.Possibilities[0].Op)
	}
	if c1.Possibilities[0].Version != "1.2.3" {
		t.Errorf("compound 1 version = %q, want 1.2.3", c1.Possibilities[0].Version)
	}
}

func TestParseListAlternatives(t *testing.T) {
	compounds, err := ParseList(Depend, "foo (>= 1.0) | bar | baz (<< 2.0)", ensureFake)
	if err != nil {
		t.Fatalf("ParseList returned error: %v", err)
	}
	if len(compounds) != 1 {
		t.Fatalf("got %d compounds, want 1", len(compounds))
	}
	c := compounds[0]
	if len(c.Possibilities) != 3 {
		t.Fatalf("got %d alternatives, want 3", len(c.Possibilities))
	}
	wantNames := []string{"foo", "bar", "baz"}
	for i, w := range wantNames {
		if got := c.Possibilities[i].Target.Name(); got != w {
			t.Errorf("alternative %d = %q, want %q", i, got, w)
		}
	}
	if c.Possibilities[1].Op != NoOp {
		t.Errorf("bar op = %v, want NoOp", c.Possibilities[1].Op)
	}
	if c.Possibilities[2].Op != LT {
		t.Errorf("baz op = %v, want LT", c.Possibilities[2].Op)
	}
}

func TestParseListLegacyOperators(t *testing.T) {
	compounds, err := ParseList(Depend, "old (< 1.0), new (> 2.0)", ensureFake)
	if err != nil {
		t.Fatalf("ParseList returned error: %v", err)
	}
	if compounds[0].Possibilities[0].Op != LE {
		t.Errorf("legacy '<' aliased to %v, want LE", compounds[0].Possibilities[0].Op)
	}
	if compounds[1].Possibilities[0].Op != GE {
		t.Errorf("legacy '>' aliased to %v, want GE", compounds[1].Possibilities[0].Op)
	}
}

func TestParseListGreedyStar(t *testing.T) {
	compounds, err := ParseList(Depend, "foo (>= 1.0)*", ensureFake)
	if err != nil {
		t.Fatalf("ParseList returned error: %v", err)
	}
	if compounds[0].Kind != Greedy {
		t.Errorf("kind = %v, want Greedy", compounds[0].Kind)
	}

	compounds, err = ParseList(Depend, "foo *", ensureFake)
	if err != nil {
		t.Fatalf("ParseList returned error: %v", err)
	}
	if compounds[0].Kind != Greedy {
		t.Errorf("kind = %v, want Greedy", compounds[0].Kind)
	}
}

func TestParseListErrors(t *testing.T) {
	for _, in := range []string{"foo (>= 1.0", "foo ()"} {
		if _, err := ParseList(Depend, in, ensureFake); err == nil {
			t.Errorf("ParseList(%q) succeeded, want error", in)
		}
	}
}

func TestCompoundString(t *testing.T) {
	compounds, err := ParseList(Depend, "foo (>= 1.0) | bar", ensureFake)
	if err != nil {
		t.Fatalf("ParseList returned error: %v", err)
	}
	want := "foo (>= 1.0) | bar"
	if got := compounds[0].String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestKindSoft(t *testing.T) {
	for k, want := range map[Kind]bool{
		Depend:    false,
		PreDepend: false,
		Recommend: true,
		Suggest:   true,
		Greedy:    false,
		Conflict:  false,
	} {
		if got := k.Soft(); got != want {
			t.Errorf("%v.Soft() = %v, want %v", k, got, want)
		}
	}
}
