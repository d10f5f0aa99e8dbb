package stanza

import (
	"strings"
	"testing"
)

func TestScannerSingleStanza(t *testing.T) {
	in := "Package: foo\nVersion: 1.0-1\nDescription: does a thing\n and keeps doing it\n"
	sc := NewScanner(strings.NewReader(in))

	rec, ok := sc.Next()
	if !ok {
		t.Fatalf("Next() ok = false, want true")
	}
	if got := rec.Get("Package"); got != "foo" {
		t.Errorf("Package = %q, want foo", got)
	}
	if got := rec.Get("Version"); got != "1.0-1" {
		t.Errorf("Version = %q, want 1.0-1", got)
	}
	if got, want := rec.Get("Description"), "does a thing\nand keeps doing it"; got != want {
		t.Errorf("Description = %q, want %q", got, want)
	}

	if _, ok := sc.Next(); ok {
		t.Errorf("second Next() ok = true, want false")
	}
}

func TestScannerMultipleStanzas(t *testing.T) {
	in := "Package: a\nVersion: 1\n\nPackage: b\nVersion: 2\n"
	sc := NewScanner(strings.NewReader(in))

	rec1, ok := sc.Next()
	if !ok || rec1.Get("Package") != "a" {
		t.Fatalf("first stanza = %+v, ok=%v", rec1, ok)
	}
	rec2, ok := sc.Next()
	if !ok || rec2.Get("Package") != "b" {
		t.Fatalf("second stanza = %+v, ok=%v", rec2, ok)
	}
	if _, ok := sc.Next(); ok {
		t.Errorf("third Next() ok = true, want false")
	}
}

func TestScannerBlankLinesBetweenStanzasSkipped(t *testing.T) {
	in := "Package: a\n\n\n\nPackage: b\n"
	sc := NewScanner(strings.NewReader(in))

	if _, ok := sc.Next(); !ok {
		t.Fatalf("first Next() ok = false")
	}
	if _, ok := sc.Next(); !ok {
		t.Fatalf("second Next() ok = false")
	}
	if _, ok := sc.Next(); ok {
		t.Errorf("third Next() ok = true, want false")
	}
}

func TestScannerFieldsOrderPreserved(t *testing.T) {
	in := "Package: a\nPriority: optional\nVersion: 1\n"
	sc := NewScanner(strings.NewReader(in))
	rec, _ := sc.Next()

	want := []string{"Package", "Priority", "Version"}
	got := rec.Fields()
	if len(got) != len(want) {
		t.Fatalf("Fields() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Fields()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestScannerMalformedLineSkipped(t *testing.T) {
	in := "Package: a\nnot a field line\nVersion: 1\n"
	sc := NewScanner(strings.NewReader(in))
	rec, ok := sc.Next()
	if !ok {
		t.Fatalf("Next() ok = false")
	}
	if rec.Has("not a field line") {
		t.Errorf("malformed line was not skipped")
	}
	if rec.Get("Version") != "1" {
		t.Errorf("Version = %q, want 1", rec.Get("Version"))
	}
}
