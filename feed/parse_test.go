package feed

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	pkgindex "github.com/opkg-go/pkgresolve"
	"github.com/opkg-go/pkgresolve/stanza"
)

func parseOneStanza(t *testing.T, ix *pkgindex.Index, text string) *pkgindex.Package {
	t.Helper()
	sc := stanza.NewScanner(strings.NewReader(text))
	rec, ok := sc.Next()
	if !ok {
		t.Fatalf("no stanza parsed from %q", text)
	}
	p, err := parseStanza(ix, rec)
	if err != nil {
		t.Fatalf("parseStanza: %v", err)
	}
	return p
}

func TestParseStanzaBasicFields(t *testing.T) {
	ix := pkgindex.NewIndex(nil)
	p := parseOneStanza(t, ix, "Package: foo\nVersion: 1.2-3\nArchitecture: mips\nMaintainer: A <a@example.com>\nDescription: does foo\n")

	if p.Name != "foo" {
		t.Errorf("Name = %q, want foo", p.Name)
	}
	if p.Architecture != "mips" {
		t.Errorf("Architecture = %q, want mips", p.Architecture)
	}
	if p.Maintainer() != "A <a@example.com>" {
		t.Errorf("Maintainer() = %q", p.Maintainer())
	}
	if p.Description() != "does foo" {
		t.Errorf("Description() = %q", p.Description())
	}
}

func TestParseStanzaMissingVersionErrors(t *testing.T) {
	ix := pkgindex.NewIndex(nil)
	sc := stanza.NewScanner(strings.NewReader("Package: foo\n"))
	rec, _ := sc.Next()
	if _, err := parseStanza(ix, rec); err == nil {
		t.Fatal("expected error for missing Version field")
	}
}

func TestParseStanzaDependsAndProvides(t *testing.T) {
	ix := pkgindex.NewIndex(nil)
	p := parseOneStanza(t, ix, "Package: foo\nVersion: 1.0\nDepends: bar (>= 2.0), baz\nProvides: virtual-foo\nReplaces: old-foo\n")

	if len(p.Depends) != 2 {
		t.Fatalf("len(Depends) = %d, want 2", len(p.Depends))
	}
	if len(p.Provides) != 1 || p.Provides[0].Name() != "virtual-foo" {
		t.Errorf("Provides = %v, want [virtual-foo]", p.Provides)
	}
	if len(p.Replaces) != 1 || p.Replaces[0].Name() != "old-foo" {
		t.Errorf("Replaces = %v, want [old-foo]", p.Replaces)
	}
}

func TestParseStatusLine(t *testing.T) {
	want, flags, status, err := parseStatusLine("install hold,user installed")
	if err != nil {
		t.Fatalf("parseStatusLine: %v", err)
	}
	if want != pkgindex.WantInstall {
		t.Errorf("want = %v", want)
	}
	if flags&pkgindex.FlagHold == 0 || flags&pkgindex.FlagUser == 0 {
		t.Errorf("flags = %v, want Hold|User", flags)
	}
	if status != pkgindex.StatusInstalled {
		t.Errorf("status = %v", status)
	}
}

func TestParseStatusLineMalformed(t *testing.T) {
	if _, _, _, err := parseStatusLine("install"); err == nil {
		t.Fatal("expected error for a two-field Status line")
	}
	if _, _, _, err := parseStatusLine("install ok bogus-status"); err == nil {
		t.Fatal("expected error for an unrecognized status token")
	}
}

func TestParseConffiles(t *testing.T) {
	out, err := parseConffiles("/etc/foo.conf abc123\n/etc/bar.conf def456")
	if err != nil {
		t.Fatalf("parseConffiles: %v", err)
	}
	want := []pkgindex.Conffile{
		{Name: "/etc/foo.conf", MD5Sum: "abc123"},
		{Name: "/etc/bar.conf", MD5Sum: "def456"},
	}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("parseConffiles mismatch (-want +got):\n%s", diff)
	}
}

func TestParseConffilesMalformed(t *testing.T) {
	if _, err := parseConffiles("/etc/foo.conf"); err == nil {
		t.Fatal("expected error for a one-token Conffiles line")
	}
}

func TestParseAlternatives(t *testing.T) {
	out, err := parseAlternatives("100:/usr/bin/foo:/usr/bin/foo.real, 50:/usr/bin/bar:/usr/bin/bar.real")
	if err != nil {
		t.Fatalf("parseAlternatives: %v", err)
	}
	want := []pkgindex.Alternative{
		{Priority: 100, Path: "/usr/bin/foo", AltPath: "/usr/bin/foo.real"},
		{Priority: 50, Path: "/usr/bin/bar", AltPath: "/usr/bin/bar.real"},
	}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("parseAlternatives mismatch (-want +got):\n%s", diff)
	}
}
