// Package feed loads control-file stanzas (opkg/apt-style Packages feeds
// and status files) into an index.Index, mapping stanza.Record values
// from package stanza into index.Package values and wiring their
// dependency/provides/replaces/conflicts fields through package dep.
package feed

import (
	"fmt"
	"strconv"
	"strings"

	pkgindex "github.com/opkg-go/pkgresolve"
	"github.com/opkg-go/pkgresolve/dep"
	"github.com/opkg-go/pkgresolve/stanza"
)

// parseStanza converts one control-file stanza into a *pkgindex.Package,
// registering any abstract packages it names (its own name, and anything
// it Depends/Provides/Replaces/Conflicts against) via ix.
//
// Grounded on original_source/libopkg/pkg_parse.c's parse_from_stream,
// field by field.
func parseStanza(ix *pkgindex.Index, rec stanza.Record) (*pkgindex.Package, error) {
	name := strings.TrimSpace(rec.Get("Package"))
	if name == "" {
		return nil, fmt.Errorf("feed: stanza has no Package field")
	}

	p := &pkgindex.Package{Name: name, Architecture: strings.TrimSpace(rec.Get("Architecture"))}

	verStr := strings.TrimSpace(rec.Get("Version"))
	if verStr == "" {
		return nil, fmt.Errorf("feed: package %s: no Version field", name)
	}
	ver, err := ix.ParseVersion(verStr)
	if err != nil {
		return nil, fmt.Errorf("feed: package %s: %w", name, err)
	}
	p.Version = ver

	p.SetMaintainer(rec.Get("Maintainer"))
	p.SetPriority(rec.Get("Priority"))
	p.SetSource(rec.Get("Source"))
	p.SetSection(rec.Get("Section"))
	p.SetTags(rec.Get("Tags"))
	p.SetFilename(rec.Get("Filename"))
	p.SetDescription(rec.Get("Description"))
	p.SetMD5Sum(rec.Get("MD5Sum"))
	p.SetSHA256Sum(rec.Get("SHA256sum"))
	p.SetABIVersion(rec.Get("ABIVersion"))
	p.SetTmpUnpackDir(rec.Get("Tmp-Dir"))

	if err := setIntField(rec, "Size", p.SetSize); err != nil {
		return nil, fmt.Errorf("feed: package %s: %w", name, err)
	}
	if err := setIntField(rec, "Installed-Size", p.SetInstalledSize); err != nil {
		return nil, fmt.Errorf("feed: package %s: %w", name, err)
	}
	if err := setIntField(rec, "Installed-Time", p.SetInstalledTime); err != nil {
		return nil, fmt.Errorf("feed: package %s: %w", name, err)
	}

	ensure := func(n string) dep.Target { return ix.EnsureAbstract(n) }

	if err := parseDeps(&p.Depends, rec, "Depends", dep.Depend, ensure, name); err != nil {
		return nil, err
	}
	if err := parseDeps(&p.PreDepends, rec, "Pre-Depends", dep.PreDepend, ensure, name); err != nil {
		return nil, err
	}
	if err := parseDeps(&p.Depends, rec, "Recommends", dep.Recommend, ensure, name); err != nil {
		return nil, err
	}
	if err := parseDeps(&p.Depends, rec, "Suggests", dep.Suggest, ensure, name); err != nil {
		return nil, err
	}
	if err := parseDeps(&p.Conflicts, rec, "Conflicts", dep.Conflict, ensure, name); err != nil {
		return nil, err
	}

	for _, n := range splitNames(rec.Get("Provides")) {
		p.Provides = append(p.Provides, ix.EnsureAbstract(n))
	}
	for _, n := range splitNames(rec.Get("Replaces")) {
		p.Replaces = append(p.Replaces, ix.EnsureAbstract(n))
	}

	if s := rec.Get("Status"); s != "" {
		want, flags, status, err := parseStatusLine(s)
		if err != nil {
			return nil, fmt.Errorf("feed: package %s: %w", name, err)
		}
		p.Want, p.Flags, p.Status = want, flags, status
	}

	if s := rec.Get("Conffiles"); s != "" {
		conffiles, err := parseConffiles(s)
		if err != nil {
			return nil, fmt.Errorf("feed: package %s: %w", name, err)
		}
		p.Conffiles = conffiles
	}

	if s := rec.Get("Alternatives"); s != "" {
		alts, err := parseAlternatives(s)
		if err != nil {
			return nil, fmt.Errorf("feed: package %s: %w", name, err)
		}
		p.Alternatives = alts
	}

	return p, nil
}

func parseDeps(dst *[]dep.Compound, rec stanza.Record, field string, kind dep.Kind, ensure func(string) dep.Target, pkgName string) error {
	s := rec.Get(field)
	if s == "" {
		return nil
	}
	compounds, err := dep.ParseList(kind, s, ensure)
	if err != nil {
		return fmt.Errorf("feed: package %s: %s: %w", pkgName, field, err)
	}
	*dst = append(*dst, compounds...)
	return nil
}

func setIntField(rec stanza.Record, field string, set func(int64)) error {
	s := strings.TrimSpace(rec.Get(field))
	if s == "" {
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid %s field %q: %w", field, s, err)
	}
	set(n)
	return nil
}

// splitNames splits a comma-separated list of bare package names (no
// version constraints), as used by Provides: and Replaces:.
func splitNames(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if name := strings.TrimSpace(part); name != "" {
			out = append(out, name)
		}
	}
	return out
}

// parseStatusLine parses a status file's "Status: want flag,flag,... status"
// line: three whitespace-separated tokens, the middle one itself a
// comma-separated flag list (or the literal "ok" for no flags).
func parseStatusLine(s string) (pkgindex.Want, pkgindex.Flags, pkgindex.Status, error) {
	fields := strings.Fields(s)
	if len(fields) != 3 {
		return 0, 0, 0, pkgindex.ErrMalformedStatus
	}
	want, err := pkgindex.ParseWant(fields[0])
	if err != nil {
		return 0, 0, 0, err
	}
	status, err := pkgindex.ParseStatus(fields[2])
	if err != nil {
		return 0, 0, 0, err
	}
	var flags pkgindex.Flags
	for _, f := range strings.Split(fields[1], ",") {
		switch f {
		case "ok", "":
			// no flag set
		case "reinstreq":
			flags |= pkgindex.FlagReinstreq
		case "hold":
			flags |= pkgindex.FlagHold
		case "replace":
			flags |= pkgindex.FlagReplace
		case "noprune":
			flags |= pkgindex.FlagNoPrune
		case "prefer":
			flags |= pkgindex.FlagPrefer
		case "obsolete":
			flags |= pkgindex.FlagObsolete
		case "user":
			flags |= pkgindex.FlagUser
		default:
			return 0, 0, 0, pkgindex.ErrMalformedStatus
		}
	}
	return want, flags, status, nil
}

// parseConffiles parses a Conffiles: field's continuation lines, one "path
// md5sum" pair per line.
func parseConffiles(s string) ([]pkgindex.Conffile, error) {
	var out []pkgindex.Conffile
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, ErrMalformedConffiles(line)
		}
		out = append(out, pkgindex.Conffile{Name: fields[0], MD5Sum: fields[1]})
	}
	return out, nil
}

// ErrMalformedConffiles reports a single malformed Conffiles continuation
// line, wrapping pkgindex.ErrMalformedConffiles.
func ErrMalformedConffiles(line string) error {
	return fmt.Errorf("feed: malformed Conffiles entry %q: %w", line, pkgindex.ErrMalformedConffiles)
}

// parseAlternatives parses an Alternatives: field's comma-separated
// "priority:path:altpath" entries.
func parseAlternatives(s string) ([]pkgindex.Alternative, error) {
	var out []pkgindex.Alternative
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fields := strings.SplitN(part, ":", 3)
		if len(fields) != 3 {
			return nil, fmt.Errorf("feed: malformed Alternatives entry %q", part)
		}
		prio, err := strconv.Atoi(strings.TrimSpace(fields[0]))
		if err != nil {
			return nil, fmt.Errorf("feed: malformed Alternatives priority %q: %w", fields[0], err)
		}
		out = append(out, pkgindex.Alternative{
			Priority: prio,
			Path:     strings.TrimSpace(fields[1]),
			AltPath:  strings.TrimSpace(fields[2]),
		})
	}
	return out, nil
}
