package dep

import (
	"fmt"
	"strings"
	"unicode"
)

// ParseList parses a control-file dependency field (Depends:, Pre-Depends:,
// Recommends:, Suggests: or Conflicts:) into its Compounds. s is a
// comma-separated list of compounds; each compound is a "|"-separated list
// of alternatives; each alternative is a package name optionally followed
// by "(op version)" and/or a trailing "*" that promotes the whole compound
// to Greedy. ensure resolves (and, if necessary, creates) the abstract
// package a name refers to.
//
// Grounded on original_source/libopkg/pkg_depends.c's parseDepends/
// parse_deplist: the same comma/pipe/whitespace tokenization and the same
// legacy "<"/">" aliasing to "<="/">=".
func ParseList(kind Kind, s string, ensure func(name string) Target) ([]Compound, error) {
	var compounds []Compound
	for _, item := range splitTrim(s, ',') {
		c, err := parseCompound(kind, item, ensure)
		if err != nil {
			return nil, err
		}
		compounds = append(compounds, c)
	}
	return compounds, nil
}

func parseCompound(kind Kind, item string, ensure func(string) Target) (Compound, error) {
	c := Compound{Kind: kind}
	for _, alt := range splitTrim(item, '|') {
		atom, greedy, err := parseAtom(alt, ensure)
		if err != nil {
			return Compound{}, err
		}
		c.Possibilities = append(c.Possibilities, atom)
		if greedy {
			c.Kind = Greedy
		}
	}
	if len(c.Possibilities) == 0 {
		return Compound{}, fmt.Errorf("dep: empty alternative list in %q", item)
	}
	return c, nil
}

// parseAtom parses a single alternative: "name", "name (op version)" or
// either of those followed by a trailing "*".
func parseAtom(alt string, ensure func(string) Target) (atom Atom, greedy bool, err error) {
	name, rest := splitFirstField(alt)
	if name == "" {
		return Atom{}, false, fmt.Errorf("dep: empty package name in %q", alt)
	}
	rest = strings.TrimSpace(rest)

	if strings.HasPrefix(rest, "(") {
		closeIdx := strings.IndexByte(rest, ')')
		if closeIdx < 0 {
			return Atom{}, false, fmt.Errorf("dep: unterminated version constraint in %q", alt)
		}
		inner := strings.TrimSpace(rest[1:closeIdx])
		op, verStr := parseOp(inner)
		atom.Op = op
		atom.Version = strings.TrimSpace(verStr)
		if atom.Version == "" {
			return Atom{}, false, fmt.Errorf("dep: empty version in constraint %q", alt)
		}
		after := strings.TrimSpace(rest[closeIdx+1:])
		greedy = strings.HasPrefix(after, "*")
	} else {
		greedy = strings.HasPrefix(rest, "*")
	}

	atom.Target = ensure(name)
	return atom, greedy, nil
}

// parseOp splits a leading relational operator off s, aliasing the
// deprecated single-character "<"/">" designations to "<="/">=" the way
// dpkg does.
func parseOp(s string) (Op, string) {
	switch {
	case strings.HasPrefix(s, "<<"):
		return LT, s[2:]
	case strings.HasPrefix(s, "<="):
		return LE, s[2:]
	case strings.HasPrefix(s, ">="):
		return GE, s[2:]
	case strings.HasPrefix(s, ">>"):
		return GT, s[2:]
	case strings.HasPrefix(s, "="):
		return EQ, s[1:]
	case strings.HasPrefix(s, "<"):
		return LE, s[1:]
	case strings.HasPrefix(s, ">"):
		return GE, s[1:]
	default:
		return NoOp, s
	}
}

// splitFirstField splits s at its first whitespace character, returning the
// token before it and everything after that one character (any further
// whitespace stays at the start of rest).
func splitFirstField(s string) (first, rest string) {
	s = strings.TrimSpace(s)
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, ""
	}
	return s[:i], s[i+1:]
}

// splitTrim splits s on sep, trims surrounding whitespace from each piece,
// and drops empty pieces.
func splitTrim(s string, sep rune) []string {
	var out []string
	for _, p := range strings.FieldsFunc(s, func(r rune) bool { return r == sep }) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
