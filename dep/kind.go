// Package dep parses and represents opkg-style compound dependency
// expressions: comma-separated compounds of pipe-separated alternatives,
// each alternative optionally constrained to a version range.
package dep

// Kind identifies which dependency field a Compound came from. Unlike the
// attribute-set dependency type used in some ecosystems (a single
// dependency can be simultaneously "dev" and "optional" there), a Compound
// here belongs to exactly one Kind: the control fields it is drawn from are
// mutually exclusive by construction.
type Kind int

const (
	// Depend is an ordinary Depends: entry.
	Depend Kind = iota
	// PreDepend is a Pre-Depends: entry, checked before unpacking.
	PreDepend
	// Recommend is a Recommends: entry; unsatisfied recommendations do not
	// block installation.
	Recommend
	// Suggest is a Suggests: entry; purely informational.
	Suggest
	// Greedy marks a compound whose alternatives should all be considered
	// candidates for installation rather than stopping at the first one
	// already satisfied. A trailing "*" on any alternative in the control
	// file promotes the whole compound to Greedy regardless of which field
	// it came from.
	Greedy
	// Conflict is a Conflicts: entry.
	Conflict
)

func (k Kind) String() string {
	switch k {
	case Depend:
		return "Depends"
	case PreDepend:
		return "Pre-Depends"
	case Recommend:
		return "Recommends"
	case Suggest:
		return "Suggests"
	case Greedy:
		return "Greedy-Depends"
	case Conflict:
		return "Conflicts"
	default:
		return "Unknown"
	}
}

// Soft reports whether an unsatisfied Compound of this Kind should merely
// be reported rather than block installation (Recommends/Suggests).
func (k Kind) Soft() bool {
	return k == Recommend || k == Suggest
}

// IsRegular reports whether k is the plain, unannotated Depend kind, as
// opposed to one worth calling out explicitly when rendering an install
// graph (Pre-Depends, Recommends, Suggests, Greedy, Conflicts).
func (k Kind) IsRegular() bool {
	return k == Depend
}
