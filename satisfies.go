package index

import (
	"sort"

	"github.com/opkg-go/pkgresolve/dep"
)

// versionSatisfies reports whether cand's version meets atom's constraint.
// Grounded on pkg_depends.c's version_constraints_satisfied, including its
// one quirk: an exact version match satisfies any operator, even a strict
// "earlier than" or "later than" constraint.
func (ix *Index) versionSatisfies(cand *Package, atom dep.Atom) bool {
	if atom.Op == dep.NoOp {
		return true
	}
	want, err := ix.ParseVersion(atom.Version)
	if err != nil {
		return false
	}
	cmp := cand.Version.Compare(want)
	if cmp == 0 {
		return true
	}
	switch atom.Op {
	case dep.LT:
		return cmp < 0
	case dep.LE:
		return cmp <= 0
	case dep.EQ:
		return false // cmp != 0 here, already handled above
	case dep.GE:
		return cmp >= 0
	case dep.GT:
		return cmp > 0
	default:
		return false
	}
}

// satisfiesVersion builds a ConstraintFunc that only checks atom's version
// constraint, regardless of installation state.
func satisfiesVersion(ix *Index, atom dep.Atom) ConstraintFunc {
	return func(cand *Package) bool { return ix.versionSatisfies(cand, atom) }
}

// installedAndSatisfies builds a ConstraintFunc requiring cand to already
// be installed or unpacked, in addition to satisfying atom's version
// constraint; used for the "is this dependency already met?" pre-pass.
func installedAndSatisfies(ix *Index, atom dep.Atom) ConstraintFunc {
	return func(cand *Package) bool {
		return cand.Status.Installed() && ix.versionSatisfies(cand, atom)
	}
}

// sortPackagesByNameVersionArch orders packages the way
// pkg_name_version_and_architecture_compare does: by name, then version
// (newest first is not implied here, Compare's natural ascending order is
// used, matching the original's ascending qsort comparator), then
// architecture.
func sortPackagesByNameVersionArch(pkgs []*Package) {
	sort.SliceStable(pkgs, func(i, j int) bool {
		a, b := pkgs[i], pkgs[j]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		if c := a.Version.Compare(b.Version); c != 0 {
			return c < 0
		}
		return a.Architecture < b.Architecture
	})
}

// sortAbstractPkgsByName orders abstract packages by name
// (abstract_pkg_name_compare).
func sortAbstractPkgsByName(abs []*AbstractPkg) {
	sort.SliceStable(abs, func(i, j int) bool {
		return abs[i].Name() < abs[j].Name()
	})
}
