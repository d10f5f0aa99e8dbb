package index

// AbstractPkg is a named slot in the index: every control-file reference to
// a package name (Depends, Provides, Conflicts, or the package's own Name
// field) resolves to exactly one AbstractPkg, which may in turn be backed
// by zero or more concrete, versioned Packages.
//
// Grounded on pkg_hash.c's abstract_pkg_t and the hash-table functions
// built around it (ensure_abstract_pkg_by_name, add_new_abstract_pkg_by_name).
// The C implementation guards against re-walking a dependency cycle with a
// pair of booleans (dependencies_checked, pre_dependencies_checked) that
// some other piece of code has to remember to clear before the next
// top-level resolve; here an Index-wide epoch counter plays the same role
// without a reset sweep: a visit is "stale" exactly when it belongs to an
// earlier epoch than the resolve call currently in progress.
type AbstractPkg struct {
	name string

	Packages []*Package

	// ProvidedBy lists every AbstractPkg (including, usually, this one)
	// whose packages can satisfy a dependency on this name: it is
	// populated both by this package's own Provides: field and by other
	// packages' Provides: fields naming it.
	ProvidedBy []*AbstractPkg

	// ReplacedBy lists AbstractPkgs whose packages have both a Replaces:
	// entry naming this one and a matching Conflicts: entry, making them
	// eligible substitutes wherever this name is depended upon.
	ReplacedBy []*AbstractPkg

	// DependedUponBy lists AbstractPkgs with at least one concrete package
	// that depends on this one. It is a recorded reverse index only; the
	// feed loader's supplementary loads are driven by FlagNeedDetail, not
	// by this list.
	DependedUponBy []*AbstractPkg

	Status Status
	Flags  Flags

	visitEpoch    uint64
	preVisitEpoch uint64
}

// Name satisfies dep.Target.
func (a *AbstractPkg) Name() string { return a.name }

// providesSelf reports whether a already lists itself in ProvidedBy, which
// an abstract package does once a concrete package has been inserted under
// its name (init_providelist's self-insert); an abstract named only in
// other packages' Provides does not list itself.
func (a *AbstractPkg) providesSelf() bool {
	for _, p := range a.ProvidedBy {
		if p == a {
			return true
		}
	}
	return false
}

func abstractPkgVecContains(v []*AbstractPkg, a *AbstractPkg) bool {
	for _, x := range v {
		if x == a {
			return true
		}
	}
	return false
}
