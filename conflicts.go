package index

// FetchConflicts returns every installed (or install-pending) package that
// conflicts with p, excluding any conflicting package p legitimately
// replaces. Returns nil if p has no Conflicts: entries or none of them
// resolve to anything currently installed.
//
// Grounded on pkg_hash_fetch_conflicts/is_pkg_a_replaces in pkg_depends.c,
// generalized from is_pkg_a_replaces's literal name comparison to the
// broader "p.Replaces intersects scout.Provides" test: a package replacing
// a virtual name a conflicting package provides is just as legitimate a
// replacement as one naming the conflicting package directly, and every
// package always provides at least its own name (see linkProvides), so
// this is a strict generalization, not a behavior change for the common
// direct-name case.
func (ix *Index) FetchConflicts(p *Package) []*Package {
	if len(p.Conflicts) == 0 {
		return nil
	}

	var installedConflicts []*Package
	for _, compound := range p.Conflicts {
		for _, atom := range compound.Possibilities {
			target, ok := atom.Target.(*AbstractPkg)
			if !ok {
				continue
			}
			for _, scout := range target.Packages {
				if scout.Status != StatusInstalled && scout.Want != WantInstall {
					continue
				}
				if !ix.versionSatisfies(scout, atom) {
					continue
				}
				if p.replaces(target, scout) {
					continue
				}
				if !containsPackage(installedConflicts, scout) {
					installedConflicts = append(installedConflicts, scout)
				}
			}
		}
	}
	return installedConflicts
}

// replaces reports whether p.Replaces intersects scout's provided set:
// scout's own abstract package ownAb (every package provides its own
// name) plus whatever else scout's Provides: field names.
func (p *Package) replaces(ownAb *AbstractPkg, scout *Package) bool {
	for _, r := range p.Replaces {
		if r == ownAb {
			return true
		}
		for _, provided := range scout.Provides {
			if r == provided {
				return true
			}
		}
	}
	return false
}
