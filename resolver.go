package index

import "github.com/opkg-go/pkgresolve/dep"

// ConstraintFunc reports whether candidate is an acceptable resolution for
// a dependency atom. Built by callers from a dep.Atom's Op/Version (see
// satisfiesVersion and installedAndSatisfies in satisfies.go) and optionally
// tightened to require the candidate already be installed.
type ConstraintFunc func(candidate *Package) bool

// candidateProviders returns every AbstractPkg that can provide ab,
// including ab itself once anything has registered it as a self-provider.
func (ix *Index) candidateProviders(ab *AbstractPkg) []*AbstractPkg {
	return ab.ProvidedBy
}

// resolveReplacement follows provider's ReplacedBy[0] substitution, the way
// pkg_hash_fetch_best_installation_candidate does: if provider has been
// superseded by a replacement that is not already present in the providers
// list under consideration, the replacement is used in its place.
func (ix *Index) resolveReplacement(provider *AbstractPkg, providers []*AbstractPkg) *AbstractPkg {
	if len(provider.ReplacedBy) == 0 {
		return provider
	}
	if len(provider.ReplacedBy) > 1 {
		ix.log().Noticef("multiple packages (%d) replace %s; using %s",
			len(provider.ReplacedBy), provider.Name(), provider.ReplacedBy[0].Name())
	}
	replacement := provider.ReplacedBy[0]
	if abstractPkgVecContains(providers, replacement) {
		return provider
	}
	return replacement
}

func containsPackage(v []*Package, p *Package) bool {
	for _, x := range v {
		if x == p {
			return true
		}
	}
	return false
}

// FetchBestCandidate chooses the single best concrete package to install
// for an abstract dependency on ab, among everything that provides it.
// satisfies filters by version constraint (nil accepts anything); argv is
// the CLI argument list, used to award points to a package the user named
// explicitly; quiet suppresses the "ambiguous" log notice (callers doing a
// feasibility pre-check, rather than a real install decision, pass
// quiet=true). Returns (nil, ErrAmbiguousResolution) when more than one
// distinct providing abstract survives filtering with no tiebreaker; (nil,
// nil) when nothing survives filtering at all.
//
// This is a close port of pkg_hash_fetch_best_installation_candidate in
// pkg_hash.c: gather every provider (following replacements), keep only
// architecture-supported candidates whose own dependencies are not
// hopelessly broken, and score every survivor that passes satisfies; the
// highest score wins, and equal scores go to the earliest candidate in
// name/version/arch order. Only when no survivor passes satisfies does it
// fall back through a fixed precedence (held/preferred package, already-
// installed parent, highest-arch-priority candidate when quiet is false,
// unique survivor).
func (ix *Index) FetchBestCandidate(ab *AbstractPkg, satisfies ConstraintFunc, argv []string, quiet bool) (*Package, error) {
	providers := ix.candidateProviders(ab)
	if len(providers) == 0 {
		return nil, nil
	}

	var matching []*Package
	var matchingAbs []*AbstractPkg
	wrongArchFound := false

	for _, provider := range providers {
		resolved := ix.resolveReplacement(provider, providers)
		if len(resolved.Packages) == 0 {
			continue
		}
		addedAny := false
		for _, cand := range resolved.Packages {
			if ix.archPriority(cand) <= 0 {
				wrongArchFound = true
				continue
			}
			if containsPackage(matching, cand) {
				continue
			}
			if ix.hasUnresolvedDependencies(cand, true) {
				continue
			}
			matching = append(matching, cand)
			addedAny = true
		}
		if addedAny {
			if !abstractPkgVecContains(matchingAbs, resolved) {
				matchingAbs = append(matchingAbs, resolved)
			}
		}
	}

	if len(matching) == 0 {
		if wrongArchFound {
			ix.log().Errorf("no package for %s matches an accepted architecture", ab.Name())
		}
		return nil, nil
	}

	sortPackagesByNameVersionArch(matching)
	sortAbstractPkgsByName(matchingAbs)

	// Ties break by iteration order with the earlier (lower-sorted) match
	// winning, the opposite of the original's "last assignment wins" loop:
	// this is what lets a HOLD/PREFER package beat a newer plain version
	// when nothing else distinguishes them by name or argv.
	var goodByName *Package
	goodScore := -1
	for _, cand := range matching {
		if satisfies != nil && !satisfies(cand) {
			continue
		}
		score := 1
		if cand.Name == ab.Name() {
			score++
		}
		if argvContains(argv, cand.Name) {
			score++
		}
		if score <= goodScore {
			continue
		}
		goodByName = cand
		goodScore = score
		if cand.ProvidedByHand {
			break
		}
	}

	var latestMatching *Package
	var latestInstalledParent *Package
	var heldPkg *Package
	holdCount := 0
	for _, cand := range matching {
		latestMatching = cand
		if parent, err := cand.Parent(); err == nil && parent.Status.Installed() {
			latestInstalledParent = cand
		}
		if cand.Flags&(FlagHold|FlagPrefer) != 0 {
			heldPkg = cand
			holdCount++
		}
	}
	if holdCount > 1 {
		ix.log().Noticef("multiple hold/prefer packages match %s", ab.Name())
	}

	var priorizedMatching *Package
	if goodByName == nil && heldPkg == nil && latestInstalledParent == nil && len(matchingAbs) > 1 && !quiet {
		best := -1
		for _, cand := range matching {
			if pr := ix.archPriority(cand); pr > best {
				best = pr
				priorizedMatching = cand
			}
		}
	}

	switch {
	case goodByName != nil:
		return goodByName, nil
	case heldPkg != nil:
		return heldPkg, nil
	case latestInstalledParent != nil:
		return latestInstalledParent, nil
	case priorizedMatching != nil:
		return priorizedMatching, nil
	}

	if len(matchingAbs) > 1 {
		if !quiet {
			ix.log().Infof("%s: more than one candidate, none preferred; ambiguous", ab.Name())
		}
		return nil, ErrAmbiguousResolution
	}
	return latestMatching, nil
}

func argvContains(argv []string, name string) bool {
	for _, a := range argv {
		if a == name {
			return true
		}
	}
	return false
}

// hasUnresolvedDependencies is a cheap feasibility probe used while
// filtering arch-supported candidates: it resolves cand's dependency tree
// with preCheck=true under the index's separate pre-check epoch (a fresh one
// for an outermost probe, shared by any probes nested inside it, and never
// the epoch of the resolve that called it) and reports whether anything
// came back unresolved.
func (ix *Index) hasUnresolvedDependencies(cand *Package, preCheck bool) bool {
	if ix.preCheckDepth == 0 {
		ix.preCheckEpoch++
	}
	ix.preCheckDepth++
	defer func() { ix.preCheckDepth-- }()
	_, unresolved, _ := ix.fetchUnsatisfied(cand, preCheck, ix.preCheckEpoch)
	return len(unresolved) > 0
}

// FetchUnsatisfied walks root's Depends/Pre-Depends tree (and, via the
// Greedy kind, every alternative of a "*"-marked compound) and returns
// every concrete package that needs to be newly installed to satisfy it,
// plus the names of any compounds that could not be satisfied at all. It
// starts a fresh resolve epoch, so cycles anywhere in the tree are each
// visited at most once.
//
// Grounded on pkg_hash_fetch_unsatisfied_dependencies in pkg_depends.c.
func (ix *Index) FetchUnsatisfied(root *Package, preCheck bool) (unsatisfied []*Package, unresolved []string, err error) {
	ix.epoch++
	return ix.fetchUnsatisfied(root, preCheck, ix.epoch)
}

func (ix *Index) fetchUnsatisfied(root *Package, preCheck bool, epoch uint64) ([]*Package, []string, error) {
	parent, perr := root.Parent()
	if perr != nil {
		return nil, nil, nil
	}

	if preCheck {
		if parent.preVisitEpoch == epoch {
			return nil, nil, nil
		}
		parent.preVisitEpoch = epoch
	} else {
		if parent.visitEpoch == epoch {
			return nil, nil, nil
		}
		parent.visitEpoch = epoch
	}

	var unsatisfied []*Package
	var unresolved []string

	compounds := append(append([]dep.Compound{}, root.PreDepends...), root.Depends...)
	for _, compound := range compounds {
		switch compound.Kind {
		case dep.Greedy:
			ix.walkGreedy(compound, preCheck, epoch, &unsatisfied)
		default:
			ix.walkOrdinary(root, compound, preCheck, epoch, &unsatisfied, &unresolved)
		}
	}

	return unsatisfied, unresolved, nil
}

// walkGreedy implements the GREEDY_DEPEND case: every alternative, through
// every provider, through every concrete package not already marked
// want=install, is a
// candidate for installation, so long as that candidate's own dependency
// tree resolves entirely to things already slated for install.
func (ix *Index) walkGreedy(compound dep.Compound, preCheck bool, epoch uint64, unsatisfied *[]*Package) {
	for _, atom := range compound.Possibilities {
		target, ok := atom.Target.(*AbstractPkg)
		if !ok {
			continue
		}
		for _, provider := range ix.candidateProviders(target) {
			for _, cand := range provider.Packages {
				if cand.Want == WantInstall {
					continue
				}
				if containsPackage(*unsatisfied, cand) {
					continue
				}
				sub, subUnresolved, _ := ix.fetchUnsatisfied(cand, preCheck, epoch)
				if len(subUnresolved) > 0 {
					continue
				}
				allInstalling := true
				for _, s := range sub {
					if s.Want != WantInstall {
						allInstalling = false
						break
					}
				}
				if !allInstalling {
					continue
				}
				*unsatisfied = append(*unsatisfied, cand)
			}
		}
	}
}

// walkOrdinary implements the non-greedy DEPEND/PRE_DEPEND/RECOMMEND/
// SUGGEST case: first look for an alternative already installed and
// version-satisfying (nothing to do); failing that, look for an
// alternative that merely satisfies the version constraint (skipping a
// candidate the user has explicitly marked for removal, for a soft
// Recommend/Suggest); failing that, it's either a hard failure or, for
// Recommend/Suggest, just a missed recommendation.
func (ix *Index) walkOrdinary(root *Package, compound dep.Compound, preCheck bool, epoch uint64, unsatisfied *[]*Package, unresolved *[]string) {
	for _, atom := range compound.Possibilities {
		target, ok := atom.Target.(*AbstractPkg)
		if !ok {
			continue
		}
		constraint := installedAndSatisfies(ix, atom)
		best, _ := ix.FetchBestCandidate(target, constraint, ix.argv(), true)
		// FetchBestCandidate's fallback tiers (held/installed-parent/
		// priorized/latest) aren't filtered by constraint, so recheck it
		// here the way pkg_hash_fetch_unsatisfied_dependencies does
		// ("Being that I can't test constraint in pkg_hash, I will test
		// it here too").
		if best != nil && !constraint(best) {
			best = nil
		}
		if best != nil {
			return
		}
	}

	var satisfier *Package
	for _, atom := range compound.Possibilities {
		target, ok := atom.Target.(*AbstractPkg)
		if !ok {
			continue
		}
		constraint := satisfiesVersion(ix, atom)
		cand, _ := ix.FetchBestCandidate(target, constraint, ix.argv(), true)
		if cand != nil && !constraint(cand) {
			cand = nil
		}
		if cand == nil {
			continue
		}
		if compound.Kind.Soft() && (cand.Want == WantDeinstall || cand.Want == WantPurge) {
			continue
		}
		satisfier = cand
		break
	}

	if satisfier == nil {
		if compound.Kind.Soft() {
			ix.log().Noticef("%s %s: %s is unsatisfied", root.Name, compound.Kind, compound.String())
			return
		}
		*unresolved = append(*unresolved, compound.String())
		return
	}

	if compound.Kind == dep.Suggest {
		ix.log().Noticef("%s suggests installing %s", root.Name, satisfier.Name)
		return
	}

	if satisfier == root || containsPackage(*unsatisfied, satisfier) {
		return
	}
	subSatisfied, subUnresolved, _ := ix.fetchUnsatisfied(satisfier, preCheck, epoch)
	for _, s := range subSatisfied {
		if !containsPackage(*unsatisfied, s) {
			*unsatisfied = append(*unsatisfied, s)
		}
	}
	*unsatisfied = append(*unsatisfied, satisfier)
	*unresolved = append(*unresolved, subUnresolved...)
}
