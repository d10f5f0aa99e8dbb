// Package index holds the in-memory model of every known package, abstract
// or concrete, and the operations that resolve dependencies against it: the
// best-installation-candidate selection, the transitive unsatisfied-
// dependency walk, and conflict detection. See SPEC_FULL.md for the full
// module layout; stanza and feed build on top of this package to parse and
// load control-file text into it.
package index

import (
	"strings"

	"github.com/opkg-go/pkgresolve/dep"
	"github.com/opkg-go/pkgresolve/internal/lru"
	"github.com/opkg-go/pkgresolve/version"
)

// versionCacheSize bounds the memoized-version-parse cache. A single
// resolve run typically re-parses the same handful of version strings
// (every alternative of every dependency, repeatedly) many times over, so
// even a small cache pays for itself; it is not meant to bound the index's
// total package count, which is unrelated.
const versionCacheSize = 512

// Index is the full in-memory package database: every AbstractPkg reached
// by name, the file-ownership map used for reverse lookups, and the
// resolve-epoch counter that powers the cycle guards in resolver.go.
//
// Grounded on pkg_hash.c's pkg_hash (an open-addressed C hash table of
// abstract_pkg_t); a Go map gives the same name-to-AbstractPkg lookup
// without needing its own hash function or resize logic.
type Index struct {
	host Host

	abstracts map[string]*AbstractPkg
	fileOwner map[string]*Package

	offlineRoot string

	versions *lru.Cache[string, version.Version]

	epoch uint64

	// preCheckEpoch/preCheckDepth let a chain of nested feasibility
	// pre-checks (FetchBestCandidate -> hasUnresolvedDependencies ->
	// fetchUnsatisfied -> FetchBestCandidate -> ...) share one epoch for
	// the whole chain instead of each nesting level minting its own: a
	// fresh epoch per call would never let the cycle guard trip, since
	// each recursive probe would see a name as unvisited forever.
	preCheckEpoch uint64
	preCheckDepth int
}

// NewIndex returns an empty Index backed by host for logging, architecture
// priority lookups, and offline-root stripping.
func NewIndex(host Host) *Index {
	offlineRoot := ""
	if host != nil {
		offlineRoot = host.OfflineRoot()
	}
	return &Index{
		host:        host,
		abstracts:   make(map[string]*AbstractPkg),
		fileOwner:   make(map[string]*Package),
		offlineRoot: offlineRoot,
		versions:    lru.New[string, version.Version](versionCacheSize),
	}
}

func (ix *Index) log() Logger {
	if ix.host == nil {
		return NopLogger{}
	}
	return ix.host.Logger()
}

// archPriority returns the configured priority of p's architecture, or a
// negative number if the host does not support that architecture at all.
// With no host configured, every architecture is accepted at priority 1 —
// used by tests that don't care about architecture filtering.
func (ix *Index) archPriority(p *Package) int {
	if ix.host == nil {
		return 1
	}
	return ix.host.ArchitecturePriority(p.Architecture)
}

func (ix *Index) argv() []string {
	if ix.host == nil {
		return nil
	}
	return ix.host.CLIArgv()
}

// EnsureAbstract returns the AbstractPkg named name, creating it if this is
// the first reference to that name (ensure_abstract_pkg_by_name).
func (ix *Index) EnsureAbstract(name string) *AbstractPkg {
	if a, ok := ix.abstracts[name]; ok {
		return a
	}
	a := &AbstractPkg{name: name}
	ix.abstracts[name] = a
	return a
}

// FetchAbstract looks up an AbstractPkg without creating it.
func (ix *Index) FetchAbstract(name string) (*AbstractPkg, bool) {
	a, ok := ix.abstracts[name]
	return a, ok
}

// AllAbstracts returns every AbstractPkg currently registered, in
// unspecified order. Used by the feed loader's NEED_DETAIL sweep.
func (ix *Index) AllAbstracts() []*AbstractPkg {
	out := make([]*AbstractPkg, 0, len(ix.abstracts))
	for _, a := range ix.abstracts {
		out = append(out, a)
	}
	return out
}

// ParseVersion parses s via version.Parse, memoizing the result: the same
// version string recurs constantly across a feed's Depends: fields and
// across repeated candidate scoring, so this avoids re-parsing it every
// time.
func (ix *Index) ParseVersion(s string) (version.Version, error) {
	if v, ok := ix.versions.Get(s); ok {
		return v, nil
	}
	v, err := version.Parse(s)
	if err != nil {
		return version.Version{}, err
	}
	ix.versions.Add(s, v)
	return v, nil
}

// InsertPackage registers p as a concrete package of the AbstractPkg named
// p.Name, creating that AbstractPkg if needed, and links p's Provides and
// Replaces references. If an existing package of the same version and
// architecture is already present, p replaces it in place (carrying over
// NonvolatileFlags), matching pkg_vec_insert_merge's merge-on-reinsert
// behavior used when a status file entry and a feed entry describe the
// same package.
//
// Grounded on pkg_hash.c's hash_insert_pkg.
func (ix *Index) InsertPackage(p *Package) {
	ab := ix.EnsureAbstract(p.Name)
	p.parent = ab

	switch p.Status {
	case StatusInstalled:
		ab.Status = StatusInstalled
	case StatusUnpacked:
		ab.Status = StatusUnpacked
	}

	for i, existing := range ab.Packages {
		if existing.Version.Compare(p.Version) == 0 && existing.Architecture == p.Architecture {
			p.Flags |= existing.Flags & NonvolatileFlags
			ab.Packages[i] = p
			ix.linkProvides(p)
			ix.linkReplaces(p)
			ix.linkDepends(p)
			return
		}
	}
	ab.Packages = append(ab.Packages, p)
	ix.linkProvides(p)
	ix.linkReplaces(p)
	ix.linkDepends(p)
}

// linkDepends walks p's Depends/Pre-Depends/Recommends compounds and
// records p's own abstract in each named target's DependedUponBy, so a
// reverse lookup from an abstract can find everything that needs it
// without re-walking every package's dependency list.
//
// Grounded on hash_insert_pkg's depends-walking loop in pkg_hash.c.
func (ix *Index) linkDepends(p *Package) {
	ab := p.parent
	walk := func(c dep.Compound) {
		for _, atom := range c.Possibilities {
			target, ok := atom.Target.(*AbstractPkg)
			if !ok || target == ab {
				continue
			}
			if !abstractPkgVecContains(target.DependedUponBy, ab) {
				target.DependedUponBy = append(target.DependedUponBy, ab)
			}
		}
	}
	for _, c := range p.Depends {
		walk(c)
	}
	for _, c := range p.PreDepends {
		walk(c)
	}
}

// linkProvides wires p's Provides list (already resolved to AbstractPkgs by
// the caller) into each provided AbstractPkg's ProvidedBy list, and makes
// sure p's own AbstractPkg lists itself as a provider (init_providelist's
// unconditional self-registration: a package always satisfies a dependency
// on its own name, Provides: field or not).
func (ix *Index) linkProvides(p *Package) {
	ab := p.parent
	if !abstractPkgVecContains(ab.ProvidedBy, ab) {
		ab.ProvidedBy = append(ab.ProvidedBy, ab)
	}
	for _, provided := range p.Provides {
		if provided == ab {
			continue
		}
		if !abstractPkgVecContains(provided.ProvidedBy, ab) {
			provided.ProvidedBy = append(provided.ProvidedBy, ab)
		}
	}
}

// linkReplaces wires p's Replaces list into each replaced AbstractPkg's
// ReplacedBy list, but only when p also Conflicts with that name: a mere
// Replaces: entry without a matching Conflicts: entry documents file
// ownership transfer, not package substitutability.
//
// Grounded on pkg_depends.c's parse_replacelist + is_pkg_a_replaces.
func (ix *Index) linkReplaces(p *Package) {
	ab := p.parent
	for _, replaced := range p.Replaces {
		if replaced == ab {
			continue
		}
		if !p.ConflictsWith(replaced) {
			continue
		}
		if !abstractPkgVecContains(replaced.ReplacedBy, ab) {
			replaced.ReplacedBy = append(replaced.ReplacedBy, ab)
		}
	}
}

// FetchByName returns every concrete package registered directly under
// name (not counting providers/replacements), or nil if name is unknown.
func (ix *Index) FetchByName(name string) []*Package {
	a, ok := ix.abstracts[name]
	if !ok {
		return nil
	}
	return a.Packages
}

// FetchInstalledByName returns the installed (or unpacked) package
// registered directly under name, if any.
func (ix *Index) FetchInstalledByName(name string) *Package {
	for _, p := range ix.FetchByName(name) {
		if p.Status.Installed() {
			return p
		}
	}
	return nil
}

// FetchAllInstalled returns every package across the whole index whose
// Status counts as installed.
func (ix *Index) FetchAllInstalled() []*Package {
	var out []*Package
	for _, a := range ix.abstracts {
		for _, p := range a.Packages {
			if p.Status.Installed() {
				out = append(out, p)
			}
		}
	}
	return out
}

// FetchAvailable returns every concrete package in the index, installed or
// not.
func (ix *Index) FetchAvailable() []*Package {
	var out []*Package
	for _, a := range ix.abstracts {
		out = append(out, a.Packages...)
	}
	return out
}

// stripOfflineRoot removes ix.offlineRoot as a path prefix from path, the
// way strip_offline_root does, so file ownership is keyed on the path as
// it will appear once the offline root is mounted at /.
func (ix *Index) stripOfflineRoot(path string) string {
	if ix.offlineRoot == "" {
		return path
	}
	if trimmed := strings.TrimPrefix(path, ix.offlineRoot); trimmed != path {
		if !strings.HasPrefix(trimmed, "/") {
			trimmed = "/" + trimmed
		}
		return trimmed
	}
	return path
}

// MarkNeedDetail flags target as needed (so a bounded supplementary feed
// reload will fetch its full detail) and records dependent as one of the
// reasons why, if dependent is non-nil and not already recorded.
func (ix *Index) MarkNeedDetail(target *AbstractPkg, dependent *AbstractPkg) {
	target.Flags |= FlagNeedDetail
	if dependent == nil {
		return
	}
	if !abstractPkgVecContains(target.DependedUponBy, dependent) {
		target.DependedUponBy = append(target.DependedUponBy, dependent)
	}
}

// FileOwner returns the package that owns path, if any.
func (ix *Index) FileOwner(path string) (*Package, bool) {
	p, ok := ix.fileOwner[ix.stripOfflineRoot(path)]
	return p, ok
}

// SetFileOwner records p as the owner of path, stripping ix.offlineRoot and
// flagging FlagFilelistChanged on both the previous and new owner
// (file_hash_set_file_owner). A trailing slash marks a directory entry,
// which opkg never tracks ownership of, so it is a silent no-op.
func (ix *Index) SetFileOwner(path string, p *Package) {
	if strings.HasSuffix(path, "/") {
		return
	}
	key := ix.stripOfflineRoot(path)
	if old, ok := ix.fileOwner[key]; ok {
		if old == p {
			return
		}
		old.Flags |= FlagFilelistChanged
	}
	ix.fileOwner[key] = p
	p.Flags |= FlagFilelistChanged
}
