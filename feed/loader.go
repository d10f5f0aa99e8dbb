package feed

import (
	"context"
	"fmt"
	"io"

	pkgindex "github.com/opkg-go/pkgresolve"
	"github.com/opkg-go/pkgresolve/dep"
	"github.com/opkg-go/pkgresolve/stanza"
)

// DefaultMaxDetailPasses bounds Loader.LoadPackageDetails's supplementary
// reload loop. original_source/libopkg's pkg_hash_load_package_details is a
// while(1) loop that genuinely never terminates on its own: it reloads
// every feed and rescans for NEED_DETAIL-flagged-but-not-yet-loaded
// abstract packages until none remain, which loops forever if a feed
// references a name no loaded feed ever defines. Bounding the pass count
// turns that into a non-fatal OrphanedReferencesError instead.
const DefaultMaxDetailPasses = 20

// Loader loads control-file stanzas from a Host's configured feeds and
// status files into an Index.
type Loader struct {
	ix   *pkgindex.Index
	host pkgindex.Host

	// MaxDetailPasses overrides DefaultMaxDetailPasses when positive.
	MaxDetailPasses int
}

// NewLoader returns a Loader that populates ix by reading from host.
func NewLoader(ix *pkgindex.Index, host pkgindex.Host) *Loader {
	return &Loader{ix: ix, host: host}
}

func (l *Loader) maxPasses() int {
	if l.MaxDetailPasses > 0 {
		return l.MaxDetailPasses
	}
	return DefaultMaxDetailPasses
}

// LoadFeeds loads every stanza of every configured package source whose
// architecture the host accepts. Packages of unsupported architectures are
// silently skipped, matching pkg_hash_add_from_file's arch-priority check.
func (l *Loader) LoadFeeds(ctx context.Context) error {
	for _, src := range l.host.PackageSources() {
		if err := l.loadOne(ctx, src, nil, modeFull); err != nil {
			return err
		}
	}
	return nil
}

// LoadStatusFiles loads every configured destination's status file.
// Status file entries are always loaded regardless of architecture (an
// already-installed package is installed, whatever the host's current
// architecture preferences say) and are flagged NEED_DETAIL so a
// subsequent LoadPackageDetails pass fetches their dependencies' full
// detail.
func (l *Loader) LoadStatusFiles(ctx context.Context) error {
	for _, dest := range l.host.PackageDests() {
		src := pkgindex.FeedSource{Name: dest.StatusFileName}
		if err := l.loadOne(ctx, src, dest, modeStatus); err != nil {
			return err
		}
	}
	return nil
}

// LoadPackageDetails re-scans every configured package source, loading only
// abstract packages already flagged NEED_DETAIL (typically by
// LoadStatusFiles, or by a previous pass discovering a new dependency) and
// not yet marked as loaded. It repeats until a pass makes no further
// progress or MaxDetailPasses passes have run, whichever comes first. In
// either case it then returns an *pkgindex.OrphanedReferencesError naming
// whatever is still flagged but never defined in any feed (nil when there
// is none), rather than looping forever.
func (l *Loader) LoadPackageDetails(ctx context.Context) error {
	for pass := 0; pass < l.maxPasses(); pass++ {
		progressed := false
		for _, src := range l.host.PackageSources() {
			made, err := l.loadOneProgress(ctx, src, nil, modeDetail)
			if err != nil {
				return err
			}
			progressed = progressed || made
		}
		if !progressed {
			return l.checkOrphans()
		}
	}
	return l.checkOrphans()
}

func (l *Loader) checkOrphans() error {
	var orphans []string
	for _, a := range l.ix.AllAbstracts() {
		if a.Flags&pkgindex.FlagNeedDetail != 0 && a.Flags&pkgindex.FlagMarked == 0 {
			orphans = append(orphans, a.Name())
		}
	}
	if len(orphans) == 0 {
		return nil
	}
	return &pkgindex.OrphanedReferencesError{Names: orphans}
}

type loadMode int

const (
	modeFull loadMode = iota
	modeStatus
	modeDetail
)

func (l *Loader) loadOne(ctx context.Context, src pkgindex.FeedSource, dest *pkgindex.Dest, mode loadMode) error {
	_, err := l.loadOneProgress(ctx, src, dest, mode)
	return err
}

func (l *Loader) loadOneProgress(ctx context.Context, src pkgindex.FeedSource, dest *pkgindex.Dest, mode loadMode) (bool, error) {
	rc, err := l.host.OpenFeed(ctx, src)
	if err != nil {
		return false, fmt.Errorf("feed: opening %s: %w", src.Name, err)
	}
	defer rc.Close()
	return l.loadStream(rc, dest, mode)
}

func (l *Loader) loadStream(r io.Reader, dest *pkgindex.Dest, mode loadMode) (bool, error) {
	sc := stanza.NewScanner(r)
	progressed := false

	for {
		rec, ok := sc.Next()
		if !ok {
			break
		}
		name := rec.Get("Package")
		if name == "" {
			continue
		}

		if mode != modeStatus {
			arch := rec.Get("Architecture")
			if l.host.ArchitecturePriority(arch) < 0 {
				continue
			}
		}

		if mode == modeDetail {
			existing, known := l.ix.FetchAbstract(name)
			if !known || existing.Flags&pkgindex.FlagNeedDetail == 0 {
				continue
			}
			if existing.Flags&pkgindex.FlagMarked != 0 {
				continue
			}
		}

		p, err := parseStanza(l.ix, rec)
		if err != nil {
			l.host.Logger().Noticef("%v", err)
			continue
		}

		if mode == modeStatus {
			p.Flags |= pkgindex.FlagNeedDetail
			p.Dest = dest
		}

		l.ix.InsertPackage(p)
		ab, _ := l.ix.FetchAbstract(name)
		ab.Flags |= pkgindex.FlagMarked | pkgindex.FlagNeedDetail
		flagDependencyDetail(l.ix, ab, p)
		progressed = true
	}

	return progressed, sc.Err()
}

// flagDependencyDetail marks every abstract package p's Depends/Pre-Depends
// name as needing full detail loaded, so a subsequent LoadPackageDetails
// pass picks it up.
func flagDependencyDetail(ix *pkgindex.Index, owner *pkgindex.AbstractPkg, p *pkgindex.Package) {
	mark := func(compounds []dep.Compound) {
		for _, c := range compounds {
			for _, a := range c.Possibilities {
				if t, ok := a.Target.(*pkgindex.AbstractPkg); ok {
					ix.MarkNeedDetail(t, owner)
				}
			}
		}
	}
	mark(p.Depends)
	mark(p.PreDepends)
}
