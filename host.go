package index

import (
	"context"
	"io"
	"strings"
)

// FeedSource names a single package feed ("Packages" file) the host can
// open for the loader to stream stanzas from.
type FeedSource struct {
	Name string
	Gzip bool
}

// Dest is an installation destination: a root directory with its own
// status file and its own per-package file-list directory, mirroring
// opkg's notion of multiple install destinations (e.g. a read-only base
// system plus a writable overlay).
type Dest struct {
	Name           string
	StatusFileName string
	ListsDir       string
}

// Host collects every piece of host-specific I/O and policy the index and
// resolver need but must not own directly: opening feeds, architecture
// preference, logging, and the configured sources/destinations. Gzip
// transparency, archive extraction, checksum verification and
// maintainer-script execution are entirely the host's concern; OpenFeed
// always returns an already-decompressed stream so the core never imports
// compress/gzip or os/exec.
//
// Modeled on deps.dev/util/resolve's client.go Client interface
// (Version/Versions/Requirements/MatchingVersions) for the shape of a
// small, mockable collaborator interface with an in-memory test double
// alongside it; the methods themselves are opkg's.
type Host interface {
	// OpenFeed opens a feed for streaming. The returned reader yields
	// already-decompressed stanza text.
	OpenFeed(ctx context.Context, src FeedSource) (io.ReadCloser, error)

	// ArchitecturePriority returns the configured priority of an
	// architecture name, or a negative number if it is not supported at
	// all (see spec.md's arch-supported filtering in FetchBestCandidate).
	ArchitecturePriority(name string) int

	// Logger returns the structured logger components should use.
	Logger() Logger

	// CLIArgv returns the argv the host was invoked with. The resolver's
	// dependency walk passes it to FetchBestCandidate, which scores a
	// candidate named in it higher.
	CLIArgv() []string

	// OfflineRoot returns the root prefix to strip from file-owner paths
	// when operating against an offline root filesystem, or "" when none
	// is configured.
	OfflineRoot() string

	// DefaultDest returns the destination packages are installed to when
	// no destination is specified explicitly.
	DefaultDest() *Dest

	// PackageSources returns every configured feed.
	PackageSources() []FeedSource

	// PackageDests returns every configured installation destination.
	PackageDests() []*Dest
}

// MemHost is an in-memory Host test double: feeds are literal strings kept
// in a map, architecture priorities come from a map, and everything else
// is a plain field. It never touches the filesystem, mirroring the
// teacher's LocalClient in-memory Client implementation.
type MemHost struct {
	Feeds       map[string]string
	ArchPrio    map[string]int
	Log         Logger
	Argv        []string
	Root        string
	Default     *Dest
	Sources     []FeedSource
	Destinations []*Dest
}

// NewMemHost returns an empty MemHost ready for feeds/architectures to be
// added.
func NewMemHost(log Logger) *MemHost {
	return &MemHost{
		Feeds:    make(map[string]string),
		ArchPrio: make(map[string]int),
		Log:      log,
	}
}

// AddFeed registers a feed's contents in memory and appends it to Sources.
func (h *MemHost) AddFeed(name, contents string) {
	h.Feeds[name] = contents
	h.Sources = append(h.Sources, FeedSource{Name: name})
}

func (h *MemHost) OpenFeed(_ context.Context, src FeedSource) (io.ReadCloser, error) {
	contents, ok := h.Feeds[src.Name]
	if !ok {
		return nil, &feedNotFoundError{name: src.Name}
	}
	return io.NopCloser(strings.NewReader(contents)), nil
}

func (h *MemHost) ArchitecturePriority(name string) int {
	if p, ok := h.ArchPrio[name]; ok {
		return p
	}
	return -1
}

func (h *MemHost) Logger() Logger         { return h.Log }
func (h *MemHost) CLIArgv() []string      { return h.Argv }
func (h *MemHost) OfflineRoot() string    { return h.Root }
func (h *MemHost) DefaultDest() *Dest     { return h.Default }
func (h *MemHost) PackageSources() []FeedSource { return h.Sources }
func (h *MemHost) PackageDests() []*Dest  { return h.Destinations }

type feedNotFoundError struct{ name string }

func (e *feedNotFoundError) Error() string { return "index: feed not found: " + e.name }
