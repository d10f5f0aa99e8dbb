package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	pkgindex "github.com/opkg-go/pkgresolve"
)

// fileHost implements pkgindex.Host by reading feeds and status files
// directly off disk: every configured feed or status file name is a plain
// path, and architecture priority comes from a flat list where earlier
// entries get higher priority (opkg.conf's "arch <name> <priority>" lines, without the
// .conf file format itself).
type fileHost struct {
	feeds    []pkgindex.FeedSource
	dests    []*pkgindex.Dest
	archPrio map[string]int
	log      pkgindex.Logger
	argv     []string
	root     string
}

func newFileHost(feedPaths []string, statusPath string, arches []string, root string, log pkgindex.Logger, argv []string) *fileHost {
	h := &fileHost{
		archPrio: make(map[string]int),
		log:      log,
		argv:     argv,
		root:     root,
	}
	for _, p := range feedPaths {
		h.feeds = append(h.feeds, pkgindex.FeedSource{Name: p})
	}
	for i, a := range arches {
		h.archPrio[a] = len(arches) - i
	}
	if statusPath != "" {
		dest := &pkgindex.Dest{Name: "root", StatusFileName: statusPath}
		h.dests = []*pkgindex.Dest{dest}
	}
	return h
}

func (h *fileHost) OpenFeed(_ context.Context, src pkgindex.FeedSource) (io.ReadCloser, error) {
	f, err := os.Open(src.Name)
	if err != nil {
		return nil, fmt.Errorf("opening feed %s: %w", src.Name, err)
	}
	return f, nil
}

func (h *fileHost) ArchitecturePriority(name string) int {
	if name == "" {
		return 1
	}
	if p, ok := h.archPrio[name]; ok {
		return p
	}
	return -1
}

func (h *fileHost) Logger() pkgindex.Logger      { return h.log }
func (h *fileHost) CLIArgv() []string            { return h.argv }
func (h *fileHost) OfflineRoot() string          { return h.root }
func (h *fileHost) DefaultDest() *pkgindex.Dest {
	if len(h.dests) == 0 {
		return nil
	}
	return h.dests[0]
}
func (h *fileHost) PackageSources() []pkgindex.FeedSource { return h.feeds }
func (h *fileHost) PackageDests() []*pkgindex.Dest        { return h.dests }

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
