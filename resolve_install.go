package index

import (
	"time"

	"github.com/opkg-go/pkgresolve/dep"
)

// ResolveInstall walks root's dependency tree like FetchUnsatisfied does,
// but records the decision tree itself as an InstallGraph instead of a flat
// list: every chosen candidate becomes a Node, every dependency compound
// that chose it becomes an Edge, and every compound nothing could satisfy
// becomes a NodeError on the depending node. argv is forwarded to
// FetchBestCandidate's scoring so a package named explicitly on the command
// line wins ties the way it would in a real install.
//
// The walk differs from FetchUnsatisfied's: it has no installed-first pass
// (each compound goes straight to FetchBestCandidate with the version
// constraint, which is then rechecked); Suggests compounds are walked as
// well as Recommends; a soft candidate marked want=deinstall or want=purge
// is not skipped; a soft compound with no candidate is skipped without a
// NodeError; and a greedy compound adds every provider package not already
// want=install whose own pre-check resolves cleanly.
func (ix *Index) ResolveInstall(root *Package, argv []string) (*InstallGraph, error) {
	start := time.Now()
	g := &InstallGraph{}
	ids := make(map[*Package]NodeID)

	rootID := g.AddNodeInstalled(root.Name, root.Version.String(), root.Status.Installed())
	ids[root] = rootID

	ix.epoch++
	ix.walkInstallGraph(root, rootID, g, ids, ix.epoch, argv)

	g.Duration = time.Since(start)
	return g, nil
}

func (ix *Index) addOrGetNode(g *InstallGraph, ids map[*Package]NodeID, p *Package) NodeID {
	if id, ok := ids[p]; ok {
		return id
	}
	id := g.AddNodeInstalled(p.Name, p.Version.String(), p.Status.Installed())
	ids[p] = id
	return id
}

func (ix *Index) walkInstallGraph(p *Package, id NodeID, g *InstallGraph, ids map[*Package]NodeID, epoch uint64, argv []string) {
	parent, err := p.Parent()
	if err != nil {
		return
	}
	if parent.visitEpoch == epoch {
		return
	}
	parent.visitEpoch = epoch

	compounds := append(append([]dep.Compound{}, p.PreDepends...), p.Depends...)
	for _, c := range compounds {
		ix.walkInstallGraphCompound(p, id, c, g, ids, epoch, argv)
	}
}

func (ix *Index) walkInstallGraphCompound(p *Package, id NodeID, c dep.Compound, g *InstallGraph, ids map[*Package]NodeID, epoch uint64, argv []string) {
	if c.Kind == dep.Greedy {
		for _, atom := range c.Possibilities {
			target, ok := atom.Target.(*AbstractPkg)
			if !ok {
				continue
			}
			for _, provider := range ix.candidateProviders(target) {
				for _, cand := range provider.Packages {
					if cand.Want == WantInstall {
						continue
					}
					if ix.hasUnresolvedDependencies(cand, true) {
						continue
					}
					childID := ix.addOrGetNode(g, ids, cand)
					_ = g.AddEdge(id, childID, c.String(), c.Kind)
					ix.walkInstallGraph(cand, childID, g, ids, epoch, argv)
				}
			}
		}
		return
	}

	var best *Package
	for _, atom := range c.Possibilities {
		target, ok := atom.Target.(*AbstractPkg)
		if !ok {
			continue
		}
		constraint := satisfiesVersion(ix, atom)
		cand, _ := ix.FetchBestCandidate(target, constraint, argv, true)
		// Recheck: FetchBestCandidate's fallback tiers aren't filtered by
		// constraint, so a candidate it falls back to may not actually
		// satisfy the version atom that chose it.
		if cand != nil && !constraint(cand) {
			cand = nil
		}
		if cand != nil {
			best = cand
			break
		}
	}
	if best == nil {
		if !c.Kind.Soft() {
			_ = g.AddError(id, c.String(), "unsatisfied")
		}
		return
	}
	childID := ix.addOrGetNode(g, ids, best)
	_ = g.AddEdge(id, childID, c.String(), c.Kind)
	ix.walkInstallGraph(best, childID, g, ids, epoch, argv)
}
