package index

import (
	"testing"

	"github.com/opkg-go/pkgresolve/dep"
)

// A package can replace a conflicting package via a virtual name the
// conflicting package provides, not just its own literal name: "P
// replaces Q iff P.replaces ∩ Q.provides ≠ ∅".
func TestConflictsCancelledByReplacesThroughProvides(t *testing.T) {
	ix := NewIndex(nil)

	// oldmta provides "mail-transport-agent" and is installed.
	oldmta := &Package{Name: "oldmta", Version: mustVersion(t, "1"), Status: StatusInstalled}
	oldmta.Provides = []*AbstractPkg{ix.EnsureAbstract("mail-transport-agent")}
	ix.InsertPackage(oldmta)

	// newmta conflicts with oldmta directly but replaces the virtual name,
	// not oldmta's own name.
	newmta := &Package{Name: "newmta", Version: mustVersion(t, "1")}
	newmta.Conflicts = mustDeps(t, ix, dep.Conflict, "oldmta")
	newmta.Replaces = []*AbstractPkg{ix.EnsureAbstract("mail-transport-agent")}
	ix.InsertPackage(newmta)

	if conflicts := ix.FetchConflicts(newmta); len(conflicts) != 0 {
		t.Errorf("FetchConflicts(newmta) = %v, want empty: replacing the provided virtual name cancels the conflict", conflicts)
	}
}

// Replacing an unrelated virtual name does not cancel a conflict with a
// package that doesn't provide it.
func TestConflictsNotCancelledByUnrelatedReplaces(t *testing.T) {
	ix := NewIndex(nil)

	f := &Package{Name: "F", Version: mustVersion(t, "1"), Status: StatusInstalled}
	ix.InsertPackage(f)

	e := &Package{Name: "E", Version: mustVersion(t, "1")}
	e.Conflicts = mustDeps(t, ix, dep.Conflict, "F")
	e.Replaces = []*AbstractPkg{ix.EnsureAbstract("something-else")}
	ix.InsertPackage(e)

	conflicts := ix.FetchConflicts(e)
	if len(conflicts) != 1 || conflicts[0] != f {
		t.Errorf("FetchConflicts(E) = %v, want [%v]: Replaces naming an unrelated name must not cancel the conflict", conflicts, f)
	}
}

// A conflicting package that is merely want=install (not yet actually
// installed) still counts.
func TestConflictsIncludesWantInstallNotYetInstalled(t *testing.T) {
	ix := NewIndex(nil)

	f := &Package{Name: "F", Version: mustVersion(t, "1"), Want: WantInstall}
	ix.InsertPackage(f)

	e := &Package{Name: "E", Version: mustVersion(t, "1")}
	e.Conflicts = mustDeps(t, ix, dep.Conflict, "F")
	ix.InsertPackage(e)

	conflicts := ix.FetchConflicts(e)
	if len(conflicts) != 1 || conflicts[0] != f {
		t.Errorf("FetchConflicts(E) = %v, want [%v]", conflicts, f)
	}
}

// No Conflicts: field at all means FetchConflicts is nil, not an empty
// allocated slice with zero elements walked.
func TestFetchConflictsNoConflictsField(t *testing.T) {
	ix := NewIndex(nil)
	e := &Package{Name: "E", Version: mustVersion(t, "1")}
	ix.InsertPackage(e)

	if conflicts := ix.FetchConflicts(e); conflicts != nil {
		t.Errorf("FetchConflicts(E) = %v, want nil", conflicts)
	}
}
