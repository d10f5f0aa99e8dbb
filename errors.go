package index

import "errors"

// Sentinel errors, usable with errors.Is. A malformed field inside a stanza
// (Status, Conffiles, Alternatives, Version or an integer field) makes the
// feed package's stanza parser reject the whole stanza with an error, which
// wraps ErrMalformedStatus or ErrMalformedConffiles for those two fields;
// the feed loader logs that error and skips the package. The offending
// field is not dropped on its own: the rest of that stanza is not loaded.
var (
	// ErrMalformedStatus is returned when a Status: line does not have
	// exactly three space-separated tokens, or a token is not a member of
	// its enum.
	ErrMalformedStatus = errors.New("index: malformed Status field")

	// ErrMalformedConffiles is returned when a Conffiles: continuation
	// line does not have exactly two whitespace-separated tokens.
	ErrMalformedConffiles = errors.New("index: malformed Conffiles entry")

	// ErrInvalidEpoch names a Version: field whose epoch prefix is not a
	// valid unsigned integer. Nothing in this module returns it:
	// version.Parse (and so Index.ParseVersion) reports that case with its
	// own error wrapping the strconv failure.
	ErrInvalidEpoch = errors.New("index: invalid version epoch")

	// ErrAmbiguousResolution is returned by FetchBestCandidate when more
	// than one distinct providing abstract remains after scoring, with no
	// held/installed/priorized tiebreaker available to pick among them.
	// quiet only suppresses the accompanying log notice, not this error.
	ErrAmbiguousResolution = errors.New("index: ambiguous candidate resolution")

	// ErrNoParent is returned when an operation that requires a Package's
	// parent AbstractPkg is called on a Package that was never inserted
	// into an Index.
	ErrNoParent = errors.New("index: package has no parent abstract package")

	// ErrOrphanedReferences is returned (non-fatally — see
	// OrphanedReferencesError) by Loader.LoadPackageDetails when the
	// bounded NEED_DETAIL reload loop exhausts its pass budget with
	// abstract packages still flagged, because they are cited by name but
	// never defined in any loaded feed.
	ErrOrphanedReferences = errors.New("index: orphaned package references after detail reload")
)

// OrphanedReferencesError wraps ErrOrphanedReferences with the specific
// names that remained unresolved.
type OrphanedReferencesError struct {
	Names []string
}

func (e *OrphanedReferencesError) Error() string {
	s := "index: orphaned package references:"
	for i, n := range e.Names {
		if i > 0 {
			s += ","
		}
		s += " " + n
	}
	return s
}

func (e *OrphanedReferencesError) Unwrap() error { return ErrOrphanedReferences }
