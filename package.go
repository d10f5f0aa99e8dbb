package index

import (
	"strconv"
	"strings"

	"github.com/opkg-go/pkgresolve/dep"
	"github.com/opkg-go/pkgresolve/internal/attr"
	"github.com/opkg-go/pkgresolve/version"
)

// FieldID addresses one of the sparse, less-frequently-needed fields stored
// in a Package's property bag. Grounded on pkg.h's enum pkg_fields; fields
// promoted to plain struct members (name, version, architecture, depends,
// provides...) because every Package has them are not repeated here.
type FieldID uint8

const (
	FieldMaintainer FieldID = iota
	FieldPriority
	FieldSource
	FieldTags
	FieldSection
	FieldFilename
	FieldLocalFilename
	FieldDescription
	FieldMD5Sum
	FieldSHA256Sum
	FieldSize
	FieldInstalledSize
	FieldInstalledTime
	FieldTmpUnpackDir
	FieldABIVersion
	FieldConffiles
	FieldAlternatives
)

// Conffile is one entry of a package's Conffiles: field: a file the package
// owns that must survive reinstallation if locally modified.
type Conffile struct {
	Name   string
	MD5Sum string
}

// Alternative is one entry of a package's Alternatives: field, describing a
// file this package registers into an update-alternatives-style slot.
type Alternative struct {
	Priority int
	Path     string
	AltPath  string
}

// Want is a package's desired state, set by the user or by the resolver
// acting on the user's behalf.
type Want int

const (
	WantUnknown Want = iota
	WantInstall
	WantDeinstall
	WantPurge
)

func (w Want) String() string {
	switch w {
	case WantInstall:
		return "install"
	case WantDeinstall:
		return "deinstall"
	case WantPurge:
		return "purge"
	default:
		return "unknown"
	}
}

// ParseWant parses one of the three tokens a status file's "Status:" line
// stores for the want field.
func ParseWant(s string) (Want, error) {
	switch s {
	case "unknown":
		return WantUnknown, nil
	case "install":
		return WantInstall, nil
	case "deinstall":
		return WantDeinstall, nil
	case "purge":
		return WantPurge, nil
	default:
		return WantUnknown, ErrMalformedStatus
	}
}

// Status is a package's actual installation state, as tracked by the
// status file across the unpack/configure sequence.
type Status int

const (
	StatusNotInstalled Status = iota
	StatusUnpacked
	StatusHalfConfigured
	StatusInstalled
	StatusHalfInstalled
	StatusConfigFiles
	StatusPostInstFailed
	StatusRemovalFailed
)

func (s Status) String() string {
	switch s {
	case StatusNotInstalled:
		return "not-installed"
	case StatusUnpacked:
		return "unpacked"
	case StatusHalfConfigured:
		return "half-configured"
	case StatusInstalled:
		return "installed"
	case StatusHalfInstalled:
		return "half-installed"
	case StatusConfigFiles:
		return "config-files"
	case StatusPostInstFailed:
		return "post-inst-failed"
	case StatusRemovalFailed:
		return "removal-failed"
	default:
		return "unknown"
	}
}

// ParseStatus parses one of the status-file tokens for the status field.
func ParseStatus(s string) (Status, error) {
	switch s {
	case "not-installed":
		return StatusNotInstalled, nil
	case "unpacked":
		return StatusUnpacked, nil
	case "half-configured":
		return StatusHalfConfigured, nil
	case "installed":
		return StatusInstalled, nil
	case "half-installed":
		return StatusHalfInstalled, nil
	case "config-files":
		return StatusConfigFiles, nil
	case "post-inst-failed", "postinst-failed":
		return StatusPostInstFailed, nil
	case "removal-failed":
		return StatusRemovalFailed, nil
	default:
		return StatusNotInstalled, ErrMalformedStatus
	}
}

// Installed reports whether s counts as "present enough to satisfy a
// dependency", mirroring the C (status == SS_INSTALLED || status ==
// SS_UNPACKED) check used throughout pkg_hash.c/pkg_depends.c.
func (s Status) Installed() bool {
	return s == StatusInstalled || s == StatusUnpacked
}

// Flags is a bitset of the non-exclusive per-package markers tracked
// alongside Want/Status. Grounded on pkg.h's pkg_state_flag_t.
type Flags uint16

const (
	FlagReinstreq Flags = 1 << iota
	FlagHold
	FlagReplace
	FlagNoPrune
	FlagPrefer
	FlagObsolete
	FlagMarked
	FlagFilelistChanged
	FlagUser
	FlagNeedDetail
)

// NonvolatileFlags is the subset of Flags that survives a package being
// re-inserted into the index with the same version and architecture (the
// record replaced by a newer version does not pass them on), matching
// pkg.h's SF_NONVOLATILE_FLAGS.
const NonvolatileFlags = FlagHold | FlagNoPrune | FlagPrefer | FlagObsolete | FlagUser

// Package is one concrete, versioned, architecture-specific package: one
// entry of an AbstractPkg's Packages list. Property-bag fields it rarely
// needs (maintainer, description, checksums...) are stored in bag rather
// than as dedicated struct fields, following pkg_get_raw/pkg_set_raw's
// sparse-field design.
type Package struct {
	Name         string
	Architecture string
	Version      version.Version

	Want   Want
	Status Status
	Flags  Flags

	// ProvidedByHand marks a package the user explicitly selected by name
	// or file path on the command line, short-circuiting the resolver's
	// scoring pass in its favor (pkg.h's provided_by_hand).
	ProvidedByHand bool
	AutoInstalled  bool

	Depends    []dep.Compound
	PreDepends []dep.Compound
	Conflicts  []dep.Compound

	Provides []*AbstractPkg
	Replaces []*AbstractPkg

	Conffiles    []Conffile
	Alternatives []Alternative

	Dest *Dest

	parent *AbstractPkg
	bag    attr.Set
}

// Parent returns the AbstractPkg p was inserted under. Returns ErrNoParent
// if p has never been inserted into an Index.
func (p *Package) Parent() (*AbstractPkg, error) {
	if p.parent == nil {
		return nil, ErrNoParent
	}
	return p.parent, nil
}

func (p *Package) field(id FieldID) (string, bool) {
	v, ok := p.bag.Get(uint8(id))
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, ok
}

func (p *Package) setField(id FieldID, s string) {
	p.bag.Set(uint8(id), s)
}

func (p *Package) Maintainer() string { s, _ := p.field(FieldMaintainer); return s }
func (p *Package) SetMaintainer(s string) { p.setField(FieldMaintainer, s) }

func (p *Package) Priority() string { s, _ := p.field(FieldPriority); return s }
func (p *Package) SetPriority(s string) { p.setField(FieldPriority, s) }

func (p *Package) Source() string { s, _ := p.field(FieldSource); return s }
func (p *Package) SetSource(s string) { p.setField(FieldSource, s) }

func (p *Package) Section() string { s, _ := p.field(FieldSection); return s }
func (p *Package) SetSection(s string) { p.setField(FieldSection, s) }

func (p *Package) Tags() string { s, _ := p.field(FieldTags); return s }
func (p *Package) SetTags(s string) { p.setField(FieldTags, s) }

func (p *Package) Filename() string { s, _ := p.field(FieldFilename); return s }
func (p *Package) SetFilename(s string) { p.setField(FieldFilename, s) }

func (p *Package) LocalFilename() string { s, _ := p.field(FieldLocalFilename); return s }
func (p *Package) SetLocalFilename(s string) { p.setField(FieldLocalFilename, s) }

func (p *Package) Description() string { s, _ := p.field(FieldDescription); return s }
func (p *Package) SetDescription(s string) { p.setField(FieldDescription, s) }

func (p *Package) MD5Sum() string { s, _ := p.field(FieldMD5Sum); return s }
func (p *Package) SetMD5Sum(s string) { p.setField(FieldMD5Sum, s) }

func (p *Package) SHA256Sum() string { s, _ := p.field(FieldSHA256Sum); return s }
func (p *Package) SetSHA256Sum(s string) { p.setField(FieldSHA256Sum, s) }

func (p *Package) ABIVersion() string { s, _ := p.field(FieldABIVersion); return s }
func (p *Package) SetABIVersion(s string) { p.setField(FieldABIVersion, s) }

func (p *Package) TmpUnpackDir() string { s, _ := p.field(FieldTmpUnpackDir); return s }
func (p *Package) SetTmpUnpackDir(s string) { p.setField(FieldTmpUnpackDir, s) }

// Size and InstalledSize store their fields as plain decimal strings in the
// bag (as the control/status file does) and parse on demand; a malformed
// value simply reads back as zero, matching the control file parser's
// general leniency.
func (p *Package) Size() int64           { return p.intField(FieldSize) }
func (p *Package) SetSize(n int64)       { p.setField(FieldSize, strconv.FormatInt(n, 10)) }
func (p *Package) InstalledSize() int64  { return p.intField(FieldInstalledSize) }
func (p *Package) SetInstalledSize(n int64) {
	p.setField(FieldInstalledSize, strconv.FormatInt(n, 10))
}
func (p *Package) InstalledTime() int64 { return p.intField(FieldInstalledTime) }
func (p *Package) SetInstalledTime(n int64) {
	p.setField(FieldInstalledTime, strconv.FormatInt(n, 10))
}

func (p *Package) intField(id FieldID) int64 {
	s, ok := p.field(id)
	if !ok {
		return 0
	}
	n, _ := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return n
}

// ConflictsWith reports whether p's Conflicts list names other's abstract
// package, used to decide whether a Replaces entry is backed by a matching
// Conflicts entry (is_pkg_a_replaces in pkg_depends.c).
func (p *Package) ConflictsWith(other *AbstractPkg) bool {
	for _, c := range p.Conflicts {
		for _, a := range c.Possibilities {
			if t, ok := a.Target.(*AbstractPkg); ok && t == other {
				return true
			}
		}
	}
	return false
}
