package onefile

import "github.com/spf13/afero"

// Assembler collects accepted entries in discovery order, deduplicating by
// canonical path (first occurrence wins) and truncating at the configured
// file cap.
type Assembler struct {
	fs      afero.Fs
	max     int // 0 means unlimited
	seen    map[string]struct{}
	entries []FileEntry
}

// NewAssembler builds an assembler. maxFiles must already have been
// validated; nil means no cap.
func NewAssembler(fs afero.Fs, maxFiles *int) *Assembler {
	max := 0
	if maxFiles != nil {
		max = *maxFiles
	}
	return &Assembler{
		fs:   fs,
		max:  max,
		seen: make(map[string]struct{}),
	}
}

// Add records an entry and reports whether the walker should keep producing.
// Duplicates are dropped silently; once the cap is reached Add returns false
// so the walker stops cooperatively.
func (a *Assembler) Add(e FileEntry) bool {
	if a.Full() {
		return false
	}
	key := canonicalPath(a.fs, e.Path)
	if _, dup := a.seen[key]; dup {
		return true
	}
	a.seen[key] = struct{}{}
	a.entries = append(a.entries, e)
	return !a.Full()
}

// Full reports whether the cap has been reached.
func (a *Assembler) Full() bool {
	return a.max > 0 && len(a.entries) >= a.max
}

// Entries returns the accepted list in discovery order.
func (a *Assembler) Entries() []FileEntry { return a.entries }
