package onefile

import (
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// predicate is a pure accept/reject test over a discovered file's metadata.
// A file is accepted only if every predicate accepts it.
type predicate func(e FileEntry) bool

// excludeSet holds the canonicalized paths named by --exclude.
type excludeSet map[string]struct{}

func newExcludeSet(fs afero.Fs, paths []string) excludeSet {
	set := make(excludeSet, len(paths))
	for _, p := range paths {
		set[canonicalPath(fs, p)] = struct{}{}
	}
	return set
}

func (s excludeSet) contains(fs afero.Fs, path string) bool {
	if len(s) == 0 {
		return false
	}
	_, ok := s[canonicalPath(fs, path)]
	return ok
}

// buildPredicates assembles the predicate chain in evaluation order. Cheap,
// high-rejection-rate tests come first so size and date comparisons run only
// on files that survive the rest.
func buildPredicates(fs afero.Fs, args *Arguments, excludes excludeSet) []predicate {
	var preds []predicate

	if len(excludes) > 0 {
		preds = append(preds, func(e FileEntry) bool {
			return !excludes.contains(fs, e.Path)
		})
	}

	if !args.IncludeSum {
		preds = append(preds, func(e FileEntry) bool {
			return filepath.Base(e.Path) != "go.sum"
		})
	}

	if len(args.Extensions) > 0 {
		allowed := make(map[string]struct{}, len(args.Extensions))
		for _, ext := range args.Extensions {
			allowed[strings.ToLower(strings.TrimPrefix(ext, "."))] = struct{}{}
		}
		preds = append(preds, func(e FileEntry) bool {
			_, ok := allowed[e.Ext]
			return ok
		})
	}

	if !args.IncludeBinary {
		preds = append(preds, func(e FileEntry) bool {
			return !binaryExtensions[e.Ext]
		})
	}

	if args.LargerThan != nil || args.SmallerThan != nil {
		lo, hi := args.LargerThan, args.SmallerThan
		preds = append(preds, func(e FileEntry) bool {
			if lo != nil && e.Size < *lo {
				return false
			}
			if hi != nil && e.Size > *hi {
				return false
			}
			return true
		})
	}

	if args.NewerThan != nil || args.OlderThan != nil {
		lo, hi := args.NewerThan, args.OlderThan
		preds = append(preds, func(e FileEntry) bool {
			if lo != nil && e.ModTime.Before(*lo) {
				return false
			}
			if hi != nil && e.ModTime.After(*hi) {
				return false
			}
			return true
		})
	}

	return preds
}

func acceptedByAll(preds []predicate, e FileEntry) bool {
	for _, p := range preds {
		if !p(e) {
			return false
		}
	}
	return true
}
