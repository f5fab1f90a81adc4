package onefile

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Walker traverses directory trees and streams the files that satisfy every
// enabled predicate. Traversal is deterministic: entries are visited in name
// order per directory, so repeated runs over an unchanged tree produce
// identical sequences.
type Walker struct {
	fs       afero.Fs
	args     *Arguments
	excludes excludeSet
	preds    []predicate
	logger   *zap.Logger

	discovered int
	warnings   []Warning
}

// NewWalker builds a walker for the given configuration. The exclude set and
// predicate chain are compiled once and shared across all roots.
func NewWalker(fs afero.Fs, args *Arguments, logger *zap.Logger) *Walker {
	excludes := newExcludeSet(fs, args.Exclude)
	return &Walker{
		fs:       fs,
		args:     args,
		excludes: excludes,
		preds:    buildPredicates(fs, args, excludes),
		logger:   logger,
	}
}

// Discovered returns the number of regular files visited so far, before any
// predicate was applied.
func (w *Walker) Discovered() int { return w.discovered }

// Warnings returns the traversal problems accumulated so far.
func (w *Walker) Warnings() []Warning { return w.warnings }

// Walk traverses root and calls yield for every accepted file, in discovery
// order. yield returning false stops the traversal cooperatively. A root that
// cannot be read is recorded as a warning, not an error.
func (w *Walker) Walk(root string, yield func(FileEntry) bool) {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = filepath.Clean(root)
	}

	info, err := w.fs.Stat(abs)
	if err != nil {
		w.warn(abs, "cannot access path: "+err.Error())
		return
	}

	if !info.IsDir() {
		if !w.args.ShowHidden && isHiddenName(filepath.Base(abs)) {
			return
		}
		w.discovered++
		w.visitFile(abs, filepath.Base(abs), info, yield)
		return
	}

	lineage := map[string]struct{}{}
	w.walkDir(abs, abs, 0, IgnoreSet{}, lineage, yield)
}

// walkDir visits one directory level. depth is the depth of files directly
// inside dir (root-level files are at depth 0). It returns false once yield
// has asked to stop, which unwinds the whole traversal.
func (w *Walker) walkDir(dir, root string, depth int, ignores IgnoreSet, lineage map[string]struct{}, yield func(FileEntry) bool) bool {
	canonical := canonicalPath(w.fs, dir)
	if _, seen := lineage[canonical]; seen {
		w.warn(dir, "symlink cycle detected")
		return true
	}
	lineage[canonical] = struct{}{}
	defer delete(lineage, canonical)

	if w.args.SkipGitignore {
		ignores = ignores.Descend(w.fs, dir, w.logger)
	}

	entries, err := afero.ReadDir(w.fs, dir)
	if err != nil {
		w.warn(dir, "cannot read directory: "+err.Error())
		return true
	}

	for _, fi := range entries {
		if !w.args.ShowHidden && isHiddenName(fi.Name()) {
			continue
		}
		path := filepath.Join(dir, fi.Name())

		// Resolve symlinks so linked directories are traversed; the
		// lineage set above keeps cycles from recursing forever.
		if fi.Mode()&os.ModeSymlink != 0 {
			resolved, err := w.fs.Stat(path)
			if err != nil {
				w.warn(path, "broken symlink: "+err.Error())
				continue
			}
			fi = resolved
		}

		if fi.IsDir() {
			if w.excludes.contains(w.fs, path) {
				w.logger.Debug("pruning excluded directory", zap.String("path", path))
				continue
			}
			if w.args.SkipGitignore && ignores.Match(path, true) {
				w.logger.Debug("pruning ignored directory", zap.String("path", path))
				continue
			}
			if w.args.MaxDepth != nil && depth+1 > *w.args.MaxDepth {
				continue
			}
			if !w.walkDir(path, root, depth+1, ignores, lineage, yield) {
				return false
			}
			continue
		}

		w.discovered++
		if w.args.SkipGitignore && ignores.Match(path, false) {
			continue
		}
		if !w.visitFile(path, relPath(root, path), fi, yield) {
			return false
		}
	}
	return true
}

// visitFile applies the predicate chain to a single file and yields it on
// acceptance. Returns false when the consumer asks to stop.
func (w *Walker) visitFile(path, rel string, info os.FileInfo, yield func(FileEntry) bool) bool {
	entry := FileEntry{
		Path:    path,
		RelPath: rel,
		Size:    info.Size(),
		ModTime: info.ModTime(),
		Ext:     normalizedExt(path),
	}
	if !acceptedByAll(w.preds, entry) {
		return true
	}
	return yield(entry)
}

func (w *Walker) warn(path, reason string) {
	w.logger.Warn("traversal warning", zap.String("path", path), zap.String("reason", reason))
	w.warnings = append(w.warnings, Warning{Path: path, Reason: reason})
}

// canonicalPath resolves a path to a unique absolute form for deduplication
// and exclusion matching. Symlinks are resolved only on the real filesystem;
// in-memory filesystems have none.
func canonicalPath(fs afero.Fs, path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}
	if _, ok := fs.(*afero.OsFs); ok {
		if resolved, err := filepath.EvalSymlinks(abs); err == nil {
			return resolved
		}
	}
	return filepath.Clean(abs)
}

// relPath returns path relative to root in slash form, falling back to the
// input when the two do not share a prefix.
func relPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// isHiddenName reports whether a base name denotes a hidden file or
// directory.
func isHiddenName(name string) bool {
	return len(name) > 1 && name[0] == '.'
}

// normalizedExt returns the lower-cased extension without the leading dot,
// or the empty string when the file has none.
func normalizedExt(path string) string {
	ext := filepath.Ext(path)
	if ext == "" {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
