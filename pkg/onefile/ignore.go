package onefile

import (
	"path/filepath"

	gitignore "github.com/monochromegane/go-gitignore"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const gitignoreFileName = ".gitignore"

// ignoreScope is one compiled .gitignore file, applicable only to paths under
// its directory.
type ignoreScope struct {
	dir     string
	matcher gitignore.IgnoreMatcher
}

// IgnoreSet is a stack of directory-scoped gitignore matchers. Scopes are
// ordered outermost first; Descend returns an extended copy so each level of
// the traversal sees exactly the ignore files above it. An IgnoreSet is never
// mutated after construction.
type IgnoreSet struct {
	scopes []ignoreScope
}

// Descend returns the IgnoreSet that applies inside dir. If dir carries a
// .gitignore file, a matcher scoped to dir is appended; otherwise the
// receiver is returned unchanged.
func (s IgnoreSet) Descend(fs afero.Fs, dir string, logger *zap.Logger) IgnoreSet {
	path := filepath.Join(dir, gitignoreFileName)
	f, err := fs.Open(path)
	if err != nil {
		return s
	}
	defer f.Close()

	matcher := gitignore.NewGitIgnoreFromReader(dir, f)
	logger.Debug("compiled ignore file", zap.String("path", path))

	scopes := make([]ignoreScope, len(s.scopes), len(s.scopes)+1)
	copy(scopes, s.scopes)
	scopes = append(scopes, ignoreScope{dir: dir, matcher: matcher})
	return IgnoreSet{scopes: scopes}
}

// Match reports whether path is ignored by any scope containing it. Scopes
// are consulted innermost first, so patterns in a subdirectory take
// precedence over those inherited from parents.
func (s IgnoreSet) Match(path string, isDir bool) bool {
	for i := len(s.scopes) - 1; i >= 0; i-- {
		if s.scopes[i].matcher.Match(path, isDir) {
			return true
		}
	}
	return false
}
