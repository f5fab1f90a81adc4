package onefile

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeFiles(t *testing.T, fs afero.Fs, files map[string]string) {
	t.Helper()
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
	}
}

func collectPaths(w *Walker, root string) []string {
	var paths []string
	w.Walk(root, func(e FileEntry) bool {
		paths = append(paths, e.RelPath)
		return true
	})
	return paths
}

func TestWalkerExtensionFilter(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{
		"/p/a.go":  "package a\n",
		"/p/b.txt": "0123456789",
	})

	w := NewWalker(fs, &Arguments{Extensions: []string{"go"}}, zap.NewNop())
	assert.Equal(t, []string{"a.go"}, collectPaths(w, "/p"))
	assert.Equal(t, 2, w.Discovered())
}

func TestWalkerDeterministicOrder(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{
		"/p/zeta.go":      "z",
		"/p/alpha.go":     "a",
		"/p/mid/one.go":   "1",
		"/p/mid/two.go":   "2",
		"/p/beta/nine.go": "9",
	})

	args := &Arguments{}
	first := collectPaths(NewWalker(fs, args, zap.NewNop()), "/p")
	second := collectPaths(NewWalker(fs, args, zap.NewNop()), "/p")

	require.Equal(t, first, second)
	assert.Equal(t, []string{"alpha.go", "beta/nine.go", "mid/one.go", "mid/two.go", "zeta.go"}, first)
}

func TestWalkerMaxDepth(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{
		"/p/root.go":         "r",
		"/p/src/lib.go":      "l",
		"/p/src/deep/dig.go": "d",
	})

	testCases := []struct {
		name  string
		depth *int
		want  []string
	}{
		{"depth zero keeps only root files", intPtr(0), []string{"root.go"}},
		{"depth one reaches src", intPtr(1), []string{"root.go", "src/lib.go"}},
		{"unbounded reaches everything", nil, []string{"root.go", "src/deep/dig.go", "src/lib.go"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := NewWalker(fs, &Arguments{MaxDepth: tc.depth}, zap.NewNop())
			assert.Equal(t, tc.want, collectPaths(w, "/p"))
		})
	}
}

func TestWalkerGitignorePruning(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{
		"/p/.gitignore":       "target/\n*.secret\n",
		"/p/main.go":          "m",
		"/p/note.secret":      "s",
		"/p/target/out.go":    "o",
		"/p/target/sub/x.go":  "x",
		"/p/src/inner.secret": "i",
		"/p/src/ok.go":        "k",
	})

	w := NewWalker(fs, &Arguments{SkipGitignore: true}, zap.NewNop())
	got := collectPaths(w, "/p")

	assert.Equal(t, []string{"main.go", "src/ok.go"}, got)
	for _, rel := range got {
		assert.NotContains(t, rel, "target/", "ignored directories must be pruned entirely")
	}
}

func TestWalkerGitignoreDisabled(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{
		"/p/.gitignore":    "*.go\n",
		"/p/main.go":       "m",
		"/p/target/out.go": "o",
	})

	w := NewWalker(fs, &Arguments{SkipGitignore: false, Extensions: []string{"go"}}, zap.NewNop())
	assert.Equal(t, []string{"main.go", "target/out.go"}, collectPaths(w, "/p"))
}

func TestWalkerNestedIgnoreScopedToSubtree(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{
		"/p/sub/.gitignore": "*.gen.go\n",
		"/p/sub/a.gen.go":   "g",
		"/p/sub/b.go":       "b",
		"/p/top.gen.go":     "t",
	})

	w := NewWalker(fs, &Arguments{SkipGitignore: true}, zap.NewNop())
	got := collectPaths(w, "/p")

	// sub's ignore file applies only inside sub.
	assert.Equal(t, []string{"sub/b.go", "top.gen.go"}, got)
}

func TestWalkerExcludedDirectoryPruned(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{
		"/p/keep/a.go": "a",
		"/p/skip/b.go": "b",
	})

	w := NewWalker(fs, &Arguments{Exclude: []string{"/p/skip"}}, zap.NewNop())
	assert.Equal(t, []string{"keep/a.go"}, collectPaths(w, "/p"))
}

func TestWalkerEarlyStop(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{
		"/p/a.go": "a",
		"/p/b.go": "b",
		"/p/c.go": "c",
	})

	var got []string
	w := NewWalker(fs, &Arguments{}, zap.NewNop())
	w.Walk("/p", func(e FileEntry) bool {
		got = append(got, e.RelPath)
		return len(got) < 2
	})

	assert.Equal(t, []string{"a.go", "b.go"}, got)
}

func TestWalkerSingleFileRoot(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{"/p/only.go": "package only\n"})

	w := NewWalker(fs, &Arguments{}, zap.NewNop())
	got := collectPaths(w, "/p/only.go")

	require.Len(t, got, 1)
	assert.Equal(t, "only.go", got[0])
	assert.Equal(t, 1, w.Discovered())
}

func TestWalkerSymlinkCycle(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink creation needs privileges on windows")
	}
	fs := afero.NewOsFs()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "a.go"), []byte("package sub\n"), 0o644))
	require.NoError(t, os.Symlink(root, filepath.Join(root, "sub", "loop")))

	w := NewWalker(fs, &Arguments{}, zap.NewNop())
	got := collectPaths(w, root)

	assert.Equal(t, []string{"sub/a.go"}, got)
	require.Len(t, w.Warnings(), 1)
	assert.Equal(t, filepath.Join(root, "sub", "loop"), w.Warnings()[0].Path)
	assert.Contains(t, w.Warnings()[0].Reason, "symlink cycle")
}

func TestWalkerExplicitExcludeBeatsIgnoreNegation(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{
		"/p/.gitignore": "*.log\n!keep.log\n",
		"/p/app.log":    "a",
		"/p/keep.log":   "k",
		"/p/main.go":    "m",
	})

	// The negation alone lets keep.log through.
	base := NewWalker(fs, &Arguments{SkipGitignore: true}, zap.NewNop())
	assert.Equal(t, []string{"keep.log", "main.go"}, collectPaths(base, "/p"))

	// Naming it in the exclude list wins over the negation.
	w := NewWalker(fs, &Arguments{SkipGitignore: true, Exclude: []string{"/p/keep.log"}}, zap.NewNop())
	assert.Equal(t, []string{"main.go"}, collectPaths(w, "/p"))
}

func TestWalkerHiddenFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{
		"/p/.env":        "SECRET=1",
		"/p/.git/config": "[core]",
		"/p/visible.go":  "v",
	})

	w := NewWalker(fs, &Arguments{}, zap.NewNop())
	assert.Equal(t, []string{"visible.go"}, collectPaths(w, "/p"))
	assert.Equal(t, 1, w.Discovered(), "hidden files are skipped before counting")

	shown := NewWalker(fs, &Arguments{ShowHidden: true}, zap.NewNop())
	assert.Equal(t, []string{".env", ".git/config", "visible.go"}, collectPaths(shown, "/p"))
}

func TestWalkerMissingRootIsWarning(t *testing.T) {
	fs := afero.NewMemMapFs()

	w := NewWalker(fs, &Arguments{}, zap.NewNop())
	got := collectPaths(w, "/does/not/exist")

	assert.Empty(t, got)
	require.Len(t, w.Warnings(), 1)
	assert.Equal(t, "/does/not/exist", w.Warnings()[0].Path)
}
