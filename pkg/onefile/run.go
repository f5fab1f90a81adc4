package onefile

import (
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Run validates the configuration and executes the discovery, assembly and
// loading stages against the real filesystem. Only a *ConfigError aborts the
// run; every later problem is recorded in the result instead.
func Run(args *Arguments, logger *zap.Logger) (*Result, error) {
	return RunWithFS(afero.NewOsFs(), args, logger)
}

// RunWithFS is Run with an injectable filesystem, used by tests.
func RunWithFS(fs afero.Fs, args *Arguments, logger *zap.Logger) (*Result, error) {
	start := time.Now()

	if err := args.Validate(); err != nil {
		return nil, err
	}

	root, err := projectRoot(fs, args.ManifestPath)
	if err != nil {
		return nil, err
	}
	logger.Info("starting run", zap.String("root", root))

	walker := NewWalker(fs, args, logger)
	assembler := NewAssembler(fs, args.MaxFiles)

	// Discovery order: explicit includes first, then the project tree,
	// then dependency roots. The assembler stops all remaining roots once
	// the file cap is reached.
	roots := make([]string, 0, len(args.Include)+1+len(args.DependencyRoots))
	roots = append(roots, args.Include...)
	roots = append(roots, root)
	roots = append(roots, args.DependencyRoots...)

	for _, r := range roots {
		if assembler.Full() {
			break
		}
		walker.Walk(r, assembler.Add)
	}

	entries := assembler.Entries()
	contents := LoadContents(fs, entries, args.Workers, args.IncludeBinary, logger)

	summary := Summary{
		Discovered: walker.Discovered(),
		Accepted:   len(entries),
		Elapsed:    time.Since(start),
	}
	for _, fc := range contents {
		if fc.Err != nil {
			summary.Failed++
			continue
		}
		summary.Loaded++
		summary.TotalBytes += int64(len(fc.Content))
		summary.TotalLines += lineCount(fc.Content)
	}

	logger.Info("run complete",
		zap.Int("discovered", summary.Discovered),
		zap.Int("accepted", summary.Accepted),
		zap.Int("loaded", summary.Loaded),
		zap.Int("failed", summary.Failed),
		zap.Duration("elapsed", summary.Elapsed))

	return &Result{
		Files:    contents,
		Summary:  summary,
		Warnings: walker.Warnings(),
	}, nil
}

// projectRoot resolves the manifest's parent directory and verifies it is a
// readable directory. Failures here are configuration errors.
func projectRoot(fs afero.Fs, manifestPath string) (string, error) {
	abs, err := filepath.Abs(manifestPath)
	if err != nil {
		return "", &ConfigError{Field: "manifest-path", Reason: err.Error()}
	}
	root := filepath.Dir(abs)
	info, err := fs.Stat(root)
	if err != nil {
		return "", &ConfigError{Field: "manifest-path", Reason: "project root is not readable: " + err.Error()}
	}
	if !info.IsDir() {
		return "", &ConfigError{Field: "manifest-path", Reason: "project root is not a directory: " + root}
	}
	return root, nil
}
