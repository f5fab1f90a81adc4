package onefile

import (
	"fmt"
	"time"
)

// Arguments holds the resolved configuration for a flattening run. Optional
// bounds are pointers so that "unset" is distinguishable from a zero value.
type Arguments struct {
	ManifestPath string // Path to the go.mod file; the project root is its parent directory.

	Include    []string // Extra file or directory paths walked ahead of the project root.
	Exclude    []string // Paths removed from the output; excluded directories are not descended into.
	Extensions []string // Allowed extensions without the dot (case-insensitive); empty allows all.

	// DependencyRoots lists local dependency source directories, resolved
	// externally from the manifest. Each is walked after the project root
	// with the same predicates and an independent depth budget.
	DependencyRoots []string

	MaxDepth      *int // Maximum traversal depth per root; a root-level file is at depth 0. Nil means unbounded.
	ShowHidden    bool // When false, dotfiles and dot-directories are skipped.
	SkipGitignore bool // When true, paths matched by .gitignore files are skipped.
	MaxFiles      *int // Cap on the number of accepted files; traversal stops once reached.
	IncludeBinary bool // When false, files with binary content are recorded as read failures.
	IncludeSum    bool // When false, go.sum is excluded from the output.

	LargerThan  *int64     // Inclusive lower bound on file size in bytes.
	SmallerThan *int64     // Inclusive upper bound on file size in bytes.
	NewerThan   *time.Time // Inclusive lower bound on modification time.
	OlderThan   *time.Time // Inclusive upper bound on modification time.

	Workers int // Worker goroutines for content loading; 0 picks runtime.NumCPU.

	// Output options, consumed by WriteOutput rather than the pipeline itself.
	Output          string // Destination path for the combined output file.
	Stdout          bool   // Write to stdout instead of Output.
	Head            string // Optional file whose contents are prepended to the output.
	Separator       string // Prefix of the per-file header line.
	TableOfContents bool   // Emit a table of contents with line offsets.
	IncludeMetadata bool   // Emit a project metadata block from the manifest.
}

// ConfigError reports an invalid configuration. It is the only error class
// that aborts a run; everything past validation degrades per-item.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// Validate checks bound ordering and cap positivity before any traversal
// starts. It returns a *ConfigError describing the first violation found.
func (a *Arguments) Validate() error {
	if a.LargerThan != nil && a.SmallerThan != nil && *a.LargerThan > *a.SmallerThan {
		return &ConfigError{
			Field:  "larger-than/smaller-than",
			Reason: fmt.Sprintf("lower bound %d exceeds upper bound %d", *a.LargerThan, *a.SmallerThan),
		}
	}
	if a.NewerThan != nil && a.OlderThan != nil && a.NewerThan.After(*a.OlderThan) {
		return &ConfigError{
			Field:  "newer-than/older-than",
			Reason: fmt.Sprintf("lower bound %s exceeds upper bound %s", a.NewerThan, a.OlderThan),
		}
	}
	if a.MaxFiles != nil && *a.MaxFiles <= 0 {
		return &ConfigError{
			Field:  "max-files",
			Reason: fmt.Sprintf("must be positive, got %d", *a.MaxFiles),
		}
	}
	if a.MaxDepth != nil && *a.MaxDepth < 0 {
		return &ConfigError{
			Field:  "depth",
			Reason: fmt.Sprintf("must be non-negative, got %d", *a.MaxDepth),
		}
	}
	if a.ManifestPath == "" {
		return &ConfigError{Field: "manifest-path", Reason: "must not be empty"}
	}
	return nil
}
