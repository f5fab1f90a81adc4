package onefile

import "time"

// FileEntry identifies one candidate file discovered by the walker. Entries
// are immutable once created.
type FileEntry struct {
	Path    string    // Absolute path as walked.
	RelPath string    // Slash-separated path relative to the traversal root.
	Size    int64     // Size in bytes at discovery time.
	ModTime time.Time // Last modification time at discovery time.
	Ext     string    // Lower-cased extension without the dot; empty if none.
}

// FileContent pairs an entry with its loaded bytes or the read failure that
// prevented loading. Exactly one of Content and Err is meaningful.
type FileContent struct {
	Entry   FileEntry
	Content []byte
	Err     error
}

// Warning records a non-fatal traversal problem. The affected subtree is
// skipped and the run continues.
type Warning struct {
	Path   string
	Reason string
}

// Summary aggregates per-run counters for the info reporter.
type Summary struct {
	Discovered int           // Files visited by the walker before predicates.
	Accepted   int           // Files that passed predicates, dedup and the cap.
	Loaded     int           // Files whose content was read successfully.
	Failed     int           // Files with a recorded read failure.
	TotalBytes int64         // Sum of loaded content sizes.
	TotalLines int           // Sum of loaded content line counts.
	Elapsed    time.Duration // Wall time of the whole run.
}

// Result is the output of a run: loaded contents in discovery order plus the
// run summary and accumulated traversal warnings.
type Result struct {
	Files    []FileContent
	Summary  Summary
	Warnings []Warning
}
