package onefile

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
)

// WriteOutput emits the final combined stream: optional head-file bytes,
// optional project metadata, optional table of contents, then every file
// prefixed by a separator header line. Files that failed to load get a
// one-line placeholder instead of content.
func WriteOutput(w io.Writer, args *Arguments, files []FileContent, head []byte, metadata string) error {
	out := bufio.NewWriter(w)

	if len(head) > 0 {
		if _, err := out.Write(head); err != nil {
			return fmt.Errorf("failed to write head: %w", err)
		}
	}
	if metadata != "" {
		if _, err := out.WriteString(metadata); err != nil {
			return fmt.Errorf("failed to write metadata: %w", err)
		}
	}
	if args.TableOfContents {
		prelude := lineCount(head) + lineCount([]byte(metadata))
		if _, err := out.WriteString(tableOfContents(files, prelude)); err != nil {
			return fmt.Errorf("failed to write table of contents: %w", err)
		}
	}

	for _, fc := range files {
		if _, err := fmt.Fprintf(out, "%s %s\n", args.Separator, fc.Entry.RelPath); err != nil {
			return fmt.Errorf("failed to write header for %s: %w", fc.Entry.RelPath, err)
		}
		if fc.Err != nil {
			if _, err := fmt.Fprintf(out, "// [read error: %v]\n\n", fc.Err); err != nil {
				return fmt.Errorf("failed to write placeholder for %s: %w", fc.Entry.RelPath, err)
			}
			continue
		}
		if _, err := out.Write(fc.Content); err != nil {
			return fmt.Errorf("failed to write content of %s: %w", fc.Entry.RelPath, err)
		}
		if err := out.WriteByte('\n'); err != nil {
			return fmt.Errorf("failed to write separator newline: %w", err)
		}
	}

	return out.Flush()
}

// tableOfContents renders one line per file with the 1-based line number of
// its separator header in the final stream. prelude is the number of lines
// written before the table itself.
func tableOfContents(files []FileContent, prelude int) string {
	var b bytes.Buffer
	b.WriteString("// Table of Contents\n// ==================\n")

	// The table occupies len(files)+3 lines; the first header follows it.
	line := prelude + len(files) + 3 + 1
	for _, fc := range files {
		fmt.Fprintf(&b, "// Ln%d : %s\n", line, fc.Entry.RelPath)
		if fc.Err != nil {
			line += 3 // header + placeholder + blank
			continue
		}
		// Header plus content plus the blank line after it. When the content
		// has no trailing newline the appended one terminates the last
		// fragment instead of opening a blank line.
		step := lineCount(fc.Content) + 2
		if n := len(fc.Content); n > 0 && fc.Content[n-1] != '\n' {
			step--
		}
		line += step
	}
	b.WriteString("// ==================\n")
	return b.String()
}

// lineCount counts lines the way an editor would: a trailing fragment
// without a newline still counts as a line.
func lineCount(b []byte) int {
	if len(b) == 0 {
		return 0
	}
	n := bytes.Count(b, []byte{'\n'})
	if b[len(b)-1] != '\n' {
		n++
	}
	return n
}
