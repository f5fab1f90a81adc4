// Package manifest reads project metadata and local dependency locations
// from a go.mod file and, when present, a sibling go.work file.
package manifest

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/mod/modfile"
)

const workFileName = "go.work"

var readmeNames = []string{"README.md", "README", "Readme.md"}

// Manifest is a parsed go.mod plus the directory it lives in.
type Manifest struct {
	Path string // Path to the go.mod file.
	Dir  string // Directory containing the manifest; the project root.

	Module    string // Declared module path.
	GoVersion string // Declared go directive version, if any.
	Toolchain string // Declared toolchain name, if any.

	fs   afero.Fs
	file *modfile.File
}

// Load parses the go.mod file at path.
func Load(fs afero.Fs, path string) (*Manifest, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}

	data, err := afero.ReadFile(fs, abs)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", abs, err)
	}

	file, err := modfile.Parse(abs, data, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", abs, err)
	}

	m := &Manifest{
		Path: abs,
		Dir:  filepath.Dir(abs),
		fs:   fs,
		file: file,
	}
	if file.Module != nil {
		m.Module = file.Module.Mod.Path
	}
	if file.Go != nil {
		m.GoVersion = file.Go.Version
	}
	if file.Toolchain != nil {
		m.Toolchain = file.Toolchain.Name
	}
	return m, nil
}

// DependencyRoots returns the directories of replace directives that point
// at the local filesystem. These are the only dependencies whose sources are
// guaranteed to be present without network access.
func (m *Manifest) DependencyRoots() []string {
	var roots []string
	for _, r := range m.file.Replace {
		if r.New.Version != "" || !isLocalPath(r.New.Path) {
			continue
		}
		p := r.New.Path
		if !filepath.IsAbs(p) {
			p = filepath.Join(m.Dir, p)
		}
		roots = append(roots, p)
	}
	return roots
}

// WorkspaceMembers returns the module directories listed by a go.work file
// next to the manifest, excluding the project root itself. No go.work file
// means no members.
func (m *Manifest) WorkspaceMembers() ([]string, error) {
	workPath := filepath.Join(m.Dir, workFileName)
	data, err := afero.ReadFile(m.fs, workPath)
	if err != nil {
		return nil, nil
	}

	work, err := modfile.ParseWork(workPath, data, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", workPath, err)
	}

	var members []string
	for _, u := range work.Use {
		p := u.Path
		if !filepath.IsAbs(p) {
			p = filepath.Join(m.Dir, p)
		}
		if filepath.Clean(p) == filepath.Clean(m.Dir) {
			continue
		}
		members = append(members, p)
	}
	return members, nil
}

// MetadataBlock renders a comment block describing the project, suitable for
// the top of the combined output. The project README, if one exists, is
// appended line by line.
func (m *Manifest) MetadataBlock() string {
	var b strings.Builder

	if m.GoVersion != "" {
		fmt.Fprintf(&b, "// Project: %s (go %s)\n", m.Module, m.GoVersion)
	} else {
		fmt.Fprintf(&b, "// Project: %s\n", m.Module)
	}
	if m.Toolchain != "" {
		fmt.Fprintf(&b, "// Toolchain: %s\n", m.Toolchain)
	}
	b.WriteString("\n")

	if readme := m.readme(); readme != "" {
		b.WriteString("// README\n// ======\n")
		for _, line := range strings.Split(strings.TrimRight(readme, "\n"), "\n") {
			b.WriteString("// " + line + "\n")
		}
		b.WriteString("// ======\n\n")
	}

	return b.String()
}

func (m *Manifest) readme() string {
	for _, name := range readmeNames {
		data, err := afero.ReadFile(m.fs, filepath.Join(m.Dir, name))
		if err == nil {
			return string(data)
		}
	}
	return ""
}

func isLocalPath(p string) bool {
	return strings.HasPrefix(p, "./") || strings.HasPrefix(p, "../") ||
		p == "." || p == ".." || filepath.IsAbs(p)
}
