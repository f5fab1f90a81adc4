package onefile

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleFiles() []FileContent {
	return []FileContent{
		{Entry: FileEntry{RelPath: "a.go"}, Content: []byte("package a\n")},
		{Entry: FileEntry{RelPath: "b/b.go"}, Content: []byte("package b\nvar X = 1\n")},
		{Entry: FileEntry{RelPath: "c.go"}, Err: errors.New("boom")},
	}
}

func TestWriteOutputPlain(t *testing.T) {
	var buf bytes.Buffer
	args := &Arguments{Separator: "//"}
	require.NoError(t, WriteOutput(&buf, args, sampleFiles(), nil, ""))

	want := "// a.go\n" +
		"package a\n" +
		"\n" +
		"// b/b.go\n" +
		"package b\n" +
		"var X = 1\n" +
		"\n" +
		"// c.go\n" +
		"// [read error: boom]\n" +
		"\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteOutputTableOfContents(t *testing.T) {
	var buf bytes.Buffer
	args := &Arguments{Separator: "//", TableOfContents: true}
	require.NoError(t, WriteOutput(&buf, args, sampleFiles(), nil, ""))

	lines := strings.Split(buf.String(), "\n")
	assert.Equal(t, "// Table of Contents", lines[0])
	assert.Equal(t, "// Ln7 : a.go", lines[2])
	assert.Equal(t, "// Ln10 : b/b.go", lines[3])
	assert.Equal(t, "// Ln14 : c.go", lines[4])

	// The advertised line numbers are 1-based positions of the header lines
	// in the final stream.
	assert.Equal(t, "// a.go", lines[6])
	assert.Equal(t, "// b/b.go", lines[9])
	assert.Equal(t, "// c.go", lines[13])
}

func TestWriteOutputHeadAndMetadataShiftTable(t *testing.T) {
	var buf bytes.Buffer
	args := &Arguments{Separator: "//", TableOfContents: true}
	head := []byte("H1\nH2\n")
	metadata := "// Project: demo (go 1.23)\n\n"
	files := sampleFiles()[:1]

	require.NoError(t, WriteOutput(&buf, args, files, head, metadata))

	lines := strings.Split(buf.String(), "\n")
	assert.Equal(t, "H1", lines[0])
	assert.Equal(t, "// Project: demo (go 1.23)", lines[2])
	assert.Equal(t, "// Ln9 : a.go", lines[6])
	assert.Equal(t, "// a.go", lines[8])
}

func TestWriteOutputTableAfterUnterminatedContent(t *testing.T) {
	var buf bytes.Buffer
	args := &Arguments{Separator: "//", TableOfContents: true}
	files := []FileContent{
		{Entry: FileEntry{RelPath: "x.go"}, Content: []byte("no newline")},
		{Entry: FileEntry{RelPath: "next.go"}, Content: []byte("package next\n")},
	}

	require.NoError(t, WriteOutput(&buf, args, files, nil, ""))

	lines := strings.Split(buf.String(), "\n")
	assert.Equal(t, "// Ln6 : x.go", lines[2])
	assert.Equal(t, "// Ln8 : next.go", lines[3])
	assert.Equal(t, "// x.go", lines[5])
	assert.Equal(t, "// next.go", lines[7])
}

func TestWriteOutputCustomSeparator(t *testing.T) {
	var buf bytes.Buffer
	args := &Arguments{Separator: "#"}
	files := []FileContent{{Entry: FileEntry{RelPath: "x.py"}, Content: []byte("pass\n")}}

	require.NoError(t, WriteOutput(&buf, args, files, nil, ""))
	assert.Equal(t, "# x.py\npass\n\n", buf.String())
}

func TestWriteOutputContentWithoutTrailingNewline(t *testing.T) {
	var buf bytes.Buffer
	args := &Arguments{Separator: "//"}
	files := []FileContent{{Entry: FileEntry{RelPath: "x.go"}, Content: []byte("no newline")}}

	require.NoError(t, WriteOutput(&buf, args, files, nil, ""))
	assert.Equal(t, "// x.go\nno newline\n", buf.String())
}

func TestLineCount(t *testing.T) {
	assert.Equal(t, 0, lineCount(nil))
	assert.Equal(t, 1, lineCount([]byte("one")))
	assert.Equal(t, 1, lineCount([]byte("one\n")))
	assert.Equal(t, 2, lineCount([]byte("one\ntwo")))
	assert.Equal(t, 3, lineCount([]byte("one\n\ntwo\n")))
}
