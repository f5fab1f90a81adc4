package onefile

import "bytes"

const binarySniffLen = 512

// binaryExtensions lists extensions that are never worth reading as text.
// Keys are lower-cased and dotless, matching FileEntry.Ext.
var binaryExtensions = map[string]bool{
	"7z": true, "a": true, "bin": true, "bmp": true, "bz2": true,
	"class": true, "dll": true, "dylib": true, "exe": true, "gif": true,
	"gz": true, "ico": true, "jar": true, "jpeg": true, "jpg": true,
	"mp3": true, "mp4": true, "o": true, "ogg": true, "otf": true,
	"pdf": true, "png": true, "so": true, "tar": true, "tgz": true,
	"ttf": true, "wasm": true, "webp": true, "woff": true, "woff2": true,
	"xz": true, "zip": true, "zst": true,
}

// isBinaryData sniffs the first bytes of content for NUL bytes or a high
// ratio of non-printable characters. Empty content is treated as text.
func isBinaryData(content []byte) bool {
	sample := content
	if len(sample) > binarySniffLen {
		sample = sample[:binarySniffLen]
	}
	if len(sample) == 0 {
		return false
	}
	if bytes.IndexByte(sample, 0) >= 0 {
		return true
	}

	nonPrintable := 0
	for _, b := range sample {
		if !isPrintable(b) {
			nonPrintable++
		}
	}
	return float64(nonPrintable)/float64(len(sample)) > 0.3
}

func isPrintable(b byte) bool {
	return (b >= 32 && b < 127) || b == '\n' || b == '\r' || b == '\t' || b >= 128
}
