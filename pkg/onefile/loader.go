package onefile

import (
	"errors"
	"runtime"
	"sync"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// ErrBinaryContent marks a file whose content sniffed as binary while text
// mode was in effect.
var ErrBinaryContent = errors.New("binary content")

// LoadContents reads the bytes of every accepted entry using a worker pool.
// Results keep discovery order regardless of worker scheduling: each worker
// writes into its entry's slot. A failed read records the error in the slot
// and never cancels sibling reads.
func LoadContents(fs afero.Fs, entries []FileEntry, workers int, includeBinary bool, logger *zap.Logger) []FileContent {
	contents := make([]FileContent, len(entries))
	if len(entries) == 0 {
		return contents
	}

	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(entries) {
		workers = len(entries)
	}
	logger.Debug("loading file contents", zap.Int("files", len(entries)), zap.Int("workers", workers))

	jobs := make(chan int, len(entries))
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				contents[i] = loadOne(fs, entries[i], includeBinary, logger)
			}
		}()
	}

	for i := range entries {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return contents
}

func loadOne(fs afero.Fs, entry FileEntry, includeBinary bool, logger *zap.Logger) FileContent {
	data, err := afero.ReadFile(fs, entry.Path)
	if err != nil {
		logger.Warn("failed to read file", zap.String("path", entry.Path), zap.Error(err))
		return FileContent{Entry: entry, Err: err}
	}
	if !includeBinary && isBinaryData(data) {
		logger.Warn("skipping binary content", zap.String("path", entry.Path))
		return FileContent{Entry: entry, Err: ErrBinaryContent}
	}
	return FileContent{Entry: entry, Content: data}
}
