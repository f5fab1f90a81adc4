// Package tokens estimates LLM token counts for the info summary.
package tokens

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4o"

// Counter wraps a tiktoken encoding for a specific model.
type Counter struct {
	enc *tiktoken.Tiktoken
}

// NewCounter loads the encoding for model, falling back to DefaultModel when
// the model is unknown.
func NewCounter(model string) (*Counter, error) {
	if model == "" {
		model = DefaultModel
	}
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.EncodingForModel(DefaultModel)
		if err != nil {
			return nil, fmt.Errorf("failed to load encoding for %s: %w", DefaultModel, err)
		}
	}
	return &Counter{enc: enc}, nil
}

// Count returns the token count of text.
func (c *Counter) Count(text string) int {
	return len(c.enc.EncodeOrdinary(text))
}

// CountAll tokenizes every document with a worker pool and returns the total.
// workers <= 0 uses one worker per CPU.
func (c *Counter) CountAll(docs [][]byte, workers int) int64 {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(docs) {
		workers = len(docs)
	}
	if workers == 0 {
		return 0
	}

	jobs := make(chan []byte, len(docs))
	var total int64
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for doc := range jobs {
				atomic.AddInt64(&total, int64(c.Count(string(doc))))
			}
		}()
	}

	for _, doc := range docs {
		jobs <- doc
	}
	close(jobs)
	wg.Wait()

	return total
}
