package topicgraph

import (
	"slices"
	"sync"

	"github.com/Aman-CERP/navindex/pkg/navigator"
)

// Collector gathers records from concurrent producers. Add is safe for
// concurrent use; Records is the join point and should be called once all
// producers are done.
type Collector struct {
	mu     sync.Mutex
	byFile map[string][]navigator.TopicRecord
	total  int
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{byFile: make(map[string][]navigator.TopicRecord)}
}

// Add records the records decoded from file. A second Add for the same file
// appends.
func (c *Collector) Add(file string, recs ...navigator.TopicRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byFile[file] = append(c.byFile[file], recs...)
	c.total += len(recs)
}

// Records returns every collected record ordered by file name, then by
// position within the file, independent of producer scheduling.
func (c *Collector) Records() []navigator.TopicRecord {
	c.mu.Lock()
	defer c.mu.Unlock()

	files := make([]string, 0, len(c.byFile))
	for f := range c.byFile {
		files = append(files, f)
	}
	slices.Sort(files)

	out := make([]navigator.TopicRecord, 0, c.total)
	for _, f := range files {
		out = append(out, c.byFile[f]...)
	}
	return out
}

// Len returns the number of records collected so far.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}
