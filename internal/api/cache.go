package api

import (
	"os"
	"strconv"
	"sync"

	"github.com/recipescope/recipescope/pkg/report"
)

// ReportCache is a thread-safe LRU cache for decoded reports, keyed by
// report ID.
type ReportCache struct {
	mu      sync.Mutex
	maxSize int
	entries map[string]*cacheEntry
	order   []string // oldest first
}

type cacheEntry struct {
	projectID string
	rep       *report.Report
}

// NewReportCache creates a cache with the given maximum number of entries.
// If maxSize <= 0, it defaults to 20.
func NewReportCache(maxSize int) *ReportCache {
	if maxSize <= 0 {
		maxSize = 20
	}
	return &ReportCache{
		maxSize: maxSize,
		entries: make(map[string]*cacheEntry),
	}
}

// NewReportCacheFromEnv creates a cache with size from REPORT_CACHE_SIZE env var.
func NewReportCacheFromEnv() *ReportCache {
	size := 20
	if v := os.Getenv("REPORT_CACHE_SIZE"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			size = parsed
		}
	}
	return NewReportCache(size)
}

// Get returns a cached report and the project it belongs to.
func (c *ReportCache) Get(reportID string) (*report.Report, string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[reportID]
	if !ok {
		reportCacheLookups.WithLabelValues("miss").Inc()
		return nil, "", false
	}
	reportCacheLookups.WithLabelValues("hit").Inc()

	// Move to end (most recently used)
	c.moveToEnd(reportID)
	return entry.rep, entry.projectID, true
}

// Put adds a report to the cache, evicting the oldest if full.
func (c *ReportCache) Put(projectID string, rep *report.Report) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[rep.ID]; ok {
		c.entries[rep.ID] = &cacheEntry{projectID: projectID, rep: rep}
		c.moveToEnd(rep.ID)
		return
	}

	// Evict oldest if at capacity
	for len(c.entries) >= c.maxSize && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	c.entries[rep.ID] = &cacheEntry{projectID: projectID, rep: rep}
	c.order = append(c.order, rep.ID)
}

// Len returns the number of cached reports.
func (c *ReportCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *ReportCache) moveToEnd(id string) {
	for i, k := range c.order {
		if k == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			c.order = append(c.order, id)
			return
		}
	}
}
