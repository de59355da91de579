package llm

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/moodlet/moodlet-backend/internal/style"
)

type cacheEntry struct {
	expiry   time.Time
	analysis StyleAnalysis
}

// analysisCache keeps recent style analyses so an identical resubmission of
// the final step does not pay for a second model call.
type analysisCache struct {
	entries  map[string]cacheEntry
	stopCh   chan struct{}
	now      func() time.Time
	stopOnce sync.Once
	ttl      time.Duration
	mu       sync.RWMutex
}

func newAnalysisCache(ttl time.Duration) *analysisCache {
	if ttl == 0 {
		ttl = 10 * time.Minute
	}

	cache := &analysisCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}

	go cache.cleanup()

	return cache
}

// analysisKey builds a stable key from the final style and the text answers.
func analysisKey(finalStyle style.Code, textAnswers map[string]string) string {
	keys := make([]string, 0, len(textAnswers))
	for k := range textAnswers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(string(finalStyle))
	for _, k := range keys {
		b.WriteByte(0)
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(textAnswers[k])
	}
	return b.String()
}

func (c *analysisCache) get(key string) (StyleAnalysis, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[key]
	if !exists || c.now().After(entry.expiry) {
		return StyleAnalysis{}, false
	}

	return cloneAnalysis(entry.analysis), true
}

func (c *analysisCache) set(key string, analysis StyleAnalysis) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		analysis: cloneAnalysis(analysis),
		expiry:   c.now().Add(c.ttl),
	}
}

func (c *analysisCache) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.purge()
		}
	}
}

func (c *analysisCache) purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiry) {
			delete(c.entries, key)
		}
	}
}

func (c *analysisCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close stops the cleanup goroutine.
func (c *analysisCache) Close() {
	c.stopOnce.Do(func() { close(c.stopCh) })
}

func cloneAnalysis(a StyleAnalysis) StyleAnalysis {
	a.BestMatchStyles = append([]style.Code(nil), a.BestMatchStyles...)
	if a.BestMatchStyles == nil {
		a.BestMatchStyles = []style.Code{}
	}
	return a
}
