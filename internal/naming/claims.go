package naming

import (
	"path/filepath"
	"sync"
)

// Claims records which source owns each result directory within one run.
// Two sources with the same file name in different folders map to the same
// result directory when an OutputDirectory is configured; only the first
// one processed may write there. All methods are goroutine-safe.
type Claims struct {
	mu     sync.Mutex
	owners map[string]string // cleaned result dir → source path
}

// NewClaims creates an empty claim registry.
func NewClaims() *Claims {
	return &Claims{owners: make(map[string]string)}
}

// Claim registers source as the owner of resultDir. It returns the current
// owner and true when source may use the directory (unclaimed, or already
// owned by source), or the other owner and false.
func (c *Claims) Claim(source, resultDir string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := filepath.Clean(resultDir)
	owner, exists := c.owners[key]
	if !exists || owner == source {
		c.owners[key] = source
		return source, true
	}
	return owner, false
}
