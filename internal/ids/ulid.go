// Package ids generates the external entity identifiers used throughout
// the catalog: lowercased, lexicographically sortable, time-ordered
// 26-character ULIDs.
package ids

import (
	"crypto/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	mu      sync.Mutex
	entropy = ulid.Monotonic(rand.Reader, 0)
)

// New returns a fresh, lowercased ULID string. Monotonic entropy guarantees
// IDs minted within the same millisecond still sort in generation order.
func New() string {
	mu.Lock()
	defer mu.Unlock()
	id := ulid.MustNew(ulid.Timestamp(time.Now()), entropy)
	return strings.ToLower(id.String())
}
