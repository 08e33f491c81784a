package id

import (
	"sync"

	"github.com/oklog/ulid/v2"
)

var mu sync.Mutex

// New returns a ULID string. ULIDs sort lexicographically by creation time,
// which keeps position and decision rows naturally ordered in SQLite.
func New() string {
	mu.Lock()
	defer mu.Unlock()
	return ulid.Make().String()
}
