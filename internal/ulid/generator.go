package ulid

import (
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Cell identifiers are ULIDs: stable, sortable by creation time and never
// reused. The generator is swappable so tests can pin identities.

var (
	entropy     io.Reader
	entropyOnce sync.Once
	generator   = DefaultGenerator
)

func defaultEntropy() io.Reader {
	entropyOnce.Do(func() {
		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		entropy = &ulid.LockedMonotonicReader{
			MonotonicReader: ulid.Monotonic(rng, 0),
		}
	})
	return entropy
}

// GenerateID returns a new cell identifier.
func GenerateID() string {
	return generator()
}

// ValidID reports whether id is a well-formed identifier.
func ValidID(id string) bool {
	parsed, err := ulid.Parse(id)
	return err == nil && parsed.String() == id
}

func DefaultGenerator() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), defaultEntropy()).String()
}

func ResetGenerator() {
	generator = DefaultGenerator
}

// MockGenerator pins every generated identifier to mockValue. Tests that
// need unique ids should keep the default generator instead.
func MockGenerator(mockValue string) {
	generator = func() string {
		return mockValue
	}
}
