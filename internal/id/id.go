// Package id issues the identifiers of ledger records.
//
// Ids are ULIDs stamped with the time of the operation that created the
// record rather than the wall clock, so a replayed session produces ids that
// sort in scripted order.
package id

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Generator hands out ULIDs. Ids issued for the same millisecond keep
// increasing; ids for an earlier time sort before those already issued.
type Generator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewGenerator returns a generator whose entropy is seeded with seed, or from
// crypto/rand when seed is zero. A fixed seed makes the id sequence
// reproducible for a fixed sequence of times.
func NewGenerator(seed int64) *Generator {
	if seed == 0 {
		_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{entropy: ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)}
}

// At returns an id carrying t. Times before the Unix epoch are stamped as the
// epoch.
func (g *Generator) At(t time.Time) string {
	ms := uint64(0)
	if t.After(time.Unix(0, 0)) {
		ms = ulid.Timestamp(t)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	u, err := ulid.New(ms, g.entropy)
	if err != nil {
		// Only a millisecond holding 2^80 ids exhausts the entropy.
		panic(fmt.Sprintf("id: %v", err))
	}
	return u.String()
}

var std = NewGenerator(0)

// New returns an id stamped with the current time.
func New() string { return std.At(time.Now()) }

// NewAt returns an id stamped with t.
func NewAt(t time.Time) string { return std.At(t) }

// Valid reports whether s is a well-formed id.
func Valid(s string) bool {
	_, err := ulid.ParseStrict(s)
	return err == nil
}

// Time returns the millisecond timestamp carried by an id.
func Time(s string) (time.Time, error) {
	u, err := ulid.ParseStrict(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("id %q: %w", s, err)
	}
	return ulid.Time(u.Time()).UTC(), nil
}
