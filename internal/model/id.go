package model

import (
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"
)

// idCounter disambiguates ids generated within the same millisecond.
var idCounter atomic.Uint32

// NewID returns a fresh shape id: unix milliseconds plus a random hex suffix.
// Ids are collision-tolerant within a single document; they carry no global
// uniqueness guarantee, so importers merging diagrams must remap on collision.
func NewID() string {
	n := idCounter.Add(1)
	return fmt.Sprintf("%d-%04x%02x", time.Now().UnixMilli(), rand.Intn(0x10000), n&0xff)
}

// EnsureID returns id unchanged when non-empty, otherwise a fresh NewID.
// Parsers use this so a document with missing ids still loads.
func EnsureID(id string) string {
	if id != "" {
		return id
	}
	return NewID()
}
