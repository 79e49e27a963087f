package protocol

import (
	"strconv"
	"sync"
	"time"
)

// Kind is the three-letter prefix identifying what a protocol tracks.
type Kind string

// Known protocol kinds.
const (
	KindEnrollment     Kind = "MAT"
	KindTreePruning    Kind = "POD"
	KindStreetLighting Kind = "ILU"
	KindPublicWorks    Kind = "OBR"
	KindStreetCleaning Kind = "LIM"
)

// Issuer hands out unique, human-readable tracking protocols. The suffix is a
// millisecond timestamp kept strictly monotonic per process, so two issuances
// within the same millisecond never collide. The database keeps a unique index
// on the protocol column as a cross-process backstop.
type Issuer struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewIssuer constructs an Issuer backed by the system clock.
func NewIssuer() *Issuer {
	return &Issuer{now: time.Now}
}

// New returns a fresh protocol for the given kind, e.g. MAT1717171717171.
func (i *Issuer) New(kind Kind) string {
	i.mu.Lock()
	stamp := i.now().UnixMilli()
	if stamp <= i.last {
		stamp = i.last + 1
	}
	i.last = stamp
	i.mu.Unlock()

	return string(kind) + strconv.FormatInt(stamp, 10)
}
