package protocol

import (
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIssuerPrefixAndShape(t *testing.T) {
	issuer := NewIssuer()

	pattern := regexp.MustCompile(`^MAT\d{13,}$`)
	p := issuer.New(KindEnrollment)
	require.Regexp(t, pattern, p)

	require.True(t, strings.HasPrefix(issuer.New(KindTreePruning), "POD"))
	require.True(t, strings.HasPrefix(issuer.New(KindStreetLighting), "ILU"))
	require.True(t, strings.HasPrefix(issuer.New(KindPublicWorks), "OBR"))
	require.True(t, strings.HasPrefix(issuer.New(KindStreetCleaning), "LIM"))
}

func TestIssuerRapidIssuanceIsUnique(t *testing.T) {
	issuer := NewIssuer()

	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		p := issuer.New(KindEnrollment)
		_, dup := seen[p]
		require.False(t, dup, "duplicate protocol %s", p)
		seen[p] = struct{}{}
	}
}

func TestIssuerFrozenClockStaysMonotonic(t *testing.T) {
	frozen := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	issuer := &Issuer{now: func() time.Time { return frozen }}

	first := issuer.New(KindEnrollment)
	second := issuer.New(KindEnrollment)
	require.NotEqual(t, first, second)
	require.Less(t, first, second)
}

func TestIssuerConcurrentIssuance(t *testing.T) {
	issuer := NewIssuer()

	const workers = 8
	const perWorker = 500

	var mu sync.Mutex
	seen := make(map[string]struct{}, workers*perWorker)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]string, 0, perWorker)
			for i := 0; i < perWorker; i++ {
				local = append(local, issuer.New(KindEnrollment))
			}
			mu.Lock()
			for _, p := range local {
				seen[p] = struct{}{}
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Len(t, seen, workers*perWorker)
}
