package contradiction

import (
	"math"
	"slices"

	"github.com/jwebster45206/detective-engine/pkg/casefile"
)

// IsDiscovered reports whether both sides of the contradiction have been collected.
func IsDiscovered(c casefile.Contradiction, collected []string) bool {
	return slices.Contains(collected, c.EvidenceID1) && slices.Contains(collected, c.EvidenceID2)
}

// FindNewlyDiscovered returns contradictions that are discovered by the
// collected evidence and not already in alreadyDiscovered, in input order.
func FindNewlyDiscovered(all []casefile.Contradiction, collected, alreadyDiscovered []string) []casefile.Contradiction {
	var found []casefile.Contradiction
	for _, c := range all {
		if slices.Contains(alreadyDiscovered, c.ID) {
			continue
		}
		if slices.ContainsFunc(found, func(f casefile.Contradiction) bool { return f.ID == c.ID }) {
			continue
		}
		if IsDiscovered(c, collected) {
			found = append(found, c)
		}
	}
	return found
}

// AllDiscovered reports whether every contradiction has been discovered.
// A case with no contradictions counts as fully discovered.
func AllDiscovered(all []casefile.Contradiction, discovered []string) bool {
	for _, c := range all {
		if !slices.Contains(discovered, c.ID) {
			return false
		}
	}
	return true
}

// DiscoveryRate is the percentage of contradictions discovered, 100 when there are none.
func DiscoveryRate(all []casefile.Contradiction, discovered []string) int {
	return rate(all, discovered)
}

// ResolutionRate is the percentage of contradictions resolved, 100 when there are none.
func ResolutionRate(all []casefile.Contradiction, resolved []string) int {
	return rate(all, resolved)
}

func rate(all []casefile.Contradiction, ids []string) int {
	if len(all) == 0 {
		return 100
	}
	n := 0
	for _, c := range all {
		if slices.Contains(ids, c.ID) {
			n++
		}
	}
	return int(math.Round(float64(n) / float64(len(all)) * 100))
}
