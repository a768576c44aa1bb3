package occupancy

import (
	"sort"

	"github.com/jwalitptl/triage-gateway/internal/model"
)

// maxAlternatives bounds how many fallback departments are offered.
const maxAlternatives = 3

// RankAlternatives ranks candidate departments other than the assigned
// one as fallback options, sorted descending by score.
//
// The score is free capacity only (1 - percentage/100): the platform
// has no department-suitability model, so the ranking is deliberately
// a bed-availability ordering rather than a fabricated clinical
// confidence. Deterministic for a given snapshot.
func RankAlternatives(snap *model.OccupancySnapshot, assigned string, candidates []string) []model.AlternativeCandidate {
	if snap == nil {
		return nil
	}

	seen := make(map[string]bool, len(candidates))
	alternatives := make([]model.AlternativeCandidate, 0, len(candidates))
	for _, name := range candidates {
		if name == assigned || seen[name] {
			continue
		}
		seen[name] = true

		dept, ok := snap.Departments[name]
		if !ok {
			continue
		}

		score := 1 - dept.Percentage/100
		if score < 0 {
			score = 0
		}
		alternatives = append(alternatives, model.AlternativeCandidate{
			Department: name,
			Current:    dept.Current,
			Capacity:   dept.Capacity,
			Percentage: dept.Percentage,
			Score:      score,
		})
	}

	sort.SliceStable(alternatives, func(i, j int) bool {
		return alternatives[i].Score > alternatives[j].Score
	})

	if len(alternatives) > maxAlternatives {
		alternatives = alternatives[:maxAlternatives]
	}
	return alternatives
}
