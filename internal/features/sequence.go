package features

import (
	"time"

	"github.com/google/uuid"
)

// sequenceDepth is the number of prior results per team in the recency window
const sequenceDepth = 10

// SequenceWindowExtractor computes the 20-slot recency window consumed by the
// sequence model: the last 10 outcomes for each team, oldest first, padded
// with 0.5 when a team has fewer prior games.
type SequenceWindowExtractor struct {
	snapshot Snapshot
}

// NewSequenceWindowExtractor creates a sequence window extractor
func NewSequenceWindowExtractor(snapshot Snapshot) *SequenceWindowExtractor {
	return &SequenceWindowExtractor{snapshot: snapshot}
}

// Extract computes the recency window for a matchup: home slots then away
func (e *SequenceWindowExtractor) Extract(homeID, awayID uuid.UUID, asOf time.Time) []float64 {
	vec := make([]float64, 0, SequenceFeatureCount)
	vec = append(vec, e.teamWindow(homeID, asOf)...)
	vec = append(vec, e.teamWindow(awayID, asOf)...)
	return vec
}

func (e *SequenceWindowExtractor) teamWindow(teamID uuid.UUID, asOf time.Time) []float64 {
	games := e.snapshot.GamesBefore(teamID, asOf)
	if len(games) > sequenceDepth {
		games = games[len(games)-sequenceDepth:]
	}

	window := make([]float64, sequenceDepth)
	// Left-pad with neutral 0.5 so the most recent result is always last
	pad := sequenceDepth - len(games)
	for i := 0; i < pad; i++ {
		window[i] = 0.5
	}
	for i, g := range games {
		won := g.HomeWon() == (g.HomeTeamID == teamID)
		if won {
			window[pad+i] = 1
		} else {
			window[pad+i] = 0
		}
	}
	return window
}
