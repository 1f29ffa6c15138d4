// Package features implements deterministic feature extraction against an
// as-of historical snapshot: team form, player production, betting market,
// situational context and recency windows, merged by the assembler into the
// ordered vector each model variant expects.
package features

import (
	"fmt"

	"github.com/yourusername/fantasy-edge/internal/models"
)

// SchemaVersion identifies the current feature schema. Bump whenever any
// group changes size or ordering; artifacts record the version they were
// trained against and refuse to load across versions.
const SchemaVersion = "v1"

// Feature group names
const (
	GroupTeam        = "team"
	GroupPlayer      = "player"
	GroupOdds        = "odds"
	GroupSituational = "situational"
	GroupSequence    = "sequence"
)

// Fixed group sizes for SchemaVersion
const (
	TeamFeatureCount        = 30
	PlayerFeatureCount      = 44
	OddsFeatureCount        = 17
	SituationalFeatureCount = 8
	SequenceFeatureCount    = 20
)

var groupSizes = map[string]int{
	GroupTeam:        TeamFeatureCount,
	GroupPlayer:      PlayerFeatureCount,
	GroupOdds:        OddsFeatureCount,
	GroupSituational: SituationalFeatureCount,
	GroupSequence:    SequenceFeatureCount,
}

// variantGroups maps each model family to the ordered feature groups it
// consumes. The sequence model reads only the recency window; the snapshot
// families read the four point-in-time groups.
var variantGroups = map[string][]string{
	models.ModelNeuralNet:       {GroupTeam, GroupPlayer, GroupOdds, GroupSituational},
	models.ModelRandomForest:    {GroupTeam, GroupPlayer, GroupOdds, GroupSituational},
	models.ModelGradientBoosted: {GroupTeam, GroupPlayer, GroupOdds, GroupSituational},
	models.ModelSequence:        {GroupSequence, GroupSituational},
}

// GroupSize returns the fixed length of a feature group
func GroupSize(group string) (int, error) {
	size, ok := groupSizes[group]
	if !ok {
		return 0, fmt.Errorf("%w: unknown group %q", models.ErrSchemaMismatch, group)
	}
	return size, nil
}

// VariantGroups returns the ordered groups a model family consumes
func VariantGroups(modelType string) ([]string, error) {
	groups, ok := variantGroups[modelType]
	if !ok {
		return nil, fmt.Errorf("%w: unknown model type %q", models.ErrSchemaMismatch, modelType)
	}
	return groups, nil
}

// VariantLength returns the total vector length a model family expects
func VariantLength(modelType string) (int, error) {
	groups, err := VariantGroups(modelType)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, g := range groups {
		total += groupSizes[g]
	}
	return total, nil
}

// FeatureNames returns human-readable names for a variant's vector, used for
// top-factor explanations. Index order matches VectorFor.
func FeatureNames(modelType string) ([]string, error) {
	groups, err := VariantGroups(modelType)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0)
	for _, g := range groups {
		names = append(names, groupFeatureNames[g]...)
	}
	return names, nil
}

var groupFeatureNames = map[string][]string{
	GroupTeam: {
		"home win rate", "away win rate",
		"home scoring average", "away scoring average",
		"home points allowed", "away points allowed",
		"home last-5 form", "away last-5 form",
		"home record at home", "away record on road",
		"home streak", "away streak",
		"home point differential", "away point differential",
		"win rate edge", "scoring edge", "defensive edge", "recent form edge",
		"head-to-head record", "head-to-head sample",
		"home rest days", "away rest days", "rest advantage",
		"home games played", "away games played",
		"home recent scoring", "away recent scoring",
		"home venue split", "away venue split",
		"home court",
	},
	GroupPlayer:      playerFeatureNames(),
	GroupOdds:        oddsFeatureNames(),
	GroupSituational: situationalFeatureNames(),
	GroupSequence:    sequenceFeatureNames(),
}

func playerFeatureNames() []string {
	side := []string{
		"top scorer fantasy output", "2nd option fantasy output", "3rd option fantasy output",
		"4th option fantasy output", "5th option fantasy output",
		"team fantasy output", "top scorer points", "top-3 scoring share",
		"star player active", "injury count", "players ruled out",
		"starter minutes", "bench scoring share", "top-5 rebounding", "top-5 assists",
		"top-5 turnovers", "stat sample depth", "top scorer recent form",
		"production trend", "star usage", "double-digit scorers", "roster depth",
	}
	names := make([]string, 0, 2*len(side))
	for _, n := range side {
		names = append(names, "home "+n)
	}
	for _, n := range side {
		names = append(names, "away "+n)
	}
	return names
}

func oddsFeatureNames() []string {
	return []string{
		"market home probability", "market away probability", "bookmaker overround",
		"market confidence", "point spread", "game total",
		"over probability", "under probability", "opening home probability",
		"line movement", "line velocity", "sharp money side",
		"arbitrage margin", "bookmaker coverage", "raw home implied",
		"raw away implied", "home favorite",
	}
}

func situationalFeatureNames() []string {
	return []string{
		"temperature", "wind", "weather severity", "rest differential",
		"travel distance", "playoff game", "day of week", "month of season",
	}
}

func sequenceFeatureNames() []string {
	names := make([]string, 0, SequenceFeatureCount)
	for i := 10; i >= 1; i-- {
		names = append(names, fmt.Sprintf("home result %d back", i))
	}
	for i := 10; i >= 1; i-- {
		names = append(names, fmt.Sprintf("away result %d back", i))
	}
	return names
}
