package features

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/fantasy-edge/internal/metrics"
	"github.com/yourusername/fantasy-edge/internal/models"
)

// GameFeatures is the ephemeral, schema-validated feature record for one
// matchup. It is computed on demand and never persisted.
type GameFeatures struct {
	GameID        uuid.UUID
	SchemaVersion string
	Groups        map[string][]float64
	Quality       models.DataQuality
	AsOf          time.Time
}

// VectorFor returns the ordered feature vector a model variant expects,
// validated against the variant's declared length.
func (f *GameFeatures) VectorFor(modelType string) ([]float64, error) {
	groups, err := VariantGroups(modelType)
	if err != nil {
		return nil, err
	}
	vec := make([]float64, 0)
	for _, g := range groups {
		values, ok := f.Groups[g]
		if !ok {
			return nil, fmt.Errorf("%w: group %q", models.ErrFeatureGroupMissing, g)
		}
		vec = append(vec, values...)
	}

	want, err := VariantLength(modelType)
	if err != nil {
		return nil, err
	}
	if len(vec) != want {
		return nil, fmt.Errorf("%w: %s expects %d features, assembled %d", models.ErrSchemaMismatch, modelType, want, len(vec))
	}
	return vec, nil
}

// Assembler merges extractor outputs into a canonical GameFeatures record.
// The four snapshot groups are mutually independent reads and run in
// parallel.
type Assembler struct {
	teams       *TeamFormExtractor
	players     *PlayerFeatureExtractor
	odds        *OddsFeatureExtractor
	situational *SituationalFeatureExtractor
	sequence    *SequenceWindowExtractor
	logger      *logrus.Entry
}

// NewAssembler creates a feature assembler backed by a snapshot and a quote
// source. statCache may be nil to disable team-stat memoization.
func NewAssembler(snapshot Snapshot, quotes QuoteSource, statCache *StatCache, minTeamGames int, logger *logrus.Entry) *Assembler {
	return &Assembler{
		teams:       NewTeamFormExtractor(snapshot, statCache, minTeamGames, logger),
		players:     NewPlayerFeatureExtractor(snapshot, logger),
		odds:        NewOddsFeatureExtractor(quotes, 0, logger),
		situational: NewSituationalFeatureExtractor(snapshot, logger),
		sequence:    NewSequenceWindowExtractor(snapshot),
		logger:      logger,
	}
}

// Assemble computes every feature group for a matchup as of the game's start
// time. It fails closed only when a required group cannot be produced at all;
// degraded inputs are flagged in Quality instead.
func (a *Assembler) Assemble(ctx context.Context, game *models.Game) (*GameFeatures, error) {
	if game == nil {
		return nil, fmt.Errorf("%w: nil game", models.ErrFeatureGroupMissing)
	}
	start := time.Now()
	defer func() {
		metrics.FeatureExtractionLatency.Observe(time.Since(start).Seconds())
	}()

	asOf := game.StartTime

	var (
		wg        sync.WaitGroup
		teamVec   []float64
		homeDepth int
		awayDepth int
		playerVec []float64
		oddsVec   []float64
		synthetic bool
		seqVec    []float64
	)

	wg.Add(4)
	go func() {
		defer wg.Done()
		teamVec, homeDepth, awayDepth = a.teams.Extract(game.HomeTeamID, game.AwayTeamID, asOf)
	}()
	go func() {
		defer wg.Done()
		playerVec = a.players.Extract(game.HomeTeamID, game.AwayTeamID, asOf)
	}()
	go func() {
		defer wg.Done()
		oddsVec, synthetic = a.odds.Extract(ctx, game.ID, asOf)
	}()
	go func() {
		defer wg.Done()
		seqVec = a.sequence.Extract(game.HomeTeamID, game.AwayTeamID, asOf)
	}()
	wg.Wait()

	// Situational reads the aggregates the team extractor just cached
	homeAgg := a.teams.aggregates(game.HomeTeamID, asOf)
	awayAgg := a.teams.aggregates(game.AwayTeamID, asOf)
	sitVec, weatherAvailable := a.situational.Extract(game, homeAgg, awayAgg)

	features := &GameFeatures{
		GameID:        game.ID,
		SchemaVersion: SchemaVersion,
		Groups: map[string][]float64{
			GroupTeam:        teamVec,
			GroupPlayer:      playerVec,
			GroupOdds:        oddsVec,
			GroupSituational: sitVec,
			GroupSequence:    seqVec,
		},
		Quality: models.DataQuality{
			OddsAvailable:    !synthetic,
			WeatherAvailable: weatherAvailable,
			HomeHistoryDepth: homeDepth,
			AwayHistoryDepth: awayDepth,
		},
		AsOf: asOf,
	}
	if synthetic {
		features.Quality.SyntheticGroups = append(features.Quality.SyntheticGroups, GroupOdds)
	}
	if !weatherAvailable {
		features.Quality.SyntheticGroups = append(features.Quality.SyntheticGroups, GroupSituational)
	}

	if err := a.validate(features); err != nil {
		return nil, err
	}
	return features, nil
}

// validate checks group lengths against the schema and substitutes 0 for any
// NaN or Infinity with a logged quality warning.
func (a *Assembler) validate(f *GameFeatures) error {
	for group, values := range f.Groups {
		want, err := GroupSize(group)
		if err != nil {
			return err
		}
		if len(values) == 0 {
			return fmt.Errorf("%w: group %q", models.ErrFeatureGroupMissing, group)
		}
		if len(values) != want {
			return fmt.Errorf("%w: group %q has %d features, schema %s expects %d",
				models.ErrSchemaMismatch, group, len(values), f.SchemaVersion, want)
		}
		for i, v := range values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				values[i] = 0
				warning := fmt.Sprintf("non-finite value in %s[%d] replaced with 0", group, i)
				f.Quality.Warnings = append(f.Quality.Warnings, warning)
				a.logger.WithFields(logrus.Fields{
					"group": group,
					"index": i,
				}).Warn("Non-finite feature value replaced with 0")
			}
		}
	}
	return nil
}
