package features

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/fantasy-edge/internal/metrics"
	"github.com/yourusername/fantasy-edge/internal/models"
	"github.com/yourusername/fantasy-edge/internal/oddsfeed"
)

// QuoteSource supplies market quotes for a matchup. The live odds client and
// the snapshot-backed source for training both implement it.
type QuoteSource interface {
	Quotes(ctx context.Context, gameID uuid.UUID, asOf time.Time) ([]*models.OddsQuote, error)
}

// SnapshotQuoteSource adapts a Snapshot's recorded odds history to QuoteSource
type SnapshotQuoteSource struct {
	Snapshot Snapshot
}

// Quotes returns the snapshot's quotes for the game at or before asOf
func (s SnapshotQuoteSource) Quotes(_ context.Context, gameID uuid.UUID, asOf time.Time) ([]*models.OddsQuote, error) {
	return s.Snapshot.OddsHistory(gameID, asOf), nil
}

// OddsFeatureExtractor computes the 17-slot market group. Feed unavailability
// degrades to a neutral synthetic vector and never returns an error.
type OddsFeatureExtractor struct {
	source      QuoteSource
	leagueTotal float64 // typical combined score, scales the game total
	logger      *logrus.Entry
}

// NewOddsFeatureExtractor creates an odds extractor. leagueTotal scales the
// over/under total; pass 0 to use the default.
func NewOddsFeatureExtractor(source QuoteSource, leagueTotal float64, logger *logrus.Entry) *OddsFeatureExtractor {
	if leagueTotal <= 0 {
		leagueTotal = 2 * defaultLeagueScoring
	}
	return &OddsFeatureExtractor{source: source, leagueTotal: leagueTotal, logger: logger}
}

// SyntheticOddsVector returns the neutral vector substituted when the market
// is unavailable: a 50/50 market with zero confidence and no movement.
func SyntheticOddsVector() []float64 {
	return []float64{
		0.5, 0.5, 0, // home/away fair probability, overround
		0, // market confidence
		0, 0.5, // spread, total
		0.5, 0.5, // over/under
		0.5, // opening home probability
		0, 0, 0, // movement, velocity, sharp side
		0, 0, // arbitrage margin, coverage
		0.5, 0.5, // raw implieds
		0, // favorite flag
	}
}

// Extract computes the market group for a matchup. The second return reports
// whether the vector is synthetic.
func (e *OddsFeatureExtractor) Extract(ctx context.Context, gameID uuid.UUID, asOf time.Time) ([]float64, bool) {
	quotes, err := e.source.Quotes(ctx, gameID, asOf)
	if err != nil {
		e.logger.WithError(err).WithField("game_id", gameID).Warn("Odds feed unavailable, using synthetic market features")
		metrics.FeedDegradedTotal.WithLabelValues("odds").Inc()
		return SyntheticOddsVector(), true
	}

	usable := make([]*models.OddsQuote, 0, len(quotes))
	books := make(map[string]bool)
	for _, q := range quotes {
		if q.HasMoneyline() {
			usable = append(usable, q)
			books[q.Sportsbook] = true
		}
	}
	if len(usable) == 0 {
		e.logger.WithField("game_id", gameID).Debug("No priced moneyline for matchup, using synthetic market features")
		metrics.FeedDegradedTotal.WithLabelValues("odds").Inc()
		return SyntheticOddsVector(), true
	}

	opening := usable[0]
	current := usable[len(usable)-1]

	rawHome := oddsfeed.MoneylineToProbability(*current.HomeMoneyline)
	rawAway := oddsfeed.MoneylineToProbability(*current.AwayMoneyline)
	fairHome, fairAway := oddsfeed.RemoveVig2(rawHome, rawAway)

	openRawHome := oddsfeed.MoneylineToProbability(*opening.HomeMoneyline)
	openRawAway := oddsfeed.MoneylineToProbability(*opening.AwayMoneyline)
	openFairHome, _ := oddsfeed.RemoveVig2(openRawHome, openRawAway)

	movement := fairHome - openFairHome
	velocity := 0.0
	if hours := current.Time.Sub(opening.Time).Hours(); hours > 0 {
		velocity = movement / hours
	}

	// Sharp-money heuristic: a fair-probability move past 1.5 points marks
	// the side attracting professional action.
	sharpSide := 0.0
	if movement > 0.015 {
		sharpSide = 1
	} else if movement < -0.015 {
		sharpSide = -1
	}

	spread := 0.0
	if current.Spread != nil {
		spread = *current.Spread
	}
	total := e.leagueTotal
	if current.Total != nil {
		total = *current.Total
	}

	overFair, underFair := 0.5, 0.5
	if current.OverPrice != nil && current.UnderPrice != nil {
		rawOver := oddsfeed.MoneylineToProbability(*current.OverPrice)
		rawUnder := oddsfeed.MoneylineToProbability(*current.UnderPrice)
		overFair, underFair = oddsfeed.RemoveVig2(rawOver, rawUnder)
	}

	favorite := 0.0
	if fairHome > 0.5 {
		favorite = 1
	}

	return []float64{
		fairHome,
		fairAway,
		clamp01(oddsfeed.Overround(rawHome, rawAway) / 0.1),
		math.Abs(fairHome-0.5) * 2,
		clampSigned(spread / 20),
		clamp01(total / (2 * e.leagueTotal)),
		overFair,
		underFair,
		openFairHome,
		clampSigned(movement * 10),
		clampSigned(velocity * 100),
		sharpSide,
		clamp01(oddsfeed.ArbitrageMargin(rawHome, rawAway) / 0.05),
		clamp01(float64(len(books)) / 8),
		rawHome,
		rawAway,
		favorite,
	}, false
}
