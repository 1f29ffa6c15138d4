package features

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/fantasy-edge/internal/metrics"
	"github.com/yourusername/fantasy-edge/internal/models"
)

// Neutral weather defaults substituted when no report exists
const (
	defaultTemperature = 72.0
	defaultWindSpeed   = 5.0
)

// SituationalFeatureExtractor computes the 8-slot situational group:
// weather, rest differential, travel distance, playoff flag and time features.
type SituationalFeatureExtractor struct {
	snapshot Snapshot
	logger   *logrus.Entry
}

// NewSituationalFeatureExtractor creates a situational extractor
func NewSituationalFeatureExtractor(snapshot Snapshot, logger *logrus.Entry) *SituationalFeatureExtractor {
	return &SituationalFeatureExtractor{snapshot: snapshot, logger: logger}
}

// Extract computes the situational group for a matchup. Missing weather
// degrades to league-neutral conditions; the second return reports whether
// real weather was available.
func (e *SituationalFeatureExtractor) Extract(game *models.Game, homeAgg, awayAgg *teamAggregates) ([]float64, bool) {
	temp := defaultTemperature
	wind := defaultWindSpeed
	weatherAvailable := false
	if w := e.snapshot.Weather(game.ID); w != nil {
		temp = w.Temperature
		wind = w.WindSpeed
		weatherAvailable = true
	} else {
		metrics.FeedDegradedTotal.WithLabelValues("weather").Inc()
	}

	restDiff := 0.0
	if homeAgg != nil && awayAgg != nil {
		restDiff = homeAgg.restDays(game.StartTime) - awayAgg.restDays(game.StartTime)
	}

	travel := 0.0
	homeTeam := e.snapshot.Team(game.HomeTeamID)
	awayTeam := e.snapshot.Team(game.AwayTeamID)
	if homeTeam != nil && awayTeam != nil {
		travel = haversineMiles(homeTeam.Latitude, homeTeam.Longitude, awayTeam.Latitude, awayTeam.Longitude)
	}

	playoff := 0.0
	if game.Playoff {
		playoff = 1
	}

	start := game.StartTime.UTC()
	return []float64{
		clamp01(temp / 100),
		clamp01(wind / 30),
		weatherSeverity(temp, wind),
		clampSigned(restDiff / 7),
		clamp01(travel / 3000),
		playoff,
		float64(start.Weekday()) / 7,
		float64(start.Month()) / 12,
	}, weatherAvailable
}

// weatherSeverity folds temperature extremes and wind into one [0,1] score
func weatherSeverity(temp, wind float64) float64 {
	severity := math.Abs(temp-65) / 65
	severity += wind / 30
	return clamp01(severity / 2)
}

// haversineMiles returns the great-circle distance between two coordinates
func haversineMiles(lat1, lon1, lat2, lon2 float64) float64 {
	if lat1 == 0 && lon1 == 0 || lat2 == 0 && lon2 == 0 {
		return 0
	}
	const earthRadiusMiles = 3958.8
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusMiles * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
