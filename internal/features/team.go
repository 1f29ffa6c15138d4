package features

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Fallback league scoring average used when the snapshot has no history yet.
const defaultLeagueScoring = 100.0

// formWindow bounds the rolling form window, matching the bounded last-10
// history kept per team.
const formWindow = 10

// teamAggregates holds rolling totals for one team strictly before a date
type teamAggregates struct {
	Games         int
	Wins          int
	PointsFor     float64
	PointsAgainst float64
	HomeGames     int
	HomeWins      int
	AwayGames     int
	AwayWins      int
	RecentForm    []float64 // 1 win, 0 loss, most recent last, capped at formWindow
	RecentPoints  []float64 // points scored, same window
	Streak        int       // positive winning, negative losing
	LastGameDate  time.Time
}

func (a *teamAggregates) winRate() float64 {
	if a.Games == 0 {
		return 0.5
	}
	return float64(a.Wins) / float64(a.Games)
}

func (a *teamAggregates) scoringAvg(leagueAvg float64) float64 {
	if a.Games == 0 {
		return leagueAvg
	}
	return a.PointsFor / float64(a.Games)
}

func (a *teamAggregates) allowedAvg(leagueAvg float64) float64 {
	if a.Games == 0 {
		return leagueAvg
	}
	return a.PointsAgainst / float64(a.Games)
}

func (a *teamAggregates) form(n int) float64 {
	if len(a.RecentForm) == 0 {
		return 0.5
	}
	window := a.RecentForm
	if len(window) > n {
		window = window[len(window)-n:]
	}
	sum := 0.0
	for _, v := range window {
		sum += v
	}
	return sum / float64(len(window))
}

func (a *teamAggregates) recentScoring(n int, leagueAvg float64) float64 {
	if len(a.RecentPoints) == 0 {
		return leagueAvg
	}
	window := a.RecentPoints
	if len(window) > n {
		window = window[len(window)-n:]
	}
	sum := 0.0
	for _, v := range window {
		sum += v
	}
	return sum / float64(len(window))
}

func (a *teamAggregates) homeWinRate() float64 {
	if a.HomeGames == 0 {
		return 0.5
	}
	return float64(a.HomeWins) / float64(a.HomeGames)
}

func (a *teamAggregates) awayWinRate() float64 {
	if a.AwayGames == 0 {
		return 0.5
	}
	return float64(a.AwayWins) / float64(a.AwayGames)
}

func (a *teamAggregates) restDays(asOf time.Time) float64 {
	if a.LastGameDate.IsZero() {
		return 3 // neutral rest when no prior game exists
	}
	return asOf.Sub(a.LastGameDate).Hours() / 24
}

// TeamFormExtractor computes the 30-slot team form group for a matchup.
// All inputs come from games strictly before the as-of date.
type TeamFormExtractor struct {
	snapshot Snapshot
	cache    *StatCache
	minGames int
	logger   *logrus.Entry
}

// NewTeamFormExtractor creates a team form extractor. cache may be nil.
func NewTeamFormExtractor(snapshot Snapshot, statCache *StatCache, minGames int, logger *logrus.Entry) *TeamFormExtractor {
	if minGames <= 0 {
		minGames = 5
	}
	return &TeamFormExtractor{
		snapshot: snapshot,
		cache:    statCache,
		minGames: minGames,
		logger:   logger,
	}
}

// neutralAggregates replaces a thin history with the zero aggregate, whose
// accessors all report neutral values (0.5 rates, league-average scoring).
// Only the last game date survives so the rest slots stay truthful.
func neutralAggregates(a *teamAggregates) *teamAggregates {
	return &teamAggregates{LastGameDate: a.LastGameDate}
}

// aggregates computes rolling totals for a team from its game history
func (e *TeamFormExtractor) aggregates(teamID uuid.UUID, asOf time.Time) *teamAggregates {
	if agg, ok := e.cache.Get(teamID, asOf); ok {
		return agg
	}

	agg := &teamAggregates{}
	for _, g := range e.snapshot.GamesBefore(teamID, asOf) {
		isHome := g.HomeTeamID == teamID
		won := g.HomeWon() == isHome

		agg.Games++
		if isHome {
			agg.HomeGames++
			agg.PointsFor += float64(*g.HomeScore)
			agg.PointsAgainst += float64(*g.AwayScore)
			agg.RecentPoints = append(agg.RecentPoints, float64(*g.HomeScore))
		} else {
			agg.AwayGames++
			agg.PointsFor += float64(*g.AwayScore)
			agg.PointsAgainst += float64(*g.HomeScore)
			agg.RecentPoints = append(agg.RecentPoints, float64(*g.AwayScore))
		}

		if won {
			agg.Wins++
			if isHome {
				agg.HomeWins++
			} else {
				agg.AwayWins++
			}
			agg.RecentForm = append(agg.RecentForm, 1)
			if agg.Streak > 0 {
				agg.Streak++
			} else {
				agg.Streak = 1
			}
		} else {
			agg.RecentForm = append(agg.RecentForm, 0)
			if agg.Streak < 0 {
				agg.Streak--
			} else {
				agg.Streak = -1
			}
		}

		if len(agg.RecentForm) > formWindow {
			agg.RecentForm = agg.RecentForm[len(agg.RecentForm)-formWindow:]
		}
		if len(agg.RecentPoints) > formWindow {
			agg.RecentPoints = agg.RecentPoints[len(agg.RecentPoints)-formWindow:]
		}
		agg.LastGameDate = g.StartTime
	}

	e.cache.Set(teamID, asOf, agg)
	return agg
}

// Extract computes the team form group for a matchup as of a date. Teams with
// fewer than minGames prior games get neutral defaults instead of an error;
// the returned depths report how many prior games each side actually has.
func (e *TeamFormExtractor) Extract(homeID, awayID uuid.UUID, asOf time.Time) (vec []float64, homeDepth, awayDepth int) {
	leagueAvg := e.snapshot.LeagueScoringAverage(asOf)
	if leagueAvg <= 0 {
		leagueAvg = defaultLeagueScoring
	}
	scale := 2 * leagueAvg // league-average scoring sits at 0.5

	home := e.aggregates(homeID, asOf)
	away := e.aggregates(awayID, asOf)
	homeDepth = home.Games
	awayDepth = away.Games

	if homeDepth < e.minGames || awayDepth < e.minGames {
		e.logger.WithFields(logrus.Fields{
			"home_games": homeDepth,
			"away_games": awayDepth,
			"min_games":  e.minGames,
		}).Debug("Thin team history, using neutral defaults")
		if homeDepth < e.minGames {
			home = neutralAggregates(home)
		}
		if awayDepth < e.minGames {
			away = neutralAggregates(away)
		}
	}

	h2h := e.snapshot.HeadToHeadBefore(homeID, awayID, asOf)
	h2hHomeWins := 0
	for _, g := range h2h {
		if (g.HomeTeamID == homeID && g.HomeWon()) || (g.AwayTeamID == homeID && !g.HomeWon()) {
			h2hHomeWins++
		}
	}
	h2hRate := 0.5
	if len(h2h) > 0 {
		h2hRate = float64(h2hHomeWins) / float64(len(h2h))
	}

	homeRest := home.restDays(asOf)
	awayRest := away.restDays(asOf)

	vec = []float64{
		home.winRate(),
		away.winRate(),
		clamp01(home.scoringAvg(leagueAvg) / scale),
		clamp01(away.scoringAvg(leagueAvg) / scale),
		clamp01(home.allowedAvg(leagueAvg) / scale),
		clamp01(away.allowedAvg(leagueAvg) / scale),
		home.form(5),
		away.form(5),
		home.homeWinRate(),
		away.awayWinRate(),
		clampSigned(float64(home.Streak) / 5),
		clampSigned(float64(away.Streak) / 5),
		clampSigned((home.scoringAvg(leagueAvg) - home.allowedAvg(leagueAvg)) / leagueAvg),
		clampSigned((away.scoringAvg(leagueAvg) - away.allowedAvg(leagueAvg)) / leagueAvg),
		home.winRate() - away.winRate(),
		clampSigned((home.scoringAvg(leagueAvg) - away.scoringAvg(leagueAvg)) / leagueAvg),
		clampSigned((away.allowedAvg(leagueAvg) - home.allowedAvg(leagueAvg)) / leagueAvg),
		home.form(5) - away.form(5),
		h2hRate,
		clamp01(float64(len(h2h)) / 10),
		clamp01(homeRest / 7),
		clamp01(awayRest / 7),
		clampSigned((homeRest - awayRest) / 7),
		clamp01(float64(homeDepth) / 82),
		clamp01(float64(awayDepth) / 82),
		clamp01(home.recentScoring(5, leagueAvg) / scale),
		clamp01(away.recentScoring(5, leagueAvg) / scale),
		clampSigned(home.homeWinRate() - home.awayWinRate()),
		clampSigned(away.homeWinRate() - away.awayWinRate()),
		1.0, // home court indicator
	}
	return vec, homeDepth, awayDepth
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Min(1, math.Max(0, v))
}

func clampSigned(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Min(1, math.Max(-1, v))
}
