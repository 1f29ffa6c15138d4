package features

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/fantasy-edge/internal/models"
)

// Snapshot is a read-only view of historical data as of a point in time.
// Every query filters strictly before its as-of date so the same snapshot
// yields identical features for training and serving. Implementations must
// be safe for concurrent readers.
type Snapshot interface {
	// GamesBefore returns the team's completed games strictly before asOf,
	// ordered oldest first.
	GamesBefore(teamID uuid.UUID, asOf time.Time) []*models.Game

	// HeadToHeadBefore returns completed games between the two teams strictly
	// before asOf, ordered oldest first.
	HeadToHeadBefore(homeID, awayID uuid.UUID, asOf time.Time) []*models.Game

	// PlayerStatsBefore returns box-score lines for the team's players
	// strictly before asOf.
	PlayerStatsBefore(teamID uuid.UUID, asOf time.Time) []*models.PlayerGameStat

	// Injuries returns the injury reports active for the team as of asOf.
	Injuries(teamID uuid.UUID, asOf time.Time) []*models.InjuryReport

	// OddsHistory returns market quotes for a game recorded at or before asOf,
	// ordered oldest first.
	OddsHistory(gameID uuid.UUID, asOf time.Time) []*models.OddsQuote

	// Weather returns venue conditions for the game, or nil when unavailable.
	Weather(gameID uuid.UUID) *models.WeatherReport

	// Team returns the team record, or nil when unknown.
	Team(teamID uuid.UUID) *models.Team

	// LeagueScoringAverage returns the mean points per team per game across
	// all completed games strictly before asOf, or 0 with no history.
	LeagueScoringAverage(asOf time.Time) float64
}

// MemorySnapshot is an immutable in-memory Snapshot built once from loaded
// records. Serving wraps repository queries in one of these per request;
// tests construct them directly.
type MemorySnapshot struct {
	games    []*models.Game
	stats    map[uuid.UUID][]*models.PlayerGameStat
	injuries map[uuid.UUID][]*models.InjuryReport
	odds     map[uuid.UUID][]*models.OddsQuote
	weather  map[uuid.UUID]*models.WeatherReport
	teams    map[uuid.UUID]*models.Team
}

// NewMemorySnapshot builds a snapshot from raw records. The inputs are copied
// into sorted internal indexes; later mutation of the arguments is safe.
func NewMemorySnapshot(
	games []*models.Game,
	stats []*models.PlayerGameStat,
	injuries []*models.InjuryReport,
	odds []*models.OddsQuote,
	weather []*models.WeatherReport,
	teams []*models.Team,
) *MemorySnapshot {
	s := &MemorySnapshot{
		games:    make([]*models.Game, len(games)),
		stats:    make(map[uuid.UUID][]*models.PlayerGameStat),
		injuries: make(map[uuid.UUID][]*models.InjuryReport),
		odds:     make(map[uuid.UUID][]*models.OddsQuote),
		weather:  make(map[uuid.UUID]*models.WeatherReport),
		teams:    make(map[uuid.UUID]*models.Team),
	}

	copy(s.games, games)
	sort.SliceStable(s.games, func(i, j int) bool {
		return s.games[i].StartTime.Before(s.games[j].StartTime)
	})

	for _, st := range stats {
		s.stats[st.TeamID] = append(s.stats[st.TeamID], st)
	}
	for _, rows := range s.stats {
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].GameDate.Before(rows[j].GameDate)
		})
	}

	for _, inj := range injuries {
		s.injuries[inj.TeamID] = append(s.injuries[inj.TeamID], inj)
	}

	for _, q := range odds {
		s.odds[q.GameID] = append(s.odds[q.GameID], q)
	}
	for _, quotes := range s.odds {
		sort.SliceStable(quotes, func(i, j int) bool {
			return quotes[i].Time.Before(quotes[j].Time)
		})
	}

	for _, w := range weather {
		s.weather[w.GameID] = w
	}
	for _, t := range teams {
		s.teams[t.ID] = t
	}

	return s
}

// GamesBefore returns the team's completed games strictly before asOf
func (s *MemorySnapshot) GamesBefore(teamID uuid.UUID, asOf time.Time) []*models.Game {
	out := make([]*models.Game, 0)
	for _, g := range s.games {
		if !g.StartTime.Before(asOf) {
			break
		}
		if !g.IsFinal() {
			continue
		}
		if g.HomeTeamID == teamID || g.AwayTeamID == teamID {
			out = append(out, g)
		}
	}
	return out
}

// HeadToHeadBefore returns completed games between the two teams strictly before asOf
func (s *MemorySnapshot) HeadToHeadBefore(homeID, awayID uuid.UUID, asOf time.Time) []*models.Game {
	out := make([]*models.Game, 0)
	for _, g := range s.games {
		if !g.StartTime.Before(asOf) {
			break
		}
		if !g.IsFinal() {
			continue
		}
		pair := (g.HomeTeamID == homeID && g.AwayTeamID == awayID) ||
			(g.HomeTeamID == awayID && g.AwayTeamID == homeID)
		if pair {
			out = append(out, g)
		}
	}
	return out
}

// PlayerStatsBefore returns box-score lines for the team strictly before asOf
func (s *MemorySnapshot) PlayerStatsBefore(teamID uuid.UUID, asOf time.Time) []*models.PlayerGameStat {
	out := make([]*models.PlayerGameStat, 0)
	for _, st := range s.stats[teamID] {
		if !st.GameDate.Before(asOf) {
			break
		}
		out = append(out, st)
	}
	return out
}

// Injuries returns injury reports active for the team as of asOf
func (s *MemorySnapshot) Injuries(teamID uuid.UUID, asOf time.Time) []*models.InjuryReport {
	out := make([]*models.InjuryReport, 0)
	for _, inj := range s.injuries[teamID] {
		if inj.ReportedAt.After(asOf) {
			continue
		}
		out = append(out, inj)
	}
	return out
}

// OddsHistory returns quotes for a game at or before asOf
func (s *MemorySnapshot) OddsHistory(gameID uuid.UUID, asOf time.Time) []*models.OddsQuote {
	out := make([]*models.OddsQuote, 0)
	for _, q := range s.odds[gameID] {
		if q.Time.After(asOf) {
			break
		}
		out = append(out, q)
	}
	return out
}

// Weather returns venue conditions for the game, or nil
func (s *MemorySnapshot) Weather(gameID uuid.UUID) *models.WeatherReport {
	return s.weather[gameID]
}

// Team returns the team record, or nil
func (s *MemorySnapshot) Team(teamID uuid.UUID) *models.Team {
	return s.teams[teamID]
}

// LeagueScoringAverage returns mean points per team per game before asOf
func (s *MemorySnapshot) LeagueScoringAverage(asOf time.Time) float64 {
	total := 0.0
	n := 0
	for _, g := range s.games {
		if !g.StartTime.Before(asOf) {
			break
		}
		if !g.IsFinal() {
			continue
		}
		total += float64(*g.HomeScore) + float64(*g.AwayScore)
		n += 2
	}
	if n == 0 {
		return 0
	}
	return total / float64(n)
}
