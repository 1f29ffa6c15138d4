package features

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Normalization scales for player production. Per-player fantasy output tops
// out around 60, points around 40, a full rotation around 250 fantasy points.
const (
	playerFantasyScale = 60.0
	playerPointsScale  = 40.0
	teamFantasyScale   = 250.0
	minutesScale       = 48.0
)

// PlayerFeatureExtractor computes the 44-slot player group: 22 features per
// side covering top-player production, star availability and injuries.
type PlayerFeatureExtractor struct {
	snapshot Snapshot
	logger   *logrus.Entry
}

// NewPlayerFeatureExtractor creates a player feature extractor
func NewPlayerFeatureExtractor(snapshot Snapshot, logger *logrus.Entry) *PlayerFeatureExtractor {
	return &PlayerFeatureExtractor{snapshot: snapshot, logger: logger}
}

// playerLine aggregates one player's box scores
type playerLine struct {
	playerID      uuid.UUID
	games         int
	points        float64
	rebounds      float64
	assists       float64
	turnovers     float64
	minutes       float64
	fantasy       float64
	recentFantasy []float64 // most recent last
}

func (p *playerLine) avgFantasy() float64 {
	if p.games == 0 {
		return 0
	}
	return p.fantasy / float64(p.games)
}

func (p *playerLine) avgPoints() float64 {
	if p.games == 0 {
		return 0
	}
	return p.points / float64(p.games)
}

func (p *playerLine) recentAvgFantasy(n int) float64 {
	if len(p.recentFantasy) == 0 {
		return 0
	}
	window := p.recentFantasy
	if len(window) > n {
		window = window[len(window)-n:]
	}
	sum := 0.0
	for _, v := range window {
		sum += v
	}
	return sum / float64(len(window))
}

// Extract computes the player group for a matchup: home side first, then away.
// Missing box-score history degrades to zeros rather than failing.
func (e *PlayerFeatureExtractor) Extract(homeID, awayID uuid.UUID, asOf time.Time) []float64 {
	vec := make([]float64, 0, PlayerFeatureCount)
	vec = append(vec, e.sideFeatures(homeID, asOf)...)
	vec = append(vec, e.sideFeatures(awayID, asOf)...)
	return vec
}

func (e *PlayerFeatureExtractor) sideFeatures(teamID uuid.UUID, asOf time.Time) []float64 {
	stats := e.snapshot.PlayerStatsBefore(teamID, asOf)
	injuries := e.snapshot.Injuries(teamID, asOf)

	byPlayer := make(map[uuid.UUID]*playerLine)
	gameDates := make(map[time.Time]bool)
	for _, st := range stats {
		line, ok := byPlayer[st.PlayerID]
		if !ok {
			line = &playerLine{playerID: st.PlayerID}
			byPlayer[st.PlayerID] = line
		}
		line.games++
		line.points += st.Points
		line.rebounds += st.Rebounds
		line.assists += st.Assists
		line.turnovers += st.Turnovers
		line.minutes += st.Minutes
		line.fantasy += st.FantasyPoints
		line.recentFantasy = append(line.recentFantasy, st.FantasyPoints)
		gameDates[st.GameDate] = true
	}

	lines := make([]*playerLine, 0, len(byPlayer))
	for _, line := range byPlayer {
		lines = append(lines, line)
	}
	// Rank by average fantasy production, id as tiebreak for determinism
	sort.Slice(lines, func(i, j int) bool {
		fi, fj := lines[i].avgFantasy(), lines[j].avgFantasy()
		if fi != fj {
			return fi > fj
		}
		return lines[i].playerID.String() < lines[j].playerID.String()
	})

	if len(lines) == 0 {
		e.logger.WithField("team_id", teamID).Debug("No player history, using zero player features")
	}

	rulesOut := make(map[uuid.UUID]bool)
	outCount := 0
	for _, inj := range injuries {
		if inj.RulesOut() {
			rulesOut[inj.PlayerID] = true
			outCount++
		}
	}

	top5 := make([]float64, 5)
	top5Minutes := 0.0
	top5Rebounds := 0.0
	top5Assists := 0.0
	top5Turnovers := 0.0
	top5Games := 0
	for i := 0; i < 5 && i < len(lines); i++ {
		top5[i] = clamp01(lines[i].avgFantasy() / playerFantasyScale)
		if lines[i].games > 0 {
			top5Minutes += lines[i].minutes / float64(lines[i].games)
			top5Rebounds += lines[i].rebounds / float64(lines[i].games)
			top5Assists += lines[i].assists / float64(lines[i].games)
			top5Turnovers += lines[i].turnovers / float64(lines[i].games)
			top5Games++
		}
	}
	if top5Games > 0 {
		top5Minutes /= float64(top5Games)
		top5Rebounds /= float64(top5Games)
		top5Assists /= float64(top5Games)
		top5Turnovers /= float64(top5Games)
	}

	teamFantasyPerGame := 0.0
	teamPointsPerGame := 0.0
	if len(gameDates) > 0 {
		totalFantasy, totalPoints := 0.0, 0.0
		for _, line := range lines {
			totalFantasy += line.fantasy
			totalPoints += line.points
		}
		teamFantasyPerGame = totalFantasy / float64(len(gameDates))
		teamPointsPerGame = totalPoints / float64(len(gameDates))
	}

	var star *playerLine
	if len(lines) > 0 {
		star = lines[0]
	}
	starActive := 0.0
	starPoints := 0.0
	starRecent := 0.0
	starTrend := 0.5
	starMinutes := 0.0
	if star != nil {
		if !rulesOut[star.playerID] {
			starActive = 1.0
		}
		starPoints = star.avgPoints()
		starRecent = star.recentAvgFantasy(5)
		if star.avgFantasy() > 0 {
			starTrend = clamp01(starRecent / star.avgFantasy() / 2)
		}
		if star.games > 0 {
			starMinutes = star.minutes / float64(star.games)
		}
	}

	top3Share := 0.0
	if teamPointsPerGame > 0 {
		top3 := 0.0
		for i := 0; i < 3 && i < len(lines); i++ {
			top3 += lines[i].avgPoints()
		}
		top3Share = clamp01(top3 / teamPointsPerGame)
	}

	doubleDigit := 0
	for _, line := range lines {
		if line.avgPoints() >= 10 {
			doubleDigit++
		}
	}

	return []float64{
		top5[0], top5[1], top5[2], top5[3], top5[4],
		clamp01(teamFantasyPerGame / teamFantasyScale),
		clamp01(starPoints / playerPointsScale),
		top3Share,
		starActive,
		clamp01(float64(len(injuries)) / 5),
		clamp01(float64(outCount) / 5),
		clamp01(top5Minutes / minutesScale),
		clamp01(1 - top3Share),
		clamp01(top5Rebounds / 15),
		clamp01(top5Assists / 12),
		clamp01(top5Turnovers / 8),
		clamp01(float64(len(gameDates)) / 20),
		clamp01(starRecent / playerFantasyScale),
		starTrend,
		clamp01(starMinutes / minutesScale),
		clamp01(float64(doubleDigit) / 10),
		clamp01(float64(len(lines)) / 15),
	}
}
