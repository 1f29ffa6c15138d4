package models

import (
	"time"

	"github.com/google/uuid"
)

// Game represents a completed or scheduled matchup between two teams
type Game struct {
	ID         uuid.UUID `db:"id" json:"id" validate:"required,uuid4"`
	SportKey   string    `db:"sport_key" json:"sport_key" validate:"required"`
	Season     int       `db:"season" json:"season" validate:"required"`
	HomeTeamID uuid.UUID `db:"home_team_id" json:"home_team_id" validate:"required,uuid4"`
	AwayTeamID uuid.UUID `db:"away_team_id" json:"away_team_id" validate:"required,uuid4"`
	StartTime  time.Time `db:"start_time" json:"start_time" validate:"required"`
	HomeScore  *int      `db:"home_score" json:"home_score"`
	AwayScore  *int      `db:"away_score" json:"away_score"`
	Playoff    bool      `db:"playoff" json:"playoff"`
	Venue      string    `db:"venue" json:"venue"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// IsFinal reports whether both scores are recorded
func (g *Game) IsFinal() bool {
	return g.HomeScore != nil && g.AwayScore != nil
}

// HomeWon reports whether the home team won. Only meaningful when IsFinal.
func (g *Game) HomeWon() bool {
	if !g.IsFinal() {
		return false
	}
	return *g.HomeScore > *g.AwayScore
}

// Margin returns home score minus away score, or 0 for unplayed games
func (g *Game) Margin() int {
	if !g.IsFinal() {
		return 0
	}
	return *g.HomeScore - *g.AwayScore
}

// Team represents a team in a supported league
type Team struct {
	ID        uuid.UUID `db:"id" json:"id" validate:"required,uuid4"`
	SportKey  string    `db:"sport_key" json:"sport_key" validate:"required"`
	Name      string    `db:"name" json:"name" validate:"required"`
	Abbrev    string    `db:"abbrev" json:"abbrev"`
	Latitude  float64   `db:"latitude" json:"latitude"`
	Longitude float64   `db:"longitude" json:"longitude"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
