package models

import (
	"time"

	"github.com/google/uuid"
)

// PlayerGameStat represents one player's box-score line in one game
type PlayerGameStat struct {
	ID            uuid.UUID `db:"id" json:"id" validate:"required,uuid4"`
	PlayerID      uuid.UUID `db:"player_id" json:"player_id" validate:"required,uuid4"`
	TeamID        uuid.UUID `db:"team_id" json:"team_id" validate:"required,uuid4"`
	GameID        uuid.UUID `db:"game_id" json:"game_id" validate:"required,uuid4"`
	GameDate      time.Time `db:"game_date" json:"game_date" validate:"required"`
	Points        float64   `db:"points" json:"points"`
	Rebounds      float64   `db:"rebounds" json:"rebounds"`
	Assists       float64   `db:"assists" json:"assists"`
	Turnovers     float64   `db:"turnovers" json:"turnovers"`
	Minutes       float64   `db:"minutes" json:"minutes"`
	FantasyPoints float64   `db:"fantasy_points" json:"fantasy_points"`
}

// InjuryReport represents a player injury designation as of a report date
type InjuryReport struct {
	ID         uuid.UUID `db:"id" json:"id" validate:"required,uuid4"`
	PlayerID   uuid.UUID `db:"player_id" json:"player_id" validate:"required,uuid4"`
	TeamID     uuid.UUID `db:"team_id" json:"team_id" validate:"required,uuid4"`
	Status     string    `db:"status" json:"status" validate:"required,oneof=out doubtful questionable probable"`
	ReportedAt time.Time `db:"reported_at" json:"reported_at" validate:"required"`
}

// RulesOut reports whether the designation removes the player from the lineup
func (r *InjuryReport) RulesOut() bool {
	return r.Status == "out" || r.Status == "doubtful"
}
