package models

import (
	"time"

	"github.com/google/uuid"
)

// OddsQuote represents a point-in-time snapshot of the betting market for a matchup
type OddsQuote struct {
	Time          time.Time `db:"time" json:"time" validate:"required"`
	GameID        uuid.UUID `db:"game_id" json:"game_id" validate:"required,uuid4"`
	Sportsbook    string    `db:"sportsbook" json:"sportsbook"`
	HomeMoneyline *float64  `db:"home_moneyline" json:"home_moneyline"`
	AwayMoneyline *float64  `db:"away_moneyline" json:"away_moneyline"`
	Spread        *float64  `db:"spread" json:"spread"`
	Total         *float64  `db:"total" json:"total"`
	OverPrice     *float64  `db:"over_price" json:"over_price"`
	UnderPrice    *float64  `db:"under_price" json:"under_price"`
}

// HasMoneyline reports whether both sides of the moneyline are quoted
func (o *OddsQuote) HasMoneyline() bool {
	return o.HomeMoneyline != nil && o.AwayMoneyline != nil
}

// LineMovement represents the drift between an opening and current quote
type LineMovement struct {
	GameID        uuid.UUID `json:"game_id"`
	OpeningHome   float64   `json:"opening_home"`
	CurrentHome   float64   `json:"current_home"`
	MovementPts   float64   `json:"movement_pts"`
	VelocityPerHr float64   `json:"velocity_per_hr"`
	SharpSide     string    `json:"sharp_side"` // "home", "away" or ""
	ObservedAt    time.Time `json:"observed_at"`
}

// WeatherReport represents venue conditions for an outdoor matchup
type WeatherReport struct {
	GameID      uuid.UUID `db:"game_id" json:"game_id" validate:"required,uuid4"`
	Temperature float64   `db:"temperature" json:"temperature"`
	WindSpeed   float64   `db:"wind_speed" json:"wind_speed"`
	Humidity    float64   `db:"humidity" json:"humidity"`
	Condition   string    `db:"condition" json:"condition"`
	FetchedAt   time.Time `db:"fetched_at" json:"fetched_at"`
}
