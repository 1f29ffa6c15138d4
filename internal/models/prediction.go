package models

import (
	"time"

	"github.com/google/uuid"
)

// Winner classifications for a prediction
const (
	WinnerHome   = "home"
	WinnerAway   = "away"
	WinnerNoPlay = "no_play"
)

// ModelBreakdown holds one base model's contribution to an ensemble prediction
type ModelBreakdown struct {
	ModelType   string  `json:"model_type"`
	Probability float64 `json:"probability"`
	Weight      float64 `json:"weight"`
	Responded   bool    `json:"responded"`
}

// DataQuality communicates degraded inputs to downstream consumers
type DataQuality struct {
	OddsAvailable    bool     `json:"odds_available"`
	WeatherAvailable bool     `json:"weather_available"`
	HomeHistoryDepth int      `json:"home_history_depth"`
	AwayHistoryDepth int      `json:"away_history_depth"`
	SyntheticGroups  []string `json:"synthetic_groups,omitempty"`
	Warnings         []string `json:"warnings,omitempty"`
}

// Degraded reports whether any input to the prediction was substituted or missing
func (q *DataQuality) Degraded() bool {
	return !q.OddsAvailable || len(q.SyntheticGroups) > 0 || len(q.Warnings) > 0
}

// PredictionResult represents the combined ensemble output for one matchup
type PredictionResult struct {
	MatchupID          uuid.UUID        `json:"matchup_id" validate:"required,uuid4"`
	HomeWinProbability float64          `json:"home_win_probability" validate:"gte=0,lte=1"`
	AwayWinProbability float64          `json:"away_win_probability" validate:"gte=0,lte=1"`
	Winner             string           `json:"winner" validate:"required,oneof=home away no_play"`
	Confidence         float64          `json:"confidence" validate:"gte=0,lte=1"`
	PerModelBreakdown  []ModelBreakdown `json:"per_model_breakdown"`
	TopFactors         []string         `json:"top_factors,omitempty"`
	DataQuality        DataQuality      `json:"data_quality"`
	ModelVersion       string           `json:"model_version"`
	GeneratedAt        time.Time        `json:"generated_at"`
}

// MeetsThreshold checks if the confidence meets the given threshold
func (p *PredictionResult) MeetsThreshold(threshold float64) bool {
	return p.Confidence >= threshold
}
