package models

import (
	"time"

	"github.com/google/uuid"
)

// Training labels
const (
	LabelAwayWin = 0.0
	LabelHomeWin = 1.0
)

// TrainingSample is one (features, label) pair drawn from chronologically
// ordered history. GameDate orders samples for temporal splits.
type TrainingSample struct {
	GameID   uuid.UUID `json:"game_id"`
	GameDate time.Time `json:"game_date"`
	Features []float64 `json:"features"`
	Label    float64   `json:"label"`
}

// IsHomeWin reports whether the sample is labeled as a home victory
func (s *TrainingSample) IsHomeWin() bool {
	return s.Label == LabelHomeWin
}
