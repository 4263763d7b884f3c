package models

import (
	"encoding/json"
	"time"
)

// Starting values for a fresh save.
const (
	StartingMuscle = 8.0
	SetsPerDay     = 3
)

// Progress is the durable simulation state.
type Progress struct {
	Chest     float64 `json:"chest" validate:"gte=0"`
	Shoulders float64 `json:"shoulders" validate:"gte=0"`
	Arms      float64 `json:"arms" validate:"gte=0"`
	XP        int     `json:"xp" validate:"gte=0"`
	Level     int     `json:"level" validate:"gte=1"`
	Fatigue   float64 `json:"fatigue" validate:"gte=0"`
	SetsLeft  int     `json:"setsLeft" validate:"gte=0,lte=3"`
	Streak    int     `json:"streak" validate:"gte=0"`
	TotalSets int     `json:"totalSets" validate:"gte=0"`

	// Day keys (YYYY-MM-DD); nil until first used.
	LastDay        *string  `json:"lastDay" validate:"omitempty,datetime=2006-01-02"`
	LastTrainedDay *string  `json:"lastTrainedDay" validate:"omitempty,datetime=2006-01-02"`
	TrainingLog    []string `json:"trainingLog" validate:"dive,datetime=2006-01-02"`
}

// DefaultProgress returns the state of a brand new avatar.
func DefaultProgress() Progress {
	return Progress{
		Chest:       StartingMuscle,
		Shoulders:   StartingMuscle,
		Arms:        StartingMuscle,
		Level:       1,
		SetsLeft:    SetsPerDay,
		TrainingLog: []string{},
	}
}

// SaveState is the single persisted record of a save slot.
type SaveState struct {
	ProfileLocked bool       `json:"profileLocked"`
	CreatedAt     *time.Time `json:"createdAt"`
	Profile       Profile    `json:"profile"`
	Progress      Progress   `json:"progress"`
}

// DefaultSaveState returns an unlocked profile with fresh progress.
func DefaultSaveState() *SaveState {
	return &SaveState{
		Profile:  DefaultProfile(),
		Progress: DefaultProgress(),
	}
}

// Clone returns a deep copy so snapshots handed to callers can't alias
// the engine's state.
func (s *SaveState) Clone() *SaveState {
	c := *s
	if s.CreatedAt != nil {
		t := *s.CreatedAt
		c.CreatedAt = &t
	}
	c.Progress.LastDay = cloneString(s.Progress.LastDay)
	c.Progress.LastTrainedDay = cloneString(s.Progress.LastTrainedDay)
	c.Progress.TrainingLog = append([]string{}, s.Progress.TrainingLog...)
	return &c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// Export renders the record the way players copy it for backup.
func (s *SaveState) Export() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}
