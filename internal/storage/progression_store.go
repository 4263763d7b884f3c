package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dk3682/muscle-avatar/internal/models"
)

// ProgressionStore persists the save record of a single slot.
type ProgressionStore struct {
	backend Backend
	slot    string
	log     *slog.Logger
}

// NewProgressionStore binds a backend to one save slot.
func NewProgressionStore(backend Backend, slot string, log *slog.Logger) *ProgressionStore {
	return &ProgressionStore{backend: backend, slot: slot, log: log}
}

// Slot returns the bound slot name.
func (s *ProgressionStore) Slot() string { return s.slot }

// Load reads the slot. A missing or unreadable record is reported as absent,
// never as an error.
func (s *ProgressionStore) Load(ctx context.Context) (*models.SaveState, bool) {
	data, err := s.backend.ReadSlot(ctx, s.slot)
	if errors.Is(err, ErrNotFound) {
		return nil, false
	}
	if err != nil {
		s.log.Warn("save load failed, starting fresh", "slot", s.slot, "error", err)
		return nil, false
	}

	st, err := Decode(data)
	if err != nil {
		s.log.Warn("save is corrupt, starting fresh", "slot", s.slot, "error", err)
		return nil, false
	}
	return st, true
}

// Save writes the full record.
func (s *ProgressionStore) Save(ctx context.Context, st *models.SaveState) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encoding save: %w", err)
	}
	return s.backend.WriteSlot(ctx, s.slot, data)
}

// Reset deletes the slot and returns a fresh record.
func (s *ProgressionStore) Reset(ctx context.Context) (*models.SaveState, error) {
	if err := s.backend.DeleteSlot(ctx, s.slot); err != nil {
		return nil, err
	}
	return models.DefaultSaveState(), nil
}

// Import replaces the slot with a previously exported document.
func (s *ProgressionStore) Import(ctx context.Context, data []byte) (*models.SaveState, error) {
	st, err := Decode(data)
	if err != nil {
		return nil, err
	}
	if err := st.Validate(); err != nil {
		return nil, err
	}
	if err := s.Save(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

// Decode parses a save document on top of the defaults, so records written
// before a field existed still load.
func Decode(data []byte) (*models.SaveState, error) {
	st := models.DefaultSaveState()
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(st); err != nil {
		return nil, fmt.Errorf("decoding save: %w", err)
	}
	normalize(st)
	return st, nil
}

func normalize(st *models.SaveState) {
	p := &st.Progress
	if p.Level < 1 {
		p.Level = 1
	}
	if p.XP < 0 {
		p.XP = 0
	}
	p.SetsLeft = min(max(p.SetsLeft, 0), models.SetsPerDay)
	p.Fatigue = max(p.Fatigue, 0)
	if p.TrainingLog == nil {
		p.TrainingLog = []string{}
	}
}
