package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"

	"github.com/dk3682/muscle-avatar/internal/game"
	"github.com/dk3682/muscle-avatar/internal/models"
)

const maxImportBytes = 1 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleState returns the snapshot and drains notices. ?peek=1 leaves them
// for the player's view.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("peek") == "1" {
		writeJSON(w, http.StatusOK, s.game.Peek(r.Context()))
		return
	}
	writeJSON(w, http.StatusOK, s.game.Snapshot(r.Context()))
}

func (s *Server) handlePreviewGain(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var vals [3]float64
	for i, key := range []string{"formAcc", "repAcc", "formValue"} {
		v, err := strconv.ParseFloat(q.Get(key), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": key + " must be a number"})
			return
		}
		vals[i] = v
	}
	writeJSON(w, http.StatusOK, s.game.PreviewGain(vals[0], vals[1], vals[2]))
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.Catalog)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}

func (s *Server) handleXPTable(w http.ResponseWriter, r *http.Request) {
	n := 20
	if v := r.URL.Query().Get("levels"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > 500 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "levels must be between 1 and 500"})
			return
		}
		n = parsed
	}
	writeJSON(w, http.StatusOK, s.game.XPTable(n))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	data, err := s.game.Export(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="muscle-avatar-save.json"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *Server) handleChangeName(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	snap, err := s.game.ChangeName(r.Context(), req.Name)
	s.respond(w, snap, err)
}

func (s *Server) handleCycleAppearance(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Field string `json:"field"`
		Dir   int    `json:"dir"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Dir != 1 && req.Dir != -1 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "dir must be 1 or -1"})
		return
	}
	snap, err := s.game.CycleAppearance(r.Context(), req.Field, req.Dir)
	s.respond(w, snap, err)
}

func (s *Server) handleConfirmProfile(w http.ResponseWriter, r *http.Request) {
	snap, err := s.game.ConfirmProfile(r.Context())
	s.respond(w, snap, err)
}

func (s *Server) handleStartSet(w http.ResponseWriter, r *http.Request) {
	snap, err := s.game.StartSet(r.Context())
	s.respond(w, snap, err)
}

func (s *Server) handleSetForm(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Value *float64 `json:"value"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Value == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "value is required"})
		return
	}
	snap, err := s.game.SetForm(r.Context(), *req.Value)
	s.respond(w, snap, err)
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DT float64 `json:"dt"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	snap, err := s.game.Advance(r.Context(), req.DT)
	s.respond(w, snap, err)
}

func (s *Server) handleTap(w http.ResponseWriter, r *http.Request) {
	snap, err := s.game.Tap(r.Context())
	s.respond(w, snap, err)
}

func (s *Server) handleAcknowledge(w http.ResponseWriter, r *http.Request) {
	snap, err := s.game.Acknowledge(r.Context())
	s.respond(w, snap, err)
}

func (s *Server) handleAbandon(w http.ResponseWriter, r *http.Request) {
	snap, err := s.game.Abandon(r.Context())
	s.respond(w, snap, err)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Confirm bool `json:"confirm"`
	}
	// An empty body arms the reset.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("invalid JSON: %v", err)})
		return
	}
	outcome, snap, err := s.game.Reset(r.Context(), req.Confirm)
	if err != nil {
		s.log.Error("reset error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error(), "state": snap})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"outcome": outcome, "state": snap})
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "backup too large"})
		return
	}
	snap, err := s.game.Import(r.Context(), data)
	if err != nil && !isRejection(err) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error(), "state": snap})
		return
	}
	s.respond(w, snap, err)
}

// respond writes the snapshot, or the snapshot plus an error for rejected
// commands.
func (s *Server) respond(w http.ResponseWriter, snap game.Snapshot, err error) {
	if err == nil {
		writeJSON(w, http.StatusOK, snap)
		return
	}
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.log.Error("game error", "error", err)
	}
	writeJSON(w, status, map[string]any{"error": err.Error(), "state": snap})
}

func isRejection(err error) bool {
	return statusFor(err) == http.StatusConflict
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, game.ErrProfileLocked),
		errors.Is(err, game.ErrProfileNotLocked),
		errors.Is(err, game.ErrNoSetsLeft),
		errors.Is(err, game.ErrSessionActive),
		errors.Is(err, game.ErrNoSession),
		errors.Is(err, game.ErrWrongPhase),
		errors.Is(err, game.ErrServerFrames):
		return http.StatusConflict
	case errors.Is(err, models.ErrNameRequired),
		errors.Is(err, models.ErrUnknownField):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("invalid JSON: %v", err)})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
