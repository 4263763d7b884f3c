package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/dk3682/muscle-avatar/internal/clock"
	"github.com/dk3682/muscle-avatar/internal/game"
	"github.com/dk3682/muscle-avatar/internal/session"
	"github.com/dk3682/muscle-avatar/internal/storage"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTestServer(t *testing.T, apiKey string) *Server {
	t.Helper()
	store := storage.NewProgressionStore(storage.NewMemory(), "default", discard)
	engine, err := game.New(context.Background(), store, game.Options{
		Clock:  &clock.Fixed{T: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)},
		Random: &session.Sequence{Values: []float64{0.5}},
	}, discard)
	if err != nil {
		t.Fatalf("game.New: %v", err)
	}
	return New(engine, apiKey, discard)
}

func do(t *testing.T, s *Server, method, path, body string, hdr ...string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decodeSnapshot(t *testing.T, rec *httptest.ResponseRecorder) game.Snapshot {
	t.Helper()
	var snap game.Snapshot
	if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	return snap
}

// TestHandleState verifies a fresh server reports an unlocked default profile.
func TestHandleState(t *testing.T) {
	s := newTestServer(t, "")
	rec := do(t, s, http.MethodGet, "/api/v1/state", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	snap := decodeSnapshot(t, rec)
	if snap.ProfileLocked {
		t.Error("profileLocked = true, want false")
	}
	if snap.Progress.SetsLeft != 3 || snap.Progress.Chest != 8 {
		t.Errorf("progress = %+v", snap.Progress)
	}
	if snap.XPToNext != 60 {
		t.Errorf("xpToNext = %d, want 60", snap.XPToNext)
	}
}

// TestProfileFlow verifies naming, cycling and locking over HTTP.
func TestProfileFlow(t *testing.T) {
	s := newTestServer(t, "")

	rec := do(t, s, http.MethodPut, "/api/v1/profile/name", `{"name":"Daichi"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("name status = %d, body %s", rec.Code, rec.Body)
	}
	rec = do(t, s, http.MethodPost, "/api/v1/profile/appearance", `{"field":"hairStyle","dir":-1}`)
	if snap := decodeSnapshot(t, rec); snap.Profile.HairStyle != 7 {
		t.Errorf("hairStyle = %d, want 7", snap.Profile.HairStyle)
	}
	rec = do(t, s, http.MethodPost, "/api/v1/profile/appearance", `{"field":"tattoo","dir":1}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown field status = %d, want 400", rec.Code)
	}
	rec = do(t, s, http.MethodPost, "/api/v1/profile/appearance", `{"field":"eyes","dir":3}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad dir status = %d, want 400", rec.Code)
	}

	rec = do(t, s, http.MethodPost, "/api/v1/profile/confirm", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("confirm status = %d, body %s", rec.Code, rec.Body)
	}
	snap := decodeSnapshot(t, rec)
	if !snap.ProfileLocked || len(snap.Notices) == 0 {
		t.Errorf("snapshot = %+v", snap)
	}

	rec = do(t, s, http.MethodPut, "/api/v1/profile/name", `{"name":"Other"}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("rename after lock status = %d, want 409", rec.Code)
	}
}

// TestConfirmWithoutName verifies an empty name is a 400.
func TestConfirmWithoutName(t *testing.T) {
	s := newTestServer(t, "")
	rec := do(t, s, http.MethodPost, "/api/v1/profile/confirm", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

// TestSetFlow plays a whole set through the HTTP surface.
func TestSetFlow(t *testing.T) {
	s := newTestServer(t, "")
	do(t, s, http.MethodPut, "/api/v1/profile/name", `{"name":"Daichi"}`)
	do(t, s, http.MethodPost, "/api/v1/profile/confirm", "")

	rec := do(t, s, http.MethodPost, "/api/v1/set/tap", "")
	if rec.Code != http.StatusConflict {
		t.Errorf("tap with no set status = %d, want 409", rec.Code)
	}

	rec = do(t, s, http.MethodPost, "/api/v1/set/start", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("start status = %d, body %s", rec.Code, rec.Body)
	}
	if snap := decodeSnapshot(t, rec); snap.Set == nil || snap.Set.Phase != session.PhaseForm {
		t.Fatalf("set = %+v, want form phase", snap.Set)
	}

	if rec := do(t, s, http.MethodPut, "/api/v1/set/form", `{}`); rec.Code != http.StatusBadRequest {
		t.Errorf("missing value status = %d, want 400", rec.Code)
	}
	do(t, s, http.MethodPut, "/api/v1/set/form", `{"value":62}`)
	for i := 0; i < 40; i++ {
		snap := decodeSnapshot(t, do(t, s, http.MethodPost, "/api/v1/set/advance", `{"dt":0.1}`))
		if snap.Set.Phase == session.PhaseReps {
			break
		}
	}
	do(t, s, http.MethodPost, "/api/v1/set/advance", `{"dt":0.25}`)
	do(t, s, http.MethodPost, "/api/v1/set/advance", `{"dt":0.1}`)

	var snap game.Snapshot
	for i := 0; i < session.RepsPerSet; i++ {
		rec = do(t, s, http.MethodPost, "/api/v1/set/tap", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("tap %d status = %d", i, rec.Code)
		}
		snap = decodeSnapshot(t, rec)
	}
	if snap.Set.Phase != session.PhaseResult || snap.Set.Result == nil {
		t.Fatalf("set = %+v, want result", snap.Set)
	}
	if snap.Progress.SetsLeft != 2 {
		t.Errorf("setsLeft = %d, want 2", snap.Progress.SetsLeft)
	}

	rec = do(t, s, http.MethodPost, "/api/v1/set/ack", "")
	if snap := decodeSnapshot(t, rec); snap.Set != nil {
		t.Error("set should be cleared")
	}
	if rec := do(t, s, http.MethodDelete, "/api/v1/set", ""); rec.Code != http.StatusConflict {
		t.Errorf("abandon with no set status = %d, want 409", rec.Code)
	}
}

// TestInvalidJSON verifies malformed bodies are rejected before reaching the game.
func TestInvalidJSON(t *testing.T) {
	s := newTestServer(t, "")
	rec := do(t, s, http.MethodPut, "/api/v1/profile/name", `{"name":`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

// TestResetOutcomes verifies the armed then done sequence.
func TestResetOutcomes(t *testing.T) {
	s := newTestServer(t, "")
	do(t, s, http.MethodPut, "/api/v1/profile/name", `{"name":"Daichi"}`)
	do(t, s, http.MethodPost, "/api/v1/profile/confirm", "")

	var resp struct {
		Outcome game.ResetOutcome `json:"outcome"`
		State   game.Snapshot     `json:"state"`
	}
	rec := do(t, s, http.MethodPost, "/api/v1/reset", "")
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp.Outcome != game.ResetArmed {
		t.Errorf("outcome = %q, want armed", resp.Outcome)
	}

	rec = do(t, s, http.MethodPost, "/api/v1/reset", `{"confirm":true}`)
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp.Outcome != game.ResetDone {
		t.Errorf("outcome = %q, want done", resp.Outcome)
	}
	if resp.State.ProfileLocked {
		t.Error("profile still locked after reset")
	}
}

// TestResetChunkedEmptyBody verifies a bare arm request without a
// Content-Length still arms instead of failing to decode.
func TestResetChunkedEmptyBody(t *testing.T) {
	s := newTestServer(t, "")
	do(t, s, http.MethodPut, "/api/v1/profile/name", `{"name":"Daichi"}`)
	do(t, s, http.MethodPost, "/api/v1/profile/confirm", "")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reset", io.NopCloser(strings.NewReader("")))
	if req.ContentLength != -1 {
		t.Fatalf("content length = %d, want -1", req.ContentLength)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body)
	}
	var resp struct {
		Outcome game.ResetOutcome `json:"outcome"`
	}
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp.Outcome != game.ResetArmed {
		t.Errorf("outcome = %q, want armed", resp.Outcome)
	}

	if rec := do(t, s, http.MethodPost, "/api/v1/reset", `{"confirm":`); rec.Code != http.StatusBadRequest {
		t.Errorf("truncated body status = %d, want 400", rec.Code)
	}
}

// TestExportImport verifies a backup downloaded from one server restores into another.
func TestExportImport(t *testing.T) {
	a := newTestServer(t, "")
	do(t, a, http.MethodPut, "/api/v1/profile/name", `{"name":"Daichi"}`)
	do(t, a, http.MethodPost, "/api/v1/profile/confirm", "")

	rec := do(t, a, http.MethodGet, "/api/v1/export", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("export status = %d", rec.Code)
	}
	if !strings.Contains(rec.Header().Get("Content-Disposition"), "attachment") {
		t.Errorf("content-disposition = %q", rec.Header().Get("Content-Disposition"))
	}
	backup := rec.Body.String()

	b := newTestServer(t, "")
	rec = do(t, b, http.MethodPost, "/api/v1/import", backup)
	if rec.Code != http.StatusOK {
		t.Fatalf("import status = %d, body %s", rec.Code, rec.Body)
	}
	if snap := decodeSnapshot(t, rec); snap.Profile.Name != "Daichi" || !snap.ProfileLocked {
		t.Errorf("imported profile = %+v", snap.Profile)
	}

	rec = do(t, b, http.MethodPost, "/api/v1/import", `not json`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad import status = %d, want 400", rec.Code)
	}
}

// TestAPIKeyRequired verifies mutating routes need the key when one is set,
// while reads stay open.
func TestAPIKeyRequired(t *testing.T) {
	s := newTestServer(t, "secret")

	if rec := do(t, s, http.MethodGet, "/api/v1/state", ""); rec.Code != http.StatusOK {
		t.Errorf("state status = %d, want 200", rec.Code)
	}
	if rec := do(t, s, http.MethodPost, "/api/v1/set/start", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("no key status = %d, want 401", rec.Code)
	}
	if rec := do(t, s, http.MethodPost, "/api/v1/set/start", "", "X-API-Key", "wrong"); rec.Code != http.StatusForbidden {
		t.Errorf("wrong key status = %d, want 403", rec.Code)
	}
	rec := do(t, s, http.MethodPost, "/api/v1/set/start", "", "X-API-Key", "secret")
	if rec.Code != http.StatusConflict {
		t.Errorf("valid key status = %d, want 409 (profile not locked)", rec.Code)
	}
}

// TestCatalogAndXPTable verifies the read-only reference routes.
func TestCatalogAndXPTable(t *testing.T) {
	s := newTestServer(t, "")

	rec := do(t, s, http.MethodGet, "/api/v1/catalog", "")
	var catalog []struct {
		Field  string   `json:"field"`
		Values []string `json:"values"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&catalog); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if len(catalog) != 9 {
		t.Errorf("catalog fields = %d, want 9", len(catalog))
	}

	rec = do(t, s, http.MethodGet, "/api/v1/xp-table?levels=3", "")
	var table []struct {
		Level    int `json:"level"`
		XPToNext int `json:"xpToNext"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&table); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if len(table) != 3 || table[2].XPToNext != 104 {
		t.Errorf("xp table = %+v", table)
	}

	if rec := do(t, s, http.MethodGet, "/api/v1/xp-table?levels=0", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("levels=0 status = %d, want 400", rec.Code)
	}
}

// TestMountMetrics verifies the Prometheus endpoint serves game collectors.
func TestMountMetrics(t *testing.T) {
	s := newTestServer(t, "")
	s.MountMetrics("/metrics")
	do(t, s, http.MethodGet, "/healthz", "")

	rec := do(t, s, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "muscle_avatar_http_requests_total") {
		t.Error("metrics output missing muscle_avatar_http_requests_total")
	}
}

// TestSetFrontend verifies static files are served with an index fallback.
func TestSetFrontend(t *testing.T) {
	s := newTestServer(t, "")
	s.SetFrontend(fstest.MapFS{
		"index.html": {Data: []byte("<html>avatar</html>")},
		"app.js":     {Data: []byte("console.log(1)")},
	})

	rec := do(t, s, http.MethodGet, "/app.js", "")
	if !bytes.Contains(rec.Body.Bytes(), []byte("console.log")) {
		t.Errorf("app.js body = %q", rec.Body)
	}
	rec = do(t, s, http.MethodGet, "/profile", "")
	if !bytes.Contains(rec.Body.Bytes(), []byte("avatar")) {
		t.Errorf("fallback body = %q", rec.Body)
	}
}

// TestPreviewGain verifies the preview route parses its query and validates input.
func TestPreviewGain(t *testing.T) {
	s := newTestServer(t, "")
	rec := do(t, s, http.MethodGet, "/api/v1/preview-gain?formAcc=1&repAcc=1&formValue=30", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var res struct {
		LeakTarget string `json:"leakTarget"`
		XPGain     int    `json:"xpGain"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if res.LeakTarget != "arms" || res.XPGain != 48 {
		t.Errorf("preview = %+v, want arms/48", res)
	}

	for _, q := range []string{
		"formAcc=x",
		"formAcc=NaN&repAcc=1&formValue=60",
		"formAcc=1&repAcc=Inf&formValue=60",
		"formAcc=1&repAcc=1&formValue=-Inf",
	} {
		rec := do(t, s, http.MethodGet, "/api/v1/preview-gain?"+q, "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", q, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "must be a number") {
			t.Errorf("%s: body = %q", q, rec.Body)
		}
	}
}
