package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"windhager_gateway/internal/windhager"
)

func TestGetEcoDuration(t *testing.T) {
	mon := &mockMonitoring{ecoMinutes: 180}
	r := newTestRouter(authedService(&mockClimate{}, mon))

	w := doJSON(t, r, http.MethodGet, "/api/v1/settings/eco-duration", "tok", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%s", w.Code, w.Body.String())
	}
	var out struct {
		Minutes int `json:"minutes"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Minutes != 180 {
		t.Fatalf("minutes = %d, want 180", out.Minutes)
	}
}

func TestSetEcoDuration(t *testing.T) {
	mon := &mockMonitoring{ecoMinutes: 180}
	r := newTestRouter(authedService(&mockClimate{}, mon))

	w := doJSON(t, r, http.MethodPut, "/api/v1/settings/eco-duration", "tok", `{"minutes": 90}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%s", w.Code, w.Body.String())
	}
	var out struct {
		Minutes int `json:"minutes"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Minutes != 90 || mon.lastSetEco != 90 {
		t.Fatalf("minutes = %d (service saw %d), want 90", out.Minutes, mon.lastSetEco)
	}
}

func TestSetEcoDuration_Rejected(t *testing.T) {
	mon := &mockMonitoring{ecoMinutes: 180, setEcoErr: windhager.ErrInvalidDuration}
	r := newTestRouter(authedService(&mockClimate{}, mon))

	w := doJSON(t, r, http.MethodPut, "/api/v1/settings/eco-duration", "tok", `{"minutes": -5}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400; body=%s", w.Code, w.Body.String())
	}
	if mon.ecoMinutes != 180 {
		t.Fatalf("rejected update must keep the prior value, got %d", mon.ecoMinutes)
	}
}

func TestSetEcoDuration_BadBody(t *testing.T) {
	r := newTestRouter(authedService(&mockClimate{}, &mockMonitoring{}))

	// binding:"required" also rejects an explicit zero.
	for _, body := range []string{``, `{}`, `{"minutes": 0}`, `{"minutes": "abc"}`} {
		w := doJSON(t, r, http.MethodPut, "/api/v1/settings/eco-duration", "tok", body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("body %q: status = %d, want 400", body, w.Code)
		}
	}
}
