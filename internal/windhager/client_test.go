// client_test.go
package windhager

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

const devicePassword = "123456"

type deviceWrite struct {
	OID   string `json:"OID"`
	Value string `json:"value"`
}

// fakeDevice is an httptest handler that behaves like the RC7030 web API:
// digest-authenticated lookups and datapoint writes, with hooks to rotate
// the nonce (stale-nonce path) and to fail requests.
type fakeDevice struct {
	mu     sync.Mutex
	nonce  string
	points map[string]string // oid -> raw JSON body of the lookup response

	writes       []deviceWrite
	challenges   int // 401s issued
	authorizedN  int // requests with valid credentials served
	failWritesN  int // fail this many authorized writes with 500 first
	rotateNonceN int // reject this many valid-but-stale requests first
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{nonce: "nonce-1", points: make(map[string]string)}
}

func (d *fakeDevice) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.rotateNonceN > 0 && r.Header.Get("Authorization") != "" {
		d.rotateNonceN--
		d.nonce = d.nonce + "x"
		d.challenge(w)
		return
	}

	if !d.authorized(r) {
		d.challenge(w)
		return
	}
	d.authorizedN++

	switch {
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/api/1.0/lookup"):
		oid := strings.TrimPrefix(r.URL.Path, "/api/1.0/lookup")
		body, ok := d.points[oid]
		if !ok {
			http.Error(w, "no such datapoint", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	case r.Method == http.MethodPut && r.URL.Path == "/api/1.0/datapoint":
		if d.failWritesN > 0 {
			d.failWritesN--
			http.Error(w, "busy", http.StatusInternalServerError)
			return
		}
		var wr deviceWrite
		if err := json.NewDecoder(r.Body).Decode(&wr); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		d.writes = append(d.writes, wr)
		w.WriteHeader(http.StatusOK)
	default:
		http.NotFound(w, r)
	}
}

func (d *fakeDevice) challenge(w http.ResponseWriter) {
	d.challenges++
	w.Header().Set("WWW-Authenticate",
		fmt.Sprintf(`Digest realm="Windhager", nonce=%q, qop="auth", algorithm=MD5`, d.nonce))
	w.WriteHeader(http.StatusUnauthorized)
}

// authorized verifies the digest credentials the way the controller does:
// recompute the response with the client's own cnonce and nonce count.
func (d *fakeDevice) authorized(r *http.Request) bool {
	header := r.Header.Get("Authorization")
	const prefix = "Digest "
	if !strings.HasPrefix(header, prefix) {
		return false
	}
	p := make(map[string]string)
	for _, kv := range splitParams(header[len(prefix):]) {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		p[strings.TrimSpace(k)] = strings.Trim(strings.TrimSpace(v), `"`)
	}
	if p["nonce"] != d.nonce || p["username"] != defaultUsername {
		return false
	}
	want := expectedResponse(md5.New, p["username"], "Windhager", devicePassword,
		r.Method, p["uri"], d.nonce, p["nc"], p["cnonce"], p["qop"])
	return p["response"] == want
}

func (d *fakeDevice) writesSeen() []deviceWrite {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]deviceWrite, len(d.writes))
	copy(out, d.writes)
	return out
}

func (d *fakeDevice) counters() (challenges, authorized int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.challenges, d.authorizedN
}

// newTestClient wires a client against the fake device with the given
// specification document.
func newTestClient(t *testing.T, srv *httptest.Server, specJSON string) *Client {
	t.Helper()
	host := strings.TrimPrefix(srv.URL, "http://")
	c := NewClient(host, devicePassword, writeSpecFile(t, specJSON), testLogger())
	t.Cleanup(c.Close)
	return c
}

func TestClient_Lookup_HandshakeHiddenFromCaller(t *testing.T) {
	dev := newFakeDevice()
	dev.points["/1/6/0/3/0/0"] = `{"value": "21.5", "unit": "°C"}`
	srv := httptest.NewServer(dev)
	defer srv.Close()

	c := newTestClient(t, srv, `{}`)

	res, err := c.Lookup(context.Background(), "/1/6/0/3/0/0")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if res.Value == nil || *res.Value != "21.5" {
		t.Fatalf("value = %v, want 21.5", res.Value)
	}
	if res.Unit == nil || *res.Unit != "°C" {
		t.Fatalf("unit = %v, want °C", res.Unit)
	}

	// First lookup negotiates once; the session is then reused.
	if _, err := c.Lookup(context.Background(), "/1/6/0/3/0/0"); err != nil {
		t.Fatalf("second Lookup: %v", err)
	}
	challenges, authorized := dev.counters()
	if challenges != 1 {
		t.Errorf("device issued %d challenges, want 1", challenges)
	}
	if authorized != 2 {
		t.Errorf("device served %d authorized requests, want 2", authorized)
	}
}

func TestClient_Lookup_WrongPassword(t *testing.T) {
	dev := newFakeDevice()
	dev.points["/1/6/0/3/0/0"] = `{"value": "21.5", "unit": "°C"}`
	srv := httptest.NewServer(dev)
	defer srv.Close()

	host := strings.TrimPrefix(srv.URL, "http://")
	c := NewClient(host, "wrong", writeSpecFile(t, `{}`), testLogger())
	defer c.Close()

	_, err := c.Lookup(context.Background(), "/1/6/0/3/0/0")
	if !errors.Is(err, ErrAuth) {
		t.Fatalf("expected ErrAuth, got %v", err)
	}
}

func TestClient_Lookup_StaleNonceRenegotiates(t *testing.T) {
	dev := newFakeDevice()
	dev.points["/1/6/0/3/0/0"] = `{"value": "21.5", "unit": "°C"}`
	srv := httptest.NewServer(dev)
	defer srv.Close()

	c := newTestClient(t, srv, `{}`)

	if _, err := c.Lookup(context.Background(), "/1/6/0/3/0/0"); err != nil {
		t.Fatalf("first Lookup: %v", err)
	}

	// The device invalidates the nonce; the next lookup must renegotiate
	// transparently instead of surfacing an error.
	dev.mu.Lock()
	dev.rotateNonceN = 1
	dev.mu.Unlock()

	res, err := c.Lookup(context.Background(), "/1/6/0/3/0/0")
	if err != nil {
		t.Fatalf("Lookup after nonce rotation: %v", err)
	}
	if res.Value == nil || *res.Value != "21.5" {
		t.Fatalf("value = %v, want 21.5", res.Value)
	}
}

func TestClient_CloseThenReuse(t *testing.T) {
	dev := newFakeDevice()
	dev.points["/1/6/0/3/0/0"] = `{"value": "21.5", "unit": "°C"}`
	srv := httptest.NewServer(dev)
	defer srv.Close()

	c := newTestClient(t, srv, `{}`)

	if _, err := c.Lookup(context.Background(), "/1/6/0/3/0/0"); err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	c.Close()
	c.Close() // safe to call twice

	if _, err := c.Lookup(context.Background(), "/1/6/0/3/0/0"); err != nil {
		t.Fatalf("Lookup after Close: %v", err)
	}
	challenges, _ := dev.counters()
	if challenges != 2 {
		t.Errorf("device issued %d challenges, want 2 (one per session)", challenges)
	}
}

func TestClient_Update(t *testing.T) {
	dev := newFakeDevice()
	srv := httptest.NewServer(dev)
	defer srv.Close()

	c := newTestClient(t, srv, `{}`)

	if err := c.Update(context.Background(), "/1/6/0/0/0/0", "1"); err != nil {
		t.Fatalf("Update: %v", err)
	}
	writes := dev.writesSeen()
	if len(writes) != 1 {
		t.Fatalf("device saw %d writes, want 1", len(writes))
	}
	if writes[0].OID != "/1/6/0/0/0/0" || writes[0].Value != "1" {
		t.Fatalf("write payload wrong: %+v", writes[0])
	}
}

func TestClient_Update_RetriesTransientFailure(t *testing.T) {
	dev := newFakeDevice()
	dev.failWritesN = 1
	srv := httptest.NewServer(dev)
	defer srv.Close()

	c := newTestClient(t, srv, `{}`)

	if err := c.Update(context.Background(), "/1/6/0/2/0/0", "16.0"); err != nil {
		t.Fatalf("Update should succeed after a retry: %v", err)
	}
	writes := dev.writesSeen()
	if len(writes) != 1 {
		t.Fatalf("device recorded %d successful writes, want 1", len(writes))
	}
}

func TestClient_Update_AuthFailureIsNotRetried(t *testing.T) {
	dev := newFakeDevice()
	srv := httptest.NewServer(dev)
	defer srv.Close()

	host := strings.TrimPrefix(srv.URL, "http://")
	c := NewClient(host, "wrong", writeSpecFile(t, `{}`), testLogger())
	defer c.Close()

	err := c.Update(context.Background(), "/1/6/0/0/0/0", "1")
	if !errors.Is(err, ErrAuth) {
		t.Fatalf("expected ErrAuth, got %v", err)
	}
	// Two challenges belong to the single handshake attempt; a retried
	// write would have produced more.
	challenges, _ := dev.counters()
	if challenges != 2 {
		t.Errorf("device issued %d challenges, want 2 (no retry on auth failure)", challenges)
	}
}
