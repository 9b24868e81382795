package windhager

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"

	"windhager_gateway/internal/logger"
	"windhager_gateway/internal/models"
)

// The RC7030 ships with a fixed API username; only the password is
// installation specific.
const defaultUsername = "USER"

const (
	apiLookupPath    = "/api/1.0/lookup"
	apiDatapointPath = "/api/1.0/datapoint"

	requestTimeout = 10 * time.Second
	writeRetries   = 2

	breakerFailureThreshold = 5
	breakerOpenFor          = 15 * time.Second
)

// Client talks to one Windhager controller. It owns the authenticated
// session (created lazily, recreated after Close), the loaded specification
// and the eco default duration cell.
type Client struct {
	host     string
	password string
	log      *logger.Logger

	spec    models.Specification
	eco     *EcoDuration
	breaker *gobreaker.CircuitBreaker

	mu      sync.Mutex
	httpc   *http.Client
	session *digestSession
}

// NewClient loads the specification and prepares a client for the given
// device host. No network I/O happens until the first lookup or write.
func NewClient(host, password, specPath string, log *logger.Logger) *Client {
	spec := LoadSpec(specPath, log)
	return &Client{
		host:     host,
		password: password,
		log:      log,
		spec:     spec,
		eco:      NewEcoDuration(spec.EcoDefaultDurationMinutes, log),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "rc7030",
			Timeout: breakerOpenFor,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= breakerFailureThreshold
			},
			// A per-point answer still proves the device is reachable; only
			// transport and auth failures count toward opening.
			IsSuccessful: func(err error) bool {
				var pe *pointError
				return err == nil || errors.As(err, &pe)
			},
		}),
	}
}

// Spec returns the loaded read-only specification.
func (c *Client) Spec() models.Specification { return c.spec }

// EcoDuration returns the shared eco/comfort default duration cell.
func (c *Client) EcoDuration() *EcoDuration { return c.eco }

// Host returns the configured device host.
func (c *Client) Host() string { return c.host }

// ensureSession lazily creates the HTTP connection pool and digest session.
func (c *Client) ensureSession() (*http.Client, *digestSession) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.httpc == nil {
		c.httpc = &http.Client{Timeout: requestTimeout}
		c.session = newDigestSession(defaultUsername, c.password)
	}
	return c.httpc, c.session
}

// Close tears down the session. Safe to call when none exists; the next
// lookup or write re-establishes one.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.httpc != nil {
		c.httpc.CloseIdleConnections()
		c.httpc = nil
		c.session = nil
	}
}

// request performs one authenticated request. The digest handshake is
// hidden from callers: a challenged request is retried once with computed
// credentials, and a second challenge surfaces ErrAuth.
func (c *Client) request(ctx context.Context, method, url string, body []byte) (*http.Response, error) {
	httpc, session := c.ensureSession()

	resp, err := c.send(ctx, httpc, session, method, url, body, session.established())
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	// Challenged: negotiate (or renegotiate after a stale nonce) and retry.
	header := resp.Header.Get("WWW-Authenticate")
	drain(resp)
	if err := session.acceptChallenge(header); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuth, err)
	}

	resp, err = c.send(ctx, httpc, session, method, url, body, true)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		drain(resp)
		return nil, ErrAuth
	}
	return resp, nil
}

// send issues a single HTTP round trip, attaching digest credentials when
// the session has a negotiated challenge.
func (c *Client) send(ctx context.Context, httpc *http.Client, session *digestSession, method, url string, body []byte, withAuth bool) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", method, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if withAuth {
		auth, err := session.authorization(method, req.URL.RequestURI())
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", auth)
	}
	resp, err := httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, url, err)
	}
	return resp, nil
}

// pointError is a device-side answer about a single point: a non-2xx
// status or an undecodable body. It degrades that point only and never
// counts against the circuit breaker.
type pointError struct{ err error }

func (e *pointError) Error() string { return e.err.Error() }
func (e *pointError) Unwrap() error { return e.err }

// LookupResult is the device's answer to a lookup. A missing value field
// is distinct from a sentinel value, so both fields are pointers.
type LookupResult struct {
	Value *string `json:"value"`
	Unit  *string `json:"unit"`
}

// Lookup fetches one point. Requests run through the circuit breaker so a
// dead device fails fast for the rest of a cycle instead of timing out on
// every OID.
func (c *Client) Lookup(ctx context.Context, oid string) (*LookupResult, error) {
	url := fmt.Sprintf("http://%s%s%s", c.host, apiLookupPath, oid)

	out, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.request(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		defer drain(resp)
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, &pointError{fmt.Errorf("lookup %s: device status %d", oid, resp.StatusCode)}
		}
		var lr LookupResult
		if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
			return nil, &pointError{fmt.Errorf("lookup %s: decode response: %w", oid, err)}
		}
		return &lr, nil
	})
	if err != nil {
		return nil, err
	}
	return out.(*LookupResult), nil
}

// Update writes one datapoint. Unlike lookups there is no safe degraded
// outcome, so transient transport failures are retried with exponential
// backoff and the final error is surfaced to the caller.
func (c *Client) Update(ctx context.Context, oid, value string) error {
	payload, err := json.Marshal(struct {
		OID   string `json:"OID"`
		Value string `json:"value"`
	}{OID: oid, Value: value})
	if err != nil {
		return fmt.Errorf("encode datapoint payload: %w", err)
	}
	url := fmt.Sprintf("http://%s%s", c.host, apiDatapointPath)

	op := func() error {
		resp, err := c.request(ctx, http.MethodPut, url, payload)
		if err != nil {
			if errors.Is(err, ErrAuth) {
				return backoff.Permanent(err)
			}
			return err
		}
		defer drain(resp)
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("update %s: device status %d", oid, resp.StatusCode)
		}
		return nil
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), writeRetries), ctx)
	if err := backoff.Retry(op, bo); err != nil {
		c.log.Errorw("datapoint write failed", "oid", oid, "value", value, "err", err)
		return err
	}
	c.log.Debugw("datapoint written", "oid", oid, "value", value)
	return nil
}

// drain discards and closes a response body so the connection can be
// reused.
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
