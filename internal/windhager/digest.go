package windhager

import (
	"crypto/md5"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"strings"
	"sync"
)

// ErrAuth is returned when the device keeps challenging after the handshake
// retry, i.e. credentials were rejected.
var ErrAuth = errors.New("digest authentication failed")

var errNoChallenge = errors.New("no digest challenge negotiated")

// challenge holds the parameters of a WWW-Authenticate: Digest header.
type challenge struct {
	realm     string
	nonce     string
	opaque    string
	qop       string
	algorithm string
}

// digestSession computes RFC 7616 digest credentials for one device
// connection. Challenge state and the nonce counter are shared by every
// request going through the client, so all access is mutex-guarded; the
// handshake itself is driven by the client's request loop.
type digestSession struct {
	username string
	password string

	mu sync.Mutex
	ch *challenge
	nc uint32
}

func newDigestSession(username, password string) *digestSession {
	return &digestSession{username: username, password: password}
}

// established reports whether a challenge has been negotiated.
func (s *digestSession) established() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ch != nil
}

// acceptChallenge parses a WWW-Authenticate header and resets the session
// to the new nonce.
func (s *digestSession) acceptChallenge(header string) error {
	ch, err := parseChallenge(header)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ch = ch
	s.nc = 0
	return nil
}

// authorization builds the Authorization header value for one request,
// incrementing the per-session nonce counter.
func (s *digestSession) authorization(method, uri string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ch == nil {
		return "", errNoChallenge
	}
	s.nc++

	h, algorithm, err := hasherFor(s.ch.algorithm)
	if err != nil {
		return "", err
	}

	cnonce, err := newCnonce()
	if err != nil {
		return "", err
	}
	nc := fmt.Sprintf("%08x", s.nc)

	ha1 := hashFields(h, s.username, s.ch.realm, s.password)
	if strings.HasSuffix(algorithm, "-sess") {
		ha1 = hashFields(h, ha1, s.ch.nonce, cnonce)
	}
	ha2 := hashFields(h, method, uri)

	var response string
	qop := pickQop(s.ch.qop)
	if qop == "" {
		response = hashFields(h, ha1, s.ch.nonce, ha2)
	} else {
		response = hashFields(h, ha1, s.ch.nonce, nc, cnonce, qop, ha2)
	}

	var b strings.Builder
	fmt.Fprintf(&b, `Digest username=%q, realm=%q, nonce=%q, uri=%q, response=%q`,
		s.username, s.ch.realm, s.ch.nonce, uri, response)
	fmt.Fprintf(&b, `, algorithm=%s`, algorithm)
	if qop != "" {
		fmt.Fprintf(&b, `, qop=%s, nc=%s, cnonce=%q`, qop, nc, cnonce)
	}
	if s.ch.opaque != "" {
		fmt.Fprintf(&b, `, opaque=%q`, s.ch.opaque)
	}
	return b.String(), nil
}

// hasherFor maps a challenge algorithm to its hash constructor. The RC7030
// announces MD5; SHA-256 is accepted for spec compliance.
func hasherFor(algorithm string) (func() hash.Hash, string, error) {
	switch strings.ToUpper(algorithm) {
	case "", "MD5":
		return md5.New, "MD5", nil
	case "MD5-SESS":
		return md5.New, "MD5-sess", nil
	case "SHA-256":
		return sha256.New, "SHA-256", nil
	case "SHA-256-SESS":
		return sha256.New, "SHA-256-sess", nil
	default:
		return nil, "", fmt.Errorf("unsupported digest algorithm %q", algorithm)
	}
}

// pickQop selects "auth" when offered; auth-int is not supported and an
// absent qop falls back to the legacy RFC 2069 computation.
func pickQop(offered string) string {
	for _, q := range strings.Split(offered, ",") {
		if strings.TrimSpace(q) == "auth" {
			return "auth"
		}
	}
	return ""
}

func hashFields(newHash func() hash.Hash, fields ...string) string {
	h := newHash()
	h.Write([]byte(strings.Join(fields, ":")))
	return hex.EncodeToString(h.Sum(nil))
}

func newCnonce() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate cnonce: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// parseChallenge parses a `Digest k=v, k=v` header value. Values may be
// quoted (commas inside quotes belong to the value).
func parseChallenge(header string) (*challenge, error) {
	const prefix = "Digest "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return nil, fmt.Errorf("not a digest challenge: %q", header)
	}

	ch := &challenge{}
	for _, kv := range splitParams(header[len(prefix):]) {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		v = strings.Trim(strings.TrimSpace(v), `"`)
		switch strings.ToLower(strings.TrimSpace(k)) {
		case "realm":
			ch.realm = v
		case "nonce":
			ch.nonce = v
		case "opaque":
			ch.opaque = v
		case "qop":
			ch.qop = v
		case "algorithm":
			ch.algorithm = v
		}
	}
	if ch.nonce == "" {
		return nil, fmt.Errorf("digest challenge without nonce: %q", header)
	}
	return ch, nil
}

// splitParams splits on commas that are outside quoted strings.
func splitParams(s string) []string {
	var (
		out      []string
		start    int
		inQuotes bool
	)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			inQuotes = !inQuotes
		case ',':
			if !inQuotes {
				out = append(out, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	out = append(out, strings.TrimSpace(s[start:]))
	return out
}
