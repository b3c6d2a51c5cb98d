// Package crestron implements the core of a Crestron Home remote-control
// client: session lifecycle, authenticated request dispatch with batch
// outcome classification, and natural-language device resolution. The
// controller's REST API issues a session key valid for a bounded inactivity
// window; exactly one session exists at a time and every operation goes
// through it.
package crestron

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

const (
	// remoteSessionWindow is the controller's inactivity window for a
	// session key.
	remoteSessionWindow = 10 * time.Minute

	// sessionMargin is subtracted from the remote window so the local
	// validity check fails before the controller would reject the key,
	// avoiding a round trip that dies mid-flight.
	sessionMargin = time.Minute

	// SessionTimeout is the local validity window for a session key.
	SessionTimeout = remoteSessionWindow - sessionMargin

	authTokenHeader = "Crestron-RestAPI-AuthToken"
	authKeyHeader   = "Crestron-RestAPI-AuthKey"

	apiBasePath = "/cws/api"
)

// LoginInfo is the controller's response to a successful login exchange.
type LoginInfo struct {
	AuthKey string `json:"AuthKey"`
	Version string `json:"version"`
}

// SessionManager owns the single process-wide session: the controller host,
// the session key, and its issuance time. All fields are guarded by a mutex
// so a concurrent authenticate cannot produce a torn read (a fresh key paired
// with a stale timestamp) in a dispatcher running on another goroutine.
//
// There is no automatic refresh: once the window elapses, every authenticated
// operation fails locally until the caller authenticates again.
type SessionManager struct {
	client *http.Client

	mu       sync.Mutex
	host     string
	authKey  string
	issuedAt time.Time

	// now is swapped out by tests to drive expiry.
	now func() time.Time
}

// NewSessionManager creates a SessionManager that performs the login exchange
// through the given client. The client is shared with the Dispatcher so TLS
// settings and timeouts are configured once.
func NewSessionManager(client *http.Client) *SessionManager {
	return &SessionManager{
		client: client,
		now:    time.Now,
	}
}

// Authenticate performs the login exchange with the controller and, on
// success, stores the host, session key, and issuance time as the single
// process-wide session, overwriting any prior one. On failure it returns an
// *AuthError and leaves any existing session untouched, so a still-valid
// session survives a botched re-authentication.
func (m *SessionManager) Authenticate(ctx context.Context, host, authToken string) (LoginInfo, error) {
	url := fmt.Sprintf("https://%s%s/login", host, apiBasePath)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return LoginInfo{}, &AuthError{Host: host, Err: err}
	}
	req.Header.Set(authTokenHeader, authToken)

	resp, err := m.client.Do(req)
	if err != nil {
		return LoginInfo{}, &AuthError{Host: host, Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close on read

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return LoginInfo{}, &AuthError{Host: host, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return LoginInfo{}, &AuthError{
			Host: host,
			Err:  &RemoteError{StatusCode: resp.StatusCode, Body: string(body)},
		}
	}

	var info LoginInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return LoginInfo{}, &AuthError{Host: host, Err: fmt.Errorf("decode login response: %w", err)}
	}

	m.mu.Lock()
	m.host = host
	m.authKey = info.AuthKey
	m.issuedAt = m.now()
	m.mu.Unlock()

	return info, nil
}

// IsValid reports whether a session exists, has a key, and was issued less
// than SessionTimeout ago. The check is lazy; nothing expires sessions in the
// background. For a fixed issuance, validity only ever transitions from true
// to false.
func (m *SessionManager) IsValid() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.authKey == "" || m.issuedAt.IsZero() {
		return false
	}

	return m.now().Sub(m.issuedAt) < SessionTimeout
}

// Credentials returns an atomic snapshot of the host and session key, with
// ok reporting whether the session is currently valid. Dispatchers use this
// instead of separate reads so the pair is never torn.
func (m *SessionManager) Credentials() (host, authKey string, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.authKey == "" || m.issuedAt.IsZero() {
		return "", "", false
	}
	if m.now().Sub(m.issuedAt) >= SessionTimeout {
		return "", "", false
	}

	return m.host, m.authKey, true
}

// Invalidate clears the session key and issuance time. Idempotent. The host
// is kept so error messages can still name the controller.
func (m *SessionManager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.authKey = ""
	m.issuedAt = time.Time{}
}
