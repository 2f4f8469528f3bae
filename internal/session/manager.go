package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/pthv11/-pension-fund/internal/model"
)

// State is the observable auth session state
type State struct {
	User            *model.User
	Token           string
	IsAuthenticated bool
}

// Listener receives state snapshots. Notifications are synchronous, so a
// listener must not block.
type Listener func(State)

// Manager holds the client-side auth session: the current user, the bearer
// token and the subscriber list. It is constructed explicitly so tests and
// callers control its lifecycle.
type Manager struct {
	baseURL string
	client  *http.Client
	storage TokenStorage
	log     *zap.Logger

	// notifyMu serializes listener delivery, including the replay on
	// subscribe, so every listener observes state changes in order
	notifyMu sync.Mutex

	mu        sync.Mutex
	state     State
	listeners map[int]Listener
	nextID    int
}

// Option customizes a Manager
type Option func(*Manager)

// WithHTTPClient overrides the HTTP client used for API calls
func WithHTTPClient(c *http.Client) Option {
	return func(m *Manager) { m.client = c }
}

// WithLogger overrides the manager's logger
func WithLogger(log *zap.Logger) Option {
	return func(m *Manager) { m.log = log }
}

// NewManager creates a session manager talking to the API at baseURL and
// persisting the token in the given storage
func NewManager(baseURL string, storage TokenStorage, opts ...Option) *Manager {
	m := &Manager{
		baseURL:   baseURL,
		client:    http.DefaultClient,
		storage:   storage,
		log:       zap.NewNop(),
		listeners: make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

type authResponse struct {
	Message string      `json:"message"`
	Token   string      `json:"token"`
	User    *model.User `json:"user"`
}

// Initialize restores the session from a previously persisted token by
// resolving the current user. Any failure silently resets to the
// unauthenticated state and discards the stored token.
func (m *Manager) Initialize(ctx context.Context) {
	token, err := m.storage.Load()
	if err != nil {
		m.log.Debug("Token load failed", zap.Error(err))
		m.Logout()
		return
	}
	if token == "" {
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+"/api/auth/me", nil)
	if err != nil {
		m.Logout()
		return
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := m.client.Do(req)
	if err != nil {
		m.log.Debug("Session restore failed", zap.Error(err))
		m.Logout()
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		m.Logout()
		return
	}

	var body struct {
		User *model.User `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.User == nil {
		m.Logout()
		return
	}

	m.setState(State{User: body.User, Token: token, IsAuthenticated: true})
}

// Subscribe registers a listener and immediately invokes it with the current
// state, so late subscribers are never out of sync. The replay happens under
// the delivery lock, so a concurrent state change cannot reach the listener
// before its replay. The returned function unsubscribes this listener without
// affecting others.
func (m *Manager) Subscribe(l Listener) func() {
	m.notifyMu.Lock()
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = l
	current := m.state
	m.mu.Unlock()

	l(current)
	m.notifyMu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

// State returns a snapshot of the current session state
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Login authenticates with the server, persists the returned token and moves
// to the authenticated state. On any failure the state is left unchanged and
// the returned error carries a human-readable message.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	payload := map[string]string{"email": email, "password": password}
	data, err := m.post(ctx, "/api/auth/login", payload)
	if err != nil {
		return err
	}

	if err := m.storage.Save(data.Token); err != nil {
		m.log.Warn("Failed to persist token", zap.Error(err))
	}
	m.setState(State{User: data.User, Token: data.Token, IsAuthenticated: true})
	return nil
}

// RegisterFields is the registration payload
type RegisterFields struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
}

// Register creates an account and moves to the authenticated state. The
// server always assigns the new account a non-admin role.
func (m *Manager) Register(ctx context.Context, fields RegisterFields) error {
	data, err := m.post(ctx, "/api/auth/register", fields)
	if err != nil {
		return err
	}

	if err := m.storage.Save(data.Token); err != nil {
		m.log.Warn("Failed to persist token", zap.Error(err))
	}
	m.setState(State{User: data.User, Token: data.Token, IsAuthenticated: true})
	return nil
}

// Logout clears the persisted token and resets to the unauthenticated state.
// Always succeeds synchronously; no server call is needed because tokens are
// stateless.
func (m *Manager) Logout() {
	if err := m.storage.Clear(); err != nil {
		m.log.Warn("Failed to clear token storage", zap.Error(err))
	}
	m.setState(State{})
}

// AuthHeaders returns the authorization header for outgoing requests, empty
// when unauthenticated
func (m *Manager) AuthHeaders() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.state.IsAuthenticated || m.state.Token == "" {
		return map[string]string{}
	}
	return map[string]string{
		"Authorization": "Bearer " + m.state.Token,
		"Content-Type":  "application/json",
	}
}

// post sends a JSON request and decodes the auth response. Non-2xx statuses
// and unparseable bodies become errors with a human-readable message.
func (m *Manager) post(ctx context.Context, path string, payload interface{}) (*authResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("server unavailable: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read server response: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty response from server")
	}

	var data authResponse
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("malformed response from server")
	}

	if resp.StatusCode != http.StatusOK {
		if data.Message != "" {
			return nil, fmt.Errorf("%s", data.Message)
		}
		return nil, fmt.Errorf("request failed with status %d", resp.StatusCode)
	}

	return &data, nil
}

// setState replaces the state and synchronously notifies every subscriber
// with the new snapshot. Listeners run outside the state lock so they may
// query the manager, but state-changing calls from inside a listener would
// deadlock on the delivery lock and must happen on another goroutine.
func (m *Manager) setState(next State) {
	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()

	m.mu.Lock()
	m.state = next
	snapshot := make([]Listener, 0, len(m.listeners))
	for _, l := range m.listeners {
		snapshot = append(snapshot, l)
	}
	m.mu.Unlock()

	for _, l := range snapshot {
		l(next)
	}
}
