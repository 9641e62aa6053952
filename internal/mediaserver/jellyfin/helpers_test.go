package jellyfin

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/log"
	"github.com/stretchr/testify/require"
)

var testDevice = domain.DeviceIdentity{
	ClientName: "Reel",
	Version:    "1.0.0",
	DeviceID:   "0123456789abcdef",
	DeviceName: "test-box",
}

// mapStore is a CredentialStore without transactional multi-key writes
type mapStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMapStore(kv ...string) *mapStore {
	s := &mapStore{data: map[string]string{}}
	for i := 0; i+1 < len(kv); i += 2 {
		s.data[kv[i]] = kv[i+1]
	}
	return s
}

func (s *mapStore) GetString(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok
}

func (s *mapStore) SetString(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

// fakeServer answers logins with token-1, token-2, ... and hands every other
// request to handler.
type fakeServer struct {
	*httptest.Server
	logins     atomic.Int32
	requests   atomic.Int32
	loginDelay time.Duration
	loginCode  int
}

func newFakeServer(t *testing.T, handler http.HandlerFunc) *fakeServer {
	t.Helper()
	fs := &fakeServer{loginCode: http.StatusOK}
	fs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == loginPath {
			fs.handleLogin(w, r)
			return
		}
		fs.requests.Add(1)
		handler(w, r)
	}))
	t.Cleanup(fs.Close)
	return fs
}

func (fs *fakeServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	n := fs.logins.Add(1)
	if fs.loginDelay > 0 {
		time.Sleep(fs.loginDelay)
	}
	if fs.loginCode != http.StatusOK {
		w.WriteHeader(fs.loginCode)
		return
	}
	var body AuthRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Username != "alice" || body.Pw != "pw" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	json.NewEncoder(w).Encode(AuthResponse{
		AccessToken: fmt.Sprintf("token-%d", n),
		SessionInfo: SessionInfo{UserID: "user-1"},
	})
}

func newTestClient(t *testing.T, baseURL string, store domain.CredentialStore) *Client {
	t.Helper()
	if store == nil {
		store = newMapStore()
	}
	c, err := NewClient(Options{
		BaseURL:     baseURL,
		Credentials: Credentials{Username: "alice", Password: "pw"},
		Device:      testDevice,
		Store:       store,
		Labels:      EpisodeLabels{Template: DefaultEpisodeTemplate, Prefix: "", Details: []string{"Overview", "Size", "Runtime"}},
		Logger:      log.NullLogger(),
	})
	require.NoError(t, err)
	return c
}

// tokenOf extracts the Token value from an Authorization header
func tokenOf(r *http.Request) string {
	h := r.Header.Get("Authorization")
	i := strings.Index(h, `Token="`)
	if i < 0 {
		return ""
	}
	rest := h[i+len(`Token="`):]
	return rest[:strings.Index(rest, `"`)]
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func intPtr(v int) *int             { return &v }
func int64Ptr(v int64) *int64       { return &v }
func float64Ptr(v float64) *float64 { return &v }
