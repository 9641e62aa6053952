package jellyfin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/mmcdole/reel/internal/domain"
	"golang.org/x/sync/singleflight"
)

const (
	loginPath     = "/Users/AuthenticateByName"
	loginFlightID = "login"
)

// Credentials is the username/password pair used for AuthenticateByName
type Credentials struct {
	Username string
	Password string
}

// LoadDeviceIdentity builds the device identity, generating and persisting a
// device id on first use. An empty deviceName falls back to the hostname.
func LoadDeviceIdentity(store domain.CredentialStore, clientName, version, deviceName string) (domain.DeviceIdentity, error) {
	if deviceName == "" {
		if host, err := os.Hostname(); err == nil && host != "" {
			deviceName = host
		} else {
			deviceName = "Unknown"
		}
	}

	id := domain.DeviceIdentity{
		ClientName: clientName,
		Version:    version,
		DeviceName: deviceName,
	}

	if store != nil {
		if existing, ok := store.GetString(domain.KeyDeviceID); ok && existing != "" {
			id.DeviceID = existing
			return id, nil
		}
	}

	id.DeviceID = newDeviceID()
	if store != nil {
		if err := store.SetString(domain.KeyDeviceID, id.DeviceID); err != nil {
			return id, fmt.Errorf("failed to persist device id: %w", err)
		}
	}
	return id, nil
}

// newDeviceID returns a random 16-character hex token
func newDeviceID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}

// BuildAuthHeader constructs the Authorization header value. Token is omitted when empty.
func BuildAuthHeader(device domain.DeviceIdentity, token string) string {
	params := [][2]string{
		{"Client", device.ClientName},
		{"Version", device.Version},
		{"DeviceId", device.DeviceID},
		{"Device", device.DeviceName},
	}
	if token != "" {
		params = append(params, [2]string{"Token", token})
	}

	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = fmt.Sprintf(`%s="%s"`, p[0], encodeHeaderValue(p[1]))
	}
	return "MediaBrowser " + strings.Join(parts, ", ")
}

// encodeHeaderValue collapses whitespace then form-encodes the value
func encodeHeaderValue(v string) string {
	return url.QueryEscape(strings.Join(strings.Fields(v), " "))
}

// Authenticator performs logins and hands out the current session. All logins,
// proactive or in response to a 401, share one single-flight key.
type Authenticator struct {
	baseURL    string
	creds      Credentials
	device     domain.DeviceIdentity
	session    *Session
	httpClient *http.Client
	logger     *slog.Logger

	flight singleflight.Group
}

// NewAuthenticator creates an authenticator. httpClient must not route through
// the authenticated transport.
func NewAuthenticator(baseURL string, creds Credentials, device domain.DeviceIdentity, session *Session, httpClient *http.Client, logger *slog.Logger) *Authenticator {
	if logger == nil {
		logger = slog.Default()
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Authenticator{
		baseURL:    strings.TrimRight(baseURL, "/"),
		creds:      creds,
		device:     device,
		session:    session,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Device returns the identity sent with every request
func (a *Authenticator) Device() domain.DeviceIdentity {
	return a.device
}

// Session returns the current session without logging in
func (a *Authenticator) Session() domain.Session {
	return a.session.Get()
}

// EnsureAuthenticated returns the current session, logging in first if the token is blank
func (a *Authenticator) EnsureAuthenticated(ctx context.Context) (domain.Session, error) {
	if s := a.session.Get(); !s.IsBlank() {
		return s, nil
	}
	return a.refresh(ctx, "")
}

// ForceRefresh logs in again after rejectedToken got a 401. If another caller
// already replaced that token, the newer session is returned without a login.
func (a *Authenticator) ForceRefresh(ctx context.Context, rejectedToken string) (domain.Session, error) {
	return a.refresh(ctx, rejectedToken)
}

func (a *Authenticator) refresh(ctx context.Context, rejectedToken string) (domain.Session, error) {
	ch := a.flight.DoChan(loginFlightID, func() (any, error) {
		if cur := a.session.Get(); !cur.IsBlank() && cur.Token != rejectedToken {
			return cur, nil
		}
		// Detached so one caller giving up does not fail the others sharing this login
		return a.Login(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return domain.Session{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return domain.Session{}, res.Err
		}
		return res.Val.(domain.Session), nil
	}
}

// Login authenticates with the configured credentials and replaces the session
func (a *Authenticator) Login(ctx context.Context) (domain.Session, error) {
	reqURL := a.baseURL + loginPath

	bodyBytes, err := json.Marshal(AuthRequest{Username: a.creds.Username, Pw: a.creds.Password})
	if err != nil {
		return domain.Session{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return domain.Session{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", BuildAuthHeader(a.device, ""))

	a.logger.Info("jellyfin login", "url", reqURL, "username", a.creds.Username)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		a.logger.Error("jellyfin auth request failed", "error", err)
		return domain.Session{}, &domain.TransportError{Op: http.MethodPost, URL: reqURL, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Session{}, &domain.TransportError{Op: http.MethodPost, URL: reqURL, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		a.logger.Error("jellyfin auth error", "status", resp.StatusCode)
		return domain.Session{}, &domain.AuthenticationError{StatusCode: resp.StatusCode}
	}

	var authResp AuthResponse
	if err := json.Unmarshal(respBody, &authResp); err != nil {
		return domain.Session{}, &domain.DecodeError{Target: "auth response", Err: err}
	}
	if authResp.AccessToken == "" {
		return domain.Session{}, &domain.DecodeError{Target: "auth response", Err: fmt.Errorf("missing AccessToken")}
	}

	next := domain.Session{Token: authResp.AccessToken, UserID: authResp.SessionInfo.UserID}
	if next.UserID == "" {
		next.UserID = authResp.User.ID
	}
	if err := a.session.Set(next); err != nil {
		a.logger.Warn("failed to persist session", "error", err)
	}

	a.logger.Info("jellyfin login succeeded", "userID", next.UserID)
	return next, nil
}

// Logout forgets the current session locally
func (a *Authenticator) Logout() error {
	return a.session.Clear()
}
