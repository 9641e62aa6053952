package jellyfin

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/mmcdole/reel/internal/domain"
)

var errBodyNotReplayable = errors.New("request body cannot be replayed after token refresh")

// authTransport attaches the Authorization header to every request and
// replays a request once, with a fresh token, when the server answers 401.
type authTransport struct {
	base http.RoundTripper
	auth *Authenticator
}

func newAuthTransport(base http.RoundTripper, auth *Authenticator) *authTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &authTransport{base: base, auth: auth}
}

func isLoginRequest(req *http.Request) bool {
	return strings.Contains(req.URL.Path, "AuthenticateByName")
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if isLoginRequest(req) {
		resp, err := t.base.RoundTrip(req)
		if err != nil {
			return nil, t.transportError(req, err)
		}
		return resp, nil
	}

	sess, err := t.auth.EnsureAuthenticated(req.Context())
	if err != nil {
		return nil, err
	}

	resp, err := t.send(req, sess.Token, false)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}

	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	t.auth.logger.Info("token rejected, refreshing", "method", req.Method, "path", req.URL.Path)

	sess, err = t.auth.ForceRefresh(req.Context(), sess.Token)
	if err != nil {
		return nil, err
	}
	return t.send(req, sess.Token, true)
}

func (t *authTransport) send(req *http.Request, token string, replay bool) (*http.Response, error) {
	out := req.Clone(req.Context())
	if replay && req.Body != nil && req.Body != http.NoBody {
		if req.GetBody == nil {
			return nil, errBodyNotReplayable
		}
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		out.Body = body
	}
	out.Header.Set("Authorization", BuildAuthHeader(t.auth.device, token))

	resp, err := t.base.RoundTrip(out)
	if err != nil {
		return nil, t.transportError(req, err)
	}
	return resp, nil
}

func (t *authTransport) transportError(req *http.Request, err error) error {
	u := *req.URL
	u.RawQuery = ""
	return &domain.TransportError{Op: req.Method, URL: u.String(), Err: err}
}
