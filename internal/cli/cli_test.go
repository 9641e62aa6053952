package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/mmcdole/reel/internal/config"
	"github.com/mmcdole/reel/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mediaServer is a minimal Jellyfin stand-in
type mediaServer struct {
	*httptest.Server
	logins     atomic.Int32
	genreCalls atomic.Int32

	mu          sync.Mutex
	lastQueries map[string]string
}

func (ms *mediaServer) record(name string, r *http.Request) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.lastQueries[name] = r.URL.RawQuery
}

func (ms *mediaServer) query(name string) string {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.lastQueries[name]
}

func newMediaServer(t *testing.T) *mediaServer {
	t.Helper()
	ms := &mediaServer{lastQueries: map[string]string{}}
	mux := http.NewServeMux()

	mux.HandleFunc("POST /Users/AuthenticateByName", func(w http.ResponseWriter, r *http.Request) {
		ms.logins.Add(1)
		var body struct{ Username, Pw string }
		json.NewDecoder(r.Body).Decode(&body)
		if body.Username != "alice" || body.Pw != "pw" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `{"AccessToken":"tok","SessionInfo":{"UserId":"user-1"}}`)
	})
	mux.HandleFunc("GET /Users/user-1/Items", func(w http.ResponseWriter, r *http.Request) {
		ms.record("items", r)
		fmt.Fprint(w, `{"Items":[
			{"Id":"m1","Name":"Alien","Type":"Movie","Genres":["Horror"]},
			{"Id":"s1","Name":"Severance","Type":"Series","Status":"Continuing"}
		],"TotalRecordCount":45}`)
	})
	mux.HandleFunc("GET /Users/user-1/Items/m1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"Id":"m1","Name":"Alien","Type":"Movie","Overview":"In space.",
			"MediaSources":[{"Id":"ms1","Size":1500}]}`)
	})
	mux.HandleFunc("GET /Users/user-1/Items/s1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"Id":"s1","Name":"Severance","Type":"Series"}`)
	})
	mux.HandleFunc("GET /Shows/s1/Episodes", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"Items":[
			{"Id":"e2","Name":"Half Loop","Type":"Episode","ParentIndexNumber":1,"IndexNumber":2},
			{"Id":"e1","Name":"Good News About Hell","Type":"Episode","ParentIndexNumber":1,"IndexNumber":1}
		]}`)
	})
	mux.HandleFunc("GET /Users/user-1/Views", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"Items":[{"Id":"v1","Name":"Movies"},{"Id":"v2","Name":"Shows"}]}`)
	})
	mux.HandleFunc("GET /Genres", func(w http.ResponseWriter, r *http.Request) {
		ms.genreCalls.Add(1)
		fmt.Fprint(w, `{"Items":[{"Id":"g2","Name":"Drama"},{"Id":"g1","Name":"Crime"}]}`)
	})
	mux.HandleFunc("GET /System/Info/Public", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ProductName":"Jellyfin Server","ServerName":"den","Version":"10.9.0","Id":"x"}`)
	})

	ms.Server = httptest.NewServer(mux)
	t.Cleanup(ms.Close)
	return ms
}

type fakeLauncher struct {
	launched []domain.PlaybackSource
}

func (f *fakeLauncher) Launch(src domain.PlaybackSource) error {
	f.launched = append(f.launched, src)
	return nil
}

// harness runs commands against a config file in a temp dir
type harness struct {
	t        *testing.T
	cfgPath  string
	launcher *fakeLauncher
	password string
}

func newHarness(t *testing.T, serverURL string, password string) *harness {
	t.Helper()
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Server.URL = serverURL
	cfg.Server.Username = "alice"
	cfg.Server.Password = password
	cfg.Storage.Path = filepath.Join(dir, "data")
	cfg.Logging.File = filepath.Join(dir, "reel.log")

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, config.Save(cfg, path))
	return &harness{t: t, cfgPath: path, launcher: &fakeLauncher{}}
}

func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	a := &app{
		version: "test",
		newLauncher: func(config.PlayerConfig, *slog.Logger) launcher {
			return h.launcher
		},
		readPassword: func(string) (string, error) {
			if h.password == "" {
				return "", io.EOF
			}
			return h.password, nil
		},
	}
	cmd := a.rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(append([]string{"--config", h.cfgPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	a.closeStore()
	return out.String(), err
}

func TestPopularJSON(t *testing.T) {
	srv := newMediaServer(t)
	h := newHarness(t, srv.URL, "pw")

	out, err := h.run("popular", "--page", "2", "-o", "json")
	require.NoError(t, err)

	var page struct {
		Items       []domain.CatalogEntry `json:"items"`
		TotalCount  int                   `json:"totalCount"`
		Page        int                   `json:"page"`
		HasNextPage bool                  `json:"hasNextPage"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &page))
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 45, page.TotalCount)
	assert.Equal(t, 2, page.Page)
	assert.True(t, page.HasNextPage)
	assert.Equal(t, srv.URL+"/Users/user-1/Items/m1#movie", page.Items[0].Ref)
	assert.Contains(t, srv.query("items"), "StartIndex=20")
}

func TestPopularTextWithFilter(t *testing.T) {
	srv := newMediaServer(t)
	h := newHarness(t, srv.URL, "pw")

	out, err := h.run("popular", "--filter", "sev")
	require.NoError(t, err)

	assert.Contains(t, out, "Severance")
	assert.NotContains(t, out, "Alien")
	assert.Contains(t, out, "next: --page 2")
}

func TestSessionReusedAcrossInvocations(t *testing.T) {
	srv := newMediaServer(t)
	h := newHarness(t, srv.URL, "pw")

	_, err := h.run("latest")
	require.NoError(t, err)
	_, err = h.run("latest")
	require.NoError(t, err)

	assert.Equal(t, int32(1), srv.logins.Load())
	assert.Contains(t, srv.query("items"), "SortOrder=Descending")
}

func TestSearchResolvesFilterNames(t *testing.T) {
	srv := newMediaServer(t)
	h := newHarness(t, srv.URL, "pw")

	_, err := h.run("search", "alien", "--category", "movies", "--genre", "drama", "--genre", "g1",
		"--sort", "name", "--asc")
	require.NoError(t, err)

	q := srv.query("items")
	assert.Contains(t, q, "SearchTerm=alien")
	assert.Contains(t, q, "ParentId=v1")
	assert.Contains(t, q, "GenreIds=g2%2Cg1")
	assert.Contains(t, q, "SortBy=SortName")
	assert.Contains(t, q, "SortOrder=Ascending")
}

func TestSearchRejectsUnknownSort(t *testing.T) {
	srv := newMediaServer(t)
	h := newHarness(t, srv.URL, "pw")

	_, err := h.run("search", "--sort", "rating")
	assert.ErrorContains(t, err, "unknown sort")
}

func TestDetailsAndEpisodes(t *testing.T) {
	srv := newMediaServer(t)
	h := newHarness(t, srv.URL, "pw")

	out, err := h.run("details", srv.URL+"/Users/user-1/Items/m1#movie")
	require.NoError(t, err)
	assert.Contains(t, out, "Alien")
	assert.Contains(t, out, "In space.")

	out, err = h.run("episodes", srv.URL+"/Users/user-1/Items/s1#series", "-o", "yaml")
	require.NoError(t, err)
	first := strings.Index(out, "1 - Good News About Hell")
	second := strings.Index(out, "2 - Half Loop")
	require.NotEqual(t, -1, first)
	assert.Less(t, first, second)
}

func TestPlayLaunchesStream(t *testing.T) {
	srv := newMediaServer(t)
	h := newHarness(t, srv.URL, "pw")
	ref := srv.URL + "/Users/user-1/Items/m1#movie"

	out, err := h.run("play", ref, "--print")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/Videos/m1/stream?static=True\n", out)
	assert.Empty(t, h.launcher.launched)

	_, err = h.run("play", ref)
	require.NoError(t, err)
	require.Len(t, h.launcher.launched, 1)
	assert.Contains(t, h.launcher.launched[0].Headers["Authorization"], `Token="tok"`)
}

func TestPlayWithoutMediaFails(t *testing.T) {
	srv := newMediaServer(t)
	h := newHarness(t, srv.URL, "pw")

	_, err := h.run("play", srv.URL+"/Users/user-1/Items/s1#series")
	assert.ErrorContains(t, err, "no playable media")
	assert.Empty(t, h.launcher.launched)
}

func TestGenresCachedUntilCleared(t *testing.T) {
	srv := newMediaServer(t)
	h := newHarness(t, srv.URL, "pw")

	out, err := h.run("genres")
	require.NoError(t, err)
	assert.Less(t, strings.Index(out, "Crime"), strings.Index(out, "Drama"))

	_, err = h.run("genres")
	require.NoError(t, err)
	assert.Equal(t, int32(1), srv.genreCalls.Load())

	_, err = h.run("filters", "clear", "--kind", "genre")
	require.NoError(t, err)
	_, err = h.run("genres")
	require.NoError(t, err)
	assert.Equal(t, int32(2), srv.genreCalls.Load())

	_, err = h.run("filters", "clear", "--kind", "studio")
	assert.ErrorContains(t, err, "unknown filter kind")
}

func TestCategoriesStartWithAll(t *testing.T) {
	srv := newMediaServer(t)
	h := newHarness(t, srv.URL, "pw")

	out, err := h.run("categories", "-o", "json")
	require.NoError(t, err)

	var options []domain.FilterOption
	require.NoError(t, json.Unmarshal([]byte(out), &options))
	assert.Equal(t, domain.AllCategories, options[0])
	assert.Len(t, options, 3)
}

func TestLoginPromptsForPasswordAndLogout(t *testing.T) {
	srv := newMediaServer(t)
	h := newHarness(t, srv.URL, "")
	h.password = "pw"

	out, err := h.run("login")
	require.NoError(t, err)
	assert.Contains(t, out, "logged in")
	assert.Equal(t, int32(1), srv.logins.Load())

	_, err = h.run("logout")
	require.NoError(t, err)

	h.password = ""
	_, err = h.run("login")
	assert.Error(t, err)
}

func TestLoginWrongPassword(t *testing.T) {
	srv := newMediaServer(t)
	h := newHarness(t, srv.URL, "nope")

	_, err := h.run("login")
	assert.ErrorIs(t, err, domain.ErrAuthFailed)
}

func TestConfigSetURLWithProbe(t *testing.T) {
	srv := newMediaServer(t)
	h := newHarness(t, "", "pw")

	_, err := h.run("popular")
	assert.ErrorContains(t, err, "no server configured")

	_, err = h.run("config", "set-url", srv.URL+"/", "--probe")
	require.NoError(t, err)

	out, err := h.run("config", "show", "-o", "json")
	require.NoError(t, err)
	var shown struct {
		Server map[string]any `json:"server"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &shown))
	assert.Equal(t, srv.URL, shown.Server["url"])
	assert.Equal(t, "********", shown.Server["password"])

	raw, err := os.ReadFile(h.cfgPath)
	require.NoError(t, err)
	assert.Contains(t, string(raw), srv.URL)
}

func TestConfigSetURLRejectsBadURL(t *testing.T) {
	h := newHarness(t, "", "pw")

	_, err := h.run("config", "set-url", "ftp://media")
	var cfgErr *domain.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestConfigProbe(t *testing.T) {
	srv := newMediaServer(t)
	h := newHarness(t, srv.URL, "pw")

	out, err := h.run("config", "probe", "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "product: Jellyfin Server")
}

func TestUnknownOutputFormat(t *testing.T) {
	h := newHarness(t, "", "pw")

	_, err := h.run("genres", "-o", "xml")
	assert.ErrorContains(t, err, "unknown output format")
}
