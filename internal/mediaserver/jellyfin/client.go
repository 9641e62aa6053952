package jellyfin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/reel/internal/config"
	"github.com/mmcdole/reel/internal/domain"
)

const (
	// PageSize is the fixed number of items per listing page
	PageSize = 20

	defaultTimeout = 60 * time.Second
	episodeFields  = "DateCreated,OriginalTitle,SortName,Overview,MediaSources"
)

// Options configures a Client
type Options struct {
	BaseURL     string
	Credentials Credentials
	Device      domain.DeviceIdentity
	Store       domain.CredentialStore
	Transport   http.RoundTripper // nil uses http.DefaultTransport
	Timeout     time.Duration
	Labels      EpisodeLabels
	Logger      *slog.Logger
}

// Client is a catalog client for Jellyfin and Emby servers
type Client struct {
	baseURL    string
	auth       *Authenticator
	httpClient *http.Client
	labels     EpisodeLabels
	logger     *slog.Logger
}

// NewClient creates a new Jellyfin API client. The base URL is validated here
// so a malformed value never reaches the request pipeline.
func NewClient(opts Options) (*Client, error) {
	baseURL, err := config.ValidateServerURL(opts.BaseURL)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	auth := NewAuthenticator(baseURL, opts.Credentials, opts.Device, NewSession(opts.Store),
		&http.Client{Transport: base, Timeout: timeout}, logger)

	return &Client{
		baseURL: baseURL,
		auth:    auth,
		httpClient: &http.Client{
			Transport: newAuthTransport(base, auth),
			Timeout:   timeout,
		},
		labels: opts.Labels,
		logger: logger,
	}, nil
}

// Auth exposes the authenticator for explicit login and logout
func (c *Client) Auth() *Authenticator {
	return c.auth
}

// BaseURL returns the normalized server URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// getJSON performs a GET through the authenticated pipeline and decodes the body into dest
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, target string, dest any) error {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("jellyfin request", "method", http.MethodGet, "path", path, "query", query.Encode())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("jellyfin request failed", "path", path, "error", err)
		return unwrapClientError(req, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.TransportError{Op: http.MethodGet, URL: c.baseURL + path, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("jellyfin request error", "status", resp.StatusCode, "path", path)
		return &domain.APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return &domain.DecodeError{Target: target, Err: err}
	}
	return nil
}

// userID returns the session's user, logging in if needed
func (c *Client) userID(ctx context.Context) (string, error) {
	sess, err := c.auth.EnsureAuthenticated(ctx)
	if err != nil {
		return "", err
	}
	return sess.UserID, nil
}

// ListPopular is an unfiltered, unsorted search with no query
func (c *Client) ListPopular(ctx context.Context, page int) (domain.Page, error) {
	return c.Search(ctx, page, "", domain.SearchFilters{})
}

// ListLatest lists items by creation date then sort name, newest first
func (c *Client) ListLatest(ctx context.Context, page int) (domain.Page, error) {
	page = normalizePage(page)
	query := itemsQuery(page)
	query.Set("SortBy", "DateCreated,SortName")
	query.Set("SortOrder", "Descending")
	return c.fetchPage(ctx, page, query)
}

// Search lists Movie and Series items matching query and filters
func (c *Client) Search(ctx context.Context, page int, query string, filters domain.SearchFilters) (domain.Page, error) {
	page = normalizePage(page)
	return c.fetchPage(ctx, page, searchQuery(page, query, filters))
}

func (c *Client) fetchPage(ctx context.Context, page int, query url.Values) (domain.Page, error) {
	uid, err := c.userID(ctx)
	if err != nil {
		return domain.Page{}, err
	}

	var resp ItemsResponse
	if err := c.getJSON(ctx, "/Users/"+url.PathEscape(uid)+"/Items", query, "item list", &resp); err != nil {
		return domain.Page{}, err
	}

	entries := make([]domain.CatalogEntry, 0, len(resp.Items))
	for _, item := range resp.Items {
		entries = append(entries, MapEntry(MapItem(item), c.baseURL, uid))
	}

	return domain.Page{
		Items:      entries,
		TotalCount: resp.TotalRecordCount,
		Number:     page,
		Size:       PageSize,
	}, nil
}

// GetItem fetches a single item by reference
func (c *Client) GetItem(ctx context.Context, ref string) (domain.CatalogItem, error) {
	r, err := ParseRef(ref)
	if err != nil {
		return domain.CatalogItem{}, err
	}
	uid, err := c.userID(ctx)
	if err != nil {
		return domain.CatalogItem{}, err
	}

	var item Item
	path := "/Users/" + url.PathEscape(uid) + "/Items/" + url.PathEscape(r.ItemID)
	if err := c.getJSON(ctx, path, nil, "item", &item); err != nil {
		return domain.CatalogItem{}, err
	}
	return MapItem(item), nil
}

// GetDetails fetches an item and projects it into its listing view
func (c *Client) GetDetails(ctx context.Context, ref string) (domain.CatalogEntry, error) {
	item, err := c.GetItem(ctx, ref)
	if err != nil {
		return domain.CatalogEntry{}, err
	}
	return MapEntry(item, c.baseURL, c.auth.Session().UserID), nil
}

// ListEpisodeItems returns the playable items under ref in ascending
// (season, episode) order. Series and seasons use the episodes endpoint, box
// sets list their children, and anything else is a single playable item.
func (c *Client) ListEpisodeItems(ctx context.Context, ref string) ([]domain.CatalogItem, error) {
	r, err := ParseRef(ref)
	if err != nil {
		return nil, err
	}

	var items []domain.CatalogItem
	switch r.Kind {
	case domain.KindSeries, domain.KindSeason:
		query := url.Values{}
		query.Set("Fields", episodeFields)
		showID := r.ItemID
		if r.Kind == domain.KindSeason && r.SeriesID != "" {
			showID = r.SeriesID
			query.Set("SeasonId", r.ItemID)
		}

		var resp ItemsResponse
		if err := c.getJSON(ctx, "/Shows/"+url.PathEscape(showID)+"/Episodes", query, "episode list", &resp); err != nil {
			return nil, err
		}
		items = MapItems(resp.Items)

	case domain.KindBoxSet:
		uid, err := c.userID(ctx)
		if err != nil {
			return nil, err
		}
		query := url.Values{}
		query.Set("ParentId", r.ItemID)
		query.Set("Fields", episodeFields)

		var resp ItemsResponse
		if err := c.getJSON(ctx, "/Users/"+url.PathEscape(uid)+"/Items", query, "collection items", &resp); err != nil {
			return nil, err
		}
		items = MapItems(resp.Items)

	default:
		item, err := c.GetItem(ctx, ref)
		if err != nil {
			return nil, err
		}
		items = []domain.CatalogItem{item}
	}

	sortEpisodes(items)
	return items, nil
}

// ListEpisodes returns the episode views for ref
func (c *Client) ListEpisodes(ctx context.Context, ref string) ([]domain.Episode, error) {
	items, err := c.ListEpisodeItems(ctx, ref)
	if err != nil {
		return nil, err
	}

	uid := c.auth.Session().UserID
	episodes := make([]domain.Episode, 0, len(items))
	for _, item := range items {
		episodes = append(episodes, MapEpisode(item, c.baseURL, uid, c.labels))
	}
	return episodes, nil
}

// ResolvePlaybackSource returns the static stream for the item's first media
// source, or a zero PlaybackSource when it has none.
func (c *Client) ResolvePlaybackSource(ctx context.Context, ref string) (domain.PlaybackSource, error) {
	item, err := c.GetItem(ctx, ref)
	if err != nil {
		return domain.PlaybackSource{}, err
	}
	if len(item.MediaSources) == 0 {
		c.logger.Debug("item has no media source", "itemID", item.ID)
		return domain.PlaybackSource{}, nil
	}

	return domain.PlaybackSource{
		URL: fmt.Sprintf("%s/Videos/%s/stream?static=True", c.baseURL, url.PathEscape(item.ID)),
		Headers: map[string]string{
			"Authorization": BuildAuthHeader(c.auth.Device(), c.auth.Session().Token),
		},
	}, nil
}

// FetchCategories returns the user's library views
func (c *Client) FetchCategories(ctx context.Context) ([]domain.FilterOption, error) {
	uid, err := c.userID(ctx)
	if err != nil {
		return nil, err
	}

	var resp ItemsResponse
	if err := c.getJSON(ctx, "/Users/"+url.PathEscape(uid)+"/Views", nil, "views", &resp); err != nil {
		return nil, err
	}
	return itemsToOptions(resp.Items), nil
}

// FetchGenres returns the genres used by movies and series
func (c *Client) FetchGenres(ctx context.Context) ([]domain.FilterOption, error) {
	query := url.Values{}
	query.Set("Recursive", "true")
	query.Set("IncludeItemTypes", "Movie,Series")

	var resp ItemsResponse
	if err := c.getJSON(ctx, "/Genres", query, "genres", &resp); err != nil {
		return nil, err
	}
	return itemsToOptions(resp.Items), nil
}

// unwrapClientError strips the *url.Error added by http.Client so callers see
// the pipeline's own error types. Client-level timeouts become TransportErrors.
func unwrapClientError(req *http.Request, err error) error {
	var ue *url.Error
	if !errors.As(err, &ue) || ue.Err == nil {
		return err
	}
	inner := ue.Err

	var (
		te *domain.TransportError
		ae *domain.AuthenticationError
		de *domain.DecodeError
	)
	switch {
	case errors.As(inner, &te), errors.As(inner, &ae), errors.As(inner, &de):
		return inner
	case errors.Is(inner, context.Canceled):
		return inner
	default:
		u := *req.URL
		u.RawQuery = ""
		return &domain.TransportError{Op: req.Method, URL: u.String(), Err: inner}
	}
}

func itemsToOptions(items []Item) []domain.FilterOption {
	opts := make([]domain.FilterOption, 0, len(items))
	for _, item := range items {
		opts = append(opts, domain.FilterOption{Label: item.Name, Value: item.ID})
	}
	return opts
}

func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// itemsQuery is the base listing query shared by all pages
func itemsQuery(page int) url.Values {
	q := url.Values{}
	q.Set("StartIndex", strconv.Itoa((page-1)*PageSize))
	q.Set("Limit", strconv.Itoa(PageSize))
	q.Set("Recursive", "true")
	q.Set("IncludeItemTypes", "Movie,Series")
	q.Set("ImageTypeLimit", "1")
	q.Set("EnableImageTypes", "Primary")
	return q
}

func searchQuery(page int, term string, filters domain.SearchFilters) url.Values {
	q := itemsQuery(page)
	if strings.TrimSpace(term) != "" {
		q.Set("SearchTerm", term)
	}
	if filters.CategoryID != "" {
		q.Set("ParentId", filters.CategoryID)
	}
	if filters.Sort != nil {
		q.Set("SortBy", sortKey(filters.Sort.Field))
		if filters.Sort.Ascending {
			q.Set("SortOrder", "Ascending")
		} else {
			q.Set("SortOrder", "Descending")
		}
	}
	if len(filters.GenreIDs) > 0 {
		q.Set("GenreIds", strings.Join(filters.GenreIDs, ","))
	}
	return q
}

func sortKey(f domain.SortField) string {
	switch f {
	case domain.SortByDateAdded:
		return "DateCreated"
	case domain.SortByPremiereDate:
		return "ProductionYear"
	default:
		return "SortName"
	}
}

// sortEpisodes orders by season then episode index. A missing index counts as
// 0, so unnumbered items (specials) lead; ties keep server order.
func sortEpisodes(items []domain.CatalogItem) {
	index := func(p *int) int {
		if p == nil {
			return 0
		}
		return *p
	}
	sort.SliceStable(items, func(i, j int) bool {
		si, sj := index(items[i].ParentIndexNumber), index(items[j].ParentIndexNumber)
		if si != sj {
			return si < sj
		}
		return index(items[i].IndexNumber) < index(items[j].IndexNumber)
	})
}
