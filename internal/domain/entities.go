package domain

import (
	"fmt"
	"strings"
	"time"
)

// ItemKind distinguishes catalog item types as reported by the server
type ItemKind int

const (
	KindOther ItemKind = iota
	KindBoxSet
	KindMovie
	KindSeason
	KindSeries
	KindEpisode
)

// ParseItemKind maps the server's type string (case-insensitive) to an ItemKind
func ParseItemKind(s string) ItemKind {
	switch strings.ToLower(s) {
	case "boxset":
		return KindBoxSet
	case "movie":
		return KindMovie
	case "season":
		return KindSeason
	case "series":
		return KindSeries
	case "episode":
		return KindEpisode
	default:
		return KindOther
	}
}

func (k ItemKind) String() string {
	switch k {
	case KindBoxSet:
		return "BoxSet"
	case KindMovie:
		return "Movie"
	case KindSeason:
		return "Season"
	case KindSeries:
		return "Series"
	case KindEpisode:
		return "Episode"
	default:
		return "Other"
	}
}

// MediaSource is one playable file attached to an item
type MediaSource struct {
	ID   string
	Size *int64
}

// CatalogItem is the server's view of a media item, normalized
type CatalogItem struct {
	ID                    string
	Name                  string
	Kind                  ItemKind
	LocationKind          string // "Virtual" for placeholder seasons
	PrimaryImageTag       string
	SeriesID              string
	SeriesName            string
	SeriesPrimaryImageTag string
	SeasonID              string
	SeasonName            string
	Status                string // "Ended", "Continuing"
	Overview              string
	Genres                []string
	Studios               []string
	OriginalTitle         string
	SortTitle             string
	IndexNumber           *int
	ParentIndexNumber     *int
	PremiereDate          string
	CreatedDate           string
	RuntimeTicks          *int64
	MediaSources          []MediaSource

	OfficialRating  string
	CommunityRating *float64
	CriticRating    *float64
}

// IsVirtual reports whether the item is a placeholder with no files
func (c CatalogItem) IsVirtual() bool {
	return strings.EqualFold(c.LocationKind, "Virtual")
}

// Status is the publication status of a catalog entry
type Status int

const (
	StatusUnknown Status = iota
	StatusOngoing
	StatusCompleted
)

func (s Status) String() string {
	switch s {
	case StatusOngoing:
		return "Ongoing"
	case StatusCompleted:
		return "Completed"
	default:
		return "Unknown"
	}
}

// MarshalText renders the status by name in JSON and YAML output
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a status name as written by MarshalText
func (s *Status) UnmarshalText(text []byte) error {
	for _, st := range []Status{StatusUnknown, StatusOngoing, StatusCompleted} {
		if strings.EqualFold(string(text), st.String()) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", text)
}

// CatalogEntry is the uniform projection of an item for listings
type CatalogEntry struct {
	Ref         string `json:"ref" yaml:"ref"`
	Title       string `json:"title" yaml:"title"`
	Thumbnail   string `json:"thumbnail,omitempty" yaml:"thumbnail,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Status      Status `json:"status" yaml:"status"`
	Genre       string `json:"genre,omitempty" yaml:"genre,omitempty"`
	Author      string `json:"author,omitempty" yaml:"author,omitempty"`
}

// Episode is the uniform projection of a playable unit
type Episode struct {
	Name       string    `json:"name" yaml:"name"`
	Ref        string    `json:"ref" yaml:"ref"`
	Number     float64   `json:"number" yaml:"number"`
	UploadedAt time.Time `json:"uploadedAt" yaml:"uploadedAt"`
	Details    string    `json:"details,omitempty" yaml:"details,omitempty"`
}

// Page is one page of a paginated listing
type Page struct {
	Items      []CatalogEntry `json:"items" yaml:"items"`
	TotalCount int            `json:"totalCount" yaml:"totalCount"`
	Number     int            `json:"page" yaml:"page"`
	Size       int            `json:"pageSize" yaml:"pageSize"`
}

// HasNextPage reports whether items exist beyond this page
func (p Page) HasNextPage() bool {
	return p.Number*p.Size < p.TotalCount
}

// Session holds the credentials obtained from a successful login
type Session struct {
	Token  string
	UserID string
}

// IsBlank reports whether the session has no usable token
func (s Session) IsBlank() bool {
	return strings.TrimSpace(s.Token) == ""
}

// DeviceIdentity identifies this client installation to the server
type DeviceIdentity struct {
	ClientName string
	Version    string
	DeviceID   string
	DeviceName string
}

// PlaybackSource is a direct stream URL plus the headers needed to fetch it
type PlaybackSource struct {
	URL     string            `json:"url" yaml:"url"`
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
}

// IsZero reports whether no playable source was found
func (p PlaybackSource) IsZero() bool {
	return p.URL == ""
}
