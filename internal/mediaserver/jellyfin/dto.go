package jellyfin

// AuthRequest is the body of POST /Users/AuthenticateByName
type AuthRequest struct {
	Username string `json:"Username"`
	Pw       string `json:"Pw"`
}

// AuthResponse represents the response from Jellyfin's AuthenticateByName endpoint
type AuthResponse struct {
	AccessToken string      `json:"AccessToken"`
	SessionInfo SessionInfo `json:"SessionInfo"`
	User        User        `json:"User"`
	ServerID    string      `json:"ServerId"`
}

// SessionInfo carries the user the token was issued to
type SessionInfo struct {
	UserID string `json:"UserId"`
}

// User represents a Jellyfin user
type User struct {
	ID   string `json:"Id"`
	Name string `json:"Name"`
}

// SystemInfo represents the public system info from Jellyfin or Emby
type SystemInfo struct {
	ServerName  string `json:"ServerName"`
	Version     string `json:"Version"`
	ProductName string `json:"ProductName"`
	ID          string `json:"Id"`
}

// ItemsResponse represents a paginated list of items
type ItemsResponse struct {
	Items            []Item `json:"Items"`
	TotalRecordCount int    `json:"TotalRecordCount"`
	StartIndex       int    `json:"StartIndex"`
}

// Item represents a media item (movie, series, season, episode, box set, view, genre)
type Item struct {
	ID                    string        `json:"Id"`
	Name                  string        `json:"Name"`
	Type                  string        `json:"Type"`
	LocationType          string        `json:"LocationType,omitempty"` // "Virtual" for unreleased seasons
	CollectionType        string        `json:"CollectionType,omitempty"`
	ImageTags             ImageTags     `json:"ImageTags,omitempty"`
	SeriesID              string        `json:"SeriesId,omitempty"`
	SeriesName            string        `json:"SeriesName,omitempty"`
	SeriesPrimaryImageTag string        `json:"SeriesPrimaryImageTag,omitempty"`
	SeasonID              string        `json:"SeasonId,omitempty"`
	SeasonName            string        `json:"SeasonName,omitempty"`
	Status                string        `json:"Status,omitempty"`
	Overview              string        `json:"Overview,omitempty"`
	Genres                []string      `json:"Genres,omitempty"`
	Studios               []NameIDPair  `json:"Studios,omitempty"`
	OriginalTitle         string        `json:"OriginalTitle,omitempty"`
	SortName              string        `json:"SortName,omitempty"`
	IndexNumber           *int          `json:"IndexNumber,omitempty"`       // Episode number
	ParentIndexNumber     *int          `json:"ParentIndexNumber,omitempty"` // Season number
	PremiereDate          string        `json:"PremiereDate,omitempty"`
	DateCreated           string        `json:"DateCreated,omitempty"`
	RunTimeTicks          *int64        `json:"RunTimeTicks,omitempty"` // Duration in 100-nanosecond units
	MediaSources          []MediaSource `json:"MediaSources,omitempty"`
	OfficialRating        string        `json:"OfficialRating,omitempty"`
	CommunityRating       *float64      `json:"CommunityRating,omitempty"`
	CriticRating          *float64      `json:"CriticRating,omitempty"`
}

// ImageTags contains image tag IDs for various image types
type ImageTags struct {
	Primary string `json:"Primary,omitempty"`
}

// NameIDPair is used for studios and similar references
type NameIDPair struct {
	Name string `json:"Name"`
	ID   string `json:"Id,omitempty"`
}

// MediaSource represents a media source (file) for an item
type MediaSource struct {
	ID        string `json:"Id"`
	Size      *int64 `json:"Size,omitempty"`
	Container string `json:"Container,omitempty"`
}
