package domain

// SortField selects the server-side ordering of a listing
type SortField int

const (
	SortByName SortField = iota
	SortByDateAdded
	SortByPremiereDate
)

// SortSelection is a sort field plus direction
type SortSelection struct {
	Field     SortField
	Ascending bool
}

// SearchFilters narrows a catalog search. The zero value means no filtering.
type SearchFilters struct {
	CategoryID string         // "" selects all categories
	Sort       *SortSelection // nil leaves ordering to the server
	GenreIDs   []string
}

// FilterKind distinguishes the two kinds of filter metadata
type FilterKind int

const (
	FilterCategory FilterKind = iota
	FilterGenre
)

func (k FilterKind) String() string {
	if k == FilterGenre {
		return "genre"
	}
	return "category"
}

// FilterOption is a labelled filter value. The JSON shape is the durable blob format.
type FilterOption struct {
	Label string `json:"name" yaml:"name"`
	Value string `json:"id" yaml:"id"`
}

// AllCategories is the sentinel option meaning "no category filter"
var AllCategories = FilterOption{Label: "All", Value: ""}
