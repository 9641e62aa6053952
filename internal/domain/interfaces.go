package domain

import "context"

// FilterSource fetches filter metadata from the server
type FilterSource interface {
	FetchCategories(ctx context.Context) ([]FilterOption, error)
	FetchGenres(ctx context.Context) ([]FilterOption, error)
}

// Catalog is the read side of the media server
type Catalog interface {
	ListPopular(ctx context.Context, page int) (Page, error)
	ListLatest(ctx context.Context, page int) (Page, error)
	Search(ctx context.Context, page int, query string, filters SearchFilters) (Page, error)
	GetDetails(ctx context.Context, ref string) (CatalogEntry, error)
	ListEpisodes(ctx context.Context, ref string) ([]Episode, error)
}
