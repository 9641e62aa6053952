package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/search"
	"github.com/mmcdole/reel/internal/service"
	"github.com/spf13/cobra"
)

// listFunc fetches one page of a fixed listing
type listFunc func(ctx context.Context, page int) (domain.Page, error)

func (a *app) popularCmd() *cobra.Command {
	return a.listingCmd("popular", "List the catalog in server order", func(c domain.Catalog) listFunc {
		return c.ListPopular
	})
}

func (a *app) latestCmd() *cobra.Command {
	return a.listingCmd("latest", "List the most recently added items", func(c domain.Catalog) listFunc {
		return c.ListLatest
	})
}

func (a *app) listingCmd(use, short string, pick func(domain.Catalog) listFunc) *cobra.Command {
	var page int
	var filter string

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.connect()
			if err != nil {
				return err
			}
			result, err := pick(client)(cmd.Context(), page)
			if err != nil {
				return err
			}
			result.Items = search.FilterEntries(filter, result.Items)
			return a.printer(cmd).page(result)
		},
	}
	cmd.Flags().IntVarP(&page, "page", "p", 1, "page number, starting at 1")
	cmd.Flags().StringVarP(&filter, "filter", "f", "", "fuzzy filter the page by title")
	return cmd
}

var sortFields = map[string]domain.SortField{
	"name":     domain.SortByName,
	"added":    domain.SortByDateAdded,
	"premiere": domain.SortByPremiereDate,
}

func (a *app) searchCmd() *cobra.Command {
	var (
		page     int
		category string
		genres   []string
		sortBy   string
		asc      bool
		rank     bool
	)

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search the catalog with optional category, genre and sort filters",
		Long: `Search the catalog. Categories and genres may be given by name or id;
names are matched fuzzily against the server's filter lists.`,
		Example: `  reel search alien
  reel search --category Movies --genre "sci fi" --sort added
  reel search --genre Drama --genre Crime --sort name --asc`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.connect()
			if err != nil {
				return err
			}
			query := ""
			if len(args) == 1 {
				query = args[0]
			}

			var filters domain.SearchFilters
			if category != "" || len(genres) > 0 {
				svc, err := a.filterService()
				if err != nil {
					return err
				}
				if category != "" {
					opt, err := search.ResolveOption(svc.Categories(cmd.Context()), category)
					if err != nil {
						return fmt.Errorf("category: %w", err)
					}
					filters.CategoryID = opt.Value
				}
				if len(genres) > 0 {
					opts, err := search.ResolveOptions(svc.Genres(cmd.Context()), genres)
					if err != nil {
						return fmt.Errorf("genre: %w", err)
					}
					filters.GenreIDs = search.Values(opts)
				}
			}
			if sortBy != "" {
				field, ok := sortFields[strings.ToLower(sortBy)]
				if !ok {
					return fmt.Errorf("unknown sort %q (want name, added or premiere)", sortBy)
				}
				filters.Sort = &domain.SortSelection{Field: field, Ascending: asc}
			}

			result, err := client.Search(cmd.Context(), page, query, filters)
			if err != nil {
				return err
			}
			if rank {
				result.Items = search.RankEntries(query, result.Items)
			}
			return a.printer(cmd).page(result)
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&page, "page", "p", 1, "page number, starting at 1")
	flags.StringVarP(&category, "category", "c", "", "library view name or id")
	flags.StringArrayVarP(&genres, "genre", "g", nil, "genre name or id (repeatable)")
	flags.StringVarP(&sortBy, "sort", "s", "", "sort by name, added or premiere")
	flags.BoolVar(&asc, "asc", false, "sort ascending (default descending)")
	flags.BoolVar(&rank, "rank", false, "reorder results by title match")
	return cmd
}

func (a *app) detailsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "details <ref>",
		Short: "Show the full description of an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.connect()
			if err != nil {
				return err
			}
			entry, err := client.GetDetails(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.printer(cmd).entry(entry)
		},
	}
}

func (a *app) episodesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "episodes <ref>",
		Short: "List the episodes of a series, season or box set",
		Long:  "List the playable units of an item. Movies and episodes list themselves.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.connect()
			if err != nil {
				return err
			}
			episodes, err := client.ListEpisodes(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.printer(cmd).episodes(episodes)
		},
	}
}

func (a *app) playCmd() *cobra.Command {
	var printOnly bool

	cmd := &cobra.Command{
		Use:   "play <ref>",
		Short: "Open an item's stream in an external player",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.connect()
			if err != nil {
				return err
			}
			svc := service.NewPlaybackService(a.newLauncher(a.cfg.Player, a.logger), client, a.logger)
			if !printOnly {
				return svc.Play(cmd.Context(), args[0])
			}
			src, err := svc.Resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.printer(cmd).source(src)
		},
	}
	cmd.Flags().BoolVar(&printOnly, "print", false, "print the stream instead of launching a player")
	return cmd
}
