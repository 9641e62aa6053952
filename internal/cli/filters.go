package cli

import (
	"fmt"
	"strings"

	"github.com/mmcdole/reel/internal/domain"
	"github.com/spf13/cobra"
)

func (a *app) categoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List library views usable with search --category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.filterService()
			if err != nil {
				return err
			}
			return a.printer(cmd).options(svc.Categories(cmd.Context()))
		},
	}
}

func (a *app) genresCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "genres",
		Short: "List genres usable with search --genre",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.filterService()
			if err != nil {
				return err
			}
			return a.printer(cmd).options(svc.Genres(cmd.Context()))
		},
	}
}

func (a *app) filtersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filters",
		Short: "Manage cached filter metadata",
	}

	var kinds []string
	clear := &cobra.Command{
		Use:   "clear",
		Short: "Forget cached categories and genres so they are fetched again",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := parseFilterKinds(kinds)
			if err != nil {
				return err
			}
			svc, err := a.filterService()
			if err != nil {
				return err
			}
			if err := svc.Invalidate(parsed...); err != nil {
				return fmt.Errorf("failed to clear filter cache: %w", err)
			}
			return a.printer(cmd).success(map[string]bool{"cleared": true}, "filter cache cleared")
		},
	}
	clear.Flags().StringSliceVar(&kinds, "kind", nil, "category or genre (default both)")

	refresh := &cobra.Command{
		Use:   "refresh",
		Short: "Clear and reload both filter lists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.filterService()
			if err != nil {
				return err
			}
			if err := svc.Invalidate(); err != nil {
				return fmt.Errorf("failed to clear filter cache: %w", err)
			}
			categories, genres := svc.Load(cmd.Context())
			counts := map[string]int{"categories": len(categories), "genres": len(genres)}
			return a.printer(cmd).success(counts,
				fmt.Sprintf("loaded %d categories and %d genres", len(categories), len(genres)))
		},
	}

	cmd.AddCommand(clear, refresh)
	return cmd
}

func parseFilterKinds(names []string) ([]domain.FilterKind, error) {
	var kinds []domain.FilterKind
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "category", "categories":
			kinds = append(kinds, domain.FilterCategory)
		case "genre", "genres":
			kinds = append(kinds, domain.FilterGenre)
		default:
			return nil, fmt.Errorf("unknown filter kind %q", name)
		}
	}
	return kinds, nil
}
