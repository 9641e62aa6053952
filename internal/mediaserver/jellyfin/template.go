package jellyfin

import (
	"strconv"
	"strings"

	"github.com/mmcdole/reel/internal/domain"
)

// DefaultEpisodeTemplate is used when no template is configured
const DefaultEpisodeTemplate = "{number} - {title}"

// episodeTokens is the fixed set of template placeholders
var episodeTokens = []string{
	"title", "originalTitle", "sortTitle", "type", "typeShort",
	"seriesTitle", "seasonTitle", "number", "createdDate", "releaseDate",
	"size", "sizeBytes", "runtime", "runtimeS",
}

// EpisodeLabels controls episode naming and the details annotation
type EpisodeLabels struct {
	Template string
	Prefix   string   // prepended to the title; movie-kind entries get the prefix alone
	Details  []string // any of "Overview", "Size", "Runtime"
}

func (l EpisodeLabels) wants(detail string) bool {
	for _, d := range l.Details {
		if d == detail {
			return true
		}
	}
	return false
}

// RenderTemplate substitutes {token} placeholders. Known tokens missing from
// values become empty; unknown placeholders are left as written. Surrounding
// space and a single leading or trailing "-" are trimmed.
func RenderTemplate(tmpl string, values map[string]string) string {
	pairs := make([]string, 0, len(episodeTokens)*2)
	for _, tok := range episodeTokens {
		pairs = append(pairs, "{"+tok+"}", values[tok])
	}
	out := strings.NewReplacer(pairs...).Replace(tmpl)

	out = strings.TrimSpace(out)
	out = strings.TrimSuffix(out, "-")
	out = strings.TrimPrefix(out, "-")
	return strings.TrimSpace(out)
}

// episodeValues collects template values for an item
func episodeValues(item domain.CatalogItem, prefix string) map[string]string {
	title := prefix
	if item.Kind != domain.KindMovie {
		title += item.Name
	}

	kind := item.Kind.String()
	values := map[string]string{
		"title":         title,
		"originalTitle": item.OriginalTitle,
		"sortTitle":     item.SortTitle,
		"type":          kind,
		"typeShort":     strings.ReplaceAll(kind, "Episode", "Ep."),
		"seriesTitle":   item.SeriesName,
		"seasonTitle":   item.SeasonName,
		"createdDate":   datePart(item.CreatedDate),
		"releaseDate":   datePart(item.PremiereDate),
	}
	if item.IndexNumber != nil {
		values["number"] = strconv.Itoa(*item.IndexNumber)
	}
	if size := firstSourceSize(item); size != nil {
		values["size"] = FormatBytes(*size)
		values["sizeBytes"] = strconv.FormatInt(*size, 10)
	}
	if item.RuntimeTicks != nil {
		secs := ticksToSeconds(*item.RuntimeTicks)
		values["runtime"] = FormatSeconds(secs)
		values["runtimeS"] = strconv.FormatInt(secs, 10)
	}
	return values
}

func datePart(ts string) string {
	date, _, _ := strings.Cut(ts, "T")
	return date
}

func firstSourceSize(item domain.CatalogItem) *int64 {
	if len(item.MediaSources) == 0 {
		return nil
	}
	return item.MediaSources[0].Size
}
