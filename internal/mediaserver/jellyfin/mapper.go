package jellyfin

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/reel/internal/domain"
)

var htmlTag = regexp.MustCompile(`<[^>]*>`)

// premiereLayout matches the leading part of the server's timestamps; the
// fractional seconds and zone suffix are ignored.
const premiereLayout = "2006-01-02T15:04:05"

// MapItem converts a Jellyfin item DTO to a domain catalog item
func MapItem(item Item) domain.CatalogItem {
	ci := domain.CatalogItem{
		ID:                    item.ID,
		Name:                  item.Name,
		Kind:                  domain.ParseItemKind(item.Type),
		LocationKind:          item.LocationType,
		PrimaryImageTag:       item.ImageTags.Primary,
		SeriesID:              item.SeriesID,
		SeriesName:            item.SeriesName,
		SeriesPrimaryImageTag: item.SeriesPrimaryImageTag,
		SeasonID:              item.SeasonID,
		SeasonName:            item.SeasonName,
		Status:                item.Status,
		Overview:              item.Overview,
		Genres:                item.Genres,
		OriginalTitle:         item.OriginalTitle,
		SortTitle:             item.SortName,
		IndexNumber:           item.IndexNumber,
		ParentIndexNumber:     item.ParentIndexNumber,
		PremiereDate:          item.PremiereDate,
		CreatedDate:           item.DateCreated,
		RuntimeTicks:          item.RunTimeTicks,
		OfficialRating:        item.OfficialRating,
		CommunityRating:       item.CommunityRating,
		CriticRating:          item.CriticRating,
	}
	for _, s := range item.Studios {
		ci.Studios = append(ci.Studios, s.Name)
	}
	for _, ms := range item.MediaSources {
		ci.MediaSources = append(ci.MediaSources, domain.MediaSource{ID: ms.ID, Size: ms.Size})
	}
	return ci
}

// MapItems converts a slice of DTOs
func MapItems(items []Item) []domain.CatalogItem {
	out := make([]domain.CatalogItem, 0, len(items))
	for _, item := range items {
		out = append(out, MapItem(item))
	}
	return out
}

// MapEntry projects a catalog item into its listing view
func MapEntry(item domain.CatalogItem, baseURL, userID string) domain.CatalogEntry {
	entry := domain.CatalogEntry{
		Ref:         EncodeRef(baseURL, userID, item),
		Title:       item.Name,
		Description: buildDescription(item),
		Status:      mapStatus(item),
		Genre:       strings.Join(item.Genres, ", "),
		Author:      strings.Join(item.Studios, ", "),
	}
	if item.PrimaryImageTag != "" {
		entry.Thumbnail = imageURL(baseURL, item.ID, item.PrimaryImageTag)
	}

	if item.Kind == domain.KindSeason {
		seriesImage := ""
		if item.SeriesID != "" && item.SeriesPrimaryImageTag != "" {
			seriesImage = imageURL(baseURL, item.SeriesID, item.SeriesPrimaryImageTag)
		}

		if item.IsVirtual() {
			entry.Title = item.SeriesName
			if entry.Title == "" {
				entry.Title = "Season"
			}
			if seriesImage != "" {
				entry.Thumbnail = seriesImage
			}
		} else {
			entry.Title = strings.TrimSpace(item.SeriesName + " " + item.Name)
		}

		if item.PrimaryImageTag == "" && seriesImage != "" {
			entry.Thumbnail = seriesImage
		}
	}
	return entry
}

// MapEpisode projects a playable item into its episode view
func MapEpisode(item domain.CatalogItem, baseURL, userID string, labels EpisodeLabels) domain.Episode {
	tmpl := labels.Template
	if tmpl == "" {
		tmpl = DefaultEpisodeTemplate
	}
	values := episodeValues(item, labels.Prefix)

	var extras []string
	if labels.wants("Overview") && item.Overview != "" && item.Kind == domain.KindEpisode {
		extras = append(extras, item.Overview)
	}
	if labels.wants("Size") && values["size"] != "" {
		extras = append(extras, values["size"])
	}
	if labels.wants("Runtime") && values["runtime"] != "" {
		extras = append(extras, values["runtime"])
	}

	ep := domain.Episode{
		Name:       RenderTemplate(tmpl, values),
		Ref:        itemURL(baseURL, userID, item.ID),
		UploadedAt: parsePremiere(item.PremiereDate),
		Details:    strings.Join(extras, " • "),
	}
	if item.IndexNumber != nil {
		ep.Number = float64(*item.IndexNumber)
	}
	if item.Kind == domain.KindMovie {
		ep.Number = 1
	}
	return ep
}

// buildDescription strips markup from the overview and appends rating lines
func buildDescription(item domain.CatalogItem) string {
	var b strings.Builder
	if item.Overview != "" {
		text := strings.ReplaceAll(item.Overview, "<br>", "\n")
		text = htmlTag.ReplaceAllString(text, "")
		text = strings.ReplaceAll(text, "\r\n", "\n")
		b.WriteString(text)
		b.WriteString("\n\n")
	}
	if item.OfficialRating != "" {
		fmt.Fprintf(&b, "Content Rating: %s\n", item.OfficialRating)
	}
	if item.CommunityRating != nil {
		fmt.Fprintf(&b, "Star (%s): Average audience score\n", formatRating(*item.CommunityRating))
	}
	if item.CriticRating != nil {
		fmt.Fprintf(&b, "Tomato (%s): Critic approval percentage\n", formatRating(*item.CriticRating))
	}
	return strings.TrimSpace(b.String())
}

func mapStatus(item domain.CatalogItem) domain.Status {
	if item.Kind == domain.KindMovie {
		return domain.StatusCompleted
	}
	switch strings.ToLower(item.Status) {
	case "ended":
		return domain.StatusCompleted
	case "continuing":
		return domain.StatusOngoing
	default:
		return domain.StatusUnknown
	}
}

func imageURL(baseURL, itemID, tag string) string {
	return fmt.Sprintf("%s/Items/%s/Images/Primary?tag=%s",
		strings.TrimRight(baseURL, "/"), url.PathEscape(itemID), url.QueryEscape(tag))
}

// parsePremiere returns the zero time when the date is missing or malformed
func parsePremiere(s string) time.Time {
	if len(s) < len(premiereLayout) {
		return time.Time{}
	}
	t, err := time.Parse(premiereLayout, s[:len(premiereLayout)])
	if err != nil {
		return time.Time{}
	}
	return t
}
