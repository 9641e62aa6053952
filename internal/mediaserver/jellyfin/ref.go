package jellyfin

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/mmcdole/reel/internal/domain"
)

// Ref is a decoded item reference. References are the canonical item URL
// with the item kind (and a season's parent series) in the fragment, e.g.
//
//	http://host/Users/{uid}/Items/{id}#seriesId,{seriesId}
type Ref struct {
	UserID   string
	ItemID   string
	Kind     domain.ItemKind // KindOther when the fragment carries no kind
	SeriesID string
}

// EncodeRef builds the reference for an item
func EncodeRef(baseURL, userID string, item domain.CatalogItem) string {
	ref := itemURL(baseURL, userID, item.ID)
	if frag := refFragment(item); frag != "" {
		ref += "#" + frag
	}
	return ref
}

func itemURL(baseURL, userID, itemID string) string {
	return fmt.Sprintf("%s/Users/%s/Items/%s",
		strings.TrimRight(baseURL, "/"), url.PathEscape(userID), url.PathEscape(itemID))
}

func refFragment(item domain.CatalogItem) string {
	switch item.Kind {
	case domain.KindSeason:
		return "seriesId," + item.SeriesID
	case domain.KindMovie:
		return "movie"
	case domain.KindBoxSet:
		return "boxSet"
	case domain.KindSeries:
		return "series"
	default:
		return ""
	}
}

// ParseRef decodes a reference produced by EncodeRef
func ParseRef(ref string) (Ref, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return Ref{}, fmt.Errorf("%w: %v", domain.ErrInvalidRef, err)
	}

	segments := strings.Split(strings.Trim(u.EscapedPath(), "/"), "/")
	n := len(segments)
	if n < 4 || segments[n-2] != "Items" || segments[n-4] != "Users" {
		return Ref{}, fmt.Errorf("%w: %q", domain.ErrInvalidRef, ref)
	}

	userID, err := url.PathUnescape(segments[n-3])
	if err != nil {
		return Ref{}, fmt.Errorf("%w: %v", domain.ErrInvalidRef, err)
	}
	itemID, err := url.PathUnescape(segments[n-1])
	if err != nil || itemID == "" {
		return Ref{}, fmt.Errorf("%w: %q", domain.ErrInvalidRef, ref)
	}

	r := Ref{UserID: userID, ItemID: itemID}
	switch frag := u.Fragment; {
	case strings.HasPrefix(frag, "seriesId,"):
		r.Kind = domain.KindSeason
		r.SeriesID = strings.TrimPrefix(frag, "seriesId,")
	case frag == "series":
		r.Kind = domain.KindSeries
	case frag == "movie":
		r.Kind = domain.KindMovie
	case frag == "boxSet":
		r.Kind = domain.KindBoxSet
	}
	return r, nil
}
