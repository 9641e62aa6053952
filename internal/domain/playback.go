package domain

import "context"

// PlaybackResolver turns an item reference into a playable stream.
type PlaybackResolver interface {
	ResolvePlaybackSource(ctx context.Context, ref string) (PlaybackSource, error)
}
