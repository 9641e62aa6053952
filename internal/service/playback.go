package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mmcdole/reel/internal/domain"
)

// ErrNotPlayable is returned for items without a media source
var ErrNotPlayable = errors.New("item has no playable media")

// launcher abstracts media player launching (consumer-defined interface)
type launcher interface {
	Launch(src domain.PlaybackSource) error
}

// PlaybackService orchestrates playback operations
type PlaybackService struct {
	launcher launcher
	resolver domain.PlaybackResolver
	logger   *slog.Logger
}

// NewPlaybackService creates a new playback service
func NewPlaybackService(
	launcher launcher,
	resolver domain.PlaybackResolver,
	logger *slog.Logger,
) *PlaybackService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlaybackService{
		launcher: launcher,
		resolver: resolver,
		logger:   logger,
	}
}

// Resolve returns the stream for ref, failing with ErrNotPlayable when the
// item has no media
func (s *PlaybackService) Resolve(ctx context.Context, ref string) (domain.PlaybackSource, error) {
	src, err := s.resolver.ResolvePlaybackSource(ctx, ref)
	if err != nil {
		s.logger.Error("failed to resolve playback source", "error", err, "ref", ref)
		return domain.PlaybackSource{}, err
	}
	if src.IsZero() {
		return domain.PlaybackSource{}, fmt.Errorf("%w: %s", ErrNotPlayable, ref)
	}
	return src, nil
}

// Play resolves ref and hands the stream to the player
func (s *PlaybackService) Play(ctx context.Context, ref string) error {
	src, err := s.Resolve(ctx, ref)
	if err != nil {
		return err
	}

	s.logger.Info("launching playback", "ref", ref, "url", src.URL)
	return s.launcher.Launch(src)
}
