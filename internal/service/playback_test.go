package service

import (
	"context"
	"errors"
	"testing"

	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type resolverFunc func(ctx context.Context, ref string) (domain.PlaybackSource, error)

func (f resolverFunc) ResolvePlaybackSource(ctx context.Context, ref string) (domain.PlaybackSource, error) {
	return f(ctx, ref)
}

type recordingLauncher struct {
	launched []domain.PlaybackSource
	err      error
}

func (r *recordingLauncher) Launch(src domain.PlaybackSource) error {
	r.launched = append(r.launched, src)
	return r.err
}

func TestPlayLaunchesResolvedSource(t *testing.T) {
	src := domain.PlaybackSource{URL: "http://media/Videos/1/stream?static=True"}
	l := &recordingLauncher{}
	svc := NewPlaybackService(l, resolverFunc(func(ctx context.Context, ref string) (domain.PlaybackSource, error) {
		assert.Equal(t, "ref-1", ref)
		return src, nil
	}), log.NullLogger())

	require.NoError(t, svc.Play(context.Background(), "ref-1"))
	assert.Equal(t, []domain.PlaybackSource{src}, l.launched)
}

func TestPlayWithoutMedia(t *testing.T) {
	l := &recordingLauncher{}
	svc := NewPlaybackService(l, resolverFunc(func(context.Context, string) (domain.PlaybackSource, error) {
		return domain.PlaybackSource{}, nil
	}), log.NullLogger())

	err := svc.Play(context.Background(), "ref-1")
	assert.ErrorIs(t, err, ErrNotPlayable)
	assert.Empty(t, l.launched)
}

func TestPlayPropagatesResolveAndLaunchErrors(t *testing.T) {
	boom := errors.New("boom")
	svc := NewPlaybackService(&recordingLauncher{}, resolverFunc(func(context.Context, string) (domain.PlaybackSource, error) {
		return domain.PlaybackSource{}, boom
	}), log.NullLogger())
	assert.ErrorIs(t, svc.Play(context.Background(), "r"), boom)

	l := &recordingLauncher{err: boom}
	svc = NewPlaybackService(l, resolverFunc(func(context.Context, string) (domain.PlaybackSource, error) {
		return domain.PlaybackSource{URL: "u"}, nil
	}), log.NullLogger())
	assert.ErrorIs(t, svc.Play(context.Background(), "r"), boom)
}
