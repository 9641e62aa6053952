package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/mmcdole/reel/internal/domain"
	"github.com/sourcegraph/conc"
)

// filterSlot is the cache state for one filter kind
type filterSlot struct {
	kind     domain.FilterKind
	storeKey string
	fetch    func(ctx context.Context) ([]domain.FilterOption, error)
	finish   func([]domain.FilterOption) []domain.FilterOption
	fallback []domain.FilterOption

	fetchMu sync.Mutex // serializes store/network lookups for this kind
}

// FilterService serves category and genre options through a read-through
// cache: process memory, then the durable store, then the server.
// Lookup failures degrade to a fallback list and are never returned.
type FilterService struct {
	store  domain.CredentialStore
	logger *slog.Logger

	slots map[domain.FilterKind]*filterSlot

	cacheMu sync.RWMutex
	cache   map[domain.FilterKind][]domain.FilterOption
}

// NewFilterService creates a filter service backed by source and store
func NewFilterService(source domain.FilterSource, store domain.CredentialStore, logger *slog.Logger) *FilterService {
	if logger == nil {
		logger = slog.Default()
	}
	return &FilterService{
		store:  store,
		logger: logger,
		cache:  make(map[domain.FilterKind][]domain.FilterOption),
		slots: map[domain.FilterKind]*filterSlot{
			domain.FilterCategory: {
				kind:     domain.FilterCategory,
				storeKey: domain.KeyCachedCategories,
				fetch:    source.FetchCategories,
				finish:   withAllCategories,
				fallback: []domain.FilterOption{domain.AllCategories},
			},
			domain.FilterGenre: {
				kind:     domain.FilterGenre,
				storeKey: domain.KeyCachedGenres,
				fetch:    source.FetchGenres,
				finish:   sortedByLabel,
				fallback: []domain.FilterOption{},
			},
		},
	}
}

// Categories returns the category options, "All" first
func (s *FilterService) Categories(ctx context.Context) []domain.FilterOption {
	return s.Options(ctx, domain.FilterCategory)
}

// Genres returns the genre options sorted by label
func (s *FilterService) Genres(ctx context.Context) []domain.FilterOption {
	return s.Options(ctx, domain.FilterGenre)
}

// Options returns the options for one filter kind
func (s *FilterService) Options(ctx context.Context, kind domain.FilterKind) []domain.FilterOption {
	slot, ok := s.slots[kind]
	if !ok {
		return nil
	}

	if cached, ok := s.getFromCache(kind); ok {
		return cached
	}

	slot.fetchMu.Lock()
	defer slot.fetchMu.Unlock()

	// Another caller may have filled the cache while we waited
	if cached, ok := s.getFromCache(kind); ok {
		return cached
	}

	if stored, ok := s.loadStored(slot); ok {
		s.logger.Debug("filter cache loaded from store", "kind", kind, "count", len(stored))
		s.setCache(kind, stored)
		return clone(stored)
	}

	fetched, err := slot.fetch(ctx)
	if err != nil {
		s.logger.Warn("failed to fetch filter options", "kind", kind, "error", err)
		return clone(slot.fallback)
	}

	options := slot.finish(fetched)
	s.saveStored(slot, options)
	s.setCache(kind, options)
	s.logger.Info("loaded filter options", "kind", kind, "count", len(options))
	return clone(options)
}

// Load warms both caches concurrently
func (s *FilterService) Load(ctx context.Context) (categories, genres []domain.FilterOption) {
	var wg conc.WaitGroup
	wg.Go(func() { categories = s.Categories(ctx) })
	wg.Go(func() { genres = s.Genres(ctx) })
	wg.Wait()
	return categories, genres
}

// Invalidate drops the memory and durable copies for the given kinds, or for
// every kind when none are given. The next lookup goes to the server.
func (s *FilterService) Invalidate(kinds ...domain.FilterKind) error {
	if len(kinds) == 0 {
		kinds = []domain.FilterKind{domain.FilterCategory, domain.FilterGenre}
	}

	s.cacheMu.Lock()
	for _, kind := range kinds {
		delete(s.cache, kind)
	}
	s.cacheMu.Unlock()

	if s.store == nil {
		return nil
	}
	for _, kind := range kinds {
		slot, ok := s.slots[kind]
		if !ok {
			continue
		}
		if err := s.store.SetString(slot.storeKey, ""); err != nil {
			return err
		}
		s.logger.Debug("invalidated filter cache", "kind", kind)
	}
	return nil
}

func (s *FilterService) getFromCache(kind domain.FilterKind) ([]domain.FilterOption, bool) {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()

	cached := s.cache[kind]
	if len(cached) == 0 {
		return nil, false
	}
	return clone(cached), true
}

func (s *FilterService) setCache(kind domain.FilterKind, options []domain.FilterOption) {
	if len(options) == 0 {
		return
	}
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.cache[kind] = options
}

// loadStored decodes the durable blob; a missing, empty or corrupt blob is a miss
func (s *FilterService) loadStored(slot *filterSlot) ([]domain.FilterOption, bool) {
	if s.store == nil {
		return nil, false
	}
	blob, ok := s.store.GetString(slot.storeKey)
	if !ok || strings.TrimSpace(blob) == "" {
		return nil, false
	}
	options, err := DecodeOptions(blob)
	if err != nil {
		s.logger.Warn("discarding corrupt filter cache", "kind", slot.kind, "error", err)
		return nil, false
	}
	if len(options) == 0 {
		return nil, false
	}
	return options, true
}

func (s *FilterService) saveStored(slot *filterSlot, options []domain.FilterOption) {
	if s.store == nil {
		return
	}
	blob, err := EncodeOptions(options)
	if err != nil {
		s.logger.Error("failed to marshal filter options", "kind", slot.kind, "error", err)
		return
	}
	if err := s.store.SetString(slot.storeKey, blob); err != nil {
		s.logger.Error("failed to persist filter options", "kind", slot.kind, "error", err)
	}
}

// EncodeOptions serializes options to the durable blob format
func EncodeOptions(options []domain.FilterOption) (string, error) {
	if options == nil {
		options = []domain.FilterOption{}
	}
	b, err := json.Marshal(options)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeOptions parses a durable blob
func DecodeOptions(blob string) ([]domain.FilterOption, error) {
	var options []domain.FilterOption
	if err := json.Unmarshal([]byte(blob), &options); err != nil {
		return nil, &domain.DecodeError{Target: "filter options", Err: err}
	}
	return options, nil
}

func withAllCategories(views []domain.FilterOption) []domain.FilterOption {
	out := make([]domain.FilterOption, 0, len(views)+1)
	out = append(out, domain.AllCategories)
	for _, v := range views {
		if v.Value == domain.AllCategories.Value {
			continue
		}
		out = append(out, v)
	}
	return out
}

func sortedByLabel(genres []domain.FilterOption) []domain.FilterOption {
	out := clone(genres)
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Label) < strings.ToLower(out[j].Label)
	})
	return out
}

func clone(options []domain.FilterOption) []domain.FilterOption {
	out := make([]domain.FilterOption, len(options))
	copy(out, options)
	return out
}
