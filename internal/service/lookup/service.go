// Package lookup resolves a term into a word record: cache, then store, then
// the three external sources merged into one record.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/tannibunni/dramaword-backend/internal/domain"
	"github.com/tannibunni/dramaword-backend/internal/provider"
)

type wordRepo interface {
	FindByTerm(ctx context.Context, term string) (*domain.WordRecord, error)
	Upsert(ctx context.Context, rec domain.WordRecord) (*domain.WordRecord, error)
	Touch(ctx context.Context, term string, at time.Time) error
	List(ctx context.Context, limit, offset int) ([]domain.WordRecord, error)
	Count(ctx context.Context) (int, error)
}

type wordCache interface {
	Get(term string) (*domain.WordRecord, bool)
	Put(rec domain.WordRecord)
}

type bilingualSource interface {
	Fetch(ctx context.Context, term string) (*provider.BilingualPartial, error)
}

type openDictSource interface {
	Fetch(ctx context.Context, term string) (*provider.OpenDictPartial, error)
}

type completionSource interface {
	Complete(ctx context.Context, term string, bilingual *provider.BilingualPartial, openDict *provider.OpenDictPartial) (*provider.CompletionPartial, error)
}

// Config holds per-call timeouts and the coalescing switch.
type Config struct {
	AdapterTimeout    time.Duration
	CompletionTimeout time.Duration
	StoreTimeout      time.Duration
	// Coalesce makes concurrent lookups of the same term share one resolution.
	Coalesce bool
}

// Service implements word lookup and the vocabulary listing.
type Service struct {
	log        *slog.Logger
	words      wordRepo
	cache      wordCache
	bilingual  bilingualSource
	openDict   openDictSource
	completion completionSource
	cfg        Config
	inflight   singleflight.Group
	now        func() time.Time
}

// NewService creates a new lookup service.
func NewService(
	logger *slog.Logger,
	words wordRepo,
	cache wordCache,
	bilingual bilingualSource,
	openDict openDictSource,
	completion completionSource,
	cfg Config,
) *Service {
	if cfg.AdapterTimeout <= 0 {
		cfg.AdapterTimeout = 8 * time.Second
	}
	if cfg.CompletionTimeout <= 0 {
		cfg.CompletionTimeout = 20 * time.Second
	}
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = 3 * time.Second
	}
	return &Service{
		log:        logger.With("service", "lookup"),
		words:      words,
		cache:      cache,
		bilingual:  bilingual,
		openDict:   openDict,
		completion: completion,
		cfg:        cfg,
		now:        time.Now,
	}
}

// Lookup returns the word record for term. For any non-empty term a record
// is always returned, the placeholder when no source knows the word. The only
// error besides validation is domain.ErrStoreUnavailable, returned together
// with the placeholder when the store could not be reached and every source
// failed.
func (s *Service) Lookup(ctx context.Context, term string) (*domain.WordRecord, error) {
	normalized := domain.NormalizeText(term)
	if normalized == "" {
		return nil, domain.NewValidationError("term", "required")
	}

	// Resolution is detached from the caller's cancellation; a dropped
	// request must not leave a placeholder in the cache or the store.
	// Every source and store call still runs under its own timeout.
	work := context.WithoutCancel(ctx)

	if !s.cfg.Coalesce {
		return s.resolve(work, normalized)
	}

	v, err, shared := s.inflight.Do(normalized, func() (any, error) {
		return s.resolve(work, normalized)
	})
	rec, ok := v.(*domain.WordRecord)
	if !ok {
		return s.resolve(work, normalized)
	}
	if shared && rec != nil {
		cp := cloneRecord(*rec)
		rec = &cp
	}
	return rec, err
}

func (s *Service) resolve(ctx context.Context, term string) (*domain.WordRecord, error) {
	if rec, ok := s.cache.Get(term); ok {
		return rec, nil
	}

	storeDown := false

	stored, err := s.findStored(ctx, term)
	switch {
	case err == nil:
		return s.hit(ctx, stored), nil
	case errors.Is(err, domain.ErrNotFound):
	default:
		storeDown = true
		s.log.WarnContext(ctx, "word store unavailable, resolving from sources",
			slog.String("term", term),
			slog.String("error", err.Error()),
		)
	}

	bil, open := s.fanOut(ctx, term)

	var comp *provider.CompletionPartial
	if bil != nil || open != nil {
		comp = s.complete(ctx, term, bil, open)
	}

	now := s.now()
	rec, ok := Merge(term, now, bil, open, comp)
	if !ok {
		rec = domain.NewPlaceholderRecord(term, now)
		s.log.InfoContext(ctx, "no source could define term", slog.String("term", term))
	}
	rec.ID = uuid.New()
	rec.QueryCount = 1

	saved, err := s.save(ctx, rec)
	if err != nil {
		storeDown = true
		s.log.WarnContext(ctx, "persist word failed",
			slog.String("term", term),
			slog.String("error", err.Error()),
		)
	} else {
		rec = *saved
	}

	s.cache.Put(rec)

	if !ok && storeDown {
		return &rec, fmt.Errorf("lookup %q: %w", term, domain.ErrStoreUnavailable)
	}
	return &rec, nil
}

// hit bumps the usage counters of a stored record. Persisting them is best effort.
func (s *Service) hit(ctx context.Context, rec *domain.WordRecord) *domain.WordRecord {
	now := s.now()
	rec.QueryCount++
	rec.LastQueried = now

	storeCtx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()
	if err := s.words.Touch(storeCtx, rec.Term, now); err != nil {
		s.log.WarnContext(ctx, "touch word failed",
			slog.String("term", rec.Term),
			slog.String("error", err.Error()),
		)
	}

	s.cache.Put(*rec)
	return rec
}

func (s *Service) findStored(ctx context.Context, term string) (*domain.WordRecord, error) {
	storeCtx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()
	return s.words.FindByTerm(storeCtx, term)
}

func (s *Service) save(ctx context.Context, rec domain.WordRecord) (*domain.WordRecord, error) {
	storeCtx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()
	return s.words.Upsert(storeCtx, rec)
}

// fanOut queries the two dictionaries concurrently and waits for both. A
// failing source never cancels the other; its result is simply nil.
func (s *Service) fanOut(ctx context.Context, term string) (*provider.BilingualPartial, *provider.OpenDictPartial) {
	var (
		g    errgroup.Group
		bil  *provider.BilingualPartial
		open *provider.OpenDictPartial
	)

	g.Go(func() error {
		bil = callSource(ctx, s, provider.SourceBilingual, term, s.cfg.AdapterTimeout,
			func(ctx context.Context) (*provider.BilingualPartial, error) {
				return s.bilingual.Fetch(ctx, term)
			})
		return nil
	})
	g.Go(func() error {
		open = callSource(ctx, s, provider.SourceOpenDict, term, s.cfg.AdapterTimeout,
			func(ctx context.Context) (*provider.OpenDictPartial, error) {
				return s.openDict.Fetch(ctx, term)
			})
		return nil
	})
	_ = g.Wait()

	return bil, open
}

func (s *Service) complete(ctx context.Context, term string, bil *provider.BilingualPartial, open *provider.OpenDictPartial) *provider.CompletionPartial {
	return callSource(ctx, s, provider.SourceCompletion, term, s.cfg.CompletionTimeout,
		func(ctx context.Context) (*provider.CompletionPartial, error) {
			return s.completion.Complete(ctx, term, bil, open)
		})
}

// callSource runs one source call under its own timeout. Errors and panics
// are logged and turned into a nil result.
func callSource[T any](
	ctx context.Context,
	s *Service,
	source provider.Source,
	term string,
	timeout time.Duration,
	call func(ctx context.Context) (*T, error),
) (result *T) {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			s.log.ErrorContext(ctx, "source panicked",
				slog.String("source", string(source)),
				slog.String("term", term),
				slog.Any("panic", r),
			)
			result = nil
		}
	}()

	start := time.Now()
	res, err := call(callCtx)
	if err != nil {
		s.log.WarnContext(ctx, "source failed",
			slog.String("source", string(source)),
			slog.String("term", term),
			slog.Duration("elapsed", time.Since(start)),
			slog.String("error", err.Error()),
		)
		return nil
	}
	return res
}

// List returns stored words, most recently queried first. limit is clamped
// to [1, 100], defaulting to 20.
func (s *Service) List(ctx context.Context, limit, offset int) ([]domain.WordRecord, error) {
	if offset < 0 {
		return nil, domain.NewValidationError("offset", "must not be negative")
	}
	words, err := s.words.List(ctx, clampLimit(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("list words: %w", err)
	}
	return words, nil
}

// Count returns the number of stored words.
func (s *Service) Count(ctx context.Context) (int, error) {
	n, err := s.words.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count words: %w", err)
	}
	return n, nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return 20
	case limit > 100:
		return 100
	}
	return limit
}

func cloneRecord(r domain.WordRecord) domain.WordRecord {
	r.Meanings = slices.Clone(r.Meanings)
	r.Translations = slices.Clone(r.Translations)
	r.Derivatives = slices.Clone(r.Derivatives)
	r.Synonyms = slices.Clone(r.Synonyms)
	return r
}
