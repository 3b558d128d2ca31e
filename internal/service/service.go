package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/avoronin/linkcut/internal/models"
	"github.com/avoronin/linkcut/internal/repository"
)

var (
	ErrInvalidURL              = errors.New("invalid url")
	ErrShortcodeTaken          = errors.New("shortcode already taken")
	ErrCodeGenerationExhausted = errors.New("failed to generate unique shortcode")
	ErrLinkNotFound            = errors.New("link not found")
	ErrTagNotFound             = errors.New("tag not found")
	ErrTagNameTaken            = errors.New("tag name already taken")
	ErrNothingToUpdate         = errors.New("update request changes nothing")
	ErrExpiryInPast            = errors.New("expiry must be in the future")
	ErrValidation              = errors.New("validation failed")
)

// LinkStore is the authoritative persistence for links. Shortcode
// uniqueness among live links is enforced by the store itself, so
// CreateLink doubles as the collision check.
type LinkStore interface {
	CreateLink(ctx context.Context, link models.Link) (models.Link, error)
	GetLink(ctx context.Context, ownerID string, id uuid.UUID) (models.Link, error)
	ResolveCode(ctx context.Context, code string, now time.Time) (models.Link, error)
	UpdateLink(ctx context.Context, ownerID string, id uuid.UUID, upd models.UpdateLinkRequest) (models.Link, error)
	SoftDeleteLink(ctx context.Context, ownerID string, id uuid.UUID) (models.Link, error)
	ListLinks(ctx context.Context, ownerID string, filter models.LinkFilter, now time.Time) ([]models.Link, int64, error)
}

// ResolutionCache is the best-effort cache on the redirect path.
// Implementations absorb their own failures; callers treat every lookup
// miss the same way regardless of cause.
type ResolutionCache interface {
	Lookup(ctx context.Context, shortcode string) (string, bool)
	Store(ctx context.Context, shortcode, destination string, ttl time.Duration)
	Invalidate(ctx context.Context, shortcodes ...string)
}

// ClickPublisher hands successful redirects to the analytics subsystem.
type ClickPublisher interface {
	Publish(ctx context.Context, event models.ClickEvent)
}

// LinkService orchestrates link lifecycle: creation with collision-safe
// code generation, the cache-aside redirect path, partial updates and soft
// deletion. Cache and publisher are optional; a nil cache means every
// resolve goes to the store.
type LinkService struct {
	store     LinkStore
	cache     ResolutionCache
	publisher ClickPublisher
	cacheTTL  time.Duration
	logger    *zap.Logger
}

func NewLinkService(store LinkStore, cache ResolutionCache, publisher ClickPublisher, cacheTTL time.Duration, logger *zap.Logger) *LinkService {
	return &LinkService{
		store:     store,
		cache:     cache,
		publisher: publisher,
		cacheTTL:  cacheTTL,
		logger:    logger,
	}
}

// Create validates the destination, allocates a shortcode and persists the
// link. The cache is not written here; the first redirect populates it.
func (s *LinkService) Create(ctx context.Context, ownerID string, req models.CreateLinkRequest) (models.Link, error) {
	if err := validateDestination(req.URL); err != nil {
		s.logger.Warn("rejected destination url", zap.String("url", req.URL), zap.Error(err))
		return models.Link{}, err
	}

	if req.ExpiresAt != nil && !req.ExpiresAt.After(time.Now()) {
		return models.Link{}, ErrExpiryInPast
	}

	link := models.Link{
		ID:          uuid.New(),
		OriginalURL: req.URL,
		OwnerID:     ownerID,
		IsActive:    true,
		ExpiresAt:   req.ExpiresAt,
	}

	// Owner-supplied codes are persisted exactly once: the owner chose this
	// value, so a conflict is surfaced rather than silently substituted.
	if req.Shortcode != "" {
		if err := validateCustomCode(req.Shortcode); err != nil {
			return models.Link{}, err
		}

		link.Shortcode = req.Shortcode
		created, err := s.store.CreateLink(ctx, link)
		if err != nil {
			if errors.Is(err, repository.ErrCodeTaken) {
				return models.Link{}, ErrShortcodeTaken
			}
			return models.Link{}, fmt.Errorf("create link: %w", err)
		}
		return created, nil
	}

	for attempt := 0; attempt < maxGenerateAttempts; attempt++ {
		code, err := generateCode(CodeLength)
		if err != nil {
			return models.Link{}, fmt.Errorf("generate shortcode: %w", err)
		}

		link.Shortcode = code
		created, err := s.store.CreateLink(ctx, link)
		if err == nil {
			return created, nil
		}
		if !errors.Is(err, repository.ErrCodeTaken) {
			return models.Link{}, fmt.Errorf("create link: %w", err)
		}

		s.logger.Info("generated shortcode collided, retrying",
			zap.String("shortcode", code),
			zap.Int("attempt", attempt+1))
	}

	s.logger.Error("shortcode generation budget exhausted",
		zap.Int("attempts", maxGenerateAttempts),
		zap.Int("length", CodeLength))
	return models.Link{}, ErrCodeGenerationExhausted
}

// Resolve maps a shortcode to its destination for the public redirect.
// Cache first; on miss the store is queried with the full resolvability
// predicate, and a live hit repopulates the cache. Missing, deactivated,
// expired and deleted codes all come back as ErrLinkNotFound.
func (s *LinkService) Resolve(ctx context.Context, code, userAgent, referer string) (string, error) {
	if s.cache != nil {
		if destination, ok := s.cache.Lookup(ctx, code); ok {
			s.publishClick(code, userAgent, referer)
			return destination, nil
		}
	}

	now := time.Now()
	link, err := s.store.ResolveCode(ctx, code, now)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrLinkNotFound
		}
		return "", fmt.Errorf("resolve shortcode: %w", err)
	}

	if s.cache != nil {
		s.cache.Store(ctx, code, link.OriginalURL, s.entryTTL(link, now))
	}

	s.publishClick(code, userAgent, referer)
	return link.OriginalURL, nil
}

// entryTTL caps the cache TTL at the remaining validity of the link, so a
// cached destination can never outlive its expiry.
func (s *LinkService) entryTTL(link models.Link, now time.Time) time.Duration {
	ttl := s.cacheTTL
	if link.ExpiresAt != nil {
		if remaining := link.ExpiresAt.Sub(now); remaining < ttl {
			ttl = remaining
		}
	}
	return ttl
}

func (s *LinkService) publishClick(code, userAgent, referer string) {
	if s.publisher == nil {
		return
	}

	event := models.ClickEvent{
		Shortcode: code,
		Timestamp: time.Now(),
		UserAgent: userAgent,
		Referer:   referer,
	}

	go s.publisher.Publish(context.Background(), event)
}

func (s *LinkService) Get(ctx context.Context, ownerID string, id uuid.UUID) (models.Link, error) {
	link, err := s.store.GetLink(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Link{}, ErrLinkNotFound
		}
		return models.Link{}, fmt.Errorf("get link: %w", err)
	}
	return link, nil
}

// Update applies a partial update and invalidates the cache for both the
// pre-update and post-update shortcode. Relying on TTL expiry after a
// rename would leave the old code resolving; both keys are dropped
// explicitly.
func (s *LinkService) Update(ctx context.Context, ownerID string, id uuid.UUID, req models.UpdateLinkRequest) (models.Link, error) {
	if req.Empty() {
		return models.Link{}, ErrNothingToUpdate
	}
	if req.ExpiresAt != nil && !req.ExpiresAt.After(time.Now()) {
		return models.Link{}, ErrExpiryInPast
	}
	if req.Shortcode != nil {
		if err := validateCustomCode(*req.Shortcode); err != nil {
			return models.Link{}, err
		}
	}

	prev, err := s.store.GetLink(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Link{}, ErrLinkNotFound
		}
		return models.Link{}, fmt.Errorf("get link: %w", err)
	}

	updated, err := s.store.UpdateLink(ctx, ownerID, id, req)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return models.Link{}, ErrLinkNotFound
		case errors.Is(err, repository.ErrCodeTaken):
			return models.Link{}, ErrShortcodeTaken
		}
		return models.Link{}, fmt.Errorf("update link: %w", err)
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, prev.Shortcode, updated.Shortcode)
	}

	return updated, nil
}

// Delete soft-deletes a link, detaches its tag edges and invalidates the
// cache entry for the retired shortcode. Deleting an already-deleted link
// is not found, same as a link that never existed.
func (s *LinkService) Delete(ctx context.Context, ownerID string, id uuid.UUID) (models.Link, error) {
	link, err := s.store.SoftDeleteLink(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Link{}, ErrLinkNotFound
		}
		return models.Link{}, fmt.Errorf("delete link: %w", err)
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, link.Shortcode)
	}

	return link, nil
}

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// List returns one owner-scoped page of links with the total count for the
// same filter, newest first.
func (s *LinkService) List(ctx context.Context, ownerID string, filter models.LinkFilter) ([]models.Link, models.Pagination, error) {
	if filter.Status == "" {
		filter.Status = models.StatusAll
	}
	if !filter.Status.Valid() {
		return nil, models.Pagination{}, fmt.Errorf("%w: unknown status %q", ErrValidation, filter.Status)
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > maxPageLimit {
		filter.Limit = defaultPageLimit
	}

	links, total, err := s.store.ListLinks(ctx, ownerID, filter, time.Now())
	if err != nil {
		return nil, models.Pagination{}, fmt.Errorf("list links: %w", err)
	}

	totalPages := total / int64(filter.Limit)
	if total%int64(filter.Limit) != 0 {
		totalPages++
	}

	pagination := models.Pagination{
		Page:       filter.Page,
		Limit:      filter.Limit,
		Total:      total,
		TotalPages: totalPages,
	}

	return links, pagination, nil
}

func validateDestination(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("%w: url cannot be empty", ErrInvalidURL)
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: malformed url", ErrInvalidURL)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%w: scheme must be http or https", ErrInvalidURL)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%w: url must include host", ErrInvalidURL)
	}

	return nil
}
