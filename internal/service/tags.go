package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/avoronin/linkcut/internal/models"
	"github.com/avoronin/linkcut/internal/repository"
)

const maxTagNameLength = 64

// TagStore persists tags and their association edges. Attach and detach
// verify link and tag ownership inside the mutating statement itself, so a
// cross-owner edge cannot slip in between a check and the write.
type TagStore interface {
	CreateTag(ctx context.Context, tag models.Tag) (models.Tag, error)
	RenameTag(ctx context.Context, ownerID string, id uuid.UUID, name string) (models.Tag, error)
	DeleteTag(ctx context.Context, ownerID string, id uuid.UUID) error
	ListTags(ctx context.Context, ownerID string) ([]models.Tag, error)
	AttachTags(ctx context.Context, ownerID string, linkID uuid.UUID, tagIDs []uuid.UUID) error
	DetachTags(ctx context.Context, ownerID string, linkID uuid.UUID, tagIDs []uuid.UUID) error
	GetLinkTagIDs(ctx context.Context, linkID uuid.UUID) ([]uuid.UUID, error)
}

// TagService manages owner-scoped tags and their attachment to links. It
// never touches the resolution cache: tag edges have no effect on whether a
// shortcode resolves.
type TagService struct {
	tags   TagStore
	links  LinkStore
	logger *zap.Logger
}

func NewTagService(tags TagStore, links LinkStore, logger *zap.Logger) *TagService {
	return &TagService{
		tags:   tags,
		links:  links,
		logger: logger,
	}
}

func (s *TagService) Create(ctx context.Context, ownerID, name string) (models.Tag, error) {
	name, err := normalizeTagName(name)
	if err != nil {
		return models.Tag{}, err
	}

	tag, err := s.tags.CreateTag(ctx, models.Tag{
		ID:      uuid.New(),
		Name:    name,
		OwnerID: ownerID,
	})
	if err != nil {
		if errors.Is(err, repository.ErrTagNameTaken) {
			return models.Tag{}, ErrTagNameTaken
		}
		return models.Tag{}, fmt.Errorf("create tag: %w", err)
	}

	return tag, nil
}

func (s *TagService) Rename(ctx context.Context, ownerID string, id uuid.UUID, name string) (models.Tag, error) {
	name, err := normalizeTagName(name)
	if err != nil {
		return models.Tag{}, err
	}

	tag, err := s.tags.RenameTag(ctx, ownerID, id, name)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return models.Tag{}, ErrTagNotFound
		case errors.Is(err, repository.ErrTagNameTaken):
			return models.Tag{}, ErrTagNameTaken
		}
		return models.Tag{}, fmt.Errorf("rename tag: %w", err)
	}

	return tag, nil
}

func (s *TagService) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	if err := s.tags.DeleteTag(ctx, ownerID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTagNotFound
		}
		return fmt.Errorf("delete tag: %w", err)
	}
	return nil
}

func (s *TagService) List(ctx context.Context, ownerID string) ([]models.Tag, error) {
	tags, err := s.tags.ListTags(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

// Attach adds edges between a link and the given tags. Tags the owner does
// not hold are skipped silently, and attaching an existing edge is a no-op;
// the store re-verifies ownership of both sides inside the insert. The
// returned link carries the refreshed tag set.
func (s *TagService) Attach(ctx context.Context, ownerID string, linkID uuid.UUID, tagIDs []uuid.UUID) (models.Link, error) {
	if _, err := s.getOwnedLink(ctx, ownerID, linkID); err != nil {
		return models.Link{}, err
	}

	if err := s.tags.AttachTags(ctx, ownerID, linkID, tagIDs); err != nil {
		return models.Link{}, fmt.Errorf("attach tags: %w", err)
	}

	return s.getOwnedLink(ctx, ownerID, linkID)
}

// Detach removes matching edges; absent edges are ignored.
func (s *TagService) Detach(ctx context.Context, ownerID string, linkID uuid.UUID, tagIDs []uuid.UUID) (models.Link, error) {
	if _, err := s.getOwnedLink(ctx, ownerID, linkID); err != nil {
		return models.Link{}, err
	}

	if err := s.tags.DetachTags(ctx, ownerID, linkID, tagIDs); err != nil {
		return models.Link{}, fmt.Errorf("detach tags: %w", err)
	}

	return s.getOwnedLink(ctx, ownerID, linkID)
}

func (s *TagService) getOwnedLink(ctx context.Context, ownerID string, linkID uuid.UUID) (models.Link, error) {
	link, err := s.links.GetLink(ctx, ownerID, linkID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Link{}, ErrLinkNotFound
		}
		return models.Link{}, fmt.Errorf("get link: %w", err)
	}
	return link, nil
}

func normalizeTagName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: tag name cannot be empty", ErrValidation)
	}
	if len(name) > maxTagNameLength {
		return "", fmt.Errorf("%w: tag name must be at most %d characters", ErrValidation, maxTagNameLength)
	}
	return name, nil
}
